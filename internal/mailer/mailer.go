// Package mailer hands a rendered inspection request to the local mail client.
package mailer

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/Lllllllleong/inspectionrequest/internal/models"
	"github.com/ubuntu/decorate"
)

// ErrUnsupported is returned by Drafter on platforms without a scriptable mail client.
var ErrUnsupported = errors.New("email drafting with attachment is only available on Windows with Outlook installed")

// Message is an email draft with one PDF attachment.
type Message struct {
	To             string
	Subject        string
	Body           string
	Attachment     []byte
	AttachmentName string
}

// Drafter opens a draft in the mail client for the user to review and send.
type Drafter interface {
	Draft(ctx context.Context, m Message) error
}

// NewMessage builds the default draft for a rendered document.
func NewMessage(rc *models.RenderContext, doc *models.RenderedDocument, to string) Message {
	return Message{
		To:             to,
		Subject:        fmt.Sprintf("Inspection Request: %s - %s", rc.Form.UnitName, rc.Form.SerialNo),
		Body:           DefaultBody(rc),
		Attachment:     doc.Bytes(),
		AttachmentName: doc.AttachmentName,
	}
}

// DefaultBody returns the standard cover text.
func DefaultBody(rc *models.RenderContext) string {
	return fmt.Sprintf("Dear Team,\n\nPlease find the inspection request attached for your review.\n\nUnit Name: %s\nInspection Date: %s\n\nThank you.",
		rc.Form.UnitName, rc.Date())
}

// MailtoURL returns a mailto link that opens a draft without the attachment, for
// clients that cannot be automated. The recipient is escaped so it cannot add
// header fields of its own.
func (m Message) MailtoURL() string {
	q := "subject=" + escape(m.Subject) + "&body=" + escape(m.Body)
	return "mailto:" + url.PathEscape(m.To) + "?" + q
}

func escape(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}

// WithAttachmentFile writes the attachment into a scoped temp dir, calls fn with
// its path and removes the file on every exit path.
func WithAttachmentFile(m Message, fn func(path string) error) (err error) {
	defer decorate.OnError(&err, "attachment %s", m.AttachmentName)

	if len(m.Attachment) == 0 {
		return errors.New("message has no attachment")
	}
	dir, err := os.MkdirTemp("", "inspection-mail-*")
	if err != nil {
		return fmt.Errorf("failed to create temp dir: %w", err)
	}
	defer os.RemoveAll(dir)

	name := m.AttachmentName
	if name == "" || filepath.Base(name) != name {
		name = "attachment.pdf"
	}
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, m.Attachment, 0o600); err != nil {
		return fmt.Errorf("failed to write attachment: %w", err)
	}
	return fn(path)
}
