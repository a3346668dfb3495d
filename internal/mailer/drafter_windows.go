package mailer

import (
	"context"
	"errors"
	"log/slog"
	"runtime"

	"github.com/go-ole/go-ole"
	"github.com/go-ole/go-ole/oleutil"
	"github.com/ubuntu/decorate"
)

const (
	olMailItem = 0
	olByValue  = 1

	// sFalse is returned when COM is already initialized on the thread.
	sFalse = 1
)

type outlookDrafter struct{}

// NewDrafter returns the drafter of the current platform.
func NewDrafter() Drafter {
	return outlookDrafter{}
}

// Draft opens a new Outlook mail item with the attachment and waits for the user
// to close it, then removes the attachment file.
func (outlookDrafter) Draft(ctx context.Context, m Message) (err error) {
	defer decorate.OnError(&err, "failed to create Outlook email")

	if err := ctx.Err(); err != nil {
		return err
	}

	// COM objects are bound to the thread that initialized them.
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	if err := ole.CoInitialize(0); err != nil {
		var oleErr *ole.OleError
		if !errors.As(err, &oleErr) || oleErr.Code() != sFalse {
			return err
		}
	}
	defer ole.CoUninitialize()

	unknown, err := oleutil.CreateObject("Outlook.Application")
	if err != nil {
		return err
	}
	defer unknown.Release()

	app, err := unknown.QueryInterface(ole.IID_IDispatch)
	if err != nil {
		return err
	}
	defer app.Release()

	item, err := oleutil.CallMethod(app, "CreateItem", olMailItem)
	if err != nil {
		return err
	}
	mail := item.ToIDispatch()
	defer mail.Release()

	for prop, v := range map[string]string{"To": m.To, "Subject": m.Subject, "Body": m.Body} {
		if _, err := oleutil.PutProperty(mail, prop, v); err != nil {
			return err
		}
	}

	return WithAttachmentFile(m, func(path string) error {
		attachments, err := oleutil.GetProperty(mail, "Attachments")
		if err != nil {
			return err
		}
		list := attachments.ToIDispatch()
		defer list.Release()

		if _, err := oleutil.CallMethod(list, "Add", path, olByValue, 1, m.AttachmentName); err != nil {
			return err
		}
		slog.Info("Opening Outlook draft.", "to", m.To, "attachment", m.AttachmentName)
		// Modal, so the attachment file outlives the draft window.
		_, err = oleutil.CallMethod(mail, "Display", true)
		return err
	})
}
