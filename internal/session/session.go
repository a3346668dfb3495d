// Package session holds the state of one data entry flow: the form being filled
// in, its checklist and the last document rendered from it.
package session

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/Lllllllleong/inspectionrequest/internal/checklist"
	"github.com/Lllllllleong/inspectionrequest/internal/models"
	"github.com/Lllllllleong/inspectionrequest/internal/render"
)

// Session is request scoped and not safe for concurrent use.
type Session struct {
	Form  models.FormData
	Flags models.ChecklistFlags
	// Document is the last successful render, nil until Generate succeeds.
	Document *models.RenderedDocument

	reg          *checklist.Registry
	defaultEmail string
	now          func() time.Time
}

// Option configures a Session.
type Option func(*Session)

// WithClock sets the clock used for the default inspection date.
func WithClock(now func() time.Time) Option {
	return func(s *Session) { s.now = now }
}

// WithDefaultEmail sets the contact email a cleared form starts with.
func WithDefaultEmail(email string) Option {
	return func(s *Session) { s.defaultEmail = email }
}

// New returns a session holding a cleared form.
func New(reg *checklist.Registry, opts ...Option) *Session {
	s := &Session{reg: reg, now: time.Now}
	for _, o := range opts {
		o(s)
	}
	s.Clear()
	return s
}

// Clear resets the form to its defaults, unchecks every item and discards the
// rendered document.
func (s *Session) Clear() {
	s.Form = models.DefaultForm(s.now(), s.defaultEmail)
	s.Flags = make(models.ChecklistFlags, len(s.reg.Items()))
	for _, it := range s.reg.Items() {
		s.Flags[it.ID] = false
	}
	s.Document = nil
}

// Load replaces the form and checklist with a submission. Fields the submission
// leaves empty keep their current value.
func (s *Session) Load(sub models.Submission) error {
	form, err := sub.FormData()
	if err != nil {
		return err
	}
	for id, v := range sub.Checklist {
		if err := s.SetFlag(id, v); err != nil {
			return err
		}
	}
	merge(&s.Form.UnitName, form.UnitName)
	merge(&s.Form.UnitNum, form.UnitNum)
	merge(&s.Form.Tenant, form.Tenant)
	merge(&s.Form.SerialNo, form.SerialNo)
	merge(&s.Form.Email, form.Email)
	if !form.InspectionDate.IsZero() {
		s.Form.InspectionDate = form.InspectionDate
	}
	return nil
}

func merge(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

// SetFlag checks or unchecks a checklist item.
func (s *Session) SetFlag(id string, checked bool) error {
	if !s.reg.IsItem(id) {
		return fmt.Errorf("%w: unknown checklist item %q", models.ErrInvalidSubmission, id)
	}
	s.Flags[id] = checked
	return nil
}

// RenderContext snapshots the session for a render.
func (s *Session) RenderContext() (*models.RenderContext, error) {
	return models.NewRenderContext(s.reg, s.Form, s.Flags)
}

// Generate renders the current form. Document is replaced only on success; on
// error it is discarded so a stale render is never offered for download.
func (s *Session) Generate(ctx context.Context, r render.Renderer) error {
	logCtx := slog.With("serialNo", s.Form.SerialNo, "strategy", r.Strategy())

	rc, err := s.RenderContext()
	if err != nil {
		s.Document = nil
		return err
	}
	doc, err := r.Render(ctx, rc)
	if err != nil {
		s.Document = nil
		logCtx.Error("Failed to generate document.", "error", err)
		return err
	}
	s.Document = doc
	logCtx.Info("Document generated.", "filename", doc.Filename, "checked", len(s.Flags.Checked()))
	return nil
}
