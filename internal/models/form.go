package models

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/Lllllllleong/inspectionrequest/internal/checklist"
)

// ErrInvalidSubmission is wrapped by every validation failure of user input.
var ErrInvalidSubmission = errors.New("invalid submission")

// FormData holds the identity fields of one inspection request.
type FormData struct {
	UnitName       string
	UnitNum        string
	Tenant         string
	SerialNo       string
	InspectionDate time.Time
	Email          string
}

// ChecklistFlags maps checklist item identifiers to their checked state.
type ChecklistFlags map[string]bool

// Checked returns the checked identifiers in sorted order.
func (f ChecklistFlags) Checked() []string {
	var ids []string
	for id, v := range f {
		if v {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	return ids
}

// DefaultForm returns the values a cleared form starts from.
func DefaultForm(today time.Time, email string) FormData {
	return FormData{
		UnitName:       "Kenda Park St.",
		UnitNum:        "BS-03/BS-04",
		SerialNo:       "IR-MEP-MEC/ELE/PLM-000",
		InspectionDate: truncateDay(today),
		Email:          email,
	}
}

func truncateDay(t time.Time) time.Time {
	if t.IsZero() {
		return t
	}
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// RenderContext is the complete input of one render: form data, flags and the
// fields derived from them. Every registry identifier resolves to a value.
type RenderContext struct {
	Form  FormData
	Flags ChecklistFlags

	reg *checklist.Registry
}

// NewRenderContext builds a context and rejects flags the registry does not know.
func NewRenderContext(reg *checklist.Registry, form FormData, flags ChecklistFlags) (*RenderContext, error) {
	var unknown []string
	for id := range flags {
		if !reg.IsItem(id) {
			unknown = append(unknown, id)
		}
	}
	if len(unknown) > 0 {
		sort.Strings(unknown)
		return nil, fmt.Errorf("%w: unknown checklist items: %s", ErrInvalidSubmission, strings.Join(unknown, ", "))
	}

	copied := make(ChecklistFlags, len(flags))
	for id, v := range flags {
		copied[id] = v
	}
	form.InspectionDate = truncateDay(form.InspectionDate)
	return &RenderContext{Form: form, Flags: copied, reg: reg}, nil
}

// Registry returns the registry the context was validated against.
func (rc *RenderContext) Registry() *checklist.Registry {
	return rc.reg
}

// Date returns the inspection date formatted as YYYY-MM-DD, or "" when unset.
func (rc *RenderContext) Date() string {
	if rc.Form.InspectionDate.IsZero() {
		return ""
	}
	return rc.Form.InspectionDate.Format(checklist.DateLayout)
}

// Text returns the string value of a text field. Unknown fields are "".
func (rc *RenderContext) Text(id string) string {
	switch id {
	case checklist.FieldUnitName:
		return rc.Form.UnitName
	case checklist.FieldUnitNum:
		return rc.Form.UnitNum
	case checklist.FieldTenant:
		return rc.Form.Tenant
	case checklist.FieldSerialNo:
		return rc.Form.SerialNo
	case checklist.FieldEmail:
		return rc.Form.Email
	case checklist.FieldInspectionDate, checklist.FieldDate:
		return rc.Date()
	}
	return ""
}

// Flag reports whether a checklist item is checked. Unknown items are false.
func (rc *RenderContext) Flag(id string) bool {
	return rc.Flags[id]
}

// Data flattens the context into a name keyed map for template binding.
func (rc *RenderContext) Data() map[string]any {
	data := make(map[string]any)
	for _, f := range rc.reg.Fields() {
		data[f.ID] = rc.Text(f.ID)
	}
	for _, it := range rc.reg.Items() {
		data[it.ID] = rc.Flag(it.ID)
	}
	return data
}

// RenderedDocument is a finished PDF with the names it is offered under.
type RenderedDocument struct {
	data []byte

	// Filename is the download name.
	Filename string
	// AttachmentName is the name used when the document is attached to an email.
	AttachmentName string
}

// NewRenderedDocument copies data into a new document.
func NewRenderedDocument(data []byte, filename, attachmentName string) *RenderedDocument {
	return &RenderedDocument{
		data:           bytes.Clone(data),
		Filename:       filename,
		AttachmentName: attachmentName,
	}
}

// Bytes returns a copy of the PDF content.
func (d *RenderedDocument) Bytes() []byte {
	return bytes.Clone(d.data)
}

// Len returns the size of the PDF in bytes.
func (d *RenderedDocument) Len() int {
	return len(d.data)
}

// WriteTo writes the PDF to w.
func (d *RenderedDocument) WriteTo(w io.Writer) (int64, error) {
	n, err := w.Write(d.data)
	return int64(n), err
}
