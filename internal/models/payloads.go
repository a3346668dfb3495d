package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	"github.com/Lllllllleong/inspectionrequest/internal/checklist"
	"gopkg.in/yaml.v3"
)

// These structs define the wire payloads accepted by the CLI and the render
// function, and the responses the function returns.

// Submission is the serialized form of one inspection request.
type Submission struct {
	UnitName       string          `json:"unit_name" yaml:"unit_name"`
	UnitNum        string          `json:"unit_num" yaml:"unit_num"`
	Tenant         string          `json:"tenant" yaml:"tenant"`
	SerialNo       string          `json:"serial_no" yaml:"serial_no"`
	InspectionDate string          `json:"inspection_date" yaml:"inspection_date"`
	Email          string          `json:"email" yaml:"email"`
	Checklist      map[string]bool `json:"checklist" yaml:"checklist"`
}

// DecodeSubmission parses a JSON or YAML submission. Unknown keys are rejected.
func DecodeSubmission(data []byte) (Submission, error) {
	var s Submission
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return s, fmt.Errorf("%w: empty document", ErrInvalidSubmission)
	}
	if trimmed[0] == '{' {
		dec := json.NewDecoder(bytes.NewReader(trimmed))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&s); err != nil {
			return s, fmt.Errorf("%w: failed to decode JSON: %v", ErrInvalidSubmission, err)
		}
		return s, nil
	}
	dec := yaml.NewDecoder(bytes.NewReader(trimmed))
	dec.KnownFields(true)
	if err := dec.Decode(&s); err != nil {
		return s, fmt.Errorf("%w: failed to decode YAML: %v", ErrInvalidSubmission, err)
	}
	return s, nil
}

// FormData converts the submission into typed form data.
func (s Submission) FormData() (FormData, error) {
	f := FormData{
		UnitName: s.UnitName,
		UnitNum:  s.UnitNum,
		Tenant:   s.Tenant,
		SerialNo: s.SerialNo,
		Email:    s.Email,
	}
	if s.InspectionDate != "" {
		d, err := time.Parse(checklist.DateLayout, s.InspectionDate)
		if err != nil {
			return f, fmt.Errorf("%w: inspection_date %q is not a YYYY-MM-DD date", ErrInvalidSubmission, s.InspectionDate)
		}
		f.InspectionDate = d
	}
	return f, nil
}

// RenderContext validates the submission against reg.
func (s Submission) RenderContext(reg *checklist.Registry) (*RenderContext, error) {
	form, err := s.FormData()
	if err != nil {
		return nil, err
	}
	return NewRenderContext(reg, form, ChecklistFlags(s.Checklist))
}

// SubmissionFrom is the inverse of Submission.FormData.
func SubmissionFrom(form FormData, flags ChecklistFlags) Submission {
	s := Submission{
		UnitName:  form.UnitName,
		UnitNum:   form.UnitNum,
		Tenant:    form.Tenant,
		SerialNo:  form.SerialNo,
		Email:     form.Email,
		Checklist: make(map[string]bool, len(flags)),
	}
	if !form.InspectionDate.IsZero() {
		s.InspectionDate = form.InspectionDate.Format(checklist.DateLayout)
	}
	for id, v := range flags {
		s.Checklist[id] = v
	}
	return s
}

// RenderResponse reports a render stored by the render function.
type RenderResponse struct {
	Status       string `json:"status"`
	RequestID    string `json:"requestId,omitempty"`
	Filename     string `json:"filename"`
	OutputGCSUri string `json:"outputGcsUri,omitempty"`
	Bytes        int    `json:"bytes"`
}

// GCSEvent is the storage payload of an object-finalized CloudEvent.
type GCSEvent struct {
	Bucket string `json:"bucket"`
	Name   string `json:"name"`
}
