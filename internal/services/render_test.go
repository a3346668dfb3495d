package services_test

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/Lllllllleong/inspectionrequest/internal/checklist"
	"github.com/Lllllllleong/inspectionrequest/internal/models"
	"github.com/Lllllllleong/inspectionrequest/internal/render"
	"github.com/Lllllllleong/inspectionrequest/internal/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = func() time.Time { return time.Date(2024, 1, 15, 9, 30, 0, 0, time.UTC) }

type fakeRenderer struct {
	err error
}

func (f fakeRenderer) Strategy() string            { return "fake" }
func (f fakeRenderer) Check(context.Context) error { return nil }
func (f fakeRenderer) Render(_ context.Context, rc *models.RenderContext) (*models.RenderedDocument, error) {
	if f.err != nil {
		return nil, f.err
	}
	return models.NewRenderedDocument([]byte("%PDF-1.3 fake"), render.DownloadName(rc), render.AttachmentName(rc)), nil
}

func newFunction(t *testing.T, r render.Renderer) *services.RenderFunction {
	t.Helper()

	f := services.NewRenderFunction(services.RenderConfig{}, checklist.Default(), r, nil)
	services.SetClock(f, fixedNow)
	return f
}

func TestServeHTTP(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		method    string
		body      string
		renderErr error

		wantStatus      int
		wantDisposition string
	}{
		"Renders a submission": {
			method:          http.MethodPost,
			body:            `{"unit_name": "Kenda", "serial_no": "IR-001", "inspection_date": "2024-01-15", "checklist": {"chk_signage_installation": true}}`,
			wantStatus:      http.StatusOK,
			wantDisposition: "attachment; filename=IR_Kenda_2024-01-15.pdf",
		},
		"Empty submission takes the defaults": {
			method:          http.MethodPost,
			body:            `{}`,
			wantStatus:      http.StatusOK,
			wantDisposition: "attachment; filename=IR_Kenda_Park_St._2024-01-15.pdf",
		},

		"Error on GET":              {method: http.MethodGet, wantStatus: http.StatusMethodNotAllowed},
		"Error on malformed JSON":   {method: http.MethodPost, body: `{"unit_name":`, wantStatus: http.StatusBadRequest},
		"Error on unknown key":      {method: http.MethodPost, body: `{"unit": "Kenda"}`, wantStatus: http.StatusBadRequest},
		"Error on unknown item":     {method: http.MethodPost, body: `{"checklist": {"chk_nope": true}}`, wantStatus: http.StatusBadRequest},
		"Error on bad date":         {method: http.MethodPost, body: `{"inspection_date": "15/01/2024"}`, wantStatus: http.StatusBadRequest},
		"Error on missing template": {method: http.MethodPost, body: `{}`, renderErr: &render.Error{Kind: render.ErrTemplateNotFound, Op: "load"}, wantStatus: http.StatusInternalServerError},
		"Error on render failure":   {method: http.MethodPost, body: `{}`, renderErr: errors.New("boom"), wantStatus: http.StatusInternalServerError},
	}
	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			f := newFunction(t, fakeRenderer{err: tc.renderErr})
			req := httptest.NewRequest(tc.method, "/", strings.NewReader(tc.body))
			rec := httptest.NewRecorder()

			f.ServeHTTP(rec, req)

			assert.Equal(t, tc.wantStatus, rec.Code, "Unexpected status, body: %s", rec.Body.String())
			assert.NotEmpty(t, rec.Header().Get("X-Request-Id"), "Every response should carry a request id")
			if tc.wantStatus != http.StatusOK {
				assert.NotEqual(t, "application/pdf", rec.Header().Get("Content-Type"))
				return
			}
			assert.Equal(t, "application/pdf", rec.Header().Get("Content-Type"))
			assert.Equal(t, tc.wantDisposition, rec.Header().Get("Content-Disposition"))
			assert.Equal(t, fmt.Sprint(rec.Body.Len()), rec.Header().Get("Content-Length"))
			assert.True(t, bytes.HasPrefix(rec.Body.Bytes(), []byte("%PDF-")))
			assert.Empty(t, rec.Header().Get("X-Output-Gcs-Uri"), "Nothing is archived without an output bucket")
		})
	}
}

func TestServeHTTPRendersPDF(t *testing.T) {
	t.Parallel()

	r, err := render.New(context.Background(), render.Config{DisableCompression: true}, checklist.Default())
	require.NoError(t, err, "Setup: default renderer should build")

	f := newFunction(t, r)
	body := `{"unit_name": "Kenda", "serial_no": "IR-001", "inspection_date": "2024-01-15", "checklist": {"chk_signage_installation": true}}`
	rec := httptest.NewRecorder()
	f.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body)))

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	out := rec.Body.String()
	assert.True(t, strings.HasPrefix(out, "%PDF-"))
	for _, want := range []string{"Kenda", "IR-001", "2024-01-15"} {
		assert.Contains(t, out, want)
	}
}

func TestServeHTTPRejectsUnencodableText(t *testing.T) {
	t.Parallel()

	r, err := render.New(context.Background(), render.Config{}, checklist.Default())
	require.NoError(t, err, "Setup: default renderer should build")

	f := newFunction(t, r)
	rec := httptest.NewRecorder()
	f.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"unit_name": "كندا"}`)))

	assert.Equal(t, http.StatusBadRequest, rec.Code, "Text the form font cannot draw is a client error")
	assert.Contains(t, rec.Body.String(), "unit_name")
}

func TestProcess(t *testing.T) {
	t.Parallel()

	f := newFunction(t, fakeRenderer{})
	doc, err := f.Process(context.Background(), models.Submission{UnitName: "Kenda", SerialNo: "IR-MEP/TEST:01"})
	require.NoError(t, err)
	assert.Equal(t, "IR_Kenda_2024-01-15.pdf", doc.Filename)
	assert.Equal(t, "IR-MEP_TEST_01.pdf", doc.AttachmentName)

	_, err = f.Process(context.Background(), models.Submission{Checklist: map[string]bool{"chk_nope": true}})
	require.ErrorIs(t, err, render.ErrInvalidInput)
}

func TestArchiveWithoutBucket(t *testing.T) {
	t.Parallel()

	f := newFunction(t, fakeRenderer{})
	uri, err := f.Archive(context.Background(), "req", models.NewRenderedDocument([]byte("%PDF-"), "a.pdf", "a.pdf"))
	require.NoError(t, err)
	assert.Empty(t, uri)
}

func TestProcessUpload(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		object       string
		outputBucket string

		wantErr bool
	}{
		"Ignores PDF objects": {object: "incoming/IR_Kenda_2024-01-15.pdf", outputBucket: "out"},
		"Ignores receipts":    {object: "incoming/IR-001/receipt.json", outputBucket: "out"},
		"Ignores other files": {object: "incoming/notes.txt"},

		"Error without output bucket":  {object: "incoming/IR-001.json", wantErr: true},
		"Error without storage client": {object: "incoming/IR-001.yaml", outputBucket: "out", wantErr: true},
	}
	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			f := services.NewRenderFunction(services.RenderConfig{OutputBucket: tc.outputBucket}, checklist.Default(), fakeRenderer{}, nil)
			resp, err := f.ProcessUpload(context.Background(), models.GCSEvent{Bucket: "in", Name: tc.object})
			if tc.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Nil(t, resp, "Skipped objects produce no response")
		})
	}
}
