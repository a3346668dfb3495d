package render_test

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/Lllllllleong/inspectionrequest/internal/checklist"
	"github.com/Lllllllleong/inspectionrequest/internal/layout"
	"github.com/Lllllllleong/inspectionrequest/internal/models"
	"github.com/Lllllllleong/inspectionrequest/internal/pdfdoc"
	"github.com/Lllllllleong/inspectionrequest/internal/render"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const markOp = "(4) Tj"

func kendaContext(t *testing.T) *models.RenderContext {
	t.Helper()

	rc, err := models.NewRenderContext(checklist.Default(), models.FormData{
		UnitName:       "Kenda",
		SerialNo:       "IR-001",
		InspectionDate: time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC),
	}, models.ChecklistFlags{"chk_signage_installation": true})
	require.NoError(t, err, "Setup: render context should be valid")
	return rc
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()

	p := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(p, []byte(content), 0o600), "Setup: could not write %s", name)
	return p
}

func loadLayout(t *testing.T, path string) *layout.Layout {
	t.Helper()

	var l *layout.Layout
	var err error
	if path == "" {
		l, err = layout.Default()
	} else {
		l, err = layout.Load(path)
	}
	require.NoError(t, err, "Setup: layout should load")
	return l
}

func TestNewStrategies(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		strategy string

		want    string
		wantErr bool
	}{
		"Default strategy is template": {want: render.StrategyTemplate},
		"Template strategy":            {strategy: render.StrategyTemplate, want: render.StrategyTemplate},
		"Overlay strategy":             {strategy: render.StrategyOverlay, want: render.StrategyOverlay},

		"Error on unknown strategy": {strategy: "docx", wantErr: true},
	}
	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			r, err := render.New(context.Background(), render.Config{Strategy: tc.strategy}, checklist.Default())
			if tc.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, r.Strategy())
		})
	}
}

func TestTemplateRender(t *testing.T) {
	t.Parallel()

	r, err := render.New(context.Background(), render.Config{DisableCompression: true}, checklist.Default())
	require.NoError(t, err)

	doc, err := r.Render(context.Background(), kendaContext(t))
	require.NoError(t, err)

	out := doc.Bytes()
	require.True(t, bytes.HasPrefix(out, []byte("%PDF-")), "Output should be a PDF")
	assert.Contains(t, string(out), "Kenda")
	assert.Contains(t, string(out), "IR-001")
	assert.Contains(t, string(out), "2024-01-15")
	assert.Equal(t, 1, bytes.Count(out, []byte(markOp)), "Exactly one item should be ticked")
	assert.Equal(t, "IR_Kenda_2024-01-15.pdf", doc.Filename)
	assert.Equal(t, "IR-001.pdf", doc.AttachmentName)
	require.NoError(t, pdfdoc.Validate(out))
}

func TestRenderIsDeterministic(t *testing.T) {
	t.Parallel()

	r, err := render.New(context.Background(), render.Config{}, checklist.Default())
	require.NoError(t, err)

	first, err := r.Render(context.Background(), kendaContext(t))
	require.NoError(t, err)
	second, err := r.Render(context.Background(), kendaContext(t))
	require.NoError(t, err)

	assert.Equal(t, first.Bytes(), second.Bytes(), "Identical input should render identical bytes")
}

func TestTemplateErrors(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		name     string
		template string

		wantNewErr    error
		wantRenderErr error
	}{
		"Error when template is missing":    {name: "missing", wantNewErr: render.ErrTemplateNotFound},
		"Error on unknown field reference":  {name: "unknown", template: "<p>{{.not_a_field}}</p>", wantNewErr: render.ErrRenderFailure},
		"Error on template syntax":          {name: "syntax", template: "<p>{{.unit_name</p>", wantNewErr: render.ErrRenderFailure},
		"Error on unbalanced markup":        {name: "unbalanced", template: "<p><b>{{.unit_name}}</p>", wantRenderErr: render.ErrRenderFailure},
		"Error on unclosed markup":          {name: "unclosed", template: "<p>{{.unit_name}}", wantRenderErr: render.ErrRenderFailure},
		"Error on unsupported markup":       {name: "table", template: "<table><tr><td>{{.unit_name}}</td></tr></table>", wantRenderErr: render.ErrRenderFailure},
		"Error on stray closing tag":        {name: "stray", template: "{{.unit_name}}</p>", wantRenderErr: render.ErrRenderFailure},
		"Error when items are not rendered": {name: "partial", template: "<p>{{.unit_name}}</p>", wantNewErr: render.ErrRenderFailure},
	}
	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			dir := t.TempDir()
			if tc.template != "" {
				writeFile(t, dir, tc.name+render.TemplateExt, tc.template)
			}
			cfg := render.Config{TemplateDir: dir, TemplateName: tc.name, AllowUnplaced: tc.name != "partial"}

			r, err := render.New(context.Background(), cfg, checklist.Default())
			if tc.wantNewErr != nil {
				require.ErrorIs(t, err, tc.wantNewErr)
				var re *render.Error
				require.ErrorAs(t, err, &re)
				return
			}
			require.NoError(t, err)

			doc, err := r.Render(context.Background(), kendaContext(t))
			require.ErrorIs(t, err, tc.wantRenderErr)
			assert.Nil(t, doc, "No partial output should be returned")
		})
	}
}

func TestTemplateDirOverridesEmbedded(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeFile(t, dir, "inspection"+render.TemplateExt, `<html><body>
<h1 align="center">Custom &amp; Local</h1>
<ul><li><i>Unit</i> {{.unit_name}}</li><li><a href="mailto:{{.email}}">Mail</a></li></ul>
<center>{{.serial_no}}</center>
<p align="right">{{if .chk_signage_installation}}<check>{{else}}<box>{{end}} Signage</p>
</body></html>`)

	r, err := render.New(context.Background(), render.Config{TemplateDir: dir, AllowUnplaced: true, DisableCompression: true}, checklist.Default())
	require.NoError(t, err)

	doc, err := r.Render(context.Background(), kendaContext(t))
	require.NoError(t, err)
	out := string(doc.Bytes())
	assert.Contains(t, out, "Custom & Local")
	assert.Contains(t, out, "Kenda")
	assert.Contains(t, out, "IR-001")
	assert.Contains(t, out, markOp)
}

func TestReferences(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeFile(t, dir, "refs"+render.TemplateExt, `{{define "x"}}{{$.tenant}}{{end}}{{if .chk_a}}{{.unit_name}}{{else}}{{with .email}}{{.}}{{end}}{{end}}{{template "x" .}}`)

	reg, err := checklist.New(
		[]checklist.Field{{ID: "unit_name"}, {ID: "email"}, {ID: "tenant"}},
		[]checklist.Category{{ID: "c", Groups: []checklist.Group{{Items: []checklist.Item{{ID: "chk_a"}}}}}},
	)
	require.NoError(t, err)

	_, err = render.New(context.Background(), render.Config{TemplateDir: dir, TemplateName: "refs"}, reg)
	require.NoError(t, err, "Every reference is known and every item is used")
}

func TestOverlayRender(t *testing.T) {
	t.Parallel()

	r, err := render.New(context.Background(), render.Config{Strategy: render.StrategyOverlay, DisableCompression: true}, checklist.Default())
	require.NoError(t, err)
	doc, err := r.Render(context.Background(), kendaContext(t))
	require.NoError(t, err)
	out := doc.Bytes()
	require.True(t, bytes.HasPrefix(out, []byte("%PDF-")))

	n, err := pdfdoc.PageCount(out)
	require.NoError(t, err)
	assert.Equal(t, 2, n, "Template pages after the first should pass through")
	require.NoError(t, pdfdoc.Validate(out))
	assert.Equal(t, "IR_Kenda_2024-01-15.pdf", doc.Filename)

	streams, err := pdfdoc.Streams(out)
	require.NoError(t, err)
	merged := bytes.Join(streams, nil)
	for _, want := range []string{"(Kenda) Tj", "(IR-001) Tj", "(2024-01-15) Tj"} {
		assert.Contains(t, string(merged), want, "Merged document should carry the stamped value")
	}
	assert.Equal(t, 1, bytes.Count(merged, []byte(markOp)), "Only the checked item should be marked")
}

func TestRenderRejectsUnencodableText(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		form models.FormData

		wantErr bool
	}{
		"Latin-1 accents are drawn": {form: models.FormData{UnitName: "Zoë Café", Tenant: "Müller €"}},

		"Error on Arabic unit name": {form: models.FormData{UnitName: "كندا"}, wantErr: true},
		"Error on CJK tenant":       {form: models.FormData{UnitName: "Kenda", Tenant: "Zoë 中文"}, wantErr: true},
		"Error on emoji serial":     {form: models.FormData{SerialNo: "IR-001 ✅"}, wantErr: true},
	}
	for name, tc := range tests {
		for _, strategy := range []string{render.StrategyTemplate, render.StrategyOverlay} {
			t.Run(name+" with "+strategy, func(t *testing.T) {
				t.Parallel()

				r, err := render.New(context.Background(), render.Config{Strategy: strategy}, checklist.Default())
				require.NoError(t, err, "Setup: renderer should build")
				rc, err := models.NewRenderContext(checklist.Default(), tc.form, nil)
				require.NoError(t, err, "Setup: render context should be valid")

				doc, err := r.Render(context.Background(), rc)
				if tc.wantErr {
					require.ErrorIs(t, err, render.ErrInvalidInput)
					assert.Nil(t, doc, "No document should be returned")
					return
				}
				require.NoError(t, err)
				assert.True(t, bytes.HasPrefix(doc.Bytes(), []byte("%PDF-")))
			})
		}
	}
}

func TestOverlayErrors(t *testing.T) {
	t.Parallel()

	letter := pdfdoc.New(pdfdoc.Size{Width: 612, Height: 792}, pdfdoc.Options{})
	letter.AddPage()
	letterPDF, err := pdfdoc.Bytes(letter)
	require.NoError(t, err)

	dir := t.TempDir()
	letterPath := filepath.Join(dir, "letter.pdf")
	require.NoError(t, os.WriteFile(letterPath, letterPDF, 0o600))
	garbage := writeFile(t, dir, "garbage.pdf", "not a pdf")
	unknownLayout := writeFile(t, dir, "unknown.yaml", "page: {width: 595.28, height: 841.89}\nflags:\n  chk_nope: {x: 1, y: 1}\n")

	tests := map[string]struct {
		cfg render.Config

		wantErr error
	}{
		"Error when template PDF is missing":      {cfg: render.Config{TemplatePDF: filepath.Join(dir, "missing.pdf")}, wantErr: render.ErrTemplateNotFound},
		"Error when layout file is missing":       {cfg: render.Config{LayoutFile: filepath.Join(dir, "missing.yaml")}, wantErr: render.ErrTemplateNotFound},
		"Error when template page size differs":   {cfg: render.Config{TemplatePDF: letterPath}, wantErr: render.ErrRenderFailure},
		"Error when template is not a PDF":        {cfg: render.Config{TemplatePDF: garbage}, wantErr: render.ErrRenderFailure},
		"Error when layout names unknown items":   {cfg: render.Config{LayoutFile: unknownLayout, AllowUnplaced: true}, wantErr: render.ErrRenderFailure},
		"Error when layout leaves items unplaced": {cfg: render.Config{LayoutFile: writeFile(t, dir, "empty.yaml", "page: {width: 595.28, height: 841.89}\n")}, wantErr: render.ErrRenderFailure},
	}
	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			tc.cfg.Strategy = render.StrategyOverlay
			_, err := render.New(context.Background(), tc.cfg, checklist.Default())
			require.ErrorIs(t, err, tc.wantErr)
		})
	}
}

// The overlay layer is inspected on its own so the exact text positions can be
// matched.
func TestLayer(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	partial := writeFile(t, dir, "partial.yaml", `page: {width: 595.28, height: 841.89}
fields:
  unit_name: {x: 120, y: 92, label_x: 44}
  tenant: {x: 120, y: 132, label_x: 44}
flags:
  chk_rcp_3rd_fix: {x: 45, y: 312}
`)

	tests := map[string]struct {
		layoutFile string

		wantOps   []string
		wantMarks int
	}{
		"Default layout places values and the signage mark": {
			wantOps: []string{
				"BT 120.00 749.89 Td (Kenda) Tj ET",
				"BT 384.00 749.89 Td (IR-001) Tj ET",
				"BT 384.00 729.89 Td (2024-01-15) Tj ET",
				"BT 45.00 649.89 Td (4) Tj ET",
			},
			wantMarks: 1,
		},
		"Flag missing from the layout is never marked": {
			layoutFile: partial,
			wantOps:    []string{"BT 120.00 749.89 Td (Kenda) Tj ET"},
			wantMarks:  0,
		},
	}
	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			l := loadLayout(t, tc.layoutFile)
			out, err := render.Layer(l, kendaContext(t), pdfdoc.Options{DisableCompression: true})
			require.NoError(t, err)

			n, err := pdfdoc.PageCount(out)
			require.NoError(t, err)
			assert.Equal(t, 1, n, "Overlay should be a single page")
			for _, op := range tc.wantOps {
				assert.Contains(t, string(out), op)
			}
			assert.Equal(t, tc.wantMarks, bytes.Count(out, []byte(markOp)))
			assert.NotContains(t, string(out), "() Tj", "Empty fields should be skipped")

			again, err := render.Layer(l, kendaContext(t), pdfdoc.Options{DisableCompression: true})
			require.NoError(t, err)
			assert.Equal(t, out, again, "Overlay should be byte-identical for identical input")
		})
	}
}

func TestKindOf(t *testing.T) {
	t.Parallel()

	_, err := render.New(context.Background(), render.Config{TemplateName: "missing"}, checklist.Default())
	require.Error(t, err)
	assert.Equal(t, render.ErrTemplateNotFound, render.KindOf(err))

	_, err = models.Submission{Checklist: map[string]bool{"chk_x": true}}.RenderContext(checklist.Default())
	assert.Equal(t, render.ErrInvalidInput, render.KindOf(err))

	assert.Nil(t, render.KindOf(os.ErrClosed))
}
