package render

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/Lllllllleong/inspectionrequest/internal/blankform"
	"github.com/Lllllllleong/inspectionrequest/internal/checklist"
	"github.com/Lllllllleong/inspectionrequest/internal/layout"
	"github.com/Lllllllleong/inspectionrequest/internal/models"
	"github.com/Lllllllleong/inspectionrequest/internal/pdfdoc"
)

// pageTolerance is the allowed difference in points between the template page and
// the layout page size.
const pageTolerance = 1.0

// OverlayRenderer stamps field values and check marks at fixed coordinates onto
// the first page of a static PDF form. Remaining template pages pass through.
type OverlayRenderer struct {
	cfg Config
	reg *checklist.Registry
}

// Strategy returns StrategyOverlay.
func (r *OverlayRenderer) Strategy() string { return StrategyOverlay }

// Check loads the layout and the template PDF and merges an empty overlay onto
// the template. Layout identifiers unknown to the registry are always an error;
// unplaced checklist items are an error unless AllowUnplaced is set.
func (r *OverlayRenderer) Check(ctx context.Context) error {
	l, err := r.layout(ctx)
	if err != nil {
		return err
	}
	cov := l.Check(r.reg)
	if len(cov.Unplaced) > 0 && r.cfg.AllowUnplaced {
		slog.Warn("Layout leaves checklist items unplaced, they will never appear marked.", "items", cov.Unplaced)
	}
	if err := cov.Err(r.cfg.AllowUnplaced); err != nil {
		return newError(ErrRenderFailure, "check layout", err)
	}
	tpl, err := r.template(ctx, l)
	if err != nil {
		return err
	}
	if err := checkTemplate(tpl, l); err != nil {
		return err
	}

	layer, err := Layer(l, &models.RenderContext{}, pdfdoc.Options{DisableCompression: r.cfg.DisableCompression})
	if err != nil {
		return err
	}
	if _, err := merge(tpl, layer); err != nil {
		return err
	}
	return nil
}

// Render draws the overlay page and merges it onto page one of the template.
func (r *OverlayRenderer) Render(ctx context.Context, rc *models.RenderContext) (*models.RenderedDocument, error) {
	logCtx := slog.With("strategy", StrategyOverlay, "templatePdf", r.cfg.TemplatePDF, "serialNo", rc.Form.SerialNo)

	if err := checkEncodable(r.reg, rc); err != nil {
		logCtx.Warn("Submission cannot be drawn with the form font.", "error", err)
		return nil, err
	}

	l, err := r.layout(ctx)
	if err != nil {
		logCtx.Error("Failed to load layout.", "error", err)
		return nil, err
	}
	tpl, err := r.template(ctx, l)
	if err != nil {
		logCtx.Error("Failed to load template PDF.", "error", err)
		return nil, err
	}
	if err := checkTemplate(tpl, l); err != nil {
		logCtx.Error("Template PDF does not match the layout.", "error", err)
		return nil, err
	}

	layer, err := Layer(l, rc, pdfdoc.Options{Title: title(rc), Created: rc.Form.InspectionDate, DisableCompression: r.cfg.DisableCompression})
	if err != nil {
		logCtx.Error("Failed to draw overlay.", "error", err)
		return nil, err
	}
	n, err := pdfdoc.PageCount(layer)
	if err != nil {
		return nil, newError(ErrRenderFailure, "check overlay", err)
	}
	if n != 1 {
		return nil, failure("check overlay", "overlay has %d pages, want 1", n)
	}

	out, err := merge(tpl, layer)
	if err != nil {
		logCtx.Error("Failed to merge overlay onto template.", "error", err)
		return nil, err
	}

	logCtx.Info("Rendered document from overlay.", "bytes", len(out), "marks", len(markedFlags(l, rc)))
	return document(out, rc), nil
}

// Layer draws the standalone overlay page: every non-empty text field placed by
// the layout at its position and the mark glyph at the position of every checked
// flag the layout places. Flags missing from the layout are never drawn.
func Layer(l *layout.Layout, rc *models.RenderContext, opts pdfdoc.Options) ([]byte, error) {
	pdf := pdfdoc.New(pdfdoc.Size{Width: l.Page.Width, Height: l.Page.Height}, opts)
	pdf.SetMargins(0, 0, 0)
	pdf.SetAutoPageBreak(false, 0)
	pdf.AddPage()
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.SetFont(l.Font.Family, "", l.Font.Size)
	for _, id := range l.FieldIDs() {
		v := rc.Text(id)
		if v == "" {
			continue
		}
		p := l.Fields[id]
		pdf.Text(p.X, p.Y, tr(v))
	}

	pdf.SetFont(l.Mark.Font, "", l.Mark.Size)
	for _, id := range markedFlags(l, rc) {
		p := l.Flags[id]
		pdf.Text(p.X, p.Y, l.Mark.Glyph)
	}

	out, err := pdfdoc.Bytes(pdf)
	if err != nil {
		return nil, newError(ErrRenderFailure, "draw overlay", err)
	}
	return out, nil
}

func markedFlags(l *layout.Layout, rc *models.RenderContext) []string {
	var ids []string
	for _, id := range l.FlagIDs() {
		if rc.Flag(id) {
			ids = append(ids, id)
		}
	}
	return ids
}

func (r *OverlayRenderer) layout(ctx context.Context) (*layout.Layout, error) {
	if r.cfg.LayoutFile == "" {
		l, err := layout.Default()
		if err != nil {
			return nil, newError(ErrRenderFailure, "load layout", err)
		}
		return l, nil
	}
	data, err := r.cfg.Fetcher.Fetch(ctx, r.cfg.LayoutFile)
	if err != nil {
		return nil, classify("load layout "+r.cfg.LayoutFile, err)
	}
	l, err := layout.Parse(data)
	if err != nil {
		return nil, newError(ErrRenderFailure, "load layout "+r.cfg.LayoutFile, err)
	}
	return l, nil
}

// template returns the static form PDF, generating the built-in blank form when
// no template is configured.
func (r *OverlayRenderer) template(ctx context.Context, l *layout.Layout) ([]byte, error) {
	if r.cfg.TemplatePDF == "" {
		data, err := blankform.Generate(l, r.reg, pdfdoc.Options{DisableCompression: r.cfg.DisableCompression})
		if err != nil {
			return nil, newError(ErrRenderFailure, "generate blank form", err)
		}
		return data, nil
	}
	data, err := r.cfg.Fetcher.Fetch(ctx, r.cfg.TemplatePDF)
	if err != nil {
		return nil, classify("load template "+r.cfg.TemplatePDF, err)
	}
	return data, nil
}

func checkTemplate(tpl []byte, l *layout.Layout) error {
	n, err := pdfdoc.PageCount(tpl)
	if err != nil {
		return newError(ErrRenderFailure, "read template", err)
	}
	if n < 1 {
		return failure("read template", "template has no pages")
	}
	sizes, err := pdfdoc.PageSizes(tpl)
	if err != nil {
		return newError(ErrRenderFailure, "read template", err)
	}
	want := pdfdoc.Size{Width: l.Page.Width, Height: l.Page.Height}
	if len(sizes) == 0 || !sizes[0].Close(want, pageTolerance) {
		got := pdfdoc.Size{}
		if len(sizes) > 0 {
			got = sizes[0]
		}
		return failure("read template", "page one is %.2fx%.2f pt, layout expects %.2fx%.2f pt", got.Width, got.Height, want.Width, want.Height)
	}
	return nil
}

// merge stamps layer onto page one of tpl. pdfcpu reads the stamp from disk, so
// the layer lives in a scoped temp dir until the merge is done.
func merge(tpl, layer []byte) (out []byte, err error) {
	tempDir, err := os.MkdirTemp("", "inspection-overlay-*")
	if err != nil {
		return nil, newError(ErrFilesystem, "create temp dir", err)
	}
	defer os.RemoveAll(tempDir)

	layerPath := filepath.Join(tempDir, "overlay.pdf")
	if err := os.WriteFile(layerPath, layer, 0o600); err != nil {
		return nil, newError(ErrFilesystem, "write overlay", err)
	}
	out, err = pdfdoc.Stamp(tpl, layerPath, []string{"1"})
	if err != nil {
		return nil, newError(ErrRenderFailure, "merge overlay", err)
	}
	return out, nil
}
