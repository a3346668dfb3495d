// Package render turns a RenderContext into a fixed layout PDF.
//
// Two strategies implement Renderer. The template strategy binds the context into
// an HTML template and lays the markup out as PDF text. The overlay strategy draws
// field values and check marks at fixed coordinates and merges them onto the first
// page of a static PDF form.
package render

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Lllllllleong/inspectionrequest/internal/checklist"
	"github.com/Lllllllleong/inspectionrequest/internal/models"
)

// Renderer produces a PDF from a RenderContext.
type Renderer interface {
	// Strategy names the render strategy.
	Strategy() string
	// Check validates every resource the renderer depends on against the registry.
	Check(ctx context.Context) error
	// Render returns the finished document. On error no document is returned.
	Render(ctx context.Context, rc *models.RenderContext) (*models.RenderedDocument, error)
}

// New builds the renderer selected by cfg.Strategy and checks its resources, so a
// missing template or an unmapped identifier fails here rather than on first use.
func New(ctx context.Context, cfg Config, reg *checklist.Registry) (Renderer, error) {
	c := DefaultConfig()
	applyConfig(&c, cfg)

	var r Renderer
	switch c.Strategy {
	case StrategyTemplate:
		r = &TemplateRenderer{cfg: c, reg: reg}
	case StrategyOverlay:
		r = &OverlayRenderer{cfg: c, reg: reg}
	default:
		return nil, fmt.Errorf("unknown render strategy %q, want %q or %q", c.Strategy, StrategyTemplate, StrategyOverlay)
	}
	if err := r.Check(ctx); err != nil {
		return nil, err
	}
	slog.Debug("Renderer initialized.", "strategy", c.Strategy)
	return r, nil
}

func title(rc *models.RenderContext) string {
	if rc.Form.SerialNo == "" {
		return "Inspection Request"
	}
	return "Inspection Request " + rc.Form.SerialNo
}
