package render

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"html/template"
	"io/fs"
	"log/slog"
	"os"
	"sort"
	"text/template/parse"

	"github.com/Lllllllleong/inspectionrequest/internal/checklist"
	"github.com/Lllllllleong/inspectionrequest/internal/models"
	"github.com/Lllllllleong/inspectionrequest/internal/pdfdoc"
	"github.com/Lllllllleong/inspectionrequest/internal/templates"
)

// TemplateExt is the file extension of form templates.
const TemplateExt = ".gohtml"

// TemplateRenderer binds a RenderContext into an HTML template and lays the
// resulting markup out on A4 pages.
type TemplateRenderer struct {
	cfg Config
	reg *checklist.Registry
}

// Strategy returns StrategyTemplate.
func (r *TemplateRenderer) Strategy() string { return StrategyTemplate }

// Check loads the template and rejects references to identifiers the registry
// does not define.
func (r *TemplateRenderer) Check(_ context.Context) error {
	t, err := r.load()
	if err != nil {
		return err
	}
	refs := References(t)
	if err := r.reg.Check(refs).Err(r.cfg.AllowUnplaced); err != nil {
		return newError(ErrRenderFailure, "check template "+t.Name(), err)
	}
	return nil
}

// Render executes the template with every registry field bound and converts the
// markup to PDF.
func (r *TemplateRenderer) Render(ctx context.Context, rc *models.RenderContext) (*models.RenderedDocument, error) {
	logCtx := slog.With("strategy", StrategyTemplate, "template", r.cfg.TemplateName, "serialNo", rc.Form.SerialNo)

	if err := checkEncodable(r.reg, rc); err != nil {
		logCtx.Warn("Submission cannot be drawn with the form font.", "error", err)
		return nil, err
	}

	t, err := r.load()
	if err != nil {
		logCtx.Error("Failed to load template.", "error", err)
		return nil, err
	}

	var markup bytes.Buffer
	if err := t.Execute(&markup, rc.Data()); err != nil {
		logCtx.Error("Failed to execute template.", "error", err)
		return nil, newError(ErrRenderFailure, "execute template", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	pdf := pdfdoc.New(pdfdoc.A4, pdfdoc.Options{
		Title:              title(rc),
		Created:            rc.Form.InspectionDate,
		DisableCompression: r.cfg.DisableCompression,
	})
	pdf.SetMargins(r.cfg.Margin, r.cfg.Margin, r.cfg.Margin)
	pdf.SetAutoPageBreak(true, r.cfg.Margin)
	pdf.AddPage()

	if err := newHTMLWriter(pdf, r.cfg.FontFamily, r.cfg.FontSize).write(markup.String()); err != nil {
		logCtx.Error("Failed to lay out template markup.", "error", err)
		return nil, newError(ErrRenderFailure, "lay out markup", err)
	}
	out, err := pdfdoc.Bytes(pdf)
	if err != nil {
		logCtx.Error("Failed to write PDF.", "error", err)
		return nil, newError(ErrRenderFailure, "write pdf", err)
	}

	logCtx.Info("Rendered document from template.", "bytes", len(out))
	return document(out, rc), nil
}

// load resolves the named template in TemplateDir first, then in the templates
// embedded in the binary.
func (r *TemplateRenderer) load() (*template.Template, error) {
	name := r.cfg.TemplateName + TemplateExt

	var sources []fs.FS
	if r.cfg.TemplateDir != "" {
		sources = append(sources, os.DirFS(r.cfg.TemplateDir))
	}
	sources = append(sources, templates.FS())

	for _, fsys := range sources {
		data, err := fs.ReadFile(fsys, name)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, newError(ErrFilesystem, "load template", err)
		}
		t, err := template.New(name).Option("missingkey=error").Parse(string(data))
		if err != nil {
			return nil, newError(ErrRenderFailure, "parse template", err)
		}
		return t, nil
	}
	return nil, newError(ErrTemplateNotFound, "load template", fmt.Errorf("%s: %w", name, fs.ErrNotExist))
}

// References returns the sorted, distinct top level data keys a template refers to.
func References(t *template.Template) []string {
	seen := make(map[string]bool)
	for _, tt := range t.Templates() {
		if tt.Tree != nil {
			walk(tt.Tree.Root, seen)
		}
	}
	refs := make([]string, 0, len(seen))
	for k := range seen {
		refs = append(refs, k)
	}
	sort.Strings(refs)
	return refs
}

func walk(n parse.Node, seen map[string]bool) {
	switch n := n.(type) {
	case *parse.ListNode:
		if n == nil {
			return
		}
		for _, c := range n.Nodes {
			walk(c, seen)
		}
	case *parse.ActionNode:
		walk(n.Pipe, seen)
	case *parse.PipeNode:
		if n == nil {
			return
		}
		for _, c := range n.Cmds {
			walk(c, seen)
		}
	case *parse.CommandNode:
		for _, a := range n.Args {
			walk(a, seen)
		}
	case *parse.FieldNode:
		seen[n.Ident[0]] = true
	case *parse.VariableNode:
		if len(n.Ident) > 1 && n.Ident[0] == "$" {
			seen[n.Ident[1]] = true
		}
	case *parse.ChainNode:
		walk(n.Node, seen)
	case *parse.IfNode:
		walkBranch(&n.BranchNode, seen)
	case *parse.RangeNode:
		walkBranch(&n.BranchNode, seen)
	case *parse.WithNode:
		walkBranch(&n.BranchNode, seen)
	case *parse.TemplateNode:
		walk(n.Pipe, seen)
	}
}

func walkBranch(b *parse.BranchNode, seen map[string]bool) {
	walk(b.Pipe, seen)
	walk(b.List, seen)
	walk(b.ElseList, seen)
}
