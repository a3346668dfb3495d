package commands

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/Lllllllleong/inspectionrequest/internal/models"
	"github.com/Lllllllleong/inspectionrequest/internal/session"
	"github.com/spf13/cobra"
)

type renderConfig struct {
	input  string
	output string
}

func installRenderCmd(app *App) {
	var conf renderConfig

	renderCmd := &cobra.Command{
		Use:   "render",
		Short: "Render a submission to PDF",
		Long: `Render a submission to PDF.

The submission is a JSON or YAML document with the form fields and a checklist map.
Fields it leaves empty take the defaults of a cleared form. Without --input the
cleared form is rendered.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			slog.Info("Running render command.")
			path, err := app.renderRun(cmd.Context(), conf)
			if err != nil {
				return err
			}
			fmt.Fprintln(app.out, path)
			return nil
		},
	}
	renderCmd.Flags().StringVarP(&conf.input, "input", "i", "", `submission file, "-" reads standard input`)
	renderCmd.Flags().StringVarP(&conf.output, "output", "o", ".", "directory the PDF is written to")

	app.cmd.AddCommand(renderCmd)
}

// renderRun renders the submission and returns the path of the written PDF.
func (a App) renderRun(ctx context.Context, conf renderConfig) (string, error) {
	s, err := a.generate(ctx, conf.input)
	if err != nil {
		return "", err
	}
	return writeDocument(conf.output, s.Document.Filename, s.Document)
}

// generate loads the submission at input and renders it.
func (a App) generate(ctx context.Context, input string) (*session.Session, error) {
	s, err := a.session(input)
	if err != nil {
		return nil, err
	}
	r, err := a.renderer(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.Generate(ctx, r); err != nil {
		return nil, err
	}
	return s, nil
}

func writeDocument(dir, name string, doc *models.RenderedDocument) (string, error) {
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, doc.Bytes(), 0o600); err != nil {
		return "", fmt.Errorf("failed to write document: %w", err)
	}
	slog.Info("Document written.", "path", path, "bytes", doc.Len())
	return path, nil
}
