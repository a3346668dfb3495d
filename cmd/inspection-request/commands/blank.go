package commands

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/Lllllllleong/inspectionrequest/internal/blankform"
	"github.com/Lllllllleong/inspectionrequest/internal/pdfdoc"
	"github.com/spf13/cobra"
)

type blankTemplateConfig struct {
	output string
}

func installBlankTemplateCmd(app *App) {
	var conf blankTemplateConfig

	blankCmd := &cobra.Command{
		Use:   "blank-template",
		Short: "Write the blank form the overlay strategy stamps onto",
		Long: `Write the blank form the overlay strategy stamps onto.

The form is drawn from the configured layout, so its boxes line up with the
overlay coordinates.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			slog.Info("Running blank-template command.")
			if err := app.blankTemplateRun(cmd.Context(), conf); err != nil {
				return err
			}
			fmt.Fprintln(app.out, conf.output)
			return nil
		},
	}
	blankCmd.Flags().StringVarP(&conf.output, "output", "o", "inspection_request_template.pdf", "path the blank form is written to")

	app.cmd.AddCommand(blankCmd)
}

func (a App) blankTemplateRun(ctx context.Context, conf blankTemplateConfig) error {
	l, err := a.layout(ctx)
	if err != nil {
		return err
	}
	data, err := blankform.Generate(l, a.reg, pdfdoc.Options{Title: "Inspection Request"})
	if err != nil {
		return fmt.Errorf("failed to generate blank form: %w", err)
	}
	if err := os.WriteFile(conf.output, data, 0o600); err != nil {
		return fmt.Errorf("failed to write blank form: %w", err)
	}
	return nil
}
