package commands

import (
	"context"
	"fmt"
	"log/slog"
	"text/tabwriter"

	"github.com/Lllllllleong/inspectionrequest/internal/layout"
	"github.com/spf13/cobra"
)

type fieldsConfig struct {
	check bool
}

func installFieldsCmd(app *App) {
	var conf fieldsConfig

	fieldsCmd := &cobra.Command{
		Use:   "fields",
		Short: "List the form fields and checklist items",
		Long: `List the form fields and checklist items with their position in the configured layout.

With --check the command fails when the layout references unknown identifiers or,
unless --allow-unplaced is set, leaves checklist items without a position.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			slog.Info("Running fields command.")
			return app.fieldsRun(cmd.Context(), conf)
		},
	}
	fieldsCmd.Flags().BoolVar(&conf.check, "check", false, "validate the layout against the checklist")

	app.cmd.AddCommand(fieldsCmd)
}

func (a App) fieldsRun(ctx context.Context, conf fieldsConfig) error {
	l, err := a.layout(ctx)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tKIND\tLABEL\tPOSITION")
	for _, f := range a.reg.Fields() {
		pos := "-"
		if p, ok := l.Fields[f.ID]; ok {
			pos = position(p.Point)
		}
		fmt.Fprintf(w, "%s\tfield\t%s\t%s\n", f.ID, f.Label, pos)
	}
	for _, it := range a.reg.Items() {
		pos := "-"
		if p, ok := l.Flags[it.ID]; ok {
			pos = position(p)
		}
		fmt.Fprintf(w, "%s\titem\t%s\t%s\n", it.ID, it.Label, pos)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	if !conf.check {
		return nil
	}
	return l.Check(a.reg).Err(a.config.AllowUnplaced)
}

func position(p layout.Point) string {
	return fmt.Sprintf("%.1f,%.1f", p.X, p.Y)
}
