package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/Lllllllleong/inspectionrequest/internal/mailer"
	"github.com/spf13/cobra"
)

type emailConfig struct {
	input  string
	output string
	to     string
	manual bool
}

func installEmailCmd(app *App) {
	var conf emailConfig

	emailCmd := &cobra.Command{
		Use:   "email",
		Short: "Render a submission and open an email draft with the PDF attached",
		Long: `Render a submission and open an email draft with the PDF attached.

On Windows the draft is opened in Outlook. Elsewhere, or with --manual, the PDF is
written to --output and a mailto link is printed for attaching it by hand.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			slog.Info("Running email command.")
			return app.emailRun(cmd.Context(), conf)
		},
	}
	emailCmd.Flags().StringVarP(&conf.input, "input", "i", "", `submission file, "-" reads standard input`)
	emailCmd.Flags().StringVarP(&conf.output, "output", "o", ".", "directory the attachment is written to when attaching by hand")
	emailCmd.Flags().StringVar(&conf.to, "to", "", "recipient (default: the email of the submission)")
	emailCmd.Flags().BoolVar(&conf.manual, "manual", false, "skip the mail client and print a mailto link instead")

	app.cmd.AddCommand(emailCmd)
}

func (a App) emailRun(ctx context.Context, conf emailConfig) error {
	s, err := a.generate(ctx, conf.input)
	if err != nil {
		return err
	}
	rc, err := s.RenderContext()
	if err != nil {
		return err
	}

	to := conf.to
	if to == "" {
		to = s.Form.Email
	}
	if to == "" {
		return errors.New("no recipient: set --to or the email of the submission")
	}
	msg := mailer.NewMessage(rc, s.Document, to)

	if !conf.manual {
		err := a.drafter.Draft(ctx, msg)
		if err == nil {
			fmt.Fprintf(a.out, "Draft opened for %s\n", to)
			return nil
		}
		if !errors.Is(err, mailer.ErrUnsupported) {
			return err
		}
		slog.Warn("Mail client automation is unavailable, attach the document by hand.", "error", err)
	}

	path, err := writeDocument(conf.output, msg.AttachmentName, s.Document)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Attach %s to the draft opened by:\n%s\n", path, msg.MailtoURL())
	return nil
}
