package commands

import (
	"io"
	"time"

	"github.com/Lllllllleong/inspectionrequest/internal/mailer"
)

// SetArgs sets the arguments for the command.
func (a *App) SetArgs(args []string) {
	a.cmd.SetArgs(args)
}

// WithDrafter sets the mail client the email command drafts with.
func WithDrafter(d mailer.Drafter) Options {
	return func(o *options) {
		o.drafter = d
	}
}

// WithClock sets the clock of the default inspection date.
func WithClock(now func() time.Time) Options {
	return func(o *options) {
		o.now = now
	}
}

// WithIO sets standard input and output of the commands.
func WithIO(in io.Reader, out io.Writer) Options {
	return func(o *options) {
		o.in = in
		o.out = out
	}
}
