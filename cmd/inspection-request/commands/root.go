// Package commands implements the inspection-request command line.
package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/Lllllllleong/inspectionrequest/internal/checklist"
	"github.com/Lllllllleong/inspectionrequest/internal/cli"
	"github.com/Lllllllleong/inspectionrequest/internal/gcp"
	"github.com/Lllllllleong/inspectionrequest/internal/layout"
	"github.com/Lllllllleong/inspectionrequest/internal/mailer"
	"github.com/Lllllllleong/inspectionrequest/internal/models"
	"github.com/Lllllllleong/inspectionrequest/internal/render"
	"github.com/Lllllllleong/inspectionrequest/internal/session"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/ubuntu/decorate"
)

// CmdName is the name of the command and the base of its config file and
// environment prefix.
const CmdName = "inspection-request"

// App represents the application.
type App struct {
	cmd    *cobra.Command
	viper  *viper.Viper
	config appConfig

	reg *checklist.Registry

	options
}

// appConfig holds the configuration shared by every command.
type appConfig struct {
	Verbosity     int    `mapstructure:"verbose"`
	Strategy      string `mapstructure:"strategy"`
	TemplateDir   string `mapstructure:"template-dir"`
	TemplateName  string `mapstructure:"template-name"`
	TemplatePDF   string `mapstructure:"template-pdf"`
	Layout        string `mapstructure:"layout"`
	AllowUnplaced bool   `mapstructure:"allow-unplaced"`
	DefaultEmail  string `mapstructure:"default-email"`
}

type options struct {
	drafter mailer.Drafter
	now     func() time.Time
	in      io.Reader
	out     io.Writer
}

// Options represents an optional function to override App default values.
type Options func(*options)

// New creates a new App instance with default values.
func New(args ...Options) (*App, error) {
	opts := options{
		drafter: mailer.NewDrafter(),
		now:     time.Now,
		in:      os.Stdin,
		out:     os.Stdout,
	}
	for _, opt := range args {
		opt(&opts)
	}

	a := App{options: opts, reg: checklist.Default()}
	a.cmd = &cobra.Command{
		Use:   CmdName,
		Short: "Render inspection requests to PDF",
		Long: `Render inspection checklist submissions into a fixed layout PDF.

The template strategy lays an HTML template out as PDF. The overlay strategy
stamps field values and check marks onto a static PDF form.`,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// Command parsing has been successful. Returns to not print usage anymore.
			a.cmd.SilenceUsage = true
			cli.SetVerbosity(a.config.Verbosity) // Set verbosity before loading config
			if err := cli.InitViperConfig(CmdName, a.cmd, a.viper); err != nil {
				return err
			}
			if err := a.viper.Unmarshal(&a.config); err != nil {
				return fmt.Errorf("unable to strictly decode configuration into struct: %w", err)
			}
			slog.Debug("Loaded app config.", "config", a.config)

			cli.SetVerbosity(a.config.Verbosity)
			return nil
		},
	}
	a.cmd.SetOut(a.out)
	a.viper = viper.New()

	installRootFlags(&a)
	cli.InstallConfigFlag(a.cmd)
	if err := a.viper.BindPFlags(a.cmd.PersistentFlags()); err != nil {
		return nil, err
	}

	installRenderCmd(&a)
	installEmailCmd(&a)
	installBlankTemplateCmd(&a)
	installFieldsCmd(&a)

	return &a, nil
}

func installRootFlags(app *App) {
	defaults := render.DefaultConfig()
	flags := app.cmd.PersistentFlags()

	flags.CountVarP(&app.config.Verbosity, "verbose", "v", "issue INFO (-v), DEBUG (-vv)")
	flags.StringVarP(&app.config.Strategy, "strategy", "s", defaults.Strategy, fmt.Sprintf("render strategy, %q or %q", render.StrategyTemplate, render.StrategyOverlay))
	flags.StringVar(&app.config.TemplateDir, "template-dir", "", "directory searched for <template-name>.gohtml before the built-in templates")
	flags.StringVar(&app.config.TemplateName, "template-name", defaults.TemplateName, "name of the HTML template")
	flags.StringVar(&app.config.TemplatePDF, "template-pdf", "", "static PDF form of the overlay strategy, a local path or gs://bucket/object (default: built-in blank form)")
	flags.StringVar(&app.config.Layout, "layout", "", "coordinate table of the overlay strategy, a local path or gs://bucket/object (default: built-in layout)")
	flags.BoolVar(&app.config.AllowUnplaced, "allow-unplaced", false, "accept templates and layouts that omit checklist items")
	flags.StringVar(&app.config.DefaultEmail, "default-email", "", "contact email a cleared form starts with")
}

// Run executes the command and associated process, returning an error if any.
func (a App) Run() error {
	return a.cmd.Execute()
}

// UsageError returns if the error is a command parsing or runtime one.
func (a App) UsageError() bool {
	return !a.cmd.SilenceUsage
}

// RootCmd returns the root command.
func (a App) RootCmd() cobra.Command {
	return *a.cmd
}

// fetcher reads the configured resources. A storage client is only created when
// one of them lives in a bucket.
func (a App) fetcher(ctx context.Context) (*gcp.ObjectReader, error) {
	if !isRemote(a.config.TemplatePDF) && !isRemote(a.config.Layout) {
		return gcp.NewObjectReader(nil), nil
	}
	client, err := gcp.NewStorageClient(ctx)
	if err != nil {
		return nil, err
	}
	return gcp.NewObjectReader(client), nil
}

// renderer builds the configured renderer.
func (a App) renderer(ctx context.Context) (r render.Renderer, err error) {
	defer decorate.OnError(&err, "could not set up %s renderer", a.config.Strategy)

	fetcher, err := a.fetcher(ctx)
	if err != nil {
		return nil, err
	}
	return render.New(ctx, render.Config{
		Strategy:      a.config.Strategy,
		TemplateDir:   a.config.TemplateDir,
		TemplateName:  a.config.TemplateName,
		TemplatePDF:   a.config.TemplatePDF,
		LayoutFile:    a.config.Layout,
		AllowUnplaced: a.config.AllowUnplaced,
		Fetcher:       fetcher,
	}, a.reg)
}

// layout returns the configured coordinate table.
func (a App) layout(ctx context.Context) (*layout.Layout, error) {
	if a.config.Layout == "" {
		return layout.Default()
	}
	fetcher, err := a.fetcher(ctx)
	if err != nil {
		return nil, err
	}
	data, err := fetcher.Fetch(ctx, a.config.Layout)
	if err != nil {
		return nil, fmt.Errorf("failed to read layout: %w", err)
	}
	return layout.Parse(data)
}

// session loads the submission at path into a new session. An empty path keeps
// the cleared form, "-" reads standard input.
func (a App) session(path string) (*session.Session, error) {
	s := session.New(a.reg, session.WithClock(a.now), session.WithDefaultEmail(a.config.DefaultEmail))
	if path == "" {
		return s, nil
	}

	var data []byte
	var err error
	if path == "-" {
		data, err = io.ReadAll(a.in)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read submission: %w", err)
	}
	sub, err := models.DecodeSubmission(data)
	if err != nil {
		return nil, err
	}
	if err := s.Load(sub); err != nil {
		return nil, err
	}
	return s, nil
}

func isRemote(location string) bool {
	return strings.HasPrefix(location, "gs://")
}
