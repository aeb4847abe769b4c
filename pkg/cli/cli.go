package cli

import (
	"context"
	"errors"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/incidex/pkg/cli/config"
	"github.com/secmon-lab/incidex/pkg/domain/interfaces"
	"github.com/secmon-lab/incidex/pkg/domain/model"
	"github.com/secmon-lab/incidex/pkg/usecase"
	"github.com/urfave/cli/v3"
)

const defaultEnvFile = ".env"

// Option configures Run
type Option func(*runner)

// WithOutput sets where command results are written. Defaults to stdout.
func WithOutput(w io.Writer) Option {
	return func(r *runner) {
		r.out = w
	}
}

// WithLogOutput sets where logs are written. Defaults to stderr.
func WithLogOutput(w io.Writer) Option {
	return func(r *runner) {
		r.logOut = w
	}
}

// WithAPI replaces the backend client built from flags
func WithAPI(api interfaces.IncidentAPI) Option {
	return func(r *runner) {
		r.api = api
	}
}

// WithNotifier replaces the notifier built from flags
func WithNotifier(n interfaces.Notifier) Option {
	return func(r *runner) {
		r.notifier = n
	}
}

// runner carries the global configuration shared by every subcommand
type runner struct {
	out      io.Writer
	logOut   io.Writer
	api      interfaces.IncidentAPI
	notifier interfaces.Notifier

	loggerCfg  config.Logger
	backendCfg config.Backend
	slackCfg   config.Slack
	displayCfg config.Display

	display *model.DisplayConfig
}

// Run runs the CLI application
func Run(ctx context.Context, args []string, opts ...Option) error {
	r := &runner{out: os.Stdout, logOut: os.Stderr}
	for _, opt := range opts {
		opt(r)
	}

	// Flag sources are read while parsing, so .env must be loaded before the
	// command runs.
	if err := loadEnvFile(envFileFromArgs(args)); err != nil {
		return err
	}

	app := &cli.Command{
		Name:      "incidex",
		Usage:     "Web and terminal client for the incident triage API",
		Version:   "0.1.0",
		Writer:    r.out,
		ErrWriter: r.logOut,
		Flags: joinFlags(
			r.loggerCfg.Flags(),
			r.backendCfg.Flags(),
			r.slackCfg.Flags(),
			r.displayCfg.Flags(),
			[]cli.Flag{
				// Declared for parsing and help only; envFileFromArgs reads it
				// before the app runs
				&cli.StringFlag{
					Name:  "env-file",
					Usage: "Environment file loaded before reading flags",
					Value: defaultEnvFile,
				},
			},
		),
		Before: r.before,
		Commands: []*cli.Command{
			cmdServe(r),
			cmdList(r),
			cmdShow(r),
			cmdCreate(r),
			cmdUpdate(r),
			cmdDelete(r),
			cmdHealth(r),
		},
	}

	if err := app.Run(ctx, args); err != nil {
		return goerr.Wrap(err, "CLI execution failed")
	}

	return nil
}

func (r *runner) before(ctx context.Context, c *cli.Command) (context.Context, error) {
	r.loggerCfg.Output = r.logOut
	logger, err := r.loggerCfg.Configure()
	if err != nil {
		return nil, err
	}
	slog.SetDefault(logger)
	ctx = ctxlog.With(ctx, logger)

	display, err := r.displayCfg.Configure()
	if err != nil {
		return nil, err
	}
	r.display = display

	logger.Debug("configuration loaded",
		"backend", r.backendCfg,
		"slack", r.slackCfg,
		"display", r.displayCfg,
	)
	return ctx, nil
}

// newStore wires the backend client and notifiers into a store
func (r *runner) newStore() (*usecase.Store, interfaces.IncidentAPI, error) {
	api := r.api
	if api == nil {
		client, err := r.backendCfg.Configure()
		if err != nil {
			return nil, nil, err
		}
		api = client
	}

	notifier := r.notifier
	if notifier == nil {
		notifiers := usecase.MultiNotifier{&usecase.LogNotifier{}}
		webhook, err := r.slackCfg.Configure()
		if err != nil {
			return nil, nil, err
		}
		if webhook != nil {
			notifiers = append(notifiers, webhook)
		}
		notifier = notifiers
	}

	return usecase.NewStore(api, usecase.WithNotifier(notifier)), api, nil
}

func envFileFromArgs(args []string) string {
	for i, arg := range args {
		switch {
		case arg == "--env-file" && i+1 < len(args):
			return args[i+1]
		case strings.HasPrefix(arg, "--env-file="):
			return strings.TrimPrefix(arg, "--env-file=")
		}
	}
	return defaultEnvFile
}

// loadEnvFile loads variables that are not already set. A missing default
// file is not an error.
func loadEnvFile(path string) error {
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) && path == defaultEnvFile {
			return nil
		}
		return goerr.Wrap(err, "failed to load env file", goerr.V("path", path))
	}
	return nil
}
