// Package cli assembles the hdlbuild command line application.
package cli

import (
	"context"
	"os"
	"path/filepath"

	"github.com/geckorv/hdlbuild/cli/commands"
	"github.com/geckorv/hdlbuild/cli/commands/build"
	"github.com/geckorv/hdlbuild/cli/commands/common"
	"github.com/geckorv/hdlbuild/cli/flags"
	"github.com/geckorv/hdlbuild/internal/errors"
	"github.com/geckorv/hdlbuild/options"
	"github.com/geckorv/hdlbuild/pkg/log"
	"github.com/geckorv/hdlbuild/pkg/log/formatters"
	"github.com/geckorv/hdlbuild/telemetry"
	"github.com/urfave/cli/v2"
)

const AppName = "hdlbuild"

// Version is set at link time.
var Version = "dev"

// App is the hdlbuild application.
type App struct {
	*cli.App
	opts      *options.BuildOptions
	telemeter *telemetry.Telemeter
}

// NewApp creates the hdlbuild application writing through the given logger.
func NewApp(l log.Logger, opts *options.BuildOptions) *App {
	app := &App{App: cli.NewApp(), opts: opts}

	app.Name = AppName
	app.Usage = "Resolves hardware module dependencies and builds the programs, modules and simulators of a project."
	app.UsageText = "hdlbuild [global options] [command] [arguments]"
	app.Version = Version
	app.Writer = opts.Writer
	app.ErrWriter = opts.ErrWriter
	app.Flags = flags.NewGlobalFlags(opts)
	app.Commands = commands.NewCommands(l, opts)
	app.DefaultCommand = build.CommandName
	app.Before = app.before(l)
	// Errors are reported by main, which also picks the exit code.
	app.ExitErrHandler = func(*cli.Context, error) {}

	return app
}

// RunContext runs the application and shuts telemetry down afterwards.
func (app *App) RunContext(ctx context.Context, args []string) error {
	err := app.App.RunContext(ctx, args)

	if shutdownErr := app.telemeter.Shutdown(context.WithoutCancel(ctx)); shutdownErr != nil && err == nil {
		err = shutdownErr
	}

	app.telemeter = nil

	return err
}

func (app *App) before(l log.Logger) cli.BeforeFunc {
	return func(ctx *cli.Context) error {
		if err := setupLogger(l, app.opts); err != nil {
			return err
		}

		if err := initialSetup(app.opts); err != nil {
			return err
		}

		telemeter, err := telemetry.NewTelemeter(ctx.Context, AppName, app.Version, app.opts.Writer, app.opts.Telemetry)
		if err != nil {
			return err
		}

		app.telemeter = telemeter
		ctx.Context = telemetry.ContextWithTelemeter(log.ContextWithLogger(ctx.Context, l), telemeter)

		return nil
	}
}

func setupLogger(l log.Logger, opts *options.BuildOptions) error {
	format := opts.LogFormat
	if !common.ColorsEnabled(opts, opts.ErrWriter) {
		format += ",no-color"
	}

	formatter, err := formatters.ParseFormat(format)
	if err != nil {
		return err
	}

	level, err := log.ParseLevel(opts.LogLevel)
	if err != nil {
		return err
	}

	l.SetOptions(log.WithLevel(level), log.WithFormatter(formatter), log.WithOutput(opts.ErrWriter))

	return nil
}

func initialSetup(opts *options.BuildOptions) error {
	if opts.WorkingDir == "" {
		currentDir, err := os.Getwd()
		if err != nil {
			return errors.New(err)
		}

		opts.WorkingDir = currentDir
	}

	workingDir, err := filepath.Abs(opts.WorkingDir)
	if err != nil {
		return errors.New(err)
	}

	opts.WorkingDir = workingDir

	if opts.SelfCommand == "" {
		executable, err := os.Executable()
		if err != nil {
			return errors.New(err)
		}

		opts.SelfCommand = executable
	}

	return nil
}
