package main

import (
	"context"
	"os"
	"syscall"

	"github.com/geckorv/hdlbuild/cli"
	"github.com/geckorv/hdlbuild/internal/errors"
	"github.com/geckorv/hdlbuild/options"
	"github.com/geckorv/hdlbuild/pkg/log"
	"github.com/geckorv/hdlbuild/pkg/log/formatters"
	"github.com/geckorv/hdlbuild/util"
)

// The main entrypoint for hdlbuild
func main() {
	opts := options.NewBuildOptions()
	l := log.New(log.WithOutput(opts.ErrWriter), log.WithLevel(log.InfoLevel), log.WithFormatter(formatters.NewPrettyFormatter()))

	defer errors.Recover(checkForErrorsAndExit(l))

	ctx, cancel := context.WithCancel(log.ContextWithLogger(context.Background(), l))
	defer cancel()

	util.RegisterSignalInterceptor(cancel, os.Interrupt, syscall.SIGTERM)

	app := cli.NewApp(l, opts)
	err := app.RunContext(ctx, os.Args)

	checkForErrorsAndExit(l)(err)
}

// interruptedExitCode is the conventional exit code of a process stopped by SIGINT.
const interruptedExitCode = 130

// If there is an error, display it in the console and exit with a non-zero exit code. Otherwise, exit 0.
func checkForErrorsAndExit(l log.Logger) func(error) {
	return func(err error) {
		os.Exit(reportError(l, err))
	}
}

// reportError logs err and returns the exit code of the process.
func reportError(l log.Logger, err error) int {
	if err == nil {
		return 0
	}

	if errors.IsContextCanceled(err) {
		l.Warn("Build interrupted, steps that were running have been stopped")
		return interruptedExitCode
	}

	l.Error(err.Error())

	if errStack := errors.ErrorStack(err); errStack != "" {
		l.Trace(errStack)
	}

	// exit with the underlying error code
	exitCode, exitCodeErr := util.GetExitCode(err)
	if exitCodeErr != nil || exitCode == 0 {
		exitCode = 1
	}

	return exitCode
}
