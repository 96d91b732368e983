// Package ninja hands a written build graph to the external ninja executor.
package ninja

import (
	"context"
	"io"
	"strconv"

	"github.com/geckorv/hdlbuild/internal/errors"
	"github.com/geckorv/hdlbuild/internal/shell"
	"github.com/geckorv/hdlbuild/pkg/log"
	"github.com/google/shlex"
)

// Runner invokes ninja on graph files.
type Runner struct {
	Writer    io.Writer
	ErrWriter io.Writer
	// Command is the executor argv, e.g. `ninja` or `ninja -v`.
	Command     []string
	WorkingDir  string
	Parallelism int
	KeepGoing   bool
}

// New splits the command line of the executor.
func New(commandLine string, workingDir string, parallelism int, keepGoing bool) (*Runner, error) {
	command, err := shlex.Split(commandLine)
	if err != nil {
		return nil, errors.New(err)
	}

	if len(command) == 0 {
		return nil, errors.New(EmptyCommandError{})
	}

	return &Runner{
		Command:     command,
		WorkingDir:  workingDir,
		Parallelism: parallelism,
		KeepGoing:   keepGoing,
	}, nil
}

// Args returns the arguments passed to the executor for a graph file.
func (runner *Runner) Args(graphFile string) []string {
	args := append([]string{}, runner.Command[1:]...)
	args = append(args, "-f", graphFile)

	if runner.Parallelism > 0 {
		args = append(args, "-j", strconv.Itoa(runner.Parallelism))
	}

	// -k 0 keeps going until every independent step has run.
	if runner.KeepGoing {
		args = append(args, "-k", "0")
	}

	return args
}

// Run executes the graph file. Ninja reports failed commands and their output itself.
func (runner *Runner) Run(ctx context.Context, l log.Logger, graphFile string) error {
	runOpts := &shell.RunOptions{
		Writer:     runner.Writer,
		ErrWriter:  runner.ErrWriter,
		WorkingDir: runner.WorkingDir,
	}

	l.Debugf("Executing %s with %s", graphFile, runner.Command[0])

	return shell.RunCommand(ctx, l, runOpts, runner.Command[0], runner.Args(graphFile)...)
}

// EmptyCommandError is returned for a blank executor command line.
type EmptyCommandError struct{}

func (EmptyCommandError) Error() string {
	return "the ninja command is empty"
}
