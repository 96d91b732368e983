// Package shell runs the external toolchain commands of a build.
package shell

import (
	"context"
	"io"
	"os"
	"os/exec"
	"strings"
	"syscall"
	"time"

	"github.com/geckorv/hdlbuild/internal/errors"
	"github.com/geckorv/hdlbuild/pkg/log"
	"github.com/geckorv/hdlbuild/telemetry"
	"github.com/geckorv/hdlbuild/util"
)

// TraceParentEnv carries the active span to child processes.
const TraceParentEnv = "TRACEPARENT"

// GracefulShutdownDelay is how long an interrupted command gets before it is killed.
const GracefulShutdownDelay = 15 * time.Second

// RunOptions contains the configuration needed to run commands.
type RunOptions struct {
	// Writer and ErrWriter receive the live output; it is captured either way.
	Writer    io.Writer
	ErrWriter io.Writer
	Env       map[string]string

	WorkingDir string
}

// RunCommand runs the given command, discarding the captured output.
func RunCommand(ctx context.Context, l log.Logger, runOpts *RunOptions, command string, args ...string) error {
	_, err := RunCommandWithOutput(ctx, l, runOpts, command, args...)

	return err
}

// RunShellCommand runs a command line through `sh -c`.
func RunShellCommand(ctx context.Context, l log.Logger, runOpts *RunOptions, commandLine string) (*util.CmdOutput, error) {
	return RunCommandWithOutput(ctx, l, runOpts, "sh", "-c", commandLine)
}

// RunCommandWithOutput runs the specified command with the specified arguments in runOpts.WorkingDir.
// A non-zero exit is returned as util.ProcessExecutionError carrying the captured output.
func RunCommandWithOutput(ctx context.Context, l log.Logger, runOpts *RunOptions, command string, args ...string) (*util.CmdOutput, error) {
	output := util.CmdOutput{}

	err := telemetry.TelemeterFromContext(ctx).Collect(ctx, "run_"+command, map[string]any{
		"command": command,
		"args":    strings.Join(args, " "),
		"dir":     runOpts.WorkingDir,
	}, func(ctx context.Context) error {
		l.Debugf("Running command: %s %s", command, strings.Join(args, " "))

		var (
			cmdStdout io.Writer = &output.Stdout
			cmdStderr io.Writer = &output.Stderr
		)

		if runOpts.Writer != nil {
			cmdStdout = io.MultiWriter(runOpts.Writer, &output.Stdout)
		}

		if runOpts.ErrWriter != nil {
			cmdStderr = io.MultiWriter(runOpts.ErrWriter, &output.Stderr)
		}

		cmd := exec.CommandContext(ctx, command, args...)
		cmd.Dir = runOpts.WorkingDir
		cmd.Stdout = cmdStdout
		cmd.Stderr = cmdStderr
		cmd.Env = commandEnv(runOpts.Env, telemetry.TraceParentFromContext(ctx))
		cmd.Cancel = func() error {
			return cmd.Process.Signal(syscall.SIGINT)
		}
		cmd.WaitDelay = GracefulShutdownDelay

		if err := cmd.Run(); err != nil {
			return errors.New(util.ProcessExecutionError{
				Err:        err,
				Args:       args,
				Command:    command,
				Output:     output,
				WorkingDir: cmd.Dir,
			})
		}

		return nil
	})

	return &output, err
}

func commandEnv(extra map[string]string, traceParent string) []string {
	env := os.Environ()

	for key, value := range extra {
		env = append(env, key+"="+value)
	}

	if traceParent != "" {
		env = append(env, TraceParentEnv+"="+traceParent)
	}

	return env
}
