package util

import (
	"bytes"
	"fmt"
	"os/exec"
	"strings"
	"syscall"

	"github.com/geckorv/hdlbuild/internal/errors"
	"github.com/urfave/cli/v2"
)

// CmdOutput holds the captured streams of a finished command.
type CmdOutput struct {
	Stdout bytes.Buffer
	Stderr bytes.Buffer
}

// GetExitCode returns the exit code of a command. If the error does not
// implement ExitStatus, cli.ExitCoder, is not an exec.ExitError
// or a *errors.MultiError, the error is returned.
func GetExitCode(err error) (int, error) {
	var exitStatus interface {
		ExitStatus() (int, error)
	}

	if errors.As(err, &exitStatus) {
		return exitStatus.ExitStatus()
	}

	var exitCoder cli.ExitCoder

	if errors.As(err, &exitCoder) {
		return exitCoder.ExitCode(), nil
	}

	var exiterr *exec.ExitError
	if ok := errors.As(err, &exiterr); ok {
		if status, ok := exiterr.Sys().(syscall.WaitStatus); ok {
			return status.ExitStatus(), nil
		}

		return exiterr.ExitCode(), nil
	}

	var multiErr *errors.MultiError
	if ok := errors.As(err, &multiErr); ok {
		for _, err := range multiErr.WrappedErrors() {
			exitCode, exitCodeErr := GetExitCode(err)
			if exitCodeErr == nil {
				return exitCode, nil
			}
		}
	}

	return 0, err
}

// ProcessExecutionError is returned when a command fails, contains StdOut and StdErr.
type ProcessExecutionError struct {
	Err        error
	Output     CmdOutput
	WorkingDir string
	Command    string
	Args       []string
}

func (err ProcessExecutionError) Error() string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "Failed to execute \"%s %s\" in %s: %v", err.Command, strings.Join(err.Args, " "), err.WorkingDir, err.Err)

	for _, stream := range []struct {
		name   string
		output string
	}{
		{"stdout", err.Output.Stdout.String()},
		{"stderr", err.Output.Stderr.String()},
	} {
		if output := strings.TrimRight(stream.output, "\n"); output != "" {
			fmt.Fprintf(&sb, "\n%s:\n%s", stream.name, output)
		}
	}

	return sb.String()
}

func (err ProcessExecutionError) ExitStatus() (int, error) {
	return GetExitCode(err.Err)
}

func (err ProcessExecutionError) Unwrap() error {
	return err.Err
}

// shellSafe lists the characters that never need quoting on a command line.
const shellSafe = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789@%+=:,./-_"

// ShellQuote returns word quoted for a POSIX shell. Words made only of safe
// characters are returned unchanged.
func ShellQuote(word string) string {
	if word != "" && strings.Trim(word, shellSafe) == "" {
		return word
	}

	return "'" + strings.ReplaceAll(word, "'", `'"'"'`) + "'"
}
