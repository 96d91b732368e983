// Package errors contains helper functions for wrapping errors with stack traces, stack output, and panic recovery.
package errors

import (
	"fmt"

	goerrors "github.com/go-errors/errors"
)

// New creates a new instance of Error.
// If the given value does not contain an stack trace, it will be created.
func New(val any) error {
	if val == nil {
		return nil
	}

	if err, ok := val.(error); ok && ContainsStackTrace(err) {
		return err
	}

	return goerrors.Wrap(val, 1)
}

// Errorf creates a new error with the given format and values.
// It can be used as a drop-in replacement for fmt.Errorf() to provide descriptive errors in return values.
// If none of the given values contains an stack trace, it will be created.
func Errorf(format string, vals ...any) error {
	err := fmt.Errorf(format, vals...) //nolint:err113

	for _, val := range vals {
		if val, ok := val.(error); ok && val != nil && ContainsStackTrace(val) {
			return err
		}
	}

	return goerrors.Wrap(err, 1)
}

// ErrorWithExitCode is a custom error that is used to specify the app exit code.
type ErrorWithExitCode struct {
	Err      error
	ExitCode int
}

func (err ErrorWithExitCode) Error() string {
	return err.Err.Error()
}

func (err ErrorWithExitCode) Unwrap() error {
	return err.Err
}

// ExitStatus returns the configured exit code.
func (err ErrorWithExitCode) ExitStatus() (int, error) {
	return err.ExitCode, nil
}
