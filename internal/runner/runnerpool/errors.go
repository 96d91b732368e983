package runnerpool

import (
	"fmt"
	"strings"

	"github.com/geckorv/hdlbuild/internal/errors"
	"github.com/geckorv/hdlbuild/internal/graph"
)

// StepEarlyExitError is an error type for steps that didn't run due to an earlier failure.
type StepEarlyExitError struct {
	StepID           string
	FailedDependency string // The dependency that caused the early exit (optional)
}

func (e StepEarlyExitError) Error() string {
	if e.FailedDependency != "" {
		return fmt.Sprintf("Step '%s' did not run due to a failure in '%s'",
			e.StepID, e.FailedDependency)
	}

	return fmt.Sprintf("Step '%s' did not run due to an earlier failure", e.StepID)
}

// NewStepEarlyExitError creates a new StepEarlyExitError.
func NewStepEarlyExitError(stepID, failedDep string) error {
	return errors.New(StepEarlyExitError{
		StepID:           stepID,
		FailedDependency: failedDep,
	})
}

// StepFailedError is an error type for steps that failed during execution.
type StepFailedError struct {
	Err     error
	StepID  string
	Inputs  []string
	Outputs []string
}

func (e StepFailedError) Error() string {
	return fmt.Sprintf("Step '%s' (inputs: %s; outputs: %s) encountered an error during its run: %v",
		e.StepID, strings.Join(e.Inputs, " "), strings.Join(e.Outputs, " "), e.Err)
}

func (e StepFailedError) Unwrap() error {
	return e.Err
}

// NewStepFailedError creates a new StepFailedError for the given step.
func NewStepFailedError(step *graph.Step, err error) error {
	if step == nil {
		return errors.New(StepFailedError{Err: err})
	}

	return errors.New(StepFailedError{
		StepID:  step.ID(),
		Inputs:  step.Dependencies(),
		Outputs: step.Outputs,
		Err:     err,
	})
}

// Errors collects the failures of a run. Steps that never ran are reported
// after the failures that caused them.
func Errors(results []Result) error {
	var (
		failures   = &errors.MultiError{}
		earlyExits = &errors.MultiError{}
	)

	for _, res := range results {
		switch res.Status { //nolint:exhaustive
		case StatusFailed:
			err := res.Err
			if err == nil {
				err = errors.Errorf("exit code %d", res.ExitCode)
			}

			failures = failures.Append(NewStepFailedError(res.Step, err))
		case StatusAncestorFailed, StatusFailFast:
			earlyExits = earlyExits.Append(res.Err)
		}
	}

	if failures.Len() == 0 && earlyExits.Len() == 0 {
		return nil
	}

	return failures.Append(earlyExits.WrappedErrors()...).ErrorOrNil()
}
