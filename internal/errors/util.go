package errors

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

type stackTracer interface {
	ErrorStack() string
}

// walk calls fn for every error wrapped by err, descending into multierrors. It stops when fn returns false.
func walk(err error, fn func(error) bool) {
	for _, err := range UnwrapMultiErrors(err) {
		for ; err != nil; err = errors.Unwrap(err) {
			if !fn(err) {
				return
			}
		}
	}
}

// ErrorStack returns the stack traces attached to err and the errors it wraps.
func ErrorStack(err error) string {
	var stacks []string

	walk(err, func(err error) bool {
		if tracer, ok := err.(stackTracer); ok {
			stacks = append(stacks, tracer.ErrorStack())
		}

		return true
	})

	return strings.Join(stacks, "\n")
}

// ContainsStackTrace reports whether err or an error it wraps already carries a stack trace.
func ContainsStackTrace(err error) bool {
	var found bool

	walk(err, func(err error) bool {
		_, found = err.(stackTracer)
		return !found
	})

	return found
}

// IsContextCanceled reports whether err was caused by a cancelled context, e.g. an interrupted build.
func IsContextCanceled(err error) bool {
	return errors.Is(err, context.Canceled)
}

// Recover turns a panic into an error passed to onPanic. It must be called from a defer statement.
func Recover(onPanic func(cause error)) {
	rec := recover()
	if rec == nil {
		return
	}

	err, ok := rec.(error)
	if !ok {
		err = fmt.Errorf("%v", rec) //nolint:err113
	}

	onPanic(New(err))
}

// UnwrapMultiErrors flattens nested multierrors into their leaf errors.
func UnwrapMultiErrors(err error) []error {
	var leaves []error

	pending := []error{err}

	for len(pending) > 0 {
		current := pending[0]
		pending = pending[1:]

		multi := findMulti(current)
		if multi == nil {
			leaves = append(leaves, current)
			continue
		}

		pending = append(pending, multi.Unwrap()...)
	}

	return leaves
}

func findMulti(err error) interface{ Unwrap() []error } {
	for ; err != nil; err = errors.Unwrap(err) {
		if multi, ok := err.(interface{ Unwrap() []error }); ok {
			return multi
		}
	}

	return nil
}
