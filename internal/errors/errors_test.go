package errors_test

import (
	"fmt"
	"testing"

	"github.com/geckorv/hdlbuild/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type customError struct {
	Module string
}

func (err customError) Error() string {
	return "broken " + err.Module
}

func TestNewKeepsUnderlyingType(t *testing.T) {
	t.Parallel()

	err := errors.New(customError{Module: "a"})
	require.Error(t, err)

	var target customError
	require.True(t, errors.As(err, &target))
	assert.Equal(t, "a", target.Module)
	assert.True(t, errors.ContainsStackTrace(err))
	assert.NotEmpty(t, errors.ErrorStack(err))
}

func TestNewNil(t *testing.T) {
	t.Parallel()

	assert.NoError(t, errors.New(nil))
}

func TestErrorfDoesNotNestStackTraces(t *testing.T) {
	t.Parallel()

	inner := errors.New(customError{Module: "b"})
	outer := errors.Errorf("wrapping: %w", inner)

	assert.Equal(t, "wrapping: broken b", outer.Error())
	assert.True(t, errors.Is(outer, inner))
}

func TestMultiError(t *testing.T) {
	t.Parallel()

	var errs *errors.MultiError

	require.NoError(t, errs.ErrorOrNil())

	errs = errs.Append(customError{Module: "a"})
	errs = errs.Append(fmt.Errorf("plain"))

	err := errs.ErrorOrNil()
	require.Error(t, err)
	assert.Equal(t, 2, errs.Len())
	assert.Contains(t, err.Error(), "2 errors occurred")
	assert.Contains(t, err.Error(), "* broken a")

	var target customError
	assert.True(t, errors.As(err, &target))
	assert.Len(t, errors.UnwrapMultiErrors(err), 2)
}

func TestRecover(t *testing.T) {
	t.Parallel()

	var recovered error

	func() {
		defer errors.Recover(func(cause error) {
			recovered = cause
		})

		panic("boom")
	}()

	require.Error(t, recovered)
	assert.Equal(t, "boom", recovered.Error())
}
