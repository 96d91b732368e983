// Package logger provides loggers for tests.
package logger

import (
	"io"

	"github.com/geckorv/hdlbuild/pkg/log"
	"github.com/geckorv/hdlbuild/pkg/log/formatters"
)

// CreateLogger returns a debug level logger that discards its output.
func CreateLogger() log.Logger {
	return CreateLoggerWithOutput(io.Discard)
}

// CreateLoggerWithOutput returns a debug level logger writing uncolored entries to the given writer.
func CreateLoggerWithOutput(output io.Writer) log.Logger {
	formatter := formatters.NewKeyValueFormatter()
	formatter.DisableTimestamp = true

	return log.New(log.WithOutput(output), log.WithLevel(log.DebugLevel), log.WithFormatter(formatter))
}
