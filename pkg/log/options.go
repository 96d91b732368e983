package log

import (
	"io"
)

// Option configures a logger instance.
type Option func(logger *logger)

// WithLevel sets the minimal level of the messages to be written.
func WithLevel(level Level) Option {
	return func(logger *logger) {
		logger.Logger.SetLevel(level.ToLogrusLevel())
	}
}

// WithOutput redirects the logger output.
func WithOutput(output io.Writer) Option {
	return func(logger *logger) {
		logger.Logger.SetOutput(output)
	}
}

// WithFormatter sets the formatter used to render entries.
func WithFormatter(formatter Formatter) Option {
	return func(logger *logger) {
		logger.SetFormatter(formatter)
	}
}
