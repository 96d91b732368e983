package telemetry

import "fmt"

// ErrorMissingEnvVariable error for missing environment variable.
type ErrorMissingEnvVariable struct {
	Vars []string
}

func (e *ErrorMissingEnvVariable) Error() string {
	return fmt.Sprintf("missing environment variable: %v", e.Vars)
}

// InvalidTraceParentError is returned for a malformed W3C traceparent value.
type InvalidTraceParentError struct {
	Value string
}

func (e InvalidTraceParentError) Error() string {
	return "invalid TRACEPARENT value " + e.Value
}
