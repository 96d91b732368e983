package telemetry

import (
	"context"

	"go.opentelemetry.io/otel/trace"
)

const (
	telemeterContextKey ctxKey = iota
)

type ctxKey byte

func ContextWithTelemeter(ctx context.Context, tlm *Telemeter) context.Context {
	return context.WithValue(ctx, telemeterContextKey, tlm)
}

// TelemeterFromContext returns the context telemeter, or a no-op one.
func TelemeterFromContext(ctx context.Context) *Telemeter {
	if val := ctx.Value(telemeterContextKey); val != nil {
		if val, ok := val.(*Telemeter); ok && val != nil {
			return val
		}
	}

	return new(Telemeter)
}

// TraceParentFromContext renders the active span as a W3C traceparent, so child processes can join the trace.
func TraceParentFromContext(ctx context.Context) string {
	spanContext := trace.SpanFromContext(ctx).SpanContext()

	if !spanContext.IsValid() {
		return ""
	}

	flags := "00"
	if spanContext.TraceFlags().IsSampled() {
		flags = "01"
	}

	return "00-" + spanContext.TraceID().String() + "-" + spanContext.SpanID().String() + "-" + flags
}
