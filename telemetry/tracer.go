package telemetry

import (
	"context"
	"io"
	"strconv"
	"strings"

	"github.com/geckorv/hdlbuild/internal/errors"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.37.0"
	"go.opentelemetry.io/otel/trace"
)

const (
	noneTraceExporterType     traceExporterType = "none"
	consoleTraceExporterType  traceExporterType = "console"
	otlpHTTPTraceExporterType traceExporterType = "otlpHttp"
	otlpGrpcTraceExporterType traceExporterType = "otlpGrpc"
	httpTraceExporterType     traceExporterType = "http"

	traceParentParts = 4
)

type traceExporterType string

type Tracer struct {
	trace.Tracer
	provider     *sdktrace.TracerProvider
	spanExporter sdktrace.SpanExporter
	parent       *trace.SpanContext
}

// NewTracer creates and configures the traces collection. It returns nil when no exporter is selected.
func NewTracer(ctx context.Context, appName, appVersion string, writer io.Writer, opts *Options) (*Tracer, error) {
	spanExporter, err := NewTraceExporter(ctx, writer, opts)
	if err != nil {
		return nil, errors.New(err)
	}

	if spanExporter == nil {
		return nil, nil
	}

	parent, err := ParseTraceParent(opts.TraceParent)
	if err != nil {
		return nil, err
	}

	provider, err := newTraceProvider(spanExporter, appName, appVersion)
	if err != nil {
		return nil, errors.New(err)
	}

	otel.SetTracerProvider(provider)

	return &Tracer{
		Tracer:       provider.Tracer(appName),
		provider:     provider,
		spanExporter: spanExporter,
		parent:       parent,
	}, nil
}

// ParseTraceParent parses a W3C traceparent header value. An empty value yields nil.
func ParseTraceParent(value string) (*trace.SpanContext, error) {
	if value == "" {
		return nil, nil
	}

	parts := strings.Split(value, "-")
	if len(parts) != traceParentParts {
		return nil, errors.New(InvalidTraceParentError{Value: value})
	}

	traceIDHex, spanIDHex, traceFlagsStr := parts[1], parts[2], parts[3]

	parsedFlag, err := strconv.Atoi(traceFlagsStr)
	if err != nil {
		return nil, errors.Errorf("invalid trace flags: %w", err)
	}

	traceFlags := trace.FlagsSampled
	if parsedFlag == 0 {
		traceFlags = 0
	}

	traceID, err := trace.TraceIDFromHex(traceIDHex)
	if err != nil {
		return nil, errors.New(err)
	}

	spanID, err := trace.SpanIDFromHex(spanIDHex)
	if err != nil {
		return nil, errors.New(err)
	}

	spanContext := trace.NewSpanContext(trace.SpanContextConfig{
		TraceID:    traceID,
		SpanID:     spanID,
		Remote:     true,
		TraceFlags: traceFlags,
	})

	return &spanContext, nil
}

func newTraceProvider(exp sdktrace.SpanExporter, appName, appVersion string) (*sdktrace.TracerProvider, error) {
	r, err := resource.Merge(
		resource.Default(),
		resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceName(appName),
			semconv.ServiceVersion(appVersion),
		),
	)
	if err != nil {
		return nil, errors.New(err)
	}

	return sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exp),
		sdktrace.WithResource(r),
	), nil
}

// NewTraceExporter creates a new exporter based on the telemetry options.
func NewTraceExporter(ctx context.Context, writer io.Writer, opts *Options) (sdktrace.SpanExporter, error) {
	exporterType := traceExporterType(opts.TraceExporter)
	if exporterType == "" {
		exporterType = noneTraceExporterType
	}

	switch exporterType { //nolint:exhaustive
	case httpTraceExporterType:
		if opts.TraceExporterHTTPEndpoint == "" {
			return nil, &ErrorMissingEnvVariable{
				Vars: []string{"HDLBUILD_TELEMETRY_TRACE_EXPORTER_HTTP_ENDPOINT"},
			}
		}

		config := []otlptracehttp.Option{otlptracehttp.WithEndpoint(opts.TraceExporterHTTPEndpoint)}

		if opts.TraceExporterInsecureEndpoint {
			config = append(config, otlptracehttp.WithInsecure())
		}

		return otlptracehttp.New(ctx, config...)
	case otlpHTTPTraceExporterType:
		var config []otlptracehttp.Option
		if opts.TraceExporterInsecureEndpoint {
			config = append(config, otlptracehttp.WithInsecure())
		}

		return otlptracehttp.New(ctx, config...)
	case otlpGrpcTraceExporterType:
		var config []otlptracegrpc.Option
		if opts.TraceExporterInsecureEndpoint {
			config = append(config, otlptracegrpc.WithInsecure())
		}

		return otlptracegrpc.New(ctx, config...)
	case consoleTraceExporterType:
		return stdouttrace.New(stdouttrace.WithWriter(writer))
	default:
		return nil, nil
	}
}

// Trace runs fn inside a span carrying attrs. Without an exporter fn runs untraced.
func (tracer *Tracer) Trace(ctx context.Context, name string, attrs map[string]any, fn func(childCtx context.Context) error) error {
	if tracer == nil || tracer.spanExporter == nil || tracer.provider == nil {
		return fn(ctx)
	}

	ctx, span := tracer.openSpan(ctx, name, attrs)
	defer span.End()

	if err := fn(ctx); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())

		return err
	}

	return nil
}

func (tracer *Tracer) openSpan(ctx context.Context, name string, attrs map[string]any) (context.Context, trace.Span) {
	if tracer.parent != nil && !trace.SpanContextFromContext(ctx).IsValid() {
		ctx = trace.ContextWithRemoteSpanContext(ctx, *tracer.parent)
	}

	ctx, span := tracer.Start(ctx, name) //nolint:spancheck
	span.SetAttributes(mapToAttributes(attrs)...)

	return ctx, span //nolint:spancheck
}
