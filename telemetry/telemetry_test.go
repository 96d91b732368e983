package telemetry_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"

	"github.com/geckorv/hdlbuild/telemetry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
)

func TestNewTraceExporter(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name         string
		opts         *telemetry.Options
		expectedType any
		expectNil    bool
		expectError  bool
	}{
		{
			name:         "otlp http",
			opts:         &telemetry.Options{TraceExporter: "otlpHttp"},
			expectedType: (*otlptrace.Exporter)(nil),
		},
		{
			name:         "custom http endpoint",
			opts:         &telemetry.Options{TraceExporter: "http", TraceExporterHTTPEndpoint: "localhost:4318"},
			expectedType: (*otlptrace.Exporter)(nil),
		},
		{
			name:        "http without endpoint",
			opts:        &telemetry.Options{TraceExporter: "http"},
			expectError: true,
		},
		{
			name:         "otlp grpc",
			opts:         &telemetry.Options{TraceExporter: "otlpGrpc", TraceExporterInsecureEndpoint: true},
			expectedType: (*otlptrace.Exporter)(nil),
		},
		{
			name:         "console",
			opts:         &telemetry.Options{TraceExporter: "console"},
			expectedType: (*stdouttrace.Exporter)(nil),
		},
		{
			name:      "none",
			opts:      &telemetry.Options{TraceExporter: "none"},
			expectNil: true,
		},
		{
			name:      "default",
			opts:      &telemetry.Options{},
			expectNil: true,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			exporter, err := telemetry.NewTraceExporter(context.Background(), io.Discard, tc.opts)
			if tc.expectError {
				var missing *telemetry.ErrorMissingEnvVariable
				require.ErrorAs(t, err, &missing)

				return
			}

			require.NoError(t, err)

			if tc.expectNil {
				assert.Nil(t, exporter)
				return
			}

			assert.IsType(t, tc.expectedType, exporter)
		})
	}
}

func TestNewMetricsExporter(t *testing.T) {
	t.Parallel()

	for _, exporterType := range []string{"otlpHttp", "grpcHttp", "console"} {
		t.Run(exporterType, func(t *testing.T) {
			t.Parallel()

			exporter, err := telemetry.NewMetricsExporter(context.Background(), io.Discard, &telemetry.Options{MetricExporter: exporterType})
			require.NoError(t, err)
			assert.NotNil(t, exporter)
		})
	}

	exporter, err := telemetry.NewMetricsExporter(context.Background(), io.Discard, &telemetry.Options{MetricExporter: "none"})
	require.NoError(t, err)
	assert.Nil(t, exporter)
}

func TestParseTraceParent(t *testing.T) {
	t.Parallel()

	spanContext, err := telemetry.ParseTraceParent("00-0af7651916cd43dd8448eb211c80319c-b7ad6b7169203331-01")
	require.NoError(t, err)
	assert.Equal(t, "0af7651916cd43dd8448eb211c80319c", spanContext.TraceID().String())
	assert.Equal(t, "b7ad6b7169203331", spanContext.SpanID().String())
	assert.True(t, spanContext.IsSampled())
	assert.True(t, spanContext.IsRemote())

	empty, err := telemetry.ParseTraceParent("")
	require.NoError(t, err)
	assert.Nil(t, empty)

	_, err = telemetry.ParseTraceParent("00-abc")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid TRACEPARENT")
}

func TestCollectWithoutExporters(t *testing.T) {
	t.Parallel()

	tlm, err := telemetry.NewTelemeter(context.Background(), "hdlbuild", "test", io.Discard, nil)
	require.NoError(t, err)

	called := false
	err = tlm.Collect(context.Background(), "lint alu", map[string]any{"module": "rtl/alu.sv"}, func(ctx context.Context) error {
		called = true
		return nil
	})
	require.NoError(t, err)
	assert.True(t, called)

	expected := errors.New("boom")
	err = tlm.Collect(context.Background(), "lint alu", nil, func(ctx context.Context) error { return expected })
	assert.ErrorIs(t, err, expected)

	require.NoError(t, tlm.Shutdown(context.Background()))
}

func TestCollectWithConsoleTracer(t *testing.T) {
	t.Parallel()

	var out bytes.Buffer

	tlm, err := telemetry.NewTelemeter(context.Background(), "hdlbuild", "test", &out, &telemetry.Options{TraceExporter: "console"})
	require.NoError(t, err)

	ctx := telemetry.ContextWithTelemeter(context.Background(), tlm)

	var traceParent string

	err = telemetry.TelemeterFromContext(ctx).Collect(ctx, "link fib", map[string]any{"program": "fib"}, func(ctx context.Context) error {
		traceParent = telemetry.TraceParentFromContext(ctx)
		return nil
	})
	require.NoError(t, err)
	require.NoError(t, tlm.Shutdown(context.Background()))

	assert.Regexp(t, `^00-[0-9a-f]{32}-[0-9a-f]{16}-01$`, traceParent)
	assert.Contains(t, out.String(), "link fib")
}

func TestTelemeterFromEmptyContext(t *testing.T) {
	t.Parallel()

	tlm := telemetry.TelemeterFromContext(context.Background())
	require.NotNil(t, tlm)
	assert.NoError(t, tlm.Collect(context.Background(), "noop", nil, func(context.Context) error { return nil }))
}

func TestCleanMetricName(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "lint_rtl_alu.sv", telemetry.CleanMetricName("lint rtl/alu.sv"))
	assert.Equal(t, "a_b", telemetry.CleanMetricName("__a---b__"))
}
