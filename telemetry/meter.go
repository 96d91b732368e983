package telemetry

import (
	"context"
	"io"
	"time"

	"github.com/geckorv/hdlbuild/internal/errors"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/exporters/stdout/stdoutmetric"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	semconv "go.opentelemetry.io/otel/semconv/v1.37.0"
)

const (
	noneMetricsExporterType     metricsExporterType = "none"
	consoleMetricsExporterType  metricsExporterType = "console"
	otlpHTTPMetricsExporterType metricsExporterType = "otlpHttp"
	grpcHTTPMetricsExporterType metricsExporterType = "grpcHttp"

	readerInterval = time.Second
)

type metricsExporterType string

type Meter struct {
	metric.Meter
	provider *sdkmetric.MeterProvider
}

// NewMeter creates and configures the metrics collection. It returns nil when no exporter is selected.
func NewMeter(ctx context.Context, appName, appVersion string, writer io.Writer, opts *Options) (*Meter, error) {
	exporter, err := NewMetricsExporter(ctx, writer, opts)
	if err != nil {
		return nil, errors.New(err)
	}

	if exporter == nil {
		return nil, nil
	}

	provider, err := newMetricsProvider(exporter, appName, appVersion)
	if err != nil {
		return nil, errors.New(err)
	}

	otel.SetMeterProvider(provider)

	return &Meter{
		Meter:    provider.Meter(appName),
		provider: provider,
	}, nil
}

// NewMetricsExporter creates a new exporter based on the telemetry options.
func NewMetricsExporter(ctx context.Context, writer io.Writer, opts *Options) (sdkmetric.Exporter, error) {
	exporterType := metricsExporterType(opts.MetricExporter)
	if exporterType == "" {
		exporterType = noneMetricsExporterType
	}

	switch exporterType { //nolint:exhaustive
	case otlpHTTPMetricsExporterType:
		var config []otlpmetrichttp.Option
		if opts.MetricExporterInsecureEndpoint {
			config = append(config, otlpmetrichttp.WithInsecure())
		}

		return otlpmetrichttp.New(ctx, config...)
	case grpcHTTPMetricsExporterType:
		var config []otlpmetricgrpc.Option
		if opts.MetricExporterInsecureEndpoint {
			config = append(config, otlpmetricgrpc.WithInsecure())
		}

		return otlpmetricgrpc.New(ctx, config...)
	case consoleMetricsExporterType:
		return stdoutmetric.New(stdoutmetric.WithWriter(writer))
	default:
		return nil, nil
	}
}

func newMetricsProvider(exp sdkmetric.Exporter, appName, appVersion string) (*sdkmetric.MeterProvider, error) {
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

	return sdkmetric.NewMeterProvider(
		sdkmetric.WithResource(r),
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exp, sdkmetric.WithInterval(readerInterval))),
	), nil
}

// Time records the duration of fn in milliseconds, plus a failure counter when fn returns an error.
func (meter *Meter) Time(ctx context.Context, name string, attrs map[string]any, fn func(childCtx context.Context) error) error {
	if meter == nil || meter.provider == nil {
		return fn(ctx)
	}

	metricAttrs := metric.WithAttributes(mapToAttributes(attrs)...)
	name = CleanMetricName(name)

	histogram, err := meter.Int64Histogram(name+"_duration", metric.WithUnit("ms"))
	if err != nil {
		return errors.New(err)
	}

	start := time.Now()
	fnErr := fn(ctx)
	histogram.Record(ctx, time.Since(start).Milliseconds(), metricAttrs)

	if fnErr != nil {
		meter.Count(ctx, name+"_errors", 1)
	}

	return fnErr
}

// Count adds value to the named counter.
func (meter *Meter) Count(ctx context.Context, name string, value int64) {
	if meter == nil || meter.provider == nil || value == 0 {
		return
	}

	counter, err := meter.Int64Counter(CleanMetricName(name))
	if err != nil {
		return
	}

	counter.Add(ctx, value)
}
