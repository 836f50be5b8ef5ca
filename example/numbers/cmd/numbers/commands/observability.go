package commands

import (
	"context"
	"io"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"

	"github.com/AntonStoeckl/fmodel-go/eventstore/oteladapters"
)

const (
	metricExportInterval = 5 * time.Second
	shutdownTimeout      = 5 * time.Second
)

func newLogger(cfg Config, w io.Writer) (*slog.Logger, error) {
	level, err := cfg.SlogLevel()
	if err != nil {
		return nil, err
	}

	handlerOptions := &slog.HandlerOptions{Level: level}

	if cfg.LogFormat == LogFormatJSON {
		return slog.New(slog.NewJSONHandler(w, handlerOptions)), nil
	}

	return slog.New(slog.NewTextHandler(w, handlerOptions)), nil
}

// telemetry exports metrics via OTLP gRPC when an endpoint is configured.
type telemetry struct {
	meterProvider *metric.MeterProvider
	collector     *oteladapters.MetricsCollector
}

func newTelemetry(ctx context.Context, cfg Config) (*telemetry, error) {
	if cfg.OTLPEndpoint == "" {
		return &telemetry{}, nil
	}

	res, err := resource.New(ctx,
		resource.WithAttributes(
			semconv.ServiceNameKey.String(cfg.ServiceName),
		),
	)
	if err != nil {
		return nil, err
	}

	exporter, err := otlpmetricgrpc.New(
		ctx,
		otlpmetricgrpc.WithEndpoint(cfg.OTLPEndpoint),
		otlpmetricgrpc.WithInsecure(),
	)
	if err != nil {
		return nil, err
	}

	meterProvider := metric.NewMeterProvider(
		metric.WithReader(metric.NewPeriodicReader(exporter, metric.WithInterval(metricExportInterval))),
		metric.WithResource(res),
	)

	return &telemetry{
		meterProvider: meterProvider,
		collector:     oteladapters.NewMetricsCollector(meterProvider.Meter(cfg.ServiceName)),
	}, nil
}

// metrics is nil when no endpoint is configured.
func (t *telemetry) metrics() *oteladapters.MetricsCollector {
	return t.collector
}

// shutdown flushes pending metrics.
func (t *telemetry) shutdown() error {
	if t.meterProvider == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	return t.meterProvider.Shutdown(ctx)
}
