// Package telemetry configures tracing for quibble runs.
package telemetry

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"
)

const serviceName = "quibble"

// Config holds the configuration for telemetry
type Config struct {
	Enabled  bool
	Endpoint string // OTLP/HTTP collector endpoint, host:port; exporter default when empty
}

// Provider manages the tracer provider for the process. A disabled provider
// is valid and leaves the no-op global tracer in place.
type Provider struct {
	tp *sdktrace.TracerProvider
}

// NewProvider creates a new telemetry provider
func NewProvider(ctx context.Context, config Config, version string) (*Provider, error) {
	if !config.Enabled {
		return &Provider{}, nil
	}

	var opts []otlptracehttp.Option
	if config.Endpoint != "" {
		opts = append(opts, otlptracehttp.WithEndpoint(config.Endpoint), otlptracehttp.WithInsecure())
	}
	exporter, err := otlptracehttp.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create trace exporter: %w", err)
	}

	res, err := resource.Merge(resource.Default(), resource.NewWithAttributes(
		semconv.SchemaURL,
		semconv.ServiceName(serviceName),
		semconv.ServiceVersion(version),
	))
	if err != nil {
		return nil, fmt.Errorf("failed to build telemetry resource: %w", err)
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
	)
	otel.SetTracerProvider(tp)

	return &Provider{tp: tp}, nil
}

// Shutdown flushes and stops the tracer provider
func (p *Provider) Shutdown(ctx context.Context) error {
	if p.tp == nil {
		return nil
	}
	return p.tp.Shutdown(ctx)
}

// StartRun opens a span covering one run of a command and returns the run ID
// attached to it, for correlating log lines with the trace.
func StartRun(ctx context.Context, name string) (context.Context, trace.Span, string) {
	runID := uuid.NewString()
	ctx, span := otel.Tracer(serviceName).Start(ctx, name,
		trace.WithAttributes(attribute.String("quibble.run_id", runID)))
	return ctx, span, runID
}
