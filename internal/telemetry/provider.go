// Package telemetry configures OpenTelemetry tracing for the client.
package telemetry

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
)

// DefaultServiceName identifies the shell in exported spans when no name is configured.
const DefaultServiceName = "sessionkeeper"

// Options selects where spans go and how many are kept.
type Options struct {
	Endpoint       string
	Enabled        bool
	ServiceName    string
	ServiceVersion string
	// SampleRatio is the fraction of root traces kept, within [0, 1].
	SampleRatio float64
}

// Shutdown flushes pending spans.
type Shutdown func(context.Context) error

func noop(context.Context) error { return nil }

// Setup registers a global tracer provider exporting over OTLP/HTTP.
// Nothing is registered when tracing is disabled or has no endpoint.
func Setup(ctx context.Context, o Options) (Shutdown, error) {
	if !o.Enabled || o.Endpoint == "" {
		return noop, nil
	}

	sampler, err := samplerFor(o.SampleRatio)
	if err != nil {
		return noop, err
	}

	exporter, err := otlptracehttp.New(ctx, otlptracehttp.WithEndpointURL(o.Endpoint))
	if err != nil {
		return noop, fmt.Errorf("otlp exporter: %w", err)
	}

	res, err := resource.New(ctx, resource.WithAttributes(serviceAttributes(o)...))
	if err != nil {
		return noop, fmt.Errorf("otel resource: %w", err)
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sampler),
	)
	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.TraceContext{})

	return tp.Shutdown, nil
}

// samplerFor keeps every trace at 1, none at 0, and a parent-respecting
// ratio in between.
func samplerFor(ratio float64) (sdktrace.Sampler, error) {
	switch {
	case ratio < 0 || ratio > 1:
		return nil, fmt.Errorf("sample ratio %v out of range [0, 1]", ratio)
	case ratio == 1:
		return sdktrace.AlwaysSample(), nil
	case ratio == 0:
		return sdktrace.NeverSample(), nil
	}
	return sdktrace.ParentBased(sdktrace.TraceIDRatioBased(ratio)), nil
}

func serviceAttributes(o Options) []attribute.KeyValue {
	name := o.ServiceName
	if name == "" {
		name = DefaultServiceName
	}
	attrs := []attribute.KeyValue{semconv.ServiceName(name)}
	if o.ServiceVersion != "" {
		attrs = append(attrs, semconv.ServiceVersion(o.ServiceVersion))
	}
	return attrs
}
