// Package tracing configures the global OpenTelemetry trace provider.
package tracing

import (
	"context"
	"fmt"
	"os"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

// Setup installs a trace provider based on environment:
// OTEL_EXPORTER_OTLP_ENDPOINT selects OTLP over HTTP, OTEL_TRACE_STDOUT
// selects the stdout exporter, otherwise tracing stays a no-op. The
// returned shutdown flushes spans.
func Setup(ctx context.Context) (func(context.Context) error, error) {
	var exporter sdktrace.SpanExporter
	var err error

	switch {
	case os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT") != "":
		exporter, err = otlptracehttp.New(ctx)
	case os.Getenv("OTEL_TRACE_STDOUT") != "":
		exporter, err = stdouttrace.New(stdouttrace.WithPrettyPrint())
	default:
		return func(context.Context) error { return nil }, nil
	}
	if err != nil {
		return nil, fmt.Errorf("creating trace exporter: %w", err)
	}

	provider := sdktrace.NewTracerProvider(sdktrace.WithBatcher(exporter))
	otel.SetTracerProvider(provider)
	return provider.Shutdown, nil
}
