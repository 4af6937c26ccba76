package telemetry

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/propagation"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/camerakit/go/version"
)

// Tracer fetches a tracer, applying a standard naming convention.
func Tracer(service string, component string, opts ...trace.TracerOption) trace.Tracer {
	name := fmt.Sprintf("camerakit/%s/%s", service, component)
	opts = append(opts, trace.WithInstrumentationVersion(version.Version()))
	return otel.Tracer(name, opts...)
}

// TraceContextFromContext returns the tracecontext present in the passed
// context, if any.
func TraceContextFromContext(ctx context.Context) propagation.MapCarrier {
	c := propagation.MapCarrier{}
	otel.GetTextMapPropagator().Inject(ctx, c)
	return c
}

func configureTracerProvider() {
	tp, err := CreateTracerProvider(context.Background())
	if err != nil {
		logger.Warn("failed to create tracer provider", zap.Error(err))
		return
	}

	otel.SetTracerProvider(tp)
}

// CreateTracerProvider returns a provider batching spans to the OTLP/HTTP
// endpoint configured through the standard OTEL_EXPORTER_OTLP_* variables.
func CreateTracerProvider(ctx context.Context, opts ...sdktrace.TracerProviderOption) (*sdktrace.TracerProvider, error) {
	exp, err := otlptrace.New(ctx, otlptracehttp.NewClient())
	if err != nil {
		return nil, fmt.Errorf("failed to initialize trace exporter: %w", err)
	}

	opts = append(
		opts,
		sdktrace.WithBatcher(exp),
		sdktrace.WithResource(DefaultResource()),
	)
	return sdktrace.NewTracerProvider(opts...), nil
}
