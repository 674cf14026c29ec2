package telemetry

import (
	"context"
	"fmt"

	"github.com/anoideaopen/latebinding/core/config"
	"github.com/anoideaopen/latebinding/version"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.17.0"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

// ShutdownFunc flushes and stops an installed trace provider.
type ShutdownFunc func(ctx context.Context) error

// InstallTraceProvider installs a global trace provider exporting spans to
// the OTLP/HTTP collector at settings. Without an endpoint a no-op provider
// is installed. The W3C trace context and baggage propagators are installed
// in both cases.
func InstallTraceProvider(
	settings *config.CollectorEndpoint,
	serviceName string,
) (ShutdownFunc, error) {
	var tracerProvider trace.TracerProvider = noop.NewTracerProvider()
	shutdown := func(context.Context) error { return nil }

	defer func() {
		otel.SetTracerProvider(tracerProvider)
		otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(propagation.TraceContext{}, propagation.Baggage{}))
	}()

	if len(settings.GetEndpoint()) == 0 {
		return shutdown, nil
	}

	opts := []otlptracehttp.Option{otlptracehttp.WithEndpoint(settings.GetEndpoint())}
	if caCerts := settings.GetCACerts(); caCerts != "" {
		tlsConfig, err := getTLSConfig(caCerts)
		if err != nil {
			return shutdown, err
		}
		opts = append(opts, otlptracehttp.WithTLSClientConfig(tlsConfig))
	} else {
		opts = append(opts, otlptracehttp.WithInsecure())
	}

	exporter, err := otlptrace.New(context.Background(), otlptracehttp.NewClient(opts...))
	if err != nil {
		return shutdown, fmt.Errorf("creating OTLP trace exporter: %w", err)
	}

	r, err := newResource(serviceName)
	if err != nil {
		return shutdown, err
	}

	sdkProvider := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(r),
	)
	tracerProvider = sdkProvider

	return sdkProvider.Shutdown, nil
}

// InstallFromConfig installs the trace provider described by cfg. An empty
// service name falls back to version.ServiceName.
func InstallFromConfig(cfg *config.Config) (ShutdownFunc, error) {
	if cfg == nil {
		return nil, config.ErrCfgBytesEmpty
	}

	serviceName := cfg.ServiceName
	if serviceName == "" {
		serviceName = version.ServiceName()
	}

	return InstallTraceProvider(cfg.Telemetry, serviceName)
}

// newResource describes the service on top of the SDK default resource. The
// service attributes carry no schema URL so they merge with any SDK version.
func newResource(serviceName string) (*resource.Resource, error) {
	r, err := resource.Merge(
		resource.Default(),
		resource.NewSchemaless(
			semconv.ServiceName(serviceName),
			semconv.ServiceVersion(version.Version()),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("creating resource: %w", err)
	}

	return r, nil
}
