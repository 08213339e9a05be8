package nodebuilder

import (
	"context"
	"fmt"
	"time"

	"github.com/libp2p/go-libp2p/core/host"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	sdk "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	tracesdk "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.11.0"
	"go.uber.org/fx"

	"github.com/lightdas/light-node/nodebuilder/das"
	"github.com/lightdas/light-node/nodebuilder/node"
	"github.com/lightdas/light-node/nodebuilder/p2p"
)

const (
	serviceName    = "das-light"
	metricInterval = 10 * time.Second
)

// WithMetrics enables metrics exporting for the node.
func WithMetrics(enable bool, metricOpts []otlpmetrichttp.Option) fx.Option {
	if !enable {
		return fx.Options()
	}

	return fx.Options(
		fx.Supply(metricOpts),
		fx.Invoke(initializeMetrics),
		p2p.WithMetrics(),
		das.WithMetrics(),
	)
}

// initializeMetrics initializes the global meter provider.
func initializeMetrics(
	ctx context.Context,
	lc fx.Lifecycle,
	h host.Host,
	build *node.BuildInfo,
	opts []otlpmetrichttp.Option,
) error {
	opts = append([]otlpmetrichttp.Option{
		otlpmetrichttp.WithCompression(otlpmetrichttp.GzipCompression),
	}, opts...)
	exp, err := otlpmetrichttp.New(ctx, opts...)
	if err != nil {
		return fmt.Errorf("creating OTLP metric exporter: %w", err)
	}

	provider := sdk.NewMeterProvider(
		sdk.WithReader(
			sdk.NewPeriodicReader(exp,
				sdk.WithTimeout(metricInterval),
				sdk.WithInterval(metricInterval))),
		sdk.WithResource(
			resource.NewWithAttributes(
				semconv.SchemaURL,
				semconv.ServiceNameKey.String(serviceName),
				semconv.ServiceVersionKey.String(build.GetSemanticVersion()),
				semconv.ServiceInstanceIDKey.String(h.ID().String()),
			)))

	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			return provider.Shutdown(ctx)
		},
	})
	otel.SetMeterProvider(provider)
	return nil
}

// WithTraces enables OTLP trace exporting for the node.
func WithTraces(enable bool, traceOpts []otlptracehttp.Option) fx.Option {
	if !enable {
		return fx.Options()
	}

	return fx.Options(
		fx.Supply(traceOpts),
		fx.Invoke(initializeTraces),
	)
}

// initializeTraces initializes the global tracer provider.
func initializeTraces(
	ctx context.Context,
	lc fx.Lifecycle,
	h host.Host,
	build *node.BuildInfo,
	opts []otlptracehttp.Option,
) error {
	opts = append([]otlptracehttp.Option{
		otlptracehttp.WithCompression(otlptracehttp.GzipCompression),
	}, opts...)
	exp, err := otlptracehttp.New(ctx, opts...)
	if err != nil {
		return fmt.Errorf("creating OTLP trace exporter: %w", err)
	}

	provider := tracesdk.NewTracerProvider(
		// Always be sure to batch in production.
		tracesdk.WithBatcher(exp),
		// Record information about this application in a Resource.
		tracesdk.WithResource(resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceNameKey.String(serviceName),
			semconv.ServiceVersionKey.String(build.GetSemanticVersion()),
			semconv.ServiceInstanceIDKey.String(h.ID().String()),
		)),
	)

	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			return provider.Shutdown(ctx)
		},
	})
	otel.SetTracerProvider(provider)
	return nil
}
