package cmd

import (
	"context"
	"fmt"
	"strings"

	logging "github.com/ipfs/go-log/v2"
	"github.com/spf13/cobra"
	flag "github.com/spf13/pflag"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"

	"github.com/lightdas/light-node/logs"
	"github.com/lightdas/light-node/nodebuilder"
)

const (
	logLevelFlag        = "log.level"
	logLevelModuleFlag  = "log.level.module"
	tracingFlag         = "tracing"
	tracingEndpointFlag = "tracing.endpoint"
	tracingTLSFlag      = "tracing.tls"
	metricsFlag         = "metrics"
	metricsEndpointFlag = "metrics.endpoint"
	metricsTLSFlag      = "metrics.tls"

	defaultCollector = "localhost:4318"
)

// MiscFlags returns the logging and telemetry flags shared by every command.
func MiscFlags() *flag.FlagSet {
	flags := &flag.FlagSet{}

	flags.String(logLevelFlag, "INFO", "Level applied to every logger (debug, info, warn, error)")
	flags.StringSlice(
		logLevelModuleFlag,
		nil,
		"Per logger level override as <logger>:<level>, e.g. das:debug or p2p:warn",
	)

	flags.Bool(tracingFlag, false, "Export sampling and DHT spans to an OTLP/HTTP collector")
	flags.String(tracingEndpointFlag, defaultCollector, "Collector address receiving spans when --tracing is set")
	flags.Bool(tracingTLSFlag, true, "Use TLS towards the span collector")

	flags.Bool(metricsFlag, false, "Export confidence, sampling and DHT metrics to an OTLP/HTTP collector")
	flags.String(metricsEndpointFlag, defaultCollector, "Collector address receiving metrics when --metrics is set")
	flags.Bool(metricsTLSFlag, true, "Use TLS towards the metrics collector")

	return flags
}

// ParseMiscFlags applies log levels and attaches telemetry options to the node options in ctx.
func ParseMiscFlags(ctx context.Context, cmd *cobra.Command) (context.Context, error) {
	if err := parseLogFlags(cmd.Flags()); err != nil {
		return ctx, err
	}

	enabled, insecure, err := telemetryFlags(cmd.Flags(), tracingFlag, tracingTLSFlag)
	if err != nil {
		return ctx, err
	}
	if enabled {
		endpoint, _ := cmd.Flags().GetString(tracingEndpointFlag)
		opts := []otlptracehttp.Option{otlptracehttp.WithEndpoint(endpoint)}
		if insecure {
			opts = append(opts, otlptracehttp.WithInsecure())
		}
		ctx = WithNodeOptions(ctx, nodebuilder.WithTraces(true, opts))
	}

	enabled, insecure, err = telemetryFlags(cmd.Flags(), metricsFlag, metricsTLSFlag)
	if err != nil {
		return ctx, err
	}
	if enabled {
		endpoint, _ := cmd.Flags().GetString(metricsEndpointFlag)
		opts := []otlpmetrichttp.Option{otlpmetrichttp.WithEndpoint(endpoint)}
		if insecure {
			opts = append(opts, otlpmetrichttp.WithInsecure())
		}
		ctx = WithNodeOptions(ctx, nodebuilder.WithMetrics(true, opts))
	}
	return ctx, nil
}

func parseLogFlags(flags *flag.FlagSet) error {
	if lvl, _ := flags.GetString(logLevelFlag); lvl != "" {
		level, err := logging.LevelFromString(lvl)
		if err != nil {
			return fmt.Errorf("cmd: --%s: %w", logLevelFlag, err)
		}
		logs.SetAllLoggers(level)
	}

	overrides, err := flags.GetStringSlice(logLevelModuleFlag)
	if err != nil {
		return err
	}
	for _, o := range overrides {
		name, lvl, ok := strings.Cut(o, ":")
		if !ok || name == "" {
			return fmt.Errorf("cmd: --%s expects <logger>:<level>, got %q", logLevelModuleFlag, o)
		}
		if err := logging.SetLogLevel(name, lvl); err != nil {
			return fmt.Errorf("cmd: --%s %s: %w", logLevelModuleFlag, o, err)
		}
	}
	return nil
}

// telemetryFlags reports whether the exporter behind enableFlag is on and whether it skips TLS.
func telemetryFlags(flags *flag.FlagSet, enableFlag, tlsFlag string) (enabled, insecure bool, err error) {
	if enabled, err = flags.GetBool(enableFlag); err != nil || !enabled {
		return false, false, err
	}
	secure, err := flags.GetBool(tlsFlag)
	if err != nil {
		return false, false, err
	}
	return true, !secure, nil
}
