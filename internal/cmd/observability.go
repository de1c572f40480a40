package cmd

import (
	"context"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/smartplan/internal/config"
	"github.com/felixgeelhaar/smartplan/internal/log"
	"github.com/felixgeelhaar/smartplan/internal/telemetry"
	"github.com/felixgeelhaar/smartplan/internal/version"
)

const serviceName = "smartplan"

func setupLogging(cfg *config.Config, w io.Writer) *log.Logger {
	level := log.ParseLevel(cfg.Logging.Level)
	logger := log.New(log.Config{
		Level:          level,
		Format:         log.ParseFormat(cfg.Logging.Format),
		Output:         w,
		AddSource:      level == log.LevelDebug,
		ServiceName:    serviceName,
		ServiceVersion: version.GetInfo().Version,
	})
	log.SetDefaultLogger(logger)
	return logger
}

// setupTelemetry starts OTLP trace and metric export when enabled and
// returns the function that flushes it.
func setupTelemetry(ctx context.Context, cfg *config.Config, logger *log.Logger) func() {
	if !cfg.Telemetry.Enabled {
		return func() {}
	}

	telemCfg := telemetry.DefaultConfig()
	telemCfg.ServiceName = serviceName
	telemCfg.ServiceVersion = version.GetInfo().Version
	telemCfg.Enabled = true
	telemCfg.Endpoint = cfg.Telemetry.Endpoint
	if cfg.Telemetry.Environment != "" {
		telemCfg.Environment = cfg.Telemetry.Environment
	}
	telemCfg.SampleRate = cfg.Telemetry.SampleRate

	traceShutdown, err := telemetry.InitProvider(ctx, telemCfg)
	if err != nil {
		logger.Warn("Failed to initialize tracing", "error", err)
		return func() {}
	}
	metricShutdown, err := telemetry.InitMetricsProvider(ctx, telemCfg)
	if err != nil {
		logger.Warn("Failed to initialize OTLP metrics", "error", err)
	}

	logger.Info("Telemetry enabled",
		"endpoint", telemCfg.Endpoint,
		"sample_rate", telemCfg.SampleRate,
	)

	return func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if metricShutdown != nil {
			if err := metricShutdown(shutdownCtx); err != nil {
				logger.Warn("Failed to flush metrics", "error", err)
			}
		}
		if traceShutdown != nil {
			if err := traceShutdown(shutdownCtx); err != nil {
				logger.Warn("Failed to flush telemetry", "error", err)
			}
		}
	}
}

// instrument wraps a RunE with a command span and the command metrics.
func (a *app) instrument(name string, run func(cmd *cobra.Command, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		ctx, span := telemetry.StartCommandSpan(cmd.Context(), name)
		defer span.End()
		cmd.SetContext(ctx)

		start := time.Now()
		err := run(cmd, args)
		a.metrics.RecordCommand(name, err == nil, time.Since(start))

		if err != nil {
			telemetry.RecordError(span, err)
			a.metrics.RecordError(err, "cli")
			return err
		}
		telemetry.RecordSuccess(span)
		return nil
	}
}
