package telemetry

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/runtime"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
)

var (
	globalMeterProvider metric.MeterProvider
	meterMu             sync.RWMutex
	instruments         *Instruments
)

// Instruments are the OTLP counterparts of the Prometheus plan metrics,
// exported alongside traces when a collector is configured.
type Instruments struct {
	PlansCreated  metric.Int64Counter
	StageDuration metric.Float64Histogram
}

// InitMetricsProvider initializes the OpenTelemetry meter provider.
// Without an enabled config and endpoint the global noop provider is used.
func InitMetricsProvider(ctx context.Context, cfg Config) (func(context.Context) error, error) {
	meterMu.Lock()
	defer meterMu.Unlock()

	if !cfg.Enabled || cfg.Endpoint == "" {
		globalMeterProvider = otel.GetMeterProvider()
		return func(context.Context) error { return nil }, initInstruments(globalMeterProvider)
	}

	res, err := createResource(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create resource for metrics: %w", err)
	}

	opts := []otlpmetrichttp.Option{otlpmetrichttp.WithCompression(otlpmetrichttp.GzipCompression)}
	if strings.Contains(cfg.Endpoint, "://") {
		opts = append(opts, otlpmetrichttp.WithEndpointURL(cfg.Endpoint))
	} else {
		opts = append(opts, otlpmetrichttp.WithEndpoint(cfg.Endpoint))
	}
	exporter, err := otlpmetrichttp.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create OTLP metrics exporter: %w", err)
	}

	mp := sdkmetric.NewMeterProvider(
		sdkmetric.WithResource(res),
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exporter, sdkmetric.WithInterval(10*time.Second))),
	)
	globalMeterProvider = mp
	otel.SetMeterProvider(mp)

	if err := runtime.Start(
		runtime.WithMeterProvider(mp),
		runtime.WithMinimumReadMemStatsInterval(time.Second),
	); err != nil {
		return nil, fmt.Errorf("failed to start runtime instrumentation: %w", err)
	}

	return mp.Shutdown, initInstruments(mp)
}

func initInstruments(mp metric.MeterProvider) error {
	meter := mp.Meter("github.com/felixgeelhaar/smartplan")

	created, err := meter.Int64Counter(
		"smartplan.plan.created",
		metric.WithDescription("Number of plans generated"),
		metric.WithUnit("{plan}"),
	)
	if err != nil {
		return err
	}

	stage, err := meter.Float64Histogram(
		"smartplan.plan.stage.duration",
		metric.WithDescription("Duration of plan pipeline stages"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return err
	}

	instruments = &Instruments{PlansCreated: created, StageDuration: stage}
	return nil
}

func getInstruments() *Instruments {
	meterMu.RLock()
	defer meterMu.RUnlock()
	return instruments
}

// RecordPlanCreated counts a generated plan by category.
func RecordPlanCreated(ctx context.Context, category string) {
	if in := getInstruments(); in != nil {
		in.PlansCreated.Add(ctx, 1, metric.WithAttributes(attribute.String("category", category)))
	}
}

// RecordStageDuration records how long a pipeline stage took.
func RecordStageDuration(ctx context.Context, stage string, d time.Duration) {
	if in := getInstruments(); in != nil {
		in.StageDuration.Record(ctx, d.Seconds(), metric.WithAttributes(attribute.String("stage", stage)))
	}
}
