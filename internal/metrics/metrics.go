package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/felixgeelhaar/smartplan/internal/errors"
)

// Metrics holds all Prometheus metrics for smartplan
type Metrics struct {
	// Command execution metrics
	CommandExecutions *prometheus.CounterVec
	CommandDuration   *prometheus.HistogramVec

	// Plan generation metrics
	PlanGenerations *prometheus.CounterVec
	PlanDuration    *prometheus.HistogramVec
	PlanTaskCount   *prometheus.HistogramVec
	PlanHours       *prometheus.HistogramVec

	// HTTP metrics
	HTTPRequests *prometheus.CounterVec
	HTTPDuration *prometheus.HistogramVec

	// Event dispatch metrics
	Events          *prometheus.CounterVec
	EventQueueDepth prometheus.Gauge

	// Catalog metrics
	CatalogReloads *prometheus.CounterVec
	CatalogInfo    *prometheus.GaugeVec

	// Error metrics (by error code from structured errors)
	Errors *prometheus.CounterVec
}

// NewMetrics creates a new Metrics instance with all metrics registered
func NewMetrics(registry prometheus.Registerer) *Metrics {
	factory := promauto.With(registry)

	return &Metrics{
		CommandExecutions: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "smartplan_command_executions_total",
				Help: "Total number of CLI command executions",
			},
			[]string{"command", "success"},
		),
		CommandDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "smartplan_command_duration_seconds",
				Help:    "CLI command execution duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"command"},
		),

		PlanGenerations: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "smartplan_plan_generations_total",
				Help: "Total number of plan generations",
			},
			[]string{"category", "success"},
		),
		PlanDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "smartplan_plan_duration_seconds",
				Help:    "Plan generation duration in seconds",
				Buckets: []float64{0.0005, 0.001, 0.0025, 0.005, 0.01, 0.025, 0.05, 0.1},
			},
			[]string{},
		),
		PlanTaskCount: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "smartplan_plan_task_count",
				Help:    "Number of tasks in generated plans",
				Buckets: []float64{1, 2, 4, 6, 8, 12, 20},
			},
			[]string{},
		),
		PlanHours: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "smartplan_plan_estimated_hours",
				Help:    "Total estimated hours of generated plans",
				Buckets: []float64{50, 100, 150, 200, 300, 400},
			},
			[]string{"category"},
		),

		HTTPRequests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "smartplan_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "route", "status"},
		),
		HTTPDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "smartplan_http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),

		Events: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "smartplan_events_total",
				Help: "Total number of plan events by sink and outcome",
			},
			[]string{"sink", "outcome"},
		),
		EventQueueDepth: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "smartplan_events_queue_depth",
				Help: "Number of events waiting for dispatch",
			},
		),

		CatalogReloads: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "smartplan_catalog_reloads_total",
				Help: "Total number of catalog reload attempts",
			},
			[]string{"success"},
		),
		CatalogInfo: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "smartplan_catalog_info",
				Help: "Active template catalog, value is always 1",
			},
			[]string{"version", "digest"},
		),

		Errors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "smartplan_errors_total",
				Help: "Total number of errors by error code",
			},
			[]string{"error_code", "component"},
		),
	}
}

// The Record helpers accept a nil receiver so callers may run without metrics.

// RecordPlan records one plan generation attempt.
func (m *Metrics) RecordPlan(category string, success bool, d time.Duration, tasks int, hours float64) {
	if m == nil {
		return
	}
	if category == "" {
		category = "none"
	}
	m.PlanGenerations.WithLabelValues(category, strconv.FormatBool(success)).Inc()
	m.PlanDuration.WithLabelValues().Observe(d.Seconds())
	if success {
		m.PlanTaskCount.WithLabelValues().Observe(float64(tasks))
		m.PlanHours.WithLabelValues(category).Observe(hours)
	}
}

// RecordHTTP records a served request.
func (m *Metrics) RecordHTTP(method, route string, status int, d time.Duration) {
	if m == nil {
		return
	}
	m.HTTPRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.HTTPDuration.WithLabelValues(method, route).Observe(d.Seconds())
}

// RecordCommand records a CLI command execution.
func (m *Metrics) RecordCommand(command string, success bool, d time.Duration) {
	if m == nil {
		return
	}
	m.CommandExecutions.WithLabelValues(command, strconv.FormatBool(success)).Inc()
	m.CommandDuration.WithLabelValues(command).Observe(d.Seconds())
}

// RecordEvent records the outcome of delivering an event to a sink.
func (m *Metrics) RecordEvent(sink, outcome string) {
	if m == nil {
		return
	}
	m.Events.WithLabelValues(sink, outcome).Inc()
}

// SetQueueDepth reports the number of buffered events.
func (m *Metrics) SetQueueDepth(n int) {
	if m == nil {
		return
	}
	m.EventQueueDepth.Set(float64(n))
}

// RecordCatalog records a catalog load and marks it active when it succeeded.
func (m *Metrics) RecordCatalog(version, digest string, err error) {
	if m == nil {
		return
	}
	m.CatalogReloads.WithLabelValues(strconv.FormatBool(err == nil)).Inc()
	if err != nil {
		m.RecordError(err, "catalog")
		return
	}
	m.CatalogInfo.Reset()
	m.CatalogInfo.WithLabelValues(version, digest).Set(1)
}

// RecordError counts err under its error code, or "unknown" for uncoded errors.
func (m *Metrics) RecordError(err error, component string) {
	if m == nil || err == nil {
		return
	}
	code := string(errors.CodeOf(err))
	if code == "" {
		code = "unknown"
	}
	m.Errors.WithLabelValues(code, component).Inc()
}
