// Package health reports whether the planner can serve requests.
//
// Checks are small Checker values registered with a Manager. The
// ProbeManager layers Kubernetes liveness, readiness, and startup semantics
// on top and produces the service summary served at /api/health:
//
//	probes := health.NewProbeManager(version.Version)
//	probes.AddChecker(health.NewCatalogChecker(store))
//	probes.AddChecker(health.NewEventsChecker(dispatcher))
//	probes.MarkInitialized()
package health

import (
	"context"
	"time"
)

// Checker verifies one dependency of the service.
type Checker interface {
	// Name is lowercase with hyphens, e.g. "template-catalog".
	Name() string

	// Check must respect ctx and return quickly.
	Check(ctx context.Context) *Result
}

// Status is the outcome of a check.
type Status string

const (
	StatusHealthy   Status = "healthy"
	StatusDegraded  Status = "degraded"
	StatusUnhealthy Status = "unhealthy"
)

func (s Status) String() string {
	return string(s)
}

// Operational reports whether requests can still be served.
func (s Status) Operational() bool {
	return s != StatusUnhealthy
}

// Result is one check outcome.
type Result struct {
	Status  Status         `json:"status"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
	Latency time.Duration  `json:"latency_ns"`
}

// NewResult creates a result with empty details.
func NewResult(status Status, message string) *Result {
	return &Result{
		Status:  status,
		Message: message,
		Details: make(map[string]any),
	}
}

// WithDetail adds a detail and returns r.
func (r *Result) WithDetail(key string, value any) *Result {
	r.Details[key] = value
	return r
}

// WithLatency sets the latency and returns r.
func (r *Result) WithLatency(latency time.Duration) *Result {
	r.Latency = latency
	return r
}

func Healthy(message string) *Result   { return NewResult(StatusHealthy, message) }
func Degraded(message string) *Result  { return NewResult(StatusDegraded, message) }
func Unhealthy(message string) *Result { return NewResult(StatusUnhealthy, message) }
