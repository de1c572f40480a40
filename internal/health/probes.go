package health

import (
	"context"
	"sync/atomic"
	"time"
)

// PipelineServices are the planning stages reported by the service summary.
// They all depend on the template catalog.
var PipelineServices = []string{"ai_engine", "risk_assessment", "timeline_optimizer"}

// CatalogCheckName is the checker the pipeline services depend on.
const CatalogCheckName = "template-catalog"

const (
	serviceOperational = "operational"
	serviceUnavailable = "unavailable"

	uptimeNormal   = "System running normally"
	uptimeDegraded = "System running with degraded dependencies"
	uptimeDown     = "System unable to generate plans"
)

// ProbeManager adds Kubernetes probe state to a Manager.
type ProbeManager struct {
	*Manager

	startTime   time.Time
	initialized atomic.Bool
	inShutdown  atomic.Bool
	version     string
	now         func() time.Time
}

// NewProbeManager creates a probe manager reporting version.
func NewProbeManager(version string) *ProbeManager {
	return &ProbeManager{
		Manager:   NewManager(),
		startTime: time.Now(),
		version:   version,
		now:       time.Now,
	}
}

// MarkInitialized lets the startup probe pass.
func (pm *ProbeManager) MarkInitialized() { pm.initialized.Store(true) }

// MarkShutdown fails readiness so traffic drains before the server stops.
func (pm *ProbeManager) MarkShutdown() { pm.inShutdown.Store(true) }

func (pm *ProbeManager) IsInitialized() bool  { return pm.initialized.Load() }
func (pm *ProbeManager) IsShuttingDown() bool { return pm.inShutdown.Load() }
func (pm *ProbeManager) Version() string      { return pm.version }

// Uptime returns how long the process has been running.
func (pm *ProbeManager) Uptime() time.Duration {
	return pm.now().Sub(pm.startTime)
}

// ProbeResult is the body of a probe endpoint.
type ProbeResult struct {
	Status    Status             `json:"status"`
	Version   string             `json:"version,omitempty"`
	Uptime    string             `json:"uptime,omitempty"`
	Checks    map[string]*Result `json:"checks,omitempty"`
	Timestamp time.Time          `json:"timestamp"`
}

func (pm *ProbeManager) probe(status Status, checks map[string]*Result) *ProbeResult {
	if checks == nil {
		checks = make(map[string]*Result)
	}
	return &ProbeResult{
		Status:    status,
		Version:   pm.version,
		Uptime:    pm.Uptime().Round(time.Second).String(),
		Checks:    checks,
		Timestamp: pm.now().UTC(),
	}
}

// CheckLiveness reports the process is responsive. It runs no checks and
// only degrades during shutdown.
func (pm *ProbeManager) CheckLiveness(ctx context.Context) *ProbeResult {
	if pm.IsShuttingDown() {
		return pm.probe(StatusDegraded, nil)
	}
	return pm.probe(StatusHealthy, nil)
}

// CheckReadiness runs every check. It fails immediately during shutdown.
func (pm *ProbeManager) CheckReadiness(ctx context.Context) *ProbeResult {
	if pm.IsShuttingDown() {
		return pm.probe(StatusUnhealthy, nil)
	}
	checks := pm.Manager.Check(ctx)
	return pm.probe(pm.Manager.OverallStatus(checks), checks)
}

// CheckStartup passes once MarkInitialized has been called.
func (pm *ProbeManager) CheckStartup(ctx context.Context) *ProbeResult {
	if pm.IsInitialized() {
		return pm.probe(StatusHealthy, nil)
	}
	return pm.probe(StatusUnhealthy, nil)
}

// Summary is the body of GET /api/health.
type Summary struct {
	Status        Status            `json:"status"`
	Timestamp     time.Time         `json:"timestamp"`
	Version       string            `json:"version"`
	Uptime        string            `json:"uptime"`
	UptimeSeconds int64             `json:"uptime_seconds"`
	Services      map[string]string `json:"services"`
}

// Summary runs every check and reports each pipeline stage as operational
// when the catalog check is.
func (pm *ProbeManager) Summary(ctx context.Context) *Summary {
	checks := pm.Manager.Check(ctx)
	status := pm.Manager.OverallStatus(checks)

	pipeline := serviceOperational
	if r, ok := checks[CatalogCheckName]; ok && !r.Status.Operational() {
		pipeline = serviceUnavailable
	}

	services := make(map[string]string, len(PipelineServices)+len(checks))
	for _, name := range PipelineServices {
		services[name] = pipeline
	}
	for name, r := range checks {
		services[name] = r.Status.String()
	}

	uptime := uptimeNormal
	switch status {
	case StatusDegraded:
		uptime = uptimeDegraded
	case StatusUnhealthy:
		uptime = uptimeDown
	}

	return &Summary{
		Status:        status,
		Timestamp:     pm.now().UTC(),
		Version:       pm.version,
		Uptime:        uptime,
		UptimeSeconds: int64(pm.Uptime().Seconds()),
		Services:      services,
	}
}
