// Package server exposes the planning engine over HTTP.
//
// Besides the JSON API it serves:
//   - Kubernetes-style health probes (liveness, readiness, startup)
//   - Prometheus metrics
//   - The OpenAPI contract that validates incoming requests
//
// Shutdown drains in-flight requests before returning.
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/felixgeelhaar/smartplan/internal/events"
	"github.com/felixgeelhaar/smartplan/internal/health"
	"github.com/felixgeelhaar/smartplan/internal/log"
	"github.com/felixgeelhaar/smartplan/internal/metrics"
	"github.com/felixgeelhaar/smartplan/internal/planner"
	"github.com/felixgeelhaar/smartplan/internal/telemetry"
)

// Server provides the planning API and health endpoints.
type Server struct {
	httpServer      *http.Server
	handler         http.Handler
	probeManager    *health.ProbeManager
	inShutdown      atomic.Bool
	shutdownTimeout time.Duration

	engine   *planner.Engine
	events   Emitter
	logger   *log.Logger
	metrics  *metrics.Metrics
	gatherer prometheus.Gatherer
	contract *contract
}

// Emitter receives plan events after the response is written.
// *events.Dispatcher satisfies it.
type Emitter interface {
	Emit(e events.Event) bool
}

// Config holds server configuration.
type Config struct {
	// Address is the listen address (e.g., ":8000", "0.0.0.0:8000")
	Address string

	// ShutdownTimeout is the maximum time to wait for connections to drain during shutdown.
	// Defaults to 30 seconds if not specified.
	ShutdownTimeout time.Duration

	// ReadTimeout is the maximum duration for reading the entire request.
	// Defaults to 10 seconds if not specified.
	ReadTimeout time.Duration

	// WriteTimeout is the maximum duration before timing out writes of the response.
	// Defaults to 10 seconds if not specified.
	WriteTimeout time.Duration

	// IdleTimeout is the maximum amount of time to wait for the next request.
	// Defaults to 60 seconds if not specified.
	IdleTimeout time.Duration

	// CORSOrigins lists allowed origins. Entries may contain path.Match
	// wildcards, e.g. "https://*.vercel.app".
	CORSOrigins []string

	// ValidateRequests checks /api requests against the OpenAPI contract
	// before they reach a handler.
	ValidateRequests bool
}

// Deps are the collaborators the handlers call into.
type Deps struct {
	Engine *planner.Engine

	// Events is optional; plans are not announced when nil.
	Events Emitter

	// Logger defaults to a discarding logger.
	Logger *log.Logger

	// Metrics and Gatherer are optional. /metrics answers 404 without a Gatherer.
	Metrics  *metrics.Metrics
	Gatherer prometheus.Gatherer
}

// NewServer creates a new HTTP server. It fails only when the embedded
// OpenAPI contract cannot be loaded.
func NewServer(probeManager *health.ProbeManager, cfg Config, deps Deps) (*Server, error) {
	if deps.Engine == nil {
		return nil, fmt.Errorf("server: engine is required")
	}

	// Set defaults
	if cfg.ShutdownTimeout == 0 {
		cfg.ShutdownTimeout = 30 * time.Second
	}
	if cfg.ReadTimeout == 0 {
		cfg.ReadTimeout = 10 * time.Second
	}
	if cfg.WriteTimeout == 0 {
		cfg.WriteTimeout = 10 * time.Second
	}
	if cfg.IdleTimeout == 0 {
		cfg.IdleTimeout = 60 * time.Second
	}
	if deps.Logger == nil {
		deps.Logger = log.Discard()
	}

	c, err := loadContract()
	if err != nil {
		return nil, err
	}

	s := &Server{
		probeManager:    probeManager,
		shutdownTimeout: cfg.ShutdownTimeout,
		engine:          deps.Engine,
		events:          deps.Events,
		logger:          deps.Logger.With("component", "server"),
		metrics:         deps.Metrics,
		gatherer:        deps.Gatherer,
		contract:        c,
	}

	mux := http.NewServeMux()

	// API
	mux.HandleFunc("POST /api/create-plan", s.handleCreatePlan)
	mux.HandleFunc("GET /api/health", s.handleHealthSummary)
	mux.HandleFunc("GET /api/domains", s.handleDomains)
	mux.HandleFunc("GET /api/templates", s.handleTemplates)
	mux.HandleFunc("GET /api/openapi.json", s.handleOpenAPI)

	// Register health endpoints
	mux.HandleFunc("/health/live", s.handleLiveness)
	mux.HandleFunc("/health/ready", s.handleReadiness)
	mux.HandleFunc("/health/startup", s.handleStartup)

	// Backward compatibility: /healthz endpoint (maps to readiness)
	mux.HandleFunc("/healthz", s.handleReadiness)

	if s.gatherer != nil {
		mux.Handle("GET /metrics", metrics.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	}

	var h http.Handler = mux
	if cfg.ValidateRequests {
		h = s.validateRequests(h)
	}
	h = cors(cfg.CORSOrigins)(h)
	h = s.observe(h)
	h = otelhttp.NewHandler(h, "smartplan",
		otelhttp.WithTracerProvider(telemetry.GetTracerProvider()),
		otelhttp.WithSpanNameFormatter(func(_ string, r *http.Request) string {
			return r.Method + " " + r.URL.Path
		}),
	)
	s.handler = h

	s.httpServer = &http.Server{
		Addr:         cfg.Address,
		Handler:      h,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
		ErrorLog:     slog.NewLogLogger(s.logger.Slog().Handler(), slog.LevelWarn),
	}

	return s, nil
}

// Handler returns the fully wrapped handler.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Start starts the HTTP server.
// This is a blocking call that returns when the server is stopped or encounters an error.
// Returns http.ErrServerClosed when the server is shut down gracefully.
func (s *Server) Start() error {
	s.probeManager.MarkInitialized()
	s.logger.Info("HTTP server listening", "address", s.httpServer.Addr)

	return s.httpServer.ListenAndServe()
}

// Serve is Start on an existing listener.
func (s *Server) Serve(l net.Listener) error {
	s.probeManager.MarkInitialized()
	s.logger.Info("HTTP server listening", "address", l.Addr().String())

	return s.httpServer.Serve(l)
}

// Shutdown performs graceful shutdown of the HTTP server.
//
// It:
//  1. Marks the server as shutting down (readiness probes will fail)
//  2. Disables HTTP keep-alives to stop accepting new requests
//  3. Waits for existing connections to drain (up to ShutdownTimeout)
//
// Plan events already emitted are drained by the dispatcher's own Close.
func (s *Server) Shutdown(ctx context.Context) error {
	s.inShutdown.Store(true)
	s.probeManager.MarkShutdown()

	s.httpServer.SetKeepAlivesEnabled(false)

	shutdownCtx, cancel := context.WithTimeout(ctx, s.shutdownTimeout)
	defer cancel()

	return s.httpServer.Shutdown(shutdownCtx)
}

// IsShuttingDown returns whether the server is shutting down.
func (s *Server) IsShuttingDown() bool {
	return s.inShutdown.Load()
}

// writeProbeResponse writes probe responses with consistent error handling.
func (s *Server) writeProbeResponse(w http.ResponseWriter, result *health.ProbeResult, unhealthyStatus int) {
	w.Header().Set("Content-Type", "application/json")

	if result.Status == health.StatusUnhealthy {
		w.WriteHeader(unhealthyStatus)
	} else {
		w.WriteHeader(http.StatusOK)
	}

	if err := json.NewEncoder(w).Encode(result); err != nil {
		s.logger.Warn("failed to encode probe response", "error", err)
	}
}

// handleLiveness handles liveness probe requests.
// GET /health/live
//
// Returns 200 while the process runs, with a degraded status during shutdown.
func (s *Server) handleLiveness(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	result := s.probeManager.CheckLiveness(r.Context())

	// Liveness should always return 200 (even during shutdown)
	s.writeProbeResponse(w, result, http.StatusOK)
}

// handleReadiness handles readiness probe requests.
// GET /health/ready
//
// Returns 503 when shutting down or when the template catalog is missing.
func (s *Server) handleReadiness(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	result := s.probeManager.CheckReadiness(r.Context())
	s.writeProbeResponse(w, result, http.StatusServiceUnavailable)
}

// handleStartup handles startup probe requests.
// GET /health/startup
//
// Returns 503 until the server has started listening.
func (s *Server) handleStartup(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	result := s.probeManager.CheckStartup(r.Context())
	s.writeProbeResponse(w, result, http.StatusServiceUnavailable)
}
