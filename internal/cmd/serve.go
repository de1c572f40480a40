package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/smartplan/internal/catalog"
	"github.com/felixgeelhaar/smartplan/internal/health"
	"github.com/felixgeelhaar/smartplan/internal/planner"
	"github.com/felixgeelhaar/smartplan/internal/server"
	"github.com/felixgeelhaar/smartplan/internal/ux"
	"github.com/felixgeelhaar/smartplan/internal/version"
)

func (a *app) serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the planning HTTP API",
		Long: `Start the HTTP API.

Endpoints:
  POST /api/create-plan   - Generate a plan from a goal
  GET  /api/health        - Service summary
  GET  /api/domains       - Supported planning domains
  GET  /api/templates     - Template catalog
  GET  /api/openapi.json  - API contract
  /health/live, /health/ready, /health/startup, /healthz
  GET  /metrics           - Prometheus metrics

The server shuts down gracefully on SIGTERM or SIGINT, draining open
connections and pending plan events.`,
		Example: `  # Listen on the configured address (default 0.0.0.0:8000)
  smartplan serve

  # Custom port, reloading a catalog file when it changes
  smartplan serve --port 9000 --catalog ./catalog.yaml --watch`,
		Args: cobra.NoArgs,
	}
	cmd.RunE = a.instrument("serve", a.runServe)

	f := cmd.Flags()
	f.String("host", "", "address to bind to (default 0.0.0.0)")
	f.Int("port", 0, "port to listen on (default 8000)")
	f.Bool("watch", false, "reload the catalog file when it changes (requires --catalog)")

	v := a.loader.Viper()
	_ = v.BindPFlag("server.host", f.Lookup("host"))
	_ = v.BindPFlag("server.port", f.Lookup("port"))
	_ = v.BindPFlag("catalog.watch", f.Lookup("watch"))

	return cmd
}

func (a *app) runServe(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	cfg := a.cfg
	out := cmd.OutOrStdout()

	c, err := a.loadCatalog()
	if err != nil {
		return err
	}
	store := catalog.NewStore(c)

	engine := planner.NewEngine(c,
		planner.WithCatalogStore(store),
		planner.WithLogger(a.logger),
		planner.WithMetrics(a.metrics),
	)
	dispatcher := a.dispatcher()

	pm := health.NewProbeManager(version.APIVersion)
	pm.AddChecker(health.NewCatalogChecker(store))
	pm.AddChecker(health.NewEventsChecker(dispatcher))

	srv, err := server.NewServer(pm, server.Config{
		Address:          cfg.Server.Address(),
		ShutdownTimeout:  cfg.Server.ShutdownTimeout,
		ReadTimeout:      cfg.Server.ReadTimeout,
		WriteTimeout:     cfg.Server.WriteTimeout,
		CORSOrigins:      cfg.Server.CORSOrigins,
		ValidateRequests: cfg.Server.ValidateRequests,
	}, server.Deps{
		Engine:   engine,
		Events:   dispatcher,
		Logger:   a.logger,
		Metrics:  a.metrics,
		Gatherer: a.registry,
	})
	if err != nil {
		return err
	}

	l, err := a.listen("tcp", cfg.Server.Address())
	if err != nil {
		return ux.FormatError(err, "listen")
	}

	watchCtx, stopWatch := context.WithCancel(ctx)
	defer stopWatch()
	if cfg.Catalog.Watch {
		w, err := catalog.NewWatcher(cfg.Catalog.Path, store, cfg.Catalog.Debounce, a.logger,
			func(c *catalog.Catalog, err error) {
				if err != nil {
					a.metrics.RecordCatalog("", "", err)
					return
				}
				a.metrics.RecordCatalog(c.Version, c.Digest, nil)
			})
		if err != nil {
			_ = l.Close()
			return err
		}
		go func() {
			if err := w.Run(watchCtx); err != nil && !errors.Is(err, context.Canceled) {
				a.logger.WithError(err).Warn("Catalog watcher stopped")
			}
		}()
	}

	addr := l.Addr().String()
	fmt.Fprintf(out, "Smartplan %s (API %s)\n", version.GetInfo().Version, version.APIVersion)
	fmt.Fprintln(out, c.Describe())
	fmt.Fprintf(out, "Listening on: http://%s\n", addr)
	fmt.Fprintf(out, "  Plans:   POST http://%s/api/create-plan\n", addr)
	fmt.Fprintf(out, "  Health:  http://%s/api/health (%s)\n", addr, strings.Join(pm.CheckNames(), ", "))
	fmt.Fprintf(out, "  Metrics: http://%s/metrics\n", addr)
	fmt.Fprintf(out, "Press Ctrl+C to stop the server\n")

	serverErr := make(chan error, 1)
	go func() {
		serverErr <- srv.Serve(l)
	}()

	select {
	case err := <-serverErr:
		if errors.Is(err, http.ErrServerClosed) {
			err = nil
		}
		closeCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		_ = dispatcher.Close(closeCtx)
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
		return nil

	case <-ctx.Done():
		fmt.Fprintln(out, "Initiating graceful shutdown...")
		stopWatch()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown error: %w", err)
		}
		if err := dispatcher.Close(shutdownCtx); err != nil {
			a.logger.WithError(err).Warn("Pending plan events were not delivered")
		}
		if n := dispatcher.Dropped(); n > 0 {
			a.logger.Warn("Plan events dropped", "count", n)
		}

		fmt.Fprintln(out, "Server stopped gracefully")
		return nil
	}
}
