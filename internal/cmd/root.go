// Package cmd implements the smartplan command line.
package cmd

import (
	"context"
	"net"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/smartplan/internal/config"
	"github.com/felixgeelhaar/smartplan/internal/log"
	"github.com/felixgeelhaar/smartplan/internal/metrics"
	"github.com/felixgeelhaar/smartplan/internal/version"
)

// skipConfig marks commands that run without loading configuration.
const skipConfig = "smartplan/skip-config"

// app carries the state shared by every command of one invocation.
type app struct {
	loader     *config.Loader
	configPath string

	cfg      *config.Config
	logger   *log.Logger
	registry *prometheus.Registry
	metrics  *metrics.Metrics

	// listen opens the server socket; replaced in tests.
	listen func(network, address string) (net.Listener, error)

	cleanups []func()
}

func newApp() *app {
	return &app{
		loader: config.NewLoader(),
		cfg:    config.Default(),
		logger: log.Discard(),
		listen: net.Listen,
	}
}

// NewRootCmd builds the command tree. Configuration is loaded before any
// subcommand runs.
func NewRootCmd() *cobra.Command {
	return newApp().rootCmd()
}

func (a *app) rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "smartplan",
		Short: "Turn a natural-language goal into a scheduled project plan",
		Long: `Smartplan turns a goal such as "Launch a new mobile app by Q3" into a
structured plan: tasks with estimates and dependencies, a working-day
schedule, milestones, a risk assessment, and recommendations.

Plans are generated deterministically from a template catalog. Run the
HTTP API with 'smartplan serve' or generate a plan directly with
'smartplan plan'.`,
		Version:       version.GetInfo().Short(),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Annotations[skipConfig] == "true" {
				return nil
			}
			return a.setup(cmd)
		},
	}

	flags := root.PersistentFlags()
	flags.StringVarP(&a.configPath, "config", "c", "", "config file (default: ./smartplan.yaml or "+config.ConfigDir()+"/smartplan.yaml)")
	flags.String("log-level", "", "log level: debug, info, warn, error")
	flags.String("log-format", "", "log format: json, text")
	flags.String("catalog", "", "template catalog file (default: built-in catalog)")

	v := a.loader.Viper()
	_ = v.BindPFlag("logging.level", flags.Lookup("log-level"))
	_ = v.BindPFlag("logging.format", flags.Lookup("log-format"))
	_ = v.BindPFlag("catalog.path", flags.Lookup("catalog"))

	root.AddCommand(
		a.serveCmd(),
		a.planCmd(),
		a.templatesCmd(),
		a.domainsCmd(),
		a.configCmd(),
		a.versionCmd(),
	)
	return root
}

func (a *app) setup(cmd *cobra.Command) error {
	cfg, err := a.loader.Load(a.configPath)
	if err != nil {
		return err
	}
	a.cfg = cfg

	a.logger = setupLogging(cfg, cmd.ErrOrStderr())
	a.registry, a.metrics = metrics.NewProcessRegistry()
	a.cleanups = append(a.cleanups, setupTelemetry(cmd.Context(), cfg, a.logger))
	return nil
}

// close runs cleanups in reverse order.
func (a *app) close() {
	for i := len(a.cleanups) - 1; i >= 0; i-- {
		a.cleanups[i]()
	}
	a.cleanups = nil
}

// Execute runs the root command with a background context.
func Execute() error {
	return ExecuteContext(context.Background())
}

// ExecuteContext runs the root command. Cancelling ctx stops long-running
// commands such as serve.
func ExecuteContext(ctx context.Context) error {
	a := newApp()
	defer a.close()
	return a.rootCmd().ExecuteContext(ctx)
}
