package cmd

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/smartplan/internal/config"
)

// secretKeys are printed redacted by 'config get'.
var secretKeys = map[string]bool{
	"events.webhook_secret": true,
}

func (a *app) configCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect the effective configuration",
		Long: `Inspect the configuration after defaults, the config file, SMARTPLAN_*
environment variables, and flags have been applied.`,
		Example: `  # View the effective configuration
  smartplan config view

  # Get a single value
  smartplan config get server.port

  # Show which file was read
  smartplan config path`,
	}
	cmd.AddCommand(a.configViewCmd(), a.configGetCmd(), a.configPathCmd())
	return cmd
}

func (a *app) configViewCmd() *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "view",
		Short: "Display the effective configuration",
		Long:  `Display the effective configuration. Secrets are redacted.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if format == "table" {
				format = "yaml"
			}
			return write(cmd, format, a.cfg.Redacted(), nil)
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", "yaml", "output format: yaml, json")
	return cmd
}

func (a *app) configGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <key>",
		Short: "Print one configuration value",
		Long:  `Print one configuration value by its dotted key, e.g. server.port or catalog.path.`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			key := strings.ToLower(args[0])
			v := a.loader.Viper()
			if !v.IsSet(key) {
				return fmt.Errorf("unknown configuration key %q", args[0])
			}

			value := v.Get(key)
			if secretKeys[key] && fmt.Sprint(value) != "" {
				value = "********"
			}
			switch val := value.(type) {
			case []string:
				value = strings.Join(val, ",")
			case []interface{}:
				parts := make([]string, len(val))
				for i, p := range val {
					parts[i] = fmt.Sprint(p)
				}
				value = strings.Join(parts, ",")
			}
			fmt.Fprintln(cmd.OutOrStdout(), value)
			return nil
		},
	}
}

func (a *app) configPathCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Show the configuration file path",
		Long: `Show the configuration file that was read. When none was found, show
where one would be read from.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if used := a.loader.ConfigFileUsed(); used != "" {
				fmt.Fprintln(cmd.OutOrStdout(), used)
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), filepath.Join(config.ConfigDir(), config.FileName+".yaml"))
			fmt.Fprintln(cmd.ErrOrStderr(), "(not found, using defaults)")
			return nil
		},
	}
}
