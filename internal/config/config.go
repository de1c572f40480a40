// Package config loads smartplan settings from defaults, an optional YAML
// file, and SMARTPLAN_* environment variables, in increasing precedence.
package config

import (
	"errors"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"

	perrors "github.com/felixgeelhaar/smartplan/internal/errors"
)

// EnvPrefix prefixes every environment override, e.g. SMARTPLAN_SERVER_PORT.
const EnvPrefix = "SMARTPLAN"

// FileName is the config file searched for when no path is given.
const FileName = "smartplan"

// Config holds all settings.
type Config struct {
	Server    ServerConfig    `mapstructure:"server" yaml:"server"`
	Logging   LoggingConfig   `mapstructure:"logging" yaml:"logging"`
	Telemetry TelemetryConfig `mapstructure:"telemetry" yaml:"telemetry"`
	Catalog   CatalogConfig   `mapstructure:"catalog" yaml:"catalog"`
	Events    EventsConfig    `mapstructure:"events" yaml:"events"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Host             string        `mapstructure:"host" yaml:"host"`
	Port             int           `mapstructure:"port" yaml:"port"`
	ReadTimeout      time.Duration `mapstructure:"read_timeout" yaml:"read_timeout"`
	WriteTimeout     time.Duration `mapstructure:"write_timeout" yaml:"write_timeout"`
	ShutdownTimeout  time.Duration `mapstructure:"shutdown_timeout" yaml:"shutdown_timeout"`
	CORSOrigins      []string      `mapstructure:"cors_origins" yaml:"cors_origins"`
	ValidateRequests bool          `mapstructure:"validate_requests" yaml:"validate_requests"`
}

// Address returns host:port.
func (s ServerConfig) Address() string {
	return net.JoinHostPort(s.Host, strconv.Itoa(s.Port))
}

// LoggingConfig configures internal/log.
type LoggingConfig struct {
	Level  string `mapstructure:"level" yaml:"level"`
	Format string `mapstructure:"format" yaml:"format"`
}

// TelemetryConfig configures OTLP export.
type TelemetryConfig struct {
	Enabled     bool    `mapstructure:"enabled" yaml:"enabled"`
	Endpoint    string  `mapstructure:"endpoint" yaml:"endpoint"`
	SampleRate  float64 `mapstructure:"sample_rate" yaml:"sample_rate"`
	Environment string  `mapstructure:"environment" yaml:"environment"`
}

// CatalogConfig selects the template catalog. An empty path uses the
// built-in catalog.
type CatalogConfig struct {
	Path     string        `mapstructure:"path" yaml:"path"`
	Watch    bool          `mapstructure:"watch" yaml:"watch"`
	Debounce time.Duration `mapstructure:"debounce" yaml:"debounce"`
}

// EventsConfig configures plan event delivery. The webhook sink is enabled
// by setting WebhookURL.
type EventsConfig struct {
	Buffer         int           `mapstructure:"buffer" yaml:"buffer"`
	LogEnabled     bool          `mapstructure:"log_enabled" yaml:"log_enabled"`
	WebhookURL     string        `mapstructure:"webhook_url" yaml:"webhook_url"`
	WebhookSecret  string        `mapstructure:"webhook_secret" yaml:"webhook_secret"`
	MaxAttempts    int           `mapstructure:"max_attempts" yaml:"max_attempts"`
	InitialDelay   time.Duration `mapstructure:"initial_delay" yaml:"initial_delay"`
	Timeout        time.Duration `mapstructure:"timeout" yaml:"timeout"`
	DeadLetterPath string        `mapstructure:"dead_letter_path" yaml:"dead_letter_path"`
}

// DefaultCORSOrigins are the development front-ends allowed by default.
var DefaultCORSOrigins = []string{
	"http://localhost:3000",
	"http://127.0.0.1:3000",
	"http://localhost:5173",
	"http://127.0.0.1:5173",
	"https://*.vercel.app",
	"https://*.netlify.app",
}

// Default returns the built-in settings.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Host:             "0.0.0.0",
			Port:             8000,
			ReadTimeout:      15 * time.Second,
			WriteTimeout:     30 * time.Second,
			ShutdownTimeout:  20 * time.Second,
			CORSOrigins:      append([]string(nil), DefaultCORSOrigins...),
			ValidateRequests: true,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
		Telemetry: TelemetryConfig{
			SampleRate:  1.0,
			Environment: "development",
		},
		Catalog: CatalogConfig{
			Debounce: 500 * time.Millisecond,
		},
		Events: EventsConfig{
			Buffer:       256,
			LogEnabled:   true,
			MaxAttempts:  3,
			InitialDelay: 500 * time.Millisecond,
			Timeout:      30 * time.Second,
		},
	}
}

// Redacted returns a copy safe to print.
func (c *Config) Redacted() *Config {
	out := *c
	out.Server.CORSOrigins = append([]string(nil), c.Server.CORSOrigins...)
	if out.Events.WebhookSecret != "" {
		out.Events.WebhookSecret = "********"
	}
	return &out
}

// Loader reads configuration through its own viper instance so command
// flags can be bound to it.
type Loader struct {
	v *viper.Viper
}

// NewLoader creates a loader with defaults and environment overrides wired.
func NewLoader() *Loader {
	v := viper.New()
	setDefaults(v, Default())

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	return &Loader{v: v}
}

// Viper exposes the underlying instance for flag binding.
func (l *Loader) Viper() *viper.Viper { return l.v }

// ConfigFileUsed returns the file read by the last Load, if any.
func (l *Loader) ConfigFileUsed() string { return l.v.ConfigFileUsed() }

// Load reads path, or searches the working directory and ConfigDir for
// smartplan.yaml when path is empty. A missing search file is not an
// error; a missing explicit file is.
func (l *Loader) Load(path string) (*Config, error) {
	if path != "" {
		l.v.SetConfigFile(path)
	} else {
		l.v.SetConfigName(FileName)
		l.v.SetConfigType("yaml")
		l.v.AddConfigPath(".")
		l.v.AddConfigPath(ConfigDir())
	}

	if err := l.v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, perrors.Wrap(perrors.ErrCodeConfigInvalid, "read config file", err).
				WithSuggestion("Check the file path and YAML syntax")
		}
	}

	var cfg Config
	if err := l.v.Unmarshal(&cfg); err != nil {
		return nil, perrors.Wrap(perrors.ErrCodeConfigInvalid, "decode configuration", err)
	}

	if errs := cfg.Validate(); len(errs) > 0 {
		pe := perrors.NewConfigInvalidError(errs.Error())
		pe.Cause = errs
		return nil, pe
	}
	return &cfg, nil
}

// Load is a convenience for NewLoader().Load(path).
func Load(path string) (*Config, error) {
	return NewLoader().Load(path)
}

// ConfigDir returns $XDG_CONFIG_HOME/smartplan or ~/.config/smartplan.
func ConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "smartplan")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ".smartplan"
	}
	return filepath.Join(home, ".config", "smartplan")
}

func setDefaults(v *viper.Viper, d *Config) {
	v.SetDefault("server.host", d.Server.Host)
	v.SetDefault("server.port", d.Server.Port)
	v.SetDefault("server.read_timeout", d.Server.ReadTimeout)
	v.SetDefault("server.write_timeout", d.Server.WriteTimeout)
	v.SetDefault("server.shutdown_timeout", d.Server.ShutdownTimeout)
	v.SetDefault("server.cors_origins", d.Server.CORSOrigins)
	v.SetDefault("server.validate_requests", d.Server.ValidateRequests)

	v.SetDefault("logging.level", d.Logging.Level)
	v.SetDefault("logging.format", d.Logging.Format)

	v.SetDefault("telemetry.enabled", d.Telemetry.Enabled)
	v.SetDefault("telemetry.endpoint", d.Telemetry.Endpoint)
	v.SetDefault("telemetry.sample_rate", d.Telemetry.SampleRate)
	v.SetDefault("telemetry.environment", d.Telemetry.Environment)

	v.SetDefault("catalog.path", d.Catalog.Path)
	v.SetDefault("catalog.watch", d.Catalog.Watch)
	v.SetDefault("catalog.debounce", d.Catalog.Debounce)

	v.SetDefault("events.buffer", d.Events.Buffer)
	v.SetDefault("events.log_enabled", d.Events.LogEnabled)
	v.SetDefault("events.webhook_url", d.Events.WebhookURL)
	v.SetDefault("events.webhook_secret", d.Events.WebhookSecret)
	v.SetDefault("events.max_attempts", d.Events.MaxAttempts)
	v.SetDefault("events.initial_delay", d.Events.InitialDelay)
	v.SetDefault("events.timeout", d.Events.Timeout)
	v.SetDefault("events.dead_letter_path", d.Events.DeadLetterPath)
}
