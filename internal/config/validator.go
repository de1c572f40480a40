package config

import (
	"fmt"
	"net/url"
	"slices"
	"strings"
)

// ValidationError is one invalid setting.
type ValidationError struct {
	Field   string
	Value   any
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s (got: %v)", e.Field, e.Message, e.Value)
}

// ValidationErrors collects every invalid setting found.
type ValidationErrors []ValidationError

func (e ValidationErrors) Error() string {
	switch len(e) {
	case 0:
		return ""
	case 1:
		return e[0].Error()
	}
	msgs := make([]string, len(e))
	for i, err := range e {
		msgs[i] = err.Error()
	}
	return fmt.Sprintf("%d validation errors: %s", len(e), strings.Join(msgs, "; "))
}

// ValidLogLevels lists accepted logging.level values.
func ValidLogLevels() []string { return []string{"debug", "info", "warn", "error"} }

// ValidLogFormats lists accepted logging.format values.
func ValidLogFormats() []string { return []string{"json", "text"} }

// Validate returns every invalid setting.
func (c *Config) Validate() ValidationErrors {
	var errs ValidationErrors
	add := func(field string, value any, msg string) {
		errs = append(errs, ValidationError{Field: field, Value: value, Message: msg})
	}

	s := c.Server
	if s.Port < 1 || s.Port > 65535 {
		add("server.port", s.Port, "must be between 1 and 65535")
	}
	if s.ReadTimeout <= 0 {
		add("server.read_timeout", s.ReadTimeout, "must be positive")
	}
	if s.WriteTimeout <= 0 {
		add("server.write_timeout", s.WriteTimeout, "must be positive")
	}
	if s.ShutdownTimeout <= 0 {
		add("server.shutdown_timeout", s.ShutdownTimeout, "must be positive")
	}
	for _, origin := range s.CORSOrigins {
		if strings.TrimSpace(origin) == "" {
			add("server.cors_origins", s.CORSOrigins, "must not contain empty origins")
			break
		}
	}

	if !slices.Contains(ValidLogLevels(), strings.ToLower(c.Logging.Level)) {
		add("logging.level", c.Logging.Level, "must be one of "+strings.Join(ValidLogLevels(), ", "))
	}
	if !slices.Contains(ValidLogFormats(), strings.ToLower(c.Logging.Format)) {
		add("logging.format", c.Logging.Format, "must be one of "+strings.Join(ValidLogFormats(), ", "))
	}

	t := c.Telemetry
	if t.SampleRate < 0 || t.SampleRate > 1 {
		add("telemetry.sample_rate", t.SampleRate, "must be between 0 and 1")
	}
	if t.Enabled && t.Endpoint == "" {
		add("telemetry.endpoint", t.Endpoint, "is required when telemetry is enabled")
	}

	if c.Catalog.Debounce < 0 {
		add("catalog.debounce", c.Catalog.Debounce, "must not be negative")
	}
	if c.Catalog.Watch && c.Catalog.Path == "" {
		add("catalog.watch", c.Catalog.Watch, "requires catalog.path")
	}

	e := c.Events
	if e.Buffer < 1 {
		add("events.buffer", e.Buffer, "must be at least 1")
	}
	if e.MaxAttempts < 1 || e.MaxAttempts > 10 {
		add("events.max_attempts", e.MaxAttempts, "must be between 1 and 10")
	}
	if e.InitialDelay < 0 {
		add("events.initial_delay", e.InitialDelay, "must not be negative")
	}
	if e.Timeout <= 0 {
		add("events.timeout", e.Timeout, "must be positive")
	}
	if e.WebhookURL != "" {
		u, err := url.Parse(e.WebhookURL)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			add("events.webhook_url", e.WebhookURL, "must be an absolute http or https URL")
		}
	}

	return errs
}
