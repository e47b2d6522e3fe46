package config

import (
	"errors"
	"fmt"
	"net"
	"slices"
	"strings"

	"ximd/internal/xim"
)

// ErrInvalidConfig is matched by every error ValidateConfig returns.
var ErrInvalidConfig = errors.New("invalid configuration")

// ValidationError names one offending field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("config: %s: %s", e.Field, e.Message)
}

// ValidationErrors collects every problem found in one pass.
type ValidationErrors []ValidationError

func (e ValidationErrors) Error() string {
	msgs := make([]string, len(e))
	for i := range e {
		msgs[i] = e[i].Error()
	}
	return strings.Join(msgs, "; ")
}

// Unwrap lets errors.Is match ErrInvalidConfig.
func (e ValidationErrors) Unwrap() error {
	return ErrInvalidConfig
}

func (e *ValidationErrors) add(field, format string, args ...any) {
	*e = append(*e, ValidationError{Field: field, Message: fmt.Sprintf(format, args...)})
}

// oneOf records field unless v is among valid.
func (e *ValidationErrors) oneOf(field, v string, valid ...string) {
	if !slices.Contains(valid, v) {
		e.add(field, "invalid value %q (valid: %s)", v, strings.Join(valid, ", "))
	}
}

// ValidateConfig checks c and returns ValidationErrors, or nil.
func ValidateConfig(c *Config) error {
	var errs ValidationErrors

	if c.Version < 1 || c.Version > Version {
		errs.add("version", "unsupported version %d (current: %d)", c.Version, Version)
	}
	errs.server(&c.Server)
	errs.triggers(&c.Triggers)
	errs.logging(&c.Logging)
	if c.Control.Enabled {
		errs.oneOf("control.bus", c.Control.Bus, "session", "system")
	}
	if c.Metrics.Enabled {
		errs.metrics(&c.Metrics)
	}

	if len(errs) == 0 {
		return nil
	}
	return errs
}

func (e *ValidationErrors) server(s *ServerConfig) {
	switch {
	case strings.TrimSpace(s.Name) == "":
		e.add("server.name", "required field is missing")
	case strings.ContainsAny(s.Name, "@=, \t"):
		e.add("server.name", "name %q must not contain '@', '=', ',' or whitespace", s.Name)
	}

	if s.Screen < -1 {
		e.add("server.screen", "screen must be -1 (display default) or a screen number")
	}

	if len(s.Styles) == 0 {
		e.add("server.styles", "at least one input style is required")
	}
	for i, style := range s.Styles {
		if _, err := xim.ParseInputStyle(style); err != nil {
			e.add(fmt.Sprintf("server.styles[%d]", i), "%v", err)
		}
	}

	if len(s.Encodings) == 0 {
		e.add("server.encodings", "at least one encoding is required")
	}
}

func (e *ValidationErrors) triggers(t *TriggerConfig) {
	check := func(list string, chords []string) {
		for i, chord := range chords {
			if _, err := ParseTrigger(chord); err != nil {
				e.add(fmt.Sprintf("triggers.%s[%d]", list, i), "%v", err)
			}
		}
	}
	check("on", t.On)
	check("off", t.Off)
}

func (e *ValidationErrors) logging(l *LoggingConfig) {
	e.oneOf("logging.level", l.Level, "debug", "info", "warn", "error")
	e.oneOf("logging.format", l.Format, "text", "json")
	e.oneOf("logging.output", l.Output, "stdout", "stderr", "file", "both")
	if (l.Output == "file" || l.Output == "both") && l.FilePath == "" {
		e.add("logging.file_path", "required when output is %q", l.Output)
	}

	if l.MaxSizeMB < 1 {
		e.add("logging.max_size_mb", "must be at least 1")
	}
	if l.MaxBackups < 0 {
		e.add("logging.max_backups", "cannot be negative")
	}
	if l.MaxAgeDays < 0 {
		e.add("logging.max_age_days", "cannot be negative")
	}
}

func (e *ValidationErrors) metrics(m *MetricsConfig) {
	if _, _, err := net.SplitHostPort(m.Listen); err != nil {
		e.add("metrics.listen", "invalid listen address %q: %v", m.Listen, err)
	}
	switch {
	case !strings.HasPrefix(m.Path, "/"):
		e.add("metrics.path", "path must start with '/'")
	case slices.Contains([]string{"/healthz", "/livez", "/readyz"}, m.Path):
		e.add("metrics.path", "path %q is reserved for health checks", m.Path)
	}
}
