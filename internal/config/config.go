// Package config loads, validates and watches the ximd configuration.
package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
)

// Version is the current configuration schema version.
const Version = 1

// Config holds the complete daemon configuration.
type Config struct {
	// Version is the configuration schema version.
	Version int `toml:"version" json:"version" yaml:"version"`

	// Server configuration for the XIM server instance.
	Server ServerConfig `toml:"server" json:"server" yaml:"server"`

	// Triggers are the chords that switch the input method on and off.
	Triggers TriggerConfig `toml:"triggers" json:"triggers" yaml:"triggers"`

	// Logging configuration.
	Logging LoggingConfig `toml:"logging" json:"logging" yaml:"logging"`

	// Control configuration for the D-Bus status surface.
	Control ControlConfig `toml:"control" json:"control" yaml:"control"`

	// Metrics configuration for the Prometheus endpoint.
	Metrics MetricsConfig `toml:"metrics" json:"metrics" yaml:"metrics"`

	// mu protects concurrent access to the config.
	mu sync.RWMutex `toml:"-" json:"-" yaml:"-"`
}

// ServerConfig holds the construction parameters of the XIM server.
type ServerConfig struct {
	// Name is the server name clients select with XMODIFIERS=@im=<name>.
	Name string `toml:"name" json:"name" yaml:"name"`

	// Locale is a comma-separated locale list. "all" expands to every
	// locale the engine knows.
	Locale string `toml:"locale" json:"locale" yaml:"locale"`

	// Screen is the X screen number, or -1 for the display default.
	Screen int `toml:"screen" json:"screen" yaml:"screen"`

	// Styles are input styles such as "over_the_spot" or
	// "preedit_position|status_area".
	Styles []string `toml:"styles" json:"styles" yaml:"styles"`

	// Encodings advertised to clients.
	Encodings []string `toml:"encodings" json:"encodings" yaml:"encodings"`

	// EventMask is the X event mask clients are asked to forward.
	EventMask uint32 `toml:"event_mask" json:"event_mask" yaml:"event_mask"`

	// Strict turns protocol surprises into panics.
	Strict bool `toml:"strict" json:"strict" yaml:"strict"`

	// ReapOnDisconnect drops a client's contexts when it disconnects.
	ReapOnDisconnect bool `toml:"reap_on_disconnect" json:"reap_on_disconnect" yaml:"reap_on_disconnect"`

	// CloseOnDestroy closes the input method before it is destroyed.
	CloseOnDestroy bool `toml:"close_on_destroy" json:"close_on_destroy" yaml:"close_on_destroy"`
}

// TriggerConfig holds trigger chords like "ctrl+space".
type TriggerConfig struct {
	On  []string `toml:"on" json:"on" yaml:"on"`
	Off []string `toml:"off" json:"off" yaml:"off"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	// Level is the log level: "debug", "info", "warn", "error".
	Level string `toml:"level" json:"level" yaml:"level"`

	// Format is the log format: "text" or "json".
	Format string `toml:"format" json:"format" yaml:"format"`

	// Output is the log output: "stdout", "stderr", "file" or "both".
	Output string `toml:"output" json:"output" yaml:"output"`

	// FilePath is the path to the log file (when Output is "file" or "both").
	FilePath string `toml:"file_path" json:"file_path" yaml:"file_path"`

	// MaxSizeMB is the maximum log file size before rotation.
	MaxSizeMB int `toml:"max_size_mb" json:"max_size_mb" yaml:"max_size_mb"`

	// MaxBackups is the number of old log files to keep.
	MaxBackups int `toml:"max_backups" json:"max_backups" yaml:"max_backups"`

	// MaxAgeDays is the maximum age of log files in days.
	MaxAgeDays int `toml:"max_age_days" json:"max_age_days" yaml:"max_age_days"`

	// Compress determines whether to compress rotated logs.
	Compress bool `toml:"compress" json:"compress" yaml:"compress"`

	// AddSource adds file:line to every record.
	AddSource bool `toml:"add_source" json:"add_source" yaml:"add_source"`
}

// ControlConfig holds the D-Bus control surface configuration.
type ControlConfig struct {
	Enabled bool `toml:"enabled" json:"enabled" yaml:"enabled"`

	// Bus is "session" or "system".
	Bus string `toml:"bus" json:"bus" yaml:"bus"`
}

// MetricsConfig holds the Prometheus exposition configuration.
type MetricsConfig struct {
	Enabled bool `toml:"enabled" json:"enabled" yaml:"enabled"`

	// Listen is the HTTP listen address, e.g. "127.0.0.1:9464".
	Listen string `toml:"listen" json:"listen" yaml:"listen"`

	// Path is the URL path of the metrics handler.
	Path string `toml:"path" json:"path" yaml:"path"`
}

// DefaultConfig returns a configuration with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Version: Version,
		Server: ServerConfig{
			Name:   "ximd",
			Locale: "all",
			Screen: -1,
			Styles: []string{
				"preedit_position|status_area",
				"preedit_position|status_nothing",
				"preedit_position|status_none",
				"root",
				"preedit_nothing|status_none",
			},
			Encodings:      []string{"COMPOUND_TEXT"},
			CloseOnDestroy: true,
		},
		Triggers: TriggerConfig{
			On:  []string{"ctrl+space"},
			Off: []string{"ctrl+space"},
		},
		Logging: LoggingConfig{
			Level:      "info",
			Format:     "text",
			Output:     "stderr",
			FilePath:   filepath.Join(PlatformLogDir(), "ximd.log"),
			MaxSizeMB:  10,
			MaxBackups: 3,
			MaxAgeDays: 7,
			Compress:   true,
		},
		Control: ControlConfig{
			Enabled: true,
			Bus:     "session",
		},
		Metrics: MetricsConfig{
			Enabled: false,
			Listen:  "127.0.0.1:9464",
			Path:    "/metrics",
		},
	}
}

// Load reads path, ConfigPath() when empty, and applies the environment.
// A missing file yields the defaults. Unlike Loader.Load it does not
// validate.
func Load(path string) (*Config, error) {
	if path == "" {
		path = ConfigPath()
	}

	cfg, err := loadConfigFromFile(path)
	if err != nil {
		return nil, err
	}

	cfg.ApplyEnvOverrides()

	return cfg, nil
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	return ValidateConfig(c)
}

// ApplyEnvOverrides applies environment variable overrides to the configuration.
// Environment variables are prefixed with XIMD_ and use underscores.
func (c *Config) ApplyEnvOverrides() {
	c.mu.Lock()
	defer c.mu.Unlock()

	// Server overrides
	if v := os.Getenv("XIMD_SERVER_NAME"); v != "" {
		c.Server.Name = v
	}
	if v := os.Getenv("XIMD_LOCALE"); v != "" {
		c.Server.Locale = v
	}
	if v := os.Getenv("XIMD_SCREEN"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Server.Screen = n
		}
	}
	if v := os.Getenv("XIMD_STYLES"); v != "" {
		c.Server.Styles = splitList(v, ",")
	}
	if v, ok := envBool("XIMD_STRICT"); ok {
		c.Server.Strict = v
	}
	if v, ok := envBool("XIMD_REAP_ON_DISCONNECT"); ok {
		c.Server.ReapOnDisconnect = v
	}

	// Logging overrides
	if v := os.Getenv("XIMD_LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
	if v := os.Getenv("XIMD_LOG_FORMAT"); v != "" {
		c.Logging.Format = v
	}
	if v := os.Getenv("XIMD_LOG_PATH"); v != "" {
		c.Logging.FilePath = v
	}

	// Control and metrics overrides
	if v := os.Getenv("XIMD_CONTROL_BUS"); v != "" {
		c.Control.Bus = v
	}
	if v := os.Getenv("XIMD_METRICS_LISTEN"); v != "" {
		c.Metrics.Listen = v
		c.Metrics.Enabled = true
	}
}

// Clone returns a deep copy of the configuration.
func (c *Config) Clone() *Config {
	c.mu.RLock()
	defer c.mu.RUnlock()

	clone := &Config{
		Version:  c.Version,
		Server:   c.Server,
		Triggers: c.Triggers,
		Logging:  c.Logging,
		Control:  c.Control,
		Metrics:  c.Metrics,
	}

	// Deep copy slices
	clone.Server.Styles = append([]string{}, c.Server.Styles...)
	clone.Server.Encodings = append([]string{}, c.Server.Encodings...)
	clone.Triggers.On = append([]string{}, c.Triggers.On...)
	clone.Triggers.Off = append([]string{}, c.Triggers.Off...)

	return clone
}

// Helper functions

func envBool(key string) (bool, bool) {
	v := os.Getenv(key)
	if v == "" {
		return false, false
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, false
	}
	return b, true
}

func splitList(s, sep string) []string {
	var out []string
	for _, part := range strings.Split(s, sep) {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
