// Package logging builds the slog logger ximd writes through.
//
// The level lives in a shared slog.LevelVar so a config reload changes it
// for every derived logger. Attributes that carry typed text are redacted
// unless Config.ShowText is set.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"ximd/internal/config"
)

type Level = slog.Level

const (
	LevelDebug = slog.LevelDebug
	LevelInfo  = slog.LevelInfo
	LevelWarn  = slog.LevelWarn
	LevelError = slog.LevelError
)

var levelNames = map[string]Level{
	"debug":   LevelDebug,
	"info":    LevelInfo,
	"warn":    LevelWarn,
	"warning": LevelWarn,
	"error":   LevelError,
}

// ParseLevel accepts debug, info, warn (or warning) and error in any case.
func ParseLevel(s string) (Level, error) {
	if level, ok := levelNames[strings.ToLower(s)]; ok {
		return level, nil
	}
	return LevelInfo, fmt.Errorf("unknown log level: %q", s)
}

// LevelString is the inverse of ParseLevel. Unknown levels read as info.
func LevelString(level Level) string {
	switch level {
	case LevelDebug, LevelWarn, LevelError:
		return strings.ToLower(level.String())
	}
	return "info"
}

// Format selects the slog handler.
type Format int

const (
	FormatText Format = iota
	FormatJSON
)

// ParseFormat parses "text" or "json". Empty means text.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(s) {
	case "", "text":
		return FormatText, nil
	case "json":
		return FormatJSON, nil
	}
	return FormatText, fmt.Errorf("unknown log format: %q", s)
}

// Config describes one logger.
type Config struct {
	Level  Level
	Format Format

	// Output is stdout, stderr, file or both (stderr and file).
	Output   string
	FilePath string

	// Rotation. MaxSize is in megabytes, MaxAge in days.
	MaxSize    int64
	MaxAge     int
	MaxBackups int
	Compress   bool

	AddSource bool
	ShowText  bool
	Component string

	// Writer, when set, replaces Output.
	Writer io.Writer
}

// DefaultConfig logs text at info to stderr.
func DefaultConfig() *Config {
	return &Config{
		Level:      LevelInfo,
		Format:     FormatText,
		Output:     "stderr",
		FilePath:   filepath.Join(config.PlatformLogDir(), "ximd.log"),
		MaxSize:    10,
		MaxAge:     7,
		MaxBackups: 3,
		Compress:   true,
		Component:  "ximd",
	}
}

// FromConfig converts the [logging] section of the daemon configuration.
func FromConfig(lc config.LoggingConfig) (*Config, error) {
	cfg := DefaultConfig()

	var err error
	if cfg.Level, err = ParseLevel(lc.Level); err != nil {
		return nil, err
	}
	if cfg.Format, err = ParseFormat(lc.Format); err != nil {
		return nil, err
	}

	cfg.Output = lc.Output
	if lc.FilePath != "" {
		cfg.FilePath = lc.FilePath
	}
	if lc.MaxSizeMB > 0 {
		cfg.MaxSize = int64(lc.MaxSizeMB)
	}
	cfg.MaxBackups = lc.MaxBackups
	cfg.MaxAge = lc.MaxAgeDays
	cfg.Compress = lc.Compress
	cfg.AddSource = lc.AddSource
	return cfg, nil
}

// Logger is a slog.Logger whose level can change after construction.
// Loggers returned by WithComponent share the level and the log file.
type Logger struct {
	*slog.Logger
	level *slog.LevelVar
	file  *FileRotator
}

// New opens the configured output and builds the handler.
func New(cfg *Config) (*Logger, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}

	l := &Logger{level: new(slog.LevelVar)}
	l.level.Set(cfg.Level)

	w, err := l.open(cfg)
	if err != nil {
		return nil, fmt.Errorf("setup writers: %w", err)
	}

	showText := cfg.ShowText
	opts := &slog.HandlerOptions{
		Level:     l.level,
		AddSource: cfg.AddSource,
		ReplaceAttr: func(_ []string, a slog.Attr) slog.Attr {
			if shouldRedact(a.Key, showText) {
				return slog.String(a.Key, redacted)
			}
			return a
		},
	}

	var h slog.Handler = slog.NewTextHandler(w, opts)
	if cfg.Format == FormatJSON {
		h = slog.NewJSONHandler(w, opts)
	}
	l.Logger = slog.New(h)
	if cfg.Component != "" {
		l.Logger = l.Logger.With("component", cfg.Component)
	}
	return l, nil
}

func (l *Logger) open(cfg *Config) (io.Writer, error) {
	if cfg.Writer != nil {
		return cfg.Writer, nil
	}

	output := strings.ToLower(cfg.Output)
	switch output {
	case "stdout":
		return os.Stdout, nil
	case "file", "both":
	default:
		return os.Stderr, nil
	}

	f, err := NewFileRotator(cfg)
	if err != nil {
		return nil, err
	}
	l.file = f
	if output == "both" {
		return io.MultiWriter(os.Stderr, f), nil
	}
	return f, nil
}

const redacted = "[REDACTED]"

// Keys carrying typed user input.
var textKeys = map[string]bool{
	"text":    true,
	"commit":  true,
	"preedit": true,
	"chars":   true,
}

var sensitiveKeys = []string{"password", "secret", "token", "credential", "cookie", "auth"}

func shouldRedact(key string, showText bool) bool {
	key = strings.ToLower(key)
	if textKeys[key] {
		return !showText
	}
	for _, s := range sensitiveKeys {
		if strings.Contains(key, s) {
			return true
		}
	}
	return false
}

func (l *Logger) SetLevel(level Level) { l.level.Set(level) }

func (l *Logger) GetLevel() Level { return l.level.Level() }

// WithComponent replaces the component attribute.
func (l *Logger) WithComponent(name string) *Logger {
	return &Logger{
		Logger: l.Logger.With("component", name),
		level:  l.level,
		file:   l.file,
	}
}

// Close closes the log file, if any.
func (l *Logger) Close() error {
	if l.file == nil {
		return nil
	}
	return l.file.Close()
}

// Sync flushes the log file, if any.
func (l *Logger) Sync() error {
	if l.file == nil {
		return nil
	}
	return l.file.Sync()
}

var (
	defaultMu     sync.Mutex
	defaultLogger *Logger
)

// Default returns the logger installed by SetDefault, or a stderr logger.
func Default() *Logger {
	defaultMu.Lock()
	defer defaultMu.Unlock()
	if defaultLogger == nil {
		defaultLogger = &Logger{Logger: slog.Default(), level: new(slog.LevelVar)}
		if l, err := New(&Config{Output: "stderr", Component: "ximd"}); err == nil {
			defaultLogger = l
		}
	}
	return defaultLogger
}

// SetDefault installs l as the package default and as slog's default.
func SetDefault(l *Logger) {
	defaultMu.Lock()
	defaultLogger = l
	defaultMu.Unlock()
	slog.SetDefault(l.Logger)
}
