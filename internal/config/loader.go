package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"sync"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/fsnotify/fsnotify"
	"gopkg.in/yaml.v3"
)

// Loader owns the configuration read from one file. After Watch, edits to
// the file are picked up; a file that fails to decode or validate never
// replaces the current configuration.
type Loader struct {
	path     string
	debounce time.Duration

	mu        sync.RWMutex
	current   *Config
	listeners []func(old, new *Config)

	watcher   *fsnotify.Watcher
	errs      chan error
	done      chan struct{}
	closeOnce sync.Once
}

// NewLoader returns a loader for path, or for ConfigPath() when path is "".
func NewLoader(path string) *Loader {
	if path == "" {
		path = ConfigPath()
	}
	return &Loader{
		path:     path,
		debounce: 100 * time.Millisecond,
		errs:     make(chan error, 1),
		done:     make(chan struct{}),
	}
}

// Path returns the file the loader reads.
func (l *Loader) Path() string {
	return l.path
}

// Load reads, overrides from the environment and validates the file. A
// missing file yields the defaults.
func (l *Loader) Load() (*Config, error) {
	cfg, err := readValidated(l.path)
	if err != nil {
		return nil, err
	}

	l.mu.Lock()
	l.current = cfg
	l.mu.Unlock()
	return cfg, nil
}

func readValidated(path string) (*Config, error) {
	cfg, err := loadConfigFromFile(path)
	if err != nil {
		return nil, err
	}
	cfg.ApplyEnvOverrides()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}
	return cfg, nil
}

// Config returns the configuration from the last successful load.
func (l *Loader) Config() *Config {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.current
}

// OnChange registers fn to run after every successful reload. It runs on
// the watcher goroutine.
func (l *Loader) OnChange(fn func(old, new *Config)) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.listeners = append(l.listeners, fn)
}

// Errors delivers reload failures. Only the oldest undelivered error is
// kept.
func (l *Loader) Errors() <-chan error {
	return l.errs
}

// Watch starts reloading on changes. The parent directory is watched
// because editors replace files rather than write them in place.
func (l *Loader) Watch() error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	if err := w.Add(filepath.Dir(l.path)); err != nil {
		w.Close()
		return fmt.Errorf("watch %s: %w", filepath.Dir(l.path), err)
	}
	l.watcher = w

	go l.watch(w)
	return nil
}

func (l *Loader) watch(w *fsnotify.Watcher) {
	name := filepath.Base(l.path)

	var (
		timer   *time.Timer
		pending <-chan time.Time
	)
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-l.done:
			return

		case ev, ok := <-w.Events:
			if !ok {
				return
			}
			if filepath.Base(ev.Name) != name || !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Rename) {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(l.debounce)
			} else {
				timer.Reset(l.debounce)
			}
			pending = timer.C

		case <-pending:
			pending = nil
			l.reload()

		case err, ok := <-w.Errors:
			if !ok {
				return
			}
			l.report(err)
		}
	}
}

func (l *Loader) report(err error) {
	select {
	case l.errs <- err:
	default:
	}
}

func (l *Loader) reload() {
	next, err := readValidated(l.path)
	if err != nil {
		l.report(fmt.Errorf("reload config: %w", err))
		return
	}

	l.mu.Lock()
	prev := l.current
	l.current = next
	listeners := slices.Clone(l.listeners)
	l.mu.Unlock()

	for _, fn := range listeners {
		fn(prev, next)
	}
}

// Close stops watching. It is safe to call more than once.
func (l *Loader) Close() error {
	var err error
	l.closeOnce.Do(func() {
		close(l.done)
		if l.watcher != nil {
			err = l.watcher.Close()
		}
	})
	return err
}

// loadConfigFromFile decodes path over the defaults after checking the raw
// document against the schema.
func loadConfigFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return DefaultConfig(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	format, err := detectFormat(path, data)
	if err != nil {
		return nil, err
	}
	doc, err := decodeDocument(format, data)
	if err != nil {
		return nil, err
	}
	if err := ValidateDocument(doc); err != nil {
		return nil, fmt.Errorf("schema: %w", err)
	}

	cfg := DefaultConfig()
	if err := decodeInto(format, data, cfg); err != nil {
		return nil, fmt.Errorf("decode %s: %w", format, err)
	}
	return cfg, nil
}

// detectFormat trusts the extension and otherwise tries TOML, JSON and
// YAML in that order.
func detectFormat(path string, data []byte) (string, error) {
	if format := formatOf(path); format != "" {
		return format, nil
	}

	for _, format := range []string{"toml", "json", "yaml"} {
		var scratch map[string]any
		if decodeInto(format, data, &scratch) == nil {
			return format, nil
		}
	}
	return "", fmt.Errorf("config %s: not TOML, JSON or YAML", path)
}

func decodeInto(format string, data []byte, v any) error {
	switch format {
	case "toml":
		_, err := toml.Decode(string(data), v)
		return err
	case "json":
		return json.Unmarshal(data, v)
	case "yaml":
		return yaml.Unmarshal(data, v)
	}
	return fmt.Errorf("unknown format %q", format)
}

func decodeDocument(format string, data []byte) (map[string]any, error) {
	doc := map[string]any{}
	if err := decodeInto(format, data, &doc); err != nil {
		return nil, fmt.Errorf("decode %s: %w", format, err)
	}
	return doc, nil
}

// LoadOrCreate loads path, first writing the defaults there if the file
// does not exist. The bool reports whether the file was created.
func LoadOrCreate(path string) (*Config, bool, error) {
	if path == "" {
		path = ConfigPath()
	}

	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		cfg := DefaultConfig()
		if err := SaveConfig(cfg, path); err != nil {
			return nil, false, fmt.Errorf("create default config: %w", err)
		}
		return cfg, true, nil
	}

	cfg, err := NewLoader(path).Load()
	if err != nil {
		return nil, false, err
	}
	return cfg, false, nil
}

// Merge returns a copy of dst with every non-zero field of src applied.
// Booleans cannot be merged this way and are left as in dst.
func Merge(dst, src *Config) *Config {
	out := dst.Clone()

	if src.Version > 0 {
		out.Version = src.Version
	}

	setString(&out.Server.Name, src.Server.Name)
	setString(&out.Server.Locale, src.Server.Locale)
	setList(&out.Server.Styles, src.Server.Styles)
	setList(&out.Server.Encodings, src.Server.Encodings)
	if src.Server.EventMask != 0 {
		out.Server.EventMask = src.Server.EventMask
	}

	setList(&out.Triggers.On, src.Triggers.On)
	setList(&out.Triggers.Off, src.Triggers.Off)

	setString(&out.Logging.Level, src.Logging.Level)
	setString(&out.Logging.Format, src.Logging.Format)
	setString(&out.Logging.Output, src.Logging.Output)
	setString(&out.Logging.FilePath, src.Logging.FilePath)
	setInt(&out.Logging.MaxSizeMB, src.Logging.MaxSizeMB)
	setInt(&out.Logging.MaxBackups, src.Logging.MaxBackups)
	setInt(&out.Logging.MaxAgeDays, src.Logging.MaxAgeDays)

	setString(&out.Control.Bus, src.Control.Bus)
	setString(&out.Metrics.Listen, src.Metrics.Listen)
	setString(&out.Metrics.Path, src.Metrics.Path)
	return out
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func setInt(dst *int, v int) {
	if v > 0 {
		*dst = v
	}
}

func setList(dst *[]string, v []string) {
	if len(v) > 0 {
		*dst = append([]string(nil), v...)
	}
}
