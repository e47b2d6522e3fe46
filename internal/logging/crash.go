package logging

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"runtime/debug"
	"sync"
	"time"

	"ximd/internal/config"
)

// CrashReport is the JSON document written for each recovered panic.
type CrashReport struct {
	Timestamp    time.Time      `json:"timestamp"`
	Version      string         `json:"version"`
	GOOS         string         `json:"goos"`
	GOARCH       string         `json:"goarch"`
	NumGoroutine int            `json:"num_goroutine"`
	PanicValue   string         `json:"panic_value"`
	PanicType    string         `json:"panic_type"`
	StackTrace   string         `json:"stack_trace"`
	Component    string         `json:"component,omitempty"`
	Context      map[string]any `json:"context,omitempty"`
}

// PanicError is what Guard returns in place of a panic.
type PanicError struct {
	Value any
	Path  string // report file, "" if it could not be written
}

func (e *PanicError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("panic: %v", e.Value)
	}
	return fmt.Sprintf("panic: %v (report %s)", e.Value, e.Path)
}

// Unwrap exposes panic values that are errors, such as a strict-mode
// protocol violation.
func (e *PanicError) Unwrap() error {
	err, _ := e.Value.(error)
	return err
}

type CrashHandlerConfig struct {
	CrashDir  string // default DefaultCrashDir()
	Version   string // default the module version from build info
	Component string // default "ximd"
	Logger    *slog.Logger
	OnCrash   func(CrashReport)
}

// CrashHandler turns panics into crash reports on disk.
type CrashHandler struct {
	cfg CrashHandlerConfig

	mu  sync.Mutex
	seq int
}

// DefaultCrashDir returns $XDG_STATE_HOME/ximd/crashes.
func DefaultCrashDir() string {
	return filepath.Join(config.PlatformLogDir(), "crashes")
}

func NewCrashHandler(cfg *CrashHandlerConfig) *CrashHandler {
	h := &CrashHandler{}
	if cfg != nil {
		h.cfg = *cfg
	}
	if h.cfg.CrashDir == "" {
		h.cfg.CrashDir = DefaultCrashDir()
	}
	if h.cfg.Component == "" {
		h.cfg.Component = "ximd"
	}
	if h.cfg.Logger == nil {
		h.cfg.Logger = slog.Default()
	}
	if h.cfg.Version == "" {
		if bi, ok := debug.ReadBuildInfo(); ok {
			h.cfg.Version = bi.Main.Version
		}
	}
	return h
}

func (h *CrashHandler) Dir() string {
	return h.cfg.CrashDir
}

// Guard runs fn. A panic is recorded and returned as a *PanicError.
func (h *CrashHandler) Guard(attrs map[string]any, fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &PanicError{Value: r, Path: h.HandlePanic(r, attrs)}
		}
	}()
	return fn()
}

// Recover runs fn and records, then swallows, any panic.
func (h *CrashHandler) Recover(fn func()) {
	_ = h.Guard(nil, func() error {
		fn()
		return nil
	})
}

// HandlePanic writes a report for value and returns its path, or "" when
// the report could not be written.
func (h *CrashHandler) HandlePanic(value any, attrs map[string]any) string {
	report := CrashReport{
		Timestamp:    time.Now().UTC(),
		Version:      h.cfg.Version,
		GOOS:         runtime.GOOS,
		GOARCH:       runtime.GOARCH,
		NumGoroutine: runtime.NumGoroutine(),
		PanicValue:   fmt.Sprint(value),
		PanicType:    fmt.Sprintf("%T", value),
		StackTrace:   string(debug.Stack()),
		Component:    h.cfg.Component,
		Context:      attrs,
	}

	h.mu.Lock()
	h.seq++
	path, err := h.write(report, h.seq)
	h.mu.Unlock()
	if err != nil {
		h.cfg.Logger.Error("crash report not written", "error", err)
	}

	if h.cfg.OnCrash != nil {
		h.cfg.OnCrash(report)
	}
	h.cfg.Logger.Error("panic recovered", "panic", report.PanicValue, "type", report.PanicType, "report", path)
	return path
}

func (h *CrashHandler) write(report CrashReport, seq int) (string, error) {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal crash report: %w", err)
	}
	if err := os.MkdirAll(h.cfg.CrashDir, 0750); err != nil {
		return "", fmt.Errorf("create crash dir: %w", err)
	}

	name := fmt.Sprintf("crash-%s-%s-%d.json", report.Component, report.Timestamp.Format("20060102-150405"), seq)
	path := filepath.Join(h.cfg.CrashDir, name)
	if err := os.WriteFile(path, data, 0640); err != nil {
		return "", fmt.Errorf("write crash report: %w", err)
	}
	return path, nil
}

func (h *CrashHandler) files() ([]string, error) {
	return filepath.Glob(filepath.Join(h.cfg.CrashDir, "crash-*.json"))
}

// GetCrashReports reads every report in the crash directory. Unreadable
// files are skipped.
func (h *CrashHandler) GetCrashReports() ([]CrashReport, error) {
	files, err := h.files()
	if err != nil {
		return nil, err
	}

	reports := make([]CrashReport, 0, len(files))
	for _, f := range files {
		var report CrashReport
		data, err := os.ReadFile(f)
		if err != nil || json.Unmarshal(data, &report) != nil {
			continue
		}
		reports = append(reports, report)
	}
	return reports, nil
}

// CleanupOldCrashReports deletes reports last modified before maxAge ago.
func (h *CrashHandler) CleanupOldCrashReports(maxAge time.Duration) error {
	files, err := h.files()
	if err != nil {
		return err
	}

	cutoff := time.Now().Add(-maxAge)
	var errs []error
	for _, f := range files {
		info, err := os.Stat(f)
		if err != nil || !info.ModTime().Before(cutoff) {
			continue
		}
		if err := os.Remove(f); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// ClearCrashReports deletes every report.
func (h *CrashHandler) ClearCrashReports() error {
	return h.CleanupOldCrashReports(-time.Hour)
}
