package logging

import (
	"compress/gzip"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"
)

// FileRotator appends to a log file and moves it aside once it would grow
// past MaxSize. Rotated files are named <name>-<timestamp><ext>, with .gz
// appended when compressed.
type FileRotator struct {
	path     string
	limit    int64
	keep     int
	maxAge   time.Duration
	compress bool

	mu   sync.Mutex
	file *os.File
	size int64
	now  func() time.Time
}

// NewFileRotator creates the log directory and opens cfg.FilePath.
func NewFileRotator(cfg *Config) (*FileRotator, error) {
	if cfg.FilePath == "" {
		return nil, errors.New("log file path is empty")
	}
	r := &FileRotator{
		path:     cfg.FilePath,
		limit:    max(cfg.MaxSize, 0) << 20,
		keep:     cfg.MaxBackups,
		maxAge:   time.Duration(cfg.MaxAge) * 24 * time.Hour,
		compress: cfg.Compress,
		now:      time.Now,
	}
	if err := os.MkdirAll(filepath.Dir(r.path), 0750); err != nil {
		return nil, fmt.Errorf("create log dir: %w", err)
	}
	if err := r.open(); err != nil {
		return nil, err
	}
	return r, nil
}

func (r *FileRotator) open() error {
	f, err := os.OpenFile(r.path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0640)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return fmt.Errorf("stat log file: %w", err)
	}
	r.file, r.size = f, info.Size()
	return nil
}

func (r *FileRotator) Write(p []byte) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	// An oversized write still lands whole in a fresh file.
	if r.limit > 0 && r.size > 0 && r.size+int64(len(p)) > r.limit {
		if err := r.rotate(); err != nil {
			return 0, fmt.Errorf("rotate log: %w", err)
		}
	}
	if r.file == nil {
		if err := r.open(); err != nil {
			return 0, err
		}
	}

	n, err := r.file.Write(p)
	r.size += int64(n)
	return n, err
}

// Rotate moves the current file aside now.
func (r *FileRotator) Rotate() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rotate()
}

func (r *FileRotator) rotate() error {
	if r.file != nil {
		err := r.file.Close()
		r.file = nil
		if err != nil {
			return fmt.Errorf("close current log: %w", err)
		}
	}

	prefix, ext := r.split()
	aside := prefix + "-" + r.now().Format("20060102-150405.000") + ext
	if err := os.Rename(r.path, aside); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("rename log file: %w", err)
	}
	if r.compress {
		if err := gzipFile(aside); err != nil {
			return fmt.Errorf("compress log: %w", err)
		}
	}
	if err := r.open(); err != nil {
		return err
	}

	r.prune()
	return nil
}

// split returns the path without its extension, and the extension.
func (r *FileRotator) split() (string, string) {
	ext := filepath.Ext(r.path)
	return strings.TrimSuffix(r.path, ext), ext
}

func (r *FileRotator) rotated() ([]string, error) {
	prefix, ext := r.split()
	matches, err := filepath.Glob(prefix + "-*" + ext + "*")
	// The timestamp sorts lexically in rotation order.
	slices.Sort(matches)
	return matches, err
}

func gzipFile(path string) (err error) {
	src, err := os.Open(path)
	if err != nil {
		return err
	}
	defer src.Close()

	dst, err := os.OpenFile(path+".gz", os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0640)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := dst.Close(); err == nil {
			err = cerr
		}
		if err != nil {
			os.Remove(path + ".gz")
		}
	}()

	zw := gzip.NewWriter(dst)
	zw.Name = filepath.Base(path)
	if _, err := io.Copy(zw, src); err != nil {
		zw.Close()
		return err
	}
	if err := zw.Close(); err != nil {
		return err
	}
	return os.Remove(path)
}

// prune keeps the newest MaxBackups rotated files and drops any older than
// MaxAge. Zero disables either limit.
func (r *FileRotator) prune() {
	files, err := r.rotated()
	if err != nil {
		return
	}

	if r.keep > 0 && len(files) > r.keep {
		for _, f := range files[:len(files)-r.keep] {
			os.Remove(f)
		}
		files = files[len(files)-r.keep:]
	}

	if r.maxAge <= 0 {
		return
	}
	cutoff := r.now().Add(-r.maxAge)
	for _, f := range files {
		if info, err := os.Stat(f); err == nil && info.ModTime().Before(cutoff) {
			os.Remove(f)
		}
	}
}

func (r *FileRotator) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.file == nil {
		return nil
	}
	err := r.file.Close()
	r.file = nil
	return err
}

func (r *FileRotator) Sync() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.file == nil {
		return nil
	}
	return r.file.Sync()
}

// GetLogFiles returns the current file followed by the rotated ones, oldest
// first.
func (r *FileRotator) GetLogFiles() ([]string, error) {
	files, err := r.rotated()
	return append([]string{r.path}, files...), err
}
