// Package health serves liveness and readiness for ximd.
//
// Components register a Check. /readyz turns 200 once the input method is
// open on the display and stays so while every critical check passes.
package health

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"slices"
	"sync"
	"time"
)

type Status string

const (
	StatusHealthy   Status = "healthy"
	StatusDegraded  Status = "degraded"
	StatusUnhealthy Status = "unhealthy"
	StatusUnknown   Status = "unknown"
)

// CheckResult is the outcome of the last run of one check.
type CheckResult struct {
	Status      Status        `json:"status"`
	Error       string        `json:"error,omitempty"`
	LastChecked time.Time     `json:"last_checked"`
	Duration    time.Duration `json:"duration_ns"`
}

// Check reports a component failure as a non-nil error.
type Check func(ctx context.Context) error

type Component struct {
	Name     string
	Critical bool // failure makes the overall status unhealthy
	Check    Check
	Timeout  time.Duration // default one second
}

type entry struct {
	comp *Component
	last CheckResult
}

type Checker struct {
	started time.Time

	mu      sync.RWMutex
	entries map[string]*entry
	ready   bool
}

func NewChecker() *Checker {
	return &Checker{started: time.Now(), entries: map[string]*entry{}}
}

// Register adds or replaces a component. It reads as unknown until the
// next Check.
func (c *Checker) Register(comp *Component) {
	if comp.Timeout <= 0 {
		comp.Timeout = time.Second
	}
	c.mu.Lock()
	c.entries[comp.Name] = &entry{comp: comp, last: CheckResult{Status: StatusUnknown}}
	c.mu.Unlock()
}

func (c *Checker) RegisterFunc(name string, critical bool, check Check) {
	c.Register(&Component{Name: name, Critical: critical, Check: check})
}

func (c *Checker) SetReady(ready bool) {
	c.mu.Lock()
	c.ready = ready
	c.mu.Unlock()
}

func (c *Checker) IsReady() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.ready
}

// Check runs every check concurrently and records the results.
func (c *Checker) Check(ctx context.Context) map[string]CheckResult {
	c.mu.RLock()
	comps := make([]*Component, 0, len(c.entries))
	for _, e := range c.entries {
		comps = append(comps, e.comp)
	}
	c.mu.RUnlock()

	out := make([]CheckResult, len(comps))
	var wg sync.WaitGroup
	for i, comp := range comps {
		wg.Add(1)
		go func() {
			defer wg.Done()
			out[i] = runCheck(ctx, comp)
		}()
	}
	wg.Wait()

	results := make(map[string]CheckResult, len(comps))
	c.mu.Lock()
	for i, comp := range comps {
		results[comp.Name] = out[i]
		// Skip components replaced while the check ran.
		if e, ok := c.entries[comp.Name]; ok && e.comp == comp {
			e.last = out[i]
		}
	}
	c.mu.Unlock()
	return results
}

func runCheck(ctx context.Context, comp *Component) CheckResult {
	ctx, cancel := context.WithTimeout(ctx, comp.Timeout)
	defer cancel()

	start := time.Now()
	done := make(chan error, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- fmt.Errorf("check panicked: %v", r)
			}
		}()
		done <- comp.Check(ctx)
	}()

	var err error
	select {
	case err = <-done:
	case <-ctx.Done():
		err = fmt.Errorf("check timed out: %w", ctx.Err())
	}

	r := CheckResult{Status: StatusHealthy, LastChecked: start, Duration: time.Since(start)}
	if err != nil {
		r.Status, r.Error = StatusUnhealthy, err.Error()
	}
	return r
}

// GetResults returns the last recorded result per component.
func (c *Checker) GetResults() map[string]CheckResult {
	c.mu.RLock()
	defer c.mu.RUnlock()

	results := make(map[string]CheckResult, len(c.entries))
	for name, e := range c.entries {
		results[name] = e.last
	}
	return results
}

// OverallStatus aggregates the last results. A failing critical component
// is unhealthy and an unchecked one unknown; an optional failure degrades.
func (c *Checker) OverallStatus() Status {
	c.mu.RLock()
	defer c.mu.RUnlock()

	status := StatusHealthy
	for _, e := range c.entries {
		switch {
		case e.last.Status == StatusUnhealthy && e.comp.Critical:
			return StatusUnhealthy
		case e.last.Status == StatusUnknown && e.comp.Critical:
			status = StatusUnknown
		case e.last.Status == StatusUnhealthy, e.last.Status == StatusDegraded:
			if status == StatusHealthy {
				status = StatusDegraded
			}
		}
	}
	return status
}

// Names returns the registered component names, sorted.
func (c *Checker) Names() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	names := make([]string, 0, len(c.entries))
	for name := range c.entries {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Response is the body of /healthz.
type Response struct {
	Status     Status                 `json:"status"`
	Ready      bool                   `json:"ready"`
	Uptime     string                 `json:"uptime"`
	Components map[string]CheckResult `json:"components,omitempty"`
	Timestamp  time.Time              `json:"timestamp"`
}

// Response runs the checks. Components is filled only when withComponents
// is set.
func (c *Checker) Response(ctx context.Context, withComponents bool) Response {
	results := c.Check(ctx)
	resp := Response{
		Status:    c.OverallStatus(),
		Ready:     c.IsReady(),
		Uptime:    time.Since(c.started).Round(time.Second).String(),
		Timestamp: time.Now(),
	}
	if withComponents {
		resp.Components = results
	}
	return resp
}

type statusBody struct {
	Status    any       `json:"status"`
	Ready     bool      `json:"ready,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// LivenessHandler answers 200 while the process runs.
func (c *Checker) LivenessHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, statusBody{Status: "alive", Timestamp: time.Now()})
	})
}

// ReadinessHandler answers 503 before SetReady(true) and while a critical
// component fails.
func (c *Checker) ReadinessHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !c.IsReady() {
			writeJSON(w, http.StatusServiceUnavailable, statusBody{Status: "not ready", Timestamp: time.Now()})
			return
		}

		c.Check(r.Context())
		status := c.OverallStatus()
		code := http.StatusOK
		if status == StatusUnhealthy {
			code = http.StatusServiceUnavailable
		}
		writeJSON(w, code, statusBody{Status: status, Ready: true, Timestamp: time.Now()})
	})
}

// HealthHandler reports the aggregated status. ?full=true adds components.
func (c *Checker) HealthHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		resp := c.Response(r.Context(), r.URL.Query().Get("full") == "true")

		code := http.StatusOK
		if resp.Status == StatusUnhealthy || resp.Status == StatusUnknown {
			code = http.StatusServiceUnavailable
		}
		writeJSON(w, code, resp)
	})
}

// Mux is satisfied by *http.ServeMux and the metrics server.
type Mux interface {
	Handle(pattern string, handler http.Handler)
}

// Mount registers /healthz, /livez and /readyz on mux.
func (c *Checker) Mount(mux Mux) {
	mux.Handle("/healthz", c.HealthHandler())
	mux.Handle("/livez", c.LivenessHandler())
	mux.Handle("/readyz", c.ReadinessHandler())
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}
