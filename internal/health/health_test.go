package health

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ok(context.Context) error { return nil }

func TestUnknownUntilChecked(t *testing.T) {
	c := NewChecker()
	c.RegisterFunc("display", true, ok)

	assert.Equal(t, StatusUnknown, c.OverallStatus())
	assert.Equal(t, StatusUnknown, c.GetResults()["display"].Status)

	results := c.Check(context.Background())
	assert.Equal(t, StatusHealthy, results["display"].Status)
	assert.Equal(t, StatusHealthy, c.OverallStatus())
}

func TestCriticalFailure(t *testing.T) {
	c := NewChecker()
	c.RegisterFunc("display", true, func(context.Context) error { return errors.New("broken pipe") })
	c.RegisterFunc("control", false, ok)

	results := c.Check(context.Background())
	assert.Equal(t, StatusUnhealthy, results["display"].Status)
	assert.Equal(t, "broken pipe", results["display"].Error)
	assert.Equal(t, StatusUnhealthy, c.OverallStatus())
}

func TestOptionalFailureDegrades(t *testing.T) {
	c := NewChecker()
	c.RegisterFunc("display", true, ok)
	c.RegisterFunc("control", false, func(context.Context) error { return errors.New("bus gone") })

	c.Check(context.Background())
	assert.Equal(t, StatusDegraded, c.OverallStatus())
	assert.Equal(t, []string{"control", "display"}, c.Names())
}

func TestCheckTimeoutAndPanic(t *testing.T) {
	c := NewChecker()
	c.Register(&Component{
		Name:    "slow",
		Timeout: 10 * time.Millisecond,
		Check: func(ctx context.Context) error {
			<-ctx.Done()
			time.Sleep(5 * time.Millisecond)
			return nil
		},
	})
	c.RegisterFunc("panics", false, func(context.Context) error { panic("boom") })

	results := c.Check(context.Background())
	assert.Equal(t, StatusUnhealthy, results["slow"].Status)
	assert.Contains(t, results["slow"].Error, "timed out")
	assert.Equal(t, StatusUnhealthy, results["panics"].Status)
	assert.Contains(t, results["panics"].Error, "boom")
}

func TestReadiness(t *testing.T) {
	c := NewChecker()
	c.RegisterFunc("display", true, ok)
	mux := http.NewServeMux()
	c.Mount(mux)

	get := func(path string) *httptest.ResponseRecorder {
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		return rec
	}

	assert.Equal(t, http.StatusOK, get("/livez").Code)
	assert.Equal(t, http.StatusServiceUnavailable, get("/readyz").Code)

	c.SetReady(true)
	assert.True(t, c.IsReady())
	assert.Equal(t, http.StatusOK, get("/readyz").Code)

	rec := get("/healthz?full=true")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var resp Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, StatusHealthy, resp.Status)
	assert.True(t, resp.Ready)
	assert.Contains(t, resp.Components, "display")
}

func TestHealthUnhealthy(t *testing.T) {
	c := NewChecker()
	c.RegisterFunc("display", true, func(context.Context) error { return errors.New("closed") })
	c.SetReady(true)

	rec := httptest.NewRecorder()
	c.HealthHandler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	var resp Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, StatusUnhealthy, resp.Status)
	assert.Empty(t, resp.Components)

	rec = httptest.NewRecorder()
	c.ReadinessHandler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}
