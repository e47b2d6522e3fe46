package metrics

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ximd/internal/xim"
)

func TestObserveDispatch(t *testing.T) {
	m := New(false)

	m.ObserveDispatch(xim.DispatchInfo{Kind: xim.KindCreateIC, Live: []xim.Handle{5}, Duration: time.Millisecond})
	m.ObserveDispatch(xim.DispatchInfo{Kind: xim.KindCreateIC, Live: []xim.Handle{5, 6}, Duration: time.Millisecond})
	m.ObserveDispatch(xim.DispatchInfo{Kind: xim.KindDestroyIC, Live: []xim.Handle{6}})

	assert.Equal(t, 2.0, testutil.ToFloat64(m.MessagesTotal.WithLabelValues("create_ic")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.MessagesTotal.WithLabelValues("destroy_ic")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.LiveInputContexts))
	assert.Equal(t, 1, testutil.CollectAndCount(m.DispatchDuration))
}

func TestObserveDestroyed(t *testing.T) {
	m := New(false)
	m.ObserveDispatch(xim.DispatchInfo{Kind: xim.KindCreateIC, Live: []xim.Handle{5, 6}})
	m.ObserveDestroyed()

	assert.Zero(t, testutil.ToFloat64(m.LiveInputContexts))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.MessagesTotal.WithLabelValues("create_ic")))
}

func TestObserveRejected(t *testing.T) {
	m := New(false)

	m.ObserveRejected("commit_string", 5)
	m.ObserveRejected("commit_string", 6)
	m.ObserveRejected("forward_event", 5)

	expected := `
# HELP ximd_dead_context_rejections_total Server requests refused because the input context was dead, by operation.
# TYPE ximd_dead_context_rejections_total counter
ximd_dead_context_rejections_total{op="commit_string"} 2
ximd_dead_context_rejections_total{op="forward_event"} 1
`
	require.NoError(t, testutil.CollectAndCompare(m.RejectionsTotal, strings.NewReader(expected)))
}

func TestObserversFanOut(t *testing.T) {
	a, b := New(false), New(false)
	obs := xim.Observers{a, b}

	obs.ObserveDispatch(xim.DispatchInfo{Kind: xim.KindForwardEvent})
	obs.ObserveRejected("reset_ic", 1)

	for _, m := range []*Metrics{a, b} {
		assert.Equal(t, 1.0, testutil.ToFloat64(m.MessagesTotal.WithLabelValues("forward_event")))
		assert.Equal(t, 1.0, testutil.ToFloat64(m.RejectionsTotal.WithLabelValues("reset_ic")))
	}
}

func TestRuntimeCollectors(t *testing.T) {
	m := New(true)
	families, err := m.Registry().Gather()
	require.NoError(t, err)

	names := make(map[string]bool)
	for _, f := range families {
		names[f.GetName()] = true
	}
	assert.True(t, names["go_goroutines"])
	assert.True(t, names["ximd_dispatch_duration_seconds"])
}

func TestHTTPHandler(t *testing.T) {
	m := New(false)
	m.ObserveDispatch(xim.DispatchInfo{Kind: xim.KindOpen})

	rec := httptest.NewRecorder()
	m.HTTPHandler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `ximd_messages_total{kind="open"} 1`)
}

func TestServer(t *testing.T) {
	m := New(false)
	srv, err := m.Listen("127.0.0.1:0", "/metrics", nil)
	require.NoError(t, err)
	srv.Handle("/ping", http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Serve(ctx) }()

	resp, err := http.Get("http://" + srv.Addr().String() + "/metrics")
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	require.NoError(t, err)
	assert.Contains(t, string(body), "ximd_live_input_contexts 0")

	resp, err = http.Get("http://" + srv.Addr().String() + "/ping")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
}

func TestListenError(t *testing.T) {
	_, err := New(false).Listen("256.0.0.1:bad", "/metrics", nil)
	assert.Error(t, err)
}
