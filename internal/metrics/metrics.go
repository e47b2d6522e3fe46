// Package metrics exposes XIM dispatch statistics to Prometheus.
//
// Metric naming follows Prometheus conventions:
//   - ximd_ prefix for all custom metrics
//   - _total suffix for counters
//   - _seconds suffix for duration histograms
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"ximd/internal/xim"
)

// DispatchBuckets covers sub-millisecond handlers up to slow engine replies.
var DispatchBuckets = []float64{
	0.00001, 0.00005, 0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1,
}

// Metrics holds the ximd collectors and the registry they are registered on.
// It implements xim.Observer.
type Metrics struct {
	registry *prometheus.Registry

	MessagesTotal     *prometheus.CounterVec
	RejectionsTotal   *prometheus.CounterVec
	LiveInputContexts prometheus.Gauge
	DispatchDuration  prometheus.Histogram
}

var _ xim.Observer = (*Metrics)(nil)

// New creates the collectors on a fresh registry. When runtime is true the Go
// runtime and process collectors are registered too.
func New(runtime bool) *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),

		MessagesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ximd_messages_total",
				Help: "Total XIM messages dispatched, by message kind.",
			},
			[]string{"kind"},
		),
		RejectionsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ximd_dead_context_rejections_total",
				Help: "Server requests refused because the input context was dead, by operation.",
			},
			[]string{"op"},
		),
		LiveInputContexts: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "ximd_live_input_contexts",
				Help: "Number of input contexts currently alive.",
			},
		),
		DispatchDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "ximd_dispatch_duration_seconds",
				Help:    "Time spent dispatching one XIM message, handler included.",
				Buckets: DispatchBuckets,
			},
		),
	}

	m.registry.MustRegister(
		m.MessagesTotal,
		m.RejectionsTotal,
		m.LiveInputContexts,
		m.DispatchDuration,
	)
	if runtime {
		m.registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
	}
	return m
}

// Registry returns the registry the collectors are registered on.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// ObserveDispatch records one dispatched message.
func (m *Metrics) ObserveDispatch(info xim.DispatchInfo) {
	m.MessagesTotal.WithLabelValues(info.Kind.String()).Inc()
	m.LiveInputContexts.Set(float64(len(info.Live)))
	m.DispatchDuration.Observe(info.Duration.Seconds())
}

// ObserveDestroyed zeroes the live gauge.
func (m *Metrics) ObserveDestroyed() {
	m.LiveInputContexts.Set(0)
}

// ObserveRejected records one DeadInputContext refusal.
func (m *Metrics) ObserveRejected(op string, _ xim.Handle) {
	m.RejectionsTotal.WithLabelValues(op).Inc()
}
