// control/metrics.go
// Author: momentics <momentics@gmail.com>
//
// Runtime metrics collector for system-level monitoring, now backed by
// real Prometheus counters/histograms instead of a bare map[string]any:
// calls, errors by kind, dispatch latency, and transport wait time, all
// registered under the shmrpc_ prefix. Nil-receiver-safe throughout so a
// server constructed without metrics (most tests, the accumulator demo)
// can skip registration entirely.

package control

import (
	"github.com/prometheus/client_golang/prometheus"
)

// MetricsRegistry holds the Prometheus collectors for one server instance.
type MetricsRegistry struct {
	CallsTotal      *prometheus.CounterVec
	ErrorsTotal     *prometheus.CounterVec
	DispatchSeconds prometheus.Histogram
	TransportWaits  *prometheus.HistogramVec
}

// NewMetricsRegistry creates and registers the collectors against reg.
// Panics if registration fails, matching the pack's NewMetrics pattern —
// acceptable only at process startup.
func NewMetricsRegistry(reg prometheus.Registerer) *MetricsRegistry {
	mr := &MetricsRegistry{
		CallsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "shmrpc_calls_total",
				Help: "Total RPC calls dispatched by method.",
			},
			[]string{"method"},
		),
		ErrorsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "shmrpc_errors_total",
				Help: "Total RPC failures by error kind.",
			},
			[]string{"kind"},
		),
		DispatchSeconds: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "shmrpc_dispatch_seconds",
				Help:    "Time spent inside a single handle_one() dispatch.",
				Buckets: prometheus.DefBuckets,
			},
		),
		TransportWaits: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "shmrpc_transport_wait_seconds",
				Help:    "Time spent blocked on a semaphore wait, by direction.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"direction"},
		),
	}
	reg.MustRegister(mr.CallsTotal, mr.ErrorsTotal, mr.DispatchSeconds, mr.TransportWaits)
	return mr
}

// RecordCall increments the call counter for method.
func (mr *MetricsRegistry) RecordCall(method string) {
	if mr == nil {
		return
	}
	mr.CallsTotal.WithLabelValues(method).Inc()
}

// RecordError increments the error counter for kind.
func (mr *MetricsRegistry) RecordError(kind string) {
	if mr == nil {
		return
	}
	mr.ErrorsTotal.WithLabelValues(kind).Inc()
}

// ObserveDispatch records one handle_one() duration in seconds.
func (mr *MetricsRegistry) ObserveDispatch(seconds float64) {
	if mr == nil {
		return
	}
	mr.DispatchSeconds.Observe(seconds)
}

// ObserveTransportWait records one semaphore wait duration in seconds for
// the given direction ("request" or "response").
func (mr *MetricsRegistry) ObserveTransportWait(direction string, seconds float64) {
	if mr == nil {
		return
	}
	mr.TransportWaits.WithLabelValues(direction).Observe(seconds)
}

// NullMetrics returns nil, which acts as a no-op collector: every method
// above tolerates a nil receiver.
func NullMetrics() *MetricsRegistry {
	return nil
}
