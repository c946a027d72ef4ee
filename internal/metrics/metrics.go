// Package metrics holds the Prometheus collectors exported by the server.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Settlement outcomes.
const (
	OutcomeOK       = "ok"
	OutcomeRejected = "rejected"
	OutcomeError    = "error"
)

// Metrics is a set of collectors registered on a private registry.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	registry *prometheus.Registry

	settlementRuns      *prometheus.CounterVec
	settlementDuration  prometheus.Histogram
	settlementTransfers prometheus.Histogram
	rpcRequests         *prometheus.CounterVec
	rpcDuration         *prometheus.HistogramVec
}

// New creates the collectors and registers them, together with the Go and
// process collectors, on a fresh registry.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		settlementRuns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "splitfree",
			Name:      "settlement_runs_total",
			Help:      "Settlement engine runs by outcome.",
		}, []string{"outcome"}),
		settlementDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "splitfree",
			Name:      "settlement_duration_seconds",
			Help:      "Time spent computing a settlement.",
			Buckets:   prometheus.ExponentialBuckets(0.00001, 4, 10),
		}),
		settlementTransfers: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "splitfree",
			Name:      "settlement_transfers",
			Help:      "Transfers produced per successful settlement.",
			Buckets:   []float64{0, 1, 2, 4, 8, 16, 32, 64, 128, 256},
		}),
		rpcRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "splitfree",
			Name:      "rpc_requests_total",
			Help:      "RPC requests by procedure and status code.",
		}, []string{"procedure", "code"}),
		rpcDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "splitfree",
			Name:      "rpc_duration_seconds",
			Help:      "RPC handling time by procedure.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"procedure"}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.settlementRuns,
		m.settlementDuration,
		m.settlementTransfers,
		m.rpcRequests,
		m.rpcDuration,
	)
	return m
}

// ObserveSettlement records one engine run. transfers is ignored unless the
// outcome is OutcomeOK.
func (m *Metrics) ObserveSettlement(outcome string, elapsed time.Duration, transfers int) {
	if m == nil {
		return
	}
	m.settlementRuns.WithLabelValues(outcome).Inc()
	m.settlementDuration.Observe(elapsed.Seconds())
	if outcome == OutcomeOK {
		m.settlementTransfers.Observe(float64(transfers))
	}
}

// ObserveRPC records one handled RPC.
func (m *Metrics) ObserveRPC(procedure, code string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.rpcRequests.WithLabelValues(procedure, code).Inc()
	m.rpcDuration.WithLabelValues(procedure).Observe(elapsed.Seconds())
}

// Registry exposes the underlying registry, mainly for tests. It is nil for
// a nil *Metrics.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// Handler serves the registry in the Prometheus text format. A nil *Metrics
// serves 404s.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}
