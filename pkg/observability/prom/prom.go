// Package prom implements the observability hooks with Prometheus metrics.
//
//	m := prom.New(prometheus.DefaultRegisterer)
//	observability.SetSearchHooks(m)
//	observability.SetCacheHooks(m)
//	observability.SetHTTPHooks(m)
//	http.Handle("/metrics", promhttp.Handler())
package prom

import (
	"context"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/matzehuels/gridpath/pkg/observability"
)

const namespace = "gridpath"

// Metrics holds the collectors behind every hook.
type Metrics struct {
	solves       *prometheus.CounterVec
	solveSeconds *prometheus.HistogramVec
	expanded     *prometheus.HistogramVec
	reopened     *prometheus.CounterVec
	active       *prometheus.GaugeVec

	cacheOps   *prometheus.CounterVec
	cacheBytes *prometheus.CounterVec

	requests        *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
}

// New creates the collectors and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		solves: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "solves_total",
				Help:      "Driven solver runs by algorithm and outcome.",
			},
			[]string{"algorithm", "outcome"},
		),
		solveSeconds: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "solve_duration_seconds",
				Help:      "Wall time of driven solver runs, step delays included.",
				Buckets:   prometheus.ExponentialBuckets(0.001, 4, 10),
			},
			[]string{"algorithm"},
		),
		expanded: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "solve_expanded_nodes",
				Help:      "Nodes expanded per run.",
				Buckets:   prometheus.ExponentialBuckets(1, 4, 10),
			},
			[]string{"algorithm"},
		),
		reopened: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "reopened_nodes_total",
				Help:      "Closed nodes reopened by A*.",
			},
			[]string{"algorithm"},
		),
		active: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "active_solves",
				Help:      "Runs currently being driven.",
			},
			[]string{"algorithm"},
		),
		cacheOps: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "cache_operations_total",
				Help:      "Cache lookups and writes by key type and result.",
			},
			[]string{"key_type", "result"},
		),
		cacheBytes: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "cache_written_bytes_total",
				Help:      "Bytes written to the cache.",
			},
			[]string{"key_type"},
		),
		requests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "HTTP responses by route and status code.",
			},
			[]string{"method", "route", "code"},
		),
		requestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request latency by route.",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
	}
	reg.MustRegister(
		m.solves, m.solveSeconds, m.expanded, m.reopened, m.active,
		m.cacheOps, m.cacheBytes,
		m.requests, m.requestDuration,
	)
	return m
}

// OnSolveStart implements observability.SearchHooks.
func (m *Metrics) OnSolveStart(_ context.Context, algorithm string, _ int) {
	m.active.WithLabelValues(algorithm).Inc()
}

// OnSolveComplete implements observability.SearchHooks.
func (m *Metrics) OnSolveComplete(_ context.Context, algorithm, outcome string, stats observability.SolveStats, d time.Duration, _ error) {
	m.active.WithLabelValues(algorithm).Dec()
	m.solves.WithLabelValues(algorithm, outcome).Inc()
	m.solveSeconds.WithLabelValues(algorithm).Observe(d.Seconds())
	m.expanded.WithLabelValues(algorithm).Observe(float64(stats.Expanded))
	if stats.Reopened > 0 {
		m.reopened.WithLabelValues(algorithm).Add(float64(stats.Reopened))
	}
}

// OnCacheHit implements observability.CacheHooks.
func (m *Metrics) OnCacheHit(_ context.Context, keyType string) {
	m.cacheOps.WithLabelValues(keyType, "hit").Inc()
}

// OnCacheMiss implements observability.CacheHooks.
func (m *Metrics) OnCacheMiss(_ context.Context, keyType string) {
	m.cacheOps.WithLabelValues(keyType, "miss").Inc()
}

// OnCacheSet implements observability.CacheHooks.
func (m *Metrics) OnCacheSet(_ context.Context, keyType string, size int) {
	m.cacheOps.WithLabelValues(keyType, "set").Inc()
	m.cacheBytes.WithLabelValues(keyType).Add(float64(size))
}

// OnRequest implements observability.HTTPHooks. Requests are counted when
// their response is written.
func (m *Metrics) OnRequest(context.Context, string, string) {}

// OnResponse implements observability.HTTPHooks.
func (m *Metrics) OnResponse(_ context.Context, method, route string, status int, d time.Duration) {
	m.requests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.requestDuration.WithLabelValues(method, route).Observe(d.Seconds())
}

var (
	_ observability.SearchHooks = (*Metrics)(nil)
	_ observability.CacheHooks  = (*Metrics)(nil)
	_ observability.HTTPHooks   = (*Metrics)(nil)
)
