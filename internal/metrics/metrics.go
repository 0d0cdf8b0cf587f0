// Package metrics implements the observability hooks with Prometheus
// collectors on a private registry.
package metrics

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/matzehuels/burrow/pkg/observability"
)

const namespace = "burrow"

// Metrics holds every collector exported by the server.
type Metrics struct {
	registry *prometheus.Registry

	parsesTotal     *prometheus.CounterVec
	solvesTotal     *prometheus.CounterVec
	solveDuration   *prometheus.HistogramVec
	statesExplored  prometheus.Histogram
	activeSolves    prometheus.Gauge
	cacheOps        *prometheus.CounterVec
	cacheBytes      *prometheus.CounterVec
	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
}

// New creates the collectors and registers them on a fresh registry.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		parsesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "diagram",
			Name:      "parses_total",
			Help:      "Diagrams parsed, by status",
		}, []string{"status"}),
		solvesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "search",
			Name:      "solves_total",
			Help:      "Solve requests, by outcome",
		}, []string{"outcome"}),
		solveDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "search",
			Name:      "duration_seconds",
			Help:      "Wall time of solve requests in seconds",
			Buckets:   []float64{0.001, 0.01, 0.1, 0.5, 1, 2.5, 5, 10, 30, 60},
		}, []string{"outcome"}),
		statesExplored: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "search",
			Name:      "states_explored",
			Help:      "States expanded per search",
			Buckets:   prometheus.ExponentialBuckets(10, 10, 8),
		}),
		activeSolves: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "search",
			Name:      "active",
			Help:      "Searches currently running",
		}),
		cacheOps: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "cache",
			Name:      "operations_total",
			Help:      "Cache lookups and writes, by key type and result",
		}, []string{"key_type", "result"}),
		cacheBytes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "cache",
			Name:      "written_bytes_total",
			Help:      "Bytes written to the cache, by key type",
		}, []string{"key_type"}),
		requestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "HTTP requests, by method, route and status code",
		}, []string{"method", "route", "code"}),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}

	m.registry.MustRegister(
		m.parsesTotal,
		m.solvesTotal,
		m.solveDuration,
		m.statesExplored,
		m.activeSolves,
		m.cacheOps,
		m.cacheBytes,
		m.requestsTotal,
		m.requestDuration,
	)
	return m
}

// Register installs m as the process-wide search, cache and HTTP hooks.
func (m *Metrics) Register() {
	observability.SetSearchHooks(m)
	observability.SetCacheHooks(m)
	observability.SetHTTPHooks(m)
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry exposes the underlying registry, mainly for tests.
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

func (m *Metrics) OnParseComplete(_ context.Context, _, _ int, _ time.Duration, err error) {
	m.parsesTotal.WithLabelValues(status(err)).Inc()
}

func (m *Metrics) OnSolveStart(context.Context, int, int) {
	m.activeSolves.Inc()
}

func (m *Metrics) OnSolveComplete(_ context.Context, outcome string, explored int, d time.Duration, _ error) {
	m.activeSolves.Dec()
	m.solvesTotal.WithLabelValues(outcome).Inc()
	m.solveDuration.WithLabelValues(outcome).Observe(d.Seconds())
	if outcome != observability.OutcomeCached {
		m.statesExplored.Observe(float64(explored))
	}
}

func (m *Metrics) OnCacheHit(_ context.Context, keyType string) {
	m.cacheOps.WithLabelValues(keyType, "hit").Inc()
}

func (m *Metrics) OnCacheMiss(_ context.Context, keyType string) {
	m.cacheOps.WithLabelValues(keyType, "miss").Inc()
}

func (m *Metrics) OnCacheSet(_ context.Context, keyType string, size int) {
	m.cacheOps.WithLabelValues(keyType, "set").Inc()
	m.cacheBytes.WithLabelValues(keyType).Add(float64(size))
}

func (m *Metrics) OnResponse(_ context.Context, method, route string, code int, d time.Duration) {
	m.requestsTotal.WithLabelValues(method, route, strconv.Itoa(code)).Inc()
	m.requestDuration.WithLabelValues(method, route).Observe(d.Seconds())
}

func status(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

var (
	_ observability.SearchHooks = (*Metrics)(nil)
	_ observability.CacheHooks  = (*Metrics)(nil)
	_ observability.HTTPHooks   = (*Metrics)(nil)
)
