// Package metrics provides Prometheus metrics for the Huddle API.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Manager owns all Prometheus metrics for the service.
type Manager struct {
	registry *prometheus.Registry

	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	workloadCalculations  prometheus.Counter
	constellationBuilds   prometheus.Counter
	searchFallbacks       prometheus.Counter
	assistInvocations     *prometheus.CounterVec
	realtimeSubscribers   prometheus.Gauge
	invokeDuration        prometheus.Histogram
}

// NewManager creates a metrics manager backed by its own registry, keeping
// the default Go runtime collectors out of the scrape output.
func NewManager() *Manager {
	registry := prometheus.NewRegistry()
	auto := promauto.With(registry)

	m := &Manager{registry: registry}

	m.httpRequests = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "huddle",
		Subsystem: "api",
		Name:      "http_requests_total",
		Help:      "Total HTTP requests by method, route, and status",
	}, []string{"method", "route", "status"})

	m.httpRequestDuration = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "huddle",
		Subsystem: "api",
		Name:      "http_request_duration_seconds",
		Help:      "Histogram of HTTP request latency",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "route"})

	m.workloadCalculations = auto.NewCounter(prometheus.CounterOpts{
		Namespace: "huddle",
		Subsystem: "api",
		Name:      "workload_calculations_total",
		Help:      "Total team workload calculations served",
	})

	m.constellationBuilds = auto.NewCounter(prometheus.CounterOpts{
		Namespace: "huddle",
		Subsystem: "api",
		Name:      "constellation_builds_total",
		Help:      "Total relationship constellation maps built",
	})

	m.searchFallbacks = auto.NewCounter(prometheus.CounterOpts{
		Namespace: "huddle",
		Subsystem: "api",
		Name:      "search_pgfts_fallbacks_total",
		Help:      "Searches served by Postgres FTS because Meilisearch was unavailable",
	})

	m.assistInvocations = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "huddle",
		Subsystem: "api",
		Name:      "assist_invocations_total",
		Help:      "Assist function invocations by function name",
	}, []string{"function"})

	m.realtimeSubscribers = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: "huddle",
		Subsystem: "api",
		Name:      "realtime_subscribers",
		Help:      "Currently connected SSE subscribers",
	})

	m.invokeDuration = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "huddle",
		Subsystem: "api",
		Name:      "assist_invoke_duration_seconds",
		Help:      "Histogram of assist function latency",
		Buckets:   prometheus.DefBuckets,
	})

	return m
}

// Handler returns the scrape endpoint handler.
func (m *Manager) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// RecordHTTPRequest records one completed request.
func (m *Manager) RecordHTTPRequest(method, route string, status int, elapsed time.Duration) {
	m.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.httpRequestDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

// RecordWorkloadCalculation counts one workload calculation.
func (m *Manager) RecordWorkloadCalculation() {
	m.workloadCalculations.Inc()
}

// RecordConstellationBuild counts one constellation build.
func (m *Manager) RecordConstellationBuild() {
	m.constellationBuilds.Inc()
}

// RecordSearchFallback counts one Postgres FTS fallback.
func (m *Manager) RecordSearchFallback() {
	m.searchFallbacks.Inc()
}

// RecordAssistInvocation counts one assist function call with its latency.
func (m *Manager) RecordAssistInvocation(function string, elapsed time.Duration) {
	m.assistInvocations.WithLabelValues(function).Inc()
	m.invokeDuration.Observe(elapsed.Seconds())
}

// SubscriberConnected tracks an SSE client attach.
func (m *Manager) SubscriberConnected() {
	m.realtimeSubscribers.Inc()
}

// SubscriberDisconnected tracks an SSE client detach.
func (m *Manager) SubscriberDisconnected() {
	m.realtimeSubscribers.Dec()
}
