// Package metrics provides Prometheus metrics export for PlotBuddy.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Handler outcome labels.
const (
	StatusSuccess  = "success"
	StatusDeclined = "declined"
	StatusError    = "error"
)

// PrometheusExporter exports routing, handler and LLM metrics in Prometheus format.
type PrometheusExporter struct {
	registry *prometheus.Registry

	// Routing metrics
	routeDecisions *prometheus.CounterVec
	requestsActive prometheus.Gauge

	// Handler metrics
	handlerRequests *prometheus.CounterVec
	handlerLatency  *prometheus.HistogramVec

	// Cache metrics
	cacheHits   *prometheus.CounterVec
	cacheMisses *prometheus.CounterVec

	// LLM metrics
	llmCalls   *prometheus.CounterVec
	llmTokens  *prometheus.CounterVec
	llmLatency *prometheus.HistogramVec
}

// Config configures the Prometheus exporter.
type Config struct {
	// Registry to use (if nil, creates a new one)
	Registry *prometheus.Registry

	// Buckets for latency histograms (in seconds)
	LatencyBuckets []float64
}

// DefaultConfig returns default Prometheus configuration.
func DefaultConfig() Config {
	return Config{
		LatencyBuckets: []float64{0.001, 0.01, 0.05, 0.1, 0.5, 1, 2, 5, 10, 30, 60},
	}
}

// NewPrometheusExporter creates a new Prometheus metrics exporter.
func NewPrometheusExporter(cfg Config) *PrometheusExporter {
	if len(cfg.LatencyBuckets) == 0 {
		cfg.LatencyBuckets = DefaultConfig().LatencyBuckets
	}

	registry := cfg.Registry
	if registry == nil {
		registry = prometheus.NewRegistry()
	}

	e := &PrometheusExporter{registry: registry}

	e.routeDecisions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "plotbuddy",
			Subsystem: "router",
			Name:      "decisions_total",
			Help:      "Total number of routing decisions",
		},
		[]string{"route", "source"},
	)

	e.requestsActive = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "plotbuddy",
			Subsystem: "router",
			Name:      "requests_active",
			Help:      "Number of messages being processed",
		},
	)

	e.handlerRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "plotbuddy",
			Subsystem: "agent",
			Name:      "requests_total",
			Help:      "Total number of handler invocations",
		},
		[]string{"agent", "status"},
	)

	e.handlerLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "plotbuddy",
			Subsystem: "agent",
			Name:      "latency_seconds",
			Help:      "Handler latency in seconds",
			Buckets:   cfg.LatencyBuckets,
		},
		[]string{"agent"},
	)

	e.cacheHits = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "plotbuddy",
			Subsystem: "cache",
			Name:      "hits_total",
			Help:      "Total number of cache hits",
		},
		[]string{"cache_type"},
	)

	e.cacheMisses = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "plotbuddy",
			Subsystem: "cache",
			Name:      "misses_total",
			Help:      "Total number of cache misses",
		},
		[]string{"cache_type"},
	)

	e.llmCalls = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "plotbuddy",
			Subsystem: "llm",
			Name:      "calls_total",
			Help:      "Total number of LLM calls",
		},
		[]string{"provider", "status"},
	)

	e.llmTokens = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "plotbuddy",
			Subsystem: "llm",
			Name:      "tokens_total",
			Help:      "Total LLM tokens consumed",
		},
		[]string{"provider", "token_type"},
	)

	e.llmLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "plotbuddy",
			Subsystem: "llm",
			Name:      "latency_seconds",
			Help:      "LLM request latency in seconds",
			Buckets:   cfg.LatencyBuckets,
		},
		[]string{"provider"},
	)

	registry.MustRegister(
		e.routeDecisions,
		e.requestsActive,
		e.handlerRequests,
		e.handlerLatency,
		e.cacheHits,
		e.cacheMisses,
		e.llmCalls,
		e.llmTokens,
		e.llmLatency,
	)

	return e
}

// RecordRoute records a routing decision.
func (e *PrometheusExporter) RecordRoute(route, source string) {
	e.routeDecisions.WithLabelValues(route, source).Inc()
}

// TrackActive increments the active request gauge and returns a func that
// decrements it.
func (e *PrometheusExporter) TrackActive() func() {
	e.requestsActive.Inc()
	return e.requestsActive.Dec
}

// RecordHandler records one handler invocation with its outcome.
func (e *PrometheusExporter) RecordHandler(agent, status string, latency time.Duration) {
	e.handlerRequests.WithLabelValues(agent, status).Inc()
	e.handlerLatency.WithLabelValues(agent).Observe(latency.Seconds())
}

// RecordCacheHit records a cache hit.
func (e *PrometheusExporter) RecordCacheHit(cacheType string) {
	e.cacheHits.WithLabelValues(cacheType).Inc()
}

// RecordCacheMiss records a cache miss.
func (e *PrometheusExporter) RecordCacheMiss(cacheType string) {
	e.cacheMisses.WithLabelValues(cacheType).Inc()
}

// RecordLLMCall records an LLM call and the tokens it consumed.
func (e *PrometheusExporter) RecordLLMCall(provider string, latency time.Duration, promptTokens, completionTokens int, err error) {
	status := StatusSuccess
	if err != nil {
		status = StatusError
	}
	e.llmCalls.WithLabelValues(provider, status).Inc()
	e.llmLatency.WithLabelValues(provider).Observe(latency.Seconds())
	if promptTokens > 0 {
		e.llmTokens.WithLabelValues(provider, "prompt").Add(float64(promptTokens))
	}
	if completionTokens > 0 {
		e.llmTokens.WithLabelValues(provider, "completion").Add(float64(completionTokens))
	}
}

// Handler returns an HTTP handler for the metrics endpoint.
func (e *PrometheusExporter) Handler() http.Handler {
	return promhttp.HandlerFor(e.registry, promhttp.HandlerOpts{})
}

// ServeHTTP implements http.Handler for the metrics endpoint.
func (e *PrometheusExporter) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	e.Handler().ServeHTTP(w, r)
}

// GetRegistry returns the Prometheus registry.
func (e *PrometheusExporter) GetRegistry() *prometheus.Registry {
	return e.registry
}
