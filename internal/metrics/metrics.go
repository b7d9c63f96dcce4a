// Package metrics provides Prometheus metrics for the dashboard service.
package metrics

import (
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// Default histogram buckets for API latency.
var defaultBuckets = []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10}

// Metrics holds all Prometheus metric collectors for the service.
type Metrics struct {
	Registry *prometheus.Registry

	RequestsTotal    *prometheus.CounterVec
	RequestDuration  *prometheus.HistogramVec
	RequestsInFlight prometheus.Gauge

	UpstreamAttempts        *prometheus.CounterVec
	UpstreamAttemptDuration *prometheus.HistogramVec
}

// New creates a Metrics instance with a custom registry and all collectors registered.
func New() *Metrics {
	reg := prometheus.NewRegistry()

	reg.MustRegister(collectors.NewGoCollector())
	reg.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	m := &Metrics{
		Registry: reg,

		RequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "microburbs_dashboard_http_requests_total",
			Help: "Total inbound HTTP requests.",
		}, []string{"method", "status_code", "path_prefix"}),

		RequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "microburbs_dashboard_http_request_duration_seconds",
			Help:    "Inbound HTTP request latency in seconds.",
			Buckets: defaultBuckets,
		}, []string{"method", "status_code", "path_prefix"}),

		RequestsInFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "microburbs_dashboard_http_requests_in_flight",
			Help: "Number of HTTP requests currently being processed.",
		}),

		UpstreamAttempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "microburbs_dashboard_upstream_attempts_total",
			Help: "Total upstream fetch attempts by endpoint, auth style and outcome.",
		}, []string{"endpoint", "style", "status_code"}),

		UpstreamAttemptDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "microburbs_dashboard_upstream_attempt_duration_seconds",
			Help:    "Upstream attempt latency in seconds.",
			Buckets: defaultBuckets,
		}, []string{"endpoint"}),
	}

	reg.MustRegister(
		m.RequestsTotal,
		m.RequestDuration,
		m.RequestsInFlight,
		m.UpstreamAttempts,
		m.UpstreamAttemptDuration,
	)

	return m
}

// knownMethods lists the allowed HTTP method label values (bounded cardinality).
var knownMethods = map[string]bool{
	"GET": true, "POST": true, "PUT": true, "DELETE": true,
	"PATCH": true, "HEAD": true, "OPTIONS": true,
}

// NormalizeMethod returns a bounded HTTP method label for Prometheus metrics.
// Non-standard methods are mapped to "other" to prevent cardinality explosion.
func NormalizeMethod(method string) string {
	if knownMethods[method] {
		return method
	}
	return "other"
}

// knownPrefixes lists the allowed path label values (bounded cardinality).
// The dashboard root "/" is matched exactly, never as a prefix.
var knownPrefixes = []string{"/api/suburb", "/api/property", "/healthz", "/status", "/metrics"}

// NormalizePath returns a bounded path label for Prometheus metrics.
func NormalizePath(path string) string {
	for _, prefix := range knownPrefixes {
		if path == prefix || strings.HasPrefix(path, prefix+"/") || strings.HasPrefix(path, prefix+"?") {
			return prefix
		}
	}
	if path == "/" {
		return "/"
	}
	return "other"
}

// knownEndpoints lists the upstream endpoint label values (bounded cardinality).
var knownEndpoints = map[string]bool{
	"/suburb/market":   true,
	"/property/market": true,
}

// NormalizeEndpoint returns a bounded upstream endpoint label for Prometheus metrics.
func NormalizeEndpoint(endpoint string) string {
	if knownEndpoints[endpoint] {
		return endpoint
	}
	return "other"
}
