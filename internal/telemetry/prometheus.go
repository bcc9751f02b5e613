// Package telemetry implements the request and domain metrics sinks used by
// the API. Prometheus is scraped from /metrics; CloudWatch is pushed.
package telemetry

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"disasterwatch/internal/types"
)

const promNamespace = "disasterwatch"

// PrometheusMetrics holds the counters and histograms for the API. Each
// instance owns its registry so tests can build as many as they like.
type PrometheusMetrics struct {
	registry *prometheus.Registry

	HTTPRequests    *prometheus.CounterVec   // labels: method, route, status
	HTTPDuration    *prometheus.HistogramVec // labels: method, route
	WeatherFetches  *prometheus.CounterVec   // labels: kind={city,coordinates,bulk}, outcome
	FetchDuration   *prometheus.HistogramVec // labels: kind
	RiskAssessments *prometheus.CounterVec   // labels: level
	AlertsRaised    *prometheus.CounterVec   // labels: level
}

// NewPrometheusMetrics creates the collectors and registers them, together
// with the Go runtime and process collectors, on a fresh registry.
func NewPrometheusMetrics() *PrometheusMetrics {
	m := &PrometheusMetrics{
		registry: prometheus.NewRegistry(),
		HTTPRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: promNamespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by method, route pattern and status code.",
		}, []string{"method", "route", "status"}),
		HTTPDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: promNamespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by method and route pattern.",
			Buckets:   []float64{0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}, []string{"method", "route"}),
		WeatherFetches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: promNamespace,
			Name:      "weather_fetches_total",
			Help:      "Weather provider calls by kind and outcome.",
		}, []string{"kind", "outcome"}),
		FetchDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: promNamespace,
			Name:      "weather_fetch_duration_seconds",
			Help:      "Weather provider call latency.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}, []string{"kind"}),
		RiskAssessments: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: promNamespace,
			Name:      "risk_assessments_total",
			Help:      "Risk assessments by resulting level.",
		}, []string{"level"}),
		AlertsRaised: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: promNamespace,
			Name:      "alerts_raised_total",
			Help:      "Stored alerts by risk level.",
		}, []string{"level"}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.HTTPRequests,
		m.HTTPDuration,
		m.WeatherFetches,
		m.FetchDuration,
		m.RiskAssessments,
		m.AlertsRaised,
	)
	return m
}

// Handler serves the registry in the Prometheus exposition format.
func (m *PrometheusMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *PrometheusMetrics) RecordRequest(method, endpoint, status string, d time.Duration) {
	m.HTTPRequests.WithLabelValues(method, endpoint, status).Inc()
	m.HTTPDuration.WithLabelValues(method, endpoint).Observe(d.Seconds())
}

func (m *PrometheusMetrics) RecordFetch(kind, outcome string, d time.Duration) {
	m.WeatherFetches.WithLabelValues(kind, outcome).Inc()
	m.FetchDuration.WithLabelValues(kind).Observe(d.Seconds())
}

func (m *PrometheusMetrics) RecordAssessment(level types.RiskLevel) {
	m.RiskAssessments.WithLabelValues(string(level)).Inc()
}

func (m *PrometheusMetrics) RecordAlert(level types.RiskLevel) {
	m.AlertsRaised.WithLabelValues(string(level)).Inc()
}
