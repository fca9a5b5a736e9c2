// Package metrics defines the Prometheus collectors of the test bench and
// exposes an HTTP handler for scraping.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Outcome label values.
const (
	OutcomeOK    = "ok"
	OutcomeError = "error"
)

// Metrics holds all collectors, registered on a private registry so that
// several instances can coexist in one process (tests, experiment runs).
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	Registry *prometheus.Registry

	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec
	SearchesTotal       *prometheus.CounterVec
	SearchLatency       *prometheus.HistogramVec
	SearchResultsCount  *prometheus.HistogramVec
	IndexBuildsTotal    *prometheus.CounterVec
	DocsIndexedTotal    *prometheus.CounterVec
	JobsTotal           *prometheus.CounterVec
	JobDuration         *prometheus.HistogramVec
	JobsInFlight        prometheus.Gauge
}

// New creates and registers all collectors.
func New() *Metrics {
	m := &Metrics{
		Registry: prometheus.NewRegistry(),
		HTTPRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "searchlab_http_requests_total",
				Help: "Total number of HTTP requests by method, path, and status.",
			},
			[]string{"method", "path", "status"},
		),
		HTTPRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "searchlab_http_request_duration_seconds",
				Help:    "HTTP request latency in seconds.",
				Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
			},
			[]string{"method", "path"},
		),
		SearchesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "searchlab_searches_total",
				Help: "Total searches by preset and outcome.",
			},
			[]string{"preset", "outcome"},
		),
		SearchLatency: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "searchlab_search_latency_seconds",
				Help:    "Search latency in seconds by preset.",
				Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
			},
			[]string{"preset"},
		),
		SearchResultsCount: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "searchlab_search_results_count",
				Help:    "Number of matching documents per search.",
				Buckets: []float64{0, 1, 5, 10, 25, 50, 100, 250},
			},
			[]string{"preset"},
		),
		IndexBuildsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "searchlab_index_builds_total",
				Help: "Total index builds by analyzer and outcome.",
			},
			[]string{"analyzer", "outcome"},
		),
		DocsIndexedTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "searchlab_docs_indexed_total",
				Help: "Total documents indexed by analyzer.",
			},
			[]string{"analyzer"},
		),
		JobsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "searchlab_jobs_total",
				Help: "Total background jobs by type and final status.",
			},
			[]string{"type", "status"},
		),
		JobDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "searchlab_job_duration_seconds",
				Help:    "Background job execution time in seconds by type.",
				Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 10, 30, 60},
			},
			[]string{"type"},
		),
		JobsInFlight: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "searchlab_jobs_in_flight",
				Help: "Number of background jobs currently running.",
			},
		),
	}

	m.Registry.MustRegister(
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.SearchesTotal,
		m.SearchLatency,
		m.SearchResultsCount,
		m.IndexBuildsTotal,
		m.DocsIndexedTotal,
		m.JobsTotal,
		m.JobDuration,
		m.JobsInFlight,
	)

	return m
}

// Handler returns the Prometheus scrape handler for this registry.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{})
}

// ObserveSearch records one search against a preset.
func (m *Metrics) ObserveSearch(preset string, took time.Duration, total int, err error) {
	if m == nil {
		return
	}
	if err != nil {
		m.SearchesTotal.WithLabelValues(preset, OutcomeError).Inc()
		return
	}
	m.SearchesTotal.WithLabelValues(preset, OutcomeOK).Inc()
	m.SearchLatency.WithLabelValues(preset).Observe(took.Seconds())
	m.SearchResultsCount.WithLabelValues(preset).Observe(float64(total))
}

// ObserveBuild records one index build.
func (m *Metrics) ObserveBuild(analyzer string, documents int, err error) {
	if m == nil {
		return
	}
	if err != nil {
		m.IndexBuildsTotal.WithLabelValues(analyzer, OutcomeError).Inc()
		return
	}
	m.IndexBuildsTotal.WithLabelValues(analyzer, OutcomeOK).Inc()
	m.DocsIndexedTotal.WithLabelValues(analyzer).Add(float64(documents))
}

// ObserveRequest records one HTTP request.
func (m *Metrics) ObserveRequest(method, path string, status string, took time.Duration) {
	if m == nil {
		return
	}
	m.HTTPRequestsTotal.WithLabelValues(method, path, status).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, path).Observe(took.Seconds())
}

// JobStarted marks one background job as running.
func (m *Metrics) JobStarted() {
	if m == nil {
		return
	}
	m.JobsInFlight.Inc()
}

// JobFinished records the final status of one background job.
func (m *Metrics) JobFinished(jobType, status string, took time.Duration) {
	if m == nil {
		return
	}
	m.JobsInFlight.Dec()
	m.JobsTotal.WithLabelValues(jobType, status).Inc()
	m.JobDuration.WithLabelValues(jobType).Observe(took.Seconds())
}
