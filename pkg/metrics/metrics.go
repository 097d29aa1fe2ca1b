// Package metrics defines the Prometheus metric collectors used by the
// catalog service and exposes an HTTP handler for scraping.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus collectors for the service.
type Metrics struct {
	HTTPRequestsTotal    *prometheus.CounterVec
	HTTPRequestDuration  *prometheus.HistogramVec
	HTTPRequestsInFlight prometheus.Gauge
	BrowseRequestsTotal  *prometheus.CounterVec
	BrowseLatency        *prometheus.HistogramVec
	BrowseResultsCount   prometheus.Histogram
	CacheHitsTotal       prometheus.Counter
	CacheMissesTotal     prometheus.Counter
	SnapshotRecords      prometheus.Gauge
	SnapshotTopics       prometheus.Gauge
	LockedRecords        prometheus.Gauge
}

// New creates and registers all Prometheus metrics.
func New() *Metrics {
	m := &Metrics{
		HTTPRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests by method, path, and status.",
			},
			[]string{"method", "path", "status"},
		),
		HTTPRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request latency in seconds.",
				Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
			},
			[]string{"method", "path"},
		),
		HTTPRequestsInFlight: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "http_requests_in_flight",
				Help: "Number of HTTP requests currently being processed.",
			},
		),
		BrowseRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "browse_requests_total",
				Help: "Total browse requests by render mode and result type (grouped, flat, zero_result, error).",
			},
			[]string{"result_type"},
		),
		BrowseLatency: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "browse_latency_seconds",
				Help:    "Browse pipeline latency in seconds.",
				Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25},
			},
			[]string{"cache_status"},
		),
		BrowseResultsCount: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "browse_results_count",
				Help:    "Number of records shown per browse request.",
				Buckets: []float64{0, 1, 10, 24, 60, 120, 250, 400, 1000},
			},
		),
		CacheHitsTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "cache_hits_total",
				Help: "Total number of render-plan cache hits.",
			},
		),
		CacheMissesTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "cache_misses_total",
				Help: "Total number of render-plan cache misses.",
			},
		),
		SnapshotRecords: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "snapshot_records",
				Help: "Number of records in the loaded catalog snapshot.",
			},
		),
		SnapshotTopics: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "snapshot_topics",
				Help: "Number of topics in the loaded catalog snapshot.",
			},
		),
		LockedRecords: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "snapshot_locked_records",
				Help: "Number of records locked by flag or blacklist overlay.",
			},
		),
	}

	prometheus.MustRegister(
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.HTTPRequestsInFlight,
		m.BrowseRequestsTotal,
		m.BrowseLatency,
		m.BrowseResultsCount,
		m.CacheHitsTotal,
		m.CacheMissesTotal,
		m.SnapshotRecords,
		m.SnapshotTopics,
		m.LockedRecords,
	)

	return m
}

// Handler returns the Prometheus scrape HTTP handler.
func Handler() http.Handler {
	return promhttp.Handler()
}
