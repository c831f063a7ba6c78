// Package metrics exposes the Prometheus instruments of the dashboard
// server, the import worker and the CLI.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bikeshare_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "route", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "bikeshare_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	RateLimitHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "bikeshare_rate_limit_hits_total",
			Help: "Requests rejected by the per-client rate limiter",
		},
	)

	SuspiciousRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bikeshare_suspicious_requests_total",
			Help: "Requests matching a known probing pattern",
		},
		[]string{"reason"},
	)

	// Dashboard computation
	DashboardRenderDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "bikeshare_dashboard_compute_seconds",
			Help:    "Time spent filtering and aggregating one date range",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		},
	)

	DashboardCacheHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "bikeshare_dashboard_cache_hits_total",
			Help: "Dashboard renders served from the result cache",
		},
	)

	DashboardCacheMisses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "bikeshare_dashboard_cache_misses_total",
			Help: "Dashboard renders that had to be computed",
		},
	)

	DashboardCacheEntries = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "bikeshare_dashboard_cache_entries",
			Help: "Current number of cached dashboards",
		},
	)

	FilteredRecords = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "bikeshare_filtered_records",
			Help:    "Number of usage records selected by a date range",
			Buckets: prometheus.ExponentialBuckets(1, 4, 9),
		},
	)

	// Dataset
	DatasetRecords = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "bikeshare_dataset_records",
			Help: "Usage records held by the loaded dataset",
		},
	)

	DatasetLoadedTimestamp = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "bikeshare_dataset_loaded_timestamp_seconds",
			Help: "Unix time the dataset was loaded",
		},
	)

	// Imports
	ImportsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bikeshare_imports_total",
			Help: "Dataset imports by outcome",
		},
		[]string{"trigger", "outcome"},
	)

	ImportDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "bikeshare_import_duration_seconds",
			Help:    "Duration of a dataset import",
			Buckets: []float64{0.1, 0.5, 1, 2.5, 5, 10, 30, 60, 120},
		},
	)

	// AMQP
	AMQPMessagesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bikeshare_amqp_messages_total",
			Help: "AMQP messages by direction and outcome",
		},
		[]string{"direction", "outcome"},
	)

	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "bikeshare_circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)
)

// ObserveHTTP records one completed request.
func ObserveHTTP(method, route string, status int, elapsed time.Duration) {
	HTTPRequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	HTTPRequestDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

// RecordDataset publishes the size and load time of the active dataset.
func RecordDataset(records int, loadedAt time.Time) {
	DatasetRecords.Set(float64(records))
	DatasetLoadedTimestamp.Set(float64(loadedAt.Unix()))
}

// RecordImport counts an import attempt and, on success, its duration.
func RecordImport(trigger string, err error, elapsed time.Duration) {
	outcome := "success"
	if err != nil {
		outcome = "error"
	}
	ImportsTotal.WithLabelValues(trigger, outcome).Inc()
	if err == nil {
		ImportDuration.Observe(elapsed.Seconds())
	}
}
