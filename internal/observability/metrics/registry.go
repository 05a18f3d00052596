// Package metrics provides centralized Prometheus metrics for the application.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// HTTP metrics track HTTP request patterns and performance
var (
	// HTTPRequestsTotal counts total HTTP requests by method, path, and status
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	// HTTPRequestDuration measures HTTP request duration in seconds
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)

	// HTTPResponseSize measures HTTP response body size in bytes
	HTTPResponseSize = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_response_size_bytes",
			Help:    "HTTP response size in bytes",
			Buckets: prometheus.ExponentialBuckets(100, 10, 8),
		},
		[]string{"method", "path"},
	)

	// ActiveConnections tracks the number of in-flight HTTP requests
	ActiveConnections = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "http_active_connections",
			Help: "Number of active HTTP connections",
		},
	)
)

// Menu pipeline metrics
var (
	// SourceFetchTotal counts pipeline outcomes per source.
	// status is one of ok, empty, unparseable, unreachable.
	SourceFetchTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "menu_source_fetch_total",
			Help: "Total number of menu source fetches by outcome",
		},
		[]string{"source", "status"},
	)

	// SourceFetchDuration measures fetch+parse+normalize time per source
	SourceFetchDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "menu_source_fetch_duration_seconds",
			Help:    "Time taken to produce a report for one menu source",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 20},
		},
		[]string{"source"},
	)

	// MenuEntries tracks the number of dishes in the latest report per source
	MenuEntries = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "menu_entries",
			Help: "Number of menu entries in the most recent report",
		},
		[]string{"source"},
	)

	// BoilerplateFilteredTotal counts lines dropped by the normalizer per rule reason
	BoilerplateFilteredTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "menu_boilerplate_filtered_total",
			Help: "Total number of raw lines dropped as boilerplate",
		},
		[]string{"reason"},
	)

	// DailyMenuBuildsTotal counts aggregations by whether every source was usable
	DailyMenuBuildsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "menu_daily_builds_total",
			Help: "Total number of daily menu aggregations",
		},
		[]string{"result"}, // result: complete, partial, unavailable
	)
)

// RecordHTTPRequest records an HTTP request with its metadata
func RecordHTTPRequest(method, path, status string, duration time.Duration, responseSize int) {
	HTTPRequestsTotal.WithLabelValues(method, path, status).Inc()
	HTTPRequestDuration.WithLabelValues(method, path, status).Observe(duration.Seconds())

	if responseSize > 0 {
		HTTPResponseSize.WithLabelValues(method, path).Observe(float64(responseSize))
	}
}

// RecordSourceFetch records the outcome and latency of one source pipeline.
func RecordSourceFetch(source, status string, duration time.Duration) {
	SourceFetchTotal.WithLabelValues(source, status).Inc()
	SourceFetchDuration.WithLabelValues(source).Observe(duration.Seconds())
}

// RecordMenuEntries records how many entries the latest report for source carried.
func RecordMenuEntries(source string, count int) {
	MenuEntries.WithLabelValues(source).Set(float64(count))
}

// RecordBoilerplateFiltered adds count dropped lines attributed to reason.
func RecordBoilerplateFiltered(reason string, count int) {
	if count <= 0 {
		return
	}
	BoilerplateFilteredTotal.WithLabelValues(reason).Add(float64(count))
}

// RecordDailyMenuBuild records an aggregation given the number of sources
// and how many of them were unusable.
func RecordDailyMenuBuild(sources, unavailable int) {
	result := "complete"
	switch {
	case unavailable >= sources:
		result = "unavailable"
	case unavailable > 0:
		result = "partial"
	}
	DailyMenuBuildsTotal.WithLabelValues(result).Inc()
}

