package http

import (
	"net/http"
	"strconv"
	"time"

	"ajou-menu/internal/observability/metrics"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// otherRoute labels requests for paths the server does not serve.
const otherRoute = "other"

// MetricsMiddleware records HTTP request metrics including duration, size, and status codes.
// Only the given routes are used as path labels; any other path is recorded
// as "other" so that scanners probing random URLs cannot inflate label
// cardinality.
func MetricsMiddleware(routes ...string) func(http.Handler) http.Handler {
	known := make(map[string]bool, len(routes))
	for _, r := range routes {
		known[r] = true
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			metrics.ActiveConnections.Inc()
			defer metrics.ActiveConnections.Dec()

			path := r.URL.Path
			if !known[path] {
				path = otherRoute
			}

			rw := newStatusRecorder(w)
			start := time.Now()
			next.ServeHTTP(rw, r)

			metrics.RecordHTTPRequest(r.Method, path, strconv.Itoa(rw.StatusCode()), time.Since(start), rw.BytesWritten())
		})
	}
}

// MetricsHandler returns an HTTP handler for the Prometheus metrics endpoint.
func MetricsHandler() http.Handler {
	return promhttp.Handler()
}
