// Package metrics owns the Prometheus collectors of the menu pipeline.
//
// Collectors are registered on the default registry at init through
// promauto and served by promhttp on /metrics. Callers go through the
// Record* helpers rather than touching the vectors:
//
//	start := time.Now()
//	report := fetchAndParse(ctx, source)
//	metrics.RecordSourceFetch(string(source), string(report.Status), time.Since(start))
//	metrics.RecordMenuEntries(string(source), len(report.Entries))
package metrics
