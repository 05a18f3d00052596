// Package tracing provides OpenTelemetry tracing integration.
//
// Every source pipeline run by the menu aggregator gets its own span
// (see StartSourceSpan), and HTTP requests are traced by Middleware.
// Setup installs an SDK provider that logs finished spans when
// TRACING_ENABLED is set; otherwise the global no-op provider is used.
//
// Example usage:
//
//	import "ajou-menu/internal/observability/tracing"
//
//	func fetchSource(ctx context.Context) {
//	    ctx, span := tracing.StartSourceSpan(ctx, "dormitory", "2025-09-10")
//	    // ... fetch, parse, normalize ...
//	    tracing.EndSourceSpan(span, "ok", 12, nil)
//	}
package tracing
