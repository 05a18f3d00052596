package tracing

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// tracerName is the instrumentation scope used for every span in the application.
const tracerName = "ajou-menu"

// GetTracer returns the tracer for creating spans.
// It is resolved from the global provider on every call so that a provider
// installed after package init is picked up.
//
// Example usage:
//
//	ctx, span := tracing.GetTracer().Start(ctx, "operation-name")
//	defer span.End()
func GetTracer() trace.Tracer {
	return otel.Tracer(tracerName)
}

// StartSourceSpan starts the span covering one source pipeline
// (fetch, parse, normalize) for the given date.
func StartSourceSpan(ctx context.Context, source, date string) (context.Context, trace.Span) {
	return GetTracer().Start(ctx, "menu.source "+source,
		trace.WithAttributes(
			attribute.String("menu.source", source),
			attribute.String("menu.date", date),
		),
	)
}

// EndSourceSpan records the report status on span and ends it.
// A non-nil cause marks the span as failed.
func EndSourceSpan(span trace.Span, status string, entries int, cause error) {
	span.SetAttributes(
		attribute.String("menu.status", status),
		attribute.Int("menu.entries", entries),
	)
	if cause != nil {
		span.RecordError(cause)
		span.SetStatus(codes.Error, status)
	}
	span.End()
}
