// Package logging builds the slog loggers used by every binary.
//
// LOG_LEVEL selects the minimum level (debug, info, warn, error) and
// LOG_FORMAT selects json (default) or text output. Request-scoped loggers
// carry the request_id attribute set by the requestid middleware:
//
//	logger := logging.WithRequestID(r.Context(), base)
//	ctx := logging.WithLogger(r.Context(), logger)
//	logging.FromContext(ctx).Info("building daily menu")
package logging
