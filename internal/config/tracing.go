package config

import (
	"log/slog"

	pkgconfig "ajou-menu/internal/pkg/config"
)

// LoadTracingEnabled reports whether spans should be recorded
// (TRACING_ENABLED, default false). metrics may be nil.
func LoadTracingEnabled(logger *slog.Logger, metrics *pkgconfig.ConfigMetrics) bool {
	return metrics.Track(logger, "tracing_enabled",
		pkgconfig.LoadEnvBool("TRACING_ENABLED", false)).(bool)
}

// LoadVersion returns the build version reported in logs and spans
// (VERSION, default "dev").
func LoadVersion() string {
	return pkgconfig.LoadEnvString("VERSION", "dev")
}
