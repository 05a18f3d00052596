package config

import (
	"log/slog"
	"strings"
	"time"

	"ajou-menu/internal/domain/entity"
	pkgconfig "ajou-menu/internal/pkg/config"
)

// APIConfig holds the settings of the HTTP front end.
type APIConfig struct {
	// Port the API listens on (API_PORT, default 8080).
	Port int

	// AdminAPIKey guards the admin routes (ADMIN_API_KEY). Empty disables them.
	AdminAPIKey string

	// AdminRateLimit is the number of admin requests allowed per client per
	// AdminRateWindow (ADMIN_RATE_LIMIT, default 10 per minute).
	AdminRateLimit  int
	AdminRateWindow time.Duration

	// AllowedOrigins lists the origins allowed to call the API from a
	// browser (CORS_ALLOWED_ORIGINS, comma-separated). Empty allows none.
	AllowedOrigins []string

	// SchedulerEnabled runs the daily delivery inside the API process
	// (SCHEDULER_ENABLED, default true). Disable it when cmd/worker runs.
	SchedulerEnabled bool

	// Version is reported by /health (VERSION, default "dev").
	Version string
}

// LoadAPIConfig reads the front end settings. It never fails: invalid values
// fall back to defaults with a logged warning.
//
// metrics may be nil.
func LoadAPIConfig(logger *slog.Logger, metrics *pkgconfig.ConfigMetrics) *APIConfig {
	cfg := &APIConfig{
		Port: metrics.Track(logger, "api_port",
			pkgconfig.LoadEnvInt("API_PORT", 8080, func(v int) error {
				return pkgconfig.ValidateIntRange(v, 1024, 65535)
			})).(int),
		AdminAPIKey: pkgconfig.LoadEnvString("ADMIN_API_KEY", ""),
		AdminRateLimit: metrics.Track(logger, "admin_rate_limit",
			pkgconfig.LoadEnvInt("ADMIN_RATE_LIMIT", 10, func(v int) error {
				return pkgconfig.ValidateIntRange(v, 1, 1000)
			})).(int),
		AdminRateWindow: time.Minute,
		SchedulerEnabled: metrics.Track(logger, "scheduler_enabled",
			pkgconfig.LoadEnvBool("SCHEDULER_ENABLED", true)).(bool),
		Version: LoadVersion(),
	}

	for _, origin := range strings.Split(pkgconfig.LoadEnvString("CORS_ALLOWED_ORIGINS", ""), ",") {
		origin = strings.TrimRight(strings.TrimSpace(origin), "/")
		if origin == "" {
			continue
		}
		if err := entity.ValidateEndpointURL(origin); err != nil {
			logger.Warn("ignoring invalid CORS origin",
				slog.String("origin", origin),
				slog.Any("error", err))
			continue
		}
		cfg.AllowedOrigins = append(cfg.AllowedOrigins, origin)
	}

	if cfg.AdminAPIKey == "" {
		logger.Warn("ADMIN_API_KEY is not set; admin endpoints will reject every request")
	} else if len(cfg.AdminAPIKey) < 16 {
		logger.Warn("ADMIN_API_KEY is shorter than 16 characters")
	}

	return cfg
}
