package worker

import (
	"fmt"
	"log/slog"
	"time"

	"ajou-menu/internal/pkg/config"
)

// WorkerConfig holds the configuration for the scheduled menu delivery.
//
// Configuration sources:
//   - Environment variables (loaded via LoadConfigFromEnv)
//   - Default values (provided by DefaultConfig)
//
// Example usage:
//
//	cfg := LoadConfigFromEnv(logger, metrics)
//	if err := cfg.Validate(); err != nil { ... }
//	sched, err := NewScheduler(cfg.Schedule(), cfg.Location(), cfg.JobTimeout, job, metrics, logger)
type WorkerConfig struct {
	// NotificationTime is the daily delivery time, "HH:MM" in Timezone.
	// Default: "12:00"
	NotificationTime string

	// CronSchedule overrides NotificationTime when set.
	// Format: "minute hour day month weekday"
	// Example: "30 11 * * 1-5" (weekdays at 11:30)
	CronSchedule string

	// Timezone is the IANA timezone name the schedule is evaluated in.
	// Default: "Asia/Seoul"
	Timezone string

	// NotifyMaxConcurrent bounds parallel channel deliveries.
	// Range: 1-10
	// Default: 3
	NotifyMaxConcurrent int

	// JobTimeout bounds one build-and-deliver run.
	// Range: 10s-30m
	// Default: 2 minutes
	JobTimeout time.Duration

	// HealthPort is the port number for the health check HTTP server.
	// Range: 1024-65535
	// Default: 9091
	HealthPort int

	// MetricsPort is the port of the Prometheus metrics server.
	// Range: 1024-65535
	// Default: 9090
	MetricsPort int
}

// DefaultConfig returns a WorkerConfig with default values: delivery every
// day at noon Korean time.
func DefaultConfig() WorkerConfig {
	return WorkerConfig{
		NotificationTime:    "12:00",
		Timezone:            "Asia/Seoul",
		NotifyMaxConcurrent: 3,
		JobTimeout:          2 * time.Minute,
		HealthPort:          9091,
		MetricsPort:         9090,
	}
}

// Schedule returns the effective five-field cron expression.
// CronSchedule wins; otherwise NotificationTime becomes "M H * * *".
// An unparseable NotificationTime yields the default noon schedule.
func (c *WorkerConfig) Schedule() string {
	if c.CronSchedule != "" {
		return c.CronSchedule
	}
	hour, minute, err := config.ParseClock(c.NotificationTime)
	if err != nil {
		hour, minute = 12, 0
	}
	return fmt.Sprintf("%d %d * * *", minute, hour)
}

// Location resolves Timezone, falling back to UTC.
func (c *WorkerConfig) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// Validate checks if the configuration values are valid.
// If multiple fields are invalid, all errors are collected and returned together.
//
// Returns:
//   - error: nil if configuration is valid, aggregated error if any validation fails
func (c *WorkerConfig) Validate() error {
	var errs []error

	if c.CronSchedule != "" {
		if err := config.ValidateCronSchedule(c.CronSchedule); err != nil {
			errs = append(errs, fmt.Errorf("cron schedule: %w", err))
		}
	} else if err := config.ValidateClock(c.NotificationTime); err != nil {
		errs = append(errs, fmt.Errorf("notification time: %w", err))
	}

	if err := config.ValidateTimezone(c.Timezone); err != nil {
		errs = append(errs, fmt.Errorf("timezone: %w", err))
	}

	if err := config.ValidateIntRange(c.NotifyMaxConcurrent, 1, 10); err != nil {
		errs = append(errs, fmt.Errorf("notify max concurrent: %w", err))
	}

	if err := config.ValidatePositiveDuration(c.JobTimeout); err != nil {
		errs = append(errs, fmt.Errorf("job timeout: %w", err))
	}

	if err := config.ValidateIntRange(c.HealthPort, 1024, 65535); err != nil {
		errs = append(errs, fmt.Errorf("health port: %w", err))
	}

	if err := config.ValidateIntRange(c.MetricsPort, 1024, 65535); err != nil {
		errs = append(errs, fmt.Errorf("metrics port: %w", err))
	} else if c.MetricsPort == c.HealthPort {
		errs = append(errs, fmt.Errorf("metrics port: must not equal health port %d", c.HealthPort))
	}

	if len(errs) > 0 {
		return fmt.Errorf("validation failed: %v", errs)
	}
	return nil
}

// LoadConfigFromEnv loads worker configuration from environment variables
// with validation and automatic fallback to default values on failure.
//
// Environment variables:
//   - NOTIFICATION_TIME: "HH:MM" (default: "12:00")
//   - CRON_SCHEDULE: Cron expression, overrides NOTIFICATION_TIME (default: unset)
//   - TIMEZONE: IANA timezone name (default: "Asia/Seoul")
//   - NOTIFY_MAX_CONCURRENT: Integer 1-10 (default: 3)
//   - JOB_TIMEOUT: Duration string, e.g., "2m" (default: 2 minutes)
//   - WORKER_HEALTH_PORT: Integer 1024-65535 (default: 9091)
//   - METRICS_PORT: Integer 1024-65535 (default: 9090)
//
// An invalid CRON_SCHEDULE is dropped, so NOTIFICATION_TIME applies instead.
//
// Each field fails open on its own, so the result is never nil. Cross-field
// rules (distinct ports) are left to Validate.
func LoadConfigFromEnv(logger *slog.Logger, metrics *WorkerMetrics) *WorkerConfig {
	cfg := DefaultConfig()

	var cm *config.ConfigMetrics
	if metrics != nil {
		cm = metrics.ConfigMetrics
	}

	cfg.NotificationTime = cm.Track(logger, "notification_time",
		config.LoadEnvWithFallback("NOTIFICATION_TIME", cfg.NotificationTime, config.ValidateClock)).(string)

	cfg.CronSchedule = cm.Track(logger, "cron_schedule",
		config.LoadEnvWithFallback("CRON_SCHEDULE", "", func(s string) error {
			if s == "" {
				return nil
			}
			return config.ValidateCronSchedule(s)
		})).(string)

	cfg.Timezone = cm.Track(logger, "timezone",
		config.LoadEnvWithFallback("TIMEZONE", cfg.Timezone, config.ValidateTimezone)).(string)

	cfg.NotifyMaxConcurrent = cm.Track(logger, "notify_max_concurrent",
		config.LoadEnvInt("NOTIFY_MAX_CONCURRENT", cfg.NotifyMaxConcurrent, func(v int) error {
			return config.ValidateIntRange(v, 1, 10)
		})).(int)

	cfg.JobTimeout = cm.Track(logger, "job_timeout",
		config.LoadEnvDuration("JOB_TIMEOUT", cfg.JobTimeout, func(d time.Duration) error {
			return config.ValidateDuration(d, 10*time.Second, 30*time.Minute)
		})).(time.Duration)

	cfg.HealthPort = cm.Track(logger, "health_port",
		config.LoadEnvInt("WORKER_HEALTH_PORT", cfg.HealthPort, func(v int) error {
			return config.ValidateIntRange(v, 1024, 65535)
		})).(int)

	cfg.MetricsPort = cm.Track(logger, "metrics_port",
		config.LoadEnvInt("METRICS_PORT", cfg.MetricsPort, func(v int) error {
			return config.ValidateIntRange(v, 1024, 65535)
		})).(int)

	if cm != nil {
		cm.RecordLoadTimestamp()
	}

	return &cfg
}
