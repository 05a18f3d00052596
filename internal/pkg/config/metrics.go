package config

import (
	"fmt"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// ConfigMetrics exposes configuration health for one component
// (for example "menu_worker" or "menu_api").
//
// Metrics, each prefixed with the component name:
//   - {component}_config_load_timestamp: Unix time of the last load
//   - {component}_config_validation_errors_total{field}: rejected values
//   - {component}_config_fallbacks_total{field}: defaults applied
//   - {component}_config_fallback_active: 1 while any field runs on a fallback
//
// Metrics are registered with the default registry, so create one instance
// per component per process.
type ConfigMetrics struct {
	LoadTimestamp         prometheus.Gauge
	ValidationErrorsTotal *prometheus.CounterVec
	FallbacksTotal        *prometheus.CounterVec
	FallbackActive        prometheus.Gauge

	componentName string
	active        map[string]bool
}

// NewConfigMetrics creates and registers the metrics for componentName.
func NewConfigMetrics(componentName string) *ConfigMetrics {
	return &ConfigMetrics{
		LoadTimestamp: promauto.NewGauge(prometheus.GaugeOpts{
			Name: fmt.Sprintf("%s_config_load_timestamp", componentName),
			Help: fmt.Sprintf("Unix timestamp of last %s configuration load", componentName),
		}),
		ValidationErrorsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: fmt.Sprintf("%s_config_validation_errors_total", componentName),
			Help: fmt.Sprintf("Total number of %s configuration validation errors", componentName),
		}, []string{"field"}),
		FallbacksTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: fmt.Sprintf("%s_config_fallbacks_total", componentName),
			Help: fmt.Sprintf("Total number of %s configuration fallback operations", componentName),
		}, []string{"field"}),
		FallbackActive: promauto.NewGauge(prometheus.GaugeOpts{
			Name: fmt.Sprintf("%s_config_fallback_active", componentName),
			Help: fmt.Sprintf("1 if any %s configuration fallback is active, 0 otherwise", componentName),
		}),
		componentName: componentName,
		active:        map[string]bool{},
	}
}

// RecordLoadTimestamp sets the load timestamp to now.
func (m *ConfigMetrics) RecordLoadTimestamp() {
	m.LoadTimestamp.SetToCurrentTime()
}

// RecordValidationError counts a rejected value for field.
func (m *ConfigMetrics) RecordValidationError(field string) {
	m.ValidationErrorsTotal.WithLabelValues(field).Inc()
}

// RecordFallback counts a default applied for field.
func (m *ConfigMetrics) RecordFallback(field string) {
	m.FallbacksTotal.WithLabelValues(field).Inc()
}

// SetFallbackActive marks field as running on (or off) a fallback and
// updates the aggregate gauge.
func (m *ConfigMetrics) SetFallbackActive(field string, active bool) {
	if active {
		m.active[field] = true
	} else {
		delete(m.active, field)
	}

	if len(m.active) > 0 {
		m.FallbackActive.Set(1)
	} else {
		m.FallbackActive.Set(0)
	}
}

// Track logs the warnings of result, records them for field, and returns
// result.Value. A nil receiver only logs.
//
// Example:
//
//	clock := m.Track(logger, "notification_time",
//	    LoadEnvWithFallback("NOTIFICATION_TIME", "12:00", ValidateClock)).(string)
func (m *ConfigMetrics) Track(logger *slog.Logger, field string, result ConfigLoadResult) interface{} {
	for _, warning := range result.Warnings {
		logger.Warn("configuration fallback applied",
			slog.String("field", field),
			slog.String("warning", warning))
	}
	if m == nil {
		return result.Value
	}

	if result.FallbackApplied {
		m.RecordValidationError(field)
		m.RecordFallback(field)
	}
	m.SetFallbackActive(field, result.FallbackApplied)
	return result.Value
}
