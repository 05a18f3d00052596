// Package config provides fail-open environment loaders and validators.
//
// Every loader returns a usable value: an unset variable yields the default
// silently, and an unparsable or invalid one yields the default plus a
// warning. Callers log the warnings and record them with ConfigMetrics, so a
// typo in NOTIFICATION_TIME degrades to noon delivery instead of a crash.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// ConfigLoadResult represents the result of loading a configuration value.
//
// Fields:
//   - Value: The loaded configuration value (the default if a fallback was applied)
//   - Warnings: One message per fallback applied
//   - FallbackApplied: True if the default value was used because the input was rejected
//
// Example:
//
//	result := LoadEnvDuration("FETCH_TIMEOUT", 10*time.Second, ValidatePositiveDuration)
//	for _, warning := range result.Warnings {
//	    logger.Warn("configuration fallback", slog.String("warning", warning))
//	}
//	timeout := result.Value.(time.Duration)
type ConfigLoadResult struct {
	Value           interface{}
	Warnings        []string
	FallbackApplied bool
}

// LoadEnvString loads a string value from an environment variable.
// If the variable is unset or empty, defaultValue is returned. No validation is performed.
//
// Example:
//
//	baseURL := LoadEnvString("MENU_BASE_URL", "https://www.ajou.ac.kr/kr/life/food.do")
func LoadEnvString(envKey, defaultValue string) string {
	value := os.Getenv(envKey)
	if value == "" {
		return defaultValue
	}
	return value
}

// LoadEnvWithFallback loads a string value and validates it.
// Validation failure falls back to defaultValue with a warning of the form
//
//	"Invalid {envKey}='{value}': {error}, falling back to default '{default}'"
//
// Example:
//
//	result := LoadEnvWithFallback("NOTIFICATION_TIME", "12:00", ValidateClock)
//	clock := result.Value.(string)
func LoadEnvWithFallback(envKey, defaultValue string, validator func(string) error) ConfigLoadResult {
	return load(envKey, defaultValue,
		func(s string) (string, error) { return s, nil },
		validator,
	)
}

// LoadEnvDuration loads a Go duration string ("30s", "5m", "1h30m").
// Parse or validation failure falls back to defaultValue with a warning.
//
// Example:
//
//	result := LoadEnvDuration("JOB_TIMEOUT", 2*time.Minute, ValidatePositiveDuration)
//	timeout := result.Value.(time.Duration)
func LoadEnvDuration(envKey string, defaultValue time.Duration, validator func(time.Duration) error) ConfigLoadResult {
	return load(envKey, defaultValue, time.ParseDuration, validator)
}

// LoadEnvInt loads a base-10 integer.
// Parse or validation failure falls back to defaultValue with a warning.
//
// Example:
//
//	result := LoadEnvInt("NOTIFY_MAX_CONCURRENT", 3, func(v int) error {
//	    return ValidateIntRange(v, 1, 10)
//	})
func LoadEnvInt(envKey string, defaultValue int, validator func(int) error) ConfigLoadResult {
	return load(envKey, defaultValue, func(s string) (int, error) {
		v, err := strconv.Atoi(strings.TrimSpace(s))
		if err != nil {
			return 0, fmt.Errorf("invalid integer format")
		}
		return v, nil
	}, validator)
}

// LoadEnvBool loads a boolean accepting the forms understood by strconv.ParseBool.
// Anything else falls back to defaultValue with a warning.
func LoadEnvBool(envKey string, defaultValue bool) ConfigLoadResult {
	return load(envKey, defaultValue, func(s string) (bool, error) {
		v, err := strconv.ParseBool(s)
		if err != nil {
			return false, fmt.Errorf("invalid boolean format, expected 'true' or 'false'")
		}
		return v, nil
	}, nil)
}

// load implements the shared read, parse, validate, fall back sequence.
func load[T any](envKey string, defaultValue T, parse func(string) (T, error), validator func(T) error) ConfigLoadResult {
	raw := os.Getenv(envKey)
	if raw == "" {
		return ConfigLoadResult{Value: defaultValue}
	}

	fallback := func(err error) ConfigLoadResult {
		return ConfigLoadResult{
			Value: defaultValue,
			Warnings: []string{fmt.Sprintf(
				"Invalid %s='%s': %v, falling back to default '%v'",
				envKey, raw, err, defaultValue,
			)},
			FallbackApplied: true,
		}
	}

	parsed, err := parse(raw)
	if err != nil {
		return fallback(err)
	}
	if validator != nil {
		if err := validator(parsed); err != nil {
			return fallback(err)
		}
	}
	return ConfigLoadResult{Value: parsed}
}
