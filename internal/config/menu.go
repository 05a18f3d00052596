// Package config assembles the application configuration from the environment.
package config

import (
	"fmt"
	"log/slog"
	"time"

	"ajou-menu/internal/domain/entity"
	"ajou-menu/internal/infra/scraper"
	pkgconfig "ajou-menu/internal/pkg/config"
	"ajou-menu/internal/usecase/menu"
)

// MenuConfig holds the settings of the menu acquisition pipeline.
type MenuConfig struct {
	// BaseURL is the dining page endpoint (MENU_BASE_URL).
	BaseURL string

	// UserAgent is sent to the dining site (MENU_USER_AGENT).
	UserAgent string

	// FetchTimeout bounds one HTTP request (FETCH_TIMEOUT, default 10s).
	FetchTimeout time.Duration

	// SourceTimeout bounds one source pipeline (SOURCE_TIMEOUT, default 15s).
	SourceTimeout time.Duration

	// Timezone decides what "today" means (TIMEZONE, default Asia/Seoul).
	Timezone string
	Location *time.Location

	// RulesFile optionally adds boilerplate rules (BOILERPLATE_RULES_FILE).
	RulesFile string
}

// LoadMenuConfig reads the pipeline settings. Invalid values fall back to
// their defaults with a logged warning; only an unreadable or invalid rules
// file is an error, since silently ignoring it would leak boilerplate.
//
// metrics may be nil.
func LoadMenuConfig(logger *slog.Logger, metrics *pkgconfig.ConfigMetrics) (*MenuConfig, error) {
	cfg := &MenuConfig{
		BaseURL: metrics.Track(logger, "menu_base_url",
			pkgconfig.LoadEnvWithFallback("MENU_BASE_URL", scraper.DefaultBaseURL, entity.ValidateEndpointURL)).(string),
		UserAgent: pkgconfig.LoadEnvString("MENU_USER_AGENT", ""),
		FetchTimeout: metrics.Track(logger, "fetch_timeout",
			pkgconfig.LoadEnvDuration("FETCH_TIMEOUT", 10*time.Second, func(d time.Duration) error {
				return pkgconfig.ValidateDuration(d, time.Second, 2*time.Minute)
			})).(time.Duration),
		SourceTimeout: metrics.Track(logger, "source_timeout",
			pkgconfig.LoadEnvDuration("SOURCE_TIMEOUT", 15*time.Second, func(d time.Duration) error {
				return pkgconfig.ValidateDuration(d, time.Second, 5*time.Minute)
			})).(time.Duration),
		Timezone: metrics.Track(logger, "timezone",
			pkgconfig.LoadEnvWithFallback("TIMEZONE", "Asia/Seoul", pkgconfig.ValidateTimezone)).(string),
		RulesFile: pkgconfig.LoadEnvString("BOILERPLATE_RULES_FILE", ""),
	}

	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		// The validator already loaded this zone once; this only fails when
		// the default itself is missing from the system tz database.
		logger.Warn("timezone database unavailable, using UTC", slog.Any("error", err))
		loc = time.UTC
	}
	cfg.Location = loc

	if _, err := cfg.Rules(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Rules returns the built-in boilerplate rules followed by those of RulesFile.
func (c *MenuConfig) Rules() ([]menu.Rule, error) {
	rules := menu.DefaultRules()
	if c.RulesFile == "" {
		return rules, nil
	}

	extra, err := LoadRulesFile(c.RulesFile)
	if err != nil {
		return nil, fmt.Errorf("load boilerplate rules: %w", err)
	}
	return append(rules, extra...), nil
}

// NewMenuService wires the scraping pipeline and normalizer described by c.
func (c *MenuConfig) NewMenuService() (*menu.Service, error) {
	rules, err := c.Rules()
	if err != nil {
		return nil, err
	}
	normalizer, err := menu.NewNormalizer(rules)
	if err != nil {
		return nil, fmt.Errorf("compile boilerplate rules: %w", err)
	}

	fetcher, parser := scraper.NewMenuPipeline(
		scraper.NewHTTPClient(c.FetchTimeout),
		scraper.FetcherConfig{BaseURL: c.BaseURL, UserAgent: c.UserAgent},
	)
	return menu.NewService(fetcher, parser, normalizer, c.SourceTimeout), nil
}

// Today returns the current date in the configured timezone.
func (c *MenuConfig) Today() time.Time {
	return entity.Today(time.Now(), c.Location)
}

// ParseDate parses a YYYY-MM-DD value in the configured timezone.
// An empty value means today.
func (c *MenuConfig) ParseDate(value string) (time.Time, error) {
	if value == "" {
		return c.Today(), nil
	}
	return entity.ParseMenuDate(value, c.Location)
}
