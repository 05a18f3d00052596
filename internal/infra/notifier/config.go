package notifier

import (
	"fmt"
	"log/slog"
	"time"

	"ajou-menu/internal/domain/entity"

	"github.com/caarlos0/env/v11"
)

const (
	defaultTimeout = 10 * time.Second

	// DefaultKakaoAPIBaseURL is the Kakao REST API host.
	DefaultKakaoAPIBaseURL = "https://kapi.kakao.com"

	// DefaultMenuLinkURL is the page attached to Kakao messages.
	DefaultMenuLinkURL = "https://www.ajou.ac.kr/kr/life/food.do"
)

// KakaoConfig contains configuration for the Kakao "send to me" memo API.
// The access token is issued out of band; refreshing it is not handled here.
type KakaoConfig struct {
	Enabled     bool          `env:"KAKAO_ENABLED"`
	AccessToken string        `env:"KAKAO_ACCESS_TOKEN"`
	APIBaseURL  string        `env:"KAKAO_API_BASE_URL" envDefault:"https://kapi.kakao.com"`
	LinkURL     string        `env:"KAKAO_LINK_URL" envDefault:"https://www.ajou.ac.kr/kr/life/food.do"`
	Timeout     time.Duration `env:"KAKAO_TIMEOUT" envDefault:"10s"`
}

// SlackConfig contains configuration for Slack webhook notifications.
type SlackConfig struct {
	// Enabled indicates whether Slack notifications are enabled
	Enabled bool `env:"SLACK_ENABLED"`

	// WebhookURL is the Slack Incoming Webhook URL (includes authentication token)
	WebhookURL string `env:"SLACK_WEBHOOK_URL"`

	// Timeout is the HTTP request timeout for Slack API calls
	Timeout time.Duration `env:"SLACK_TIMEOUT" envDefault:"10s"`
}

// DiscordConfig contains configuration for Discord webhook notifications.
type DiscordConfig struct {
	Enabled    bool          `env:"DISCORD_ENABLED"`
	WebhookURL string        `env:"DISCORD_WEBHOOK_URL"`
	Timeout    time.Duration `env:"DISCORD_TIMEOUT" envDefault:"10s"`
}

// Config groups the settings of every delivery channel.
type Config struct {
	Kakao   KakaoConfig
	Slack   SlackConfig
	Discord DiscordConfig
}

// LoadConfig reads channel settings from the environment.
//
// A channel that is enabled but lacks its credential or has a malformed URL
// is disabled with a warning rather than failing startup. Only values that
// cannot be parsed at all (e.g. SLACK_ENABLED=maybe) produce an error.
//
// Returns:
//   - Config: Channel settings with invalid channels disabled
//   - error: Non-nil if an environment variable has an unparseable value
func LoadConfig(logger *slog.Logger) (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse notifier env: %w", err)
	}

	if cfg.Kakao.Enabled {
		switch {
		case cfg.Kakao.AccessToken == "":
			logger.Warn("Kakao access token is empty, disabling notifications")
			cfg.Kakao.Enabled = false
		case entity.ValidateEndpointURL(cfg.Kakao.APIBaseURL) != nil:
			logger.Warn("Kakao API base URL is invalid, disabling notifications",
				slog.String("url", cfg.Kakao.APIBaseURL))
			cfg.Kakao.Enabled = false
		}
	}
	cfg.Kakao.Timeout = positiveOr(cfg.Kakao.Timeout, defaultTimeout)

	if cfg.Slack.Enabled {
		if err := entity.ValidateEndpointURL(cfg.Slack.WebhookURL); err != nil {
			logger.Warn("Slack webhook URL is invalid, disabling notifications",
				slog.Any("error", err))
			cfg.Slack.Enabled = false
		}
	}
	cfg.Slack.Timeout = positiveOr(cfg.Slack.Timeout, defaultTimeout)

	if cfg.Discord.Enabled {
		if err := entity.ValidateEndpointURL(cfg.Discord.WebhookURL); err != nil {
			logger.Warn("Discord webhook URL is invalid, disabling notifications",
				slog.Any("error", err))
			cfg.Discord.Enabled = false
		}
	}
	cfg.Discord.Timeout = positiveOr(cfg.Discord.Timeout, defaultTimeout)

	return cfg, nil
}

func positiveOr(d, fallback time.Duration) time.Duration {
	if d <= 0 {
		return fallback
	}
	return d
}
