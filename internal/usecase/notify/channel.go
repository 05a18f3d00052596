// Package notify fans a daily menu out to every configured delivery channel.
//
// A Channel adapts one transport from the notifier package. The Service sends
// to all enabled channels concurrently, collects one DeliveryResult per
// channel, and keeps a small consecutive-failure breaker per channel so a
// broken webhook does not get hammered every run.
package notify

import (
	"context"

	"ajou-menu/internal/domain/entity"
	"ajou-menu/internal/infra/notifier"
)

// Channel is one delivery destination.
type Channel interface {
	// Name identifies the channel in logs, metrics and health output.
	Name() string

	// IsEnabled reports whether the channel is configured for delivery.
	IsEnabled() bool

	// Send delivers the menu. Implementations make a single attempt.
	Send(ctx context.Context, menu *entity.DailyMenu) error
}

// Channel names.
const (
	ChannelKakao   = "kakao"
	ChannelSlack   = "slack"
	ChannelDiscord = "discord"
)

// NotifierChannel implements Channel on top of a notifier.Notifier.
//
// If the channel is disabled notifier.Discard is used instead, so the Channel
// contract holds without nil checks.
type NotifierChannel struct {
	name     string
	notifier notifier.Notifier
	enabled  bool
}

// NewNotifierChannel wraps n as a channel called name.
func NewNotifierChannel(name string, n notifier.Notifier, enabled bool) *NotifierChannel {
	if !enabled || n == nil {
		n = notifier.Discard{}
	}
	return &NotifierChannel{name: name, notifier: n, enabled: enabled}
}

// NewKakaoChannel creates the Kakao memo channel.
func NewKakaoChannel(config notifier.KakaoConfig) *NotifierChannel {
	var n notifier.Notifier
	if config.Enabled {
		n = notifier.NewKakaoNotifier(config)
	}
	return NewNotifierChannel(ChannelKakao, n, config.Enabled)
}

// NewSlackChannel creates the Slack webhook channel.
func NewSlackChannel(config notifier.SlackConfig) *NotifierChannel {
	var n notifier.Notifier
	if config.Enabled {
		n = notifier.NewSlackNotifier(config)
	}
	return NewNotifierChannel(ChannelSlack, n, config.Enabled)
}

// NewDiscordChannel creates the Discord webhook channel.
func NewDiscordChannel(config notifier.DiscordConfig) *NotifierChannel {
	var n notifier.Notifier
	if config.Enabled {
		n = notifier.NewDiscordNotifier(config)
	}
	return NewNotifierChannel(ChannelDiscord, n, config.Enabled)
}

// ChannelsFromConfig builds every known channel, enabled or not, in a fixed order.
// Disabled channels are kept so health output lists them.
func ChannelsFromConfig(config notifier.Config) []Channel {
	return []Channel{
		NewKakaoChannel(config.Kakao),
		NewSlackChannel(config.Slack),
		NewDiscordChannel(config.Discord),
	}
}

// Name returns the channel identifier.
func (c *NotifierChannel) Name() string {
	return c.name
}

// IsEnabled returns whether the channel is enabled via configuration.
func (c *NotifierChannel) IsEnabled() bool {
	return c.enabled
}

// Send delegates to the underlying notifier.
//
// Returns:
//   - nil: Menu delivered
//   - ErrChannelDisabled: If called on a disabled channel
//   - ErrInvalidMenu: If menu is nil
//   - Other errors: Transport and API errors from the notifier
func (c *NotifierChannel) Send(ctx context.Context, menu *entity.DailyMenu) error {
	if !c.enabled {
		return ErrChannelDisabled
	}
	if menu == nil {
		return ErrInvalidMenu
	}
	return c.notifier.Notify(ctx, menu)
}
