// Package notifier delivers a rendered daily menu to chat services.
//
// Each implementation wraps one transport (Kakao memo API, Slack incoming
// webhook, Discord webhook) behind the Notifier interface so the notify use
// case can fan out without knowing transport details. Implementations make
// exactly one delivery attempt per message and classify failures into
// RateLimitError, ClientError and ServerError.
package notifier

import (
	"context"

	"ajou-menu/internal/domain/entity"
)

// Notifier sends a daily menu to one destination. Notify makes a single
// attempt per message, waits for its post limiter first and returns once ctx
// is done.
type Notifier interface {
	Notify(ctx context.Context, menu *entity.DailyMenu) error
}
