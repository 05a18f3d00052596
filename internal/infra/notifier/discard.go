package notifier

import (
	"context"

	"ajou-menu/internal/domain/entity"
)

// Discard accepts every menu and sends nothing. Disabled channels hold one
// so the delivery service never calls through a nil Notifier.
type Discard struct{}

func (Discard) Notify(context.Context, *entity.DailyMenu) error { return nil }
