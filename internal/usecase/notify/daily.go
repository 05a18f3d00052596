package notify

import (
	"context"
	"errors"
	"fmt"
	"time"

	"ajou-menu/internal/domain/entity"
)

// ErrDeliveryFailed is returned by SendDailyMenu when at least one enabled
// channel did not receive the menu.
var ErrDeliveryFailed = errors.New("menu delivery failed")

// MenuBuilder produces the aggregated menu for a date.
type MenuBuilder interface {
	BuildDailyMenu(ctx context.Context, date time.Time) *entity.DailyMenu
}

// SendDailyMenu builds the menu for date and dispatches it.
//
// The menu is always returned, even when delivery fails, so callers can show
// what was (or would have been) sent.
//
// Returns:
//   - *entity.DailyMenu: The menu that was dispatched
//   - []DeliveryResult: One result per enabled channel
//   - error: ErrDeliveryFailed wrapped with a count if any channel failed or was skipped
func SendDailyMenu(ctx context.Context, builder MenuBuilder, svc Service, date time.Time) (*entity.DailyMenu, []DeliveryResult, error) {
	menu := builder.BuildDailyMenu(ctx, date)
	results := svc.Dispatch(ctx, menu)

	failed := 0
	for _, r := range results {
		if r.Status != DeliverySent {
			failed++
		}
	}
	if failed > 0 {
		return menu, results, fmt.Errorf("%w: %d of %d channels", ErrDeliveryFailed, failed, len(results))
	}
	return menu, results, nil
}

// DailyJob returns a job that sends today's menu, where today is decided by
// the today function (usually MenuConfig.Today).
func DailyJob(builder MenuBuilder, svc Service, today func() time.Time) func(ctx context.Context) error {
	return func(ctx context.Context) error {
		_, _, err := SendDailyMenu(ctx, builder, svc, today())
		return err
	}
}
