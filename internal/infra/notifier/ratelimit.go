package notifier

import (
	"context"
	"fmt"

	"golang.org/x/time/rate"
)

// postLimiter paces the posts of one notifier, so a manual send right after
// the scheduled one stays inside the channel's posting limits.
type postLimiter struct {
	*rate.Limiter
}

func newPostLimiter(perSecond float64, burst int) postLimiter {
	return postLimiter{rate.NewLimiter(rate.Limit(perSecond), burst)}
}

// wait blocks until a post may go out or ctx ends.
func (p postLimiter) wait(ctx context.Context) error {
	if err := p.Wait(ctx); err != nil {
		return fmt.Errorf("waiting for post slot: %w", err)
	}
	return nil
}
