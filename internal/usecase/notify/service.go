package notify

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime/debug"
	"sync"
	"time"

	"ajou-menu/internal/domain/entity"
	"ajou-menu/internal/handler/http/requestid"
	"ajou-menu/internal/infra/notifier"
	"ajou-menu/internal/resilience/circuitbreaker"

	"github.com/sony/gobreaker"
	"golang.org/x/sync/errgroup"
)

const (
	circuitBreakerThreshold = 5                // consecutive failures that pause a channel, see circuitbreaker.DeliveryChannelConfig
	circuitBreakerTimeout   = 5 * time.Minute  // how long a paused channel is skipped
	notificationTimeout     = 30 * time.Second // timeout for one channel's delivery

	// DefaultMaxConcurrent bounds parallel deliveries when the caller passes zero.
	DefaultMaxConcurrent = 4
)

// DeliveryStatus is the outcome of one channel's delivery.
type DeliveryStatus string

const (
	DeliverySent    DeliveryStatus = "sent"
	DeliveryFailed  DeliveryStatus = "failed"
	DeliverySkipped DeliveryStatus = "skipped" // circuit breaker open
)

// DeliveryResult reports what happened on one channel.
type DeliveryResult struct {
	Channel  string         `json:"channel"`
	Status   DeliveryStatus `json:"status"`
	Error    string         `json:"error,omitempty"`
	Duration time.Duration  `json:"-"`
	Err      error          `json:"-"`
}

// Service dispatches menus to delivery channels.
type Service interface {
	// Dispatch sends the menu to every enabled channel and waits for all of
	// them. Channels run concurrently up to the configured bound; one
	// channel's failure never prevents delivery on another.
	//
	// Parameters:
	//   - ctx: Context for cancellation; each channel also gets its own timeout
	//   - menu: The menu to deliver (must not be nil)
	//
	// Returns:
	//   - []DeliveryResult: One result per enabled channel, in channel order
	Dispatch(ctx context.Context, menu *entity.DailyMenu) []DeliveryResult

	// ChannelHealth returns the breaker state of every channel.
	ChannelHealth() []ChannelHealthStatus
}

// ChannelHealthStatus represents the health status of a delivery channel.
type ChannelHealthStatus struct {
	Name                string     `json:"name"`
	Enabled             bool       `json:"enabled"`
	ConsecutiveFailures int        `json:"consecutive_failures"` // current streak; reset when the breaker opens or closes
	CircuitBreakerOpen  bool       `json:"circuit_breaker_open"`
	DisabledUntil       *time.Time `json:"disabled_until,omitempty"`
}

// service is the concrete implementation of Service interface.
type service struct {
	channels      []Channel
	maxConcurrent int
	breakers      map[string]*channelBreaker // fixed after construction
}

// channelBreaker pauses one channel after repeated failures.
type channelBreaker struct {
	cb      *circuitbreaker.CircuitBreaker
	timeout time.Duration

	mu       sync.Mutex
	openedAt time.Time
}

func newChannelBreaker(name string, timeout time.Duration) *channelBreaker {
	b := &channelBreaker{timeout: timeout}
	cfg := circuitbreaker.DeliveryChannelConfig(name, timeout)
	cfg.OnStateChange = func(_ string, _, to gobreaker.State) {
		channelBreakerState.WithLabelValues(name).Set(float64(to))
		if to != gobreaker.StateOpen {
			return
		}
		channelBreakerOpened.WithLabelValues(name).Inc()
		b.mu.Lock()
		b.openedAt = time.Now()
		b.mu.Unlock()
	}
	b.cb = circuitbreaker.New(cfg)
	return b
}

// disabledUntil returns the end of the current pause, or the zero time
// while the channel is accepting deliveries.
func (b *channelBreaker) disabledUntil() time.Time {
	if !b.cb.IsOpen() {
		return time.Time{}
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.openedAt.Add(b.timeout)
}

// NewService creates a new notification service with the given channels.
//
// Parameters:
//   - channels: Delivery channels, usually from ChannelsFromConfig
//   - maxConcurrent: Maximum parallel deliveries (zero or less uses DefaultMaxConcurrent)
func NewService(channels []Channel, maxConcurrent int) Service {
	return newService(channels, maxConcurrent, circuitBreakerTimeout)
}

func newService(channels []Channel, maxConcurrent int, breakerTimeout time.Duration) *service {
	if maxConcurrent <= 0 {
		maxConcurrent = DefaultMaxConcurrent
	}

	svc := &service{
		channels:      channels,
		maxConcurrent: maxConcurrent,
		breakers:      make(map[string]*channelBreaker, len(channels)),
	}
	for _, ch := range channels {
		svc.breakers[ch.Name()] = newChannelBreaker(ch.Name(), breakerTimeout)
	}
	return svc
}

// Dispatch implements Service.Dispatch.
func (s *service) Dispatch(ctx context.Context, menu *entity.DailyMenu) []DeliveryResult {
	if menu == nil {
		slog.Warn("Invalid notification input", slog.Bool("nil_menu", true))
		return nil
	}

	ctx, requestID := requestid.Ensure(ctx)

	var enabled []Channel
	for _, ch := range s.channels {
		if ch.IsEnabled() {
			enabled = append(enabled, ch)
		}
	}
	channelsEnabled.Set(float64(len(enabled)))

	if len(enabled) == 0 {
		slog.Info("No notification channels enabled",
			slog.String("request_id", requestID),
			slog.String("date", menu.DateString()))
		return []DeliveryResult{}
	}

	slog.Info("Dispatching daily menu",
		slog.String("request_id", requestID),
		slog.String("date", menu.DateString()),
		slog.Int("enabled_channels", len(enabled)))

	results := make([]DeliveryResult, len(enabled))

	var g errgroup.Group
	g.SetLimit(s.maxConcurrent)
	for i, ch := range enabled {
		g.Go(func() error {
			results[i] = s.deliver(ctx, requestID, ch, menu)
			return nil
		})
	}
	_ = g.Wait()

	return results
}

// deliver sends to a single channel through its breaker.
func (s *service) deliver(ctx context.Context, requestID string, channel Channel, menu *entity.DailyMenu) (result DeliveryResult) {
	name := channel.Name()
	result = DeliveryResult{Channel: name}

	deliveriesInFlight.Inc()
	defer deliveriesInFlight.Dec()

	ctx, cancel := context.WithTimeout(ctx, notificationTimeout)
	defer cancel()

	breaker := s.breakers[name]
	start := time.Now()
	_, err := circuitbreaker.Run(breaker.cb, func() (struct{}, error) {
		return struct{}{}, s.send(ctx, channel, menu)
	})
	result.Duration = time.Since(start)

	switch {
	case circuitbreaker.IsRejected(err):
		slog.Warn("Channel temporarily disabled due to circuit breaker",
			slog.String("request_id", requestID),
			slog.String("channel", name),
			slog.Time("disabled_until", breaker.disabledUntil()))
		observeDelivery(name, DeliverySkipped, 0)
		result.Status = DeliverySkipped
		result.Duration = 0
		result.Err = ErrCircuitBreakerOpen
		result.Error = ErrCircuitBreakerOpen.Error()

	case err != nil:
		observeDelivery(name, DeliveryFailed, result.Duration)
		var rl *notifier.RateLimitError
		if errors.As(err, &rl) {
			deliveryRateLimited.WithLabelValues(name).Inc()
		}
		slog.Warn("Channel notification failed",
			slog.String("request_id", requestID),
			slog.String("channel", name),
			slog.String("date", menu.DateString()),
			slog.Duration("send_duration", result.Duration),
			slog.Any("error", err))
		result.Status = DeliveryFailed
		result.Err = err
		result.Error = err.Error()

	default:
		observeDelivery(name, DeliverySent, result.Duration)
		slog.Info("Channel notification sent successfully",
			slog.String("request_id", requestID),
			slog.String("channel", name),
			slog.String("date", menu.DateString()),
			slog.Duration("send_duration", result.Duration))
		result.Status = DeliverySent
	}
	return result
}

// send calls the channel and converts a panic into an error.
func (s *service) send(ctx context.Context, channel Channel, menu *entity.DailyMenu) (err error) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("Panic in notification channel",
				slog.String("channel", channel.Name()),
				slog.Any("panic", r),
				slog.String("stack", string(debug.Stack())))
			err = fmt.Errorf("%w: %v", ErrChannelPanic, r)
		}
	}()
	return channel.Send(ctx, menu)
}

// ChannelHealth implements Service.ChannelHealth.
func (s *service) ChannelHealth() []ChannelHealthStatus {
	statuses := make([]ChannelHealthStatus, 0, len(s.channels))

	for _, ch := range s.channels {
		breaker := s.breakers[ch.Name()]
		status := ChannelHealthStatus{
			Name:                ch.Name(),
			Enabled:             ch.IsEnabled(),
			ConsecutiveFailures: int(breaker.cb.Counts().ConsecutiveFailures),
		}
		if until := breaker.disabledUntil(); !until.IsZero() {
			status.CircuitBreakerOpen = true
			status.DisabledUntil = &until
		}
		statuses = append(statuses, status)
	}

	return statuses
}

// EnabledCount returns how many of channels are enabled.
func EnabledCount(channels []ChannelHealthStatus) int {
	n := 0
	for _, ch := range channels {
		if ch.Enabled {
			n++
		}
	}
	return n
}
