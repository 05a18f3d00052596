// Package circuitbreaker short-circuits calls to a dependency that keeps
// failing. It is a thin layer over github.com/sony/gobreaker.
package circuitbreaker

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/sony/gobreaker"
)

// Config describes when a breaker trips and how it recovers.
type Config struct {
	// Name identifies the breaker in logs and metrics.
	Name string

	// MaxRequests is the number of probe calls let through while half-open.
	MaxRequests uint32

	// Interval clears the closed-state counts periodically (0 never clears).
	Interval time.Duration

	// Timeout is how long the breaker stays open before probing.
	Timeout time.Duration

	// MinRequests is the number of calls in the current interval before the
	// failure ratio is considered.
	MinRequests uint32

	// FailureThreshold is the failure ratio (0..1) that trips the breaker.
	FailureThreshold float64

	// ConsecutiveFailures, when non-zero, trips the breaker after that many
	// failures in a row instead of using the failure ratio.
	ConsecutiveFailures uint32

	// IsSuccessful decides whether an error counts against the breaker.
	// nil counts every non-nil error as a failure.
	IsSuccessful func(err error) bool

	// OnStateChange, if set, is called after every transition in addition
	// to the warning log.
	OnStateChange func(name string, from, to gobreaker.State)
}

// DeliveryChannelConfig returns the breaker settings for one delivery
// channel: five failures in a row pause the channel for timeout, then a
// single delivery is let through. A cancelled delivery is not a failure.
func DeliveryChannelConfig(channel string, timeout time.Duration) Config {
	return Config{
		Name:                "delivery-" + channel,
		MaxRequests:         1,
		Timeout:             timeout,
		ConsecutiveFailures: 5,
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, context.Canceled)
		},
	}
}

// CircuitBreaker guards calls to one dependency.
type CircuitBreaker struct {
	cb *gobreaker.CircuitBreaker
}

// New builds a breaker from cfg.
func New(cfg Config) *CircuitBreaker {
	return &CircuitBreaker{cb: gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        cfg.Name,
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(c gobreaker.Counts) bool {
			if cfg.ConsecutiveFailures > 0 {
				return c.ConsecutiveFailures >= cfg.ConsecutiveFailures
			}
			return c.Requests >= cfg.MinRequests &&
				float64(c.TotalFailures) >= cfg.FailureThreshold*float64(c.Requests)
		},
		IsSuccessful: cfg.IsSuccessful,
		OnStateChange: func(name string, from, to gobreaker.State) {
			slog.Warn("circuit breaker state changed",
				slog.String("circuit", name),
				slog.String("from", from.String()),
				slog.String("to", to.String()))
			if cfg.OnStateChange != nil {
				cfg.OnStateChange(name, from, to)
			}
		},
	})}
}

// Run calls fn through cb. While the breaker is open fn is not called and
// the returned error satisfies IsRejected.
func Run[T any](cb *CircuitBreaker, fn func() (T, error)) (T, error) {
	var zero T
	out, err := cb.cb.Execute(func() (interface{}, error) {
		return fn()
	})
	if err != nil {
		return zero, err
	}
	v, _ := out.(T)
	return v, nil
}

// Name returns the breaker name.
func (b *CircuitBreaker) Name() string { return b.cb.Name() }

// State returns the current state.
func (b *CircuitBreaker) State() gobreaker.State { return b.cb.State() }

// Counts returns the counters of the current generation. They are reset on
// every state change.
func (b *CircuitBreaker) Counts() gobreaker.Counts { return b.cb.Counts() }

// IsOpen reports whether calls are currently being rejected.
func (b *CircuitBreaker) IsOpen() bool { return b.cb.State() == gobreaker.StateOpen }

// IsRejected reports whether err came from the breaker itself (open circuit
// or half-open request limit) rather than from the guarded call.
func IsRejected(err error) bool {
	return errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests)
}
