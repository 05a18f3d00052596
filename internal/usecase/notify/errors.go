package notify

import "errors"

// Sentinel errors for notify use case operations.
var (
	// ErrChannelDisabled indicates that Send() was called on a disabled channel.
	ErrChannelDisabled = errors.New("channel is disabled")

	// ErrInvalidMenu indicates that Send() or Dispatch() got a nil menu.
	ErrInvalidMenu = errors.New("invalid menu")

	// ErrCircuitBreakerOpen indicates that the channel failed too many times in
	// a row and is cooling down. The channel is retried once the cool-down ends.
	ErrCircuitBreakerOpen = errors.New("circuit breaker is open for this channel")

	// ErrChannelPanic indicates that a channel panicked while sending.
	ErrChannelPanic = errors.New("channel panicked")
)
