// Package resilience provides fault tolerance patterns for calls to
// external services.
//
// The circuitbreaker subpackage wraps github.com/sony/gobreaker. The notify
// use case keeps one breaker per delivery channel, so a chat service that
// keeps failing is paused instead of being called on every run. Menu page
// fetches do not go through a breaker: each fetch is a single request.
//
// Usage Example:
//
//	cb := circuitbreaker.New(circuitbreaker.DeliveryChannelConfig("slack", 5*time.Minute))
//	_, err := circuitbreaker.Run(cb, func() (struct{}, error) {
//	    return struct{}{}, channel.Send(ctx, menu)
//	})
package resilience
