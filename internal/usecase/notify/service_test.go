package notify

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"ajou-menu/internal/domain/entity"
	"ajou-menu/internal/handler/http/requestid"
	"ajou-menu/internal/infra/notifier"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testMenu() *entity.DailyMenu {
	date := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
	return entity.NewDailyMenu(date, map[entity.MenuSource]*entity.MenuReport{
		entity.DormitoryCafeteria: entity.NewReport(entity.DormitoryCafeteria, date, []entity.MenuEntry{
			{Text: "김치찌개", Category: entity.Lunch},
		}),
		entity.StaffCafeteria: entity.NewReport(entity.StaffCafeteria, date, nil),
	})
}

// mockChannel is a scripted Channel.
type mockChannel struct {
	name    string
	enabled bool
	send    func(ctx context.Context, menu *entity.DailyMenu) error
	calls   atomic.Int32
}

func (m *mockChannel) Name() string    { return m.name }
func (m *mockChannel) IsEnabled() bool { return m.enabled }

func (m *mockChannel) Send(ctx context.Context, menu *entity.DailyMenu) error {
	m.calls.Add(1)
	if m.send == nil {
		return nil
	}
	return m.send(ctx, menu)
}

func failing(err error) func(context.Context, *entity.DailyMenu) error {
	return func(context.Context, *entity.DailyMenu) error { return err }
}

func TestService_Dispatch(t *testing.T) {
	t.Run("sends to every enabled channel", func(t *testing.T) {
		kakao := &mockChannel{name: "kakao", enabled: true}
		slack := &mockChannel{name: "slack", enabled: true}
		discord := &mockChannel{name: "discord", enabled: false}

		results := NewService([]Channel{kakao, slack, discord}, 2).Dispatch(context.Background(), testMenu())

		require.Len(t, results, 2)
		assert.Equal(t, "kakao", results[0].Channel)
		assert.Equal(t, DeliverySent, results[0].Status)
		assert.Equal(t, "slack", results[1].Channel)
		assert.Equal(t, DeliverySent, results[1].Status)
		assert.Equal(t, int32(0), discord.calls.Load())
	})

	t.Run("one failing channel does not block the others", func(t *testing.T) {
		kakao := &mockChannel{name: "kakao", enabled: true, send: failing(&notifier.ClientError{StatusCode: 401, Message: "expired token"})}
		slack := &mockChannel{name: "slack", enabled: true}

		results := NewService([]Channel{kakao, slack}, 2).Dispatch(context.Background(), testMenu())

		require.Len(t, results, 2)
		assert.Equal(t, DeliveryFailed, results[0].Status)
		assert.Equal(t, "expired token", results[0].Error)
		var ce *notifier.ClientError
		assert.True(t, errors.As(results[0].Err, &ce))
		assert.Equal(t, DeliverySent, results[1].Status)
	})

	t.Run("no enabled channels", func(t *testing.T) {
		results := NewService([]Channel{&mockChannel{name: "slack"}}, 1).Dispatch(context.Background(), testMenu())
		assert.Empty(t, results)
		assert.NotNil(t, results)
	})

	t.Run("nil menu is ignored", func(t *testing.T) {
		ch := &mockChannel{name: "slack", enabled: true}
		assert.Nil(t, NewService([]Channel{ch}, 1).Dispatch(context.Background(), nil))
		assert.Equal(t, int32(0), ch.calls.Load())
	})

	t.Run("panicking channel becomes a failure", func(t *testing.T) {
		ch := &mockChannel{name: "slack", enabled: true, send: func(context.Context, *entity.DailyMenu) error {
			panic("boom")
		}}

		results := NewService([]Channel{ch}, 1).Dispatch(context.Background(), testMenu())

		require.Len(t, results, 1)
		assert.Equal(t, DeliveryFailed, results[0].Status)
		assert.ErrorIs(t, results[0].Err, ErrChannelPanic)
	})

	t.Run("concurrency is bounded", func(t *testing.T) {
		var inFlight, peak atomic.Int32
		send := func(context.Context, *entity.DailyMenu) error {
			n := inFlight.Add(1)
			for {
				p := peak.Load()
				if n <= p || peak.CompareAndSwap(p, n) {
					break
				}
			}
			time.Sleep(20 * time.Millisecond)
			inFlight.Add(-1)
			return nil
		}
		var channels []Channel
		for _, name := range []string{"a", "b", "c", "d", "e"} {
			channels = append(channels, &mockChannel{name: name, enabled: true, send: send})
		}

		results := NewService(channels, 2).Dispatch(context.Background(), testMenu())

		assert.Len(t, results, 5)
		assert.LessOrEqual(t, peak.Load(), int32(2))
	})

	t.Run("channels run in parallel", func(t *testing.T) {
		var wg sync.WaitGroup
		wg.Add(2)
		rendezvous := func(ctx context.Context, _ *entity.DailyMenu) error {
			wg.Done()
			done := make(chan struct{})
			go func() { wg.Wait(); close(done) }()
			select {
			case <-done:
				return nil
			case <-time.After(2 * time.Second):
				return errors.New("channels were serialized")
			}
		}
		a := &mockChannel{name: "a", enabled: true, send: rendezvous}
		b := &mockChannel{name: "b", enabled: true, send: rendezvous}

		results := NewService([]Channel{a, b}, 2).Dispatch(context.Background(), testMenu())

		for _, r := range results {
			assert.Equal(t, DeliverySent, r.Status, r.Error)
		}
	})

	t.Run("request id is propagated to channels", func(t *testing.T) {
		var got string
		ch := &mockChannel{name: "slack", enabled: true, send: func(ctx context.Context, _ *entity.DailyMenu) error {
			got = requestid.FromContext(ctx)
			return nil
		}}
		ctx := requestid.WithRequestID(context.Background(), "req-123")

		NewService([]Channel{ch}, 1).Dispatch(ctx, testMenu())

		assert.Equal(t, "req-123", got)
	})

	t.Run("each channel gets a deadline", func(t *testing.T) {
		var hasDeadline bool
		ch := &mockChannel{name: "slack", enabled: true, send: func(ctx context.Context, _ *entity.DailyMenu) error {
			_, hasDeadline = ctx.Deadline()
			return nil
		}}

		NewService([]Channel{ch}, 1).Dispatch(context.Background(), testMenu())

		assert.True(t, hasDeadline)
	})

	t.Run("rate limit answer is counted", func(t *testing.T) {
		ch := &mockChannel{name: "ratelimited", enabled: true, send: failing(&notifier.RateLimitError{RetryAfter: time.Second})}
		before := testutil.ToFloat64(deliveryRateLimited.WithLabelValues("ratelimited"))

		NewService([]Channel{ch}, 1).Dispatch(context.Background(), testMenu())

		assert.Equal(t, before+1, testutil.ToFloat64(deliveryRateLimited.WithLabelValues("ratelimited")))
	})
}

func TestService_CircuitBreaker(t *testing.T) {
	const coolDown = 100 * time.Millisecond
	var fail atomic.Bool
	fail.Store(true)
	ch := &mockChannel{name: "breaker-test", enabled: true, send: func(context.Context, *entity.DailyMenu) error {
		if fail.Load() {
			return &notifier.ServerError{StatusCode: 502, Message: "bad gateway"}
		}
		return nil
	}}
	svc := newService([]Channel{ch}, 1, coolDown)
	ctx := context.Background()

	for i := 0; i < circuitBreakerThreshold-1; i++ {
		results := svc.Dispatch(ctx, testMenu())
		require.Equal(t, DeliveryFailed, results[0].Status)
	}
	assert.Equal(t, circuitBreakerThreshold-1, svc.ChannelHealth()[0].ConsecutiveFailures)

	openedAfter := time.Now()
	results := svc.Dispatch(ctx, testMenu())
	require.Equal(t, DeliveryFailed, results[0].Status)
	assert.Equal(t, int32(circuitBreakerThreshold), ch.calls.Load())

	health := svc.ChannelHealth()
	require.Len(t, health, 1)
	assert.True(t, health[0].CircuitBreakerOpen)
	require.NotNil(t, health[0].DisabledUntil)
	assert.WithinDuration(t, openedAfter.Add(coolDown), *health[0].DisabledUntil, 50*time.Millisecond)

	// Open: skipped without calling the channel.
	results = svc.Dispatch(ctx, testMenu())
	assert.Equal(t, DeliverySkipped, results[0].Status)
	assert.ErrorIs(t, results[0].Err, ErrCircuitBreakerOpen)
	assert.Equal(t, int32(circuitBreakerThreshold), ch.calls.Load())

	// Cool-down over and a failure reopens immediately.
	time.Sleep(coolDown + 50*time.Millisecond)
	results = svc.Dispatch(ctx, testMenu())
	assert.Equal(t, DeliveryFailed, results[0].Status)
	assert.True(t, svc.ChannelHealth()[0].CircuitBreakerOpen)

	// Cool-down over and a success closes it.
	time.Sleep(coolDown + 50*time.Millisecond)
	fail.Store(false)
	results = svc.Dispatch(ctx, testMenu())
	assert.Equal(t, DeliverySent, results[0].Status)

	health = svc.ChannelHealth()
	assert.False(t, health[0].CircuitBreakerOpen)
	assert.Nil(t, health[0].DisabledUntil)
	assert.Zero(t, health[0].ConsecutiveFailures)
}

func TestService_CanceledDeliveriesDoNotPauseChannel(t *testing.T) {
	ch := &mockChannel{name: "canceled", enabled: true, send: func(ctx context.Context, _ *entity.DailyMenu) error {
		return ctx.Err()
	}}
	svc := newService([]Channel{ch}, 1, time.Minute)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	for i := 0; i < circuitBreakerThreshold*2; i++ {
		results := svc.Dispatch(ctx, testMenu())
		require.Equal(t, DeliveryFailed, results[0].Status)
	}

	assert.False(t, svc.ChannelHealth()[0].CircuitBreakerOpen)
	assert.Equal(t, int32(circuitBreakerThreshold*2), ch.calls.Load())
}

func TestService_SuccessResetsFailureCount(t *testing.T) {
	var calls atomic.Int32
	ch := &mockChannel{name: "flaky", enabled: true, send: func(context.Context, *entity.DailyMenu) error {
		if calls.Add(1)%4 == 0 {
			return nil
		}
		return errors.New("flaky")
	}}
	svc := NewService([]Channel{ch}, 1)

	for i := 0; i < 12; i++ {
		svc.Dispatch(context.Background(), testMenu())
	}

	assert.Equal(t, int32(12), ch.calls.Load())
	assert.False(t, svc.ChannelHealth()[0].CircuitBreakerOpen)
}

func TestService_ChannelHealth_ListsDisabledChannels(t *testing.T) {
	svc := NewService([]Channel{
		&mockChannel{name: "kakao", enabled: false},
		&mockChannel{name: "slack", enabled: true},
	}, 0)

	health := svc.ChannelHealth()

	require.Len(t, health, 2)
	assert.Equal(t, ChannelHealthStatus{Name: "kakao"}, health[0])
	assert.Equal(t, ChannelHealthStatus{Name: "slack", Enabled: true}, health[1])
	assert.Equal(t, 1, EnabledCount(health))
	assert.Zero(t, EnabledCount(nil))
}

func TestDispatch_Metrics(t *testing.T) {
	ok := &mockChannel{name: "metrics-ok", enabled: true}
	bad := &mockChannel{name: "metrics-bad", enabled: true, send: failing(errors.New("boom"))}
	svc := newService([]Channel{ok, bad}, 2, time.Minute)

	sent := testutil.ToFloat64(deliveriesTotal.WithLabelValues("metrics-ok", "sent"))
	failed := testutil.ToFloat64(deliveriesTotal.WithLabelValues("metrics-bad", "failed"))
	skipped := testutil.ToFloat64(deliveriesTotal.WithLabelValues("metrics-bad", "skipped"))

	for i := 0; i < circuitBreakerThreshold+1; i++ {
		svc.Dispatch(context.Background(), testMenu())
	}

	assert.Equal(t, sent+float64(circuitBreakerThreshold+1), testutil.ToFloat64(deliveriesTotal.WithLabelValues("metrics-ok", "sent")))
	assert.Equal(t, failed+float64(circuitBreakerThreshold), testutil.ToFloat64(deliveriesTotal.WithLabelValues("metrics-bad", "failed")))
	assert.Equal(t, skipped+1, testutil.ToFloat64(deliveriesTotal.WithLabelValues("metrics-bad", "skipped")))
	assert.Equal(t, float64(2), testutil.ToFloat64(channelBreakerState.WithLabelValues("metrics-bad")))
	assert.Equal(t, float64(1), testutil.ToFloat64(channelBreakerOpened.WithLabelValues("metrics-bad")))
	assert.Equal(t, float64(2), testutil.ToFloat64(channelsEnabled))
	assert.Zero(t, testutil.ToFloat64(deliveriesInFlight))
}

// stubBuilder returns testMenu and records the requested date.
type stubBuilder struct {
	dates []time.Time
}

func (b *stubBuilder) BuildDailyMenu(ctx context.Context, date time.Time) *entity.DailyMenu {
	b.dates = append(b.dates, date)
	return testMenu()
}

func TestSendDailyMenu(t *testing.T) {
	date := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)

	t.Run("all delivered", func(t *testing.T) {
		builder := &stubBuilder{}
		svc := NewService([]Channel{&mockChannel{name: "slack", enabled: true}}, 1)

		menu, results, err := SendDailyMenu(context.Background(), builder, svc, date)

		require.NoError(t, err)
		assert.Equal(t, "2025-03-10", menu.DateString())
		assert.Len(t, results, 1)
		assert.Equal(t, []time.Time{date}, builder.dates)
	})

	t.Run("partial failure is reported", func(t *testing.T) {
		svc := NewService([]Channel{
			&mockChannel{name: "slack", enabled: true},
			&mockChannel{name: "kakao", enabled: true, send: failing(errors.New("down"))},
		}, 2)

		menu, results, err := SendDailyMenu(context.Background(), &stubBuilder{}, svc, date)

		assert.ErrorIs(t, err, ErrDeliveryFailed)
		assert.Contains(t, err.Error(), "1 of 2 channels")
		assert.NotNil(t, menu)
		assert.Len(t, results, 2)
	})

	t.Run("no channels is not a failure", func(t *testing.T) {
		_, results, err := SendDailyMenu(context.Background(), &stubBuilder{}, NewService(nil, 1), date)
		assert.NoError(t, err)
		assert.Empty(t, results)
	})
}

func TestDailyJob_UsesToday(t *testing.T) {
	builder := &stubBuilder{}
	date := time.Date(2025, 3, 11, 0, 0, 0, 0, time.UTC)
	job := DailyJob(builder, NewService(nil, 1), func() time.Time { return date })

	require.NoError(t, job(context.Background()))
	assert.Equal(t, []time.Time{date}, builder.dates)
}
