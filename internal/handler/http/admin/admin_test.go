package admin_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"ajou-menu/internal/domain/entity"
	"ajou-menu/internal/handler/http/admin"
	"ajou-menu/internal/usecase/notify"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var today = time.Date(2025, 9, 16, 0, 0, 0, 0, time.UTC)

/* ───────── stubs ───────── */

type stubBuilder struct {
	mu    sync.Mutex
	dates []time.Time
}

func (s *stubBuilder) BuildDailyMenu(_ context.Context, date time.Time) *entity.DailyMenu {
	s.mu.Lock()
	s.dates = append(s.dates, date)
	s.mu.Unlock()
	return entity.NewDailyMenu(date, map[entity.MenuSource]*entity.MenuReport{
		entity.DormitoryCafeteria: entity.NewReport(entity.DormitoryCafeteria, date, []entity.MenuEntry{
			{Text: "김치찌개", Category: entity.Lunch},
		}),
	})
}

type stubNotifier struct {
	results  []notify.DeliveryResult
	health   []notify.ChannelHealthStatus
	dispatch int
}

func (s *stubNotifier) Dispatch(_ context.Context, _ *entity.DailyMenu) []notify.DeliveryResult {
	s.dispatch++
	return append([]notify.DeliveryResult(nil), s.results...)
}

func (s *stubNotifier) ChannelHealth() []notify.ChannelHealthStatus { return s.health }

type stubDates struct{}

func (stubDates) ParseDate(value string) (time.Time, error) {
	if value == "" {
		return today, nil
	}
	return entity.ParseMenuDate(value, time.UTC)
}

type stubScheduler struct {
	running bool
	stopCtx context.Context
}

func (s *stubScheduler) Start() bool {
	if s.running {
		return false
	}
	s.running = true
	return true
}

func (s *stubScheduler) Stop(ctx context.Context) bool {
	s.stopCtx = ctx
	if !s.running {
		return false
	}
	s.running = false
	return true
}

func (s *stubScheduler) IsRunning() bool { return s.running }

func (s *stubScheduler) NextRun() time.Time {
	if !s.running {
		return time.Time{}
	}
	return today.Add(12 * time.Hour)
}

func enabledHealth(names ...string) []notify.ChannelHealthStatus {
	out := make([]notify.ChannelHealthStatus, 0, len(names))
	for _, n := range names {
		out = append(out, notify.ChannelHealthStatus{Name: n, Enabled: true})
	}
	return out
}

func newMux(deps admin.Deps) *http.ServeMux {
	mux := http.NewServeMux()
	admin.Register(mux, deps, func(h http.Handler) http.Handler { return h })
	return mux
}

func post(t *testing.T, mux http.Handler, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(http.MethodPost, path, nil)
	} else {
		req = httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	}
	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, req)
	return rr
}

/* ───────── POST /send-menu ───────── */

func TestSendMenuHandler(t *testing.T) {
	t.Run("empty body sends today's menu", func(t *testing.T) {
		b := &stubBuilder{}
		n := &stubNotifier{
			health:  enabledHealth(notify.ChannelKakao),
			results: []notify.DeliveryResult{{Channel: notify.ChannelKakao, Status: notify.DeliverySent}},
		}
		rr := post(t, newMux(admin.Deps{Builder: b, Notifier: n, Dates: stubDates{}}), "/send-menu", "")

		require.Equal(t, http.StatusOK, rr.Code)
		var resp admin.SendMenuResponse
		require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
		assert.True(t, resp.Success)
		assert.Equal(t, "2025-09-16", resp.Date)
		assert.Contains(t, resp.Menu, "김치찌개")
		require.Len(t, resp.Results, 1)
		assert.Equal(t, notify.DeliverySent, resp.Results[0].Status)
		assert.Equal(t, 1, n.dispatch)
	})

	t.Run("explicit date", func(t *testing.T) {
		b := &stubBuilder{}
		n := &stubNotifier{
			health:  enabledHealth(notify.ChannelSlack),
			results: []notify.DeliveryResult{{Channel: notify.ChannelSlack, Status: notify.DeliverySent}},
		}
		rr := post(t, newMux(admin.Deps{Builder: b, Notifier: n, Dates: stubDates{}}), "/send-menu", `{"date":"2025-09-15"}`)

		require.Equal(t, http.StatusOK, rr.Code)
		require.Len(t, b.dates, 1)
		assert.Equal(t, "2025-09-15", b.dates[0].Format(entity.DateLayout))
	})

	t.Run("partial failure is 502 with sanitized errors", func(t *testing.T) {
		n := &stubNotifier{
			health: enabledHealth(notify.ChannelKakao, notify.ChannelSlack),
			results: []notify.DeliveryResult{
				{Channel: notify.ChannelKakao, Status: notify.DeliverySent},
				{
					Channel: notify.ChannelSlack,
					Status:  notify.DeliveryFailed,
					Error:   `Post "https://hooks.slack.com/services/T1/B2/secret": timeout`,
				},
			},
		}
		rr := post(t, newMux(admin.Deps{Builder: &stubBuilder{}, Notifier: n, Dates: stubDates{}}), "/send-menu", "")

		require.Equal(t, http.StatusBadGateway, rr.Code)
		var resp admin.SendMenuResponse
		require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
		assert.False(t, resp.Success)
		assert.Contains(t, resp.Error, "1 of 2 channels")
		require.Len(t, resp.Results, 2)
		assert.Equal(t, notify.DeliveryFailed, resp.Results[1].Status)
		assert.NotContains(t, rr.Body.String(), "secret")
		assert.Contains(t, resp.Results[1].Error, "hooks.slack.com/services/****")
	})

	t.Run("no enabled channel is 503", func(t *testing.T) {
		b := &stubBuilder{}
		n := &stubNotifier{health: []notify.ChannelHealthStatus{{Name: notify.ChannelKakao, Enabled: false}}}
		rr := post(t, newMux(admin.Deps{Builder: b, Notifier: n, Dates: stubDates{}}), "/send-menu", "")

		assert.Equal(t, http.StatusServiceUnavailable, rr.Code)
		assert.Contains(t, rr.Body.String(), "no delivery channels are enabled")
		assert.Empty(t, b.dates)
		assert.Zero(t, n.dispatch)
	})

	t.Run("bad input is 400", func(t *testing.T) {
		for _, body := range []string{`{"date":"2025-02-30"}`, `{"date":`, `[1,2]`} {
			b := &stubBuilder{}
			n := &stubNotifier{health: enabledHealth(notify.ChannelKakao)}
			rr := post(t, newMux(admin.Deps{Builder: b, Notifier: n, Dates: stubDates{}}), "/send-menu", body)

			assert.Equal(t, http.StatusBadRequest, rr.Code, body)
			assert.Contains(t, rr.Body.String(), "invalid", body)
			assert.Empty(t, b.dates, body)
		}
	})
}

/* ───────── POST /schedule/{start,stop} ───────── */

func TestScheduleHandlers(t *testing.T) {
	s := &stubScheduler{}
	mux := newMux(admin.Deps{Scheduler: s})

	rr := post(t, mux, "/schedule/start", "")
	require.Equal(t, http.StatusOK, rr.Code)
	var resp admin.ScheduleResponse
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
	assert.True(t, resp.Success)
	assert.True(t, resp.Running)
	require.NotNil(t, resp.NextRun)
	assert.True(t, resp.NextRun.Equal(today.Add(12*time.Hour)))

	rr = post(t, mux, "/schedule/start", "")
	assert.Equal(t, http.StatusConflict, rr.Code)
	assert.Contains(t, rr.Body.String(), "already running")

	rr = post(t, mux, "/schedule/stop", "")
	require.Equal(t, http.StatusOK, rr.Code)
	resp = admin.ScheduleResponse{}
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
	assert.True(t, resp.Success)
	assert.False(t, resp.Running)
	assert.Nil(t, resp.NextRun)
	require.NotNil(t, s.stopCtx)
	_, hasDeadline := s.stopCtx.Deadline()
	assert.True(t, hasDeadline)

	rr = post(t, mux, "/schedule/stop", "")
	assert.Equal(t, http.StatusConflict, rr.Code)
	assert.Contains(t, rr.Body.String(), "not running")
}

func TestScheduleHandlers_NoScheduler(t *testing.T) {
	mux := newMux(admin.Deps{})

	for _, path := range []string{"/schedule/start", "/schedule/stop"} {
		rr := post(t, mux, path, "")
		assert.Equal(t, http.StatusServiceUnavailable, rr.Code, path)
		assert.Contains(t, rr.Body.String(), "not configured", path)
	}
}

func TestRegister_AppliesGuard(t *testing.T) {
	mux := http.NewServeMux()
	denied := errors.New("denied")
	admin.Register(mux, admin.Deps{Scheduler: &stubScheduler{}}, func(http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			http.Error(w, denied.Error(), http.StatusUnauthorized)
		})
	})

	for _, path := range []string{"/send-menu", "/schedule/start", "/schedule/stop"} {
		rr := post(t, mux, path, "")
		assert.Equal(t, http.StatusUnauthorized, rr.Code, path)
	}
}
