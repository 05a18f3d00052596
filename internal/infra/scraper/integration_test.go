package scraper_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ajou-menu/internal/domain/entity"
	"ajou-menu/internal/infra/scraper"
	"ajou-menu/internal/usecase/menu"
)

// diningSite serves fixtures by article number the way the campus site does.
func diningSite(t *testing.T, pages map[string]http.HandlerFunc) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("mode") != "view" || r.URL.Query().Get("date") == "" {
			http.Error(w, "bad request", http.StatusBadRequest)
			return
		}
		h, ok := pages[r.URL.Query().Get("articleNo")]
		if !ok {
			http.NotFound(w, r)
			return
		}
		h(w, r)
	}))
	t.Cleanup(server.Close)
	return server
}

func servePage(html string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte(html))
	}
}

func newMenuService(serverURL string, timeout time.Duration) *menu.Service {
	fetcher, parser := scraper.NewMenuPipeline(scraper.NewHTTPClient(5*time.Second), scraper.FetcherConfig{BaseURL: serverURL})
	return menu.NewService(fetcher, parser, nil, timeout)
}

func TestIntegration_BuildDailyMenu(t *testing.T) {
	server := diningSite(t, map[string]http.HandlerFunc{
		"63":     servePage(loadFixture(t, "dormitory.html")),
		"221904": servePage(loadFixture(t, "staff.html")),
	})

	daily := newMenuService(server.URL, 2*time.Second).BuildDailyMenu(context.Background(), fetchDate)

	require.Len(t, daily.Reports(), 2)
	assert.Equal(t, entity.StatusOK, daily.Report(entity.DormitoryCafeteria).Status)
	assert.Equal(t, entity.StatusOK, daily.Report(entity.StaffCafeteria).Status)

	text := daily.RenderedText()
	assert.True(t, strings.HasPrefix(text, "아주대 식당 메뉴 (2025-09-10)\n\n기숙사식당\n"))
	assert.Contains(t, text, "점심\n[한식]\n• 흑미밥\n")
	assert.Contains(t, text, "교직원식당\n────────────────────\n점심\n[A코너]\n• 순두부찌개\n• 고등어구이\n[B코너]\n• 치즈돈까스\n\n저녁\n메뉴 없음\n")
	assert.NotContains(t, text, "운영")
	assert.NotContains(t, text, "원>")
	assert.True(t, strings.HasSuffix(text, "맛있게 드세요!"))
}

func TestIntegration_StaffTimeoutLeavesDormitoryOk(t *testing.T) {
	server := diningSite(t, map[string]http.HandlerFunc{
		"63": servePage(loadFixture(t, "dormitory.html")),
		"221904": func(w http.ResponseWriter, r *http.Request) {
			select {
			case <-time.After(2 * time.Second):
			case <-r.Context().Done():
			}
		},
	})

	start := time.Now()
	daily := newMenuService(server.URL, 100*time.Millisecond).BuildDailyMenu(context.Background(), fetchDate)

	assert.Less(t, time.Since(start), time.Second)
	assert.Equal(t, entity.StatusUnreachable, daily.Report(entity.StaffCafeteria).Status)
	assert.Equal(t, entity.StatusOK, daily.Report(entity.DormitoryCafeteria).Status)
	assert.Contains(t, daily.RenderedText(), entity.PlaceholderUnreachable)
}

func TestIntegration_RedesignedAndHolidayPages(t *testing.T) {
	server := diningSite(t, map[string]http.HandlerFunc{
		"63":     servePage(loadFixture(t, "redesigned.html")),
		"221904": servePage(loadFixture(t, "holiday.html")),
	})

	daily := newMenuService(server.URL, 2*time.Second).BuildDailyMenu(context.Background(), fetchDate)

	assert.Equal(t, entity.StatusUnparseable, daily.Report(entity.DormitoryCafeteria).Status)
	assert.Equal(t, entity.StatusEmpty, daily.Report(entity.StaffCafeteria).Status)
	assert.Equal(t, []entity.MenuSource{entity.DormitoryCafeteria}, daily.Unavailable())
}
