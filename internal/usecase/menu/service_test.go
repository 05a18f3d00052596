package menu

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ajou-menu/internal/domain/entity"
)

var menuDate = time.Date(2025, 9, 10, 0, 0, 0, 0, time.UTC)

/* ───────── test doubles ───────── */

type fetchFunc func(ctx context.Context) (string, error)

type stubFetcher struct {
	bySource map[entity.MenuSource]fetchFunc
}

func (f *stubFetcher) Fetch(ctx context.Context, src entity.MenuSource, _ time.Time) (string, error) {
	fn, ok := f.bySource[src]
	if !ok {
		return "", fmt.Errorf("%w: no stub for %s", ErrUnreachable, src)
	}
	return fn(ctx)
}

func page(html string) fetchFunc {
	return func(context.Context) (string, error) { return html, nil }
}

// lineParser treats every line of the page as a lunch entry.
// "<broken>" reports a missing structure and "<panic>" panics.
type lineParser struct{}

func (lineParser) Parse(_ entity.MenuSource, html string) ([]entity.MenuEntry, error) {
	switch html {
	case "<broken>":
		return nil, fmt.Errorf("%w: marker .b-menu-day not found", ErrUnparseable)
	case "<panic>":
		panic("unexpected node")
	case "":
		return []entity.MenuEntry{}, nil
	}
	var out []entity.MenuEntry
	for _, line := range strings.Split(html, "\n") {
		out = append(out, entity.MenuEntry{Text: line, Category: entity.Lunch})
	}
	return out, nil
}

func newTestService(fetchers map[entity.MenuSource]fetchFunc, timeout time.Duration) *Service {
	return NewService(&stubFetcher{bySource: fetchers}, lineParser{}, nil, timeout)
}

/* ───────── BuildDailyMenu ───────── */

func TestBuildDailyMenu_BothOk(t *testing.T) {
	svc := newTestService(map[entity.MenuSource]fetchFunc{
		entity.DormitoryCafeteria: page("김치찌개\n  \n공깃밥\n※ 원산지 표시"),
		entity.StaffCafeteria:     page("돈까스"),
	}, time.Second)

	daily := svc.BuildDailyMenu(context.Background(), menuDate)

	require.Len(t, daily.Reports(), 2)
	dorm := daily.Report(entity.DormitoryCafeteria)
	assert.Equal(t, entity.StatusOK, dorm.Status)
	assert.Equal(t, []string{"김치찌개", "공깃밥"}, texts(dorm.Entries))
	assert.Equal(t, entity.StatusOK, daily.Report(entity.StaffCafeteria).Status)
	assert.Empty(t, daily.Unavailable())
	assert.Contains(t, daily.RenderedText(), "• 김치찌개")
}

func TestBuildDailyMenu_StaffTimeoutIsIsolated(t *testing.T) {
	svc := newTestService(map[entity.MenuSource]fetchFunc{
		entity.DormitoryCafeteria: page("김치찌개\n공깃밥"),
		entity.StaffCafeteria: func(ctx context.Context) (string, error) {
			<-ctx.Done()
			return "", ctx.Err()
		},
	}, 50*time.Millisecond)

	daily := svc.BuildDailyMenu(context.Background(), menuDate)

	staff := daily.Report(entity.StaffCafeteria)
	assert.Equal(t, entity.StatusUnreachable, staff.Status)
	assert.Contains(t, staff.Detail, ErrUnreachable.Error())
	assert.Empty(t, staff.Entries)

	dorm := daily.Report(entity.DormitoryCafeteria)
	assert.Equal(t, entity.StatusOK, dorm.Status)
	assert.Equal(t, []string{"김치찌개", "공깃밥"}, texts(dorm.Entries))

	assert.Equal(t, []entity.MenuSource{entity.StaffCafeteria}, daily.Unavailable())
	assert.Contains(t, daily.RenderedText(), entity.PlaceholderUnreachable)
}

func TestBuildDailyMenu_UnparseableDoesNotAbortOtherSource(t *testing.T) {
	svc := newTestService(map[entity.MenuSource]fetchFunc{
		entity.DormitoryCafeteria: page("<broken>"),
		entity.StaffCafeteria:     page("비빔밥"),
	}, time.Second)

	daily := svc.BuildDailyMenu(context.Background(), menuDate)

	assert.Equal(t, entity.StatusUnparseable, daily.Report(entity.DormitoryCafeteria).Status)
	assert.Equal(t, entity.StatusOK, daily.Report(entity.StaffCafeteria).Status)
	assert.Contains(t, daily.RenderedText(), entity.PlaceholderUnparseable)
}

func TestBuildDailyMenu_HolidayIsEmptyNotUnreachable(t *testing.T) {
	svc := newTestService(map[entity.MenuSource]fetchFunc{
		entity.DormitoryCafeteria: page(""),
		entity.StaffCafeteria:     page("[운영 안내]\n※ 휴무"),
	}, time.Second)

	daily := svc.BuildDailyMenu(context.Background(), menuDate)

	for _, r := range daily.Reports() {
		assert.Equal(t, entity.StatusEmpty, r.Status, r.Source)
		assert.Empty(t, r.Entries)
	}
	assert.Empty(t, daily.Unavailable())
	assert.Equal(t, 2, strings.Count(daily.RenderedText(), entity.PlaceholderEmpty))
}

func TestBuildDailyMenu_BothFailStillReturnsMenu(t *testing.T) {
	down := func(context.Context) (string, error) { return "", errors.New("connection refused") }
	svc := newTestService(map[entity.MenuSource]fetchFunc{
		entity.DormitoryCafeteria: down,
		entity.StaffCafeteria:     down,
	}, time.Second)

	daily := svc.BuildDailyMenu(context.Background(), menuDate)

	require.NotNil(t, daily)
	require.Len(t, daily.Reports(), 2)
	for _, r := range daily.Reports() {
		assert.Equal(t, entity.StatusUnreachable, r.Status)
		assert.Contains(t, r.Detail, "connection refused")
	}
	assert.Equal(t, 2, strings.Count(daily.RenderedText(), entity.PlaceholderUnreachable))
}

func TestBuildDailyMenu_PanicBecomesUnparseable(t *testing.T) {
	svc := newTestService(map[entity.MenuSource]fetchFunc{
		entity.DormitoryCafeteria: page("<panic>"),
		entity.StaffCafeteria:     page("우동"),
	}, time.Second)

	daily := svc.BuildDailyMenu(context.Background(), menuDate)

	dorm := daily.Report(entity.DormitoryCafeteria)
	assert.Equal(t, entity.StatusUnparseable, dorm.Status)
	assert.Contains(t, dorm.Detail, "unexpected node")
	assert.Equal(t, entity.StatusOK, daily.Report(entity.StaffCafeteria).Status)
}

func TestBuildDailyMenu_SourcesRunConcurrently(t *testing.T) {
	// Each fetch waits for the other to start. Run sequentially, the first
	// fetch would hit its timeout before the second one begins.
	var started sync.WaitGroup
	started.Add(2)
	rendezvous := func(ctx context.Context) (string, error) {
		started.Done()
		done := make(chan struct{})
		go func() {
			started.Wait()
			close(done)
		}()
		select {
		case <-done:
			return "국수", nil
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}

	svc := newTestService(map[entity.MenuSource]fetchFunc{
		entity.DormitoryCafeteria: rendezvous,
		entity.StaffCafeteria:     rendezvous,
	}, 2*time.Second)

	daily := svc.BuildDailyMenu(context.Background(), menuDate)

	for _, r := range daily.Reports() {
		assert.Equal(t, entity.StatusOK, r.Status, r.Source)
	}
}

func TestBuildDailyMenu_EveryCallRefetches(t *testing.T) {
	var mu sync.Mutex
	calls := 0
	counting := func(context.Context) (string, error) {
		mu.Lock()
		defer mu.Unlock()
		calls++
		return "라면", nil
	}
	svc := newTestService(map[entity.MenuSource]fetchFunc{
		entity.DormitoryCafeteria: counting,
		entity.StaffCafeteria:     counting,
	}, time.Second)

	svc.BuildDailyMenu(context.Background(), menuDate)
	svc.BuildDailyMenu(context.Background(), menuDate)

	assert.Equal(t, 4, calls)
}

func TestNewService_Defaults(t *testing.T) {
	svc := NewService(&stubFetcher{}, lineParser{}, nil, 0)

	assert.NotNil(t, svc.Normalizer)
	assert.Equal(t, DefaultSourceTimeout, svc.SourceTimeout)
}
