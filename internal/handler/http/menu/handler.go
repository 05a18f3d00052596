// Package menu serves the daily menu over HTTP as JSON and as an HTML page.
package menu

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"ajou-menu/internal/domain/entity"
	"ajou-menu/internal/handler/http/respond"
	"ajou-menu/internal/observability/logging"
)

// Builder produces the aggregated menu for a date.
type Builder interface {
	BuildDailyMenu(ctx context.Context, date time.Time) *entity.DailyMenu
}

// DateParser turns the date query parameter into a calendar date.
// An empty value means today.
type DateParser interface {
	ParseDate(value string) (time.Time, error)
}

// Response is the JSON form of a DailyMenu.
type Response struct {
	Date        string               `json:"date"`
	Menu        string               `json:"menu"`
	Reports     []*entity.MenuReport `json:"reports"`
	Unavailable []entity.MenuSource  `json:"unavailable,omitempty"`
}

// NewResponse converts m for JSON output.
func NewResponse(m *entity.DailyMenu) Response {
	return Response{
		Date:        m.DateString(),
		Menu:        m.RenderedText(),
		Reports:     m.Reports(),
		Unavailable: m.Unavailable(),
	}
}

// GetHandler serves GET /menu?date=YYYY-MM-DD.
type GetHandler struct {
	Svc   Builder
	Dates DateParser
}

// ServeHTTP implements http.Handler.
//
// A malformed date is a 400. Source failures are not errors here: the menu
// is still returned, with placeholders in the text and the failing sources
// listed under "unavailable".
func (h GetHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	date, err := h.Dates.ParseDate(r.URL.Query().Get("date"))
	if err != nil {
		respond.SafeError(w, http.StatusBadRequest, err)
		return
	}

	m := h.Svc.BuildDailyMenu(r.Context(), date)
	if len(m.Unavailable()) > 0 {
		logging.FromContext(r.Context()).Warn("menu served with unavailable sources",
			slog.String("date", m.DateString()),
			slog.Any("unavailable", m.Unavailable()))
	}
	respond.JSON(w, http.StatusOK, NewResponse(m))
}

// Register registers the menu routes on mux.
func Register(mux *http.ServeMux, svc Builder, dates DateParser) {
	mux.Handle("GET /menu", GetHandler{Svc: svc, Dates: dates})
	mux.Handle("GET /menu-web", PageHandler{Svc: svc, Dates: dates})
}
