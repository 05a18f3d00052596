// Package admin serves the operator endpoints: manual menu delivery and
// scheduler control. Every route must be wrapped in admin authentication.
package admin

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"ajou-menu/internal/domain/entity"
	"ajou-menu/internal/handler/http/respond"
	"ajou-menu/internal/observability/logging"
	"ajou-menu/internal/usecase/notify"
)

// DateParser turns the optional date of a request into a calendar date.
// An empty value means today.
type DateParser interface {
	ParseDate(value string) (time.Time, error)
}

// SendMenuRequest is the optional body of POST /send-menu.
type SendMenuRequest struct {
	Date string `json:"date"`
}

// SendMenuResponse reports a manual delivery.
type SendMenuResponse struct {
	Success bool                    `json:"success"`
	Date    string                  `json:"date,omitempty"`
	Menu    string                  `json:"menu,omitempty"`
	Results []notify.DeliveryResult `json:"results"`
	Error   string                  `json:"error,omitempty"`
}

var errNoChannels = errors.New("no delivery channels are enabled")

// SendMenuHandler serves POST /send-menu: it builds the menu for the
// requested date (today by default) and dispatches it to every enabled
// channel, waiting for the outcome.
//
// Status codes:
//   - 200: every enabled channel received the menu
//   - 400: malformed body or date
//   - 502: at least one channel failed or was skipped
//   - 503: no channel is enabled; nothing was built or sent
type SendMenuHandler struct {
	Builder  notify.MenuBuilder
	Notifier notify.Service
	Dates    DateParser
}

// ServeHTTP implements http.Handler.
func (h SendMenuHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	logger := logging.FromContext(r.Context())

	var req SendMenuRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		respond.SafeError(w, http.StatusBadRequest, fmt.Errorf("invalid request body: %w", err))
		return
	}

	date, err := h.Dates.ParseDate(req.Date)
	if err != nil {
		respond.SafeError(w, http.StatusBadRequest, err)
		return
	}

	if notify.EnabledCount(h.Notifier.ChannelHealth()) == 0 {
		respond.JSON(w, http.StatusServiceUnavailable, SendMenuResponse{
			Results: []notify.DeliveryResult{},
			Error:   errNoChannels.Error(),
		})
		return
	}

	logger.Info("manual menu send requested", slog.String("date", date.Format(entity.DateLayout)))

	m, results, err := notify.SendDailyMenu(r.Context(), h.Builder, h.Notifier, date)
	for i := range results {
		results[i].Error = respond.SanitizeMessage(results[i].Error)
	}

	resp := SendMenuResponse{
		Success: err == nil,
		Date:    m.DateString(),
		Menu:    m.RenderedText(),
		Results: results,
	}
	if err != nil {
		logger.Warn("manual menu send failed", slog.String("error", respond.SanitizeError(err)))
		resp.Error = err.Error()
		respond.JSON(w, http.StatusBadGateway, resp)
		return
	}

	logger.Info("manual menu send completed", slog.Int("channels", len(results)))
	respond.JSON(w, http.StatusOK, resp)
}
