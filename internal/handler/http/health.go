// Package http provides the HTTP front end of the menu service: health and
// metrics endpoints, admin authentication and the middleware chain. Menu
// and admin routes live in the menu and admin subpackages.
package http

import (
	"log/slog"
	"net/http"
	"time"

	"ajou-menu/internal/handler/http/respond"
	"ajou-menu/internal/usecase/notify"
)

// SchedulerStatus is the read-only view of the delivery scheduler.
type SchedulerStatus interface {
	IsRunning() bool
	NextRun() time.Time
}

// ChannelHealthReporter exposes per-channel delivery state.
type ChannelHealthReporter interface {
	ChannelHealth() []notify.ChannelHealthStatus
}

// HealthResponse represents the JSON response for the health endpoint.
type HealthResponse struct {
	Status           string                       `json:"status"`    // "healthy" or "degraded"
	Timestamp        string                       `json:"timestamp"` // RFC 3339
	Version          string                       `json:"version,omitempty"`
	SchedulerRunning bool                         `json:"scheduler_running"`
	NextRun          *time.Time                   `json:"next_run,omitempty"`
	Channels         []notify.ChannelHealthStatus `json:"channels,omitempty"`
}

// HealthHandler reports whether the service is up, whether the daily
// delivery is scheduled, and the state of each delivery channel.
//
// The endpoint always answers 200 while the process serves requests. A
// channel whose failure breaker is open turns the status to "degraded" but
// does not fail the check, since menu lookups still work.
type HealthHandler struct {
	Version   string
	Scheduler SchedulerStatus       // nil when this process runs no scheduler
	Channels  ChannelHealthReporter // optional
	Now       func() time.Time      // for tests; defaults to time.Now
}

// ServeHTTP implements http.Handler.
func (h *HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	now := time.Now
	if h.Now != nil {
		now = h.Now
	}

	resp := HealthResponse{
		Status:    "healthy",
		Timestamp: now().UTC().Format(time.RFC3339),
		Version:   h.Version,
	}

	if h.Scheduler != nil && h.Scheduler.IsRunning() {
		resp.SchedulerRunning = true
		if next := h.Scheduler.NextRun(); !next.IsZero() {
			resp.NextRun = &next
		}
	}

	if h.Channels != nil {
		resp.Channels = h.Channels.ChannelHealth()
		for _, ch := range resp.Channels {
			if ch.Enabled && ch.CircuitBreakerOpen {
				resp.Status = "degraded"
			}
		}
	}

	if resp.Status != "healthy" {
		slog.Default().Warn("health check degraded", slog.Any("channels", resp.Channels))
	}

	w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")
	respond.JSON(w, http.StatusOK, resp)
}

// LiveHandler handles liveness probe requests.
// It performs a lightweight check to verify the application is responsive.
type LiveHandler struct{}

// ServeHTTP always returns 200 OK while the process can respond.
func (h *LiveHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("alive"))
}
