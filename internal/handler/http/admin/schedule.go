package admin

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"ajou-menu/internal/handler/http/respond"
	"ajou-menu/internal/observability/logging"
)

// stopTimeout bounds how long POST /schedule/stop waits for a running job.
const stopTimeout = 10 * time.Second

// Scheduler is the control surface of the delivery scheduler.
type Scheduler interface {
	Start() bool
	Stop(ctx context.Context) bool
	IsRunning() bool
	NextRun() time.Time
}

// ScheduleResponse reports the scheduler state after a control request.
type ScheduleResponse struct {
	Success bool       `json:"success"`
	Message string     `json:"message"`
	Running bool       `json:"running"`
	NextRun *time.Time `json:"next_run,omitempty"`
}

// StartHandler serves POST /schedule/start. Starting a running scheduler
// is a 409.
type StartHandler struct {
	Scheduler Scheduler
}

// ServeHTTP implements http.Handler.
func (h StartHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if h.Scheduler == nil {
		writeUnavailable(w)
		return
	}

	if !h.Scheduler.Start() {
		writeState(w, http.StatusConflict, h.Scheduler, false, "scheduler already running")
		return
	}
	logging.FromContext(r.Context()).Info("scheduler started by admin")
	writeState(w, http.StatusOK, h.Scheduler, true, "scheduler started")
}

// StopHandler serves POST /schedule/stop. Stopping a stopped scheduler is
// a 409. The response waits for an in-flight delivery for up to ten
// seconds; the scheduler is stopped either way.
type StopHandler struct {
	Scheduler Scheduler
}

// ServeHTTP implements http.Handler.
func (h StopHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if h.Scheduler == nil {
		writeUnavailable(w)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), stopTimeout)
	defer cancel()

	if !h.Scheduler.Stop(ctx) {
		writeState(w, http.StatusConflict, h.Scheduler, false, "scheduler not running")
		return
	}
	logging.FromContext(r.Context()).Info("scheduler stopped by admin")
	writeState(w, http.StatusOK, h.Scheduler, true, "scheduler stopped")
}

func writeState(w http.ResponseWriter, code int, s Scheduler, success bool, msg string) {
	resp := ScheduleResponse{
		Success: success,
		Message: msg,
		Running: s.IsRunning(),
	}
	if next := s.NextRun(); !next.IsZero() {
		resp.NextRun = &next
	}
	respond.JSON(w, code, resp)
}

func writeUnavailable(w http.ResponseWriter) {
	slog.Default().Warn("scheduler control requested but no scheduler is configured")
	respond.JSON(w, http.StatusServiceUnavailable, ScheduleResponse{
		Message: "scheduler is not configured in this process",
	})
}
