package worker

import (
	"context"
	"log/slog"
	"net/http"
	"sync/atomic"
	"time"

	"ajou-menu/internal/handler/http/respond"
)

// SchedulerStatus is the part of Scheduler the health server reports on.
type SchedulerStatus interface {
	IsRunning() bool
	NextRun() time.Time
}

// HealthServer answers the worker's liveness and readiness probes.
//
// GET /health always returns 200. GET /health/ready returns 200 only after
// SetReady(true) and while the scheduler runs, since a stopped scheduler
// delivers nothing.
type HealthServer struct {
	addr      string
	logger    *slog.Logger
	scheduler SchedulerStatus
	ready     atomic.Bool
}

type healthResponse struct {
	Status           string     `json:"status"`
	SchedulerRunning bool       `json:"scheduler_running"`
	NextRun          *time.Time `json:"next_run,omitempty"`
}

func NewHealthServer(addr string, logger *slog.Logger, scheduler SchedulerStatus) *HealthServer {
	return &HealthServer{addr: addr, logger: logger, scheduler: scheduler}
}

func (h *HealthServer) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		respond.JSON(w, http.StatusOK, h.snapshot("ok"))
	})
	mux.HandleFunc("GET /health/ready", func(w http.ResponseWriter, r *http.Request) {
		if h.ready.Load() && h.running() {
			respond.JSON(w, http.StatusOK, h.snapshot("ok"))
			return
		}
		respond.JSON(w, http.StatusServiceUnavailable, h.snapshot("not ready"))
	})
	return mux
}

// Start serves the probes until ctx is cancelled and then shuts down within
// five seconds. A clean shutdown returns http.ErrServerClosed.
func (h *HealthServer) Start(ctx context.Context) error {
	srv := &http.Server{
		Addr:              h.addr,
		Handler:           h.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      5 * time.Second,
		IdleTimeout:       time.Minute,
	}

	errCh := make(chan error, 1)
	go func() {
		h.logger.Info("health server listening", slog.String("addr", h.addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	h.logger.Info("health server stopped")
	return http.ErrServerClosed
}

// SetReady flips the readiness probe.
func (h *HealthServer) SetReady(ready bool) {
	if h.ready.Swap(ready) != ready {
		h.logger.Info("worker readiness changed", slog.Bool("ready", ready))
	}
}

func (h *HealthServer) running() bool {
	return h.scheduler != nil && h.scheduler.IsRunning()
}

func (h *HealthServer) snapshot(status string) healthResponse {
	resp := healthResponse{Status: status, SchedulerRunning: h.running()}
	if resp.SchedulerRunning {
		if next := h.scheduler.NextRun(); !next.IsZero() {
			resp.NextRun = &next
		}
	}
	return resp
}
