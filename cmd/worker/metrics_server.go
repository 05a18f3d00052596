package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"ajou-menu/internal/handler/http/respond"
	"ajou-menu/internal/usecase/notify"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// ChannelHealthResponse represents the health status of all notification channels.
type ChannelHealthResponse struct {
	Healthy  bool                         `json:"healthy"`
	Channels []notify.ChannelHealthStatus `json:"channels"`
}

// startMetricsServer starts the Prometheus metrics HTTP server on port.
// It runs in a separate goroutine and shuts down when ctx is cancelled.
//
// Endpoints:
//   - GET /metrics: Prometheus metrics
//   - GET /health/channels: per-channel delivery state, 503 while any
//     enabled channel is cooling down after repeated failures
func startMetricsServer(ctx context.Context, logger *slog.Logger, port int, notifyService notify.Service) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("GET /metrics", promhttp.Handler())
	mux.Handle("GET /health/channels", channelHealthHandler(notifyService))

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", port),
		Handler:      mux,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		logger.Info("metrics server starting", slog.Int("port", port))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("metrics server error", slog.Any("error", err))
		}
	}()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("metrics server shutdown error", slog.Any("error", err))
		} else {
			logger.Info("metrics server stopped")
		}
	}()

	return server
}

// channelHealthHandler reports channel state. It answers 503 if any enabled
// channel is in its failure cool-down.
func channelHealthHandler(notifyService notify.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		channels := notifyService.ChannelHealth()

		healthy := true
		for _, ch := range channels {
			if ch.Enabled && ch.CircuitBreakerOpen {
				healthy = false
			}
		}

		status := http.StatusOK
		if !healthy {
			status = http.StatusServiceUnavailable
		}
		respond.JSON(w, status, ChannelHealthResponse{Healthy: healthy, Channels: channels})
	}
}
