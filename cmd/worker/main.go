// Command worker delivers the daily cafeteria menu on a cron schedule.
// Next to the scheduler it serves health probes and Prometheus metrics.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"ajou-menu/internal/config"
	"ajou-menu/internal/infra/notifier"
	workerPkg "ajou-menu/internal/infra/worker"
	"ajou-menu/internal/observability/logging"
	"ajou-menu/internal/observability/tracing"
	"ajou-menu/internal/usecase/notify"
)

func main() {
	envErr := godotenv.Load()
	logger := initLogger()
	if envErr == nil {
		logger.Info("loaded environment from .env")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	workerMetrics := workerPkg.NewWorkerMetrics()
	workerConfig := workerPkg.LoadConfigFromEnv(logger, workerMetrics)
	if err := workerConfig.Validate(); err != nil {
		logger.Error("invalid worker configuration", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("worker configuration loaded",
		slog.String("schedule", workerConfig.Schedule()),
		slog.String("timezone", workerConfig.Timezone),
		slog.Int("notify_max_concurrent", workerConfig.NotifyMaxConcurrent),
		slog.Duration("job_timeout", workerConfig.JobTimeout),
		slog.Int("health_port", workerConfig.HealthPort),
		slog.Int("metrics_port", workerConfig.MetricsPort))

	shutdownTracing := tracing.Setup("ajou-menu-worker", config.LoadVersion(),
		config.LoadTracingEnabled(logger, workerMetrics.ConfigMetrics), logger)

	menuCfg, err := config.LoadMenuConfig(logger, workerMetrics.ConfigMetrics)
	if err != nil {
		logger.Error("failed to load menu configuration", slog.Any("error", err))
		os.Exit(1)
	}
	menuSvc, err := menuCfg.NewMenuService()
	if err != nil {
		logger.Error("failed to build menu service", slog.Any("error", err))
		os.Exit(1)
	}

	notifyService := setupNotifyService(logger, workerConfig.NotifyMaxConcurrent)

	scheduler, err := workerPkg.NewScheduler(
		workerConfig.Schedule(),
		workerConfig.Location(),
		workerConfig.JobTimeout,
		notify.DailyJob(menuSvc, notifyService, menuCfg.Today),
		workerMetrics,
		logger,
	)
	if err != nil {
		logger.Error("failed to create scheduler", slog.Any("error", err))
		os.Exit(1)
	}

	startMetricsServer(ctx, logger, workerConfig.MetricsPort, notifyService)

	healthAddr := fmt.Sprintf(":%d", workerConfig.HealthPort)
	healthServer := workerPkg.NewHealthServer(healthAddr, logger, scheduler)
	go func() {
		if err := healthServer.Start(ctx); err != nil && err != http.ErrServerClosed {
			logger.Error("health server failed", slog.Any("error", err))
		}
	}()

	runScheduler(ctx, logger, scheduler, healthServer)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := shutdownTracing(shutdownCtx); err != nil {
		logger.Error("tracer shutdown failed", slog.Any("error", err))
	}
}

func initLogger() *slog.Logger {
	logger := logging.NewLogger()
	slog.SetDefault(logger)
	return logger
}

// setupNotifyService builds the delivery service from the channel settings.
// A worker without any enabled channel still starts, so a misconfiguration
// shows up in /health/channels and the logs instead of a crash loop.
func setupNotifyService(logger *slog.Logger, maxConcurrent int) notify.Service {
	notifyConfig, err := notifier.LoadConfig(logger)
	if err != nil {
		logger.Error("failed to load notifier configuration", slog.Any("error", err))
		os.Exit(1)
	}

	channels := notify.ChannelsFromConfig(notifyConfig)
	notifyService := notify.NewService(channels, maxConcurrent)

	for _, ch := range notifyService.ChannelHealth() {
		logger.Info("delivery channel configured",
			slog.String("channel", ch.Name),
			slog.Bool("enabled", ch.Enabled))
	}
	if notify.EnabledCount(notifyService.ChannelHealth()) == 0 {
		logger.Warn("no delivery channel is enabled; scheduled runs will deliver nothing")
	}
	return notifyService
}

// runScheduler starts the cron scheduler and blocks until ctx is cancelled,
// then waits for a running job to finish.
func runScheduler(ctx context.Context, logger *slog.Logger, scheduler *workerPkg.Scheduler, healthServer *workerPkg.HealthServer) {
	scheduler.Start()
	healthServer.SetReady(true)
	logger.Info("worker started",
		slog.String("schedule", scheduler.Spec()),
		slog.String("timezone", scheduler.Location().String()),
		slog.Time("next_run", scheduler.NextRun()))

	<-ctx.Done()
	logger.Info("shutting down worker...")
	healthServer.SetReady(false)

	stopCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if !scheduler.Stop(stopCtx) {
		logger.Warn("scheduler was not running at shutdown")
	}
	logger.Info("worker stopped")
}
