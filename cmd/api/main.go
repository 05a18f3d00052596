// Command api serves the cafeteria menu over HTTP: the JSON and HTML menu
// views, the admin delivery routes, health checks and Prometheus metrics.
// Unless SCHEDULER_ENABLED=false it also runs the daily delivery schedule.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"ajou-menu/internal/config"
	hhttp "ajou-menu/internal/handler/http"
	"ajou-menu/internal/handler/http/admin"
	"ajou-menu/internal/handler/http/menu"
	"ajou-menu/internal/handler/http/requestid"
	"ajou-menu/internal/infra/notifier"
	"ajou-menu/internal/infra/worker"
	"ajou-menu/internal/observability/logging"
	"ajou-menu/internal/observability/tracing"
	pkgconfig "ajou-menu/internal/pkg/config"
	menuUC "ajou-menu/internal/usecase/menu"
	"ajou-menu/internal/usecase/notify"
)

// routes are the paths used as metric labels; anything else is "other".
var routes = []string{
	"/menu", "/menu-web",
	"/send-menu", "/schedule/start", "/schedule/stop",
	"/health", "/live", "/metrics",
}

// ServerComponents holds the pieces runServer needs to start and stop.
type ServerComponents struct {
	Handler   http.Handler
	Addr      string
	Scheduler *worker.Scheduler // nil when the scheduler runs elsewhere
	Tracing   func(context.Context) error
}

func main() {
	// .env is optional; real environment variables take precedence.
	envErr := godotenv.Load()
	logger := initLogger()
	if envErr == nil {
		logger.Info("loaded environment from .env")
	}

	configMetrics := pkgconfig.NewConfigMetrics("api")
	apiCfg := config.LoadAPIConfig(logger, configMetrics)
	configMetrics.RecordLoadTimestamp()

	components := setupServer(logger, apiCfg, configMetrics)
	runServer(logger, components, apiCfg.Version)
}

func initLogger() *slog.Logger {
	logger := logging.NewLogger()
	slog.SetDefault(logger)
	return logger
}

func setupServer(logger *slog.Logger, apiCfg *config.APIConfig, configMetrics *pkgconfig.ConfigMetrics) *ServerComponents {
	shutdownTracing := tracing.Setup("ajou-menu-api", apiCfg.Version,
		config.LoadTracingEnabled(logger, configMetrics), logger)

	menuCfg, err := config.LoadMenuConfig(logger, configMetrics)
	if err != nil {
		logger.Error("failed to load menu configuration", slog.Any("error", err))
		os.Exit(1)
	}
	menuSvc, err := menuCfg.NewMenuService()
	if err != nil {
		logger.Error("failed to build menu service", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("menu pipeline configured",
		slog.String("base_url", menuCfg.BaseURL),
		slog.String("timezone", menuCfg.Timezone),
		slog.Duration("fetch_timeout", menuCfg.FetchTimeout),
		slog.Duration("source_timeout", menuCfg.SourceTimeout))

	notifyCfg, err := notifier.LoadConfig(logger)
	if err != nil {
		logger.Error("failed to load notifier configuration", slog.Any("error", err))
		os.Exit(1)
	}

	var workerMetrics *worker.WorkerMetrics
	if apiCfg.SchedulerEnabled {
		workerMetrics = worker.NewWorkerMetrics()
	}
	workerCfg := worker.LoadConfigFromEnv(logger, workerMetrics)
	if err := workerCfg.Validate(); err != nil {
		logger.Error("invalid worker configuration", slog.Any("error", err))
		os.Exit(1)
	}

	notifySvc := notify.NewService(notify.ChannelsFromConfig(notifyCfg), workerCfg.NotifyMaxConcurrent)
	logger.Info("notification service initialized",
		slog.Int("enabled_channels", notify.EnabledCount(notifySvc.ChannelHealth())),
		slog.Int("max_concurrent", workerCfg.NotifyMaxConcurrent))

	var scheduler *worker.Scheduler
	if apiCfg.SchedulerEnabled {
		scheduler = newScheduler(logger, workerCfg, workerMetrics, menuSvc, menuCfg, notifySvc)
	} else {
		logger.Info("embedded scheduler disabled")
	}

	mux := setupRoutes(logger, apiCfg, menuSvc, menuCfg, notifySvc, scheduler)

	return &ServerComponents{
		Handler:   applyMiddleware(logger, apiCfg, mux),
		Addr:      fmt.Sprintf(":%d", apiCfg.Port),
		Scheduler: scheduler,
		Tracing:   shutdownTracing,
	}
}

func newScheduler(
	logger *slog.Logger,
	cfg *worker.WorkerConfig,
	metrics *worker.WorkerMetrics,
	menuSvc *menuUC.Service,
	menuCfg *config.MenuConfig,
	notifySvc notify.Service,
) *worker.Scheduler {
	scheduler, err := worker.NewScheduler(cfg.Schedule(), cfg.Location(), cfg.JobTimeout,
		notify.DailyJob(menuSvc, notifySvc, menuCfg.Today), metrics, logger)
	if err != nil {
		logger.Error("failed to create scheduler", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("embedded scheduler configured",
		slog.String("schedule", scheduler.Spec()),
		slog.String("timezone", cfg.Timezone),
		slog.Duration("job_timeout", cfg.JobTimeout))
	return scheduler
}

func setupRoutes(
	logger *slog.Logger,
	apiCfg *config.APIConfig,
	menuSvc *menuUC.Service,
	menuCfg *config.MenuConfig,
	notifySvc notify.Service,
	scheduler *worker.Scheduler,
) *http.ServeMux {
	mux := http.NewServeMux()

	menu.Register(mux, menuSvc, menuCfg)

	deps := admin.Deps{Builder: menuSvc, Notifier: notifySvc, Dates: menuCfg}
	health := &hhttp.HealthHandler{Version: apiCfg.Version, Channels: notifySvc}
	if scheduler != nil {
		deps.Scheduler = scheduler
		health.Scheduler = scheduler
	}

	limiter := hhttp.NewRateLimiter(apiCfg.AdminRateLimit, apiCfg.AdminRateWindow)
	auth := hhttp.AdminAuth(apiCfg.AdminAPIKey, logger)
	admin.Register(mux, deps, func(h http.Handler) http.Handler {
		return limiter.Limit(auth(h))
	})
	logger.Info("admin routes registered",
		slog.Bool("key_configured", apiCfg.AdminAPIKey != ""),
		slog.Int("rate_limit", apiCfg.AdminRateLimit),
		slog.Duration("rate_window", apiCfg.AdminRateWindow))

	mux.Handle("GET /health", health)
	mux.Handle("GET /live", &hhttp.LiveHandler{})
	mux.Handle("GET /metrics", hhttp.MetricsHandler())

	return mux
}

func applyMiddleware(logger *slog.Logger, apiCfg *config.APIConfig, handler http.Handler) http.Handler {
	// Applied innermost first.
	chain := handler
	chain = hhttp.MetricsMiddleware(routes...)(chain)
	chain = hhttp.LimitRequestBody(1 << 20)(chain) // 1MB limit
	chain = hhttp.SecurityHeaders("/menu-web")(chain)
	chain = hhttp.Logging(logger)(chain)
	chain = hhttp.Recover(logger)(chain)
	chain = tracing.Middleware(chain)
	chain = requestid.Middleware(chain)
	chain = hhttp.CORS(apiCfg.AllowedOrigins, logger)(chain)

	return chain
}

func runServer(logger *slog.Logger, components *ServerComponents, version string) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if components.Scheduler != nil {
		components.Scheduler.Start()
	}

	srv := &http.Server{
		Addr:              components.Addr,
		Handler:           components.Handler,
		ReadHeaderTimeout: 10 * time.Second, // Prevent Slowloris attacks
		BaseContext: func(_ net.Listener) context.Context {
			return ctx
		},
	}

	go func() {
		logger.Info("server starting",
			slog.String("addr", components.Addr),
			slog.String("version", version))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server failed", slog.Any("error", err))
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if components.Scheduler != nil {
		components.Scheduler.Stop(shutdownCtx)
	}

	cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown failed", slog.Any("error", err))
	}
	if err := components.Tracing(shutdownCtx); err != nil {
		logger.Error("tracer shutdown failed", slog.Any("error", err))
	}
	logger.Info("server stopped")
}
