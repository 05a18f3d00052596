package worker

import (
	"ajou-menu/internal/pkg/config"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// WorkerMetrics provides Prometheus metrics for scheduled menu delivery.
// It embeds the standard ConfigMetrics for configuration monitoring.
//
// Embedded metrics (from ConfigMetrics):
//   - worker_config_load_timestamp
//   - worker_config_validation_errors_total
//   - worker_config_fallbacks_total
//   - worker_config_fallback_active
//
// Worker-specific metrics:
//   - worker_cron_job_runs_total: Job runs by trigger (cron/manual) and status (success/failure/skipped)
//   - worker_cron_job_duration_seconds: Duration histogram of job execution
//   - worker_cron_job_last_success_timestamp: Unix timestamp of last successful run
//   - worker_scheduler_running: 1 while the cron scheduler is started
//
// Metrics are registered with the default registry; create one instance per process.
type WorkerMetrics struct {
	*config.ConfigMetrics

	// CronJobRunsTotal counts job runs.
	// Labels: trigger (cron, manual), status (success, failure, skipped)
	CronJobRunsTotal *prometheus.CounterVec

	// CronJobDurationSeconds measures one build-and-deliver run.
	// Buckets: 1s, 5s, 10s, 30s, 1m, 2m, 5m
	CronJobDurationSeconds prometheus.Histogram

	// CronJobLastSuccessTimestamp records the Unix timestamp of the last successful run.
	CronJobLastSuccessTimestamp prometheus.Gauge

	// SchedulerRunning is 1 while the scheduler is started, 0 otherwise.
	SchedulerRunning prometheus.Gauge
}

// NewWorkerMetrics creates and registers a WorkerMetrics instance.
func NewWorkerMetrics() *WorkerMetrics {
	return &WorkerMetrics{
		ConfigMetrics: config.NewConfigMetrics("worker"),

		CronJobRunsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "worker_cron_job_runs_total",
			Help: "Total number of menu delivery job runs by trigger and status",
		}, []string{"trigger", "status"}),

		CronJobDurationSeconds: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "worker_cron_job_duration_seconds",
			Help:    "Duration of menu delivery job execution in seconds",
			Buckets: []float64{1, 5, 10, 30, 60, 120, 300},
		}),

		CronJobLastSuccessTimestamp: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "worker_cron_job_last_success_timestamp",
			Help: "Unix timestamp of the last successful menu delivery job",
		}),

		SchedulerRunning: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "worker_scheduler_running",
			Help: "1 if the menu delivery scheduler is running, 0 otherwise",
		}),
	}
}

// RecordJobRun increments the job run counter.
//
// Parameters:
//   - trigger: "cron" or "manual"
//   - status: "success", "failure" or "skipped"
func (m *WorkerMetrics) RecordJobRun(trigger, status string) {
	m.CronJobRunsTotal.WithLabelValues(trigger, status).Inc()
}

// RecordJobDuration observes the duration of a job execution in seconds.
func (m *WorkerMetrics) RecordJobDuration(seconds float64) {
	m.CronJobDurationSeconds.Observe(seconds)
}

// RecordLastSuccess records the current time as the last successful job completion.
func (m *WorkerMetrics) RecordLastSuccess() {
	m.CronJobLastSuccessTimestamp.SetToCurrentTime()
}

// SetSchedulerRunning reflects the scheduler state.
func (m *WorkerMetrics) SetSchedulerRunning(running bool) {
	if running {
		m.SchedulerRunning.Set(1)
		return
	}
	m.SchedulerRunning.Set(0)
}
