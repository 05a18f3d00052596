// Package worker runs the daily menu delivery on a cron schedule and exposes
// the worker's health and configuration.
package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime/debug"
	"sync"
	"sync/atomic"
	"time"

	"github.com/robfig/cron/v3"
)

var (
	// ErrJobRunning is returned by RunNow while another run is in progress.
	ErrJobRunning = errors.New("job already running")

	// ErrJobPanic wraps a panic raised by the job.
	ErrJobPanic = errors.New("job panicked")
)

// Job is the unit of work the scheduler runs. The context carries the job timeout.
type Job func(ctx context.Context) error

// Scheduler triggers a Job on a cron schedule evaluated in a fixed location.
//
// Runs never overlap: a cron tick that arrives while a run is in progress is
// skipped, and RunNow reports ErrJobRunning. The scheduler can be stopped and
// started again; each Start creates a fresh cron instance.
type Scheduler struct {
	spec     string
	schedule cron.Schedule
	location *time.Location
	timeout  time.Duration
	job      Job
	metrics  *WorkerMetrics
	logger   *slog.Logger
	now      func() time.Time

	mu      sync.Mutex
	cron    *cron.Cron
	running bool

	busy atomic.Bool
}

// NewScheduler validates spec and builds a stopped scheduler.
//
// Parameters:
//   - spec: Five-field cron expression or descriptor ("@daily")
//   - loc: Location the schedule is evaluated in (nil means UTC)
//   - timeout: Upper bound for one run (zero or less disables the bound)
//   - job: Work to perform
//   - metrics: Run metrics (may be nil)
//   - logger: Structured logger
func NewScheduler(spec string, loc *time.Location, timeout time.Duration, job Job, metrics *WorkerMetrics, logger *slog.Logger) (*Scheduler, error) {
	if job == nil {
		return nil, errors.New("scheduler: job is required")
	}
	schedule, err := cron.ParseStandard(spec)
	if err != nil {
		return nil, fmt.Errorf("scheduler: invalid schedule %q: %w", spec, err)
	}
	if loc == nil {
		loc = time.UTC
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Scheduler{
		spec:     spec,
		schedule: schedule,
		location: loc,
		timeout:  timeout,
		job:      job,
		metrics:  metrics,
		logger:   logger,
		now:      time.Now,
	}, nil
}

// Spec returns the cron expression.
func (s *Scheduler) Spec() string {
	return s.spec
}

// Location returns the location the schedule is evaluated in.
func (s *Scheduler) Location() *time.Location {
	return s.location
}

// Start begins triggering the job. It returns false if already running.
func (s *Scheduler) Start() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return false
	}

	c := cron.New(
		cron.WithLocation(s.location),
		cron.WithLogger(cron.PrintfLogger(slog.NewLogLogger(s.logger.Handler(), slog.LevelWarn))),
	)
	c.Schedule(s.schedule, cron.FuncJob(func() {
		_ = s.run(context.Background(), "cron")
	}))
	c.Start()

	s.cron = c
	s.running = true
	if s.metrics != nil {
		s.metrics.SetSchedulerRunning(true)
	}

	s.logger.Info("scheduler started",
		slog.String("schedule", s.spec),
		slog.String("timezone", s.location.String()),
		slog.Time("next_run", s.schedule.Next(s.now().In(s.location))))
	return true
}

// Stop halts future triggers and waits for an in-flight cron run to finish
// or ctx to expire. It returns false if the scheduler was not running.
func (s *Scheduler) Stop(ctx context.Context) bool {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return false
	}
	c := s.cron
	s.cron = nil
	s.running = false
	if s.metrics != nil {
		s.metrics.SetSchedulerRunning(false)
	}
	s.mu.Unlock()

	select {
	case <-c.Stop().Done():
		s.logger.Info("scheduler stopped")
	case <-ctx.Done():
		s.logger.Warn("scheduler stop timed out waiting for running job", slog.Any("error", ctx.Err()))
	}
	return true
}

// IsRunning reports whether the scheduler is started.
func (s *Scheduler) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

// NextRun returns the next trigger time, or the zero time when stopped.
func (s *Scheduler) NextRun() time.Time {
	if !s.IsRunning() {
		return time.Time{}
	}
	return s.schedule.Next(s.now().In(s.location))
}

// RunNow runs the job immediately in the caller's goroutine, whether or not
// the scheduler is started. The job timeout still applies.
func (s *Scheduler) RunNow(ctx context.Context) error {
	return s.run(ctx, "manual")
}

func (s *Scheduler) run(ctx context.Context, trigger string) (err error) {
	if !s.busy.CompareAndSwap(false, true) {
		s.logger.Warn("job skipped: previous run still in progress", slog.String("trigger", trigger))
		s.recordRun(trigger, "skipped")
		return ErrJobRunning
	}
	defer s.busy.Store(false)

	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	start := time.Now()
	s.logger.Info("job started", slog.String("trigger", trigger))

	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("job panicked",
				slog.Any("panic", r),
				slog.String("stack", string(debug.Stack())))
			err = fmt.Errorf("%w: %v", ErrJobPanic, r)
		}

		duration := time.Since(start)
		if s.metrics != nil {
			s.metrics.RecordJobDuration(duration.Seconds())
		}
		if err != nil {
			s.recordRun(trigger, "failure")
			s.logger.Error("job failed",
				slog.String("trigger", trigger),
				slog.Duration("duration", duration),
				slog.Any("error", err))
			return
		}
		s.recordRun(trigger, "success")
		if s.metrics != nil {
			s.metrics.RecordLastSuccess()
		}
		s.logger.Info("job completed",
			slog.String("trigger", trigger),
			slog.Duration("duration", duration))
	}()

	return s.job(ctx)
}

func (s *Scheduler) recordRun(trigger, status string) {
	if s.metrics != nil {
		s.metrics.RecordJobRun(trigger, status)
	}
}
