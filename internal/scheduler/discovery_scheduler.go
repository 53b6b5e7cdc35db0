package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
)

// Job is one discovery run.
type Job func(ctx context.Context) error

// DiscoveryScheduler runs discovery on a cron schedule inside a long-lived
// process. A tick that fires while the previous run is still going is skipped.
type DiscoveryScheduler struct {
	schedule string
	job      Job
	cron     *cron.Cron
	logger   *slog.Logger

	mu      sync.Mutex
	lastRun RunStatus
}

// RunStatus describes the most recent run.
type RunStatus struct {
	StartedAt  time.Time `json:"started_at,omitempty"`
	FinishedAt time.Time `json:"finished_at,omitempty"`
	Error      string    `json:"error,omitempty"`
}

// NewDiscoveryScheduler validates schedule (standard five-field cron or a
// descriptor such as "@weekly") and prepares the scheduler.
func NewDiscoveryScheduler(schedule string, job Job, logger *slog.Logger) (*DiscoveryScheduler, error) {
	if _, err := cron.ParseStandard(schedule); err != nil {
		return nil, fmt.Errorf("invalid schedule %q: %w", schedule, err)
	}

	cronLogger := slogAdapter{logger: logger}
	return &DiscoveryScheduler{
		schedule: schedule,
		job:      job,
		cron:     cron.New(cron.WithLogger(cronLogger), cron.WithChain(cron.SkipIfStillRunning(cronLogger))),
		logger:   logger,
	}, nil
}

// Start registers the job and blocks until ctx is cancelled, then waits for
// a running job to finish.
func (s *DiscoveryScheduler) Start(ctx context.Context) error {
	if _, err := s.cron.AddFunc(s.schedule, func() { _ = s.RunNow(ctx) }); err != nil {
		return fmt.Errorf("failed to schedule discovery: %w", err)
	}

	s.cron.Start()
	s.logger.Info("discovery scheduler started", "schedule", s.schedule, "next_run", s.Next())

	<-ctx.Done()

	stopped := s.cron.Stop()
	<-stopped.Done()
	s.logger.Info("discovery scheduler stopped")
	return nil
}

// RunNow executes the job once and records its status.
func (s *DiscoveryScheduler) RunNow(ctx context.Context) error {
	started := time.Now()
	s.logger.Info("executing scheduled discovery run")

	err := s.job(ctx)

	status := RunStatus{StartedAt: started, FinishedAt: time.Now()}
	if err != nil {
		status.Error = err.Error()
		s.logger.Error("scheduled discovery run failed", "error", err)
	} else {
		s.logger.Info("scheduled discovery run finished", "duration", status.FinishedAt.Sub(started))
	}

	s.mu.Lock()
	s.lastRun = status
	s.mu.Unlock()
	return err
}

// LastRun returns the status of the most recent run.
func (s *DiscoveryScheduler) LastRun() RunStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastRun
}

// Next returns the next scheduled time, or the zero time before Start.
func (s *DiscoveryScheduler) Next() time.Time {
	entries := s.cron.Entries()
	if len(entries) == 0 {
		return time.Time{}
	}
	return entries[0].Next
}

// slogAdapter satisfies cron.Logger.
type slogAdapter struct {
	logger *slog.Logger
}

func (a slogAdapter) Info(msg string, keysAndValues ...interface{}) {
	a.logger.Debug("cron: "+msg, keysAndValues...)
}

func (a slogAdapter) Error(err error, msg string, keysAndValues ...interface{}) {
	a.logger.Error("cron: "+msg, append(keysAndValues, "error", err)...)
}
