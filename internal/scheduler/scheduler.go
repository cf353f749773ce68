// Package scheduler regenerates the synthetic news dataset on a cron schedule.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.opentelemetry.io/otel"

	"leadscout/internal/infrastructure"
	"leadscout/pkg/contracts/domain"
)

// DefaultJobTimeout bounds a single refresh run
const DefaultJobTimeout = 2 * time.Minute

// Refresher replaces the served dataset
type Refresher interface {
	Refresh(ctx context.Context) (domain.DatasetInfo, error)
}

// Scheduler runs dataset refreshes on a cron spec such as "@every 15m" or
// "0 */6 * * *". Overlapping runs are skipped.
type Scheduler struct {
	cron      *cron.Cron
	refresher Refresher
	timeout   time.Duration
	logger    *slog.Logger

	mu      sync.Mutex
	entryID cron.EntryID
	started bool
}

// New creates a scheduler for refresher. Nothing runs until Schedule and Start.
func New(refresher Refresher, logger *slog.Logger) *Scheduler {
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With(slog.String("component", "scheduler"))

	cl := cronLogger{logger: logger}
	return &Scheduler{
		cron: cron.New(
			cron.WithLocation(time.UTC),
			cron.WithLogger(cl),
			cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
		),
		refresher: refresher,
		timeout:   DefaultJobTimeout,
		logger:    logger,
	}
}

// Schedule installs the refresh job, replacing any earlier one
func (s *Scheduler) Schedule(spec string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.entryID != 0 {
		s.cron.Remove(s.entryID)
		s.entryID = 0
	}

	id, err := s.cron.AddFunc(spec, s.run)
	if err != nil {
		return fmt.Errorf("add refresh job %q: %w", spec, err)
	}
	s.entryID = id

	s.logger.Info("Dataset refresh scheduled", slog.String("spec", spec))
	return nil
}

// Next returns the next planned run, zero when nothing is scheduled or the
// scheduler is stopped
func (s *Scheduler) Next() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.entryID == 0 {
		return time.Time{}
	}
	return s.cron.Entry(s.entryID).Next
}

// Start begins running scheduled jobs
func (s *Scheduler) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		s.cron.Start()
		s.started = true
	}
}

// Stop halts the scheduler and waits for a running refresh until ctx is done
func (s *Scheduler) Stop(ctx context.Context) error {
	s.mu.Lock()
	if !s.started {
		s.mu.Unlock()
		return nil
	}
	s.started = false
	done := s.cron.Stop()
	s.mu.Unlock()

	select {
	case <-done.Done():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *Scheduler) run() {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	ctx, span := otel.Tracer(infrastructure.InstrumentationName+".scheduler").Start(ctx, "scheduler.refresh")
	defer span.End()
	ctx = infrastructure.EnsureTraceID(ctx)

	start := time.Now()
	info, err := s.refresher.Refresh(ctx)
	if err != nil {
		infrastructure.RecordError(ctx, err)
		s.logger.ErrorContext(ctx, "Scheduled refresh failed",
			slog.String("error", err.Error()),
			slog.Duration("duration", time.Since(start)))
		return
	}

	s.logger.InfoContext(ctx, "Scheduled refresh completed",
		slog.String("version", info.Version),
		slog.Int("records", info.Records),
		slog.Duration("duration", time.Since(start)))
}

// cronLogger routes cron's own messages to slog
type cronLogger struct {
	logger *slog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...any) {
	l.logger.Debug(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...any) {
	l.logger.Error(msg, append([]any{slog.String("error", err.Error())}, keysAndValues...)...)
}
