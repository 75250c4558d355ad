package services

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/MJU-PSI/yti-terminology-api-sub001/internal/core/domain"
	"github.com/MJU-PSI/yti-terminology-api-sub001/internal/core/ports/driven"
	"github.com/MJU-PSI/yti-terminology-api-sub001/internal/core/ports/driving"
	"github.com/MJU-PSI/yti-terminology-api-sub001/internal/logger"
)

// Ensure Scheduler implements the interface.
var _ driving.Scheduler = (*Scheduler)(nil)

// DefaultSchedulerTick is how often the scheduler checks for due tasks.
const DefaultSchedulerTick = time.Minute

// Scheduler submits a full reindex to the notification queue at a fixed
// interval. The job runs on the queue's worker like any other, so it never
// overlaps event processing.
type Scheduler struct {
	store    driven.SchedulerStore
	queue    driving.NotificationQueue
	interval time.Duration
	tick     time.Duration
	now      func() time.Time

	mu      sync.Mutex
	running bool
}

// SchedulerOption configures a Scheduler.
type SchedulerOption func(*Scheduler)

// WithTick overrides how often due tasks are checked.
func WithTick(d time.Duration) SchedulerOption {
	return func(s *Scheduler) {
		if d > 0 {
			s.tick = d
		}
	}
}

// WithSchedulerClock overrides the time source.
func WithSchedulerClock(now func() time.Time) SchedulerOption {
	return func(s *Scheduler) {
		s.now = now
	}
}

// NewScheduler creates a scheduler. An interval of zero or less disables it.
func NewScheduler(
	store driven.SchedulerStore,
	queue driving.NotificationQueue,
	interval time.Duration,
	opts ...SchedulerOption,
) *Scheduler {
	s := &Scheduler{
		store:    store,
		queue:    queue,
		interval: interval,
		tick:     DefaultSchedulerTick,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Enabled reports whether a reindex interval is configured.
func (s *Scheduler) Enabled() bool {
	return s.interval > 0
}

// Run checks for due tasks until ctx is cancelled. It returns immediately
// when the scheduler is disabled.
func (s *Scheduler) Run(ctx context.Context) error {
	if !s.Enabled() {
		logger.Debug("Scheduled full reindex disabled")
		return nil
	}

	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return errors.New("scheduler already running")
	}
	s.running = true
	s.mu.Unlock()
	defer func() {
		s.mu.Lock()
		s.running = false
		s.mu.Unlock()
	}()

	if err := s.ensureTask(ctx); err != nil {
		logger.Warn("Scheduler: failed to initialise task: %v", err)
	}
	logger.Info("Scheduled full reindex every %s", s.interval)

	s.checkDue(ctx)

	ticker := time.NewTicker(s.tick)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			s.checkDue(ctx)
		}
	}
}

// ensureTask creates the task on first start and reschedules it when the
// configured interval changed.
func (s *Scheduler) ensureTask(ctx context.Context) error {
	task, err := s.store.GetTask(ctx, domain.TaskIDFullReindex)
	if err != nil {
		return err
	}

	now := s.now()
	if task == nil {
		task = &domain.ScheduledTask{
			ID:       domain.TaskIDFullReindex,
			Name:     "Full reindex",
			Interval: s.interval,
			NextRun:  now.Add(s.interval),
		}
	} else if task.Interval != s.interval {
		task.Interval = s.interval
		task.NextRun = now.Add(s.interval)
	}
	task.Enabled = true

	return s.store.SaveTask(ctx, task)
}

// checkDue submits the reindex job when its task is due.
func (s *Scheduler) checkDue(ctx context.Context) {
	task, err := s.store.GetTask(ctx, domain.TaskIDFullReindex)
	if err != nil {
		logger.Warn("Scheduler: failed to load task: %v", err)
		return
	}
	now := s.now()
	if task == nil || !task.IsDue(now) {
		return
	}

	task.LastError = ""
	if err := s.queue.Submit(ctx, domain.FullReindexJob(domain.OriginScheduler)); err != nil {
		if ctx.Err() != nil {
			return
		}
		logger.Warn("Scheduler: failed to submit full reindex: %v", err)
		task.LastError = err.Error()
	} else {
		logger.Info("Scheduled full reindex submitted")
	}

	task.LastRun = now
	task.NextRun = now.Add(task.Interval)
	if err := s.store.SaveTask(ctx, task); err != nil {
		logger.Warn("Scheduler: failed to save task %s: %v", task.ID, err)
	}
}
