package services

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/MJU-PSI/yti-terminology-api-sub001/internal/core/domain"
	"github.com/MJU-PSI/yti-terminology-api-sub001/internal/core/ports/driving"
	"github.com/MJU-PSI/yti-terminology-api-sub001/internal/logger"
	"github.com/MJU-PSI/yti-terminology-api-sub001/internal/metrics"
)

// Ensure NotificationQueue implements the interface.
var _ driving.NotificationQueue = (*NotificationQueue)(nil)

// NotificationQueue is a bounded queue drained by a single worker.
// Jobs are handled strictly in the order they were accepted.
type NotificationQueue struct {
	jobs       chan domain.Job
	dispatcher driving.ChangeDispatcher
	started    atomic.Bool
	done       chan struct{}
}

// NewNotificationQueue creates a queue holding up to size jobs.
func NewNotificationQueue(dispatcher driving.ChangeDispatcher, size int) *NotificationQueue {
	if size < 1 {
		size = 1
	}
	return &NotificationQueue{
		jobs:       make(chan domain.Job, size),
		dispatcher: dispatcher,
		done:       make(chan struct{}),
	}
}

// Submit enqueues a job, blocking while the queue is full.
func (q *NotificationQueue) Submit(ctx context.Context, job domain.Job) error {
	select {
	case <-q.done:
		return domain.ErrQueueClosed
	default:
	}

	select {
	case q.jobs <- job:
		// Run may have exited while both cases were ready.
		select {
		case <-q.done:
			return domain.ErrQueueClosed
		default:
		}
		metrics.QueueDepth.Set(float64(len(q.jobs)))
		return nil
	case <-q.done:
		return domain.ErrQueueClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Len returns the number of queued jobs.
func (q *NotificationQueue) Len() int {
	return len(q.jobs)
}

// Run handles jobs until ctx is cancelled. Job failures are logged; the
// worker keeps going. Jobs still queued when Run returns are dropped.
func (q *NotificationQueue) Run(ctx context.Context) error {
	if !q.started.CompareAndSwap(false, true) {
		return fmt.Errorf("notification queue already running")
	}
	defer func() {
		close(q.done)
		if n := len(q.jobs); n > 0 {
			logger.Warn("Dropping %d queued jobs on shutdown", n)
		}
	}()

	logger.Info("Notification worker started")
	for {
		select {
		case <-ctx.Done():
			logger.Info("Notification worker stopped")
			return nil
		case job := <-q.jobs:
			metrics.QueueDepth.Set(float64(len(q.jobs)))
			if err := q.dispatcher.Handle(ctx, job); err != nil {
				logger.Error("%s job from %s failed: %v", job.Kind, originOf(job), err)
			}
		}
	}
}

func originOf(job domain.Job) string {
	if job.Origin == "" {
		return "unknown"
	}
	return job.Origin
}
