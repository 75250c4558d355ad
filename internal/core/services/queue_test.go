package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	stdsync "sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MJU-PSI/yti-terminology-api-sub001/internal/core/domain"
	"github.com/MJU-PSI/yti-terminology-api-sub001/internal/logger"
)

// queueMockDispatcher implements driving.ChangeDispatcher and records jobs.
type queueMockDispatcher struct {
	mu      stdsync.Mutex
	handled []domain.Job
	block   chan struct{}
	err     error
}

func (m *queueMockDispatcher) Dispatch(_ context.Context, _ domain.ChangeEvent) error { return nil }

func (m *queueMockDispatcher) InitIndex(_ context.Context, _ bool) error { return nil }

func (m *queueMockDispatcher) FullReindex(_ context.Context) error { return nil }

func (m *queueMockDispatcher) ReindexGraph(_ context.Context, _ domain.GraphID) error { return nil }

func (m *queueMockDispatcher) Handle(_ context.Context, job domain.Job) error {
	if m.block != nil {
		<-m.block
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.handled = append(m.handled, job)
	return m.err
}

func (m *queueMockDispatcher) jobs() []domain.Job {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]domain.Job(nil), m.handled...)
}

func TestNotificationQueue_ProcessesInOrder(t *testing.T) {
	dispatcher := &queueMockDispatcher{}
	q := NewNotificationQueue(dispatcher, 8)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- q.Run(ctx) }()

	for _, g := range []domain.GraphID{"g1", "g2", "g3"} {
		require.NoError(t, q.Submit(ctx, domain.ReindexGraphJob(g, "test")))
	}

	require.Eventually(t, func() bool { return len(dispatcher.jobs()) == 3 }, time.Second, 5*time.Millisecond)
	jobs := dispatcher.jobs()
	assert.Equal(t, domain.GraphID("g1"), jobs[0].GraphID)
	assert.Equal(t, domain.GraphID("g2"), jobs[1].GraphID)
	assert.Equal(t, domain.GraphID("g3"), jobs[2].GraphID)

	cancel()
	require.NoError(t, <-done)
}

func TestNotificationQueue_FailedJobDoesNotStopWorker(t *testing.T) {
	dispatcher := &queueMockDispatcher{err: errors.New("boom")}
	q := NewNotificationQueue(dispatcher, 2)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = q.Run(ctx) }()

	require.NoError(t, q.Submit(ctx, domain.FullReindexJob("test")))
	require.NoError(t, q.Submit(ctx, domain.FullReindexJob("test")))

	require.Eventually(t, func() bool { return len(dispatcher.jobs()) == 2 }, time.Second, 5*time.Millisecond)
}

func TestNotificationQueue_SubmitBlocksWhenFull(t *testing.T) {
	dispatcher := &queueMockDispatcher{block: make(chan struct{})}
	q := NewNotificationQueue(dispatcher, 1)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = q.Run(ctx) }()

	// The worker takes the first job and blocks; the second fills the queue.
	require.NoError(t, q.Submit(ctx, domain.FullReindexJob("test")))
	require.Eventually(t, func() bool { return q.Len() == 0 }, time.Second, time.Millisecond)
	require.NoError(t, q.Submit(ctx, domain.FullReindexJob("test")))
	assert.Equal(t, 1, q.Len())

	submitCtx, submitCancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer submitCancel()
	err := q.Submit(submitCtx, domain.FullReindexJob("test"))
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	close(dispatcher.block)
	require.Eventually(t, func() bool { return len(dispatcher.jobs()) == 2 }, time.Second, 5*time.Millisecond)
}

func TestNotificationQueue_ClosedAfterRun(t *testing.T) {
	q := NewNotificationQueue(&queueMockDispatcher{}, 1)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.NoError(t, q.Run(ctx))

	err := q.Submit(context.Background(), domain.FullReindexJob("test"))
	assert.ErrorIs(t, err, domain.ErrQueueClosed)

	err = q.Run(context.Background())
	assert.Error(t, err)
}

func TestNotificationQueue_NoJobAcceptedAfterRun(t *testing.T) {
	var logs bytes.Buffer
	logger.SetOutput(&logs)
	t.Cleanup(func() { logger.SetOutput(os.Stderr) })

	dispatcher := &queueMockDispatcher{}
	q := NewNotificationQueue(dispatcher, 1)

	ctx, cancel := context.WithCancel(context.Background())
	stopped := make(chan struct{})
	go func() {
		defer close(stopped)
		_ = q.Run(ctx)
	}()

	var accepted atomic.Int64
	var submitters stdsync.WaitGroup
	for i := 0; i < 8; i++ {
		submitters.Add(1)
		go func() {
			defer submitters.Done()
			for q.Submit(context.Background(), domain.FullReindexJob("test")) == nil {
				accepted.Add(1)
			}
		}()
	}

	time.Sleep(5 * time.Millisecond)
	cancel()
	<-stopped
	submitters.Wait()

	dropped := 0
	if i := strings.Index(logs.String(), "Dropping "); i >= 0 {
		_, err := fmt.Sscanf(logs.String()[i:], "Dropping %d queued jobs", &dropped)
		require.NoError(t, err)
	}

	// Every accepted job was either handled or reported as dropped.
	assert.LessOrEqual(t, int(accepted.Load()), len(dispatcher.jobs())+dropped)

	err := q.Submit(context.Background(), domain.FullReindexJob("test"))
	assert.ErrorIs(t, err, domain.ErrQueueClosed)
}

func TestNewNotificationQueue_MinimumSize(t *testing.T) {
	q := NewNotificationQueue(&queueMockDispatcher{}, 0)
	assert.Equal(t, 1, cap(q.jobs))
}
