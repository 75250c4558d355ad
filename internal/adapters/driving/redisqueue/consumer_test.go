package redisqueue

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MJU-PSI/yti-terminology-api-sub001/internal/core/domain"
)

const consumerTestKey = "termsync:test"

// consumerMockQueue is a mock implementation of driving.NotificationQueue.
type consumerMockQueue struct {
	mu   sync.Mutex
	jobs []domain.Job
	err  error
}

func (m *consumerMockQueue) Submit(_ context.Context, job domain.Job) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.jobs = append(m.jobs, job)
	return nil
}

func (m *consumerMockQueue) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.jobs)
}

func (m *consumerMockQueue) snapshot() []domain.Job {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]domain.Job(nil), m.jobs...)
}

func startConsumer(t *testing.T, queue *consumerMockQueue) (*miniredis.Miniredis, context.CancelFunc, <-chan error) {
	t.Helper()
	mr := miniredis.RunT(t)

	consumer, err := NewConsumer(
		domain.RedisSettings{Addr: mr.Addr(), Queue: consumerTestKey},
		queue,
		WithPopTimeout(100*time.Millisecond),
	)
	require.NoError(t, err)
	t.Cleanup(func() { consumer.Close() })

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- consumer.Run(ctx) }()
	return mr, cancel, done
}

func TestNewConsumer_Validation(t *testing.T) {
	_, err := NewConsumer(domain.RedisSettings{Queue: "q"}, &consumerMockQueue{})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = NewConsumer(domain.RedisSettings{Addr: "localhost:6379"}, &consumerMockQueue{})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestConsumer_Run(t *testing.T) {
	t.Run("events are submitted in list order", func(t *testing.T) {
		queue := &consumerMockQueue{}
		mr, cancel, done := startConsumer(t, queue)

		_, err := mr.RPush(consumerTestKey,
			`{"type":"Saved","body":{"nodes":[{"id":"c1","type":{"id":"Concept","graph":{"id":"G"}}}]}}`,
			`not json`,
			`{"id":"evt-2","type":"Deleted","body":{"nodes":[{"id":"c2","type":{"id":"Concept","graph":{"id":"G"}}}]}}`,
		)
		require.NoError(t, err)

		require.Eventually(t, func() bool { return len(queue.snapshot()) == 2 }, 5*time.Second, 10*time.Millisecond)

		jobs := queue.snapshot()
		assert.Equal(t, domain.EventSaved, jobs[0].Event.Type)
		assert.Equal(t, domain.EventDeleted, jobs[1].Event.Type)
		assert.Len(t, jobs[0].Event.ID, 36)
		assert.Equal(t, "evt-2", jobs[1].Event.ID)
		for _, job := range jobs {
			assert.Equal(t, domain.JobEvent, job.Kind)
			assert.Equal(t, domain.OriginRedis, job.Origin)
		}

		cancel()
		select {
		case err := <-done:
			assert.NoError(t, err)
		case <-time.After(5 * time.Second):
			t.Fatal("consumer did not stop")
		}
	})

	t.Run("closed queue stops the consumer", func(t *testing.T) {
		queue := &consumerMockQueue{err: domain.ErrQueueClosed}
		mr, cancel, done := startConsumer(t, queue)
		defer cancel()

		_, err := mr.RPush(consumerTestKey, `{"type":"ApplicationReadyEvent","body":{}}`)
		require.NoError(t, err)

		select {
		case err := <-done:
			assert.NoError(t, err)
		case <-time.After(5 * time.Second):
			t.Fatal("consumer did not stop")
		}
	})
}

func TestConsumer_RunFailsWithoutRedis(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	consumer, err := NewConsumer(domain.RedisSettings{Addr: addr, Queue: consumerTestKey}, &consumerMockQueue{})
	require.NoError(t, err)
	defer consumer.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	assert.Error(t, consumer.Run(ctx))
}
