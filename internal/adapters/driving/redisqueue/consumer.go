// Package redisqueue feeds change notifications pushed onto a Redis list
// into the notification queue.
package redisqueue

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/MJU-PSI/yti-terminology-api-sub001/internal/core/domain"
	"github.com/MJU-PSI/yti-terminology-api-sub001/internal/core/ports/driving"
	"github.com/MJU-PSI/yti-terminology-api-sub001/internal/logger"
)

const (
	// DefaultPopTimeout bounds each BLPOP so cancellation is noticed.
	DefaultPopTimeout = 5 * time.Second

	// retryDelay is the pause after a failed BLPOP.
	retryDelay = time.Second
)

// Consumer pops inbound events from a Redis list.
type Consumer struct {
	client     *redis.Client
	key        string
	queue      driving.NotificationQueue
	popTimeout time.Duration
}

// Option configures a Consumer.
type Option func(*Consumer)

// WithPopTimeout overrides DefaultPopTimeout.
func WithPopTimeout(d time.Duration) Option {
	return func(c *Consumer) {
		if d > 0 {
			c.popTimeout = d
		}
	}
}

// NewConsumer creates a consumer for the list named in cfg.
func NewConsumer(cfg domain.RedisSettings, queue driving.NotificationQueue, opts ...Option) (*Consumer, error) {
	if !cfg.IsEnabled() {
		return nil, fmt.Errorf("%w: redis address is required", domain.ErrInvalidInput)
	}
	if cfg.Queue == "" {
		return nil, fmt.Errorf("%w: redis queue name is required", domain.ErrInvalidInput)
	}

	c := &Consumer{
		client:     redis.NewClient(&redis.Options{Addr: cfg.Addr}),
		key:        cfg.Queue,
		queue:      queue,
		popTimeout: DefaultPopTimeout,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Run consumes the list until ctx is cancelled.
// Elements that are not valid events are logged and dropped.
func (c *Consumer) Run(ctx context.Context) error {
	if err := c.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("connecting to redis: %w", err)
	}
	logger.Info("Consuming notifications from redis list %q", c.key)

	for {
		res, err := c.client.BLPop(ctx, c.popTimeout, c.key).Result()
		if ctx.Err() != nil {
			logger.Info("Redis consumer stopped")
			return nil
		}
		if errors.Is(err, redis.Nil) {
			continue
		}
		if err != nil {
			logger.Warn("BLPOP %s failed: %v", c.key, err)
			if !sleep(ctx, retryDelay) {
				return nil
			}
			continue
		}

		// BLPOP replies with [key, value].
		if len(res) != 2 {
			logger.Warn("Unexpected BLPOP reply of %d elements", len(res))
			continue
		}
		if err := c.handle(ctx, []byte(res[1])); err != nil {
			if ctx.Err() != nil || errors.Is(err, domain.ErrQueueClosed) {
				return nil
			}
			logger.Error("Submitting redis notification: %v", err)
		}
	}
}

func (c *Consumer) handle(ctx context.Context, payload []byte) error {
	event, err := domain.ParseChangeEvent(payload)
	if err != nil {
		logger.Warn("Dropping malformed redis notification: %v", err)
		return nil
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	return c.queue.Submit(ctx, domain.EventJob(event, domain.OriginRedis))
}

// Close releases the Redis connection pool.
func (c *Consumer) Close() error {
	return c.client.Close()
}

func sleep(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
