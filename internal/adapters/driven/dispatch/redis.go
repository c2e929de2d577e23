package dispatch

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/custodia-labs/figsync/internal/core/domain"
	"github.com/custodia-labs/figsync/internal/core/ports/driven"
	"github.com/custodia-labs/figsync/internal/logger"
)

// DefaultQueueKey is the Redis list jobs are pushed onto.
const DefaultQueueKey = "figsync:jobs"

// defaultPollTimeout bounds each blocking pop so Consume notices
// cancellation.
const defaultPollTimeout = 5 * time.Second

// listClient is the subset of the Redis client the queue uses.
type listClient interface {
	LPush(ctx context.Context, key string, values ...interface{}) *redis.IntCmd
	BRPop(ctx context.Context, timeout time.Duration, keys ...string) *redis.StringSliceCmd
	Ping(ctx context.Context) *redis.StatusCmd
	Close() error
}

// RedisQueueConfig configures a RedisQueue.
type RedisQueueConfig struct {
	Addr        string
	Password    string
	DB          int
	Key         string
	PollTimeout time.Duration
}

// RedisQueue is a FIFO job queue on a Redis list.
type RedisQueue struct {
	client      listClient
	key         string
	pollTimeout time.Duration
}

var _ driven.JobDispatcher = (*RedisQueue)(nil)

// NewRedisQueue connects to Redis.
func NewRedisQueue(cfg RedisQueueConfig) *RedisQueue {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	return newRedisQueue(rdb, cfg)
}

func newRedisQueue(client listClient, cfg RedisQueueConfig) *RedisQueue {
	if cfg.Key == "" {
		cfg.Key = DefaultQueueKey
	}
	if cfg.PollTimeout <= 0 {
		cfg.PollTimeout = defaultPollTimeout
	}
	return &RedisQueue{
		client:      client,
		key:         cfg.Key,
		pollTimeout: cfg.PollTimeout,
	}
}

// Ping checks the connection.
func (q *RedisQueue) Ping(ctx context.Context) error {
	if err := q.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping failed: %w", err)
	}
	return nil
}

// Dispatch pushes req onto the queue.
func (q *RedisQueue) Dispatch(ctx context.Context, req domain.WorkerRequest) error {
	payload, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("failed to encode job %s: %w", req.JobID, err)
	}
	if err := q.client.LPush(ctx, q.key, payload).Err(); err != nil {
		return fmt.Errorf("failed to enqueue job %s: %w", req.JobID, err)
	}
	logger.Debug("Enqueued job %s on %s", req.JobID, q.key)
	return nil
}

// Consume pops jobs and runs them one at a time until ctx is cancelled.
// Malformed payloads are dropped. A failed job is logged; its marker
// already records the failure.
func (q *RedisQueue) Consume(ctx context.Context, runner driven.JobRunner) error {
	for {
		if err := ctx.Err(); err != nil {
			return nil
		}

		vals, err := q.client.BRPop(ctx, q.pollTimeout, q.key).Result()
		switch {
		case errors.Is(err, redis.Nil):
			continue
		case err != nil:
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("failed to pop job: %w", err)
		case len(vals) != 2:
			continue
		}

		var req domain.WorkerRequest
		if err := json.Unmarshal([]byte(vals[1]), &req); err != nil || req.JobID == "" {
			logger.Warn("Dropping malformed job payload from %s", q.key)
			continue
		}

		if err := runner.Run(ctx, req); err != nil {
			logger.Warn("Job %s failed: %v", req.JobID, err)
		}
	}
}

// Close closes the Redis connection.
func (q *RedisQueue) Close() error {
	return q.client.Close()
}
