package audit

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// RedisBuffer implements a Redis-backed buffer for audit records. Writers
// enqueue to the right of a capped list; the archiver drains batches from the
// left, oldest first.
type RedisBuffer struct {
	client    *redis.Client
	queueKey  string
	maxSize   int64 // Maximum queue size (0 = unlimited)
	batchSize int   // Number of records to retrieve at once
}

// RedisBufferConfig holds configuration for the Redis buffer.
type RedisBufferConfig struct {
	QueueKey  string // Redis list key for the queue
	MaxSize   int64  // Maximum queue size (older entries dropped when full)
	BatchSize int    // Number of records to dequeue at once
}

// NewRedisBuffer creates a new Redis-backed audit buffer.
func NewRedisBuffer(client *redis.Client, cfg RedisBufferConfig) *RedisBuffer {
	return &RedisBuffer{
		client:    client,
		queueKey:  cfg.QueueKey,
		maxSize:   cfg.MaxSize,
		batchSize: cfg.BatchSize,
	}
}

// Enqueue adds an audit record to the Redis queue, dropping the oldest
// entries when the size cap is exceeded. Push and trim run atomically so a
// burst of writers cannot grow the list past the cap.
func (rb *RedisBuffer) Enqueue(ctx context.Context, rec *Record) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to marshal audit record: %w", err)
	}

	if rb.maxSize > 0 {
		script := redis.NewScript(`
			local key = KEYS[1]
			local value = ARGV[1]
			local max_size = tonumber(ARGV[2])

			redis.call('RPUSH', key, value)

			local len = redis.call('LLEN', key)
			if len > max_size then
				redis.call('LTRIM', key, len - max_size, -1)
			end

			return len
		`)

		if _, err := script.Run(ctx, rb.client, []string{rb.queueKey}, data, rb.maxSize).Result(); err != nil {
			return fmt.Errorf("failed to enqueue audit record: %w", err)
		}
		return nil
	}

	if err := rb.client.RPush(ctx, rb.queueKey, data).Err(); err != nil {
		return fmt.Errorf("failed to enqueue audit record: %w", err)
	}
	return nil
}

// Dequeue removes and returns a batch of audit records, oldest first. The
// read and trim run atomically so two archivers never drain the same record.
func (rb *RedisBuffer) Dequeue(ctx context.Context, count int) ([]*Record, error) {
	if count <= 0 {
		count = rb.batchSize
	}

	script := redis.NewScript(`
		local key = KEYS[1]
		local count = tonumber(ARGV[1])

		local records = redis.call('LRANGE', key, 0, count - 1)
		if #records > 0 then
			redis.call('LTRIM', key, #records, -1)
		end

		return records
	`)

	result, err := script.Run(ctx, rb.client, []string{rb.queueKey}, count).StringSlice()
	if err != nil {
		return nil, fmt.Errorf("failed to dequeue: %w", err)
	}

	records := make([]*Record, 0, len(result))
	for i, data := range result {
		var rec Record
		if err := json.Unmarshal([]byte(data), &rec); err != nil {
			return nil, fmt.Errorf("failed to unmarshal record %d: %w", i, err)
		}
		records = append(records, &rec)
	}

	return records, nil
}

// Size returns the current queue size.
func (rb *RedisBuffer) Size(ctx context.Context) (int64, error) {
	return rb.client.LLen(ctx, rb.queueKey).Result()
}

// Clear removes all records from the queue.
func (rb *RedisBuffer) Clear(ctx context.Context) error {
	return rb.client.Del(ctx, rb.queueKey).Err()
}
