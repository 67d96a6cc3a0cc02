package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"social-scheduler/internal/domain"
	"social-scheduler/internal/infra/metrics"
)

// RedisRunQueue реализует очередь запросов на прогон на базе Redis lists.
type RedisRunQueue struct {
	client *redis.Client
	key    string
}

var _ domain.RunQueue = (*RedisRunQueue)(nil)

// NewRedisRunQueue создаёт очередь по указанному ключу.
func NewRedisRunQueue(client *redis.Client, key string) *RedisRunQueue {
	return &RedisRunQueue{client: client, key: key}
}

// Enqueue публикует запрос в очередь.
func (q *RedisRunQueue) Enqueue(ctx context.Context, req domain.RunRequest) error {
	payload, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("marshal run request: %w", err)
	}
	start := time.Now()
	err = q.client.LPush(ctx, q.key, payload).Err()
	metrics.ObserveNetworkRequest("redis", "lpush", q.key, start, err)
	if err != nil {
		return fmt.Errorf("push run request: %w", err)
	}
	return nil
}

// Pop блокирующе читает запрос из очереди.
func (q *RedisRunQueue) Pop(ctx context.Context) (domain.RunRequest, error) {
	for {
		if err := ctx.Err(); err != nil {
			return domain.RunRequest{}, err
		}

		res, err := q.client.BRPop(ctx, time.Second, q.key).Result()
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				if ctx.Err() != nil {
					return domain.RunRequest{}, ctx.Err()
				}
				continue
			}
			if errors.Is(err, redis.Nil) {
				continue
			}
			return domain.RunRequest{}, err
		}
		if len(res) != 2 {
			return domain.RunRequest{}, errors.New("redis queue: unexpected response")
		}
		var req domain.RunRequest
		if err := json.Unmarshal([]byte(res[1]), &req); err != nil {
			return domain.RunRequest{}, fmt.Errorf("decode run request: %w", err)
		}
		return req, nil
	}
}
