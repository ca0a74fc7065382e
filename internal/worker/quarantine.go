package worker

import (
	"context"
	"fmt"
	"sync"

	"github.com/redis/go-redis/v9"
)

// Quarantine keeps the object keys whose decodes failed so sweeps stop
// resubmitting them.
type Quarantine interface {
	Add(ctx context.Context, objectKey string) error
	Contains(ctx context.Context, objectKey string) (bool, error)
}

type RedisQuarantine struct {
	client *redis.Client
}

func NewRedisQuarantine(client *redis.Client) *RedisQuarantine {
	return &RedisQuarantine{client: client}
}

var _ Quarantine = (*RedisQuarantine)(nil)

func (q *RedisQuarantine) Add(ctx context.Context, objectKey string) error {
	_, err := q.client.SAdd(ctx, quarantineSet, objectKey).Result()
	if err != nil {
		return fmt.Errorf("failed to quarantine %s: %w", objectKey, err)
	}
	return nil
}

func (q *RedisQuarantine) Contains(ctx context.Context, objectKey string) (bool, error) {
	member, err := q.client.SIsMember(ctx, quarantineSet, objectKey).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check quarantine for %s: %w", objectKey, err)
	}
	return member, nil
}

type MemoryQuarantine struct {
	mu   sync.Mutex
	keys map[string]struct{}
}

func NewMemoryQuarantine() *MemoryQuarantine {
	return &MemoryQuarantine{
		keys: make(map[string]struct{}),
	}
}

var _ Quarantine = (*MemoryQuarantine)(nil)

func (q *MemoryQuarantine) Add(ctx context.Context, objectKey string) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.keys[objectKey] = struct{}{}
	return nil
}

func (q *MemoryQuarantine) Contains(ctx context.Context, objectKey string) (bool, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	_, ok := q.keys[objectKey]
	return ok, nil
}
