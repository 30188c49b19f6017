package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// IIdempotencyStore remembers keys that have already been processed.
type IIdempotencyStore interface {
	// MarkProcessed records key and reports whether this call was the first to do so.
	MarkProcessed(ctx context.Context, scope, key string, ttl time.Duration) (bool, error)
	// Forget removes key so it can be processed again.
	Forget(ctx context.Context, scope, key string) error
}

type idempotencyStore struct {
	rdb redis.Cmdable
}

func NewIdempotencyStore(rdb redis.Cmdable) IIdempotencyStore {
	return &idempotencyStore{rdb: rdb}
}

func idempotencyKey(scope, key string) string {
	return fmt.Sprintf("idempotency:%s:%s", scope, key)
}

func (s *idempotencyStore) MarkProcessed(ctx context.Context, scope, key string, ttl time.Duration) (bool, error) {
	first, err := s.rdb.SetNX(ctx, idempotencyKey(scope, key), time.Now().UTC().Format(time.RFC3339), ttl).Result()
	if err != nil {
		return false, fmt.Errorf("failed to record idempotency key %s: %w", key, err)
	}
	return first, nil
}

func (s *idempotencyStore) Forget(ctx context.Context, scope, key string) error {
	return s.rdb.Del(ctx, idempotencyKey(scope, key)).Err()
}
