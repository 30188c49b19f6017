package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// ILocker hands out short-lived named locks.
type ILocker interface {
	// Acquire returns a release func, or ok=false when another holder owns the lock.
	Acquire(ctx context.Context, name string, ttl time.Duration) (release func(), ok bool, err error)
}

// releaseScript deletes the lock only if it still carries our token.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

type redisLocker struct {
	rdb redis.Cmdable
}

// NewLocker creates a SetNX-based locker.
func NewLocker(rdb redis.Cmdable) ILocker {
	return &redisLocker{rdb: rdb}
}

func (l *redisLocker) Acquire(ctx context.Context, name string, ttl time.Duration) (func(), bool, error) {
	key := fmt.Sprintf("lock:%s", name)
	token := uuid.NewString()

	ok, err := l.rdb.SetNX(ctx, key, token, ttl).Result()
	if err != nil {
		return nil, false, fmt.Errorf("failed to acquire lock %s: %w", name, err)
	}
	if !ok {
		return nil, false, nil
	}

	release := func() {
		// Released with a fresh context so a cancelled request still frees the lock.
		releaseCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = releaseScript.Run(releaseCtx, l.rdb, []string{key}, token).Err()
	}
	return release, true, nil
}
