// Package locking provides short-lived coordination primitives backed by
// Redis: a mutex serializing category provisioning and a one-shot guard for
// messages that must be sent at most once.
package locking

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Locker is the coordination contract the services depend on.
type Locker interface {
	// TryLock attempts to take the named mutex for at most ttl. On success it
	// returns a release function and true.
	TryLock(ctx context.Context, key string, ttl time.Duration) (func(), bool)
	// Once reports true the first time it is called for a key; later calls
	// within ttl report false.
	Once(ctx context.Context, key string, ttl time.Duration) bool
}

// RedisLocker implements Locker on a shared Redis instance.
type RedisLocker struct {
	client *redis.Client
	logger *zap.Logger
}

// NewRedisLocker wraps the client.
func NewRedisLocker(client *redis.Client, logger *zap.Logger) *RedisLocker {
	return &RedisLocker{client: client, logger: logger}
}

func (l *RedisLocker) TryLock(ctx context.Context, key string, ttl time.Duration) (func(), bool) {
	token := uuid.NewString()
	ok, err := l.client.SetNX(ctx, key, token, ttl).Result()
	if err != nil {
		l.logger.Warn("lock acquire failed", zap.String("key", key), zap.Error(err))
		return nil, false
	}
	if !ok {
		return nil, false
	}
	release := func() {
		// Only delete our own token; an expired lock may have been retaken.
		current, err := l.client.Get(context.Background(), key).Result()
		if err != nil || current != token {
			return
		}
		if err := l.client.Del(context.Background(), key).Err(); err != nil {
			l.logger.Warn("lock release failed", zap.String("key", key), zap.Error(err))
		}
	}
	return release, true
}

func (l *RedisLocker) Once(ctx context.Context, key string, ttl time.Duration) bool {
	ok, err := l.client.SetNX(ctx, key, "1", ttl).Result()
	if err != nil {
		l.logger.Warn("once guard failed", zap.String("key", key), zap.Error(err))
		// Guard failure must not suppress the action.
		return true
	}
	return ok
}
