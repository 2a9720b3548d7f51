package cache

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/bsm/redislock"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

const lockRetryInterval = 250 * time.Millisecond

// RedisLocker hands out cluster-wide locks. A holder that dies loses its lock after ttl.
type RedisLocker struct {
	locker *redislock.Client
	ttl    time.Duration
	log    logrus.FieldLogger
}

func NewRedisLocker(rdb *redis.Client, ttl time.Duration, log logrus.FieldLogger) *RedisLocker {
	return &RedisLocker{locker: redislock.New(rdb), ttl: ttl, log: log}
}

// Lock waits up to the lock ttl for key, retrying at a fixed interval.
func (l *RedisLocker) Lock(ctx context.Context, key string) (func(), error) {
	retries := int(l.ttl / lockRetryInterval)
	lock, err := l.locker.Obtain(ctx, "lock:"+key, l.ttl, &redislock.Options{
		RetryStrategy: redislock.LimitRetry(redislock.LinearBackoff(lockRetryInterval), retries),
	})
	if errors.Is(err, redislock.ErrNotObtained) {
		return nil, fmt.Errorf("lock %s is held", key)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to obtain lock %s: %w", key, err)
	}
	return func() {
		if err := lock.Release(context.Background()); err != nil && !errors.Is(err, redislock.ErrLockNotHeld) {
			l.log.WithField("key", key).Warn("[Redis] failed to release lock: " + err.Error())
		}
	}, nil
}

// LocalLocker is the single-process fallback used when Redis is not configured.
type LocalLocker struct {
	mu    sync.Mutex
	slots map[string]chan struct{}
}

func NewLocalLocker() *LocalLocker {
	return &LocalLocker{slots: make(map[string]chan struct{})}
}

func (l *LocalLocker) slot(key string) chan struct{} {
	l.mu.Lock()
	defer l.mu.Unlock()
	ch, ok := l.slots[key]
	if !ok {
		ch = make(chan struct{}, 1)
		l.slots[key] = ch
	}
	return ch
}

// Lock blocks until key is free or ctx ends.
func (l *LocalLocker) Lock(ctx context.Context, key string) (func(), error) {
	ch := l.slot(key)
	select {
	case ch <- struct{}{}:
		var once sync.Once
		return func() { once.Do(func() { <-ch }) }, nil
	case <-ctx.Done():
		return nil, fmt.Errorf("lock %s is held: %w", key, ctx.Err())
	}
}
