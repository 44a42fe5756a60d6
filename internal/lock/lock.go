// Package lock serializes mutations of one checkout across service instances.
package lock

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// ErrLocked is returned when a checkout stays locked for longer than the wait.
var ErrLocked = errors.New("checkout is locked by another operation")

const (
	defaultTTL  = 30 * time.Second
	defaultWait = 3 * time.Second
)

// releaseScript deletes the lock only while it still holds the caller's token.
const releaseScript = `
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0`

// Client is the part of *redis.Client the locker needs.
type Client interface {
	SetNX(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.BoolCmd
	Eval(ctx context.Context, script string, keys []string, args ...interface{}) *redis.Cmd
}

type Locker struct {
	client Client
	ttl    time.Duration
	wait   time.Duration
	logger *zap.Logger
}

func NewLocker(client Client, logger *zap.Logger) *Locker {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Locker{client: client, ttl: defaultTTL, wait: defaultWait, logger: logger}
}

// WithWait sets how long WithLock waits for a held lock.
func (l *Locker) WithWait(wait time.Duration) *Locker {
	copied := *l
	copied.wait = wait
	return &copied
}

func Key(checkoutID string) string {
	return fmt.Sprintf("checkout_lock:%s", checkoutID)
}

// WithLock runs fn while holding the lock of checkoutID, retrying acquisition
// with exponential backoff until the wait elapses.
func (l *Locker) WithLock(ctx context.Context, checkoutID string, fn func(ctx context.Context) error) error {
	key := Key(checkoutID)
	token := uuid.NewString()
	if err := l.acquire(ctx, key, token); err != nil {
		return err
	}
	defer func() {
		released, err := l.client.Eval(context.WithoutCancel(ctx), releaseScript, []string{key}, token).Int64()
		switch {
		case err != nil:
			l.logger.Warn("Failed to release checkout lock", zap.String("checkout_id", checkoutID), zap.Error(err))
		case released == 0:
			l.logger.Warn("Checkout lock expired before release", zap.String("checkout_id", checkoutID), zap.Duration("ttl", l.ttl))
		}
	}()
	return fn(ctx)
}

func (l *Locker) acquire(ctx context.Context, key, token string) error {
	backoffCfg := backoff.NewExponentialBackOff()
	backoffCfg.InitialInterval = 25 * time.Millisecond
	backoffCfg.MaxInterval = 500 * time.Millisecond
	deadline := time.Now().Add(l.wait)

	for {
		ok, err := l.client.SetNX(ctx, key, token, l.ttl).Result()
		if err != nil {
			return fmt.Errorf("acquire %s: %w", key, err)
		}
		if ok {
			return nil
		}
		sleep := backoffCfg.NextBackOff()
		if sleep == backoff.Stop || time.Now().Add(sleep).After(deadline) {
			return ErrLocked
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(sleep):
		}
	}
}
