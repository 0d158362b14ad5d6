package lock

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/bsm/redislock"
	"github.com/redis/go-redis/v9"
	"github.com/retail/backoffice/internal/application/uow"
	"github.com/retail/backoffice/internal/infrastructure/config"
	"go.uber.org/zap"
)

// heldLock is a lock obtained from the backend
type heldLock interface {
	Release(ctx context.Context) error
}

type obtainer interface {
	Obtain(ctx context.Context, key string, ttl time.Duration, retry redislock.RetryStrategy) (heldLock, error)
}

type redislockObtainer struct {
	client *redislock.Client
}

func (o redislockObtainer) Obtain(ctx context.Context, key string, ttl time.Duration, retry redislock.RetryStrategy) (heldLock, error) {
	l, err := o.client.Obtain(ctx, key, ttl, &redislock.Options{RetryStrategy: retry})
	if err != nil {
		return nil, err
	}
	return l, nil
}

// RedisLocker serializes keys across every instance sharing one Redis.
// Each key is a redislock lease of cfg.TTL, retried with linear backoff
// until cfg.MaxWait has passed.
type RedisLocker struct {
	backend    obtainer
	ttl        time.Duration
	retryDelay time.Duration
	maxWait    time.Duration
	logger     *zap.Logger
}

// NewRedisLocker creates a RedisLocker on top of rdb
func NewRedisLocker(rdb *redis.Client, cfg config.LockConfig, logger *zap.Logger) *RedisLocker {
	return newRedisLocker(redislockObtainer{client: redislock.New(rdb)}, cfg, logger)
}

func newRedisLocker(backend obtainer, cfg config.LockConfig, logger *zap.Logger) *RedisLocker {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.TTL <= 0 {
		cfg.TTL = 30 * time.Second
	}
	if cfg.RetryDelay <= 0 {
		cfg.RetryDelay = 50 * time.Millisecond
	}
	return &RedisLocker{
		backend:    backend,
		ttl:        cfg.TTL,
		retryDelay: cfg.RetryDelay,
		maxWait:    cfg.MaxWait,
		logger:     logger,
	}
}

// Acquire obtains every key in sorted order and returns a release func
func (l *RedisLocker) Acquire(ctx context.Context, keys ...string) (func(), error) {
	waitCtx, cancel := waitContext(ctx, l.maxWait)
	defer cancel()

	sorted := uow.SortedUnique(keys)
	held := make([]heldLock, 0, len(sorted))
	for _, key := range sorted {
		lk, err := l.backend.Obtain(waitCtx, key, l.ttl, redislock.LinearBackoff(l.retryDelay))
		if err != nil {
			l.releaseAll(held)
			if errors.Is(err, redislock.ErrNotObtained) || errors.Is(err, context.DeadlineExceeded) {
				l.logger.Warn("Lock not obtained", zap.String("key", key), zap.Duration("max_wait", l.maxWait))
				return nil, conflict(ctx, key, err)
			}
			return nil, err
		}
		held = append(held, lk)
	}

	var once sync.Once
	return func() { once.Do(func() { l.releaseAll(held) }) }, nil
}

// releaseAll runs on a fresh context so a cancelled request still frees its keys
func (l *RedisLocker) releaseAll(held []heldLock) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	for i := len(held) - 1; i >= 0; i-- {
		if err := held[i].Release(ctx); err != nil && !errors.Is(err, redislock.ErrLockNotHeld) {
			l.logger.Warn("Failed to release lock", zap.Error(err))
		}
	}
}

var _ uow.Locker = (*RedisLocker)(nil)
