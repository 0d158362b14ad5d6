// Package lock provides the keyed locks that serialize FIFO consumption per
// product and settlement per receivable across concurrent requests.
package lock

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/retail/backoffice/internal/application/uow"
	"github.com/retail/backoffice/internal/domain/shared"
	"github.com/retail/backoffice/internal/infrastructure/config"
	"go.uber.org/zap"
)

// New builds the locker selected by cfg.Driver. The redis driver needs rdb.
func New(cfg config.LockConfig, rdb *redis.Client, logger *zap.Logger) (uow.Locker, error) {
	switch cfg.Driver {
	case config.LockDriverRedis:
		if rdb == nil {
			return nil, errors.New("lock: redis driver selected without a redis client")
		}
		return NewRedisLocker(rdb, cfg, logger), nil
	case config.LockDriverLocal, "":
		return NewLocalLocker(cfg.MaxWait), nil
	default:
		return nil, fmt.Errorf("lock: unknown driver %q", cfg.Driver)
	}
}

// waitContext bounds ctx by maxWait when maxWait is positive
func waitContext(ctx context.Context, maxWait time.Duration) (context.Context, context.CancelFunc) {
	if maxWait <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, maxWait)
}

// conflict reports a key that could not be obtained in time. A cancelled
// caller context is passed through unchanged.
func conflict(parent context.Context, key string, cause error) error {
	if parent.Err() != nil {
		return parent.Err()
	}
	return shared.WrapDomainError(shared.CodeConcurrencyConflict,
		fmt.Sprintf("resource %s is busy, retry later", key), cause)
}
