package cache

import (
	"github.com/redis/go-redis/v9"
	"github.com/retail/backoffice/internal/domain/shared"
	"go.uber.org/zap"
)

// NewIdempotencyStore returns a Redis-backed store when rdb is set and an
// in-memory one otherwise. The in-memory fallback is logged because it does
// not protect against replays reaching a different instance.
func NewIdempotencyStore(rdb *redis.Client, logger *zap.Logger) shared.IdempotencyStore {
	if rdb != nil {
		return NewRedisIdempotencyStore(rdb, "")
	}
	if logger != nil {
		logger.Warn("Redis not configured, sync idempotency is tracked in memory on this instance only")
	}
	return NewInMemoryIdempotencyStore(0)
}
