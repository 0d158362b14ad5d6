package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/retail/backoffice/internal/domain/shared"
)

// DefaultSyncKeyPrefix namespaces applied sync change IDs in Redis
const DefaultSyncKeyPrefix = "ledger:sync:applied:"

// RedisIdempotencyStore remembers applied change IDs in Redis so that every
// instance behind the load balancer sees the same history
type RedisIdempotencyStore struct {
	client    *redis.Client
	keyPrefix string
}

// NewRedisIdempotencyStore creates a store on a shared client. The client's
// lifetime belongs to the caller.
func NewRedisIdempotencyStore(client *redis.Client, keyPrefix string) *RedisIdempotencyStore {
	if keyPrefix == "" {
		keyPrefix = DefaultSyncKeyPrefix
	}
	return &RedisIdempotencyStore{client: client, keyPrefix: keyPrefix}
}

// MarkProcessed claims id with SET NX and a TTL. It returns false when the
// id was already claimed.
func (s *RedisIdempotencyStore) MarkProcessed(ctx context.Context, id string, ttl time.Duration) (bool, error) {
	ok, err := s.client.SetNX(ctx, s.keyPrefix+id, time.Now().UTC().Format(time.RFC3339), ttl).Result()
	if err != nil {
		return false, fmt.Errorf("failed to mark change %s as applied: %w", id, err)
	}
	return ok, nil
}

// IsProcessed reports whether id has been claimed and not yet expired
func (s *RedisIdempotencyStore) IsProcessed(ctx context.Context, id string) (bool, error) {
	n, err := s.client.Exists(ctx, s.keyPrefix+id).Result()
	if err != nil {
		return false, fmt.Errorf("failed to look up change %s: %w", id, err)
	}
	return n > 0, nil
}

// Forget drops a claim so a change whose transaction failed can be retried
func (s *RedisIdempotencyStore) Forget(ctx context.Context, id string) error {
	return s.client.Del(ctx, s.keyPrefix+id).Err()
}

// Close is a no-op; the shared client is closed by its owner
func (s *RedisIdempotencyStore) Close() error {
	return nil
}

var _ shared.IdempotencyStore = (*RedisIdempotencyStore)(nil)
