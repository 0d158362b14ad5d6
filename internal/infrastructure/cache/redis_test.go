package cache

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/retail/backoffice/internal/infrastructure/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func unreachableClient() *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 50 * time.Millisecond,
		MaxRetries:  -1,
	})
}

func TestNewRedisClient_Unreachable(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	_, err := NewRedisClient(ctx, config.RedisConfig{Host: "127.0.0.1", Port: 1})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "127.0.0.1:1")
}

func TestRedisIdempotencyStore_WrapsErrors(t *testing.T) {
	client := unreachableClient()
	defer client.Close()
	store := NewRedisIdempotencyStore(client, "")

	_, err := store.MarkProcessed(context.Background(), "c-1", time.Minute)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "c-1")

	_, err = store.IsProcessed(context.Background(), "c-1")
	assert.Error(t, err)
	assert.NoError(t, store.Close())
}

func TestNewIdempotencyStore_UsesRedisWhenConfigured(t *testing.T) {
	client := unreachableClient()
	defer client.Close()

	store := NewIdempotencyStore(client, nil)
	rs, ok := store.(*RedisIdempotencyStore)
	require.True(t, ok)
	assert.Equal(t, DefaultSyncKeyPrefix, rs.keyPrefix)
}
