package uow

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSortedUnique(t *testing.T) {
	assert.Equal(t, []string{"a", "b", "c"}, SortedUnique([]string{"c", "a", "b", "a"}))
	assert.Empty(t, SortedUnique(nil))
}

func TestKeys(t *testing.T) {
	tenantID, id := uuid.New(), uuid.New()
	assert.NotEqual(t, ProductKey(tenantID, id), ReceivableKey(tenantID, id))
	assert.Contains(t, ProductKey(tenantID, id), id.String())
}

type recordingLocker struct {
	acquired []string
	released bool
	err      error
}

func (l *recordingLocker) Acquire(_ context.Context, keys ...string) (func(), error) {
	if l.err != nil {
		return nil, l.err
	}
	l.acquired = keys
	return func() { l.released = true }, nil
}

type funcScope func(ctx context.Context, fn func(Repositories) error) error

func (f funcScope) Execute(ctx context.Context, fn func(Repositories) error) error {
	return f(ctx, fn)
}

func TestWithLocks(t *testing.T) {
	t.Run("releases after the transaction", func(t *testing.T) {
		locker := &recordingLocker{}
		var releasedDuringTx bool
		scope := funcScope(func(ctx context.Context, fn func(Repositories) error) error {
			releasedDuringTx = locker.released
			return fn(nil)
		})

		err := WithLocks(context.Background(), locker, scope, []string{"k1", "k2"}, func(Repositories) error { return nil })
		require.NoError(t, err)
		assert.Equal(t, []string{"k1", "k2"}, locker.acquired)
		assert.False(t, releasedDuringTx)
		assert.True(t, locker.released)
	})

	t.Run("lock failure skips the transaction", func(t *testing.T) {
		boom := errors.New("busy")
		locker := &recordingLocker{err: boom}
		called := false
		scope := funcScope(func(ctx context.Context, fn func(Repositories) error) error {
			called = true
			return nil
		})
		err := WithLocks(context.Background(), locker, scope, []string{"k"}, func(Repositories) error { return nil })
		assert.ErrorIs(t, err, boom)
		assert.False(t, called)
	})
}
