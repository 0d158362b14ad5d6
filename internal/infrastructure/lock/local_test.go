package lock

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/retail/backoffice/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalLocker_SerializesSameKey(t *testing.T) {
	l := NewLocalLocker(time.Second)
	var inside, maxInside int32

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			release, err := l.Acquire(context.Background(), "product:1")
			if !assert.NoError(t, err) {
				return
			}
			n := atomic.AddInt32(&inside, 1)
			for {
				m := atomic.LoadInt32(&maxInside)
				if n <= m || atomic.CompareAndSwapInt32(&maxInside, m, n) {
					break
				}
			}
			time.Sleep(2 * time.Millisecond)
			atomic.AddInt32(&inside, -1)
			release()
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), maxInside)
	assert.Zero(t, l.Len())
}

func TestLocalLocker_DistinctKeysDoNotBlock(t *testing.T) {
	l := NewLocalLocker(50 * time.Millisecond)

	releaseA, err := l.Acquire(context.Background(), "a")
	require.NoError(t, err)
	defer releaseA()

	releaseB, err := l.Acquire(context.Background(), "b")
	require.NoError(t, err)
	releaseB()
}

func TestLocalLocker_TimesOutWithConflict(t *testing.T) {
	l := NewLocalLocker(20 * time.Millisecond)

	release, err := l.Acquire(context.Background(), "a")
	require.NoError(t, err)

	_, err = l.Acquire(context.Background(), "b", "a")
	require.Error(t, err)
	assert.ErrorIs(t, err, shared.ErrConcurrencyConflict)

	release()
	assert.Zero(t, l.Len(), "a failed acquire must not leak b")

	release2, err := l.Acquire(context.Background(), "a", "b")
	require.NoError(t, err)
	release2()
}

func TestLocalLocker_CancelledContext(t *testing.T) {
	l := NewLocalLocker(0)
	release, err := l.Acquire(context.Background(), "a")
	require.NoError(t, err)
	defer release()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = l.Acquire(ctx, "a")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestLocalLocker_ReleaseIsIdempotent(t *testing.T) {
	l := NewLocalLocker(time.Second)
	release, err := l.Acquire(context.Background(), "a", "a")
	require.NoError(t, err)
	release()
	release()

	again, err := l.Acquire(context.Background(), "a")
	require.NoError(t, err)
	again()
}
