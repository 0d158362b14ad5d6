package lock

import (
	"context"
	"sync"
	"time"

	"github.com/retail/backoffice/internal/application/uow"
)

// LocalLocker serializes keys inside one process. Each key owns a one-slot
// channel; entries are reference counted and removed once nobody holds or
// waits on them.
type LocalLocker struct {
	mu      sync.Mutex
	keys    map[string]*keyLock
	maxWait time.Duration
}

type keyLock struct {
	slot chan struct{}
	refs int
}

// NewLocalLocker creates a LocalLocker. maxWait <= 0 waits as long as ctx allows.
func NewLocalLocker(maxWait time.Duration) *LocalLocker {
	return &LocalLocker{keys: make(map[string]*keyLock), maxWait: maxWait}
}

// Acquire takes every key in sorted order and returns a release func
func (l *LocalLocker) Acquire(ctx context.Context, keys ...string) (func(), error) {
	waitCtx, cancel := waitContext(ctx, l.maxWait)
	defer cancel()

	sorted := uow.SortedUnique(keys)
	held := make([]string, 0, len(sorted))
	for _, key := range sorted {
		if err := l.lock(waitCtx, key); err != nil {
			l.unlockAll(held)
			return nil, conflict(ctx, key, err)
		}
		held = append(held, key)
	}

	var once sync.Once
	return func() { once.Do(func() { l.unlockAll(held) }) }, nil
}

func (l *LocalLocker) lock(ctx context.Context, key string) error {
	l.mu.Lock()
	k, ok := l.keys[key]
	if !ok {
		k = &keyLock{slot: make(chan struct{}, 1)}
		l.keys[key] = k
	}
	k.refs++
	l.mu.Unlock()

	select {
	case k.slot <- struct{}{}:
		return nil
	case <-ctx.Done():
		l.drop(key, k)
		return ctx.Err()
	}
}

func (l *LocalLocker) unlockAll(keys []string) {
	for i := len(keys) - 1; i >= 0; i-- {
		l.mu.Lock()
		k := l.keys[keys[i]]
		l.mu.Unlock()
		<-k.slot
		l.drop(keys[i], k)
	}
}

func (l *LocalLocker) drop(key string, k *keyLock) {
	l.mu.Lock()
	defer l.mu.Unlock()
	k.refs--
	if k.refs == 0 {
		delete(l.keys, key)
	}
}

// Len returns the number of keys currently held or waited on
func (l *LocalLocker) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.keys)
}

var _ uow.Locker = (*LocalLocker)(nil)
