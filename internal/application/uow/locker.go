package uow

import (
	"context"
	"fmt"
	"sort"

	"github.com/google/uuid"
)

// Locker hands out exclusive keyed locks that span a whole operation.
// Keys are acquired before the database transaction starts.
type Locker interface {
	// Acquire obtains every key and returns a function releasing them all.
	// Implementations acquire keys in sorted order so that two callers
	// asking for overlapping key sets never deadlock.
	Acquire(ctx context.Context, keys ...string) (release func(), err error)
}

// ProductKey is the lock key serializing FIFO consumption of a product
func ProductKey(tenantID, productID uuid.UUID) string {
	return fmt.Sprintf("ledger:product:%s:%s", tenantID, productID)
}

// ReceivableKey is the lock key serializing settlements of a receivable
func ReceivableKey(tenantID, receivableID uuid.UUID) string {
	return fmt.Sprintf("ledger:receivable:%s:%s", tenantID, receivableID)
}

// SortedUnique returns keys sorted with duplicates removed
func SortedUnique(keys []string) []string {
	out := make([]string, 0, len(keys))
	seen := make(map[string]struct{}, len(keys))
	for _, k := range keys {
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// WithLocks acquires keys, runs fn inside a transaction and releases the
// keys once the transaction has committed or rolled back
func WithLocks(ctx context.Context, locker Locker, scope TransactionScope, keys []string, fn func(repos Repositories) error) error {
	release, err := locker.Acquire(ctx, keys...)
	if err != nil {
		return err
	}
	defer release()
	return scope.Execute(ctx, fn)
}
