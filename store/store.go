package store

import (
	"context"
	"errors"
	"time"
)

// ErrLockNotAcquired is returned by Locker.Acquire when another holder owns
// the lock. It is expected control flow, not a failure.
var ErrLockNotAcquired = errors.New("bossbat: lock not acquired")

// KeyStore is the conditional write surface of the shared store.
type KeyStore interface {
	// SetNX creates key with value and expiry ttl only if key is absent.
	// It reports whether the key was created. An existing key is left
	// untouched, including its expiry.
	SetNX(ctx context.Context, key, value string, ttl time.Duration) (bool, error)

	// Del removes key. Deleting an absent key is not an error. Deletion
	// never produces an expiration event.
	Del(ctx context.Context, key string) error
}

// ExpiryFeed delivers the names of keys that expired in the observed
// logical database. Values are never delivered.
type ExpiryFeed interface {
	// Expirations subscribes to the feed. The channel is closed once ctx
	// is done or the subscription ends.
	Expirations(ctx context.Context) (<-chan string, error)
}

// Lock is a held mutual-exclusion token.
type Lock interface {
	// Release gives the lock up. Releasing a lock that already expired is
	// not an error.
	Release(ctx context.Context) error
}

// Locker hands out short-lived locks with no built-in retry.
type Locker interface {
	// Acquire tries once to take the lock called name for at most ttl.
	// Contention yields ErrLockNotAcquired.
	Acquire(ctx context.Context, name string, ttl time.Duration) (Lock, error)
}

// Store is the aggregate interface a backend implements.
type Store interface {
	KeyStore
	ExpiryFeed
	Locker

	// Ping checks store connectivity.
	Ping(ctx context.Context) error

	// Close releases resources owned by the store.
	Close() error
}
