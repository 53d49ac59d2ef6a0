package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-redsync/redsync/v4"

	"github.com/xraph/bossbat/store"
)

type lock struct {
	mutex *redsync.Mutex
}

// Acquire tries once to take the named redsync mutex for ttl.
func (s *Store) Acquire(ctx context.Context, name string, ttl time.Duration) (store.Lock, error) {
	m := s.locks.NewMutex(name,
		redsync.WithExpiry(ttl),
		redsync.WithTries(1),
	)
	if err := m.LockContext(ctx); err != nil {
		if isContention(err) {
			return nil, store.ErrLockNotAcquired
		}
		return nil, fmt.Errorf("bossbat/redis: lock %s: %w", name, err)
	}
	return &lock{mutex: m}, nil
}

// Release unlocks the mutex. A lock that already expired, or was taken over
// after expiring, is not an error.
func (l *lock) Release(ctx context.Context) error {
	if _, err := l.mutex.UnlockContext(ctx); err != nil {
		if isExpired(err) || isContention(err) {
			return nil
		}
		return fmt.Errorf("bossbat/redis: unlock %s: %w", l.mutex.Name(), err)
	}
	return nil
}

func isContention(err error) bool {
	var taken *redsync.ErrTaken
	var nodeTaken *redsync.ErrNodeTaken
	return errors.Is(err, redsync.ErrFailed) ||
		errors.As(err, &taken) ||
		errors.As(err, &nodeTaken)
}

func isExpired(err error) bool {
	if errors.Is(err, redsync.ErrLockAlreadyExpired) {
		return true
	}
	var rerr *redsync.RedisError
	return errors.As(err, &rerr) && errors.Is(rerr.Err, redsync.ErrLockAlreadyExpired)
}
