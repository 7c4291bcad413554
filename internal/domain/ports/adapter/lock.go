package adapter

import (
	"context"
	"errors"
	"time"
)

var ErrLockHeld = errors.New("lock held by another owner")

// Locker provides short-lived mutual exclusion keyed by string.
// TryLock reports contention as ErrLockHeld so callers can tell it apart
// from infrastructure failures.
type Locker interface {
	TryLock(ctx context.Context, key string, ttl time.Duration) (token string, err error)
	Unlock(ctx context.Context, key, token string) error
}
