package ports

import (
	"context"
	"time"
)

// UnlockFunc releases a distributed lock.
type UnlockFunc func(ctx context.Context) error

// DistributedLocker coordinates access to one user's session across replicas.
// The in-process per-user lock of the session manager is always taken first.
type DistributedLocker interface {
	// Lock blocks until the lock for key is held or ctx is done.
	// The lock expires after ttl if the holder never releases it.
	Lock(ctx context.Context, key string, ttl time.Duration) (UnlockFunc, error)
}
