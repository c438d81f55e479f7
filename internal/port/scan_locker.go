package port

import (
	"context"
	"time"
)

type ScanLocker interface {
	// AcquireScanLock takes a short-lived advisory lock for the named
	// scan, returning false if another run already holds it
	AcquireScanLock(ctx context.Context, name string, ttl time.Duration) (bool, error)

	// ReleaseScanLock frees the lock before its TTL expires
	ReleaseScanLock(ctx context.Context, name string) error
}
