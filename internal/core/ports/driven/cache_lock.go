package driven

import (
	"context"
	"time"
)

// CacheLock serialises maintenance of a cold cache tier shared by several
// instances, such as size-bound eviction.
type CacheLock interface {
	// TryAcquire takes the named lock without blocking. It returns false
	// when another holder has it. The lock expires after ttl.
	TryAcquire(ctx context.Context, name string, ttl time.Duration) (bool, error)

	// Release drops the named lock if this instance holds it
	Release(ctx context.Context, name string) error
}
