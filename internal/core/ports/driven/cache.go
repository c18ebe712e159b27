package driven

import (
	"context"

	"github.com/custodia-labs/sercha-research/internal/core/domain"
)

// HotCache is the in-process cache tier. Implementations must be safe for
// concurrent use.
type HotCache interface {
	Get(fingerprint string) (domain.HotEntry, bool)
	Set(fingerprint string, entry domain.HotEntry)
	Delete(fingerprint string)
	Clear()
	Len() int
}

// ColdCache is the persistent cache tier (sharded files or Redis).
type ColdCache interface {
	// Read returns the entry for fingerprint, or domain.ErrNotFound
	Read(ctx context.Context, fingerprint string) (*domain.CacheEntry, error)

	// Write persists the entry, replacing any previous value
	Write(ctx context.Context, entry *domain.CacheEntry) error

	// Delete removes the entry. Deleting a missing entry is not an error.
	Delete(ctx context.Context, fingerprint string) error

	// Entries lists size and modification time of every persisted entry
	Entries(ctx context.Context) ([]domain.ColdEntryInfo, error)

	// Clear removes every entry
	Clear(ctx context.Context) error
}
