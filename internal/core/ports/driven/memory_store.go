package driven

import (
	"context"

	"github.com/custodia-labs/sercha-research/internal/core/domain"
)

// MemoryStore persists research findings (PostgreSQL or in-process)
type MemoryStore interface {
	// Memorize stores a record and returns its receipt
	Memorize(ctx context.Context, record *domain.MemoryRecord) (*domain.MemoryReceipt, error)

	// Get retrieves a record by ID
	Get(ctx context.Context, id string) (*domain.MemoryRecord, error)

	// List returns the most recent records, newest first
	List(ctx context.Context, limit int) ([]*domain.MemoryRecord, error)
}
