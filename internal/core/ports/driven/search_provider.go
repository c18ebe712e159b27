package driven

import (
	"context"

	"github.com/custodia-labs/sercha-research/internal/core/domain"
)

// SearchProvider queries one web search backend (Brave, DuckDuckGo, Google)
type SearchProvider interface {
	// Name returns the provider identifier
	Name() domain.ProviderID

	// Search returns up to maxResults hits in provider rank order.
	// Implementations must honour ctx cancellation.
	Search(ctx context.Context, query string, maxResults int) ([]domain.SearchResult, error)
}
