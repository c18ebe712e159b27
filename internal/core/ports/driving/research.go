package driving

import (
	"context"

	"github.com/custodia-labs/sercha-research/internal/core/domain"
)

// ResearchService runs web research for front ends (HTTP, MCP, CLI)
type ResearchService interface {
	// Research runs the reasoning loop for a request and post-processes
	// the results according to the request mode.
	Research(ctx context.Context, req domain.ResearchRequest) (*domain.ResearchResponse, error)

	// Search runs a single fallback search without the reasoning loop
	Search(ctx context.Context, query domain.SearchQuery) (*domain.SearchResponse, error)

	// Extract fetches and extracts one page
	Extract(ctx context.Context, url string) (*domain.ExtractedDocument, error)

	// CacheStats reports the state of the result cache
	CacheStats(ctx context.Context) domain.CacheStats

	// ClearCache empties both cache tiers
	ClearCache(ctx context.Context) error
}
