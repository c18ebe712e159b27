package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/custodia-labs/sercha-research/internal/core/domain"
	"github.com/custodia-labs/sercha-research/internal/core/ports/driven"
	"github.com/custodia-labs/sercha-research/internal/runtime"
)

// DefaultSearchTimeout bounds each provider call
const DefaultSearchTimeout = 30 * time.Second

// FallbackSearchCoordinator runs one query against an ordered list of
// providers until enough results are gathered. Results keep provider
// priority order with each provider's own ranking, deduplicated by URL.
type FallbackSearchCoordinator struct {
	services        *runtime.Services
	chain           []domain.ProviderID
	fallbackEnabled bool
	timeout         time.Duration
	logger          *slog.Logger
}

// FallbackSearchConfig holds dependencies for FallbackSearchCoordinator.
type FallbackSearchConfig struct {
	Services        *runtime.Services
	FallbackChain   []domain.ProviderID // Default brave, duckduckgo, google
	DisableFallback bool                // Stop at the first provider failure
	Timeout         time.Duration       // Per provider, default 30s
	Logger          *slog.Logger
}

// NewFallbackSearchCoordinator creates a new coordinator.
func NewFallbackSearchCoordinator(cfg FallbackSearchConfig) *FallbackSearchCoordinator {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	chain := cfg.FallbackChain
	if len(chain) == 0 {
		chain = domain.DefaultFallbackChain()
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultSearchTimeout
	}

	return &FallbackSearchCoordinator{
		services:        cfg.Services,
		chain:           chain,
		fallbackEnabled: !cfg.DisableFallback,
		timeout:         timeout,
		logger:          logger.With("component", "fallback_search"),
	}
}

// FallbackChain returns the configured provider priority order
func (c *FallbackSearchCoordinator) FallbackChain() []domain.ProviderID {
	out := make([]domain.ProviderID, len(c.chain))
	copy(out, c.chain)
	return out
}

// Search runs q against its sources in order. Provider failures are
// recorded in the response and the next provider is tried. When fallback
// is disabled the first failure stops the search: the partial response is
// returned together with an error wrapping domain.ErrFallbackDisabled.
func (c *FallbackSearchCoordinator) Search(ctx context.Context, q domain.SearchQuery) (*domain.SearchResponse, error) {
	return c.search(ctx, q, c.fallbackEnabled)
}

// SearchWithFallback is Search with a per-call fallback policy. A caller
// can turn fallback off for one search but not on when it is disabled.
func (c *FallbackSearchCoordinator) SearchWithFallback(ctx context.Context, q domain.SearchQuery, fallback bool) (*domain.SearchResponse, error) {
	return c.search(ctx, q, fallback && c.fallbackEnabled)
}

func (c *FallbackSearchCoordinator) search(ctx context.Context, q domain.SearchQuery, fallback bool) (*domain.SearchResponse, error) {
	maxResults := q.MaxResults
	if maxResults <= 0 {
		maxResults = domain.DefaultMaxResults
	}

	resp := &domain.SearchResponse{
		Query:         q.Text,
		ProvidersUsed: []domain.ProviderID{},
	}
	var collected []domain.SearchResult

	for _, id := range c.resolveSources(q) {
		if ctx.Err() != nil {
			c.logger.Warn("search cancelled", "query", q.Text, "error", ctx.Err())
			break
		}

		results, err := c.searchProvider(ctx, id, q.Text, maxResults)
		if err != nil {
			c.logger.Warn("provider search failed", "provider", id, "error", err)
			resp.Errors = append(resp.Errors, domain.ProviderError{Provider: id, Message: err.Error()})
			if !fallback {
				finishResponse(resp, collected, maxResults)
				return resp, fmt.Errorf("%w: %s: %v", domain.ErrFallbackDisabled, id, err)
			}
			continue
		}
		if len(results) == 0 {
			c.logger.Debug("provider returned no results", "provider", id)
			continue
		}

		collected = append(collected, results...)
		resp.ProvidersUsed = append(resp.ProvidersUsed, id)
		if len(dedupeByURL(collected)) >= maxResults {
			break
		}
	}

	finishResponse(resp, collected, maxResults)
	c.logger.Info("search completed",
		"query", q.Text,
		"results", len(resp.Results),
		"providers_used", resp.ProvidersUsed,
		"errors", len(resp.Errors),
	)
	return resp, nil
}

// resolveSources expands "auto" (or no sources) into the configured chain,
// filtered to registered providers. Explicit sources are kept as given so
// unavailable ones surface as provider errors.
func (c *FallbackSearchCoordinator) resolveSources(q domain.SearchQuery) []domain.ProviderID {
	if q.WantsAuto() {
		if c.services == nil {
			return nil
		}
		return c.services.Resolve(c.chain)
	}

	seen := make(map[domain.ProviderID]bool, len(q.Sources))
	out := make([]domain.ProviderID, 0, len(q.Sources))
	for _, id := range q.Sources {
		if seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}

func (c *FallbackSearchCoordinator) searchProvider(ctx context.Context, id domain.ProviderID, query string, maxResults int) ([]domain.SearchResult, error) {
	var provider driven.SearchProvider
	if c.services != nil {
		provider, _ = c.services.Provider(id)
	}
	if provider == nil {
		switch id {
		case domain.ProviderBrave, domain.ProviderGoogle:
			return nil, fmt.Errorf("%s: %w", id, domain.ErrMissingCredentials)
		default:
			return nil, fmt.Errorf("%s: %w", id, domain.ErrProviderUnavailable)
		}
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	results, err := provider.Search(ctx, query, maxResults)
	if err != nil {
		return nil, err
	}
	for i := range results {
		if results[i].Provider == "" {
			results[i].Provider = id
		}
	}
	return results, nil
}

// finishResponse deduplicates collected into resp and sets the totals
func finishResponse(resp *domain.SearchResponse, collected []domain.SearchResult, maxResults int) {
	unique := dedupeByURL(collected)
	resp.TotalResults = len(unique)
	if len(unique) > maxResults {
		unique = unique[:maxResults]
	}
	resp.Results = unique
	resp.Success = len(unique) > 0
}

// dedupeByURL keeps the first result for each URL, preserving order.
// Results without a URL are dropped.
func dedupeByURL(results []domain.SearchResult) []domain.SearchResult {
	seen := make(map[string]bool, len(results))
	out := make([]domain.SearchResult, 0, len(results))
	for _, r := range results {
		if r.URL == "" || seen[r.URL] {
			continue
		}
		seen[r.URL] = true
		out = append(out, r)
	}
	return out
}
