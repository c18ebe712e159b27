package mocks

import (
	"context"
	"sync"

	"github.com/custodia-labs/sercha-research/internal/core/domain"
	"github.com/custodia-labs/sercha-research/internal/core/ports/driven"
)

// Ensure MockSearchProvider implements SearchProvider
var _ driven.SearchProvider = (*MockSearchProvider)(nil)

// MockSearchProvider is a mock implementation of SearchProvider for testing.
// It returns canned results, or Err when set, and records every query.
type MockSearchProvider struct {
	mu      sync.RWMutex
	name    domain.ProviderID
	results []domain.SearchResult
	err     error
	queries []string
}

// NewMockSearchProvider creates a provider returning results
func NewMockSearchProvider(name domain.ProviderID, results ...domain.SearchResult) *MockSearchProvider {
	return &MockSearchProvider{name: name, results: results}
}

// NewFailingSearchProvider creates a provider that always returns err
func NewFailingSearchProvider(name domain.ProviderID, err error) *MockSearchProvider {
	return &MockSearchProvider{name: name, err: err}
}

func (m *MockSearchProvider) Name() domain.ProviderID {
	return m.name
}

func (m *MockSearchProvider) Search(ctx context.Context, query string, maxResults int) ([]domain.SearchResult, error) {
	m.mu.Lock()
	m.queries = append(m.queries, query)
	m.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.err != nil {
		return nil, m.err
	}

	n := len(m.results)
	if maxResults > 0 && n > maxResults {
		n = maxResults
	}
	out := make([]domain.SearchResult, n)
	copy(out, m.results[:n])
	return out, nil
}

// SetResults replaces the canned results
func (m *MockSearchProvider) SetResults(results ...domain.SearchResult) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.results = results
	m.err = nil
}

// SetError makes subsequent searches fail
func (m *MockSearchProvider) SetError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

// Calls returns the number of Search invocations
func (m *MockSearchProvider) Calls() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.queries)
}
