package mocks

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/custodia-labs/sercha-research/internal/core/domain"
	"github.com/custodia-labs/sercha-research/internal/core/ports/driven"
)

// Ensure MockContentExtractor implements ContentExtractor
var _ driven.ContentExtractor = (*MockContentExtractor)(nil)

// MockContentExtractor is a mock implementation of ContentExtractor for testing.
// Pages are served from a map keyed by URL; unknown URLs fail.
type MockContentExtractor struct {
	mu    sync.RWMutex
	pages map[string]*domain.ExtractedDocument
	errs  map[string]error
	calls []string
}

// NewMockContentExtractor creates a new MockContentExtractor
func NewMockContentExtractor() *MockContentExtractor {
	return &MockContentExtractor{
		pages: make(map[string]*domain.ExtractedDocument),
		errs:  make(map[string]error),
	}
}

// AddPage registers a document served for its URL
func (m *MockContentExtractor) AddPage(doc *domain.ExtractedDocument) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pages[doc.URL] = doc
}

// AddError makes extraction of url fail with err
func (m *MockContentExtractor) AddError(url string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errs[url] = err
}

func (m *MockContentExtractor) Extract(ctx context.Context, url string) (*domain.ExtractedDocument, error) {
	m.mu.Lock()
	m.calls = append(m.calls, url)
	m.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()
	if err, ok := m.errs[url]; ok {
		return nil, err
	}
	doc, ok := m.pages[url]
	if !ok {
		return nil, fmt.Errorf("%w: %s: no page", domain.ErrExtractionFailed, url)
	}
	cp := *doc
	return &cp, nil
}

// Chunk splits text into fixed windows of chunkSize runes
func (m *MockContentExtractor) Chunk(text string, chunkSize, chunkOverlap int) []string {
	if strings.TrimSpace(text) == "" {
		return nil
	}
	if chunkSize <= 0 {
		chunkSize = 1000
	}
	runes := []rune(text)
	var chunks []string
	for start := 0; start < len(runes); start += chunkSize {
		end := start + chunkSize
		if end > len(runes) {
			end = len(runes)
		}
		chunks = append(chunks, string(runes[start:end]))
	}
	return chunks
}

// ExtractCalls returns the URLs passed to Extract, in call order
func (m *MockContentExtractor) ExtractCalls() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]string, len(m.calls))
	copy(out, m.calls)
	return out
}
