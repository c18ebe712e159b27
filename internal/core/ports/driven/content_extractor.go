package driven

import (
	"context"

	"github.com/custodia-labs/sercha-research/internal/core/domain"
)

// ContentExtractor fetches web pages and turns them into readable documents
type ContentExtractor interface {
	// Extract fetches url and returns its readable content
	Extract(ctx context.Context, url string) (*domain.ExtractedDocument, error)

	// Chunk splits text on natural boundaries into pieces of about
	// chunkSize characters, each overlapping the previous by chunkOverlap.
	Chunk(text string, chunkSize, chunkOverlap int) []string
}
