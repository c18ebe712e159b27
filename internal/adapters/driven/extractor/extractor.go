// Package extractor fetches web pages and converts them into readable
// documents through the normaliser registry.
package extractor

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/custodia-labs/sercha-research/internal/core/domain"
	"github.com/custodia-labs/sercha-research/internal/core/ports/driven"
	"github.com/custodia-labs/sercha-research/internal/normalisers"
	"github.com/custodia-labs/sercha-research/internal/postprocessors"
)

// Verify interface compliance
var _ driven.ContentExtractor = (*Extractor)(nil)

// Extractor defaults
const (
	DefaultTimeout   = 30 * time.Second
	DefaultUserAgent = "SerchaResearch/1.0"
	DefaultMaxBytes  = 10 << 20

	excerptLength = 200
)

// Extractor implements driven.ContentExtractor over HTTP.
type Extractor struct {
	client    *http.Client
	registry  *normalisers.Registry
	userAgent string
	timeout   time.Duration
	maxBytes  int64
	logger    *slog.Logger
}

// Config holds extractor options.
type Config struct {
	HTTPClient         *http.Client
	Registry           *normalisers.Registry // Default normalisers.DefaultRegistry
	UserAgent          string
	Timeout            time.Duration // Per page, default 30s
	MaxBytes           int64         // Response body limit, default 10MB
	PreserveInlineCode bool          // Used with the default registry
	Logger             *slog.Logger
}

// New creates a new Extractor.
func New(cfg Config) *Extractor {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	client := cfg.HTTPClient
	if client == nil {
		client = &http.Client{}
	}
	registry := cfg.Registry
	if registry == nil {
		registry = normalisers.DefaultRegistry(cfg.PreserveInlineCode)
	}
	ua := cfg.UserAgent
	if ua == "" {
		ua = DefaultUserAgent
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	maxBytes := cfg.MaxBytes
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBytes
	}

	return &Extractor{
		client:    client,
		registry:  registry,
		userAgent: ua,
		timeout:   timeout,
		maxBytes:  maxBytes,
		logger:    logger.With("component", "extractor"),
	}
}

// Extract fetches url and returns its readable content. Failures wrap
// domain.ErrExtractionFailed.
func (e *Extractor) Extract(ctx context.Context, url string) (*domain.ExtractedDocument, error) {
	if strings.TrimSpace(url) == "" {
		return nil, fmt.Errorf("%w: url is required", domain.ErrInvalidInput)
	}

	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	page, fetch, err := e.fetch(ctx, url)
	if err != nil {
		e.logger.Error("failed to fetch page", "url", url, "error", err)
		return nil, fmt.Errorf("%w: %s: %v", domain.ErrExtractionFailed, url, err)
	}

	normaliser := e.registry.Get(page.ContentType)
	if normaliser == nil {
		return nil, fmt.Errorf("%w: %s: unsupported content type %q", domain.ErrExtractionFailed, url, page.ContentType)
	}

	doc, err := normaliser.Normalise(page)
	if err != nil {
		e.logger.Error("failed to normalise page", "url", url, "error", err)
		return nil, fmt.Errorf("%w: %s: %v", domain.ErrExtractionFailed, url, err)
	}

	doc.URL = url
	doc.Fetch = fetch
	doc.Excerpt = Excerpt(doc.PlainText, excerptLength)
	doc.Metrics = domain.DocumentMetrics{
		WordCount:      len(strings.Fields(doc.PlainText)),
		CharCount:      utf8.RuneCountInString(doc.PlainText),
		ImageCount:     len(doc.Images),
		LinkCount:      len(doc.Links),
		CodeBlockCount: len(doc.CodeBlocks),
	}

	e.logger.Debug("page extracted", "url", url, "words", doc.Metrics.WordCount, "code_blocks", doc.Metrics.CodeBlockCount)
	return doc, nil
}

func (e *Extractor) fetch(ctx context.Context, url string) (normalisers.Page, domain.FetchMetadata, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return normalisers.Page{}, domain.FetchMetadata{}, err
	}
	req.Header.Set("User-Agent", e.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.5")
	req.Header.Set("DNT", "1")

	resp, err := e.client.Do(req)
	if err != nil {
		return normalisers.Page{}, domain.FetchMetadata{}, err
	}
	defer resp.Body.Close()

	meta := domain.FetchMetadata{
		StatusCode:  resp.StatusCode,
		ContentType: resp.Header.Get("Content-Type"),
		FinalURL:    resp.Request.URL.String(),
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return normalisers.Page{}, meta, fmt.Errorf("http status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, e.maxBytes+1))
	if err != nil {
		return normalisers.Page{}, meta, err
	}
	if int64(len(body)) > e.maxBytes {
		return normalisers.Page{}, meta, errors.New("response body too large")
	}

	contentType := meta.ContentType
	if contentType == "" {
		contentType = http.DetectContentType(body)
	}

	return normalisers.Page{URL: meta.FinalURL, ContentType: contentType, Body: body}, meta, nil
}

// Chunk splits text on paragraph, sentence and word boundaries.
func (e *Extractor) Chunk(text string, chunkSize, chunkOverlap int) []string {
	return postprocessors.ContentAwarePipeline(chunkSize, chunkOverlap).Split(text)
}

// Excerpt collapses whitespace and shortens text to at most maxLen runes,
// ending at a sentence when one closes in the last fifth, otherwise at a
// word followed by "...".
func Excerpt(text string, maxLen int) string {
	runes := []rune(strings.Join(strings.Fields(text), " "))
	if len(runes) <= maxLen {
		return string(runes)
	}

	cut := runes[:maxLen]
	if period := lastRune(cut, '.'); float64(period) > float64(maxLen)*0.8 {
		return string(cut[:period+1])
	}
	if space := lastRune(cut, ' '); space > 0 {
		return string(cut[:space]) + "..."
	}
	return string(cut) + "..."
}

func lastRune(rs []rune, r rune) int {
	for i := len(rs) - 1; i >= 0; i-- {
		if rs[i] == r {
			return i
		}
	}
	return -1
}
