package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/custodia-labs/sercha-research/internal/core/domain"
	"github.com/custodia-labs/sercha-research/internal/core/ports/driven"
)

// Cache tool names used in handler cache keys
const (
	cacheToolSearch   = "fw_search"
	cacheToolExtract  = "fw_extract"
	cacheToolResearch = "fw_research"
)

// Chunking defaults
const (
	DefaultChunkSize    = 1000
	DefaultChunkOverlap = 200
)

// ActionHandlersConfig holds the backends the research actions run against.
type ActionHandlersConfig struct {
	Search       *FallbackSearchCoordinator
	Fallback     bool // Per-request fallback policy for SEARCH
	Extractor    driven.ContentExtractor
	Memory       driven.MemoryStore
	Cache        *CacheStore
	CacheKey     domain.KeyData // Key written by CACHE actions
	ChunkSize    int
	ChunkOverlap int
	Logger       *slog.Logger
}

// NewActionHandlers builds the handler set for one research run. Handlers
// whose backend is missing are left out, so the loop records a
// "no handler registered" error for them.
func NewActionHandlers(cfg ActionHandlersConfig) ActionHandlers {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.ChunkSize <= 0 {
		cfg.ChunkSize = DefaultChunkSize
	}
	if cfg.ChunkOverlap < 0 || cfg.ChunkOverlap >= cfg.ChunkSize {
		cfg.ChunkOverlap = min(DefaultChunkOverlap, cfg.ChunkSize/2)
	}

	h := &actionHandlers{cfg: cfg, logger: logger}
	handlers := ActionHandlers{
		domain.ActionChunk: HandlerFunc(h.chunk),
	}
	if cfg.Search != nil {
		handlers[domain.ActionSearch] = HandlerFunc(h.search)
	}
	if cfg.Extractor != nil {
		handlers[domain.ActionExtract] = HandlerFunc(h.extract)
	}
	if cfg.Memory != nil {
		handlers[domain.ActionMemorize] = HandlerFunc(h.memorize)
	}
	if cfg.Cache != nil {
		handlers[domain.ActionCache] = HandlerFunc(h.cache)
	}
	return handlers
}

type actionHandlers struct {
	cfg    ActionHandlersConfig
	logger *slog.Logger
}

func searchCacheKey(q domain.SearchQuery) domain.KeyData {
	return domain.KeyData{
		"tool":        cacheToolSearch,
		"query":       q.Text,
		"sources":     q.Sources,
		"max_results": q.MaxResults,
	}
}

func extractCacheKey(url string) domain.KeyData {
	return domain.KeyData{"tool": cacheToolExtract, "url": url}
}

func (h *actionHandlers) search(ctx context.Context, params domain.ActionParams) (any, error) {
	q := domain.SearchQuery{
		Text:       params.Query,
		Sources:    params.Sources,
		MaxResults: params.MaxResults,
	}
	key := searchCacheKey(q)

	if h.cfg.Cache != nil {
		var cached domain.SearchResponse
		if h.cfg.Cache.GetInto(ctx, key, &cached) {
			return &cached, nil
		}
	}

	resp, err := h.cfg.Search.SearchWithFallback(ctx, q, h.cfg.Fallback)
	if err != nil {
		return nil, err
	}
	if resp.Success && h.cfg.Cache != nil {
		h.cfg.Cache.Set(ctx, key, resp, 0)
	}
	return resp, nil
}

func (h *actionHandlers) extract(ctx context.Context, params domain.ActionParams) (any, error) {
	if params.URL == "" {
		return nil, fmt.Errorf("%w: extract requires a url", domain.ErrInvalidInput)
	}
	key := extractCacheKey(params.URL)

	if h.cfg.Cache != nil {
		var cached domain.ExtractedDocument
		if h.cfg.Cache.GetInto(ctx, key, &cached) {
			return &cached, nil
		}
	}

	doc, err := h.cfg.Extractor.Extract(ctx, params.URL)
	if err != nil {
		return nil, err
	}
	if doc.HasContent() && h.cfg.Cache != nil {
		h.cfg.Cache.Set(ctx, key, doc, 0)
	}
	return doc, nil
}

func (h *actionHandlers) chunk(_ context.Context, params domain.ActionParams) (any, error) {
	size := params.ChunkSize
	if size <= 0 {
		size = h.cfg.ChunkSize
	}
	overlap := params.ChunkOverlap
	if overlap <= 0 || overlap >= size {
		overlap = min(h.cfg.ChunkOverlap, size/2)
	}
	return chunkContent(h.cfg.Extractor, params.Content, params.Strategy, size, overlap), nil
}

// chunkContent splits content on natural boundaries when the strategy asks
// for it and an extractor is available, and in fixed windows otherwise.
func chunkContent(extractor driven.ContentExtractor, content string, strategy domain.ChunkStrategy, size, overlap int) []string {
	if strategy == "" {
		strategy = domain.ChunkAuto
	}
	if strategy.UseContentAware(len(content)) && extractor != nil {
		return extractor.Chunk(content, size, overlap)
	}
	return FixedChunks(content, size)
}

func (h *actionHandlers) memorize(ctx context.Context, params domain.ActionParams) (any, error) {
	if params.Record == nil {
		return nil, fmt.Errorf("%w: memorize requires a record", domain.ErrInvalidInput)
	}
	return h.cfg.Memory.Memorize(ctx, params.Record)
}

func (h *actionHandlers) cache(ctx context.Context, params domain.ActionParams) (any, error) {
	if h.cfg.CacheKey == nil {
		return false, fmt.Errorf("%w: no cache key for this run", domain.ErrInvalidInput)
	}
	return h.cfg.Cache.Set(ctx, h.cfg.CacheKey, params.Data, params.TTL), nil
}

// FixedChunks splits content into consecutive slices of size runes
func FixedChunks(content string, size int) []string {
	if content == "" {
		return []string{}
	}
	if size <= 0 {
		size = DefaultChunkSize
	}
	runes := []rune(content)
	chunks := make([]string, 0, len(runes)/size+1)
	for start := 0; start < len(runes); start += size {
		end := min(start+size, len(runes))
		chunks = append(chunks, string(runes[start:end]))
	}
	return chunks
}
