package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/custodia-labs/sercha-research/internal/core/domain"
	"github.com/custodia-labs/sercha-research/internal/core/ports/driven"
	"github.com/custodia-labs/sercha-research/internal/core/ports/driving"
)

// Ensure researchService implements ResearchService
var _ driving.ResearchService = (*researchService)(nil)

const (
	// ResearchCacheTTL is how long a successful research response is cached, in seconds
	ResearchCacheTTL = 300

	// MemorizeThreshold is the quality score a response must exceed to be memorized
	MemorizeThreshold = 0.7

	// chunkThreshold is the content length above which smart/full output is chunked
	chunkThreshold = 2000
)

// researchService implements the ResearchService interface
type researchService struct {
	loop      *ReasoningLoop
	search    *FallbackSearchCoordinator
	extractor driven.ContentExtractor
	memory    driven.MemoryStore // Optional
	cache     *CacheStore
	deadline  time.Duration
	defaults  domain.LoopContext
	chunkSize int
	overlap   int
	validate  *validator.Validate
	logger    *slog.Logger

	// extractMinGood replaces defaults.MinGoodResults for extract and analyze runs
	extractMinGood int
}

// ResearchServiceConfig holds dependencies for the research service.
type ResearchServiceConfig struct {
	Loop      *ReasoningLoop
	Search    *FallbackSearchCoordinator
	Extractor driven.ContentExtractor
	Memory    driven.MemoryStore
	Cache     *CacheStore
	Deadline  time.Duration // Overall bound on one research run, zero for none
	Logger    *slog.Logger

	// LoopDefaults seeds every run's loop settings; nil uses DefaultLoopContext
	LoopDefaults *domain.LoopContext
	ChunkSize    int // Default 1000
	ChunkOverlap int // Default 200

	// ExtractMinGoodResults is the good-observation threshold for extract and
	// analyze modes. Auto and search modes use LoopDefaults.MinGoodResults.
	ExtractMinGoodResults int // Default 2
}

// NewResearchService creates a new ResearchService
func NewResearchService(cfg ResearchServiceConfig) driving.ResearchService {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	loop := cfg.Loop
	if loop == nil {
		loop = NewReasoningLoop(ReasoningLoopConfig{Logger: logger})
	}
	cache := cfg.Cache
	if cache == nil {
		cache = NewCacheStore(CacheStoreConfig{Disabled: true, Logger: logger})
	}
	defaults := domain.DefaultLoopContext()
	if cfg.LoopDefaults != nil {
		defaults = cfg.LoopDefaults.Normalized()
	}
	extractMinGood := cfg.ExtractMinGoodResults
	if extractMinGood <= 0 {
		extractMinGood = domain.DefaultExtractMinGoodResults
	}
	chunkSize := cfg.ChunkSize
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	overlap := cfg.ChunkOverlap
	if overlap <= 0 {
		overlap = min(DefaultChunkOverlap, chunkSize/2)
	}

	return &researchService{
		loop:      loop,
		search:    cfg.Search,
		extractor: cfg.Extractor,
		memory:    cfg.Memory,
		cache:     cache,
		deadline:  cfg.Deadline,
		defaults:  defaults,
		chunkSize: chunkSize,
		overlap:   overlap,
		validate:  validator.New(),
		logger:    logger.With("component", "research"),

		extractMinGood: extractMinGood,
	}
}

func researchCacheKey(req domain.ResearchRequest) domain.KeyData {
	return domain.KeyData{
		"tool":    cacheToolResearch,
		"query":   req.Query,
		"sources": req.Sources,
		"mode":    req.Mode,
	}
}

// NewSessionID returns a research session identifier
func NewSessionID() string {
	return "research_" + shortHex()
}

func newMemoryID() string {
	return "mem_" + shortHex()
}

func shortHex() string {
	return strings.ReplaceAll(uuid.New().String(), "-", "")[:8]
}

// Research runs the reasoning loop for req and shapes its results by mode
func (s *researchService) Research(ctx context.Context, req domain.ResearchRequest) (*domain.ResearchResponse, error) {
	if err := s.validate.Struct(req); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			return nil, fmt.Errorf("%w: %s", domain.ErrInvalidInput, describeValidation(verrs))
		}
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
	}
	if req.MaxResults == 0 {
		req.MaxResults = s.defaults.MaxResults
	}
	if req.MaxExtractions == 0 {
		req.MaxExtractions = s.defaults.MaxExtractions
	}
	req.ApplyDefaults()

	sessionID := req.SessionID
	if sessionID == "" {
		sessionID = NewSessionID()
	}

	key := researchCacheKey(req)
	if !req.ForceRefresh {
		var cached domain.ResearchResponse
		if s.cache.GetInto(ctx, key, &cached) {
			s.logger.Info("returning cached research", "query", req.Query)
			cached.Status = "success"
			cached.Source = domain.SourceCache
			if req.SessionID != "" {
				cached.SessionID = req.SessionID
			}
			return &cached, nil
		}
	}

	handlers := NewActionHandlers(ActionHandlersConfig{
		Search:       s.search,
		Fallback:     s.defaults.Fallback && req.FallbackEnabled(),
		Extractor:    s.extractor,
		Memory:       s.memory,
		Cache:        s.cache,
		CacheKey:     key,
		ChunkSize:    s.chunkSize,
		ChunkOverlap: s.overlap,
		Logger:       s.logger,
	})
	orchestration := s.loop.Orchestrate(ctx, req.Query, s.loopContext(req), handlers)

	resp := s.processResults(req, orchestration)
	resp.Status = "success"
	resp.SessionID = sessionID
	resp.Source = domain.SourceLive

	if req.ShouldMemorize() && resp.QualityScore > MemorizeThreshold {
		if id, err := s.memorize(ctx, req, sessionID, resp); err != nil {
			s.logger.Warn("failed to memorize research findings", "query", req.Query, "error", err)
		} else {
			resp.MemoryID = id
		}
	}

	if resp.Success {
		s.cache.Set(ctx, key, resp, ResearchCacheTTL)
	}

	s.logger.Info("research completed",
		"query", req.Query,
		"session_id", sessionID,
		"mode", resp.Mode,
		"quality", resp.QualityScore,
		"iterations", orchestration.Iterations,
	)
	return resp, nil
}

// loopContext maps a request to loop settings. Extract and analyze runs use
// their own good-result threshold; other modes keep the configured one.
func (s *researchService) loopContext(req domain.ResearchRequest) domain.LoopContext {
	lc := s.defaults
	lc.Sources = domain.ParseProviderIDs(req.Sources)
	if s.search != nil {
		lc.FallbackChain = s.search.FallbackChain()
	}
	lc.MaxResults = req.MaxResults
	lc.MaxExtractions = req.MaxExtractions
	lc.ExtractMode = req.Extract
	lc.Fallback = lc.Fallback && req.FallbackEnabled()
	lc.Deadline = s.deadline
	switch req.Mode {
	case domain.ResearchExtract, domain.ResearchAnalyze:
		lc.MinGoodResults = s.extractMinGood
	}
	return lc
}

// processResults shapes the loop results for the requested mode
func (s *researchService) processResults(req domain.ResearchRequest, orch *domain.OrchestrationResult) *domain.ResearchResponse {
	var (
		searches []*domain.SearchResponse
		docs     []*domain.ExtractedDocument
	)
	for _, r := range orch.Results {
		if resp := asSearchResponse(r); resp != nil && len(resp.Results) > 0 {
			searches = append(searches, resp)
		}
		if doc := asDocument(r); doc.HasContent() {
			docs = append(docs, doc)
		}
	}

	switch {
	case req.Mode == domain.ResearchSearch || (req.Mode == domain.ResearchAuto && len(docs) == 0):
		return searchOutput(searches)
	case req.Mode == domain.ResearchExtract || req.Mode == domain.ResearchAuto:
		return s.extractOutput(req, docs)
	default:
		return analyzeOutput(orch)
	}
}

func searchOutput(searches []*domain.SearchResponse) *domain.ResearchResponse {
	resp := &domain.ResearchResponse{
		Mode:          domain.ResultModeSearch,
		Results:       []domain.SearchResult{},
		ProvidersUsed: []domain.ProviderID{},
		QualityScore:  0.2,
	}
	if len(searches) == 0 {
		return resp
	}
	resp.Results = searches[0].Results
	resp.ProvidersUsed = searches[0].ProvidersUsed
	for _, sr := range searches {
		resp.TotalResults += len(sr.Results)
	}
	resp.QualityScore = 0.8
	resp.Success = true
	return resp
}

func (s *researchService) extractOutput(req domain.ResearchRequest, docs []*domain.ExtractedDocument) *domain.ResearchResponse {
	n := float64(len(docs))
	resp := &domain.ResearchResponse{
		TotalExtracted: len(docs),
		Success:        len(docs) > 0,
	}

	switch req.Extract {
	case domain.ExtractSummary:
		resp.Mode = domain.ResultModeSummary
		resp.Summaries = make([]domain.DocumentSummary, 0, len(docs))
		for _, d := range docs {
			resp.Summaries = append(resp.Summaries, domain.DocumentSummary{
				URL:       d.URL,
				Title:     d.Title,
				Excerpt:   d.Excerpt,
				WordCount: d.Metrics.WordCount,
			})
		}
		resp.QualityScore = min(1, n/3)

	case domain.ExtractStructured:
		resp.Mode = domain.ResultModeStructured
		resp.Data = make([]domain.StructuredDocument, 0, len(docs))
		for _, d := range docs {
			resp.Data = append(resp.Data, domain.StructuredDocument{
				URL:        d.URL,
				Title:      d.Title,
				Content:    d.Markdown,
				CodeBlocks: d.CodeBlocks,
				Images:     d.Images,
				Links:      d.Links,
				Metrics:    d.Metrics,
			})
		}
		resp.QualityScore = min(1, n/2)

	default:
		resp.Mode = domain.ResultModeSmart
		if req.Extract == domain.ExtractFull {
			resp.Mode = domain.ResultModeFull
		}
		resp.Content = make([]domain.ProcessedContent, 0, len(docs))
		for _, d := range docs {
			pc := domain.ProcessedContent{URL: d.URL, Title: d.Title, CodeBlocks: d.CodeBlocks}
			if req.ChunkStrategy != domain.ChunkNone && len(d.Markdown) > chunkThreshold {
				pc.Chunks = chunkContent(s.extractor, d.Markdown, req.ChunkStrategy, s.chunkSize, s.overlap)
				pc.ChunkCount = len(pc.Chunks)
				pc.OriginalLength = len(d.Markdown)
			} else {
				pc.Content = d.Markdown
			}
			resp.Content = append(resp.Content, pc)
		}
		resp.QualityScore = min(1, n/2)
	}
	return resp
}

func analyzeOutput(orch *domain.OrchestrationResult) *domain.ResearchResponse {
	analysis := &domain.Analysis{Orchestration: orch}
	var words int
	for _, r := range orch.Results {
		if sr := asSearchResponse(r); sr != nil && len(sr.Results) > 0 {
			analysis.SearchPerformed = true
		}
		if d := asDocument(r); d != nil {
			if d.HasContent() {
				analysis.ContentExtracted = true
			}
			if d.URL != "" {
				analysis.TotalSources++
			}
			if len(d.CodeBlocks) > 0 {
				analysis.CodeFound = true
			}
			words += d.Metrics.WordCount
		}
	}
	analysis.AverageContentLength = float64(words) / float64(max(1, len(orch.Results)))

	resp := &domain.ResearchResponse{
		Mode:     domain.ResultModeAnalyze,
		Analysis: analysis,
		Success:  orch.Success,
	}
	if orch.Success {
		resp.QualityScore = 0.9
	}
	return resp
}

func (s *researchService) memorize(ctx context.Context, req domain.ResearchRequest, sessionID string, resp *domain.ResearchResponse) (string, error) {
	if s.memory == nil {
		return "", domain.ErrServiceUnavailable
	}
	tags := []string{"research", "fw_research"}
	if req.Context != "" {
		tags = append(tags, req.Context)
	}
	total := resp.TotalResults
	if total == 0 {
		total = resp.TotalExtracted
	}

	receipt, err := s.memory.Memorize(ctx, &domain.MemoryRecord{
		ID:           newMemoryID(),
		Query:        req.Query,
		Context:      req.Context,
		SessionID:    sessionID,
		Mode:         resp.Mode,
		TotalResults: total,
		QualityScore: resp.QualityScore,
		KeyFindings:  keyFindings(resp),
		Tags:         tags,
		CreatedAt:    time.Now(),
	})
	if err != nil {
		return "", err
	}
	return receipt.ID, nil
}

// keyFindings lists up to three headline findings of a response
func keyFindings(resp *domain.ResearchResponse) []string {
	findings := []string{}
	switch {
	case resp.Mode == domain.ResultModeSearch:
		for _, r := range resp.Results[:min(3, len(resp.Results))] {
			findings = append(findings, r.Title+" - "+r.URL)
		}
	case len(resp.Summaries) > 0:
		for _, sm := range resp.Summaries[:min(3, len(resp.Summaries))] {
			findings = append(findings, fmt.Sprintf("%s (%d words)", sm.Title, sm.WordCount))
		}
	case len(resp.Content) > 0:
		for _, c := range resp.Content[:min(3, len(resp.Content))] {
			title := c.Title
			if title == "" {
				title = "Unknown"
			}
			findings = append(findings, title+" - "+c.URL)
		}
	}
	return findings
}

// Search runs a single fallback search, cached like the SEARCH action
func (s *researchService) Search(ctx context.Context, query domain.SearchQuery) (*domain.SearchResponse, error) {
	if strings.TrimSpace(query.Text) == "" {
		return nil, fmt.Errorf("%w: query is required", domain.ErrInvalidInput)
	}
	if s.search == nil {
		return nil, fmt.Errorf("search: %w", domain.ErrServiceUnavailable)
	}
	if len(query.Sources) == 0 {
		query.Sources = []domain.ProviderID{domain.ProviderAuto}
	}
	if query.MaxResults <= 0 {
		query.MaxResults = s.defaults.MaxResults
	}

	key := searchCacheKey(query)
	var cached domain.SearchResponse
	if s.cache.GetInto(ctx, key, &cached) {
		return &cached, nil
	}

	resp, err := s.search.SearchWithFallback(ctx, query, query.FallbackEnabled())
	if err != nil {
		return resp, err
	}
	if resp.Success {
		s.cache.Set(ctx, key, resp, 0)
	}
	return resp, nil
}

// Extract fetches and extracts one page, cached like the EXTRACT action
func (s *researchService) Extract(ctx context.Context, url string) (*domain.ExtractedDocument, error) {
	if strings.TrimSpace(url) == "" {
		return nil, fmt.Errorf("%w: url is required", domain.ErrInvalidInput)
	}
	if s.extractor == nil {
		return nil, fmt.Errorf("extract: %w", domain.ErrServiceUnavailable)
	}

	key := extractCacheKey(url)
	var cached domain.ExtractedDocument
	if s.cache.GetInto(ctx, key, &cached) {
		return &cached, nil
	}

	doc, err := s.extractor.Extract(ctx, url)
	if err != nil {
		return nil, err
	}
	if doc.HasContent() {
		s.cache.Set(ctx, key, doc, 0)
	}
	return doc, nil
}

// CacheStats reports the state of the result cache
func (s *researchService) CacheStats(ctx context.Context) domain.CacheStats {
	return s.cache.Stats(ctx)
}

// ClearCache empties both cache tiers
func (s *researchService) ClearCache(ctx context.Context) error {
	return s.cache.Clear(ctx)
}

func describeValidation(errs validator.ValidationErrors) string {
	parts := make([]string, 0, len(errs))
	for _, fe := range errs {
		field := strings.ToLower(fe.Field())
		switch fe.Tag() {
		case "required":
			parts = append(parts, field+" is required")
		case "oneof":
			parts = append(parts, fmt.Sprintf("%s must be one of [%s]", field, fe.Param()))
		case "min", "max":
			parts = append(parts, fmt.Sprintf("%s violates %s=%s", field, fe.Tag(), fe.Param()))
		default:
			parts = append(parts, fmt.Sprintf("%s failed %s", field, fe.Tag()))
		}
	}
	return strings.Join(parts, "; ")
}
