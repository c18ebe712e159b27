package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/sercha-research/internal/core/domain"
)

type mockResearchService struct {
	lastResearch domain.ResearchRequest
	lastSearch   domain.SearchQuery
	lastURL      string
	researchErr  error
	searchResp   *domain.SearchResponse
	searchErr    error
	extractErr   error
	cleared      bool
}

func (m *mockResearchService) Research(ctx context.Context, req domain.ResearchRequest) (*domain.ResearchResponse, error) {
	m.lastResearch = req
	if m.researchErr != nil {
		return nil, m.researchErr
	}
	return &domain.ResearchResponse{Status: "success", SessionID: "research_00000001", Mode: domain.ResultModeSearch, Success: true}, nil
}

func (m *mockResearchService) Search(ctx context.Context, query domain.SearchQuery) (*domain.SearchResponse, error) {
	m.lastSearch = query
	return m.searchResp, m.searchErr
}

func (m *mockResearchService) Extract(ctx context.Context, url string) (*domain.ExtractedDocument, error) {
	m.lastURL = url
	if m.extractErr != nil {
		return nil, m.extractErr
	}
	return &domain.ExtractedDocument{URL: url, Title: "Example", Markdown: "# Example"}, nil
}

func (m *mockResearchService) CacheStats(ctx context.Context) domain.CacheStats {
	return domain.CacheStats{Enabled: true, HotEntries: 1, ColdEntries: 4}
}

func (m *mockResearchService) ClearCache(ctx context.Context) error {
	m.cleared = true
	return nil
}

func callTool(t *testing.T, s *Server, name string, args map[string]any) (*mcp.CallToolResult, map[string]any) {
	t.Helper()
	tool := s.MCPServer().GetTool(name)
	require.NotNil(t, tool, "tool %s not registered", name)

	req := mcp.CallToolRequest{}
	req.Params.Name = name
	req.Params.Arguments = args

	res, err := tool.Handler(context.Background(), req)
	require.NoError(t, err)
	require.Len(t, res.Content, 1)

	text, ok := mcp.AsTextContent(res.Content[0])
	require.True(t, ok, "expected text content")

	var body map[string]any
	_ = json.Unmarshal([]byte(text.Text), &body)
	return res, body
}

func TestNewServer_RegistersTools(t *testing.T) {
	s := NewServer(Config{}, &mockResearchService{})

	tools := s.MCPServer().ListTools()
	for _, name := range []string{ToolResearch, ToolSearch, ToolExtract, ToolCacheStats, ToolCacheClear} {
		assert.Contains(t, tools, name)
	}
	assert.Contains(t, tools[ToolResearch].Tool.InputSchema.Required, "query")
	assert.Contains(t, tools[ToolExtract].Tool.InputSchema.Required, "url")
}

func TestHandleResearch(t *testing.T) {
	svc := &mockResearchService{}
	s := NewServer(Config{}, svc)

	res, body := callTool(t, s, ToolResearch, map[string]any{
		"query":       "go iterators",
		"mode":        "search",
		"sources":     []any{"brave", "duckduckgo"},
		"max_results": float64(5),
		"memorize":    false,
	})

	assert.False(t, res.IsError)
	assert.Equal(t, "research_00000001", body["session_id"])

	assert.Equal(t, "go iterators", svc.lastResearch.Query)
	assert.Equal(t, domain.ResearchSearch, svc.lastResearch.Mode)
	assert.Equal(t, []string{"brave", "duckduckgo"}, svc.lastResearch.Sources)
	assert.Equal(t, 5, svc.lastResearch.MaxResults)
	require.NotNil(t, svc.lastResearch.Memorize)
	assert.False(t, *svc.lastResearch.Memorize)
	assert.Nil(t, svc.lastResearch.Fallback, "unset booleans keep their default")
}

func TestHandleResearch_Error(t *testing.T) {
	svc := &mockResearchService{researchErr: fmt.Errorf("%w: query is required", domain.ErrInvalidInput)}
	s := NewServer(Config{}, svc)

	res, body := callTool(t, s, ToolResearch, map[string]any{})
	assert.True(t, res.IsError)
	assert.Equal(t, "error", body["status"])
	assert.Equal(t, ToolResearch, body["tool"])
	assert.Contains(t, body["error"], "query is required")
}

func TestHandleResearch_BadArguments(t *testing.T) {
	s := NewServer(Config{}, &mockResearchService{})

	res, body := callTool(t, s, ToolResearch, map[string]any{"query": "x", "max_results": "many"})
	assert.True(t, res.IsError)
	assert.Equal(t, "error", body["status"])
}

func TestHandleSearch(t *testing.T) {
	svc := &mockResearchService{
		searchResp: &domain.SearchResponse{
			Query:   "golang",
			Results: []domain.SearchResult{{Title: "Go", URL: "https://go.dev"}},
			Success: true,
		},
	}
	s := NewServer(Config{}, svc)

	res, body := callTool(t, s, ToolSearch, map[string]any{
		"query":    "golang",
		"sources":  []any{"google"},
		"fallback": false,
	})

	assert.False(t, res.IsError)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, []domain.ProviderID{domain.ProviderGoogle}, svc.lastSearch.Sources)
	assert.False(t, svc.lastSearch.FallbackEnabled())
}

func TestHandleSearch_PartialFailure(t *testing.T) {
	svc := &mockResearchService{
		searchResp: &domain.SearchResponse{
			Query:  "golang",
			Errors: []domain.ProviderError{{Provider: domain.ProviderBrave, Message: "rate limited"}},
		},
		searchErr: fmt.Errorf("%w: brave", domain.ErrFallbackDisabled),
	}
	s := NewServer(Config{}, svc)

	res, body := callTool(t, s, ToolSearch, map[string]any{"query": "golang"})
	assert.True(t, res.IsError)

	data, ok := body["data"].(map[string]any)
	require.True(t, ok, "expected partial response in data")
	assert.Len(t, data["errors"], 1)
}

func TestHandleSearch_NoPartialResponse(t *testing.T) {
	svc := &mockResearchService{searchErr: errors.New("search: service unavailable")}
	s := NewServer(Config{}, svc)

	_, body := callTool(t, s, ToolSearch, map[string]any{"query": "golang"})
	assert.NotContains(t, body, "data")
}

func TestHandleExtract(t *testing.T) {
	svc := &mockResearchService{}
	s := NewServer(Config{}, svc)

	res, body := callTool(t, s, ToolExtract, map[string]any{"url": "https://example.com"})
	assert.False(t, res.IsError)
	assert.Equal(t, "Example", body["title"])
	assert.Equal(t, "https://example.com", svc.lastURL)

	res, _ = callTool(t, s, ToolExtract, map[string]any{})
	assert.True(t, res.IsError)

	svc.extractErr = fmt.Errorf("%w: http status 500", domain.ErrExtractionFailed)
	res, body = callTool(t, s, ToolExtract, map[string]any{"url": "https://example.com/broken"})
	assert.True(t, res.IsError)
	assert.Contains(t, body["error"], "extraction failed")
}

func TestHandleCacheTools(t *testing.T) {
	svc := &mockResearchService{}
	s := NewServer(Config{}, svc)

	_, stats := callTool(t, s, ToolCacheStats, nil)
	assert.Equal(t, float64(1), stats["memory_entries"])
	assert.Equal(t, float64(4), stats["file_entries"])

	res, body := callTool(t, s, ToolCacheClear, nil)
	assert.False(t, res.IsError)
	assert.Equal(t, "cleared", body["status"])
	assert.True(t, svc.cleared)
}
