package mcp

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/custodia-labs/sercha-research/internal/core/domain"
)

// errorPayload is the body of a failed tool call
type errorPayload struct {
	Status string `json:"status"`
	Error  string `json:"error"`
	Tool   string `json:"tool"`
	Data   any    `json:"data,omitempty"`
}

// handleResearch implements the fw_research tool
func (s *Server) handleResearch(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var req domain.ResearchRequest
	if err := request.BindArguments(&req); err != nil {
		return s.errorResult(ToolResearch, err, nil), nil
	}

	resp, err := s.research.Research(ctx, req)
	if err != nil {
		return s.errorResult(ToolResearch, err, nil), nil
	}
	return s.jsonResult(ToolResearch, resp), nil
}

// searchArgs are the fw_search arguments
type searchArgs struct {
	Query      string              `json:"query"`
	Sources    []domain.ProviderID `json:"sources"`
	MaxResults int                 `json:"max_results"`
	Fallback   *bool               `json:"fallback"`
}

// handleSearch implements the fw_search tool
func (s *Server) handleSearch(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var args searchArgs
	if err := request.BindArguments(&args); err != nil {
		return s.errorResult(ToolSearch, err, nil), nil
	}

	resp, err := s.research.Search(ctx, domain.SearchQuery{
		Text:       args.Query,
		Sources:    args.Sources,
		MaxResults: args.MaxResults,
		Fallback:   args.Fallback,
	})
	if err != nil {
		// Partial responses carry the per-provider errors
		var partial any
		if resp != nil {
			partial = resp
		}
		return s.errorResult(ToolSearch, err, partial), nil
	}
	return s.jsonResult(ToolSearch, resp), nil
}

// handleExtract implements the fw_extract tool
func (s *Server) handleExtract(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	url, err := request.RequireString("url")
	if err != nil || strings.TrimSpace(url) == "" {
		return mcp.NewToolResultError("Error: url parameter is required"), nil
	}

	doc, err := s.research.Extract(ctx, url)
	if err != nil {
		return s.errorResult(ToolExtract, err, nil), nil
	}
	return s.jsonResult(ToolExtract, doc), nil
}

// handleCacheStats implements the fw_cache_stats tool
func (s *Server) handleCacheStats(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return s.jsonResult(ToolCacheStats, s.research.CacheStats(ctx)), nil
}

// handleCacheClear implements the fw_cache_clear tool
func (s *Server) handleCacheClear(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if err := s.research.ClearCache(ctx); err != nil {
		return s.errorResult(ToolCacheClear, err, nil), nil
	}
	return s.jsonResult(ToolCacheClear, map[string]string{"status": "cleared"}), nil
}

func (s *Server) jsonResult(tool string, v any) *mcp.CallToolResult {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return s.errorResult(tool, err, nil)
	}
	return mcp.NewToolResultText(string(data))
}

func (s *Server) errorResult(tool string, err error, data any) *mcp.CallToolResult {
	s.logger.Error("tool failed", "tool", tool, "error", err)
	payload := errorPayload{Status: "error", Error: err.Error(), Tool: tool, Data: data}
	text, mErr := json.MarshalIndent(payload, "", "  ")
	if mErr != nil {
		return mcp.NewToolResultError(err.Error())
	}
	return mcp.NewToolResultError(string(text))
}
