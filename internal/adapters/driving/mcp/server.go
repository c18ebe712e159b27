// Package mcp exposes the research service as Model Context Protocol tools
// over stdio.
package mcp

import (
	"log/slog"

	"github.com/mark3labs/mcp-go/server"

	"github.com/custodia-labs/sercha-research/internal/core/ports/driving"
)

// ServerName is announced to MCP clients during initialization
const ServerName = "sercha-research"

// Server wraps an MCP server with the research tools registered
type Server struct {
	mcp      *server.MCPServer
	research driving.ResearchService
	logger   *slog.Logger
}

// Config holds MCP server configuration
type Config struct {
	Version string
	Logger  *slog.Logger
}

// NewServer creates a new MCP server and registers every tool
func NewServer(cfg Config, research driving.ResearchService) *Server {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	version := cfg.Version
	if version == "" {
		version = "dev"
	}

	s := &Server{
		mcp: server.NewMCPServer(
			ServerName,
			version,
			server.WithToolCapabilities(true),
			server.WithRecovery(),
			server.WithInstructions("Web research tools: multi-provider search with fallback, page extraction and a result cache."),
		),
		research: research,
		logger:   logger.With("component", "mcp"),
	}

	s.mcp.AddTool(researchTool(), s.handleResearch)
	s.mcp.AddTool(searchTool(), s.handleSearch)
	s.mcp.AddTool(extractTool(), s.handleExtract)
	s.mcp.AddTool(cacheStatsTool(), s.handleCacheStats)
	s.mcp.AddTool(cacheClearTool(), s.handleCacheClear)

	return s
}

// MCPServer returns the underlying server
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcp
}

// ServeStdio serves MCP over stdin/stdout until stdin closes.
// Logs must go to stderr so they never corrupt the protocol stream.
func (s *Server) ServeStdio() error {
	s.logger.Info("serving MCP over stdio")
	errLog := slog.NewLogLogger(s.logger.Handler(), slog.LevelError)
	return server.ServeStdio(s.mcp, server.WithErrorLogger(errLog))
}
