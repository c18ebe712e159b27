package mcp

import (
	"github.com/mark3labs/mcp-go/mcp"
)

// Tool names
const (
	ToolResearch   = "fw_research"
	ToolSearch     = "fw_search"
	ToolExtract    = "fw_extract"
	ToolCacheStats = "fw_cache_stats"
	ToolCacheClear = "fw_cache_clear"
)

var providerNames = []string{"auto", "brave", "duckduckgo", "google"}

// researchTool returns the fw_research tool definition
func researchTool() mcp.Tool {
	return mcp.NewTool(ToolResearch,
		mcp.WithDescription("Web research with Thought/Action/Observation orchestration. Features multi-provider search with fallback, content extraction, smart chunking and auto-memorization."),
		mcp.WithString("query",
			mcp.Required(),
			mcp.MaxLength(2000),
			mcp.Description("Research query"),
		),
		mcp.WithString("mode",
			mcp.Enum("auto", "search", "extract", "analyze"),
			mcp.Description("auto plans search then extraction, search returns results only, extract returns page content, analyze returns a research analysis (default: auto)"),
		),
		mcp.WithArray("sources",
			mcp.WithStringEnumItems(providerNames),
			mcp.Description("Search providers in priority order (default: [auto])"),
		),
		mcp.WithString("extract",
			mcp.Enum("smart", "full", "summary", "structured"),
			mcp.Description("How extracted pages are rendered (default: smart)"),
		),
		mcp.WithString("chunk_strategy",
			mcp.Enum("auto", "content-aware", "fixed", "none"),
			mcp.Description("How long content is split (default: auto)"),
		),
		mcp.WithBoolean("memorize",
			mcp.Description("Store high quality findings in research memory (default: true)"),
		),
		mcp.WithString("session_id",
			mcp.Description("Session identifier to continue; generated when empty"),
		),
		mcp.WithString("context",
			mcp.MaxLength(500),
			mcp.Description("Work context tag stored with memorized findings"),
		),
		mcp.WithBoolean("fallback",
			mcp.Description("Try the next provider when one fails (default: true)"),
		),
		mcp.WithNumber("max_results",
			mcp.Min(1), mcp.Max(50),
			mcp.Description("Maximum search results (default: 10)"),
		),
		mcp.WithNumber("max_extractions",
			mcp.Min(1), mcp.Max(10),
			mcp.Description("Maximum pages to extract (default: 3)"),
		),
		mcp.WithBoolean("force_refresh",
			mcp.Description("Bypass the result cache"),
		),
	)
}

// searchTool returns the fw_search tool definition
func searchTool() mcp.Tool {
	return mcp.NewTool(ToolSearch,
		mcp.WithDescription("Search the web across providers with fallback. Results are deduplicated by URL."),
		mcp.WithString("query",
			mcp.Required(),
			mcp.Description("Search query"),
		),
		mcp.WithArray("sources",
			mcp.WithStringEnumItems(providerNames),
			mcp.Description("Search providers in priority order (default: [auto])"),
		),
		mcp.WithNumber("max_results",
			mcp.Min(1), mcp.Max(50),
			mcp.Description("Maximum results (default: 10)"),
		),
		mcp.WithBoolean("fallback",
			mcp.Description("Try the next provider when one fails (default: true)"),
		),
	)
}

// extractTool returns the fw_extract tool definition
func extractTool() mcp.Tool {
	return mcp.NewTool(ToolExtract,
		mcp.WithDescription("Fetch one web page and return its readable content as markdown with code blocks, links and images"),
		mcp.WithString("url",
			mcp.Required(),
			mcp.Description("Absolute http(s) URL"),
		),
	)
}

// cacheStatsTool returns the fw_cache_stats tool definition
func cacheStatsTool() mcp.Tool {
	return mcp.NewTool(ToolCacheStats,
		mcp.WithDescription("Report result cache entry counts and size"),
		mcp.WithReadOnlyHintAnnotation(true),
	)
}

// cacheClearTool returns the fw_cache_clear tool definition
func cacheClearTool() mcp.Tool {
	return mcp.NewTool(ToolCacheClear,
		mcp.WithDescription("Empty both tiers of the result cache"),
		mcp.WithDestructiveHintAnnotation(true),
	)
}
