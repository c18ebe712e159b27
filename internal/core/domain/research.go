package domain

// ResearchMode selects what a research request returns
type ResearchMode string

const (
	ResearchAuto    ResearchMode = "auto"
	ResearchSearch  ResearchMode = "search"
	ResearchExtract ResearchMode = "extract"
	ResearchAnalyze ResearchMode = "analyze"
)

// ExtractMode selects how extracted pages are rendered
type ExtractMode string

const (
	ExtractSmart      ExtractMode = "smart"
	ExtractFull       ExtractMode = "full"
	ExtractSummary    ExtractMode = "summary"
	ExtractStructured ExtractMode = "structured"
)

// Result modes reported in ResearchResponse.Mode
const (
	ResultModeSearch     = "search"
	ResultModeSummary    = "extract_summary"
	ResultModeStructured = "extract_structured"
	ResultModeSmart      = "extract_smart"
	ResultModeFull       = "extract_full"
	ResultModeAnalyze    = "analyze"
)

// ResearchRequest is a research tool invocation
type ResearchRequest struct {
	Query          string        `json:"query" validate:"required,max=2000"`
	Mode           ResearchMode  `json:"mode,omitempty" validate:"omitempty,oneof=auto search extract analyze"`
	Sources        []string      `json:"sources,omitempty" validate:"omitempty,dive,oneof=auto brave duckduckgo google"`
	Extract        ExtractMode   `json:"extract,omitempty" validate:"omitempty,oneof=smart full summary structured"`
	ChunkStrategy  ChunkStrategy `json:"chunk_strategy,omitempty" validate:"omitempty,oneof=auto content-aware fixed none"`
	Memorize       *bool         `json:"memorize,omitempty"`
	SessionID      string        `json:"session_id,omitempty" validate:"omitempty,max=128"`
	Context        string        `json:"context,omitempty" validate:"omitempty,max=500"`
	Fallback       *bool         `json:"fallback,omitempty"`
	MaxResults     int           `json:"max_results,omitempty" validate:"omitempty,min=1,max=50"`
	MaxExtractions int           `json:"max_extractions,omitempty" validate:"omitempty,min=1,max=10"`
	ForceRefresh   bool          `json:"force_refresh,omitempty"`
}

// ApplyDefaults fills unset optional fields
func (r *ResearchRequest) ApplyDefaults() {
	if r.Mode == "" {
		r.Mode = ResearchAuto
	}
	if len(r.Sources) == 0 {
		r.Sources = []string{string(ProviderAuto)}
	}
	if r.Extract == "" {
		r.Extract = ExtractSmart
	}
	if r.ChunkStrategy == "" {
		r.ChunkStrategy = ChunkAuto
	}
	if r.MaxResults == 0 {
		r.MaxResults = DefaultMaxResults
	}
	if r.MaxExtractions == 0 {
		r.MaxExtractions = DefaultMaxExtractions
	}
}

// ShouldMemorize reports whether findings may be memorized (default true)
func (r *ResearchRequest) ShouldMemorize() bool {
	return r.Memorize == nil || *r.Memorize
}

// FallbackEnabled reports whether provider fallback is allowed (default true)
func (r *ResearchRequest) FallbackEnabled() bool {
	return r.Fallback == nil || *r.Fallback
}

// DocumentSummary is the summary rendering of an extracted page
type DocumentSummary struct {
	URL       string `json:"url"`
	Title     string `json:"title"`
	Excerpt   string `json:"excerpt"`
	WordCount int    `json:"word_count"`
}

// StructuredDocument is the structured rendering of an extracted page
type StructuredDocument struct {
	URL        string          `json:"url"`
	Title      string          `json:"title"`
	Content    string          `json:"content"`
	CodeBlocks []CodeBlock     `json:"code_blocks"`
	Images     []Image         `json:"images"`
	Links      []Link          `json:"links"`
	Metrics    DocumentMetrics `json:"metrics"`
}

// ProcessedContent is the smart or full rendering of an extracted page.
// Long content is returned as Chunks instead of Content.
type ProcessedContent struct {
	URL            string      `json:"url"`
	Title          string      `json:"title"`
	Content        string      `json:"content,omitempty"`
	Chunks         []string    `json:"chunks,omitempty"`
	ChunkCount     int         `json:"chunk_count,omitempty"`
	OriginalLength int         `json:"original_length,omitempty"`
	CodeBlocks     []CodeBlock `json:"code_blocks"`
}

// Analysis describes what a research run found
type Analysis struct {
	SearchPerformed      bool                 `json:"search_performed"`
	ContentExtracted     bool                 `json:"content_extracted"`
	TotalSources         int                  `json:"total_sources"`
	CodeFound            bool                 `json:"code_found"`
	AverageContentLength float64              `json:"average_content_length"`
	Orchestration        *OrchestrationResult `json:"orchestration"`
}

// ResearchResponse is the processed result of a research request.
// Which fields are populated depends on Mode.
type ResearchResponse struct {
	Status         string               `json:"status"`
	SessionID      string               `json:"session_id"`
	Source         string               `json:"source"` // "live" or "cache"
	Mode           string               `json:"mode"`
	Results        []SearchResult       `json:"results,omitempty"`
	TotalResults   int                  `json:"total_results,omitempty"`
	ProvidersUsed  []ProviderID         `json:"providers_used,omitempty"`
	Summaries      []DocumentSummary    `json:"summaries,omitempty"`
	Data           []StructuredDocument `json:"data,omitempty"`
	Content        []ProcessedContent   `json:"content,omitempty"`
	TotalExtracted int                  `json:"total_extracted,omitempty"`
	Analysis       *Analysis            `json:"analysis,omitempty"`
	QualityScore   float64              `json:"quality_score"`
	Success        bool                 `json:"success"`
	MemoryID       string               `json:"memory_id,omitempty"`
}

// Research response sources
const (
	SourceLive  = "live"
	SourceCache = "cache"
)
