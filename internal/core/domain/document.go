package domain

// ExtractedDocument is the readable content pulled from one web page
type ExtractedDocument struct {
	URL        string          `json:"url"`
	Title      string          `json:"title"`
	Markdown   string          `json:"content"`
	PlainText  string          `json:"text_content"`
	Excerpt    string          `json:"excerpt"`
	Images     []Image         `json:"images"`
	Links      []Link          `json:"links"`
	CodeBlocks []CodeBlock     `json:"code_blocks"`
	Metrics    DocumentMetrics `json:"metrics"`
	Fetch      FetchMetadata   `json:"fetch"`
}

// HasContent reports whether any readable content was extracted
func (d *ExtractedDocument) HasContent() bool {
	return d != nil && d.Markdown != ""
}

// Image is an image referenced by a page
type Image struct {
	URL   string `json:"url"`
	Alt   string `json:"alt,omitempty"`
	Title string `json:"title,omitempty"`
}

// Link is an outbound link found on a page
type Link struct {
	URL   string `json:"url"`
	Text  string `json:"text,omitempty"`
	Title string `json:"title,omitempty"`
}

// CodeBlock is a code sample found on a page
type CodeBlock struct {
	Language  string `json:"language,omitempty"`
	Code      string `json:"code"`
	Formatted string `json:"formatted"` // Fenced markdown form
	Inline    bool   `json:"inline"`
}

// DocumentMetrics summarises an extracted document
type DocumentMetrics struct {
	WordCount      int `json:"word_count"`
	CharCount      int `json:"char_count"`
	ImageCount     int `json:"image_count"`
	LinkCount      int `json:"link_count"`
	CodeBlockCount int `json:"code_block_count"`
}

// FetchMetadata describes the HTTP response a document came from
type FetchMetadata struct {
	StatusCode  int    `json:"status_code"`
	ContentType string `json:"content_type"`
	FinalURL    string `json:"final_url"`
}

// ChunkStrategy selects how long content is split
type ChunkStrategy string

const (
	ChunkAuto         ChunkStrategy = "auto"          // Content-aware above ContentAwareThreshold chars, fixed below
	ChunkContentAware ChunkStrategy = "content-aware" // Paragraph, then sentence, then word boundaries
	ChunkFixed        ChunkStrategy = "fixed"         // Plain fixed-width slices
	ChunkNone         ChunkStrategy = "none"          // Never chunk
)

// ContentAwareThreshold is the content length above which auto chunking
// switches to the content-aware strategy.
const ContentAwareThreshold = 5000

// IsValid checks if the chunk strategy is known
func (s ChunkStrategy) IsValid() bool {
	switch s {
	case ChunkAuto, ChunkContentAware, ChunkFixed, ChunkNone:
		return true
	}
	return false
}

// UseContentAware reports whether content of the given length should be
// split on natural boundaries rather than fixed widths.
func (s ChunkStrategy) UseContentAware(contentLen int) bool {
	return s == ChunkContentAware || (s == ChunkAuto && contentLen > ContentAwareThreshold)
}
