// Package postprocessors splits extracted page content into overlapping
// chunks and cleans them up.
package postprocessors

import (
	"slices"
	"sort"
	"strings"
	"unicode/utf8"
)

// Chunk is a piece of page content. Offsets are byte offsets into the
// original content.
type Chunk struct {
	Content     string
	Position    int
	StartOffset int
	EndOffset   int
}

// Processor is one pipeline stage. The first stage (the Chunker) receives a
// single chunk holding the full content; later stages receive the chunks of
// the stage before.
type Processor interface {
	Process(chunks []Chunk) []Chunk

	// Name returns the processor name for logging
	Name() string

	// Order returns the position in the pipeline (lower = earlier)
	Order() int
}

// Pipeline runs processors in ascending Order; ties keep insertion order.
// A Pipeline is built per document and is not safe for concurrent Add.
type Pipeline struct {
	processors []Processor
}

func NewPipeline() *Pipeline {
	return &Pipeline{}
}

// Add inserts processor after every stage with the same or lower Order
func (p *Pipeline) Add(processor Processor) {
	i := sort.Search(len(p.processors), func(i int) bool {
		return p.processors[i].Order() > processor.Order()
	})
	p.processors = slices.Insert(p.processors, i, processor)
}

// Process feeds content through every stage as one initial chunk
func (p *Pipeline) Process(content string) []Chunk {
	chunks := []Chunk{{Content: content, EndOffset: len(content)}}
	for _, proc := range p.processors {
		chunks = proc.Process(chunks)
	}
	return chunks
}

// Split runs the pipeline and returns only the chunk texts
func (p *Pipeline) Split(content string) []string {
	chunks := p.Process(content)
	out := make([]string, 0, len(chunks))
	for _, c := range chunks {
		out = append(out, c.Content)
	}
	return out
}

// List returns processor names in run order
func (p *Pipeline) List() []string {
	names := make([]string, len(p.processors))
	for i, proc := range p.processors {
		names[i] = proc.Name()
	}
	return names
}

// ContentAwarePipeline chunks on paragraph, then sentence, then word
// boundaries and normalises whitespace. Every non-blank chunk is kept in
// order, repeated text included.
func ContentAwarePipeline(chunkSize, overlap int) *Pipeline {
	cfg := DefaultChunkConfig()
	if chunkSize > 0 {
		cfg.MaxChunkSize = chunkSize
	}
	if overlap >= 0 && overlap < cfg.MaxChunkSize {
		cfg.Overlap = overlap
	}

	p := NewPipeline()
	p.Add(NewChunker(cfg))
	p.Add(NewWhitespaceNormalizer())
	return p
}

// ChunkConfig configures the chunker behavior.
type ChunkConfig struct {
	// MaxChunkSize is the maximum bytes per chunk
	MaxChunkSize int

	// Overlap is the byte overlap between consecutive chunks
	Overlap int

	// BreakWindow is how far back from MaxChunkSize a break point is searched
	BreakWindow int

	PreserveSentences  bool
	PreserveParagraphs bool
}

// DefaultChunkConfig returns 1000-byte chunks with a 200-byte overlap.
func DefaultChunkConfig() ChunkConfig {
	return ChunkConfig{
		MaxChunkSize:       1000,
		Overlap:            200,
		BreakWindow:        200,
		PreserveSentences:  true,
		PreserveParagraphs: true,
	}
}

// Chunker splits content into overlapping chunks.
type Chunker struct {
	config ChunkConfig
}

// Verify interface compliance
var _ Processor = (*Chunker)(nil)

// NewChunker creates a new chunker with the given config.
func NewChunker(config ChunkConfig) *Chunker {
	if config.MaxChunkSize <= 0 {
		config.MaxChunkSize = DefaultChunkConfig().MaxChunkSize
	}
	if config.Overlap < 0 || config.Overlap >= config.MaxChunkSize {
		config.Overlap = 0
	}
	if config.BreakWindow <= 0 {
		config.BreakWindow = config.MaxChunkSize / 5
	}
	return &Chunker{config: config}
}

// Process splits every input chunk.
func (c *Chunker) Process(chunks []Chunk) []Chunk {
	var result []Chunk
	position := 0

	for _, chunk := range chunks {
		newChunks := c.splitContent(chunk.Content, chunk.StartOffset, &position)
		result = append(result, newChunks...)
	}

	return result
}

func (c *Chunker) Name() string {
	return "chunker"
}

// Order returns 0, the chunker runs first.
func (c *Chunker) Order() int {
	return 0
}

func (c *Chunker) splitContent(content string, baseOffset int, position *int) []Chunk {
	if len(content) <= c.config.MaxChunkSize {
		chunk := Chunk{
			Content:     content,
			Position:    *position,
			StartOffset: baseOffset,
			EndOffset:   baseOffset + len(content),
		}
		*position++
		return []Chunk{chunk}
	}

	var chunks []Chunk
	start := 0

	for start < len(content) {
		end := start + c.config.MaxChunkSize
		if end > len(content) {
			end = len(content)
		}
		end = runeBoundary(content, end)

		if end < len(content) && (c.config.PreserveSentences || c.config.PreserveParagraphs) {
			if bp := c.findBreakPoint(content, start, end); bp > start {
				end = bp
			}
		}
		if end <= start {
			// A single rune wider than the window
			_, size := utf8.DecodeRuneInString(content[start:])
			end = start + size
		}

		chunks = append(chunks, Chunk{
			Content:     content[start:end],
			Position:    *position,
			StartOffset: baseOffset + start,
			EndOffset:   baseOffset + end,
		})
		*position++

		if end >= len(content) {
			break
		}

		nextStart := runeBoundary(content, end-c.config.Overlap)
		if nextStart <= start {
			nextStart = end
		}
		start = nextStart
	}

	return chunks
}

// findBreakPoint returns the last paragraph, sentence or word boundary in
// the window before maxEnd, in that preference order.
func (c *Chunker) findBreakPoint(content string, start, maxEnd int) int {
	searchStart := runeBoundary(content, maxEnd-c.config.BreakWindow)
	if searchStart < start {
		searchStart = start
	}

	window := content[searchStart:maxEnd]

	if c.config.PreserveParagraphs {
		if idx := strings.LastIndex(window, "\n\n"); idx != -1 {
			return searchStart + idx + 2
		}
	}

	if c.config.PreserveSentences {
		best := -1
		for _, ender := range []string{". ", "! ", "? ", ".\n", "!\n", "?\n"} {
			if idx := strings.LastIndex(window, ender); idx != -1 && idx+len(ender) > best {
				best = idx + len(ender)
			}
		}
		if best > 0 {
			return searchStart + best
		}
	}

	if idx := strings.LastIndexAny(window, " \n\t"); idx != -1 {
		return searchStart + idx + 1
	}

	return maxEnd
}

// runeBoundary moves i back to the start of the rune it falls in
func runeBoundary(s string, i int) int {
	if i <= 0 {
		return 0
	}
	if i >= len(s) {
		return len(s)
	}
	for i > 0 && !utf8.RuneStart(s[i]) {
		i--
	}
	return i
}

// WhitespaceNormalizer normalizes line endings and spacing and drops chunks
// left empty.
type WhitespaceNormalizer struct{}

// Verify interface compliance
var _ Processor = (*WhitespaceNormalizer)(nil)

func NewWhitespaceNormalizer() *WhitespaceNormalizer {
	return &WhitespaceNormalizer{}
}

func (w *WhitespaceNormalizer) Process(chunks []Chunk) []Chunk {
	result := make([]Chunk, 0, len(chunks))

	for _, chunk := range chunks {
		content := strings.ReplaceAll(chunk.Content, "\r\n", "\n")
		content = strings.ReplaceAll(content, "\r", "\n")

		lines := strings.Split(content, "\n")
		for i, line := range lines {
			lines[i] = strings.Join(strings.Fields(line), " ")
		}
		content = strings.Join(lines, "\n")

		for strings.Contains(content, "\n\n\n") {
			content = strings.ReplaceAll(content, "\n\n\n", "\n\n")
		}

		content = strings.TrimSpace(content)
		if content == "" {
			continue
		}

		newChunk := chunk
		newChunk.Content = content
		result = append(result, newChunk)
	}

	return result
}

func (w *WhitespaceNormalizer) Name() string {
	return "whitespace-normalizer"
}

func (w *WhitespaceNormalizer) Order() int {
	return 5
}
