package normalisers

import (
	"regexp"
	"strings"

	"github.com/custodia-labs/sercha-research/internal/core/domain"
)

var fencedCode = regexp.MustCompile("(?s)```([\\w+-]*)\\n(.*?)```")

// MarkdownNormaliser handles Markdown served as text/markdown, such as raw
// README files.
type MarkdownNormaliser struct{}

func (n *MarkdownNormaliser) SupportedTypes() []string {
	return []string{"text/markdown", "text/x-markdown"}
}

func (n *MarkdownNormaliser) Priority() int {
	return 50
}

func (n *MarkdownNormaliser) Normalise(page Page) (*domain.ExtractedDocument, error) {
	content := normaliseLineEndings(string(page.Body))
	content = strings.TrimSpace(blankLines.ReplaceAllString(content, "\n\n"))

	blocks := []domain.CodeBlock{}
	for _, m := range fencedCode.FindAllStringSubmatch(content, -1) {
		blocks = append(blocks, domain.CodeBlock{
			Language:  m[1],
			Code:      m[2],
			Formatted: fence(m[1], m[2]),
		})
	}

	return &domain.ExtractedDocument{
		Title:      markdownTitle(content),
		Markdown:   content,
		PlainText:  collapse(content),
		Images:     []domain.Image{},
		Links:      []domain.Link{},
		CodeBlocks: blocks,
	}, nil
}

// markdownTitle returns the first level-one heading
func markdownTitle(content string) string {
	for _, line := range strings.Split(content, "\n") {
		if strings.HasPrefix(line, "# ") {
			return strings.TrimSpace(strings.TrimPrefix(line, "# "))
		}
	}
	return ""
}

// PlaintextNormaliser is the fallback for textual types without a
// dedicated normaliser.
type PlaintextNormaliser struct{}

func (n *PlaintextNormaliser) SupportedTypes() []string {
	return []string{"text/*", "application/json", "application/xml"}
}

func (n *PlaintextNormaliser) Priority() int {
	return 1
}

func (n *PlaintextNormaliser) Normalise(page Page) (*domain.ExtractedDocument, error) {
	content := strings.TrimSpace(normaliseLineEndings(string(page.Body)))
	return &domain.ExtractedDocument{
		Markdown:   content,
		PlainText:  collapse(content),
		Images:     []domain.Image{},
		Links:      []domain.Link{},
		CodeBlocks: []domain.CodeBlock{},
	}, nil
}

func normaliseLineEndings(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	return strings.ReplaceAll(s, "\r", "\n")
}
