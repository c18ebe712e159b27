// Package normalisers turns fetched pages into readable documents. The
// registry picks a normaliser by the response MIME type.
package normalisers

import (
	"sort"
	"strings"
	"sync"

	"github.com/custodia-labs/sercha-research/internal/core/domain"
)

// Page is a fetched web resource
type Page struct {
	URL         string // Final URL after redirects, used to resolve relative links
	ContentType string
	Body        []byte
}

// Normaliser converts one kind of page into an ExtractedDocument. It fills
// title, content, text, images, links and code blocks; metrics and the
// excerpt are derived afterwards by the caller.
type Normaliser interface {
	Normalise(page Page) (*domain.ExtractedDocument, error)

	// SupportedTypes returns MIME types this normaliser handles.
	// Can include wildcards like "text/*".
	SupportedTypes() []string

	// Priority returns the normaliser priority (higher = more specific).
	//   50-89: Format-specific (HTML, Markdown)
	//   1-9:   Fallback (raw text)
	Priority() int
}

// Registry selects normalisers by MIME type with priority-based selection.
// When multiple normalisers match, the highest priority one is used.
type Registry struct {
	mu          sync.RWMutex
	normalisers []Normaliser
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		normalisers: make([]Normaliser, 0),
	}
}

// Register adds a normaliser.
func (r *Registry) Register(normaliser Normaliser) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.normalisers = append(r.normalisers, normaliser)
}

// Get returns the best-matching normaliser for a MIME type, or nil.
func (r *Registry) Get(mimeType string) Normaliser {
	matches := r.GetAll(mimeType)
	if len(matches) == 0 {
		return nil
	}
	return matches[0]
}

// GetAll returns all normalisers matching a MIME type, highest priority first.
func (r *Registry) GetAll(mimeType string) []Normaliser {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var matches []Normaliser
	for _, n := range r.normalisers {
		if matchesMIMEType(n.SupportedTypes(), mimeType) {
			matches = append(matches, n)
		}
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Priority() > matches[j].Priority()
	})

	return matches
}

// List returns all registered MIME types, sorted.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	typeSet := make(map[string]struct{})
	for _, n := range r.normalisers {
		for _, t := range n.SupportedTypes() {
			typeSet[t] = struct{}{}
		}
	}

	types := make([]string, 0, len(typeSet))
	for t := range typeSet {
		types = append(types, t)
	}
	sort.Strings(types)
	return types
}

// matchesMIMEType checks if any supported type matches mimeType.
// Supports wildcard matching (e.g., "text/*" matches "text/plain").
func matchesMIMEType(supportedTypes []string, mimeType string) bool {
	mimeType = baseMIMEType(mimeType)

	for _, supported := range supportedTypes {
		supported = strings.ToLower(strings.TrimSpace(supported))

		if supported == mimeType || supported == "*/*" {
			return true
		}
		if strings.HasSuffix(supported, "/*") && strings.HasPrefix(mimeType, supported[:len(supported)-1]) {
			return true
		}
	}

	return false
}

// baseMIMEType lowercases mimeType and strips parameters such as charset
func baseMIMEType(mimeType string) string {
	mimeType = strings.ToLower(strings.TrimSpace(mimeType))
	if idx := strings.Index(mimeType, ";"); idx != -1 {
		mimeType = strings.TrimSpace(mimeType[:idx])
	}
	return mimeType
}

// DefaultRegistry creates a registry with the built-in normalisers.
// preserveInlineCode controls whether inline <code> outside <pre> is
// reported as code blocks.
func DefaultRegistry(preserveInlineCode bool) *Registry {
	r := NewRegistry()
	r.Register(&PlaintextNormaliser{})
	r.Register(&MarkdownNormaliser{})
	r.Register(&HTMLNormaliser{PreserveInlineCode: preserveInlineCode})
	return r
}
