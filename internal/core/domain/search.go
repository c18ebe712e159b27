package domain

import "strings"

// ProviderID names a web search provider
type ProviderID string

const (
	ProviderAuto       ProviderID = "auto" // Resolve to the configured fallback chain
	ProviderBrave      ProviderID = "brave"
	ProviderDuckDuckGo ProviderID = "duckduckgo"
	ProviderGoogle     ProviderID = "google"
)

// DefaultFallbackChain returns the default provider priority order
func DefaultFallbackChain() []ProviderID {
	return []ProviderID{ProviderBrave, ProviderDuckDuckGo, ProviderGoogle}
}

// ParseProviderIDs converts raw names into provider IDs, dropping blanks
func ParseProviderIDs(names []string) []ProviderID {
	ids := make([]ProviderID, 0, len(names))
	for _, name := range names {
		name = strings.ToLower(strings.TrimSpace(name))
		if name == "" {
			continue
		}
		ids = append(ids, ProviderID(name))
	}
	return ids
}

// ContainsProvider reports whether id is present in ids
func ContainsProvider(ids []ProviderID, id ProviderID) bool {
	for _, candidate := range ids {
		if candidate == id {
			return true
		}
	}
	return false
}

// SearchQuery is a single search request. Treat it as immutable once issued.
type SearchQuery struct {
	Text       string       `json:"query"`
	Sources    []ProviderID `json:"sources,omitempty"`
	MaxResults int          `json:"max_results"`
	Fallback   *bool        `json:"fallback,omitempty"`
}

// FallbackEnabled reports whether later providers may be tried after a
// failure (default true)
func (q SearchQuery) FallbackEnabled() bool {
	return q.Fallback == nil || *q.Fallback
}

// WantsAuto reports whether the query should use the configured fallback chain
func (q SearchQuery) WantsAuto() bool {
	return len(q.Sources) == 0 || ContainsProvider(q.Sources, ProviderAuto)
}

// SearchResult is one hit returned by a provider. URL is the dedup key.
type SearchResult struct {
	Title    string            `json:"title"`
	URL      string            `json:"url"`
	Snippet  string            `json:"snippet"`
	Provider ProviderID        `json:"provider"`
	Extra    map[string]string `json:"extra,omitempty"`
}

// ProviderError records a failed provider call
type ProviderError struct {
	Provider ProviderID `json:"provider"`
	Message  string     `json:"error"`
}

// SearchResponse is the merged output of one fallback search
type SearchResponse struct {
	Query         string          `json:"query"`
	Results       []SearchResult  `json:"results"`
	TotalResults  int             `json:"total_results"`
	ProvidersUsed []ProviderID    `json:"providers_used"`
	Errors        []ProviderError `json:"errors"`
	Success       bool            `json:"success"`
}

// URLs returns the result URLs in rank order
func (r *SearchResponse) URLs() []string {
	urls := make([]string, 0, len(r.Results))
	for _, res := range r.Results {
		urls = append(urls, res.URL)
	}
	return urls
}
