package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/custodia-labs/sercha-research/internal/core/domain"
	"github.com/custodia-labs/sercha-research/internal/core/ports/driven"
)

// Verify interface compliance
var _ driven.SearchProvider = (*Brave)(nil)

const (
	braveEndpoint   = "https://api.search.brave.com/res/v1/web/search"
	braveMaxResults = 20
)

// Brave queries the Brave Search web API
type Brave struct {
	apiKey   string
	endpoint string
	client   *client
}

// NewBrave creates a Brave provider. An empty API key is rejected with
// domain.ErrMissingCredentials so the provider is never registered.
func NewBrave(apiKey string, cfg Config) (*Brave, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("brave: %w", domain.ErrMissingCredentials)
	}
	endpoint := cfg.BaseURL
	if endpoint == "" {
		endpoint = braveEndpoint
	}
	return &Brave{
		apiKey:   apiKey,
		endpoint: endpoint,
		client:   newClient(cfg, "brave"),
	}, nil
}

func (b *Brave) Name() domain.ProviderID {
	return domain.ProviderBrave
}

type braveResponse struct {
	Web struct {
		Results []struct {
			Title       string `json:"title"`
			URL         string `json:"url"`
			Description string `json:"description"`
			Age         string `json:"age"`
			MetaURL     struct {
				Favicon string `json:"favicon"`
			} `json:"meta_url"`
		} `json:"results"`
	} `json:"web"`
}

func (b *Brave) Search(ctx context.Context, query string, maxResults int) ([]domain.SearchResult, error) {
	params := url.Values{}
	params.Set("q", query)
	params.Set("count", strconv.Itoa(clamp(maxResults, braveMaxResults)))
	params.Set("safesearch", "moderate")
	params.Set("search_lang", "en")
	params.Set("country", "us")

	body, err := b.client.do(ctx, func(ctx context.Context) (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, b.endpoint+"?"+params.Encode(), nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Accept", "application/json")
		req.Header.Set("X-Subscription-Token", b.apiKey)
		return req, nil
	})
	if err != nil {
		return nil, fmt.Errorf("brave search: %w", err)
	}

	var resp braveResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("brave search: decode response: %w", err)
	}

	results := make([]domain.SearchResult, 0, len(resp.Web.Results))
	for _, item := range resp.Web.Results {
		if item.URL == "" {
			continue
		}
		extra := map[string]string{}
		if item.Age != "" {
			extra["age"] = item.Age
		}
		if item.MetaURL.Favicon != "" {
			extra["favicon"] = item.MetaURL.Favicon
		}
		results = append(results, domain.SearchResult{
			Title:    cleanText(item.Title),
			URL:      item.URL,
			Snippet:  cleanText(item.Description),
			Provider: domain.ProviderBrave,
			Extra:    nilIfEmpty(extra),
		})
		if len(results) == maxResults {
			break
		}
	}

	b.client.logger.Debug("brave search completed", "query", query, "results", len(results))
	return results, nil
}

// clamp bounds n to [1, max]
func clamp(n, max int) int {
	if n <= 0 {
		return 1
	}
	if n > max {
		return max
	}
	return n
}

func nilIfEmpty(m map[string]string) map[string]string {
	if len(m) == 0 {
		return nil
	}
	return m
}
