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
var _ driven.SearchProvider = (*Google)(nil)

const (
	googleEndpoint   = "https://www.googleapis.com/customsearch/v1"
	googleMaxResults = 10
)

// Google queries the Google Custom Search JSON API
type Google struct {
	apiKey   string
	engineID string
	endpoint string
	client   *client
}

// NewGoogle creates a Google provider. Both the API key and the search
// engine ID (cx) are required.
func NewGoogle(apiKey, engineID string, cfg Config) (*Google, error) {
	if apiKey == "" || engineID == "" {
		return nil, fmt.Errorf("google: %w", domain.ErrMissingCredentials)
	}
	endpoint := cfg.BaseURL
	if endpoint == "" {
		endpoint = googleEndpoint
	}
	return &Google{
		apiKey:   apiKey,
		engineID: engineID,
		endpoint: endpoint,
		client:   newClient(cfg, "google"),
	}, nil
}

func (g *Google) Name() domain.ProviderID {
	return domain.ProviderGoogle
}

type googleResponse struct {
	Items []struct {
		Title      string `json:"title"`
		Link       string `json:"link"`
		Snippet    string `json:"snippet"`
		Mime       string `json:"mime"`
		FileFormat string `json:"fileFormat"`
	} `json:"items"`
}

func (g *Google) Search(ctx context.Context, query string, maxResults int) ([]domain.SearchResult, error) {
	params := url.Values{}
	params.Set("key", g.apiKey)
	params.Set("cx", g.engineID)
	params.Set("q", query)
	params.Set("num", strconv.Itoa(clamp(maxResults, googleMaxResults)))

	body, err := g.client.do(ctx, func(ctx context.Context) (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.endpoint+"?"+params.Encode(), nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Accept", "application/json")
		return req, nil
	})
	if err != nil {
		return nil, fmt.Errorf("google search: %w", err)
	}

	var resp googleResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("google search: decode response: %w", err)
	}

	results := make([]domain.SearchResult, 0, len(resp.Items))
	for _, item := range resp.Items {
		if item.Link == "" {
			continue
		}
		extra := map[string]string{}
		if item.Mime != "" {
			extra["mime_type"] = item.Mime
		}
		if item.FileFormat != "" {
			extra["file_format"] = item.FileFormat
		}
		results = append(results, domain.SearchResult{
			Title:    cleanText(item.Title),
			URL:      item.Link,
			Snippet:  cleanText(item.Snippet),
			Provider: domain.ProviderGoogle,
			Extra:    nilIfEmpty(extra),
		})
		if len(results) == maxResults {
			break
		}
	}
	return results, nil
}
