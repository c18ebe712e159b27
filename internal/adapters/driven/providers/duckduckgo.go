package providers

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/custodia-labs/sercha-research/internal/core/domain"
	"github.com/custodia-labs/sercha-research/internal/core/ports/driven"
)

// Verify interface compliance
var _ driven.SearchProvider = (*DuckDuckGo)(nil)

const (
	duckDuckGoEndpoint = "https://html.duckduckgo.com/html"
	noDescription      = "No description available"
)

// DuckDuckGo scrapes the DuckDuckGo HTML endpoint. It needs no API key and
// is always available.
type DuckDuckGo struct {
	endpoint string
	client   *client
}

// NewDuckDuckGo creates a DuckDuckGo provider
func NewDuckDuckGo(cfg Config) *DuckDuckGo {
	endpoint := cfg.BaseURL
	if endpoint == "" {
		endpoint = duckDuckGoEndpoint
	}
	return &DuckDuckGo{
		endpoint: endpoint,
		client:   newClient(cfg, "duckduckgo"),
	}
}

func (d *DuckDuckGo) Name() domain.ProviderID {
	return domain.ProviderDuckDuckGo
}

func (d *DuckDuckGo) Search(ctx context.Context, query string, maxResults int) ([]domain.SearchResult, error) {
	form := url.Values{}
	form.Set("q", query)
	form.Set("b", "")
	form.Set("kl", "us-en")
	encoded := form.Encode()

	body, err := d.client.do(ctx, func(ctx context.Context) (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.endpoint, strings.NewReader(encoded))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		return req, nil
	})
	if err != nil {
		return nil, fmt.Errorf("duckduckgo search: %w", err)
	}

	results, err := parseDuckDuckGo(body, maxResults)
	if err != nil {
		return nil, fmt.Errorf("duckduckgo search: %w", err)
	}

	d.client.logger.Info("duckduckgo search completed", "query", query, "results", len(results))
	return results, nil
}

// parseDuckDuckGo reads result links and snippets from the HTML page
func parseDuckDuckGo(page []byte, maxResults int) ([]domain.SearchResult, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(page))
	if err != nil {
		return nil, fmt.Errorf("parse results page: %w", err)
	}

	results := []domain.SearchResult{}
	doc.Find("a.result__a").EachWithBreak(func(_ int, link *goquery.Selection) bool {
		title := cleanText(link.Text())
		href, _ := link.Attr("href")
		target := resolveRedirect(strings.TrimSpace(href))
		if title == "" || target == "" || strings.HasPrefix(target, "javascript:") {
			return true
		}

		snippet := cleanText(link.Closest("div.result__body").Find(".result__snippet").First().Text())
		if snippet == "" {
			snippet = noDescription
		}

		results = append(results, domain.SearchResult{
			Title:    title,
			URL:      target,
			Snippet:  snippet,
			Provider: domain.ProviderDuckDuckGo,
		})
		return len(results) < maxResults
	})
	return results, nil
}

// resolveRedirect unwraps DuckDuckGo's //duckduckgo.com/l/?uddg=<target>
// click-tracking links
func resolveRedirect(href string) string {
	if !strings.Contains(href, "duckduckgo.com/l/") {
		return href
	}
	u, err := url.Parse(href)
	if err != nil {
		return href
	}
	if target := u.Query().Get("uddg"); target != "" {
		return target
	}
	return href
}
