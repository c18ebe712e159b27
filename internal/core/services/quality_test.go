package services

import (
	"errors"
	"testing"
	"time"

	"github.com/custodia-labs/sercha-research/internal/core/domain"
)

func executed(kind domain.ActionKind, params domain.ActionParams, result any, err error) *domain.Action {
	a := domain.NewAction(1, kind, params, time.Now())
	_ = a.Complete(result, err)
	return a
}

func TestScoreQuality(t *testing.T) {
	rich := &domain.ExtractedDocument{
		Markdown:   "content",
		CodeBlocks: []domain.CodeBlock{{Code: "fmt.Println()"}},
		Metrics:    domain.DocumentMetrics{WordCount: 250, CodeBlockCount: 1},
	}

	tests := []struct {
		name   string
		action *domain.Action
		want   float64
	}{
		{"pending", domain.NewAction(1, domain.ActionSearch, domain.ActionParams{}, time.Now()), 0},
		{"failed", executed(domain.ActionSearch, domain.ActionParams{}, nil, errors.New("boom")), 0},
		{"search empty", executed(domain.ActionSearch, domain.ActionParams{}, &domain.SearchResponse{}, nil), 0},
		{"search two", executed(domain.ActionSearch, domain.ActionParams{}, &domain.SearchResponse{Results: makeResults("a", 2)}, nil), 0.5},
		{"search five", executed(domain.ActionSearch, domain.ActionParams{}, &domain.SearchResponse{Results: makeResults("a", 5)}, nil), 0.5},
		{"search twelve", executed(domain.ActionSearch, domain.ActionParams{}, &domain.SearchResponse{Results: makeResults("a", 12)}, nil), 1},
		{"search value", executed(domain.ActionSearch, domain.ActionParams{}, domain.SearchResponse{Results: makeResults("a", 8)}, nil), 0.8},
		{"extract empty", executed(domain.ActionExtract, domain.ActionParams{}, &domain.ExtractedDocument{}, nil), 0},
		{"extract short", executed(domain.ActionExtract, domain.ActionParams{}, &domain.ExtractedDocument{Markdown: "hi"}, nil), 0.5},
		{"extract code not preserved", executed(domain.ActionExtract, domain.ActionParams{}, rich, nil), 0.8},
		{"extract code preserved", executed(domain.ActionExtract, domain.ActionParams{PreserveCode: true}, rich, nil), 1},
		{"memorize receipt", executed(domain.ActionMemorize, domain.ActionParams{}, &domain.MemoryReceipt{ID: "mem_1"}, nil), 1},
		{"cache true", executed(domain.ActionCache, domain.ActionParams{}, true, nil), 1},
		{"cache false", executed(domain.ActionCache, domain.ActionParams{}, false, nil), 0},
		{"chunk", executed(domain.ActionChunk, domain.ActionParams{}, []string{"a"}, nil), 0.5},
		{"chunk nil", executed(domain.ActionChunk, domain.ActionParams{}, nil, nil), 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ScoreQuality(tt.action)
			if diff := got - tt.want; diff > 1e-9 || diff < -1e-9 {
				t.Errorf("ScoreQuality() = %v, want %v", got, tt.want)
			}
			if got < 0 || got > 1 {
				t.Errorf("ScoreQuality() = %v out of [0, 1]", got)
			}
		})
	}
}

func TestScoreQuality_Nil(t *testing.T) {
	if got := ScoreQuality(nil); got != 0 {
		t.Errorf("expected 0, got %v", got)
	}
}

func TestSummarizeAction(t *testing.T) {
	tests := []struct {
		name   string
		action *domain.Action
		want   string
	}{
		{
			"failure",
			executed(domain.ActionExtract, domain.ActionParams{}, nil, errors.New("timeout")),
			"Action extract failed: timeout",
		},
		{
			"search",
			executed(domain.ActionSearch, domain.ActionParams{}, &domain.SearchResponse{
				Results:       makeResults("a", 4),
				ProvidersUsed: []domain.ProviderID{domain.ProviderBrave, domain.ProviderDuckDuckGo},
			}, nil),
			"Found 4 results using brave, duckduckgo",
		},
		{
			"extract",
			executed(domain.ActionExtract, domain.ActionParams{}, &domain.ExtractedDocument{
				Metrics: domain.DocumentMetrics{WordCount: 320, CodeBlockCount: 2},
			}, nil),
			"Extracted 320 words with 2 code blocks",
		},
		{"chunk", executed(domain.ActionChunk, domain.ActionParams{}, []string{"a", "b"}, nil), "Created 2 chunks"},
		{"memorize", executed(domain.ActionMemorize, domain.ActionParams{}, &domain.MemoryReceipt{ID: "mem_ab12cd34"}, nil), "Memorized with ID: mem_ab12cd34"},
		{"cache", executed(domain.ActionCache, domain.ActionParams{}, true, nil), "Action cache completed"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SummarizeAction(tt.action); got != tt.want {
				t.Errorf("SummarizeAction() = %q, want %q", got, tt.want)
			}
		})
	}
}
