package domain

import "testing"

func TestDefaultFallbackChain(t *testing.T) {
	chain := DefaultFallbackChain()
	want := []ProviderID{ProviderBrave, ProviderDuckDuckGo, ProviderGoogle}
	if len(chain) != len(want) {
		t.Fatalf("expected %d providers, got %d", len(want), len(chain))
	}
	for i := range want {
		if chain[i] != want[i] {
			t.Errorf("position %d: expected %s, got %s", i, want[i], chain[i])
		}
	}

	// Callers may modify the returned slice
	chain[0] = ProviderGoogle
	if DefaultFallbackChain()[0] != ProviderBrave {
		t.Error("DefaultFallbackChain should return a fresh slice")
	}
}

func TestParseProviderIDs(t *testing.T) {
	ids := ParseProviderIDs([]string{" Brave", "", "duckduckgo ", "  "})
	if len(ids) != 2 {
		t.Fatalf("expected 2 ids, got %v", ids)
	}
	if ids[0] != ProviderBrave || ids[1] != ProviderDuckDuckGo {
		t.Errorf("unexpected ids %v", ids)
	}
}

func TestSearchQuery_WantsAuto(t *testing.T) {
	tests := []struct {
		name    string
		sources []ProviderID
		want    bool
	}{
		{"nil sources", nil, true},
		{"empty sources", []ProviderID{}, true},
		{"auto only", []ProviderID{ProviderAuto}, true},
		{"auto mixed in", []ProviderID{ProviderGoogle, ProviderAuto}, true},
		{"explicit", []ProviderID{ProviderGoogle}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := SearchQuery{Text: "go", Sources: tt.sources}
			if got := q.WantsAuto(); got != tt.want {
				t.Errorf("WantsAuto() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSearchResponse_URLs(t *testing.T) {
	resp := &SearchResponse{
		Results: []SearchResult{
			{URL: "https://a.example"},
			{URL: "https://b.example"},
		},
	}
	urls := resp.URLs()
	if len(urls) != 2 || urls[0] != "https://a.example" || urls[1] != "https://b.example" {
		t.Errorf("unexpected urls %v", urls)
	}
}
