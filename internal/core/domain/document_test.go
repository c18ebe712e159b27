package domain

import "testing"

func TestChunkStrategy_IsValid(t *testing.T) {
	for _, s := range []ChunkStrategy{ChunkAuto, ChunkContentAware, ChunkFixed, ChunkNone} {
		if !s.IsValid() {
			t.Errorf("expected %q to be valid", s)
		}
	}
	if ChunkStrategy("semantic").IsValid() {
		t.Error("expected unknown strategy to be invalid")
	}
}

func TestChunkStrategy_UseContentAware(t *testing.T) {
	tests := []struct {
		strategy ChunkStrategy
		length   int
		want     bool
	}{
		{ChunkContentAware, 10, true},
		{ChunkAuto, ContentAwareThreshold, false},
		{ChunkAuto, ContentAwareThreshold + 1, true},
		{ChunkFixed, 100000, false},
		{ChunkNone, 100000, false},
	}

	for _, tt := range tests {
		if got := tt.strategy.UseContentAware(tt.length); got != tt.want {
			t.Errorf("%s.UseContentAware(%d) = %v, want %v", tt.strategy, tt.length, got, tt.want)
		}
	}
}

func TestExtractedDocument_HasContent(t *testing.T) {
	var nilDoc *ExtractedDocument
	if nilDoc.HasContent() {
		t.Error("nil document should have no content")
	}
	if (&ExtractedDocument{}).HasContent() {
		t.Error("empty document should have no content")
	}
	if !(&ExtractedDocument{Markdown: "# Title"}).HasContent() {
		t.Error("document with markdown should have content")
	}
}
