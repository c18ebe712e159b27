package domain

import "testing"

func TestResearchRequest_ApplyDefaults(t *testing.T) {
	req := &ResearchRequest{Query: "go generics"}
	req.ApplyDefaults()

	if req.Mode != ResearchAuto {
		t.Errorf("expected auto mode, got %s", req.Mode)
	}
	if len(req.Sources) != 1 || req.Sources[0] != "auto" {
		t.Errorf("expected [auto] sources, got %v", req.Sources)
	}
	if req.Extract != ExtractSmart {
		t.Errorf("expected smart extract, got %s", req.Extract)
	}
	if req.ChunkStrategy != ChunkAuto {
		t.Errorf("expected auto chunking, got %s", req.ChunkStrategy)
	}
	if req.MaxResults != 10 || req.MaxExtractions != 3 {
		t.Errorf("unexpected limits %d/%d", req.MaxResults, req.MaxExtractions)
	}
	if !req.ShouldMemorize() || !req.FallbackEnabled() {
		t.Error("memorize and fallback should default to true")
	}
}

func TestResearchRequest_ExplicitFlags(t *testing.T) {
	off := false
	req := &ResearchRequest{Query: "q", Memorize: &off, Fallback: &off}
	if req.ShouldMemorize() {
		t.Error("memorize=false should be honoured")
	}
	if req.FallbackEnabled() {
		t.Error("fallback=false should be honoured")
	}
}
