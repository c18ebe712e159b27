package services

import (
	"fmt"
	"math"
	"strings"

	"github.com/custodia-labs/sercha-research/internal/core/domain"
)

// ScoreQuality estimates how useful an executed action's outcome is.
// The score is always within [0, 1]; pending actions and errors score 0.
func ScoreQuality(a *domain.Action) float64 {
	if a == nil || !a.Executed() || a.Error != "" {
		return 0
	}

	switch a.Kind {
	case domain.ActionSearch:
		resp := asSearchResponse(a.Result)
		if resp == nil {
			return 0
		}
		n := len(resp.Results)
		switch {
		case n == 0:
			return 0
		case n < 3:
			return 0.5
		default:
			return math.Min(1, float64(n)/10)
		}

	case domain.ActionExtract:
		doc := asDocument(a.Result)
		if doc == nil {
			return 0
		}
		score := 0.0
		if doc.HasContent() {
			score += 0.5
		}
		if doc.Metrics.WordCount > 100 {
			score += 0.3
		}
		if len(doc.CodeBlocks) > 0 && a.Params.PreserveCode {
			score += 0.2
		}
		return math.Min(1, score)

	case domain.ActionMemorize, domain.ActionCache:
		if storageSucceeded(a.Result) {
			return 1
		}
		return 0

	default:
		if a.Result != nil {
			return 0.5
		}
		return 0
	}
}

// SummarizeAction renders the one-line observation text for an executed action
func SummarizeAction(a *domain.Action) string {
	if a.Error != "" {
		return fmt.Sprintf("Action %s failed: %s", a.Kind, a.Error)
	}

	switch a.Kind {
	case domain.ActionSearch:
		if resp := asSearchResponse(a.Result); resp != nil {
			names := make([]string, len(resp.ProvidersUsed))
			for i, p := range resp.ProvidersUsed {
				names[i] = string(p)
			}
			return fmt.Sprintf("Found %d results using %s", len(resp.Results), strings.Join(names, ", "))
		}
	case domain.ActionExtract:
		if doc := asDocument(a.Result); doc != nil {
			return fmt.Sprintf("Extracted %d words with %d code blocks", doc.Metrics.WordCount, doc.Metrics.CodeBlockCount)
		}
	case domain.ActionChunk:
		if chunks, ok := a.Result.([]string); ok {
			return fmt.Sprintf("Created %d chunks", len(chunks))
		}
		return "Chunking completed"
	case domain.ActionMemorize:
		if receipt, ok := a.Result.(*domain.MemoryReceipt); ok && receipt != nil {
			return "Memorized with ID: " + receipt.ID
		}
		return "Memorized with ID: unknown"
	}
	return fmt.Sprintf("Action %s completed", a.Kind)
}

func asSearchResponse(v any) *domain.SearchResponse {
	switch r := v.(type) {
	case *domain.SearchResponse:
		return r
	case domain.SearchResponse:
		return &r
	}
	return nil
}

func asDocument(v any) *domain.ExtractedDocument {
	switch d := v.(type) {
	case *domain.ExtractedDocument:
		return d
	case domain.ExtractedDocument:
		return &d
	}
	return nil
}

func storageSucceeded(v any) bool {
	switch r := v.(type) {
	case nil:
		return false
	case bool:
		return r
	case *domain.MemoryReceipt:
		return r != nil
	}
	return true
}
