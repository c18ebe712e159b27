package domain

import (
	"errors"
	"fmt"
	"testing"
)

var sentinels = []error{
	ErrNotFound,
	ErrInvalidInput,
	ErrInvalidCredentials,
	ErrTokenInvalid,
	ErrTokenExpired,
	ErrMissingCredentials,
	ErrProviderUnavailable,
	ErrFallbackDisabled,
	ErrNoHandler,
	ErrActionAlreadyExecuted,
	ErrExtractionFailed,
	ErrServiceUnavailable,
}

func TestSentinelErrors_Distinct(t *testing.T) {
	seen := make(map[string]bool)
	for i, a := range sentinels {
		if seen[a.Error()] {
			t.Errorf("duplicate message %q", a.Error())
		}
		seen[a.Error()] = true
		for j, b := range sentinels {
			if i != j && errors.Is(a, b) {
				t.Errorf("%v should not match %v", a, b)
			}
		}
	}
}

func TestSentinelErrors_SurviveWrapping(t *testing.T) {
	err := fmt.Errorf("search brave: %w", fmt.Errorf("provider: %w", ErrMissingCredentials))
	if !errors.Is(err, ErrMissingCredentials) {
		t.Errorf("expected %v to match ErrMissingCredentials", err)
	}
	if errors.Is(err, ErrProviderUnavailable) {
		t.Error("wrapped error matched the wrong sentinel")
	}

	joined := errors.Join(ErrExtractionFailed, ErrServiceUnavailable)
	if !errors.Is(joined, ErrExtractionFailed) || !errors.Is(joined, ErrServiceUnavailable) {
		t.Error("joined error should match both sentinels")
	}
}
