package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/custodia-labs/sercha-research/internal/core/domain"
	"github.com/custodia-labs/sercha-research/internal/core/ports/driven/mocks"
)

func newTestAuthService(clock *fakeClock) (*authService, *mocks.MockAuthAdapter) {
	adapter := mocks.NewMockAuthAdapter()
	return NewAuthService(AuthServiceConfig{
		AuthAdapter: adapter,
		APIKeyHash:  mocks.MockHash("secret-key"),
		TokenTTL:    time.Hour,
		Now:         clock.Now,
	}).(*authService), adapter
}

func TestAuthService_IssueToken(t *testing.T) {
	clock := newFakeClock()
	svc, _ := newTestAuthService(clock)

	tests := []struct {
		name    string
		req     domain.TokenRequest
		wantErr error
	}{
		{
			name:    "valid key",
			req:     domain.TokenRequest{ClientID: "cli", APIKey: "secret-key"},
			wantErr: nil,
		},
		{
			name:    "empty client",
			req:     domain.TokenRequest{APIKey: "secret-key"},
			wantErr: domain.ErrInvalidInput,
		},
		{
			name:    "empty key",
			req:     domain.TokenRequest{ClientID: "cli"},
			wantErr: domain.ErrInvalidInput,
		},
		{
			name:    "wrong key",
			req:     domain.TokenRequest{ClientID: "cli", APIKey: "guess"},
			wantErr: domain.ErrInvalidCredentials,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := svc.IssueToken(context.Background(), tt.req)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("expected error %v, got %v", tt.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if resp.Token == "" {
				t.Error("expected token to be set")
			}
			if !resp.ExpiresAt.Equal(clock.Now().Add(time.Hour)) {
				t.Errorf("unexpected expiry %v", resp.ExpiresAt)
			}
		})
	}
}

func TestAuthService_NoKeyConfigured(t *testing.T) {
	svc := NewAuthService(AuthServiceConfig{AuthAdapter: mocks.NewMockAuthAdapter()})

	_, err := svc.IssueToken(context.Background(), domain.TokenRequest{ClientID: "cli", APIKey: ""})
	if !errors.Is(err, domain.ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput, got %v", err)
	}
	_, err = svc.IssueToken(context.Background(), domain.TokenRequest{ClientID: "cli", APIKey: "anything"})
	if !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Errorf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestAuthService_ValidateToken(t *testing.T) {
	clock := newFakeClock()
	svc, adapter := newTestAuthService(clock)

	resp, err := svc.IssueToken(context.Background(), domain.TokenRequest{ClientID: "cli", APIKey: "secret-key"})
	if err != nil {
		t.Fatalf("failed to issue token: %v", err)
	}
	if got := adapter.Issued(); got != 1 {
		t.Fatalf("expected 1 issued token, got %d", got)
	}

	authCtx, err := svc.ValidateToken(context.Background(), resp.Token)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if authCtx.ClientID != "cli" {
		t.Errorf("expected client cli, got %s", authCtx.ClientID)
	}
	if authCtx.TokenID == "" {
		t.Error("expected token id")
	}

	if _, err := svc.ValidateToken(context.Background(), ""); !errors.Is(err, domain.ErrTokenInvalid) {
		t.Errorf("expected ErrTokenInvalid for empty token, got %v", err)
	}
	if _, err := svc.ValidateToken(context.Background(), "forged-token"); !errors.Is(err, domain.ErrTokenInvalid) {
		t.Errorf("expected ErrTokenInvalid for garbage, got %v", err)
	}

	clock.Advance(2 * time.Hour)
	if _, err := svc.ValidateToken(context.Background(), resp.Token); !errors.Is(err, domain.ErrTokenExpired) {
		t.Errorf("expected ErrTokenExpired, got %v", err)
	}
}
