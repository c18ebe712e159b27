package services

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/sercha-research/internal/core/domain"
	"github.com/custodia-labs/sercha-research/internal/core/ports/driven"
	"github.com/custodia-labs/sercha-research/internal/core/ports/driving"
)

// Ensure authService implements AuthService
var _ driving.AuthService = (*authService)(nil)

// DefaultTokenTTL is the lifetime of an issued API token
const DefaultTokenTTL = 24 * time.Hour

// authService implements the AuthService interface.
// Clients exchange the shared API key for a short-lived bearer token.
type authService struct {
	authAdapter driven.AuthAdapter
	apiKeyHash  string
	tokenTTL    time.Duration
	now         func() time.Time
}

// AuthServiceConfig holds dependencies for the auth service.
type AuthServiceConfig struct {
	AuthAdapter driven.AuthAdapter
	APIKeyHash  string // Hash of the API key as produced by AuthAdapter.HashSecret
	TokenTTL    time.Duration
	Now         func() time.Time
}

// NewAuthService creates a new AuthService
func NewAuthService(cfg AuthServiceConfig) driving.AuthService {
	ttl := cfg.TokenTTL
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	return &authService{
		authAdapter: cfg.AuthAdapter,
		apiKeyHash:  cfg.APIKeyHash,
		tokenTTL:    ttl,
		now:         now,
	}
}

// IssueToken validates an API key and returns a bearer token
func (s *authService) IssueToken(ctx context.Context, req domain.TokenRequest) (*domain.TokenResponse, error) {
	if req.ClientID == "" || req.APIKey == "" {
		return nil, domain.ErrInvalidInput
	}
	if s.apiKeyHash == "" || !s.authAdapter.VerifySecret(req.APIKey, s.apiKeyHash) {
		return nil, domain.ErrInvalidCredentials
	}

	now := s.now()
	expiresAt := now.Add(s.tokenTTL)
	claims := &domain.TokenClaims{
		ClientID:  req.ClientID,
		TokenID:   uuid.New().String(),
		IssuedAt:  now.Unix(),
		ExpiresAt: expiresAt.Unix(),
	}

	token, err := s.authAdapter.GenerateToken(claims)
	if err != nil {
		return nil, err
	}

	return &domain.TokenResponse{
		Token:     token,
		ExpiresAt: expiresAt,
	}, nil
}

// ValidateToken validates a JWT token and returns the auth context
func (s *authService) ValidateToken(ctx context.Context, token string) (*domain.AuthContext, error) {
	if token == "" {
		return nil, domain.ErrTokenInvalid
	}

	claims, err := s.authAdapter.ParseToken(token)
	if err != nil {
		return nil, domain.ErrTokenInvalid
	}

	if claims.IsExpired(s.now()) {
		return nil, domain.ErrTokenExpired
	}

	return &domain.AuthContext{
		ClientID: claims.ClientID,
		TokenID:  claims.TokenID,
	}, nil
}
