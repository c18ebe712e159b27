package driving

import (
	"context"

	"github.com/custodia-labs/sercha-research/internal/core/domain"
)

// AuthService handles API client authentication
type AuthService interface {
	// IssueToken validates an API key and returns a bearer token
	IssueToken(ctx context.Context, req domain.TokenRequest) (*domain.TokenResponse, error)

	// ValidateToken validates a JWT token and returns the auth context
	ValidateToken(ctx context.Context, token string) (*domain.AuthContext, error)
}
