package driven

import "github.com/custodia-labs/sercha-research/internal/core/domain"

// AuthAdapter signs and verifies the credentials guarding the HTTP API.
// HashSecret output is only ever compared through VerifySecret, so the
// hash format belongs to the adapter.
type AuthAdapter interface {
	HashSecret(secret string) (string, error)
	VerifySecret(secret, hash string) bool

	// GenerateToken encodes claims into a bearer token. ParseToken reverses
	// it and returns domain.ErrTokenInvalid for anything it did not issue.
	// Expiry is checked by the caller against its own clock.
	GenerateToken(claims *domain.TokenClaims) (string, error)
	ParseToken(token string) (*domain.TokenClaims, error)
}
