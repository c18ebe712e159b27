package domain

import "time"

// AuthContext contains authenticated client info for request context
type AuthContext struct {
	ClientID string `json:"client_id"`
	TokenID  string `json:"token_id"`
}

// TokenRequest exchanges an API key for a bearer token
type TokenRequest struct {
	ClientID string `json:"client_id"`
	APIKey   string `json:"api_key"`
}

// TokenResponse is returned after successful authentication
type TokenResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// TokenClaims represents the JWT token payload
type TokenClaims struct {
	ClientID  string `json:"client_id"`
	TokenID   string `json:"token_id"`
	IssuedAt  int64  `json:"iat"`
	ExpiresAt int64  `json:"exp"`
}

// IsExpired checks if the claims have expired at now
func (c *TokenClaims) IsExpired(now time.Time) bool {
	return now.Unix() >= c.ExpiresAt
}
