package mocks

import (
	"fmt"
	"strings"
	"sync"

	"github.com/custodia-labs/sercha-research/internal/core/domain"
	"github.com/custodia-labs/sercha-research/internal/core/ports/driven"
)

// Ensure MockAuthAdapter implements AuthAdapter
var _ driven.AuthAdapter = (*MockAuthAdapter)(nil)

const mockHashPrefix = "mock-hash:"

// MockAuthAdapter is an in-memory AuthAdapter for testing. Hashes are the
// secret behind a fixed prefix and tokens are opaque handles to stored claims.
type MockAuthAdapter struct {
	mu     sync.Mutex
	tokens map[string]domain.TokenClaims
	issued int
}

// NewMockAuthAdapter creates a new MockAuthAdapter
func NewMockAuthAdapter() *MockAuthAdapter {
	return &MockAuthAdapter{tokens: make(map[string]domain.TokenClaims)}
}

// MockHash returns the hash HashSecret produces for secret
func MockHash(secret string) string {
	return mockHashPrefix + secret
}

func (m *MockAuthAdapter) HashSecret(secret string) (string, error) {
	return MockHash(secret), nil
}

func (m *MockAuthAdapter) VerifySecret(secret, hash string) bool {
	return strings.HasPrefix(hash, mockHashPrefix) && MockHash(secret) == hash
}

// GenerateToken stores a copy of claims under a new handle
func (m *MockAuthAdapter) GenerateToken(claims *domain.TokenClaims) (string, error) {
	if claims == nil {
		return "", fmt.Errorf("nil claims")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.issued++
	token := fmt.Sprintf("mock-token-%d", m.issued)
	m.tokens[token] = *claims
	return token, nil
}

// ParseToken returns the claims stored for token. Expiry is left to the caller.
func (m *MockAuthAdapter) ParseToken(token string) (*domain.TokenClaims, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	claims, ok := m.tokens[token]
	if !ok {
		return nil, domain.ErrTokenInvalid
	}
	return &claims, nil
}

// Issued returns how many tokens were generated
func (m *MockAuthAdapter) Issued() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.issued
}
