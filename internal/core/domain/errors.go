package domain

import "errors"

// Request errors
var (
	ErrNotFound     = errors.New("not found")
	ErrInvalidInput = errors.New("invalid input")
)

// Auth errors. ErrTokenInvalid covers any token that fails to parse or
// verify; ErrTokenExpired is only returned for an otherwise valid token.
var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrTokenInvalid       = errors.New("token invalid")
	ErrTokenExpired       = errors.New("token expired")
)

// Search errors
var (
	// ErrMissingCredentials is returned by a provider built without its API key
	ErrMissingCredentials = errors.New("missing credentials")
	// ErrProviderUnavailable means the provider is not registered
	ErrProviderUnavailable = errors.New("provider unavailable")
	// ErrFallbackDisabled stops the chain after the first provider failure
	ErrFallbackDisabled = errors.New("provider failed and fallback is disabled")
)

// Research errors
var (
	ErrNoHandler             = errors.New("no handler registered")
	ErrActionAlreadyExecuted = errors.New("action already executed")
	ErrExtractionFailed      = errors.New("extraction failed")
	ErrServiceUnavailable    = errors.New("service unavailable")
)
