package mocks

import (
	"context"
	"sync"
	"time"

	"github.com/custodia-labs/sercha-research/internal/core/ports/driven"
)

// Ensure MockCacheLock implements CacheLock
var _ driven.CacheLock = (*MockCacheLock)(nil)

// MockCacheLock is an in-memory CacheLock for testing. Locks never expire.
type MockCacheLock struct {
	mu       sync.Mutex
	held     map[string]bool
	acquires int
	err      error
}

// NewMockCacheLock creates a new MockCacheLock
func NewMockCacheLock() *MockCacheLock {
	return &MockCacheLock{held: make(map[string]bool)}
}

// Hold marks name as held by another instance
func (m *MockCacheLock) Hold(name string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.held[name] = true
}

// SetError makes TryAcquire fail with err
func (m *MockCacheLock) SetError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

func (m *MockCacheLock) TryAcquire(ctx context.Context, name string, ttl time.Duration) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return false, m.err
	}
	if m.held[name] {
		return false, nil
	}
	m.held[name] = true
	m.acquires++
	return true, nil
}

func (m *MockCacheLock) Release(ctx context.Context, name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.held, name)
	return nil
}

// Held reports whether name is currently held
func (m *MockCacheLock) Held(name string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.held[name]
}

// Acquires returns how many times a lock was taken
func (m *MockCacheLock) Acquires() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.acquires
}
