package mocks

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/custodia-labs/sercha-research/internal/core/domain"
	"github.com/custodia-labs/sercha-research/internal/core/ports/driven"
)

// Ensure MockColdCache implements ColdCache
var _ driven.ColdCache = (*MockColdCache)(nil)

// MockColdCache is an in-memory ColdCache for testing. Entry sizes are the
// length of their JSON encoding and modification times come from Now.
type MockColdCache struct {
	mu      sync.RWMutex
	entries map[string]*domain.CacheEntry
	info    map[string]domain.ColdEntryInfo
	Now     func() time.Time
	FailIO  bool
}

// NewMockColdCache creates a new MockColdCache
func NewMockColdCache() *MockColdCache {
	return &MockColdCache{
		entries: make(map[string]*domain.CacheEntry),
		info:    make(map[string]domain.ColdEntryInfo),
		Now:     time.Now,
	}
}

var errMockIO = errors.New("mock cold cache: i/o error")

func (m *MockColdCache) Read(ctx context.Context, fingerprint string) (*domain.CacheEntry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.FailIO {
		return nil, errMockIO
	}
	e, ok := m.entries[fingerprint]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *e
	return &cp, nil
}

func (m *MockColdCache) Write(ctx context.Context, entry *domain.CacheEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailIO {
		return errMockIO
	}
	data, err := json.Marshal(entry)
	if err != nil {
		return err
	}
	cp := *entry
	m.entries[entry.Fingerprint] = &cp
	m.info[entry.Fingerprint] = domain.ColdEntryInfo{
		Fingerprint: entry.Fingerprint,
		Size:        int64(len(data)),
		ModTime:     m.Now(),
	}
	return nil
}

func (m *MockColdCache) Delete(ctx context.Context, fingerprint string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, fingerprint)
	delete(m.info, fingerprint)
	return nil
}

func (m *MockColdCache) Entries(ctx context.Context) ([]domain.ColdEntryInfo, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.FailIO {
		return nil, errMockIO
	}
	out := make([]domain.ColdEntryInfo, 0, len(m.info))
	for _, i := range m.info {
		out = append(out, i)
	}
	return out, nil
}

func (m *MockColdCache) Clear(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = make(map[string]*domain.CacheEntry)
	m.info = make(map[string]domain.ColdEntryInfo)
	return nil
}

// Has reports whether fingerprint is stored
func (m *MockColdCache) Has(fingerprint string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.entries[fingerprint]
	return ok
}

// Len returns the number of stored entries
func (m *MockColdCache) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries)
}

// Ensure MockHotCache implements HotCache
var _ driven.HotCache = (*MockHotCache)(nil)

// MockHotCache is a map-backed HotCache for testing
type MockHotCache struct {
	mu      sync.RWMutex
	entries map[string]domain.HotEntry
}

// NewMockHotCache creates a new MockHotCache
func NewMockHotCache() *MockHotCache {
	return &MockHotCache{entries: make(map[string]domain.HotEntry)}
}

func (m *MockHotCache) Get(fingerprint string) (domain.HotEntry, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	e, ok := m.entries[fingerprint]
	return e, ok
}

func (m *MockHotCache) Set(fingerprint string, entry domain.HotEntry) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[fingerprint] = entry
}

func (m *MockHotCache) Delete(fingerprint string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, fingerprint)
}

func (m *MockHotCache) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = make(map[string]domain.HotEntry)
}

func (m *MockHotCache) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries)
}
