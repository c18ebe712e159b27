package mocks

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/custodia-labs/sercha-research/internal/core/domain"
	"github.com/custodia-labs/sercha-research/internal/core/ports/driven"
)

// Ensure MockMemoryStore implements MemoryStore
var _ driven.MemoryStore = (*MockMemoryStore)(nil)

// MockMemoryStore is a mock implementation of MemoryStore for testing
type MockMemoryStore struct {
	mu      sync.RWMutex
	records []*domain.MemoryRecord
	err     error
	seq     int
}

// NewMockMemoryStore creates a new MockMemoryStore
func NewMockMemoryStore() *MockMemoryStore {
	return &MockMemoryStore{}
}

// SetError makes Memorize fail with err
func (m *MockMemoryStore) SetError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

func (m *MockMemoryStore) Memorize(ctx context.Context, record *domain.MemoryRecord) (*domain.MemoryReceipt, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	m.seq++
	cp := *record
	if cp.ID == "" {
		cp.ID = fmt.Sprintf("mem_%08d", m.seq)
	}
	m.records = append(m.records, &cp)
	return &domain.MemoryReceipt{ID: cp.ID, Status: domain.MemoryStatusStored, Timestamp: time.Now()}, nil
}

func (m *MockMemoryStore) Get(ctx context.Context, id string) (*domain.MemoryRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, r := range m.records {
		if r.ID == id {
			return r, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *MockMemoryStore) List(ctx context.Context, limit int) ([]*domain.MemoryRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*domain.MemoryRecord
	for i := len(m.records) - 1; i >= 0; i-- {
		if limit > 0 && len(out) >= limit {
			break
		}
		out = append(out, m.records[i])
	}
	return out, nil
}

// Records returns all stored records in insertion order
func (m *MockMemoryStore) Records() []*domain.MemoryRecord {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*domain.MemoryRecord, len(m.records))
	copy(out, m.records)
	return out
}
