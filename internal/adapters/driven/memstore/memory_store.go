// Package memstore keeps research memories in process, optionally
// snapshotting them to a JSON file so they survive restarts.
package memstore

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/custodia-labs/sercha-research/internal/core/domain"
	"github.com/custodia-labs/sercha-research/internal/core/ports/driven"
	"github.com/google/uuid"
	"github.com/natefinch/atomic"
)

// Verify interface compliance
var _ driven.MemoryStore = (*MemoryStore)(nil)

// DefaultListLimit bounds List when no limit is given
const DefaultListLimit = 50

// MemoryStore implements driven.MemoryStore in memory.
// With a path set every Memorize rewrites the snapshot file atomically.
type MemoryStore struct {
	mu      sync.RWMutex
	records map[string]*domain.MemoryRecord
	path    string
}

// New creates an empty store without persistence
func New() *MemoryStore {
	return &MemoryStore{records: make(map[string]*domain.MemoryRecord)}
}

// Open creates a store backed by the snapshot at path, loading it if present
func Open(path string) (*MemoryStore, error) {
	if path == "" {
		return nil, fmt.Errorf("%w: snapshot path is required", domain.ErrInvalidInput)
	}
	s := New()
	s.path = path

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read memory snapshot: %w", err)
	}

	var records []*domain.MemoryRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("failed to decode memory snapshot: %w", err)
	}
	for _, r := range records {
		s.records[r.ID] = r
	}
	return s, nil
}

// Memorize stores a copy of record
func (s *MemoryStore) Memorize(ctx context.Context, record *domain.MemoryRecord) (*domain.MemoryReceipt, error) {
	if record == nil || record.Query == "" {
		return nil, fmt.Errorf("%w: record query is required", domain.ErrInvalidInput)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	rec := *record
	if rec.ID == "" {
		rec.ID = "mem_" + uuid.New().String()[:8]
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now()
	}
	rec.KeyFindings = append([]string{}, rec.KeyFindings...)
	rec.Tags = append([]string{}, rec.Tags...)

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.records[rec.ID]; exists {
		return nil, fmt.Errorf("%w: memory %s already exists", domain.ErrInvalidInput, rec.ID)
	}
	s.records[rec.ID] = &rec

	if err := s.persistLocked(); err != nil {
		delete(s.records, rec.ID)
		return nil, err
	}

	return &domain.MemoryReceipt{
		ID:        rec.ID,
		Status:    domain.MemoryStatusStored,
		Timestamp: rec.CreatedAt,
	}, nil
}

// Get retrieves a record by ID
func (s *MemoryStore) Get(ctx context.Context, id string) (*domain.MemoryRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.records[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *rec
	return &cp, nil
}

// List returns the most recent records, newest first
func (s *MemoryStore) List(ctx context.Context, limit int) ([]*domain.MemoryRecord, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}

	s.mu.RLock()
	sorted := s.sortedLocked()
	s.mu.RUnlock()

	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].CreatedAt.After(sorted[j].CreatedAt)
	})
	if len(sorted) > limit {
		sorted = sorted[:limit]
	}
	return sorted, nil
}

// sortedLocked copies records oldest first; callers hold mu
func (s *MemoryStore) sortedLocked() []*domain.MemoryRecord {
	out := make([]*domain.MemoryRecord, 0, len(s.records))
	for _, r := range s.records {
		cp := *r
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out
}

func (s *MemoryStore) persistLocked() error {
	if s.path == "" {
		return nil
	}
	data, err := json.MarshalIndent(s.sortedLocked(), "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode memory snapshot: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("failed to create memory directory: %w", err)
	}
	if err := atomic.WriteFile(s.path, bytes.NewReader(data)); err != nil {
		return fmt.Errorf("failed to write memory snapshot: %w", err)
	}
	return nil
}
