package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/custodia-labs/sercha-research/internal/core/domain"
	"github.com/custodia-labs/sercha-research/internal/core/ports/driven"
	"github.com/google/uuid"
	"github.com/lib/pq"
)

// Verify interface compliance
var _ driven.MemoryStore = (*MemoryStore)(nil)

// DefaultListLimit bounds List when no limit is given
const DefaultListLimit = 50

// MemoryStore implements driven.MemoryStore using PostgreSQL
type MemoryStore struct {
	db *DB
}

// NewMemoryStore creates a new MemoryStore
func NewMemoryStore(db *DB) *MemoryStore {
	return &MemoryStore{db: db}
}

// Memorize inserts a record. Records are immutable once stored, so a
// repeated ID is rejected by the primary key.
func (s *MemoryStore) Memorize(ctx context.Context, record *domain.MemoryRecord) (*domain.MemoryReceipt, error) {
	if record == nil || record.Query == "" {
		return nil, fmt.Errorf("%w: record query is required", domain.ErrInvalidInput)
	}

	rec := *record
	if rec.ID == "" {
		rec.ID = "mem_" + uuid.New().String()[:8]
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now()
	}
	if rec.KeyFindings == nil {
		rec.KeyFindings = []string{}
	}

	findingsJSON, err := json.Marshal(rec.KeyFindings)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal key findings: %w", err)
	}

	query := `
		INSERT INTO research_memories (id, query, context, session_id, mode, total_results, quality_score, key_findings, tags, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	_, err = s.db.ExecContext(ctx, query,
		rec.ID,
		rec.Query,
		rec.Context,
		rec.SessionID,
		rec.Mode,
		rec.TotalResults,
		rec.QualityScore,
		findingsJSON,
		pq.Array(rec.Tags),
		rec.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to store memory: %w", err)
	}

	return &domain.MemoryReceipt{
		ID:        rec.ID,
		Status:    domain.MemoryStatusStored,
		Timestamp: rec.CreatedAt,
	}, nil
}

// Get retrieves a record by ID
func (s *MemoryStore) Get(ctx context.Context, id string) (*domain.MemoryRecord, error) {
	query := `
		SELECT id, query, context, session_id, mode, total_results, quality_score, key_findings, tags, created_at
		FROM research_memories
		WHERE id = $1
	`

	rec, err := scanMemory(s.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get memory: %w", err)
	}
	return rec, nil
}

// List returns the most recent records, newest first
func (s *MemoryStore) List(ctx context.Context, limit int) ([]*domain.MemoryRecord, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}

	query := `
		SELECT id, query, context, session_id, mode, total_results, quality_score, key_findings, tags, created_at
		FROM research_memories
		ORDER BY created_at DESC
		LIMIT $1
	`

	rows, err := s.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list memories: %w", err)
	}
	defer rows.Close()

	records := []*domain.MemoryRecord{}
	for rows.Next() {
		rec, err := scanMemory(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan memory: %w", err)
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanMemory(row rowScanner) (*domain.MemoryRecord, error) {
	var rec domain.MemoryRecord
	var findingsJSON []byte
	var tags []string

	err := row.Scan(
		&rec.ID,
		&rec.Query,
		&rec.Context,
		&rec.SessionID,
		&rec.Mode,
		&rec.TotalResults,
		&rec.QualityScore,
		&findingsJSON,
		pq.Array(&tags),
		&rec.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(findingsJSON, &rec.KeyFindings); err != nil {
		return nil, fmt.Errorf("failed to unmarshal key findings: %w", err)
	}
	rec.Tags = tags
	if rec.Tags == nil {
		rec.Tags = []string{}
	}
	return &rec, nil
}
