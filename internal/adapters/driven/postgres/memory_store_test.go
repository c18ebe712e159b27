package postgres

import (
	"context"
	"errors"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/custodia-labs/sercha-research/internal/core/domain"
)

// setupTestDB connects to the database named by SERCHA_TEST_DATABASE_URL.
// Tests using it are skipped when the variable is unset.
func setupTestDB(t *testing.T) (*DB, func()) {
	t.Helper()
	url := os.Getenv("SERCHA_TEST_DATABASE_URL")
	if url == "" {
		t.Skip("SERCHA_TEST_DATABASE_URL not set; skipping postgres integration test")
	}

	ctx := context.Background()
	db, err := Connect(ctx, DefaultConfig(url))
	if err != nil {
		t.Fatalf("failed to connect: %v", err)
	}
	if err := db.InitSchema(ctx); err != nil {
		db.Close()
		t.Fatalf("failed to init schema: %v", err)
	}
	if err := db.InitSchema(ctx); err != nil {
		db.Close()
		t.Fatalf("schema init should be idempotent: %v", err)
	}

	return db, func() {
		_, _ = db.ExecContext(ctx, "DELETE FROM research_memories WHERE session_id LIKE 'test_%'")
		db.Close()
	}
}

func TestMemoryStore_MemorizeAndGet(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	store := NewMemoryStore(db)
	created := time.Now().UTC().Truncate(time.Millisecond)

	receipt, err := store.Memorize(ctx, &domain.MemoryRecord{
		ID:           fmt.Sprintf("mem_%d", time.Now().UnixNano()),
		Query:        "go generics",
		Context:      "learning",
		SessionID:    "test_session",
		Mode:         "summary",
		TotalResults: 7,
		QualityScore: 0.82,
		KeyFindings:  []string{"Generics - https://go.dev/doc/tutorial/generics"},
		Tags:         []string{"research", "fw_research", "learning"},
		CreatedAt:    created,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if receipt.Status != domain.MemoryStatusStored {
		t.Errorf("expected status stored, got %s", receipt.Status)
	}

	got, err := store.Get(ctx, receipt.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Query != "go generics" || got.Context != "learning" {
		t.Errorf("unexpected record %+v", got)
	}
	if len(got.KeyFindings) != 1 || len(got.Tags) != 3 {
		t.Errorf("expected findings and tags round-tripped, got %v %v", got.KeyFindings, got.Tags)
	}
	if !got.CreatedAt.Equal(created) {
		t.Errorf("expected created_at %v, got %v", created, got.CreatedAt)
	}
}

func TestMemoryStore_GetMissing(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	_, err := NewMemoryStore(db).Get(context.Background(), "mem_missing")
	if !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestMemoryStore_ListNewestFirst(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	store := NewMemoryStore(db)
	base := time.Now().Add(time.Hour)

	for i := 0; i < 3; i++ {
		_, err := store.Memorize(ctx, &domain.MemoryRecord{
			Query:     fmt.Sprintf("query %d", i),
			SessionID: "test_list",
			Mode:      "search",
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		})
		if err != nil {
			t.Fatalf("memorize %d: %v", i, err)
		}
	}

	records, err := store.List(ctx, 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}
	if records[0].Query != "query 2" || records[1].Query != "query 1" {
		t.Errorf("expected newest first, got %s, %s", records[0].Query, records[1].Query)
	}
	if records[0].KeyFindings == nil || records[0].Tags == nil {
		t.Error("expected empty slices rather than nil")
	}
}

func TestMemoryStore_RejectsEmptyQuery(t *testing.T) {
	store := NewMemoryStore(nil)
	_, err := store.Memorize(context.Background(), &domain.MemoryRecord{})
	if !errors.Is(err, domain.ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput, got %v", err)
	}
}
