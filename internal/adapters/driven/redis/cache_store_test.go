package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/custodia-labs/sercha-research/internal/core/domain"
)

func newTestEntry(fp string, cachedAt float64, ttl int) *domain.CacheEntry {
	return &domain.CacheEntry{
		Fingerprint: fp,
		KeyData:     domain.KeyData{"tool": "fw_search", "query": fp},
		Payload:     json.RawMessage(`{"answer":"y"}`),
		CachedAt:    cachedAt,
		TTL:         ttl,
		Timestamp:   time.Unix(int64(cachedAt), 0).UTC().Format(time.RFC3339),
	}
}

func TestColdCache_WriteRead(t *testing.T) {
	client, mr, cleanup := setupTestRedis(t)
	defer cleanup()

	ctx := context.Background()
	cache := NewColdCache(client)

	if err := cache.Write(ctx, newTestEntry("abc123", 1700000000.5, 300)); err != nil {
		t.Fatalf("unexpected error writing entry: %v", err)
	}

	got, err := cache.Read(ctx, "abc123")
	if err != nil {
		t.Fatalf("unexpected error reading entry: %v", err)
	}
	if got.Fingerprint != "abc123" {
		t.Errorf("expected fingerprint abc123, got %s", got.Fingerprint)
	}
	if string(got.Payload) != `{"answer":"y"}` {
		t.Errorf("unexpected payload %s", got.Payload)
	}
	if got.TTL != 300 {
		t.Errorf("expected ttl 300, got %d", got.TTL)
	}

	if ttl := mr.TTL(entryPrefix + "abc123"); ttl != 300*time.Second {
		t.Errorf("expected redis expiry 300s, got %v", ttl)
	}

	raw, _ := mr.Get(entryPrefix + "abc123")
	var stored map[string]any
	if err := json.Unmarshal([]byte(raw), &stored); err != nil {
		t.Fatalf("stored value is not JSON: %v", err)
	}
	for _, field := range []string{"key_data", "data", "cached_at", "ttl", "timestamp"} {
		if _, ok := stored[field]; !ok {
			t.Errorf("stored entry missing %q", field)
		}
	}
}

func TestColdCache_ReadMissing(t *testing.T) {
	client, _, cleanup := setupTestRedis(t)
	defer cleanup()

	_, err := NewColdCache(client).Read(context.Background(), "missing")
	if !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestColdCache_ReadCorrupt(t *testing.T) {
	client, mr, cleanup := setupTestRedis(t)
	defer cleanup()

	_ = mr.Set(entryPrefix+"bad", "{not json")
	_, err := NewColdCache(client).Read(context.Background(), "bad")
	if err == nil || errors.Is(err, domain.ErrNotFound) {
		t.Errorf("expected decode error, got %v", err)
	}
}

func TestColdCache_EntriesOldestFirst(t *testing.T) {
	client, _, cleanup := setupTestRedis(t)
	defer cleanup()

	ctx := context.Background()
	cache := NewColdCache(client)

	for i, at := range []float64{1700000030, 1700000010, 1700000020} {
		if err := cache.Write(ctx, newTestEntry(fmt.Sprintf("fp%d", i), at, 300)); err != nil {
			t.Fatalf("write %d: %v", i, err)
		}
	}

	entries, err := cache.Entries(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(entries))
	}

	want := []string{"fp1", "fp2", "fp0"}
	for i, e := range entries {
		if e.Fingerprint != want[i] {
			t.Errorf("entry %d: expected %s, got %s", i, want[i], e.Fingerprint)
		}
		if e.Size <= 0 {
			t.Errorf("entry %d: expected positive size, got %d", i, e.Size)
		}
	}
	if !entries[0].ModTime.Equal(time.Unix(1700000010, 0)) {
		t.Errorf("unexpected mod time %v", entries[0].ModTime)
	}
}

func TestColdCache_ExpiredEntriesPruned(t *testing.T) {
	client, mr, cleanup := setupTestRedis(t)
	defer cleanup()

	ctx := context.Background()
	cache := NewColdCache(client)

	_ = cache.Write(ctx, newTestEntry("short", 1700000000, 1))
	_ = cache.Write(ctx, newTestEntry("long", 1700000001, 3600))

	mr.FastForward(2 * time.Second)

	if _, err := cache.Read(ctx, "short"); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("expected expired entry to be gone, got %v", err)
	}

	entries, err := cache.Entries(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(entries) != 1 || entries[0].Fingerprint != "long" {
		t.Errorf("expected only the long-lived entry, got %+v", entries)
	}

	members, _ := mr.ZMembers(indexKey)
	if len(members) != 1 {
		t.Errorf("expected index pruned to 1 member, got %v", members)
	}
}

func TestColdCache_Delete(t *testing.T) {
	client, mr, cleanup := setupTestRedis(t)
	defer cleanup()

	ctx := context.Background()
	cache := NewColdCache(client)
	_ = cache.Write(ctx, newTestEntry("gone", 1700000000, 300))

	if err := cache.Delete(ctx, "gone"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if mr.Exists(entryPrefix + "gone") {
		t.Error("expected entry key removed")
	}
	if err := cache.Delete(ctx, "gone"); err != nil {
		t.Errorf("deleting a missing entry should not fail: %v", err)
	}

	entries, _ := cache.Entries(ctx)
	if len(entries) != 0 {
		t.Errorf("expected no entries, got %d", len(entries))
	}
}

func TestColdCache_Clear(t *testing.T) {
	client, mr, cleanup := setupTestRedis(t)
	defer cleanup()

	ctx := context.Background()
	cache := NewColdCache(client)
	for i := 0; i < 250; i++ {
		_ = cache.Write(ctx, newTestEntry(fmt.Sprintf("fp%03d", i), float64(1700000000+i), 300))
	}
	_ = mr.Set("unrelated", "keep")

	if err := cache.Clear(ctx); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	entries, err := cache.Entries(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("expected empty cache, got %d entries", len(entries))
	}
	if !mr.Exists("unrelated") {
		t.Error("clear must only touch cache keys")
	}
	if keys := mr.Keys(); len(keys) != 1 {
		t.Errorf("expected only the unrelated key left, got %v", keys)
	}
}

func TestColdCache_Ping(t *testing.T) {
	client, mr, cleanup := setupTestRedis(t)
	defer cleanup()

	cache := NewColdCache(client)
	if err := cache.Ping(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	mr.Close()
	if err := cache.Ping(context.Background()); err == nil {
		t.Error("expected ping to fail once redis is gone")
	}
}
