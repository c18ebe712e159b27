package disk

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/sercha-research/internal/core/domain"
)

const testFP = "ab12cd34ef56"

func newTestCache(t *testing.T) *ColdCache {
	t.Helper()
	c, err := NewColdCache(filepath.Join(t.TempDir(), "web_cache"))
	require.NoError(t, err)
	return c
}

func testEntry(fp string) *domain.CacheEntry {
	return &domain.CacheEntry{
		Fingerprint: fp,
		KeyData:     domain.KeyData{"tool": "fw_search", "query": "go"},
		Payload:     json.RawMessage(`{"results":[]}`),
		CachedAt:    1700000000.25,
		TTL:         300,
		Timestamp:   "2023-11-14T22:13:20",
	}
}

func TestNewColdCache_RequiresRoot(t *testing.T) {
	_, err := NewColdCache("")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestColdCache_WriteReadSharded(t *testing.T) {
	ctx := context.Background()
	c := newTestCache(t)

	require.NoError(t, c.Write(ctx, testEntry(testFP)))

	path := filepath.Join(c.Root(), "ab", testFP+".json")
	raw, err := os.ReadFile(path)
	require.NoError(t, err, "entry should live in its two-character shard")

	var onDisk map[string]any
	require.NoError(t, json.Unmarshal(raw, &onDisk))
	for _, field := range []string{"key_data", "data", "cached_at", "ttl", "timestamp"} {
		assert.Contains(t, onDisk, field)
	}

	got, err := c.Read(ctx, testFP)
	require.NoError(t, err)
	assert.Equal(t, testFP, got.Fingerprint)
	assert.Equal(t, 300, got.TTL)
	assert.InDelta(t, 1700000000.25, got.CachedAt, 0.001)
	assert.JSONEq(t, `{"results":[]}`, string(got.Payload))
}

func TestColdCache_ReadMissing(t *testing.T) {
	_, err := newTestCache(t).Read(context.Background(), testFP)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestColdCache_ReadCorrupt(t *testing.T) {
	c := newTestCache(t)
	dir := filepath.Join(c.Root(), "ab")
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, testFP+".json"), []byte("{oops"), 0o644))

	_, err := c.Read(context.Background(), testFP)
	require.Error(t, err)
	assert.False(t, errors.Is(err, domain.ErrNotFound))
}

func TestColdCache_RejectsPathLikeFingerprints(t *testing.T) {
	c := newTestCache(t)
	for _, fp := range []string{"", "ab", "../etc/passwd", "ab/cd"} {
		_, err := c.Read(context.Background(), fp)
		assert.ErrorIs(t, err, domain.ErrInvalidInput, fp)
	}
}

func TestColdCache_Overwrite(t *testing.T) {
	ctx := context.Background()
	c := newTestCache(t)

	require.NoError(t, c.Write(ctx, testEntry(testFP)))
	updated := testEntry(testFP)
	updated.TTL = 60
	require.NoError(t, c.Write(ctx, updated))

	got, err := c.Read(ctx, testFP)
	require.NoError(t, err)
	assert.Equal(t, 60, got.TTL)

	entries, err := c.Entries(ctx)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestColdCache_Delete(t *testing.T) {
	ctx := context.Background()
	c := newTestCache(t)

	require.NoError(t, c.Write(ctx, testEntry(testFP)))
	require.NoError(t, c.Delete(ctx, testFP))
	require.NoError(t, c.Delete(ctx, testFP), "deleting a missing entry is not an error")

	_, err := c.Read(ctx, testFP)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestColdCache_EntriesReportSizeAndModTime(t *testing.T) {
	ctx := context.Background()
	c := newTestCache(t)

	fps := []string{"aa0001", "aa0002", "bb0001"}
	for _, fp := range fps {
		require.NoError(t, c.Write(ctx, testEntry(fp)))
	}
	old := time.Now().Add(-time.Hour)
	require.NoError(t, os.Chtimes(filepath.Join(c.Root(), "aa", "aa0001.json"), old, old))

	// Stray files are not entries
	require.NoError(t, os.WriteFile(filepath.Join(c.Root(), "README"), []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(c.Root(), "aa", "notes.txt"), []byte("x"), 0o644))

	entries, err := c.Entries(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 3)

	byFP := map[string]domain.ColdEntryInfo{}
	for _, e := range entries {
		byFP[e.Fingerprint] = e
		assert.Greater(t, e.Size, int64(0))
	}
	for _, fp := range fps {
		assert.Contains(t, byFP, fp)
	}
	assert.True(t, byFP["aa0001"].ModTime.Before(byFP["aa0002"].ModTime))
}

func TestColdCache_Clear(t *testing.T) {
	ctx := context.Background()
	c := newTestCache(t)

	for _, fp := range []string{"aa0001", "bb0001", "cc0001"} {
		require.NoError(t, c.Write(ctx, testEntry(fp)))
	}
	keep := filepath.Join(c.Root(), "aa", "notes.txt")
	require.NoError(t, os.WriteFile(keep, []byte("x"), 0o644))

	require.NoError(t, c.Clear(ctx))

	entries, err := c.Entries(ctx)
	require.NoError(t, err)
	assert.Empty(t, entries)
	_, err = os.Stat(keep)
	assert.NoError(t, err, "non-entry files survive a clear")
}

func TestColdCache_CancelledContext(t *testing.T) {
	c := newTestCache(t)
	require.NoError(t, c.Write(context.Background(), testEntry(testFP)))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := c.Entries(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}
