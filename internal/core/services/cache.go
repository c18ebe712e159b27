package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync/atomic"
	"time"

	"github.com/custodia-labs/sercha-research/internal/core/domain"
	"github.com/custodia-labs/sercha-research/internal/core/ports/driven"
)

// Cache defaults
const (
	DefaultCacheTTL       = 300
	DefaultCacheMaxSizeMB = 100
	DefaultHotWindow      = 60 * time.Second
	DefaultSizeCheckEvery = 10

	// evictTargetRatio is the share of the budget eviction shrinks usage to
	evictTargetRatio = 0.8

	evictLockName = "webcache:evict"
	evictLockTTL  = 30 * time.Second
)

// CacheStore is a two-tier content-addressed cache. Lookups hit the hot
// in-process tier first, then the cold persistent tier. Cache failures never
// reach callers: a broken read is a miss and a broken write is dropped.
type CacheStore struct {
	hot        driven.HotCache
	cold       driven.ColdCache
	lock       driven.CacheLock
	enabled    bool
	defaultTTL int
	maxSizeMB  int
	hotWindow  time.Duration
	checkEvery uint64
	writes     atomic.Uint64
	now        func() time.Time
	logger     *slog.Logger
}

// CacheStoreConfig holds dependencies for CacheStore.
type CacheStoreConfig struct {
	Hot        driven.HotCache
	Cold       driven.ColdCache
	Lock       driven.CacheLock // Optional, guards eviction of a shared cold tier
	Disabled   bool
	DefaultTTL int           // Seconds, default 300
	MaxSizeMB  int           // Cold tier budget, default 100
	HotWindow  time.Duration // Hot tier freshness, default 60s
	CheckEvery int           // Size check every Nth write, default 10
	Now        func() time.Time
	Logger     *slog.Logger
}

// NewCacheStore creates a new CacheStore. A nil tier is skipped.
func NewCacheStore(cfg CacheStoreConfig) *CacheStore {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	if cfg.DefaultTTL <= 0 {
		cfg.DefaultTTL = DefaultCacheTTL
	}
	if cfg.MaxSizeMB <= 0 {
		cfg.MaxSizeMB = DefaultCacheMaxSizeMB
	}
	if cfg.HotWindow <= 0 {
		cfg.HotWindow = DefaultHotWindow
	}
	if cfg.CheckEvery <= 0 {
		cfg.CheckEvery = DefaultSizeCheckEvery
	}

	return &CacheStore{
		hot:        cfg.Hot,
		cold:       cfg.Cold,
		lock:       cfg.Lock,
		enabled:    !cfg.Disabled,
		defaultTTL: cfg.DefaultTTL,
		maxSizeMB:  cfg.MaxSizeMB,
		hotWindow:  cfg.HotWindow,
		checkEvery: uint64(cfg.CheckEvery),
		now:        now,
		logger:     logger.With("component", "cache"),
	}
}

// Fingerprint returns the SHA-256 hex digest of the canonical JSON encoding
// of key. Map keys are encoded in sorted order at every depth, so insertion
// order never changes the result.
func Fingerprint(key domain.KeyData) (string, error) {
	data, err := json.Marshal(key)
	if err != nil {
		return "", fmt.Errorf("encode cache key: %w", err)
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:]), nil
}

// Enabled reports whether caching is turned on
func (c *CacheStore) Enabled() bool {
	return c.enabled
}

// Get returns the cached payload for key.
func (c *CacheStore) Get(ctx context.Context, key domain.KeyData) (json.RawMessage, bool) {
	if !c.enabled {
		return nil, false
	}
	fp, err := Fingerprint(key)
	if err != nil {
		c.logger.Warn("cache key rejected", "error", err)
		return nil, false
	}

	now := c.now()
	if c.hot != nil {
		if slot, ok := c.hot.Get(fp); ok {
			if now.Sub(slot.StoredAt) < c.hotWindow && !slot.Entry.ExpiredAt(now) {
				return slot.Entry.Payload, true
			}
			c.hot.Delete(fp)
		}
	}

	if c.cold == nil {
		return nil, false
	}
	entry, err := c.cold.Read(ctx, fp)
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			c.logger.Warn("cache read failed", "fingerprint", fp, "error", err)
		}
		return nil, false
	}
	if entry.ExpiredAt(now) {
		if err := c.cold.Delete(ctx, fp); err != nil {
			c.logger.Warn("failed to delete expired cache entry", "fingerprint", fp, "error", err)
		}
		return nil, false
	}

	entry.Fingerprint = fp
	if c.hot != nil {
		c.hot.Set(fp, domain.HotEntry{Entry: entry, StoredAt: now})
	}
	return entry.Payload, true
}

// GetInto decodes the cached payload for key into dest.
// A payload that does not decode is reported as a miss.
func (c *CacheStore) GetInto(ctx context.Context, key domain.KeyData, dest any) bool {
	data, ok := c.Get(ctx, key)
	if !ok {
		return false
	}
	if err := json.Unmarshal(data, dest); err != nil {
		c.logger.Warn("cached payload does not decode", "error", err)
		return false
	}
	return true
}

// Set stores payload under key in both tiers. A ttl of zero or less uses the
// default TTL. Returns false if the value was not stored anywhere.
func (c *CacheStore) Set(ctx context.Context, key domain.KeyData, payload any, ttl int) bool {
	if !c.enabled {
		return false
	}
	fp, err := Fingerprint(key)
	if err != nil {
		c.logger.Warn("cache key rejected", "error", err)
		return false
	}
	data, err := json.Marshal(payload)
	if err != nil {
		c.logger.Warn("cache payload rejected", "fingerprint", fp, "error", err)
		return false
	}
	if ttl <= 0 {
		ttl = c.defaultTTL
	}

	now := c.now()
	entry := &domain.CacheEntry{
		Fingerprint: fp,
		KeyData:     key,
		Payload:     data,
		CachedAt:    float64(now.UnixNano()) / float64(time.Second),
		TTL:         ttl,
		Timestamp:   now.Format(time.RFC3339Nano),
	}

	stored := false
	if c.hot != nil {
		c.hot.Set(fp, domain.HotEntry{Entry: entry, StoredAt: now})
		stored = true
	}
	if c.cold != nil {
		if err := c.cold.Write(ctx, entry); err != nil {
			c.logger.Warn("cache write failed", "fingerprint", fp, "error", err)
		} else {
			stored = true
		}
	}

	if c.writes.Add(1)%c.checkEvery == 0 {
		c.EvictIfOverBudget(ctx)
	}
	return stored
}

// EvictIfOverBudget deletes the oldest cold entries once the cold tier
// exceeds its size budget, until usage is at most 80% of the budget.
// Failures are logged and swallowed.
func (c *CacheStore) EvictIfOverBudget(ctx context.Context) {
	if c.cold == nil {
		return
	}
	if c.lock != nil {
		ok, err := c.lock.TryAcquire(ctx, evictLockName, evictLockTTL)
		if err != nil {
			c.logger.Warn("cache eviction lock failed", "error", err)
			return
		}
		if !ok {
			c.logger.Debug("cache eviction already running elsewhere")
			return
		}
		defer func() {
			if err := c.lock.Release(ctx, evictLockName); err != nil {
				c.logger.Warn("cache eviction lock release failed", "error", err)
			}
		}()
	}

	entries, err := c.cold.Entries(ctx)
	if err != nil {
		c.logger.Warn("cache size check failed", "error", err)
		return
	}

	var total int64
	for _, e := range entries {
		total += e.Size
	}
	budget := int64(c.maxSizeMB) * 1024 * 1024
	if total <= budget {
		return
	}

	sort.Slice(entries, func(i, j int) bool {
		if entries[i].ModTime.Equal(entries[j].ModTime) {
			return entries[i].Fingerprint < entries[j].Fingerprint
		}
		return entries[i].ModTime.Before(entries[j].ModTime)
	})

	target := int64(float64(budget) * evictTargetRatio)
	removed := 0
	for _, e := range entries {
		if total <= target {
			break
		}
		if err := c.cold.Delete(ctx, e.Fingerprint); err != nil {
			c.logger.Warn("cache eviction failed", "fingerprint", e.Fingerprint, "error", err)
			continue
		}
		total -= e.Size
		removed++
	}

	c.logger.Info("cache evicted entries", "removed", removed, "size_bytes", total, "budget_bytes", budget)
}

// PruneExpired deletes cold entries whose TTL has elapsed and returns how
// many were removed. Entries that cannot be read are left for the next run.
func (c *CacheStore) PruneExpired(ctx context.Context) int {
	if c.cold == nil {
		return 0
	}
	entries, err := c.cold.Entries(ctx)
	if err != nil {
		c.logger.Warn("cache prune failed", "error", err)
		return 0
	}

	now := c.now()
	removed := 0
	for _, info := range entries {
		if ctx.Err() != nil {
			break
		}
		entry, err := c.cold.Read(ctx, info.Fingerprint)
		if err != nil {
			continue
		}
		if !entry.ExpiredAt(now) {
			continue
		}
		if err := c.cold.Delete(ctx, info.Fingerprint); err != nil {
			c.logger.Warn("failed to delete expired cache entry", "fingerprint", info.Fingerprint, "error", err)
			continue
		}
		if c.hot != nil {
			c.hot.Delete(info.Fingerprint)
		}
		removed++
	}
	return removed
}

// Clear empties both tiers
func (c *CacheStore) Clear(ctx context.Context) error {
	if c.hot != nil {
		c.hot.Clear()
	}
	if c.cold != nil {
		if err := c.cold.Clear(ctx); err != nil {
			return fmt.Errorf("clear cold cache: %w", err)
		}
	}
	return nil
}

// Stats reports entry counts and cold tier usage
func (c *CacheStore) Stats(ctx context.Context) domain.CacheStats {
	stats := domain.CacheStats{
		MaxSizeMB:  c.maxSizeMB,
		Enabled:    c.enabled,
		DefaultTTL: c.defaultTTL,
	}
	if c.hot != nil {
		stats.HotEntries = c.hot.Len()
	}
	if c.cold != nil {
		entries, err := c.cold.Entries(ctx)
		if err != nil {
			c.logger.Warn("cache stats unavailable", "error", err)
			return stats
		}
		var total int64
		for _, e := range entries {
			total += e.Size
		}
		stats.ColdEntries = len(entries)
		stats.TotalSizeMB = float64(total) / (1024 * 1024)
	}
	return stats
}
