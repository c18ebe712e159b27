package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/custodia-labs/sercha-research/internal/core/domain"
	"github.com/custodia-labs/sercha-research/internal/core/ports/driven"
	"github.com/redis/go-redis/v9"
)

// Verify interface compliance
var _ driven.ColdCache = (*ColdCache)(nil)

const (
	// Key layout for the cold tier
	entryPrefix = "webcache:entry:"
	indexKey    = "webcache:index" // ZSET fingerprint -> cached_at
	sizeKey     = "webcache:size"  // HASH fingerprint -> encoded bytes

	scanBatch = 100
)

// ColdCache implements driven.ColdCache using Redis.
// Entries expire natively after their TTL; the index and size hash are
// pruned lazily when Entries finds a fingerprint whose entry is gone.
type ColdCache struct {
	client *redis.Client
}

// NewColdCache creates a new Redis-backed cold cache tier
func NewColdCache(client *redis.Client) *ColdCache {
	return &ColdCache{client: client}
}

// Read retrieves the entry for fingerprint
func (c *ColdCache) Read(ctx context.Context, fingerprint string) (*domain.CacheEntry, error) {
	data, err := c.client.Get(ctx, entryPrefix+fingerprint).Bytes()
	if err == redis.Nil {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read cache entry: %w", err)
	}

	var entry domain.CacheEntry
	if err := json.Unmarshal(data, &entry); err != nil {
		return nil, fmt.Errorf("failed to unmarshal cache entry: %w", err)
	}
	entry.Fingerprint = fingerprint
	return &entry, nil
}

// Write stores the entry with a Redis expiry matching its TTL
func (c *ColdCache) Write(ctx context.Context, entry *domain.CacheEntry) error {
	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("failed to marshal cache entry: %w", err)
	}

	var expiry time.Duration
	if entry.TTL > 0 {
		expiry = time.Duration(entry.TTL) * time.Second
	}

	pipe := c.client.TxPipeline()
	pipe.Set(ctx, entryPrefix+entry.Fingerprint, data, expiry)
	pipe.ZAdd(ctx, indexKey, redis.Z{Score: entry.CachedAt, Member: entry.Fingerprint})
	pipe.HSet(ctx, sizeKey, entry.Fingerprint, len(data))
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to write cache entry: %w", err)
	}
	return nil
}

// Delete removes the entry and its index records
func (c *ColdCache) Delete(ctx context.Context, fingerprint string) error {
	pipe := c.client.TxPipeline()
	pipe.Del(ctx, entryPrefix+fingerprint)
	pipe.ZRem(ctx, indexKey, fingerprint)
	pipe.HDel(ctx, sizeKey, fingerprint)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to delete cache entry: %w", err)
	}
	return nil
}

// Entries lists live entries, oldest first
func (c *ColdCache) Entries(ctx context.Context) ([]domain.ColdEntryInfo, error) {
	members, err := c.client.ZRangeWithScores(ctx, indexKey, 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list cache index: %w", err)
	}
	if len(members) == 0 {
		return []domain.ColdEntryInfo{}, nil
	}

	fps := make([]string, len(members))
	for i, m := range members {
		fps[i] = fmt.Sprint(m.Member)
	}

	pipe := c.client.Pipeline()
	exists := make([]*redis.IntCmd, len(fps))
	for i, fp := range fps {
		exists[i] = pipe.Exists(ctx, entryPrefix+fp)
	}
	sizes := pipe.HMGet(ctx, sizeKey, fps...)
	if _, err := pipe.Exec(ctx); err != nil {
		return nil, fmt.Errorf("failed to read cache index: %w", err)
	}

	sizeVals := sizes.Val()
	entries := make([]domain.ColdEntryInfo, 0, len(fps))
	var stale []string
	for i, fp := range fps {
		if exists[i].Val() == 0 {
			stale = append(stale, fp)
			continue
		}
		entries = append(entries, domain.ColdEntryInfo{
			Fingerprint: fp,
			Size:        parseSize(sizeVals[i]),
			ModTime:     scoreTime(members[i].Score),
		})
	}

	if len(stale) > 0 {
		pipe := c.client.TxPipeline()
		pipe.ZRem(ctx, indexKey, toAny(stale)...)
		pipe.HDel(ctx, sizeKey, stale...)
		// Pruning is best effort; the next listing retries
		_, _ = pipe.Exec(ctx)
	}

	return entries, nil
}

// Clear removes every entry, including ones missing from the index
func (c *ColdCache) Clear(ctx context.Context) error {
	iter := c.client.Scan(ctx, 0, entryPrefix+"*", scanBatch).Iterator()
	batch := make([]string, 0, scanBatch)
	for iter.Next(ctx) {
		batch = append(batch, iter.Val())
		if len(batch) == scanBatch {
			if err := c.client.Del(ctx, batch...).Err(); err != nil {
				return fmt.Errorf("failed to clear cache: %w", err)
			}
			batch = batch[:0]
		}
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("failed to scan cache: %w", err)
	}
	batch = append(batch, indexKey, sizeKey)
	if err := c.client.Del(ctx, batch...).Err(); err != nil {
		return fmt.Errorf("failed to clear cache: %w", err)
	}
	return nil
}

// Ping checks if Redis is reachable
func (c *ColdCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

func parseSize(v any) int64 {
	s, ok := v.(string)
	if !ok {
		return 0
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0
	}
	return n
}

func scoreTime(score float64) time.Time {
	sec, frac := math.Modf(score)
	return time.Unix(int64(sec), int64(frac*float64(time.Second)))
}

func toAny(ss []string) []any {
	out := make([]any, len(ss))
	for i, s := range ss {
		out[i] = s
	}
	return out
}
