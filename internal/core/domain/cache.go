package domain

import (
	"encoding/json"
	"time"
)

// KeyData holds the request-defining fields a cache key is derived from,
// e.g. tool name, query text, sources and mode.
type KeyData map[string]any

// CacheEntry is one cached payload. The JSON layout is the on-disk format.
type CacheEntry struct {
	Fingerprint string          `json:"-"`
	KeyData     KeyData         `json:"key_data"`
	Payload     json.RawMessage `json:"data"`
	CachedAt    float64         `json:"cached_at"` // Epoch seconds
	TTL         int             `json:"ttl"`       // Seconds, fixed at write time
	Timestamp   string          `json:"timestamp"` // ISO-8601 write time
}

// CachedTime returns CachedAt as a time.Time
func (e *CacheEntry) CachedTime() time.Time {
	sec := int64(e.CachedAt)
	nsec := int64((e.CachedAt - float64(sec)) * float64(time.Second))
	return time.Unix(sec, nsec)
}

// ExpiredAt reports whether the entry's TTL has elapsed at now
func (e *CacheEntry) ExpiredAt(now time.Time) bool {
	return now.Sub(e.CachedTime()) >= time.Duration(e.TTL)*time.Second
}

// HotEntry is an in-process cache slot
type HotEntry struct {
	Entry    *CacheEntry
	StoredAt time.Time
}

// ColdEntryInfo describes one persisted entry for size accounting
type ColdEntryInfo struct {
	Fingerprint string
	Size        int64
	ModTime     time.Time
}

// CacheStats reports the state of both cache tiers
type CacheStats struct {
	HotEntries  int     `json:"memory_entries"`
	ColdEntries int     `json:"file_entries"`
	TotalSizeMB float64 `json:"total_size_mb"`
	MaxSizeMB   int     `json:"max_size_mb"`
	Enabled     bool    `json:"enabled"`
	DefaultTTL  int     `json:"default_ttl"`
}
