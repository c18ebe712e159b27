package memory

import (
	"fmt"

	lru "github.com/hashicorp/golang-lru"

	"github.com/custodia-labs/sercha-research/internal/core/domain"
	"github.com/custodia-labs/sercha-research/internal/core/ports/driven"
)

// Verify interface compliance
var _ driven.HotCache = (*HotCache)(nil)

// DefaultHotCacheSize bounds the number of in-process entries
const DefaultHotCacheSize = 1024

// HotCache implements driven.HotCache as a bounded LRU. The least recently
// used slot is dropped once the cache is full; freshness is judged by the
// cache store from HotEntry.StoredAt.
type HotCache struct {
	cache *lru.Cache
}

// NewHotCache creates a hot cache holding at most size entries.
// A non-positive size uses DefaultHotCacheSize.
func NewHotCache(size int) (*HotCache, error) {
	if size <= 0 {
		size = DefaultHotCacheSize
	}
	c, err := lru.New(size)
	if err != nil {
		return nil, fmt.Errorf("create hot cache: %w", err)
	}
	return &HotCache{cache: c}, nil
}

func (h *HotCache) Get(fingerprint string) (domain.HotEntry, bool) {
	v, ok := h.cache.Get(fingerprint)
	if !ok {
		return domain.HotEntry{}, false
	}
	entry, ok := v.(domain.HotEntry)
	return entry, ok
}

func (h *HotCache) Set(fingerprint string, entry domain.HotEntry) {
	h.cache.Add(fingerprint, entry)
}

func (h *HotCache) Delete(fingerprint string) {
	h.cache.Remove(fingerprint)
}

func (h *HotCache) Clear() {
	h.cache.Purge()
}

func (h *HotCache) Len() int {
	return h.cache.Len()
}
