package domain

import "sync"

// RuntimeConfig tracks which backends and providers are available at runtime.
// Backends are fixed at startup; provider availability changes as providers
// are registered or removed. Thread-safe for concurrent access.
type RuntimeConfig struct {
	mu sync.RWMutex

	// Static (set at startup, read-only)
	CacheBackend  string // "disk" or "redis"
	MemoryBackend string // "memory" or "postgres"

	// Dynamic provider flags
	providers map[ProviderID]bool
}

// NewRuntimeConfig creates a new RuntimeConfig with initial values
func NewRuntimeConfig(cacheBackend, memoryBackend string) *RuntimeConfig {
	return &RuntimeConfig{
		CacheBackend:  cacheBackend,
		MemoryBackend: memoryBackend,
		providers:     make(map[ProviderID]bool),
	}
}

// SetProviderAvailable updates a provider's availability flag
func (c *RuntimeConfig) SetProviderAvailable(id ProviderID, available bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if available {
		c.providers[id] = true
		return
	}
	delete(c.providers, id)
}

// ProviderAvailable returns whether a provider is registered
func (c *RuntimeConfig) ProviderAvailable(id ProviderID) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.providers[id]
}

// AvailableIn filters chain to the available providers, preserving order
func (c *RuntimeConfig) AvailableIn(chain []ProviderID) []ProviderID {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]ProviderID, 0, len(chain))
	for _, id := range chain {
		if c.providers[id] {
			out = append(out, id)
		}
	}
	return out
}

// ProviderCount returns the number of available providers
func (c *RuntimeConfig) ProviderCount() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.providers)
}
