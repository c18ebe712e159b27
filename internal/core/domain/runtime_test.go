package domain

import (
	"sync"
	"testing"
)

func TestRuntimeConfig_Providers(t *testing.T) {
	c := NewRuntimeConfig("disk", "memory")
	if c.CacheBackend != "disk" || c.MemoryBackend != "memory" {
		t.Errorf("unexpected backends %s/%s", c.CacheBackend, c.MemoryBackend)
	}

	c.SetProviderAvailable(ProviderDuckDuckGo, true)
	c.SetProviderAvailable(ProviderGoogle, true)

	if !c.ProviderAvailable(ProviderDuckDuckGo) {
		t.Error("duckduckgo should be available")
	}
	if c.ProviderAvailable(ProviderBrave) {
		t.Error("brave should not be available")
	}

	got := c.AvailableIn(DefaultFallbackChain())
	if len(got) != 2 || got[0] != ProviderDuckDuckGo || got[1] != ProviderGoogle {
		t.Errorf("expected [duckduckgo google], got %v", got)
	}

	c.SetProviderAvailable(ProviderGoogle, false)
	if c.ProviderCount() != 1 {
		t.Errorf("expected 1 provider, got %d", c.ProviderCount())
	}
}

func TestRuntimeConfig_Concurrent(t *testing.T) {
	c := NewRuntimeConfig("disk", "memory")
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func(i int) {
			defer wg.Done()
			c.SetProviderAvailable(ProviderBrave, i%2 == 0)
		}(i)
		go func() {
			defer wg.Done()
			_ = c.AvailableIn(DefaultFallbackChain())
		}()
	}
	wg.Wait()
}
