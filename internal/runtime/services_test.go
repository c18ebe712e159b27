package runtime

import (
	"context"
	"sync"
	"testing"

	"github.com/custodia-labs/sercha-research/internal/core/domain"
)

// stubProvider is a minimal SearchProvider for registry tests
type stubProvider struct {
	name domain.ProviderID
}

func (p *stubProvider) Name() domain.ProviderID {
	return p.name
}

func (p *stubProvider) Search(ctx context.Context, query string, maxResults int) ([]domain.SearchResult, error) {
	return nil, nil
}

func TestNewServices(t *testing.T) {
	config := domain.NewRuntimeConfig("disk", "memory")
	svc := NewServices(config)

	if svc.Config() != config {
		t.Error("expected same config")
	}
	if _, ok := svc.Provider(domain.ProviderBrave); ok {
		t.Error("expected no providers initially")
	}
}

func TestServices_RegisterProvider(t *testing.T) {
	config := domain.NewRuntimeConfig("disk", "memory")
	svc := NewServices(config)

	svc.RegisterProvider(&stubProvider{name: domain.ProviderDuckDuckGo})

	p, ok := svc.Provider(domain.ProviderDuckDuckGo)
	if !ok || p.Name() != domain.ProviderDuckDuckGo {
		t.Fatal("expected duckduckgo to be registered")
	}
	if !config.ProviderAvailable(domain.ProviderDuckDuckGo) {
		t.Error("config flag should follow registration")
	}
}

func TestServices_SetProviderNilRemoves(t *testing.T) {
	config := domain.NewRuntimeConfig("disk", "memory")
	svc := NewServices(config)

	svc.RegisterProvider(&stubProvider{name: domain.ProviderBrave})
	svc.SetProvider(domain.ProviderBrave, nil)

	if _, ok := svc.Provider(domain.ProviderBrave); ok {
		t.Error("expected brave to be removed")
	}
	if config.ProviderAvailable(domain.ProviderBrave) {
		t.Error("config flag should be cleared")
	}
}

func TestServices_Resolve(t *testing.T) {
	svc := NewServices(domain.NewRuntimeConfig("disk", "memory"))
	svc.RegisterProvider(&stubProvider{name: domain.ProviderGoogle})
	svc.RegisterProvider(&stubProvider{name: domain.ProviderDuckDuckGo})

	got := svc.Resolve(domain.DefaultFallbackChain())
	if len(got) != 2 || got[0] != domain.ProviderDuckDuckGo || got[1] != domain.ProviderGoogle {
		t.Errorf("expected [duckduckgo google], got %v", got)
	}
}

func TestServices_Close(t *testing.T) {
	config := domain.NewRuntimeConfig("disk", "memory")
	svc := NewServices(config)
	svc.RegisterProvider(&stubProvider{name: domain.ProviderBrave})
	svc.RegisterProvider(&stubProvider{name: domain.ProviderGoogle})

	if err := svc.Close(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(svc.ProviderNames()) != 0 {
		t.Error("expected no providers after close")
	}
	if config.ProviderCount() != 0 {
		t.Error("expected all flags cleared after close")
	}
}

func TestServices_ConcurrentAccess(t *testing.T) {
	svc := NewServices(domain.NewRuntimeConfig("disk", "memory"))
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			svc.RegisterProvider(&stubProvider{name: domain.ProviderBrave})
		}()
		go func() {
			defer wg.Done()
			_, _ = svc.Provider(domain.ProviderBrave)
			_ = svc.Resolve(domain.DefaultFallbackChain())
		}()
	}
	wg.Wait()
}
