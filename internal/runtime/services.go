package runtime

import (
	"sync"

	"github.com/custodia-labs/sercha-research/internal/core/domain"
	"github.com/custodia-labs/sercha-research/internal/core/ports/driven"
)

// Services holds the search providers available to the fallback
// coordinator. Providers can be registered or removed while the process
// runs (e.g. when an API key is configured). Thread-safe for concurrent access.
type Services struct {
	mu sync.RWMutex

	// Config tracks capability flags
	config *domain.RuntimeConfig

	providers map[domain.ProviderID]driven.SearchProvider
}

// NewServices creates a new Services registry
func NewServices(config *domain.RuntimeConfig) *Services {
	return &Services{
		config:    config,
		providers: make(map[domain.ProviderID]driven.SearchProvider),
	}
}

// Config returns the runtime configuration
func (s *Services) Config() *domain.RuntimeConfig {
	return s.config
}

// Provider returns the registered provider for id
func (s *Services) Provider(id domain.ProviderID) (driven.SearchProvider, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.providers[id]
	return p, ok
}

// SetProvider registers a provider under its name, replacing any previous
// one. A nil provider removes the registration for id.
func (s *Services) SetProvider(id domain.ProviderID, p driven.SearchProvider) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if p == nil {
		delete(s.providers, id)
	} else {
		s.providers[id] = p
	}
	s.config.SetProviderAvailable(id, p != nil)
}

// RegisterProvider registers p under p.Name()
func (s *Services) RegisterProvider(p driven.SearchProvider) {
	s.SetProvider(p.Name(), p)
}

// Resolve filters chain to registered providers, preserving order
func (s *Services) Resolve(chain []domain.ProviderID) []domain.ProviderID {
	return s.config.AvailableIn(chain)
}

// ProviderNames lists registered provider IDs in no particular order
func (s *Services) ProviderNames() []domain.ProviderID {
	s.mu.RLock()
	defer s.mu.RUnlock()
	names := make([]domain.ProviderID, 0, len(s.providers))
	for id := range s.providers {
		names = append(names, id)
	}
	return names
}

// Close drops all providers
func (s *Services) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for id := range s.providers {
		s.config.SetProviderAvailable(id, false)
	}
	s.providers = make(map[domain.ProviderID]driven.SearchProvider)
	return nil
}
