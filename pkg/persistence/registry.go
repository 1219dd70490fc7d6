package persistence

import (
	"encoding/json"
	"fmt"
	"sync"
)

// ProviderConfig selects a backend implementation and carries its
// provider-specific configuration.
type ProviderConfig struct {
	Type   string          `yaml:"type" json:"type"`
	Config json.RawMessage `yaml:"config" json:"config"`
}

// BackendConfig provides initialization parameters to backend factories.
type BackendConfig struct {
	// Config contains provider-specific configuration.
	Config json.RawMessage

	// DequeueInspectLimit bounds how many queued candidates a backend may
	// examine while matching a dequeue to an agent. Zero means the backend
	// default.
	DequeueInspectLimit int
}

// BackendFactory creates a backend from configuration.
type BackendFactory func(config BackendConfig) (Backend, error)

var (
	registry = make(map[string]BackendFactory)
	mu       sync.RWMutex
)

// RegisterProvider registers a backend factory for a provider type. Backend
// packages call this from init().
func RegisterProvider(providerType string, factory BackendFactory) {
	mu.Lock()
	defer mu.Unlock()
	registry[providerType] = factory
}

// NewBackend creates a backend from provider configuration.
func NewBackend(providerConfig ProviderConfig, backendConfig BackendConfig) (Backend, error) {
	mu.RLock()
	factory, ok := registry[providerConfig.Type]
	mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("unknown persistence provider type: %s", providerConfig.Type)
	}

	backendConfig.Config = providerConfig.Config

	return factory(backendConfig)
}

// ListProviders returns registered provider types.
func ListProviders() []string {
	mu.RLock()
	defer mu.RUnlock()

	providers := make([]string, 0, len(registry))
	for name := range registry {
		providers = append(providers, name)
	}
	return providers
}
