package memory

import (
	"testing"

	"github.com/agentsched/agentq/pkg/persistence"
	"github.com/agentsched/agentq/pkg/persistence/persistencetest"
)

func TestMemoryBackendContract(t *testing.T) {
	persistencetest.Run(t, func(t *testing.T) persistence.Backend {
		b, err := NewBackend(persistence.BackendConfig{})
		if err != nil {
			t.Fatalf("NewBackend: %v", err)
		}
		return b
	})
}

func TestMemoryBackendRegistered(t *testing.T) {
	b, err := persistence.NewBackend(persistence.ProviderConfig{Type: "memory"}, persistence.BackendConfig{})
	if err != nil {
		t.Fatalf("NewBackend via registry: %v", err)
	}
	if b == nil {
		t.Fatal("registry returned nil backend")
	}
}
