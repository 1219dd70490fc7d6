package memory

import (
	"context"

	"github.com/agentsched/agentq/pkg/persistence"
)

// Backend keeps everything in process-local maps. State is lost on restart;
// it is intended for single-instance deployments and tests. Each component
// owns exactly one lock and no operation ever holds two.
type Backend struct {
	queue    *Queue
	store    *Store
	registry *Registry
}

// NewBackend creates an isolated in-memory backend. Instances share no state,
// so tests can construct as many as they need.
func NewBackend(config persistence.BackendConfig) (persistence.Backend, error) {
	return &Backend{
		queue:    NewQueue(),
		store:    NewStore(),
		registry: NewRegistry(),
	}, nil
}

func (b *Backend) TaskQueue() persistence.TaskQueue { return b.queue }

func (b *Backend) TaskStore() persistence.TaskStore { return b.store }

func (b *Backend) AgentRegistry() persistence.AgentRegistry { return b.registry }

// Health always succeeds for in-memory storage.
func (b *Backend) Health(ctx context.Context) error { return nil }

// Close is a no-op for in-memory storage.
func (b *Backend) Close() error { return nil }

func init() {
	persistence.RegisterProvider("memory", NewBackend)
}
