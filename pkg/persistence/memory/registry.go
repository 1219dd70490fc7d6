package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/agentsched/agentq/pkg/domain"
	"github.com/agentsched/agentq/pkg/persistence"
)

// Registry tracks registered agents in one map behind one lock. Update
// operations against unknown agents are silent no-ops; reads return
// persistence.ErrNotFound.
type Registry struct {
	mu     sync.RWMutex
	agents map[string]*domain.AgentInfo
	now    func() time.Time
}

func NewRegistry() *Registry {
	return &Registry{
		agents: make(map[string]*domain.AgentInfo),
		now:    time.Now,
	}
}

func (r *Registry) Register(ctx context.Context, caps *domain.AgentCapabilities) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := caps.Validate(); err != nil {
		return fmt.Errorf("%w: %v", persistence.ErrInvalid, err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now().UTC()
	info := &domain.AgentInfo{
		AgentID:       caps.AgentID,
		AgentType:     caps.AgentType,
		Status:        domain.AgentAvailable,
		Capabilities:  *caps.Clone(),
		LastHeartbeat: now,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	// Re-registration overwrites the record; only the original creation time
	// survives.
	if prev, ok := r.agents[caps.AgentID]; ok {
		info.CreatedAt = prev.CreatedAt
	}
	r.agents[caps.AgentID] = info
	return nil
}

func (r *Registry) Unregister(ctx context.Context, agentID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.agents, agentID)
	return nil
}

func (r *Registry) UpdateStatus(ctx context.Context, agentID string, status domain.AgentStatus) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if a, ok := r.agents[agentID]; ok {
		a.Status = status
		a.UpdatedAt = r.now().UTC()
	}
	return nil
}

func (r *Registry) UpdateTaskCount(ctx context.Context, agentID string, count int) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if count < 0 {
		return fmt.Errorf("%w: task count must not be negative", persistence.ErrInvalid)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if a, ok := r.agents[agentID]; ok {
		a.CurrentTaskCount = count
		a.UpdatedAt = r.now().UTC()
	}
	return nil
}

func (r *Registry) FindByCapability(ctx context.Context, name string) ([]*domain.AgentInfo, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*domain.AgentInfo, 0, 4)
	for _, a := range r.agents {
		if a.Capabilities.Supports(name) {
			out = append(out, a.Clone())
		}
	}
	return out, nil
}

func (r *Registry) FindByType(ctx context.Context, agentType string) ([]*domain.AgentInfo, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*domain.AgentInfo, 0, 4)
	for _, a := range r.agents {
		if a.AgentType == agentType {
			out = append(out, a.Clone())
		}
	}
	return out, nil
}

func (r *Registry) GetByID(ctx context.Context, agentID string) (*domain.AgentInfo, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	a, ok := r.agents[agentID]
	if !ok {
		return nil, persistence.ErrNotFound
	}
	return a.Clone(), nil
}

func (r *Registry) GetAll(ctx context.Context) ([]*domain.AgentInfo, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*domain.AgentInfo, 0, len(r.agents))
	for _, a := range r.agents {
		out = append(out, a.Clone())
	}
	return out, nil
}

func (r *Registry) RecordHeartbeat(ctx context.Context, agentID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if a, ok := r.agents[agentID]; ok {
		a.LastHeartbeat = r.now().UTC()
	}
	return nil
}
