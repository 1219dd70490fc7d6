package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/agentsched/agentq/pkg/domain"
	"github.com/agentsched/agentq/pkg/persistence"
)

type agentRegistry struct {
	b *Backend
}

func (r *agentRegistry) load(ctx context.Context, agentID string) (*domain.AgentInfo, error) {
	data, err := r.b.client.HGet(ctx, keyAgents, agentID).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load agent %s: %w", agentID, err)
	}
	var info domain.AgentInfo
	if err := json.Unmarshal([]byte(data), &info); err != nil {
		return nil, fmt.Errorf("unmarshal agent %s: %w", agentID, err)
	}
	return &info, nil
}

func (r *agentRegistry) save(ctx context.Context, info *domain.AgentInfo) error {
	data, err := json.Marshal(info)
	if err != nil {
		return fmt.Errorf("marshal agent %s: %w", info.AgentID, err)
	}
	if err := r.b.client.HSet(ctx, keyAgents, info.AgentID, data).Err(); err != nil {
		return fmt.Errorf("save agent %s: %w", info.AgentID, err)
	}
	return nil
}

func (r *agentRegistry) Register(ctx context.Context, caps *domain.AgentCapabilities) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if caps == nil {
		return fmt.Errorf("%w: nil capabilities", persistence.ErrInvalid)
	}
	if err := caps.Validate(); err != nil {
		return fmt.Errorf("%w: %v", persistence.ErrInvalid, err)
	}
	now := time.Now().UTC()
	createdAt := now
	if prev, err := r.load(ctx, caps.AgentID); err != nil {
		return err
	} else if prev != nil {
		createdAt = prev.CreatedAt
	}
	info := &domain.AgentInfo{
		AgentID:          caps.AgentID,
		AgentType:        caps.AgentType,
		Status:           domain.AgentAvailable,
		Capabilities:     *caps.Clone(),
		LastHeartbeat:    now,
		CurrentTaskCount: 0,
		CreatedAt:        createdAt,
		UpdatedAt:        now,
	}
	return r.save(ctx, info)
}

func (r *agentRegistry) Unregister(ctx context.Context, agentID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := r.b.client.HDel(ctx, keyAgents, agentID).Err(); err != nil {
		return fmt.Errorf("unregister agent %s: %w", agentID, err)
	}
	return nil
}

func (r *agentRegistry) UpdateStatus(ctx context.Context, agentID string, status domain.AgentStatus) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	info, err := r.load(ctx, agentID)
	if err != nil || info == nil {
		return err
	}
	info.Status = status
	info.UpdatedAt = time.Now().UTC()
	return r.save(ctx, info)
}

func (r *agentRegistry) UpdateTaskCount(ctx context.Context, agentID string, count int) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if count < 0 {
		return fmt.Errorf("%w: task count %d", persistence.ErrInvalid, count)
	}
	info, err := r.load(ctx, agentID)
	if err != nil || info == nil {
		return err
	}
	info.CurrentTaskCount = count
	info.UpdatedAt = time.Now().UTC()
	return r.save(ctx, info)
}

func (r *agentRegistry) all(ctx context.Context) ([]*domain.AgentInfo, error) {
	entries, err := r.b.client.HGetAll(ctx, keyAgents).Result()
	if err != nil {
		return nil, fmt.Errorf("load agents: %w", err)
	}
	out := make([]*domain.AgentInfo, 0, len(entries))
	for id, data := range entries {
		var info domain.AgentInfo
		if err := json.Unmarshal([]byte(data), &info); err != nil {
			return nil, fmt.Errorf("unmarshal agent %s: %w", id, err)
		}
		out = append(out, &info)
	}
	return out, nil
}

func (r *agentRegistry) FindByCapability(ctx context.Context, capability string) ([]*domain.AgentInfo, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	agents, err := r.all(ctx)
	if err != nil {
		return nil, err
	}
	matched := make([]*domain.AgentInfo, 0)
	for _, info := range agents {
		if info.Capabilities.Supports(capability) {
			matched = append(matched, info)
		}
	}
	return matched, nil
}

func (r *agentRegistry) FindByType(ctx context.Context, agentType string) ([]*domain.AgentInfo, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	agents, err := r.all(ctx)
	if err != nil {
		return nil, err
	}
	matched := make([]*domain.AgentInfo, 0)
	for _, info := range agents {
		if info.AgentType == agentType {
			matched = append(matched, info)
		}
	}
	return matched, nil
}

func (r *agentRegistry) GetByID(ctx context.Context, agentID string) (*domain.AgentInfo, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	info, err := r.load(ctx, agentID)
	if err != nil {
		return nil, err
	}
	if info == nil {
		return nil, fmt.Errorf("%w: agent %s", persistence.ErrNotFound, agentID)
	}
	return info, nil
}

func (r *agentRegistry) GetAll(ctx context.Context) ([]*domain.AgentInfo, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return r.all(ctx)
}

func (r *agentRegistry) RecordHeartbeat(ctx context.Context, agentID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	info, err := r.load(ctx, agentID)
	if err != nil || info == nil {
		return err
	}
	now := time.Now().UTC()
	info.LastHeartbeat = now
	info.UpdatedAt = now
	return r.save(ctx, info)
}
