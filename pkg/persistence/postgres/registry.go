package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/agentsched/agentq/pkg/domain"
	"github.com/agentsched/agentq/pkg/persistence"
)

type agentRegistry struct {
	b *Backend
}

const agentColumns = `agent_id, agent_type, status, supported_tools, supported_intents,
        max_concurrent_tasks, metadata, last_heartbeat, current_task_count, created_at, updated_at`

func (r *agentRegistry) Register(ctx context.Context, caps *domain.AgentCapabilities) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := caps.Validate(); err != nil {
		return fmt.Errorf("%w: %v", persistence.ErrInvalid, err)
	}
	if err := r.b.ensure(ctx); err != nil {
		return err
	}

	metadata, err := json.Marshal(caps.Metadata)
	if err != nil {
		return fmt.Errorf("marshal metadata: %w", err)
	}
	tools := caps.Tools
	if tools == nil {
		tools = []string{}
	}
	intents := caps.Intents
	if intents == nil {
		intents = []string{}
	}
	now := time.Now().UTC()

	// Re-registration overwrites everything but created_at; status resets to
	// Available and the heartbeat is stamped fresh.
	_, err = r.b.pool.Exec(ctx,
		`INSERT INTO agent_registry (agent_id, agent_type, status, supported_tools, supported_intents,
		                             max_concurrent_tasks, metadata, last_heartbeat, current_task_count, created_at, updated_at)
		 VALUES ($1,$2,$3,$4,$5,$6,$7,$8,0,$9,$9)
		 ON CONFLICT (agent_id) DO UPDATE SET
		   agent_type=EXCLUDED.agent_type,
		   status=EXCLUDED.status,
		   supported_tools=EXCLUDED.supported_tools,
		   supported_intents=EXCLUDED.supported_intents,
		   max_concurrent_tasks=EXCLUDED.max_concurrent_tasks,
		   metadata=EXCLUDED.metadata,
		   last_heartbeat=EXCLUDED.last_heartbeat,
		   current_task_count=EXCLUDED.current_task_count,
		   updated_at=EXCLUDED.updated_at`,
		caps.AgentID, caps.AgentType, int(domain.AgentAvailable), tools, intents,
		caps.MaxConcurrentTasks, metadata, now, now,
	)
	if err != nil {
		return fmt.Errorf("register agent: %w", err)
	}
	return nil
}

func (r *agentRegistry) Unregister(ctx context.Context, agentID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := r.b.ensure(ctx); err != nil {
		return err
	}

	if _, err := r.b.pool.Exec(ctx, `DELETE FROM agent_registry WHERE agent_id=$1`, agentID); err != nil {
		return fmt.Errorf("unregister agent: %w", err)
	}
	return nil
}

func (r *agentRegistry) UpdateStatus(ctx context.Context, agentID string, status domain.AgentStatus) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := r.b.ensure(ctx); err != nil {
		return err
	}

	_, err := r.b.pool.Exec(ctx,
		`UPDATE agent_registry SET status=$2, updated_at=$3 WHERE agent_id=$1`,
		agentID, int(status), time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("update agent status: %w", err)
	}
	return nil
}

func (r *agentRegistry) UpdateTaskCount(ctx context.Context, agentID string, count int) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if count < 0 {
		return fmt.Errorf("%w: task count must not be negative", persistence.ErrInvalid)
	}
	if err := r.b.ensure(ctx); err != nil {
		return err
	}

	_, err := r.b.pool.Exec(ctx,
		`UPDATE agent_registry SET current_task_count=$2, updated_at=$3 WHERE agent_id=$1`,
		agentID, count, time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("update agent task count: %w", err)
	}
	return nil
}

func (r *agentRegistry) FindByCapability(ctx context.Context, name string) ([]*domain.AgentInfo, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := r.b.ensure(ctx); err != nil {
		return nil, err
	}

	// Array containment keeps the GIN indexes usable; matching is exact.
	rows, err := r.b.pool.Query(ctx,
		`SELECT `+agentColumns+`
		 FROM agent_registry
		 WHERE supported_tools @> ARRAY[$1]::text[] OR supported_intents @> ARRAY[$1]::text[]`, name)
	if err != nil {
		return nil, fmt.Errorf("find by capability: %w", err)
	}
	defer rows.Close()
	return scanAgents(rows)
}

func (r *agentRegistry) FindByType(ctx context.Context, agentType string) ([]*domain.AgentInfo, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := r.b.ensure(ctx); err != nil {
		return nil, err
	}

	rows, err := r.b.pool.Query(ctx,
		`SELECT `+agentColumns+` FROM agent_registry WHERE agent_type=$1`, agentType)
	if err != nil {
		return nil, fmt.Errorf("find by type: %w", err)
	}
	defer rows.Close()
	return scanAgents(rows)
}

func (r *agentRegistry) GetByID(ctx context.Context, agentID string) (*domain.AgentInfo, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := r.b.ensure(ctx); err != nil {
		return nil, err
	}

	row := r.b.pool.QueryRow(ctx,
		`SELECT `+agentColumns+` FROM agent_registry WHERE agent_id=$1`, agentID)
	info, err := scanAgent(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, persistence.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get agent: %w", err)
	}
	return info, nil
}

func (r *agentRegistry) GetAll(ctx context.Context) ([]*domain.AgentInfo, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := r.b.ensure(ctx); err != nil {
		return nil, err
	}

	rows, err := r.b.pool.Query(ctx, `SELECT `+agentColumns+` FROM agent_registry`)
	if err != nil {
		return nil, fmt.Errorf("list agents: %w", err)
	}
	defer rows.Close()
	return scanAgents(rows)
}

func (r *agentRegistry) RecordHeartbeat(ctx context.Context, agentID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := r.b.ensure(ctx); err != nil {
		return err
	}

	_, err := r.b.pool.Exec(ctx,
		`UPDATE agent_registry SET last_heartbeat=$2 WHERE agent_id=$1`,
		agentID, time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("record heartbeat: %w", err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAgent(row rowScanner) (*domain.AgentInfo, error) {
	var (
		info     domain.AgentInfo
		status   int
		tools    []string
		intents  []string
		metadata []byte
	)
	if err := row.Scan(&info.AgentID, &info.AgentType, &status, &tools, &intents,
		&info.Capabilities.MaxConcurrentTasks, &metadata, &info.LastHeartbeat,
		&info.CurrentTaskCount, &info.CreatedAt, &info.UpdatedAt); err != nil {
		return nil, err
	}
	info.Status = domain.AgentStatus(status)
	info.Capabilities.AgentID = info.AgentID
	info.Capabilities.AgentType = info.AgentType
	info.Capabilities.Tools = tools
	info.Capabilities.Intents = intents
	if len(metadata) > 0 {
		if err := json.Unmarshal(metadata, &info.Capabilities.Metadata); err != nil {
			return nil, fmt.Errorf("unmarshal metadata: %w", err)
		}
	}
	return &info, nil
}

func scanAgents(rows pgx.Rows) ([]*domain.AgentInfo, error) {
	out := make([]*domain.AgentInfo, 0, 16)
	for rows.Next() {
		info, err := scanAgent(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, info)
	}
	return out, rows.Err()
}
