package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/agentsched/agentq/pkg/domain"
	"github.com/agentsched/agentq/pkg/persistence"
)

// taskQueue backs the queue contract with a task_queue table. Pending rows
// carry the full serialized task plus the columns the ordering and matching
// filters need; dequeues are single DELETE statements whose inner SELECT uses
// FOR UPDATE SKIP LOCKED, so concurrent dispatchers never double-dispatch.
type taskQueue struct {
	b *Backend
}

func (q *taskQueue) Enqueue(ctx context.Context, task *domain.WorkerTask) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := task.Validate(); err != nil {
		return fmt.Errorf("%w: %v", persistence.ErrInvalid, err)
	}
	if err := q.b.ensure(ctx); err != nil {
		return err
	}

	data, err := json.Marshal(task)
	if err != nil {
		return fmt.Errorf("marshal task: %w", err)
	}
	_, err = q.b.pool.Exec(ctx,
		`INSERT INTO task_queue (task_id, task_data, priority, required_capability, preferred_agent_id)
		 VALUES ($1,$2,$3,$4,$5)
		 ON CONFLICT (task_id) DO UPDATE SET
		   task_data=EXCLUDED.task_data,
		   priority=EXCLUDED.priority,
		   required_capability=EXCLUDED.required_capability,
		   preferred_agent_id=EXCLUDED.preferred_agent_id`,
		task.ID, data, task.Priority, nullString(task.RequiredCapability), nullString(task.PreferredAgentID),
	)
	if err != nil {
		return fmt.Errorf("enqueue task: %w", err)
	}
	return nil
}

// popWhere removes and returns the best pending row matching the extra WHERE
// clause. The statement is atomic; SKIP LOCKED makes racing dequeues pick
// distinct rows instead of blocking.
func (q *taskQueue) popWhere(ctx context.Context, where string, args ...any) (*domain.WorkerTask, bool, error) {
	sql := fmt.Sprintf(
		`DELETE FROM task_queue WHERE task_id = (
		   SELECT task_id FROM task_queue %s
		   ORDER BY priority DESC, seq ASC
		   LIMIT 1 FOR UPDATE SKIP LOCKED
		 ) RETURNING task_data`, where)

	var data []byte
	err := q.b.pool.QueryRow(ctx, sql, args...).Scan(&data)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("dequeue task: %w", err)
	}
	var task domain.WorkerTask
	if err := json.Unmarshal(data, &task); err != nil {
		return nil, false, fmt.Errorf("unmarshal task: %w", err)
	}
	return &task, true, nil
}

func (q *taskQueue) Dequeue(ctx context.Context, agentID string) (*domain.WorkerTask, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}
	if err := q.b.ensure(ctx); err != nil {
		return nil, false, err
	}

	if agentID != "" {
		if task, ok, err := q.popWhere(ctx, `WHERE preferred_agent_id = $1`, agentID); err != nil || ok {
			return task, ok, err
		}
		if task, ok, err := q.popWhere(ctx, `WHERE required_capability IS NULL`); err != nil || ok {
			return task, ok, err
		}
	}
	return q.popWhere(ctx, ``)
}

func (q *taskQueue) Peek(ctx context.Context) (*domain.WorkerTask, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}
	if err := q.b.ensure(ctx); err != nil {
		return nil, false, err
	}

	var data []byte
	err := q.b.pool.QueryRow(ctx,
		`SELECT task_data FROM task_queue ORDER BY priority DESC, seq ASC LIMIT 1`,
	).Scan(&data)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("peek task: %w", err)
	}
	var task domain.WorkerTask
	if err := json.Unmarshal(data, &task); err != nil {
		return nil, false, fmt.Errorf("unmarshal task: %w", err)
	}
	return &task, true, nil
}

func (q *taskQueue) PendingCount(ctx context.Context) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if err := q.b.ensure(ctx); err != nil {
		return 0, err
	}

	var n int64
	if err := q.b.pool.QueryRow(ctx, `SELECT COUNT(1) FROM task_queue`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count pending: %w", err)
	}
	return n, nil
}

func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}
