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

type taskStore struct {
	b *Backend
}

func (s *taskStore) Save(ctx context.Context, task *domain.WorkerTask) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := task.Validate(); err != nil {
		return fmt.Errorf("%w: %v", persistence.ErrInvalid, err)
	}
	if err := s.b.ensure(ctx); err != nil {
		return err
	}

	input, err := json.Marshal(task.Input)
	if err != nil {
		return fmt.Errorf("marshal input: %w", err)
	}
	metadata, err := json.Marshal(task.Metadata)
	if err != nil {
		return fmt.Errorf("marshal metadata: %w", err)
	}
	createdAt := task.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	// Upsert keyed by task id; a repeated save overwrites the row and resets
	// the status to Pending.
	_, err = s.b.pool.Exec(ctx,
		`INSERT INTO task_store (task_id, task_type, input_data, required_capability, preferred_agent_id,
		                         priority, timeout_ms, metadata, status, created_at, updated_at)
		 VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
		 ON CONFLICT (task_id) DO UPDATE SET
		   task_type=EXCLUDED.task_type,
		   input_data=EXCLUDED.input_data,
		   required_capability=EXCLUDED.required_capability,
		   preferred_agent_id=EXCLUDED.preferred_agent_id,
		   priority=EXCLUDED.priority,
		   timeout_ms=EXCLUDED.timeout_ms,
		   metadata=EXCLUDED.metadata,
		   status=EXCLUDED.status,
		   updated_at=EXCLUDED.updated_at`,
		task.ID, task.Type, input, nullString(task.RequiredCapability), nullString(task.PreferredAgentID),
		task.Priority, nullMillis(task.Timeout), metadata, int(domain.StatusPending), createdAt, time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("save task: %w", err)
	}
	return nil
}

func (s *taskStore) Get(ctx context.Context, taskID string) (*domain.WorkerTask, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := s.b.ensure(ctx); err != nil {
		return nil, err
	}

	var (
		task      domain.WorkerTask
		input     []byte
		metadata  []byte
		reqCap    *string
		preferred *string
		timeoutMS *int64
	)
	err := s.b.pool.QueryRow(ctx,
		`SELECT task_id, task_type, input_data, required_capability, preferred_agent_id,
		        priority, timeout_ms, metadata, created_at
		 FROM task_store WHERE task_id = $1`, taskID,
	).Scan(&task.ID, &task.Type, &input, &reqCap, &preferred, &task.Priority, &timeoutMS, &metadata, &task.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, persistence.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get task: %w", err)
	}
	if len(input) > 0 {
		if err := json.Unmarshal(input, &task.Input); err != nil {
			return nil, fmt.Errorf("unmarshal input: %w", err)
		}
	}
	if len(metadata) > 0 {
		if err := json.Unmarshal(metadata, &task.Metadata); err != nil {
			return nil, fmt.Errorf("unmarshal metadata: %w", err)
		}
	}
	if reqCap != nil {
		task.RequiredCapability = *reqCap
	}
	if preferred != nil {
		task.PreferredAgentID = *preferred
	}
	if timeoutMS != nil {
		task.Timeout = time.Duration(*timeoutMS) * time.Millisecond
	}
	return &task, nil
}

func (s *taskStore) SaveResult(ctx context.Context, result *domain.WorkerTaskResult) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := result.Validate(); err != nil {
		return fmt.Errorf("%w: %v", persistence.ErrInvalid, err)
	}
	if err := s.b.ensure(ctx); err != nil {
		return err
	}

	output, err := json.Marshal(result.Output)
	if err != nil {
		return fmt.Errorf("marshal output: %w", err)
	}
	metadata, err := json.Marshal(result.Metadata)
	if err != nil {
		return fmt.Errorf("marshal metadata: %w", err)
	}
	completedAt := result.CompletedAt
	if completedAt.IsZero() {
		completedAt = time.Now().UTC()
	}

	// Result upsert and the derived status flip commit together; a repeated
	// save overwrites the result and re-derives the status.
	tx, err := s.b.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin save result: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx,
		`INSERT INTO task_results (task_id, success, output_data, error_message, worker_agent_id,
		                           execution_time_ms, metadata, completed_at)
		 VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
		 ON CONFLICT (task_id) DO UPDATE SET
		   success=EXCLUDED.success,
		   output_data=EXCLUDED.output_data,
		   error_message=EXCLUDED.error_message,
		   worker_agent_id=EXCLUDED.worker_agent_id,
		   execution_time_ms=EXCLUDED.execution_time_ms,
		   metadata=EXCLUDED.metadata,
		   completed_at=EXCLUDED.completed_at`,
		result.TaskID, result.Success, output, nullString(result.Error), result.AgentID,
		result.ExecutionTime.Milliseconds(), metadata, completedAt,
	); err != nil {
		return fmt.Errorf("save result: %w", err)
	}

	if _, err := tx.Exec(ctx,
		`UPDATE task_store SET status=$2, updated_at=$3 WHERE task_id=$1`,
		result.TaskID, int(result.Status()), time.Now().UTC(),
	); err != nil {
		return fmt.Errorf("update task status: %w", err)
	}

	return tx.Commit(ctx)
}

func (s *taskStore) GetResult(ctx context.Context, taskID string) (*domain.WorkerTaskResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := s.b.ensure(ctx); err != nil {
		return nil, err
	}

	var (
		result   domain.WorkerTaskResult
		output   []byte
		metadata []byte
		errMsg   *string
		execMS   int64
	)
	err := s.b.pool.QueryRow(ctx,
		`SELECT task_id, success, output_data, error_message, worker_agent_id, execution_time_ms, metadata, completed_at
		 FROM task_results WHERE task_id = $1`, taskID,
	).Scan(&result.TaskID, &result.Success, &output, &errMsg, &result.AgentID, &execMS, &metadata, &result.CompletedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, persistence.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get result: %w", err)
	}
	if len(output) > 0 {
		if err := json.Unmarshal(output, &result.Output); err != nil {
			return nil, fmt.Errorf("unmarshal output: %w", err)
		}
	}
	if len(metadata) > 0 {
		if err := json.Unmarshal(metadata, &result.Metadata); err != nil {
			return nil, fmt.Errorf("unmarshal metadata: %w", err)
		}
	}
	if errMsg != nil {
		result.Error = *errMsg
	}
	result.ExecutionTime = time.Duration(execMS) * time.Millisecond
	return &result, nil
}

func (s *taskStore) UpdateStatus(ctx context.Context, taskID string, status domain.TaskStatus) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := s.b.ensure(ctx); err != nil {
		return err
	}

	// Unknown task ids update zero rows and are a silent no-op, matching the
	// registry's treatment of unknown agents.
	_, err := s.b.pool.Exec(ctx,
		`UPDATE task_store SET status=$2, updated_at=$3 WHERE task_id=$1`,
		taskID, int(status), time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("update status: %w", err)
	}
	return nil
}

func (s *taskStore) GetStatus(ctx context.Context, taskID string) (domain.TaskStatus, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if err := s.b.ensure(ctx); err != nil {
		return 0, err
	}

	var status int
	err := s.b.pool.QueryRow(ctx, `SELECT status FROM task_store WHERE task_id=$1`, taskID).Scan(&status)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, persistence.ErrNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("get status: %w", err)
	}
	return domain.TaskStatus(status), nil
}

func nullMillis(d time.Duration) any {
	if d == 0 {
		return nil
	}
	return d.Milliseconds()
}
