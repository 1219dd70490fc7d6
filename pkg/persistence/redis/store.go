package redis

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/go-redis/redis/v8"

	"github.com/agentsched/agentq/pkg/domain"
	"github.com/agentsched/agentq/pkg/persistence"
)

// storedTask is the hash value format: the task body plus its lifecycle
// status, which the other backends keep in a separate column or map.
type storedTask struct {
	Task   domain.WorkerTask `json:"task"`
	Status domain.TaskStatus `json:"status"`
}

type taskStore struct {
	b *Backend
}

func (s *taskStore) load(ctx context.Context, id string) (*storedTask, error) {
	data, err := s.b.client.HGet(ctx, keyTasks, id).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load task %s: %w", id, err)
	}
	var rec storedTask
	if err := json.Unmarshal([]byte(data), &rec); err != nil {
		return nil, fmt.Errorf("unmarshal task %s: %w", id, err)
	}
	return &rec, nil
}

func (s *taskStore) save(ctx context.Context, rec *storedTask) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal task %s: %w", rec.Task.ID, err)
	}
	if err := s.b.client.HSet(ctx, keyTasks, rec.Task.ID, data).Err(); err != nil {
		return fmt.Errorf("save task %s: %w", rec.Task.ID, err)
	}
	return nil
}

func (s *taskStore) Save(ctx context.Context, task *domain.WorkerTask) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if task == nil {
		return fmt.Errorf("%w: nil task", persistence.ErrInvalid)
	}
	if err := task.Validate(); err != nil {
		return fmt.Errorf("%w: %v", persistence.ErrInvalid, err)
	}
	return s.save(ctx, &storedTask{Task: *task.Clone(), Status: domain.StatusPending})
}

func (s *taskStore) Get(ctx context.Context, taskID string) (*domain.WorkerTask, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	rec, err := s.load(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, fmt.Errorf("%w: task %s", persistence.ErrNotFound, taskID)
	}
	return rec.Task.Clone(), nil
}

func (s *taskStore) SaveResult(ctx context.Context, result *domain.WorkerTaskResult) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if result == nil {
		return fmt.Errorf("%w: nil result", persistence.ErrInvalid)
	}
	if err := result.Validate(); err != nil {
		return fmt.Errorf("%w: %v", persistence.ErrInvalid, err)
	}
	data, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("marshal result %s: %w", result.TaskID, err)
	}
	if err := s.b.client.HSet(ctx, keyResults, result.TaskID, data).Err(); err != nil {
		return fmt.Errorf("save result %s: %w", result.TaskID, err)
	}
	rec, err := s.load(ctx, result.TaskID)
	if err != nil {
		return err
	}
	if rec == nil {
		return nil
	}
	rec.Status = result.Status()
	return s.save(ctx, rec)
}

func (s *taskStore) GetResult(ctx context.Context, taskID string) (*domain.WorkerTaskResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := s.b.client.HGet(ctx, keyResults, taskID).Result()
	if err == redis.Nil {
		return nil, fmt.Errorf("%w: result %s", persistence.ErrNotFound, taskID)
	}
	if err != nil {
		return nil, fmt.Errorf("load result %s: %w", taskID, err)
	}
	var result domain.WorkerTaskResult
	if err := json.Unmarshal([]byte(data), &result); err != nil {
		return nil, fmt.Errorf("unmarshal result %s: %w", taskID, err)
	}
	return &result, nil
}

func (s *taskStore) UpdateStatus(ctx context.Context, taskID string, status domain.TaskStatus) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	rec, err := s.load(ctx, taskID)
	if err != nil {
		return err
	}
	if rec == nil {
		return nil
	}
	rec.Status = status
	return s.save(ctx, rec)
}

func (s *taskStore) GetStatus(ctx context.Context, taskID string) (domain.TaskStatus, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	rec, err := s.load(ctx, taskID)
	if err != nil {
		return 0, err
	}
	if rec == nil {
		return 0, fmt.Errorf("%w: task %s", persistence.ErrNotFound, taskID)
	}
	return rec.Status, nil
}
