package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/agentsched/agentq/pkg/domain"
	"github.com/agentsched/agentq/pkg/persistence"
)

// Store is the durable (for the life of the process) record of tasks and
// results, keyed by task id. It does not order anything; that is the queue's
// job.
type Store struct {
	mu       sync.RWMutex
	tasks    map[string]*domain.WorkerTask
	statuses map[string]domain.TaskStatus
	results  map[string]*domain.WorkerTaskResult
}

func NewStore() *Store {
	return &Store{
		tasks:    make(map[string]*domain.WorkerTask),
		statuses: make(map[string]domain.TaskStatus),
		results:  make(map[string]*domain.WorkerTaskResult),
	}
}

func (s *Store) Save(ctx context.Context, task *domain.WorkerTask) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := task.Validate(); err != nil {
		return fmt.Errorf("%w: %v", persistence.ErrInvalid, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// Saving is an upsert; a repeated save overwrites the row and resets the
	// status to Pending.
	s.tasks[task.ID] = task.Clone()
	s.statuses[task.ID] = domain.StatusPending
	return nil
}

func (s *Store) Get(ctx context.Context, taskID string) (*domain.WorkerTask, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	task, ok := s.tasks[taskID]
	if !ok {
		return nil, persistence.ErrNotFound
	}
	return task.Clone(), nil
}

func (s *Store) SaveResult(ctx context.Context, result *domain.WorkerTaskResult) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := result.Validate(); err != nil {
		return fmt.Errorf("%w: %v", persistence.ErrInvalid, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// A later result for the same task overwrites the earlier one and
	// re-derives the status from its success flag.
	s.results[result.TaskID] = result.Clone()
	if _, ok := s.tasks[result.TaskID]; ok {
		s.statuses[result.TaskID] = result.Status()
	}
	return nil
}

func (s *Store) GetResult(ctx context.Context, taskID string) (*domain.WorkerTaskResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	result, ok := s.results[taskID]
	if !ok {
		return nil, persistence.ErrNotFound
	}
	return result.Clone(), nil
}

func (s *Store) UpdateStatus(ctx context.Context, taskID string, status domain.TaskStatus) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// Any status may be set at any time; out-of-order transitions are the
	// caller's problem. Unknown tasks are a no-op.
	if _, ok := s.tasks[taskID]; ok {
		s.statuses[taskID] = status
	}
	return nil
}

func (s *Store) GetStatus(ctx context.Context, taskID string) (domain.TaskStatus, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	status, ok := s.statuses[taskID]
	if !ok {
		return 0, persistence.ErrNotFound
	}
	return status, nil
}
