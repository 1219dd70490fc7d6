package persistence

import (
	"context"
	"errors"

	"github.com/agentsched/agentq/pkg/domain"
)

var (
	// ErrNotFound is returned when a task, result or agent does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalid wraps validation failures rejected at the call boundary
	// before any mutation happens.
	ErrInvalid = errors.New("invalid argument")
)

// Backend bundles the three components of one persistence implementation.
// All implementations must satisfy the same behavioral contract; the suite in
// persistencetest exercises it.
type Backend interface {
	// TaskQueue returns the pending-task queue implementation.
	TaskQueue() TaskQueue

	// TaskStore returns the durable task/result store implementation.
	TaskStore() TaskStore

	// AgentRegistry returns the agent registry implementation.
	AgentRegistry() AgentRegistry

	// Health checks whether the backend is reachable.
	Health(ctx context.Context) error

	// Close releases resources held by the backend.
	Close() error
}

// TaskQueue holds pending tasks ordered by priority (descending) with strict
// FIFO among equal priorities. The order is total; arrival sequence is the
// tiebreaker of last resort.
type TaskQueue interface {
	// Enqueue inserts a pending task.
	Enqueue(ctx context.Context, task *domain.WorkerTask) error

	// Dequeue removes and returns the best-matching pending task. With a
	// non-empty agentID it prefers a task whose PreferredAgentID equals that
	// agent, then a task declaring no required capability, then falls back to
	// the globally best task. ok is false when the queue is empty; an empty
	// queue is never an error.
	Dequeue(ctx context.Context, agentID string) (*domain.WorkerTask, bool, error)

	// Peek returns the globally best pending task without removing it.
	Peek(ctx context.Context) (*domain.WorkerTask, bool, error)

	// PendingCount returns the number of queued tasks.
	PendingCount(ctx context.Context) (int64, error)
}

// TaskStore is the durable record of every task and its terminal result,
// independent of queue ordering.
type TaskStore interface {
	// Save upserts a task and (re)initializes its status to Pending.
	Save(ctx context.Context, task *domain.WorkerTask) error

	// Get returns the task or ErrNotFound.
	Get(ctx context.Context, taskID string) (*domain.WorkerTask, error)

	// SaveResult upserts the result for a task id and atomically sets the
	// task's status to Completed or Failed from the result's success flag.
	SaveResult(ctx context.Context, result *domain.WorkerTaskResult) error

	// GetResult returns the result or ErrNotFound.
	GetResult(ctx context.Context, taskID string) (*domain.WorkerTaskResult, error)

	// UpdateStatus sets the task's status directly, bypassing result logic.
	// Used for Assigned/InProgress/Cancelled transitions. Any status may be
	// set at any time; the store does not police transition order.
	UpdateStatus(ctx context.Context, taskID string, status domain.TaskStatus) error

	// GetStatus returns the current status of a task or ErrNotFound.
	GetStatus(ctx context.Context, taskID string) (domain.TaskStatus, error)
}

// AgentRegistry tracks which worker agents exist, what they can do, their
// operational status, and liveness via heartbeats. Staleness-based eviction
// is a caller policy, never enforced here.
type AgentRegistry interface {
	// Register upserts an agent's capability record, sets status to
	// Available and stamps the heartbeat. Re-registering overwrites.
	Register(ctx context.Context, caps *domain.AgentCapabilities) error

	// Unregister removes the agent. Unknown agents are a no-op.
	Unregister(ctx context.Context, agentID string) error

	// UpdateStatus sets the agent's operational status. Unknown agents are a
	// no-op.
	UpdateStatus(ctx context.Context, agentID string, status domain.AgentStatus) error

	// UpdateTaskCount sets the agent's current task count. Negative counts
	// are rejected with ErrInvalid before any mutation.
	UpdateTaskCount(ctx context.Context, agentID string, count int) error

	// FindByCapability returns agents whose tool set or intent set contains
	// name exactly.
	FindByCapability(ctx context.Context, name string) ([]*domain.AgentInfo, error)

	// FindByType returns agents whose type matches exactly.
	FindByType(ctx context.Context, agentType string) ([]*domain.AgentInfo, error)

	// GetByID returns the agent or ErrNotFound.
	GetByID(ctx context.Context, agentID string) (*domain.AgentInfo, error)

	// GetAll returns every registered agent.
	GetAll(ctx context.Context) ([]*domain.AgentInfo, error)

	// RecordHeartbeat refreshes only the agent's heartbeat timestamp.
	// Unknown agents are a no-op.
	RecordHeartbeat(ctx context.Context, agentID string) error
}
