package domain

import (
	"fmt"
	"strings"
	"time"
)

// TaskStatus is the lifecycle state of a task. Values are stable because the
// relational backend persists them as integers.
type TaskStatus int

const (
	StatusPending TaskStatus = iota
	StatusAssigned
	StatusInProgress
	StatusCompleted
	StatusFailed
	StatusCancelled
)

func (s TaskStatus) String() string {
	switch s {
	case StatusPending:
		return "PENDING"
	case StatusAssigned:
		return "ASSIGNED"
	case StatusInProgress:
		return "IN_PROGRESS"
	case StatusCompleted:
		return "COMPLETED"
	case StatusFailed:
		return "FAILED"
	case StatusCancelled:
		return "CANCELLED"
	default:
		return fmt.Sprintf("UNKNOWN(%d)", int(s))
	}
}

// Terminal reports whether no further transitions are expected for s.
// Transitions are not enforced by the stores; callers use this as a hint only.
func (s TaskStatus) Terminal() bool {
	return s == StatusCompleted || s == StatusFailed || s == StatusCancelled
}

// WorkerTask is a unit of work destined for a worker agent. It is treated as
// immutable once enqueued; stores reconstruct rows rather than mutate fields
// in place.
type WorkerTask struct {
	ID string `json:"id"`
	// Type tags what the task asks for; agents match it against their intents.
	Type  string         `json:"type"`
	Input map[string]any `json:"input,omitempty"`
	// RequiredCapability, when set, names a tool or intent the executing agent
	// must support. Empty means the task is agent-agnostic.
	RequiredCapability string `json:"requiredCapability,omitempty"`
	// PreferredAgentID pins the task to a specific agent when that agent asks
	// for work; it is a preference, not a hard assignment.
	PreferredAgentID string            `json:"preferredAgentId,omitempty"`
	Priority         int               `json:"priority,omitempty"`
	Timeout          time.Duration     `json:"timeout,omitempty"`
	Metadata         map[string]string `json:"metadata,omitempty"`
	CreatedAt        time.Time         `json:"createdAt"`
}

// Validate rejects tasks that would corrupt a store if persisted. Not-found
// style conditions are never validation errors; this only guards caller bugs.
func (t *WorkerTask) Validate() error {
	if t == nil {
		return fmt.Errorf("task is nil")
	}
	if strings.TrimSpace(t.ID) == "" {
		return fmt.Errorf("task id is required")
	}
	if strings.TrimSpace(t.Type) == "" {
		return fmt.Errorf("task type is required")
	}
	if t.Timeout < 0 {
		return fmt.Errorf("task timeout must not be negative")
	}
	return nil
}

// Clone returns a deep copy so stores can hand out values without aliasing
// their internal state.
func (t *WorkerTask) Clone() *WorkerTask {
	if t == nil {
		return nil
	}
	cp := *t
	cp.Input = cloneAnyMap(t.Input)
	cp.Metadata = cloneStringMap(t.Metadata)
	return &cp
}

func cloneStringMap(m map[string]string) map[string]string {
	if m == nil {
		return nil
	}
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// cloneAnyMap copies one level deep; nested values are treated as read-only
// JSON-style data by callers.
func cloneAnyMap(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
