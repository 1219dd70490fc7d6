package domain

import (
	"fmt"
	"strings"
	"time"
)

// WorkerTaskResult is the outcome a single agent reports for a single task.
// Saving a result implicitly drives the task's status: Completed when Success
// is true, Failed otherwise. A later save for the same task id overwrites the
// earlier one and re-derives the status.
type WorkerTaskResult struct {
	TaskID  string         `json:"taskId"`
	Success bool           `json:"success"`
	Output  map[string]any `json:"output,omitempty"`
	// Error carries the failure message; it is meaningful only when Success is
	// false.
	Error         string            `json:"error,omitempty"`
	AgentID       string            `json:"agentId"`
	ExecutionTime time.Duration     `json:"executionTime"`
	Metadata      map[string]string `json:"metadata,omitempty"`
	CompletedAt   time.Time         `json:"completedAt"`
}

func (r *WorkerTaskResult) Validate() error {
	if r == nil {
		return fmt.Errorf("result is nil")
	}
	if strings.TrimSpace(r.TaskID) == "" {
		return fmt.Errorf("result task id is required")
	}
	if r.ExecutionTime < 0 {
		return fmt.Errorf("result execution time must not be negative")
	}
	return nil
}

// Status returns the task status this result implies.
func (r *WorkerTaskResult) Status() TaskStatus {
	if r.Success {
		return StatusCompleted
	}
	return StatusFailed
}

func (r *WorkerTaskResult) Clone() *WorkerTaskResult {
	if r == nil {
		return nil
	}
	cp := *r
	cp.Output = cloneAnyMap(r.Output)
	cp.Metadata = cloneStringMap(r.Metadata)
	return &cp
}
