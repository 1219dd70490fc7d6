package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/agentsched/agentq/pkg/domain"
	"github.com/agentsched/agentq/pkg/persistence"
	"github.com/agentsched/agentq/pkg/persistence/memory"
)

func newDispatch(t *testing.T) DispatchService {
	t.Helper()
	backend, err := memory.NewBackend(persistence.BackendConfig{})
	if err != nil {
		t.Fatalf("NewBackend: %v", err)
	}
	return NewDispatchService(backend, nil, nil)
}

func TestSubmitAssignsIDAndQueues(t *testing.T) {
	ctx := context.Background()
	svc := newDispatch(t)

	task, err := svc.Submit(ctx, &domain.WorkerTask{Type: "analysis", Priority: 3})
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if task.ID == "" {
		t.Fatal("Submit must assign an id")
	}
	if task.CreatedAt.IsZero() {
		t.Fatal("Submit must stamp CreatedAt")
	}
	status, err := svc.GetStatus(ctx, task.ID)
	if err != nil {
		t.Fatalf("GetStatus: %v", err)
	}
	if status != domain.StatusPending {
		t.Fatalf("submitted task status: got %v, want PENDING", status)
	}
	depth, err := svc.QueueDepth(ctx)
	if err != nil {
		t.Fatalf("QueueDepth: %v", err)
	}
	if depth != 1 {
		t.Fatalf("QueueDepth: got %d, want 1", depth)
	}
}

func TestSubmitRejectsInvalid(t *testing.T) {
	ctx := context.Background()
	svc := newDispatch(t)
	if _, err := svc.Submit(ctx, nil); !errors.Is(err, persistence.ErrInvalid) {
		t.Fatalf("Submit(nil): got %v, want ErrInvalid", err)
	}
	if _, err := svc.Submit(ctx, &domain.WorkerTask{}); !errors.Is(err, persistence.ErrInvalid) {
		t.Fatalf("Submit without type: got %v, want ErrInvalid", err)
	}
}

func TestNextMarksAssignedAndTracksLoad(t *testing.T) {
	ctx := context.Background()
	svc := newDispatch(t)

	if err := svc.RegisterAgent(ctx, &domain.AgentCapabilities{
		AgentID:            "agent-1",
		AgentType:          "researcher",
		MaxConcurrentTasks: 1,
	}); err != nil {
		t.Fatalf("RegisterAgent: %v", err)
	}
	submitted, err := svc.Submit(ctx, &domain.WorkerTask{Type: "analysis"})
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}

	task, ok, err := svc.Next(ctx, "agent-1")
	if err != nil || !ok {
		t.Fatalf("Next: (%v, %v)", ok, err)
	}
	if task.ID != submitted.ID {
		t.Fatalf("Next: got %s, want %s", task.ID, submitted.ID)
	}
	status, err := svc.GetStatus(ctx, task.ID)
	if err != nil {
		t.Fatalf("GetStatus: %v", err)
	}
	if status != domain.StatusAssigned {
		t.Fatalf("dispatched task status: got %v, want ASSIGNED", status)
	}
	agents, err := svc.Agents(ctx)
	if err != nil || len(agents) != 1 {
		t.Fatalf("Agents: (%d, %v)", len(agents), err)
	}
	if agents[0].CurrentTaskCount != 1 {
		t.Fatalf("agent task count: got %d, want 1", agents[0].CurrentTaskCount)
	}
	if agents[0].Status != domain.AgentBusy {
		t.Fatalf("agent at capacity must be BUSY, got %v", agents[0].Status)
	}
}

func TestNextOnEmptyQueue(t *testing.T) {
	ctx := context.Background()
	svc := newDispatch(t)
	task, ok, err := svc.Next(ctx, "agent-1")
	if err != nil {
		t.Fatalf("Next on empty queue: %v", err)
	}
	if ok || task != nil {
		t.Fatalf("Next on empty queue: got (%v, %v)", task, ok)
	}
}

func TestCompleteRecordsResultAndFreesAgent(t *testing.T) {
	ctx := context.Background()
	svc := newDispatch(t)

	if err := svc.RegisterAgent(ctx, &domain.AgentCapabilities{
		AgentID:            "agent-1",
		AgentType:          "researcher",
		MaxConcurrentTasks: 1,
	}); err != nil {
		t.Fatalf("RegisterAgent: %v", err)
	}
	submitted, err := svc.Submit(ctx, &domain.WorkerTask{Type: "analysis"})
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if _, _, err := svc.Next(ctx, "agent-1"); err != nil {
		t.Fatalf("Next: %v", err)
	}
	if err := svc.Start(ctx, submitted.ID); err != nil {
		t.Fatalf("Start: %v", err)
	}

	err = svc.Complete(ctx, &domain.WorkerTaskResult{
		TaskID:        submitted.ID,
		Success:       true,
		AgentID:       "agent-1",
		ExecutionTime: 100 * time.Millisecond,
	})
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}

	status, err := svc.GetStatus(ctx, submitted.ID)
	if err != nil {
		t.Fatalf("GetStatus: %v", err)
	}
	if status != domain.StatusCompleted {
		t.Fatalf("completed task status: got %v, want COMPLETED", status)
	}
	result, err := svc.GetResult(ctx, submitted.ID)
	if err != nil {
		t.Fatalf("GetResult: %v", err)
	}
	if result.CompletedAt.IsZero() {
		t.Fatal("Complete must stamp CompletedAt")
	}
	agents, err := svc.Agents(ctx)
	if err != nil || len(agents) != 1 {
		t.Fatalf("Agents: (%d, %v)", len(agents), err)
	}
	if agents[0].CurrentTaskCount != 0 {
		t.Fatalf("agent task count after completion: got %d, want 0", agents[0].CurrentTaskCount)
	}
	if agents[0].Status != domain.AgentAvailable {
		t.Fatalf("freed agent must be AVAILABLE, got %v", agents[0].Status)
	}
}

func TestCancelSetsStatus(t *testing.T) {
	ctx := context.Background()
	svc := newDispatch(t)
	submitted, err := svc.Submit(ctx, &domain.WorkerTask{Type: "analysis"})
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if err := svc.Cancel(ctx, submitted.ID); err != nil {
		t.Fatalf("Cancel: %v", err)
	}
	status, err := svc.GetStatus(ctx, submitted.ID)
	if err != nil {
		t.Fatalf("GetStatus: %v", err)
	}
	if status != domain.StatusCancelled {
		t.Fatalf("cancelled task status: got %v, want CANCELLED", status)
	}
}
