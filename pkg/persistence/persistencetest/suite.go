// Package persistencetest holds the behavioral contract every backend must
// satisfy. Backend packages call Run from their own tests so that the memory,
// postgres and redis implementations stay observably interchangeable.
package persistencetest

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/agentsched/agentq/pkg/domain"
	"github.com/agentsched/agentq/pkg/persistence"
)

// Factory returns a fresh, empty backend for one subtest. Cleanup is the
// caller's job, via t.Cleanup.
type Factory func(t *testing.T) persistence.Backend

// Run executes the full contract against the backend produced by factory.
func Run(t *testing.T, factory Factory) {
	t.Run("QueueOrdering", func(t *testing.T) { testQueueOrdering(t, factory(t)) })
	t.Run("QueueFIFOWithinPriority", func(t *testing.T) { testQueueFIFO(t, factory(t)) })
	t.Run("QueueEmpty", func(t *testing.T) { testQueueEmpty(t, factory(t)) })
	t.Run("QueueAffinity", func(t *testing.T) { testQueueAffinity(t, factory(t)) })
	t.Run("QueuePeek", func(t *testing.T) { testQueuePeek(t, factory(t)) })
	t.Run("QueueRejectsInvalid", func(t *testing.T) { testQueueRejectsInvalid(t, factory(t)) })
	t.Run("StoreSaveGet", func(t *testing.T) { testStoreSaveGet(t, factory(t)) })
	t.Run("StoreResultDrivesStatus", func(t *testing.T) { testStoreResultDrivesStatus(t, factory(t)) })
	t.Run("StoreResultOverwrite", func(t *testing.T) { testStoreResultOverwrite(t, factory(t)) })
	t.Run("StoreStatusUpdates", func(t *testing.T) { testStoreStatusUpdates(t, factory(t)) })
	t.Run("StoreUnknownIDs", func(t *testing.T) { testStoreUnknownIDs(t, factory(t)) })
	t.Run("RegistryLifecycle", func(t *testing.T) { testRegistryLifecycle(t, factory(t)) })
	t.Run("RegistryReRegister", func(t *testing.T) { testRegistryReRegister(t, factory(t)) })
	t.Run("RegistryTaskCount", func(t *testing.T) { testRegistryTaskCount(t, factory(t)) })
	t.Run("RegistryLookups", func(t *testing.T) { testRegistryLookups(t, factory(t)) })
	t.Run("RegistryHeartbeat", func(t *testing.T) { testRegistryHeartbeat(t, factory(t)) })
	t.Run("RegistryUnknownAgents", func(t *testing.T) { testRegistryUnknownAgents(t, factory(t)) })
	t.Run("ContextCancelled", func(t *testing.T) { testContextCancelled(t, factory(t)) })
}

func task(id string, priority int) *domain.WorkerTask {
	return &domain.WorkerTask{
		ID:        id,
		Type:      "analysis",
		Priority:  priority,
		CreatedAt: time.Now().UTC(),
	}
}

func caps(id, agentType string, tools, intents []string) *domain.AgentCapabilities {
	return &domain.AgentCapabilities{
		AgentID:            id,
		AgentType:          agentType,
		Tools:              tools,
		Intents:            intents,
		MaxConcurrentTasks: 4,
	}
}

func mustDequeue(t *testing.T, q persistence.TaskQueue, agentID string) *domain.WorkerTask {
	t.Helper()
	got, ok, err := q.Dequeue(context.Background(), agentID)
	if err != nil {
		t.Fatalf("Dequeue(%q): %v", agentID, err)
	}
	if !ok {
		t.Fatalf("Dequeue(%q): queue unexpectedly empty", agentID)
	}
	return got
}

func testQueueOrdering(t *testing.T, b persistence.Backend) {
	ctx := context.Background()
	q := b.TaskQueue()
	for _, tk := range []*domain.WorkerTask{task("low", 1), task("high", 9), task("mid", 5)} {
		if err := q.Enqueue(ctx, tk); err != nil {
			t.Fatalf("Enqueue(%s): %v", tk.ID, err)
		}
	}
	for _, want := range []string{"high", "mid", "low"} {
		if got := mustDequeue(t, q, ""); got.ID != want {
			t.Fatalf("dequeue order: got %s, want %s", got.ID, want)
		}
	}
}

func testQueueFIFO(t *testing.T, b persistence.Backend) {
	ctx := context.Background()
	q := b.TaskQueue()
	for _, id := range []string{"first", "second", "third"} {
		if err := q.Enqueue(ctx, task(id, 3)); err != nil {
			t.Fatalf("Enqueue(%s): %v", id, err)
		}
	}
	for _, want := range []string{"first", "second", "third"} {
		if got := mustDequeue(t, q, ""); got.ID != want {
			t.Fatalf("fifo order: got %s, want %s", got.ID, want)
		}
	}
}

func testQueueEmpty(t *testing.T, b persistence.Backend) {
	ctx := context.Background()
	q := b.TaskQueue()
	got, ok, err := q.Dequeue(ctx, "agent-1")
	if err != nil {
		t.Fatalf("Dequeue on empty queue: %v", err)
	}
	if ok || got != nil {
		t.Fatalf("Dequeue on empty queue: got (%v, %v), want (nil, false)", got, ok)
	}
	got, ok, err = q.Peek(ctx)
	if err != nil {
		t.Fatalf("Peek on empty queue: %v", err)
	}
	if ok || got != nil {
		t.Fatalf("Peek on empty queue: got (%v, %v), want (nil, false)", got, ok)
	}
	n, err := q.PendingCount(ctx)
	if err != nil {
		t.Fatalf("PendingCount: %v", err)
	}
	if n != 0 {
		t.Fatalf("PendingCount on empty queue: got %d", n)
	}
}

func testQueueAffinity(t *testing.T, b persistence.Backend) {
	ctx := context.Background()
	q := b.TaskQueue()

	gpu := task("gpu-job", 9)
	gpu.RequiredCapability = "gpu"
	pinned := task("pinned-job", 5)
	pinned.PreferredAgentID = "agent-1"
	plain := task("plain-job", 1)

	for _, tk := range []*domain.WorkerTask{gpu, pinned, plain} {
		if err := q.Enqueue(ctx, tk); err != nil {
			t.Fatalf("Enqueue(%s): %v", tk.ID, err)
		}
	}

	// agent-1 gets its pinned task even though gpu-job outranks it.
	if got := mustDequeue(t, q, "agent-1"); got.ID != "pinned-job" {
		t.Fatalf("preferred match: got %s, want pinned-job", got.ID)
	}
	// agent-2 has no pin; it gets the first task without a required
	// capability, skipping the higher-priority gpu-job.
	if got := mustDequeue(t, q, "agent-2"); got.ID != "plain-job" {
		t.Fatalf("capability-free match: got %s, want plain-job", got.ID)
	}
	// Only gpu-job remains; the global head is the fallback.
	if got := mustDequeue(t, q, "agent-2"); got.ID != "gpu-job" {
		t.Fatalf("head fallback: got %s, want gpu-job", got.ID)
	}
}

func testQueuePeek(t *testing.T, b persistence.Backend) {
	ctx := context.Background()
	q := b.TaskQueue()
	if err := q.Enqueue(ctx, task("only", 2)); err != nil {
		t.Fatalf("Enqueue: %v", err)
	}
	for i := 0; i < 2; i++ {
		got, ok, err := q.Peek(ctx)
		if err != nil || !ok {
			t.Fatalf("Peek: (%v, %v)", ok, err)
		}
		if got.ID != "only" {
			t.Fatalf("Peek: got %s, want only", got.ID)
		}
	}
	n, err := q.PendingCount(ctx)
	if err != nil {
		t.Fatalf("PendingCount: %v", err)
	}
	if n != 1 {
		t.Fatalf("Peek must not consume: count %d, want 1", n)
	}
}

func testQueueRejectsInvalid(t *testing.T, b persistence.Backend) {
	ctx := context.Background()
	q := b.TaskQueue()
	err := q.Enqueue(ctx, &domain.WorkerTask{Type: "analysis"})
	if !errors.Is(err, persistence.ErrInvalid) {
		t.Fatalf("Enqueue without id: got %v, want ErrInvalid", err)
	}
	n, err := q.PendingCount(ctx)
	if err != nil {
		t.Fatalf("PendingCount: %v", err)
	}
	if n != 0 {
		t.Fatalf("rejected enqueue must not mutate: count %d", n)
	}
}

func testStoreSaveGet(t *testing.T, b persistence.Backend) {
	ctx := context.Background()
	s := b.TaskStore()
	tk := task("t-1", 4)
	tk.Input = map[string]any{"query": "status report"}
	tk.Metadata = map[string]string{"origin": "scheduler"}
	tk.Timeout = 30 * time.Second
	if err := s.Save(ctx, tk); err != nil {
		t.Fatalf("Save: %v", err)
	}
	got, err := s.Get(ctx, "t-1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.ID != tk.ID || got.Type != tk.Type || got.Priority != tk.Priority || got.Timeout != tk.Timeout {
		t.Fatalf("Get: got %+v, want %+v", got, tk)
	}
	if got.Metadata["origin"] != "scheduler" {
		t.Fatalf("Get: metadata not preserved: %+v", got.Metadata)
	}
	status, err := s.GetStatus(ctx, "t-1")
	if err != nil {
		t.Fatalf("GetStatus: %v", err)
	}
	if status != domain.StatusPending {
		t.Fatalf("fresh task status: got %v, want PENDING", status)
	}

	// Re-saving overwrites the body and resets status to Pending.
	if err := s.UpdateStatus(ctx, "t-1", domain.StatusInProgress); err != nil {
		t.Fatalf("UpdateStatus: %v", err)
	}
	tk.Priority = 7
	if err := s.Save(ctx, tk); err != nil {
		t.Fatalf("re-Save: %v", err)
	}
	got, err = s.Get(ctx, "t-1")
	if err != nil {
		t.Fatalf("Get after re-save: %v", err)
	}
	if got.Priority != 7 {
		t.Fatalf("re-save must overwrite: priority %d, want 7", got.Priority)
	}
	status, err = s.GetStatus(ctx, "t-1")
	if err != nil {
		t.Fatalf("GetStatus after re-save: %v", err)
	}
	if status != domain.StatusPending {
		t.Fatalf("re-save must reset status: got %v, want PENDING", status)
	}
}

func testStoreResultDrivesStatus(t *testing.T, b persistence.Backend) {
	ctx := context.Background()
	s := b.TaskStore()
	if err := s.Save(ctx, task("t-ok", 1)); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if err := s.Save(ctx, task("t-bad", 1)); err != nil {
		t.Fatalf("Save: %v", err)
	}
	ok := &domain.WorkerTaskResult{
		TaskID:        "t-ok",
		Success:       true,
		Output:        map[string]any{"answer": "42"},
		AgentID:       "agent-1",
		ExecutionTime: 250 * time.Millisecond,
		CompletedAt:   time.Now().UTC(),
	}
	bad := &domain.WorkerTaskResult{
		TaskID:      "t-bad",
		Success:     false,
		Error:       "tool exploded",
		AgentID:     "agent-2",
		CompletedAt: time.Now().UTC(),
	}
	if err := s.SaveResult(ctx, ok); err != nil {
		t.Fatalf("SaveResult(ok): %v", err)
	}
	if err := s.SaveResult(ctx, bad); err != nil {
		t.Fatalf("SaveResult(bad): %v", err)
	}
	if status, _ := s.GetStatus(ctx, "t-ok"); status != domain.StatusCompleted {
		t.Fatalf("success result status: got %v, want COMPLETED", status)
	}
	if status, _ := s.GetStatus(ctx, "t-bad"); status != domain.StatusFailed {
		t.Fatalf("failure result status: got %v, want FAILED", status)
	}
	got, err := s.GetResult(ctx, "t-ok")
	if err != nil {
		t.Fatalf("GetResult: %v", err)
	}
	if !got.Success || got.AgentID != "agent-1" {
		t.Fatalf("GetResult: got %+v", got)
	}
	gotBad, err := s.GetResult(ctx, "t-bad")
	if err != nil {
		t.Fatalf("GetResult(bad): %v", err)
	}
	if gotBad.Success || gotBad.Error != "tool exploded" {
		t.Fatalf("GetResult(bad): got %+v", gotBad)
	}
}

func testStoreResultOverwrite(t *testing.T, b persistence.Backend) {
	ctx := context.Background()
	s := b.TaskStore()
	if err := s.Save(ctx, task("t-retry", 1)); err != nil {
		t.Fatalf("Save: %v", err)
	}
	first := &domain.WorkerTaskResult{TaskID: "t-retry", Success: true, CompletedAt: time.Now().UTC()}
	second := &domain.WorkerTaskResult{TaskID: "t-retry", Success: false, Error: "flaky on retry", CompletedAt: time.Now().UTC()}
	if err := s.SaveResult(ctx, first); err != nil {
		t.Fatalf("SaveResult(first): %v", err)
	}
	if err := s.SaveResult(ctx, second); err != nil {
		t.Fatalf("SaveResult(second): %v", err)
	}
	got, err := s.GetResult(ctx, "t-retry")
	if err != nil {
		t.Fatalf("GetResult: %v", err)
	}
	if got.Success || got.Error != "flaky on retry" {
		t.Fatalf("second result must win: got %+v", got)
	}
	if status, _ := s.GetStatus(ctx, "t-retry"); status != domain.StatusFailed {
		t.Fatalf("status after overwrite: got %v, want FAILED", status)
	}
}

func testStoreStatusUpdates(t *testing.T, b persistence.Backend) {
	ctx := context.Background()
	s := b.TaskStore()
	if err := s.Save(ctx, task("t-s", 1)); err != nil {
		t.Fatalf("Save: %v", err)
	}
	// The store accepts any transition, including backwards ones.
	for _, status := range []domain.TaskStatus{
		domain.StatusAssigned,
		domain.StatusInProgress,
		domain.StatusCancelled,
		domain.StatusPending,
	} {
		if err := s.UpdateStatus(ctx, "t-s", status); err != nil {
			t.Fatalf("UpdateStatus(%v): %v", status, err)
		}
		got, err := s.GetStatus(ctx, "t-s")
		if err != nil {
			t.Fatalf("GetStatus: %v", err)
		}
		if got != status {
			t.Fatalf("GetStatus: got %v, want %v", got, status)
		}
	}
}

func testStoreUnknownIDs(t *testing.T, b persistence.Backend) {
	ctx := context.Background()
	s := b.TaskStore()
	if _, err := s.Get(ctx, "ghost"); !errors.Is(err, persistence.ErrNotFound) {
		t.Fatalf("Get(ghost): got %v, want ErrNotFound", err)
	}
	if _, err := s.GetResult(ctx, "ghost"); !errors.Is(err, persistence.ErrNotFound) {
		t.Fatalf("GetResult(ghost): got %v, want ErrNotFound", err)
	}
	if _, err := s.GetStatus(ctx, "ghost"); !errors.Is(err, persistence.ErrNotFound) {
		t.Fatalf("GetStatus(ghost): got %v, want ErrNotFound", err)
	}
	// Status writes against unknown ids are silently dropped.
	if err := s.UpdateStatus(ctx, "ghost", domain.StatusCancelled); err != nil {
		t.Fatalf("UpdateStatus(ghost): %v", err)
	}
	if _, err := s.GetStatus(ctx, "ghost"); !errors.Is(err, persistence.ErrNotFound) {
		t.Fatalf("GetStatus(ghost) after update: got %v, want ErrNotFound", err)
	}
	// A result for an unknown task is stored; only the status write is skipped.
	orphan := &domain.WorkerTaskResult{TaskID: "ghost", Success: true, CompletedAt: time.Now().UTC()}
	if err := s.SaveResult(ctx, orphan); err != nil {
		t.Fatalf("SaveResult(ghost): %v", err)
	}
	if _, err := s.GetResult(ctx, "ghost"); err != nil {
		t.Fatalf("GetResult(ghost) after save: %v", err)
	}
}

func testRegistryLifecycle(t *testing.T, b persistence.Backend) {
	ctx := context.Background()
	r := b.AgentRegistry()
	if err := r.Register(ctx, caps("agent-1", "researcher", []string{"search"}, []string{"summarize"})); err != nil {
		t.Fatalf("Register: %v", err)
	}
	info, err := r.GetByID(ctx, "agent-1")
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if info.Status != domain.AgentAvailable {
		t.Fatalf("fresh agent status: got %v, want AVAILABLE", info.Status)
	}
	if info.CurrentTaskCount != 0 {
		t.Fatalf("fresh agent count: got %d", info.CurrentTaskCount)
	}
	if info.LastHeartbeat.IsZero() || info.CreatedAt.IsZero() {
		t.Fatalf("timestamps not stamped: %+v", info)
	}
	if err := r.UpdateStatus(ctx, "agent-1", domain.AgentBusy); err != nil {
		t.Fatalf("UpdateStatus: %v", err)
	}
	info, err = r.GetByID(ctx, "agent-1")
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if info.Status != domain.AgentBusy {
		t.Fatalf("status after update: got %v, want BUSY", info.Status)
	}
	if err := r.Unregister(ctx, "agent-1"); err != nil {
		t.Fatalf("Unregister: %v", err)
	}
	if _, err := r.GetByID(ctx, "agent-1"); !errors.Is(err, persistence.ErrNotFound) {
		t.Fatalf("GetByID after unregister: got %v, want ErrNotFound", err)
	}
}

func testRegistryReRegister(t *testing.T, b persistence.Backend) {
	ctx := context.Background()
	r := b.AgentRegistry()
	if err := r.Register(ctx, caps("agent-1", "researcher", []string{"search"}, nil)); err != nil {
		t.Fatalf("Register: %v", err)
	}
	first, err := r.GetByID(ctx, "agent-1")
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if err := r.UpdateStatus(ctx, "agent-1", domain.AgentBusy); err != nil {
		t.Fatalf("UpdateStatus: %v", err)
	}
	if err := r.UpdateTaskCount(ctx, "agent-1", 3); err != nil {
		t.Fatalf("UpdateTaskCount: %v", err)
	}
	if err := r.Register(ctx, caps("agent-1", "coder", []string{"edit"}, nil)); err != nil {
		t.Fatalf("re-Register: %v", err)
	}
	second, err := r.GetByID(ctx, "agent-1")
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if second.AgentType != "coder" || !second.Capabilities.Supports("edit") {
		t.Fatalf("re-register must replace capabilities: %+v", second)
	}
	if second.Status != domain.AgentAvailable || second.CurrentTaskCount != 0 {
		t.Fatalf("re-register must reset state: %+v", second)
	}
	if !second.CreatedAt.Equal(first.CreatedAt) {
		t.Fatalf("re-register must keep CreatedAt: %v != %v", second.CreatedAt, first.CreatedAt)
	}
}

func testRegistryTaskCount(t *testing.T, b persistence.Backend) {
	ctx := context.Background()
	r := b.AgentRegistry()
	if err := r.Register(ctx, caps("agent-1", "researcher", nil, nil)); err != nil {
		t.Fatalf("Register: %v", err)
	}
	if err := r.UpdateTaskCount(ctx, "agent-1", 2); err != nil {
		t.Fatalf("UpdateTaskCount: %v", err)
	}
	info, err := r.GetByID(ctx, "agent-1")
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if info.CurrentTaskCount != 2 {
		t.Fatalf("task count: got %d, want 2", info.CurrentTaskCount)
	}
	if err := r.UpdateTaskCount(ctx, "agent-1", -1); !errors.Is(err, persistence.ErrInvalid) {
		t.Fatalf("negative count: got %v, want ErrInvalid", err)
	}
	info, err = r.GetByID(ctx, "agent-1")
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if info.CurrentTaskCount != 2 {
		t.Fatalf("rejected write must not mutate: got %d, want 2", info.CurrentTaskCount)
	}
}

func testRegistryLookups(t *testing.T, b persistence.Backend) {
	ctx := context.Background()
	r := b.AgentRegistry()
	if err := r.Register(ctx, caps("a-tools", "researcher", []string{"search", "fetch"}, nil)); err != nil {
		t.Fatalf("Register: %v", err)
	}
	if err := r.Register(ctx, caps("a-intents", "researcher", nil, []string{"search"})); err != nil {
		t.Fatalf("Register: %v", err)
	}
	if err := r.Register(ctx, caps("a-other", "coder", []string{"edit"}, nil)); err != nil {
		t.Fatalf("Register: %v", err)
	}

	found, err := r.FindByCapability(ctx, "search")
	if err != nil {
		t.Fatalf("FindByCapability: %v", err)
	}
	ids := map[string]bool{}
	for _, info := range found {
		ids[info.AgentID] = true
	}
	if len(found) != 2 || !ids["a-tools"] || !ids["a-intents"] {
		t.Fatalf("FindByCapability(search): got %v", ids)
	}

	// Matching is exact, not substring.
	found, err = r.FindByCapability(ctx, "sear")
	if err != nil {
		t.Fatalf("FindByCapability: %v", err)
	}
	if len(found) != 0 {
		t.Fatalf("FindByCapability(sear): got %d agents, want 0", len(found))
	}

	byType, err := r.FindByType(ctx, "researcher")
	if err != nil {
		t.Fatalf("FindByType: %v", err)
	}
	if len(byType) != 2 {
		t.Fatalf("FindByType(researcher): got %d agents, want 2", len(byType))
	}

	all, err := r.GetAll(ctx)
	if err != nil {
		t.Fatalf("GetAll: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("GetAll: got %d agents, want 3", len(all))
	}
}

func testRegistryHeartbeat(t *testing.T, b persistence.Backend) {
	ctx := context.Background()
	r := b.AgentRegistry()
	if err := r.Register(ctx, caps("agent-1", "researcher", nil, nil)); err != nil {
		t.Fatalf("Register: %v", err)
	}
	before, err := r.GetByID(ctx, "agent-1")
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	time.Sleep(10 * time.Millisecond)
	if err := r.RecordHeartbeat(ctx, "agent-1"); err != nil {
		t.Fatalf("RecordHeartbeat: %v", err)
	}
	after, err := r.GetByID(ctx, "agent-1")
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if !after.LastHeartbeat.After(before.LastHeartbeat) {
		t.Fatalf("heartbeat did not advance: %v -> %v", before.LastHeartbeat, after.LastHeartbeat)
	}
}

func testRegistryUnknownAgents(t *testing.T, b persistence.Backend) {
	ctx := context.Background()
	r := b.AgentRegistry()
	if err := r.Unregister(ctx, "ghost"); err != nil {
		t.Fatalf("Unregister(ghost): %v", err)
	}
	if err := r.UpdateStatus(ctx, "ghost", domain.AgentBusy); err != nil {
		t.Fatalf("UpdateStatus(ghost): %v", err)
	}
	if err := r.UpdateTaskCount(ctx, "ghost", 1); err != nil {
		t.Fatalf("UpdateTaskCount(ghost): %v", err)
	}
	if err := r.RecordHeartbeat(ctx, "ghost"); err != nil {
		t.Fatalf("RecordHeartbeat(ghost): %v", err)
	}
	if _, err := r.GetByID(ctx, "ghost"); !errors.Is(err, persistence.ErrNotFound) {
		t.Fatalf("GetByID(ghost): got %v, want ErrNotFound", err)
	}
}

func testContextCancelled(t *testing.T, b persistence.Backend) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := b.TaskQueue().Enqueue(ctx, task("t", 1)); !errors.Is(err, context.Canceled) {
		t.Fatalf("Enqueue with cancelled ctx: got %v", err)
	}
	if _, _, err := b.TaskQueue().Dequeue(ctx, ""); !errors.Is(err, context.Canceled) {
		t.Fatalf("Dequeue with cancelled ctx: got %v", err)
	}
	if err := b.TaskStore().Save(ctx, task("t", 1)); !errors.Is(err, context.Canceled) {
		t.Fatalf("Save with cancelled ctx: got %v", err)
	}
	if err := b.AgentRegistry().Register(ctx, caps("a", "x", nil, nil)); !errors.Is(err, context.Canceled) {
		t.Fatalf("Register with cancelled ctx: got %v", err)
	}
}
