package metrics

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/agentsched/agentq/pkg/domain"
	"github.com/agentsched/agentq/pkg/persistence"
	"github.com/agentsched/agentq/pkg/persistence/memory"
)

func TestBackendCollector(t *testing.T) {
	ctx := context.Background()
	backend, err := memory.NewBackend(persistence.BackendConfig{})
	if err != nil {
		t.Fatalf("NewBackend: %v", err)
	}
	q := backend.TaskQueue()
	for _, id := range []string{"t-1", "t-2"} {
		task := &domain.WorkerTask{ID: id, Type: "analysis", CreatedAt: time.Now().UTC()}
		if err := q.Enqueue(ctx, task); err != nil {
			t.Fatalf("Enqueue: %v", err)
		}
	}
	reg := backend.AgentRegistry()
	if err := reg.Register(ctx, &domain.AgentCapabilities{AgentID: "a-1", AgentType: "researcher"}); err != nil {
		t.Fatalf("Register: %v", err)
	}
	if err := reg.UpdateTaskCount(ctx, "a-1", 3); err != nil {
		t.Fatalf("UpdateTaskCount: %v", err)
	}

	c := newBackendCollector(backend, nil)
	expected := `
# HELP agentq_queue_depth Current number of pending tasks in the queue.
# TYPE agentq_queue_depth gauge
agentq_queue_depth 2
# HELP agentq_agents Current number of registered agents by status.
# TYPE agentq_agents gauge
agentq_agents{status="AVAILABLE"} 1
# HELP agentq_agent_tasks_in_flight Sum of current task counts across registered agents.
# TYPE agentq_agent_tasks_in_flight gauge
agentq_agent_tasks_in_flight 3
`
	if err := testutil.CollectAndCompare(c, strings.NewReader(expected)); err != nil {
		t.Fatalf("collector output mismatch: %v", err)
	}
}
