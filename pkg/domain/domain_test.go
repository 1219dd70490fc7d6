package domain

import (
	"testing"
	"time"
)

func TestWorkerTaskValidate(t *testing.T) {
	valid := &WorkerTask{ID: "t-1", Type: "analysis"}
	if err := valid.Validate(); err != nil {
		t.Fatalf("valid task rejected: %v", err)
	}
	cases := []struct {
		name string
		task *WorkerTask
	}{
		{"nil task", nil},
		{"missing id", &WorkerTask{Type: "analysis"}},
		{"blank id", &WorkerTask{ID: "   ", Type: "analysis"}},
		{"missing type", &WorkerTask{ID: "t-1"}},
		{"negative timeout", &WorkerTask{ID: "t-1", Type: "analysis", Timeout: -time.Second}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if err := tc.task.Validate(); err == nil {
				t.Fatal("expected validation error")
			}
		})
	}
}

func TestWorkerTaskClone(t *testing.T) {
	orig := &WorkerTask{
		ID:       "t-1",
		Type:     "analysis",
		Input:    map[string]any{"query": "weather"},
		Metadata: map[string]string{"origin": "cli"},
	}
	cp := orig.Clone()
	cp.Input["query"] = "changed"
	cp.Metadata["origin"] = "changed"
	if orig.Input["query"] != "weather" || orig.Metadata["origin"] != "cli" {
		t.Fatalf("clone aliases original maps: %+v", orig)
	}
	var nilTask *WorkerTask
	if nilTask.Clone() != nil {
		t.Fatal("clone of nil task must be nil")
	}
}

func TestTaskStatusTerminal(t *testing.T) {
	terminal := map[TaskStatus]bool{
		StatusPending:    false,
		StatusAssigned:   false,
		StatusInProgress: false,
		StatusCompleted:  true,
		StatusFailed:     true,
		StatusCancelled:  true,
	}
	for status, want := range terminal {
		if got := status.Terminal(); got != want {
			t.Errorf("%v.Terminal() = %v, want %v", status, got, want)
		}
	}
}

func TestResultStatus(t *testing.T) {
	ok := &WorkerTaskResult{TaskID: "t", Success: true}
	if ok.Status() != StatusCompleted {
		t.Fatalf("success result: got %v", ok.Status())
	}
	bad := &WorkerTaskResult{TaskID: "t", Success: false}
	if bad.Status() != StatusFailed {
		t.Fatalf("failed result: got %v", bad.Status())
	}
}

func TestResultValidate(t *testing.T) {
	if err := (&WorkerTaskResult{TaskID: "t"}).Validate(); err != nil {
		t.Fatalf("valid result rejected: %v", err)
	}
	if err := (&WorkerTaskResult{}).Validate(); err == nil {
		t.Fatal("missing task id accepted")
	}
	if err := (&WorkerTaskResult{TaskID: "t", ExecutionTime: -1}).Validate(); err == nil {
		t.Fatal("negative execution time accepted")
	}
}

func TestCapabilitiesSupports(t *testing.T) {
	c := &AgentCapabilities{
		AgentID: "a-1",
		Tools:   []string{"search", "fetch"},
		Intents: []string{"summarize"},
	}
	for _, name := range []string{"search", "fetch", "summarize"} {
		if !c.Supports(name) {
			t.Errorf("Supports(%q) = false", name)
		}
	}
	for _, name := range []string{"sear", "Search", "", "edit"} {
		if c.Supports(name) {
			t.Errorf("Supports(%q) = true", name)
		}
	}
}

func TestCapabilitiesValidate(t *testing.T) {
	if err := (&AgentCapabilities{AgentID: "a-1"}).Validate(); err != nil {
		t.Fatalf("valid capabilities rejected: %v", err)
	}
	if err := (&AgentCapabilities{}).Validate(); err == nil {
		t.Fatal("missing agent id accepted")
	}
	if err := (&AgentCapabilities{AgentID: "a", MaxConcurrentTasks: -1}).Validate(); err == nil {
		t.Fatal("negative concurrency accepted")
	}
}

func TestStatusStrings(t *testing.T) {
	if got := StatusInProgress.String(); got != "IN_PROGRESS" {
		t.Fatalf("StatusInProgress: %q", got)
	}
	if got := TaskStatus(99).String(); got != "UNKNOWN(99)" {
		t.Fatalf("unknown task status: %q", got)
	}
	if got := AgentOffline.String(); got != "OFFLINE" {
		t.Fatalf("AgentOffline: %q", got)
	}
}
