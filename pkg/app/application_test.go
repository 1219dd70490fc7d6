package app

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/agentsched/agentq/pkg/config"
	"github.com/agentsched/agentq/pkg/domain"
)

func TestNewApplicationMemoryBackend(t *testing.T) {
	cfg, err := config.LoadConfig("")
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	application, err := NewApplication(cfg)
	if err != nil {
		t.Fatalf("NewApplication: %v", err)
	}
	t.Cleanup(func() { application.Close() })

	ctx := context.Background()
	task, err := application.Dispatch.Submit(ctx, &domain.WorkerTask{Type: "analysis"})
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	got, ok, err := application.Dispatch.Next(ctx, "")
	if err != nil || !ok {
		t.Fatalf("Next: (%v, %v)", ok, err)
	}
	if got.ID != task.ID {
		t.Fatalf("Next: got %s, want %s", got.ID, task.ID)
	}
}

func TestNewApplicationRejectsInvalidConfig(t *testing.T) {
	cfg, err := config.LoadConfig("")
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	cfg.Backend = "cassandra"
	if _, err := NewApplication(cfg); err == nil {
		t.Fatal("Expected error for unknown backend")
	}
}

func TestProviderConfigMapping(t *testing.T) {
	cfg, err := config.LoadConfig("")
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	cfg.Backend = "redis"
	cfg.RedisAddr = "redis.internal:6379"
	pc, err := ProviderConfig(cfg)
	if err != nil {
		t.Fatalf("ProviderConfig: %v", err)
	}
	if pc.Type != "redis" {
		t.Fatalf("Type: got %q", pc.Type)
	}
	var raw map[string]any
	if err := json.Unmarshal(pc.Config, &raw); err != nil {
		t.Fatalf("unmarshal provider config: %v", err)
	}
	if raw["addr"] != "redis.internal:6379" {
		t.Fatalf("addr: got %v", raw["addr"])
	}
}
