package redis

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/go-redis/redis/v8"

	"github.com/agentsched/agentq/pkg/persistence"
)

// Config holds Redis-specific configuration.
type Config struct {
	Addr     string `json:"addr"`
	Password string `json:"password,omitempty"`
	DB       int    `json:"db,omitempty"`
}

const (
	keyTasks      = "agentq:tasks"       // HASH: field=id, value=stored task JSON
	keyResults    = "agentq:results"     // HASH: field=id, value=result JSON
	keyAgents     = "agentq:agents"      // HASH: field=id, value=agent info JSON
	keyQueue      = "agentq:queue"       // ZSET: rank-encoded members, all at score 0
	keyQueueItems = "agentq:queue:items" // HASH: field=id, value=task JSON
	keyQueueSeq   = "agentq:queue:seq"   // INCR counter for arrival order
)

const defaultInspectLimit = 128

// Backend keeps the same logical entities as the other implementations in
// Redis hashes, with the queue in a single sorted set. Suitable for
// multi-instance deployments that already run Redis but do not want a
// relational store.
type Backend struct {
	client       *redis.Client
	inspectLimit int
}

func NewBackend(config persistence.BackendConfig) (persistence.Backend, error) {
	var cfg Config
	if err := json.Unmarshal(config.Config, &cfg); err != nil {
		return nil, fmt.Errorf("redis config: %w", err)
	}
	if cfg.Addr == "" {
		return nil, fmt.Errorf("redis config: addr is required")
	}
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	limit := config.DequeueInspectLimit
	if limit <= 0 {
		limit = defaultInspectLimit
	}
	return &Backend{client: client, inspectLimit: limit}, nil
}

// NewBackendWithClient wires an existing client; tests use it with miniredis.
func NewBackendWithClient(client *redis.Client) *Backend {
	return &Backend{client: client, inspectLimit: defaultInspectLimit}
}

func (b *Backend) TaskQueue() persistence.TaskQueue { return &taskQueue{b: b} }

func (b *Backend) TaskStore() persistence.TaskStore { return &taskStore{b: b} }

func (b *Backend) AgentRegistry() persistence.AgentRegistry { return &agentRegistry{b: b} }

func (b *Backend) Health(ctx context.Context) error {
	return b.client.Ping(ctx).Err()
}

func (b *Backend) Close() error {
	return b.client.Close()
}

func init() {
	persistence.RegisterProvider("redis", NewBackend)
}
