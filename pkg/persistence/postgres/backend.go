package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/agentsched/agentq/pkg/persistence"
)

// Config holds Postgres-specific configuration.
type Config struct {
	DSN string `json:"dsn"`
}

// Backend persists tasks, results and agents as rows. Each operation opens no
// long-lived transaction: one statement (or one small fixed transaction for
// SaveResult) per call, with atomicity delegated to the database.
type Backend struct {
	pool *pgxpool.Pool

	ensureOnce sync.Once
	ensureErr  error
}

func NewBackend(config persistence.BackendConfig) (persistence.Backend, error) {
	var cfg Config
	if err := json.Unmarshal(config.Config, &cfg); err != nil {
		return nil, fmt.Errorf("postgres config: %w", err)
	}
	if cfg.DSN == "" {
		return nil, fmt.Errorf("postgres config: dsn is required")
	}
	pool, err := pgxpool.New(context.Background(), cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("postgres pool: %w", err)
	}
	return &Backend{pool: pool}, nil
}

func (b *Backend) TaskQueue() persistence.TaskQueue { return &taskQueue{b: b} }

func (b *Backend) TaskStore() persistence.TaskStore { return &taskStore{b: b} }

func (b *Backend) AgentRegistry() persistence.AgentRegistry { return &agentRegistry{b: b} }

func (b *Backend) Health(ctx context.Context) error {
	return b.pool.Ping(ctx)
}

func (b *Backend) Close() error {
	b.pool.Close()
	return nil
}

// ensure creates tables and indexes idempotently the first time any
// operation runs. Every statement is create-if-not-exists, so concurrent
// instances racing on a fresh database converge on the same schema.
func (b *Backend) ensure(ctx context.Context) error {
	b.ensureOnce.Do(func() {
		for _, stmt := range schemaStatements {
			if _, err := b.pool.Exec(ctx, stmt); err != nil {
				b.ensureErr = fmt.Errorf("ensure schema: %w", err)
				return
			}
		}
	})
	return b.ensureErr
}

func init() {
	persistence.RegisterProvider("postgres", NewBackend)
}
