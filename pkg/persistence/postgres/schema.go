package postgres

// schemaStatements are applied in order on first use. Indexes cover status
// and type filters, heartbeat sweeps, and array-containment capability
// lookups.
var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS task_store (
    task_id TEXT PRIMARY KEY,
    task_type TEXT NOT NULL,
    input_data JSONB,
    required_capability TEXT,
    preferred_agent_id TEXT,
    priority INT NOT NULL DEFAULT 0,
    timeout_ms BIGINT,
    metadata JSONB,
    status INT NOT NULL DEFAULT 0,
    created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
    updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);`,
	`CREATE INDEX IF NOT EXISTS idx_task_store_status ON task_store (status);`,
	`CREATE INDEX IF NOT EXISTS idx_task_store_type ON task_store (task_type);`,

	`CREATE TABLE IF NOT EXISTS task_results (
    task_id TEXT PRIMARY KEY,
    success BOOLEAN NOT NULL,
    output_data JSONB,
    error_message TEXT,
    worker_agent_id TEXT NOT NULL DEFAULT '',
    execution_time_ms BIGINT NOT NULL DEFAULT 0,
    metadata JSONB,
    completed_at TIMESTAMPTZ NOT NULL DEFAULT now()
);`,

	`CREATE TABLE IF NOT EXISTS agent_registry (
    agent_id TEXT PRIMARY KEY,
    agent_type TEXT NOT NULL DEFAULT '',
    status INT NOT NULL DEFAULT 0,
    supported_tools TEXT[] NOT NULL DEFAULT '{}',
    supported_intents TEXT[] NOT NULL DEFAULT '{}',
    max_concurrent_tasks INT NOT NULL DEFAULT 0,
    metadata JSONB,
    last_heartbeat TIMESTAMPTZ NOT NULL DEFAULT now(),
    current_task_count INT NOT NULL DEFAULT 0,
    created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
    updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);`,
	`CREATE INDEX IF NOT EXISTS idx_agent_registry_type ON agent_registry (agent_type);`,
	`CREATE INDEX IF NOT EXISTS idx_agent_registry_status ON agent_registry (status);`,
	`CREATE INDEX IF NOT EXISTS idx_agent_registry_heartbeat ON agent_registry (last_heartbeat);`,
	`CREATE INDEX IF NOT EXISTS idx_agent_registry_tools ON agent_registry USING GIN (supported_tools);`,
	`CREATE INDEX IF NOT EXISTS idx_agent_registry_intents ON agent_registry USING GIN (supported_intents);`,

	`CREATE TABLE IF NOT EXISTS task_queue (
    task_id TEXT PRIMARY KEY,
    task_data JSONB NOT NULL,
    priority INT NOT NULL DEFAULT 0,
    required_capability TEXT,
    preferred_agent_id TEXT,
    seq BIGSERIAL
);`,
	`CREATE INDEX IF NOT EXISTS idx_task_queue_order ON task_queue (priority DESC, seq ASC);`,
	`CREATE INDEX IF NOT EXISTS idx_task_queue_preferred ON task_queue (preferred_agent_id) WHERE preferred_agent_id IS NOT NULL;`,
}
