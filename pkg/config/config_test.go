package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := LoadConfig("")
	if err != nil {
		t.Fatalf("LoadConfig with empty path should not error: %v", err)
	}
	if cfg.Backend != "memory" {
		t.Errorf("Expected default backend 'memory', got %q", cfg.Backend)
	}
	if cfg.MetricsPort != 9090 {
		t.Errorf("Expected default MetricsPort=9090, got %d", cfg.MetricsPort)
	}
	if cfg.LogLevel != "info" || cfg.LogFormat != "json" {
		t.Errorf("Expected default logging info/json, got %s/%s", cfg.LogLevel, cfg.LogFormat)
	}
	if cfg.DequeueInspectLimit != 128 {
		t.Errorf("Expected default DequeueInspectLimit=128, got %d", cfg.DequeueInspectLimit)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Default config should validate: %v", err)
	}
}

func TestLoadConfig_ValidFile(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "valid.yaml")
	validYAML := `
backend: "redis"
redisAddr: "redis.internal:6379"
redisPassword: "secret"
metricsPort: 9191
logLevel: "debug"
logFormat: "text"
env: "test"
dequeueInspectLimit: 64
`
	if err := os.WriteFile(configPath, []byte(validYAML), 0644); err != nil {
		t.Fatalf("Failed to write test file: %v", err)
	}

	cfg, err := LoadConfig(configPath)
	if err != nil {
		t.Fatalf("LoadConfig with valid file should not error: %v", err)
	}
	if cfg.Backend != "redis" {
		t.Errorf("Expected Backend='redis', got %q", cfg.Backend)
	}
	if cfg.RedisAddr != "redis.internal:6379" {
		t.Errorf("Expected RedisAddr='redis.internal:6379', got %q", cfg.RedisAddr)
	}
	if cfg.RedisPassword != "secret" {
		t.Errorf("Expected RedisPassword='secret', got %q", cfg.RedisPassword)
	}
	if cfg.MetricsPort != 9191 {
		t.Errorf("Expected MetricsPort=9191, got %d", cfg.MetricsPort)
	}
	if cfg.DequeueInspectLimit != 64 {
		t.Errorf("Expected DequeueInspectLimit=64, got %d", cfg.DequeueInspectLimit)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Valid config should validate: %v", err)
	}
}

func TestLoadConfig_InvalidYAML(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "invalid.yaml")
	invalidYAML := `
backend: "memory"
  invalid indentation here
  more bad yaml
`
	if err := os.WriteFile(configPath, []byte(invalidYAML), 0644); err != nil {
		t.Fatalf("Failed to write test file: %v", err)
	}
	if _, err := LoadConfig(configPath); err == nil {
		t.Fatal("Expected error when loading invalid YAML, got nil")
	}
}

func TestLoadConfig_EnvOverrides(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.yaml")
	configYAML := `
backend: "memory"
redisAddr: "localhost:6379"
logLevel: "info"
`
	if err := os.WriteFile(configPath, []byte(configYAML), 0644); err != nil {
		t.Fatalf("Failed to write test file: %v", err)
	}

	t.Setenv("AGENTQ_BACKEND", "postgres")
	t.Setenv("POSTGRES_DSN", "postgres://env-host:5432/agentq")
	t.Setenv("REDIS_ADDR", "env-redis:6380")
	t.Setenv("METRICS_PORT", "7070")
	t.Setenv("LOG_LEVEL", "warn")

	cfg, err := LoadConfig(configPath)
	if err != nil {
		t.Fatalf("LoadConfig should not error: %v", err)
	}
	if cfg.Backend != "postgres" {
		t.Errorf("Expected Backend='postgres' from env, got %q", cfg.Backend)
	}
	if cfg.PostgresDSN != "postgres://env-host:5432/agentq" {
		t.Errorf("Expected PostgresDSN from env, got %q", cfg.PostgresDSN)
	}
	if cfg.RedisAddr != "env-redis:6380" {
		t.Errorf("Expected RedisAddr='env-redis:6380' from env, got %q", cfg.RedisAddr)
	}
	if cfg.MetricsPort != 7070 {
		t.Errorf("Expected MetricsPort=7070 from env, got %d", cfg.MetricsPort)
	}
	if cfg.LogLevel != "warn" {
		t.Errorf("Expected LogLevel='warn' from env, got %q", cfg.LogLevel)
	}
}

func TestLoadConfigOptional_FileNotExist(t *testing.T) {
	nonExistentPath := filepath.Join(t.TempDir(), "config-does-not-exist.yaml")
	cfg, err := LoadConfigOptional(nonExistentPath)
	if err != nil {
		t.Fatalf("LoadConfigOptional with non-existent file should not error: %v", err)
	}
	if cfg == nil {
		t.Fatal("Expected non-nil config")
	}
}

func TestLoadConfigOptional_WhitespacePath(t *testing.T) {
	cfg, err := LoadConfigOptional("   ")
	if err != nil {
		t.Fatalf("LoadConfigOptional with whitespace path should not error: %v", err)
	}
	if cfg == nil {
		t.Fatal("Expected non-nil config")
	}
}

func TestValidate_Rejections(t *testing.T) {
	cases := []struct {
		name string
		mut  func(*Config)
	}{
		{"unknown backend", func(c *Config) { c.Backend = "cassandra" }},
		{"postgres without dsn", func(c *Config) { c.Backend = "postgres"; c.PostgresDSN = "" }},
		{"unknown log format", func(c *Config) { c.LogFormat = "xml" }},
		{"unknown log level", func(c *Config) { c.LogLevel = "loud" }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg, err := LoadConfig("")
			if err != nil {
				t.Fatalf("LoadConfig: %v", err)
			}
			tc.mut(cfg)
			if err := cfg.Validate(); err == nil {
				t.Fatal("Expected validation error, got nil")
			}
		})
	}
}
