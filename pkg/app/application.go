package app

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/agentsched/agentq/internal/metrics"
	"github.com/agentsched/agentq/internal/services"
	"github.com/agentsched/agentq/pkg/config"
	"github.com/agentsched/agentq/pkg/persistence"
	"github.com/agentsched/agentq/pkg/persistence/postgres"
	"github.com/agentsched/agentq/pkg/persistence/redis"

	_ "github.com/agentsched/agentq/pkg/persistence/memory"
)

type Application struct {
	Config   *config.Config
	Backend  persistence.Backend
	Dispatch services.DispatchService
	Logger   *slog.Logger
}

func NewApplication(cfg *config.Config) (*Application, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	level := new(slog.LevelVar)
	switch cfg.LogLevel {
	case "debug":
		level.Set(slog.LevelDebug)
	case "warn":
		level.Set(slog.LevelWarn)
	case "error":
		level.Set(slog.LevelError)
	default:
		level.Set(slog.LevelInfo)
	}
	var handler slog.Handler = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level})
	if cfg.LogFormat == "text" {
		handler = slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level})
	}
	logger := slog.New(handler).With("service", "agentq", "env", cfg.Env)
	slog.SetDefault(logger)

	providerConfig, err := ProviderConfig(cfg)
	if err != nil {
		return nil, err
	}
	backend, err := persistence.NewBackend(providerConfig, persistence.BackendConfig{
		DequeueInspectLimit: cfg.DequeueInspectLimit,
	})
	if err != nil {
		return nil, fmt.Errorf("init %s backend: %w", cfg.Backend, err)
	}

	metrics.RegisterBackendCollector(backend, logger)

	dispatch := services.NewDispatchService(backend, logger, time.Now)

	return &Application{
		Config:   cfg,
		Backend:  backend,
		Dispatch: dispatch,
		Logger:   logger,
	}, nil
}

// ProviderConfig maps the flat yaml config onto the provider-specific
// configuration the backend registry expects.
func ProviderConfig(cfg *config.Config) (persistence.ProviderConfig, error) {
	var (
		raw []byte
		err error
	)
	switch cfg.Backend {
	case "postgres":
		raw, err = json.Marshal(postgres.Config{DSN: cfg.PostgresDSN})
	case "redis":
		raw, err = json.Marshal(redis.Config{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
	}
	if err != nil {
		return persistence.ProviderConfig{}, err
	}
	return persistence.ProviderConfig{Type: cfg.Backend, Config: raw}, nil
}

func (a *Application) Close() error {
	return a.Backend.Close()
}
