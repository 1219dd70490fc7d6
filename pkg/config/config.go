package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

type Config struct {
	MetricsPort         int    `yaml:"metricsPort"`
	Backend             string `yaml:"backend"`
	PostgresDSN         string `yaml:"postgresDsn"`
	RedisAddr           string `yaml:"redisAddr"`
	RedisPassword       string `yaml:"redisPassword"`
	RedisDB             int    `yaml:"redisDb"`
	LogLevel            string `yaml:"logLevel"`
	LogFormat           string `yaml:"logFormat"`
	Env                 string `yaml:"env"`
	DequeueInspectLimit int    `yaml:"dequeueInspectLimit"`
	TracingEnabled      bool   `yaml:"tracingEnabled"`
	OTLPEndpoint        string `yaml:"otlpEndpoint"`
	ServiceName         string `yaml:"serviceName"`
}

// LoadConfig reads the yaml file, applies environment overrides, then fills
// defaults. Environment variables win over the file; an empty path skips the
// file entirely.
func LoadConfig(filePath string) (*Config, error) {
	var c Config
	if filePath != "" {
		data, err := os.ReadFile(filePath)
		if err != nil {
			return nil, err
		}
		if err := yaml.Unmarshal(data, &c); err != nil {
			return nil, err
		}
	}
	if v := os.Getenv("METRICS_PORT"); v != "" {
		if p, err := strconv.Atoi(v); err == nil {
			c.MetricsPort = p
		}
	}
	if v := os.Getenv("AGENTQ_BACKEND"); v != "" {
		c.Backend = v
	}
	if v := os.Getenv("POSTGRES_DSN"); v != "" {
		c.PostgresDSN = v
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		c.RedisAddr = v
	}
	if v := os.Getenv("REDIS_PASSWORD"); v != "" {
		c.RedisPassword = v
	}
	if v := os.Getenv("REDIS_DB"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.RedisDB = n
		}
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		c.LogLevel = v
	}
	if v := os.Getenv("LOG_FORMAT"); v != "" {
		c.LogFormat = v
	}
	if v := os.Getenv("ENV"); v != "" {
		c.Env = v
	}
	if v := os.Getenv("DEQUEUE_INSPECT_LIMIT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.DequeueInspectLimit = n
		}
	}
	if v := os.Getenv("TRACING_ENABLED"); v != "" {
		c.TracingEnabled = v == "true" || v == "1"
	}
	if v := os.Getenv("OTLP_ENDPOINT"); v != "" {
		c.OTLPEndpoint = v
	}
	if v := os.Getenv("SERVICE_NAME"); v != "" {
		c.ServiceName = v
	}

	if c.MetricsPort == 0 {
		c.MetricsPort = 9090
	}
	if c.Backend == "" {
		c.Backend = "memory"
	}
	if c.RedisAddr == "" {
		c.RedisAddr = "localhost:6379"
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if c.LogFormat == "" {
		c.LogFormat = "json"
	}
	if c.Env == "" {
		c.Env = "dev"
	}
	if c.DequeueInspectLimit <= 0 {
		c.DequeueInspectLimit = 128
	}
	if c.OTLPEndpoint == "" {
		c.OTLPEndpoint = "localhost:4317"
	}
	if c.ServiceName == "" {
		c.ServiceName = "agentq"
	}

	log.Printf("Scheduler Config: {Backend:%s MetricsPort:%d LogLevel:%s Env:%s Inspect:%d}\n",
		c.Backend, c.MetricsPort, c.LogLevel, c.Env, c.DequeueInspectLimit)
	return &c, nil
}

// LoadConfigOptional behaves like LoadConfig but tolerates a blank path or a
// missing file, falling back to environment and defaults. Malformed yaml is
// still an error.
func LoadConfigOptional(filePath string) (*Config, error) {
	path := strings.TrimSpace(filePath)
	if path != "" {
		if _, err := os.Stat(path); err != nil {
			if !os.IsNotExist(err) {
				return nil, err
			}
			path = ""
		}
	}
	return LoadConfig(path)
}

func (c *Config) Validate() error {
	var errs []string

	switch strings.ToLower(strings.TrimSpace(c.Backend)) {
	case "memory", "redis":
	case "postgres":
		if strings.TrimSpace(c.PostgresDSN) == "" {
			errs = append(errs, "postgresDsn is required for the postgres backend")
		}
	default:
		errs = append(errs, fmt.Sprintf("unknown backend %q (memory, postgres or redis)", c.Backend))
	}

	switch strings.ToLower(c.LogFormat) {
	case "json", "text":
	default:
		errs = append(errs, fmt.Sprintf("unknown logFormat %q (json or text)", c.LogFormat))
	}
	switch strings.ToLower(c.LogLevel) {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Sprintf("unknown logLevel %q", c.LogLevel))
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}
