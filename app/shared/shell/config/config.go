package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"go.uber.org/zap/zapcore"

	"github.com/AntonStoeckl/library-circulation-go/app/shared/shell"
)

// Adapter types a Postgres-backed Store can be built on.
const (
	AdapterPGXPool = "pgx.pool"
	AdapterSQLDB   = "sql.db"
	AdapterSQLX    = "sqlx.db"
)

const (
	envPostgresDSN        = "POSTGRES_DSN"
	envPostgresReplicaDSN = "POSTGRES_REPLICA_DSN"
	envPostgresSchema     = "POSTGRES_SCHEMA"
	envAdapterType        = "ADAPTER_TYPE"
	envUseMemoryStore     = "USE_MEMORY_STORE"
	envLogLevel           = "LOG_LEVEL"
	envRetryMaxAttempts   = "RETRY_MAX_ATTEMPTS"
	envRetryBaseDelay     = "RETRY_BASE_DELAY"
	envOTelEnabled        = "OTEL_ENABLED"
	envOTelEndpoint       = "OTEL_EXPORTER_OTLP_ENDPOINT"
	envOTelServiceName    = "OTEL_SERVICE_NAME"

	defaultLogLevel         = "info"
	defaultOTelEndpoint     = "localhost:4317"
	defaultOTelServiceName  = "library-circulation"
	defaultRetryMaxAttempts = 6
	defaultRetryBaseDelay   = 10 * time.Millisecond
)

// Config holds the application configuration.
type Config struct {
	// Storage
	UseMemoryStore     bool
	AdapterType        string
	PostgresDSN        string
	PostgresReplicaDSN string // optional, only used with AdapterPGXPool
	PostgresSchema     string // optional

	LogLevel string

	// OpenTelemetry export over OTLP/gRPC
	OTelEnabled     bool
	OTelEndpoint    string
	OTelServiceName string

	// Retry of concurrency conflicts in command handlers
	RetryMaxAttempts int
	RetryBaseDelay   time.Duration
}

// LoadFromEnv loads configuration from environment variables.
func LoadFromEnv() (*Config, error) {
	config := &Config{
		UseMemoryStore:     os.Getenv(envUseMemoryStore) == "true",
		AdapterType:        getEnv(envAdapterType, AdapterPGXPool),
		PostgresDSN:        os.Getenv(envPostgresDSN),
		PostgresReplicaDSN: os.Getenv(envPostgresReplicaDSN),
		PostgresSchema:     os.Getenv(envPostgresSchema),
		LogLevel:           getEnv(envLogLevel, defaultLogLevel),
		OTelEnabled:        os.Getenv(envOTelEnabled) == "true",
		OTelEndpoint:       getEnv(envOTelEndpoint, defaultOTelEndpoint),
		OTelServiceName:    getEnv(envOTelServiceName, defaultOTelServiceName),
		RetryMaxAttempts:   defaultRetryMaxAttempts,
		RetryBaseDelay:     defaultRetryBaseDelay,
	}

	if !config.UseMemoryStore {
		if config.PostgresDSN == "" {
			return nil, fmt.Errorf("%s is required when %s is not set", envPostgresDSN, envUseMemoryStore)
		}

		switch config.AdapterType {
		case AdapterPGXPool, AdapterSQLDB, AdapterSQLX:
		default:
			return nil, fmt.Errorf("invalid %s %q, use one of %s, %s, %s",
				envAdapterType, config.AdapterType, AdapterPGXPool, AdapterSQLDB, AdapterSQLX)
		}
	}

	if _, err := zapcore.ParseLevel(config.LogLevel); err != nil {
		return nil, fmt.Errorf("invalid %s: %w", envLogLevel, err)
	}

	if value := os.Getenv(envRetryMaxAttempts); value != "" {
		attempts, err := strconv.Atoi(value)
		if err != nil || attempts < 1 {
			return nil, fmt.Errorf("invalid %s %q: must be a positive integer", envRetryMaxAttempts, value)
		}

		config.RetryMaxAttempts = attempts
	}

	if value := os.Getenv(envRetryBaseDelay); value != "" {
		delay, err := time.ParseDuration(value)
		if err != nil || delay < 0 {
			return nil, fmt.Errorf("invalid %s %q: must be a non-negative duration like 10ms", envRetryBaseDelay, value)
		}

		config.RetryBaseDelay = delay
	}

	return config, nil
}

// RetryOptions returns the retry configuration for command handlers.
func (c *Config) RetryOptions() []shell.RetryOption {
	return []shell.RetryOption{
		shell.WithMaxAttempts(c.RetryMaxAttempts),
		shell.WithBaseDelay(c.RetryBaseDelay),
	}
}

// getEnv retrieves an environment variable or returns the default value.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}

	return defaultValue
}
