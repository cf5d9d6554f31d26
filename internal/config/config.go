package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds configuration for the collector.
type Config struct {
	HTTPPort string

	// Tokens maps bearer credentials to the service identity they resolve to.
	// The map is built once at startup and never mutated afterwards.
	Tokens map[string]string

	Database DatabaseConfig
	Query    QueryConfig
	Audit    AuditConfig
}

// DatabaseConfig holds event store connection settings.
type DatabaseConfig struct {
	Driver          string // "sqlite" or "postgres"
	DSN             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
}

// QueryConfig holds read-path settings.
type QueryConfig struct {
	// DefaultLimit is the page size applied when a read request omits limit.
	DefaultLimit int
}

// AuditConfig holds configuration for the ingest audit trail.
type AuditConfig struct {
	Enabled       bool
	RedisAddress  string
	RedisPassword string
	RedisDB       int
	QueueKey      string
	MaxQueueSize  int64
	BatchSize     int
	FlushInterval time.Duration
	S3Bucket      string
	S3Region      string
	S3Prefix      string
	NodeName      string
}

func getEnvInt(key string, defaultValue int) int {
	val := os.Getenv(key)
	if val == "" {
		return defaultValue
	}

	intVal, err := strconv.Atoi(val)
	if err != nil {
		return defaultValue
	}

	return intVal
}

func getEnvInt64(key string, defaultValue int64) int64 {
	val := os.Getenv(key)
	if val == "" {
		return defaultValue
	}
	intVal, err := strconv.ParseInt(val, 10, 64)
	if err != nil {
		return defaultValue
	}
	return intVal
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	val := os.Getenv(key)
	if val == "" {
		return defaultValue
	}

	duration, err := time.ParseDuration(val)
	if err != nil {
		return defaultValue
	}

	return duration
}

func getEnvString(key string, defaultValue string) string {
	val := os.Getenv(key)
	if val == "" {
		return defaultValue
	}
	return val
}

// defaultTokens seeds the credential table used when AUTH_TOKENS is unset.
// The load generator ships with the same static table.
const defaultTokens = "token123:auth-service,token456:payment-service,token789:api-service"

// parseTokens parses a comma-separated list of token:service pairs.
func parseTokens(raw string) (map[string]string, error) {
	tokens := make(map[string]string)
	for _, pair := range strings.Split(raw, ",") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		token, service, ok := strings.Cut(pair, ":")
		if !ok || token == "" || service == "" {
			return nil, fmt.Errorf("malformed token mapping %q, want token:service", pair)
		}
		tokens[token] = service
	}
	if len(tokens) == 0 {
		return nil, fmt.Errorf("no token mappings configured")
	}
	return tokens, nil
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	tokens, err := parseTokens(getEnvString("AUTH_TOKENS", defaultTokens))
	if err != nil {
		return nil, fmt.Errorf("AUTH_TOKENS: %w", err)
	}

	driver := getEnvString("DB_DRIVER", "sqlite")
	switch driver {
	case "sqlite", "postgres":
	default:
		return nil, fmt.Errorf("DB_DRIVER must be sqlite or postgres, got %q", driver)
	}

	defaultDSN := "logs.db"
	if driver == "postgres" {
		defaultDSN = os.Getenv("DATABASE_URL")
		if defaultDSN == "" {
			return nil, fmt.Errorf("DATABASE_URL is required when DB_DRIVER=postgres")
		}
	}

	cfg := &Config{
		HTTPPort: getEnvString("HTTP_PORT", "3000"),
		Tokens:   tokens,
		Database: DatabaseConfig{
			Driver:          driver,
			DSN:             getEnvString("DB_DSN", defaultDSN),
			MaxOpenConns:    getEnvInt("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns:    getEnvInt("DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: getEnvDuration("DB_CONN_MAX_LIFETIME", 5*time.Minute),
			ConnMaxIdleTime: getEnvDuration("DB_CONN_MAX_IDLE_TIME", 1*time.Minute),
		},
		Query: QueryConfig{
			DefaultLimit: getEnvInt("QUERY_DEFAULT_LIMIT", 100),
		},
		Audit: AuditConfig{
			Enabled:       getEnvString("AUDIT_ENABLED", "false") == "true",
			RedisAddress:  getEnvString("AUDIT_REDIS_ADDRESS", "localhost:6379"),
			RedisPassword: getEnvString("AUDIT_REDIS_PASSWORD", ""),
			RedisDB:       getEnvInt("AUDIT_REDIS_DB", 0),
			QueueKey:      getEnvString("AUDIT_QUEUE_KEY", "collector:audit"),
			MaxQueueSize:  getEnvInt64("AUDIT_MAX_QUEUE_SIZE", 100_000),
			BatchSize:     getEnvInt("AUDIT_BATCH_SIZE", 1000),
			FlushInterval: getEnvDuration("AUDIT_FLUSH_INTERVAL", 5*time.Minute),
			S3Bucket:      getEnvString("AUDIT_S3_BUCKET", ""),
			S3Region:      getEnvString("AUDIT_S3_REGION", "us-east-1"),
			S3Prefix:      getEnvString("AUDIT_S3_PREFIX", "audit/"),
			NodeName:      getEnvString("NODE_NAME", "collector-0"),
		},
	}

	if cfg.Query.DefaultLimit < 1 {
		return nil, fmt.Errorf("QUERY_DEFAULT_LIMIT must be positive, got %d", cfg.Query.DefaultLimit)
	}

	return cfg, nil
}
