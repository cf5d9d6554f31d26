package storage

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"       // PostgreSQL driver
	_ "modernc.org/sqlite"      // SQLite driver (pure Go)

	"log_collector/internal/config"
)

func init() {
	// modernc.org/sqlite registers as "sqlite", which sqlx does not know
	// about. Queries are written with ? placeholders and rebound per driver.
	sqlx.BindDriver("sqlite", sqlx.QUESTION)
}

// DB wraps the database connection for the event store.
type DB struct {
	conn   *sqlx.DB
	driver string
}

// schema for the logs table. The id column is the store-assigned surrogate
// key; it must be strictly increasing in insertion order, which both
// AUTOINCREMENT and BIGSERIAL guarantee.
const (
	sqliteSchema = `
		CREATE TABLE IF NOT EXISTS logs (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			timestamp TEXT,
			service TEXT,
			severity TEXT,
			message TEXT,
			received_at TEXT,
			token_used TEXT
		)
	`
	postgresSchema = `
		CREATE TABLE IF NOT EXISTS logs (
			id BIGSERIAL PRIMARY KEY,
			timestamp TEXT,
			service TEXT,
			severity TEXT,
			message TEXT,
			received_at TEXT,
			token_used TEXT
		)
	`
)

// NewDB opens the event store and applies the schema. Supported drivers are
// "sqlite" (modernc.org/sqlite) and "postgres" (lib/pq).
func NewDB(cfg config.DatabaseConfig) (*DB, error) {
	var driverName string
	switch cfg.Driver {
	case "sqlite":
		driverName = "sqlite"
	case "postgres":
		driverName = "postgres"
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}

	conn, err := sqlx.Connect(driverName, cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	conn.SetMaxOpenConns(cfg.MaxOpenConns)
	conn.SetMaxIdleConns(cfg.MaxIdleConns)
	conn.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	conn.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	schema := sqliteSchema
	if cfg.Driver == "postgres" {
		schema = postgresSchema
	}
	if _, err := conn.Exec(schema); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}

	return &DB{conn: conn, driver: cfg.Driver}, nil
}

// Close closes the database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

// Ping checks if the database is reachable.
func (db *DB) Ping(ctx context.Context) error {
	return db.conn.PingContext(ctx)
}

// Health returns the health status of the database.
func (db *DB) Health(ctx context.Context) error {
	if err := db.Ping(ctx); err != nil {
		return fmt.Errorf("database ping failed: %w", err)
	}

	var result int
	if err := db.conn.GetContext(ctx, &result, "SELECT 1"); err != nil {
		return fmt.Errorf("health check query failed: %w", err)
	}

	return nil
}

// Conn returns the underlying sqlx connection.
// Use this for custom queries not covered by repositories.
func (db *DB) Conn() *sqlx.DB {
	return db.conn
}

// NewLogRepository creates a new log repository.
func (db *DB) NewLogRepository() *LogRepository {
	return NewLogRepository(db)
}
