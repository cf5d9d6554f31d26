package storage

import (
	"context"
	"strings"

	"log_collector/internal/models"
)

// FilterAll is the sentinel value that disables the service or severity
// filter, equivalent to omitting it.
const FilterAll = "all"

// LogRepository handles log record database operations.
type LogRepository struct {
	db *DB
}

// NewLogRepository creates a new log repository.
func NewLogRepository(db *DB) *LogRepository {
	return &LogRepository{db: db}
}

// Insert persists one fully-validated record and returns the store-assigned
// id. The write is a single statement: the record is either fully persisted
// or not persisted at all.
func (r *LogRepository) Insert(ctx context.Context, rec *models.LogRecord) (int64, error) {
	query := r.db.conn.Rebind(`
		INSERT INTO logs (timestamp, service, severity, message, received_at, token_used)
		VALUES (?, ?, ?, ?, ?, ?)
		RETURNING id
	`)

	var id int64
	err := r.db.conn.GetContext(ctx, &id, query,
		rec.Timestamp, rec.Service, rec.Severity, rec.Message, rec.ReceivedAt, rec.TokenUsed,
	)
	if err != nil {
		return 0, newStoreError("insert log record", err)
	}

	rec.ID = id
	return id, nil
}

// LogFilters contains the optional predicates and pagination bounds for a
// read query. Zero-value string fields (and the "all" sentinel for Service
// and Severity) disable the corresponding predicate.
type LogFilters struct {
	Service         string
	Severity        string
	TimestampStart  string
	TimestampEnd    string
	ReceivedAtStart string
	ReceivedAtEnd   string
	Limit           int
	Offset          int
}

// ListWithFilters returns records matching the supplied filters, newest
// received first with ties broken by descending id. That order keeps
// pagination stable under concurrent inserts: new rows with larger ids always
// sort ahead of the current page rather than displacing its tail.
//
// Every predicate value is bound as a parameter; nothing supplied by the
// caller is ever interpolated into the query text.
func (r *LogRepository) ListWithFilters(ctx context.Context, filters LogFilters) ([]models.LogRecord, error) {
	var clauses []string
	var args []interface{}

	if filters.Service != "" && filters.Service != FilterAll {
		clauses = append(clauses, "service = ?")
		args = append(args, filters.Service)
	}
	if filters.Severity != "" && filters.Severity != FilterAll {
		clauses = append(clauses, "severity = ?")
		args = append(args, filters.Severity)
	}
	if filters.TimestampStart != "" {
		clauses = append(clauses, "timestamp >= ?")
		args = append(args, filters.TimestampStart)
	}
	if filters.TimestampEnd != "" {
		clauses = append(clauses, "timestamp <= ?")
		args = append(args, filters.TimestampEnd)
	}
	if filters.ReceivedAtStart != "" {
		clauses = append(clauses, "received_at >= ?")
		args = append(args, filters.ReceivedAtStart)
	}
	if filters.ReceivedAtEnd != "" {
		clauses = append(clauses, "received_at <= ?")
		args = append(args, filters.ReceivedAtEnd)
	}

	whereClause := ""
	if len(clauses) > 0 {
		whereClause = "WHERE " + strings.Join(clauses, " AND ")
	}

	query := r.db.conn.Rebind(`
		SELECT id, timestamp, service, severity, message, received_at, token_used
		FROM logs
		` + whereClause + `
		ORDER BY received_at DESC, id DESC
		LIMIT ? OFFSET ?
	`)
	args = append(args, filters.Limit, filters.Offset)

	records := []models.LogRecord{}
	if err := r.db.conn.SelectContext(ctx, &records, query, args...); err != nil {
		return nil, newStoreError("list log records", err)
	}

	return records, nil
}
