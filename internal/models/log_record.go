package models

// LogRecord is a single persisted log event.
//
// Timestamp and ReceivedAt are stored exactly as strings: timestamp is
// whatever the producer sent (ISO-8601 expected but not enforced at this
// layer), received_at is server time assigned at validated write. ID is
// assigned by the store and is strictly increasing in insertion order.
type LogRecord struct {
	ID         int64  `db:"id" json:"id"`
	Timestamp  string `db:"timestamp" json:"timestamp"`
	Service    string `db:"service" json:"service"`
	Severity   string `db:"severity" json:"severity"`
	Message    string `db:"message" json:"message"`
	ReceivedAt string `db:"received_at" json:"received_at"`
	TokenUsed  string `db:"token_used" json:"token_used"`
}

// Severity values observed in practice. The store does not enforce an enum;
// producers may send anything.
const (
	SeverityInfo  = "INFO"
	SeverityWarn  = "WARN"
	SeverityError = "ERROR"
)
