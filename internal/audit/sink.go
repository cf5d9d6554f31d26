package audit

import "context"

// Record is the audit trail entry emitted for every write request. It keeps
// the outcome accounting without the record payloads; the credential is
// stored as a sha-256 digest, never in the clear.
type Record struct {
	RequestID  string `json:"request_id"`
	Time       string `json:"time"`
	RemoteAddr string `json:"remote_addr"`
	Service    string `json:"service"`
	TokenSHA   string `json:"token_sha256"`
	Accepted   int    `json:"accepted"`
	Failed     int    `json:"failed"`
	DurationMs int64  `json:"duration_ms"`
}

// Sink receives audit records from the write path. Implementations must not
// fail the request: an audit write error is logged by the caller and dropped.
type Sink interface {
	Enqueue(ctx context.Context, rec *Record) error
}

// NoopSink discards audit records. It is the default when the audit trail is
// not configured.
type NoopSink struct{}

func NewNoopSink() *NoopSink {
	return &NoopSink{}
}

func (s *NoopSink) Enqueue(ctx context.Context, rec *Record) error {
	return nil
}
