package ingest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"log_collector/internal/models"
	"log_collector/internal/storage"
)

// requiredFields are the keys every candidate record must carry. Validation
// checks presence only; values are not type- or range-checked at this layer.
var requiredFields = []string{"timestamp", "service", "severity", "message"}

// Validate confirms presence of all required fields in a candidate record.
// It returns "" when the record is valid, otherwise a message naming every
// missing field, not just the first.
func Validate(record any) string {
	fields, ok := record.(map[string]any)
	if !ok {
		return "Missing fields: " + strings.Join(requiredFields, ", ")
	}

	var missing []string
	for _, key := range requiredFields {
		if _, present := fields[key]; !present {
			missing = append(missing, key)
		}
	}
	if len(missing) > 0 {
		return "Missing fields: " + strings.Join(missing, ", ")
	}
	return ""
}

// ParseBody splits a write request body into a batch of candidate records.
// A body of the form {"logs": [...]} is a batch; any other JSON object is
// treated as a one-element batch. Malformed JSON is the only parse failure.
func ParseBody(body []byte) ([]any, error) {
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()

	var payload any
	if err := dec.Decode(&payload); err != nil {
		return nil, fmt.Errorf("invalid JSON body: %w", err)
	}

	if envelope, ok := payload.(map[string]any); ok {
		if logs, ok := envelope["logs"].([]any); ok {
			return logs, nil
		}
	}
	return []any{payload}, nil
}

// Result is the aggregated outcome of one write request. Accepted plus
// Failed always equals the batch size, and Errors carries one message per
// failed record.
type Result struct {
	Accepted int      `json:"accepted"`
	Failed   int      `json:"failed"`
	Errors   []string `json:"errors"`
}

// OK reports whether the write as a whole counts as a success. A batch with
// any accepted record is a success even when other records in it failed.
func (r *Result) OK() bool {
	return r.Accepted > 0
}

// Pipeline validates and persists batches of log records.
type Pipeline struct {
	repo *storage.LogRepository
	now  func() time.Time
}

// NewPipeline creates a pipeline writing to the given repository.
func NewPipeline(repo *storage.LogRepository) *Pipeline {
	return &Pipeline{
		repo: repo,
		now:  time.Now,
	}
}

// Process runs every record in the batch independently: validation failures
// and store failures are counted and recorded, never short-circuiting the
// rest of the batch. The raw credential is stored with each record for audit,
// and every record in the batch shares one server-assigned received_at.
func (p *Pipeline) Process(ctx context.Context, token string, records []any) *Result {
	receivedAt := p.now().UTC().Format(time.RFC3339)
	result := &Result{Errors: []string{}}

	for _, record := range records {
		if msg := Validate(record); msg != "" {
			result.Failed++
			result.Errors = append(result.Errors, msg)
			continue
		}

		fields := record.(map[string]any)
		rec := &models.LogRecord{
			Timestamp:  fieldString(fields, "timestamp"),
			Service:    fieldString(fields, "service"),
			Severity:   fieldString(fields, "severity"),
			Message:    fieldString(fields, "message"),
			ReceivedAt: receivedAt,
			TokenUsed:  token,
		}

		if _, err := p.repo.Insert(ctx, rec); err != nil {
			result.Failed++
			result.Errors = append(result.Errors, err.Error())
			continue
		}
		result.Accepted++
	}

	return result
}

// fieldString renders a decoded JSON value as the string the store persists.
// Producers are expected to send strings; anything else keeps its JSON
// rendering (numbers stay exact thanks to json.Number decoding).
func fieldString(fields map[string]any, key string) string {
	switch v := fields[key].(type) {
	case string:
		return v
	case nil:
		return ""
	case json.Number:
		return v.String()
	default:
		rendered, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprintf("%v", v)
		}
		return string(rendered)
	}
}
