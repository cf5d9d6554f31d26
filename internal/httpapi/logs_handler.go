package httpapi

import (
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"

	"log_collector/internal/audit"
	"log_collector/internal/ingest"
	"log_collector/internal/middleware"
	"log_collector/internal/models"
	"log_collector/internal/storage"
	"log_collector/internal/utils"
)

// LogsHandler serves the write and read endpoints for log records.
type LogsHandler struct {
	pipeline     *ingest.Pipeline
	repo         *storage.LogRepository
	sink         audit.Sink
	defaultLimit int
	logger       *utils.Logger
}

// NewLogsHandler creates a new logs handler.
func NewLogsHandler(pipeline *ingest.Pipeline, repo *storage.LogRepository, sink audit.Sink, defaultLimit int) *LogsHandler {
	return &LogsHandler{
		pipeline:     pipeline,
		repo:         repo,
		sink:         sink,
		defaultLimit: defaultLimit,
		logger:       utils.NewLogger("logs-handler"),
	}
}

// Write handles POST /logs. The credential has already been resolved by the
// token middleware; the body is a single record or a {"logs": [...]} batch.
// Any accepted record makes the request an overall success.
func (h *LogsHandler) Write(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	body, err := io.ReadAll(r.Body)
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Failed to read request body")
		return
	}

	records, err := ingest.ParseBody(body)
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}

	token, _ := middleware.GetCredential(r.Context())
	service, _ := middleware.GetServiceIdentity(r.Context())

	result := h.pipeline.Process(r.Context(), token, records)

	status := http.StatusOK
	if !result.OK() {
		status = http.StatusBadRequest
	}
	utils.RespondWithJSON(w, status, result)

	// Audit failures never fail the request.
	rec := &audit.Record{
		RequestID:  uuid.NewString(),
		Time:       start.UTC().Format(time.RFC3339),
		RemoteAddr: r.RemoteAddr,
		Service:    service,
		TokenSHA:   utils.HashString(token),
		Accepted:   result.Accepted,
		Failed:     result.Failed,
		DurationMs: time.Since(start).Milliseconds(),
	}
	if err := h.sink.Enqueue(r.Context(), rec); err != nil {
		h.logger.Error("Failed to enqueue audit record", "error", err)
	}
}

// ReadResponse is the body of a successful read. Count is the number of rows
// in this page, not a total match count; callers wanting totals page through.
type ReadResponse struct {
	Count   int                `json:"count"`
	Results []models.LogRecord `json:"results"`
}

// Read handles GET /logs. Filters are optional; limit and offset must be
// well-formed when present, and absence falls back to documented defaults
// rather than silently swallowing bad input.
func (h *LogsHandler) Read(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	limit, err := parsePositiveInt(query.Get("limit"), h.defaultLimit)
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, fmt.Sprintf("limit %v", err))
		return
	}

	offset, err := parseNonNegativeInt(query.Get("offset"), 0)
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, fmt.Sprintf("offset %v", err))
		return
	}

	filters := storage.LogFilters{
		Service:         query.Get("service"),
		Severity:        query.Get("severity"),
		TimestampStart:  query.Get("timestamp_start"),
		TimestampEnd:    query.Get("timestamp_end"),
		ReceivedAtStart: query.Get("received_at_start"),
		ReceivedAtEnd:   query.Get("received_at_end"),
		Limit:           limit,
		Offset:          offset,
	}

	results, err := h.repo.ListWithFilters(r.Context(), filters)
	if err != nil {
		h.logger.Error("Log query failed", "error", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, ReadResponse{
		Count:   len(results),
		Results: results,
	})
}

// parsePositiveInt parses a query parameter that must be a positive integer.
// An absent value yields the default; a present but malformed or
// out-of-range value is an error, never a silent fallback.
func parsePositiveInt(raw string, defaultValue int) (int, error) {
	if raw == "" {
		return defaultValue, nil
	}
	val, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("must be an integer, got %q", raw)
	}
	if val < 1 {
		return 0, fmt.Errorf("must be positive, got %d", val)
	}
	return val, nil
}

// parseNonNegativeInt is parsePositiveInt with zero allowed.
func parseNonNegativeInt(raw string, defaultValue int) (int, error) {
	if raw == "" {
		return defaultValue, nil
	}
	val, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("must be an integer, got %q", raw)
	}
	if val < 0 {
		return 0, fmt.Errorf("must not be negative, got %d", val)
	}
	return val, nil
}
