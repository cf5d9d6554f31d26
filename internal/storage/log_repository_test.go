package storage

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"log_collector/internal/config"
	"log_collector/internal/models"
)

// newTestDB opens a throwaway sqlite store in a temp directory. A single
// connection keeps concurrent test writers from tripping over sqlite's file
// locking; id assignment behaves the same either way.
func newTestDB(t *testing.T) *DB {
	t.Helper()

	db, err := NewDB(config.DatabaseConfig{
		Driver:          "sqlite",
		DSN:             filepath.Join(t.TempDir(), "logs.db"),
		MaxOpenConns:    1,
		MaxIdleConns:    1,
		ConnMaxLifetime: time.Minute,
		ConnMaxIdleTime: time.Minute,
	})
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	return db
}

func testRecord(service, severity, message, receivedAt string) *models.LogRecord {
	return &models.LogRecord{
		Timestamp:  "2024-01-01T00:00:00Z",
		Service:    service,
		Severity:   severity,
		Message:    message,
		ReceivedAt: receivedAt,
		TokenUsed:  "token123",
	}
}

func TestLogRepository_Insert(t *testing.T) {
	db := newTestDB(t)
	repo := db.NewLogRepository()
	ctx := context.Background()

	rec := testRecord("auth-service", models.SeverityInfo, "login ok", "2024-01-01T00:00:01Z")
	id, err := repo.Insert(ctx, rec)
	require.NoError(t, err)
	assert.Equal(t, int64(1), id)
	assert.Equal(t, id, rec.ID)

	id2, err := repo.Insert(ctx, testRecord("api-service", models.SeverityWarn, "slow", "2024-01-01T00:00:02Z"))
	require.NoError(t, err)
	assert.Greater(t, id2, id)

	got, err := repo.ListWithFilters(ctx, LogFilters{Limit: 10})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "slow", got[0].Message)
	assert.Equal(t, "login ok", got[1].Message)
	assert.Equal(t, "token123", got[1].TokenUsed)
}

func TestLogRepository_IDsStrictlyIncreasingUnderConcurrentWriters(t *testing.T) {
	db := newTestDB(t)
	repo := db.NewLogRepository()

	const writers = 8
	const perWriter = 20

	var mu sync.Mutex
	var ids []int64
	var wg sync.WaitGroup

	for w := 0; w < writers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < perWriter; i++ {
				rec := testRecord("api-service", models.SeverityInfo,
					fmt.Sprintf("w%d-%d", w, i), "2024-01-01T00:00:00Z")
				id, err := repo.Insert(context.Background(), rec)
				if err != nil {
					t.Error(err)
					return
				}
				mu.Lock()
				ids = append(ids, id)
				mu.Unlock()
			}
		}(w)
	}
	wg.Wait()

	require.Len(t, ids, writers*perWriter)
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	for i := 1; i < len(ids); i++ {
		if ids[i] == ids[i-1] {
			t.Fatalf("duplicate id assigned: %d", ids[i])
		}
	}
}

func TestLogRepository_ListWithFilters(t *testing.T) {
	db := newTestDB(t)
	repo := db.NewLogRepository()
	ctx := context.Background()

	seed := []struct {
		service, severity, message, ts, receivedAt string
	}{
		{"auth-service", "INFO", "m1", "2024-01-01T00:00:00Z", "2024-01-01T10:00:00Z"},
		{"auth-service", "ERROR", "m2", "2024-01-02T00:00:00Z", "2024-01-01T11:00:00Z"},
		{"payment-service", "INFO", "m3", "2024-01-03T00:00:00Z", "2024-01-01T12:00:00Z"},
		{"payment-service", "WARN", "m4", "2024-01-04T00:00:00Z", "2024-01-01T13:00:00Z"},
		{"api-service", "ERROR", "m5", "2024-01-05T00:00:00Z", "2024-01-01T14:00:00Z"},
	}
	for _, s := range seed {
		rec := testRecord(s.service, s.severity, s.message, s.receivedAt)
		rec.Timestamp = s.ts
		_, err := repo.Insert(ctx, rec)
		require.NoError(t, err)
	}

	messages := func(recs []models.LogRecord) []string {
		out := make([]string, len(recs))
		for i, r := range recs {
			out[i] = r.Message
		}
		return out
	}

	t.Run("no filters returns everything newest first", func(t *testing.T) {
		got, err := repo.ListWithFilters(ctx, LogFilters{Limit: 10})
		require.NoError(t, err)
		assert.Equal(t, []string{"m5", "m4", "m3", "m2", "m1"}, messages(got))
	})

	t.Run("service exact match", func(t *testing.T) {
		got, err := repo.ListWithFilters(ctx, LogFilters{Service: "auth-service", Limit: 10})
		require.NoError(t, err)
		assert.Equal(t, []string{"m2", "m1"}, messages(got))
	})

	t.Run("service all sentinel disables the filter", func(t *testing.T) {
		got, err := repo.ListWithFilters(ctx, LogFilters{Service: FilterAll, Limit: 10})
		require.NoError(t, err)
		assert.Len(t, got, 5)
	})

	t.Run("severity filter", func(t *testing.T) {
		got, err := repo.ListWithFilters(ctx, LogFilters{Severity: "ERROR", Limit: 10})
		require.NoError(t, err)
		assert.Equal(t, []string{"m5", "m2"}, messages(got))
	})

	t.Run("timestamp range", func(t *testing.T) {
		got, err := repo.ListWithFilters(ctx, LogFilters{
			TimestampStart: "2024-01-02T00:00:00Z",
			TimestampEnd:   "2024-01-04T00:00:00Z",
			Limit:          10,
		})
		require.NoError(t, err)
		assert.Equal(t, []string{"m4", "m3", "m2"}, messages(got))
	})

	t.Run("received_at lower bound only", func(t *testing.T) {
		got, err := repo.ListWithFilters(ctx, LogFilters{
			ReceivedAtStart: "2024-01-01T12:30:00Z",
			Limit:           10,
		})
		require.NoError(t, err)
		assert.Equal(t, []string{"m5", "m4"}, messages(got))
	})

	t.Run("combined predicates", func(t *testing.T) {
		got, err := repo.ListWithFilters(ctx, LogFilters{
			Service:       "payment-service",
			Severity:      "WARN",
			ReceivedAtEnd: "2024-01-01T13:00:00Z",
			Limit:         10,
		})
		require.NoError(t, err)
		assert.Equal(t, []string{"m4"}, messages(got))
	})

	t.Run("filter value that looks like SQL stays a value", func(t *testing.T) {
		got, err := repo.ListWithFilters(ctx, LogFilters{
			Service: "x' OR '1'='1",
			Limit:   10,
		})
		require.NoError(t, err)
		assert.Empty(t, got)
	})
}

func TestLogRepository_PaginationStable(t *testing.T) {
	db := newTestDB(t)
	repo := db.NewLogRepository()
	ctx := context.Background()

	// Same received_at for every row so ordering falls through to id.
	for i := 0; i < 10; i++ {
		_, err := repo.Insert(ctx, testRecord("api-service", "INFO",
			fmt.Sprintf("m%d", i), "2024-01-01T10:00:00Z"))
		require.NoError(t, err)
	}

	page1, err := repo.ListWithFilters(ctx, LogFilters{Limit: 4, Offset: 0})
	require.NoError(t, err)
	page2, err := repo.ListWithFilters(ctx, LogFilters{Limit: 4, Offset: 4})
	require.NoError(t, err)
	page3, err := repo.ListWithFilters(ctx, LogFilters{Limit: 4, Offset: 8})
	require.NoError(t, err)

	var all []int64
	for _, page := range [][]models.LogRecord{page1, page2, page3} {
		for _, rec := range page {
			all = append(all, rec.ID)
		}
	}

	require.Len(t, all, 10)
	seen := map[int64]bool{}
	for i, id := range all {
		assert.False(t, seen[id], "id %d returned on two pages", id)
		seen[id] = true
		if i > 0 {
			assert.Less(t, id, all[i-1], "pages must stay in descending id order")
		}
	}
}
