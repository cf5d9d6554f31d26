package httpapi

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"

	"log_collector/internal/audit"
	"log_collector/internal/auth"
	"log_collector/internal/config"
	"log_collector/internal/ingest"
	"log_collector/internal/middleware"
	"log_collector/internal/storage"
	"log_collector/internal/utils"
)

// Dependencies aggregates the services the HTTP layer needs. The caller owns
// shutdown: close the archiver before the database.
type Dependencies struct {
	DB       *storage.DB
	Tokens   auth.TokenStore
	Sink     audit.Sink
	Archiver *audit.Archiver
}

// Close shuts down background services and the database.
func (d *Dependencies) Close() error {
	if d.Archiver != nil {
		d.Archiver.Stop()
	}
	return d.DB.Close()
}

// NewRouter creates an HTTP router with all dependencies wired up.
func NewRouter(cfg *config.Config) (*http.ServeMux, *Dependencies, error) {
	db, err := storage.NewDB(cfg.Database)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	repo := db.NewLogRepository()
	tokenStore := auth.NewStaticTokenStore(cfg.Tokens)
	pipeline := ingest.NewPipeline(repo)

	var sink audit.Sink = audit.NewNoopSink()
	var archiver *audit.Archiver
	if cfg.Audit.Enabled {
		if cfg.Audit.S3Bucket == "" {
			db.Close()
			return nil, nil, fmt.Errorf("AUDIT_S3_BUCKET is required when the audit trail is enabled")
		}

		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.Audit.RedisAddress,
			Password: cfg.Audit.RedisPassword,
			DB:       cfg.Audit.RedisDB,
		})
		if err := redisClient.Ping(context.Background()).Err(); err != nil {
			db.Close()
			return nil, nil, fmt.Errorf("failed to reach audit Redis: %w", err)
		}

		buffer := audit.NewRedisBuffer(redisClient, audit.RedisBufferConfig{
			QueueKey:  cfg.Audit.QueueKey,
			MaxSize:   cfg.Audit.MaxQueueSize,
			BatchSize: cfg.Audit.BatchSize,
		})

		writer, err := audit.NewS3Writer(context.Background(),
			cfg.Audit.S3Bucket, cfg.Audit.S3Region, cfg.Audit.S3Prefix, cfg.Audit.NodeName)
		if err != nil {
			db.Close()
			return nil, nil, fmt.Errorf("failed to initialize audit archive: %w", err)
		}

		archiver = audit.NewArchiver(buffer, writer, cfg.Audit.BatchSize, cfg.Audit.FlushInterval)
		archiver.Start(context.Background())
		sink = buffer
	}

	deps := &Dependencies{
		DB:       db,
		Tokens:   tokenStore,
		Sink:     sink,
		Archiver: archiver,
	}

	logsHandler := NewLogsHandler(pipeline, repo, sink, cfg.Query.DefaultLimit)
	tokenMiddleware := middleware.TokenMiddleware(tokenStore)

	mux := http.NewServeMux()
	mux.Handle("POST /logs", tokenMiddleware(http.HandlerFunc(logsHandler.Write)))
	mux.HandleFunc("GET /logs", logsHandler.Read)
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		utils.RespondWithJSON(w, http.StatusOK, map[string]string{
			"status": "ok",
			"time":   time.Now().UTC().Format(time.RFC3339),
		})
	})

	return mux, deps, nil
}
