package audit

import (
	"context"
	"time"

	"log_collector/internal/utils"
)

// BatchWriter is the archive destination for drained audit records.
type BatchWriter interface {
	WriteBatch(ctx context.Context, records []*Record) (string, error)
}

// Archiver drains the Redis buffer in the background and flushes batches to
// the archive destination on an interval. Records that fail to flush stay in
// the buffer for the next attempt.
type Archiver struct {
	buffer        *RedisBuffer
	writer        BatchWriter
	batchSize     int
	flushInterval time.Duration

	stopChan    chan struct{}
	stoppedChan chan struct{}
	logger      *utils.Logger
}

// NewArchiver creates an archiver draining buffer into writer.
func NewArchiver(buffer *RedisBuffer, writer BatchWriter, batchSize int, flushInterval time.Duration) *Archiver {
	return &Archiver{
		buffer:        buffer,
		writer:        writer,
		batchSize:     batchSize,
		flushInterval: flushInterval,
		stopChan:      make(chan struct{}),
		stoppedChan:   make(chan struct{}),
		logger:        utils.NewLogger("audit-archiver"),
	}
}

// Start starts the archiver goroutine.
func (a *Archiver) Start(ctx context.Context) {
	go a.run(ctx)
}

// Stop performs a final drain and stops the archiver. It blocks until the
// worker goroutine has exited.
func (a *Archiver) Stop() {
	close(a.stopChan)
	<-a.stoppedChan
}

// run is the main worker loop.
func (a *Archiver) run(ctx context.Context) {
	defer close(a.stoppedChan)

	ticker := time.NewTicker(a.flushInterval)
	defer ticker.Stop()

	for {
		select {
		case <-a.stopChan:
			a.logger.Info("Audit archiver stopping, draining buffer")
			a.drain(context.Background())
			return
		case <-ctx.Done():
			a.logger.Info("Audit archiver context cancelled")
			return
		case <-ticker.C:
			a.drain(ctx)
		}
	}
}

// drain flushes full batches until the buffer is empty or a flush fails.
func (a *Archiver) drain(ctx context.Context) {
	for {
		records, err := a.buffer.Dequeue(ctx, a.batchSize)
		if err != nil {
			a.logger.Error("Failed to dequeue audit records", "error", err)
			return
		}
		if len(records) == 0 {
			return
		}

		if _, err := a.writer.WriteBatch(ctx, records); err != nil {
			a.logger.Error("Failed to flush audit batch, re-queueing", "error", err, "count", len(records))
			// Push the batch back so nothing is lost; it will be retried on
			// the next tick.
			for _, rec := range records {
				if enqErr := a.buffer.Enqueue(ctx, rec); enqErr != nil {
					a.logger.Error("Failed to re-queue audit record", "error", enqErr)
				}
			}
			return
		}

		if len(records) < a.batchSize {
			return
		}
	}
}
