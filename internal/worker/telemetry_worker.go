package worker

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/examtrail/examtrail-backend/internal/config"
	"github.com/examtrail/examtrail-backend/internal/model"
	"github.com/examtrail/examtrail-backend/internal/repository"
)

const (
	BatchSize    = 50
	BatchTimeout = 2 * time.Second
	PollTimeout  = 1 * time.Second // Must be >= 1s to satisfy Redis
)

// TelemetryWorker drains queued proctoring events from Redis into PostgreSQL.
// Ingest handlers only ever touch the queue; this worker is the sole writer
// to the event log.
type TelemetryWorker struct {
	eventRepo *repository.EventRepository
	rdb       *redis.Client
	log       zerolog.Logger
}

// NewTelemetryWorker creates a new TelemetryWorker.
func NewTelemetryWorker(eventRepo *repository.EventRepository, rdb *redis.Client, log zerolog.Logger) *TelemetryWorker {
	return &TelemetryWorker{
		eventRepo: eventRepo,
		rdb:       rdb,
		log:       log.With().Str("component", "telemetry_worker").Logger(),
	}
}

// Start runs the drain loop until the context is cancelled.
func (w *TelemetryWorker) Start(ctx context.Context) {
	w.log.Info().Msg("TelemetryWorker started")

	buffer := make([]model.ExamEvent, 0, BatchSize)
	lastFlushTime := time.Now()

	for {
		// 1. Check Flush Conditions (Time or Size)
		if len(buffer) > 0 {
			if len(buffer) >= BatchSize || time.Since(lastFlushTime) >= BatchTimeout {
				w.flushSafe(ctx, buffer)
				buffer = buffer[:0] // Clear buffer, keep capacity
				lastFlushTime = time.Now()
			}
		}

		// 2. Check Context (Graceful Shutdown)
		select {
		case <-ctx.Done():
			w.shutdown(buffer)
			return
		default:
			// Continue
		}

		// 3. Fetch from Redis
		// BLPop blocks for 1 second. Returns immediately if data exists.
		result, err := w.rdb.BLPop(ctx, PollTimeout, config.WorkerKey.PersistEventsQueue).Result()

		if err != nil {
			if err == redis.Nil {
				continue // Timeout (Queue empty), loop back to check flush timer
			}
			if ctx.Err() != nil {
				return // Context cancelled
			}
			// Real Redis error (e.g., connection lost)
			w.log.Error().Err(err).Msg("Redis connection error, sleeping 3s")
			time.Sleep(3 * time.Second)
			continue
		}

		// 4. Process Data
		if len(result) < 2 {
			continue
		}

		var event model.ExamEvent
		if err := json.Unmarshal([]byte(result[1]), &event); err != nil {
			// If JSON is malformed, we CANNOT retry it. Log and discard.
			w.log.Error().Err(err).Str("data", result[1]).Msg("Discarding malformed JSON")
			continue
		}

		buffer = append(buffer, event)
	}
}

// flushSafe attempts bulk insert, then fallback insert, then requeue
func (w *TelemetryWorker) flushSafe(ctx context.Context, batch []model.ExamEvent) {
	// Try Fast Path: COPY the whole batch
	if err := w.eventRepo.BulkInsert(ctx, batch); err != nil {
		w.log.Warn().Err(err).Int("count", len(batch)).Msg("Bulk insert failed, attempting row-by-row recovery")

		// Fallback Path: Insert one by one
		w.fallbackInsert(ctx, batch)
	}
}

func (w *TelemetryWorker) fallbackInsert(ctx context.Context, batch []model.ExamEvent) {
	requeueList := make([]model.ExamEvent, 0)

	for i := range batch {
		e := batch[i]
		if err := w.eventRepo.Insert(ctx, &e); err != nil {
			// Requeue everything that fails SQL insert; the DB may be down
			// and dropping telemetry loses audit evidence.
			w.log.Error().Err(err).Int("student_id", e.StudentID).Msg("Insert failed, requeueing")
			requeueList = append(requeueList, e)
		}
	}

	if len(requeueList) > 0 {
		w.requeue(ctx, requeueList)
	}
}

func (w *TelemetryWorker) requeue(ctx context.Context, items []model.ExamEvent) {
	// Use a pipeline to push everything back quickly
	pipe := w.rdb.Pipeline()
	for _, e := range items {
		data, _ := json.Marshal(e)
		pipe.RPush(ctx, config.WorkerKey.PersistEventsQueue, data)
	}
	_, err := pipe.Exec(ctx)
	if err != nil {
		w.log.Error().Err(err).Msg("CRITICAL: Failed to requeue items to Redis. Data loss occurred.")
	} else {
		w.log.Info().Int("count", len(items)).Msg("Requeued failed items back to Redis")
		// Sleep a bit to avoid thrashing if the DB is down hard
		time.Sleep(2 * time.Second)
	}
}

func (w *TelemetryWorker) shutdown(buffer []model.ExamEvent) {
	w.log.Info().Msg("Worker stopping, flushing remaining buffer...")

	// Give it 5 seconds to flush to DB
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if len(buffer) > 0 {
		w.flushSafe(shutdownCtx, buffer)
	}
}
