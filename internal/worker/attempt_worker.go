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
	AttemptBatchSize    = 50
	AttemptBatchTimeout = 2 * time.Second
	AttemptPollTimeout  = 1 * time.Second
)

// AttemptWorker persists queued attempt records. The presented-paper path
// enqueues instead of writing so a slow database never delays a student
// opening their exam.
type AttemptWorker struct {
	attemptRepo *repository.AttemptRepository
	rdb         *redis.Client
	log         zerolog.Logger
}

// NewAttemptWorker creates a new AttemptWorker.
func NewAttemptWorker(attemptRepo *repository.AttemptRepository, rdb *redis.Client, log zerolog.Logger) *AttemptWorker {
	return &AttemptWorker{
		attemptRepo: attemptRepo,
		rdb:         rdb,
		log:         log.With().Str("component", "attempt_worker").Logger(),
	}
}

// Start runs the drain loop until the context is cancelled.
func (w *AttemptWorker) Start(ctx context.Context) {
	w.log.Info().Msg("AttemptWorker started")

	batch := make([]model.AttemptRecord, 0, AttemptBatchSize)
	lastFlush := time.Now()

	for {
		if len(batch) > 0 &&
			(len(batch) >= AttemptBatchSize || time.Since(lastFlush) >= AttemptBatchTimeout) {

			w.flushSafe(ctx, batch)
			batch = batch[:0]
			lastFlush = time.Now()
		}

		select {
		case <-ctx.Done():
			w.log.Info().Msg("Shutdown requested. Flushing remaining batch...")
			w.flushSafe(context.Background(), batch)
			return

		default:
			item, err := w.rdb.BLPop(ctx, AttemptPollTimeout, config.WorkerKey.PersistAttemptsQueue).Result()
			if err != nil {
				if err != redis.Nil && ctx.Err() == nil {
					w.log.Error().Err(err).Msg("BLPop error")
				}
				continue
			}

			if len(item) < 2 {
				continue
			}

			var a model.AttemptRecord
			if err := json.Unmarshal([]byte(item[1]), &a); err != nil {
				w.log.Error().Err(err).Msg("Invalid JSON payload")
				continue
			}

			batch = append(batch, a)
		}
	}
}

func (w *AttemptWorker) flushSafe(ctx context.Context, batch []model.AttemptRecord) {
	if len(batch) == 0 {
		return
	}

	if err := w.attemptRepo.BulkUpsert(ctx, batch); err != nil {
		w.log.Warn().Err(err).Msg("bulk attempt upsert failed, requeueing")

		pipe := w.rdb.Pipeline()
		for i := range batch {
			raw, _ := json.Marshal(batch[i])
			pipe.RPush(ctx, config.WorkerKey.PersistAttemptsQueue, raw)
		}
		if _, err := pipe.Exec(ctx); err != nil {
			w.log.Error().Err(err).Msg("CRITICAL: Failed to requeue attempts. Data loss occurred.")
		}
	}
}
