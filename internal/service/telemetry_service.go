package service

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/examtrail/examtrail-backend/internal/config"
	"github.com/examtrail/examtrail-backend/internal/model"
)

// TelemetryService accepts raw proctoring events and moves them onto the
// persistence queue. Ingest never touches PostgreSQL directly; the worker
// drains the queue in batches.
type TelemetryService struct {
	rdb *redis.Client
	log zerolog.Logger
}

// NewTelemetryService creates a new TelemetryService.
func NewTelemetryService(rdb *redis.Client, log zerolog.Logger) *TelemetryService {
	return &TelemetryService{
		rdb: rdb,
		log: log.With().Str("component", "telemetry_service").Logger(),
	}
}

// IngestBatch queues a batch of events for persistence and notifies live
// proctor dashboards over pub/sub. The whole batch is pushed in one pipeline
// round trip.
func (s *TelemetryService) IngestBatch(ctx context.Context, assignmentID uuid.UUID, studentID int, batch []model.IngestEventRequest) (int, error) {
	if len(batch) == 0 {
		return 0, nil
	}

	pipe := s.rdb.Pipeline()
	for _, req := range batch {
		event := model.ExamEvent{
			AssignmentID: assignmentID,
			StudentID:    studentID,
			Attempt:      req.Attempt,
			EventType:    req.EventType,
			CreatedAt:    req.CreatedAt,
			Metadata:     req.Metadata,
		}
		raw, err := json.Marshal(event)
		if err != nil {
			return 0, fmt.Errorf("marshal event: %w", err)
		}
		pipe.RPush(ctx, config.WorkerKey.PersistEventsQueue, raw)
	}

	if _, err := pipe.Exec(ctx); err != nil {
		return 0, fmt.Errorf("enqueue events: %w", err)
	}

	s.publishNotification(ctx, assignmentID, studentID, len(batch))

	return len(batch), nil
}

// ProctorNotification is the pub/sub message fanned out to live dashboards
// whenever a student's client delivers telemetry.
type ProctorNotification struct {
	AssignmentID string `json:"assignment_id"`
	StudentID    int    `json:"student_id"`
	EventCount   int    `json:"event_count"`
}

func (s *TelemetryService) publishNotification(ctx context.Context, assignmentID uuid.UUID, studentID, count int) {
	msg, err := json.Marshal(ProctorNotification{
		AssignmentID: assignmentID.String(),
		StudentID:    studentID,
		EventCount:   count,
	})
	if err != nil {
		return
	}

	channel := config.CacheKey.ProctorChannel(assignmentID.String())
	if err := s.rdb.Publish(ctx, channel, msg).Err(); err != nil {
		// Dashboards fall back to their periodic refresh tick.
		s.log.Warn().Err(err).Str("channel", channel).Msg("Failed to publish proctor notification")
	}
}
