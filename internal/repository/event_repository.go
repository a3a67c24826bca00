package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/examtrail/examtrail-backend/internal/model"
)

// EventRepository handles exam telemetry event data access.
type EventRepository struct {
	pool *pgxpool.Pool
}

// NewEventRepository creates a new EventRepository.
func NewEventRepository(pool *pgxpool.Pool) *EventRepository {
	return &EventRepository{pool: pool}
}

// BulkInsert persists a batch of events using the PostgreSQL COPY protocol.
// This is the fast path for the telemetry worker.
func (r *EventRepository) BulkInsert(ctx context.Context, events []model.ExamEvent) error {
	if len(events) == 0 {
		return nil
	}

	rows := make([][]any, len(events))
	for i, e := range events {
		rows[i] = []any{e.AssignmentID, e.StudentID, e.Attempt, e.EventType, e.Metadata, e.CreatedAt}
	}

	_, err := r.pool.CopyFrom(ctx,
		pgx.Identifier{"exam_events"},
		[]string{"assignment_id", "student_id", "attempt", "event_type", "metadata", "created_at"},
		pgx.CopyFromRows(rows),
	)
	return err
}

// Insert persists a single event. Used as the fallback path when a COPY
// batch fails, so one malformed row cannot sink the whole batch.
func (r *EventRepository) Insert(ctx context.Context, e *model.ExamEvent) error {
	return r.pool.QueryRow(ctx,
		`INSERT INTO exam_events (assignment_id, student_id, attempt, event_type, metadata, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING id`,
		e.AssignmentID, e.StudentID, e.Attempt, e.EventType, e.Metadata, e.CreatedAt,
	).Scan(&e.ID)
}

// ListByAssignment retrieves every event recorded for an assignment in
// chronological order.
func (r *EventRepository) ListByAssignment(ctx context.Context, assignmentID uuid.UUID) ([]model.ExamEvent, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, assignment_id, student_id, attempt, event_type, metadata, created_at
		 FROM exam_events
		 WHERE assignment_id = $1
		 ORDER BY created_at`, assignmentID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanEvents(rows)
}

// ListByStudent retrieves events for a single student within an assignment.
func (r *EventRepository) ListByStudent(ctx context.Context, assignmentID uuid.UUID, studentID int) ([]model.ExamEvent, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, assignment_id, student_id, attempt, event_type, metadata, created_at
		 FROM exam_events
		 WHERE assignment_id = $1 AND student_id = $2
		 ORDER BY created_at`, assignmentID, studentID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanEvents(rows)
}

func scanEvents(rows pgx.Rows) ([]model.ExamEvent, error) {
	var events []model.ExamEvent
	for rows.Next() {
		var e model.ExamEvent
		if err := rows.Scan(&e.ID, &e.AssignmentID, &e.StudentID, &e.Attempt,
			&e.EventType, &e.Metadata, &e.CreatedAt); err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	return events, rows.Err()
}
