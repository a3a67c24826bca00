package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/examtrail/examtrail-backend/internal/model"
)

// AttemptRepository handles attempt record data access.
type AttemptRepository struct {
	pool *pgxpool.Pool
}

// NewAttemptRepository creates a new AttemptRepository.
func NewAttemptRepository(pool *pgxpool.Pool) *AttemptRepository {
	return &AttemptRepository{pool: pool}
}

// GetLatest retrieves the most recent attempt for a student-assignment pair.
func (r *AttemptRepository) GetLatest(ctx context.Context, assignmentID uuid.UUID, studentID int) (*model.AttemptRecord, error) {
	a := &model.AttemptRecord{}
	err := r.pool.QueryRow(ctx,
		`SELECT id, assignment_id, student_id, attempt_number, seed, time_limit_minutes, status, started_at, ended_at
		 FROM attempts
		 WHERE assignment_id = $1 AND student_id = $2
		 ORDER BY attempt_number DESC
		 LIMIT 1`, assignmentID, studentID,
	).Scan(&a.ID, &a.AssignmentID, &a.StudentID, &a.AttemptNumber, &a.Seed,
		&a.TimeLimitMinutes, &a.Status, &a.StartedAt, &a.EndedAt)
	if err != nil {
		return nil, err
	}
	return a, nil
}

// ListByAssignment retrieves all attempts for an assignment, newest first.
func (r *AttemptRepository) ListByAssignment(ctx context.Context, assignmentID uuid.UUID) ([]model.AttemptRecord, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, assignment_id, student_id, attempt_number, seed, time_limit_minutes, status, started_at, ended_at
		 FROM attempts
		 WHERE assignment_id = $1
		 ORDER BY started_at DESC`, assignmentID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var attempts []model.AttemptRecord
	for rows.Next() {
		var a model.AttemptRecord
		if err := rows.Scan(&a.ID, &a.AssignmentID, &a.StudentID, &a.AttemptNumber, &a.Seed,
			&a.TimeLimitMinutes, &a.Status, &a.StartedAt, &a.EndedAt); err != nil {
			return nil, err
		}
		attempts = append(attempts, a)
	}
	return attempts, rows.Err()
}

// BulkUpsert persists a batch of attempt records in a single round trip.
// Conflicting rows (same assignment, student and attempt number) are updated
// so a re-queued batch never duplicates attempts.
func (r *AttemptRepository) BulkUpsert(ctx context.Context, attempts []model.AttemptRecord) error {
	if len(attempts) == 0 {
		return nil
	}

	assignmentIDs := make([]uuid.UUID, len(attempts))
	studentIDs := make([]int, len(attempts))
	attemptNumbers := make([]int, len(attempts))
	seeds := make([]string, len(attempts))
	timeLimits := make([]int, len(attempts))
	statuses := make([]string, len(attempts))
	startedAts := make([]time.Time, len(attempts))

	for i, a := range attempts {
		assignmentIDs[i] = a.AssignmentID
		studentIDs[i] = a.StudentID
		attemptNumbers[i] = a.AttemptNumber
		seeds[i] = a.Seed
		timeLimits[i] = a.TimeLimitMinutes
		statuses[i] = string(a.Status)
		startedAts[i] = a.StartedAt
	}

	_, err := r.pool.Exec(ctx,
		`INSERT INTO attempts (assignment_id, student_id, attempt_number, seed, time_limit_minutes, status, started_at)
		 SELECT * FROM UNNEST($1::uuid[], $2::int[], $3::int[], $4::text[], $5::int[], $6::text[], $7::timestamptz[])
		 ON CONFLICT (assignment_id, student_id, attempt_number)
		 DO UPDATE SET status = EXCLUDED.status, seed = EXCLUDED.seed`,
		assignmentIDs, studentIDs, attemptNumbers, seeds, timeLimits, statuses, startedAts)
	return err
}

// Close marks an attempt as ended with the given status.
func (r *AttemptRepository) Close(ctx context.Context, id uuid.UUID, status model.SessionStatus) error {
	now := time.Now()
	_, err := r.pool.Exec(ctx,
		`UPDATE attempts SET status = $1, ended_at = $2 WHERE id = $3`,
		status, now, id)
	return err
}
