package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/examtrail/examtrail-backend/internal/model"
)

// AssignmentRepository handles assignment data access.
type AssignmentRepository struct {
	pool *pgxpool.Pool
}

// NewAssignmentRepository creates a new AssignmentRepository.
func NewAssignmentRepository(pool *pgxpool.Pool) *AssignmentRepository {
	return &AssignmentRepository{pool: pool}
}

// GetByID retrieves a single assignment with its anti-cheat configuration.
func (r *AssignmentRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Assignment, error) {
	a := &model.Assignment{}
	err := r.pool.QueryRow(ctx,
		`SELECT id, title, status, time_limit_minutes, strategy, shuffle_questions, shuffle_options, created_at
		 FROM assignments
		 WHERE id = $1`, id,
	).Scan(&a.ID, &a.Title, &a.Status, &a.TimeLimitMinutes, &a.Strategy,
		&a.AntiCheat.ShuffleQuestions, &a.AntiCheat.ShuffleOptions, &a.CreatedAt)
	if err != nil {
		return nil, err
	}
	return a, nil
}

// ListPublished retrieves all assignments visible to students.
func (r *AssignmentRepository) ListPublished(ctx context.Context) ([]model.Assignment, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, title, status, time_limit_minutes, strategy, shuffle_questions, shuffle_options, created_at
		 FROM assignments
		 WHERE status = $1
		 ORDER BY created_at DESC`, model.AssignmentStatusPublished,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var assignments []model.Assignment
	for rows.Next() {
		var a model.Assignment
		if err := rows.Scan(&a.ID, &a.Title, &a.Status, &a.TimeLimitMinutes, &a.Strategy,
			&a.AntiCheat.ShuffleQuestions, &a.AntiCheat.ShuffleOptions, &a.CreatedAt); err != nil {
			return nil, err
		}
		assignments = append(assignments, a)
	}
	return assignments, rows.Err()
}

// Create inserts a new assignment.
func (r *AssignmentRepository) Create(ctx context.Context, a *model.Assignment) error {
	return r.pool.QueryRow(ctx,
		`INSERT INTO assignments (title, status, time_limit_minutes, strategy, shuffle_questions, shuffle_options)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING id, created_at`,
		a.Title, a.Status, a.TimeLimitMinutes, a.Strategy,
		a.AntiCheat.ShuffleQuestions, a.AntiCheat.ShuffleOptions,
	).Scan(&a.ID, &a.CreatedAt)
}

// UpdateStatus transitions an assignment between draft, published and closed.
func (r *AssignmentRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status model.AssignmentStatus) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE assignments SET status = $1 WHERE id = $2`, status, id)
	return err
}
