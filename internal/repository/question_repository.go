package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/examtrail/examtrail-backend/internal/model"
)

// QuestionRepository handles question bank data access.
type QuestionRepository struct {
	pool *pgxpool.Pool
}

// NewQuestionRepository creates a new QuestionRepository.
func NewQuestionRepository(pool *pgxpool.Pool) *QuestionRepository {
	return &QuestionRepository{pool: pool}
}

// ListByAssignment retrieves the full question bank for an assignment in
// canonical order, options included.
func (r *QuestionRepository) ListByAssignment(ctx context.Context, assignmentID uuid.UUID) ([]model.Question, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, content, question_type, explanation, metadata
		 FROM questions
		 WHERE assignment_id = $1
		 ORDER BY position`, assignmentID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var questions []model.Question
	for rows.Next() {
		var q model.Question
		if err := rows.Scan(&q.ID, &q.Content, &q.Type, &q.Explanation, &q.Metadata); err != nil {
			return nil, err
		}
		questions = append(questions, q)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range questions {
		opts, err := r.listOptions(ctx, questions[i].ID)
		if err != nil {
			return nil, err
		}
		questions[i].Options = opts
	}
	return questions, nil
}

func (r *QuestionRepository) listOptions(ctx context.Context, questionID uuid.UUID) ([]model.Option, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, label, content, is_correct
		 FROM options
		 WHERE question_id = $1
		 ORDER BY label`, questionID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var options []model.Option
	for rows.Next() {
		var o model.Option
		if err := rows.Scan(&o.ID, &o.Label, &o.Content, &o.IsCorrect); err != nil {
			return nil, err
		}
		options = append(options, o)
	}
	return options, rows.Err()
}

// Create inserts a question and its options in a single transaction.
func (r *QuestionRepository) Create(ctx context.Context, assignmentID uuid.UUID, position int, q *model.Question) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	err = tx.QueryRow(ctx,
		`INSERT INTO questions (assignment_id, content, question_type, explanation, metadata, position)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING id`,
		assignmentID, q.Content, q.Type, q.Explanation, q.Metadata, position,
	).Scan(&q.ID)
	if err != nil {
		return err
	}

	for i := range q.Options {
		o := &q.Options[i]
		err = tx.QueryRow(ctx,
			`INSERT INTO options (question_id, label, content, is_correct)
			 VALUES ($1, $2, $3, $4)
			 RETURNING id`,
			q.ID, o.Label, o.Content, o.IsCorrect,
		).Scan(&o.ID)
		if err != nil {
			return err
		}
	}

	return tx.Commit(ctx)
}

// CountByAssignment returns the number of questions in an assignment bank.
func (r *QuestionRepository) CountByAssignment(ctx context.Context, assignmentID uuid.UUID) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM questions WHERE assignment_id = $1`, assignmentID,
	).Scan(&count)
	return count, err
}
