package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/examtrail/examtrail-backend/internal/config"
	"github.com/examtrail/examtrail-backend/internal/model"
	"github.com/examtrail/examtrail-backend/internal/repository"
	"github.com/examtrail/examtrail-backend/internal/shuffle"
)

var (
	// ErrAssignmentNotPublished is returned when a student requests a paper
	// for an assignment that is still a draft or already closed.
	ErrAssignmentNotPublished = errors.New("assignment is not published")

	// ErrNoAttempt is returned when an audit operation references a
	// student-assignment pair with no recorded attempt.
	ErrNoAttempt = errors.New("no attempt recorded for this student and assignment")
)

// PresentationService builds the per-student presented paper: deterministic
// question and option order derived from the attempt seed, never stored.
type PresentationService struct {
	assignmentRepo *repository.AssignmentRepository
	questionRepo   *repository.QuestionRepository
	attemptRepo    *repository.AttemptRepository
	rdb            *redis.Client
}

// NewPresentationService creates a new PresentationService.
func NewPresentationService(
	assignmentRepo *repository.AssignmentRepository,
	questionRepo *repository.QuestionRepository,
	attemptRepo *repository.AttemptRepository,
	rdb *redis.Client,
) *PresentationService {
	return &PresentationService{
		assignmentRepo: assignmentRepo,
		questionRepo:   questionRepo,
		attemptRepo:    attemptRepo,
		rdb:            rdb,
	}
}

// PresentedPaper is the full response for a student opening an assignment.
// Questions are projected through StudentQuestion so grading fields never
// reach the exam taker.
type PresentedPaper struct {
	AssignmentID     uuid.UUID         `json:"assignment_id"`
	Title            string            `json:"title"`
	TimeLimitMinutes int               `json:"time_limit_minutes"`
	Strategy         string            `json:"strategy"`
	AttemptNumber    int               `json:"attempt_number"`
	Questions        []StudentQuestion `json:"questions"`
}

// StudentOption is an answer option as exposed to the exam taker: the
// presented label and content only. Canonical labels and correctness stay
// server-side.
type StudentOption struct {
	Label   string `json:"label"`
	Content string `json:"content"`
}

// StudentQuestion is a question as exposed to the exam taker.
type StudentQuestion struct {
	ID      uuid.UUID          `json:"id"`
	Content string             `json:"content"`
	Type    model.QuestionType `json:"type"`
	Options []StudentOption    `json:"options"`
}

func toStudentQuestions(presented []model.PresentedQuestion) []StudentQuestion {
	questions := make([]StudentQuestion, len(presented))
	for i, pq := range presented {
		opts := make([]StudentOption, len(pq.Presented))
		for j, po := range pq.Presented {
			opts[j] = StudentOption{Label: po.PresentedLabel, Content: po.Content}
		}
		questions[i] = StudentQuestion{
			ID:      pq.ID,
			Content: pq.Content,
			Type:    pq.Type,
			Options: opts,
		}
	}
	return questions
}

// GetPresentedPaper derives the student's layout for an assignment and queues
// the attempt record for persistence. Calling it twice with the same inputs
// yields a byte-identical layout.
func (s *PresentationService) GetPresentedPaper(ctx context.Context, assignmentID uuid.UUID, studentID int) (*PresentedPaper, error) {
	assignment, err := s.assignmentRepo.GetByID(ctx, assignmentID)
	if err != nil {
		return nil, fmt.Errorf("get assignment: %w", err)
	}
	if assignment.Status != model.AssignmentStatusPublished {
		return nil, ErrAssignmentNotPublished
	}

	bank, err := s.loadBank(ctx, assignmentID)
	if err != nil {
		return nil, fmt.Errorf("load question bank: %w", err)
	}

	attemptNumber, err := s.resolveAttemptNumber(ctx, assignmentID, studentID)
	if err != nil {
		return nil, fmt.Errorf("resolve attempt: %w", err)
	}

	seed := shuffle.DeriveSeed(studentID, assignmentID.String())
	result, err := shuffle.Randomize(bank, shuffle.RandomizeConfig{
		Strategy:         shuffle.Strategy(assignment.Strategy),
		Seed:             seed,
		ShuffleQuestions: assignment.AntiCheat.ShuffleQuestions,
		ShuffleOptions:   assignment.AntiCheat.ShuffleOptions,
	})
	if err != nil {
		return nil, fmt.Errorf("randomize: %w", err)
	}

	// Cache the seed so audits and reconnects skip the derivation path.
	seedKey := config.CacheKey.AttemptSeedKey(assignmentID.String(), studentID, attemptNumber)
	if err := s.rdb.Set(ctx, seedKey, seed, 0).Err(); err != nil {
		log.Warn().Err(err).Str("key", seedKey).Msg("Failed to cache attempt seed")
	}

	s.enqueueAttempt(ctx, &model.AttemptRecord{
		AssignmentID:     assignmentID,
		StudentID:        studentID,
		AttemptNumber:    attemptNumber,
		Seed:             seed,
		TimeLimitMinutes: assignment.TimeLimitMinutes,
		Status:           model.SessionStatusInProgress,
		StartedAt:        time.Now(),
	})

	return &PresentedPaper{
		AssignmentID:     assignmentID,
		Title:            assignment.Title,
		TimeLimitMinutes: assignment.TimeLimitMinutes,
		Strategy:         assignment.Strategy,
		AttemptNumber:    attemptNumber,
		Questions:        toStudentQuestions(result.Presented),
	}, nil
}

// RegenerateLayout rebuilds the exact layout a student saw, from the stored
// seed. This is the audit path: no attempt is queued and no cache is written.
func (s *PresentationService) RegenerateLayout(ctx context.Context, assignmentID uuid.UUID, studentID int) (*shuffle.Result, error) {
	assignment, err := s.assignmentRepo.GetByID(ctx, assignmentID)
	if err != nil {
		return nil, fmt.Errorf("get assignment: %w", err)
	}

	attempt, err := s.attemptRepo.GetLatest(ctx, assignmentID, studentID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNoAttempt
		}
		return nil, fmt.Errorf("get attempt: %w", err)
	}

	bank, err := s.loadBank(ctx, assignmentID)
	if err != nil {
		return nil, fmt.Errorf("load question bank: %w", err)
	}

	result, err := shuffle.Randomize(bank, shuffle.RandomizeConfig{
		Strategy:         shuffle.Strategy(assignment.Strategy),
		Seed:             attempt.Seed,
		ShuffleQuestions: assignment.AntiCheat.ShuffleQuestions,
		ShuffleOptions:   assignment.AntiCheat.ShuffleOptions,
	})
	if err != nil {
		return nil, fmt.Errorf("randomize: %w", err)
	}
	return &result, nil
}

// ConvertAnswers maps presented-label answers back to canonical labels for
// grading. Answers are keyed by question ID; any label that does not match a
// presented option fails the whole conversion.
func (s *PresentationService) ConvertAnswers(ctx context.Context, assignmentID uuid.UUID, studentID int, answers map[string][]string) (map[string][]string, error) {
	result, err := s.RegenerateLayout(ctx, assignmentID, studentID)
	if err != nil {
		return nil, err
	}

	byID := make(map[string]*model.PresentedQuestion, len(result.Presented))
	for i := range result.Presented {
		byID[result.Presented[i].ID.String()] = &result.Presented[i]
	}

	canonical := make(map[string][]string, len(answers))
	for questionID, labels := range answers {
		pq, ok := byID[questionID]
		if !ok {
			return nil, fmt.Errorf("question %s not in presented layout", questionID)
		}
		mapped, err := shuffle.ToCanonicalMulti(labels, pq.Presented)
		if err != nil {
			return nil, fmt.Errorf("question %s: %w", questionID, err)
		}
		canonical[questionID] = mapped
	}
	return canonical, nil
}

// AttemptState is the timer state for a student resuming an assignment.
type AttemptState struct {
	AssignmentID     uuid.UUID           `json:"assignment_id"`
	StudentID        int                 `json:"student_id"`
	AttemptNumber    int                 `json:"attempt_number"`
	Status           model.SessionStatus `json:"status"`
	RemainingSeconds float64             `json:"remaining_seconds"`
}

// GetAttemptState returns the remaining time for the student's latest attempt.
func (s *PresentationService) GetAttemptState(ctx context.Context, assignmentID uuid.UUID, studentID int) (*AttemptState, error) {
	attempt, err := s.attemptRepo.GetLatest(ctx, assignmentID, studentID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNoAttempt
		}
		return nil, fmt.Errorf("get attempt: %w", err)
	}

	endTime := attempt.StartedAt.Add(time.Duration(attempt.TimeLimitMinutes) * time.Minute)
	remaining := time.Until(endTime)
	if remaining < 0 {
		remaining = 0
	}

	return &AttemptState{
		AssignmentID:     assignmentID,
		StudentID:        studentID,
		AttemptNumber:    attempt.AttemptNumber,
		Status:           attempt.Status,
		RemainingSeconds: remaining.Seconds(),
	}, nil
}

// loadBank fetches the question bank, preferring the Redis cache. A cache miss
// falls back to PostgreSQL and self-heals the cache.
func (s *PresentationService) loadBank(ctx context.Context, assignmentID uuid.UUID) ([]model.Question, error) {
	bankKey := config.CacheKey.AssignmentBankKey(assignmentID.String())

	raw, err := s.rdb.Get(ctx, bankKey).Result()
	if err == nil {
		var bank []model.Question
		if jsonErr := json.Unmarshal([]byte(raw), &bank); jsonErr == nil {
			return bank, nil
		}
		// Corrupt cache entry: fall through to the DB and rewrite it.
	} else if err != redis.Nil {
		return nil, fmt.Errorf("redis error getting bank: %w", err)
	}

	bank, err := s.questionRepo.ListByAssignment(ctx, assignmentID)
	if err != nil {
		return nil, err
	}

	if data, jsonErr := json.Marshal(bank); jsonErr == nil {
		_ = s.rdb.Set(ctx, bankKey, data, 10*time.Minute)
	}
	return bank, nil
}

// resolveAttemptNumber returns the attempt the student is currently on:
// the latest open attempt, or one past the latest closed attempt.
func (s *PresentationService) resolveAttemptNumber(ctx context.Context, assignmentID uuid.UUID, studentID int) (int, error) {
	latest, err := s.attemptRepo.GetLatest(ctx, assignmentID, studentID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 1, nil
		}
		return 0, err
	}

	if latest.Status == model.SessionStatusInProgress || latest.Status == model.SessionStatusPaused {
		return latest.AttemptNumber, nil
	}
	return latest.AttemptNumber + 1, nil
}

func (s *PresentationService) enqueueAttempt(ctx context.Context, attempt *model.AttemptRecord) {
	raw, err := json.Marshal(attempt)
	if err != nil {
		log.Error().Err(err).Msg("Failed to marshal attempt payload")
		return
	}
	if err := s.rdb.RPush(ctx, config.WorkerKey.PersistAttemptsQueue, raw).Err(); err != nil {
		log.Error().Err(err).
			Int("student_id", attempt.StudentID).
			Str("assignment_id", attempt.AssignmentID.String()).
			Msg("Failed to enqueue attempt record")
	}
}
