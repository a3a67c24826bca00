package service

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/examtrail/examtrail-backend/internal/config"
	"github.com/examtrail/examtrail-backend/internal/model"
	"github.com/examtrail/examtrail-backend/internal/proctor"
	"github.com/examtrail/examtrail-backend/internal/repository"
)

// ProctorService recomputes live session state from the raw event log. Nothing
// here is a system of record: every snapshot is a pure function of the events
// and the wall clock.
type ProctorService struct {
	eventRepo   *repository.EventRepository
	attemptRepo *repository.AttemptRepository
	rdb         *redis.Client
}

// NewProctorService creates a new ProctorService.
func NewProctorService(
	eventRepo *repository.EventRepository,
	attemptRepo *repository.AttemptRepository,
	rdb *redis.Client,
) *ProctorService {
	return &ProctorService{
		eventRepo:   eventRepo,
		attemptRepo: attemptRepo,
		rdb:         rdb,
	}
}

// Snapshot is the full dashboard state for one assignment.
type Snapshot struct {
	AssignmentID uuid.UUID                `json:"assignment_id"`
	GeneratedAt  time.Time                `json:"generated_at"`
	Sessions     []proctor.FlaggedSession `json:"sessions"`
	FlaggedCount int                      `json:"flagged_count"`
	OnlineCount  int                      `json:"online_count"`
	EventTypes   map[string]int           `json:"event_types"`
	AttemptCount int                      `json:"attempt_count"`
}

// GetSnapshot builds the dashboard state for an assignment. Events and
// attempts are fetched concurrently to keep refresh latency low.
func (s *ProctorService) GetSnapshot(ctx context.Context, assignmentID uuid.UUID) (*Snapshot, error) {
	var (
		events     []model.ExamEvent
		attempts   []model.AttemptRecord
		eventErr   error
		attemptErr error
		wg         sync.WaitGroup
	)

	wg.Add(1)
	go func() {
		defer wg.Done()
		events, eventErr = s.eventRepo.ListByAssignment(ctx, assignmentID)
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		attempts, attemptErr = s.attemptRepo.ListByAssignment(ctx, assignmentID)
	}()

	wg.Wait()

	// Events are critical; attempts are best-effort context.
	if eventErr != nil {
		return nil, eventErr
	}

	now := time.Now()
	sessions, err := proctor.DeriveSessions(events, now)
	if err != nil {
		return nil, err
	}

	ranked := proctor.Rank(proctor.Evaluate(sessions))

	snapshot := &Snapshot{
		AssignmentID: assignmentID,
		GeneratedAt:  now,
		Sessions:     ranked,
		EventTypes:   proctor.EventTypeFrequency(events),
	}
	for _, sess := range ranked {
		if sess.Flagged {
			snapshot.FlaggedCount++
		}
		if sess.IsOnline {
			snapshot.OnlineCount++
		}
	}
	if attemptErr == nil {
		snapshot.AttemptCount = len(attempts)
	}

	return snapshot, nil
}

// StudentReport is the per-student drill-down for review after an exam.
type StudentReport struct {
	AssignmentID uuid.UUID                `json:"assignment_id"`
	StudentID    int                      `json:"student_id"`
	Sessions     []proctor.FlaggedSession `json:"sessions"`
	EventTypes   map[string]int           `json:"event_types"`
	Events       []model.ExamEvent        `json:"events"`
}

// GetStudentReport derives every session a single student produced for an
// assignment, with the raw event trail attached.
func (s *ProctorService) GetStudentReport(ctx context.Context, assignmentID uuid.UUID, studentID int) (*StudentReport, error) {
	events, err := s.eventRepo.ListByStudent(ctx, assignmentID, studentID)
	if err != nil {
		return nil, err
	}

	sessions, err := proctor.DeriveSessions(events, time.Now())
	if err != nil {
		return nil, err
	}

	return &StudentReport{
		AssignmentID: assignmentID,
		StudentID:    studentID,
		Sessions:     proctor.Evaluate(sessions),
		EventTypes:   proctor.EventTypeFrequency(events),
		Events:       events,
	}, nil
}

// Subscribe opens a pub/sub subscription on the assignment's proctor channel.
// The caller owns the subscription and must close it.
func (s *ProctorService) Subscribe(ctx context.Context, assignmentID uuid.UUID) *redis.PubSub {
	return s.rdb.Subscribe(ctx, config.CacheKey.ProctorChannel(assignmentID.String()))
}
