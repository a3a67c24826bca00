package proctor

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/examtrail/examtrail-backend/internal/model"
)

var (
	testAssignment = uuid.New()
	baseTime       = time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
)

func event(studentID int, attempt *int, eventType string, offset time.Duration) model.ExamEvent {
	return model.ExamEvent{
		ID:           uuid.New(),
		AssignmentID: testAssignment,
		StudentID:    studentID,
		Attempt:      attempt,
		EventType:    eventType,
		CreatedAt:    baseTime.Add(offset),
	}
}

func attempt(n int) *int { return &n }

func TestDeriveSessions_PausedScenario(t *testing.T) {
	events := []model.ExamEvent{
		event(1, attempt(1), model.EventSessionStarted, 0),
		event(1, attempt(1), model.EventTabSwitch, time.Minute),
		event(1, attempt(1), model.EventSessionPaused, 2*time.Minute),
	}

	sessions, err := DeriveSessions(events, baseTime.Add(3*time.Minute))
	require.NoError(t, err)
	require.Len(t, sessions, 1)

	sess := sessions[0]
	assert.Equal(t, model.SessionStatusPaused, sess.Status)
	assert.Equal(t, 1, sess.HighCount)
	assert.Equal(t, 1, sess.MediumCount) // SESSION_PAUSED is medium
	assert.Equal(t, 3, sess.EventCount)
	assert.Equal(t, baseTime, sess.FirstEventAt)
	assert.Equal(t, baseTime.Add(2*time.Minute), sess.LastEventAt)
	assert.True(t, Flagged(sess), "one high-severity event is enough to flag")
}

func TestDeriveSessions_CompletedOverridesPaused(t *testing.T) {
	events := []model.ExamEvent{
		event(1, attempt(1), model.EventSessionStarted, 0),
		event(1, attempt(1), model.EventTabSwitch, time.Minute),
		event(1, attempt(1), model.EventSessionPaused, 2*time.Minute),
		event(1, attempt(1), model.EventSessionResumed, 3*time.Minute),
		event(1, attempt(1), model.EventSessionCompleted, 4*time.Minute),
	}

	sessions, err := DeriveSessions(events, baseTime.Add(5*time.Minute))
	require.NoError(t, err)
	require.Len(t, sessions, 1)

	sess := sessions[0]
	assert.Equal(t, model.SessionStatusCompleted, sess.Status)
	assert.True(t, sess.Flags.HasPaused, "pause flag stays set after completion")
}

func TestDeriveSessions_TerminatedWinsOverCompleted(t *testing.T) {
	events := []model.ExamEvent{
		event(1, attempt(1), model.EventSessionCompleted, 0),
		event(1, attempt(1), model.EventSessionTerminated, time.Minute),
	}

	sessions, err := DeriveSessions(events, baseTime.Add(2*time.Minute))
	require.NoError(t, err)
	assert.Equal(t, model.SessionStatusTerminated, sessions[0].Status)
}

func TestDeriveSessions_OutOfOrderFoldIsIdentical(t *testing.T) {
	ordered := []model.ExamEvent{
		event(1, attempt(1), model.EventSessionStarted, 0),
		event(1, attempt(1), model.EventWindowBlur, time.Minute),
		event(1, attempt(1), model.EventSessionPaused, 2*time.Minute),
		event(1, attempt(1), model.EventSessionResumed, 3*time.Minute),
	}
	scrambled := []model.ExamEvent{ordered[2], ordered[0], ordered[3], ordered[1]}

	now := baseTime.Add(10 * time.Minute)
	fromOrdered, err := DeriveSessions(ordered, now)
	require.NoError(t, err)
	fromScrambled, err := DeriveSessions(scrambled, now)
	require.NoError(t, err)

	assert.Equal(t, fromOrdered, fromScrambled)
}

func TestDeriveSessions_GroupsByStudentAndAttempt(t *testing.T) {
	events := []model.ExamEvent{
		event(1, attempt(1), model.EventSessionStarted, 0),
		event(1, attempt(2), model.EventSessionStarted, time.Hour),
		event(2, attempt(1), model.EventSessionStarted, 0),
		event(1, nil, model.EventTabSwitch, time.Minute), // nil attempt folds into attempt 1
	}

	sessions, err := DeriveSessions(events, baseTime.Add(2*time.Hour))
	require.NoError(t, err)
	require.Len(t, sessions, 3)

	byKey := map[[2]int]model.DerivedSession{}
	for _, s := range sessions {
		byKey[[2]int{s.StudentID, s.Attempt}] = s
	}

	assert.Equal(t, 2, byKey[[2]int{1, 1}].EventCount)
	assert.Equal(t, 1, byKey[[2]int{1, 1}].HighCount)
	assert.Equal(t, 1, byKey[[2]int{1, 2}].EventCount)
	assert.Equal(t, 1, byKey[[2]int{2, 1}].EventCount)
}

func TestDeriveSessions_IsOnlineWithinLivenessWindow(t *testing.T) {
	events := []model.ExamEvent{
		event(1, attempt(1), model.EventSessionStarted, 0),
	}

	online, err := DeriveSessions(events, baseTime.Add(LivenessWindow-time.Second))
	require.NoError(t, err)
	assert.True(t, online[0].IsOnline)

	offline, err := DeriveSessions(events, baseTime.Add(LivenessWindow))
	require.NoError(t, err)
	assert.False(t, offline[0].IsOnline)
}

func TestDeriveSessions_ZeroTimestampFailsFast(t *testing.T) {
	bad := model.ExamEvent{StudentID: 1, EventType: model.EventSessionStarted}

	_, err := DeriveSessions([]model.ExamEvent{bad}, baseTime)
	assert.Error(t, err)
}

func TestDeriveSessions_IdempotentOverSameSet(t *testing.T) {
	events := []model.ExamEvent{
		event(1, attempt(1), model.EventSessionStarted, 0),
		event(1, attempt(1), model.EventSessionTerminated, time.Minute),
		event(1, attempt(1), model.EventAutoSaved, 2*time.Minute),
	}

	now := baseTime.Add(5 * time.Minute)
	first, err := DeriveSessions(events, now)
	require.NoError(t, err)
	second, err := DeriveSessions(events, now)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	// A terminal marker observed once cannot be un-set by later folding.
	assert.Equal(t, model.SessionStatusTerminated, second[0].Status)
}

func TestDeriveSessions_Empty(t *testing.T) {
	sessions, err := DeriveSessions(nil, baseTime)
	require.NoError(t, err)
	assert.Empty(t, sessions)
}
