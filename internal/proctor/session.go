package proctor

import (
	"fmt"
	"sort"
	"time"

	"github.com/examtrail/examtrail-backend/internal/model"
)

// LivenessWindow is the maximum age of the last telemetry event for a session
// to still count as online. Tunable heuristic; see also the suspicion
// thresholds in suspicion.go.
const LivenessWindow = 2 * time.Minute

// defaultAttempt is what a nil attempt number folds into: telemetry from
// legacy clients that predate attempt numbering belongs to the first attempt.
const defaultAttempt = 1

type sessionKey struct {
	studentID int
	attempt   int
}

// DeriveSessions folds a raw event list into one DerivedSession per
// (student, attempt) group. The input may arrive in any order; events are
// sorted by timestamp before folding, so the projection is idempotent over
// the same event set.
//
// A zero timestamp is a hard error: folding mis-ordered events would silently
// corrupt derived status, so malformed input must surface to the operator.
func DeriveSessions(events []model.ExamEvent, now time.Time) ([]model.DerivedSession, error) {
	for i := range events {
		if events[i].CreatedAt.IsZero() {
			return nil, fmt.Errorf("event %d (%s) has no timestamp", i, events[i].EventType)
		}
	}

	sorted := make([]model.ExamEvent, len(events))
	copy(sorted, events)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].CreatedAt.Before(sorted[j].CreatedAt)
	})

	var order []sessionKey
	grouped := map[sessionKey]*model.DerivedSession{}

	for _, ev := range sorted {
		key := sessionKey{studentID: ev.StudentID, attempt: defaultAttempt}
		if ev.Attempt != nil {
			key.attempt = *ev.Attempt
		}

		sess, ok := grouped[key]
		if !ok {
			sess = &model.DerivedSession{
				StudentID:    key.studentID,
				Attempt:      key.attempt,
				FirstEventAt: ev.CreatedAt,
				LastEventAt:  ev.CreatedAt,
			}
			grouped[key] = sess
			order = append(order, key)
		}

		foldEvent(sess, ev)
	}

	sessions := make([]model.DerivedSession, 0, len(order))
	for _, key := range order {
		sess := grouped[key]
		sess.Status = deriveStatus(sess.Flags)
		sess.IsOnline = now.Sub(sess.LastEventAt) < LivenessWindow
		sessions = append(sessions, *sess)
	}
	return sessions, nil
}

// foldEvent applies one event to a session accumulator. Lifecycle flags are
// monotonic: they are only ever set, never cleared.
func foldEvent(sess *model.DerivedSession, ev model.ExamEvent) {
	if ev.CreatedAt.Before(sess.FirstEventAt) {
		sess.FirstEventAt = ev.CreatedAt
	}
	if ev.CreatedAt.After(sess.LastEventAt) {
		sess.LastEventAt = ev.CreatedAt
	}

	sess.EventCount++
	switch SeverityOf(ev.EventType) {
	case SeverityHigh:
		sess.HighCount++
	case SeverityMedium:
		sess.MediumCount++
	}

	switch ev.EventType {
	case model.EventSessionPaused:
		sess.Flags.HasPaused = true
	case model.EventSessionResumed:
		sess.Flags.HasResumed = true
	case model.EventSessionCompleted:
		sess.Flags.HasCompleted = true
	case model.EventSessionTerminated:
		sess.Flags.HasTerminated = true
	}
}

// deriveStatus picks the session status by priority: terminal markers win over
// everything, and PAUSED only applies while no resume has been seen.
func deriveStatus(flags model.SessionFlags) model.SessionStatus {
	switch {
	case flags.HasTerminated:
		return model.SessionStatusTerminated
	case flags.HasCompleted:
		return model.SessionStatusCompleted
	case flags.HasPaused && !flags.HasResumed:
		return model.SessionStatusPaused
	default:
		return model.SessionStatusInProgress
	}
}
