package proctor

import (
	"sort"

	"github.com/examtrail/examtrail-backend/internal/model"
)

// Suspicion thresholds. Hardcoded heuristics inherited from the original
// dashboard; named here so they can be tuned without touching the fold logic.
const (
	// HighSeverityThreshold flags a session on any high-severity event.
	HighSeverityThreshold = 1
	// CombinedSeverityThreshold flags a session once high+medium events
	// reach this count.
	CombinedSeverityThreshold = 3
)

// Flagged reports whether a session's event pattern warrants teacher review.
func Flagged(sess model.DerivedSession) bool {
	return sess.HighCount >= HighSeverityThreshold ||
		sess.HighCount+sess.MediumCount >= CombinedSeverityThreshold
}

// FlaggedSession pairs a derived session with its suspicion verdict for
// dashboard consumption.
type FlaggedSession struct {
	model.DerivedSession
	Flagged bool `json:"flagged"`
}

// Evaluate decorates every session with its suspicion verdict.
func Evaluate(sessions []model.DerivedSession) []FlaggedSession {
	out := make([]FlaggedSession, len(sessions))
	for i, sess := range sessions {
		out[i] = FlaggedSession{DerivedSession: sess, Flagged: Flagged(sess)}
	}
	return out
}

// Rank orders sessions by total event count, busiest first. Ties keep their
// existing relative order so repeated refreshes render stably.
func Rank(sessions []FlaggedSession) []FlaggedSession {
	ranked := make([]FlaggedSession, len(sessions))
	copy(ranked, sessions)
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].EventCount > ranked[j].EventCount
	})
	return ranked
}

// EventTypeFrequency builds the per-event-type occurrence table shown on the
// dashboard.
func EventTypeFrequency(events []model.ExamEvent) map[string]int {
	freq := make(map[string]int, len(events))
	for _, ev := range events {
		freq[ev.EventType]++
	}
	return freq
}
