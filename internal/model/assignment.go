package model

import (
	"time"

	"github.com/google/uuid"
)

// AssignmentStatus enumerates assignment lifecycle states.
type AssignmentStatus string

const (
	AssignmentStatusDraft     AssignmentStatus = "DRAFT"
	AssignmentStatusPublished AssignmentStatus = "PUBLISHED"
	AssignmentStatusClosed    AssignmentStatus = "CLOSED"
)

// Assignment is the slice of assignment settings this service needs: the
// randomization strategy and anti-cheat switches. Authoring CRUD is owned by
// the main LMS backend.
type Assignment struct {
	ID               uuid.UUID        `json:"id"`
	Title            string           `json:"title"`
	Status           AssignmentStatus `json:"status"`
	TimeLimitMinutes int              `json:"time_limit_minutes"`
	Strategy         string           `json:"strategy"`
	AntiCheat        AntiCheatConfig  `json:"anti_cheat"`
	CreatedAt        time.Time        `json:"created_at"`
}

// AttemptRecord is the persisted audit trail for one attempt: everything an
// auditor needs to regenerate the exact presented layout later. The layout
// itself is never stored, only the seed-deriving identifiers.
type AttemptRecord struct {
	ID               uuid.UUID     `json:"id"`
	AssignmentID     uuid.UUID     `json:"assignment_id"`
	StudentID        int           `json:"student_id"`
	AttemptNumber    int           `json:"attempt_number"`
	Seed             string        `json:"seed"`
	TimeLimitMinutes int           `json:"time_limit_minutes"`
	Status           SessionStatus `json:"status"`
	StartedAt        time.Time     `json:"started_at"`
	EndedAt          *time.Time    `json:"ended_at,omitempty"`
}

// ConvertAnswersRequest asks for presented-label answers to be mapped back to
// canonical labels for grading. Answers is keyed by question ID; MULTI answers
// carry multiple labels.
type ConvertAnswersRequest struct {
	StudentID int                 `json:"student_id" binding:"required,min=1"`
	Answers   map[string][]string `json:"answers" binding:"required,min=1"`
}
