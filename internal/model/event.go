package model

import (
	"time"

	"github.com/google/uuid"
)

// Well-known telemetry event types. The stream is forward-compatible: clients
// may send types not listed here and the classifier degrades them to low
// severity instead of rejecting them.
const (
	EventSessionStarted     = "SESSION_STARTED"
	EventSessionResumed     = "SESSION_RESUMED"
	EventSessionPaused      = "SESSION_PAUSED"
	EventSessionCompleted   = "SESSION_COMPLETED"
	EventSessionTerminated  = "SESSION_TERMINATED"
	EventAutoSaved          = "AUTO_SAVED"
	EventFullscreenExit     = "FULLSCREEN_EXIT"
	EventTabSwitch          = "TAB_SWITCH"
	EventClipboardCopy      = "CLIPBOARD_COPY"
	EventClipboardPaste     = "CLIPBOARD_PASTE"
	EventSuspiciousShortcut = "SUSPICIOUS_SHORTCUT"
	EventSuspiciousBehavior = "SUSPICIOUS_BEHAVIOR"
	EventWindowBlur         = "WINDOW_BLUR"
	EventGracePeriodGranted = "GRACE_PERIOD_GRANTED"
)

// ExamEvent is a single raw proctoring telemetry event as delivered by the
// client. Attempt is nullable: legacy clients omit it and the aggregator
// normalizes to the first attempt.
type ExamEvent struct {
	ID           uuid.UUID         `json:"id"`
	AssignmentID uuid.UUID         `json:"assignment_id"`
	StudentID    int               `json:"student_id"`
	Attempt      *int              `json:"attempt,omitempty"`
	EventType    string            `json:"event_type"`
	CreatedAt    time.Time         `json:"created_at"`
	Metadata     map[string]string `json:"metadata,omitempty"`
}

// SessionStatus is the derived lifecycle state of a proctoring session.
type SessionStatus string

const (
	SessionStatusInProgress SessionStatus = "IN_PROGRESS"
	SessionStatusPaused     SessionStatus = "PAUSED"
	SessionStatusCompleted  SessionStatus = "COMPLETED"
	SessionStatusTerminated SessionStatus = "TERMINATED"
)

// SessionFlags are monotonic lifecycle markers: once set by a fold they are
// never cleared by later events.
type SessionFlags struct {
	HasPaused     bool `json:"has_paused"`
	HasResumed    bool `json:"has_resumed"`
	HasCompleted  bool `json:"has_completed"`
	HasTerminated bool `json:"has_terminated"`
}

// DerivedSession is the pure projection of one (student, attempt) event group.
// It is recomputed from the full event log on every dashboard refresh and is
// never a system of record.
type DerivedSession struct {
	StudentID    int           `json:"student_id"`
	Attempt      int           `json:"attempt"`
	FirstEventAt time.Time     `json:"first_event_at"`
	LastEventAt  time.Time     `json:"last_event_at"`
	EventCount   int           `json:"event_count"`
	HighCount    int           `json:"high_count"`
	MediumCount  int           `json:"medium_count"`
	Flags        SessionFlags  `json:"flags"`
	Status       SessionStatus `json:"status"`
	IsOnline     bool          `json:"is_online"`
}

// IngestEventRequest is one telemetry event in an ingest batch. CreatedAt is
// bound as RFC3339; a malformed timestamp fails the whole request rather than
// being silently replaced with "now".
type IngestEventRequest struct {
	Attempt   *int              `json:"attempt" binding:"omitempty,min=1"`
	EventType string            `json:"event_type" binding:"required,min=1,max=64"`
	CreatedAt time.Time         `json:"created_at" binding:"required"`
	Metadata  map[string]string `json:"metadata"`
}

// IngestEventsRequest is the payload for the batch telemetry endpoint.
type IngestEventsRequest struct {
	Events []IngestEventRequest `json:"events" binding:"required,min=1,max=200,dive"`
}
