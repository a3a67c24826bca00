package proctor

import (
	"github.com/examtrail/examtrail-backend/internal/model"
)

// Severity is the tier assigned to a telemetry event type.
type Severity string

const (
	SeverityInfo   Severity = "info"
	SeverityLow    Severity = "low"
	SeverityMedium Severity = "medium"
	SeverityHigh   Severity = "high"
)

// severityTable maps known event types to their tier. Anything absent
// defaults to low so new client event types degrade gracefully instead of
// breaking the pipeline.
var severityTable = map[string]Severity{
	// Session lifecycle markers.
	model.EventSessionStarted:    SeverityInfo,
	model.EventSessionResumed:    SeverityInfo,
	model.EventSessionCompleted:  SeverityInfo,
	model.EventSessionTerminated: SeverityInfo,
	model.EventAutoSaved:         SeverityInfo,

	// Active-cheating signals.
	model.EventFullscreenExit:     SeverityHigh,
	model.EventTabSwitch:          SeverityHigh,
	model.EventClipboardCopy:      SeverityHigh,
	model.EventClipboardPaste:     SeverityHigh,
	model.EventSuspiciousShortcut: SeverityHigh,
	model.EventSuspiciousBehavior: SeverityHigh,

	// Softer signals.
	model.EventSessionPaused:      SeverityMedium,
	model.EventGracePeriodGranted: SeverityMedium,
	model.EventWindowBlur:         SeverityMedium,
}

// SeverityOf classifies a telemetry event type. Pure lookup; unrecognized
// types are low, never an error.
func SeverityOf(eventType string) Severity {
	if sev, ok := severityTable[eventType]; ok {
		return sev
	}
	return SeverityLow
}
