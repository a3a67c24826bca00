package proctor

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/examtrail/examtrail-backend/internal/model"
)

func TestSeverityOf(t *testing.T) {
	tests := []struct {
		eventType string
		want      Severity
	}{
		{model.EventSessionStarted, SeverityInfo},
		{model.EventSessionResumed, SeverityInfo},
		{model.EventAutoSaved, SeverityInfo},
		{model.EventFullscreenExit, SeverityHigh},
		{model.EventTabSwitch, SeverityHigh},
		{model.EventClipboardCopy, SeverityHigh},
		{model.EventClipboardPaste, SeverityHigh},
		{model.EventSuspiciousShortcut, SeverityHigh},
		{model.EventSuspiciousBehavior, SeverityHigh},
		{model.EventSessionPaused, SeverityMedium},
		{model.EventGracePeriodGranted, SeverityMedium},
		{model.EventWindowBlur, SeverityMedium},
		{"SOME_NEW_TYPE", SeverityLow},
		{"", SeverityLow},
	}

	for _, tt := range tests {
		t.Run(tt.eventType, func(t *testing.T) {
			assert.Equal(t, tt.want, SeverityOf(tt.eventType))
		})
	}
}
