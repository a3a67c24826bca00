package proctor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/examtrail/examtrail-backend/internal/model"
)

func TestFlagged(t *testing.T) {
	tests := []struct {
		name   string
		high   int
		medium int
		want   bool
	}{
		{"clean session", 0, 0, false},
		{"single high flags", 1, 0, true},
		{"two mediums pass", 0, 2, false},
		{"three mediums flag", 0, 3, true},
		{"combined threshold", 0, 3, true},
		{"high plus mediums", 1, 1, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sess := model.DerivedSession{HighCount: tt.high, MediumCount: tt.medium}
			assert.Equal(t, tt.want, Flagged(sess))
		})
	}
}

func TestEvaluateAndRank(t *testing.T) {
	sessions := []model.DerivedSession{
		{StudentID: 1, EventCount: 3, HighCount: 0, MediumCount: 0},
		{StudentID: 2, EventCount: 12, HighCount: 2, MediumCount: 1},
		{StudentID: 3, EventCount: 7, HighCount: 0, MediumCount: 3},
	}

	evaluated := Evaluate(sessions)
	require.Len(t, evaluated, 3)
	assert.False(t, evaluated[0].Flagged)
	assert.True(t, evaluated[1].Flagged)
	assert.True(t, evaluated[2].Flagged)

	ranked := Rank(evaluated)
	assert.Equal(t, 2, ranked[0].StudentID)
	assert.Equal(t, 3, ranked[1].StudentID)
	assert.Equal(t, 1, ranked[2].StudentID)
	// Rank must not mutate its input.
	assert.Equal(t, 1, evaluated[0].StudentID)
}

func TestEventTypeFrequency(t *testing.T) {
	events := []model.ExamEvent{
		{EventType: model.EventTabSwitch},
		{EventType: model.EventTabSwitch},
		{EventType: model.EventSessionStarted},
	}

	freq := EventTypeFrequency(events)
	assert.Equal(t, map[string]int{
		model.EventTabSwitch:      2,
		model.EventSessionStarted: 1,
	}, freq)
}
