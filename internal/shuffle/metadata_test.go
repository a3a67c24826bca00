package shuffle

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/examtrail/examtrail-backend/internal/model"
)

func TestInferMetadata_DifficultyKeywords(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    model.Difficulty
	}{
		{"prove is hard", "Prove that the sum of two even numbers is even", model.DifficultyHard},
		{"analyze is hard", "Analyze the passage below", model.DifficultyHard},
		{"calculate is medium", "Calculate the area of the triangle", model.DifficultyMedium},
		{"describe is medium", "Describe the water cycle", model.DifficultyMedium},
		{"plain is easy", "What color is the sky?", model.DifficultyEasy},
		{"long stem is medium", "Pick one. " + strings.Repeat("context ", 60), model.DifficultyMedium},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			meta := InferMetadata(model.Question{Content: tt.content})
			assert.Equal(t, tt.want, meta.Difficulty)
		})
	}
}

func TestInferMetadata_CategoryKeywords(t *testing.T) {
	tests := []struct {
		content string
		want    string
	}{
		{"Solve the equation x + 2 = 5", "math"},
		{"Which organelle stores energy in the cell?", "science"},
		{"What ended the war in 1918?", "history"},
		{"What does the author imply in the passage?", "reading"},
		{"Pick your favorite", "general"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			meta := InferMetadata(model.Question{Content: tt.content})
			assert.Equal(t, tt.want, meta.Category)
		})
	}
}

func TestInferMetadata_TimeScalesWithLengthAndIsClamped(t *testing.T) {
	short := InferMetadata(model.Question{Content: "2+2?"})
	long := InferMetadata(model.Question{Content: strings.Repeat("word ", 200)})
	huge := InferMetadata(model.Question{Content: strings.Repeat("word ", 5000)})

	assert.GreaterOrEqual(t, short.EstimatedTime, baseEstimatedTime)
	assert.Greater(t, long.EstimatedTime, short.EstimatedTime)
	assert.Equal(t, maxEstimatedTime, huge.EstimatedTime)
}

func TestEffectiveMetadata_PrefersAuthored(t *testing.T) {
	authored := &model.Metadata{
		Difficulty:    model.DifficultyHard,
		Category:      "geometry",
		Importance:    9,
		EstimatedTime: 120,
	}
	q := model.Question{Content: "What color is the sky?", Metadata: authored}

	assert.Equal(t, *authored, EffectiveMetadata(q))
}
