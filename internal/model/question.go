package model

import (
	"github.com/google/uuid"
)

// QuestionType enumerates the supported answer formats.
type QuestionType string

const (
	QuestionTypeSingle    QuestionType = "SINGLE"
	QuestionTypeMulti     QuestionType = "MULTI"
	QuestionTypeTrueFalse QuestionType = "TRUE_FALSE"
)

// Difficulty is the authored (or inferred) difficulty tier of a question.
type Difficulty string

const (
	DifficultyEasy   Difficulty = "EASY"
	DifficultyMedium Difficulty = "MEDIUM"
	DifficultyHard   Difficulty = "HARD"
)

// Metadata carries optional authoring-time hints about a question.
// When absent it can be approximated with shuffle.InferMetadata, which is a
// clearly-labeled heuristic fallback, not ground truth.
type Metadata struct {
	Difficulty    Difficulty  `json:"difficulty"`
	Category      string      `json:"category"`
	Importance    int         `json:"importance"`     // 1-10
	EstimatedTime int         `json:"estimated_time"` // seconds
	Prerequisites []uuid.UUID `json:"prerequisites,omitempty"`
	Tags          []string    `json:"tags,omitempty"`
}

// Option is a single answer option. Label is the canonical letter assigned at
// authoring time; it never changes and is what the grading subsystem compares
// against IsCorrect.
type Option struct {
	ID        uuid.UUID `json:"id"`
	Label     string    `json:"label"`
	Content   string    `json:"content"`
	IsCorrect bool      `json:"is_correct"`
}

// Question represents a single authored exam question with its ordered options.
type Question struct {
	ID          uuid.UUID    `json:"id"`
	Content     string       `json:"content"`
	Type        QuestionType `json:"type"`
	Options     []Option     `json:"options"`
	Explanation string       `json:"explanation,omitempty"`
	Metadata    *Metadata    `json:"metadata,omitempty"`
}
