package shuffle

import (
	"strings"

	"github.com/examtrail/examtrail-backend/internal/model"
)

// Keyword tables for the metadata fallback. Matching is case-insensitive
// substring search over the question content.
var (
	hardKeywords   = []string{"prove", "derive", "justify", "analyze", "evaluate", "explain why"}
	mediumKeywords = []string{"calculate", "compare", "describe", "apply", "solve"}

	// Checked in order so inference stays deterministic when content matches
	// keywords from more than one category.
	categoryKeywords = []struct {
		category string
		keywords []string
	}{
		{"math", []string{"equation", "calculate", "number", "fraction", "graph", "sum"}},
		{"science", []string{"experiment", "cell", "energy", "chemical", "force", "organism"}},
		{"history", []string{"century", "war", "revolution", "empire", "treaty"}},
		{"reading", []string{"passage", "author", "paragraph", "sentence", "text"}},
	}
)

const (
	baseEstimatedTime = 30  // seconds, floor for any question
	maxEstimatedTime  = 300 // cap so a pasted essay prompt doesn't dominate variance
)

// InferMetadata approximates Metadata for a question authored without it.
// This is a heuristic fallback (keyword difficulty/category, length-based time
// estimate), never ground truth, and is only consulted when q.Metadata is nil.
func InferMetadata(q model.Question) model.Metadata {
	content := strings.ToLower(q.Content)

	return model.Metadata{
		Difficulty:    inferDifficulty(content),
		Category:      inferCategory(content),
		Importance:    5,
		EstimatedTime: inferEstimatedTime(q),
	}
}

// EffectiveMetadata returns the authored metadata when present, otherwise the
// heuristic inference.
func EffectiveMetadata(q model.Question) model.Metadata {
	if q.Metadata != nil {
		return *q.Metadata
	}
	return InferMetadata(q)
}

func inferDifficulty(content string) model.Difficulty {
	for _, kw := range hardKeywords {
		if strings.Contains(content, kw) {
			return model.DifficultyHard
		}
	}
	for _, kw := range mediumKeywords {
		if strings.Contains(content, kw) {
			return model.DifficultyMedium
		}
	}
	// Long stems tend to demand more work even without signal words.
	if len(content) > 400 {
		return model.DifficultyMedium
	}
	return model.DifficultyEasy
}

func inferCategory(content string) string {
	for _, entry := range categoryKeywords {
		for _, kw := range entry.keywords {
			if strings.Contains(content, kw) {
				return entry.category
			}
		}
	}
	return "general"
}

// inferEstimatedTime scales with content length: roughly one extra second per
// ten characters of stem plus options, clamped to a sane range.
func inferEstimatedTime(q model.Question) int {
	length := len(q.Content)
	for _, opt := range q.Options {
		length += len(opt.Content)
	}

	estimate := baseEstimatedTime + length/10
	if estimate > maxEstimatedTime {
		estimate = maxEstimatedTime
	}
	return estimate
}
