package shuffle

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/examtrail/examtrail-backend/internal/model"
)

// ErrUnknownLabel is returned when a label lookup does not match any option in
// the presented question. This is a hard error: silently passing the label
// through would let a mis-mapped answer reach grading unnoticed.
var ErrUnknownLabel = errors.New("label not found in presented options")

// DeriveSeed builds the stable per-attempt seed from the two identifiers
// alone. No time component: the same student always reconstructs the same
// layout, and an auditor can regenerate it from the attempt record.
func DeriveSeed(studentID int, assignmentID string) string {
	return strconv.Itoa(studentID) + "-" + assignmentID
}

// questionSubSeed derives the option-shuffle seed for the question at the
// given position in the already-decided presentation order.
func questionSubSeed(seed string, positionIndex int) string {
	return seed + "-q" + strconv.Itoa(positionIndex)
}

// PresentExam computes the per-student presented layout for one attempt.
//
// The result is a bijection over the input: the multiset of question IDs (and
// per question, option IDs) is preserved exactly. Identical inputs always
// produce identical layouts, across calls and process restarts.
func PresentExam(questions []model.Question, studentID int, assignmentID string, cfg model.AntiCheatConfig) []model.PresentedQuestion {
	return PresentExamWithSeed(questions, DeriveSeed(studentID, assignmentID), cfg)
}

// PresentExamWithSeed is PresentExam with an explicit seed, used by the audit
// path to regenerate a layout from a persisted attempt record.
func PresentExamWithSeed(questions []model.Question, seed string, cfg model.AntiCheatConfig) []model.PresentedQuestion {
	if len(questions) == 0 {
		return []model.PresentedQuestion{}
	}

	// Track authoring positions before any reordering.
	indexed := make([]model.PresentedQuestion, len(questions))
	for i, q := range questions {
		indexed[i] = model.PresentedQuestion{Question: q, OriginalIndex: i}
	}

	if cfg.ShuffleQuestions {
		indexed = Permute(NewGenerator(seed), indexed)
	}

	for pos := range indexed {
		indexed[pos].Presented = presentOptions(indexed[pos].Options, questionSubSeed(seed, pos), cfg.ShuffleOptions)
	}

	return indexed
}

// presentOptions orders one question's options and reassigns presented labels
// sequentially in the final order. A zero-option question shuffles to itself.
func presentOptions(options []model.Option, subSeed string, shuffleOptions bool) []model.PresentedOption {
	ordered := options
	if shuffleOptions {
		ordered = Permute(NewGenerator(subSeed), options)
	}

	presented := make([]model.PresentedOption, len(ordered))
	for i, opt := range ordered {
		presented[i] = model.PresentedOption{
			Option:         opt,
			CanonicalLabel: opt.Label,
			PresentedLabel: presentedLabel(i),
		}
	}
	return presented
}

// presentedLabel returns the sequential letter for a presentation position:
// A..Z, then AA, AB, ... for unusually long option lists.
func presentedLabel(i int) string {
	if i < 26 {
		return string(rune('A' + i))
	}
	return string(rune('A'+i/26-1)) + string(rune('A'+i%26))
}

// ToCanonical maps a presented label back to the canonical label used for
// grading.
func ToCanonical(presentedLabel string, options []model.PresentedOption) (string, error) {
	for _, opt := range options {
		if opt.PresentedLabel == presentedLabel {
			return opt.CanonicalLabel, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownLabel, presentedLabel)
}

// ToPresented maps a canonical label to the label the student actually saw.
func ToPresented(canonicalLabel string, options []model.PresentedOption) (string, error) {
	for _, opt := range options {
		if opt.CanonicalLabel == canonicalLabel {
			return opt.PresentedLabel, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownLabel, canonicalLabel)
}

// ToCanonicalMulti converts a MULTI-type answer element-wise.
func ToCanonicalMulti(presentedLabels []string, options []model.PresentedOption) ([]string, error) {
	out := make([]string, len(presentedLabels))
	for i, label := range presentedLabels {
		canonical, err := ToCanonical(label, options)
		if err != nil {
			return nil, err
		}
		out[i] = canonical
	}
	return out, nil
}

// ToPresentedMulti converts a canonical MULTI-type answer element-wise.
func ToPresentedMulti(canonicalLabels []string, options []model.PresentedOption) ([]string, error) {
	out := make([]string, len(canonicalLabels))
	for i, label := range canonicalLabels {
		presented, err := ToPresented(label, options)
		if err != nil {
			return nil, err
		}
		out[i] = presented
	}
	return out, nil
}
