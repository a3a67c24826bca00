package shuffle

import (
	"fmt"
	"reflect"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/examtrail/examtrail-backend/internal/model"
)

func bankQuestion(content string, optionCount int) model.Question {
	q := model.Question{
		ID:      uuid.New(),
		Content: content,
		Type:    model.QuestionTypeSingle,
	}
	for i := 0; i < optionCount; i++ {
		q.Options = append(q.Options, model.Option{
			ID:        uuid.New(),
			Label:     string(rune('A' + i)),
			Content:   fmt.Sprintf("option %d", i+1),
			IsCorrect: i == 0,
		})
	}
	return q
}

func testBank(questions, optionsPer int) []model.Question {
	bank := make([]model.Question, questions)
	for i := range bank {
		bank[i] = bankQuestion(fmt.Sprintf("question %d", i+1), optionsPer)
	}
	return bank
}

func shuffleAll() model.AntiCheatConfig {
	return model.AntiCheatConfig{ShuffleQuestions: true, ShuffleOptions: true}
}

func questionIDs(presented []model.PresentedQuestion) []uuid.UUID {
	ids := make([]uuid.UUID, len(presented))
	for i, pq := range presented {
		ids[i] = pq.Question.ID
	}
	return ids
}

func TestPresentExam_Bijection(t *testing.T) {
	bank := testBank(10, 4)

	presented := PresentExam(bank, 42, "assignment-1", shuffleAll())

	require.Len(t, presented, len(bank))
	assert.ElementsMatch(t, questionIDs(presented), func() []uuid.UUID {
		ids := make([]uuid.UUID, len(bank))
		for i, q := range bank {
			ids[i] = q.ID
		}
		return ids
	}())

	byID := make(map[uuid.UUID]model.Question, len(bank))
	for _, q := range bank {
		byID[q.ID] = q
	}
	for _, pq := range presented {
		original := byID[pq.Question.ID]
		var originalOptIDs, presentedOptIDs []uuid.UUID
		for _, opt := range original.Options {
			originalOptIDs = append(originalOptIDs, opt.ID)
		}
		for _, opt := range pq.Presented {
			presentedOptIDs = append(presentedOptIDs, opt.ID)
		}
		assert.ElementsMatch(t, originalOptIDs, presentedOptIDs)
	}
}

func TestPresentExam_Determinism(t *testing.T) {
	bank := testBank(8, 5)

	first := PresentExam(bank, 7, "midterm", shuffleAll())
	second := PresentExam(bank, 7, "midterm", shuffleAll())

	assert.True(t, reflect.DeepEqual(first, second), "same identifiers must yield identical layouts")
}

func TestPresentExam_OriginalIndexRecorded(t *testing.T) {
	bank := testBank(6, 3)

	presented := PresentExam(bank, 3, "quiz", shuffleAll())

	for _, pq := range presented {
		assert.Equal(t, bank[pq.OriginalIndex].ID, pq.Question.ID)
	}
}

func TestPresentExam_ConfigOffKeepsAuthoringOrder(t *testing.T) {
	bank := testBank(6, 4)

	presented := PresentExam(bank, 9, "final", model.AntiCheatConfig{})

	for i, pq := range presented {
		assert.Equal(t, bank[i].ID, pq.Question.ID, "question order must match authoring order")
		assert.Equal(t, i, pq.OriginalIndex)
		for j, opt := range pq.Presented {
			assert.Equal(t, bank[i].Options[j].ID, opt.ID, "option order must match authoring order")
			// Presented labels are still freshly assigned.
			assert.Equal(t, presentedLabel(j), opt.PresentedLabel)
		}
	}
}

func TestPresentExam_PresentedLabelsSequential(t *testing.T) {
	bank := testBank(3, 5)

	presented := PresentExam(bank, 11, "labels", shuffleAll())

	for _, pq := range presented {
		for i, opt := range pq.Presented {
			assert.Equal(t, string(rune('A'+i)), opt.PresentedLabel)
			assert.Equal(t, opt.Option.Label, opt.CanonicalLabel, "canonical label never changes")
		}
	}
}

func TestPresentExam_EmptyAndZeroOptionEdges(t *testing.T) {
	assert.Empty(t, PresentExam(nil, 1, "empty", shuffleAll()))

	noOptions := []model.Question{bankQuestion("essay prompt", 0)}
	presented := PresentExam(noOptions, 1, "essay", shuffleAll())
	require.Len(t, presented, 1)
	assert.Empty(t, presented[0].Presented)
}

func TestPresentExam_DistinctStudentsDiverge(t *testing.T) {
	// Not a strict guarantee for tiny inputs, but with 6 questions x 4
	// options two students colliding on every ordering should be
	// vanishingly rare across 20 sampled pairs.
	bank := testBank(6, 4)

	diverged := 0
	for s := 0; s < 20; s++ {
		a := PresentExam(bank, 1000+s, "diversity", shuffleAll())
		b := PresentExam(bank, 2000+s, "diversity", shuffleAll())
		if !reflect.DeepEqual(questionIDs(a), questionIDs(b)) {
			diverged++
			continue
		}
		for i := range a {
			if !reflect.DeepEqual(a[i].Presented, b[i].Presented) {
				diverged++
				break
			}
		}
	}

	assert.Greater(t, diverged, 15, "distinct students should almost always see different layouts")
}

func TestLabelConversion_RoundTrip(t *testing.T) {
	bank := testBank(4, 4)

	presented := PresentExam(bank, 5, "roundtrip", shuffleAll())

	for _, pq := range presented {
		for _, opt := range pq.Presented {
			shown, err := ToPresented(opt.CanonicalLabel, pq.Presented)
			require.NoError(t, err)
			back, err := ToCanonical(shown, pq.Presented)
			require.NoError(t, err)
			assert.Equal(t, opt.CanonicalLabel, back)
		}
	}
}

func TestLabelConversion_UnknownLabelIsError(t *testing.T) {
	presented := PresentExam(testBank(1, 3), 2, "missing", shuffleAll())

	_, err := ToCanonical("Z", presented[0].Presented)
	assert.ErrorIs(t, err, ErrUnknownLabel)

	_, err = ToPresented("Z", presented[0].Presented)
	assert.ErrorIs(t, err, ErrUnknownLabel)

	_, err = ToCanonicalMulti([]string{"A", "Z"}, presented[0].Presented)
	assert.ErrorIs(t, err, ErrUnknownLabel)
}

func TestLabelConversion_MultiElementWise(t *testing.T) {
	presented := PresentExam(testBank(1, 4), 8, "multi", shuffleAll())
	opts := presented[0].Presented

	canonical := []string{opts[0].CanonicalLabel, opts[2].CanonicalLabel}
	shown, err := ToPresentedMulti(canonical, opts)
	require.NoError(t, err)

	back, err := ToCanonicalMulti(shown, opts)
	require.NoError(t, err)
	assert.Equal(t, canonical, back)
}

func TestDeriveSeed_PureConcatenation(t *testing.T) {
	assert.Equal(t, "42-exam-9", DeriveSeed(42, "exam-9"))
}
