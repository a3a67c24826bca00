package shuffle

import (
	"fmt"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/examtrail/examtrail-backend/internal/model"
)

func metaQuestion(difficulty model.Difficulty, category string, importance, estimatedTime int) model.Question {
	q := bankQuestion("stem", 4)
	q.Metadata = &model.Metadata{
		Difficulty:    difficulty,
		Category:      category,
		Importance:    importance,
		EstimatedTime: estimatedTime,
	}
	return q
}

func mixedBank() []model.Question {
	return []model.Question{
		metaQuestion(model.DifficultyHard, "math", 5, 90),
		metaQuestion(model.DifficultyEasy, "math", 5, 30),
		metaQuestion(model.DifficultyMedium, "science", 5, 60),
		metaQuestion(model.DifficultyEasy, "science", 5, 30),
		metaQuestion(model.DifficultyHard, "history", 5, 90),
		metaQuestion(model.DifficultyMedium, "history", 5, 60),
	}
}

func TestRandomize_UnknownStrategy(t *testing.T) {
	_, err := Randomize(mixedBank(), RandomizeConfig{Strategy: "REVERSE_ALPHABETICAL", Seed: "s"})
	assert.Error(t, err)
}

func TestRandomize_SimpleShuffleBijectionAndDeterminism(t *testing.T) {
	bank := mixedBank()
	cfg := RandomizeConfig{Strategy: StrategySimpleShuffle, Seed: "7-final", ShuffleQuestions: true, ShuffleOptions: true}

	first, err := Randomize(bank, cfg)
	require.NoError(t, err)
	second, err := Randomize(bank, cfg)
	require.NoError(t, err)

	assert.Equal(t, first.Presented, second.Presented)
	assert.ElementsMatch(t, questionIDs(first.Presented), questionIDs(second.Presented))
	require.Len(t, first.Presented, len(bank))
}

func TestRandomize_DifficultyBalancedInterleaves(t *testing.T) {
	bank := []model.Question{
		metaQuestion(model.DifficultyEasy, "a", 5, 30),
		metaQuestion(model.DifficultyEasy, "a", 5, 30),
		metaQuestion(model.DifficultyMedium, "a", 5, 60),
		metaQuestion(model.DifficultyMedium, "a", 5, 60),
		metaQuestion(model.DifficultyHard, "a", 5, 90),
		metaQuestion(model.DifficultyHard, "a", 5, 90),
	}

	result, err := Randomize(bank, RandomizeConfig{Strategy: StrategyDifficultyBalanced, Seed: "balance", ShuffleQuestions: true})
	require.NoError(t, err)

	var tiers []model.Difficulty
	for _, pq := range result.Presented {
		tiers = append(tiers, pq.Metadata.Difficulty)
	}
	want := []model.Difficulty{
		model.DifficultyEasy, model.DifficultyMedium, model.DifficultyHard,
		model.DifficultyEasy, model.DifficultyMedium, model.DifficultyHard,
	}
	assert.Equal(t, want, tiers)
}

func TestRandomize_DifficultyBalancedSkipsExhaustedTiers(t *testing.T) {
	bank := []model.Question{
		metaQuestion(model.DifficultyEasy, "a", 5, 30),
		metaQuestion(model.DifficultyEasy, "a", 5, 30),
		metaQuestion(model.DifficultyEasy, "a", 5, 30),
		metaQuestion(model.DifficultyHard, "a", 5, 90),
	}

	result, err := Randomize(bank, RandomizeConfig{Strategy: StrategyDifficultyBalanced, Seed: "skip", ShuffleQuestions: true})
	require.NoError(t, err)
	require.Len(t, result.Presented, 4)

	assert.Equal(t, model.DifficultyEasy, result.Presented[0].Metadata.Difficulty)
	assert.Equal(t, model.DifficultyHard, result.Presented[1].Metadata.Difficulty)
	assert.Equal(t, model.DifficultyEasy, result.Presented[2].Metadata.Difficulty)
	assert.Equal(t, model.DifficultyEasy, result.Presented[3].Metadata.Difficulty)
}

func TestRandomize_DifficultyBalancedNormalizesOffEnumTiers(t *testing.T) {
	// Metadata is authored JSONB, so difficulty values outside the enum reach
	// the strategy verbatim. They must fold into the hard tier, not vanish.
	bank := []model.Question{
		metaQuestion(model.DifficultyEasy, "a", 5, 30),
		metaQuestion(model.Difficulty("EXTREME"), "a", 5, 120),
		metaQuestion(model.Difficulty(""), "a", 5, 60),
		metaQuestion(model.DifficultyMedium, "a", 5, 60),
	}

	result, err := Randomize(bank, RandomizeConfig{Strategy: StrategyDifficultyBalanced, Seed: "off-enum", ShuffleQuestions: true})
	require.NoError(t, err)
	require.Len(t, result.Presented, len(bank))

	want := make([]uuid.UUID, len(bank))
	for i, q := range bank {
		want[i] = q.ID
	}
	assert.ElementsMatch(t, questionIDs(result.Presented), want)
}

func TestRandomize_ShuffleQuestionsOffKeepsAuthoredOrder(t *testing.T) {
	bank := mixedBank()
	strategies := []Strategy{
		StrategySimpleShuffle,
		StrategyDifficultyBalanced,
		StrategyCategoryGrouped,
		StrategyAdaptiveOrder,
		StrategyWeightedRandom,
	}

	for _, strategy := range strategies {
		result, err := Randomize(bank, RandomizeConfig{Strategy: strategy, Seed: "fixed", ShuffleOptions: true})
		require.NoError(t, err)
		require.Len(t, result.Presented, len(bank))

		for i, pq := range result.Presented {
			assert.Equal(t, bank[i].ID, pq.ID, "strategy %s moved question %d", strategy, i)
			assert.Equal(t, i, pq.OriginalIndex)
		}
	}
}

func TestRandomize_ShuffleQuestionsOffStillRejectsUnknownStrategy(t *testing.T) {
	_, err := Randomize(mixedBank(), RandomizeConfig{Strategy: "REVERSE_ALPHABETICAL", Seed: "s", ShuffleQuestions: false})
	assert.Error(t, err)
}

func TestRandomize_CategoryGroupedKeepsCategoriesContiguous(t *testing.T) {
	result, err := Randomize(mixedBank(), RandomizeConfig{Strategy: StrategyCategoryGrouped, Seed: "grouped", ShuffleQuestions: true})
	require.NoError(t, err)

	seen := map[string]bool{}
	var lastCategory string
	for _, pq := range result.Presented {
		cat := pq.Metadata.Category
		if cat != lastCategory {
			require.False(t, seen[cat], "category %s appears in two separate runs", cat)
			seen[cat] = true
			lastCategory = cat
		}
	}
}

func TestRandomize_AdaptiveOrderIsNonDecreasing(t *testing.T) {
	result, err := Randomize(mixedBank(), RandomizeConfig{Strategy: StrategyAdaptiveOrder, Seed: "adaptive", ShuffleQuestions: true})
	require.NoError(t, err)

	for i := 1; i < len(result.Presented); i++ {
		prev := tierRank(result.Presented[i-1].Question)
		cur := tierRank(result.Presented[i].Question)
		assert.LessOrEqual(t, prev, cur)
	}
}

func TestRandomize_WeightedRandomFavorsHighImportance(t *testing.T) {
	heavy := metaQuestion(model.DifficultyEasy, "a", 10, 30)
	light := metaQuestion(model.DifficultyEasy, "a", 10, 30)
	bank := []model.Question{heavy, light}

	weights := map[string]float64{
		heavy.ID.String(): 100,
		light.ID.String(): 1,
	}

	heavyFirst := 0
	const trials = 2000
	for i := 0; i < trials; i++ {
		result, err := Randomize(bank, RandomizeConfig{
			Strategy:         StrategyWeightedRandom,
			Seed:             fmt.Sprintf("trial-%d", i),
			ShuffleQuestions: true,
			CustomWeights:    weights,
		})
		require.NoError(t, err)
		if result.Presented[0].Question.ID == heavy.ID {
			heavyFirst++
		}
	}

	ratio := float64(heavyFirst) / trials
	// Expected frequency approaches 100/101 ≈ 0.990.
	assert.InDelta(t, 100.0/101.0, ratio, 0.02)
}

func TestRandomize_WeightedRandomIsBijection(t *testing.T) {
	bank := mixedBank()
	result, err := Randomize(bank, RandomizeConfig{Strategy: StrategyWeightedRandom, Seed: "wr", ShuffleQuestions: true})
	require.NoError(t, err)

	assert.ElementsMatch(t, questionIDs(result.Presented), func() []uuid.UUID {
		ids := make([]uuid.UUID, len(bank))
		for i, q := range bank {
			ids[i] = q.ID
		}
		return ids
	}())
}

func TestRandomize_Diagnostics(t *testing.T) {
	result, err := Randomize(mixedBank(), RandomizeConfig{Strategy: StrategySimpleShuffle, Seed: "diag", ShuffleQuestions: true})
	require.NoError(t, err)

	diags := result.Diagnostics
	assert.Equal(t, 2, diags.DifficultyDistribution[model.DifficultyEasy])
	assert.Equal(t, 2, diags.DifficultyDistribution[model.DifficultyMedium])
	assert.Equal(t, 2, diags.DifficultyDistribution[model.DifficultyHard])
	assert.Equal(t, map[string]int{"math": 2, "science": 2, "history": 2}, diags.CategoryDistribution)
	assert.InDelta(t, 60.0, diags.MeanEstimatedTime, 0.001)

	assert.GreaterOrEqual(t, diags.QualityScore, 0.0)
	assert.LessOrEqual(t, diags.QualityScore, 100.0)
}

func TestRandomize_QualityScorePerfectOrdering(t *testing.T) {
	// One category, identical times, adaptive order => every factor at full
	// credit, so the score must be exactly 100.
	bank := []model.Question{
		metaQuestion(model.DifficultyEasy, "math", 5, 60),
		metaQuestion(model.DifficultyMedium, "math", 5, 60),
		metaQuestion(model.DifficultyHard, "math", 5, 60),
	}

	result, err := Randomize(bank, RandomizeConfig{Strategy: StrategyAdaptiveOrder, Seed: "perfect", ShuffleQuestions: true})
	require.NoError(t, err)
	assert.Equal(t, 100.0, result.Diagnostics.QualityScore)
}

func TestRandomize_Warnings(t *testing.T) {
	t.Run("empty bank", func(t *testing.T) {
		result, err := Randomize(nil, RandomizeConfig{Strategy: StrategySimpleShuffle, Seed: "w", ShuffleQuestions: true})
		require.NoError(t, err)
		require.Len(t, result.Warnings, 1)
		assert.Contains(t, result.Warnings[0], "empty")
	})

	t.Run("single tier and category", func(t *testing.T) {
		bank := []model.Question{
			metaQuestion(model.DifficultyEasy, "math", 5, 30),
			metaQuestion(model.DifficultyEasy, "math", 5, 30),
		}
		result, err := Randomize(bank, RandomizeConfig{Strategy: StrategySimpleShuffle, Seed: "w", ShuffleQuestions: true})
		require.NoError(t, err)
		require.Len(t, result.Warnings, 2)
	})

	t.Run("outlier estimated time", func(t *testing.T) {
		bank := []model.Question{
			metaQuestion(model.DifficultyEasy, "math", 5, 30),
			metaQuestion(model.DifficultyMedium, "science", 5, 30),
			metaQuestion(model.DifficultyHard, "history", 5, 600),
		}
		result, err := Randomize(bank, RandomizeConfig{Strategy: StrategySimpleShuffle, Seed: "w", ShuffleQuestions: true})
		require.NoError(t, err)

		found := false
		for _, w := range result.Warnings {
			if strings.Contains(w, "twice the mean") {
				found = true
			}
		}
		assert.True(t, found)
	})
}
