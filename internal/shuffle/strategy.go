package shuffle

import (
	"fmt"
	"math"
	"sort"

	"github.com/examtrail/examtrail-backend/internal/model"
)

// Strategy selects the question-order phase of randomization. Option shuffling
// is applied per question afterwards, exactly as in PresentExam.
type Strategy string

const (
	StrategySimpleShuffle      Strategy = "SIMPLE_SHUFFLE"
	StrategyDifficultyBalanced Strategy = "DIFFICULTY_BALANCED"
	StrategyCategoryGrouped    Strategy = "CATEGORY_GROUPED"
	StrategyAdaptiveOrder      Strategy = "ADAPTIVE_ORDER"
	StrategyWeightedRandom     Strategy = "WEIGHTED_RANDOM"
)

// Quality score deductions, weighted per concern. A perfect ordering scores
// 100; each factor can pull it down by at most its weight.
const (
	progressionWeight     = 20.0
	categoryBalanceWeight = 15.0
	timeVarianceWeight    = 15.0
)

// RandomizeConfig drives one Randomize call.
type RandomizeConfig struct {
	Strategy Strategy
	Seed     string
	// ShuffleQuestions toggles the question-order phase. When false the
	// authored order is kept and only option shuffling applies.
	ShuffleQuestions bool
	ShuffleOptions   bool
	// CustomWeights overrides importance per question ID for WEIGHTED_RANDOM.
	CustomWeights map[string]float64
}

// Diagnostics summarizes the quality of a produced ordering.
type Diagnostics struct {
	DifficultyDistribution map[model.Difficulty]int `json:"difficulty_distribution"`
	CategoryDistribution   map[string]int           `json:"category_distribution"`
	MeanEstimatedTime      float64                  `json:"mean_estimated_time"`
	QualityScore           float64                  `json:"quality_score"`
}

// Result is the output of the strategy engine.
type Result struct {
	Presented   []model.PresentedQuestion `json:"presented"`
	Diagnostics Diagnostics               `json:"diagnostics"`
	Warnings    []string                  `json:"warnings"`
}

// Randomize orders questions with the configured strategy, attaches presented
// options, and scores the outcome. An unknown strategy is an error; everything
// else degrades to warnings.
func Randomize(questions []model.Question, cfg RandomizeConfig) (Result, error) {
	ordered, err := orderQuestions(NewGenerator(cfg.Seed), questions, cfg)
	if err != nil {
		return Result{}, err
	}

	originalIndex := make(map[string]int, len(questions))
	for i, q := range questions {
		originalIndex[q.ID.String()] = i
	}

	presented := make([]model.PresentedQuestion, len(ordered))
	for pos, q := range ordered {
		presented[pos] = model.PresentedQuestion{
			Question:      q,
			OriginalIndex: originalIndex[q.ID.String()],
			Presented:     presentOptions(q.Options, questionSubSeed(cfg.Seed, pos), cfg.ShuffleOptions),
		}
	}

	diags := computeDiagnostics(ordered)

	return Result{
		Presented:   presented,
		Diagnostics: diags,
		Warnings:    collectWarnings(ordered, diags),
	}, nil
}

// ─── Strategies ─────────────────────────────────────────────────────

// orderQuestions applies the configured strategy, or returns a copy in
// authored order when question shuffling is disabled. The strategy is
// validated either way so a bad assignment row fails loudly instead of
// silently presenting in order.
func orderQuestions(rng *Generator, questions []model.Question, cfg RandomizeConfig) ([]model.Question, error) {
	var apply func() []model.Question
	switch cfg.Strategy {
	case StrategySimpleShuffle, "":
		apply = func() []model.Question { return Permute(rng, questions) }
	case StrategyDifficultyBalanced:
		apply = func() []model.Question { return difficultyBalanced(rng, questions) }
	case StrategyCategoryGrouped:
		apply = func() []model.Question { return categoryGrouped(rng, questions) }
	case StrategyAdaptiveOrder:
		apply = func() []model.Question { return adaptiveOrder(rng, questions) }
	case StrategyWeightedRandom:
		apply = func() []model.Question { return weightedRandom(rng, questions, cfg.CustomWeights) }
	default:
		return nil, fmt.Errorf("unknown randomization strategy %q", cfg.Strategy)
	}

	if !cfg.ShuffleQuestions {
		out := make([]model.Question, len(questions))
		copy(out, questions)
		return out, nil
	}
	return apply(), nil
}

// difficultyBalanced shuffles each difficulty tier independently, then
// round-robin interleaves them (easy[0], medium[0], hard[0], easy[1], ...),
// skipping exhausted tiers.
func difficultyBalanced(rng *Generator, questions []model.Question) []model.Question {
	tiers := map[model.Difficulty][]model.Question{}
	for _, q := range questions {
		// Authored metadata is free-form JSONB; anything outside the three
		// tiers must land in a bucket the interleave loop drains.
		tier := difficultyTier(q)
		tiers[tier] = append(tiers[tier], q)
	}

	order := []model.Difficulty{model.DifficultyEasy, model.DifficultyMedium, model.DifficultyHard}
	for _, tier := range order {
		tiers[tier] = Permute(rng, tiers[tier])
	}

	out := make([]model.Question, 0, len(questions))
	for i := 0; len(out) < len(questions); i++ {
		for _, tier := range order {
			if i < len(tiers[tier]) {
				out = append(out, tiers[tier][i])
			}
		}
	}
	return out
}

// categoryGrouped shuffles the order of categories, shuffles within each
// category, then concatenates. Categories are collected in first-appearance
// order so the grouping itself is deterministic before the shuffle.
func categoryGrouped(rng *Generator, questions []model.Question) []model.Question {
	var categories []string
	byCategory := map[string][]model.Question{}
	for _, q := range questions {
		cat := EffectiveMetadata(q).Category
		if _, seen := byCategory[cat]; !seen {
			categories = append(categories, cat)
		}
		byCategory[cat] = append(byCategory[cat], q)
	}

	categories = Permute(rng, categories)

	out := make([]model.Question, 0, len(questions))
	for _, cat := range categories {
		out = append(out, Permute(rng, byCategory[cat])...)
	}
	return out
}

// adaptiveOrder randomizes within tiers, then stable-sorts ascending by tier
// so students warm up on easy questions first.
func adaptiveOrder(rng *Generator, questions []model.Question) []model.Question {
	out := Permute(rng, questions)
	sort.SliceStable(out, func(i, j int) bool {
		return tierRank(out[i]) < tierRank(out[j])
	})
	return out
}

// difficultyTier normalizes a question's difficulty to one of the three known
// tiers. Off-enum or empty values rank as hard, mirroring tierRank.
func difficultyTier(q model.Question) model.Difficulty {
	switch EffectiveMetadata(q).Difficulty {
	case model.DifficultyEasy:
		return model.DifficultyEasy
	case model.DifficultyMedium:
		return model.DifficultyMedium
	default:
		return model.DifficultyHard
	}
}

func tierRank(q model.Question) int {
	switch difficultyTier(q) {
	case model.DifficultyEasy:
		return 0
	case model.DifficultyMedium:
		return 1
	default:
		return 2
	}
}

// weightedRandom samples without replacement, each remaining question drawn
// with probability proportional to its weight (importance, or a CustomWeights
// override keyed by question ID).
func weightedRandom(rng *Generator, questions []model.Question, customWeights map[string]float64) []model.Question {
	remaining := make([]model.Question, len(questions))
	copy(remaining, questions)

	weightOf := func(q model.Question) float64 {
		if w, ok := customWeights[q.ID.String()]; ok && w > 0 {
			return w
		}
		if imp := EffectiveMetadata(q).Importance; imp > 0 {
			return float64(imp)
		}
		return 1
	}

	out := make([]model.Question, 0, len(questions))
	for len(remaining) > 0 {
		total := 0.0
		for _, q := range remaining {
			total += weightOf(q)
		}

		threshold := rng.Next() * total
		selected := len(remaining) - 1
		acc := 0.0
		for i, q := range remaining {
			acc += weightOf(q)
			if acc >= threshold {
				selected = i
				break
			}
		}

		out = append(out, remaining[selected])
		remaining = append(remaining[:selected], remaining[selected+1:]...)
	}
	return out
}

// ─── Diagnostics ────────────────────────────────────────────────────

func computeDiagnostics(ordered []model.Question) Diagnostics {
	diags := Diagnostics{
		DifficultyDistribution: map[model.Difficulty]int{},
		CategoryDistribution:   map[string]int{},
	}
	if len(ordered) == 0 {
		diags.QualityScore = 100
		return diags
	}

	totalTime := 0
	for _, q := range ordered {
		meta := EffectiveMetadata(q)
		diags.DifficultyDistribution[meta.Difficulty]++
		diags.CategoryDistribution[meta.Category]++
		totalTime += meta.EstimatedTime
	}
	diags.MeanEstimatedTime = float64(totalTime) / float64(len(ordered))

	score := 100.0 -
		progressionWeight*(1-progressionScore(ordered)) -
		categoryBalanceWeight*(1-categoryBalanceScore(diags.CategoryDistribution, len(ordered))) -
		timeVarianceWeight*(1-timeVarianceScore(ordered, diags.MeanEstimatedTime))
	diags.QualityScore = math.Round(score*100) / 100

	return diags
}

// progressionScore rewards adjacent pairs whose difficulty never drops (full
// credit) or drops by exactly one tier (half credit), normalized over pairs.
func progressionScore(ordered []model.Question) float64 {
	if len(ordered) < 2 {
		return 1
	}
	score := 0.0
	for i := 0; i < len(ordered)-1; i++ {
		delta := tierRank(ordered[i+1]) - tierRank(ordered[i])
		switch {
		case delta >= 0:
			score++
		case delta == -1:
			score += 0.5
		}
	}
	return score / float64(len(ordered)-1)
}

func categoryBalanceScore(distribution map[string]int, total int) float64 {
	if len(distribution) == 0 {
		return 1
	}
	ideal := float64(total) / float64(len(distribution))
	sum := 0.0
	for _, count := range distribution {
		sum += math.Max(0, 1-math.Abs(float64(count)-ideal)/ideal)
	}
	return sum / float64(len(distribution))
}

func timeVarianceScore(ordered []model.Question, mean float64) float64 {
	if len(ordered) == 0 || mean == 0 {
		return 1
	}
	sum := 0.0
	for _, q := range ordered {
		t := float64(EffectiveMetadata(q).EstimatedTime)
		sum += math.Max(0, 1-math.Abs(t-mean)/mean)
	}
	return sum / float64(len(ordered))
}

func collectWarnings(ordered []model.Question, diags Diagnostics) []string {
	var warnings []string

	if len(ordered) == 0 {
		return append(warnings, "randomization produced an empty question set")
	}
	if len(diags.DifficultyDistribution) == 1 {
		warnings = append(warnings, "all questions share a single difficulty tier; balancing strategies have no effect")
	}
	if len(diags.CategoryDistribution) == 1 {
		warnings = append(warnings, "all questions share a single category; grouping strategies have no effect")
	}

	maxTime := 0
	for _, q := range ordered {
		if t := EffectiveMetadata(q).EstimatedTime; t > maxTime {
			maxTime = t
		}
	}
	if diags.MeanEstimatedTime > 0 && float64(maxTime) > 2*diags.MeanEstimatedTime {
		warnings = append(warnings, fmt.Sprintf("longest question (%ds) exceeds twice the mean estimated time (%.0fs)", maxTime, diags.MeanEstimatedTime))
	}

	return warnings
}
