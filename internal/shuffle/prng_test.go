package shuffle

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerator_SequenceIsDeterministic(t *testing.T) {
	a := NewGenerator("student-42-assignment-7")
	b := NewGenerator("student-42-assignment-7")

	for i := 0; i < 100; i++ {
		assert.Equal(t, a.Next(), b.Next(), "draw %d diverged", i)
	}
}

func TestGenerator_KnownSequenceFromIntSeed(t *testing.T) {
	// First LCG step from state 1: 1*1664525 + 1013904223 = 1015568748.
	g := NewGeneratorFromInt(1)
	assert.InDelta(t, 1015568748.0/4294967296.0, g.Next(), 1e-15)
}

func TestGenerator_NextStaysInUnitInterval(t *testing.T) {
	g := NewGenerator("bounds")
	for i := 0; i < 10000; i++ {
		v := g.Next()
		require.GreaterOrEqual(t, v, 0.0)
		require.Less(t, v, 1.0)
	}
}

func TestGenerator_ZeroSeedForcedNonZero(t *testing.T) {
	// The empty string hashes to zero; the generator must not degenerate
	// into the zero-seeded LCG orbit starting identical to seed "".
	g := NewGenerator("")
	h := NewGeneratorFromInt(0)
	assert.Equal(t, g.Next(), h.Next())
	assert.NotZero(t, g.state)
}

func TestGenerator_DifferentSeedsDiverge(t *testing.T) {
	a := NewGenerator("student-1")
	b := NewGenerator("student-2")

	diverged := false
	for i := 0; i < 10; i++ {
		if a.Next() != b.Next() {
			diverged = true
			break
		}
	}
	assert.True(t, diverged)
}

func TestPermute_IsBijection(t *testing.T) {
	items := []int{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}

	out := Permute(NewGenerator("perm"), items)

	require.Len(t, out, len(items))
	assert.ElementsMatch(t, items, out)
	// Input must be untouched.
	assert.Equal(t, []int{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}, items)
}

func TestPermute_EmptyAndSingle(t *testing.T) {
	assert.Empty(t, Permute(NewGenerator("x"), []string{}))
	assert.Equal(t, []string{"only"}, Permute(NewGenerator("x"), []string{"only"}))
}

func TestPermute_SameSeedSameOrder(t *testing.T) {
	items := []string{"a", "b", "c", "d", "e", "f"}
	first := Permute(NewGenerator("stable"), items)
	second := Permute(NewGenerator("stable"), items)
	assert.Equal(t, first, second)
}
