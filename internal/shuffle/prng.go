package shuffle

// Generator is a small deterministic PRNG with instance-scoped state. Every
// shuffle constructs a fresh Generator from a derived seed string, so
// concurrent shuffles for different students never share state.
//
// The numeric sequence is defined with exact 32-bit unsigned wraparound
// arithmetic so a layout generated here is bit-for-bit reproducible by any
// other implementation given the same seed.
type Generator struct {
	state uint32
}

// NewGenerator creates a Generator from a string seed. The seed is reduced to
// a non-zero 32-bit integer with a rolling hash (h = h*31 + char).
func NewGenerator(seed string) *Generator {
	var h uint32
	for _, r := range seed {
		h = h*31 + uint32(r)
	}
	if h == 0 {
		h = 1
	}
	return &Generator{state: h}
}

// NewGeneratorFromInt creates a Generator from an integer seed. A zero seed is
// forced to one so the LCG never degenerates.
func NewGeneratorFromInt(seed uint32) *Generator {
	if seed == 0 {
		seed = 1
	}
	return &Generator{state: seed}
}

// Next advances the linear congruential state and returns a float in [0, 1).
func (g *Generator) Next() float64 {
	g.state = g.state*1664525 + 1013904223
	return float64(g.state) / 4294967296.0
}

// Intn returns a uniform integer in [0, n) drawn from Next. n must be > 0.
func (g *Generator) Intn(n int) int {
	return int(g.Next() * float64(n))
}

// Permute returns a Fisher-Yates permuted copy of items. The input slice is
// never mutated; empty input yields an empty output.
func Permute[T any](g *Generator, items []T) []T {
	out := make([]T, len(items))
	copy(out, items)
	for i := len(out) - 1; i >= 1; i-- {
		j := g.Intn(i + 1)
		out[i], out[j] = out[j], out[i]
	}
	return out
}
