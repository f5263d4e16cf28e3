// Package shuffle implements the deterministic per-attempt permutation
// used to randomize question and option order. The generator is a small
// linear-congruential sequence, reproducible from an integer seed across
// runs and processes. It provides presentation variety only and is not
// suitable for anything security-sensitive.
package shuffle

const (
	lcgMultiplier = 9301
	lcgIncrement  = 49297
	lcgModulus    = 233280
)

// Source is the evolving LCG state. The zero value is usable but every
// caller in this service seeds it from an attempt's shuffle seed.
type Source struct {
	state int64
}

// NewSource returns a Source seeded with the given value.
func NewSource(seed int64) *Source {
	return &Source{state: seed}
}

// Intn advances the state and returns a pseudo-random index in [0, n).
// n must be positive.
func (s *Source) Intn(n int) int {
	s.state = (s.state*lcgMultiplier + lcgIncrement) % lcgModulus
	return int(s.state * int64(n) / lcgModulus)
}

// Permute returns a copy of items reordered by a seeded Fisher-Yates
// walk from the last index down to 1. The input is never mutated.
// Sequences of length 0 or 1 come back as-is (still copied).
func Permute[T any](items []T, seed int64) []T {
	out := make([]T, len(items))
	copy(out, items)

	src := NewSource(seed)
	for i := len(out) - 1; i > 0; i-- {
		j := src.Intn(i + 1)
		out[i], out[j] = out[j], out[i]
	}
	return out
}
