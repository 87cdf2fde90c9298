package wordengine

import "math/rand/v2"

// Shuffle returns a uniformly random permutation of items using Fisher-Yates.
// The input slice is not modified.
func Shuffle[T any](items []T) []T {
	return shuffleWith(items, rand.IntN)
}

// shuffleWith permutes a copy of items drawing indexes from intn, which must
// return a value in [0, n).
func shuffleWith[T any](items []T, intn func(n int) int) []T {
	out := make([]T, len(items))
	copy(out, items)
	for i := len(out) - 1; i > 0; i-- {
		j := intn(i + 1)
		out[i], out[j] = out[j], out[i]
	}
	return out
}
