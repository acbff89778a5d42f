package variant

import (
	"github.com/abhisek/worksheets/internal/planner"
	"github.com/abhisek/worksheets/internal/seededrand"
)

// Shuffle returns a copy of assignments permuted by a Fisher-Yates pass
// keyed by seed, with OrderIndex renumbered 0..N-1 in the new order.
// SlotIndex is left untouched.
func Shuffle(assignments []planner.Assignment, seed string) []planner.Assignment {
	out := make([]planner.Assignment, len(assignments))
	copy(out, assignments)
	seededrand.New(seed).Shuffle(len(out), func(i, j int) {
		out[i], out[j] = out[j], out[i]
	})
	for i := range out {
		out[i].OrderIndex = i
	}
	return out
}
