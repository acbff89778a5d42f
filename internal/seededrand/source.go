// Package seededrand provides a small deterministic random source keyed by a
// seed string. The same seed always yields the same sequence, which makes
// variant planning reproducible.
package seededrand

import (
	"hash/fnv"
	"slices"
)

// zeroStateReplacement is used when the seed hashes to 0, since xorshift
// never leaves the zero state.
const zeroStateReplacement uint32 = 0x9E3779B9

// Source is a xorshift32 stream seeded from the FNV-1a hash of a string.
// A Source is not safe for concurrent use; create one per planning call.
type Source struct {
	seed  string
	state uint32
}

// New returns a Source whose sequence is fully determined by seed.
func New(seed string) *Source {
	h := fnv.New32a()
	h.Write([]byte(seed))
	state := h.Sum32()
	if state == 0 {
		state = zeroStateReplacement
	}
	return &Source{seed: seed, state: state}
}

// Seed returns the seed string the Source was built from.
func (s *Source) Seed() string { return s.seed }

// Next advances the stream and returns a float in [0, 1).
func (s *Source) Next() float64 {
	x := s.state
	x ^= x << 13
	x ^= x >> 17
	x ^= x << 5
	s.state = x
	return float64(x) / (1 << 32)
}

// PickIndex returns an index in [0, n). It panics when n <= 0: callers must
// never draw from an empty pool.
func (s *Source) PickIndex(n int) int {
	if n <= 0 {
		panic("seededrand: PickIndex called with empty range")
	}
	i := int(s.Next() * float64(n))
	if i >= n {
		i = n - 1
	}
	return i
}

// Permutation returns 0..n-1 in a seed-determined order, drawn by sampling
// without replacement.
func (s *Source) Permutation(n int) []int {
	return s.PermuteInto(nil, n)
}

// PermuteInto is Permutation writing into buf, which is grown only when its
// capacity is below n. Both consume the stream identically.
func (s *Source) PermuteInto(buf []int, n int) []int {
	if cap(buf) < n {
		buf = make([]int, n)
	}
	buf = buf[:n]
	for i := range buf {
		buf[i] = i
	}
	// buf[:m] is the remaining pool; each draw is parked at buf[m-1], so
	// the draws end up in reverse order.
	for m := n; m > 0; m-- {
		k := s.PickIndex(m)
		buf[k], buf[m-1] = buf[m-1], buf[k]
	}
	slices.Reverse(buf)
	return buf
}

// Shuffle permutes n elements in place with a Fisher-Yates pass, calling swap
// for each exchange.
func (s *Source) Shuffle(n int, swap func(i, j int)) {
	for i := n - 1; i > 0; i-- {
		j := s.PickIndex(i + 1)
		swap(i, j)
	}
}
