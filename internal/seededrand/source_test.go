package seededrand

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_SameSeedSameSequence(t *testing.T) {
	a := New("worksheet-42")
	b := New("worksheet-42")
	for i := 0; i < 1000; i++ {
		require.Equal(t, a.Next(), b.Next(), "draw %d", i)
	}
}

func TestNew_DifferentSeedsDiverge(t *testing.T) {
	a := New("seed-a")
	b := New("seed-b")
	same := 0
	for i := 0; i < 100; i++ {
		if a.Next() == b.Next() {
			same++
		}
	}
	assert.Less(t, same, 100)
}

func TestNext_Range(t *testing.T) {
	seeds := []string{"", "x", "a longer seed string", "ünïcødé"}
	for _, seed := range seeds {
		s := New(seed)
		for i := 0; i < 5000; i++ {
			v := s.Next()
			if v < 0 || v >= 1 {
				t.Fatalf("seed %q draw %d: %v out of [0,1)", seed, i, v)
			}
		}
	}
}

func TestNew_EmptySeedIsUsable(t *testing.T) {
	s := New("")
	first := s.Next()
	second := s.Next()
	assert.NotEqual(t, first, second)
}

func TestPickIndex_Bounds(t *testing.T) {
	s := New("bounds")
	for _, n := range []int{1, 2, 3, 7, 100} {
		for i := 0; i < 500; i++ {
			k := s.PickIndex(n)
			if k < 0 || k >= n {
				t.Fatalf("PickIndex(%d) = %d", n, k)
			}
		}
	}
}

func TestPickIndex_OneAlwaysZero(t *testing.T) {
	s := New("one")
	for i := 0; i < 50; i++ {
		assert.Equal(t, 0, s.PickIndex(1))
	}
}

func TestPickIndex_PanicsOnEmpty(t *testing.T) {
	s := New("empty")
	assert.Panics(t, func() { s.PickIndex(0) })
	assert.Panics(t, func() { s.PickIndex(-3) })
}

func TestPermutation_IsPermutation(t *testing.T) {
	s := New("perm")
	for _, n := range []int{0, 1, 5, 32} {
		p := s.Permutation(n)
		require.Len(t, p, n)
		seen := make(map[int]bool, n)
		for _, v := range p {
			require.GreaterOrEqual(t, v, 0)
			require.Less(t, v, n)
			require.False(t, seen[v], "duplicate %d", v)
			seen[v] = true
		}
	}
}

func TestPermutation_Deterministic(t *testing.T) {
	assert.Equal(t, New("p").Permutation(20), New("p").Permutation(20))
}

func TestShuffle_KeepsElements(t *testing.T) {
	items := []string{"a", "b", "c", "d", "e", "f"}
	s := New("shuffle")
	s.Shuffle(len(items), func(i, j int) { items[i], items[j] = items[j], items[i] })
	assert.ElementsMatch(t, []string{"a", "b", "c", "d", "e", "f"}, items)
}

func TestShuffle_Deterministic(t *testing.T) {
	shuffled := func(seed string) []int {
		xs := []int{0, 1, 2, 3, 4, 5, 6, 7, 8, 9}
		New(seed).Shuffle(len(xs), func(i, j int) { xs[i], xs[j] = xs[j], xs[i] })
		return xs
	}
	assert.Equal(t, shuffled("s1"), shuffled("s1"))
}

func TestSeed(t *testing.T) {
	assert.Equal(t, "abc", New("abc").Seed())
}

// poolPermutation draws from an explicit shrinking pool, the plain form of
// sampling without replacement.
func poolPermutation(s *Source, n int) []int {
	pool := make([]int, n)
	for i := range pool {
		pool[i] = i
	}
	out := make([]int, 0, n)
	for len(pool) > 0 {
		k := s.PickIndex(len(pool))
		out = append(out, pool[k])
		last := len(pool) - 1
		pool[k] = pool[last]
		pool = pool[:last]
	}
	return out
}

func TestPermuteInto_MatchesPoolSampling(t *testing.T) {
	for _, n := range []int{1, 2, 5, 10, 33} {
		want := poolPermutation(New("same-stream"), n)

		var buf []int
		got := New("same-stream").PermuteInto(buf, n)
		assert.Equal(t, want, got, "n=%d", n)
		assert.Equal(t, want, New("same-stream").Permutation(n), "n=%d", n)
	}
}

func TestPermuteInto_ReusesBuffer(t *testing.T) {
	s := New("reuse")
	buf := make([]int, 0, 16)

	allocs := testing.AllocsPerRun(100, func() {
		buf = s.PermuteInto(buf, 12)
	})
	assert.Zero(t, allocs)
	assert.Len(t, buf, 12)

	// Consecutive draws continue the stream exactly as Permutation does.
	a, b := New("seq"), New("seq")
	buf = buf[:0]
	for i := 0; i < 5; i++ {
		buf = a.PermuteInto(buf, 9)
		assert.Equal(t, b.Permutation(9), buf)
	}
}
