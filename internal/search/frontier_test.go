package search

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFrontierOffer(t *testing.T) {
	t.Run("First state at a location is accepted", func(t *testing.T) {
		f := NewFrontier(WeightOnly{})
		h, ok := f.Offer(st(1, 5))
		assert.True(t, ok)
		assert.Equal(t, []Handle{h}, f.States(1))
		assert.Equal(t, 1, f.Len())
	})

	t.Run("Dominated candidate is rejected", func(t *testing.T) {
		f := NewFrontier(WeightOnly{})
		f.Offer(st(1, 5))
		h, ok := f.Offer(st(1, 9))
		assert.False(t, ok)
		assert.Equal(t, NoHandle, h)
		assert.Equal(t, 1, f.Len())
	})

	t.Run("Dominating candidate evicts", func(t *testing.T) {
		f := NewFrontier(Pareto{Criteria: []int{0}})
		f.Offer(st(1, 10, 30))
		f.Offer(st(1, 14, 20))
		require.Equal(t, 2, f.Len())

		best, ok := f.Offer(st(1, 9, 10))
		require.True(t, ok)
		assert.Equal(t, []Handle{best}, f.States(1))
		assert.Equal(t, 1, f.Len())
		assert.Equal(t, 3, f.Allocated())
	})

	t.Run("Eviction keeps insertion order of survivors", func(t *testing.T) {
		f := NewFrontier(Pareto{Criteria: []int{0}})
		a, _ := f.Offer(st(1, 1, 50))
		b, _ := f.Offer(st(1, 10, 30))
		c, _ := f.Offer(st(1, 20, 5))

		d, ok := f.Offer(st(1, 9, 30))
		require.True(t, ok)
		assert.Equal(t, []Handle{a, c, d}, f.States(1))
		assert.False(t, f.Contains(b))
	})

	t.Run("Locations are independent", func(t *testing.T) {
		f := NewFrontier(Collapse{})
		_, ok1 := f.Offer(st(1, 9))
		_, ok2 := f.Offer(st(2, 9))
		assert.True(t, ok1)
		assert.True(t, ok2)
		assert.Equal(t, 2, f.Locations())
	})
}

func TestFrontierTieBreak(t *testing.T) {
	a, b := st(1, 5), st(1, 5)
	a.Payload, b.Payload = "a", "b"

	t.Run("Total order keeps the first inserted on a tie", func(t *testing.T) {
		for _, order := range [][]State{{a, b}, {b, a}} {
			f := NewFrontier(WeightOnly{})
			first, ok := f.Offer(order[0])
			require.True(t, ok)
			_, ok = f.Offer(order[1])
			assert.False(t, ok)

			states := f.States(1)
			require.Len(t, states, 1)
			assert.Equal(t, first, states[0])
			assert.Equal(t, order[0].Payload, f.At(states[0]).Payload)
		}
	})

	t.Run("Total order keeps the cheaper in either order", func(t *testing.T) {
		cheap := st(1, 3)
		cheap.Payload = "cheap"
		for _, order := range [][]State{{a, cheap}, {cheap, a}} {
			f := NewFrontier(WeightOnly{})
			f.Offer(order[0])
			f.Offer(order[1])

			states := f.States(1)
			require.Len(t, states, 1)
			assert.Equal(t, "cheap", f.At(states[0]).Payload)
		}
	})

	t.Run("Pareto exact tie keeps the first inserted", func(t *testing.T) {
		f := NewFrontier(Pareto{Criteria: []int{0}})
		x, y := st(1, 5, 10), st(1, 5, 10)
		x.Payload, y.Payload = "x", "y"
		f.Offer(x)
		_, ok := f.Offer(y)
		assert.False(t, ok)
		assert.Equal(t, "x", f.At(f.States(1)[0]).Payload)
	})
}

func TestFrontierParetoInvariant(t *testing.T) {
	policies := []Policy{
		WeightOnly{},
		Pareto{Criteria: []int{0}},
		Pareto{Criteria: []int{0, 1}},
		Collapse{},
		Exhaustive{},
	}

	for _, policy := range policies {
		t.Run(policy.Name(), func(t *testing.T) {
			rng := rand.New(rand.NewSource(42))
			for round := 0; round < 20; round++ {
				f := NewFrontier(policy)
				for i := 0; i < 200; i++ {
					s := st(Location(rng.Intn(5)), float64(rng.Intn(10)),
						float64(rng.Intn(6)), float64(rng.Intn(3)))
					f.Offer(s)
				}
				assertNonDominated(t, f)
			}
		})
	}
}

func assertNonDominated(t *testing.T, f *Frontier) {
	t.Helper()
	for _, loc := range f.order {
		set := f.States(loc)
		for i := range set {
			for j := range set {
				if i == j {
					continue
				}
				a, b := f.At(set[i]), f.At(set[j])
				if f.Policy().Dominates(&a, &b) {
					t.Fatalf("location %d: %+v dominates retained %+v", loc, a, b)
				}
			}
		}
	}
}

func TestFrontierContains(t *testing.T) {
	t.Run("Identity, not field equality", func(t *testing.T) {
		f := NewFrontier(Exhaustive{})
		h1, _ := f.Offer(st(1, 5))
		h2, _ := f.Offer(st(1, 5))

		assert.NotEqual(t, h1, h2)
		assert.True(t, f.Contains(h1))
		assert.True(t, f.Contains(h2))
		assert.Equal(t, f.At(h1).Weight, f.At(h2).Weight)
	})

	t.Run("Evicted state is no longer contained", func(t *testing.T) {
		f := NewFrontier(WeightOnly{})
		h1, _ := f.Offer(st(1, 5))
		_, ok := f.Offer(st(1, 5))
		require.False(t, ok)
		assert.True(t, f.Contains(h1))

		h3, _ := f.Offer(st(1, 4))
		assert.False(t, f.Contains(h1))
		assert.True(t, f.Contains(h3))

		// evicted states stay readable for provenance walks
		assert.Equal(t, 5.0, f.At(h1).Weight)
	})

	t.Run("Unknown handles", func(t *testing.T) {
		f := NewFrontier(WeightOnly{})
		assert.False(t, f.Contains(NoHandle))
		assert.False(t, f.Contains(Handle(7)))
	})
}

func TestFrontierBestAccepted(t *testing.T) {
	f := NewFrontier(Pareto{Criteria: []int{0}})
	f.Offer(st(1, 14, 20))
	cheap, _ := f.Offer(st(1, 10, 30))
	nonFinal := st(1, 6, 40)
	nonFinal.Final = false
	f.Offer(nonFinal)

	t.Run("Minimum weight under the predicate", func(t *testing.T) {
		h, ok := f.BestAccepted(1, IsFinal)
		require.True(t, ok)
		assert.Equal(t, cheap, h)
	})

	t.Run("Nil predicate accepts everything", func(t *testing.T) {
		h, ok := f.BestAccepted(1, nil)
		require.True(t, ok)
		assert.Equal(t, 6.0, f.At(h).Weight)
	})

	t.Run("Nothing passes", func(t *testing.T) {
		_, ok := f.BestAccepted(1, func(s *State) bool { return s.Criteria.At(0) < 5 })
		assert.False(t, ok)
	})

	t.Run("Unknown location", func(t *testing.T) {
		_, ok := f.BestAccepted(99, IsFinal)
		assert.False(t, ok)
	})
}

func TestFrontierAll(t *testing.T) {
	f := NewFrontier(Pareto{Criteria: []int{0}})
	f.Offer(st(2, 1))
	f.Offer(st(1, 10, 30))
	f.Offer(st(1, 14, 20))
	f.Offer(st(3, 1))

	collect := func() []Location {
		var locs []Location
		for h := range f.All() {
			locs = append(locs, f.At(h).Location)
		}
		return locs
	}

	first := collect()
	assert.Equal(t, []Location{2, 1, 1, 3}, first)
	assert.Equal(t, first, collect(), "iteration must be restartable")

	count := 0
	for range f.All() {
		count++
		if count == 2 {
			break
		}
	}
	assert.Equal(t, 2, count)
}

func TestFrontierSummary(t *testing.T) {
	f := NewFrontier(Pareto{Criteria: []int{0}})
	f.Offer(st(1, 10, 30))
	f.Offer(st(1, 14, 20))
	f.Offer(st(2, 1))
	f.Offer(st(3, 1))

	sum := f.Summary()
	assert.Equal(t, 3, sum.Locations)
	assert.Equal(t, 4, sum.States)
	assert.Equal(t, 2, sum.MaxPerVertex)
	assert.InDelta(t, 4.0/3.0, sum.AvgPerVertex, 1e-9)
	assert.Equal(t, map[int]int{1: 2, 2: 1}, sum.Histogram)

	assert.NotPanics(t, f.Dump)
}

func TestFrontierStatesReturnsCopy(t *testing.T) {
	f := NewFrontier(Exhaustive{})
	f.Offer(st(1, 1))
	states := f.States(1)
	states[0] = Handle(42)
	assert.Equal(t, Handle(0), f.States(1)[0])
}
