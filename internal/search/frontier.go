package search

import (
	"iter"
	"log"
	"sort"
)

// Frontier keeps, per location, the states no other retained state dominates.
// It owns the arena all states of one search live in; a handle stays valid for
// the lifetime of the frontier even after its state is evicted, so provenance
// chains through evicted predecessors remain walkable.
//
// A Frontier belongs to a single search and is not safe for concurrent use.
type Frontier struct {
	policy Policy
	arena  []State
	sets   map[Location][]Handle
	order  []Location // first-seen order, for deterministic iteration
	live   int
	frozen bool
}

// NewFrontier creates an empty frontier pruning with the given policy
func NewFrontier(policy Policy) *Frontier {
	return &Frontier{
		policy: policy,
		sets:   make(map[Location][]Handle),
	}
}

// Policy returns the dominance policy in use
func (f *Frontier) Policy() Policy {
	return f.policy
}

// Offer adds s to its location's set unless an existing state dominates it.
// Existing states are scanned in insertion order and the first one that
// dominates s rejects it, so an incumbent wins exact ties. States dominated by
// s are evicted.
func (f *Frontier) Offer(s State) (Handle, bool) {
	if f.frozen {
		panic(ErrFrontierFrozen)
	}

	set, seen := f.sets[s.Location]
	if !seen {
		f.order = append(f.order, s.Location)
	}

	var evict []int
	for i, h := range set {
		existing := &f.arena[h]
		if f.policy.Dominates(existing, &s) {
			return NoHandle, false
		}
		if f.policy.Dominates(&s, existing) {
			evict = append(evict, i)
		}
	}

	if len(evict) > 0 {
		kept := set[:0]
		next := 0
		for i, h := range set {
			if next < len(evict) && evict[next] == i {
				next++
				continue
			}
			kept = append(kept, h)
		}
		set = kept
		f.live -= len(evict)
	}

	h := Handle(len(f.arena))
	f.arena = append(f.arena, s)
	f.sets[s.Location] = append(set, h)
	f.live++
	return h, true
}

// Contains reports whether the exact state behind h is still retained
func (f *Frontier) Contains(h Handle) bool {
	if h < 0 || int(h) >= len(f.arena) {
		return false
	}
	for _, member := range f.sets[f.arena[h].Location] {
		if member == h {
			return true
		}
	}
	return false
}

// At returns a copy of the state behind h, retained or evicted
func (f *Frontier) At(h Handle) State {
	return f.arena[h]
}

// States returns the retained handles at loc in insertion order
func (f *Frontier) States(loc Location) []Handle {
	set := f.sets[loc]
	out := make([]Handle, len(set))
	copy(out, set)
	return out
}

// BestAccepted returns the lowest-weight retained state at loc that accept
// approves. A nil accept approves everything.
func (f *Frontier) BestAccepted(loc Location, accept Predicate) (Handle, bool) {
	best := NoHandle
	for _, h := range f.sets[loc] {
		s := &f.arena[h]
		if accept != nil && !accept(s) {
			continue
		}
		if best == NoHandle || s.Weight < f.arena[best].Weight {
			best = h
		}
	}
	return best, best != NoHandle
}

// All yields every retained state across all locations
func (f *Frontier) All() iter.Seq[Handle] {
	return func(yield func(Handle) bool) {
		for _, loc := range f.order {
			for _, h := range f.sets[loc] {
				if !yield(h) {
					return
				}
			}
		}
	}
}

// Len returns the number of retained states
func (f *Frontier) Len() int {
	return f.live
}

// Locations returns the number of locations that ever received a state
func (f *Frontier) Locations() int {
	return len(f.order)
}

// Allocated returns the number of states stored in the arena, evicted ones included
func (f *Frontier) Allocated() int {
	return len(f.arena)
}

// Frozen reports whether the owning search has terminated
func (f *Frontier) Frozen() bool {
	return f.frozen
}

func (f *Frontier) freeze() {
	f.frozen = true
}

// Histogram maps a set size to the number of locations holding that many states
func (f *Frontier) Histogram() map[int]int {
	histogram := make(map[int]int)
	for _, loc := range f.order {
		histogram[len(f.sets[loc])]++
	}
	return histogram
}

// Summary condenses the frontier for observability
type Summary struct {
	Locations    int         `json:"locations"`
	States       int         `json:"states"`
	Allocated    int         `json:"allocated"`
	MaxPerVertex int         `json:"max_per_location"`
	AvgPerVertex float64     `json:"avg_per_location"`
	Histogram    map[int]int `json:"histogram"`
}

// Summary returns counts and the set-size histogram
func (f *Frontier) Summary() Summary {
	sum := Summary{
		Locations: len(f.order),
		States:    f.live,
		Allocated: len(f.arena),
		Histogram: f.Histogram(),
	}
	for size := range sum.Histogram {
		if size > sum.MaxPerVertex {
			sum.MaxPerVertex = size
		}
	}
	if sum.Locations > 0 {
		sum.AvgPerVertex = float64(sum.States) / float64(sum.Locations)
	}
	return sum
}

// Dump logs the summary and histogram
func (f *Frontier) Dump() {
	sum := f.Summary()
	log.Printf("Frontier: locations: %d states: %d per location max: %d avg: %.2f",
		sum.Locations, sum.States, sum.MaxPerVertex, sum.AvgPerVertex)

	sizes := make([]int, 0, len(sum.Histogram))
	for size := range sum.Histogram {
		sizes = append(sizes, size)
	}
	sort.Ints(sizes)
	for _, size := range sizes {
		log.Printf("  %d states: %d locations", size, sum.Histogram[size])
	}
}
