package search

// Location identifies a network vertex. The search only hashes and compares it.
type Location int64

// Handle refers to a State stored in a search's arena
type Handle int32

// NoHandle is the predecessor of a root state
const NoHandle Handle = -1

// Vector is the numeric part of a state's criteria. Index meaning belongs to
// the network model; the search core never reads it.
type Vector []float64

// At returns the i-th criterion, treating missing entries as zero
func (v Vector) At(i int) float64 {
	if i < 0 || i >= len(v) {
		return 0
	}
	return v[i]
}

// With returns a copy of v with the i-th criterion set to value
func (v Vector) With(i int, value float64) Vector {
	n := len(v)
	if i >= n {
		n = i + 1
	}
	out := make(Vector, n)
	copy(out, v)
	out[i] = value
	return out
}

// Add returns a copy of v with delta added to the i-th criterion
func (v Vector) Add(i int, delta float64) Vector {
	return v.With(i, v.At(i)+delta)
}

// State is a snapshot of a partial path ending at Location.
// Once stored in a Frontier it is never mutated.
type State struct {
	Location Location
	Weight   float64
	Criteria Vector
	Payload  any
	Final    bool

	parent Handle
	via    Edge
}

// Root returns a state with no predecessor
func Root(loc Location, criteria Vector) State {
	return State{
		Location: loc,
		Criteria: criteria,
		Final:    true,
		parent:   NoHandle,
	}
}

// From returns a copy of s linked to the parent it was derived from
func (s State) From(parent Handle, via Edge) State {
	s.parent = parent
	s.via = via
	return s
}

// Parent returns the predecessor handle, NoHandle for a root
func (s *State) Parent() Handle {
	return s.parent
}

// Via returns the edge traversed from the predecessor, nil for a root
func (s *State) Via() Edge {
	return s.via
}

// IsRoot reports whether s has no predecessor
func (s *State) IsRoot() bool {
	return s.parent == NoHandle
}

// Predicate is an acceptance test over a stored state
type Predicate func(s *State) bool

// IsFinal accepts states that completed their edge category
func IsFinal(s *State) bool {
	return s.Final
}

// allOf combines predicates; nil entries are ignored
func allOf(preds ...Predicate) Predicate {
	return func(s *State) bool {
		for _, p := range preds {
			if p != nil && !p(s) {
				return false
			}
		}
		return true
	}
}
