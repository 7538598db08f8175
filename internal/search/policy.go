package search

import "fmt"

// Policy decides whether one state supersedes another at the same location.
// Implementations must be pure; they are consulted with the incumbent as the
// first argument before the candidate, so a policy that returns true on an
// exact tie makes the state already in the frontier win.
type Policy interface {
	Name() string
	Dominates(candidate, incumbent *State) bool
}

// WeightOnly orders states by accumulated weight alone
type WeightOnly struct{}

func (WeightOnly) Name() string {
	return "weight"
}

func (WeightOnly) Dominates(a, b *State) bool {
	return a.Weight <= b.Weight
}

// Pareto compares weight plus the listed criteria indices.
// a dominates b if it is no worse on every tracked criterion and either
// strictly better on one or equal on all of them.
type Pareto struct {
	Criteria []int

	// Separate, when set, reports pairs that must never prune each other,
	// e.g. states riding different trips.
	Separate func(a, b *State) bool
}

func (p Pareto) Name() string {
	return "pareto"
}

func (p Pareto) Dominates(a, b *State) bool {
	if p.Separate != nil && p.Separate(a, b) {
		return false
	}
	if a.Weight > b.Weight {
		return false
	}
	for _, i := range p.Criteria {
		if a.Criteria.At(i) > b.Criteria.At(i) {
			return false
		}
	}
	// no worse anywhere; strictly better somewhere or an exact tie both dominate
	return true
}

// Collapse keeps a single state per location, degenerating to Dijkstra
type Collapse struct{}

func (Collapse) Name() string {
	return "collapse"
}

func (Collapse) Dominates(a, b *State) bool {
	return true
}

// Exhaustive never prunes. Searches using it need a resource bound.
type Exhaustive struct{}

func (Exhaustive) Name() string {
	return "exhaustive"
}

func (Exhaustive) Dominates(a, b *State) bool {
	return false
}

// PolicyByName returns a policy by name. criteria only applies to "pareto".
func PolicyByName(name string, criteria ...int) (Policy, error) {
	switch name {
	case "weight":
		return WeightOnly{}, nil
	case "pareto":
		return Pareto{Criteria: criteria}, nil
	case "collapse":
		return Collapse{}, nil
	case "exhaustive":
		return Exhaustive{}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownPolicy, name)
	}
}
