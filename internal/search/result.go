package search

import "sort"

// Result is the outcome of a search. After a Bounded termination it holds
// whatever the frontier reached and should be treated as best effort.
type Result struct {
	Status   Status
	Stats    Stats
	Frontier *Frontier

	goals  []Location
	accept Predicate
}

// Complete reports whether the search ran without hitting a resource bound
func (r *Result) Complete() bool {
	return r.Status == Exhausted || r.Status == GoalSatisfied
}

// Best returns the cheapest final state at goal that passes the request's
// legality filters and any extra predicates
func (r *Result) Best(goal Location, extra ...Predicate) (Handle, bool) {
	return r.Frontier.BestAccepted(goal, r.predicate(extra))
}

// BestPerGoal returns the best accepted state for every reached goal
func (r *Result) BestPerGoal(extra ...Predicate) map[Location]Handle {
	accept := r.predicate(extra)
	out := make(map[Location]Handle, len(r.goals))
	for _, goal := range r.goals {
		if h, ok := r.Frontier.BestAccepted(goal, accept); ok {
			out[goal] = h
		}
	}
	return out
}

// Accepted returns every retained state at goal passing the filters,
// cheapest first
func (r *Result) Accepted(goal Location, extra ...Predicate) []Handle {
	accept := r.predicate(extra)
	var out []Handle
	for _, h := range r.Frontier.States(goal) {
		s := r.Frontier.At(h)
		if accept(&s) {
			out = append(out, h)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return r.Frontier.At(out[i]).Weight < r.Frontier.At(out[j]).Weight
	})
	return out
}

func (r *Result) predicate(extra []Predicate) Predicate {
	if len(extra) == 0 {
		return r.accept
	}
	return allOf(append([]Predicate{r.accept}, extra...)...)
}
