package planner

import (
	"github.com/passbi/passbi_planner/internal/graph"
	"github.com/passbi/passbi_planner/internal/search"
)

// Mode bundles how a search weighs edges and which states it keeps.
// Profile is a prototype: every request clones it.
type Mode struct {
	Name    string
	Profile *graph.Profile
	Policy  search.Policy

	// MaxExplored caps expansions for this mode; 0 falls back to the planner config
	MaxExplored int
}

// NoTransferMode absolutely forbids transfers - single line only
// Most restrictive mode, with a moderate walk penalty
func NoTransferMode() Mode {
	return Mode{
		Name: "no_transfer",
		Profile: &graph.Profile{
			Name:            "no_transfer",
			WalkReluctance:  5,
			ForbidTransfers: true,
		},
		Policy:      search.WeightOnly{},
		MaxExplored: 3000,
	}
}

// DirectMode prioritizes routes with no transfers
// Heavy walk penalty, transfers are not allowed
func DirectMode() Mode {
	return Mode{
		Name: "direct",
		Profile: &graph.Profile{
			Name:            "direct",
			WalkReluctance:  10,
			ForbidTransfers: true,
		},
		Policy:      search.WeightOnly{},
		MaxExplored: 5000,
	}
}

// SimpleMode balances time, walking, and transfers
// Good middle-ground option for most users
func SimpleMode() Mode {
	return Mode{
		Name: "simple",
		Profile: &graph.Profile{
			Name:               "simple",
			WalkReluctance:     1,
			WalkDistanceFactor: 2,   // walking is 2x as costly as riding
			TransferPenalty:    180, // 3 min penalty per transfer
		},
		Policy:      search.WeightOnly{},
		MaxExplored: 10000,
	}
}

// FastMode optimizes purely for minimum travel time
func FastMode() Mode {
	return Mode{
		Name: "fast",
		Profile: &graph.Profile{
			Name:           "fast",
			WalkReluctance: 1,
		},
		Policy:      search.WeightOnly{},
		MaxExplored: 10000,
	}
}

// ParetoMode keeps every trade-off between cost, travel time and transfers
// and returns one itinerary per non-dominated option
func ParetoMode() Mode {
	return Mode{
		Name: "pareto",
		Profile: &graph.Profile{
			Name:               "pareto",
			WalkReluctance:     1,
			WalkDistanceFactor: 2,
			TransferPenalty:    180,
		},
		Policy: search.Pareto{Criteria: []int{graph.CriterionElapsed, graph.CriterionTransfers}},
	}
}

// GetMode returns a mode by name, defaulting to simple
func GetMode(name string) Mode {
	switch name {
	case "no_transfer":
		return NoTransferMode()
	case "direct":
		return DirectMode()
	case "simple":
		return SimpleMode()
	case "fast":
		return FastMode()
	case "pareto":
		return ParetoMode()
	default:
		return SimpleMode()
	}
}

// GetAllModes returns all available modes
func GetAllModes() []Mode {
	return []Mode{
		NoTransferMode(),
		DirectMode(),
		SimpleMode(),
		FastMode(),
		ParetoMode(),
	}
}
