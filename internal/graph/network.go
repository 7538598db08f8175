package graph

import (
	"math"

	"github.com/passbi/passbi_planner/internal/models"
	"github.com/passbi/passbi_planner/internal/search"
)

// Criteria vector indices written by every traversal
const (
	CriterionElapsed = iota
	CriterionTransfers
	CriterionWalk
)

// Network adapts an InMemoryGraph to the search core for one profile.
// A reversed network walks incoming edges, for arrive-by searches rooted at
// the destination.
type Network struct {
	g       *InMemoryGraph
	profile *Profile
	reverse bool
}

// NewNetwork creates a search view of g
func NewNetwork(g *InMemoryGraph, profile *Profile, reverse bool) *Network {
	return &Network{g: g, profile: profile, reverse: reverse}
}

// Reversed reports whether the network walks incoming edges
func (n *Network) Reversed() bool {
	return n.reverse
}

// EdgesFrom implements search.Network
func (n *Network) EdgesFrom(loc search.Location) []search.Edge {
	var raw []models.Edge
	if n.reverse {
		raw = n.g.GetIncoming(int64(loc))
	} else {
		raw = n.g.GetEdges(int64(loc))
	}

	out := make([]search.Edge, 0, len(raw))
	for _, e := range raw {
		if edge := n.edge(e); edge != nil {
			out = append(out, edge)
		}
	}
	return out
}

// edge wraps a graph edge in its category's traversal; unknown types are dropped
func (n *Network) edge(e models.Edge) search.Edge {
	base := traversal{edge: e, profile: n.profile, reverse: n.reverse}
	switch e.Type {
	case models.EdgeWalk:
		return walkEdge{base}
	case models.EdgeRide:
		// the route ridden is the one of the boarding node
		node, _ := n.g.GetNode(e.FromNodeID)
		return rideEdge{traversal: base, node: node}
	case models.EdgeTransfer:
		return transferEdge{base}
	default:
		return nil
	}
}

// ModelEdge is implemented by every edge this package hands to the search
type ModelEdge interface {
	Model() models.Edge
}

type traversal struct {
	edge    models.Edge
	profile *Profile
	reverse bool
}

// Model returns the underlying graph edge
func (t traversal) Model() models.Edge {
	return t.edge
}

func (t traversal) target() search.Location {
	if t.reverse {
		return search.Location(t.edge.FromNodeID)
	}
	return search.Location(t.edge.ToNodeID)
}

func (t traversal) advance(s *search.State, cost float64, final bool) search.State {
	criteria := s.Criteria.
		Add(CriterionElapsed, float64(t.edge.CostTime)).
		Add(CriterionTransfers, float64(t.edge.CostTransfer)).
		Add(CriterionWalk, float64(t.edge.CostWalk))
	return search.State{
		Location: t.target(),
		Weight:   s.Weight + cost,
		Criteria: criteria,
		Payload:  s.Payload,
		Final:    final,
	}
}

type walkEdge struct{ traversal }

func (e walkEdge) Traverse(s *search.State) (search.State, bool) {
	p := e.profile
	walked := s.Criteria.At(CriterionWalk) + float64(e.edge.CostWalk)
	if p.MaxWalkMeters > 0 && walked > float64(p.MaxWalkMeters) {
		return search.State{}, false
	}
	cost := float64(e.edge.CostTime)*p.WalkReluctance + float64(e.edge.CostWalk)*p.WalkDistanceFactor
	return e.advance(s, cost, true), true
}

type rideEdge struct {
	traversal
	node models.Node
}

func (e rideEdge) Traverse(s *search.State) (search.State, bool) {
	if !e.profile.rides(e.node) {
		return search.State{}, false
	}
	return e.advance(s, float64(e.edge.CostTime), true), true
}

type transferEdge struct{ traversal }

// Traverse yields a non-final state: a transfer alone does not end a journey
func (e transferEdge) Traverse(s *search.State) (search.State, bool) {
	p := e.profile
	if p.ForbidTransfers {
		return search.State{}, false
	}
	cost := float64(e.edge.CostTime) + float64(e.edge.CostTransfer)*p.TransferPenalty
	return e.advance(s, cost, false), true
}

// Heuristic returns an admissible estimate of the weight left to reach the
// nearest target, assuming nothing moves faster than speed (m/s).
// It returns nil when speed is not positive or there are no targets.
func Heuristic(g *InMemoryGraph, targets []models.Node, speed float64) search.Heuristic {
	if speed <= 0 || len(targets) == 0 {
		return nil
	}
	return func(loc search.Location) float64 {
		node, ok := g.GetNode(int64(loc))
		if !ok {
			return 0
		}
		best := math.Inf(1)
		for _, t := range targets {
			if d := haversineDistance(node.Lat, node.Lon, t.Lat, t.Lon); d < best {
				best = d
			}
		}
		return best / speed
	}
}
