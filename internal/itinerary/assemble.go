package itinerary

import (
	"errors"
	"fmt"

	"github.com/passbi/passbi_planner/internal/graph"
	"github.com/passbi/passbi_planner/internal/models"
	"github.com/passbi/passbi_planner/internal/search"
)

var (
	// ErrForeignEdge is returned when a state was reached over an edge the
	// graph package did not create
	ErrForeignEdge = errors.New("itinerary: state reached over a foreign edge")

	// ErrMissingNode is returned when an edge endpoint is not in the graph
	ErrMissingNode = errors.New("itinerary: node not found")
)

// Assemble walks the predecessor chain of h back to its root and turns it
// into an itinerary in travel order. reverse marks a search rooted at the
// destination, whose chain already runs from origin to destination.
func Assemble(f *search.Frontier, h search.Handle, g *graph.InMemoryGraph, reverse bool) (models.Itinerary, error) {
	end := f.At(h)

	var edges []models.Edge
	s := end
	for !s.IsRoot() {
		me, ok := s.Via().(graph.ModelEdge)
		if !ok {
			return models.Itinerary{}, fmt.Errorf("%w at location %d", ErrForeignEdge, s.Location)
		}
		edges = append(edges, me.Model())
		s = f.At(s.Parent())
	}
	root := s

	if !reverse {
		for i, j := 0, len(edges)-1; i < j; i, j = i+1, j-1 {
			edges[i], edges[j] = edges[j], edges[i]
		}
	}

	nodes, err := nodesAlong(g, edges, root, end, reverse)
	if err != nil {
		return models.Itinerary{}, err
	}

	elapsed := int(end.Criteria.At(graph.CriterionElapsed))
	return models.Itinerary{
		Nodes:         nodes,
		Edges:         edges,
		Weight:        end.Weight,
		DurationSecs:  elapsed,
		DurationMins:  elapsed / 60,
		WalkDistanceM: int(end.Criteria.At(graph.CriterionWalk)),
		Transfers:     int(end.Criteria.At(graph.CriterionTransfers)),
		Steps:         BuildSteps(nodes, edges),
	}, nil
}

// nodesAlong lists the nodes visited by edges, origin first
func nodesAlong(g *graph.InMemoryGraph, edges []models.Edge, root, end search.State, reverse bool) ([]models.Node, error) {
	lookup := func(id int64) (models.Node, error) {
		node, ok := g.GetNode(id)
		if !ok {
			return models.Node{}, fmt.Errorf("%w: %d", ErrMissingNode, id)
		}
		return node, nil
	}

	if len(edges) == 0 {
		origin := root.Location
		if reverse {
			origin = end.Location
		}
		node, err := lookup(int64(origin))
		if err != nil {
			return nil, err
		}
		return []models.Node{node}, nil
	}

	nodes := make([]models.Node, 0, len(edges)+1)
	first, err := lookup(edges[0].FromNodeID)
	if err != nil {
		return nil, err
	}
	nodes = append(nodes, first)
	for _, e := range edges {
		node, err := lookup(e.ToNodeID)
		if err != nil {
			return nil, err
		}
		nodes = append(nodes, node)
	}
	return nodes, nil
}
