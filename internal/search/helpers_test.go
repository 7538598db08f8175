package search

// testEdge is a static edge with a weight and an elapsed-time increment
type testEdge struct {
	to       Location
	cost     float64
	elapsed  float64
	nonFinal bool
	forbid   bool
}

func (e testEdge) Traverse(s *State) (State, bool) {
	if e.forbid {
		return State{}, false
	}
	return State{
		Location: e.to,
		Weight:   s.Weight + e.cost,
		Criteria: s.Criteria.Add(0, e.elapsed),
		Final:    !e.nonFinal,
	}, true
}

// testNetwork records how often each location was expanded
type testNetwork struct {
	edges    map[Location][]Edge
	expanded map[Location]int
}

func newTestNetwork() *testNetwork {
	return &testNetwork{
		edges:    make(map[Location][]Edge),
		expanded: make(map[Location]int),
	}
}

func (n *testNetwork) link(from, to Location, cost float64) *testNetwork {
	return n.add(from, testEdge{to: to, cost: cost})
}

func (n *testNetwork) add(from Location, e testEdge) *testNetwork {
	n.edges[from] = append(n.edges[from], e)
	return n
}

func (n *testNetwork) EdgesFrom(loc Location) []Edge {
	n.expanded[loc]++
	return n.edges[loc]
}

func st(loc Location, weight float64, criteria ...float64) State {
	return State{Location: loc, Weight: weight, Criteria: Vector(criteria), Final: true, parent: NoHandle}
}
