package planner

import (
	"testing"

	"github.com/passbi/passbi_planner/internal/config"
	"github.com/passbi/passbi_planner/internal/graph"
	"github.com/passbi/passbi_planner/internal/models"
	"github.com/passbi/passbi_planner/internal/search"
)

// Stops are far enough apart that each endpoint only snaps to its own stop.
//
//	A --R1 300s--> B ==transfer 180s==> B --R2 240s--> C
//	A --R3 1200s-----------------------------------> C
//	A --walk 1500s, 2000m----------------------------> C
var (
	stopA = [2]float64{14.70, -17.44}
	stopC = [2]float64{14.76, -17.44}
)

func fixture() *graph.InMemoryGraph {
	nodes := []models.Node{
		{ID: 1, StopID: "A", StopName: "Alpha", RouteID: "R1", RouteName: "1", Mode: models.ModeBus, Lat: 14.70, Lon: -17.44},
		{ID: 2, StopID: "B", StopName: "Bravo", RouteID: "R1", RouteName: "1", Mode: models.ModeBus, Lat: 14.73, Lon: -17.44},
		{ID: 3, StopID: "B", StopName: "Bravo", RouteID: "R2", RouteName: "BRT", Mode: models.ModeBRT, Lat: 14.73, Lon: -17.44},
		{ID: 4, StopID: "C", StopName: "Charlie", RouteID: "R2", RouteName: "BRT", Mode: models.ModeBRT, Lat: 14.76, Lon: -17.44},
		{ID: 5, StopID: "A", StopName: "Alpha", RouteID: "R3", RouteName: "3", Mode: models.ModeBus, Lat: 14.70, Lon: -17.44},
		{ID: 6, StopID: "C", StopName: "Charlie", RouteID: "R3", RouteName: "3", Mode: models.ModeBus, Lat: 14.76, Lon: -17.44},
	}
	edges := []models.Edge{
		{ID: 10, FromNodeID: 1, ToNodeID: 2, Type: models.EdgeRide, CostTime: 300},
		{ID: 11, FromNodeID: 2, ToNodeID: 3, Type: models.EdgeTransfer, CostTime: 180, CostTransfer: 1},
		{ID: 12, FromNodeID: 3, ToNodeID: 4, Type: models.EdgeRide, CostTime: 240},
		{ID: 13, FromNodeID: 1, ToNodeID: 4, Type: models.EdgeWalk, CostTime: 1500, CostWalk: 2000},
		{ID: 14, FromNodeID: 5, ToNodeID: 6, Type: models.EdgeRide, CostTime: 1200},
	}
	return graph.NewInMemoryGraph(nodes, edges)
}

func testRouting() config.RoutingConfig {
	cfg := config.Default().Routing
	cfg.Timeout = 0
	return cfg
}

// edgeCost traverses edge id out of its source under mode's profile
func edgeCost(t *testing.T, g *graph.InMemoryGraph, mode Mode, from search.Location, id int64) (float64, bool) {
	t.Helper()
	for _, e := range graph.NewNetwork(g, mode.Profile, false).EdgesFrom(from) {
		if e.(graph.ModelEdge).Model().ID != id {
			continue
		}
		root := search.Root(from, nil)
		next, ok := e.Traverse(&root)
		return next.Weight, ok
	}
	t.Fatalf("edge %d not found from %d", id, from)
	return 0, false
}

// Both connections end on R5 at C, so they compete at a single goal node.
//
//	A --R1 300s--> B ==transfer 180s==> B --R5 240s--> C
//	A --R5 900s--> B
func sharedGoalFixture() *graph.InMemoryGraph {
	nodes := []models.Node{
		{ID: 1, StopID: "A", StopName: "Alpha", RouteID: "R1", RouteName: "1", Mode: models.ModeBus, Lat: 14.70, Lon: -17.44},
		{ID: 2, StopID: "B", StopName: "Bravo", RouteID: "R1", RouteName: "1", Mode: models.ModeBus, Lat: 14.73, Lon: -17.44},
		{ID: 3, StopID: "B", StopName: "Bravo", RouteID: "R5", RouteName: "5", Mode: models.ModeBus, Lat: 14.73, Lon: -17.44},
		{ID: 4, StopID: "C", StopName: "Charlie", RouteID: "R5", RouteName: "5", Mode: models.ModeBus, Lat: 14.76, Lon: -17.44},
		{ID: 5, StopID: "A", StopName: "Alpha", RouteID: "R5", RouteName: "5", Mode: models.ModeBus, Lat: 14.70, Lon: -17.44},
	}
	edges := []models.Edge{
		{ID: 10, FromNodeID: 1, ToNodeID: 2, Type: models.EdgeRide, CostTime: 300},
		{ID: 11, FromNodeID: 2, ToNodeID: 3, Type: models.EdgeTransfer, CostTime: 180, CostTransfer: 1},
		{ID: 12, FromNodeID: 3, ToNodeID: 4, Type: models.EdgeRide, CostTime: 240},
		{ID: 13, FromNodeID: 5, ToNodeID: 3, Type: models.EdgeRide, CostTime: 900},
	}
	return graph.NewInMemoryGraph(nodes, edges)
}
