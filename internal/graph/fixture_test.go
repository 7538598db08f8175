package graph

import "github.com/passbi/passbi_planner/internal/models"

// fixture: ride R1 from A to B, transfer to R2 at B, ride R2 to C,
// plus a long walk from A straight to C
func fixture() *InMemoryGraph {
	nodes := []models.Node{
		{ID: 1, StopID: "A", StopName: "Alpha", RouteID: "R1", RouteName: "1", Mode: models.ModeBus, Lat: 14.700, Lon: -17.440},
		{ID: 2, StopID: "B", StopName: "Bravo", RouteID: "R1", RouteName: "1", Mode: models.ModeBus, Lat: 14.710, Lon: -17.440},
		{ID: 3, StopID: "B", StopName: "Bravo", RouteID: "R2", RouteName: "BRT", Mode: models.ModeBRT, Lat: 14.710, Lon: -17.440},
		{ID: 4, StopID: "C", StopName: "Charlie", RouteID: "R2", RouteName: "BRT", Mode: models.ModeBRT, Lat: 14.720, Lon: -17.440},
	}
	edges := []models.Edge{
		{ID: 10, FromNodeID: 1, ToNodeID: 2, Type: models.EdgeRide, CostTime: 300, TripID: "t1", Sequence: 1},
		{ID: 11, FromNodeID: 2, ToNodeID: 3, Type: models.EdgeTransfer, CostTime: 180, CostTransfer: 1},
		{ID: 12, FromNodeID: 3, ToNodeID: 4, Type: models.EdgeRide, CostTime: 240, TripID: "t2", Sequence: 1},
		{ID: 13, FromNodeID: 1, ToNodeID: 4, Type: models.EdgeWalk, CostTime: 1500, CostWalk: 2000},
	}
	return NewInMemoryGraph(nodes, edges)
}

func baseProfile() *Profile {
	return &Profile{Name: "test", WalkReluctance: 1}
}
