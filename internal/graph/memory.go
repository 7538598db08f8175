package graph

import (
	"context"
	"fmt"
	"log"
	"math"
	"sort"
	"sync"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/passbi/passbi_planner/internal/models"
)

// InMemoryGraph holds the entire routing graph in memory for searches.
// Searches only read it; LoadFromDB swaps in new maps under the write lock.
type InMemoryGraph struct {
	mu        sync.RWMutex
	Nodes     map[int64]models.Node   // nodeID -> Node
	Edges     map[int64][]models.Edge // fromNodeID -> []Edge
	Incoming  map[int64][]models.Edge // toNodeID -> []Edge
	StopNodes map[string][]int64      // stopID -> []nodeID
	edgeCount int
	loaded    bool
}

var (
	globalGraph     *InMemoryGraph
	globalGraphOnce sync.Once
)

// GetGraph returns the singleton in-memory graph
func GetGraph() *InMemoryGraph {
	globalGraphOnce.Do(func() {
		globalGraph = &InMemoryGraph{
			Nodes:     make(map[int64]models.Node),
			Edges:     make(map[int64][]models.Edge),
			Incoming:  make(map[int64][]models.Edge),
			StopNodes: make(map[string][]int64),
		}
	})
	return globalGraph
}

// NewInMemoryGraph builds a loaded graph from node and edge slices
func NewInMemoryGraph(nodes []models.Node, edges []models.Edge) *InMemoryGraph {
	g := &InMemoryGraph{}
	g.swap(nodes, edges)
	return g
}

// LoadFromDB loads the entire graph from PostgreSQL into memory
func (g *InMemoryGraph) LoadFromDB(ctx context.Context, db *pgxpool.Pool) error {
	startTime := time.Now()
	log.Println("Loading graph into memory...")

	// 1. Load all nodes
	var nodes []models.Node

	nodeRows, err := db.Query(ctx, `
		SELECT n.id, n.stop_id, s.name, n.route_id,
		       COALESCE(rt.short_name, rt.long_name, rt.id) as route_name,
		       n.mode, s.lat, s.lon
		FROM node n
		JOIN stop s ON s.id = n.stop_id
		LEFT JOIN route rt ON rt.id = n.route_id
	`)
	if err != nil {
		return fmt.Errorf("failed to load nodes: %w", err)
	}
	defer nodeRows.Close()

	for nodeRows.Next() {
		var node models.Node
		if err := nodeRows.Scan(&node.ID, &node.StopID, &node.StopName, &node.RouteID,
			&node.RouteName, &node.Mode, &node.Lat, &node.Lon); err != nil {
			log.Printf("Warning: failed to scan node: %v", err)
			continue
		}
		nodes = append(nodes, node)
	}
	if err := nodeRows.Err(); err != nil {
		return fmt.Errorf("failed to read nodes: %w", err)
	}

	log.Printf("  Loaded %d nodes", len(nodes))

	// 2. Load all edges
	var edges []models.Edge

	edgeRows, err := db.Query(ctx, `
		SELECT id, from_node_id, to_node_id, type, cost_time, cost_walk, cost_transfer,
		       COALESCE(trip_id, ''), COALESCE(sequence, 0)
		FROM edge
		ORDER BY from_node_id, id
	`)
	if err != nil {
		return fmt.Errorf("failed to load edges: %w", err)
	}
	defer edgeRows.Close()

	for edgeRows.Next() {
		var edge models.Edge
		if err := edgeRows.Scan(&edge.ID, &edge.FromNodeID, &edge.ToNodeID, &edge.Type,
			&edge.CostTime, &edge.CostWalk, &edge.CostTransfer, &edge.TripID, &edge.Sequence); err != nil {
			log.Printf("Warning: failed to scan edge: %v", err)
			continue
		}
		if edge.CostTime < 0 || edge.CostWalk < 0 || edge.CostTransfer < 0 {
			log.Printf("Warning: skipping edge %d with negative cost", edge.ID)
			continue
		}
		edges = append(edges, edge)
	}
	if err := edgeRows.Err(); err != nil {
		return fmt.Errorf("failed to read edges: %w", err)
	}

	log.Printf("  Loaded %d edges", len(edges))

	g.swap(nodes, edges)

	duration := time.Since(startTime)
	log.Printf("Graph loaded in %v (%d nodes, %d edges)", duration, len(nodes), len(edges))

	return nil
}

// swap indexes nodes and edges and replaces the current maps
func (g *InMemoryGraph) swap(nodeList []models.Node, edgeList []models.Edge) {
	nodes := make(map[int64]models.Node, len(nodeList))
	stopNodes := make(map[string][]int64)
	for _, node := range nodeList {
		nodes[node.ID] = node
		stopNodes[node.StopID] = append(stopNodes[node.StopID], node.ID)
	}

	edges := make(map[int64][]models.Edge)
	incoming := make(map[int64][]models.Edge)
	for _, edge := range edgeList {
		edges[edge.FromNodeID] = append(edges[edge.FromNodeID], edge)
		incoming[edge.ToNodeID] = append(incoming[edge.ToNodeID], edge)
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	g.Nodes = nodes
	g.Edges = edges
	g.Incoming = incoming
	g.StopNodes = stopNodes
	g.edgeCount = len(edgeList)
	g.loaded = true
}

// IsLoaded returns true if the graph has been loaded
func (g *InMemoryGraph) IsLoaded() bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.loaded
}

// Size returns node and edge counts
func (g *InMemoryGraph) Size() (nodes, edges int) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.Nodes), g.edgeCount
}

// GetNode returns a node by ID (in-memory lookup)
func (g *InMemoryGraph) GetNode(nodeID int64) (models.Node, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	node, ok := g.Nodes[nodeID]
	return node, ok
}

// GetEdges returns outgoing edges for a node (in-memory lookup)
func (g *InMemoryGraph) GetEdges(nodeID int64) []models.Edge {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.Edges[nodeID]
}

// GetIncoming returns incoming edges for a node, used by arrive-by searches
func (g *InMemoryGraph) GetIncoming(nodeID int64) []models.Edge {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.Incoming[nodeID]
}

// FindNearestNodes finds the N nearest nodes to coordinates using in-memory search
// BRT/TER stops are searched within a wider radius (2km) to prioritize mass transit
func (g *InMemoryGraph) FindNearestNodes(lat, lon float64, limit int) []models.Node {
	g.mu.RLock()
	defer g.mu.RUnlock()

	type stopInfo struct {
		stopID         string
		dist           float64
		hasMassTransit bool // true if stop has BRT or TER nodes
	}

	stopMap := make(map[string]*stopInfo)
	for _, node := range g.Nodes {
		si, seen := stopMap[node.StopID]
		if !seen {
			dist := haversineDistance(lat, lon, node.Lat, node.Lon)
			si = &stopInfo{stopID: node.StopID, dist: dist}
			stopMap[node.StopID] = si
		}
		if node.Mode == models.ModeBRT || node.Mode == models.ModeTER {
			si.hasMassTransit = true
		}
	}

	// Separate mass transit vs regular stops with different radii
	var massTransitStops []stopInfo
	var regularStops []stopInfo

	for _, si := range stopMap {
		if si.hasMassTransit && si.dist <= 2000 {
			massTransitStops = append(massTransitStops, *si)
		} else if si.dist <= 1000 {
			regularStops = append(regularStops, *si)
		}
	}

	// Sort each group by distance, stop ID breaks ties so results are stable
	sortStops := func(stops []stopInfo) {
		sort.Slice(stops, func(i, j int) bool {
			if stops[i].dist != stops[j].dist {
				return stops[i].dist < stops[j].dist
			}
			return stops[i].stopID < stops[j].stopID
		})
	}
	sortStops(massTransitStops)
	sortStops(regularStops)

	// Take top mass transit stops (up to 2) + top regular stops (up to 3)
	maxMassTransit := min(2, len(massTransitStops))
	maxRegular := min(3, len(regularStops))

	selectedStops := make(map[string]bool)
	var orderedStopIDs []string

	for i := 0; i < maxMassTransit; i++ {
		sid := massTransitStops[i].stopID
		if !selectedStops[sid] {
			selectedStops[sid] = true
			orderedStopIDs = append(orderedStopIDs, sid)
		}
	}
	for i := 0; i < maxRegular; i++ {
		sid := regularStops[i].stopID
		if !selectedStops[sid] {
			selectedStops[sid] = true
			orderedStopIDs = append(orderedStopIDs, sid)
		}
	}

	// Collect all nodes from selected stops
	var result []models.Node
	for _, stopID := range orderedStopIDs {
		for _, nodeID := range g.StopNodes[stopID] {
			if node, ok := g.Nodes[nodeID]; ok {
				result = append(result, node)
			}
		}
	}

	if len(result) > limit {
		result = result[:limit]
	}

	return result
}

// Distance returns the great-circle distance between two coordinates in meters
func Distance(lat1, lon1, lat2, lon2 float64) float64 {
	return haversineDistance(lat1, lon1, lat2, lon2)
}

// haversineDistance calculates distance between two coordinates in meters
func haversineDistance(lat1, lon1, lat2, lon2 float64) float64 {
	const earthRadius = 6371000
	lat1Rad := lat1 * math.Pi / 180
	lat2Rad := lat2 * math.Pi / 180
	deltaLat := (lat2 - lat1) * math.Pi / 180
	deltaLon := (lon2 - lon1) * math.Pi / 180

	a := math.Sin(deltaLat/2)*math.Sin(deltaLat/2) +
		math.Cos(lat1Rad)*math.Cos(lat2Rad)*
			math.Sin(deltaLon/2)*math.Sin(deltaLon/2)

	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return earthRadius * c
}
