package api

import (
	"math"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/passbi/passbi_planner/internal/graph"
	"github.com/passbi/passbi_planner/internal/models"
)

// NearbyStopsResponse represents the response for nearby stops
type NearbyStopsResponse struct {
	Stops []NearbyStop `json:"stops"`
}

// NearbyRouteInfo represents a route serving a nearby stop
type NearbyRouteInfo struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Mode   string `json:"mode"`
	NodeID int64  `json:"node_id"`
}

// NearbyStop is a stop a plan from these coordinates may start or end at
type NearbyStop struct {
	ID          string            `json:"id"`
	Name        string            `json:"name"`
	Lat         float64           `json:"lat"`
	Lon         float64           `json:"lon"`
	DistanceM   int               `json:"distance_meters"`
	Modes       []string          `json:"modes"`
	Routes      []NearbyRouteInfo `json:"routes"`
	RoutesCount int               `json:"routes_count"`
}

// StopsNearby handles the /v2/stops/nearby endpoint. It lists the graph
// nodes the planner snaps the coordinates to, grouped by stop.
func StopsNearby(c *fiber.Ctx) error {
	// Parse query parameters
	latStr := c.Query("lat")
	lonStr := c.Query("lon")

	if latStr == "" || lonStr == "" {
		return c.Status(400).JSON(fiber.Map{
			"error": "missing required parameters: lat and lon",
		})
	}

	lat, lon, err := parseCoordinates(latStr + "," + lonStr)
	if err != nil {
		return c.Status(400).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	limit, err := strconv.Atoi(c.Query("limit", "10"))
	if err != nil || limit < 1 || limit > 50 {
		return c.Status(400).JSON(fiber.Map{
			"error": "invalid limit (must be between 1 and 50)",
		})
	}

	if network == nil || !network.IsLoaded() {
		return c.Status(503).JSON(fiber.Map{
			"error": "routing graph not loaded",
		})
	}

	return c.JSON(NearbyStopsResponse{
		Stops: groupByStop(network.FindNearestNodes(lat, lon, limit), lat, lon),
	})
}

// groupByStop folds nodes into stops, keeping the order nodes came in
func groupByStop(nodes []models.Node, lat, lon float64) []NearbyStop {
	stopOrder := []string{}
	stopMap := make(map[string]*NearbyStop)

	for _, n := range nodes {
		stop, exists := stopMap[n.StopID]
		if !exists {
			stop = &NearbyStop{
				ID:        n.StopID,
				Name:      n.StopName,
				Lat:       n.Lat,
				Lon:       n.Lon,
				DistanceM: int(math.Round(graph.Distance(lat, lon, n.Lat, n.Lon))),
				Routes:    []NearbyRouteInfo{},
				Modes:     []string{},
			}
			stopMap[n.StopID] = stop
			stopOrder = append(stopOrder, n.StopID)
		}

		stop.Routes = append(stop.Routes, NearbyRouteInfo{
			ID:     n.RouteID,
			Name:   n.RouteName,
			Mode:   string(n.Mode),
			NodeID: n.ID,
		})

		// Track unique modes
		modeStr := string(n.Mode)
		found := false
		for _, m := range stop.Modes {
			if m == modeStr {
				found = true
				break
			}
		}
		if !found {
			stop.Modes = append(stop.Modes, modeStr)
		}
	}

	stops := make([]NearbyStop, 0, len(stopOrder))
	for _, id := range stopOrder {
		s := stopMap[id]
		s.RoutesCount = len(s.Routes)
		stops = append(stops, *s)
	}
	return stops
}
