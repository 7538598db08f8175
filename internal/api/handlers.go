package api

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math"
	"strconv"
	"strings"
	"sync"

	"github.com/gofiber/fiber/v2"
	"github.com/passbi/passbi_planner/internal/cache"
	"github.com/passbi/passbi_planner/internal/graph"
	"github.com/passbi/passbi_planner/internal/models"
	"github.com/passbi/passbi_planner/internal/planner"
)

// HealthCheck reports whether one dependency is usable
type HealthCheck func(ctx context.Context) error

var (
	plans   *planner.Planner
	network *graph.InMemoryGraph
	store   *cache.PlanStore
	checks  map[string]HealthCheck
)

// Init wires the handlers to a planner and its graph. A nil plan store
// disables caching; checks are run by /health in addition to the graph check.
func Init(p *planner.Planner, g *graph.InMemoryGraph, s *cache.PlanStore, healthChecks map[string]HealthCheck) {
	plans = p
	network = g
	store = s
	checks = healthChecks
}

// RouteSearchResponse is the API response structure
type RouteSearchResponse struct {
	Routes map[string]*RouteResult `json:"routes"`
}

// RouteResult represents a single route option
type RouteResult struct {
	DurationSeconds int           `json:"duration_seconds"`
	WalkDistanceM   int           `json:"walk_distance_meters"`
	Transfers       int           `json:"transfers"`
	Steps           []models.Step `json:"steps"`

	// Alternatives holds the other non-dominated options of a multi-criteria mode
	Alternatives []*RouteResult `json:"alternatives,omitempty"`
}

func routeResult(it models.Itinerary) *RouteResult {
	return &RouteResult{
		DurationSeconds: it.DurationSecs,
		WalkDistanceM:   it.WalkDistanceM,
		Transfers:       it.Transfers,
		Steps:           it.Steps,
	}
}

// Plan handles the /v2/plan endpoint
func Plan(c *fiber.Ctx) error {
	req, err := parsePlanRequest(c)
	if err != nil {
		return c.Status(400).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	plan, err := computePlan(c.UserContext(), req)
	if err != nil {
		return planError(c, err)
	}

	if len(plan.Itineraries) == 0 {
		return c.Status(404).JSON(fiber.Map{
			"error":  "no routes found between the specified locations",
			"status": plan.Status,
		})
	}

	return c.JSON(plan)
}

// RouteSearch handles the /v2/route-search endpoint
func RouteSearch(c *fiber.Ctx) error {
	base, err := parsePlanRequest(c)
	if err != nil {
		return c.Status(400).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	// Every mode runs its own search in parallel over the shared graph
	ctx := c.UserContext()
	modes := planner.GetAllModes()

	type modeResult struct {
		mode string
		plan *planner.Plan
		err  error
	}

	resultChan := make(chan modeResult, len(modes))
	var wg sync.WaitGroup

	for _, mode := range modes {
		wg.Add(1)
		go func(name string) {
			defer wg.Done()
			req := base
			req.Mode = name
			plan, err := computePlan(ctx, req)
			resultChan <- modeResult{mode: name, plan: plan, err: err}
		}(mode.Name)
	}

	// Wait for all goroutines to complete
	go func() {
		wg.Wait()
		close(resultChan)
	}()

	// Collect results
	routes := make(map[string]*RouteResult)
	var firstErr error
	for result := range resultChan {
		if result.err != nil {
			log.Printf("Route computation failed for mode %s: %v", result.mode, result.err)
			if firstErr == nil {
				firstErr = result.err
			}
			// Still continue with other modes
			continue
		}

		if len(result.plan.Itineraries) == 0 {
			continue
		}
		best := routeResult(result.plan.Itineraries[0])
		for _, alt := range result.plan.Itineraries[1:] {
			best.Alternatives = append(best.Alternatives, routeResult(alt))
		}
		routes[result.mode] = best
	}

	// Check if we got at least one route
	if len(routes) == 0 {
		if errors.Is(firstErr, planner.ErrNoNearbyStops) {
			return planError(c, firstErr)
		}
		return c.Status(404).JSON(fiber.Map{
			"error": "no routes found between the specified locations",
		})
	}

	return c.JSON(RouteSearchResponse{
		Routes: routes,
	})
}

// DebugSearch handles the /v2/debug/search endpoint
func DebugSearch(c *fiber.Ctx) error {
	req, err := parsePlanRequest(c)
	if err != nil {
		return c.Status(400).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	diag, err := plans.Diagnose(c.UserContext(), req)
	if err != nil {
		return planError(c, err)
	}
	return c.JSON(diag)
}

// computePlan plans a request with caching
func computePlan(ctx context.Context, req planner.PlanRequest) (*planner.Plan, error) {
	if store == nil {
		return plans.Plan(ctx, req)
	}
	return store.Compute(ctx, cache.RequestKey(req), func(ctx context.Context) (*planner.Plan, error) {
		return plans.Plan(ctx, req)
	})
}

func planError(c *fiber.Ctx, err error) error {
	if errors.Is(err, planner.ErrNoNearbyStops) {
		return c.Status(404).JSON(fiber.Map{
			"error": err.Error(),
		})
	}
	log.Printf("Planning failed: %v", err)
	return c.Status(500).JSON(fiber.Map{
		"error": "internal server error",
	})
}

// Health handles the /health endpoint
func Health(c *fiber.Ctx) error {
	ctx := c.UserContext()

	results := fiber.Map{}
	healthy := true

	graphStatus := "ok"
	if network == nil || !network.IsLoaded() {
		graphStatus = "not loaded"
		healthy = false
	}
	results["graph"] = graphStatus

	for name, check := range checks {
		status := "ok"
		if err := check(ctx); err != nil {
			status = err.Error()
			healthy = false
		}
		results[name] = status
	}

	// Overall status
	status := "healthy"
	httpStatus := 200
	if !healthy {
		status = "unhealthy"
		httpStatus = 503
	}

	return c.Status(httpStatus).JSON(fiber.Map{
		"status": status,
		"checks": results,
	})
}

// parsePlanRequest reads the query parameters shared by planning endpoints
func parsePlanRequest(c *fiber.Ctx) (planner.PlanRequest, error) {
	var req planner.PlanRequest

	// Parse query parameters
	fromStr := c.Query("from")
	toStr := c.Query("to")

	if fromStr == "" || toStr == "" {
		return req, fmt.Errorf("missing required parameters: from and to")
	}

	var err error
	req.FromLat, req.FromLon, err = parseCoordinates(fromStr)
	if err != nil {
		return req, fmt.Errorf("invalid 'from' coordinates: %v", err)
	}
	req.ToLat, req.ToLon, err = parseCoordinates(toStr)
	if err != nil {
		return req, fmt.Errorf("invalid 'to' coordinates: %v", err)
	}

	req.Mode = c.Query("mode", "simple")
	req.ArriveBy = c.QueryBool("arrive_by", false)
	req.Batch = c.QueryBool("batch", false)

	if s := c.Query("max_transfers"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 0 {
			return req, fmt.Errorf("invalid max_transfers: %q", s)
		}
		req.MaxTransfers = n
	}

	if s := c.Query("banned"); s != "" {
		for _, route := range strings.Split(s, ",") {
			if route = strings.TrimSpace(route); route != "" {
				req.BannedRoutes = append(req.BannedRoutes, route)
			}
		}
	}

	return req, nil
}

// parseCoordinates parses "lat,lon" string into floats
func parseCoordinates(coordStr string) (lat, lon float64, err error) {
	parts := strings.Split(coordStr, ",")
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("expected format: lat,lon")
	}

	lat, err = strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid latitude: %w", err)
	}

	lon, err = strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid longitude: %w", err)
	}

	// Validate ranges
	if math.IsNaN(lat) || lat < -90 || lat > 90 {
		return 0, 0, fmt.Errorf("latitude must be between -90 and 90")
	}
	if math.IsNaN(lon) || lon < -180 || lon > 180 {
		return 0, 0, fmt.Errorf("longitude must be between -180 and 180")
	}

	return lat, lon, nil
}
