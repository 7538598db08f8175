package planner

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sort"

	"github.com/passbi/passbi_planner/internal/config"
	"github.com/passbi/passbi_planner/internal/graph"
	"github.com/passbi/passbi_planner/internal/itinerary"
	"github.com/passbi/passbi_planner/internal/models"
	"github.com/passbi/passbi_planner/internal/search"
)

// ErrNoNearbyStops is returned when no graph node lies near an endpoint
var ErrNoNearbyStops = errors.New("no stops found nearby")

// Planner answers trip requests against an in-memory graph.
// It is safe for concurrent use: every request runs its own driver.
type Planner struct {
	g   *graph.InMemoryGraph
	cfg config.RoutingConfig
}

// New creates a planner
func New(g *graph.InMemoryGraph, cfg config.RoutingConfig) *Planner {
	return &Planner{g: g, cfg: cfg}
}

// PlanRequest describes one trip query
type PlanRequest struct {
	FromLat, FromLon float64
	ToLat, ToLon     float64
	Mode             string

	// ArriveBy searches backwards from the destination
	ArriveBy bool

	// Batch explores until exhaustion instead of stopping at the goals
	Batch bool

	// MaxTransfers rejects itineraries with more transfers; 0 means no limit
	MaxTransfers int

	BannedRoutes []string
}

// Plan is the answer to a PlanRequest
type Plan struct {
	Mode        string             `json:"mode"`
	Status      string             `json:"status"`
	Itineraries []models.Itinerary `json:"itineraries"`
	Stats       search.Stats       `json:"stats"`
	Frontier    search.Summary     `json:"frontier"`
}

// Diagnosis reports how a search went without building itineraries
type Diagnosis struct {
	Mode         string         `json:"mode"`
	Policy       string         `json:"policy"`
	Status       string         `json:"status"`
	Origins      int            `json:"origins"`
	Goals        int            `json:"goals"`
	GoalsReached int            `json:"goals_reached"`
	Stats        search.Stats   `json:"stats"`
	Frontier     search.Summary `json:"frontier"`
}

// run holds one finished search
type run struct {
	mode    Mode
	origins []search.Location
	goals   []search.Location
	result  *search.Result
}

// Plan searches for itineraries matching req
func (p *Planner) Plan(ctx context.Context, req PlanRequest) (*Plan, error) {
	r, err := p.search(ctx, req)
	if err != nil {
		return nil, err
	}

	plan := &Plan{
		Mode:        r.mode.Name,
		Status:      r.result.Status.String(),
		Itineraries: []models.Itinerary{},
		Stats:       r.result.Stats,
		Frontier:    r.result.Frontier.Summary(),
	}

	for _, h := range p.choose(r) {
		it, err := itinerary.Assemble(r.result.Frontier, h, p.g, req.ArriveBy)
		if err != nil {
			return nil, fmt.Errorf("failed to assemble itinerary: %w", err)
		}
		it.Mode = r.mode.Name
		plan.Itineraries = append(plan.Itineraries, it)
	}

	log.Printf("Plan %s: status=%s itineraries=%d popped=%d states=%d in %v",
		plan.Mode, plan.Status, len(plan.Itineraries), plan.Stats.Popped, plan.Frontier.States, plan.Stats.Elapsed)
	if p.cfg.DumpFrontier {
		r.result.Frontier.Dump()
	}

	return plan, nil
}

// Diagnose runs the same search as Plan and returns its statistics
func (p *Planner) Diagnose(ctx context.Context, req PlanRequest) (*Diagnosis, error) {
	r, err := p.search(ctx, req)
	if err != nil {
		return nil, err
	}
	r.result.Frontier.Dump()

	return &Diagnosis{
		Mode:         r.mode.Name,
		Policy:       r.mode.Policy.Name(),
		Status:       r.result.Status.String(),
		Origins:      len(r.origins),
		Goals:        len(r.goals),
		GoalsReached: len(r.result.BestPerGoal()),
		Stats:        r.result.Stats,
		Frontier:     r.result.Frontier.Summary(),
	}, nil
}

func (p *Planner) search(ctx context.Context, req PlanRequest) (*run, error) {
	limit := max(p.cfg.NearestNodes, 1)

	fromNodes := p.g.FindNearestNodes(req.FromLat, req.FromLon, limit)
	if len(fromNodes) == 0 {
		return nil, fmt.Errorf("%w: origin %.6f,%.6f", ErrNoNearbyStops, req.FromLat, req.FromLon)
	}
	toNodes := p.g.FindNearestNodes(req.ToLat, req.ToLon, limit)
	if len(toNodes) == 0 {
		return nil, fmt.Errorf("%w: destination %.6f,%.6f", ErrNoNearbyStops, req.ToLat, req.ToLon)
	}

	mode := GetMode(req.Mode)
	profile := mode.Profile.Clone()
	for _, route := range req.BannedRoutes {
		profile.Ban(route)
	}
	if err := profile.Validate(); err != nil {
		return nil, err
	}

	// arrive-by searches are rooted at the destination
	roots, targets := fromNodes, toNodes
	if req.ArriveBy {
		roots, targets = toNodes, fromNodes
	}

	maxExplored := mode.MaxExplored
	if maxExplored == 0 {
		maxExplored = p.cfg.MaxExplored
	}

	sreq := search.Request{
		Origins:         locations(roots),
		InitialCriteria: search.Vector{0, 0, 0},
		Goals:           locations(targets),
		Policy:          mode.Policy,
		Batch:           req.Batch,
		MaxWeight:       p.cfg.MaxWeight,
		MaxExplored:     maxExplored,
		ArriveBy:        req.ArriveBy,
	}
	if !req.Batch {
		sreq.Heuristic = graph.Heuristic(p.g, targets, p.cfg.HeuristicSpeed)
	}
	if req.MaxTransfers > 0 {
		sreq.Accept = append(sreq.Accept, maxTransfers(req.MaxTransfers))
	}

	if p.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.cfg.Timeout)
		defer cancel()
	}

	driver, err := search.NewDriver(graph.NewNetwork(p.g, profile, req.ArriveBy), sreq)
	if err != nil {
		return nil, err
	}
	result, err := driver.Run(ctx)
	if err != nil {
		return nil, fmt.Errorf("search %s aborted: %w", mode.Name, err)
	}

	return &run{mode: mode, origins: sreq.Origins, goals: sreq.Goals, result: result}, nil
}

// choose picks the itineraries to return: accepted states at every goal,
// cheapest first, dropping any that another kept state dominates
func (p *Planner) choose(r *run) []search.Handle {
	f := r.result.Frontier

	var candidates []search.Handle
	for _, goal := range r.goals {
		candidates = append(candidates, r.result.Accepted(goal)...)
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		return f.At(candidates[i]).Weight < f.At(candidates[j]).Weight
	})

	limit := max(p.cfg.MaxItineraries, 1)
	var kept []search.Handle
	for _, h := range candidates {
		s := f.At(h)
		dominated := false
		for _, k := range kept {
			ks := f.At(k)
			if r.mode.Policy.Dominates(&ks, &s) {
				dominated = true
				break
			}
		}
		if dominated {
			continue
		}
		kept = append(kept, h)
		if len(kept) == limit {
			break
		}
	}
	return kept
}

func maxTransfers(n int) search.Predicate {
	return func(s *search.State) bool {
		return s.Criteria.At(graph.CriterionTransfers) <= float64(n)
	}
}

func locations(nodes []models.Node) []search.Location {
	out := make([]search.Location, len(nodes))
	for i, n := range nodes {
		out[i] = search.Location(n.ID)
	}
	return out
}
