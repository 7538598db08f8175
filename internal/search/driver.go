package search

import (
	"context"
	"fmt"
	"math"
	"time"
)

// Network is the read-only view of the graph a search walks
type Network interface {
	EdgesFrom(loc Location) []Edge
}

// Edge turns a state at its source into a state at its target.
// ok is false when the edge cannot be used from s.
type Edge interface {
	Traverse(s *State) (next State, ok bool)
}

// Heuristic estimates the remaining weight from loc to the goals.
// It must never overestimate.
type Heuristic func(loc Location) float64

// Request configures one search invocation
type Request struct {
	Origins         []Location
	InitialCriteria Vector
	Goals           []Location
	Policy          Policy

	// Batch disables goal direction and early termination. Without it, policies
	// comparing criteria beyond weight assume no edge decreases a criterion.
	Batch     bool
	Heuristic Heuristic

	// Zero values disable the bound
	MaxWeight   float64
	MaxExplored int
	Deadline    time.Time

	// Accept filters states eligible as path endpoints, on top of IsFinal
	Accept []Predicate

	// ArriveBy marks a search walking backwards from the destination.
	// The network handed to the driver is already reversed.
	ArriveBy bool
}

// Status is the driver's lifecycle state
type Status int

const (
	Initialized Status = iota
	Running
	Exhausted
	GoalSatisfied
	Bounded
	Aborted
)

func (s Status) String() string {
	switch s {
	case Initialized:
		return "initialized"
	case Running:
		return "running"
	case Exhausted:
		return "exhausted"
	case GoalSatisfied:
		return "goal_satisfied"
	case Bounded:
		return "bounded"
	case Aborted:
		return "aborted"
	default:
		return fmt.Sprintf("status(%d)", int(s))
	}
}

// Terminated reports whether no further step will run
func (s Status) Terminated() bool {
	return s >= Exhausted
}

// Stats counts the work done by a search
type Stats struct {
	Popped       int           `json:"popped"`
	Stale        int           `json:"stale"`
	Expanded     int           `json:"expanded"`
	Traversed    int           `json:"traversed"`
	Forbidden    int           `json:"forbidden"`
	Accepted     int           `json:"accepted"`
	Rejected     int           `json:"rejected"`
	Pruned       int           `json:"pruned"`
	GoalPruned   int           `json:"goal_pruned"`
	MaxQueueSize int           `json:"max_queue_size"`
	Elapsed      time.Duration `json:"elapsed_ns"`
}

// Option customizes a Driver
type Option func(*Driver)

// WithClock replaces time.Now for deadline checks
func WithClock(now func() time.Time) Option {
	return func(d *Driver) { d.now = now }
}

// Driver runs a best-first search over a Network, pruning with a Frontier.
// It is single-threaded; run one driver per request.
type Driver struct {
	net      Network
	req      Request
	frontier *Frontier
	queue    stateQueue
	stats    Stats
	status   Status
	now      func() time.Time
	started  time.Time

	goals      map[Location]struct{}
	accept     Predicate
	goalsDirty bool
	goalBound  float64 // cheapest accepted weight over reached goals, +Inf before any
	goalStates []Handle
	pruned     bool
}

// NewDriver validates req and prepares a search. Origins are seeded lazily on
// the first step.
func NewDriver(net Network, req Request, opts ...Option) (*Driver, error) {
	if len(req.Origins) == 0 {
		return nil, ErrNoOrigin
	}
	if req.Policy == nil {
		return nil, ErrNilPolicy
	}
	if req.MaxWeight < 0 || math.IsNaN(req.MaxWeight) {
		return nil, fmt.Errorf("%w: max weight %v", ErrInvalidBound, req.MaxWeight)
	}
	if req.MaxExplored < 0 {
		return nil, fmt.Errorf("%w: max explored %d", ErrInvalidBound, req.MaxExplored)
	}

	d := &Driver{
		net:       net,
		req:       req,
		frontier:  NewFrontier(req.Policy),
		status:    Initialized,
		now:       time.Now,
		goals:     make(map[Location]struct{}, len(req.Goals)),
		goalBound: math.Inf(1),
	}
	for _, opt := range opts {
		opt(d)
	}
	for _, g := range req.Goals {
		d.goals[g] = struct{}{}
	}
	d.accept = allOf(append([]Predicate{IsFinal}, req.Accept...)...)
	return d, nil
}

// Frontier exposes the frontier; it is frozen once the driver terminates
func (d *Driver) Frontier() *Frontier {
	return d.frontier
}

// Status returns the current lifecycle state
func (d *Driver) Status() Status {
	return d.status
}

// Stats returns the counters so far
func (d *Driver) Stats() Stats {
	return d.stats
}

// Run steps until the search terminates
func (d *Driver) Run(ctx context.Context) (*Result, error) {
	for {
		done, err := d.Step(ctx)
		if err != nil {
			return nil, err
		}
		if done {
			return d.Result(), nil
		}
	}
}

// Result returns what the frontier currently holds. Calling it before the
// driver terminates gives a snapshot of a running search.
func (d *Driver) Result() *Result {
	return &Result{
		Status:   d.status,
		Stats:    d.stats,
		Frontier: d.frontier,
		goals:    d.req.Goals,
		accept:   d.accept,
	}
}

// Step performs one iteration: seed, pop, stale check, expansion.
// done is true once the driver reached a terminal status.
func (d *Driver) Step(ctx context.Context) (done bool, err error) {
	if d.status.Terminated() {
		return true, nil
	}
	if d.status == Initialized {
		d.seed()
		return false, nil
	}

	if ctx.Err() != nil || (!d.req.Deadline.IsZero() && !d.now().Before(d.req.Deadline)) {
		return d.terminate(Bounded), nil
	}
	if d.req.MaxExplored > 0 && d.stats.Expanded >= d.req.MaxExplored {
		return d.terminate(Bounded), nil
	}
	if d.queue.len() == 0 {
		switch {
		case d.pruned:
			return d.terminate(Bounded), nil
		case d.stats.GoalPruned > 0:
			return d.terminate(GoalSatisfied), nil
		default:
			return d.terminate(Exhausted), nil
		}
	}

	entry := d.queue.pop()
	d.stats.Popped++

	// dominated after it was queued: expanding it could readmit paths the
	// policy already ruled out
	if !d.frontier.Contains(entry.handle) {
		d.stats.Stale++
		return false, nil
	}

	if !d.req.Batch && len(d.goals) > 0 {
		d.refreshGoals()
		if weightOrdered(d.req.Policy) {
			if entry.key > d.goalBound {
				return d.terminate(GoalSatisfied), nil
			}
		} else if d.goalDominates(entry.handle, entry.key) {
			d.stats.GoalPruned++
			return false, nil
		}
	}
	if d.req.MaxWeight > 0 && entry.key > d.req.MaxWeight {
		return d.terminate(Bounded), nil
	}

	if err := d.expand(entry.handle); err != nil {
		d.terminate(Aborted)
		return true, err
	}
	return false, nil
}

func (d *Driver) seed() {
	d.started = d.now()
	d.status = Running
	for _, origin := range d.req.Origins {
		root := Root(origin, d.req.InitialCriteria)
		h, ok := d.frontier.Offer(root)
		if !ok {
			d.stats.Rejected++
			continue
		}
		d.stats.Accepted++
		d.noteAccepted(h)
		d.queue.push(h, d.priority(&root))
	}
	d.trackQueue()
}

func (d *Driver) expand(h Handle) error {
	d.stats.Expanded++
	current := d.frontier.At(h)

	for _, edge := range d.net.EdgesFrom(current.Location) {
		d.stats.Traversed++
		next, ok := edge.Traverse(&current)
		if !ok {
			d.stats.Forbidden++
			continue
		}
		if math.IsNaN(next.Weight) || next.Weight < current.Weight {
			return fmt.Errorf("%w: %v -> %v at location %d", ErrWeightDecreased,
				current.Weight, next.Weight, next.Location)
		}
		if d.req.MaxWeight > 0 && next.Weight > d.req.MaxWeight {
			d.stats.Pruned++
			d.pruned = true
			continue
		}

		next = next.From(h, edge)
		nh, accepted := d.frontier.Offer(next)
		if !accepted {
			d.stats.Rejected++
			continue
		}
		d.stats.Accepted++
		d.noteAccepted(nh)
		d.queue.push(nh, d.priority(&next))
	}
	d.trackQueue()
	return nil
}

func (d *Driver) priority(s *State) float64 {
	if d.req.Batch || d.req.Heuristic == nil {
		return s.Weight
	}
	return s.Weight + d.req.Heuristic(s.Location)
}

func (d *Driver) noteAccepted(h Handle) {
	if _, ok := d.goals[d.frontier.arena[h].Location]; ok {
		d.goalsDirty = true
	}
}

// weightOrdered reports whether p ranks states by weight alone. For such
// policies the first popped key above the goal bound settles the search.
func weightOrdered(p Policy) bool {
	switch p.(type) {
	case WeightOnly, Collapse:
		return true
	}
	return false
}

// refreshGoals recomputes the goal bound and the accepted goal states after
// a goal location changed
func (d *Driver) refreshGoals() {
	if !d.goalsDirty {
		return
	}
	d.goalsDirty = false
	d.goalBound = math.Inf(1)
	d.goalStates = d.goalStates[:0]
	for goal := range d.goals {
		for _, h := range d.frontier.States(goal) {
			s := &d.frontier.arena[h]
			if !d.accept(s) {
				continue
			}
			d.goalStates = append(d.goalStates, h)
			d.goalBound = min(d.goalBound, s.Weight)
		}
	}
}

// goalDominates reports whether an accepted goal state dominates every path
// continuing from h. key bounds the weight of such a path from below; its
// other criteria are at least those of h.
func (d *Driver) goalDominates(h Handle, key float64) bool {
	if key <= d.goalBound {
		return false
	}
	bound := d.frontier.arena[h]
	bound.Weight = key
	for _, g := range d.goalStates {
		goal := &d.frontier.arena[g]
		if goal.Weight < key && d.req.Policy.Dominates(goal, &bound) {
			return true
		}
	}
	return false
}

func (d *Driver) trackQueue() {
	if n := d.queue.len(); n > d.stats.MaxQueueSize {
		d.stats.MaxQueueSize = n
	}
}

func (d *Driver) terminate(status Status) bool {
	d.status = status
	d.frontier.freeze()
	if !d.started.IsZero() {
		d.stats.Elapsed = d.now().Sub(d.started)
	}
	return true
}
