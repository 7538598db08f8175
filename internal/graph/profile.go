package graph

import (
	"errors"
	"fmt"

	"github.com/passbi/passbi_planner/internal/models"
)

// ErrInvalidProfile is returned by Profile.Validate
var ErrInvalidProfile = errors.New("invalid traversal profile")

// Profile holds the traversal preferences of one request. Modes keep a
// prototype; every request works on its own Clone so concurrent searches never
// share mutable state.
type Profile struct {
	Name string

	// WalkReluctance multiplies walking seconds. Must be >= 1 so that weight
	// never falls below elapsed time, which keeps the heuristic admissible.
	WalkReluctance float64

	// WalkDistanceFactor adds weight per metre walked
	WalkDistanceFactor float64

	// TransferPenalty adds weight per transfer
	TransferPenalty float64

	ForbidTransfers bool

	// MaxWalkMeters caps the accumulated walk distance; 0 means no cap
	MaxWalkMeters int

	BannedRoutes map[string]bool

	// AllowedModes restricts ride edges; empty allows every mode
	AllowedModes map[models.TransitMode]bool
}

// Clone returns a deep copy
func (p *Profile) Clone() *Profile {
	c := *p
	if p.BannedRoutes != nil {
		c.BannedRoutes = make(map[string]bool, len(p.BannedRoutes))
		for k, v := range p.BannedRoutes {
			c.BannedRoutes[k] = v
		}
	}
	if p.AllowedModes != nil {
		c.AllowedModes = make(map[models.TransitMode]bool, len(p.AllowedModes))
		for k, v := range p.AllowedModes {
			c.AllowedModes[k] = v
		}
	}
	return &c
}

// Validate rejects settings that would let a traversal decrease weight
func (p *Profile) Validate() error {
	if p.WalkReluctance < 1 {
		return fmt.Errorf("%w: walk reluctance %v < 1", ErrInvalidProfile, p.WalkReluctance)
	}
	if p.WalkDistanceFactor < 0 {
		return fmt.Errorf("%w: negative walk distance factor", ErrInvalidProfile)
	}
	if p.TransferPenalty < 0 {
		return fmt.Errorf("%w: negative transfer penalty", ErrInvalidProfile)
	}
	if p.MaxWalkMeters < 0 {
		return fmt.Errorf("%w: negative max walk", ErrInvalidProfile)
	}
	return nil
}

// Ban excludes a route from ride edges
func (p *Profile) Ban(routeID string) {
	if p.BannedRoutes == nil {
		p.BannedRoutes = make(map[string]bool)
	}
	p.BannedRoutes[routeID] = true
}

// Allow adds a mode to the allowed set
func (p *Profile) Allow(mode models.TransitMode) {
	if p.AllowedModes == nil {
		p.AllowedModes = make(map[models.TransitMode]bool)
	}
	p.AllowedModes[mode] = true
}

func (p *Profile) rides(node models.Node) bool {
	if p.BannedRoutes[node.RouteID] {
		return false
	}
	if len(p.AllowedModes) > 0 && !p.AllowedModes[node.Mode] {
		return false
	}
	return true
}
