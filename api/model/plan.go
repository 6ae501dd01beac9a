package model

import (
	"fmt"

	"github.com/a-bouts/passage-server/trajectory"
)

// DefaultPivotDuration is assumed when a request leaves it unset, in
// seconds.
const DefaultPivotDuration = 30.0

// Plan is the common request body: the inputs a trajectory is derived
// from.
type Plan struct {
	Waypoints     []trajectory.Waypoint  `json:"waypoints"`
	Ship          trajectory.Ship        `json:"ship"`
	PivotDuration float64                `json:"pivotDuration"`
	Environment   trajectory.Environment `json:"environment"`
}

// Normalize applies defaults and validates the inputs.
func (p *Plan) Normalize() error {
	if len(p.Waypoints) < 2 {
		return fmt.Errorf("a plan needs at least 2 waypoints, got %d", len(p.Waypoints))
	}
	if err := p.Ship.Validate(); err != nil {
		return err
	}
	if p.PivotDuration <= 0 {
		p.PivotDuration = DefaultPivotDuration
	}
	return nil
}

// State asks for the animation state at a single progress.
type State struct {
	Plan
	Progress float64 `json:"progress"`
}

// Playback asks for a streamed replay at a speed multiplier.
type Playback struct {
	Plan
	Multiplier float64 `json:"multiplier"`
}

// Trajectory is the derived result of a plan.
type Trajectory struct {
	Legs          []trajectory.Leg `json:"legs"`
	TotalDuration float64          `json:"totalDuration"`
}
