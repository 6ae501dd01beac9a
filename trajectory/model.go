package trajectory

import (
	"fmt"

	"github.com/a-bouts/passage-server/latlon"
)

const (
	// DefaultSpeed is assumed for a waypoint without an explicit speed, in knots.
	DefaultSpeed = 5.0

	// KnotsToMs converts knots to meters per second.
	KnotsToMs = 0.514444

	// LeewayFactor is the empirical fraction of wind speed felt as hull drift.
	LeewayFactor = 0.03
)

// Propulsion is the engine direction on a leg. Astern means the hull
// moves opposite to the bow-forward convention.
type Propulsion string

const (
	Forward Propulsion = "forward"
	Astern  Propulsion = "astern"
)

// Command classifies a leg for the maneuver list. Positive turn angles
// are port turns.
type Command string

const (
	CommandStart     Command = "START"
	CommandStraight  Command = "STRAIGHT"
	CommandPort      Command = "PORT"
	CommandStarboard Command = "STARBOARD"
	CommandEnd       Command = "END"
)

// Waypoint is one user-placed point of the plan. Order is significant.
// Speed and Propulsion are optional; they are resolved to DefaultSpeed
// and Forward in one defaults step before any computation.
type Waypoint struct {
	Id         int           `json:"id"`
	Latlon     latlon.LatLon `json:"latlon"`
	Speed      *float64      `json:"speed,omitempty"`
	Propulsion Propulsion    `json:"propulsion,omitempty"`
}

// Ship is the vessel's physical envelope, all meters.
type Ship struct {
	Length        float64 `json:"length"`
	Beam          float64 `json:"beam"`
	TurningRadius float64 `json:"turningRadius"`
}

func (s Ship) Validate() error {
	if s.Length <= 0 {
		return fmt.Errorf("ship length must be > 0, got %f", s.Length)
	}
	if s.Beam <= 0 {
		return fmt.Errorf("ship beam must be > 0, got %f", s.Beam)
	}
	if s.TurningRadius <= 0 {
		return fmt.Errorf("ship turning radius must be > 0, got %f", s.TurningRadius)
	}
	return nil
}

// Flow is a wind or current vector. Direction uses the meteorological
// "coming from" convention; the force pushes 180° from it.
type Flow struct {
	Speed     float64 `json:"speed"`     // knots
	Direction float64 `json:"direction"` // degrees, 0-360, "from"
}

// Environment is the forcing applied to the plan when drift is enabled.
type Environment struct {
	DriftEnabled bool `json:"driftEnabled"`
	Wind         Flow `json:"wind"`
	Current      Flow `json:"current"`
}

// Drift carries the over-ground quantities of a leg when drift is
// enabled. CourseCorrection is the crab angle needed to hold the
// intended course; nil means the drift exceeds what the ship can
// compensate and the course cannot be maintained.
type Drift struct {
	Sog              float64       `json:"sog"`       // knots
	CogCourse        float64       `json:"cogCourse"` // degrees
	PredictedEnd     latlon.LatLon `json:"predictedEnd"`
	CourseCorrection *float64      `json:"courseCorrection,omitempty"`
}

// Leg is one derived trajectory segment between two consecutive
// waypoints, immutable once computed. The sequence ends with a single
// terminal END leg mirroring the last waypoint.
type Leg struct {
	Id                  int           `json:"id"`
	Start               latlon.LatLon `json:"start"`
	End                 latlon.LatLon `json:"end"`
	Distance            float64       `json:"distance"`      // straight line, meters
	CurveDistance       float64       `json:"curveDistance"` // along the spline, meters
	Course              float64       `json:"course"`        // straight bearing
	StartHeading        float64       `json:"startHeading"`
	EndHeading          float64       `json:"endHeading"`
	Command             Command       `json:"command"`
	TurnAngle           float64       `json:"turnAngle"` // signed degrees, positive = port
	TurnRadiusViolation bool          `json:"turnRadiusViolation"`
	Speed               float64       `json:"speed"`     // knots
	Time                float64       `json:"time"`      // seconds, includes pivot
	PivotTime           float64       `json:"pivotTime"` // seconds
	Propulsion          Propulsion    `json:"propulsion"`
	Drift               *Drift        `json:"drift,omitempty"`
}

// AnimationState is the instantaneous playback output, recomputed every
// tick and never persisted.
type AnimationState struct {
	Position latlon.LatLon `json:"position"`
	Heading  float64       `json:"heading"`
	Speed    float64       `json:"speed"`
}

// TotalDuration sums the leg times, in seconds.
func TotalDuration(legs []Leg) float64 {
	total := 0.0
	for _, leg := range legs {
		total += leg.Time
	}
	return total
}

// resolved is a waypoint with its optional fields applied.
type resolved struct {
	id         int
	latlon     latlon.LatLon
	speed      float64
	propulsion Propulsion
}

// resolve applies defaults in one explicit step so the algorithms never
// see an unset field.
func resolve(waypoints []Waypoint) []resolved {
	rs := make([]resolved, len(waypoints))
	for i, wp := range waypoints {
		r := resolved{id: wp.Id, latlon: wp.Latlon, speed: DefaultSpeed, propulsion: Forward}
		if wp.Speed != nil && *wp.Speed >= 0 {
			r.speed = *wp.Speed
		}
		if wp.Propulsion == Astern {
			r.propulsion = Astern
		}
		rs[i] = r
	}
	return rs
}

// pivotFlags marks, per waypoint index, whether the leg starting there
// begins with a turn-in-place. The first leg never pivots, and no leg
// starts at the last waypoint.
func pivotFlags(rs []resolved) []bool {
	pivots := make([]bool, len(rs))
	for i := 1; i < len(rs)-1; i++ {
		pivots[i] = rs[i].propulsion != rs[i-1].propulsion
	}
	return pivots
}
