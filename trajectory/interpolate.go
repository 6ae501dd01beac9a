package trajectory

import (
	"github.com/a-bouts/passage-server/latlon"
)

// Interpolate maps a playback progress fraction onto an instantaneous
// animation state. It walks the legs by accumulated time, handles the
// stationary pivot phase and the moving phase separately, and returns
// nil when there is nothing to animate. Pure and re-entrant, so it can
// be called freely for previews without touching the authoritative
// sequence.
func Interpolate(legs []Leg, waypoints []Waypoint, progress float64, totalDuration float64) *AnimationState {
	if len(legs) == 0 || len(waypoints) < 2 {
		return nil
	}

	if progress < 0 {
		progress = 0
	}
	if progress > 1 {
		progress = 1
	}
	currentTime := progress * totalDuration

	rs := resolve(waypoints)
	pivots := pivotFlags(rs)

	intended := make([]latlon.LatLon, len(rs))
	for i, r := range rs {
		intended[i] = r.latlon
	}

	// the drift-adjusted waypoint chain, falling back to the intended
	// positions when a leg carries no drift data
	predicted := make([]latlon.LatLon, len(rs))
	predicted[0] = rs[0].latlon
	for i := 0; i < len(rs)-1 && i < len(legs); i++ {
		if legs[i].Drift != nil {
			predicted[i+1] = legs[i].Drift.PredictedEnd
		} else {
			predicted[i+1] = rs[i+1].latlon
		}
	}

	real := legs
	if real[len(real)-1].Command == CommandEnd {
		real = real[:len(real)-1]
	}
	if len(real) == 0 {
		return nil
	}

	elapsed := 0.0
	for i := 0; i < len(real); i++ {
		leg := real[i]

		// the last real leg absorbs floating-point overshoot
		if currentTime >= elapsed+leg.Time && i < len(real)-1 {
			elapsed += leg.Time
			continue
		}

		timeIntoLeg := currentTime - elapsed
		if timeIntoLeg > leg.Time {
			timeIntoLeg = leg.Time
		}

		if timeIntoLeg < leg.PivotTime {
			return pivotState(legs, predicted, i, timeIntoLeg/leg.PivotTime)
		}

		moveTime := leg.Time - leg.PivotTime
		legProgress := 1.0
		if moveTime > 0 {
			legProgress = (timeIntoLeg - leg.PivotTime) / moveTime
		}

		position := controlPoints(predicted, pivots, i).At(legProgress)

		heading := controlPoints(intended, pivots, i).TangentBearing(legProgress)
		if rs[i].propulsion == Astern {
			heading += 180
		}
		if leg.Drift != nil && leg.Drift.CourseCorrection != nil {
			heading += *leg.Drift.CourseCorrection
		}

		return &AnimationState{
			Position: position,
			Heading:  latlon.Wrap360(heading),
			Speed:    leg.Speed,
		}
	}

	last := real[len(real)-1]
	return &AnimationState{
		Position: predicted[len(predicted)-1],
		Heading:  last.EndHeading,
		Speed:    0,
	}
}

// pivotState holds the ship at the leg's start while the heading sweeps
// the shortest signed arc from the previous leg's end heading.
func pivotState(legs []Leg, predicted []latlon.LatLon, i int, frac float64) *AnimationState {
	heading := legs[i].StartHeading
	if i > 0 {
		from := legs[i-1].EndHeading
		heading = latlon.Wrap360(from + latlon.Wrap180(legs[i].StartHeading-from)*frac)
	}
	return &AnimationState{
		Position: predicted[i],
		Heading:  heading,
		Speed:    0,
	}
}
