package trajectory

import (
	"math"

	"github.com/a-bouts/passage-server/latlon"
	"github.com/a-bouts/passage-server/spline"
)

// controlPoints selects the Catmull-Rom control points for the leg
// starting at index i. When a leg begins with a pivot its tail control
// point collapses onto the start so the curve leaves cleanly from rest;
// when the next leg pivots the head control point collapses onto the
// end. The builder and the interpolator share this so the static and
// animated paths never diverge.
func controlPoints(points []latlon.LatLon, pivots []bool, i int) spline.CatmullRom {
	c := spline.CatmullRom{P1: points[i], P2: points[i+1]}

	c.P0 = c.P1
	if i > 0 && !pivots[i] {
		c.P0 = points[i-1]
	}

	c.P3 = c.P2
	if i+2 < len(points) && !pivots[i+1] {
		c.P3 = points[i+2]
	}

	return c
}

// BuildLegs derives the full annotated leg sequence from an ordered
// waypoint list, the ship's limits, the pivot duration in seconds and
// the environmental forcing. It is pure and total: fewer than two
// waypoints yield an empty sequence, identical inputs yield identical
// outputs.
func BuildLegs(waypoints []Waypoint, ship Ship, pivotDuration float64, env Environment) []Leg {
	if len(waypoints) < 2 {
		return nil
	}

	rs := resolve(waypoints)
	pivots := pivotFlags(rs)

	points := make([]latlon.LatLon, len(rs))
	for i, r := range rs {
		points[i] = r.latlon
	}

	legs := make([]Leg, 0, len(rs))

	// running predicted position for the drift fold
	predicted := rs[0].latlon

	for i := 0; i < len(rs)-1; i++ {
		start := rs[i]
		end := rs[i+1]

		pivotTime := 0.0
		if pivots[i] {
			pivotTime = pivotDuration
		}

		curve := controlPoints(points, pivots, i)

		distance, course := latlon.DistanceAndBearing(start.latlon, end.latlon)
		curveDistance := curve.Length(spline.LengthSegments)

		startHeading := curve.TangentBearing(0)
		endHeading := curve.TangentBearing(1)
		if start.propulsion == Astern {
			startHeading = latlon.Wrap360(startHeading + 180)
			endHeading = latlon.Wrap360(endHeading + 180)
		}

		speedMps := start.speed * KnotsToMs
		moveTime := 0.0
		if speedMps > 0 {
			moveTime = curveDistance / speedMps
		}

		leg := Leg{
			Id:            start.id,
			Start:         start.latlon,
			End:           end.latlon,
			Distance:      distance,
			CurveDistance: curveDistance,
			Course:        course,
			StartHeading:  startHeading,
			EndHeading:    endHeading,
			Speed:         start.speed,
			Time:          moveTime + pivotTime,
			PivotTime:     pivotTime,
			Propulsion:    start.propulsion,
		}

		if i == 0 {
			leg.Command = CommandStart
		} else {
			leg.TurnAngle = latlon.Wrap180(course - legs[i-1].Course)
			switch {
			case math.Abs(leg.TurnAngle) <= 5:
				leg.Command = CommandStraight
			case leg.TurnAngle > 0:
				leg.Command = CommandPort
			default:
				leg.Command = CommandStarboard
			}
		}

		// only a continuous turn can violate the turning circle; a
		// stationary pivot reorients without translating
		if (leg.Command == CommandPort || leg.Command == CommandStarboard) && pivotTime == 0 {
			leg.TurnRadiusViolation = curve.TurnRadius() < ship.TurningRadius
		}

		if env.DriftEnabled {
			leg.Drift, predicted = driftLeg(predicted, start.latlon, end.latlon, course, speedMps, moveTime, env)
		}

		legs = append(legs, leg)
	}

	last := legs[len(legs)-1]
	legs = append(legs, Leg{
		Id:           rs[len(rs)-1].id,
		Start:        rs[len(rs)-1].latlon,
		End:          rs[len(rs)-1].latlon,
		Course:       last.Course,
		StartHeading: last.EndHeading,
		EndHeading:   last.EndHeading,
		Command:      CommandEnd,
		Propulsion:   last.Propulsion,
	})

	return legs
}

// planeVec is a local east/north decomposition in m/s.
type planeVec struct {
	x, y float64
}

func (v planeVec) magnitude() float64 {
	return math.Hypot(v.x, v.y)
}

// bearingVec decomposes a magnitude along a compass bearing.
func bearingVec(bearing, magnitude float64) planeVec {
	rad := bearing * math.Pi / 180.0
	return planeVec{x: math.Sin(rad) * magnitude, y: math.Cos(rad) * magnitude}
}

// flowVec is the force of a "coming from" flow: it pushes 180° from the
// stated direction.
func flowVec(f Flow, factor float64) planeVec {
	return bearingVec(latlon.Wrap360(f.Direction+180), f.Speed*KnotsToMs*factor)
}

// driftLeg computes the over-ground quantities of one leg and advances
// the running predicted position.
func driftLeg(predicted, start, end latlon.LatLon, course, speedMps, moveTime float64, env Environment) (*Drift, latlon.LatLon) {
	if env.Wind.Speed <= 0 && env.Current.Speed <= 0 {
		// no forcing: keep the predicted path numerically identical to
		// the intended one by advancing with the same lat/lon delta
		next := latlon.LatLon{
			Lat: predicted.Lat + end.Lat - start.Lat,
			Lon: predicted.Lon + end.Lon - start.Lon,
		}
		zero := 0.0
		return &Drift{
			Sog:              speedMps / KnotsToMs,
			CogCourse:        course,
			PredictedEnd:     next,
			CourseCorrection: &zero,
		}, next
	}

	ship := bearingVec(course, speedMps)
	drift := flowVec(env.Current, 1)
	leeway := flowVec(env.Wind, LeewayFactor)
	drift.x += leeway.x
	drift.y += leeway.y

	sog := planeVec{x: ship.x + drift.x, y: ship.y + drift.y}
	sogMps := sog.magnitude()
	cog := latlon.Wrap360(math.Atan2(sog.x, sog.y) * 180.0 / math.Pi)

	next := latlon.Destination(predicted, cog, sogMps*moveTime)

	d := &Drift{
		Sog:          sogMps / KnotsToMs,
		CogCourse:    cog,
		PredictedEnd: next,
	}

	// crab angle: sin(cca) = (|drift|/|ship|) * sin(course - driftAngle);
	// when |sin| exceeds 1 the drift overwhelms the ship and the course
	// cannot be maintained
	if speedMps > 0 {
		driftAngle := math.Atan2(drift.x, drift.y)
		courseRad := course * math.Pi / 180.0
		s := drift.magnitude() / speedMps * math.Sin(courseRad-driftAngle)
		if math.Abs(s) <= 1 {
			cca := math.Asin(s) * 180.0 / math.Pi
			d.CourseCorrection = &cca
		}
	}

	return d, next
}
