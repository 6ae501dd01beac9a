// Package spline evaluates a uniform Catmull-Rom cubic on the two
// geographic axes. The plane approximation only holds at scales where
// Earth curvature inside one leg is negligible.
package spline

import (
	"math"

	"github.com/a-bouts/passage-server/latlon"
)

// Meters per degree of latitude, and per degree of longitude at the
// equator. The longitude factor shrinks with cos(lat).
const (
	metersPerDegLat = 111132.954
	metersPerDegLon = 111320.0
)

// LengthSegments is the sampling resolution used by Length.
const LengthSegments = 20

// CatmullRom interpolates strictly between P1 and P2: At(0) == P1 and
// At(1) == P2. P0 and P3 only shape the tangents.
type CatmullRom struct {
	P0, P1, P2, P3 latlon.LatLon
}

func catmullRom(p0, p1, p2, p3, t float64) float64 {
	t2 := t * t
	t3 := t2 * t
	return 0.5 * ((2 * p1) +
		(-p0+p2)*t +
		(2*p0-5*p1+4*p2-p3)*t2 +
		(-p0+3*p1-3*p2+p3)*t3)
}

func catmullRomDerivative(p0, p1, p2, p3, t float64) float64 {
	t2 := t * t
	return 0.5 * ((-p0 + p2) +
		2*(2*p0-5*p1+4*p2-p3)*t +
		3*(-p0+3*p1-3*p2+p3)*t2)
}

// At evaluates the curve at t in [0,1], per axis.
func (c CatmullRom) At(t float64) latlon.LatLon {
	if t <= 0 {
		return c.P1
	}
	if t >= 1 {
		return c.P2
	}
	return latlon.LatLon{
		Lat: catmullRom(c.P0.Lat, c.P1.Lat, c.P2.Lat, c.P3.Lat, t),
		Lon: catmullRom(c.P0.Lon, c.P1.Lon, c.P2.Lon, c.P3.Lon, t),
	}
}

// Tangent is the first derivative at t, in degrees per unit parameter.
func (c CatmullRom) Tangent(t float64) (dLat, dLon float64) {
	dLat = catmullRomDerivative(c.P0.Lat, c.P1.Lat, c.P2.Lat, c.P3.Lat, t)
	dLon = catmullRomDerivative(c.P0.Lon, c.P1.Lon, c.P2.Lon, c.P3.Lon, t)
	return
}

// TangentBearing is the compass bearing of the tangent at t, in [0,360).
// A degenerate tangent yields the straight bearing P1 to P2.
func (c CatmullRom) TangentBearing(t float64) float64 {
	dLat, dLon := c.Tangent(t)
	dx := dLon * metersPerDegLon * math.Cos(c.P1.Lat*math.Pi/180.0)
	dy := dLat * metersPerDegLat
	if math.Abs(dx) < 1e-12 && math.Abs(dy) < 1e-12 {
		return latlon.Bearing(c.P1, c.P2)
	}
	return latlon.Wrap360(math.Atan2(dx, dy) * 180.0 / math.Pi)
}

// Length accumulates the geodesic distance between segments+1 uniform
// samples. Not exact, but deterministic and monotonic for a fixed
// segment count.
func (c CatmullRom) Length(segments int) float64 {
	if segments < 1 {
		segments = LengthSegments
	}
	length := 0.0
	prev := c.P1
	for i := 1; i <= segments; i++ {
		p := c.At(float64(i) / float64(segments))
		length += latlon.Distance(prev, p)
		prev = p
	}
	return length
}

// TurnRadius estimates the radius of curvature at the start of the
// curve, in meters. Degree-space derivatives are scaled to the local
// plane at P1's latitude, then the planar curvature formula applies.
// A near-zero denominator means the curve is locally straight and the
// radius is infinite.
func (c CatmullRom) TurnRadius() float64 {
	// first derivatives at t=0
	dLat := catmullRomDerivative(c.P0.Lat, c.P1.Lat, c.P2.Lat, c.P3.Lat, 0)
	dLon := catmullRomDerivative(c.P0.Lon, c.P1.Lon, c.P2.Lon, c.P3.Lon, 0)

	// second derivatives at t=0: 2 * the quadratic coefficient
	ddLat := 2 * 0.5 * (2*c.P0.Lat - 5*c.P1.Lat + 4*c.P2.Lat - c.P3.Lat)
	ddLon := 2 * 0.5 * (2*c.P0.Lon - 5*c.P1.Lon + 4*c.P2.Lon - c.P3.Lon)

	lonScale := metersPerDegLon * math.Cos(c.P1.Lat*math.Pi/180.0)

	x1 := dLon * lonScale
	y1 := dLat * metersPerDegLat
	x2 := ddLon * lonScale
	y2 := ddLat * metersPerDegLat

	denominator := math.Pow(x1*x1+y1*y1, 1.5)
	if denominator < 1e-6 {
		return math.Inf(1)
	}

	κ := math.Abs(x1*y2-y1*x2) / denominator
	return 1 / κ
}
