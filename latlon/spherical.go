package latlon

import "math"

// Distance is the haversine great-circle distance in meters.
// Distance(a, b) == Distance(b, a) and Distance(a, a) == 0.
func Distance(from, to LatLon) float64 {
	φ1 := toRadians(from.Lat)
	φ2 := toRadians(to.Lat)
	Δφ := φ2 - φ1

	Δλ := toRadians(to.Lon - from.Lon)

	a := math.Sin(Δφ/2)*math.Sin(Δφ/2) + math.Cos(φ1)*math.Cos(φ2)*math.Sin(Δλ/2)*math.Sin(Δλ/2)
	δ := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return R * δ
}

// Bearing is the initial bearing from 'from' to 'to' in [0,360).
// Coincident points yield 0 rather than NaN.
func Bearing(from, to LatLon) float64 {
	if from == to {
		return 0
	}

	φ1 := toRadians(from.Lat)
	φ2 := toRadians(to.Lat)

	Δλ := toRadians(to.Lon - from.Lon)
	x := math.Cos(φ1)*math.Sin(φ2) - math.Sin(φ1)*math.Cos(φ2)*math.Cos(Δλ)
	y := math.Sin(Δλ) * math.Cos(φ2)
	θ := math.Atan2(y, x)

	return Wrap360(toDegrees(θ))
}

// DistanceAndBearing computes both in one pass.
func DistanceAndBearing(from, to LatLon) (float64, float64) {
	return Distance(from, to), Bearing(from, to)
}

// Destination solves the direct geodesic on a sphere: the point reached
// from 'from' after traveling 'distance' meters on the initial 'bearing'.
func Destination(from LatLon, bearing float64, distance float64) LatLon {
	φ1 := toRadians(from.Lat)
	λ1 := toRadians(from.Lon)
	θ := toRadians(bearing)

	δ := distance / R

	φ2 := math.Asin(math.Sin(φ1)*math.Cos(δ) + math.Cos(φ1)*math.Sin(δ)*math.Cos(θ))
	λ2 := λ1 + math.Atan2(math.Sin(θ)*math.Sin(δ)*math.Cos(φ1), math.Cos(δ)-math.Sin(φ1)*math.Sin(φ2))
	λ2 = math.Mod(λ2+3*π, 2*π) - π

	return LatLon{Lat: toDegrees(φ2), Lon: toDegrees(λ2)}
}
