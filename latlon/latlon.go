package latlon

import "math"

const π = math.Pi

// R is the mean Earth radius in meters.
const R = 6371e3

type LatLon struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

func toRadians(a float64) float64 {
	return a * π / 180.0
}

func toDegrees(a float64) float64 {
	return a * 180.0 / π
}

// Wrap360 brings a bearing into [0,360).
func Wrap360(d float64) float64 {
	if 0.0 <= d && d < 360.0 {
		return d
	}
	return math.Mod(math.Mod(d, 360.0)+360.0, 360.0)
}

// Wrap180 brings an angle into (-180,180].
func Wrap180(d float64) float64 {
	d = math.Mod(d, 360.0)
	if d > 180.0 {
		d -= 360.0
	}
	if d <= -180.0 {
		d += 360.0
	}
	return d
}
