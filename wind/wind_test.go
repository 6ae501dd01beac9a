package wind

import (
	"math"
	"testing"
)

func TestVectorToDegrees(t *testing.T) {
	// wind blowing toward the north comes from the south
	d := vectorToDegrees(0, 1, 1)
	if d != 180 {
		t.Errorf("vectorToDegrees(0, 1) = %f; want 180", d)
	}
	// blowing toward the east comes from the west
	d = vectorToDegrees(1, 0, 1)
	if d != 270 {
		t.Errorf("vectorToDegrees(1, 0) = %f; want 270", d)
	}
}

func TestBilinearInterpolate(t *testing.T) {
	g00 := [2]float64{0, 0}
	g10 := [2]float64{1, 2}
	g01 := [2]float64{2, 4}
	g11 := [2]float64{3, 6}

	u, v := bilinearInterpolate(0, 0, g00, g10, g01, g11)
	if u != 0 || v != 0 {
		t.Errorf("bilinearInterpolate(0,0) = (%f,%f); want (0,0)", u, v)
	}

	u, v = bilinearInterpolate(1, 1, g00, g10, g01, g11)
	if u != 3 || v != 6 {
		t.Errorf("bilinearInterpolate(1,1) = (%f,%f); want (3,6)", u, v)
	}

	u, v = bilinearInterpolate(0.5, 0.5, g00, g10, g01, g11)
	if u != 1.5 || v != 3 {
		t.Errorf("bilinearInterpolate(0.5,0.5) = (%f,%f); want (1.5,3)", u, v)
	}
}

func TestFloorMod(t *testing.T) {
	if m := floorMod(-10, 360); m != 350 {
		t.Errorf("floorMod(-10, 360) = %f; want 350", m)
	}
	if m := floorMod(370, 360); m != 10 {
		t.Errorf("floorMod(370, 360) = %f; want 10", m)
	}
}

func TestInterpolateZeroWind(t *testing.T) {
	w := &Wind{
		Lat0: 0, Lon0: 0,
		ΔLat: 1, ΔLon: 1,
		NLat: 3, NLon: 3,
		U:    [][]float64{{0, 0, 0}, {0, 0, 0}, {0, 0, 0}},
		V:    [][]float64{{0, 0, 0}, {0, 0, 0}, {0, 0, 0}},
	}
	d, s := Interpolate([]*Wind{w}, nil, 0.5, 0.5, 0)
	if d != 0 || s != 0 {
		t.Errorf("Interpolate(calm) = (%f,%f); want (0,0)", d, s)
	}
	if math.IsNaN(d) {
		t.Errorf("calm wind direction is NaN")
	}
}
