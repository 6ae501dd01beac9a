package trajectory

import (
	"math"
	"testing"

	"github.com/a-bouts/passage-server/latlon"
)

func TestInterpolateEmpty(t *testing.T) {
	if st := Interpolate(nil, nil, 0.5, 100); st != nil {
		t.Errorf("Interpolate(no legs) = %v; want nil", st)
	}
}

func TestInterpolateStart(t *testing.T) {
	wps := []Waypoint{
		{Id: 1, Latlon: latlon.LatLon{Lat: 0, Lon: 0}},
		{Id: 2, Latlon: latlon.LatLon{Lat: 0, Lon: 0.01}},
	}
	legs := BuildLegs(wps, testShip, 30, Environment{})
	total := TotalDuration(legs)

	st := Interpolate(legs, wps, 0, total)
	if st == nil {
		t.Fatal("Interpolate(0) = nil")
	}
	if st.Position != wps[0].Latlon {
		t.Errorf("position = %v; want %v", st.Position, wps[0].Latlon)
	}
	if st.Speed != 5.0 {
		t.Errorf("speed = %f; want 5.0", st.Speed)
	}
	if math.Abs(st.Heading-legs[0].StartHeading) > 1e-9 {
		t.Errorf("heading = %f; want %f", st.Heading, legs[0].StartHeading)
	}
}

func TestInterpolateEnd(t *testing.T) {
	wps := []Waypoint{
		{Id: 1, Latlon: latlon.LatLon{Lat: 0, Lon: 0}},
		{Id: 2, Latlon: latlon.LatLon{Lat: 0, Lon: 0.01}},
		{Id: 3, Latlon: latlon.LatLon{Lat: 0.01, Lon: 0.02}},
	}
	legs := BuildLegs(wps, testShip, 30, Environment{})
	total := TotalDuration(legs)

	st := Interpolate(legs, wps, 1, total)
	if st == nil {
		t.Fatal("Interpolate(1) = nil")
	}
	if latlon.Distance(st.Position, wps[2].Latlon) > 0.1 {
		t.Errorf("position = %v; want the last waypoint %v", st.Position, wps[2].Latlon)
	}

	// progress beyond 1 clamps rather than overshooting
	over := Interpolate(legs, wps, 1.5, total)
	if over == nil || over.Position != st.Position {
		t.Errorf("Interpolate(1.5) should clamp to the end state")
	}
}

func TestInterpolateMidLegPosition(t *testing.T) {
	wps := []Waypoint{
		{Id: 1, Latlon: latlon.LatLon{Lat: 0, Lon: 0}},
		{Id: 2, Latlon: latlon.LatLon{Lat: 0, Lon: 0.01}},
	}
	legs := BuildLegs(wps, testShip, 30, Environment{})
	total := TotalDuration(legs)

	st := Interpolate(legs, wps, 0.5, total)
	if st == nil {
		t.Fatal("Interpolate(0.5) = nil")
	}
	if st.Position.Lon <= 0 || st.Position.Lon >= 0.01 {
		t.Errorf("mid-leg position lon = %f; want inside (0, 0.01)", st.Position.Lon)
	}
	if st.Speed != 5.0 {
		t.Errorf("mid-leg speed = %f; want 5.0", st.Speed)
	}
}

func TestInterpolatePivotPhase(t *testing.T) {
	wps := []Waypoint{
		{Id: 1, Latlon: latlon.LatLon{Lat: 0, Lon: 0}},
		{Id: 2, Latlon: latlon.LatLon{Lat: 0, Lon: 0.01}, Propulsion: Astern},
		{Id: 3, Latlon: latlon.LatLon{Lat: 0, Lon: 0.02}, Propulsion: Astern},
	}
	legs := BuildLegs(wps, testShip, 30, Environment{})
	total := TotalDuration(legs)

	if legs[1].PivotTime != 30 {
		t.Fatalf("leg 2 pivotTime = %f; want 30", legs[1].PivotTime)
	}

	// halfway through the pivot
	progress := (legs[0].Time + 15) / total
	st := Interpolate(legs, wps, progress, total)
	if st == nil {
		t.Fatal("Interpolate(pivot) = nil")
	}
	if st.Speed != 0 {
		t.Errorf("pivot speed = %f; want 0", st.Speed)
	}
	if st.Position != wps[1].Latlon {
		t.Errorf("pivot position = %v; want the leg start %v", st.Position, wps[1].Latlon)
	}

	want := latlon.Wrap360(legs[0].EndHeading + latlon.Wrap180(legs[1].StartHeading-legs[0].EndHeading)*0.5)
	if math.Abs(st.Heading-want) > 1e-6 {
		t.Errorf("pivot heading = %f; want %f", st.Heading, want)
	}
}

func TestInterpolateCourseCorrectionOffset(t *testing.T) {
	wps := []Waypoint{
		{Id: 1, Latlon: latlon.LatLon{Lat: 0, Lon: 0}},
		{Id: 2, Latlon: latlon.LatLon{Lat: 0.01, Lon: 0}},
	}
	env := Environment{
		DriftEnabled: true,
		Current:      Flow{Speed: 2, Direction: 30},
	}
	legs := BuildLegs(wps, testShip, 30, env)
	total := TotalDuration(legs)

	cca := legs[0].Drift.CourseCorrection
	if cca == nil {
		t.Fatal("expected a finite course correction")
	}

	st := Interpolate(legs, wps, 0.5, total)
	if st == nil {
		t.Fatal("Interpolate = nil")
	}

	plain := Interpolate(BuildLegs(wps, testShip, 30, Environment{}), wps, 0.5, total)
	want := latlon.Wrap360(plain.Heading + *cca)
	if math.Abs(st.Heading-want) > 1e-6 {
		t.Errorf("drifted heading = %f; want %f (intended + crab angle)", st.Heading, want)
	}
}

func TestInterpolateUnmaintainableCorrectionIgnored(t *testing.T) {
	wps := []Waypoint{
		{Id: 1, Latlon: latlon.LatLon{Lat: 0, Lon: 0}},
		{Id: 2, Latlon: latlon.LatLon{Lat: 0.01, Lon: 0}},
	}
	env := Environment{
		DriftEnabled: true,
		Current:      Flow{Speed: 50, Direction: 90},
	}
	legs := BuildLegs(wps, testShip, 30, env)
	total := TotalDuration(legs)

	st := Interpolate(legs, wps, 0.5, total)
	if st == nil {
		t.Fatal("Interpolate = nil")
	}
	if math.IsNaN(st.Heading) {
		t.Errorf("heading is NaN; an unmaintainable correction must be ignored")
	}
}
