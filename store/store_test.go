package store

import (
	"os"
	"reflect"
	"testing"

	"github.com/a-bouts/passage-server/latlon"
	"github.com/a-bouts/passage-server/trajectory"
)

func testPlan(name string) Plan {
	speed := 8.0
	return Plan{
		Name: name,
		Waypoints: []trajectory.Waypoint{
			{Id: 1, Latlon: latlon.LatLon{Lat: 50.1, Lon: 1.5}},
			{Id: 2, Latlon: latlon.LatLon{Lat: 50.2, Lon: 1.6}, Speed: &speed, Propulsion: trajectory.Astern},
		},
		Ship: trajectory.Ship{Length: 120, Beam: 20, TurningRadius: 250},
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	s, err := New(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}

	plan := testPlan("crossing")
	if err := s.Save(plan); err != nil {
		t.Fatalf("Save error: %v", err)
	}

	loaded, err := s.Load("crossing")
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if !reflect.DeepEqual(plan, loaded) {
		t.Errorf("loaded plan differs: %+v vs %+v", plan, loaded)
	}
}

func TestLoadMissing(t *testing.T) {
	s, err := New(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	if _, err := s.Load("nope"); !os.IsNotExist(err) {
		t.Errorf("Load(missing) error = %v; want not-exist", err)
	}
}

func TestSaveRejectsBadInput(t *testing.T) {
	s, err := New(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}

	empty := testPlan("empty")
	empty.Waypoints = nil
	if err := s.Save(empty); err == nil {
		t.Error("Save accepted a plan without waypoints")
	}

	bad := testPlan("../escape")
	if err := s.Save(bad); err == nil {
		t.Error("Save accepted a path-traversal name")
	}

	flat := testPlan("flat")
	flat.Ship.Beam = 0
	if err := s.Save(flat); err == nil {
		t.Error("Save accepted an invalid ship")
	}
}

func TestList(t *testing.T) {
	s, err := New(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}

	for _, name := range []string{"b-plan", "a-plan"} {
		if err := s.Save(testPlan(name)); err != nil {
			t.Fatal(err)
		}
	}

	names := s.List()
	if !reflect.DeepEqual(names, []string{"a-plan", "b-plan"}) {
		t.Errorf("List() = %v; want sorted names", names)
	}
}
