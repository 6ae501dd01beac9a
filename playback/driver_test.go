package playback

import (
	"testing"
	"time"

	"github.com/a-bouts/passage-server/latlon"
	"github.com/a-bouts/passage-server/trajectory"
)

// manualScheduler fires ticks only when the test advances its clock.
type manualScheduler struct {
	now     time.Time
	next    TickID
	pending map[TickID]func(time.Time)
}

func newManualScheduler() *manualScheduler {
	return &manualScheduler{
		now:     time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC),
		pending: map[TickID]func(time.Time){},
	}
}

func (m *manualScheduler) RequestTick(fn func(now time.Time)) TickID {
	m.next++
	m.pending[m.next] = fn
	return m.next
}

func (m *manualScheduler) CancelTick(id TickID) {
	delete(m.pending, id)
}

func (m *manualScheduler) advance(d time.Duration) {
	m.now = m.now.Add(d)
	fns := m.pending
	m.pending = map[TickID]func(time.Time){}
	for _, fn := range fns {
		fn(m.now)
	}
}

func testPlan() ([]trajectory.Leg, []trajectory.Waypoint) {
	wps := []trajectory.Waypoint{
		{Id: 1, Latlon: latlon.LatLon{Lat: 0, Lon: 0}},
		{Id: 2, Latlon: latlon.LatLon{Lat: 0, Lon: 0.01}},
	}
	ship := trajectory.Ship{Length: 120, Beam: 20, TurningRadius: 250}
	return trajectory.BuildLegs(wps, ship, 30, trajectory.Environment{}), wps
}

func TestClampMultiplier(t *testing.T) {
	if m := ClampMultiplier(0); m != 1 {
		t.Errorf("ClampMultiplier(0) = %f; want 1", m)
	}
	if m := ClampMultiplier(3); m != 2 && m != 4 {
		t.Errorf("ClampMultiplier(3) = %f; want 2 or 4", m)
	}
	if m := ClampMultiplier(1000); m != 256 {
		t.Errorf("ClampMultiplier(1000) = %f; want 256", m)
	}
}

func TestDriverProgresses(t *testing.T) {
	sched := newManualScheduler()

	var states []*trajectory.AnimationState
	d := NewDriver(sched, func(st *trajectory.AnimationState) {
		states = append(states, st)
	})

	legs, wps := testPlan()
	d.Start(legs, wps, 256)

	// first tick only arms the accumulator and publishes the start state
	sched.advance(time.Second)
	if len(states) != 1 || states[0] == nil {
		t.Fatalf("after first tick: %d states; want 1 non-nil", len(states))
	}
	if states[0].Position != wps[0].Latlon {
		t.Errorf("first state position = %v; want the start", states[0].Position)
	}

	sched.advance(time.Second)
	if len(states) != 2 || states[1] == nil {
		t.Fatalf("after second tick: %d states; want 2", len(states))
	}
	if states[1].Position.Lon <= states[0].Position.Lon {
		t.Errorf("playback does not move east: %f then %f", states[0].Position.Lon, states[1].Position.Lon)
	}
}

func TestDriverCompletesAndClears(t *testing.T) {
	sched := newManualScheduler()

	var states []*trajectory.AnimationState
	d := NewDriver(sched, func(st *trajectory.AnimationState) {
		states = append(states, st)
	})
	d.SetHold(time.Second)

	legs, wps := testPlan()
	total := trajectory.TotalDuration(legs) // ~433s of plan time

	s := d.Start(legs, wps, 256)

	sched.advance(time.Second) // arm
	// 256x: cover the whole plan in wall time total/256, plus margin
	sched.advance(time.Duration((total/256 + 1) * float64(time.Second)))

	final := states[len(states)-1]
	if final == nil {
		t.Fatal("final state cleared too early")
	}
	if latlon.Distance(final.Position, wps[1].Latlon) > 0.1 {
		t.Errorf("final position = %v; want the last waypoint", final.Position)
	}

	// ride out the hold, then the display clears exactly once
	sched.advance(2 * time.Second)
	sched.advance(2 * time.Second)
	if states[len(states)-1] != nil {
		t.Errorf("display not cleared after the hold")
	}
	if !s.Done() {
		t.Errorf("session not done after clearing")
	}
	if len(sched.pending) != 0 {
		t.Errorf("%d ticks still scheduled after completion; want 0", len(sched.pending))
	}
}

func TestDriverCancelIsTotal(t *testing.T) {
	sched := newManualScheduler()

	var states []*trajectory.AnimationState
	d := NewDriver(sched, func(st *trajectory.AnimationState) {
		states = append(states, st)
	})

	legs, wps := testPlan()
	s := d.Start(legs, wps, 4)

	sched.advance(time.Second)
	sched.advance(time.Second)
	published := len(states)

	d.Cancel(s)
	if len(sched.pending) != 0 {
		t.Errorf("%d ticks still scheduled after cancel; want 0", len(sched.pending))
	}

	// even a stray host tick after cancel must not publish
	sched.advance(time.Second)
	s.tick(sched.now)
	if len(states) != published {
		t.Errorf("states published after cancel: %d -> %d", published, len(states))
	}
}

func TestDriverMonotonicProgress(t *testing.T) {
	sched := newManualScheduler()

	var states []*trajectory.AnimationState
	d := NewDriver(sched, func(st *trajectory.AnimationState) {
		states = append(states, st)
	})

	legs, wps := testPlan()
	d.Start(legs, wps, 64)

	for i := 0; i < 6; i++ {
		sched.advance(500 * time.Millisecond)
	}

	for i := 1; i < len(states); i++ {
		if states[i] == nil || states[i-1] == nil {
			break
		}
		if states[i].Position.Lon < states[i-1].Position.Lon {
			t.Errorf("position moved backwards at tick %d", i)
		}
	}
}
