package playback

import (
	"sync"
	"time"

	"github.com/a-bouts/passage-server/trajectory"
)

// Multipliers are the selectable playback speeds.
var Multipliers = []float64{1, 2, 4, 8, 16, 32, 64, 128, 256}

// DefaultHold is how long the final state stays published before the
// driver clears it.
const DefaultHold = 2 * time.Second

// ClampMultiplier snaps an arbitrary factor to the closest selectable
// speed.
func ClampMultiplier(m float64) float64 {
	best := Multipliers[0]
	for _, c := range Multipliers {
		if diff(c, m) < diff(best, m) {
			best = c
		}
	}
	return best
}

func diff(a, b float64) float64 {
	if a > b {
		return a - b
	}
	return b - a
}

// Driver replays a leg sequence against wall-clock time scaled by a
// speed multiplier, publishing one AnimationState per tick. A nil state
// is published once at the end of a completed session to clear the
// display.
type Driver struct {
	scheduler Scheduler
	publish   func(*trajectory.AnimationState)
	hold      time.Duration
}

// NewDriver wires a scheduler to a publish sink. publish runs on the
// tick path and must return quickly and never call back into the
// driver; Cancel waits for an in-flight publish, which is what makes
// cancellation total.
func NewDriver(scheduler Scheduler, publish func(*trajectory.AnimationState)) *Driver {
	return &Driver{scheduler: scheduler, publish: publish, hold: DefaultHold}
}

// SetHold overrides how long the final state is held before clearing.
func (d *Driver) SetHold(hold time.Duration) {
	d.hold = hold
}

// Session is a handle on one playback run.
type Session struct {
	d          *Driver
	legs       []trajectory.Leg
	waypoints  []trajectory.Waypoint
	multiplier float64
	total      float64

	mu            sync.Mutex
	cancelled     bool
	done          bool
	started       bool
	lastTick      time.Time
	scaledElapsed float64
	holdUntil     time.Time
	pending       TickID
	hasPending    bool
}

// Start resets the accumulator and schedules the first tick.
func (d *Driver) Start(legs []trajectory.Leg, waypoints []trajectory.Waypoint, multiplier float64) *Session {
	s := &Session{
		d:          d,
		legs:       legs,
		waypoints:  waypoints,
		multiplier: ClampMultiplier(multiplier),
		total:      trajectory.TotalDuration(legs),
	}

	s.mu.Lock()
	s.pending = d.scheduler.RequestTick(s.tick)
	s.hasPending = true
	s.mu.Unlock()
	return s
}

// Cancel stops the session immediately: the pending tick is revoked and
// no state is published after Cancel returns.
func (d *Driver) Cancel(s *Session) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.cancelled = true
	if s.hasPending {
		d.scheduler.CancelTick(s.pending)
		s.hasPending = false
	}
}

// Done reports whether the session ran to completion and cleared.
func (s *Session) Done() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.done
}

func (s *Session) tick(now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.hasPending = false
	if s.cancelled || s.done {
		return
	}

	if !s.started {
		s.started = true
		s.lastTick = now
	} else {
		dt := now.Sub(s.lastTick).Seconds()
		if dt < 0 {
			dt = 0
		}
		s.lastTick = now
		s.scaledElapsed += dt * s.multiplier
	}

	progress := 1.0
	if s.total > 0 {
		progress = s.scaledElapsed / s.total
		if progress > 1 {
			progress = 1
		}
	}

	if progress < 1 {
		s.d.publish(trajectory.Interpolate(s.legs, s.waypoints, progress, s.total))
		s.pending = s.d.scheduler.RequestTick(s.tick)
		s.hasPending = true
		return
	}

	// completed: publish the final state once, hold it, then clear
	if s.holdUntil.IsZero() {
		s.d.publish(trajectory.Interpolate(s.legs, s.waypoints, 1, s.total))
		s.holdUntil = now.Add(s.d.hold)
		s.pending = s.d.scheduler.RequestTick(s.tick)
		s.hasPending = true
		return
	}

	if now.Before(s.holdUntil) {
		s.pending = s.d.scheduler.RequestTick(s.tick)
		s.hasPending = true
		return
	}

	s.d.publish(nil)
	s.done = true
}
