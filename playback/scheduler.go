// Package playback advances a trajectory through time. The driver is a
// cooperative, single-tick-at-a-time loop: it owns one elapsed-time
// accumulator, requests the next tick only after handling the current
// one, and never publishes anything after cancellation.
package playback

import (
	"sync"
	"time"
)

// TickID identifies a pending tick request.
type TickID uint64

// Scheduler delivers host ticks with monotonically increasing
// timestamps. Injecting it keeps the driver testable without a real
// frame clock.
type Scheduler interface {
	RequestTick(fn func(now time.Time)) TickID
	CancelTick(id TickID)
}

// DefaultFrameInterval approximates a 30 fps host frame clock.
const DefaultFrameInterval = 33 * time.Millisecond

// WallScheduler delivers ticks from the wall clock, one timer per
// request.
type WallScheduler struct {
	interval time.Duration

	mu     sync.Mutex
	next   TickID
	timers map[TickID]*time.Timer
}

func NewWallScheduler(interval time.Duration) *WallScheduler {
	if interval <= 0 {
		interval = DefaultFrameInterval
	}
	return &WallScheduler{
		interval: interval,
		timers:   make(map[TickID]*time.Timer),
	}
}

func (s *WallScheduler) RequestTick(fn func(now time.Time)) TickID {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.next++
	id := s.next
	s.timers[id] = time.AfterFunc(s.interval, func() {
		s.mu.Lock()
		_, pending := s.timers[id]
		delete(s.timers, id)
		s.mu.Unlock()
		if pending {
			fn(time.Now())
		}
	})
	return id
}

func (s *WallScheduler) CancelTick(id TickID) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if t, ok := s.timers[id]; ok {
		t.Stop()
		delete(s.timers, id)
	}
}
