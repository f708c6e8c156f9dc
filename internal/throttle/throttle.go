package throttle

import (
	"sync"
	"time"

	"github.com/examshield/proctor-agent/internal/domain"
)

// DefaultIntervals is the reference throttle policy. Event types not listed
// are unthrottled.
func DefaultIntervals() map[domain.EventType]time.Duration {
	return map[domain.EventType]time.Duration{
		domain.EventCameraStatus:     1000 * time.Millisecond,
		domain.EventMicrophoneStatus: 1000 * time.Millisecond,
		domain.EventTabBlur:          2000 * time.Millisecond,
		domain.EventStreamLost:       5000 * time.Millisecond,
	}
}

// Policy enforces a per-event-type minimum re-emission interval. Suppressed
// calls are dropped before they acquire a sequence number or enter the queue,
// so throttling never creates sequence gaps. This is a policy decision, not a
// queuing decision: it trades completeness for noise reduction.
type Policy struct {
	mu        sync.Mutex
	intervals map[domain.EventType]time.Duration
	lastEmit  map[domain.EventType]time.Time
	now       func() time.Time
}

func New(intervals map[domain.EventType]time.Duration) *Policy {
	if intervals == nil {
		intervals = DefaultIntervals()
	}
	return &Policy{
		intervals: intervals,
		lastEmit:  make(map[domain.EventType]time.Time),
		now:       time.Now,
	}
}

// WithClock replaces the wall clock, for tests.
func (p *Policy) WithClock(now func() time.Time) *Policy {
	p.now = now
	return p
}

// Allow reports whether an event of the given type may be emitted now.
// The last-emit time is updated only on an allowed call.
func (p *Policy) Allow(eventType domain.EventType) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	interval, ok := p.intervals[eventType]
	if !ok || interval <= 0 {
		return true
	}

	now := p.now()
	if last, seen := p.lastEmit[eventType]; seen && now.Sub(last) < interval {
		return false
	}

	p.lastEmit[eventType] = now
	return true
}

// Reset clears all last-emit state, for the start of a new session.
func (p *Policy) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.lastEmit = make(map[domain.EventType]time.Time)
}
