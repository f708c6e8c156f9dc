package metrics

import (
	"sync"
	"time"

	"github.com/examshield/proctor-agent/internal/domain"
)

// Tracker accumulates session-level reliability counters. It observes the
// transport state machine rather than instrumenting the hot paths, so the
// emit path carries no extra cost.
type Tracker struct {
	mu          sync.Mutex
	startedAt   time.Time
	reconnects  int64
	disconnects int64
	lastState   domain.ConnectionState
}

func NewTracker() *Tracker {
	return &Tracker{
		startedAt: time.Now(),
		lastState: domain.StateDisconnected,
	}
}

// ObserveState counts connection losses and successful recoveries. Register
// it as a transport state observer.
func (t *Tracker) ObserveState(state domain.ConnectionState) {
	t.mu.Lock()
	defer t.mu.Unlock()

	switch state {
	case domain.StateReconnecting:
		// Only a drop out of an established connection counts; failed
		// retries cycling between connecting and reconnecting do not.
		if t.lastState == domain.StateConnected {
			t.disconnects++
		}
	case domain.StateConnected:
		if t.disconnects > t.reconnects {
			t.reconnects++
		}
	}
	t.lastState = state
}

// Snapshot is the tracker's point-in-time view.
type Snapshot struct {
	UptimeSeconds int64 `json:"uptime_seconds"`
	Disconnects   int64 `json:"disconnects"`
	Reconnects    int64 `json:"reconnects"`
}

func (t *Tracker) Snapshot() Snapshot {
	t.mu.Lock()
	defer t.mu.Unlock()

	return Snapshot{
		UptimeSeconds: int64(time.Since(t.startedAt).Seconds()),
		Disconnects:   t.disconnects,
		Reconnects:    t.reconnects,
	}
}
