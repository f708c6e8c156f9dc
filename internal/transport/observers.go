package transport

import (
	"sync"

	"github.com/examshield/proctor-agent/internal/domain"
	"github.com/examshield/proctor-agent/internal/protocol"
)

// StateObserver receives connection-state transitions.
type StateObserver func(state domain.ConnectionState)

// MessageObserver receives inbound server payloads. Recognized shapes are
// parsed into msg; unrecognized payloads are passed through with the raw
// bytes and an empty type left for the consumer to interpret.
type MessageObserver func(msg protocol.ServerMessage, raw []byte)

// observerList is a multi-subscriber registry with unsubscribe support, so
// UI, logging and tests can observe the transport without overwriting each
// other.
type observerList[T any] struct {
	mu     sync.Mutex
	nextID int
	subs   map[int]T
}

func newObserverList[T any]() *observerList[T] {
	return &observerList[T]{subs: make(map[int]T)}
}

// subscribe registers fn and returns an unsubscribe func.
func (l *observerList[T]) subscribe(fn T) func() {
	l.mu.Lock()
	defer l.mu.Unlock()

	id := l.nextID
	l.nextID++
	l.subs[id] = fn

	return func() {
		l.mu.Lock()
		defer l.mu.Unlock()
		delete(l.subs, id)
	}
}

// snapshot returns the current subscribers. Notification happens outside the
// lock so an observer may unsubscribe from within its own callback.
func (l *observerList[T]) snapshot() []T {
	l.mu.Lock()
	defer l.mu.Unlock()

	out := make([]T, 0, len(l.subs))
	for _, fn := range l.subs {
		out = append(out, fn)
	}
	return out
}
