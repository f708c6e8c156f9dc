package queue

import (
	"log/slog"
	"sync"

	"github.com/examshield/proctor-agent/internal/domain"
)

// DefaultCapacity is the reference bound for the local event buffer.
const DefaultCapacity = 500

// Queue is a bounded FIFO buffer of pending events. When full, the single
// oldest entry is evicted before inserting: approximate freshness is
// preferred over exact completeness. Eviction is not an error; it is logged
// as an observable side effect only.
type Queue struct {
	mu       sync.Mutex
	entries  []*domain.ProctorEvent
	capacity int
	logger   *slog.Logger
}

func New(capacity int, logger *slog.Logger) *Queue {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Queue{
		entries:  make([]*domain.ProctorEvent, 0, capacity),
		capacity: capacity,
		logger:   logger.With("component", "queue"),
	}
}

// Enqueue appends an event, evicting the oldest entry first when at capacity.
// It never fails.
func (q *Queue) Enqueue(ev *domain.ProctorEvent) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.entries) >= q.capacity {
		evicted := q.entries[0]
		q.entries = q.entries[1:]
		q.logger.Warn("queue at capacity, evicting oldest event",
			"capacity", q.capacity,
			"evicted_event_id", evicted.EventID,
			"evicted_sequence", evicted.Sequence,
		)
	}

	q.entries = append(q.entries, ev)
}

// Requeue returns a drained batch to the front of the queue, ahead of
// anything enqueued since the drain, so a failed batch send keeps emission
// order for the next replay. Combined overflow beyond capacity drops the
// oldest entries first, the same policy Enqueue applies.
func (q *Queue) Requeue(events []*domain.ProctorEvent) {
	if len(events) == 0 {
		return
	}

	q.mu.Lock()
	defer q.mu.Unlock()

	combined := make([]*domain.ProctorEvent, 0, len(events)+len(q.entries))
	combined = append(combined, events...)
	combined = append(combined, q.entries...)

	if over := len(combined) - q.capacity; over > 0 {
		q.logger.Warn("queue over capacity on requeue, dropping oldest events",
			"capacity", q.capacity,
			"dropped", over,
		)
		combined = combined[over:]
	}

	q.entries = combined
}

// DrainAll atomically returns a snapshot of all entries in insertion order
// and empties the queue. It is the only bulk removal entry point; two drains
// never observe overlapping entries.
func (q *Queue) DrainAll() []*domain.ProctorEvent {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.entries) == 0 {
		return nil
	}

	drained := q.entries
	q.entries = make([]*domain.ProctorEvent, 0, q.capacity)
	return drained
}

// Size returns the number of pending events.
func (q *Queue) Size() int {
	q.mu.Lock()
	defer q.mu.Unlock()

	return len(q.entries)
}

// IsEmpty reports whether no events are pending.
func (q *Queue) IsEmpty() bool {
	return q.Size() == 0
}
