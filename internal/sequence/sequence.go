package sequence

import "sync"

// Sequencer issues strictly increasing per-session sequence numbers.
// The counter does not survive a process restart; callers must not rely on
// cross-restart continuity.
type Sequencer struct {
	mu      sync.Mutex
	counter int64
}

func New() *Sequencer {
	return &Sequencer{}
}

// Next returns the next sequence number, starting at 1.
func (s *Sequencer) Next() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.counter++
	return s.counter
}

// Current returns the last issued sequence number without advancing.
func (s *Sequencer) Current() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.counter
}

// Reset returns the counter to zero. Only valid at the start of a new
// session, never mid-session.
func (s *Sequencer) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.counter = 0
}
