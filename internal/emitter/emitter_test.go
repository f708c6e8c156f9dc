package emitter

import (
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/examshield/proctor-agent/internal/domain"
	"github.com/examshield/proctor-agent/internal/queue"
	"github.com/examshield/proctor-agent/internal/sequence"
	"github.com/examshield/proctor-agent/internal/throttle"
)

type fakeTransport struct {
	mu        sync.Mutex
	connected bool
	sent      []*domain.ProctorEvent
}

func (f *fakeTransport) IsConnected() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.connected
}

func (f *fakeTransport) Send(ev *domain.ProctorEvent) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, ev)
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestEmitter(tr *fakeTransport) (*Emitter, *queue.Queue) {
	q := queue.New(100, testLogger())
	// No throttling: each test controls its own policy where needed.
	policy := throttle.New(map[domain.EventType]time.Duration{})
	em := New("exam-1", "candidate-1", policy, sequence.New(), q, tr, testLogger())
	return em, q
}

func TestSequenceGaplessWhileDisconnected(t *testing.T) {
	tr := &fakeTransport{connected: false}
	em, q := newTestEmitter(tr)

	const n = 50
	for i := 0; i < n; i++ {
		em.Emit(domain.EventTabBlur, nil)
	}

	require.Equal(t, n, q.Size())
	drained := q.DrainAll()
	for i, ev := range drained {
		assert.Equal(t, int64(i+1), ev.Sequence, "sequence numbers are 1..N with no gaps")
		assert.Equal(t, "exam-1", ev.SessionID)
		assert.Equal(t, "candidate-1", ev.UserID)
	}

	assert.Empty(t, tr.sent, "nothing is sent while disconnected")
}

func TestSuppressedEventsCreateNoGaps(t *testing.T) {
	tr := &fakeTransport{}
	q := queue.New(100, testLogger())
	policy := throttle.New(map[domain.EventType]time.Duration{
		domain.EventCameraStatus: time.Minute,
	})
	em := New("exam-1", "candidate-1", policy, sequence.New(), q, tr, testLogger())

	require.NotNil(t, em.Emit(domain.EventCameraStatus, nil))
	assert.Nil(t, em.Emit(domain.EventCameraStatus, nil), "second camera event suppressed")
	require.NotNil(t, em.Emit(domain.EventTabBlur, nil))

	drained := q.DrainAll()
	require.Len(t, drained, 2)
	assert.Equal(t, int64(1), drained[0].Sequence)
	assert.Equal(t, int64(2), drained[1].Sequence, "suppressed event consumed no sequence number")
}

func TestBestEffortSendKeepsEventQueued(t *testing.T) {
	tr := &fakeTransport{connected: true}
	em, q := newTestEmitter(tr)

	ev := em.Emit(domain.EventFullscreenExit, map[string]any{"reason": "esc"})
	require.NotNil(t, ev)

	require.Len(t, tr.sent, 1)
	assert.Same(t, ev, tr.sent[0])

	// Removal happens only via the transport's batch drain.
	assert.Equal(t, 1, q.Size(), "successful best-effort send leaves the event in the queue")
}

func TestEventFieldsFixedAtCreation(t *testing.T) {
	tr := &fakeTransport{}
	em, _ := newTestEmitter(tr)

	before := time.Now().UnixMilli()
	ev := em.Emit(domain.EventViolation, map[string]any{"violation_type": "no_face"})
	after := time.Now().UnixMilli()

	require.NotNil(t, ev)
	assert.NotEqual(t, "00000000-0000-0000-0000-000000000000", ev.EventID.String())
	assert.GreaterOrEqual(t, ev.Timestamp, before)
	assert.LessOrEqual(t, ev.Timestamp, after)
}
