package emitter

import (
	"log/slog"

	"github.com/examshield/proctor-agent/internal/domain"
	"github.com/examshield/proctor-agent/internal/queue"
	"github.com/examshield/proctor-agent/internal/sequence"
	"github.com/examshield/proctor-agent/internal/throttle"
)

// Sender is the transport capability the emitter needs: a best-effort single
// send when a connection happens to be open.
type Sender interface {
	IsConnected() bool
	Send(ev *domain.ProctorEvent)
}

// Emitter is the single entry point producers call to report an integrity
// event. It composes the throttle policy, the sequencer, the local queue and
// the transport.
type Emitter struct {
	sessionID string
	userID    string
	policy    *throttle.Policy
	seq       *sequence.Sequencer
	queue     *queue.Queue
	transport Sender
	logger    *slog.Logger
}

func New(sessionID, userID string, policy *throttle.Policy, seq *sequence.Sequencer, q *queue.Queue, transport Sender, logger *slog.Logger) *Emitter {
	return &Emitter{
		sessionID: sessionID,
		userID:    userID,
		policy:    policy,
		seq:       seq,
		queue:     q,
		transport: transport,
		logger:    logger.With("component", "emitter"),
	}
}

// Emit reports one event. Suppressed events return silently and acquire no
// sequence number. The event is enqueued before any network attempt so that a
// silently failing send can never lose it; a successful best-effort send does
// not remove the event from the queue. Removal happens only via the
// transport's batch drain.
func (e *Emitter) Emit(eventType domain.EventType, payload map[string]any) *domain.ProctorEvent {
	if !e.policy.Allow(eventType) {
		e.logger.Debug("event suppressed by throttle policy", "type", eventType)
		return nil
	}

	ev := domain.NewProctorEvent(e.sessionID, e.userID, eventType, payload, e.seq.Next())

	e.queue.Enqueue(ev)

	if e.transport != nil && e.transport.IsConnected() {
		e.transport.Send(ev)
	}

	e.logger.Debug("event emitted",
		"type", eventType,
		"sequence", ev.Sequence,
		"queued", e.queue.Size(),
	)

	return ev
}

// SessionID returns the session this emitter is bound to.
func (e *Emitter) SessionID() string {
	return e.sessionID
}

// UserID returns the candidate this emitter is bound to.
func (e *Emitter) UserID() string {
	return e.userID
}
