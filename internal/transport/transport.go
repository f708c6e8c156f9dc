package transport

import (
	"fmt"
	"log/slog"
	"net/url"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/gorilla/websocket"

	"github.com/examshield/proctor-agent/internal/domain"
	"github.com/examshield/proctor-agent/internal/protocol"
	"github.com/examshield/proctor-agent/internal/queue"
)

const (
	defaultHandshakeTimeout = 10 * time.Second
	defaultWriteTimeout     = 10 * time.Second
	defaultFlushInterval    = 30 * time.Second
)

// Options tunes the reconnection schedule and flush cadence.
type Options struct {
	// InitialReconnectDelay is the first retry delay after an unexpected
	// close. Subsequent delays grow exponentially with jitter up to
	// MaxReconnectDelay. A Multiplier of 1.0 degrades to a fixed delay.
	InitialReconnectDelay time.Duration
	MaxReconnectDelay     time.Duration
	Multiplier            float64
	// FlushInterval is how often the pending queue is re-drained and
	// batch-sent while a connection stays up, so delivered events do not
	// sit in the queue until capacity eviction.
	FlushInterval time.Duration
}

func DefaultOptions() Options {
	return Options{
		InitialReconnectDelay: 3 * time.Second,
		MaxReconnectDelay:     60 * time.Second,
		Multiplier:            1.5,
		FlushInterval:         defaultFlushInterval,
	}
}

// Transport owns the WebSocket connection to the monitor backend and the
// reconnection state machine around it:
//
//	disconnected -> connecting -> connected -> (reconnecting <-> connecting) -> disconnected
//
// On every successful open it drains the local queue and replays the pending
// events as a single batch message. Network failures are never surfaced as
// errors to event producers; they only show up as state transitions.
type Transport struct {
	endpoint  string
	sessionID string
	userID    string
	q         *queue.Queue
	opts      Options
	logger    *slog.Logger

	stateObservers *observerList[StateObserver]
	msgObservers   *observerList[MessageObserver]

	mu             sync.Mutex
	conn           *websocket.Conn
	state          domain.ConnectionState
	manualClose    bool
	reconnectTimer *time.Timer
	backoff        *backoff.ExponentialBackOff
	flushStop      chan struct{}
	pendingNotify  []domain.ConnectionState
	notifying      bool

	writeMu sync.Mutex
}

func New(endpoint, sessionID, userID string, q *queue.Queue, opts Options, logger *slog.Logger) *Transport {
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = opts.InitialReconnectDelay
	bo.MaxInterval = opts.MaxReconnectDelay
	bo.Multiplier = opts.Multiplier
	if opts.Multiplier <= 1.0 {
		// Fixed-delay mode: no growth, no jitter.
		bo.Multiplier = 1.0
		bo.RandomizationFactor = 0
	}
	bo.MaxElapsedTime = 0 // retry indefinitely
	bo.Reset()

	return &Transport{
		endpoint:       endpoint,
		sessionID:      sessionID,
		userID:         userID,
		q:              q,
		opts:           opts,
		logger:         logger.With("component", "transport"),
		stateObservers: newObserverList[StateObserver](),
		msgObservers:   newObserverList[MessageObserver](),
		state:          domain.StateDisconnected,
		backoff:        bo,
	}
}

// OnStateChange registers a connection-state observer and returns an
// unsubscribe func.
func (t *Transport) OnStateChange(fn StateObserver) func() {
	return t.stateObservers.subscribe(fn)
}

// OnMessage registers an inbound-message observer and returns an unsubscribe
// func.
func (t *Transport) OnMessage(fn MessageObserver) func() {
	return t.msgObservers.subscribe(fn)
}

// State returns the current connection state.
func (t *Transport) State() domain.ConnectionState {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state
}

// IsConnected reports whether a connection is currently open.
func (t *Transport) IsConnected() bool {
	return t.State() == domain.StateConnected
}

// sessionURL resolves the session-scoped endpoint address.
func (t *Transport) sessionURL() (string, error) {
	u, err := url.Parse(t.endpoint)
	if err != nil {
		return "", fmt.Errorf("parse endpoint: %w", err)
	}
	v := u.Query()
	v.Set("session_id", t.sessionID)
	v.Set("user_id", t.userID)
	u.RawQuery = v.Encode()
	return u.String(), nil
}

// Connect opens the connection to the monitor backend. It is a no-op if a
// connect is already in flight or a connection is already open. A pending
// reconnect timer is cancelled: this dial supersedes the scheduled one, and
// leaving the timer in place would make a failed dial skip rescheduling and
// strand the machine in connecting.
func (t *Transport) Connect() {
	t.mu.Lock()
	if t.state == domain.StateConnecting || t.state == domain.StateConnected {
		t.mu.Unlock()
		return
	}
	if t.reconnectTimer != nil {
		t.reconnectTimer.Stop()
		t.reconnectTimer = nil
	}
	t.manualClose = false
	t.setStateLocked(domain.StateConnecting)
	t.mu.Unlock()

	go t.dial()
}

func (t *Transport) dial() {
	addr, err := t.sessionURL()
	if err != nil {
		t.logger.Error("invalid endpoint", "error", err)
		t.handleClose(err)
		return
	}

	dialer := websocket.Dialer{HandshakeTimeout: defaultHandshakeTimeout}
	conn, _, err := dialer.Dial(addr, nil)
	if err != nil {
		t.logger.Warn("connect failed", "error", err)
		t.handleClose(err)
		return
	}

	t.mu.Lock()
	if t.manualClose {
		// Disconnect raced in while dialing.
		t.mu.Unlock()
		_ = conn.Close()
		return
	}
	t.conn = conn
	t.backoff.Reset()
	t.setStateLocked(domain.StateConnected)
	t.flushStop = make(chan struct{})
	flushStop := t.flushStop
	t.mu.Unlock()

	t.logger.Info("connected", "session_id", t.sessionID)

	t.flushQueue()

	go t.readPump(conn)
	if t.opts.FlushInterval > 0 {
		go t.flushLoop(flushStop)
	}
}

// flushQueue drains the pending queue and replays it as one batch message.
func (t *Transport) flushQueue() {
	events := t.q.DrainAll()
	if len(events) == 0 {
		return
	}

	if err := t.writeJSON(protocol.NewBatchEventsMessage(events)); err != nil {
		t.logger.Error("batch flush failed, re-queueing events",
			"count", len(events),
			"error", err,
		)
		// Failed batches go back to the front of the queue so the next
		// replay stays in emission order even when events were emitted
		// during the failed write.
		t.q.Requeue(events)
		return
	}

	t.logger.Info("flushed pending events", "count", len(events))
}

// flushLoop periodically re-drains the queue while the connection stays up.
// Without this, events delivered by best-effort sends would occupy queue
// slots until capacity eviction under a long-lived stable connection.
func (t *Transport) flushLoop(stop chan struct{}) {
	ticker := time.NewTicker(t.opts.FlushInterval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			if t.IsConnected() {
				t.flushQueue()
			}
		}
	}
}

// Send transmits a single event if a connection is currently open. Failures
// are logged, never returned: the event's durability is already guaranteed by
// the queue, and a lost send is recovered by the next batch flush.
func (t *Transport) Send(ev *domain.ProctorEvent) {
	if !t.IsConnected() {
		t.logger.Debug("send skipped, not connected", "sequence", ev.Sequence)
		return
	}

	if err := t.writeJSON(protocol.NewEventMessage(ev)); err != nil {
		t.logger.Warn("event send failed, left for batch flush",
			"sequence", ev.Sequence,
			"error", err,
		)
	}
}

func (t *Transport) writeJSON(v any) error {
	t.mu.Lock()
	conn := t.conn
	t.mu.Unlock()
	if conn == nil {
		return fmt.Errorf("no connection")
	}

	t.writeMu.Lock()
	defer t.writeMu.Unlock()

	_ = conn.SetWriteDeadline(time.Now().Add(defaultWriteTimeout))
	return conn.WriteJSON(v)
}

// readPump dispatches inbound payloads to message observers until the
// connection drops.
func (t *Transport) readPump(conn *websocket.Conn) {
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			t.handleClose(err)
			return
		}
		t.dispatchMessage(data)
	}
}

func (t *Transport) dispatchMessage(data []byte) {
	msg, err := protocol.ParseServerMessage(data)
	if err != nil {
		t.logger.Warn("unparseable server message", "error", err)
		return
	}
	if !protocol.Recognized(msg.Type) {
		t.logger.Debug("unrecognized server message, passing through", "type", msg.Type)
	}

	for _, fn := range t.msgObservers.snapshot() {
		fn(msg, data)
	}
}

// handleClose reacts to any connection loss that was not an explicit manual
// disconnect: transition to reconnecting and schedule exactly one retry. A
// second close while a retry is pending (an error event followed by a close
// event, for instance) must not create a second timer.
func (t *Transport) handleClose(cause error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.conn != nil {
		_ = t.conn.Close()
		t.conn = nil
	}
	t.stopFlushLocked()

	if t.manualClose {
		t.setStateLocked(domain.StateDisconnected)
		return
	}

	if t.reconnectTimer != nil {
		// A retry is already scheduled.
		return
	}

	t.setStateLocked(domain.StateReconnecting)

	delay := t.backoff.NextBackOff()
	t.logger.Info("scheduling reconnect", "delay", delay, "cause", cause)

	t.reconnectTimer = time.AfterFunc(delay, func() {
		t.mu.Lock()
		t.reconnectTimer = nil
		if t.manualClose || t.state == domain.StateConnected || t.state == domain.StateConnecting {
			t.mu.Unlock()
			return
		}
		t.setStateLocked(domain.StateConnecting)
		t.mu.Unlock()

		t.dial()
	})
}

// Disconnect closes the connection on purpose: any pending reconnect timer is
// cancelled and the manual-close flag suppresses reconnect scheduling from a
// close notification that races in afterward.
func (t *Transport) Disconnect() {
	t.mu.Lock()

	t.manualClose = true
	if t.reconnectTimer != nil {
		t.reconnectTimer.Stop()
		t.reconnectTimer = nil
	}
	t.stopFlushLocked()

	conn := t.conn
	t.conn = nil
	t.setStateLocked(domain.StateDisconnected)
	t.mu.Unlock()

	if conn != nil {
		t.writeMu.Lock()
		_ = conn.SetWriteDeadline(time.Now().Add(time.Second))
		_ = conn.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, "session ended"))
		t.writeMu.Unlock()
		_ = conn.Close()
	}

	t.logger.Info("disconnected", "session_id", t.sessionID)
}

func (t *Transport) stopFlushLocked() {
	if t.flushStop != nil {
		close(t.flushStop)
		t.flushStop = nil
	}
}

// setStateLocked transitions the state and queues an observer notification.
// Callers hold t.mu; callbacks run outside the lock on a single drainer
// goroutine so that rapid transitions reach observers in the order they
// happened.
func (t *Transport) setStateLocked(state domain.ConnectionState) {
	if t.state == state {
		return
	}
	t.state = state

	t.pendingNotify = append(t.pendingNotify, state)
	if !t.notifying {
		t.notifying = true
		go t.drainNotifications()
	}
}

func (t *Transport) drainNotifications() {
	for {
		t.mu.Lock()
		if len(t.pendingNotify) == 0 {
			t.notifying = false
			t.mu.Unlock()
			return
		}
		state := t.pendingNotify[0]
		t.pendingNotify = t.pendingNotify[1:]
		t.mu.Unlock()

		for _, fn := range t.stateObservers.snapshot() {
			fn(state)
		}
	}
}
