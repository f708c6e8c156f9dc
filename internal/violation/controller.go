package violation

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/examshield/proctor-agent/internal/audit"
	"github.com/examshield/proctor-agent/internal/domain"
)

// DefaultCoolingWindow is the reference suppression window after a violation.
const DefaultCoolingWindow = 60 * time.Second

// EventSink is the emitter capability the controller needs.
type EventSink interface {
	Emit(eventType domain.EventType, payload map[string]any) *domain.ProctorEvent
}

// Submitter persists a violation alert out of band. Its success or failure
// never affects cooling-period or queue state.
type Submitter interface {
	Submit(alert domain.ViolationAlert)
}

// Controller records violation alerts and enforces a cooling period after
// each one. InCoolingPeriod is the single gate a detector-driving caller must
// check before running a detection pass; RecordViolation itself carries no
// guard. A repeat violation during an active window resets the countdown
// rather than extending it.
type Controller struct {
	sink      EventSink
	submitter Submitter
	window    time.Duration
	logger    *slog.Logger
	auditLog  audit.Logger

	mu        sync.Mutex
	alerts    []domain.ViolationAlert
	cooling   bool
	remaining int
	startTime int64
	windowGen uint64
	expiry    *time.Timer
	tickStop  chan struct{}
}

func NewController(sink EventSink, submitter Submitter, window time.Duration, logger *slog.Logger) *Controller {
	if window <= 0 {
		window = DefaultCoolingWindow
	}
	return &Controller{
		sink:      sink,
		submitter: submitter,
		window:    window,
		logger:    logger.With("component", "violation-controller"),
		auditLog:  audit.NewSlogLogger(logger),
	}
}

// WithAuditLogger replaces the audit sink, for tests or to disable auditing.
func (c *Controller) WithAuditLogger(l audit.Logger) *Controller {
	c.auditLog = l
	return c
}

// RecordViolation appends an alert to the session history, reports it, and
// (re)starts the cooling window.
func (c *Controller) RecordViolation(vtype domain.ViolationType, message string, image []byte) domain.ViolationAlert {
	alert := domain.ViolationAlert{
		ID:        uuid.New().String(),
		Type:      vtype,
		Message:   message,
		Timestamp: domain.NowMilli(),
		Image:     image,
	}

	c.mu.Lock()
	c.alerts = append(c.alerts, alert)
	c.restartWindowLocked()
	c.mu.Unlock()

	c.logger.Warn("violation recorded", "type", vtype, "message", message)

	_ = c.auditLog.Log(context.Background(), audit.Event{
		EventType: audit.EventViolationRecorded,
		Success:   true,
		Metadata: map[string]string{
			"alert_id":       alert.ID,
			"violation_type": string(vtype),
		},
	})

	c.sink.Emit(domain.EventViolation, map[string]any{
		"violation_type": string(vtype),
		"message":        message,
		"alert_id":       alert.ID,
	})

	// Backend persistence is fire-and-forget and only applies to alerts
	// that captured a frame.
	if c.submitter != nil && len(image) > 0 {
		go c.submitter.Submit(alert)
	}

	return alert
}

// restartWindowLocked cancels any in-flight window and starts a fresh one.
// Each window carries a generation stamp: an expiry callback that already
// fired and was blocked on the mutex while the window restarted carries a
// stale generation and must not clear the new window (Stop returning false
// cannot prevent that race).
func (c *Controller) restartWindowLocked() {
	c.stopTimersLocked()

	c.cooling = true
	c.remaining = int(c.window / time.Second)
	c.startTime = domain.NowMilli()

	c.windowGen++
	gen := c.windowGen
	c.expiry = time.AfterFunc(c.window, func() { c.expire(gen) })

	c.tickStop = make(chan struct{})
	stop := c.tickStop
	go c.countdown(stop)
}

// countdown updates the remaining-seconds display value once per second.
func (c *Controller) countdown(stop chan struct{}) {
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			c.mu.Lock()
			if c.remaining > 0 {
				c.remaining--
			}
			c.mu.Unlock()
		}
	}
}

func (c *Controller) expire(gen uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if gen != c.windowGen {
		// A newer window replaced this one while the callback waited.
		return
	}

	c.cooling = false
	c.remaining = 0
	c.startTime = 0
	if c.tickStop != nil {
		close(c.tickStop)
		c.tickStop = nil
	}

	c.logger.Info("cooling period expired")
}

// InCoolingPeriod reports whether a suppression window is active. Callers
// must consult this before invoking the detector; no detection pass, and
// therefore no new violation, should happen while it returns true.
func (c *Controller) InCoolingPeriod() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cooling
}

// Status returns the current cooling-period view for display.
func (c *Controller) Status() domain.CoolingPeriodStatus {
	c.mu.Lock()
	defer c.mu.Unlock()

	return domain.CoolingPeriodStatus{
		Active:           c.cooling,
		RemainingSeconds: c.remaining,
		StartTime:        c.startTime,
	}
}

// Alerts returns a copy of the append-only alert history.
func (c *Controller) Alerts() []domain.ViolationAlert {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]domain.ViolationAlert, len(c.alerts))
	copy(out, c.alerts)
	return out
}

// Close cancels both the countdown and the expiry timer.
func (c *Controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.stopTimersLocked()
	c.windowGen++ // invalidate any expiry callback still in flight
	c.cooling = false
	c.remaining = 0
	c.startTime = 0
}

func (c *Controller) stopTimersLocked() {
	if c.expiry != nil {
		c.expiry.Stop()
		c.expiry = nil
	}
	if c.tickStop != nil {
		close(c.tickStop)
		c.tickStop = nil
	}
}
