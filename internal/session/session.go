package session

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/examshield/proctor-agent/internal/audit"
	"github.com/examshield/proctor-agent/internal/capture"
	"github.com/examshield/proctor-agent/internal/detector"
	"github.com/examshield/proctor-agent/internal/domain"
	"github.com/examshield/proctor-agent/internal/emitter"
	"github.com/examshield/proctor-agent/internal/metrics"
	"github.com/examshield/proctor-agent/internal/queue"
	"github.com/examshield/proctor-agent/internal/sequence"
	"github.com/examshield/proctor-agent/internal/throttle"
	"github.com/examshield/proctor-agent/internal/transport"
	"github.com/examshield/proctor-agent/internal/violation"
)

// Params configures one proctoring session.
type Params struct {
	SessionID string
	UserID    string

	Requirement domain.DeviceRequirement
	Handle      capture.Handle

	// Endpoint is the monitor backend WebSocket address; it gets
	// parameterized with session and user identity at connect time.
	Endpoint string
	// ReportURL is the violation persistence endpoint. Empty disables the
	// side channel.
	ReportURL string

	QueueCapacity int
	PollInterval  time.Duration
	CoolingWindow time.Duration
	Intervals     map[domain.EventType]time.Duration
	TransportOpts transport.Options

	// Detector is the async initialization handle for the violation
	// detector. Optional: without one, ProcessFrame always reports the
	// detector as not ready.
	Detector *detector.Handle

	Logger *slog.Logger
}

// Session is the explicit context object owning every component of one
// candidate/exam pairing: sequencer, throttle policy, event queue, emitter,
// transport, device monitor and violation controller. Nothing here is shared
// process-global state, so multiple sessions can coexist.
type Session struct {
	params     Params
	logger     *slog.Logger
	seq        *sequence.Sequencer
	policy     *throttle.Policy
	queue      *queue.Queue
	emitter    *emitter.Emitter
	transport  *transport.Transport
	monitor    *capture.Monitor
	controller *violation.Controller
	det        *detector.Handle
	tracker    *metrics.Tracker
	auditLog   audit.Logger

	mu      sync.Mutex
	started bool
}

func New(p Params) *Session {
	logger := p.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("session_id", p.SessionID)

	seq := sequence.New()
	policy := throttle.New(p.Intervals)
	q := queue.New(p.QueueCapacity, logger)

	opts := p.TransportOpts
	if opts == (transport.Options{}) {
		opts = transport.DefaultOptions()
	}
	tr := transport.New(p.Endpoint, p.SessionID, p.UserID, q, opts, logger)

	em := emitter.New(p.SessionID, p.UserID, policy, seq, q, tr, logger)

	var submitter violation.Submitter
	if p.ReportURL != "" {
		submitter = violation.NewReporter(p.ReportURL, p.SessionID, p.UserID, logger)
	}
	ctrl := violation.NewController(em, submitter, p.CoolingWindow, logger)

	mon := capture.NewMonitor(em, p.Requirement, p.Handle, p.PollInterval, logger)

	tracker := metrics.NewTracker()
	tr.OnStateChange(tracker.ObserveState)

	return &Session{
		params:     p,
		logger:     logger,
		seq:        seq,
		policy:     policy,
		queue:      q,
		emitter:    em,
		transport:  tr,
		monitor:    mon,
		controller: ctrl,
		det:        p.Detector,
		tracker:    tracker,
		auditLog:   audit.NewSlogLogger(logger),
	}
}

// Start validates the required devices, connects the transport and begins
// device monitoring. Device unavailability is fatal and reported distinctly
// per device.
func (s *Session) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return domain.ErrSessionAlreadyStarted
	}

	if err := s.validateDevices(); err != nil {
		return err
	}

	s.started = true
	s.seq.Reset()
	s.policy.Reset()

	s.emitter.Emit(domain.EventSessionStart, map[string]any{
		"camera_required":     s.params.Requirement.Camera,
		"microphone_required": s.params.Requirement.Microphone,
	})

	s.transport.Connect()
	s.monitor.Start()

	_ = s.auditLog.Log(context.Background(), audit.Event{
		SessionID: s.params.SessionID,
		UserID:    s.params.UserID,
		EventType: audit.EventSessionStarted,
		Success:   true,
	})

	s.logger.Info("session started", "user_id", s.params.UserID)
	return nil
}

// validateDevices surfaces each missing required device as its own error so
// the caller can present an actionable message per device.
func (s *Session) validateDevices() error {
	req := s.params.Requirement
	if !req.Any() {
		return nil
	}

	var errs []error
	if req.Camera {
		if err := capture.ValidateRequired(s.params.Handle, domain.DeviceRequirement{Camera: true}); err != nil {
			errs = append(errs, err)
		}
	}
	if req.Microphone {
		if err := capture.ValidateRequired(s.params.Handle, domain.DeviceRequirement{Microphone: true}); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Stop ends the session: monitoring halts, timers are cancelled and the
// connection closes for good. The capture handle is left untouched; its
// release belongs to the caller.
func (s *Session) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}
	s.started = false

	s.emitter.Emit(domain.EventSessionEnd, nil)

	s.monitor.Stop()
	s.controller.Close()
	s.transport.Disconnect()

	_ = s.auditLog.Log(context.Background(), audit.Event{
		SessionID: s.params.SessionID,
		UserID:    s.params.UserID,
		EventType: audit.EventSessionStopped,
		Success:   true,
	})

	s.logger.Info("session stopped")
}

// Emit reports an integrity event on behalf of a UI producer (tab blur,
// fullscreen exit and the like).
func (s *Session) Emit(eventType domain.EventType, payload map[string]any) {
	s.emitter.Emit(eventType, payload)
}

// ProcessFrame runs one detection pass over a ready video frame, called by
// whatever external driver owns the capture cadence. The cooling period is
// the gate: while it is active no detection runs and no violation can be
// recorded. A not-ready detector degrades gracefully to an error the driver
// may ignore.
func (s *Session) ProcessFrame(ctx context.Context, frame []byte) ([]domain.ViolationAlert, error) {
	s.mu.Lock()
	started := s.started
	s.mu.Unlock()
	if !started {
		return nil, domain.ErrSessionNotStarted
	}

	if s.controller.InCoolingPeriod() {
		return nil, nil
	}

	if s.det == nil {
		return nil, domain.ErrDetectorNotReady
	}
	det, err := s.det.Get()
	if err != nil {
		return nil, err
	}

	sig, err := det.Detect(ctx, frame)
	if err != nil {
		return nil, err
	}

	var alerts []domain.ViolationAlert
	for _, vtype := range detector.Violations(sig) {
		alerts = append(alerts, s.controller.RecordViolation(vtype, violationMessage(vtype), frame))
	}
	return alerts, nil
}

func violationMessage(vtype domain.ViolationType) string {
	switch vtype {
	case domain.ViolationNoFace:
		return "No face visible in the camera frame"
	case domain.ViolationMultipleFaces:
		return "More than one face visible in the camera frame"
	case domain.ViolationObjectDetected:
		return "Prohibited object detected in the camera frame"
	case domain.ViolationLookingAway:
		return "Candidate is looking away from the screen"
	default:
		return "Integrity violation detected"
	}
}

// ConnectionState returns the transport's current state.
func (s *Session) ConnectionState() domain.ConnectionState {
	return s.transport.State()
}

// Transport exposes the transport for observer registration.
func (s *Session) Transport() *transport.Transport {
	return s.transport
}

// Controller exposes the violation controller.
func (s *Session) Controller() *violation.Controller {
	return s.controller
}

// Monitor exposes the device status monitor.
func (s *Session) Monitor() *capture.Monitor {
	return s.monitor
}

// EventsEmitted returns how many events have been assigned a sequence number
// so far.
func (s *Session) EventsEmitted() int64 {
	return s.seq.Current()
}

// Metrics returns the session's reliability counters.
func (s *Session) Metrics() metrics.Snapshot {
	return s.tracker.Snapshot()
}

// QueueDepth returns the number of events awaiting batch flush.
func (s *Session) QueueDepth() int {
	return s.queue.Size()
}

// ID returns the session identifier.
func (s *Session) ID() string {
	return s.params.SessionID
}

// UserID returns the candidate identifier.
func (s *Session) UserID() string {
	return s.params.UserID
}
