package capture

import (
	"log/slog"
	"sync"
	"time"

	"github.com/examshield/proctor-agent/internal/domain"
)

// DefaultPollInterval is the reference device polling cadence.
const DefaultPollInterval = 1500 * time.Millisecond

// EventSink is the emitter capability the monitor needs.
type EventSink interface {
	Emit(eventType domain.EventType, payload map[string]any) *domain.ProctorEvent
}

// Monitor polls a capture handle and emits edge-triggered status events for
// the devices declared required. A device that stays continuously on produces
// exactly one event, at the first observation; later events fire only on a
// change of the observed value.
type Monitor struct {
	sink     EventSink
	req      domain.DeviceRequirement
	interval time.Duration
	logger   *slog.Logger

	mu       sync.Mutex
	handle   Handle
	observed map[domain.DeviceKind]bool
	stopCh   chan struct{}
	running  bool
}

func NewMonitor(sink EventSink, req domain.DeviceRequirement, handle Handle, interval time.Duration, logger *slog.Logger) *Monitor {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	return &Monitor{
		sink:     sink,
		req:      req,
		interval: interval,
		logger:   logger.With("component", "device-monitor"),
		handle:   handle,
		observed: make(map[domain.DeviceKind]bool),
	}
}

// SetHandle swaps the capture handle, when the acquisition layer loses and
// reacquires the stream.
func (m *Monitor) SetHandle(handle Handle) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.handle = handle
}

// Start begins polling. It is a no-op if the monitor is already running.
func (m *Monitor) Start() {
	m.mu.Lock()
	if m.running {
		m.mu.Unlock()
		return
	}
	m.running = true
	m.stopCh = make(chan struct{})
	stop := m.stopCh
	m.mu.Unlock()

	m.logger.Info("device monitor started",
		"camera_required", m.req.Camera,
		"microphone_required", m.req.Microphone,
		"interval", m.interval,
	)

	go func() {
		ticker := time.NewTicker(m.interval)
		defer ticker.Stop()

		for {
			select {
			case <-stop:
				return
			case <-ticker.C:
				m.pollOnce()
			}
		}
	}()
}

// Stop halts polling only. The capture handle stays untouched: releasing it
// is a lifecycle operation owned by the caller.
func (m *Monitor) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.running {
		return
	}
	m.running = false
	close(m.stopCh)
	m.stopCh = nil
	m.logger.Info("device monitor stopped")
}

// pollOnce computes the current status of each required device and emits
// edge-triggered events. An absent handle with at least one required device
// is reported as a single stream-lost critical event; the throttle policy
// keeps it from repeating every poll.
func (m *Monitor) pollOnce() {
	m.mu.Lock()
	handle := m.handle
	m.mu.Unlock()

	if handle == nil {
		if m.req.Any() {
			m.sink.Emit(domain.EventStreamLost, map[string]any{
				"severity": "critical",
				"message":  "capture stream is not available",
			})
		}
		return
	}

	tracks := handle.Tracks()

	if m.req.Camera {
		m.checkDevice(domain.DeviceCamera, domain.EventCameraStatus, tracks)
	}
	if m.req.Microphone {
		m.checkDevice(domain.DeviceMicrophone, domain.EventMicrophoneStatus, tracks)
	}
}

func (m *Monitor) checkDevice(kind domain.DeviceKind, eventType domain.EventType, tracks []Track) {
	on := deviceOn(tracks, kind)

	m.mu.Lock()
	prev, seen := m.observed[kind]
	m.observed[kind] = on
	m.mu.Unlock()

	// First observation counts as a transition.
	if seen && prev == on {
		return
	}

	status := "off"
	if on {
		status = "on"
	}

	m.sink.Emit(eventType, map[string]any{
		"device": string(kind),
		"status": status,
	})

	m.logger.Info("device status changed", "device", kind, "status", status)
}
