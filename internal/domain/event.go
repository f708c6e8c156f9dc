package domain

import (
	"time"

	"github.com/google/uuid"
)

// EventType identifies the kind of integrity event reported to the monitor backend.
type EventType string

const (
	EventCameraStatus     EventType = "camera_status"
	EventMicrophoneStatus EventType = "microphone_status"
	EventStreamLost       EventType = "stream_lost"
	EventTabBlur          EventType = "tab_blur"
	EventTabFocus         EventType = "tab_focus"
	EventFullscreenExit   EventType = "fullscreen_exit"
	EventViolation        EventType = "violation"
	EventSessionStart     EventType = "session_start"
	EventSessionEnd       EventType = "session_end"
)

// ProctorEvent is the canonical unit of integrity telemetry sent from the
// agent to the monitor backend.
//
// Sequence is strictly increasing per session starting at 1. EventID is
// globally unique. Timestamp is fixed at creation and never rewritten.
// After creation the event is shared read-only between the queue and the
// transport.
type ProctorEvent struct {
	EventID   uuid.UUID      `json:"event_id"`
	SessionID string         `json:"session_id"`
	UserID    string         `json:"user_id"`
	Type      EventType      `json:"type"`
	Payload   map[string]any `json:"payload,omitempty"`
	Timestamp int64          `json:"timestamp"`
	Sequence  int64          `json:"sequence"`
}

// NewProctorEvent builds an event stamped with the current wall clock.
func NewProctorEvent(sessionID, userID string, eventType EventType, payload map[string]any, sequence int64) *ProctorEvent {
	return &ProctorEvent{
		EventID:   uuid.New(),
		SessionID: sessionID,
		UserID:    userID,
		Type:      eventType,
		Payload:   payload,
		Timestamp: time.Now().UnixMilli(),
		Sequence:  sequence,
	}
}
