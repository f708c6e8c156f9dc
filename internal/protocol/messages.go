package protocol

import (
	"encoding/json"

	"github.com/examshield/proctor-agent/internal/domain"
)

// Message types, client -> server
const (
	TypeEvent       = "EVENT"
	TypeBatchEvents = "BATCH_EVENTS"
)

// Message types, server -> client
const (
	TypeViolationWarning  = "violation_warning"
	TypeViolationCritical = "violation_critical"
	TypeExamTerminated    = "exam_terminated"
)

// Envelope is used for initial JSON decode to determine message type
type Envelope struct {
	Type string `json:"type"`
}

// EventMessage carries a single live event.
type EventMessage struct {
	Type  string               `json:"type"`
	Event *domain.ProctorEvent `json:"event"`
}

// BatchEventsMessage carries the bulk replay of queued events sent on
// (re)connect. It is a distinct message kind so the server can distinguish
// replay from live events.
type BatchEventsMessage struct {
	Type   string                 `json:"type"`
	Events []*domain.ProctorEvent `json:"events"`
}

// ServerMessage is the recognized shape of inbound messages. Unrecognized
// payloads are passed through to observers unchanged as raw JSON.
type ServerMessage struct {
	Type    string `json:"type"`
	Message string `json:"message,omitempty"`
}

// NewEventMessage wraps a single event for the wire.
func NewEventMessage(ev *domain.ProctorEvent) EventMessage {
	return EventMessage{Type: TypeEvent, Event: ev}
}

// NewBatchEventsMessage wraps a drained queue snapshot for the wire.
func NewBatchEventsMessage(events []*domain.ProctorEvent) BatchEventsMessage {
	return BatchEventsMessage{Type: TypeBatchEvents, Events: events}
}

// Recognized reports whether the inbound type is one the agent understands.
func Recognized(msgType string) bool {
	switch msgType {
	case TypeViolationWarning, TypeViolationCritical, TypeExamTerminated:
		return true
	default:
		return false
	}
}

// ParseServerMessage decodes an inbound payload into its recognized shape.
// The raw payload is retained by the caller for pass-through of unrecognized
// messages.
func ParseServerMessage(data []byte) (ServerMessage, error) {
	var msg ServerMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return ServerMessage{}, err
	}
	return msg, nil
}
