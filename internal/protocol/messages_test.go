package protocol

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/examshield/proctor-agent/internal/domain"
)

func TestEventMessageWireShape(t *testing.T) {
	ev := domain.NewProctorEvent("exam-1", "candidate-1", domain.EventTabBlur, map[string]any{"reason": "alt-tab"}, 7)

	data, err := json.Marshal(NewEventMessage(ev))
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))

	assert.Equal(t, "EVENT", decoded["type"])
	event := decoded["event"].(map[string]any)
	assert.Equal(t, "tab_blur", event["type"])
	assert.Equal(t, float64(7), event["sequence"])
	assert.Equal(t, "exam-1", event["session_id"])
}

func TestBatchEventsMessageWireShape(t *testing.T) {
	events := []*domain.ProctorEvent{
		domain.NewProctorEvent("exam-1", "candidate-1", domain.EventTabBlur, nil, 1),
		domain.NewProctorEvent("exam-1", "candidate-1", domain.EventTabFocus, nil, 2),
	}

	data, err := json.Marshal(NewBatchEventsMessage(events))
	require.NoError(t, err)

	var decoded BatchEventsMessage
	require.NoError(t, json.Unmarshal(data, &decoded))

	assert.Equal(t, TypeBatchEvents, decoded.Type)
	require.Len(t, decoded.Events, 2)
	assert.Equal(t, int64(1), decoded.Events[0].Sequence)
	assert.Equal(t, int64(2), decoded.Events[1].Sequence)
}

func TestRecognized(t *testing.T) {
	assert.True(t, Recognized(TypeViolationWarning))
	assert.True(t, Recognized(TypeViolationCritical))
	assert.True(t, Recognized(TypeExamTerminated))

	assert.False(t, Recognized("EVENT"))
	assert.False(t, Recognized("future_message_kind"))
	assert.False(t, Recognized(""))
}

func TestParseServerMessage(t *testing.T) {
	msg, err := ParseServerMessage([]byte(`{"type":"violation_critical","message":"leave the tab again and the exam ends"}`))
	require.NoError(t, err)
	assert.Equal(t, TypeViolationCritical, msg.Type)
	assert.Equal(t, "leave the tab again and the exam ends", msg.Message)

	// Unknown types still decode; the caller decides what to do with them.
	msg, err = ParseServerMessage([]byte(`{"type":"something_new","extra":42}`))
	require.NoError(t, err)
	assert.Equal(t, "something_new", msg.Type)

	_, err = ParseServerMessage([]byte(`not json`))
	assert.Error(t, err)
}
