package capture

import (
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/examshield/proctor-agent/internal/domain"
)

type recordedEmit struct {
	eventType domain.EventType
	payload   map[string]any
}

type fakeSink struct {
	emits []recordedEmit
}

func (s *fakeSink) Emit(eventType domain.EventType, payload map[string]any) *domain.ProctorEvent {
	s.emits = append(s.emits, recordedEmit{eventType: eventType, payload: payload})
	return nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func cameraOnHandle() *StaticHandle {
	return NewStaticHandle(Track{Kind: domain.DeviceCamera, Live: true, Enabled: true})
}

func TestFirstObservationEmitsOnce(t *testing.T) {
	sink := &fakeSink{}
	m := NewMonitor(sink, domain.DeviceRequirement{Camera: true}, cameraOnHandle(), 0, testLogger())

	m.pollOnce()
	m.pollOnce()
	m.pollOnce()

	require.Len(t, sink.emits, 1, "a steadily-on device emits exactly one event")
	assert.Equal(t, domain.EventCameraStatus, sink.emits[0].eventType)
	assert.Equal(t, "on", sink.emits[0].payload["status"])
	assert.Equal(t, "camera", sink.emits[0].payload["device"])
}

func TestEdgeTransitionsEmit(t *testing.T) {
	sink := &fakeSink{}
	handle := cameraOnHandle()
	m := NewMonitor(sink, domain.DeviceRequirement{Camera: true}, handle, 0, testLogger())

	m.pollOnce() // on
	handle.SetTracks(Track{Kind: domain.DeviceCamera, Live: true, Enabled: false})
	m.pollOnce() // off
	m.pollOnce() // still off, no event
	handle.SetTracks(Track{Kind: domain.DeviceCamera, Live: true, Enabled: true})
	m.pollOnce() // back on

	require.Len(t, sink.emits, 3)
	assert.Equal(t, "on", sink.emits[0].payload["status"])
	assert.Equal(t, "off", sink.emits[1].payload["status"])
	assert.Equal(t, "on", sink.emits[2].payload["status"])
}

func TestOptionalDeviceNeverEmits(t *testing.T) {
	sink := &fakeSink{}
	handle := NewStaticHandle(
		Track{Kind: domain.DeviceCamera, Live: true, Enabled: true},
		Track{Kind: domain.DeviceMicrophone, Live: true, Enabled: true},
	)
	m := NewMonitor(sink, domain.DeviceRequirement{Camera: true}, handle, 0, testLogger())

	m.pollOnce()
	handle.SetTracks(Track{Kind: domain.DeviceCamera, Live: true, Enabled: true})
	m.pollOnce()

	for _, e := range sink.emits {
		assert.NotEqual(t, domain.EventMicrophoneStatus, e.eventType,
			"microphone is not required and must not be reported")
	}
}

func TestMissingHandleReportsStreamLost(t *testing.T) {
	sink := &fakeSink{}
	m := NewMonitor(sink, domain.DeviceRequirement{Camera: true}, nil, 0, testLogger())

	m.pollOnce()

	require.Len(t, sink.emits, 1)
	assert.Equal(t, domain.EventStreamLost, sink.emits[0].eventType)
	assert.Equal(t, "critical", sink.emits[0].payload["severity"])
}

func TestMissingHandleWithNoRequirementIsSilent(t *testing.T) {
	sink := &fakeSink{}
	m := NewMonitor(sink, domain.DeviceRequirement{}, nil, 0, testLogger())

	m.pollOnce()

	assert.Empty(t, sink.emits)
}

func TestSetHandleRecoversMonitoring(t *testing.T) {
	sink := &fakeSink{}
	m := NewMonitor(sink, domain.DeviceRequirement{Camera: true}, nil, 0, testLogger())

	m.pollOnce()
	require.Len(t, sink.emits, 1)
	assert.Equal(t, domain.EventStreamLost, sink.emits[0].eventType)

	m.SetHandle(cameraOnHandle())
	m.pollOnce()

	require.Len(t, sink.emits, 2)
	assert.Equal(t, domain.EventCameraStatus, sink.emits[1].eventType)
	assert.Equal(t, "on", sink.emits[1].payload["status"])
}

func TestStopIsIdempotent(t *testing.T) {
	sink := &fakeSink{}
	m := NewMonitor(sink, domain.DeviceRequirement{Camera: true}, cameraOnHandle(), 0, testLogger())

	m.Start()
	m.Start() // no-op
	m.Stop()
	m.Stop() // no-op
}
