package capture

import (
	"sync"

	"github.com/examshield/proctor-agent/internal/domain"
)

// Track is the per-track status of a capture device, mirroring what a media
// stream track exposes: its kind, whether it is still live, and whether it is
// enabled.
type Track struct {
	Kind    domain.DeviceKind
	Live    bool
	Enabled bool
}

// On reports whether the track counts as an operating device.
func (t Track) On() bool {
	return t.Live && t.Enabled
}

// Handle is the capture-device handle the agent consumes. How the handle was
// acquired is outside the agent's scope; release is a separate lifecycle
// operation owned by the caller and is never performed by the agent.
type Handle interface {
	Tracks() []Track
}

// StaticHandle is a Handle backed by a mutable track list. The acquisition
// layer updates it as tracks appear, end or get toggled.
type StaticHandle struct {
	mu     sync.RWMutex
	tracks []Track
}

func NewStaticHandle(tracks ...Track) *StaticHandle {
	return &StaticHandle{tracks: tracks}
}

func (h *StaticHandle) Tracks() []Track {
	h.mu.RLock()
	defer h.mu.RUnlock()

	out := make([]Track, len(h.tracks))
	copy(out, h.tracks)
	return out
}

// SetTracks replaces the track list.
func (h *StaticHandle) SetTracks(tracks ...Track) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.tracks = tracks
}

// ValidateRequired checks that every required device has a live, enabled
// track. Unavailability is reported distinctly per device; optional devices
// never produce an error.
func ValidateRequired(handle Handle, req domain.DeviceRequirement) error {
	if !req.Any() {
		return nil
	}
	if handle == nil {
		if req.Camera {
			return domain.ErrCameraUnavailable
		}
		return domain.ErrMicrophoneUnavailable
	}

	tracks := handle.Tracks()
	if req.Camera && !deviceOn(tracks, domain.DeviceCamera) {
		return domain.ErrCameraUnavailable
	}
	if req.Microphone && !deviceOn(tracks, domain.DeviceMicrophone) {
		return domain.ErrMicrophoneUnavailable
	}
	return nil
}

func deviceOn(tracks []Track, kind domain.DeviceKind) bool {
	for _, tr := range tracks {
		if tr.Kind == kind && tr.On() {
			return true
		}
	}
	return false
}
