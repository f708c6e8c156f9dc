package capture

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/examshield/proctor-agent/internal/domain"
)

func TestValidateRequired(t *testing.T) {
	camOn := Track{Kind: domain.DeviceCamera, Live: true, Enabled: true}
	camEnded := Track{Kind: domain.DeviceCamera, Live: false, Enabled: true}
	micOn := Track{Kind: domain.DeviceMicrophone, Live: true, Enabled: true}
	micMuted := Track{Kind: domain.DeviceMicrophone, Live: true, Enabled: false}

	tests := []struct {
		name    string
		handle  Handle
		req     domain.DeviceRequirement
		wantErr error
	}{
		{
			name:    "nothing required always passes",
			handle:  nil,
			req:     domain.DeviceRequirement{},
			wantErr: nil,
		},
		{
			name:    "nil handle with camera required",
			handle:  nil,
			req:     domain.DeviceRequirement{Camera: true},
			wantErr: domain.ErrCameraUnavailable,
		},
		{
			name:    "nil handle with only microphone required",
			handle:  nil,
			req:     domain.DeviceRequirement{Microphone: true},
			wantErr: domain.ErrMicrophoneUnavailable,
		},
		{
			name:    "live enabled camera passes",
			handle:  NewStaticHandle(camOn),
			req:     domain.DeviceRequirement{Camera: true},
			wantErr: nil,
		},
		{
			name:    "ended camera track fails",
			handle:  NewStaticHandle(camEnded),
			req:     domain.DeviceRequirement{Camera: true},
			wantErr: domain.ErrCameraUnavailable,
		},
		{
			name:    "muted microphone fails",
			handle:  NewStaticHandle(camOn, micMuted),
			req:     domain.DeviceRequirement{Camera: true, Microphone: true},
			wantErr: domain.ErrMicrophoneUnavailable,
		},
		{
			name:    "both required both on",
			handle:  NewStaticHandle(camOn, micOn),
			req:     domain.DeviceRequirement{Camera: true, Microphone: true},
			wantErr: nil,
		},
		{
			name:    "optional microphone missing is fine",
			handle:  NewStaticHandle(camOn),
			req:     domain.DeviceRequirement{Camera: true},
			wantErr: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateRequired(tt.handle, tt.req)
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestDistinctErrorsPerDevice(t *testing.T) {
	assert.NotEqual(t, domain.ErrCameraUnavailable.Code, domain.ErrMicrophoneUnavailable.Code,
		"camera and microphone unavailability are reported distinctly")
}

func TestStaticHandleReturnsCopy(t *testing.T) {
	h := NewStaticHandle(Track{Kind: domain.DeviceCamera, Live: true, Enabled: true})

	tracks := h.Tracks()
	tracks[0].Enabled = false

	assert.True(t, h.Tracks()[0].Enabled, "mutating the returned slice must not affect the handle")
}
