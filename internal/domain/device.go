package domain

// DeviceKind names a capture device class.
type DeviceKind string

const (
	DeviceCamera     DeviceKind = "camera"
	DeviceMicrophone DeviceKind = "microphone"
)

// DeviceRequirement declares which capture devices are mandatory for the
// current session. Devices not marked required are neither monitored nor
// reported on.
type DeviceRequirement struct {
	Camera     bool `json:"camera"`
	Microphone bool `json:"microphone"`
}

// Any reports whether at least one device is required.
func (r DeviceRequirement) Any() bool {
	return r.Camera || r.Microphone
}

// Requires reports whether the given device kind is mandatory.
func (r DeviceRequirement) Requires(kind DeviceKind) bool {
	switch kind {
	case DeviceCamera:
		return r.Camera
	case DeviceMicrophone:
		return r.Microphone
	default:
		return false
	}
}
