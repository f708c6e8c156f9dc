package domain

import "time"

// ViolationType identifies the detector finding behind a violation alert.
type ViolationType string

const (
	ViolationNoFace         ViolationType = "no_face"
	ViolationMultipleFaces  ViolationType = "multiple_faces"
	ViolationObjectDetected ViolationType = "object_detected"
	ViolationLookingAway    ViolationType = "looking_away"
)

// ViolationAlert records one qualifying detector signal. Alerts accumulate in
// an append-only list for the lifetime of the session; they are consumed by
// the UI and by the backend-persistence call.
type ViolationAlert struct {
	ID        string        `json:"id"`
	Type      ViolationType `json:"type"`
	Message   string        `json:"message"`
	Timestamp int64         `json:"timestamp"`
	// Image carries the captured frame, already encoded, when one was
	// available at detection time.
	Image []byte `json:"image,omitempty"`
}

// CoolingPeriodStatus describes the suppression window after a violation.
// A new violation resets the window rather than extending it.
type CoolingPeriodStatus struct {
	Active           bool  `json:"active"`
	RemainingSeconds int   `json:"remaining_seconds"`
	StartTime        int64 `json:"start_time,omitempty"`
}

// NowMilli is the timestamp convention used across the agent (epoch ms).
func NowMilli() int64 {
	return time.Now().UnixMilli()
}
