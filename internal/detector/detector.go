package detector

import (
	"context"

	"github.com/examshield/proctor-agent/internal/domain"
)

// Signal is what a detector produces for one video frame: how many faces it
// saw, whether the candidate is looking away from the screen, and any
// suspicious objects it recognized.
type Signal struct {
	FaceCount   int      `json:"face_count"`
	LookingAway bool     `json:"looking_away"`
	Objects     []string `json:"objects,omitempty"`
}

// Detector is the capability the agent consumes: given a ready video frame,
// produce a face/pose/object signal. The agent never drives the detector on
// its own cadence; an external driver does, gated by the cooling-period
// controller.
type Detector interface {
	Detect(ctx context.Context, frame []byte) (Signal, error)
}

// Violations maps a signal to the violation types it qualifies for, in a
// fixed priority order.
func Violations(sig Signal) []domain.ViolationType {
	var out []domain.ViolationType

	switch {
	case sig.FaceCount == 0:
		out = append(out, domain.ViolationNoFace)
	case sig.FaceCount > 1:
		out = append(out, domain.ViolationMultipleFaces)
	}

	if sig.LookingAway && sig.FaceCount == 1 {
		out = append(out, domain.ViolationLookingAway)
	}

	if len(sig.Objects) > 0 {
		out = append(out, domain.ViolationObjectDetected)
	}

	return out
}
