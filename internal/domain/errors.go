package domain

import (
	"fmt"
)

type AppError struct {
	Code       string `json:"code"`
	Message    string `json:"message"`
	StatusCode int    `json:"-"`
	Err        error  `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// Is matches any AppError carrying the same code, so copies produced by
// WithError compare equal to their sentinel under errors.Is.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	return ok && t.Code == e.Code
}

func (e *AppError) WithError(err error) *AppError {
	return &AppError{
		Code:       e.Code,
		Message:    e.Message,
		StatusCode: e.StatusCode,
		Err:        err,
	}
}

// Pre-defined errors
var (
	ErrInternal = &AppError{
		Code:       "INTERNAL_ERROR",
		Message:    "An unexpected error occurred",
		StatusCode: 500,
	}

	ErrBadRequest = &AppError{
		Code:       "BAD_REQUEST",
		Message:    "Invalid request",
		StatusCode: 400,
	}

	ErrNotFound = &AppError{
		Code:       "NOT_FOUND",
		Message:    "Resource not found",
		StatusCode: 404,
	}

	// Required-device unavailability is fatal to session start and is
	// surfaced distinctly per device so the caller can present an
	// actionable message.
	ErrCameraUnavailable = &AppError{
		Code:       "CAMERA_UNAVAILABLE",
		Message:    "Required camera is not available",
		StatusCode: 412,
	}

	ErrMicrophoneUnavailable = &AppError{
		Code:       "MICROPHONE_UNAVAILABLE",
		Message:    "Required microphone is not available",
		StatusCode: 412,
	}

	ErrSessionNotStarted = &AppError{
		Code:       "SESSION_NOT_STARTED",
		Message:    "Session has not been started",
		StatusCode: 409,
	}

	ErrSessionAlreadyStarted = &AppError{
		Code:       "SESSION_ALREADY_STARTED",
		Message:    "Session is already running",
		StatusCode: 409,
	}

	ErrDetectorNotReady = &AppError{
		Code:       "DETECTOR_NOT_READY",
		Message:    "Detector is not initialized",
		StatusCode: 503,
	}

	ErrInvalidFrame = &AppError{
		Code:       "INVALID_FRAME",
		Message:    "Invalid or corrupted video frame",
		StatusCode: 422,
	}
)
