package handler

import (
	"log/slog"

	"github.com/gofiber/fiber/v2"

	"github.com/examshield/proctor-agent/internal/domain"
	"github.com/examshield/proctor-agent/internal/session"
)

// StatusHandler exposes the running session's state for the UI layer.
type StatusHandler struct {
	session *session.Session
	logger  *slog.Logger
}

func NewStatusHandler(s *session.Session, logger *slog.Logger) *StatusHandler {
	return &StatusHandler{session: s, logger: logger}
}

type StatusResponse struct {
	SessionID       string                     `json:"session_id"`
	UserID          string                     `json:"user_id"`
	ConnectionState domain.ConnectionState     `json:"connection_state"`
	QueueDepth      int                        `json:"queue_depth"`
	CoolingPeriod   domain.CoolingPeriodStatus `json:"cooling_period"`
}

// GetStatus returns connection state, queue depth and cooling-period status.
func (h *StatusHandler) GetStatus(c *fiber.Ctx) error {
	return c.JSON(StatusResponse{
		SessionID:       h.session.ID(),
		UserID:          h.session.UserID(),
		ConnectionState: h.session.ConnectionState(),
		QueueDepth:      h.session.QueueDepth(),
		CoolingPeriod:   h.session.Controller().Status(),
	})
}
