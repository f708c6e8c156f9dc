package handler

import (
	"log/slog"

	"github.com/gofiber/fiber/v2"

	"github.com/examshield/proctor-agent/internal/domain"
	"github.com/examshield/proctor-agent/internal/session"
)

// ViolationsHandler serves the session's alert history to the UI layer.
type ViolationsHandler struct {
	session *session.Session
	logger  *slog.Logger
}

func NewViolationsHandler(s *session.Session, logger *slog.Logger) *ViolationsHandler {
	return &ViolationsHandler{session: s, logger: logger}
}

type ViolationsResponse struct {
	Total  int                     `json:"total"`
	Alerts []ViolationAlertSummary `json:"alerts"`
}

// ViolationAlertSummary is the alert without its frame bytes; frames can be
// megabytes and the UI list view does not need them.
type ViolationAlertSummary struct {
	ID        string               `json:"id"`
	Type      domain.ViolationType `json:"type"`
	Message   string               `json:"message"`
	Timestamp int64                `json:"timestamp"`
	HasImage  bool                 `json:"has_image"`
}

// List returns the append-only alert history in recording order.
func (h *ViolationsHandler) List(c *fiber.Ctx) error {
	alerts := h.session.Controller().Alerts()

	out := make([]ViolationAlertSummary, 0, len(alerts))
	for _, a := range alerts {
		out = append(out, ViolationAlertSummary{
			ID:        a.ID,
			Type:      a.Type,
			Message:   a.Message,
			Timestamp: a.Timestamp,
			HasImage:  len(a.Image) > 0,
		})
	}

	return c.JSON(ViolationsResponse{Total: len(out), Alerts: out})
}
