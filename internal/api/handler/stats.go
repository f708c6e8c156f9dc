package handler

import (
	"log/slog"

	"github.com/gofiber/fiber/v2"

	"github.com/examshield/proctor-agent/internal/metrics"
	"github.com/examshield/proctor-agent/internal/session"
)

// StatsHandler exposes reliability counters for diagnostics.
type StatsHandler struct {
	session *session.Session
	logger  *slog.Logger
}

func NewStatsHandler(s *session.Session, logger *slog.Logger) *StatsHandler {
	return &StatsHandler{session: s, logger: logger}
}

type StatsResponse struct {
	EventsEmitted int64            `json:"events_emitted"`
	QueueDepth    int              `json:"queue_depth"`
	Violations    int              `json:"violations"`
	Transport     metrics.Snapshot `json:"transport"`
}

// GetStats returns emission, queue and transport counters.
func (h *StatsHandler) GetStats(c *fiber.Ctx) error {
	return c.JSON(StatsResponse{
		EventsEmitted: h.session.EventsEmitted(),
		QueueDepth:    h.session.QueueDepth(),
		Violations:    len(h.session.Controller().Alerts()),
		Transport:     h.session.Metrics(),
	})
}
