package middleware

import (
	"log/slog"

	"github.com/gofiber/fiber/v2"
)

// Recover keeps a handler panic from taking the whole agent down: the
// session components (queue, transport, monitor) must keep running even if
// the read-only API surface misbehaves.
func Recover(logger *slog.Logger) fiber.Handler {
	logger = logger.With(slog.String("component", "local-api"))

	return func(c *fiber.Ctx) error {
		defer func() {
			if r := recover(); r != nil {
				logger.Error("panic recovered",
					slog.Any("panic", r),
					slog.String("path", c.Path()),
					slog.String("method", c.Method()),
					slog.String("request_id", requestID(c)),
				)

				_ = c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
					"error": fiber.Map{
						"code":    "INTERNAL_ERROR",
						"message": "An unexpected error occurred",
					},
				})
			}
		}()
		return c.Next()
	}
}
