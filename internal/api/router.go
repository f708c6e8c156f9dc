package api

import (
	"context"
	"log/slog"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/requestid"

	swagger "github.com/go-swagno/swagno-fiber/swagger"

	"github.com/examshield/proctor-agent/internal/api/docs"
	"github.com/examshield/proctor-agent/internal/api/handler"
	"github.com/examshield/proctor-agent/internal/api/middleware"
	"github.com/examshield/proctor-agent/internal/session"
)

// Router is the local HTTP surface the proctoring UI polls. It only reads
// session state; all mutation flows through the session components.
type Router struct {
	app     *fiber.App
	logger  *slog.Logger
	session *session.Session
}

func NewRouter(logger *slog.Logger, s *session.Session) *Router {
	app := fiber.New(fiber.Config{
		ErrorHandler: middleware.ErrorHandler(logger),
		AppName:      "Proctor Agent",
	})

	return &Router{
		app:     app,
		logger:  logger,
		session: s,
	}
}

func (r *Router) Setup() {
	// Global middlewares
	r.app.Use(requestid.New())
	r.app.Use(middleware.Recover(r.logger))
	r.app.Use(middleware.Logger(r.logger))
	r.app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,OPTIONS",
		AllowHeaders: "Origin,Content-Type,Accept",
	}))

	// Swagger documentation
	sw := docs.NewSwagger()
	swagger.SwaggerHandler(r.app, sw.MustToJson())

	// Health check
	healthHandler := handler.NewHealthHandler()
	r.app.Get("/health", healthHandler.Health)

	v1 := r.app.Group("/v1")

	statusHandler := handler.NewStatusHandler(r.session, r.logger)
	v1.Get("/session/status", statusHandler.GetStatus)

	violationsHandler := handler.NewViolationsHandler(r.session, r.logger)
	v1.Get("/violations", violationsHandler.List)

	statsHandler := handler.NewStatsHandler(r.session, r.logger)
	v1.Get("/session/stats", statsHandler.GetStats)
}

func (r *Router) Listen(addr string) error {
	return r.app.Listen(addr)
}

func (r *Router) Shutdown() error {
	return r.app.Shutdown()
}

// ShutdownWithContext shuts the server down, aborting when ctx expires.
func (r *Router) ShutdownWithContext(ctx context.Context) error {
	return r.app.ShutdownWithContext(ctx)
}

// App exposes the fiber app for tests.
func (r *Router) App() *fiber.App {
	return r.app
}
