package docs

import (
	"github.com/go-swagno/swagno"
	"github.com/go-swagno/swagno/components/endpoint"
	"github.com/go-swagno/swagno/components/http/response"
	"github.com/go-swagno/swagno/components/mime"
)

// StatusResponse documents GET /v1/session/status
type StatusResponse struct {
	SessionID       string              `json:"session_id" example:"exam-42"`
	UserID          string              `json:"user_id" example:"candidate-7"`
	ConnectionState string              `json:"connection_state" example:"connected"`
	QueueDepth      int                 `json:"queue_depth" example:"3"`
	CoolingPeriod   CoolingPeriodStatus `json:"cooling_period"`
}

// CoolingPeriodStatus documents the suppression-window view
type CoolingPeriodStatus struct {
	Active           bool  `json:"active" example:"true"`
	RemainingSeconds int   `json:"remaining_seconds" example:"42"`
	StartTime        int64 `json:"start_time" example:"1756600000000"`
}

// ViolationsResponse documents GET /v1/violations
type ViolationsResponse struct {
	Total  int                     `json:"total" example:"2"`
	Alerts []ViolationAlertSummary `json:"alerts"`
}

// ViolationAlertSummary is one alert without its frame bytes
type ViolationAlertSummary struct {
	ID        string `json:"id" example:"550e8400-e29b-41d4-a716-446655440000"`
	Type      string `json:"type" example:"multiple_faces"`
	Message   string `json:"message" example:"More than one face visible in the camera frame"`
	Timestamp int64  `json:"timestamp" example:"1756600000000"`
	HasImage  bool   `json:"has_image" example:"true"`
}

// StatsResponse documents GET /v1/session/stats
type StatsResponse struct {
	EventsEmitted int64             `json:"events_emitted" example:"128"`
	QueueDepth    int               `json:"queue_depth" example:"3"`
	Violations    int               `json:"violations" example:"2"`
	Transport     TransportSnapshot `json:"transport"`
}

// TransportSnapshot documents the transport reliability counters
type TransportSnapshot struct {
	UptimeSeconds int64 `json:"uptime_seconds" example:"3600"`
	Disconnects   int64 `json:"disconnects" example:"1"`
	Reconnects    int64 `json:"reconnects" example:"1"`
}

// ErrorResponse represents a standard error response
type ErrorResponse struct {
	Code    string `json:"code" example:"SESSION_NOT_STARTED"`
	Message string `json:"message" example:"Session has not been started"`
}

// NewSwagger builds the OpenAPI document for the local agent API.
func NewSwagger() *swagno.Swagger {
	sw := swagno.New(swagno.Config{
		Title:       "Proctor Agent Local API",
		Version:     "v1.0.0",
		Description: "Read-only local surface the proctoring UI polls for session state and violation history",
		Host:        "localhost:7600",
		Path:        "/v1",
	})

	endpoints := []*endpoint.EndPoint{
		// GET /v1/session/status - Session status
		endpoint.New(
			endpoint.GET,
			"/session/status",
			endpoint.WithTags("Session"),
			endpoint.WithSummary("Current session status"),
			endpoint.WithDescription("Returns connection state, pending queue depth and the cooling-period view"),
			endpoint.WithProduce([]mime.MIME{mime.JSON}),
			endpoint.WithSuccessfulReturns([]response.Response{
				response.New(StatusResponse{}, "200", "Status returned"),
			}),
			endpoint.WithErrors([]response.Response{
				response.New(ErrorResponse{Code: "INTERNAL_ERROR", Message: "An unexpected error occurred"}, "500", "Internal Server Error"),
			}),
		),

		// GET /v1/violations - Violation history
		endpoint.New(
			endpoint.GET,
			"/violations",
			endpoint.WithTags("Violations"),
			endpoint.WithSummary("Violation alert history"),
			endpoint.WithDescription("Returns the append-only list of violation alerts recorded this session, in recording order"),
			endpoint.WithProduce([]mime.MIME{mime.JSON}),
			endpoint.WithSuccessfulReturns([]response.Response{
				response.New(ViolationsResponse{}, "200", "History returned"),
			}),
			endpoint.WithErrors([]response.Response{
				response.New(ErrorResponse{Code: "INTERNAL_ERROR", Message: "An unexpected error occurred"}, "500", "Internal Server Error"),
			}),
		),

		// GET /v1/session/stats - Reliability counters
		endpoint.New(
			endpoint.GET,
			"/session/stats",
			endpoint.WithTags("Session"),
			endpoint.WithSummary("Session reliability counters"),
			endpoint.WithDescription("Returns emission, queue and transport counters for diagnostics"),
			endpoint.WithProduce([]mime.MIME{mime.JSON}),
			endpoint.WithSuccessfulReturns([]response.Response{
				response.New(StatsResponse{}, "200", "Counters returned"),
			}),
			endpoint.WithErrors([]response.Response{
				response.New(ErrorResponse{Code: "INTERNAL_ERROR", Message: "An unexpected error occurred"}, "500", "Internal Server Error"),
			}),
		),
	}

	sw.AddEndpoints(endpoints)

	return sw
}
