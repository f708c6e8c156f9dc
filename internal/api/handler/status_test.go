package handler

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/examshield/proctor-agent/internal/capture"
	"github.com/examshield/proctor-agent/internal/domain"
	"github.com/examshield/proctor-agent/internal/session"
	"github.com/examshield/proctor-agent/internal/transport"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testSession() *session.Session {
	return session.New(session.Params{
		SessionID: "exam-1",
		UserID:    "candidate-1",
		Handle: capture.NewStaticHandle(
			capture.Track{Kind: domain.DeviceCamera, Live: true, Enabled: true},
		),
		Endpoint: "ws://127.0.0.1:1/ws",
		TransportOpts: transport.Options{
			InitialReconnectDelay: time.Hour,
			MaxReconnectDelay:     time.Hour,
			Multiplier:            1.5,
		},
		Logger: testLogger(),
	})
}

func TestStatusHandler_GetStatus(t *testing.T) {
	app := fiber.New()
	handler := NewStatusHandler(testSession(), testLogger())
	app.Get("/v1/session/status", handler.GetStatus)

	req := httptest.NewRequest("GET", "/v1/session/status", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("Failed to test: %v", err)
	}

	if resp.StatusCode != 200 {
		t.Errorf("Status = %d, want 200", resp.StatusCode)
	}

	body, _ := io.ReadAll(resp.Body)
	var result StatusResponse
	if err := json.Unmarshal(body, &result); err != nil {
		t.Fatalf("Failed to parse response: %v", err)
	}

	if result.SessionID != "exam-1" {
		t.Errorf("SessionID = %s, want exam-1", result.SessionID)
	}
	if result.UserID != "candidate-1" {
		t.Errorf("UserID = %s, want candidate-1", result.UserID)
	}
	if result.ConnectionState != domain.StateDisconnected {
		t.Errorf("ConnectionState = %s, want disconnected", result.ConnectionState)
	}
	if result.QueueDepth != 0 {
		t.Errorf("QueueDepth = %d, want 0", result.QueueDepth)
	}
	if result.CoolingPeriod.Active {
		t.Error("CoolingPeriod.Active should be false for a fresh session")
	}
}
