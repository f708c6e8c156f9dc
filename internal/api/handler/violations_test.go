package handler

import (
	"encoding/json"
	"io"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"

	"github.com/examshield/proctor-agent/internal/domain"
)

func TestViolationsHandler_List(t *testing.T) {
	sess := testSession()
	defer sess.Controller().Close()

	sess.Controller().RecordViolation(domain.ViolationNoFace, "no face", nil)
	sess.Controller().RecordViolation(domain.ViolationObjectDetected, "phone", []byte("jpeg-bytes"))

	app := fiber.New()
	handler := NewViolationsHandler(sess, testLogger())
	app.Get("/v1/violations", handler.List)

	req := httptest.NewRequest("GET", "/v1/violations", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("Failed to test: %v", err)
	}

	if resp.StatusCode != 200 {
		t.Errorf("Status = %d, want 200", resp.StatusCode)
	}

	body, _ := io.ReadAll(resp.Body)
	var result ViolationsResponse
	if err := json.Unmarshal(body, &result); err != nil {
		t.Fatalf("Failed to parse response: %v", err)
	}

	if result.Total != 2 {
		t.Fatalf("Total = %d, want 2", result.Total)
	}
	if result.Alerts[0].Type != domain.ViolationNoFace {
		t.Errorf("Alerts[0].Type = %s, want no_face", result.Alerts[0].Type)
	}
	if result.Alerts[0].HasImage {
		t.Error("Alerts[0].HasImage should be false")
	}
	if !result.Alerts[1].HasImage {
		t.Error("Alerts[1].HasImage should be true")
	}
	if result.Alerts[1].ID == "" {
		t.Error("Alert ID should not be empty")
	}
}

func TestViolationsHandler_ListEmpty(t *testing.T) {
	app := fiber.New()
	handler := NewViolationsHandler(testSession(), testLogger())
	app.Get("/v1/violations", handler.List)

	req := httptest.NewRequest("GET", "/v1/violations", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("Failed to test: %v", err)
	}

	body, _ := io.ReadAll(resp.Body)
	var result ViolationsResponse
	if err := json.Unmarshal(body, &result); err != nil {
		t.Fatalf("Failed to parse response: %v", err)
	}

	if result.Total != 0 {
		t.Errorf("Total = %d, want 0", result.Total)
	}
	if result.Alerts == nil {
		t.Error("Alerts should be an empty list, not null")
	}
}
