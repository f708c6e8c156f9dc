package middleware

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/requestid"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestRecover_PanicReturnsInternalError(t *testing.T) {
	app := fiber.New()
	app.Use(requestid.New())
	app.Use(Recover(testLogger()))
	app.Get("/boom", func(c *fiber.Ctx) error {
		panic("handler blew up")
	})

	req := httptest.NewRequest("GET", "/boom", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("Failed to test: %v", err)
	}

	if resp.StatusCode != 500 {
		t.Errorf("Status = %d, want 500", resp.StatusCode)
	}

	body, _ := io.ReadAll(resp.Body)
	var result struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		t.Fatalf("Failed to parse response: %v", err)
	}
	if result.Error.Code != "INTERNAL_ERROR" {
		t.Errorf("Code = %s, want INTERNAL_ERROR", result.Error.Code)
	}
}

func TestLogger_PassesResponseThrough(t *testing.T) {
	app := fiber.New()
	app.Use(requestid.New())
	app.Use(Logger(testLogger()))
	app.Get("/ok", func(c *fiber.Ctx) error {
		return c.SendString("fine")
	})

	req := httptest.NewRequest("GET", "/ok", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("Failed to test: %v", err)
	}

	if resp.StatusCode != 200 {
		t.Errorf("Status = %d, want 200", resp.StatusCode)
	}

	body, _ := io.ReadAll(resp.Body)
	if string(body) != "fine" {
		t.Errorf("Body = %s, want fine", body)
	}
}
