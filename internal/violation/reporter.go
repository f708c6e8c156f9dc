package violation

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/examshield/proctor-agent/internal/domain"
)

// Reporter submits violation alerts that captured a frame to the backend
// persistence endpoint. The call is fire-and-forget: failures are logged and
// otherwise ignored.
type Reporter struct {
	url         string
	examID      string
	candidateID string
	client      *http.Client
	logger      *slog.Logger
}

// reportPayload is the persistence side-channel wire shape.
type reportPayload struct {
	ExamID        string `json:"exam_id"`
	CandidateID   string `json:"candidate_id"`
	ViolationType string `json:"violation_type"`
	Message       string `json:"message"`
	Timestamp     int64  `json:"timestamp"`
	Image         []byte `json:"image"`
}

func NewReporter(url, examID, candidateID string, logger *slog.Logger) *Reporter {
	return &Reporter{
		url:         url,
		examID:      examID,
		candidateID: candidateID,
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
		logger: logger.With("component", "violation-reporter"),
	}
}

// Submit posts the alert. Safe to call from a goroutine; never returns an
// error to the caller.
func (r *Reporter) Submit(alert domain.ViolationAlert) {
	if r.url == "" {
		return
	}

	if err := r.send(context.Background(), alert); err != nil {
		r.logger.Warn("violation submit failed",
			"alert_id", alert.ID,
			"type", alert.Type,
			"error", err,
		)
		return
	}

	r.logger.Info("violation submitted", "alert_id", alert.ID, "type", alert.Type)
}

func (r *Reporter) send(ctx context.Context, alert domain.ViolationAlert) error {
	payload, err := json.Marshal(reportPayload{
		ExamID:        r.examID,
		CandidateID:   r.candidateID,
		ViolationType: string(alert.Type),
		Message:       alert.Message,
		Timestamp:     alert.Timestamp,
		Image:         alert.Image,
	})
	if err != nil {
		return fmt.Errorf("marshal violation: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", "ProctorAgent/1.0")

	resp, err := r.client.Do(req)
	if err != nil {
		return err
	}
	defer func() {
		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()
	}()

	if resp.StatusCode >= 400 {
		return fmt.Errorf("HTTP %d", resp.StatusCode)
	}

	return nil
}
