package violation

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/examshield/proctor-agent/internal/domain"
)

func TestReporterSend(t *testing.T) {
	var got reportPayload
	var contentType string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		contentType = r.Header.Get("Content-Type")
		body, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(body, &got)
		w.WriteHeader(http.StatusCreated)
	}))
	defer srv.Close()

	r := NewReporter(srv.URL, "exam-1", "candidate-1", testLogger())

	alert := domain.ViolationAlert{
		ID:        "alert-1",
		Type:      domain.ViolationMultipleFaces,
		Message:   "two faces in frame",
		Timestamp: 1700000000000,
		Image:     []byte("jpeg-bytes"),
	}
	require.NoError(t, r.send(context.Background(), alert))

	assert.Equal(t, "application/json", contentType)
	assert.Equal(t, "exam-1", got.ExamID)
	assert.Equal(t, "candidate-1", got.CandidateID)
	assert.Equal(t, "multiple_faces", got.ViolationType)
	assert.Equal(t, "two faces in frame", got.Message)
	assert.Equal(t, int64(1700000000000), got.Timestamp)
	assert.Equal(t, []byte("jpeg-bytes"), got.Image)
}

func TestReporterSendServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	r := NewReporter(srv.URL, "exam-1", "candidate-1", testLogger())

	err := r.send(context.Background(), domain.ViolationAlert{ID: "alert-1"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "HTTP 500")
}

func TestSubmitNeverPanicsOnFailure(t *testing.T) {
	r := NewReporter("http://127.0.0.1:1/unreachable", "exam-1", "candidate-1", testLogger())

	assert.NotPanics(t, func() {
		r.Submit(domain.ViolationAlert{ID: "alert-1"})
	})
}

func TestSubmitWithoutURLIsNoop(t *testing.T) {
	r := NewReporter("", "exam-1", "candidate-1", testLogger())

	assert.NotPanics(t, func() {
		r.Submit(domain.ViolationAlert{ID: "alert-1"})
	})
}
