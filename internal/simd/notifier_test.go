package simd

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/wavesim/wavesim/pkg/models"
)

func completedRun(id string) *models.Run {
	params := models.Parameters{Amplitude: 1, Frequency: 1, Phase: 0, Points: 1000}
	return &models.Run{
		ID:         id,
		Status:     models.RunStatusCompleted,
		Parameters: &params,
		Result: &models.SimulationResult{
			Statistics: models.Statistics{Mean: 0, Std: 0.7, Min: -1, Max: 1},
		},
		CreatedAt: time.Now().UTC(),
		EndedAt:   time.Now().UTC(),
	}
}

func waitRequest(t *testing.T, ch <-chan *http.Request) *http.Request {
	t.Helper()
	select {
	case r := <-ch:
		return r
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for notification")
		return nil
	}
}

func TestNotifierNotify_Success(t *testing.T) {
	payloads := make(chan NotificationPayload, 1)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("expected POST, got %s", r.Method)
		}
		if r.Header.Get("Content-Type") != "application/json" {
			t.Errorf("expected Content-Type application/json, got %s", r.Header.Get("Content-Type"))
		}
		var payload NotificationPayload
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			t.Errorf("failed to decode payload: %v", err)
		}
		w.WriteHeader(http.StatusOK)
		payloads <- payload
	}))
	defer server.Close()

	NewNotifier().Notify(server.URL+"/callback", "", completedRun("test-run-123"))

	select {
	case payload := <-payloads:
		if payload.RunID != "test-run-123" {
			t.Errorf("expected RunID test-run-123, got %s", payload.RunID)
		}
		if payload.Status != models.RunStatusCompleted {
			t.Errorf("expected status completed, got %s", payload.Status)
		}
		if payload.Statistics == nil || payload.Statistics.Max != 1 {
			t.Errorf("expected statistics in payload, got %+v", payload.Statistics)
		}
		if payload.Parameters == nil || payload.Parameters.Points != 1000 {
			t.Errorf("expected parameters in payload, got %+v", payload.Parameters)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for notification")
	}
}

func TestNotifierNotify_WithSecretAndTemplate(t *testing.T) {
	requests := make(chan *http.Request, 1)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
		requests <- r
	}))
	defer server.Close()

	NewNotifier().Notify(server.URL+"/callback/{run_id}", "my-secret-123", completedRun("run-abc-123"))

	r := waitRequest(t, requests)
	if got := r.Header.Get("X-Wavesim-Callback-Secret"); got != "my-secret-123" {
		t.Errorf("expected secret 'my-secret-123', got %q", got)
	}
	if r.URL.Path != "/callback/run-abc-123" {
		t.Errorf("expected path '/callback/run-abc-123', got %q", r.URL.Path)
	}
}

func TestNotifierNotify_RetriesOnServerError(t *testing.T) {
	var attempts atomic.Int32
	done := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if attempts.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		close(done)
	}))
	defer server.Close()

	n := NewNotifier()
	n.baseDelay = time.Millisecond
	n.Notify(server.URL, "", completedRun("retry-run"))

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for retried notification")
	}
	if got := attempts.Load(); got != 3 {
		t.Errorf("expected 3 attempts, got %d", got)
	}
}

func TestNotifierNotify_EmptyURL(t *testing.T) {
	// Should not panic or send a request
	NewNotifier().Notify("", "", completedRun("test-run"))
	NewNotifier().Notify("http://localhost:1/callback", "", nil)
}

func TestBuildPayloadDeclinedRun(t *testing.T) {
	run := &models.Run{
		ID:     "declined-run",
		Status: models.RunStatusDeclined,
		Error:  "Points must be at least 100",
	}
	payload := buildPayload(run)
	if payload.Statistics != nil {
		t.Errorf("expected no statistics for declined run, got %+v", payload.Statistics)
	}
	if payload.Error != "Points must be at least 100" {
		t.Errorf("unexpected error %q", payload.Error)
	}
}
