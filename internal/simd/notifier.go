package simd

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/wavesim/wavesim/pkg/logger"
	"github.com/wavesim/wavesim/pkg/models"
)

// Callback is where a run's outcome is posted once it reaches a terminal status.
type Callback struct {
	URL    string
	Secret string
}

// NotificationPayload represents the JSON payload sent to the callback URL
type NotificationPayload struct {
	RunID      string             `json:"run_id"`
	Status     models.RunStatus   `json:"status"`
	CreatedAt  time.Time          `json:"created_at"`
	EndedAt    time.Time          `json:"ended_at"`
	Error      string             `json:"error,omitempty"`
	Parameters *models.Parameters `json:"parameters,omitempty"`
	Statistics *models.Statistics `json:"statistics,omitempty"`
	Timestamp  int64              `json:"timestamp"` // When notification was sent
}

// Notifier posts run outcomes to caller-supplied webhooks
type Notifier struct {
	httpClient *http.Client
	maxRetries int
	baseDelay  time.Duration
}

// NewNotifier creates a new notification service
func NewNotifier() *Notifier {
	return &Notifier{
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		maxRetries: 3,
		baseDelay:  1 * time.Second,
	}
}

// Notify sends a notification to the callback URL asynchronously
func (n *Notifier) Notify(callbackURL, callbackSecret string, run *models.Run) {
	if callbackURL == "" {
		return
	}
	if run == nil {
		logger.Warn("cannot notify: nil run", "callback_url", callbackURL)
		return
	}

	finalURL := strings.ReplaceAll(callbackURL, "{run_id}", run.ID)
	go n.sendNotification(finalURL, callbackSecret, buildPayload(run))
}

func buildPayload(run *models.Run) NotificationPayload {
	payload := NotificationPayload{
		RunID:      run.ID,
		Status:     run.Status,
		CreatedAt:  run.CreatedAt,
		EndedAt:    run.EndedAt,
		Error:      run.Error,
		Parameters: run.Parameters,
		Timestamp:  time.Now().UTC().UnixMilli(),
	}
	if run.Result != nil {
		stats := run.Result.Statistics
		payload.Statistics = &stats
	}
	return payload
}

// sendNotification performs the HTTP POST with exponential backoff
func (n *Notifier) sendNotification(callbackURL, callbackSecret string, payload NotificationPayload) {
	payloadJSON, err := json.Marshal(payload)
	if err != nil {
		logger.Error("failed to marshal notification payload",
			"callback_url", callbackURL,
			"run_id", payload.RunID,
			"error", err)
		return
	}

	var lastErr error
	for attempt := 0; attempt <= n.maxRetries; attempt++ {
		if attempt > 0 {
			delay := n.baseDelay * time.Duration(1<<uint(attempt-1))
			logger.Debug("retrying notification",
				"callback_url", callbackURL,
				"run_id", payload.RunID,
				"attempt", attempt,
				"delay", delay)
			time.Sleep(delay)
		}

		req, err := http.NewRequest(http.MethodPost, callbackURL, bytes.NewReader(payloadJSON))
		if err != nil {
			lastErr = fmt.Errorf("failed to create request: %w", err)
			continue
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("User-Agent", "wavesim/1.0")
		if callbackSecret != "" {
			req.Header.Set("X-Wavesim-Callback-Secret", callbackSecret)
		}

		resp, err := n.httpClient.Do(req)
		if err != nil {
			lastErr = fmt.Errorf("HTTP request failed: %w", err)
			logger.Warn("notification attempt failed",
				"callback_url", callbackURL,
				"run_id", payload.RunID,
				"attempt", attempt+1,
				"error", err)
			continue
		}

		bodyBytes, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		resp.Body.Close()
		responseBody := string(bodyBytes)
		if len(responseBody) > 200 {
			responseBody = responseBody[:200] + "..."
		}

		if resp.StatusCode >= 200 && resp.StatusCode < 300 {
			logger.Info("notification sent",
				"run_id", payload.RunID,
				"status", payload.Status,
				"status_code", resp.StatusCode)
			return
		}

		lastErr = fmt.Errorf("unexpected status code: %d", resp.StatusCode)
		logger.Warn("notification returned non-2xx status",
			"callback_url", callbackURL,
			"run_id", payload.RunID,
			"status_code", resp.StatusCode,
			"response_body", responseBody,
			"attempt", attempt+1)
	}

	logger.Error("failed to send notification after retries",
		"callback_url", callbackURL,
		"run_id", payload.RunID,
		"status", payload.Status,
		"max_retries", n.maxRetries,
		"last_error", lastErr)
}
