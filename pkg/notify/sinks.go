package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"
)

// LogKey is the attribute LogSink writes the rendered text under. It carries
// form answers and is masked by logging.DefaultMaskPatterns.
const LogKey = "notification"

// LogSink writes notifications to a logger. Used when no webhook is set.
type LogSink struct {
	Logger *slog.Logger
}

func (s LogSink) Notify(ctx context.Context, text string) error {
	s.Logger.InfoContext(ctx, "Operator notification", LogKey, text)
	return nil
}

// WebhookSink posts notifications as JSON to an HTTP endpoint.
type WebhookSink struct {
	URL      string
	AdminIDs []string
	Client   *http.Client
}

// NewWebhookSink creates a sink with a bounded HTTP client.
func NewWebhookSink(url string, adminIDs []string) *WebhookSink {
	return &WebhookSink{
		URL:      url,
		AdminIDs: adminIDs,
		Client:   &http.Client{Timeout: 10 * time.Second},
	}
}

type webhookPayload struct {
	Text     string   `json:"text"`
	AdminIDs []string `json:"admin_ids,omitempty"`
}

func (s *WebhookSink) Notify(ctx context.Context, text string) error {
	data, err := json.Marshal(webhookPayload{Text: text, AdminIDs: s.AdminIDs})
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.URL, bytes.NewReader(data))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	client := s.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return fmt.Errorf("webhook returned %d", resp.StatusCode)
	}
	return nil
}
