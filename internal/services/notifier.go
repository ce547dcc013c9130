package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// WebhookNotifier delivers clock events as JSON POSTs to a configured
// endpoint. Callers treat delivery as fire-and-forget; the notifier only
// reports the failure so it can be logged.
type WebhookNotifier struct {
	url    string
	client *http.Client
}

// NewWebhookNotifier creates a notifier for the given endpoint.
func NewWebhookNotifier(url string, timeout time.Duration) *WebhookNotifier {
	return &WebhookNotifier{
		url:    url,
		client: &http.Client{Timeout: timeout},
	}
}

// Notify posts the event to the webhook endpoint.
func (n *WebhookNotifier) Notify(ctx context.Context, event ClockEvent) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal clock event: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("deliver clock event: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("webhook returned status %d", resp.StatusCode)
	}
	return nil
}

// NoopNotifier drops every event. Used when no webhook URL is configured.
type NoopNotifier struct{}

// Notify discards the event.
func (NoopNotifier) Notify(ctx context.Context, event ClockEvent) error {
	return nil
}
