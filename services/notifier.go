package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"
)

// Notifier receives free-form chat messages. Delivery is best effort.
type Notifier interface {
	Notify(ctx context.Context, text string) error
}

// NoopNotifier drops every message; used when no webhook is configured.
type NoopNotifier struct{}

func (NoopNotifier) Notify(context.Context, string) error { return nil }

// SlackNotifier posts messages to a Slack incoming webhook.
type SlackNotifier struct {
	WebhookURL string
	Client     *http.Client
}

func NewSlackNotifier(webhookURL string, timeout time.Duration) *SlackNotifier {
	return &SlackNotifier{
		WebhookURL: webhookURL,
		Client: &http.Client{
			Timeout: timeout,
		},
	}
}

// NewNotifier returns a SlackNotifier, or a NoopNotifier when webhookURL is empty.
func NewNotifier(webhookURL string, timeout time.Duration) Notifier {
	if webhookURL == "" {
		log.Println("⚠️  SLACK_WEBHOOK_URL not set, chat notifications disabled")
		return NoopNotifier{}
	}
	return NewSlackNotifier(webhookURL, timeout)
}

// Notify posts {"text": text} to the webhook.
func (n *SlackNotifier) Notify(ctx context.Context, text string) error {
	jsonData, err := json.Marshal(map[string]string{"text": text})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.WebhookURL, bytes.NewReader(jsonData))
	if err != nil {
		return fmt.Errorf("failed to create slack request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.Client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to call slack webhook: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("slack webhook returned status %d: %s", resp.StatusCode, string(body))
	}
	return nil
}
