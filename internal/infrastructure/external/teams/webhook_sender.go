// Package teams implements the best-effort chat channel as a Teams incoming
// webhook.
package teams

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"
)

// Config holds the webhook target.
type Config struct {
	WebhookURL string
	Timeout    time.Duration
}

// WebhookSender posts reminder cards to a Teams incoming webhook.
type WebhookSender struct {
	config Config
	client *http.Client
	logger *zap.Logger
}

// NewWebhookSender creates the chat channel.
func NewWebhookSender(config Config, logger *zap.Logger) *WebhookSender {
	if config.Timeout <= 0 {
		config.Timeout = 10 * time.Second
	}
	return &WebhookSender{
		config: config,
		client: &http.Client{Timeout: config.Timeout},
		logger: logger,
	}
}

// messageCard is the legacy connector card format Teams webhooks accept.
type messageCard struct {
	Type    string `json:"@type"`
	Context string `json:"@context"`
	Summary string `json:"summary"`
	Title   string `json:"title"`
	Text    string `json:"text"`
}

// Send posts one reminder. Any non-2xx response is a channel failure.
func (s *WebhookSender) Send(ctx context.Context, title, text string) error {
	card := messageCard{
		Type:    "MessageCard",
		Context: "http://schema.org/extensions",
		Summary: title,
		Title:   title,
		Text:    text,
	}

	payload, err := json.Marshal(card)
	if err != nil {
		return fmt.Errorf("failed to encode webhook payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.config.WebhookURL, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to build webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to post to webhook: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("webhook rejected message: status %d: %s", resp.StatusCode, string(body))
	}

	s.logger.Info("Reminder posted to chat webhook", zap.String("title", title))
	return nil
}
