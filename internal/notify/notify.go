// Package notify delivers settlement summaries through the operations
// webhook. Delivery is best-effort; callers log failures and move on.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"
)

type Webhook struct {
	url    string
	client *http.Client
}

func NewWebhook(url string, timeout time.Duration) *Webhook {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &Webhook{
		url:    url,
		client: &http.Client{Timeout: timeout},
	}
}

type payload struct {
	Recipients    []string `json:"recipients"`
	Subject       string   `json:"subject"`
	Body          string   `json:"body"`
	AttachmentURL string   `json:"attachment_url,omitempty"`
}

func (w *Webhook) Send(ctx context.Context, recipients []string, subject, body, attachmentRef string) error {
	if w.url == "" {
		return errors.New("notify: webhook url not configured")
	}

	data, err := json.Marshal(payload{
		Recipients:    recipients,
		Subject:       subject,
		Body:          body,
		AttachmentURL: attachmentRef,
	})
	if err != nil {
		return fmt.Errorf("encoding payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.url, bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")

	resp, err := w.client.Do(req)
	if err != nil {
		return fmt.Errorf("executing request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("unexpected status code %d", resp.StatusCode)
	}

	return nil
}
