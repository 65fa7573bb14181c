// Package archive is the client for the document archive used to keep
// settlement PDFs. Documents are stored under deterministic paths so a retried
// upload overwrites the same object instead of duplicating it.
package archive

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
)

type Client struct {
	baseURL string
	token   string
	client  *http.Client
}

func NewClient(baseURL, token string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		client:  &http.Client{Timeout: timeout},
	}
}

type putResponse struct {
	URL string `json:"url"`
}

// Put uploads the document bytes under path and returns the stored document's
// reference. The reference comes from the response body when the archive
// provides one, otherwise from the Location header, otherwise the upload URL
// itself.
func (c *Client) Put(ctx context.Context, data []byte, path string) (string, error) {
	url := c.baseURL + "/documents/" + strings.TrimLeft(path, "/")

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, url, bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}

	req.Header.Set("Content-Type", "application/pdf")

	if c.token != "" {
		req.Header.Set("Authorization", "Token "+c.token)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("executing request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return "", fmt.Errorf("unexpected status code %d for path %s", resp.StatusCode, path)
	}

	var body putResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err == nil && body.URL != "" {
		return body.URL, nil
	}

	if loc := resp.Header.Get("Location"); loc != "" {
		return loc, nil
	}

	return url, nil
}
