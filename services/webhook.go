package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// CRMWebhook posts lead events as JSON to an external CRM endpoint.
type CRMWebhook struct {
	url    string
	client *http.Client
}

// NewCRMWebhook returns nil when url is empty.
func NewCRMWebhook(url string) *CRMWebhook {
	if url == "" {
		return nil
	}
	return &CRMWebhook{
		url:    url,
		client: &http.Client{Timeout: 5 * time.Second},
	}
}

func (w *CRMWebhook) NotifyLead(ctx context.Context, event LeadEvent) error {
	if w == nil {
		return nil
	}
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to encode webhook payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", "mathwa-api/1.0")

	resp, err := w.client.Do(req)
	if err != nil {
		return fmt.Errorf("webhook request failed: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("webhook returned status %d", resp.StatusCode)
	}
	return nil
}
