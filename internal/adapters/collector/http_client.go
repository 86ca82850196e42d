// Package collector implements ports.Collector over HTTP: the finalize
// report is POSTed as JSON to the external intelligence collector.
package collector

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/karshi-k/agentic-honeypot/internal/domain"
)

// HTTPClient delivers finalize reports to a collector endpoint.
type HTTPClient struct {
	httpClient *http.Client
	url        string
}

// NewHTTPClient creates a collector client for the given endpoint URL.
func NewHTTPClient(url string, timeout time.Duration) (*HTTPClient, error) {
	if url == "" {
		return nil, errors.New("collector: url is required")
	}
	return &HTTPClient{
		httpClient: &http.Client{Timeout: timeout},
		url:        url,
	}, nil
}

// Deliver POSTs the report. Any transport failure or non-2xx status is an
// error; the caller records it and does not retry.
func (c *HTTPClient) Deliver(ctx context.Context, report domain.FinalReport) error {
	body, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("encode report: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("deliver report: %w", err)
	}
	defer resp.Body.Close()

	// Drain so the connection can be reused.
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("collector returned status %d", resp.StatusCode)
	}
	return nil
}
