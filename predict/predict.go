// Package predict is the HTTP client for the remote prediction service
// consulted by the predict decision mode.
package predict

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/rustyeddy/signaltrader/market"
	"github.com/rustyeddy/signaltrader/signals"
)

const (
	DefaultURL     = "http://tensorflow:5000/api/estimator"
	DefaultTimeout = 10 * time.Second
)

// Verdict is the textual result returned by the service.
type Verdict string

const VerdictUp Verdict = "up"

var ErrMissingResult = errors.New("predict: response has no result field")

// Request carries the named signal features, plus the direction of the
// trade being considered.
type Request struct {
	signals.Features
	Direction market.Direction `json:"direction"`
}

type response struct {
	Result *string `json:"result"`
}

// Predictor asks for a verdict on a prospective trade.
type Predictor interface {
	Predict(ctx context.Context, req Request) (Verdict, error)
}

// StatusError is returned for a non-2xx response.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("predict: status %d: %s", e.StatusCode, e.Body)
}

type Client struct {
	URL     string
	Timeout time.Duration

	HTTPClient *http.Client
}

var _ Predictor = (*Client)(nil)

func NewClient(url string, timeout time.Duration) *Client {
	if url == "" {
		url = DefaultURL
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{URL: url, Timeout: timeout, HTTPClient: &http.Client{}}
}

// Predict posts req and returns the verdict. The call is always bounded by
// the client timeout, even when ctx has no deadline.
func (c *Client) Predict(ctx context.Context, req Request) (Verdict, error) {
	timeout := c.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	body, err := json.Marshal(req)
	if err != nil {
		return "", fmt.Errorf("predict: encode request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.URL, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("X-Request-ID", uuid.NewString())

	hc := c.HTTPClient
	if hc == nil {
		hc = http.DefaultClient
	}

	resp, err := hc.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("predict: post %s: %w", c.URL, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", fmt.Errorf("predict: read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", &StatusError{StatusCode: resp.StatusCode, Body: string(bytes.TrimSpace(raw))}
	}

	var out response
	if err := json.Unmarshal(raw, &out); err != nil {
		return "", fmt.Errorf("predict: decode response: %w", err)
	}
	if out.Result == nil {
		return "", ErrMissingResult
	}

	return Verdict(*out.Result), nil
}
