// Package oanda talks to the OANDA v3 REST API: daily candles for warm-up,
// the pricing stream for live ticks and market orders for execution.
package oanda

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/rustyeddy/signaltrader/broker"
)

const (
	// PracticeURL is the URL for OANDA's practice/demo environment
	PracticeURL = "https://api-fxpractice.oanda.com"
	// LiveURL is the URL for OANDA's live trading environment
	LiveURL = "https://api-fxtrade.oanda.com"

	PracticeStreamURL = "https://stream-fxpractice.oanda.com"
	LiveStreamURL     = "https://stream-fxtrade.oanda.com"
)

// Client represents an OANDA API client bound to one account.
type Client struct {
	baseURL    string
	streamURL  string
	token      string
	accountID  string
	httpClient *http.Client
	log        *zap.Logger

	mu     sync.Mutex
	trades map[string]broker.Position
}

// NewClient creates a client for env ("practice" or "live").
func NewClient(env, token, accountID string, log *zap.Logger) (*Client, error) {
	var base, stream string
	switch strings.ToLower(strings.TrimSpace(env)) {
	case "", "practice", "demo":
		base, stream = PracticeURL, PracticeStreamURL
	case "live", "trade":
		base, stream = LiveURL, LiveStreamURL
	default:
		return nil, fmt.Errorf("unknown OANDA env %q (want practice|live)", env)
	}

	return newClient(base, stream, token, accountID, log), nil
}

func newClient(base, stream, token, accountID string, log *zap.Logger) *Client {
	if log == nil {
		log = zap.NewNop()
	}
	return &Client{
		baseURL:    strings.TrimRight(base, "/"),
		streamURL:  strings.TrimRight(stream, "/"),
		token:      token,
		accountID:  accountID,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		log:        log,
		trades:     make(map[string]broker.Position),
	}
}

// APIError is a non-2xx response.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("oanda: API error (status %d): %s", e.StatusCode, e.Body)
}

func (c *Client) do(ctx context.Context, method, url string, in, out any) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("oanda: encode request: %w", err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return fmt.Errorf("oanda: create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Accept-Datetime-Format", "RFC3339")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("oanda: %s %s: %w", method, req.URL.Path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 64*1024))
		return &APIError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(b))}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("oanda: decode response: %w", err)
	}
	return nil
}

func parseFloat(s string) (float64, error) {
	return strconv.ParseFloat(strings.TrimSpace(s), 64)
}
