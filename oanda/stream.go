package oanda

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/rustyeddy/signaltrader/feed"
	"github.com/rustyeddy/signaltrader/market"
)

type pricingStreamMsg struct {
	Type       string `json:"type"`
	Time       string `json:"time"`
	Instrument string `json:"instrument"`

	Bids []struct {
		Price string `json:"price"`
	} `json:"bids"`

	Asks []struct {
		Price string `json:"price"`
	} `json:"asks"`
}

// StreamPricing connects to the pricing stream and hands each PRICE message
// to h as a tick. Heartbeats are skipped. It returns when ctx is done, the
// stream ends, or h returns an error.
func (c *Client) StreamPricing(ctx context.Context, instruments []string, h feed.Handler) error {
	if c.token == "" {
		return fmt.Errorf("oanda: missing token")
	}
	if c.accountID == "" {
		return fmt.Errorf("oanda: missing account id")
	}
	if len(instruments) == 0 {
		return fmt.Errorf("oanda: missing instruments")
	}

	u, err := url.Parse(c.streamURL)
	if err != nil {
		return err
	}
	u.Path = fmt.Sprintf("/v3/accounts/%s/pricing/stream", c.accountID)
	q := u.Query()
	q.Set("instruments", strings.Join(instruments, ","))
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+c.token)

	// the shared client has a request timeout; a stream must not
	hc := &http.Client{Transport: c.httpClient.Transport}
	resp, err := hc.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 64*1024))
		return &APIError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(b))}
	}

	c.log.Info("pricing stream connected", zap.Strings("instruments", instruments))

	sc := bufio.NewScanner(resp.Body)
	// OANDA stream messages can be long; bump max token
	sc.Buffer(make([]byte, 0, 64*1024), 2*1024*1024)

	for sc.Scan() {
		if err := ctx.Err(); err != nil {
			return err
		}

		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}

		tick, ok, err := parsePriceLine(line)
		if err != nil {
			return err
		}
		if !ok {
			continue
		}

		if err := h(ctx, tick); err != nil {
			return err
		}
	}

	if err := sc.Err(); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return err
	}
	return ctx.Err()
}

func parsePriceLine(line string) (market.Tick, bool, error) {
	var msg pricingStreamMsg
	if err := json.Unmarshal([]byte(line), &msg); err != nil {
		return market.Tick{}, false, fmt.Errorf("oanda: bad json: %w (line=%q)", err, trimForErr(line))
	}

	if !strings.EqualFold(msg.Type, "PRICE") {
		return market.Tick{}, false, nil
	}
	if msg.Instrument == "" || len(msg.Bids) == 0 || len(msg.Asks) == 0 {
		return market.Tick{}, false, nil
	}

	t := time.Now().UTC()
	if msg.Time != "" {
		pt, err := time.Parse(time.RFC3339Nano, msg.Time)
		if err != nil {
			return market.Tick{}, false, fmt.Errorf("oanda: bad time %q: %w", msg.Time, err)
		}
		t = pt
	}

	bid, err := parseFloat(msg.Bids[0].Price)
	if err != nil {
		return market.Tick{}, false, fmt.Errorf("oanda: bad bid %q: %w", msg.Bids[0].Price, err)
	}
	ask, err := parseFloat(msg.Asks[0].Price)
	if err != nil {
		return market.Tick{}, false, fmt.Errorf("oanda: bad ask %q: %w", msg.Asks[0].Price, err)
	}

	return market.Tick{Instrument: msg.Instrument, Time: t, Bid: bid, Ask: ask}, true, nil
}

func trimForErr(s string) string {
	const n = 200
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

// PricingFeed adapts the pricing stream to feed.Feed.
type PricingFeed struct {
	Client      *Client
	Instruments []string
}

var _ feed.Feed = PricingFeed{}

func (p PricingFeed) Run(ctx context.Context, h feed.Handler) error {
	return p.Client.StreamPricing(ctx, p.Instruments, h)
}
