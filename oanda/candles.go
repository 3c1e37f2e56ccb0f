package oanda

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/rustyeddy/signaltrader/market"
	"github.com/rustyeddy/signaltrader/signals"
)

// PriceComponent represents the price component for candles
type PriceComponent string

const (
	MidPrice PriceComponent = "M" // Midpoint candles
	BidPrice PriceComponent = "B" // Bid candles
	AskPrice PriceComponent = "A" // Ask candles
)

const maxCandles = 5000

// CandlesRequest represents parameters for fetching historical candles
type CandlesRequest struct {
	Instrument  string
	Price       PriceComponent // default MidPrice
	Granularity market.Granularity
	Count       int // mutually exclusive with From/To
	From        time.Time
	To          time.Time
}

type candleData struct {
	O string `json:"o"`
	H string `json:"h"`
	L string `json:"l"`
	C string `json:"c"`
}

type apiCandle struct {
	Complete bool       `json:"complete"`
	Volume   int        `json:"volume"`
	Time     string     `json:"time"`
	Mid      candleData `json:"mid,omitempty"`
	Bid      candleData `json:"bid,omitempty"`
	Ask      candleData `json:"ask,omitempty"`
}

type candlesResponse struct {
	Instrument  string      `json:"instrument"`
	Granularity string      `json:"granularity"`
	Candles     []apiCandle `json:"candles"`
}

// GetCandles fetches complete candles; the still-forming candle is skipped.
func (c *Client) GetCandles(ctx context.Context, req CandlesRequest) ([]market.Bar, error) {
	if req.Instrument == "" {
		return nil, fmt.Errorf("oanda: instrument is required")
	}
	if req.Price == "" {
		req.Price = MidPrice
	}
	if req.Granularity == "" {
		req.Granularity = market.Daily
	}

	params := url.Values{}
	params.Set("price", string(req.Price))
	params.Set("granularity", string(req.Granularity))

	if req.Count > 0 {
		if req.Count > maxCandles {
			return nil, fmt.Errorf("oanda: count cannot exceed %d", maxCandles)
		}
		params.Set("count", strconv.Itoa(req.Count))
	} else {
		if !req.From.IsZero() {
			params.Set("from", req.From.UTC().Format(time.RFC3339))
		}
		if !req.To.IsZero() {
			params.Set("to", req.To.UTC().Format(time.RFC3339))
		}
	}

	apiURL := fmt.Sprintf("%s/v3/instruments/%s/candles?%s", c.baseURL, url.PathEscape(req.Instrument), params.Encode())

	var resp candlesResponse
	if err := c.do(ctx, "GET", apiURL, nil, &resp); err != nil {
		return nil, err
	}

	bars := make([]market.Bar, 0, len(resp.Candles))
	for _, ac := range resp.Candles {
		if !ac.Complete {
			continue
		}

		t, err := time.Parse(time.RFC3339Nano, ac.Time)
		if err != nil {
			return nil, fmt.Errorf("oanda: parse time %s: %w", ac.Time, err)
		}

		var p candleData
		switch req.Price {
		case BidPrice:
			p = ac.Bid
		case AskPrice:
			p = ac.Ask
		default:
			p = ac.Mid
		}

		bar, err := toBar(t, p, ac.Volume)
		if err != nil {
			return nil, err
		}
		bars = append(bars, bar)
	}

	return bars, nil
}

func toBar(t time.Time, p candleData, volume int) (market.Bar, error) {
	var v [4]float64
	for i, s := range []string{p.O, p.H, p.L, p.C} {
		f, err := parseFloat(s)
		if err != nil {
			return market.Bar{}, fmt.Errorf("oanda: parse price %q: %w", s, err)
		}
		v[i] = f
	}
	return market.Bar{Time: t, Open: v[0], High: v[1], Low: v[2], Close: v[3], Volume: float64(volume)}, nil
}

var _ signals.BarSource = (*Client)(nil)

// RetrieveBars returns complete mid-price candles between from and to.
func (c *Client) RetrieveBars(ctx context.Context, instrument string, g market.Granularity, from, to time.Time) ([]market.Bar, error) {
	return c.GetCandles(ctx, CandlesRequest{
		Instrument:  instrument,
		Price:       MidPrice,
		Granularity: g,
		From:        from,
		To:          to,
	})
}
