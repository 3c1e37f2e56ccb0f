package oanda

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/rustyeddy/signaltrader/broker"
	"github.com/rustyeddy/signaltrader/market"
)

type marketOrder struct {
	Type         string `json:"type"`
	Instrument   string `json:"instrument"`
	Units        string `json:"units"`
	TimeInForce  string `json:"timeInForce"`
	PositionFill string `json:"positionFill"`
}

type orderRequest struct {
	Order marketOrder `json:"order"`
}

type fillTransaction struct {
	ID          string `json:"id"`
	Time        string `json:"time"`
	Price       string `json:"price"`
	PL          string `json:"pl"`
	TradeOpened *struct {
		TradeID string `json:"tradeID"`
		Units   string `json:"units"`
		Price   string `json:"price"`
	} `json:"tradeOpened"`
}

type orderResponse struct {
	OrderFillTransaction   *fillTransaction `json:"orderFillTransaction"`
	OrderCancelTransaction *struct {
		Reason string `json:"reason"`
	} `json:"orderCancelTransaction"`
}

var _ broker.Broker = (*Client)(nil)

// OpenPosition places a fill-or-kill market order. Sells are sent as
// negative units.
func (c *Client) OpenPosition(ctx context.Context, instrument string, units float64, dir market.Direction) (broker.Position, error) {
	if !dir.Valid() {
		return broker.Position{}, fmt.Errorf("oanda: open position: bad direction %q", dir)
	}
	if units <= 0 {
		return broker.Position{}, fmt.Errorf("oanda: open position: units must be positive, got %v", units)
	}

	signed := units * float64(dir.Sign())
	req := orderRequest{Order: marketOrder{
		Type:         "MARKET",
		Instrument:   instrument,
		Units:        strconv.FormatFloat(signed, 'f', -1, 64),
		TimeInForce:  "FOK",
		PositionFill: "DEFAULT",
	}}

	var resp orderResponse
	apiURL := fmt.Sprintf("%s/v3/accounts/%s/orders", c.baseURL, c.accountID)
	if err := c.do(ctx, "POST", apiURL, req, &resp); err != nil {
		return broker.Position{}, fmt.Errorf("oanda: open position: %w", err)
	}

	if resp.OrderFillTransaction == nil || resp.OrderFillTransaction.TradeOpened == nil {
		reason := "no fill"
		if resp.OrderCancelTransaction != nil {
			reason = resp.OrderCancelTransaction.Reason
		}
		return broker.Position{}, fmt.Errorf("oanda: open position: order not filled: %s", reason)
	}

	fill := resp.OrderFillTransaction
	price, err := parseFloat(fill.TradeOpened.Price)
	if err != nil {
		return broker.Position{}, fmt.Errorf("oanda: open position: bad price: %w", err)
	}

	pos := broker.Position{
		ID:         fill.TradeOpened.TradeID,
		Instrument: instrument,
		Units:      units,
		Direction:  dir,
		EntryPrice: price,
		OpenedAt:   parseTimeOrNow(fill.Time),
	}

	c.mu.Lock()
	c.trades[pos.ID] = pos
	c.mu.Unlock()

	c.log.Info("order filled",
		zap.String("trade", pos.ID),
		zap.String("instrument", instrument),
		zap.String("direction", dir.String()),
		zap.Float64("price", price))
	return pos, nil
}

// ClosePosition closes a trade opened by this client.
func (c *Client) ClosePosition(ctx context.Context, id string) (broker.Position, error) {
	c.mu.Lock()
	pos, ok := c.trades[id]
	c.mu.Unlock()
	if !ok {
		return broker.Position{}, fmt.Errorf("oanda: close position %q: %w", id, broker.ErrPositionNotFound)
	}

	var resp orderResponse
	apiURL := fmt.Sprintf("%s/v3/accounts/%s/trades/%s/close", c.baseURL, c.accountID, id)
	if err := c.do(ctx, "PUT", apiURL, map[string]string{"units": "ALL"}, &resp); err != nil {
		return broker.Position{}, fmt.Errorf("oanda: close position %q: %w", id, err)
	}
	if resp.OrderFillTransaction == nil {
		return broker.Position{}, fmt.Errorf("oanda: close position %q: no fill", id)
	}

	fill := resp.OrderFillTransaction
	price, err := parseFloat(fill.Price)
	if err != nil {
		return broker.Position{}, fmt.Errorf("oanda: close position %q: bad price: %w", id, err)
	}
	// pl is absent when the close realized nothing
	pl, _ := parseFloat(fill.PL)

	pos.ExitPrice = price
	pos.ClosedAt = parseTimeOrNow(fill.Time)
	pos.ProfitOrLoss = pl
	pos.Closed = true

	c.mu.Lock()
	delete(c.trades, id)
	c.mu.Unlock()

	return pos, nil
}

func parseTimeOrNow(s string) time.Time {
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t
	}
	return time.Now().UTC()
}
