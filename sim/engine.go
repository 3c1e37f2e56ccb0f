// Package sim is an in-memory paper broker. It fills market orders at the
// latest tick it has been given.
package sim

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/rustyeddy/signaltrader/broker"
	"github.com/rustyeddy/signaltrader/market"
	"github.com/rustyeddy/signaltrader/pkg/id"
)

// Account is the paper account balance in quote currency.
type Account struct {
	ID       string
	Currency string
	Balance  float64
}

type Engine struct {
	mu     sync.Mutex
	acct   Account
	prices *PriceStore
	trades map[string]*Trade
	log    *zap.Logger
}

var _ broker.Broker = (*Engine)(nil)

func NewEngine(acct Account, log *zap.Logger) *Engine {
	if log == nil {
		log = zap.NewNop()
	}
	return &Engine{
		acct:   acct,
		prices: NewPriceStore(),
		trades: make(map[string]*Trade),
		log:    log,
	}
}

func (e *Engine) Prices() *PriceStore { return e.prices }

// UpdatePrice records the latest quote for an instrument.
func (e *Engine) UpdatePrice(t market.Tick) {
	e.prices.Set(t)
}

func (e *Engine) Account() Account {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.acct
}

// OpenPosition fills longs at the ask and shorts at the bid.
func (e *Engine) OpenPosition(_ context.Context, instrument string, units float64, dir market.Direction) (broker.Position, error) {
	if units <= 0 {
		return broker.Position{}, fmt.Errorf("sim: open position: units must be positive, got %v", units)
	}
	if !dir.Valid() {
		return broker.Position{}, fmt.Errorf("sim: open position: bad direction %q", dir)
	}

	p, err := e.prices.Get(instrument)
	if err != nil {
		return broker.Position{}, fmt.Errorf("sim: open position: %w", err)
	}

	fill := p.Ask
	if dir == market.Sell || fill == 0 {
		fill = p.Bid
	}

	openTime := p.Time
	if openTime.IsZero() {
		openTime = time.Now()
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	t := &Trade{
		ID:         id.At(openTime),
		Instrument: instrument,
		Units:      units,
		Direction:  dir,
		EntryPrice: fill,
		OpenTime:   openTime,
		Open:       true,
	}
	e.trades[t.ID] = t

	e.log.Debug("position opened",
		zap.String("id", t.ID),
		zap.String("instrument", instrument),
		zap.String("direction", dir.String()),
		zap.Float64("units", units),
		zap.Float64("price", fill))

	return t.Position(), nil
}

// ClosePosition closes longs at the bid and shorts at the ask, realizing
// P/L into the account balance.
func (e *Engine) ClosePosition(_ context.Context, tradeID string) (broker.Position, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	t, ok := e.trades[tradeID]
	if !ok {
		return broker.Position{}, fmt.Errorf("sim: close position %q: %w", tradeID, broker.ErrPositionNotFound)
	}
	if !t.Open {
		return broker.Position{}, fmt.Errorf("sim: close position %q: %w", tradeID, broker.ErrPositionClosed)
	}

	p, err := e.prices.Get(t.Instrument)
	if err != nil {
		return broker.Position{}, fmt.Errorf("sim: close position %q: %w", tradeID, err)
	}

	closePrice := p.Bid
	if t.Direction == market.Sell && p.Ask != 0 {
		closePrice = p.Ask
	}
	closeTime := p.Time
	if closeTime.IsZero() {
		closeTime = time.Now()
	}

	t.ClosePrice = closePrice
	t.CloseTime = closeTime
	t.RealizedPL = ProfitOrLoss(t.Direction, t.Units, t.EntryPrice, closePrice)
	t.Open = false
	e.acct.Balance += t.RealizedPL

	e.log.Debug("position closed",
		zap.String("id", t.ID),
		zap.Float64("price", closePrice),
		zap.Float64("pl", t.RealizedPL),
		zap.Float64("balance", e.acct.Balance))

	return t.Position(), nil
}

// IsOpen reports whether the trade exists and is still open.
func (e *Engine) IsOpen(tradeID string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	t, ok := e.trades[tradeID]
	return ok && t.Open
}
