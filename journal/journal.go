// Package journal persists closed trades together with the signals that
// were in effect when they were entered.
package journal

import (
	"context"
	"time"

	"github.com/rustyeddy/signaltrader/broker"
	"github.com/rustyeddy/signaltrader/market"
	"github.com/rustyeddy/signaltrader/pkg/id"
	"github.com/rustyeddy/signaltrader/signals"
)

// TradeRecord joins the entry signals of a position with its outcome.
// It is created once per closed position and never modified.
type TradeRecord struct {
	ID         string           `json:"id"`
	PositionID string           `json:"position_id"`
	Instrument string           `json:"instrument"`
	Direction  market.Direction `json:"direction"`
	Units      float64          `json:"units"`
	EntryPrice float64          `json:"entry_price"`
	ExitPrice  float64          `json:"exit_price"`

	signals.Features

	ProfitOrLoss float64   `json:"profit_or_loss"`
	EnteredAt    time.Time `json:"entered_at"`
	ExitedAt     time.Time `json:"exited_at"`
}

// NewTradeRecord builds the record for a closed position from the signal
// record captured when it was opened.
func NewTradeRecord(entry signals.Record, pos broker.Position) TradeRecord {
	return TradeRecord{
		ID:           id.At(pos.ClosedAt),
		PositionID:   pos.ID,
		Instrument:   pos.Instrument,
		Direction:    pos.Direction,
		Units:        pos.Units,
		EntryPrice:   pos.EntryPrice,
		ExitPrice:    pos.ExitPrice,
		Features:     entry.Features,
		ProfitOrLoss: pos.ProfitOrLoss,
		EnteredAt:    pos.OpenedAt,
		ExitedAt:     pos.ClosedAt,
	}
}

// Journal is an append-only sink for trade records.
type Journal interface {
	RecordTrade(ctx context.Context, t TradeRecord) error
	Close() error
}
