package sim

import (
	"time"

	"github.com/rustyeddy/signaltrader/broker"
	"github.com/rustyeddy/signaltrader/market"
)

type Trade struct {
	ID         string
	Instrument string
	Units      float64
	Direction  market.Direction
	EntryPrice float64
	OpenTime   time.Time

	// Realized
	ClosePrice float64
	CloseTime  time.Time
	RealizedPL float64
	Open       bool
}

func (t *Trade) Position() broker.Position {
	return broker.Position{
		ID:           t.ID,
		Instrument:   t.Instrument,
		Units:        t.Units,
		Direction:    t.Direction,
		EntryPrice:   t.EntryPrice,
		ExitPrice:    t.ClosePrice,
		OpenedAt:     t.OpenTime,
		ClosedAt:     t.CloseTime,
		ProfitOrLoss: t.RealizedPL,
		Closed:       !t.Open,
	}
}
