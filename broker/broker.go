// Package broker defines the order-execution collaborator used by the agent.
package broker

import (
	"context"
	"errors"
	"time"

	"github.com/rustyeddy/signaltrader/market"
)

var (
	ErrPositionNotFound = errors.New("position not found")
	ErrPositionClosed   = errors.New("position already closed")
	ErrNoPrice          = errors.New("no price for instrument")
)

// Broker opens and closes market positions. Calls are synchronous and may
// fail with network or venue errors.
type Broker interface {
	OpenPosition(ctx context.Context, instrument string, units float64, dir market.Direction) (Position, error)
	ClosePosition(ctx context.Context, id string) (Position, error)
}

// Position is a single trade as reported by the broker. ExitPrice,
// ClosedAt and ProfitOrLoss are only meaningful once Closed is true.
type Position struct {
	ID         string
	Instrument string
	Units      float64
	Direction  market.Direction

	EntryPrice float64
	ExitPrice  float64
	OpenedAt   time.Time
	ClosedAt   time.Time

	ProfitOrLoss float64
	Closed       bool
}
