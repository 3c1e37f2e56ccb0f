// Package feed delivers ticks to the agent and supplies historical bars.
// Every feed calls its handler sequentially, one tick at a time.
package feed

import (
	"context"

	"github.com/rustyeddy/signaltrader/market"
)

// Handler receives one tick. Returning an error stops the feed.
type Handler func(ctx context.Context, t market.Tick) error

type Feed interface {
	Run(ctx context.Context, h Handler) error
}
