// Package strategies holds the decision modes consulted by the agent before
// every trade action and notified after every close.
package strategies

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/rustyeddy/signaltrader/broker"
	"github.com/rustyeddy/signaltrader/journal"
	"github.com/rustyeddy/signaltrader/market"
	"github.com/rustyeddy/signaltrader/predict"
	"github.com/rustyeddy/signaltrader/signals"
)

// Mode decides whether a trade should be placed and what happens to a
// position once it is closed.
type Mode interface {
	Name() string
	ShouldTrade(ctx context.Context, rec signals.Record, dir market.Direction) (bool, error)
	OnPositionClosed(ctx context.Context, entry signals.Record, pos broker.Position) error
}

type ModeName string

const (
	Collect ModeName = "collect"
	Test    ModeName = "test"
	Trade   ModeName = "trade"
)

var ErrUnknownMode = errors.New("unknown mode")

func ParseModeName(s string) (ModeName, error) {
	switch n := ModeName(strings.ToLower(strings.TrimSpace(s))); n {
	case Collect, Test, Trade:
		return n, nil
	default:
		return "", fmt.Errorf("%w %q (supported: collect, test, trade)", ErrUnknownMode, s)
	}
}

// Deps are the collaborators a mode may need. Only the ones used by the
// selected mode are required.
type Deps struct {
	Journal   journal.Journal
	Predictor predict.Predictor
	Log       *zap.Logger
}

func New(name ModeName, d Deps) (Mode, error) {
	log := d.Log
	if log == nil {
		log = zap.NewNop()
	}

	switch name {
	case Collect:
		if d.Journal == nil {
			return nil, fmt.Errorf("strategies: %s mode requires a journal", name)
		}
		return &CollectMode{Journal: d.Journal, log: log}, nil
	case Test:
		return TestMode{}, nil
	case Trade:
		if d.Predictor == nil {
			return nil, fmt.Errorf("strategies: %s mode requires a predictor", name)
		}
		return &PredictMode{Predictor: d.Predictor, log: log}, nil
	default:
		return nil, fmt.Errorf("%w %q", ErrUnknownMode, name)
	}
}
