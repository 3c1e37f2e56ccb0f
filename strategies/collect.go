package strategies

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/rustyeddy/signaltrader/broker"
	"github.com/rustyeddy/signaltrader/journal"
	"github.com/rustyeddy/signaltrader/market"
	"github.com/rustyeddy/signaltrader/signals"
)

// CollectMode trades on every decision and records each closed position
// with its entry signals. It is used to build a training set.
type CollectMode struct {
	Journal journal.Journal
	log     *zap.Logger
}

func (m *CollectMode) Name() string { return string(Collect) }

func (m *CollectMode) ShouldTrade(context.Context, signals.Record, market.Direction) (bool, error) {
	return true, nil
}

func (m *CollectMode) OnPositionClosed(ctx context.Context, entry signals.Record, pos broker.Position) error {
	rec := journal.NewTradeRecord(entry, pos)
	if err := m.Journal.RecordTrade(ctx, rec); err != nil {
		return fmt.Errorf("collect: record trade %s: %w", pos.ID, err)
	}

	if m.log != nil {
		m.log.Info("trade recorded",
			zap.String("id", rec.ID),
			zap.String("position", pos.ID),
			zap.Float64("profit_or_loss", rec.ProfitOrLoss),
		)
	}
	return nil
}

// TestMode trades on every decision and records nothing.
type TestMode struct{}

func (TestMode) Name() string { return string(Test) }

func (TestMode) ShouldTrade(context.Context, signals.Record, market.Direction) (bool, error) {
	return true, nil
}

func (TestMode) OnPositionClosed(context.Context, signals.Record, broker.Position) error {
	return nil
}
