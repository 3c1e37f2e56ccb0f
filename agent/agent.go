// Package agent turns a tick stream into at most one trading decision per
// calendar day, keeping at most one position open.
package agent

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/rustyeddy/signaltrader/broker"
	"github.com/rustyeddy/signaltrader/indicators"
	"github.com/rustyeddy/signaltrader/market"
	"github.com/rustyeddy/signaltrader/metrics"
	"github.com/rustyeddy/signaltrader/signals"
	"github.com/rustyeddy/signaltrader/strategies"
)

const DefaultUnits = 10000

// EntryPolicy chooses which direction, if any, a daily decision takes.
type EntryPolicy string

const (
	// AlwaysBuy attempts a buy every day.
	AlwaysBuy EntryPolicy = "always-buy"
	// Crossover buys on a fast/slow cross up, sells on a cross down and
	// otherwise does nothing.
	Crossover EntryPolicy = "crossover"
)

var ErrUnknownEntryPolicy = errors.New("unknown entry policy")

func ParseEntryPolicy(s string) (EntryPolicy, error) {
	switch p := EntryPolicy(strings.ToLower(strings.TrimSpace(s))); p {
	case "":
		return AlwaysBuy, nil
	case AlwaysBuy, Crossover:
		return p, nil
	default:
		return "", fmt.Errorf("%w %q (supported: always-buy, crossover)", ErrUnknownEntryPolicy, s)
	}
}

type Options struct {
	Instrument string
	Units      float64
	// Location decides where a calendar day starts. Nil means UTC.
	Location *time.Location
	Entry    EntryPolicy
	// Lookback overrides the warm-up window when positive.
	Lookback time.Duration

	Bars    signals.BarSource
	Broker  broker.Broker
	Mode    strategies.Mode
	Metrics *metrics.Metrics
	Log     *zap.Logger
}

// Agent is not safe for concurrent use; ticks must be delivered one at a
// time.
type Agent struct {
	instrument string
	units      float64
	loc        *time.Location
	entryPol   EntryPolicy

	broker  broker.Broker
	mode    strategies.Mode
	metrics *metrics.Metrics
	log     *zap.Logger

	calc  *signals.Calculator
	cross *indicators.Cross

	lastDate  time.Time
	haveDate  bool
	position  *broker.Position
	entry     signals.Record
	lastCross indicators.CrossEvent
}

func New(opts Options) (*Agent, error) {
	if opts.Instrument == "" {
		return nil, errors.New("agent: instrument is required")
	}
	if opts.Broker == nil {
		return nil, errors.New("agent: broker is required")
	}
	if opts.Mode == nil {
		return nil, errors.New("agent: mode is required")
	}

	entry, err := ParseEntryPolicy(string(opts.Entry))
	if err != nil {
		return nil, err
	}

	units := opts.Units
	if units == 0 {
		units = DefaultUnits
	}
	if units < 0 {
		return nil, fmt.Errorf("agent: units must be positive, got %v", units)
	}

	loc := opts.Location
	if loc == nil {
		loc = time.UTC
	}

	log := opts.Log
	if log == nil {
		log = zap.NewNop()
	}
	log = log.With(zap.String("instrument", opts.Instrument), zap.String("mode", opts.Mode.Name()))

	calc := signals.NewCalculator(opts.Instrument, opts.Bars, log)
	if opts.Lookback > 0 {
		calc.Lookback = opts.Lookback
	}

	return &Agent{
		instrument: opts.Instrument,
		units:      units,
		loc:        loc,
		entryPol:   entry,
		broker:     opts.Broker,
		mode:       opts.Mode,
		metrics:    opts.Metrics,
		log:        log,
		calc:       calc,
		cross:      indicators.NewCross(),
	}, nil
}

// OnTick processes one tick. Only the first tick of each calendar day is
// evaluated. The day is marked as evaluated before any work is done, so a
// failed trade action is not retried until the next day. The returned error
// describes that skipped action; the agent stays usable.
func (a *Agent) OnTick(ctx context.Context, tick market.Tick) error {
	if tick.Instrument != a.instrument {
		a.metrics.Tick("ignored_instrument")
		return nil
	}

	date := market.DateOf(tick.Time, a.loc)
	if a.haveDate && date.Equal(a.lastDate) {
		a.metrics.Tick("same_day")
		return nil
	}
	a.lastDate = date
	a.haveDate = true

	a.metrics.Tick("accepted")
	a.metrics.Decision()

	rec := a.calc.Next(ctx, tick)

	ev := a.cross.Next(rec.MAFast, rec.MASlow)
	a.lastCross = ev
	if ev != indicators.CrossNone {
		a.metrics.Cross(ev.String())
		a.log.Info("moving average cross", zap.String("event", ev.String()), zap.Time("time", tick.Time))
	}

	a.log.Debug("entry signal",
		zap.Time("time", rec.Time),
		zap.Float64("price", rec.Price),
		zap.Any("ma_fast", rec.MAFast),
		zap.Any("ma_slow", rec.MASlow))

	switch a.entryPol {
	case Crossover:
		switch ev {
		case indicators.CrossUp:
			return a.Buy(ctx, rec)
		case indicators.CrossDown:
			return a.Sell(ctx, rec)
		default:
			return nil
		}
	default:
		return a.Buy(ctx, rec)
	}
}

// Buy closes any open position, then opens a long if the mode agrees.
func (a *Agent) Buy(ctx context.Context, rec signals.Record) error {
	return a.enter(ctx, rec, market.Buy)
}

// Sell closes any open position, then opens a short if the mode agrees.
func (a *Agent) Sell(ctx context.Context, rec signals.Record) error {
	return a.enter(ctx, rec, market.Sell)
}

func (a *Agent) enter(ctx context.Context, rec signals.Record, dir market.Direction) error {
	if err := a.closeOpen(ctx); err != nil {
		return err
	}

	ok, err := a.mode.ShouldTrade(ctx, rec, dir)
	if err != nil {
		if errors.Is(err, strategies.ErrPredictionUnavailable) {
			a.metrics.PredictionError()
		}
		a.metrics.TradeAction("open", "indeterminate")
		a.log.Warn("trade decision failed, skipping", zap.String("direction", dir.String()), zap.Error(err))
		return fmt.Errorf("agent: %s decision: %w", dir, err)
	}
	if !ok {
		a.metrics.TradeAction("open", "declined")
		a.log.Info("mode declined trade", zap.String("direction", dir.String()))
		return nil
	}

	return a.open(ctx, rec, dir)
}

func (a *Agent) open(ctx context.Context, rec signals.Record, dir market.Direction) error {
	if a.position != nil {
		panic(fmt.Sprintf("agent: open %s while position %s is still open", dir, a.position.ID))
	}

	pos, err := a.broker.OpenPosition(ctx, a.instrument, a.units, dir)
	if err != nil {
		a.metrics.TradeAction("open", "error")
		a.log.Error("open position failed", zap.String("direction", dir.String()), zap.Error(err))
		return fmt.Errorf("agent: open %s: %w", dir, err)
	}

	a.position = &pos
	a.entry = rec
	a.metrics.TradeAction("open", "ok")
	a.metrics.SetPositionOpen(true)
	a.log.Info("position opened",
		zap.String("position", pos.ID),
		zap.String("direction", dir.String()),
		zap.Float64("units", pos.Units),
		zap.Float64("price", pos.EntryPrice))
	return nil
}

// closeOpen closes the current position, if any. When the broker refuses,
// the position stays open. Once the broker has closed it the agent is Flat
// even if the mode fails to handle the closure.
func (a *Agent) closeOpen(ctx context.Context) error {
	if a.position == nil {
		return nil
	}

	id := a.position.ID
	pos, err := a.broker.ClosePosition(ctx, id)
	if err != nil {
		a.metrics.TradeAction("close", "error")
		a.log.Error("close position failed", zap.String("position", id), zap.Error(err))
		return fmt.Errorf("agent: close position %s: %w", id, err)
	}

	entry := a.entry
	a.position = nil
	a.entry = signals.Record{}
	a.metrics.TradeAction("close", "ok")
	a.metrics.SetPositionOpen(false)
	a.log.Info("position closed",
		zap.String("position", pos.ID),
		zap.Float64("price", pos.ExitPrice),
		zap.Float64("profit_or_loss", pos.ProfitOrLoss))

	if err := a.mode.OnPositionClosed(ctx, entry, pos); err != nil {
		a.log.Error("position close handling failed", zap.String("position", pos.ID), zap.Error(err))
		return fmt.Errorf("agent: after closing %s: %w", pos.ID, err)
	}
	return nil
}
