// Package signals turns a stream of ticks into signal records, warming its
// indicators up from historical bars on the first tick.
package signals

import (
	"context"
	"time"

	"github.com/moznion/go-optional"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/rustyeddy/signaltrader/indicators"
	"github.com/rustyeddy/signaltrader/market"
)

// DefaultLookback is the warm-up window requested on the first tick.
const DefaultLookback = 60 * 24 * time.Hour

// BarSource supplies historical bars for warm-up.
type BarSource interface {
	RetrieveBars(ctx context.Context, instrument string, g market.Granularity, from, to time.Time) ([]market.Bar, error)
}

// state holds every primitive. It is nil until the first tick (cold).
type state struct {
	macd *indicators.MACD
	rsi  *indicators.RSI

	ma5, ma10, ma25, ma50 *indicators.MovingAverage

	slope10, slope25, slope50 *indicators.Slope
}

func newState() *state {
	return &state{
		macd:    indicators.NewStandardMACD(),
		rsi:     indicators.NewRSI(9),
		ma5:     indicators.NewMovingAverage(5),
		ma10:    indicators.NewMovingAverage(10),
		ma25:    indicators.NewMovingAverage(25),
		ma50:    indicators.NewMovingAverage(50),
		slope10: indicators.NewSlope(10),
		slope25: indicators.NewSlope(25),
		slope50: indicators.NewSlope(50),
	}
}

// Calculator is owned by a single tick-processing goroutine and never
// reset; a restart starts cold again.
type Calculator struct {
	Instrument  string
	Bars        BarSource
	Lookback    time.Duration
	Granularity market.Granularity

	log *zap.Logger
	st  *state
}

// NewCalculator returns a cold calculator. bars may be nil, in which case
// warm-up is skipped and indicators fill from live ticks only.
func NewCalculator(instrument string, bars BarSource, log *zap.Logger) *Calculator {
	if log == nil {
		log = zap.NewNop()
	}
	return &Calculator{
		Instrument:  instrument,
		Bars:        bars,
		Lookback:    DefaultLookback,
		Granularity: market.Daily,
		log:         log,
	}
}

// Warm reports whether the primitives have been created.
func (c *Calculator) Warm() bool {
	return c.st != nil
}

// Next returns the record for tick, warming up first if this is the first
// tick seen.
func (c *Calculator) Next(ctx context.Context, tick market.Tick) Record {
	if c.st == nil {
		c.warmUp(ctx, tick.Time)
	}
	return c.observe(tick.Time, tick.Bid)
}

// warmUp creates the primitives and replays historical closes through them.
// Failures are logged; the indicators simply stay unavailable for longer.
func (c *Calculator) warmUp(ctx context.Context, now time.Time) {
	c.st = newState()
	if c.Bars == nil {
		c.log.Warn("no bar source configured, skipping warm-up",
			zap.String("instrument", c.Instrument))
		return
	}

	from := now.Add(-c.Lookback)
	bars, err := c.Bars.RetrieveBars(ctx, c.Instrument, c.Granularity, from, now)
	if err != nil {
		c.log.Warn("warm-up bars unavailable",
			zap.String("instrument", c.Instrument),
			zap.Time("from", from),
			zap.Time("to", now),
			zap.Error(err))
		return
	}
	if len(bars) == 0 {
		c.log.Warn("warm-up returned no bars",
			zap.String("instrument", c.Instrument),
			zap.Time("from", from),
			zap.Time("to", now))
		return
	}

	for _, b := range bars {
		c.observe(b.Time, b.Close)
	}
	c.log.Info("warm-up complete",
		zap.String("instrument", c.Instrument),
		zap.Int("bars", len(bars)))
}

func (c *Calculator) observe(t time.Time, price float64) Record {
	st := c.st

	macd := st.macd.Observe(price)
	ma5 := st.ma5.Observe(price)
	ma10 := st.ma10.Observe(price)
	ma25 := st.ma25.Observe(price)
	ma50 := st.ma50.Observe(price)

	rec := Record{
		Time:   t,
		Price:  price,
		MAFast: ma5,
		MASlow: ma10,
	}
	rec.RSI = st.rsi.Observe(price)
	if macd.IsSome() {
		rec.MACDDifference = optional.Some(macd.Unwrap().Histogram())
	}

	rec.Slope10 = slopeOf(st.slope10, ma10)
	rec.Slope25 = slopeOf(st.slope25, ma25)
	rec.Slope50 = slopeOf(st.slope50, ma50)

	rec.Estrangement10 = estrangementOf(price, ma10)
	rec.Estrangement25 = estrangementOf(price, ma25)
	rec.Estrangement50 = estrangementOf(price, ma50)

	return rec
}

// slopeOf only feeds the slope once its moving average is available.
func slopeOf(s *indicators.Slope, ma optional.Option[float64]) optional.Option[float64] {
	if ma.IsNone() {
		return optional.None[float64]()
	}
	return s.Observe(ma.Unwrap())
}

func estrangementOf(price float64, ma optional.Option[float64]) optional.Option[float64] {
	if ma.IsNone() || ma.Unwrap() == 0 {
		return optional.None[float64]()
	}
	return optional.Some(Estrangement(price, ma.Unwrap()))
}

// estrangementPlaces keeps tiny deviations at full float64 precision.
const estrangementPlaces = 40

// Estrangement returns the percentage deviation of price from ma:
// (price - ma) / ma * 100.
func Estrangement(price, ma float64) float64 {
	p := decimal.NewFromFloat(price)
	m := decimal.NewFromFloat(ma)
	v, _ := p.Sub(m).Mul(decimal.NewFromInt(100)).DivRound(m, estrangementPlaces).Float64()
	return v
}
