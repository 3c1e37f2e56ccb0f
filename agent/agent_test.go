package agent

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/rustyeddy/signaltrader/broker"
	"github.com/rustyeddy/signaltrader/indicators"
	"github.com/rustyeddy/signaltrader/journal"
	"github.com/rustyeddy/signaltrader/market"
	"github.com/rustyeddy/signaltrader/mocks"
	"github.com/rustyeddy/signaltrader/predict"
	"github.com/rustyeddy/signaltrader/signals"
	"github.com/rustyeddy/signaltrader/sim"
	"github.com/rustyeddy/signaltrader/strategies"
)

const instrument = "USD_JPY"

var day1 = time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)

func dayTick(day int, hour int, price float64) market.Tick {
	return market.Tick{
		Instrument: instrument,
		Time:       day1.AddDate(0, 0, day-1).Add(time.Duration(hour-9) * time.Hour),
		Bid:        price,
		Ask:        price + 0.02,
	}
}

// dailyBars returns n daily bars ending the day before day1.
func dailyBars(n int, closeAt func(i int) float64) []market.Bar {
	bars := make([]market.Bar, n)
	for i := range bars {
		c := closeAt(i)
		bars[i] = market.Bar{
			Time:  day1.AddDate(0, 0, i-n),
			Open:  c,
			High:  c,
			Low:   c,
			Close: c,
		}
	}
	return bars
}

func risingBars() []market.Bar {
	return dailyBars(60, func(i int) float64 { return 100 + float64(i)*0.1 })
}

func openPos(id string, dir market.Direction) broker.Position {
	return broker.Position{ID: id, Instrument: instrument, Units: DefaultUnits, Direction: dir, EntryPrice: 106, OpenedAt: day1}
}

func closedPos(id string, dir market.Direction) broker.Position {
	p := openPos(id, dir)
	p.ExitPrice = 106.1
	p.ClosedAt = day1.Add(24 * time.Hour)
	p.ProfitOrLoss = 1000
	p.Closed = true
	return p
}

func expectBars(ctrl *gomock.Controller, bars []market.Bar) *mocks.MockBarSource {
	src := mocks.NewMockBarSource(ctrl)
	src.EXPECT().
		RetrieveBars(gomock.Any(), instrument, market.Daily, day1.Add(-signals.DefaultLookback), day1).
		Return(bars, nil).
		Times(1)
	return src
}

func newAgent(t *testing.T, opts Options) *Agent {
	t.Helper()
	opts.Instrument = instrument
	a, err := New(opts)
	require.NoError(t, err)
	return a
}

func TestEndToEndCollectMode(t *testing.T) {
	ctrl := gomock.NewController(t)
	ctx := context.Background()

	b := mocks.NewMockBroker(ctrl)
	units := float64(DefaultUnits)
	gomock.InOrder(
		b.EXPECT().OpenPosition(gomock.Any(), instrument, units, market.Buy).Return(openPos("P1", market.Buy), nil),
		b.EXPECT().ClosePosition(gomock.Any(), "P1").Return(closedPos("P1", market.Buy), nil),
		b.EXPECT().OpenPosition(gomock.Any(), instrument, units, market.Buy).Return(openPos("P2", market.Buy), nil),
		b.EXPECT().ClosePosition(gomock.Any(), "P2").Return(closedPos("P2", market.Buy), nil),
		b.EXPECT().OpenPosition(gomock.Any(), instrument, units, market.Buy).Return(openPos("P3", market.Buy), nil),
	)

	j := mocks.NewMockJournal(ctrl)
	var recorded []journal.TradeRecord
	j.EXPECT().RecordTrade(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, r journal.TradeRecord) error {
			recorded = append(recorded, r)
			return nil
		}).
		Times(2)

	mode, err := strategies.New(strategies.Collect, strategies.Deps{Journal: j})
	require.NoError(t, err)

	a := newAgent(t, Options{Bars: expectBars(ctrl, risingBars()), Broker: b, Mode: mode})

	ticks := []market.Tick{
		dayTick(1, 9, 106.0),
		dayTick(1, 15, 106.05), // same day, ignored
		dayTick(2, 9, 106.1),
		dayTick(3, 9, 106.2),
	}
	for _, tk := range ticks {
		require.NoError(t, a.OnTick(ctx, tk))
	}

	require.Len(t, recorded, 2)
	assert.Equal(t, "P1", recorded[0].PositionID)
	assert.Equal(t, "P2", recorded[1].PositionID)
	assert.True(t, recorded[0].RSI.IsSome())
	assert.True(t, recorded[0].MACDDifference.IsSome())
	assert.True(t, recorded[0].Slope50.IsNone())
	assert.Equal(t, 106.0, recorded[0].EntryPrice)

	st := a.Snapshot()
	assert.True(t, st.Warm)
	require.True(t, st.Open())
	assert.Equal(t, "P3", st.Position.ID)
	assert.Equal(t, dayTick(3, 9, 0).Time, st.Entry.Time)
	assert.Equal(t, market.DateOf(dayTick(3, 9, 0).Time, time.UTC), st.LastDate)
}

func TestIgnoresOtherInstruments(t *testing.T) {
	ctrl := gomock.NewController(t)
	b := mocks.NewMockBroker(ctrl)

	a := newAgent(t, Options{Broker: b, Mode: strategies.TestMode{}})

	tk := dayTick(1, 9, 106)
	tk.Instrument = "EUR_USD"
	require.NoError(t, a.OnTick(context.Background(), tk))

	st := a.Snapshot()
	assert.False(t, st.HaveDate)
	assert.False(t, st.Warm)
}

func TestFailedOpenStaysFlatAndSkipsDay(t *testing.T) {
	ctrl := gomock.NewController(t)
	ctx := context.Background()

	b := mocks.NewMockBroker(ctrl)
	gomock.InOrder(
		b.EXPECT().OpenPosition(gomock.Any(), instrument, gomock.Any(), market.Buy).Return(broker.Position{}, errors.New("market closed")),
		b.EXPECT().OpenPosition(gomock.Any(), instrument, gomock.Any(), market.Buy).Return(openPos("P1", market.Buy), nil),
	)

	a := newAgent(t, Options{Broker: b, Mode: strategies.TestMode{}})

	err := a.OnTick(ctx, dayTick(1, 9, 106))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "market closed")
	assert.False(t, a.Snapshot().Open())

	// a later tick on the same day is not a retry
	require.NoError(t, a.OnTick(ctx, dayTick(1, 10, 106)))
	assert.False(t, a.Snapshot().Open())

	require.NoError(t, a.OnTick(ctx, dayTick(2, 9, 106)))
	assert.Equal(t, "P1", a.Snapshot().Position.ID)
}

func TestFailedCloseKeepsPositionOpen(t *testing.T) {
	ctrl := gomock.NewController(t)
	ctx := context.Background()

	b := mocks.NewMockBroker(ctrl)
	gomock.InOrder(
		b.EXPECT().OpenPosition(gomock.Any(), instrument, gomock.Any(), market.Buy).Return(openPos("P1", market.Buy), nil),
		b.EXPECT().ClosePosition(gomock.Any(), "P1").Return(broker.Position{}, errors.New("timeout")),
		b.EXPECT().ClosePosition(gomock.Any(), "P1").Return(closedPos("P1", market.Buy), nil),
		b.EXPECT().OpenPosition(gomock.Any(), instrument, gomock.Any(), market.Buy).Return(openPos("P2", market.Buy), nil),
	)

	a := newAgent(t, Options{Broker: b, Mode: strategies.TestMode{}})

	require.NoError(t, a.OnTick(ctx, dayTick(1, 9, 106)))

	err := a.OnTick(ctx, dayTick(2, 9, 106))
	require.Error(t, err)
	require.True(t, a.Snapshot().Open())
	assert.Equal(t, "P1", a.Snapshot().Position.ID)

	require.NoError(t, a.OnTick(ctx, dayTick(3, 9, 106)))
	assert.Equal(t, "P2", a.Snapshot().Position.ID)
}

func TestJournalFailureLeavesAgentFlat(t *testing.T) {
	ctrl := gomock.NewController(t)
	ctx := context.Background()

	b := mocks.NewMockBroker(ctrl)
	gomock.InOrder(
		b.EXPECT().OpenPosition(gomock.Any(), instrument, gomock.Any(), market.Buy).Return(openPos("P1", market.Buy), nil),
		b.EXPECT().ClosePosition(gomock.Any(), "P1").Return(closedPos("P1", market.Buy), nil),
	)

	j := mocks.NewMockJournal(ctrl)
	j.EXPECT().RecordTrade(gomock.Any(), gomock.Any()).Return(errors.New("disk full"))

	mode, err := strategies.New(strategies.Collect, strategies.Deps{Journal: j})
	require.NoError(t, err)

	a := newAgent(t, Options{Broker: b, Mode: mode})

	require.NoError(t, a.OnTick(ctx, dayTick(1, 9, 106)))
	require.Error(t, a.OnTick(ctx, dayTick(2, 9, 106)))
	assert.False(t, a.Snapshot().Open())
}

func TestPredictModeOutcomes(t *testing.T) {
	ctrl := gomock.NewController(t)
	ctx := context.Background()

	p := mocks.NewMockPredictor(ctrl)
	gomock.InOrder(
		p.EXPECT().Predict(gomock.Any(), gomock.Any()).Return(predict.Verdict(""), errors.New("connection refused")),
		p.EXPECT().Predict(gomock.Any(), gomock.Any()).Return(predict.Verdict("down"), nil),
		p.EXPECT().Predict(gomock.Any(), gomock.Any()).Return(predict.VerdictUp, nil),
	)

	b := mocks.NewMockBroker(ctrl)
	b.EXPECT().OpenPosition(gomock.Any(), instrument, gomock.Any(), market.Buy).Return(openPos("P1", market.Buy), nil)

	mode, err := strategies.New(strategies.Trade, strategies.Deps{Predictor: p})
	require.NoError(t, err)

	a := newAgent(t, Options{Broker: b, Mode: mode})

	err = a.OnTick(ctx, dayTick(1, 9, 106))
	require.Error(t, err)
	assert.ErrorIs(t, err, strategies.ErrPredictionUnavailable)
	assert.False(t, a.Snapshot().Open())

	require.NoError(t, a.OnTick(ctx, dayTick(2, 9, 106)))
	assert.False(t, a.Snapshot().Open())

	require.NoError(t, a.OnTick(ctx, dayTick(3, 9, 106)))
	assert.True(t, a.Snapshot().Open())
}

func TestSellPath(t *testing.T) {
	ctrl := gomock.NewController(t)
	ctx := context.Background()

	b := mocks.NewMockBroker(ctrl)
	gomock.InOrder(
		b.EXPECT().OpenPosition(gomock.Any(), instrument, gomock.Any(), market.Sell).Return(openPos("P1", market.Sell), nil),
		b.EXPECT().ClosePosition(gomock.Any(), "P1").Return(closedPos("P1", market.Sell), nil),
		b.EXPECT().OpenPosition(gomock.Any(), instrument, gomock.Any(), market.Buy).Return(openPos("P2", market.Buy), nil),
	)

	a := newAgent(t, Options{Broker: b, Mode: strategies.TestMode{}})
	rec := signals.Record{Time: day1, Price: 106}

	require.NoError(t, a.Sell(ctx, rec))
	assert.Equal(t, market.Sell, a.Snapshot().Position.Direction)

	require.NoError(t, a.Buy(ctx, rec))
	assert.Equal(t, market.Buy, a.Snapshot().Position.Direction)
}

func TestCrossoverEntryPolicy(t *testing.T) {
	ctrl := gomock.NewController(t)
	ctx := context.Background()

	falling := dailyBars(60, func(i int) float64 { return 200 - float64(i) })

	b := mocks.NewMockBroker(ctrl)
	gomock.InOrder(
		b.EXPECT().OpenPosition(gomock.Any(), instrument, gomock.Any(), market.Buy).Return(openPos("P1", market.Buy), nil),
		b.EXPECT().ClosePosition(gomock.Any(), "P1").Return(closedPos("P1", market.Buy), nil),
		b.EXPECT().OpenPosition(gomock.Any(), instrument, gomock.Any(), market.Sell).Return(openPos("P2", market.Sell), nil),
	)

	a := newAgent(t, Options{
		Bars:   expectBars(ctrl, falling),
		Broker: b,
		Mode:   strategies.TestMode{},
		Entry:  Crossover,
	})

	// continues the fall: detector primed, no event
	require.NoError(t, a.OnTick(ctx, dayTick(1, 9, 140)))
	assert.False(t, a.Snapshot().Open())
	assert.Equal(t, indicators.CrossNone, a.Snapshot().LastCross)

	require.NoError(t, a.OnTick(ctx, dayTick(2, 9, 200)))
	assert.Equal(t, indicators.CrossUp, a.Snapshot().LastCross)
	assert.Equal(t, market.Buy, a.Snapshot().Position.Direction)

	require.NoError(t, a.OnTick(ctx, dayTick(3, 9, 50)))
	assert.Equal(t, indicators.CrossDown, a.Snapshot().LastCross)
	assert.Equal(t, market.Sell, a.Snapshot().Position.Direction)
}

func TestOpenWhileOpenPanics(t *testing.T) {
	ctrl := gomock.NewController(t)
	a := newAgent(t, Options{Broker: mocks.NewMockBroker(ctrl), Mode: strategies.TestMode{}})

	p := openPos("P1", market.Buy)
	a.position = &p

	assert.Panics(t, func() {
		_ = a.open(context.Background(), signals.Record{}, market.Buy)
	})
}

func TestNewValidatesOptions(t *testing.T) {
	ctrl := gomock.NewController(t)
	b := mocks.NewMockBroker(ctrl)

	_, err := New(Options{Broker: b, Mode: strategies.TestMode{}})
	assert.Error(t, err)

	_, err = New(Options{Instrument: instrument, Mode: strategies.TestMode{}})
	assert.Error(t, err)

	_, err = New(Options{Instrument: instrument, Broker: b})
	assert.Error(t, err)

	_, err = New(Options{Instrument: instrument, Broker: b, Mode: strategies.TestMode{}, Entry: "sometimes"})
	assert.ErrorIs(t, err, ErrUnknownEntryPolicy)

	_, err = New(Options{Instrument: instrument, Broker: b, Mode: strategies.TestMode{}, Units: -1})
	assert.Error(t, err)
}

func TestParseEntryPolicy(t *testing.T) {
	p, err := ParseEntryPolicy("")
	require.NoError(t, err)
	assert.Equal(t, AlwaysBuy, p)

	p, err = ParseEntryPolicy("Crossover")
	require.NoError(t, err)
	assert.Equal(t, Crossover, p)
}

func TestPaperBrokerWithSQLiteJournal(t *testing.T) {
	ctx := context.Background()

	eng := sim.NewEngine(sim.Account{ID: "paper", Currency: "JPY", Balance: 1_000_000}, nil)

	j, err := journal.NewSQLite(filepath.Join(t.TempDir(), "trades.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = j.Close() })

	mode, err := strategies.New(strategies.Collect, strategies.Deps{Journal: j})
	require.NoError(t, err)

	a := newAgent(t, Options{Broker: eng, Mode: mode})

	for day, price := range []float64{106.0, 106.5, 107.0} {
		tk := dayTick(day+1, 9, price)
		eng.UpdatePrice(tk)
		require.NoError(t, a.OnTick(ctx, tk))
	}

	trades, err := j.ListTrades(ctx, journal.Filter{})
	require.NoError(t, err)
	require.Len(t, trades, 2)

	// bought at ask (bid+0.02), sold at the next day's bid
	assert.InDelta(t, (106.5-106.02)*DefaultUnits, trades[0].ProfitOrLoss, 1e-6)
	assert.InDelta(t, (107.0-106.52)*DefaultUnits, trades[1].ProfitOrLoss, 1e-6)
	assert.InDelta(t, 1_000_000+trades[0].ProfitOrLoss+trades[1].ProfitOrLoss, eng.Account().Balance, 1e-6)
	assert.True(t, a.Snapshot().Open())
}
