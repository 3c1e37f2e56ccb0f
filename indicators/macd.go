package indicators

import (
	"fmt"

	"github.com/moznion/go-optional"
)

// MACDValue is one output of the MACD indicator.
type MACDValue struct {
	MACD   float64
	Signal float64
}

// Histogram returns MACD - Signal.
func (v MACDValue) Histogram() float64 {
	return v.MACD - v.Signal
}

// MACD tracks a fast and a slow EMA of price and a signal EMA of their
// difference. The signal line is seeded with the first MACD value, so a
// value is available as soon as the slow EMA is warm.
type MACD struct {
	fast *EMA
	slow *EMA

	signalPeriod int
	signalAlpha  float64
	signal       float64
	signalSeen   bool

	fastPeriod, slowPeriod int
}

// NewMACD panics unless 0 < fast < slow and signal > 0.
func NewMACD(fast, slow, signal int) *MACD {
	if fast <= 0 || slow <= fast || signal <= 0 {
		panic(fmt.Sprintf("bad MACD periods %d/%d/%d", fast, slow, signal))
	}
	return &MACD{
		fast:         NewEMA(fast),
		slow:         NewEMA(slow),
		signalPeriod: signal,
		signalAlpha:  2.0 / float64(signal+1),
		fastPeriod:   fast,
		slowPeriod:   slow,
	}
}

// NewStandardMACD returns MACD(12,26,9).
func NewStandardMACD() *MACD {
	return NewMACD(12, 26, 9)
}

func (m *MACD) Name() string {
	return fmt.Sprintf("MACD(%d,%d,%d)", m.fastPeriod, m.slowPeriod, m.signalPeriod)
}
func (m *MACD) Warmup() int { return m.slowPeriod }
func (m *MACD) Ready() bool { return m.signalSeen }

func (m *MACD) Observe(x float64) optional.Option[MACDValue] {
	fast := m.fast.Observe(x)
	slow := m.slow.Observe(x)
	if fast.IsNone() || slow.IsNone() {
		return optional.None[MACDValue]()
	}

	macd := fast.Unwrap() - slow.Unwrap()
	if !m.signalSeen {
		m.signal = macd
		m.signalSeen = true
	} else {
		m.signal = m.signalAlpha*macd + (1-m.signalAlpha)*m.signal
	}

	return optional.Some(MACDValue{MACD: macd, Signal: m.signal})
}
