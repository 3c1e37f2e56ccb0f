// Package indicators provides streaming technical indicators.
//
// Every primitive consumes exactly one sample per Observe call, in time
// order, and reports optional.None until it has seen enough history. No
// indicator ever reports a placeholder zero while warming up.
package indicators

import "github.com/moznion/go-optional"

// Indicator is the metadata shared by all primitives.
type Indicator interface {
	// Name returns a stable identifier like "MA(10)" or "RSI(9)".
	Name() string

	// Warmup returns how many samples are needed before Ready() is true.
	Warmup() int

	// Ready reports whether the last Observe produced a value.
	Ready() bool
}

// Series is an Indicator producing one scalar per sample.
type Series interface {
	Indicator
	Observe(x float64) optional.Option[float64]
}

var (
	_ Series    = (*MovingAverage)(nil)
	_ Series    = (*EMA)(nil)
	_ Series    = (*Slope)(nil)
	_ Series    = (*RSI)(nil)
	_ Indicator = (*MACD)(nil)
)
