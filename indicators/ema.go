package indicators

import (
	"fmt"

	"github.com/moznion/go-optional"
)

// EMA is a streaming exponential moving average seeded with the SMA of its
// first period samples.
type EMA struct {
	period     int
	multiplier float64
	ema        float64
	count      int
	warmupSum  float64
}

func NewEMA(period int) *EMA {
	if period <= 0 {
		panic("EMA period must be > 0")
	}
	return &EMA{
		period:     period,
		multiplier: 2.0 / float64(period+1),
	}
}

func (e *EMA) Name() string { return fmt.Sprintf("EMA(%d)", e.period) }
func (e *EMA) Warmup() int  { return e.period }
func (e *EMA) Ready() bool  { return e.count >= e.period }

func (e *EMA) Observe(x float64) optional.Option[float64] {
	if e.count < e.period {
		e.warmupSum += x
		e.count++
		if e.count < e.period {
			return optional.None[float64]()
		}
		e.ema = e.warmupSum / float64(e.period)
		return optional.Some(e.ema)
	}

	e.ema = (x-e.ema)*e.multiplier + e.ema
	return optional.Some(e.ema)
}
