package indicators

import (
	"fmt"

	"github.com/moznion/go-optional"
)

// RSI calculates the Relative Strength Index using Wilder's smoothing.
// The first value is produced after period+1 samples (period deltas).
type RSI struct {
	period    int
	count     int
	prevClose float64
	avgGain   float64
	avgLoss   float64
}

func NewRSI(period int) *RSI {
	if period <= 0 {
		panic("RSI period must be > 0")
	}
	return &RSI{period: period}
}

func (r *RSI) Name() string { return fmt.Sprintf("RSI(%d)", r.period) }
func (r *RSI) Warmup() int  { return r.period + 1 }
func (r *RSI) Ready() bool  { return r.count > r.period }

func (r *RSI) Observe(x float64) optional.Option[float64] {
	r.count++
	if r.count == 1 {
		r.prevClose = x
		return optional.None[float64]()
	}

	delta := x - r.prevClose
	r.prevClose = x

	gain, loss := 0.0, 0.0
	if delta > 0 {
		gain = delta
	} else {
		loss = -delta
	}

	if r.count <= r.period+1 {
		r.avgGain += gain
		r.avgLoss += loss
		if r.count < r.period+1 {
			return optional.None[float64]()
		}
		r.avgGain /= float64(r.period)
		r.avgLoss /= float64(r.period)
		return optional.Some(r.value())
	}

	p := float64(r.period)
	r.avgGain = (r.avgGain*(p-1) + gain) / p
	r.avgLoss = (r.avgLoss*(p-1) + loss) / p
	return optional.Some(r.value())
}

func (r *RSI) value() float64 {
	switch {
	case r.avgGain == 0 && r.avgLoss == 0:
		return 50
	case r.avgLoss == 0:
		return 100
	}
	rs := r.avgGain / r.avgLoss
	return 100 - 100/(1+rs)
}
