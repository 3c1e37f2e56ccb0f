package indicators

import (
	"fmt"

	"github.com/moznion/go-optional"
)

// MovingAverage is a streaming simple moving average backed by a fixed
// ring buffer and a running sum.
type MovingAverage struct {
	period int
	buf    []float64
	next   int
	count  int
	sum    float64
}

// NewMovingAverage panics on a non-positive period.
func NewMovingAverage(period int) *MovingAverage {
	if period <= 0 {
		panic("moving average period must be > 0")
	}
	return &MovingAverage{
		period: period,
		buf:    make([]float64, period),
	}
}

func (m *MovingAverage) Name() string { return fmt.Sprintf("MA(%d)", m.period) }
func (m *MovingAverage) Warmup() int  { return m.period }
func (m *MovingAverage) Ready() bool  { return m.count >= m.period }

func (m *MovingAverage) Observe(x float64) optional.Option[float64] {
	if m.count == m.period {
		m.sum -= m.buf[m.next]
	} else {
		m.count++
	}
	m.buf[m.next] = x
	m.sum += x
	m.next = (m.next + 1) % m.period

	if !m.Ready() {
		return optional.None[float64]()
	}
	return optional.Some(m.sum / float64(m.period))
}
