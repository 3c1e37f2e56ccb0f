package indicators

import (
	"fmt"

	"github.com/moznion/go-optional"
)

// Slope reports the least-squares regression slope of its last period
// inputs, with x running 0..period-1 from oldest to newest. It is meant to
// be fed another indicator's output, e.g. the slope of MA(25) over 25 days.
type Slope struct {
	period int
	buf    []float64
	next   int
	count  int

	sumX  float64
	denom float64
}

// NewSlope panics unless period >= 2.
func NewSlope(period int) *Slope {
	if period < 2 {
		panic("slope period must be >= 2")
	}

	n := float64(period)
	sumX := n * (n - 1) / 2
	sumXX := (n - 1) * n * (2*n - 1) / 6

	return &Slope{
		period: period,
		buf:    make([]float64, period),
		sumX:   sumX,
		denom:  n*sumXX - sumX*sumX,
	}
}

func (s *Slope) Name() string { return fmt.Sprintf("Slope(%d)", s.period) }
func (s *Slope) Warmup() int  { return s.period }
func (s *Slope) Ready() bool  { return s.count >= s.period }

func (s *Slope) Observe(y float64) optional.Option[float64] {
	s.buf[s.next] = y
	s.next = (s.next + 1) % s.period
	if s.count < s.period {
		s.count++
	}
	if !s.Ready() {
		return optional.None[float64]()
	}

	// s.next now points at the oldest sample.
	var sumY, sumXY float64
	for i := 0; i < s.period; i++ {
		v := s.buf[(s.next+i)%s.period]
		sumY += v
		sumXY += float64(i) * v
	}

	n := float64(s.period)
	return optional.Some((n*sumXY - s.sumX*sumY) / s.denom)
}
