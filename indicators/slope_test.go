package indicators

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSlopeKnownWindow(t *testing.T) {
	s := NewSlope(3)
	assert.Equal(t, "Slope(3)", s.Name())

	assert.True(t, s.Observe(1).IsNone())
	assert.True(t, s.Observe(2).IsNone())

	got := s.Observe(4)
	require.True(t, got.IsSome())
	assert.InDelta(t, 1.5, got.Unwrap(), 1e-9)

	// window slides to 2,4,7
	assert.InDelta(t, 2.5, s.Observe(7).Unwrap(), 1e-9)
}

func TestSlopeOfLine(t *testing.T) {
	for _, period := range []int{2, 5, 10, 25, 50} {
		s := NewSlope(period)
		var last float64
		for i := 0; i < period*2; i++ {
			v := s.Observe(3 + 2*float64(i))
			if i < period-1 {
				assert.True(t, v.IsNone())
				continue
			}
			last = v.Unwrap()
			assert.InDelta(t, 2.0, last, 1e-9, "period %d", period)
		}
	}
}

func TestSlopeFallingSeriesIsNegative(t *testing.T) {
	s := NewSlope(4)
	var got float64
	for _, v := range []float64{10, 9, 8.5, 7, 6} {
		if o := s.Observe(v); o.IsSome() {
			got = o.Unwrap()
		}
	}
	assert.Less(t, got, 0.0)
}

func TestSlopeBadPeriod(t *testing.T) {
	assert.Panics(t, func() { NewSlope(1) })
}
