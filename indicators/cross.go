package indicators

import "github.com/moznion/go-optional"

// CrossEvent is the edge reported by Cross.
type CrossEvent int

const (
	CrossNone CrossEvent = iota
	CrossUp
	CrossDown
)

func (e CrossEvent) String() string {
	switch e {
	case CrossUp:
		return "cross-up"
	case CrossDown:
		return "cross-down"
	default:
		return "none"
	}
}

// Cross detects a leading series crossing a lagging one.
//   - up:   fast-slow goes from <= 0 to > 0
//   - down: fast-slow goes from >= 0 to < 0
//
// While either input is absent the detector forgets the previous sign and
// reports CrossNone.
type Cross struct {
	lastDiff     float64
	haveLastDiff bool
}

func NewCross() *Cross {
	return &Cross{}
}

func (c *Cross) Next(fast, slow optional.Option[float64]) CrossEvent {
	if fast.IsNone() || slow.IsNone() {
		c.haveLastDiff = false
		return CrossNone
	}

	diff := fast.Unwrap() - slow.Unwrap()
	if !c.haveLastDiff {
		c.lastDiff = diff
		c.haveLastDiff = true
		return CrossNone
	}

	prev := c.lastDiff
	c.lastDiff = diff

	switch {
	case prev <= 0 && diff > 0:
		return CrossUp
	case prev >= 0 && diff < 0:
		return CrossDown
	default:
		return CrossNone
	}
}

// Known reports whether the detector has a previous sign to compare with.
func (c *Cross) Known() bool {
	return c.haveLastDiff
}
