package market

import (
	"fmt"
	"strings"
)

// Direction is the side of a position.
type Direction string

const (
	Buy  Direction = "buy"
	Sell Direction = "sell"
)

// ParseDirection accepts "buy"/"long" and "sell"/"short", case-insensitive.
func ParseDirection(s string) (Direction, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "buy", "long":
		return Buy, nil
	case "sell", "short":
		return Sell, nil
	default:
		return "", fmt.Errorf("unknown direction %q (want buy|sell)", s)
	}
}

// Sign returns +1 for Buy and -1 for Sell.
func (d Direction) Sign() float64 {
	if d == Sell {
		return -1
	}
	return 1
}

func (d Direction) Valid() bool {
	return d == Buy || d == Sell
}

func (d Direction) String() string { return string(d) }
