package sim

import (
	"github.com/shopspring/decimal"

	"github.com/rustyeddy/signaltrader/market"
)

// ProfitOrLoss returns the P/L in quote currency of units moved from entry
// to exit in direction dir.
func ProfitOrLoss(dir market.Direction, units, entry, exit float64) float64 {
	move := decimal.NewFromFloat(exit).Sub(decimal.NewFromFloat(entry))
	pl := move.Mul(decimal.NewFromFloat(units)).Mul(decimal.NewFromFloat(dir.Sign()))
	v, _ := pl.Float64()
	return v
}
