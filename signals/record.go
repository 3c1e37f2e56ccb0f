package signals

import (
	"time"

	"github.com/moznion/go-optional"
)

// Features are the signal fields handed to decision strategies, stored with
// trade records and sent to the prediction service. Absent metrics encode as
// JSON null.
type Features struct {
	MACDDifference optional.Option[float64] `json:"macd_difference"`
	RSI            optional.Option[float64] `json:"rsi"`
	Slope10        optional.Option[float64] `json:"slope_10"`
	Slope25        optional.Option[float64] `json:"slope_25"`
	Slope50        optional.Option[float64] `json:"slope_50"`
	Estrangement10 optional.Option[float64] `json:"estrangement_10"`
	Estrangement25 optional.Option[float64] `json:"estrangement_25"`
	Estrangement50 optional.Option[float64] `json:"estrangement_50"`
}

// Record is the calculator output for one accepted tick. MAFast and MASlow
// only feed the crossover detector and are not part of Features.
type Record struct {
	Time   time.Time                `json:"time"`
	Price  float64                  `json:"price"`
	MAFast optional.Option[float64] `json:"-"`
	MASlow optional.Option[float64] `json:"-"`

	Features
}

// Named returns the features keyed by their wire names, in a fixed order.
func (f Features) Named() []NamedValue {
	return []NamedValue{
		{"macd_difference", f.MACDDifference},
		{"rsi", f.RSI},
		{"slope_10", f.Slope10},
		{"slope_25", f.Slope25},
		{"slope_50", f.Slope50},
		{"estrangement_10", f.Estrangement10},
		{"estrangement_25", f.Estrangement25},
		{"estrangement_50", f.Estrangement50},
	}
}

type NamedValue struct {
	Name  string
	Value optional.Option[float64]
}
