package market

import "time"

// Granularity is the aggregation period of a bar, using OANDA's codes.
type Granularity string

const (
	Hourly Granularity = "H1"
	Daily  Granularity = "D"
)

// Bar represents OHLC data for one period. Only Close is consumed by the
// signal calculator.
type Bar struct {
	Time   time.Time
	Open   float64
	High   float64
	Low    float64
	Close  float64
	Volume float64
}
