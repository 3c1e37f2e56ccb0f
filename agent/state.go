package agent

import (
	"time"

	"github.com/rustyeddy/signaltrader/broker"
	"github.com/rustyeddy/signaltrader/indicators"
	"github.com/rustyeddy/signaltrader/signals"
)

// State is a point-in-time copy of the agent's mutable state.
type State struct {
	Warm      bool
	LastDate  time.Time
	HaveDate  bool
	Position  *broker.Position
	Entry     signals.Record
	LastCross indicators.CrossEvent
}

// Open reports whether a position is held.
func (s State) Open() bool {
	return s.Position != nil
}

func (a *Agent) Snapshot() State {
	st := State{
		Warm:      a.calc.Warm(),
		LastDate:  a.lastDate,
		HaveDate:  a.haveDate,
		LastCross: a.lastCross,
	}
	if a.position != nil {
		p := *a.position
		st.Position = &p
		st.Entry = a.entry
	}
	return st
}
