package sim

import (
	"fmt"
	"sync"

	"github.com/rustyeddy/signaltrader/broker"
	"github.com/rustyeddy/signaltrader/market"
)

// PriceStore keeps the latest tick per instrument.
type PriceStore struct {
	mu    sync.RWMutex
	ticks map[string]market.Tick
}

func NewPriceStore() *PriceStore {
	return &PriceStore{ticks: make(map[string]market.Tick)}
}

func (ps *PriceStore) Set(t market.Tick) {
	ps.mu.Lock()
	defer ps.mu.Unlock()
	ps.ticks[t.Instrument] = t
}

func (ps *PriceStore) Get(instr string) (market.Tick, error) {
	ps.mu.RLock()
	defer ps.mu.RUnlock()
	t, ok := ps.ticks[instr]
	if !ok {
		return market.Tick{}, fmt.Errorf("%w %q", broker.ErrNoPrice, instr)
	}
	return t, nil
}
