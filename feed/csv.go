package feed

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/rustyeddy/signaltrader/market"
)

// CSVTicks replays canonical tick CSV rows:
//
//	time,instrument,bid,ask
//
// where time is RFC3339 or RFC3339Nano. A header row is allowed, short
// rows are skipped and ticks outside [From, To) are dropped when set.
type CSVTicks struct {
	Path string
	From time.Time
	To   time.Time
}

var _ Feed = (*CSVTicks)(nil)

func NewCSVTicks(path string) *CSVTicks {
	return &CSVTicks{Path: path}
}

func (c *CSVTicks) Run(ctx context.Context, h Handler) error {
	f, err := os.Open(c.Path)
	if err != nil {
		return err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	line := 0
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		row, err := r.Read()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
		line++

		if line == 1 && len(row) > 0 && strings.EqualFold(strings.TrimSpace(row[0]), "time") {
			continue
		}

		tick, ok, err := parseTickRow(row)
		if err != nil {
			return fmt.Errorf("feed: %s line %d: %w", c.Path, line, err)
		}
		if !ok || !inRange(tick.Time, c.From, c.To) {
			continue
		}

		if err := h(ctx, tick); err != nil {
			return err
		}
	}
}

func parseTickRow(row []string) (market.Tick, bool, error) {
	// Need at least: time,instrument,bid,ask
	if len(row) < 4 {
		return market.Tick{}, false, nil
	}

	ts := strings.TrimSpace(row[0])
	if ts == "" {
		return market.Tick{}, false, nil
	}
	t, err := parseTime(ts)
	if err != nil {
		return market.Tick{}, false, err
	}

	inst := strings.TrimSpace(row[1])
	if inst == "" {
		return market.Tick{}, false, nil
	}

	bid, err := strconv.ParseFloat(strings.TrimSpace(row[2]), 64)
	if err != nil {
		return market.Tick{}, false, fmt.Errorf("bad bid %q: %w", row[2], err)
	}
	ask, err := strconv.ParseFloat(strings.TrimSpace(row[3]), 64)
	if err != nil {
		return market.Tick{}, false, fmt.Errorf("bad ask %q: %w", row[3], err)
	}

	return market.Tick{Time: t, Instrument: inst, Bid: bid, Ask: ask}, true, nil
}

// parseTime accepts RFC3339, RFC3339Nano or a bare date.
func parseTime(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t, nil
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return time.Time{}, fmt.Errorf("bad time %q", s)
	}
	return t, nil
}

func inRange(t, from, to time.Time) bool {
	if !from.IsZero() && t.Before(from) {
		return false
	}
	if !to.IsZero() && !t.Before(to) {
		return false
	}
	return true
}
