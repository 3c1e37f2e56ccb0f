package feed

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/rustyeddy/signaltrader/market"
	"github.com/rustyeddy/signaltrader/signals"
)

// CSVBars serves daily bars loaded from a file with rows
//
//	time,open,high,low,close[,volume]
type CSVBars struct {
	bars []market.Bar
}

var _ signals.BarSource = (*CSVBars)(nil)

func LoadCSVBars(path string) (*CSVBars, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	bars, err := readBars(f)
	if err != nil {
		return nil, fmt.Errorf("feed: %s: %w", path, err)
	}
	return &CSVBars{bars: bars}, nil
}

func readBars(rd io.Reader) ([]market.Bar, error) {
	r := csv.NewReader(rd)
	r.FieldsPerRecord = -1

	var bars []market.Bar
	for line := 1; ; line++ {
		row, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		if len(row) < 5 {
			continue
		}
		if line == 1 && strings.EqualFold(strings.TrimSpace(row[0]), "time") {
			continue
		}

		b, err := parseBarRow(row)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		bars = append(bars, b)
	}

	sort.Slice(bars, func(i, j int) bool { return bars[i].Time.Before(bars[j].Time) })
	return bars, nil
}

func parseBarRow(row []string) (market.Bar, error) {
	t, err := parseTime(strings.TrimSpace(row[0]))
	if err != nil {
		return market.Bar{}, err
	}

	var v [5]float64
	n := 4
	if len(row) > 5 && strings.TrimSpace(row[5]) != "" {
		n = 5
	}
	for i := 0; i < n; i++ {
		x, err := strconv.ParseFloat(strings.TrimSpace(row[i+1]), 64)
		if err != nil {
			return market.Bar{}, fmt.Errorf("bad value %q: %w", row[i+1], err)
		}
		v[i] = x
	}

	return market.Bar{Time: t, Open: v[0], High: v[1], Low: v[2], Close: v[3], Volume: v[4]}, nil
}

// RetrieveBars returns bars with from <= time < to. The file holds one
// instrument, so instrument is not checked; only daily granularity is
// served.
func (c *CSVBars) RetrieveBars(_ context.Context, _ string, g market.Granularity, from, to time.Time) ([]market.Bar, error) {
	if g != market.Daily {
		return nil, fmt.Errorf("feed: csv bars only serve %s, got %s", market.Daily, g)
	}

	var out []market.Bar
	for _, b := range c.bars {
		if inRange(b.Time, from, to) {
			out = append(out, b)
		}
	}
	return out, nil
}

// WriteCSVBars writes bars in the layout LoadCSVBars reads, header first.
func WriteCSVBars(w io.Writer, bars []market.Bar) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"time", "open", "high", "low", "close", "volume"}); err != nil {
		return err
	}
	for _, b := range bars {
		row := []string{
			b.Time.UTC().Format(time.RFC3339),
			strconv.FormatFloat(b.Open, 'f', -1, 64),
			strconv.FormatFloat(b.High, 'f', -1, 64),
			strconv.FormatFloat(b.Low, 'f', -1, 64),
			strconv.FormatFloat(b.Close, 'f', -1, 64),
			strconv.FormatFloat(b.Volume, 'f', -1, 64),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
