package journal

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"sync"
	"time"

	"github.com/moznion/go-optional"
)

var csvHeader = []string{
	"id", "position_id", "instrument", "direction", "units", "entry_price", "exit_price",
	"macd_difference", "rsi", "slope_10", "slope_25", "slope_50",
	"estrangement_10", "estrangement_25", "estrangement_50",
	"profit_or_loss", "entered_at", "exited_at",
}

// CSV appends trade records to a file. Absent metrics are written as empty
// cells. The header is written only when the file is empty.
type CSV struct {
	mu sync.Mutex
	f  *os.File
	w  *csv.Writer
}

var _ Journal = (*CSV)(nil)

func NewCSV(path string) (*CSV, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, err
	}

	st, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, err
	}

	w := csv.NewWriter(f)
	if st.Size() == 0 {
		if err := w.Write(csvHeader); err != nil {
			_ = f.Close()
			return nil, err
		}
		w.Flush()
		if err := w.Error(); err != nil {
			_ = f.Close()
			return nil, err
		}
	}

	return &CSV{f: f, w: w}, nil
}

func (j *CSV) RecordTrade(_ context.Context, t TradeRecord) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	row := []string{
		t.ID,
		t.PositionID,
		t.Instrument,
		string(t.Direction),
		f(t.Units),
		f(t.EntryPrice),
		f(t.ExitPrice),
	}
	for _, nv := range t.Features.Named() {
		row = append(row, cell(nv.Value))
	}
	row = append(row,
		f(t.ProfitOrLoss),
		t.EnteredAt.UTC().Format(time.RFC3339),
		t.ExitedAt.UTC().Format(time.RFC3339),
	)

	if err := j.w.Write(row); err != nil {
		return fmt.Errorf("journal: csv write %s: %w", t.ID, err)
	}
	j.w.Flush()
	return j.w.Error()
}

func (j *CSV) Close() error {
	j.mu.Lock()
	defer j.mu.Unlock()

	j.w.Flush()
	if err := j.w.Error(); err != nil {
		_ = j.f.Close()
		return err
	}
	return j.f.Close()
}

func f(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func cell(o optional.Option[float64]) string {
	if o.IsNone() {
		return ""
	}
	return f(o.Unwrap())
}
