package journal

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"

	"github.com/rustyeddy/signaltrader/market"
)

var ErrTradeNotFound = errors.New("trade not found")

// Filter narrows ListTrades. Zero values are ignored; To is exclusive.
type Filter struct {
	Instrument string
	From       time.Time
	To         time.Time
	Limit      int
}

// GetTrade returns a single trade record by ID.
func (j *SQLite) GetTrade(ctx context.Context, tradeID string) (TradeRecord, error) {
	query, args, err := sq.Select(tradeColumns...).
		From("trades").
		Where(sq.Eq{"id": tradeID}).
		ToSql()
	if err != nil {
		return TradeRecord{}, err
	}

	rec, err := scanTrade(j.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return TradeRecord{}, fmt.Errorf("%w: %q", ErrTradeNotFound, tradeID)
	}
	return rec, err
}

// ListTrades returns trades ordered by exit time.
func (j *SQLite) ListTrades(ctx context.Context, f Filter) ([]TradeRecord, error) {
	q := sq.Select(tradeColumns...).From("trades").OrderBy("exited_at ASC", "id ASC")
	if f.Instrument != "" {
		q = q.Where(sq.Eq{"instrument": f.Instrument})
	}
	if !f.From.IsZero() {
		q = q.Where(sq.GtOrEq{"exited_at": f.From.UTC()})
	}
	if !f.To.IsZero() {
		q = q.Where(sq.Lt{"exited_at": f.To.UTC()})
	}
	if f.Limit > 0 {
		q = q.Limit(uint64(f.Limit))
	}

	query, args, err := q.ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := j.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []TradeRecord
	for rows.Next() {
		rec, err := scanTrade(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanTrade(s scanner) (TradeRecord, error) {
	var (
		rec       TradeRecord
		direction string

		macd, rsi                 sql.NullFloat64
		slope10, slope25, slope50 sql.NullFloat64
		est10, est25, est50       sql.NullFloat64
	)

	err := s.Scan(
		&rec.ID, &rec.PositionID, &rec.Instrument, &direction, &rec.Units, &rec.EntryPrice, &rec.ExitPrice,
		&macd, &rsi, &slope10, &slope25, &slope50, &est10, &est25, &est50,
		&rec.ProfitOrLoss, &rec.EnteredAt, &rec.ExitedAt,
	)
	if err != nil {
		return TradeRecord{}, err
	}

	rec.Direction = market.Direction(direction)
	rec.MACDDifference = fromNull(macd)
	rec.RSI = fromNull(rsi)
	rec.Slope10 = fromNull(slope10)
	rec.Slope25 = fromNull(slope25)
	rec.Slope50 = fromNull(slope50)
	rec.Estrangement10 = fromNull(est10)
	rec.Estrangement25 = fromNull(est25)
	rec.Estrangement50 = fromNull(est50)
	return rec, nil
}
