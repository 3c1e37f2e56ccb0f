package journal

import (
	"context"
	"database/sql"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	_ "github.com/mattn/go-sqlite3"
	"github.com/moznion/go-optional"
)

type SQLite struct {
	db *sql.DB
}

var _ Journal = (*SQLite)(nil)

func NewSQLite(path string) (*SQLite, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}
	// single connection serializes writers
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(Schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("journal: create schema: %w", err)
	}

	return &SQLite{db: db}, nil
}

// RecordTrade inserts t. Timestamps are stored in UTC so range queries
// compare consistently.
func (j *SQLite) RecordTrade(ctx context.Context, t TradeRecord) error {
	query, args, err := sq.Insert("trades").
		Columns(tradeColumns...).
		Values(
			t.ID, t.PositionID, t.Instrument, string(t.Direction), t.Units, t.EntryPrice, t.ExitPrice,
			nullFloat(t.MACDDifference), nullFloat(t.RSI),
			nullFloat(t.Slope10), nullFloat(t.Slope25), nullFloat(t.Slope50),
			nullFloat(t.Estrangement10), nullFloat(t.Estrangement25), nullFloat(t.Estrangement50),
			t.ProfitOrLoss, t.EnteredAt.UTC(), t.ExitedAt.UTC(),
		).
		ToSql()
	if err != nil {
		return err
	}

	if _, err := j.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("journal: insert trade %s: %w", t.ID, err)
	}
	return nil
}

func (j *SQLite) Close() error {
	return j.db.Close()
}

func nullFloat(o optional.Option[float64]) sql.NullFloat64 {
	if o.IsNone() {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: o.Unwrap(), Valid: true}
}

func fromNull(n sql.NullFloat64) optional.Option[float64] {
	if !n.Valid {
		return optional.None[float64]()
	}
	return optional.Some(n.Float64)
}
