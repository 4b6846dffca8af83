// Package store persists a finished backtest run to SQLite: the fill log and
// the equity curve. Events are buffered in memory during the run and written
// in one transaction by Flush, keeping I/O out of the event loop.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite" // Pure-Go SQLite driver.

	"github.com/linqiao-quant/ashare/pkg/common"
)

const schema = `
CREATE TABLE IF NOT EXISTS fills (
	id            INTEGER PRIMARY KEY AUTOINCREMENT,
	run_id        TEXT    NOT NULL,
	order_tid     TEXT    NOT NULL,
	symbol        TEXT    NOT NULL,
	side          TEXT    NOT NULL,
	price         TEXT    NOT NULL,
	quantity      INTEGER NOT NULL,
	commission    TEXT    NOT NULL,
	stamp_duty    TEXT    NOT NULL,
	realized_pnl  TEXT    NOT NULL,
	ts            TIMESTAMP NOT NULL
);
CREATE TABLE IF NOT EXISTS equity_curve (
	id     INTEGER PRIMARY KEY AUTOINCREMENT,
	run_id TEXT      NOT NULL,
	ts     TIMESTAMP NOT NULL,
	equity TEXT      NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_fills_run ON fills(run_id, ts);
CREATE INDEX IF NOT EXISTS idx_equity_run ON equity_curve(run_id, ts);
`

// RunStore buffers fills and equity snapshots for one backtest run. Not safe
// for concurrent use; it lives on the bus dispatch goroutine like every other
// handler.
type RunStore struct {
	db    *sql.DB
	runID string

	fills    []common.Fill
	equities []common.Equity
}

func NewRunStore(dbPath, runID string) (*RunStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("unable to open sqlite %q: %w", dbPath, err)
	}
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("unable to apply schema: %w", err)
	}
	return &RunStore{db: db, runID: runID}, nil
}

func (s *RunStore) Close() error {
	return s.db.Close()
}

func (s *RunStore) OnOrderFilled(_ context.Context, fill common.Fill) {
	s.fills = append(s.fills, fill)
}

func (s *RunStore) OnEquity(_ context.Context, equity common.Equity) {
	s.equities = append(s.equities, equity)
}

// Flush writes everything buffered so far in a single transaction and clears
// the buffers.
func (s *RunStore) Flush(ctx context.Context) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("unable to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	for _, fill := range s.fills {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO fills (run_id, order_tid, symbol, side, price, quantity, commission, stamp_duty, realized_pnl, ts)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			s.runID,
			fmt.Sprintf("%d", fill.OrderTraceID),
			fill.Symbol,
			fill.Side.String(),
			fill.Price.String(),
			fill.Quantity,
			fill.Commission.String(),
			fill.StampDuty.String(),
			fill.RealizedPnL.String(),
			fill.TimeStamp,
		); err != nil {
			return fmt.Errorf("unable to insert fill: %w", err)
		}
	}

	for _, equity := range s.equities {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO equity_curve (run_id, ts, equity) VALUES (?, ?, ?)`,
			s.runID, equity.TimeStamp, equity.Value.String(),
		); err != nil {
			return fmt.Errorf("unable to insert equity snapshot: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("unable to commit: %w", err)
	}

	s.fills = nil
	s.equities = nil
	return nil
}

// StoredFill is the persisted shape of a fill, with decimals kept as text.
type StoredFill struct {
	OrderTraceID string
	Symbol       string
	Side         string
	Price        string
	Quantity     int64
	Commission   string
	StampDuty    string
	RealizedPnL  string
	TimeStamp    time.Time
}

// Fills reads back the run's fill log in time order.
func (s *RunStore) Fills(ctx context.Context) ([]StoredFill, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT order_tid, symbol, side, price, quantity, commission, stamp_duty, realized_pnl, ts
		 FROM fills WHERE run_id = ? ORDER BY ts, id`, s.runID)
	if err != nil {
		return nil, fmt.Errorf("unable to query fills: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var fills []StoredFill
	for rows.Next() {
		var f StoredFill
		if err := rows.Scan(&f.OrderTraceID, &f.Symbol, &f.Side, &f.Price, &f.Quantity,
			&f.Commission, &f.StampDuty, &f.RealizedPnL, &f.TimeStamp); err != nil {
			return nil, fmt.Errorf("unable to scan fill: %w", err)
		}
		fills = append(fills, f)
	}
	return fills, rows.Err()
}

// EquityCurve reads back the run's equity snapshots in time order.
func (s *RunStore) EquityCurve(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT equity FROM equity_curve WHERE run_id = ? ORDER BY ts, id`, s.runID)
	if err != nil {
		return nil, fmt.Errorf("unable to query equity curve: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var values []string
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return nil, fmt.Errorf("unable to scan equity snapshot: %w", err)
		}
		values = append(values, v)
	}
	return values, rows.Err()
}
