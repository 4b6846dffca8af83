// Package duckdb reads daily bar archives from a DuckDB database. One table
// per instrument, named <symbol>_bars, sorted by day.
package duckdb

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/marcboeker/go-duckdb"

	"github.com/linqiao-quant/ashare/pkg/common"
	"github.com/linqiao-quant/ashare/pkg/utility"
	"github.com/linqiao-quant/ashare/pkg/utility/fixed"
)

const readerComponentName = "data.duckdb.reader"

type Reader struct {
	dataSourceName string
	db             *sql.DB
}

func NewReader(dataSourceName string) *Reader {
	return &Reader{
		dataSourceName: dataSourceName,
	}
}

func (r *Reader) Connect() error {
	db, err := sql.Open("duckdb", r.dataSourceName)
	if err != nil {
		return fmt.Errorf("unable to open duckdb %q: %w", r.dataSourceName, err)
	}
	r.db = db
	return nil
}

func (r *Reader) Close() {
	_ = r.db.Close()
}

// LoadBars streams the instrument's bars in [from, to] through handler in day
// order. A handler error stops the scan and is returned to the caller.
func (r *Reader) LoadBars(ctx context.Context, symbol string, from, to time.Time, handler func(bar common.Bar) error) error {

	query := fmt.Sprintf(`SELECT day, open, high, low, close, volume FROM %s_bars WHERE day BETWEEN ? AND ? ORDER BY day`, symbol)

	rows, err := r.db.QueryContext(ctx, query, from, to)
	if err != nil {
		return fmt.Errorf("error preparing query: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	for rows.Next() {
		var day time.Time
		var open, high, low, close, volume float64

		if err := rows.Scan(&day, &open, &high, &low, &close, &volume); err != nil {
			return fmt.Errorf("error scanning row: %w", err)
		}

		bar := common.Bar{
			Source:      readerComponentName,
			Symbol:      symbol,
			ExecutionId: utility.GetExecutionID(),
			TraceID:     utility.CreateTraceID(),
			Day:         day.UTC(),
			Open:        fixed.FromFloat64(open),
			High:        fixed.FromFloat64(high),
			Low:         fixed.FromFloat64(low),
			Close:       fixed.FromFloat64(close),
			Volume:      fixed.FromFloat64(volume),
		}
		if err := handler(bar); err != nil {
			return fmt.Errorf("error processing bar: %w", err)
		}
	}

	if err := rows.Err(); err != nil {
		return fmt.Errorf("error scanning rows: %w", err)
	}

	return nil
}
