package repository

import (
	"context"
	"database/sql"
	"fmt"
	"regexp"
	"time"

	"PerfScope/internal/domain/models"
	pkgch "PerfScope/pkg/clickhouse"
	applogger "PerfScope/pkg/logger"
)

var tableNameRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*(\.[A-Za-z_][A-Za-z0-9_]*)?$`)

// CHPriceStore implements PriceProvider over a ClickHouse table of daily
// closes with columns (symbol String, date Date, close Float64).
type CHPriceStore struct {
	db    *sql.DB
	table string
	l     *applogger.Logger
}

// NewCHPriceStore creates a store reading from table.
func NewCHPriceStore(ch *pkgch.Client, table string) (*CHPriceStore, error) {
	if !tableNameRe.MatchString(table) {
		return nil, fmt.Errorf("invalid clickhouse table name %q", table)
	}
	return &CHPriceStore{db: ch.DB(), table: table, l: applogger.NewNop()}, nil
}

// SetLogger injects a structured logger.
func (s *CHPriceStore) SetLogger(l *applogger.Logger) {
	if l != nil {
		s.l = l
	}
}

// SchemaStatements returns DDL creating the backing table.
func (s *CHPriceStore) SchemaStatements() []string {
	return []string{fmt.Sprintf(`
        CREATE TABLE IF NOT EXISTS %s (
            symbol LowCardinality(String),
            date   Date,
            close  Float64
        ) ENGINE = ReplacingMergeTree
        ORDER BY (symbol, date)`, s.table)}
}

func (s *CHPriceStore) query() string {
	return fmt.Sprintf(`
        SELECT date, close
        FROM %s FINAL
        WHERE symbol = ? AND date >= ? AND date < ?
        ORDER BY date ASC`, s.table)
}

// DailyCloses returns closes for ticker in [start, end).
func (s *CHPriceStore) DailyCloses(ctx context.Context, ticker string, start, end time.Time) (models.PriceSeries, error) {
	if !end.After(start) {
		return nil, fmt.Errorf("%w: end is not after start", models.ErrInvalidRange)
	}

	rows, err := s.db.QueryContext(ctx, s.query(), ticker, start, end)
	if err != nil {
		s.l.Error("clickhouse daily_closes query error",
			applogger.String("table", s.table),
			applogger.String("ticker", ticker),
			applogger.Error(err),
		)
		return nil, fmt.Errorf("%w: clickhouse query: %v", models.ErrUpstreamFetch, err)
	}
	defer rows.Close()

	out := make(models.PriceSeries, 0, 2520)
	for rows.Next() {
		var (
			d time.Time
			v float64
		)
		if err := rows.Scan(&d, &v); err != nil {
			s.l.Error("clickhouse daily_closes scan error",
				applogger.String("table", s.table),
				applogger.String("ticker", ticker),
				applogger.Error(err),
			)
			return nil, fmt.Errorf("%w: scan close: %v", models.ErrUpstreamFetch, err)
		}
		out = append(out, models.Point{
			Date:  time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, time.UTC),
			Value: v,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: rows: %v", models.ErrUpstreamFetch, err)
	}

	if len(out) == 0 {
		return nil, fmt.Errorf("%w: %s", models.ErrNoDataAvailable, ticker)
	}
	return out, nil
}
