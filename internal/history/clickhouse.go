// SPDX-License-Identifier: MIT

package history

import (
	"context"
	"fmt"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2"
	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"
	"github.com/rs/zerolog"

	"github.com/chainforge/optionsim/internal/cherr"
	"github.com/chainforge/optionsim/internal/config"
	"github.com/chainforge/optionsim/internal/log"
)

// nativeResolution is the finest bar width stored in the ohlcv table.
// Requests at or below it read rows directly instead of bucketing.
const nativeResolution = time.Minute

// Repository reads candles from the ClickHouse ohlcv table. It
// implements the simulator's historical source.
type Repository struct {
	conn   driver.Conn
	logger zerolog.Logger
}

// Connect opens and pings a ClickHouse connection from the configuration.
func Connect(ctx context.Context, cfg config.ClickHouse) (*Repository, error) {
	conn, err := clickhouse.Open(&clickhouse.Options{
		Addr: []string{cfg.Addr()},
		Auth: clickhouse.Auth{
			Database: cfg.Database,
			Username: cfg.Username,
			Password: cfg.Password,
		},
		DialTimeout: 5 * time.Second,
	})
	if err != nil {
		return nil, cherr.Wrap(cherr.KindStore, err, "clickhouse open %s", cfg.Addr())
	}
	if err := conn.Ping(ctx); err != nil {
		return nil, cherr.Wrap(cherr.KindStore, err, "clickhouse ping %s", cfg.Addr())
	}
	return &Repository{conn: conn, logger: log.WithComponent("history")}, nil
}

// NewRepository wraps an already established connection.
func NewRepository(conn driver.Conn) *Repository {
	return &Repository{conn: conn, logger: log.WithComponent("history")}
}

// Close releases the connection.
func (r *Repository) Close() error { return r.conn.Close() }

// ListSymbols returns every symbol with stored candles.
func (r *Repository) ListSymbols(ctx context.Context) ([]string, error) {
	rows, err := r.conn.Query(ctx, "SELECT DISTINCT symbol FROM ohlcv ORDER BY symbol")
	if err != nil {
		return nil, cherr.Wrap(cherr.KindStore, err, "list symbols")
	}
	defer rows.Close()
	var symbols []string
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, cherr.Wrap(cherr.KindStore, err, "scan symbol")
		}
		symbols = append(symbols, s)
	}
	return symbols, rows.Err()
}

// DateRange returns the first and last candle timestamps for a symbol.
func (r *Repository) DateRange(ctx context.Context, symbol string) (time.Time, time.Time, error) {
	var first, last time.Time
	var count uint64
	err := r.conn.QueryRow(ctx,
		"SELECT min(timestamp), max(timestamp), count() FROM ohlcv WHERE symbol = ?",
		symbol).Scan(&first, &last, &count)
	if err != nil {
		return time.Time{}, time.Time{}, cherr.Wrap(cherr.KindStore, err, "date range for %s", symbol)
	}
	if count == 0 {
		return time.Time{}, time.Time{}, cherr.NotEnoughData("no candles stored for %s", symbol)
	}
	return first, last, nil
}

// Prices returns up to limit prices of the named type bucketed at
// interval, starting at start. It satisfies the simulator's historical
// source.
func (r *Repository) Prices(ctx context.Context, symbol, priceType string, interval time.Duration, start time.Time, limit int) ([]float64, error) {
	pt, err := ParsePriceType(priceType)
	if err != nil {
		return nil, cherr.Wrap(cherr.KindInvalidState, err, "prices for %s", symbol)
	}
	return r.PricesOf(ctx, symbol, pt, interval, start, limit)
}

// PricesOf is Prices with an explicit price selector.
func (r *Repository) PricesOf(ctx context.Context, symbol string, pt PriceType, interval time.Duration, start time.Time, limit int) ([]float64, error) {
	if limit <= 0 {
		return nil, nil
	}
	query, args, bucketed := priceQuery(symbol, pt, interval, start, limit)
	rows, err := r.conn.Query(ctx, query, args...)
	if err != nil {
		return nil, cherr.Wrap(cherr.KindStore, err, "prices for %s", symbol)
	}
	defer rows.Close()
	prices := make([]float64, 0, limit)
	for rows.Next() {
		var (
			bucket time.Time
			p      float64
		)
		if bucketed {
			err = rows.Scan(&bucket, &p)
		} else {
			err = rows.Scan(&p)
		}
		if err != nil {
			return nil, cherr.Wrap(cherr.KindStore, err, "scan price")
		}
		prices = append(prices, p)
	}
	if err := rows.Err(); err != nil {
		return nil, cherr.Wrap(cherr.KindStore, err, "prices for %s", symbol)
	}
	r.logger.Debug().Str("symbol", symbol).Str("price_type", pt.String()).
		Dur("interval", interval).Int("prices", len(prices)).Msg("price path loaded")
	return prices, nil
}

// priceQuery builds the bucketed or native-resolution query for one
// path. Bucketed queries return (bucket, price) rows.
func priceQuery(symbol string, pt PriceType, interval time.Duration, start time.Time, limit int) (string, []any, bool) {
	if interval <= nativeResolution {
		col := string(pt)
		if pt == PriceTypical {
			col = "(high + low + close) / 3"
		}
		query := fmt.Sprintf(
			"SELECT %s FROM ohlcv WHERE symbol = ? AND timestamp >= ? ORDER BY timestamp LIMIT ?",
			col)
		return query, []any{symbol, start, limit}, false
	}
	query := fmt.Sprintf(
		`SELECT toStartOfInterval(timestamp, INTERVAL ? SECOND) AS bucket, %s AS price
		 FROM ohlcv
		 WHERE symbol = ? AND timestamp >= ?
		 GROUP BY bucket
		 ORDER BY bucket
		 LIMIT ?`, pt.expr())
	return query, []any{int64(interval / time.Second), symbol, start, limit}, true
}
