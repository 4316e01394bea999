package s0_data

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/rowenagold/CommoditiesPricesForwardCurve/internal/contracts"
)

// ErrNoQuotes is returned when the price table holds no priced observation at all
var ErrNoQuotes = errors.New("s0_data: no quotes")

// Repository reads and writes raw commodity quotes
// ⭐ SSOT: 원시 시세 저장소는 여기서만
type Repository struct {
	db *pgxpool.Pool
}

// NewRepository creates a new Repository instance
func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

// Pool returns the underlying database pool
func (r *Repository) Pool() *pgxpool.Pool {
	return r.db
}

const quoteColumns = `
	COALESCE(commodity, ''), COALESCE(market, ''), COALESCE(exchange, ''),
	COALESCE(currency, ''), COALESCE(unit, ''),
	COALESCE(contract_type, ''), COALESCE(contract_name, ''), utc_timestamp,
	price::TEXT, open::TEXT, high::TEXT, low::TEXT, oi::TEXT, volume::TEXT,
	delivery_start, delivery_end`

// QuotesForTradeDate returns every quote observed on date
func (r *Repository) QuotesForTradeDate(ctx context.Context, date time.Time) ([]contracts.RawQuote, error) {
	day := contracts.Day(date)
	query := `SELECT ` + quoteColumns + `
		FROM commodity_prices
		WHERE utc_timestamp >= $1 AND utc_timestamp < $2
		ORDER BY id`

	rows, err := r.db.Query(ctx, query, day, day.AddDate(0, 0, 1))
	if err != nil {
		return nil, fmt.Errorf("query quotes: %w", err)
	}
	defer rows.Close()

	var quotes []contracts.RawQuote
	for rows.Next() {
		q, err := scanRawQuote(rows)
		if err != nil {
			return nil, err
		}
		quotes = append(quotes, q)
	}
	return quotes, rows.Err()
}

// LatestTradeDate returns the latest observation date with a price
func (r *Repository) LatestTradeDate(ctx context.Context) (time.Time, error) {
	var latest *time.Time
	err := r.db.QueryRow(ctx, `SELECT MAX(utc_timestamp) FROM commodity_prices WHERE price IS NOT NULL`).Scan(&latest)
	if err != nil {
		return time.Time{}, fmt.Errorf("query latest trade date: %w", err)
	}
	if latest == nil {
		return time.Time{}, ErrNoQuotes
	}
	return contracts.Day(*latest), nil
}

// LoadQuotes returns the quotes of the last business day before now,
// falling back to the latest day that has a price when that day is empty.
func (r *Repository) LoadQuotes(ctx context.Context, now time.Time) (time.Time, []contracts.RawQuote, error) {
	return LoadQuotes(ctx, r, now)
}

// LoadQuotes applies the trade date fallback on any quote source
func LoadQuotes(ctx context.Context, src contracts.QuoteSource, now time.Time) (time.Time, []contracts.RawQuote, error) {
	date := LastBusinessDay(now)
	quotes, err := src.QuotesForTradeDate(ctx, date)
	if err != nil {
		return time.Time{}, nil, err
	}
	if len(quotes) > 0 {
		return date, quotes, nil
	}

	latest, err := src.LatestTradeDate(ctx)
	if err != nil {
		return time.Time{}, nil, err
	}
	quotes, err = src.QuotesForTradeDate(ctx, latest)
	if err != nil {
		return time.Time{}, nil, err
	}
	return latest, quotes, nil
}

// SaveQuotes inserts raw quotes (bulk insert)
func (r *Repository) SaveQuotes(ctx context.Context, quotes []contracts.RawQuote) error {
	if len(quotes) == 0 {
		return nil
	}

	query := `
		INSERT INTO commodity_prices (
			commodity, market, exchange, currency, unit, contract_type, contract_name,
			utc_timestamp, price, open, high, low, oi, volume, delivery_start, delivery_end
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9::NUMERIC, $10::NUMERIC, $11::NUMERIC,
			$12::NUMERIC, $13::NUMERIC, $14::NUMERIC, $15, $16)
	`

	// Batch insert using transactions
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	for _, q := range quotes {
		_, err := tx.Exec(ctx, query,
			q.Commodity, q.Market, q.Exchange, q.Currency, q.Unit, q.ContractType, q.ContractName,
			q.ObservedAt, nullDecimalArg(q.Price), nullDecimalArg(q.Open), nullDecimalArg(q.High),
			nullDecimalArg(q.Low), nullDecimalArg(q.OpenInterest), nullDecimalArg(q.Volume),
			q.DeliveryStart, q.DeliveryEnd,
		)
		if err != nil {
			return fmt.Errorf("insert quote %s: %w", q.ContractName, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}

	return nil
}

func scanRawQuote(row pgx.Row) (contracts.RawQuote, error) {
	var q contracts.RawQuote
	var price, open, high, low, oi, volume *string

	err := row.Scan(
		&q.Commodity, &q.Market, &q.Exchange, &q.Currency, &q.Unit,
		&q.ContractType, &q.ContractName, &q.ObservedAt,
		&price, &open, &high, &low, &oi, &volume,
		&q.DeliveryStart, &q.DeliveryEnd,
	)
	if err != nil {
		return q, fmt.Errorf("scan quote: %w", err)
	}

	for _, f := range []struct {
		src *string
		dst *decimal.NullDecimal
	}{
		{price, &q.Price}, {open, &q.Open}, {high, &q.High},
		{low, &q.Low}, {oi, &q.OpenInterest}, {volume, &q.Volume},
	} {
		if *f.dst, err = parseNullDecimal(f.src); err != nil {
			return q, err
		}
	}

	q.ObservedAt = q.ObservedAt.UTC()
	return q, nil
}
