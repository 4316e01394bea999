package s0_data

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/rowenagold/CommoditiesPricesForwardCurve/internal/contracts"
)

// FxRepository implements contracts.FxSource and contracts.FxSink
type FxRepository struct {
	pool   *pgxpool.Pool
	source string
}

// NewFxRepository creates a new fx rate repository; source tags saved rows
func NewFxRepository(pool *pgxpool.Pool, source string) *FxRepository {
	return &FxRepository{pool: pool, source: source}
}

// RatesForYear returns the daily rates of one pair during year, one per date
func (r *FxRepository) RatesForYear(ctx context.Context, from, to string, year int) ([]contracts.FxRate, error) {
	query := `
		SELECT rate_date, from_currency, to_currency, rate::TEXT
		FROM fx_rates
		WHERE from_currency = $1 AND to_currency = $2
		  AND rate_date >= $3 AND rate_date < $4
		ORDER BY rate_date ASC
	`

	start := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	rows, err := r.pool.Query(ctx, query, from, to, start, start.AddDate(1, 0, 0))
	if err != nil {
		return nil, fmt.Errorf("query fx rates: %w", err)
	}
	defer rows.Close()

	var rates []contracts.FxRate
	for rows.Next() {
		var fx contracts.FxRate
		var rate string
		if err := rows.Scan(&fx.Date, &fx.FromCurrency, &fx.ToCurrency, &rate); err != nil {
			return nil, fmt.Errorf("scan fx rate: %w", err)
		}
		if fx.Rate, err = parseDecimal(rate); err != nil {
			return nil, err
		}
		rates = append(rates, fx)
	}
	return rates, rows.Err()
}

// SaveRates upserts rates and returns how many were written
func (r *FxRepository) SaveRates(ctx context.Context, rates []contracts.FxRate) (int, error) {
	if len(rates) == 0 {
		return 0, nil
	}

	batch := &pgx.Batch{}
	query := `
		INSERT INTO fx_rates (rate_date, from_currency, to_currency, rate, source, updated_at)
		VALUES ($1, $2, $3, $4::NUMERIC, $5, NOW())
		ON CONFLICT (rate_date, from_currency, to_currency) DO UPDATE SET
			rate = EXCLUDED.rate,
			source = EXCLUDED.source,
			updated_at = NOW()`

	for _, fx := range rates {
		batch.Queue(query, contracts.Day(fx.Date), fx.FromCurrency, fx.ToCurrency, decimalArg(fx.Rate), r.source)
	}

	br := r.pool.SendBatch(ctx, batch)
	defer br.Close()

	for range rates {
		if _, err := br.Exec(); err != nil {
			return 0, fmt.Errorf("upsert fx rate: %w", err)
		}
	}

	return len(rates), nil
}
