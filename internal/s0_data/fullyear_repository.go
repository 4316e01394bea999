package s0_data

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/rowenagold/CommoditiesPricesForwardCurve/internal/contracts"
)

// FullYearRepository implements contracts.FullYearSink and contracts.FullYearReader
type FullYearRepository struct {
	pool *pgxpool.Pool
}

// NewFullYearRepository creates a new full-year curve repository
func NewFullYearRepository(pool *pgxpool.Pool) *FullYearRepository {
	return &FullYearRepository{pool: pool}
}

// SaveFullYear upserts merged rows and returns how many were written
func (r *FullYearRepository) SaveFullYear(ctx context.Context, rows []contracts.FullYearRow) (int, error) {
	if len(rows) == 0 {
		return 0, nil
	}

	batch := &pgx.Batch{}
	query := `
		INSERT INTO full_year_curves (
			commodity, market, utc_timestamp, contract_name, source, price,
			metric_change, metrics_name, price_per_unit, exchange_rate,
			currency_change, price_target, model_run_date
		) VALUES ($1, $2, $3, $4, $5, $6::NUMERIC, $7::NUMERIC, $8, $9::NUMERIC, $10::NUMERIC, $11, $12::NUMERIC, $13)
		ON CONFLICT (commodity, market, utc_timestamp) DO UPDATE SET
			contract_name = EXCLUDED.contract_name,
			source = EXCLUDED.source,
			price = EXCLUDED.price,
			metric_change = EXCLUDED.metric_change,
			metrics_name = EXCLUDED.metrics_name,
			price_per_unit = EXCLUDED.price_per_unit,
			exchange_rate = EXCLUDED.exchange_rate,
			currency_change = EXCLUDED.currency_change,
			price_target = EXCLUDED.price_target,
			model_run_date = EXCLUDED.model_run_date`

	for _, row := range rows {
		batch.Queue(query,
			row.Commodity, row.Market, contracts.Day(row.Date), row.ContractName, string(row.Source),
			decimalArg(row.Price), decimalArg(row.MetricFactor), row.MetricName,
			decimalArg(row.PricePerUnit), decimalArg(row.ExchangeRate),
			row.CurrencyChange, decimalArg(row.PriceTarget), contracts.Day(row.ModelRunDate),
		)
	}

	br := r.pool.SendBatch(ctx, batch)
	defer br.Close()

	for range rows {
		if _, err := br.Exec(); err != nil {
			return 0, fmt.Errorf("upsert full-year row: %w", err)
		}
	}

	return len(rows), nil
}

// ListFullYear returns the merged curve of commodity/market for year
func (r *FullYearRepository) ListFullYear(ctx context.Context, commodity, market string, year int) ([]contracts.FullYearRow, error) {
	query := `
		SELECT commodity, market, utc_timestamp, COALESCE(contract_name, ''), source,
			price::TEXT, metric_change::TEXT, metrics_name, price_per_unit::TEXT,
			exchange_rate::TEXT, currency_change, price_target::TEXT, model_run_date
		FROM full_year_curves
		WHERE commodity = $1 AND market = $2
		  AND utc_timestamp >= $3 AND utc_timestamp < $4
		ORDER BY utc_timestamp ASC
	`

	start := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	rows, err := r.pool.Query(ctx, query, commodity, market, start, start.AddDate(1, 0, 0))
	if err != nil {
		return nil, fmt.Errorf("query full-year curve: %w", err)
	}
	defer rows.Close()

	var out []contracts.FullYearRow
	for rows.Next() {
		var row contracts.FullYearRow
		var source, price, factor, perUnit, rate, target string
		if err := rows.Scan(
			&row.Commodity, &row.Market, &row.Date, &row.ContractName, &source,
			&price, &factor, &row.MetricName, &perUnit,
			&rate, &row.CurrencyChange, &target, &row.ModelRunDate,
		); err != nil {
			return nil, fmt.Errorf("scan full-year row: %w", err)
		}
		row.Source = contracts.PointSource(source)

		for _, f := range []struct {
			src string
			dst *decimal.Decimal
		}{
			{price, &row.Price}, {factor, &row.MetricFactor}, {perUnit, &row.PricePerUnit},
			{rate, &row.ExchangeRate}, {target, &row.PriceTarget},
		} {
			if *f.dst, err = parseDecimal(f.src); err != nil {
				return nil, err
			}
		}
		out = append(out, row)
	}
	return out, rows.Err()
}
