package s0_data

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/rowenagold/CommoditiesPricesForwardCurve/internal/contracts"
)

// HistoricalRepository implements contracts.HistoricalSource over the raw price table
type HistoricalRepository struct {
	pool *pgxpool.Pool
}

// NewHistoricalRepository creates a new historical price repository
func NewHistoricalRepository(pool *pgxpool.Pool) *HistoricalRepository {
	return &HistoricalRepository{pool: pool}
}

// Historical returns the historical points selected by q, ordered by date
func (r *HistoricalRepository) Historical(ctx context.Context, q contracts.HistoricalQuery) ([]contracts.PricePoint, error) {
	if q.Monthly {
		return r.monthly(ctx, q)
	}
	return r.daily(ctx, q)
}

// daily: 목표 연도에 관측된 단일 계약의 모든 가격
func (r *HistoricalRepository) daily(ctx context.Context, q contracts.HistoricalQuery) ([]contracts.PricePoint, error) {
	query := `
		SELECT utc_timestamp, COALESCE(contract_name, ''), price::TEXT
		FROM commodity_prices
		WHERE LOWER(commodity) = $1 AND LOWER(market) = $2 AND LOWER(contract_name) = $3
		  AND utc_timestamp >= $4 AND utc_timestamp < $5
		  AND price IS NOT NULL
		ORDER BY utc_timestamp ASC
	`

	start := time.Date(q.Year, time.January, 1, 0, 0, 0, 0, time.UTC)
	return r.query(ctx, query, q.Commodity, q.Market, q.ContractName, start, start.AddDate(1, 0, 0))
}

// monthly: 월물 "<month><yy>"을 인도월 lag개월 전에 관측한 가격
func (r *HistoricalRepository) monthly(ctx context.Context, q contracts.HistoricalQuery) ([]contracts.PricePoint, error) {
	names, froms, tos := MonthlyWindows(q.Year, q.LagMonths)

	selectCols := `p.utc_timestamp, m.contract_name, p.price::TEXT`
	groupBy := `ORDER BY p.utc_timestamp ASC`
	if q.Average {
		selectCols = `MAX(p.utc_timestamp), m.contract_name, ROUND(AVG(p.price), 2)::TEXT`
		groupBy = `GROUP BY m.contract_name ORDER BY 1 ASC`
	}

	query := `
		SELECT ` + selectCols + `
		FROM commodity_prices p
		JOIN UNNEST($3::TEXT[], $4::TIMESTAMPTZ[], $5::TIMESTAMPTZ[]) AS m(contract_name, obs_from, obs_to)
		  ON LOWER(p.contract_name) = m.contract_name
		 AND p.utc_timestamp >= m.obs_from AND p.utc_timestamp < m.obs_to
		WHERE LOWER(p.commodity) = $1 AND LOWER(p.market) = $2
		  AND p.price IS NOT NULL
		` + groupBy

	return r.query(ctx, query, q.Commodity, q.Market, names, froms, tos)
}

func (r *HistoricalRepository) query(ctx context.Context, query string, args ...interface{}) ([]contracts.PricePoint, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query historical prices: %w", err)
	}
	defer rows.Close()

	var points []contracts.PricePoint
	for rows.Next() {
		var p contracts.PricePoint
		var price string
		if err := rows.Scan(&p.Date, &p.ContractName, &price); err != nil {
			return nil, fmt.Errorf("scan historical price: %w", err)
		}
		if p.Price, err = parseDecimal(price); err != nil {
			return nil, err
		}
		p.Date = contracts.Day(p.Date)
		points = append(points, p)
	}
	return points, rows.Err()
}

// MonthlyWindows returns, per delivery month of year, the monthly contract name and the
// observation window [from, to) lagMonths before that month.
func MonthlyWindows(year, lagMonths int) ([]string, []time.Time, []time.Time) {
	names := make([]string, 0, 12)
	froms := make([]time.Time, 0, 12)
	tos := make([]time.Time, 0, 12)

	for m := time.January; m <= time.December; m++ {
		from := time.Date(year, m, 1, 0, 0, 0, 0, time.UTC).AddDate(0, -lagMonths, 0)
		names = append(names, contracts.MonthlyContractName(m, year))
		froms = append(froms, from)
		tos = append(tos, from.AddDate(0, 1, 0))
	}
	return names, froms, tos
}
