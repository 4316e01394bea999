package s0_data

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/rowenagold/CommoditiesPricesForwardCurve/internal/contracts"
)

// curveBatchSize bounds the statements queued per pgx batch
const curveBatchSize = 1000

// CurveRepository implements contracts.CurveSink and contracts.CurveReader
// ⭐ SSOT: 커브 저장/조회는 여기서만
type CurveRepository struct {
	pool *pgxpool.Pool
}

// NewCurveRepository creates a new curve repository
func NewCurveRepository(pool *pgxpool.Pool) *CurveRepository {
	return &CurveRepository{pool: pool}
}

// SaveCurves upserts curve rows in one transaction and returns how many were written
func (r *CurveRepository) SaveCurves(ctx context.Context, rows []contracts.CurveRow) (int, error) {
	if len(rows) == 0 {
		return 0, nil
	}

	query := `
		INSERT INTO forward_curves (
			curve_type, commodity, market, exchange, series, utc_timestamp,
			contract_type1, contract_type2, utc_trade_date, currency, unit,
			price, open, high, low, oi, volume, missing, filled, run_id, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11,
			$12::NUMERIC, $13::NUMERIC, $14::NUMERIC, $15::NUMERIC, $16::NUMERIC, $17::NUMERIC,
			$18, $19, $20, NOW())
		ON CONFLICT (curve_type, commodity, market, exchange, series, utc_timestamp) DO UPDATE SET
			contract_type1 = EXCLUDED.contract_type1,
			contract_type2 = EXCLUDED.contract_type2,
			utc_trade_date = EXCLUDED.utc_trade_date,
			currency = EXCLUDED.currency,
			unit = EXCLUDED.unit,
			price = EXCLUDED.price,
			open = EXCLUDED.open,
			high = EXCLUDED.high,
			low = EXCLUDED.low,
			oi = EXCLUDED.oi,
			volume = EXCLUDED.volume,
			missing = EXCLUDED.missing,
			filled = EXCLUDED.filled,
			run_id = EXCLUDED.run_id,
			created_at = NOW()`

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	for start := 0; start < len(rows); start += curveBatchSize {
		end := start + curveBatchSize
		if end > len(rows) {
			end = len(rows)
		}

		batch := &pgx.Batch{}
		for _, row := range rows[start:end] {
			batch.Queue(query,
				string(row.CurveType), row.Commodity, row.Market, row.Exchange, row.Series, contracts.Day(row.Date),
				row.ContractType, row.ContractName, row.TradeDate, row.Currency, row.Unit,
				nullDecimalArg(row.Price), nullDecimalArg(row.Open), nullDecimalArg(row.High),
				nullDecimalArg(row.Low), nullDecimalArg(row.OpenInterest), nullDecimalArg(row.Volume),
				row.Missing, row.Filled, row.RunID,
			)
		}

		if err := execBatch(ctx, tx, batch); err != nil {
			return 0, fmt.Errorf("upsert curves: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("commit transaction: %w", err)
	}

	return len(rows), nil
}

func execBatch(ctx context.Context, tx pgx.Tx, batch *pgx.Batch) error {
	br := tx.SendBatch(ctx, batch)
	for i := 0; i < batch.Len(); i++ {
		if _, err := br.Exec(); err != nil {
			br.Close()
			return err
		}
	}
	return br.Close()
}

// ListCurves returns stored rows matching filter ordered by series and date
func (r *CurveRepository) ListCurves(ctx context.Context, filter contracts.CurveFilter) ([]contracts.CurveRow, error) {
	var where []string
	var args []interface{}
	add := func(cond string, v interface{}) {
		args = append(args, v)
		where = append(where, fmt.Sprintf(cond, len(args)))
	}

	if filter.CurveType != "" {
		add("curve_type = $%d", string(filter.CurveType))
	}
	if filter.Commodity != "" {
		add("commodity = $%d", filter.Commodity)
	}
	if filter.Market != "" {
		add("market = $%d", filter.Market)
	}
	if filter.Exchange != "" {
		add("exchange = $%d", filter.Exchange)
	}
	if filter.Series != "" {
		add("series = $%d", filter.Series)
	}
	if filter.From != nil {
		add("utc_timestamp >= $%d", contracts.Day(*filter.From))
	}
	if filter.To != nil {
		add("utc_timestamp <= $%d", contracts.Day(*filter.To))
	}

	query := `
		SELECT run_id, curve_type, series, commodity, market, exchange, utc_timestamp,
			COALESCE(contract_type1, ''), COALESCE(contract_type2, ''), utc_trade_date,
			COALESCE(currency, ''), COALESCE(unit, ''),
			price::TEXT, open::TEXT, high::TEXT, low::TEXT, oi::TEXT, volume::TEXT,
			missing, filled
		FROM forward_curves`
	if len(where) > 0 {
		query += "\n\t\tWHERE " + strings.Join(where, " AND ")
	}
	query += "\n\t\tORDER BY curve_type, commodity, market, exchange, series, utc_timestamp"

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query curves: %w", err)
	}
	defer rows.Close()

	var out []contracts.CurveRow
	for rows.Next() {
		row, err := scanCurveRow(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

func scanCurveRow(row pgx.Row) (contracts.CurveRow, error) {
	var c contracts.CurveRow
	var runID uuid.UUID
	var curveType string
	var price, open, high, low, oi, volume *string

	err := row.Scan(
		&runID, &curveType, &c.Series, &c.Commodity, &c.Market, &c.Exchange, &c.Date,
		&c.ContractType, &c.ContractName, &c.TradeDate, &c.Currency, &c.Unit,
		&price, &open, &high, &low, &oi, &volume,
		&c.Missing, &c.Filled,
	)
	if err != nil {
		return c, fmt.Errorf("scan curve row: %w", err)
	}
	c.RunID = runID
	c.CurveType = contracts.CurveType(curveType)

	if c.Price, err = parseNullDecimal(price); err != nil {
		return c, err
	}
	if c.Open, err = parseNullDecimal(open); err != nil {
		return c, err
	}
	if c.High, err = parseNullDecimal(high); err != nil {
		return c, err
	}
	if c.Low, err = parseNullDecimal(low); err != nil {
		return c, err
	}
	if c.OpenInterest, err = parseNullDecimal(oi); err != nil {
		return c, err
	}
	if c.Volume, err = parseNullDecimal(volume); err != nil {
		return c, err
	}
	return c, nil
}

// ListGroups returns the distinct groups stored for curveType
func (r *CurveRepository) ListGroups(ctx context.Context, curveType contracts.CurveType) ([]contracts.GroupKey, error) {
	query := `
		SELECT DISTINCT commodity, market, exchange
		FROM forward_curves
		WHERE curve_type = $1
		ORDER BY commodity, market, exchange
	`

	rows, err := r.pool.Query(ctx, query, string(curveType))
	if err != nil {
		return nil, fmt.Errorf("query curve groups: %w", err)
	}
	defer rows.Close()

	var groups []contracts.GroupKey
	for rows.Next() {
		var g contracts.GroupKey
		if err := rows.Scan(&g.Commodity, &g.Market, &g.Exchange); err != nil {
			return nil, fmt.Errorf("scan curve group: %w", err)
		}
		groups = append(groups, g)
	}
	return groups, rows.Err()
}

// ForwardSeries returns one mixed curve price per day in (after, until].
// When several exchanges list the pair, the first exchange by name is used.
func (r *CurveRepository) ForwardSeries(ctx context.Context, commodity, market string, after, until time.Time) ([]contracts.PricePoint, error) {
	query := `
		SELECT DISTINCT ON (utc_timestamp)
			utc_timestamp, COALESCE(contract_type2, contract_type1, ''), price::TEXT
		FROM forward_curves
		WHERE curve_type = 'mixed' AND commodity = $1 AND market = $2
		  AND utc_timestamp > $3 AND utc_timestamp <= $4
		  AND NOT missing AND price IS NOT NULL
		ORDER BY utc_timestamp ASC, exchange ASC
	`

	rows, err := r.pool.Query(ctx, query, commodity, market, contracts.Day(after), contracts.Day(until))
	if err != nil {
		return nil, fmt.Errorf("query forward series: %w", err)
	}
	defer rows.Close()

	var points []contracts.PricePoint
	for rows.Next() {
		var p contracts.PricePoint
		var price string
		if err := rows.Scan(&p.Date, &p.ContractName, &price); err != nil {
			return nil, fmt.Errorf("scan forward point: %w", err)
		}
		if p.Price, err = parseDecimal(price); err != nil {
			return nil, err
		}
		points = append(points, p)
	}
	return points, rows.Err()
}
