package quality

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/rowenagold/CommoditiesPricesForwardCurve/internal/contracts"
)

// Repository handles curve quality snapshot persistence
// ⭐ SSOT: 커브 품질 스냅샷 저장/조회
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a new quality repository
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// SaveSnapshot saves a curve quality snapshot
func (r *Repository) SaveSnapshot(ctx context.Context, snapshot *contracts.CurveQualitySnapshot) error {
	issues, err := json.Marshal(snapshot.Issues)
	if err != nil {
		return fmt.Errorf("marshal issues: %w", err)
	}

	query := `
		INSERT INTO curve_quality_snapshots (
			run_id, snapshot_date, quality_score, total_series, valid_series,
			continuity_coverage, resolved_coverage, observed_coverage, passed, issues
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (run_id) DO UPDATE SET
			quality_score = EXCLUDED.quality_score,
			total_series = EXCLUDED.total_series,
			valid_series = EXCLUDED.valid_series,
			continuity_coverage = EXCLUDED.continuity_coverage,
			resolved_coverage = EXCLUDED.resolved_coverage,
			observed_coverage = EXCLUDED.observed_coverage,
			passed = EXCLUDED.passed,
			issues = EXCLUDED.issues
	`

	_, err = r.pool.Exec(ctx, query,
		snapshot.RunID,
		snapshot.Date,
		snapshot.QualityScore,
		snapshot.TotalSeries,
		snapshot.ValidSeries,
		snapshot.Coverage[CheckContinuity],
		snapshot.Coverage[CheckResolved],
		snapshot.Coverage[CheckObserved],
		snapshot.Passed,
		issues,
	)
	if err != nil {
		return fmt.Errorf("save quality snapshot: %w", err)
	}

	return nil
}

// GetLatest retrieves the most recent quality snapshot
func (r *Repository) GetLatest(ctx context.Context) (*contracts.CurveQualitySnapshot, error) {
	query := `
		SELECT
			run_id::TEXT, snapshot_date, quality_score, total_series, valid_series,
			continuity_coverage, resolved_coverage, observed_coverage, passed, issues
		FROM curve_quality_snapshots
		ORDER BY created_at DESC
		LIMIT 1
	`

	snapshot := &contracts.CurveQualitySnapshot{
		Coverage: make(map[string]float64),
	}

	var continuity, resolved, observed float64
	var issues []byte

	err := r.pool.QueryRow(ctx, query).Scan(
		&snapshot.RunID,
		&snapshot.Date,
		&snapshot.QualityScore,
		&snapshot.TotalSeries,
		&snapshot.ValidSeries,
		&continuity,
		&resolved,
		&observed,
		&snapshot.Passed,
		&issues,
	)
	if err != nil {
		return nil, fmt.Errorf("get latest quality snapshot: %w", err)
	}

	snapshot.Coverage[CheckContinuity] = continuity
	snapshot.Coverage[CheckResolved] = resolved
	snapshot.Coverage[CheckObserved] = observed

	if len(issues) > 0 {
		if err := json.Unmarshal(issues, &snapshot.Issues); err != nil {
			return nil, fmt.Errorf("unmarshal issues: %w", err)
		}
	}

	return snapshot, nil
}
