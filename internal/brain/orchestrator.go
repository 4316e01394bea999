package brain

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/rowenagold/CommoditiesPricesForwardCurve/internal/contracts"
	"github.com/rowenagold/CommoditiesPricesForwardCurve/internal/feedconfig"
	"github.com/rowenagold/CommoditiesPricesForwardCurve/internal/metrics"
	"github.com/rowenagold/CommoditiesPricesForwardCurve/internal/s0_data"
	"github.com/rowenagold/CommoditiesPricesForwardCurve/internal/s1_curve"
	"github.com/rowenagold/CommoditiesPricesForwardCurve/pkg/logger"
)

// ErrBuildRunning is returned when a curve build is requested while another one runs
var ErrBuildRunning = errors.New("brain: curve build already running")

// SnapshotSink stores quality snapshots
type SnapshotSink interface {
	SaveSnapshot(ctx context.Context, snapshot *contracts.CurveQualitySnapshot) error
}

// CurveExporter writes a curve snapshot outside the database
type CurveExporter interface {
	ExportCurves(ctx context.Context, curveType contracts.CurveType, date time.Time, runID uuid.UUID, rows []contracts.CurveRow) ([]string, error)
}

// FullYearBuilder merges configured feeds
type FullYearBuilder interface {
	BuildAll(ctx context.Context, feeds []feedconfig.Feed) ([]contracts.FullYearRow, error)
}

// Deps wires the stage components; Exporter, Snapshots and FullYear may be nil
type Deps struct {
	Quotes    contracts.QuoteSource
	Builder   contracts.CurveBuilder
	Gate      contracts.CurveQualityGate
	Snapshots SnapshotSink
	Curves    contracts.CurveSink
	Exporter  CurveExporter

	FullYear     FullYearBuilder
	FullYearSink contracts.FullYearSink
	Feeds        []feedconfig.Feed
}

// Orchestrator coordinates the curve pipeline
// ⭐ SSOT: 파이프라인 조율은 여기서만
type Orchestrator struct {
	deps   Deps
	logger *logger.Logger

	// 동시 빌드 방지 (API 트리거 + 스케줄러)
	running sync.Mutex
}

// RunConfig holds configuration for a curve build run
type RunConfig struct {
	Now       time.Time
	TradeDate *time.Time // overrides the last-business-day lookup
	RefYear   int        // quotes delivering before this year are dropped
	DryRun    bool       // build and check only, nothing is written
	Export    bool
}

// RunResult holds the results of a curve build run
type RunResult struct {
	RunID           string                          `json:"run_id"`
	TradeDate       time.Time                       `json:"trade_date"`
	Success         bool                            `json:"success"`
	CompletedStages []string                        `json:"completed_stages"`
	Clean           s0_data.CleanStats              `json:"clean"`
	Quality         *contracts.CurveQualitySnapshot `json:"quality,omitempty"`
	MixedSeries     int                             `json:"mixed_series"`
	SingleSeries    int                             `json:"single_series"`
	RowsSaved       int                             `json:"rows_saved"`
	Exported        []string                        `json:"exported,omitempty"`
	Duration        time.Duration                   `json:"duration"`
}

// NewOrchestrator creates a new orchestrator
func NewOrchestrator(deps Deps, log *logger.Logger) *Orchestrator {
	return &Orchestrator{
		deps:   deps,
		logger: log.WithField("module", "brain"),
	}
}

// Run executes load → clean → assemble → quality → persist → export.
// Concurrent calls fail fast with ErrBuildRunning.
func (o *Orchestrator) Run(ctx context.Context, config RunConfig) (*RunResult, error) {
	if !o.running.TryLock() {
		return nil, ErrBuildRunning
	}
	defer o.running.Unlock()

	startTime := time.Now()
	if config.Now.IsZero() {
		config.Now = time.Now().UTC()
	}
	if config.RefYear == 0 {
		config.RefYear = config.Now.Year()
	}

	result := &RunResult{CompletedStages: make([]string, 0, 5)}

	o.logger.WithFields(map[string]interface{}{
		"now":      config.Now.Format(contracts.DateLayout),
		"ref_year": config.RefYear,
		"dry_run":  config.DryRun,
		"export":   config.Export,
	}).Info("Starting curve build")

	// S0: load + clean
	tradeDate, raws, err := o.loadQuotes(ctx, config)
	if err != nil {
		return result, fmt.Errorf("S0 load failed: %w", err)
	}
	cleaned, stats := s0_data.CleanQuotes(raws, config.RefYear)
	for reason, n := range stats.Dropped {
		metrics.QuotesRejected.WithLabelValues(reason).Add(float64(n))
	}
	result.TradeDate = tradeDate
	result.Clean = stats
	result.CompletedStages = append(result.CompletedStages, "S0:Load")

	// S1: assemble
	set, err := o.deps.Builder.Build(ctx, tradeDate, cleaned)
	if err != nil {
		return result, fmt.Errorf("S1 failed: %w", err)
	}
	result.RunID = set.RunID.String()
	result.MixedSeries = len(set.Mixed)
	result.SingleSeries = len(set.Single)
	result.CompletedStages = append(result.CompletedStages, "S1:Curves")

	// Quality gate: 기준 미달은 경고만
	snapshot, err := o.deps.Gate.Check(ctx, set)
	if err != nil {
		return result, fmt.Errorf("quality check failed: %w", err)
	}
	result.Quality = snapshot
	if !snapshot.Passed {
		o.logger.WithFields(map[string]interface{}{
			"run_id":        result.RunID,
			"quality_score": snapshot.QualityScore,
			"valid_series":  snapshot.ValidSeries,
			"total_series":  snapshot.TotalSeries,
		}).Warn("Curve quality below threshold, continuing")
	}
	result.CompletedStages = append(result.CompletedStages, "S0:Quality")

	if config.DryRun {
		o.logger.Info("Skipping persist (dry run mode)")
		return o.finish(result, startTime), nil
	}

	// Persist
	rows := s1_curve.Rows(set)
	saved, err := o.deps.Curves.SaveCurves(ctx, rows)
	if err != nil {
		return result, fmt.Errorf("save curves: %w", err)
	}
	metrics.RowsPersisted.WithLabelValues("forward_curves").Add(float64(saved))
	result.RowsSaved = saved

	if o.deps.Snapshots != nil {
		if err := o.deps.Snapshots.SaveSnapshot(ctx, snapshot); err != nil {
			o.logger.WithError(err).Warn("Failed to save quality snapshot")
		}
	}
	result.CompletedStages = append(result.CompletedStages, "Persist")

	// Export
	if config.Export && o.deps.Exporter != nil {
		locations, err := o.export(ctx, set, rows)
		result.Exported = locations
		if err != nil {
			return result, fmt.Errorf("export curves: %w", err)
		}
		result.CompletedStages = append(result.CompletedStages, "Export")
	}

	return o.finish(result, startTime), nil
}

func (o *Orchestrator) loadQuotes(ctx context.Context, config RunConfig) (time.Time, []contracts.RawQuote, error) {
	if config.TradeDate != nil {
		date := contracts.Day(*config.TradeDate)
		raws, err := o.deps.Quotes.QuotesForTradeDate(ctx, date)
		return date, raws, err
	}
	return s0_data.LoadQuotes(ctx, o.deps.Quotes, config.Now)
}

func (o *Orchestrator) export(ctx context.Context, set *contracts.CurveSet, rows []contracts.CurveRow) ([]string, error) {
	byType := map[contracts.CurveType][]contracts.CurveRow{}
	for _, r := range rows {
		byType[r.CurveType] = append(byType[r.CurveType], r)
	}

	var locations []string
	var errs []error
	for _, curveType := range []contracts.CurveType{contracts.CurveMixed, contracts.CurveSingle} {
		locs, err := o.deps.Exporter.ExportCurves(ctx, curveType, set.TradeDate, set.RunID, byType[curveType])
		locations = append(locations, locs...)
		if err != nil {
			errs = append(errs, err)
		}
	}
	return locations, errors.Join(errs...)
}

func (o *Orchestrator) finish(result *RunResult, startTime time.Time) *RunResult {
	result.Success = true
	result.Duration = time.Since(startTime)
	metrics.ObserveStage("pipeline", startTime)

	o.logger.WithFields(map[string]interface{}{
		"run_id":     result.RunID,
		"trade_date": result.TradeDate.Format(contracts.DateLayout),
		"rows":       result.RowsSaved,
		"duration":   result.Duration.Seconds(),
		"stages":     len(result.CompletedStages),
	}).Info("Curve build completed successfully")

	return result
}

// FullYearResult summarizes one full-year merge
type FullYearResult struct {
	Feeds     int           `json:"feeds"`
	RowsSaved int           `json:"rows_saved"`
	Duration  time.Duration `json:"duration"`
}

// RunFullYear merges every configured feed and persists the rows.
// Rows of successful feeds are saved even when other feeds fail.
func (o *Orchestrator) RunFullYear(ctx context.Context, dryRun bool) (*FullYearResult, error) {
	if o.deps.FullYear == nil {
		return nil, errors.New("brain: full-year merge not configured")
	}
	startTime := time.Now()

	rows, buildErr := o.deps.FullYear.BuildAll(ctx, o.deps.Feeds)
	result := &FullYearResult{Feeds: len(o.deps.Feeds)}

	if !dryRun && len(rows) > 0 {
		saved, err := o.deps.FullYearSink.SaveFullYear(ctx, rows)
		if err != nil {
			return result, errors.Join(buildErr, fmt.Errorf("save full-year rows: %w", err))
		}
		metrics.RowsPersisted.WithLabelValues("full_year_curves").Add(float64(saved))
		result.RowsSaved = saved
	}
	result.Duration = time.Since(startTime)

	o.logger.WithFields(map[string]interface{}{
		"feeds":    result.Feeds,
		"rows":     len(rows),
		"saved":    result.RowsSaved,
		"duration": result.Duration.Seconds(),
	}).Info("Full-year merge completed")

	return result, buildErr
}
