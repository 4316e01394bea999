package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/rowenagold/CommoditiesPricesForwardCurve/internal/brain"
	"github.com/rowenagold/CommoditiesPricesForwardCurve/pkg/config"
	"github.com/rowenagold/CommoditiesPricesForwardCurve/pkg/logger"
)

// CurvePipeline runs one curve build
type CurvePipeline interface {
	Run(ctx context.Context, config brain.RunConfig) (*brain.RunResult, error)
}

// CurveBuildJob builds and persists the forward curves every weekday
// ⭐ SSOT: 커브 생성 스케줄은 이 Job에서만
type CurveBuildJob struct {
	pipeline CurvePipeline
	config   *config.Config
	logger   *logger.Logger
	export   bool
}

// NewCurveBuildJob creates a new curve build job
func NewCurveBuildJob(pipeline CurvePipeline, cfg *config.Config, export bool, log *logger.Logger) *CurveBuildJob {
	return &CurveBuildJob{
		pipeline: pipeline,
		config:   cfg,
		logger:   log,
		export:   export,
	}
}

// Name returns the job name
func (j *CurveBuildJob) Name() string {
	return "curve_build"
}

// Schedule returns the cron schedule (weekdays 07:00 by default)
func (j *CurveBuildJob) Schedule() string {
	if j.config.Curve.BuildSchedule != "" {
		return j.config.Curve.BuildSchedule
	}
	return "0 0 7 * * 1-5"
}

// Run executes the curve build
func (j *CurveBuildJob) Run(ctx context.Context) error {
	j.logger.Info("Starting scheduled curve build")

	now := time.Now().UTC()
	result, err := j.pipeline.Run(ctx, brain.RunConfig{
		Now:     now,
		RefYear: j.config.TargetYear(now),
		Export:  j.export,
	})
	if err != nil {
		return fmt.Errorf("curve build: %w", err)
	}

	j.logger.WithFields(map[string]interface{}{
		"run_id":     result.RunID,
		"trade_date": result.TradeDate.Format("2006-01-02"),
		"rows":       result.RowsSaved,
	}).Info("Scheduled curve build completed successfully")

	return nil
}
