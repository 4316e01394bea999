package jobs

import (
	"context"
	"fmt"

	"github.com/rowenagold/CommoditiesPricesForwardCurve/internal/brain"
	"github.com/rowenagold/CommoditiesPricesForwardCurve/pkg/logger"
)

// FullYearMerger runs the full-year merge
type FullYearMerger interface {
	RunFullYear(ctx context.Context, dryRun bool) (*brain.FullYearResult, error)
}

// FullYearJob merges historical and forward prices of every feed after the curve build
type FullYearJob struct {
	merger FullYearMerger
	logger *logger.Logger
}

// NewFullYearJob creates a new full-year merge job
func NewFullYearJob(merger FullYearMerger, log *logger.Logger) *FullYearJob {
	return &FullYearJob{merger: merger, logger: log}
}

// Name returns the job name
func (j *FullYearJob) Name() string {
	return "fullyear_merge"
}

// Schedule returns the cron schedule (weekdays 07:30)
func (j *FullYearJob) Schedule() string {
	return "0 30 7 * * 1-5"
}

// Run executes the merge
func (j *FullYearJob) Run(ctx context.Context) error {
	j.logger.Info("Starting scheduled full-year merge")

	result, err := j.merger.RunFullYear(ctx, false)
	if err != nil {
		return fmt.Errorf("full-year merge: %w", err)
	}

	j.logger.WithField("rows", result.RowsSaved).Info("Scheduled full-year merge completed")
	return nil
}
