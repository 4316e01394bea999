package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/rowenagold/CommoditiesPricesForwardCurve/internal/s0_data/collector"
	"github.com/rowenagold/CommoditiesPricesForwardCurve/pkg/config"
	"github.com/rowenagold/CommoditiesPricesForwardCurve/pkg/logger"
)

// FxCollectionJob refreshes the target year's exchange rates
type FxCollectionJob struct {
	collector *collector.Collector
	config    *config.Config
	logger    *logger.Logger
}

// NewFxCollectionJob creates a new fx collection job
func NewFxCollectionJob(col *collector.Collector, cfg *config.Config, log *logger.Logger) *FxCollectionJob {
	return &FxCollectionJob{
		collector: col,
		config:    cfg,
		logger:    log,
	}
}

// Name returns the job name
func (j *FxCollectionJob) Name() string {
	return "fx_collection"
}

// Schedule returns the cron schedule (weekdays 06:30, before the curve build)
func (j *FxCollectionJob) Schedule() string {
	return "0 30 6 * * 1-5"
}

// Run executes the fx collection
func (j *FxCollectionJob) Run(ctx context.Context) error {
	now := time.Now().UTC()
	year := j.config.TargetYear(now)

	j.logger.WithFields(map[string]interface{}{
		"pair": j.config.FX.FromCurrency + "_" + j.config.FX.ToCurrency,
		"year": year,
	}).Info("Starting scheduled fx collection")

	if _, err := j.collector.CollectYear(ctx, j.config.FX.FromCurrency, j.config.FX.ToCurrency, year, now, collector.Config{Workers: 2}); err != nil {
		return fmt.Errorf("collect fx: %w", err)
	}
	return nil
}
