package jobs

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rowenagold/CommoditiesPricesForwardCurve/internal/brain"
	"github.com/rowenagold/CommoditiesPricesForwardCurve/internal/contracts"
	"github.com/rowenagold/CommoditiesPricesForwardCurve/internal/s0_data/collector"
	"github.com/rowenagold/CommoditiesPricesForwardCurve/internal/scheduler"
	"github.com/rowenagold/CommoditiesPricesForwardCurve/pkg/config"
	"github.com/rowenagold/CommoditiesPricesForwardCurve/pkg/logger"
)

type fakePipeline struct {
	err    error
	config brain.RunConfig
	calls  int
}

func (f *fakePipeline) Run(_ context.Context, cfg brain.RunConfig) (*brain.RunResult, error) {
	f.calls++
	f.config = cfg
	if f.err != nil {
		return nil, f.err
	}
	return &brain.RunResult{RunID: "run-1", Success: true, RowsSaved: 10}, nil
}

func (f *fakePipeline) RunFullYear(_ context.Context, dryRun bool) (*brain.FullYearResult, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return &brain.FullYearResult{Feeds: 4, RowsSaved: 1460}, nil
}

type fixedRates struct{}

func (fixedRates) FetchRates(_ context.Context, from, to string, start, end time.Time) ([]contracts.FxRate, error) {
	return []contracts.FxRate{{Date: start, FromCurrency: from, ToCurrency: to}}, nil
}

type countingSink struct {
	mu    sync.Mutex
	saved int
}

func (s *countingSink) SaveRates(_ context.Context, rates []contracts.FxRate) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.saved += len(rates)
	return len(rates), nil
}

func TestSchedules(t *testing.T) {
	cfg := &config.Config{Curve: config.CurveConfig{BuildSchedule: "0 0 7 * * 1-5"}}
	log := logger.Nop()

	parser := cron.NewParser(cron.Second | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)
	monday := time.Date(2019, 1, 7, 0, 0, 0, 0, time.Local)

	tests := []struct {
		job  scheduler.Job
		name string
		next time.Time
	}{
		{NewFxCollectionJob(nil, cfg, log), "fx_collection", monday.Add(6*time.Hour + 30*time.Minute)},
		{NewCurveBuildJob(&fakePipeline{}, cfg, false, log), "curve_build", monday.Add(7 * time.Hour)},
		{NewFullYearJob(&fakePipeline{}, log), "fullyear_merge", monday.Add(7*time.Hour + 30*time.Minute)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.name, tt.job.Name())
			schedule, err := parser.Parse(tt.job.Schedule())
			require.NoError(t, err)
			assert.Equal(t, tt.next, schedule.Next(monday))
		})
	}
}

func TestCurveBuildJob_DefaultSchedule(t *testing.T) {
	job := NewCurveBuildJob(&fakePipeline{}, &config.Config{}, false, logger.Nop())
	assert.Equal(t, "0 0 7 * * 1-5", job.Schedule())
}

func TestCurveBuildJob_Run(t *testing.T) {
	pipeline := &fakePipeline{}
	cfg := &config.Config{Curve: config.CurveConfig{TargetYear: 2019}}

	require.NoError(t, NewCurveBuildJob(pipeline, cfg, true, logger.Nop()).Run(context.Background()))
	assert.Equal(t, 2019, pipeline.config.RefYear)
	assert.True(t, pipeline.config.Export)
	assert.False(t, pipeline.config.DryRun)
	assert.Nil(t, pipeline.config.TradeDate)

	pipeline.err = errors.New("db down")
	err := NewCurveBuildJob(pipeline, cfg, false, logger.Nop()).Run(context.Background())
	assert.ErrorContains(t, err, "db down")
}

func TestFullYearJob_Run(t *testing.T) {
	pipeline := &fakePipeline{}
	require.NoError(t, NewFullYearJob(pipeline, logger.Nop()).Run(context.Background()))

	pipeline.err = errors.New("no forward data")
	assert.Error(t, NewFullYearJob(pipeline, logger.Nop()).Run(context.Background()))
	assert.Equal(t, 2, pipeline.calls)
}

func TestFxCollectionJob_Run(t *testing.T) {
	sink := &countingSink{}
	col := collector.NewCollector(fixedRates{}, sink, logger.Nop())
	cfg := &config.Config{
		Curve: config.CurveConfig{TargetYear: 2019},
		FX:    config.FXConfig{FromCurrency: "USD", ToCurrency: "EUR"},
	}

	require.NoError(t, NewFxCollectionJob(col, cfg, logger.Nop()).Run(context.Background()))
	assert.Equal(t, 12, sink.saved) // one rate per month chunk
}
