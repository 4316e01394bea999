package s2_fullyear

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rowenagold/CommoditiesPricesForwardCurve/internal/contracts"
	"github.com/rowenagold/CommoditiesPricesForwardCurve/internal/feedconfig"
	"github.com/rowenagold/CommoditiesPricesForwardCurve/internal/metrics"
	"github.com/rowenagold/CommoditiesPricesForwardCurve/pkg/logger"
)

var (
	// ErrNoHistorical is returned when a feed has no historical points for the target year
	ErrNoHistorical = errors.New("fullyear: no historical data")
	// ErrMissingRate is returned when a converted day has no exchange rate
	ErrMissingRate = errors.New("fullyear: no exchange rate")
)

// Config holds the merge target, passed explicitly to every build
type Config struct {
	TargetYear     int    `yaml:"target_year"` // 0 = current year at build time
	TargetCurrency string `yaml:"target_currency"`
}

// Builder merges historical and forward series into full-year curves
type Builder struct {
	historical contracts.HistoricalSource
	curves     contracts.CurveReader
	fx         contracts.FxSource
	config     Config
	logger     *logger.Logger
	now        func() time.Time
}

// NewBuilder creates a new full-year Builder
func NewBuilder(historical contracts.HistoricalSource, curves contracts.CurveReader, fx contracts.FxSource, config Config, log *logger.Logger) *Builder {
	return &Builder{
		historical: historical,
		curves:     curves,
		fx:         fx,
		config:     config,
		logger:     log,
		now:        time.Now,
	}
}

// BuildAll merges every feed. Failed feeds are logged and reported together;
// rows of the feeds that succeeded are still returned.
// ⭐ SSOT: S2 과거 + 선도 → 연간 커브
func (b *Builder) BuildAll(ctx context.Context, feeds []feedconfig.Feed) ([]contracts.FullYearRow, error) {
	start := time.Now()
	defer metrics.ObserveStage("fullyear", start)

	rates := make(map[string]*RateTable)
	var rows []contracts.FullYearRow
	var errs []error

	for i := range feeds {
		feed := &feeds[i]
		feedRows, err := b.buildFeed(ctx, feed, rates)
		if err != nil {
			b.logger.WithField("feed", feed.ID).WithError(err).Error("Full-year merge failed")
			errs = append(errs, fmt.Errorf("feed %s: %w", feed.ID, err))
			continue
		}

		b.logger.WithFields(map[string]interface{}{
			"feed": feed.ID,
			"rows": len(feedRows),
		}).Info("Full-year curve merged")
		rows = append(rows, feedRows...)
	}

	return rows, errors.Join(errs...)
}

// BuildFeed merges one feed
func (b *Builder) BuildFeed(ctx context.Context, feed *feedconfig.Feed) ([]contracts.FullYearRow, error) {
	return b.buildFeed(ctx, feed, make(map[string]*RateTable))
}

// Year returns the year the builder merges
func (b *Builder) Year() int {
	if b.config.TargetYear > 0 {
		return b.config.TargetYear
	}
	return b.now().UTC().Year()
}

func (b *Builder) buildFeed(ctx context.Context, feed *feedconfig.Feed, rateCache map[string]*RateTable) ([]contracts.FullYearRow, error) {
	year := b.Year()
	yearStart, yearEnd := YearStart(year), YearEnd(year)

	// 1. 과거 시계열
	hist, err := b.historical.Historical(ctx, feed.Query(year))
	if err != nil {
		return nil, fmt.Errorf("get historical: %w", err)
	}
	if feed.Historical.DateFromContract {
		if hist, err = redateByContract(hist, year); err != nil {
			return nil, err
		}
	}

	last, ok := LastDate(hist)
	if !ok {
		return nil, ErrNoHistorical
	}
	if last.After(yearEnd) {
		last = yearEnd
	}
	filled := FillPrices(hist, yearStart, last)

	// 2. 선도 커브 (마지막 과거일 이후 ~ 연말)
	var forward []contracts.PricePoint
	if feed.Forward && last.Before(yearEnd) {
		forward, err = b.curves.ForwardSeries(ctx, feed.Commodity, feed.Market, last, yearEnd)
		if err != nil {
			return nil, fmt.Errorf("get forward series: %w", err)
		}
	}

	merged := Merge(filled, forward)

	// 3. 단위/통화 변환
	var rates *RateTable
	if feed.Conversion != nil {
		rates, err = b.rateTable(ctx, feed.Conversion, rateCache)
		if err != nil {
			return nil, err
		}
	}

	return Convert(feed, merged, feed.Conversion, rates, b.now())
}

func (b *Builder) rateTable(ctx context.Context, conv *feedconfig.Conversion, cache map[string]*RateTable) (*RateTable, error) {
	to := conv.ToCurrency
	if to == "" {
		to = b.config.TargetCurrency
	}
	pair := conv.FromCurrency + "_" + to
	if t, ok := cache[pair]; ok {
		return t, nil
	}

	year := b.Year()
	raw, err := b.fx.RatesForYear(ctx, conv.FromCurrency, to, year)
	if err != nil {
		return nil, fmt.Errorf("get fx rates %s: %w", pair, err)
	}

	filled := FillRates(raw, YearStart(year), YearEnd(year))
	if len(filled) == 0 {
		return nil, fmt.Errorf("%w: %s for %d", ErrMissingRate, pair, year)
	}

	t := NewRateTable(filled)
	cache[pair] = t
	return t, nil
}

// redateByContract moves each point to the month end named by its contract in year
func redateByContract(points []contracts.PricePoint, year int) ([]contracts.PricePoint, error) {
	out := make([]contracts.PricePoint, 0, len(points))
	for _, p := range points {
		d, err := ContractMonthEnd(p.ContractName, year)
		if err != nil {
			return nil, err
		}
		p.Date = d
		out = append(out, p)
	}
	return out, nil
}
