package contracts

import (
	"context"
	"time"
)

// ⭐ SSOT: Repository 인터페이스 정의는 여기서만

// QuoteSource supplies raw contract quotes
type QuoteSource interface {
	// QuotesForTradeDate returns quotes observed on date
	QuotesForTradeDate(ctx context.Context, date time.Time) ([]RawQuote, error)
	// LatestTradeDate returns the latest observation date that has a price
	LatestTradeDate(ctx context.Context) (time.Time, error)
}

// FxSource supplies daily exchange rates for one pair
type FxSource interface {
	RatesForYear(ctx context.Context, from, to string, year int) ([]FxRate, error)
}

// FxSink stores collected exchange rates
type FxSink interface {
	SaveRates(ctx context.Context, rates []FxRate) (int, error)
}

// HistoricalQuery selects a historical series for one feed
type HistoricalQuery struct {
	Commodity string
	Market    string
	Year      int

	// Daily mode: every observation of ContractName during Year
	ContractName string

	// Monthly mode: contract "<month><yy>" observed LagMonths before its month
	Monthly   bool
	LagMonths int
	Average   bool
}

// HistoricalSource supplies historical price points
type HistoricalSource interface {
	Historical(ctx context.Context, q HistoricalQuery) ([]PricePoint, error)
}

// CurveSink persists assembled curves
type CurveSink interface {
	SaveCurves(ctx context.Context, rows []CurveRow) (int, error)
}

// CurveReader reads persisted curves
type CurveReader interface {
	ListCurves(ctx context.Context, filter CurveFilter) ([]CurveRow, error)
	ListGroups(ctx context.Context, curveType CurveType) ([]GroupKey, error)
	// ForwardSeries returns the mixed curve for commodity/market strictly after `after` up to `until`
	ForwardSeries(ctx context.Context, commodity, market string, after, until time.Time) ([]PricePoint, error)
}

// FullYearSink persists merged full-year curves
type FullYearSink interface {
	SaveFullYear(ctx context.Context, rows []FullYearRow) (int, error)
}

// FullYearReader reads merged full-year curves
type FullYearReader interface {
	ListFullYear(ctx context.Context, commodity, market string, year int) ([]FullYearRow, error)
}
