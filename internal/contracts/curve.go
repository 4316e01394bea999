package contracts

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CurveType tags an assembled curve
type CurveType string

const (
	CurveMixed  CurveType = "mixed"
	CurveSingle CurveType = "single"
)

// Valid reports whether t is a known curve type
func (t CurveType) Valid() bool {
	return t == CurveMixed || t == CurveSingle
}

// DayCell is one calendar day of a curve.
// Quote is nil only when Missing is set (no value before the first resolved day).
type DayCell struct {
	Date    time.Time `json:"date"`
	Quote   *Quote    `json:"quote,omitempty"`
	Filled  bool      `json:"filled"`  // carried forward from an earlier day
	Missing bool      `json:"missing"` // leading day with nothing to carry
}

// CurveSeries is a gap-free, date-ordered run of day cells for one group
type CurveSeries struct {
	CurveType   CurveType   `json:"curve_type"`
	Key         GroupKey    `json:"key"`
	Granularity Granularity `json:"granularity"` // single curves only
	Cells       []DayCell   `json:"cells"`
}

// Series names the stored series: "mixed" or the single curve's granularity
func (s *CurveSeries) Series() string {
	if s.CurveType == CurveMixed {
		return string(CurveMixed)
	}
	return s.Granularity.String()
}

// Start returns the first date of the series
func (s *CurveSeries) Start() time.Time {
	if len(s.Cells) == 0 {
		return time.Time{}
	}
	return s.Cells[0].Date
}

// End returns the last date of the series
func (s *CurveSeries) End() time.Time {
	if len(s.Cells) == 0 {
		return time.Time{}
	}
	return s.Cells[len(s.Cells)-1].Date
}

// MissingDays counts unresolved leading cells
func (s *CurveSeries) MissingDays() int {
	n := 0
	for _, c := range s.Cells {
		if c.Missing {
			n++
		}
	}
	return n
}

// FilledDays counts forward-filled cells
func (s *CurveSeries) FilledDays() int {
	n := 0
	for _, c := range s.Cells {
		if c.Filled {
			n++
		}
	}
	return n
}

// CurveRow is the flattened row handed to the curve sink
type CurveRow struct {
	RunID        uuid.UUID           `json:"run_id"`
	CurveType    CurveType           `json:"curve_type"`
	Series       string              `json:"series"`
	Commodity    string              `json:"commodity"`
	Market       string              `json:"market"`
	Exchange     string              `json:"exchange"`
	Date         time.Time           `json:"utc_timestamp"`
	ContractType string              `json:"contract_type1"`
	ContractName string              `json:"contract_type2"`
	TradeDate    *time.Time          `json:"utc_trade_date,omitempty"`
	Currency     string              `json:"currency"`
	Unit         string              `json:"unit"`
	Price        decimal.NullDecimal `json:"price"`
	Open         decimal.NullDecimal `json:"open"`
	High         decimal.NullDecimal `json:"high"`
	Low          decimal.NullDecimal `json:"low"`
	OpenInterest decimal.NullDecimal `json:"oi"`
	Volume       decimal.NullDecimal `json:"volume"`
	Missing      bool                `json:"missing"`
	Filled       bool                `json:"filled"`
}

// Key returns the row's contract group
func (r *CurveRow) Key() GroupKey {
	return GroupKey{Commodity: r.Commodity, Market: r.Market, Exchange: r.Exchange}
}

// Rows flattens the series into sink rows
func (s *CurveSeries) Rows(runID uuid.UUID) []CurveRow {
	rows := make([]CurveRow, 0, len(s.Cells))
	for _, cell := range s.Cells {
		row := CurveRow{
			RunID:     runID,
			CurveType: s.CurveType,
			Series:    s.Series(),
			Commodity: s.Key.Commodity,
			Market:    s.Key.Market,
			Exchange:  s.Key.Exchange,
			Date:      cell.Date,
			Missing:   cell.Missing,
			Filled:    cell.Filled,
		}
		if s.CurveType == CurveSingle {
			row.ContractType = s.Granularity.String()
		}

		if q := cell.Quote; q != nil {
			observed := q.ObservedAt
			row.ContractType = q.Granularity.String()
			row.ContractName = q.ContractName
			row.TradeDate = &observed
			row.Currency = q.Currency
			row.Unit = q.Unit
			row.Price = decimal.NewNullDecimal(q.Price)
			row.Open = q.Open
			row.High = q.High
			row.Low = q.Low
			row.OpenInterest = q.OpenInterest
			row.Volume = decimal.NewNullDecimal(q.Volume)
		}
		rows = append(rows, row)
	}
	return rows
}

// CurveSet is the output of one curve build
type CurveSet struct {
	RunID     uuid.UUID     `json:"run_id"`
	TradeDate time.Time     `json:"trade_date"`
	BuiltAt   time.Time     `json:"built_at"`
	Mixed     []CurveSeries `json:"mixed"`
	Single    []CurveSeries `json:"single"`
}

// CurveFilter selects stored curve rows
type CurveFilter struct {
	CurveType CurveType
	Commodity string
	Market    string
	Exchange  string
	Series    string
	From      *time.Time
	To        *time.Time
}
