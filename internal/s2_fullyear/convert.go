package s2_fullyear

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/rowenagold/CommoditiesPricesForwardCurve/internal/contracts"
	"github.com/rowenagold/CommoditiesPricesForwardCurve/internal/feedconfig"
)

// divisionPrecision keeps price per unit exact enough for MWh prices
const divisionPrecision = 10

// RateTable holds one exchange rate per day
type RateTable struct {
	pair  string
	rates map[time.Time]decimal.Decimal
}

// NewRateTable indexes already filled daily rates
func NewRateTable(rates []contracts.FxRate) *RateTable {
	t := &RateTable{rates: make(map[time.Time]decimal.Decimal, len(rates))}
	for _, r := range rates {
		if t.pair == "" {
			t.pair = r.Pair()
		}
		t.rates[contracts.Day(r.Date)] = r.Rate
	}
	return t
}

// Pair returns the currency change tag of the table
func (t *RateTable) Pair() string {
	return t.pair
}

// Rate returns the rate of day d
func (t *RateTable) Rate(d time.Time) (decimal.Decimal, bool) {
	r, ok := t.rates[contracts.Day(d)]
	return r, ok
}

// Convert turns merged points into full-year rows.
// A nil conversion passes prices through with factor 1, rate 1 and the "nil" tags.
func Convert(feed *feedconfig.Feed, points []Point, conv *feedconfig.Conversion, rates *RateTable, runDate time.Time) ([]contracts.FullYearRow, error) {
	rows := make([]contracts.FullYearRow, 0, len(points))
	one := decimal.NewFromInt(1)

	for _, p := range points {
		row := contracts.FullYearRow{
			Commodity:    feed.Commodity,
			Market:       feed.Market,
			Date:         p.Date,
			ContractName: p.ContractName,
			Source:       p.Source,
			Price:        p.Price,
			ModelRunDate: contracts.Day(runDate),
		}

		if conv == nil {
			row.MetricFactor = one
			row.MetricName = contracts.NilTag
			row.PricePerUnit = p.Price
			row.ExchangeRate = one
			row.CurrencyChange = contracts.NilTag
			row.PriceTarget = p.Price
			rows = append(rows, row)
			continue
		}

		rate, ok := rates.Rate(p.Date)
		if !ok {
			return nil, fmt.Errorf("%w: %s on %s", ErrMissingRate, rates.Pair(), p.Date.Format(contracts.DateLayout))
		}

		perUnit := p.Price.DivRound(conv.MetricFactor, divisionPrecision)
		row.MetricFactor = conv.MetricFactor
		row.MetricName = conv.MetricName
		row.PricePerUnit = perUnit
		row.ExchangeRate = rate
		row.CurrencyChange = rates.Pair()
		row.PriceTarget = perUnit.Mul(rate)
		rows = append(rows, row)
	}

	return rows, nil
}
