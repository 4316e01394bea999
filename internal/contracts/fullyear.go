package contracts

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// NilTag marks pass-through rows that need no metric or currency conversion
const NilTag = "nil"

// PricePoint is one dated price of a historical or forward series
type PricePoint struct {
	Date         time.Time       `json:"date"`
	ContractName string          `json:"contract_name"`
	Price        decimal.Decimal `json:"price"`
}

// FxRate is one daily exchange rate
type FxRate struct {
	Date         time.Time       `json:"date"`
	FromCurrency string          `json:"from_currency"`
	ToCurrency   string          `json:"to_currency"`
	Rate         decimal.Decimal `json:"rate"`
}

// Pair returns the currency change tag, e.g. USD_EUR
func (r FxRate) Pair() string {
	return r.FromCurrency + "_" + r.ToCurrency
}

// PointSource tells where a full-year row came from
type PointSource string

const (
	SourceHistorical PointSource = "historical"
	SourceForward    PointSource = "forward"
)

// FullYearRow is one day of a merged and converted full-year curve
type FullYearRow struct {
	Commodity      string          `json:"commodity"`
	Market         string          `json:"market"`
	Date           time.Time       `json:"utc_timestamp"`
	ContractName   string          `json:"contract_name"`
	Source         PointSource     `json:"source"`
	Price          decimal.Decimal `json:"price"`
	MetricFactor   decimal.Decimal `json:"metric_change"`
	MetricName     string          `json:"metrics_name"`
	PricePerUnit   decimal.Decimal `json:"price_per_unit"`
	ExchangeRate   decimal.Decimal `json:"exchange_rate"`
	CurrencyChange string          `json:"currency_change"`
	PriceTarget    decimal.Decimal `json:"price_target"`
	ModelRunDate   time.Time       `json:"model_run_date"`
}

// MonthlyContractName returns the monthly contract label for month m of year, e.g. "january19"
func MonthlyContractName(m time.Month, year int) string {
	return fmt.Sprintf("%s%02d", strings.ToLower(m.String()), year%100)
}
