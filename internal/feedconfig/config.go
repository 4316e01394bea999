package feedconfig

import (
	"github.com/shopspring/decimal"

	"github.com/rowenagold/CommoditiesPricesForwardCurve/internal/contracts"
)

// Historical selection modes
const (
	ModeDaily   = "daily"
	ModeMonthly = "monthly"
)

// Config는 연간 커브 병합 대상 피드 전체 설정
type Config struct {
	Version string `yaml:"version" json:"version"`
	Feeds   []Feed `yaml:"feeds" json:"feeds"`
}

// Feed is one commodity/market merged into a full-year curve
type Feed struct {
	ID         string      `yaml:"id" json:"id"`
	Commodity  string      `yaml:"commodity" json:"commodity"`
	Market     string      `yaml:"market" json:"market"`
	Historical Historical  `yaml:"historical" json:"historical"`
	Forward    bool        `yaml:"forward" json:"forward"` // 혼합 커브로 연말까지 연장
	Conversion *Conversion `yaml:"conversion,omitempty" json:"conversion,omitempty"`
}

// Historical selects the historical series of a feed
type Historical struct {
	Mode         string `yaml:"mode" json:"mode"`                                       // daily, monthly
	ContractName string `yaml:"contract_name,omitempty" json:"contract_name,omitempty"` // daily 전용
	LagMonths    int    `yaml:"lag_months,omitempty" json:"lag_months,omitempty"`       // monthly: 관측월 = 인도월 - lag
	Average      bool   `yaml:"average,omitempty" json:"average,omitempty"`             // monthly: 월 평균
	// DateFromContract dates each point at the month end named by its contract
	DateFromContract bool `yaml:"date_from_contract,omitempty" json:"date_from_contract,omitempty"`
}

// Conversion turns a price into the target unit and currency
type Conversion struct {
	MetricFactor decimal.Decimal `yaml:"metric_factor" json:"metric_factor"`
	MetricName   string          `yaml:"metric_name" json:"metric_name"`
	FromCurrency string          `yaml:"from_currency" json:"from_currency"`
	ToCurrency   string          `yaml:"to_currency,omitempty" json:"to_currency,omitempty"` // 비어 있으면 목표 통화
}

// Query builds the historical source query of the feed for year
func (f *Feed) Query(year int) contracts.HistoricalQuery {
	q := contracts.HistoricalQuery{
		Commodity: f.Commodity,
		Market:    f.Market,
		Year:      year,
	}
	if f.Historical.Mode == ModeMonthly {
		q.Monthly = true
		q.LagMonths = f.Historical.LagMonths
		q.Average = f.Historical.Average
	} else {
		q.ContractName = f.Historical.ContractName
	}
	return q
}

// Find returns the feed with the given commodity and market
func (c *Config) Find(commodity, market string) (*Feed, bool) {
	for i := range c.Feeds {
		if c.Feeds[i].Commodity == commodity && c.Feeds[i].Market == market {
			return &c.Feeds[i], true
		}
	}
	return nil, false
}

// Default returns the production feed set
func Default() *Config {
	return &Config{
		Version: "1",
		Feeds: []Feed{
			{
				ID:         "carbon_eua",
				Commodity:  "carbon",
				Market:     "eua",
				Historical: Historical{Mode: ModeDaily, ContractName: "daily tp3"},
				Forward:    true,
			},
			{
				ID:         "gas_ttf",
				Commodity:  "gas",
				Market:     "ttf",
				Historical: Historical{Mode: ModeDaily, ContractName: "day-ahead"},
				Forward:    true,
			},
			{
				ID:         "coal_api2",
				Commodity:  "coal",
				Market:     "api2",
				Historical: Historical{Mode: ModeMonthly},
				Forward:    true,
				Conversion: &Conversion{
					MetricFactor: decimal.RequireFromString("8.141"),
					MetricName:   "tonne_to_MW/h",
					FromCurrency: "USD",
				},
			},
			{
				ID:        "brent",
				Commodity: "brent",
				Market:    "ipe e-brent",
				Historical: Historical{
					Mode:             ModeMonthly,
					LagMonths:        2,
					Average:          true,
					DateFromContract: true,
				},
				Forward: false,
				Conversion: &Conversion{
					MetricFactor: decimal.RequireFromString("1.6282"),
					MetricName:   "Barrel_to_MW/h",
					FromCurrency: "USD",
				},
			},
		},
	}
}
