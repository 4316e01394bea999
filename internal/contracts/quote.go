package contracts

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// DateLayout is the wire format for delivery and curve dates
const DateLayout = "2006-01-02"

// RawQuote is one contract price row as it arrives from the quote source.
// Nullable columns stay nullable until cleaning.
type RawQuote struct {
	Commodity     string              `json:"commodity"`
	Market        string              `json:"market"`
	Exchange      string              `json:"exchange"`
	Currency      string              `json:"currency"`
	Unit          string              `json:"unit"`
	ContractType  string              `json:"contract_type"`
	ContractName  string              `json:"contract_name"`
	ObservedAt    time.Time           `json:"utc_timestamp"`
	Price         decimal.NullDecimal `json:"price"`
	Open          decimal.NullDecimal `json:"open"`
	High          decimal.NullDecimal `json:"high"`
	Low           decimal.NullDecimal `json:"low"`
	OpenInterest  decimal.NullDecimal `json:"oi"`
	Volume        decimal.NullDecimal `json:"volume"`
	DeliveryStart *time.Time          `json:"delivery_start"`
	DeliveryEnd   *time.Time          `json:"delivery_end"`
}

// Quote is a cleaned contract quote annotated with its derived features.
// Derived fields are set once by the feature deriver and never changed.
type Quote struct {
	Commodity     string              `json:"commodity"`
	Market        string              `json:"market"`
	Exchange      string              `json:"exchange"`
	Currency      string              `json:"currency"`
	Unit          string              `json:"unit"`
	ContractType  string              `json:"contract_type"`
	ContractName  string              `json:"contract_name"`
	ObservedAt    time.Time           `json:"utc_timestamp"`
	Price         decimal.Decimal     `json:"price"`
	Open          decimal.NullDecimal `json:"open"`
	High          decimal.NullDecimal `json:"high"`
	Low           decimal.NullDecimal `json:"low"`
	OpenInterest  decimal.NullDecimal `json:"oi"`
	Volume        decimal.Decimal     `json:"volume"`
	DeliveryStart time.Time           `json:"delivery_start"`
	DeliveryEnd   time.Time           `json:"delivery_end"`

	Granularity Granularity `json:"granularity"`
	Quarter     int         `json:"quarter"`
	Season      string      `json:"season"`
	Year        int         `json:"year"`
	DayCount    int         `json:"day_count"`
}

// Key returns the contract group the quote belongs to
func (q *Quote) Key() GroupKey {
	return GroupKey{Commodity: q.Commodity, Market: q.Market, Exchange: q.Exchange}
}

// Active reports whether the contract traded (volume > 0)
func (q *Quote) Active() bool {
	return q.Volume.IsPositive()
}

// Covers reports whether q's delivery window contains other's window
func (q *Quote) Covers(other *Quote) bool {
	return !q.DeliveryStart.After(other.DeliveryStart) && !q.DeliveryEnd.Before(other.DeliveryEnd)
}

func (q *Quote) String() string {
	return fmt.Sprintf("%s %s %s..%s", q.Key(), q.ContractType,
		q.DeliveryStart.Format(DateLayout), q.DeliveryEnd.Format(DateLayout))
}

// GroupKey identifies a contract group
type GroupKey struct {
	Commodity string `json:"commodity"`
	Market    string `json:"market"`
	Exchange  string `json:"exchange"`
}

func (k GroupKey) String() string {
	return k.Commodity + "/" + k.Market + "/" + k.Exchange
}

// Less orders group keys by commodity, market, exchange
func (k GroupKey) Less(other GroupKey) bool {
	if k.Commodity != other.Commodity {
		return k.Commodity < other.Commodity
	}
	if k.Market != other.Market {
		return k.Market < other.Market
	}
	return k.Exchange < other.Exchange
}

// Day truncates t to its UTC calendar date
func Day(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
