package s1_curve

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/rowenagold/CommoditiesPricesForwardCurve/internal/contracts"
)

var (
	// ErrMalformedQuote marks a quote that cannot enter curve assembly
	ErrMalformedQuote = errors.New("curve: malformed quote")
	// ErrInvertedDelivery marks a quote whose delivery end precedes its start
	ErrInvertedDelivery = errors.New("curve: delivery end before delivery start")
)

// Rejection is a raw quote dropped by DeriveAll
type Rejection struct {
	Quote contracts.RawQuote
	Err   error
}

// Reason returns a short metric label for the rejection
func (r Rejection) Reason() string {
	switch {
	case errors.Is(r.Err, ErrInvertedDelivery):
		return "inverted_delivery"
	case errors.Is(r.Err, contracts.ErrUnknownContractType):
		return "unknown_contract_type"
	default:
		return "malformed"
	}
}

// DeriveFeatures validates a raw quote and annotates it with granularity,
// quarter, season, calendar year and day count.
func DeriveFeatures(raw contracts.RawQuote) (contracts.Quote, error) {
	if raw.DeliveryStart == nil || raw.DeliveryEnd == nil {
		return contracts.Quote{}, fmt.Errorf("%w: missing delivery dates", ErrMalformedQuote)
	}
	if !raw.Price.Valid {
		return contracts.Quote{}, fmt.Errorf("%w: missing price", ErrMalformedQuote)
	}
	if !raw.Volume.Valid {
		return contracts.Quote{}, fmt.Errorf("%w: missing volume", ErrMalformedQuote)
	}
	if raw.Volume.Decimal.IsNegative() {
		return contracts.Quote{}, fmt.Errorf("%w: negative volume %s", ErrMalformedQuote, raw.Volume.Decimal)
	}

	start := contracts.Day(*raw.DeliveryStart)
	end := contracts.Day(*raw.DeliveryEnd)
	if end.Before(start) {
		return contracts.Quote{}, fmt.Errorf("%w: %w: %s..%s", ErrMalformedQuote, ErrInvertedDelivery,
			start.Format(contracts.DateLayout), end.Format(contracts.DateLayout))
	}

	granularity, err := contracts.ParseGranularity(raw.ContractType)
	if err != nil {
		return contracts.Quote{}, fmt.Errorf("%w: %w", ErrMalformedQuote, err)
	}

	return contracts.Quote{
		Commodity:     raw.Commodity,
		Market:        raw.Market,
		Exchange:      raw.Exchange,
		Currency:      raw.Currency,
		Unit:          raw.Unit,
		ContractType:  raw.ContractType,
		ContractName:  raw.ContractName,
		ObservedAt:    raw.ObservedAt,
		Price:         raw.Price.Decimal,
		Open:          raw.Open,
		High:          raw.High,
		Low:           raw.Low,
		OpenInterest:  raw.OpenInterest,
		Volume:        raw.Volume.Decimal,
		DeliveryStart: start,
		DeliveryEnd:   end,
		Granularity:   granularity,
		Quarter:       QuarterOf(start.Month()),
		Season:        SeasonOf(start),
		Year:          start.Year(),
		DayCount:      DayCount(start, end),
	}, nil
}

// DeriveAll derives every quote, collecting the ones that fail instead of stopping
func DeriveAll(raws []contracts.RawQuote) ([]contracts.Quote, []Rejection) {
	quotes := make([]contracts.Quote, 0, len(raws))
	var rejected []Rejection

	for _, raw := range raws {
		q, err := DeriveFeatures(raw)
		if err != nil {
			rejected = append(rejected, Rejection{Quote: raw, Err: err})
			continue
		}
		quotes = append(quotes, q)
	}

	return quotes, rejected
}

// QuarterOf maps a month to its calendar quarter (1-4)
func QuarterOf(m time.Month) int {
	return (int(m)-1)/3 + 1
}

// SeasonOf returns "winter<year>" for October..March and "summer<year>" otherwise.
// The year is always d's own year, so January 2020 is winter2020 while October 2019 is winter2019.
func SeasonOf(d time.Time) string {
	switch d.Month() {
	case time.October, time.November, time.December, time.January, time.February, time.March:
		return "winter" + strconv.Itoa(d.Year())
	default:
		return "summer" + strconv.Itoa(d.Year())
	}
}

// DayCount returns the inclusive number of days in [start, end]
func DayCount(start, end time.Time) int {
	return int(contracts.Day(end).Sub(contracts.Day(start)).Hours()/24) + 1
}
