package s2_fullyear

import (
	"time"

	"github.com/rowenagold/CommoditiesPricesForwardCurve/internal/contracts"
)

// fillDaily lays items on a daily index [start, end], forward-fills the gaps and then
// back-fills the leading ones. Items outside the index are ignored and a later item
// on the same day replaces an earlier one.
func fillDaily[T any](items []T, dateOf func(T) time.Time, redate func(T, time.Time) T, start, end time.Time) []T {
	start, end = contracts.Day(start), contracts.Day(end)
	if end.Before(start) {
		return nil
	}

	n := int(end.Sub(start).Hours()/24) + 1
	slots := make([]*T, n)
	for i := range items {
		d := contracts.Day(dateOf(items[i]))
		if d.Before(start) || d.After(end) {
			continue
		}
		slots[int(d.Sub(start).Hours()/24)] = &items[i]
	}

	// ffill
	var last *T
	for i := range slots {
		if slots[i] != nil {
			last = slots[i]
		} else {
			slots[i] = last
		}
	}
	// bfill
	var next *T
	for i := n - 1; i >= 0; i-- {
		if slots[i] != nil {
			next = slots[i]
		} else {
			slots[i] = next
		}
	}

	if slots[0] == nil {
		return nil
	}

	out := make([]T, n)
	for i, item := range slots {
		out[i] = redate(*item, start.AddDate(0, 0, i))
	}
	return out
}

// FillPrices indexes price points on every day of [start, end]
func FillPrices(points []contracts.PricePoint, start, end time.Time) []contracts.PricePoint {
	return fillDaily(points,
		func(p contracts.PricePoint) time.Time { return p.Date },
		func(p contracts.PricePoint, d time.Time) contracts.PricePoint {
			p.Date = d
			return p
		},
		start, end)
}

// FillRates indexes exchange rates on every day of [start, end]
func FillRates(rates []contracts.FxRate, start, end time.Time) []contracts.FxRate {
	return fillDaily(rates,
		func(r contracts.FxRate) time.Time { return r.Date },
		func(r contracts.FxRate, d time.Time) contracts.FxRate {
			r.Date = d
			return r
		},
		start, end)
}

// YearStart returns January 1 of year
func YearStart(year int) time.Time {
	return time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
}

// YearEnd returns December 31 of year
func YearEnd(year int) time.Time {
	return time.Date(year, time.December, 31, 0, 0, 0, 0, time.UTC)
}
