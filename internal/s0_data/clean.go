package s0_data

import (
	"strings"
	"time"

	"github.com/rowenagold/CommoditiesPricesForwardCurve/internal/contracts"
)

// Drop reasons reported by CleanQuotes
const (
	DropMissingDelivery = "missing_delivery"
	DropMissingPrice    = "missing_price"
	DropMissingVolume   = "missing_volume"
	DropBeforeYear      = "before_reference_year"
	DropDuplicate       = "duplicate"
)

// CleanStats reports what CleanQuotes kept and dropped
type CleanStats struct {
	Input   int            `json:"input"`
	Kept    int            `json:"kept"`
	Dropped map[string]int `json:"dropped"`
}

// Total returns the number of dropped quotes
func (s CleanStats) Total() int {
	n := 0
	for _, c := range s.Dropped {
		n += c
	}
	return n
}

// CleanQuotes prepares raw quotes for curve assembly.
// Nulls are dropped, strings lowercased, quotes delivering before refYear removed and
// duplicates on (group, delivery window) collapsed to the last occurrence.
// ⭐ SSOT: 원시 시세 정제는 여기서만
func CleanQuotes(raws []contracts.RawQuote, refYear int) ([]contracts.RawQuote, CleanStats) {
	stats := CleanStats{Input: len(raws), Dropped: make(map[string]int)}

	type dedupKey struct {
		group      contracts.GroupKey
		start, end time.Time
	}

	kept := make([]contracts.RawQuote, 0, len(raws))
	index := make(map[dedupKey]int)

	for _, q := range raws {
		switch {
		case q.DeliveryStart == nil || q.DeliveryEnd == nil:
			stats.Dropped[DropMissingDelivery]++
			continue
		case !q.Price.Valid:
			stats.Dropped[DropMissingPrice]++
			continue
		case !q.Volume.Valid:
			stats.Dropped[DropMissingVolume]++
			continue
		case q.DeliveryStart.Year() < refYear:
			stats.Dropped[DropBeforeYear]++
			continue
		}

		q = lowercase(q)
		k := dedupKey{
			group: contracts.GroupKey{Commodity: q.Commodity, Market: q.Market, Exchange: q.Exchange},
			start: contracts.Day(*q.DeliveryStart),
			end:   contracts.Day(*q.DeliveryEnd),
		}
		if pos, ok := index[k]; ok {
			// keep last: replace in place so relative order of first sightings is stable
			kept[pos] = q
			stats.Dropped[DropDuplicate]++
			continue
		}
		index[k] = len(kept)
		kept = append(kept, q)
	}

	stats.Kept = len(kept)
	return kept, stats
}

func lowercase(q contracts.RawQuote) contracts.RawQuote {
	q.Commodity = strings.ToLower(strings.TrimSpace(q.Commodity))
	q.Market = strings.ToLower(strings.TrimSpace(q.Market))
	q.Exchange = strings.ToLower(strings.TrimSpace(q.Exchange))
	q.Currency = strings.ToLower(strings.TrimSpace(q.Currency))
	q.Unit = strings.ToLower(strings.TrimSpace(q.Unit))
	q.ContractType = strings.ToLower(strings.TrimSpace(q.ContractType))
	q.ContractName = strings.ToLower(strings.TrimSpace(q.ContractName))
	return q
}

// LastBusinessDay returns the trading day quotes are read from:
// Monday and Sunday look back to Friday, any other day to yesterday.
func LastBusinessDay(now time.Time) time.Time {
	d := contracts.Day(now)
	switch d.Weekday() {
	case time.Monday:
		return d.AddDate(0, 0, -3)
	case time.Sunday:
		return d.AddDate(0, 0, -2)
	default:
		return d.AddDate(0, 0, -1)
	}
}
