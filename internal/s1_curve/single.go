package s1_curve

import (
	"sort"

	"github.com/rowenagold/CommoditiesPricesForwardCurve/internal/contracts"
)

// BuildSingle assembles one curve per granularity present in the group.
// Series come back in granularity order; granularities without quotes are skipped.
func BuildSingle(g Group) []contracts.CurveSeries {
	var out []contracts.CurveSeries

	for _, gran := range contracts.AllGranularities {
		quotes := g.ByGranularity(gran)
		if len(quotes) == 0 {
			continue
		}

		SortChronological(quotes)
		if !gran.IsLeaf() {
			quotes = TruncateInactiveTail(quotes)
		}

		start, end, _ := SpanOf(quotes)
		table := NewDayTable(start, end, Overwrite)
		for _, q := range quotes {
			table.Write(q)
		}

		out = append(out, contracts.CurveSeries{
			CurveType:   contracts.CurveSingle,
			Key:         g.Key,
			Granularity: gran,
			Cells:       table.Cells(),
		})
	}

	return out
}

// TruncateInactiveTail drops every quote after the last one with nonzero volume.
// When no quote traded the series is kept whole.
func TruncateInactiveTail(quotes []*contracts.Quote) []*contracts.Quote {
	last := -1
	for i, q := range quotes {
		if q.Active() {
			last = i
		}
	}
	if last < 0 {
		return quotes
	}
	return quotes[:last+1]
}

// SortChronological orders quotes by delivery window then observation time
func SortChronological(quotes []*contracts.Quote) {
	sort.Slice(quotes, func(i, j int) bool {
		a, b := quotes[i], quotes[j]
		if !a.DeliveryStart.Equal(b.DeliveryStart) {
			return a.DeliveryStart.Before(b.DeliveryStart)
		}
		if !a.DeliveryEnd.Equal(b.DeliveryEnd) {
			return a.DeliveryEnd.Before(b.DeliveryEnd)
		}
		if !a.ObservedAt.Equal(b.ObservedAt) {
			return a.ObservedAt.Before(b.ObservedAt)
		}
		return a.ContractName < b.ContractName
	})
}
