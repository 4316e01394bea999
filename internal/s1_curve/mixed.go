package s1_curve

import (
	"sort"

	"github.com/rowenagold/CommoditiesPricesForwardCurve/internal/contracts"
)

// BuildMixed assembles the mixed curve of one group.
// Years are resolved independently and written finest-first into one table spanning the group.
func BuildMixed(g Group, resolver *Resolver) (contracts.CurveSeries, []Decision) {
	series := contracts.CurveSeries{CurveType: contracts.CurveMixed, Key: g.Key}

	start, end, ok := SpanOf(g.Quotes)
	if !ok {
		return series, nil
	}

	table := NewDayTable(start, end, SkipIfFilled)
	var decisions []Decision

	for _, part := range g.Years() {
		yearDecisions := resolver.Decide(part.Quotes)
		decisions = append(decisions, yearDecisions...)

		var eligible []*contracts.Quote
		for _, d := range yearDecisions {
			if d.Eligible {
				eligible = append(eligible, d.Quote)
			}
		}

		SortMixed(eligible)
		for _, q := range eligible {
			table.Write(q)
		}
	}

	series.Cells = table.Cells()
	return series, decisions
}

// SortMixed orders quotes finest and earliest-ending first.
// Remaining ties fall through to contract type, name and observation time so the order never depends on input order.
func SortMixed(quotes []*contracts.Quote) {
	sort.Slice(quotes, func(i, j int) bool {
		a, b := quotes[i], quotes[j]
		if ra, rb := a.Granularity.Rank(), b.Granularity.Rank(); ra != rb {
			return ra < rb
		}
		if !a.DeliveryEnd.Equal(b.DeliveryEnd) {
			return a.DeliveryEnd.Before(b.DeliveryEnd)
		}
		if !a.DeliveryStart.Equal(b.DeliveryStart) {
			return a.DeliveryStart.Before(b.DeliveryStart)
		}
		if a.ContractType != b.ContractType {
			return a.ContractType < b.ContractType
		}
		if a.ContractName != b.ContractName {
			return a.ContractName < b.ContractName
		}
		return a.ObservedAt.Before(b.ObservedAt)
	})
}
