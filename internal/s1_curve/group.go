package s1_curve

import (
	"sort"

	"github.com/rowenagold/CommoditiesPricesForwardCurve/internal/contracts"
)

// Group holds the quotes of one commodity/market/exchange
type Group struct {
	Key    contracts.GroupKey
	Quotes []*contracts.Quote
}

// YearPartition holds the quotes of a group whose delivery starts in Year
type YearPartition struct {
	Year   int
	Quotes []*contracts.Quote
}

// Partition groups quotes by (commodity, market, exchange).
// Groups come back sorted by key and keep the input order of their quotes.
func Partition(quotes []contracts.Quote) []Group {
	index := make(map[contracts.GroupKey]int)
	var groups []Group

	for i := range quotes {
		q := &quotes[i]
		key := q.Key()
		pos, ok := index[key]
		if !ok {
			pos = len(groups)
			index[key] = pos
			groups = append(groups, Group{Key: key})
		}
		groups[pos].Quotes = append(groups[pos].Quotes, q)
	}

	sort.Slice(groups, func(i, j int) bool {
		return groups[i].Key.Less(groups[j].Key)
	})
	return groups
}

// Years splits the group by calendar year of delivery start, in ascending year order
func (g *Group) Years() []YearPartition {
	index := make(map[int]int)
	var parts []YearPartition

	for _, q := range g.Quotes {
		pos, ok := index[q.Year]
		if !ok {
			pos = len(parts)
			index[q.Year] = pos
			parts = append(parts, YearPartition{Year: q.Year})
		}
		parts[pos].Quotes = append(parts[pos].Quotes, q)
	}

	sort.Slice(parts, func(i, j int) bool {
		return parts[i].Year < parts[j].Year
	})
	return parts
}

// ByGranularity returns the group's quotes of exactly granularity g, in input order
func (g *Group) ByGranularity(gran contracts.Granularity) []*contracts.Quote {
	var out []*contracts.Quote
	for _, q := range g.Quotes {
		if q.Granularity == gran {
			out = append(out, q)
		}
	}
	return out
}
