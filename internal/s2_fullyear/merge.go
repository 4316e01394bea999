package s2_fullyear

import (
	"sort"
	"time"

	"github.com/rowenagold/CommoditiesPricesForwardCurve/internal/contracts"
)

// Point is a merged price point tagged with the series it came from
type Point struct {
	contracts.PricePoint
	Source contracts.PointSource
}

// Merge concatenates historical then forward points and keeps the first point of each date.
// Historical prices therefore win wherever the two series overlap.
func Merge(historical, forward []contracts.PricePoint) []Point {
	seen := make(map[time.Time]bool, len(historical)+len(forward))
	out := make([]Point, 0, len(historical)+len(forward))

	add := func(points []contracts.PricePoint, src contracts.PointSource) {
		for _, p := range points {
			p.Date = contracts.Day(p.Date)
			if seen[p.Date] {
				continue
			}
			seen[p.Date] = true
			out = append(out, Point{PricePoint: p, Source: src})
		}
	}
	add(historical, contracts.SourceHistorical)
	add(forward, contracts.SourceForward)

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Date.Before(out[j].Date)
	})
	return out
}

// LastDate returns the latest date of points
func LastDate(points []contracts.PricePoint) (time.Time, bool) {
	if len(points) == 0 {
		return time.Time{}, false
	}
	last := points[0].Date
	for _, p := range points[1:] {
		if p.Date.After(last) {
			last = p.Date
		}
	}
	return contracts.Day(last), true
}
