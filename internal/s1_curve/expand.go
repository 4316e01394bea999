package s1_curve

import (
	"time"

	"github.com/rowenagold/CommoditiesPricesForwardCurve/internal/contracts"
)

// WriteStrategy decides what happens when a quote lands on an already written day
type WriteStrategy int

const (
	// SkipIfFilled keeps the first write (mixed curve)
	SkipIfFilled WriteStrategy = iota
	// Overwrite keeps the last write (single curve)
	Overwrite
)

func (s WriteStrategy) String() string {
	if s == Overwrite {
		return "overwrite"
	}
	return "skip_if_filled"
}

// DayTable is a gap-free calendar of [start, end] that quotes are expanded into
type DayTable struct {
	start    time.Time
	strategy WriteStrategy
	slots    []*contracts.Quote
}

// NewDayTable creates an empty table covering every day of [start, end]
func NewDayTable(start, end time.Time, strategy WriteStrategy) *DayTable {
	start, end = contracts.Day(start), contracts.Day(end)
	n := 0
	if !end.Before(start) {
		n = DayCount(start, end)
	}
	return &DayTable{
		start:    start,
		strategy: strategy,
		slots:    make([]*contracts.Quote, n),
	}
}

// SpanOf returns the earliest delivery start and latest delivery end of quotes
func SpanOf(quotes []*contracts.Quote) (time.Time, time.Time, bool) {
	if len(quotes) == 0 {
		return time.Time{}, time.Time{}, false
	}
	start, end := quotes[0].DeliveryStart, quotes[0].DeliveryEnd
	for _, q := range quotes[1:] {
		if q.DeliveryStart.Before(start) {
			start = q.DeliveryStart
		}
		if q.DeliveryEnd.After(end) {
			end = q.DeliveryEnd
		}
	}
	return start, end, true
}

// Len returns the number of days in the table
func (t *DayTable) Len() int {
	return len(t.slots)
}

// Write expands q over its delivery window, clipped to the table.
// It returns how many days took q's value.
func (t *DayTable) Write(q *contracts.Quote) int {
	first := t.index(q.DeliveryStart)
	last := t.index(q.DeliveryEnd)
	if first < 0 {
		first = 0
	}
	if last >= len(t.slots) {
		last = len(t.slots) - 1
	}

	written := 0
	for i := first; i <= last; i++ {
		if t.slots[i] != nil && t.strategy == SkipIfFilled {
			continue
		}
		t.slots[i] = q
		written++
	}
	return written
}

// Cells returns one cell per day, forward-filling gaps from the previous day.
// Leading days with nothing to carry are marked Missing.
func (t *DayTable) Cells() []contracts.DayCell {
	cells := make([]contracts.DayCell, len(t.slots))
	var last *contracts.Quote

	for i, q := range t.slots {
		cell := contracts.DayCell{Date: t.start.AddDate(0, 0, i)}
		switch {
		case q != nil:
			cell.Quote = q
			last = q
		case last != nil:
			cell.Quote = last
			cell.Filled = true
		default:
			cell.Missing = true
		}
		cells[i] = cell
	}
	return cells
}

func (t *DayTable) index(d time.Time) int {
	return int(contracts.Day(d).Sub(t.start).Hours() / 24)
}
