package s1_curve

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rowenagold/CommoditiesPricesForwardCurve/internal/contracts"
)

func TestDayTable_SkipIfFilled(t *testing.T) {
	first := quote(t, "day", "d1", "2019-01-02", "2019-01-03", 1, "10")
	second := quote(t, "day", "d2", "2019-01-03", "2019-01-04", 1, "20")

	table := NewDayTable(date("2019-01-01"), date("2019-01-05"), SkipIfFilled)
	assert.Equal(t, 5, table.Len())
	assert.Equal(t, 2, table.Write(first))
	assert.Equal(t, 1, table.Write(second))

	cells := table.Cells()
	require.Len(t, cells, 5)

	assert.True(t, cells[0].Missing)
	assert.Nil(t, cells[0].Quote)
	assert.Same(t, first, cells[1].Quote)
	assert.Same(t, first, cells[2].Quote)
	assert.Same(t, second, cells[3].Quote)
	assert.Same(t, second, cells[4].Quote)
	assert.True(t, cells[4].Filled)
	assert.False(t, cells[3].Filled)
}

func TestDayTable_Overwrite(t *testing.T) {
	first := quote(t, "day", "d1", "2019-01-01", "2019-01-02", 1, "10")
	second := quote(t, "day", "d2", "2019-01-02", "2019-01-02", 1, "20")

	table := NewDayTable(date("2019-01-01"), date("2019-01-02"), Overwrite)
	table.Write(first)
	table.Write(second)

	cells := table.Cells()
	assert.Same(t, first, cells[0].Quote)
	assert.Same(t, second, cells[1].Quote)
}

func TestDayTable_ClipsToSpan(t *testing.T) {
	wide := quote(t, "year", "cal", "2019-01-01", "2019-12-31", 1, "10")

	table := NewDayTable(date("2019-03-01"), date("2019-03-10"), SkipIfFilled)
	assert.Equal(t, 10, table.Write(wide))

	cells := table.Cells()
	assert.Equal(t, date("2019-03-01"), cells[0].Date)
	assert.Equal(t, date("2019-03-10"), cells[9].Date)
}

func TestDayTable_Dates(t *testing.T) {
	table := NewDayTable(date("2020-02-27"), date("2020-03-01"), SkipIfFilled)
	cells := table.Cells()
	require.Len(t, cells, 4)
	assert.Equal(t, date("2020-02-29"), cells[2].Date)
	for _, c := range cells {
		assert.True(t, c.Missing)
	}
}

func TestSpanOf(t *testing.T) {
	_, _, ok := SpanOf(nil)
	assert.False(t, ok)

	start, end, ok := SpanOf([]*contracts.Quote{
		quote(t, "month", "feb", "2019-02-01", "2019-02-28", 1, "1"),
		quote(t, "day", "d", "2019-01-15", "2019-01-15", 1, "1"),
		quote(t, "quarter", "q2", "2019-04-01", "2019-06-30", 1, "1"),
	})
	require.True(t, ok)
	assert.Equal(t, date("2019-01-15"), start)
	assert.Equal(t, date("2019-06-30"), end)
}
