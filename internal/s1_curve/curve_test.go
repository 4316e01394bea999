package s1_curve

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rowenagold/CommoditiesPricesForwardCurve/internal/contracts"
)

func group(quotes ...*contracts.Quote) Group {
	return Group{Key: quotes[0].Key(), Quotes: quotes}
}

func cellOn(t *testing.T, s contracts.CurveSeries, day string) contracts.DayCell {
	t.Helper()
	for _, c := range s.Cells {
		if c.Date.Equal(date(day)) {
			return c
		}
	}
	t.Fatalf("no cell on %s", day)
	return contracts.DayCell{}
}

func assertPrice(t *testing.T, want string, c contracts.DayCell) {
	t.Helper()
	require.NotNil(t, c.Quote, "cell %s unresolved", c.Date.Format(contracts.DateLayout))
	assert.True(t, c.Quote.Price.Equal(decimal.RequireFromString(want)),
		"%s: want %s got %s", c.Date.Format(contracts.DateLayout), want, c.Quote.Price)
}

func TestBuildMixed_Coverage(t *testing.T) {
	g := group(
		quote(t, "month", "jan", "2019-01-01", "2019-01-31", 1, "41"),
		quote(t, "month", "mar", "2019-03-01", "2019-03-31", 1, "43"),
		quote(t, "quarter", "q3", "2019-07-01", "2019-09-30", 1, "50"),
	)

	series, _ := BuildMixed(g, NewResolver(PrecedenceConfig{}))
	require.Len(t, series.Cells, DayCount(date("2019-01-01"), date("2019-09-30")))

	for i := 1; i < len(series.Cells); i++ {
		assert.Equal(t, series.Cells[i-1].Date.AddDate(0, 0, 1), series.Cells[i].Date)
	}

	// February has no quote and carries January forward
	feb := cellOn(t, series, "2019-02-10")
	assert.True(t, feb.Filled)
	assertPrice(t, "41", feb)
	assertPrice(t, "43", cellOn(t, series, "2019-06-30"))
	assertPrice(t, "50", cellOn(t, series, "2019-07-01"))
}

func TestBuildMixed_FinenessPrecedence(t *testing.T) {
	g := group(
		quote(t, "quarter", "q1", "2019-01-01", "2019-03-31", 8, "40"),
		quote(t, "month", "feb", "2019-02-01", "2019-02-28", 3, "42"),
		quote(t, "year", "cal", "2019-01-01", "2019-12-31", 5, "45"),
	)

	series, _ := BuildMixed(g, NewResolver(PrecedenceConfig{}))

	assertPrice(t, "40", cellOn(t, series, "2019-01-15"))
	assertPrice(t, "42", cellOn(t, series, "2019-02-01"))
	assertPrice(t, "42", cellOn(t, series, "2019-02-28"))
	assertPrice(t, "40", cellOn(t, series, "2019-03-31"))
	assertPrice(t, "45", cellOn(t, series, "2019-04-01"))
}

func TestBuildMixed_FallbackOnInactivity(t *testing.T) {
	g := group(
		quote(t, "month", "may", "2019-05-01", "2019-05-31", 0, "38"),
		quote(t, "quarter", "q3", "2019-07-01", "2019-09-30", 0, "39"),
	)

	series, decisions := BuildMixed(g, NewResolver(PrecedenceConfig{}))

	c := cellOn(t, series, "2019-05-15")
	assertPrice(t, "38", c)
	assert.False(t, c.Filled)
	for _, d := range decisions {
		assert.True(t, d.Eligible)
		assert.Equal(t, ReasonOnlyData, d.Reason)
	}
}

func TestBuildMixed_InactiveMonthBesideActiveSiblings(t *testing.T) {
	// sibling months never cover January, so its stale quote stays
	g := group(
		quote(t, "month", "jan", "2019-01-01", "2019-01-31", 0, "10"),
		quote(t, "month", "feb", "2019-02-01", "2019-02-28", 5, "20"),
		quote(t, "month", "mar", "2019-03-01", "2019-03-31", 5, "30"),
	)

	series, _ := BuildMixed(g, NewResolver(PrecedenceConfig{}))

	assert.Zero(t, series.MissingDays())
	first := cellOn(t, series, "2019-01-01")
	assert.False(t, first.Missing)
	assertPrice(t, "10", first)
	assertPrice(t, "10", cellOn(t, series, "2019-01-15"))
	assertPrice(t, "20", cellOn(t, series, "2019-02-01"))
	assertPrice(t, "30", cellOn(t, series, "2019-03-31"))
}

func TestBuildMixed_ActiveQuarterReplacesInactiveMonth(t *testing.T) {
	g := group(
		quote(t, "month", "jan", "2019-01-01", "2019-01-31", 0, "10"),
		quote(t, "month", "feb", "2019-02-01", "2019-02-28", 5, "20"),
		quote(t, "month", "mar", "2019-03-01", "2019-03-31", 0, "30"),
		quote(t, "quarter", "q1", "2019-01-01", "2019-03-31", 9, "99"),
	)

	series, decisions := BuildMixed(g, NewResolver(PrecedenceConfig{}))

	assertPrice(t, "99", cellOn(t, series, "2019-01-15"))
	assertPrice(t, "20", cellOn(t, series, "2019-02-15"))
	assertPrice(t, "99", cellOn(t, series, "2019-03-15"))
	assert.Zero(t, series.MissingDays())

	for _, d := range decisions {
		if d.Quote.ContractName == "jan" || d.Quote.ContractName == "mar" {
			assert.False(t, d.Eligible)
			assert.Equal(t, ReasonBroaderActive, d.Reason)
		}
	}
}

func TestBuildMixed_AmbiguityIsDeterministic(t *testing.T) {
	a := quote(t, "month", "feb-a", "2019-02-01", "2019-02-28", 1, "10")
	b := quote(t, "month", "feb-b", "2019-02-01", "2019-02-28", 1, "20")

	first, _ := BuildMixed(group(a, b), NewResolver(PrecedenceConfig{}))
	second, _ := BuildMixed(group(b, a), NewResolver(PrecedenceConfig{}))

	assertPrice(t, "10", cellOn(t, first, "2019-02-10"))
	assertPrice(t, "10", cellOn(t, second, "2019-02-10"))
}

func TestBuildMixed_YearsWrittenInOrder(t *testing.T) {
	g := group(
		quote(t, "year", "cal20", "2020-01-01", "2020-12-31", 1, "55"),
		quote(t, "year", "cal19", "2019-01-01", "2019-12-31", 1, "50"),
	)

	series, _ := BuildMixed(g, NewResolver(PrecedenceConfig{}))
	assert.Equal(t, date("2019-01-01"), series.Start())
	assert.Equal(t, date("2020-12-31"), series.End())
	assertPrice(t, "50", cellOn(t, series, "2019-12-31"))
	assertPrice(t, "55", cellOn(t, series, "2020-01-01"))
}

func TestBuildSingle_Truncation(t *testing.T) {
	volumes := []int64{5, 3, 0, 0, 2, 0}
	months := []struct{ start, end, price string }{
		{"2019-01-01", "2019-01-31", "1"},
		{"2019-02-01", "2019-02-28", "2"},
		{"2019-03-01", "2019-03-31", "3"},
		{"2019-04-01", "2019-04-30", "4"},
		{"2019-05-01", "2019-05-31", "5"},
		{"2019-06-01", "2019-06-30", "6"},
	}

	var quotes []*contracts.Quote
	for i, m := range months {
		quotes = append(quotes, quote(t, "month", "m"+m.price, m.start, m.end, volumes[i], m.price))
	}
	// input order must not matter
	quotes[0], quotes[5] = quotes[5], quotes[0]

	out := BuildSingle(group(quotes...))
	require.Len(t, out, 1)
	s := out[0]

	assert.Equal(t, contracts.CurveSingle, s.CurveType)
	assert.Equal(t, contracts.GranularityMonth, s.Granularity)
	assert.Equal(t, "month", s.Series())
	assert.Equal(t, date("2019-01-01"), s.Start())
	assert.Equal(t, date("2019-05-31"), s.End())
	assertPrice(t, "3", cellOn(t, s, "2019-03-15"))
	assertPrice(t, "5", cellOn(t, s, "2019-05-31"))
}

func TestTruncateInactiveTail(t *testing.T) {
	mk := func(vol int64) *contracts.Quote {
		return quote(t, "month", "m", "2019-01-01", "2019-01-31", vol, "1")
	}

	tests := []struct {
		name    string
		volumes []int64
		want    int
	}{
		{"tail dropped", []int64{5, 3, 0, 0, 2, 0}, 5},
		{"all active", []int64{1, 1, 1}, 3},
		{"none active keeps all", []int64{0, 0}, 2},
		{"only first active", []int64{4, 0, 0}, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var quotes []*contracts.Quote
			for _, v := range tt.volumes {
				quotes = append(quotes, mk(v))
			}
			assert.Len(t, TruncateInactiveTail(quotes), tt.want)
		})
	}
}

func TestBuildSingle_LeafNotTruncated(t *testing.T) {
	g := group(
		quote(t, "day", "d1", "2019-01-01", "2019-01-01", 3, "10"),
		quote(t, "day", "d2", "2019-01-02", "2019-01-02", 0, "11"),
		quote(t, "day", "d3", "2019-01-03", "2019-01-03", 0, "12"),
	)

	out := BuildSingle(g)
	require.Len(t, out, 1)
	assert.Len(t, out[0].Cells, 3)
	assertPrice(t, "12", cellOn(t, out[0], "2019-01-03"))
}

func TestBuildSingle_LaterObservationWins(t *testing.T) {
	early := quote(t, "month", "jan", "2019-01-01", "2019-01-31", 1, "10")
	late := quote(t, "month", "jan", "2019-01-01", "2019-01-31", 1, "11")
	late.ObservedAt = early.ObservedAt.Add(1)

	out := BuildSingle(group(late, early))
	require.Len(t, out, 1)
	assertPrice(t, "11", cellOn(t, out[0], "2019-01-20"))
}

func TestBuildSingle_OnePerGranularity(t *testing.T) {
	g := group(
		quote(t, "year", "cal", "2019-01-01", "2019-12-31", 1, "45"),
		quote(t, "day", "d1", "2019-01-01", "2019-01-01", 1, "10"),
		quote(t, "month", "jan", "2019-01-01", "2019-01-31", 1, "41"),
	)

	out := BuildSingle(g)
	require.Len(t, out, 3)
	assert.Equal(t, contracts.GranularityDay, out[0].Granularity)
	assert.Equal(t, contracts.GranularityMonth, out[1].Granularity)
	assert.Equal(t, contracts.GranularityYear, out[2].Granularity)
}
