package s1_curve

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rowenagold/CommoditiesPricesForwardCurve/internal/contracts"
)

func TestPartition_StableOrder(t *testing.T) {
	mk := func(commodity, market, exchange string) contracts.Quote {
		q, err := DeriveFeatures(raw("month", "jan", "2019-01-01", "2019-01-31", 1, "1"))
		require.NoError(t, err)
		q.Commodity, q.Market, q.Exchange = commodity, market, exchange
		return q
	}

	quotes := []contracts.Quote{
		mk("power", "de", "eex"),
		mk("coal", "api2", "ice"),
		mk("power", "de", "eex"),
		mk("gas", "ttf", "ice"),
		mk("coal", "api2", "eex"),
	}

	groups := Partition(quotes)
	require.Len(t, groups, 4)

	var keys []string
	for _, g := range groups {
		keys = append(keys, g.Key.String())
	}
	assert.Equal(t, []string{"coal/api2/eex", "coal/api2/ice", "gas/ttf/ice", "power/de/eex"}, keys)
	assert.Len(t, groups[3].Quotes, 2)
}

func TestPartition_Empty(t *testing.T) {
	assert.Empty(t, Partition(nil))
}

func TestGroup_Years(t *testing.T) {
	g := Group{Quotes: []*contracts.Quote{
		quote(t, "year", "2021", "2021-01-01", "2021-12-31", 1, "1"),
		quote(t, "month", "jan19", "2019-01-01", "2019-01-31", 1, "1"),
		quote(t, "quarter", "q1-20", "2020-01-01", "2020-03-31", 1, "1"),
		quote(t, "month", "feb19", "2019-02-01", "2019-02-28", 1, "1"),
	}}

	parts := g.Years()
	require.Len(t, parts, 3)
	assert.Equal(t, 2019, parts[0].Year)
	assert.Len(t, parts[0].Quotes, 2)
	assert.Equal(t, 2020, parts[1].Year)
	assert.Equal(t, 2021, parts[2].Year)
}

func TestGroup_ByGranularity(t *testing.T) {
	g := Group{Quotes: []*contracts.Quote{
		quote(t, "month", "jan19", "2019-01-01", "2019-01-31", 1, "1"),
		quote(t, "day", "d1", "2019-01-01", "2019-01-01", 1, "1"),
		quote(t, "month", "feb19", "2019-02-01", "2019-02-28", 1, "1"),
	}}

	assert.Len(t, g.ByGranularity(contracts.GranularityMonth), 2)
	assert.Len(t, g.ByGranularity(contracts.GranularityDay), 1)
	assert.Empty(t, g.ByGranularity(contracts.GranularityYear))
}
