package feedconfig

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	path := "../../configs/feeds.yaml"
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Skip("feeds file not found")
	}

	cfg, data, err := Load(path)
	require.NoError(t, err)
	assert.NotEmpty(t, data)
	require.Len(t, cfg.Feeds, 4)

	coal, ok := cfg.Find("coal", "api2")
	require.True(t, ok)
	require.NotNil(t, coal.Conversion)
	assert.True(t, coal.Conversion.MetricFactor.Equal(decimal.RequireFromString("8.141")))

	// 파일과 기본값은 동일해야 함
	fileHash, err := Hash(cfg)
	require.NoError(t, err)
	defaultHash, err := Hash(Default())
	require.NoError(t, err)
	assert.Equal(t, defaultHash, fileHash)
	assert.Len(t, fileHash, 64)
}

func TestLoadOrDefault_MissingFile(t *testing.T) {
	cfg, err := LoadOrDefault(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Len(t, cfg.Feeds, len(Default().Feeds))
}

func TestParse_UnknownField(t *testing.T) {
	_, err := Parse([]byte(`
version: "1"
feeds:
  - id: gas
    commodity: gas
    market: ttf
    historical: {mode: daily, contract_name: day-ahead}
    forwrd: true
`))
	assert.Error(t, err)
}

func TestParse_Normalizes(t *testing.T) {
	cfg, err := Parse([]byte(`
version: "1"
feeds:
  - id: brent
    commodity: Brent
    market: IPE e-Brent
    historical: {mode: Monthly, lag_months: 2}
    conversion: {metric_factor: 1.6282, metric_name: Barrel_to_MW/h, from_currency: usd}
`))
	require.NoError(t, err)
	f := cfg.Feeds[0]
	assert.Equal(t, "brent", f.Commodity)
	assert.Equal(t, "ipe e-brent", f.Market)
	assert.Equal(t, ModeMonthly, f.Historical.Mode)
	assert.Equal(t, "USD", f.Conversion.FromCurrency)
}

func TestValidate(t *testing.T) {
	valid := func() Feed {
		return Feed{
			ID:         "gas",
			Commodity:  "gas",
			Market:     "ttf",
			Historical: Historical{Mode: ModeDaily, ContractName: "day-ahead"},
		}
	}

	tests := []struct {
		name   string
		mutate func(f *Feed)
		field  string
	}{
		{"missing id", func(f *Feed) { f.ID = "" }, "feeds[0].id"},
		{"missing market", func(f *Feed) { f.Market = "" }, "feeds[0]"},
		{"bad mode", func(f *Feed) { f.Historical.Mode = "weekly" }, "feeds[0].historical.mode"},
		{"daily without contract", func(f *Feed) { f.Historical.ContractName = "" }, "feeds[0].historical.contract_name"},
		{"daily with lag", func(f *Feed) { f.Historical.LagMonths = 1 }, "feeds[0].historical"},
		{"monthly lag out of range", func(f *Feed) {
			f.Historical = Historical{Mode: ModeMonthly, LagMonths: 12}
		}, "feeds[0].historical.lag_months"},
		{"zero factor", func(f *Feed) {
			f.Conversion = &Conversion{MetricName: "x", FromCurrency: "USD"}
		}, "feeds[0].conversion.metric_factor"},
		{"bad currency", func(f *Feed) {
			f.Conversion = &Conversion{MetricFactor: decimal.NewFromInt(1), MetricName: "x", FromCurrency: "US"}
		}, "feeds[0].conversion.from_currency"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := valid()
			tt.mutate(&f)
			err := Validate(&Config{Feeds: []Feed{f}})
			var verr ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tt.field, verr.Field)
		})
	}

	t.Run("duplicate pair", func(t *testing.T) {
		a, b := valid(), valid()
		b.ID = "gas2"
		assert.Error(t, Validate(&Config{Feeds: []Feed{a, b}}))
	})

	t.Run("default is valid", func(t *testing.T) {
		assert.NoError(t, Validate(Default()))
	})
}

func TestFeedQuery(t *testing.T) {
	cfg := Default()

	carbon, ok := cfg.Find("carbon", "eua")
	require.True(t, ok)
	q := carbon.Query(2019)
	assert.False(t, q.Monthly)
	assert.Equal(t, "daily tp3", q.ContractName)
	assert.Equal(t, 2019, q.Year)

	brent, ok := cfg.Find("brent", "ipe e-brent")
	require.True(t, ok)
	q = brent.Query(2019)
	assert.True(t, q.Monthly)
	assert.Equal(t, 2, q.LagMonths)
	assert.True(t, q.Average)
}
