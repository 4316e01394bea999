package s0_data

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rowenagold/CommoditiesPricesForwardCurve/internal/contracts"
)

func day(s string) time.Time {
	t, err := time.Parse(contracts.DateLayout, s)
	if err != nil {
		panic(err)
	}
	return t
}

func dayPtr(s string) *time.Time {
	t := day(s)
	return &t
}

func nd(s string) decimal.NullDecimal {
	return decimal.NewNullDecimal(decimal.RequireFromString(s))
}

func rawQuote(name, start, end, price string) contracts.RawQuote {
	return contracts.RawQuote{
		Commodity:     "Power",
		Market:        " DE ",
		Exchange:      "EEX",
		Currency:      "EUR",
		Unit:          "MWh",
		ContractType:  "Month",
		ContractName:  name,
		ObservedAt:    day("2019-01-02"),
		Price:         nd(price),
		Volume:        nd("1"),
		DeliveryStart: dayPtr(start),
		DeliveryEnd:   dayPtr(end),
	}
}

func TestCleanQuotes(t *testing.T) {
	noPrice := rawQuote("Mar", "2019-03-01", "2019-03-31", "1")
	noPrice.Price = decimal.NullDecimal{}
	noVolume := rawQuote("Apr", "2019-04-01", "2019-04-30", "1")
	noVolume.Volume = decimal.NullDecimal{}
	noDelivery := rawQuote("May", "2019-05-01", "2019-05-31", "1")
	noDelivery.DeliveryEnd = nil

	raws := []contracts.RawQuote{
		rawQuote("Jan", "2019-01-01", "2019-01-31", "40"),
		rawQuote("Dec", "2018-12-01", "2018-12-31", "38"),
		rawQuote("Feb", "2019-02-01", "2019-02-28", "42"),
		rawQuote("Jan", "2019-01-01", "2019-01-31", "41"), // duplicate, later value wins
		noPrice,
		noVolume,
		noDelivery,
	}

	kept, stats := CleanQuotes(raws, 2019)
	require.Len(t, kept, 2)

	assert.Equal(t, "jan", kept[0].ContractName)
	assert.True(t, kept[0].Price.Decimal.Equal(decimal.RequireFromString("41")))
	assert.Equal(t, "feb", kept[1].ContractName)

	assert.Equal(t, "power", kept[0].Commodity)
	assert.Equal(t, "de", kept[0].Market)
	assert.Equal(t, "eex", kept[0].Exchange)
	assert.Equal(t, "month", kept[0].ContractType)
	assert.Equal(t, "mwh", kept[0].Unit)

	assert.Equal(t, 7, stats.Input)
	assert.Equal(t, 2, stats.Kept)
	assert.Equal(t, 5, stats.Total())
	assert.Equal(t, 1, stats.Dropped[DropDuplicate])
	assert.Equal(t, 1, stats.Dropped[DropBeforeYear])
	assert.Equal(t, 1, stats.Dropped[DropMissingPrice])
	assert.Equal(t, 1, stats.Dropped[DropMissingVolume])
	assert.Equal(t, 1, stats.Dropped[DropMissingDelivery])
}

func TestCleanQuotes_Empty(t *testing.T) {
	kept, stats := CleanQuotes(nil, 2019)
	assert.Empty(t, kept)
	assert.Zero(t, stats.Total())
}

func TestLastBusinessDay(t *testing.T) {
	tests := []struct {
		name string
		now  string
		want string
	}{
		{"monday looks back to friday", "2019-01-07", "2019-01-04"},
		{"sunday looks back to friday", "2019-01-06", "2019-01-04"},
		{"saturday", "2019-01-05", "2019-01-04"},
		{"wednesday", "2019-01-09", "2019-01-08"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			now := day(tt.now).Add(15 * time.Hour)
			assert.Equal(t, day(tt.want), LastBusinessDay(now))
		})
	}
}

type fakeQuoteSource struct {
	byDate map[time.Time][]contracts.RawQuote
	latest time.Time
	err    error
	calls  []time.Time
}

func (f *fakeQuoteSource) QuotesForTradeDate(_ context.Context, date time.Time) ([]contracts.RawQuote, error) {
	f.calls = append(f.calls, date)
	if f.err != nil {
		return nil, f.err
	}
	return f.byDate[date], nil
}

func (f *fakeQuoteSource) LatestTradeDate(context.Context) (time.Time, error) {
	if f.latest.IsZero() {
		return time.Time{}, ErrNoQuotes
	}
	return f.latest, nil
}

func TestLoadQuotes(t *testing.T) {
	ctx := context.Background()
	now := day("2019-01-09")
	q := rawQuote("Jan", "2019-01-01", "2019-01-31", "40")

	t.Run("last business day has quotes", func(t *testing.T) {
		src := &fakeQuoteSource{byDate: map[time.Time][]contracts.RawQuote{day("2019-01-08"): {q}}}

		date, quotes, err := LoadQuotes(ctx, src, now)
		require.NoError(t, err)
		assert.Equal(t, day("2019-01-08"), date)
		assert.Len(t, quotes, 1)
		assert.Len(t, src.calls, 1)
	})

	t.Run("falls back to latest priced day", func(t *testing.T) {
		src := &fakeQuoteSource{
			byDate: map[time.Time][]contracts.RawQuote{day("2019-01-03"): {q, q}},
			latest: day("2019-01-03"),
		}

		date, quotes, err := LoadQuotes(ctx, src, now)
		require.NoError(t, err)
		assert.Equal(t, day("2019-01-03"), date)
		assert.Len(t, quotes, 2)
		assert.Equal(t, []time.Time{day("2019-01-08"), day("2019-01-03")}, src.calls)
	})

	t.Run("empty source", func(t *testing.T) {
		_, _, err := LoadQuotes(ctx, &fakeQuoteSource{}, now)
		assert.ErrorIs(t, err, ErrNoQuotes)
	})

	t.Run("source error", func(t *testing.T) {
		boom := errors.New("connection reset")
		_, _, err := LoadQuotes(ctx, &fakeQuoteSource{err: boom}, now)
		assert.ErrorIs(t, err, boom)
	})
}

func TestMonthlyWindows(t *testing.T) {
	names, froms, tos := MonthlyWindows(2019, 2)
	require.Len(t, names, 12)

	assert.Equal(t, "january19", names[0])
	assert.Equal(t, day("2018-11-01"), froms[0])
	assert.Equal(t, day("2018-12-01"), tos[0])

	assert.Equal(t, "december19", names[11])
	assert.Equal(t, day("2019-10-01"), froms[11])
	assert.Equal(t, day("2019-11-01"), tos[11])
}

func TestDecimalArgs(t *testing.T) {
	assert.Nil(t, nullDecimalArg(decimal.NullDecimal{}))
	assert.Equal(t, "8.141", *nullDecimalArg(nd("8.141")))

	d, err := parseNullDecimal(nil)
	require.NoError(t, err)
	assert.False(t, d.Valid)

	_, err = parseDecimal("abc")
	assert.Error(t, err)
}
