package collector

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rowenagold/CommoditiesPricesForwardCurve/internal/contracts"
	"github.com/rowenagold/CommoditiesPricesForwardCurve/pkg/logger"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

type fakeFetcher struct {
	failMonth time.Month
}

func (f *fakeFetcher) FetchRates(_ context.Context, from, to string, start, end time.Time) ([]contracts.FxRate, error) {
	if start.Month() == f.failMonth {
		return nil, errors.New("upstream 503")
	}
	var rates []contracts.FxRate
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		rates = append(rates, contracts.FxRate{Date: d, FromCurrency: from, ToCurrency: to, Rate: decimal.RequireFromString("0.9")})
	}
	return rates, nil
}

type memorySink struct {
	mu    sync.Mutex
	rates []contracts.FxRate
}

func (s *memorySink) SaveRates(_ context.Context, rates []contracts.FxRate) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rates = append(s.rates, rates...)
	return len(rates), nil
}

func TestMonthChunks(t *testing.T) {
	chunks := MonthChunks(day(2019, 1, 15), day(2019, 3, 10))
	require.Len(t, chunks, 3)

	assert.Equal(t, Chunk{Start: day(2019, 1, 15), End: day(2019, 1, 31)}, chunks[0])
	assert.Equal(t, Chunk{Start: day(2019, 2, 1), End: day(2019, 2, 28)}, chunks[1])
	assert.Equal(t, Chunk{Start: day(2019, 3, 1), End: day(2019, 3, 10)}, chunks[2])
	assert.Equal(t, "2019-02", chunks[1].String())

	assert.Empty(t, MonthChunks(day(2019, 2, 1), day(2019, 1, 1)))
}

func TestCollector_CollectYear(t *testing.T) {
	sink := &memorySink{}
	c := NewCollector(&fakeFetcher{}, sink, logger.Nop())

	results, err := c.CollectYear(context.Background(), "USD", "EUR", 2019, day(2019, 2, 10), Config{Workers: 3})
	require.NoError(t, err)

	assert.Len(t, results, 2)
	assert.Len(t, sink.rates, 31+10)
	for _, r := range results {
		assert.NoError(t, r.Error)
	}
}

func TestCollector_PartialFailure(t *testing.T) {
	sink := &memorySink{}
	c := NewCollector(&fakeFetcher{failMonth: time.February}, sink, logger.Nop())

	results, err := c.CollectRates(context.Background(), "USD", "EUR", day(2019, 1, 1), day(2019, 3, 31), Config{Workers: 2})
	require.NoError(t, err)

	failed := 0
	for _, r := range results {
		if r.Error != nil {
			failed++
			assert.Equal(t, "2019-02", r.Chunk)
		}
	}
	assert.Equal(t, 1, failed)
	assert.Len(t, sink.rates, 31+31)
}

func TestCollector_AllFailed(t *testing.T) {
	c := NewCollector(&fakeFetcher{failMonth: time.January}, &memorySink{}, logger.Nop())

	_, err := c.CollectRates(context.Background(), "USD", "EUR", day(2019, 1, 1), day(2019, 1, 31), Config{})
	assert.Error(t, err)
}

func TestCollector_FutureYear(t *testing.T) {
	c := NewCollector(&fakeFetcher{}, &memorySink{}, logger.Nop())

	_, err := c.CollectYear(context.Background(), "USD", "EUR", 2030, day(2019, 6, 1), Config{Workers: 1})
	assert.Error(t, err)
}

func TestCollector_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	c := NewCollector(&fakeFetcher{}, &memorySink{}, logger.Nop())
	_, err := c.CollectRates(ctx, "USD", "EUR", day(2019, 1, 1), day(2019, 2, 28), Config{Workers: 2})
	assert.ErrorIs(t, err, context.Canceled)
}
