package collector

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rowenagold/CommoditiesPricesForwardCurve/internal/contracts"
	"github.com/rowenagold/CommoditiesPricesForwardCurve/internal/metrics"
	"github.com/rowenagold/CommoditiesPricesForwardCurve/pkg/logger"
)

// RateFetcher fetches daily exchange rates for one pair over [start, end]
type RateFetcher interface {
	FetchRates(ctx context.Context, from, to string, start, end time.Time) ([]contracts.FxRate, error)
}

// Collector orchestrates fx rate collection
// ⭐ SSOT: 환율 수집 오케스트레이션은 이 패키지에서만
type Collector struct {
	fetcher RateFetcher
	sink    contracts.FxSink
	logger  *logger.Logger
}

// Config holds collector configuration
type Config struct {
	Workers int // Number of concurrent workers
}

// NewCollector creates a new Collector instance
func NewCollector(fetcher RateFetcher, sink contracts.FxSink, log *logger.Logger) *Collector {
	return &Collector{
		fetcher: fetcher,
		sink:    sink,
		logger:  log.WithField("module", "collector"),
	}
}

// Chunk is one month of a collection window
type Chunk struct {
	Start time.Time
	End   time.Time
}

func (c Chunk) String() string {
	return c.Start.Format("2006-01")
}

// FetchResult represents the result of one chunk
type FetchResult struct {
	Chunk     string
	RateCount int
	Error     error
}

// MonthChunks splits [start, end] into calendar-month chunks
func MonthChunks(start, end time.Time) []Chunk {
	start, end = contracts.Day(start), contracts.Day(end)
	var chunks []Chunk
	for cur := start; !cur.After(end); {
		next := time.Date(cur.Year(), cur.Month()+1, 1, 0, 0, 0, 0, time.UTC)
		last := next.AddDate(0, 0, -1)
		if last.After(end) {
			last = end
		}
		chunks = append(chunks, Chunk{Start: cur, End: last})
		cur = next
	}
	return chunks
}

// CollectYear collects the pair's rates from Jan 1 of year up to min(Dec 31, until)
func (c *Collector) CollectYear(ctx context.Context, from, to string, year int, until time.Time, cfg Config) ([]FetchResult, error) {
	start := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(year, time.December, 31, 0, 0, 0, 0, time.UTC)
	if u := contracts.Day(until); u.Before(end) {
		end = u
	}
	if end.Before(start) {
		return nil, fmt.Errorf("collect %s_%s: year %d has not started", from, to, year)
	}
	return c.CollectRates(ctx, from, to, start, end, cfg)
}

// CollectRates fetches and stores the pair's rates month by month
func (c *Collector) CollectRates(ctx context.Context, from, to string, start, end time.Time, cfg Config) ([]FetchResult, error) {
	if cfg.Workers < 1 {
		cfg.Workers = 1
	}
	chunks := MonthChunks(start, end)

	c.logger.WithFields(map[string]interface{}{
		"pair":    from + "_" + to,
		"chunks":  len(chunks),
		"from":    start.Format("2006-01-02"),
		"to":      end.Format("2006-01-02"),
		"workers": cfg.Workers,
	}).Info("Starting fx collection")

	// Create worker pool
	results := make([]FetchResult, 0, len(chunks))
	resultCh := make(chan FetchResult, len(chunks))

	var wg sync.WaitGroup
	chunkCh := make(chan Chunk, len(chunks))

	for i := 0; i < cfg.Workers; i++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()
			c.rateWorker(ctx, workerID, from, to, chunkCh, resultCh)
		}(i)
	}

	for _, chunk := range chunks {
		chunkCh <- chunk
	}
	close(chunkCh)

	go func() {
		wg.Wait()
		close(resultCh)
	}()

	// Collect results
	saved, failCount := 0, 0
	for result := range resultCh {
		results = append(results, result)
		if result.Error != nil {
			failCount++
		} else {
			saved += result.RateCount
		}
	}

	c.logger.WithFields(map[string]interface{}{
		"saved":  saved,
		"failed": failCount,
		"total":  len(results),
	}).Info("FX collection completed")

	if err := ctx.Err(); err != nil {
		return results, err
	}
	if failCount == len(results) && failCount > 0 {
		return results, fmt.Errorf("collect %s_%s: all %d chunks failed: %w", from, to, failCount, results[0].Error)
	}
	return results, nil
}

// rateWorker processes one month chunk at a time
func (c *Collector) rateWorker(ctx context.Context, workerID int, from, to string, chunkCh <-chan Chunk, resultCh chan<- FetchResult) {
	for chunk := range chunkCh {
		select {
		case <-ctx.Done():
			resultCh <- FetchResult{Chunk: chunk.String(), Error: ctx.Err()}
			continue
		default:
		}

		rates, err := c.fetcher.FetchRates(ctx, from, to, chunk.Start, chunk.End)
		if err != nil {
			c.logger.WithError(err).WithFields(map[string]interface{}{
				"worker": workerID,
				"chunk":  chunk.String(),
			}).Error("Failed to fetch fx rates")
			resultCh <- FetchResult{Chunk: chunk.String(), Error: err}
			continue
		}

		n, err := c.sink.SaveRates(ctx, rates)
		if err != nil {
			c.logger.WithError(err).WithFields(map[string]interface{}{
				"worker": workerID,
				"chunk":  chunk.String(),
			}).Error("Failed to save fx rates")
			resultCh <- FetchResult{Chunk: chunk.String(), RateCount: len(rates), Error: err}
			continue
		}
		metrics.FxRatesSaved.Add(float64(n))

		c.logger.WithFields(map[string]interface{}{
			"worker": workerID,
			"chunk":  chunk.String(),
			"count":  n,
		}).Debug("Fetched fx rates")

		resultCh <- FetchResult{Chunk: chunk.String(), RateCount: n}
	}
}
