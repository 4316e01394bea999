package s1_curve

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/rowenagold/CommoditiesPricesForwardCurve/internal/contracts"
	"github.com/rowenagold/CommoditiesPricesForwardCurve/internal/metrics"
	"github.com/rowenagold/CommoditiesPricesForwardCurve/pkg/logger"
)

// Config holds curve assembly options
type Config struct {
	Precedence PrecedenceConfig `yaml:"precedence"`
	Workers    int              `yaml:"workers"` // 그룹 병렬 처리 워커 수
}

// Assembler builds mixed and single curves from raw quotes
type Assembler struct {
	config   Config
	resolver *Resolver
	logger   *logger.Logger
}

// groupResult is the output of one group worker, stored by group index
type groupResult struct {
	mixed     contracts.CurveSeries
	single    []contracts.CurveSeries
	decisions []Decision
}

// NewAssembler creates a new curve Assembler
func NewAssembler(config Config, log *logger.Logger) *Assembler {
	if config.Workers < 1 {
		config.Workers = 1
	}
	return &Assembler{
		config:   config,
		resolver: NewResolver(config.Precedence),
		logger:   log,
	}
}

// Build derives features, partitions and assembles every group
// ⭐ SSOT: S1 원시 시세 → 혼합/단일 커브
func (a *Assembler) Build(ctx context.Context, tradeDate time.Time, raws []contracts.RawQuote) (*contracts.CurveSet, error) {
	start := time.Now()
	defer metrics.ObserveStage("assemble", start)

	quotes, rejected := DeriveAll(raws)
	for _, r := range rejected {
		metrics.QuotesRejected.WithLabelValues(r.Reason()).Inc()
		a.logger.WithFields(map[string]interface{}{
			"commodity":     r.Quote.Commodity,
			"market":        r.Quote.Market,
			"contract_name": r.Quote.ContractName,
		}).WithError(r.Err).Warn("Quote dropped")
	}
	metrics.QuotesAccepted.Add(float64(len(quotes)))

	set, err := a.Assemble(ctx, quotes)
	if err != nil {
		return nil, err
	}
	set.TradeDate = contracts.Day(tradeDate)

	a.logger.WithFields(map[string]interface{}{
		"run_id":   set.RunID.String(),
		"quotes":   len(quotes),
		"rejected": len(rejected),
		"mixed":    len(set.Mixed),
		"single":   len(set.Single),
		"duration": time.Since(start).String(),
	}).Info("Curve build completed")

	return set, nil
}

// Assemble resolves every group of already derived quotes with a bounded worker pool.
// Output order follows the sorted group order regardless of worker scheduling.
func (a *Assembler) Assemble(ctx context.Context, quotes []contracts.Quote) (*contracts.CurveSet, error) {
	groups := Partition(quotes)
	results := make([]groupResult, len(groups))

	var wg sync.WaitGroup
	indexCh := make(chan int, len(groups))

	workers := a.config.Workers
	if workers > len(groups) {
		workers = len(groups)
	}
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range indexCh {
				if ctx.Err() != nil {
					continue
				}
				results[idx] = a.assembleGroup(groups[idx])
			}
		}()
	}

	for i := range groups {
		indexCh <- i
	}
	close(indexCh)
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("assemble curves: %w", err)
	}

	set := &contracts.CurveSet{
		RunID:   uuid.New(),
		BuiltAt: time.Now().UTC(),
	}
	for i, res := range results {
		for _, d := range res.decisions {
			metrics.EligibilityDecisions.WithLabelValues(d.Quote.Granularity.String(), string(d.Reason)).Inc()
		}
		if len(res.mixed.Cells) == 0 {
			a.logger.WithField("group", groups[i].Key.String()).Debug("Empty group skipped")
			continue
		}
		set.Mixed = append(set.Mixed, res.mixed)
		set.Single = append(set.Single, res.single...)
	}

	for _, s := range set.Mixed {
		recordSeries(s)
	}
	for _, s := range set.Single {
		recordSeries(s)
	}

	return set, nil
}

func (a *Assembler) assembleGroup(g Group) groupResult {
	mixed, decisions := BuildMixed(g, a.resolver)
	return groupResult{
		mixed:     mixed,
		single:    BuildSingle(g),
		decisions: decisions,
	}
}

func recordSeries(s contracts.CurveSeries) {
	curveType := string(s.CurveType)
	metrics.SeriesBuilt.WithLabelValues(curveType).Inc()
	if missing := s.MissingDays(); missing > 0 {
		metrics.MissingDays.WithLabelValues(curveType).Add(float64(missing))
	}
}

// Rows flattens a curve set into sink rows, mixed first.
// Rows repeating an earlier (curve type, series, group, date) are collapsed into the first one.
func Rows(set *contracts.CurveSet) []contracts.CurveRow {
	type rowKey struct {
		curveType contracts.CurveType
		series    string
		group     contracts.GroupKey
		date      time.Time
	}

	seen := make(map[rowKey]struct{})
	var rows []contracts.CurveRow

	appendSeries := func(list []contracts.CurveSeries) {
		for i := range list {
			for _, row := range list[i].Rows(set.RunID) {
				k := rowKey{row.CurveType, row.Series, row.Key(), row.Date}
				if _, dup := seen[k]; dup {
					continue
				}
				seen[k] = struct{}{}
				rows = append(rows, row)
			}
		}
	}

	appendSeries(set.Mixed)
	appendSeries(set.Single)
	return rows
}
