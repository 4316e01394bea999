package quality

import (
	"context"
	"fmt"

	"github.com/rowenagold/CommoditiesPricesForwardCurve/internal/contracts"
	"github.com/rowenagold/CommoditiesPricesForwardCurve/internal/metrics"
)

// Coverage check names
const (
	CheckContinuity = "continuity" // 날짜 연속성 (빈 날짜 없음)
	CheckResolved   = "resolved"   // 값이 있는 날짜 비율
	CheckObserved   = "observed"   // 직접 관측된 날짜 비율 (ffill 제외)
)

// CurveGate validates built curves before they are persisted
type CurveGate struct {
	config Config
}

// Config holds curve gate thresholds
type Config struct {
	MinScore         float64 `yaml:"min_score"`          // 0.8
	MaxMissingShare  float64 `yaml:"max_missing_share"`  // 시리즈별 허용 미해결 비율
	MinObservedShare float64 `yaml:"min_observed_share"` // 시리즈별 최소 관측 비율
}

// DefaultConfig returns production thresholds
func DefaultConfig() Config {
	return Config{
		MinScore:         0.8,
		MaxMissingShare:  0.5,
		MinObservedShare: 0.05,
	}
}

// NewCurveGate creates a new CurveGate instance
func NewCurveGate(config Config) *CurveGate {
	return &CurveGate{config: config}
}

// Check scores a curve set
// ⭐ SSOT: S1 → 저장 전 커브 품질 검증
func (g *CurveGate) Check(ctx context.Context, set *contracts.CurveSet) (*contracts.CurveQualitySnapshot, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	snapshot := &contracts.CurveQualitySnapshot{
		RunID:    set.RunID.String(),
		Date:     set.TradeDate,
		Coverage: make(map[string]float64),
	}

	var continuous, cells, missing, filled int
	check := func(list []contracts.CurveSeries) {
		for i := range list {
			s := &list[i]
			snapshot.TotalSeries++

			ok := isContinuous(s)
			if ok {
				continuous++
			} else {
				snapshot.Issues = append(snapshot.Issues, fmt.Sprintf("%s %s %s: gap or duplicate date", s.CurveType, s.Key, s.Series()))
			}

			n, m, f := len(s.Cells), s.MissingDays(), s.FilledDays()
			cells += n
			missing += m
			filled += f

			if n == 0 {
				continue
			}
			missingShare := float64(m) / float64(n)
			observedShare := float64(n-m-f) / float64(n)
			if missingShare > g.config.MaxMissingShare {
				snapshot.Issues = append(snapshot.Issues, fmt.Sprintf("%s %s %s: %d of %d days unresolved", s.CurveType, s.Key, s.Series(), m, n))
				ok = false
			}
			if observedShare < g.config.MinObservedShare {
				snapshot.Issues = append(snapshot.Issues, fmt.Sprintf("%s %s %s: only %d of %d days observed", s.CurveType, s.Key, s.Series(), n-m-f, n))
				ok = false
			}
			if ok {
				snapshot.ValidSeries++
			}
		}
	}
	check(set.Mixed)
	check(set.Single)

	if snapshot.TotalSeries == 0 {
		snapshot.Issues = append(snapshot.Issues, "no curve series built")
		return snapshot, nil
	}

	snapshot.Coverage[CheckContinuity] = float64(continuous) / float64(snapshot.TotalSeries)
	if cells > 0 {
		snapshot.Coverage[CheckResolved] = float64(cells-missing) / float64(cells)
		snapshot.Coverage[CheckObserved] = float64(cells-missing-filled) / float64(cells)
	}

	snapshot.QualityScore = g.calculateScore(snapshot.Coverage)
	snapshot.Passed = snapshot.QualityScore >= g.config.MinScore && snapshot.ValidSeries > 0
	metrics.QualityScore.Set(snapshot.QualityScore)

	return snapshot, nil
}

// isContinuous reports whether every cell is exactly one day after the previous one
func isContinuous(s *contracts.CurveSeries) bool {
	for i := 1; i < len(s.Cells); i++ {
		if !s.Cells[i].Date.Equal(s.Cells[i-1].Date.AddDate(0, 0, 1)) {
			return false
		}
	}
	return true
}

// calculateScore calculates overall quality score using weighted average
func (g *CurveGate) calculateScore(coverage map[string]float64) float64 {
	// 가중치 (합계 = 1.0)
	weights := map[string]float64{
		CheckContinuity: 0.40, // 연속성 필수
		CheckResolved:   0.40, // 미해결 날짜 최소화
		CheckObserved:   0.20, // 관측 비율
	}

	score := 0.0
	for key, weight := range weights {
		if cov, exists := coverage[key]; exists {
			score += cov * weight
		}
	}

	return score
}
