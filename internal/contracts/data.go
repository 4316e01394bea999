package contracts

import "time"

// CurveQualitySnapshot summarizes the health of one curve build
// ⭐ SSOT: 커브 품질 정보 전달
type CurveQualitySnapshot struct {
	RunID        string             `json:"run_id"`
	Date         time.Time          `json:"date"`
	TotalSeries  int                `json:"total_series"`
	ValidSeries  int                `json:"valid_series"`
	Coverage     map[string]float64 `json:"coverage"`      // per check, 0.0 ~ 1.0
	QualityScore float64            `json:"quality_score"` // 0.0 ~ 1.0
	Passed       bool               `json:"passed"`
	Issues       []string           `json:"issues,omitempty"`
}

// IsValid checks if the snapshot meets minimum requirements
func (d *CurveQualitySnapshot) IsValid() bool {
	return d.QualityScore >= 0.7 && d.ValidSeries > 0
}

// CoverageRate returns the average coverage rate across all checks
func (d *CurveQualitySnapshot) CoverageRate() float64 {
	if len(d.Coverage) == 0 {
		return 0.0
	}

	total := 0.0
	for _, rate := range d.Coverage {
		total += rate
	}

	return total / float64(len(d.Coverage))
}
