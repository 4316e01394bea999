package contracts

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCurveQualitySnapshot_IsValid(t *testing.T) {
	tests := []struct {
		name     string
		snapshot CurveQualitySnapshot
		want     bool
	}{
		{
			name:     "valid snapshot",
			snapshot: CurveQualitySnapshot{Date: time.Now(), TotalSeries: 10, ValidSeries: 9, QualityScore: 0.9},
			want:     true,
		},
		{
			name:     "low quality score",
			snapshot: CurveQualitySnapshot{Date: time.Now(), TotalSeries: 10, ValidSeries: 5, QualityScore: 0.5},
			want:     false,
		},
		{
			name:     "no valid series",
			snapshot: CurveQualitySnapshot{Date: time.Now(), TotalSeries: 10, ValidSeries: 0, QualityScore: 0.9},
			want:     false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.snapshot.IsValid())
		})
	}
}

func TestCurveQualitySnapshot_CoverageRate(t *testing.T) {
	empty := CurveQualitySnapshot{}
	assert.Zero(t, empty.CoverageRate())

	s := CurveQualitySnapshot{Coverage: map[string]float64{"gap_free": 1.0, "leading_resolved": 0.5}}
	assert.InDelta(t, 0.75, s.CoverageRate(), 1e-9)
}
