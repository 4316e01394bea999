package contracts

import (
	"context"
	"time"
)

// CurveBuilder turns raw quotes into mixed and single curves (S1)
// ⭐ SSOT: S1 커브 생성 인터페이스
type CurveBuilder interface {
	Build(ctx context.Context, tradeDate time.Time, quotes []RawQuote) (*CurveSet, error)
}

// CurveQualityGate checks a built curve set before it is persisted (S0 quality)
type CurveQualityGate interface {
	Check(ctx context.Context, set *CurveSet) (*CurveQualitySnapshot, error)
}
