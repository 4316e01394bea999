package s1_curve

import (
	"sort"

	"github.com/rowenagold/CommoditiesPricesForwardCurve/internal/contracts"
)

// PrecedenceConfig holds precedence resolver options
type PrecedenceConfig struct {
	// YearSupersedesActive: 활성 연간 계약이 같은 기간의 활성 분기/시즌 계약을 대체
	YearSupersedesActive bool `yaml:"year_supersedes_active"`
}

// Reason explains an eligibility decision
type Reason string

const (
	ReasonLeaf               Reason = "leaf"
	ReasonActive             Reason = "active"
	ReasonSupersededByYear   Reason = "superseded_by_year"
	ReasonFinerActive        Reason = "finer_active"
	ReasonOnlyData           Reason = "only_data"
	ReasonBroaderActive      Reason = "broader_active"
	ReasonNoActiveSubstitute Reason = "no_active_substitute"
)

// Decision is the resolver verdict for one quote
type Decision struct {
	Quote    *contracts.Quote
	Eligible bool
	Reason   Reason
}

// fallbackChain lists the coarser granularities that may substitute an inactive quote
var fallbackChain = map[contracts.Granularity][]contracts.Granularity{
	contracts.GranularityMonth:   {contracts.GranularityQuarter, contracts.GranularitySeason, contracts.GranularityYear},
	contracts.GranularityQuarter: {contracts.GranularitySeason, contracts.GranularityYear},
	contracts.GranularitySeason:  {contracts.GranularityYear},
}

// Resolver decides which quotes of one group x year may populate the mixed curve
// ⭐ SSOT: 혼합 커브 우선순위 결정은 여기서만
type Resolver struct {
	config PrecedenceConfig
}

// NewResolver creates a new precedence resolver
func NewResolver(config PrecedenceConfig) *Resolver {
	return &Resolver{config: config}
}

// Decide evaluates every quote of one group x year partition.
// Decisions come back in input order.
func (r *Resolver) Decide(set []*contracts.Quote) []Decision {
	decisions := make([]Decision, 0, len(set))
	for _, q := range set {
		eligible, reason := r.decide(q, set)
		decisions = append(decisions, Decision{Quote: q, Eligible: eligible, Reason: reason})
	}
	return decisions
}

// Eligible returns the subset of set allowed into the mixed curve, in input order
func (r *Resolver) Eligible(set []*contracts.Quote) []*contracts.Quote {
	var out []*contracts.Quote
	for _, d := range r.Decide(set) {
		if d.Eligible {
			out = append(out, d.Quote)
		}
	}
	return out
}

func (r *Resolver) decide(q *contracts.Quote, set []*contracts.Quote) (bool, Reason) {
	if q.Granularity.IsLeaf() {
		return true, ReasonLeaf
	}

	if q.Active() {
		if r.config.YearSupersedesActive && supersededByYear(q, set) {
			return false, ReasonSupersededByYear
		}
		return true, ReasonActive
	}

	// 비활성: 더 세밀한 활성 계약이 기간 전체를 덮으면 제외
	peers := peersOf(q, set)
	switch {
	case len(peers) > 0 && allActive(peers) && spans(q, peers):
		return false, ReasonFinerActive
	case broaderActive(q, set):
		return false, ReasonBroaderActive
	case len(peers) == 0:
		return true, ReasonOnlyData
	default:
		return true, ReasonNoActiveSubstitute
	}
}

// peersOf returns the finer-ranked quotes that decompose q's bucket
func peersOf(q *contracts.Quote, set []*contracts.Quote) []*contracts.Quote {
	var peers []*contracts.Quote
	for _, other := range set {
		if other == q || other.Year != q.Year {
			continue
		}

		switch q.Granularity {
		case contracts.GranularityMonth:
			if other.Granularity.IsLeaf() && q.Covers(other) {
				peers = append(peers, other)
			}
		case contracts.GranularityQuarter:
			if other.Granularity == contracts.GranularityMonth && other.Quarter == q.Quarter {
				peers = append(peers, other)
			}
		case contracts.GranularitySeason:
			if (other.Granularity == contracts.GranularityMonth || other.Granularity == contracts.GranularityQuarter) &&
				other.Season == q.Season {
				peers = append(peers, other)
			}
		case contracts.GranularityYear:
			switch other.Granularity {
			case contracts.GranularityMonth, contracts.GranularityQuarter, contracts.GranularitySeason:
				peers = append(peers, other)
			}
		}
	}
	return peers
}

// spans reports whether the union of peers' windows leaves no day of q uncovered
func spans(q *contracts.Quote, peers []*contracts.Quote) bool {
	sorted := append([]*contracts.Quote(nil), peers...)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].DeliveryStart.Before(sorted[j].DeliveryStart)
	})

	next := contracts.Day(q.DeliveryStart)
	end := contracts.Day(q.DeliveryEnd)
	for _, p := range sorted {
		if contracts.Day(p.DeliveryStart).After(next) {
			return false
		}
		if after := contracts.Day(p.DeliveryEnd).AddDate(0, 0, 1); after.After(next) {
			next = after
		}
		if next.After(end) {
			return true
		}
	}
	return next.After(end)
}

// broaderActive reports whether an active quote on q's fallback chain covers q
func broaderActive(q *contracts.Quote, set []*contracts.Quote) bool {
	for _, g := range fallbackChain[q.Granularity] {
		for _, other := range set {
			if other != q && other.Granularity == g && other.Active() && other.Covers(q) {
				return true
			}
		}
	}
	return false
}

func supersededByYear(q *contracts.Quote, set []*contracts.Quote) bool {
	if q.Granularity != contracts.GranularityQuarter && q.Granularity != contracts.GranularitySeason {
		return false
	}
	for _, other := range set {
		if other.Granularity == contracts.GranularityYear && other.Active() && other.Covers(q) {
			return true
		}
	}
	return false
}

func allActive(set []*contracts.Quote) bool {
	for _, q := range set {
		if !q.Active() {
			return false
		}
	}
	return true
}
