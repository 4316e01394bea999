package contracts

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownContractType is returned when a contract type label cannot be classified
var ErrUnknownContractType = errors.New("contracts: unknown contract type")

// Granularity is the time-scale of a contract's delivery window
// ⭐ SSOT: 계약 단위 분류는 여기서만
type Granularity int

const (
	GranularityDay Granularity = iota
	GranularityWeekend
	GranularityWeek
	GranularityMonth
	GranularityQuarter
	GranularitySeason
	GranularityYear
)

// AllGranularities lists every granularity from finest to coarsest
var AllGranularities = []Granularity{
	GranularityDay,
	GranularityWeekend,
	GranularityWeek,
	GranularityMonth,
	GranularityQuarter,
	GranularitySeason,
	GranularityYear,
}

var granularityNames = map[Granularity]string{
	GranularityDay:     "day",
	GranularityWeekend: "weekend",
	GranularityWeek:    "week",
	GranularityMonth:   "month",
	GranularityQuarter: "quarter",
	GranularitySeason:  "season",
	GranularityYear:    "year",
}

// Rank orders granularities for precedence. Day, weekend and week share rank 0.
func (g Granularity) Rank() int {
	switch g {
	case GranularityDay, GranularityWeekend, GranularityWeek:
		return 0
	case GranularityMonth:
		return 1
	case GranularityQuarter:
		return 2
	case GranularitySeason:
		return 3
	case GranularityYear:
		return 4
	default:
		return -1
	}
}

// IsLeaf reports whether g is one of the non-overlapping rank 0 granularities
func (g Granularity) IsLeaf() bool {
	return g.Rank() == 0
}

// Valid reports whether g is a known granularity
func (g Granularity) Valid() bool {
	_, ok := granularityNames[g]
	return ok
}

func (g Granularity) String() string {
	if name, ok := granularityNames[g]; ok {
		return name
	}
	return fmt.Sprintf("granularity(%d)", int(g))
}

// MarshalText implements encoding.TextMarshaler
func (g Granularity) MarshalText() ([]byte, error) {
	if !g.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownContractType, int(g))
	}
	return []byte(g.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (g *Granularity) UnmarshalText(text []byte) error {
	parsed, err := ParseGranularity(string(text))
	if err != nil {
		return err
	}
	*g = parsed
	return nil
}

// ParseGranularity classifies a raw contract type label by its prefix:
//
//	d..., f...          day
//	w...k               week
//	w... (other)        weekend
//	m... / q... / s... / y...  month / quarter / season / year
//
// Anything else is rejected with ErrUnknownContractType.
func ParseGranularity(label string) (Granularity, error) {
	l := strings.ToLower(strings.TrimSpace(label))
	if l == "" {
		return 0, fmt.Errorf("%w: empty label", ErrUnknownContractType)
	}

	switch l[0] {
	case 'd', 'f':
		return GranularityDay, nil
	case 'w':
		if strings.HasSuffix(l, "k") {
			return GranularityWeek, nil
		}
		return GranularityWeekend, nil
	case 'm':
		return GranularityMonth, nil
	case 'q':
		return GranularityQuarter, nil
	case 's':
		return GranularitySeason, nil
	case 'y':
		return GranularityYear, nil
	}

	return 0, fmt.Errorf("%w: %q", ErrUnknownContractType, label)
}
