package feedconfig

import (
	"fmt"
)

// ValidationError 검증 실패 (프로그램 중단)
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Validate checks all required constraints
func Validate(cfg *Config) error {
	if len(cfg.Feeds) == 0 {
		return ValidationError{"feeds", "at least one feed required"}
	}

	ids := make(map[string]bool)
	pairs := make(map[string]bool)

	for i, f := range cfg.Feeds {
		field := fmt.Sprintf("feeds[%d]", i)

		if f.ID == "" {
			return ValidationError{field + ".id", "required"}
		}
		if ids[f.ID] {
			return ValidationError{field + ".id", fmt.Sprintf("duplicate id %q", f.ID)}
		}
		ids[f.ID] = true

		if f.Commodity == "" || f.Market == "" {
			return ValidationError{field, "commodity and market required"}
		}
		pair := f.Commodity + "/" + f.Market
		if pairs[pair] {
			return ValidationError{field, fmt.Sprintf("duplicate feed %s", pair)}
		}
		pairs[pair] = true

		switch f.Historical.Mode {
		case ModeDaily:
			if f.Historical.ContractName == "" {
				return ValidationError{field + ".historical.contract_name", "required for daily mode"}
			}
			if f.Historical.DateFromContract || f.Historical.Average || f.Historical.LagMonths != 0 {
				return ValidationError{field + ".historical", "lag_months, average and date_from_contract are monthly only"}
			}
		case ModeMonthly:
			if f.Historical.LagMonths < 0 || f.Historical.LagMonths > 11 {
				return ValidationError{field + ".historical.lag_months", "must be in [0, 11]"}
			}
		default:
			return ValidationError{field + ".historical.mode", "must be daily or monthly"}
		}

		if c := f.Conversion; c != nil {
			if !c.MetricFactor.IsPositive() {
				return ValidationError{field + ".conversion.metric_factor", "must be > 0"}
			}
			if c.MetricName == "" {
				return ValidationError{field + ".conversion.metric_name", "required"}
			}
			if len(c.FromCurrency) != 3 {
				return ValidationError{field + ".conversion.from_currency", "must be a 3-letter code"}
			}
			if c.ToCurrency != "" && len(c.ToCurrency) != 3 {
				return ValidationError{field + ".conversion.to_currency", "must be a 3-letter code"}
			}
		}
	}

	return nil
}
