package s2_fullyear

import (
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode"
)

// ErrContractName is returned when a contract name does not start with a month name
var ErrContractName = errors.New("fullyear: contract name has no month")

var monthNames = map[string]time.Month{}

func init() {
	for m := time.January; m <= time.December; m++ {
		full := strings.ToLower(m.String())
		monthNames[full] = m
		monthNames[full[:3]] = m
	}
}

// ContractMonth reads the delivery month from a name like "January19" or "jan19"
func ContractMonth(name string) (time.Month, error) {
	letters := strings.ToLower(strings.TrimSpace(name))
	if i := strings.IndexFunc(letters, func(r rune) bool { return !unicode.IsLetter(r) }); i >= 0 {
		letters = letters[:i]
	}

	m, ok := monthNames[letters]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrContractName, name)
	}
	return m, nil
}

// ContractMonthEnd returns the last day of the contract's month in year
func ContractMonthEnd(name string, year int) (time.Time, error) {
	m, err := ContractMonth(name)
	if err != nil {
		return time.Time{}, err
	}
	return time.Date(year, m+1, 0, 0, 0, 0, 0, time.UTC), nil
}
