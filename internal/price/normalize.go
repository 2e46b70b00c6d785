package price

import (
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// ParseError marks a numeric token the normalizer could not turn into a
// price.
type ParseError struct {
	Input string
}

func (e *ParseError) Error() string {
	return "price: cannot parse " + strconv.Quote(e.Input)
}

// Normalize converts a human-written price token into a decimal. Accepted
// forms: optional leading "$", comma thousands separators, optional
// trailing "k"/"K" shorthand multiplying by 1000.
func Normalize(raw string) (decimal.Decimal, error) {
	s := strings.TrimSpace(raw)
	s = strings.TrimPrefix(s, "$")
	s = strings.TrimSpace(s)
	thousands := false
	if strings.HasSuffix(s, "k") || strings.HasSuffix(s, "K") {
		thousands = true
		s = strings.TrimSpace(s[:len(s)-1])
	}
	s = strings.ReplaceAll(s, ",", "")
	if s == "" {
		return decimal.Decimal{}, &ParseError{Input: raw}
	}
	val, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Decimal{}, &ParseError{Input: raw}
	}
	if thousands {
		val = val.Mul(decimal.NewFromInt(1000))
	}
	return val, nil
}
