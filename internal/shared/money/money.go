// Package money holds the fixed-point rules shared by balances and amounts.
// Values are NUMERIC(12,2): at most 10 integer digits and exactly 2 fraction digits.
package money

import (
	"errors"
	"math/big"
	"strings"

	"github.com/shopspring/decimal"
)

const (
	Scale = 2

	maxIntegerDigits = 10
)

var (
	ErrMalformed = errors.New("malformed amount")

	maxValue = decimal.RequireFromString("9999999999.99")
)

// Parse reads a decimal string. Both "." and "," are accepted as the
// fraction separator.
func Parse(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, ErrMalformed
	}
	d, err := decimal.NewFromString(strings.ReplaceAll(s, ",", "."))
	if err != nil {
		return decimal.Zero, ErrMalformed
	}
	return d, nil
}

// Fits reports whether d has no more than two fraction digits and fits the
// column range.
func Fits(d decimal.Decimal) bool {
	coef := d.Coefficient()
	if coef.Sign() == 0 {
		return true
	}
	// Bound the magnitude from the digit count first: comparing a value
	// such as 1e100000000 rescales it to a huge big.Int.
	digits := len(new(big.Int).Abs(coef).String())
	exp := int(d.Exponent())
	if digits+exp > maxIntegerDigits {
		return false
	}
	if exp < -Scale && -exp-Scale > digits {
		return false
	}

	if !d.Equal(d.Truncate(Scale)) {
		return false
	}
	return d.Abs().LessThanOrEqual(maxValue)
}

// IsPositive reports whether d is a storable amount greater than zero.
func IsPositive(d decimal.Decimal) bool {
	return d.IsPositive() && Fits(d)
}

// Format renders d with exactly two fraction digits, e.g. "3000.00".
func Format(d decimal.Decimal) string {
	return d.StringFixed(Scale)
}
