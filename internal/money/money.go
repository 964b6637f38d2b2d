// Package money converts between user-entered decimal amount strings and the
// integer minor currency units the rest of the system works in. Keeping every
// internal amount as a whole number of minor units avoids floating-point
// rounding entirely.
package money

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// exponent is the number of decimal places in the minor unit (cents).
const exponent = 2

var (
	// ErrNegative rejects amounts below zero.
	ErrNegative = errors.New("amount cannot be negative")
	// ErrTooPrecise rejects amounts with sub-minor-unit precision.
	ErrTooPrecise = errors.New("amount has more precision than the minor unit")
)

// Parse converts a decimal string such as "12.34" into minor units (1234).
func Parse(s string) (int64, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, fmt.Errorf("invalid amount %q: %w", s, err)
	}
	if d.IsNegative() {
		return 0, fmt.Errorf("%w: %s", ErrNegative, s)
	}
	minor := d.Shift(exponent)
	if !minor.IsInteger() {
		return 0, fmt.Errorf("%w: %s", ErrTooPrecise, s)
	}
	return minor.IntPart(), nil
}

// Format renders minor units as a decimal string: 1234 becomes "12.34".
func Format(minor int64) string {
	return decimal.NewFromInt(minor).Shift(-exponent).StringFixed(exponent)
}
