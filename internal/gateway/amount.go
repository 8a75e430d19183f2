package gateway

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// MinorUnits converts a 2-decimal fixed-point amount to the gateway's
// integer minor unit (e.g. cents). The conversion must be exact; amounts
// that do not shift to a whole number are rejected rather than rounded.
func MinorUnits(amount decimal.Decimal) (int64, error) {
	shifted := amount.Shift(2)
	if !shifted.IsInteger() {
		return 0, fmt.Errorf("amount %s does not convert exactly to minor units", amount)
	}
	return shifted.IntPart(), nil
}

// MajorUnitString formats an amount as a 2-decimal major-unit string
// (e.g. "12.50"). Amounts with more than 2 fractional digits are rejected.
func MajorUnitString(amount decimal.Decimal) (string, error) {
	if amount.Exponent() < -2 {
		return "", fmt.Errorf("amount %s has more than 2 decimal places", amount)
	}
	return amount.StringFixed(2), nil
}
