// Package amount converts between ledger base units and display strings.
// Ledger quantities are integers; decimal arithmetic here is for display and
// user input only.
package amount

import (
	"errors"
	"math/big"
	"strings"

	"github.com/shopspring/decimal"
)

// TokenDecimals is the fixed-point scale of token amounts and prices.
const TokenDecimals int32 = 18

const (
	// maxUnitBits is the width of a ledger integer.
	maxUnitBits = 256
	// maxExponent bounds the decimal exponent of user input. uint256 holds 78
	// digits, and the largest scale in use is 36.
	maxExponent = 78 + 2*TokenDecimals
	// maxDigits bounds the significant digits of user input.
	maxDigits = 2 * maxExponent
)

var (
	// ErrInvalidAmount indicates user input that is not a non-negative decimal.
	ErrInvalidAmount = errors.New("invalid amount")
)

// ToDecimal scales a base-unit integer down by decimals.
func ToDecimal(v *big.Int, decimals int32) decimal.Decimal {
	if v == nil {
		return decimal.Zero
	}
	return decimal.NewFromBigInt(v, -decimals)
}

// Format renders a base-unit integer with a fixed number of decimal places.
func Format(v *big.Int, decimals, places int32) string {
	return ToDecimal(v, decimals).StringFixed(places)
}

// FormatTokens renders an 18-decimal token amount with two decimal places.
func FormatTokens(v *big.Int) string {
	return Format(v, TokenDecimals, 2)
}

// FormatUSD renders an 18-decimal price as dollars.
func FormatUSD(price *big.Int) string {
	return "$" + Format(price, TokenDecimals, 2)
}

// ParseDecimal parses non-negative user input such as "12.5" or "1e3".
// Exponents and digit counts that no ledger amount could need are rejected
// before any scaling happens.
func ParseDecimal(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, ErrInvalidAmount
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, ErrInvalidAmount
	}
	if d.IsNegative() {
		return decimal.Zero, ErrInvalidAmount
	}
	if exp := d.Exponent(); exp > maxExponent || exp < -maxExponent {
		return decimal.Zero, ErrInvalidAmount
	}
	if d.NumDigits() > int(maxDigits) {
		return decimal.Zero, ErrInvalidAmount
	}
	return d, nil
}

// ParseUnits converts user input such as "12.5" into base units. Digits past
// the requested precision are truncated. Results wider than a ledger integer
// are rejected.
func ParseUnits(s string, decimals int32) (*big.Int, error) {
	d, err := ParseDecimal(s)
	if err != nil {
		return nil, err
	}
	units := d.Shift(decimals).Truncate(0).BigInt()
	if units.BitLen() > maxUnitBits {
		return nil, ErrInvalidAmount
	}
	return units, nil
}

// FromUnits converts base units into a plain decimal string without trailing
// zeros, for machine-readable output.
func FromUnits(v *big.Int, decimals int32) string {
	return ToDecimal(v, decimals).String()
}

// String renders a base-unit integer as its decimal representation, or "0"
// when nil.
func String(v *big.Int) string {
	if v == nil {
		return "0"
	}
	return v.String()
}

// ParseBig parses a base-10 integer string such as the ones stored in ledger
// snapshots.
func ParseBig(s string) (*big.Int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return new(big.Int), nil
	}
	v, ok := new(big.Int).SetString(s, 10)
	if !ok {
		return nil, ErrInvalidAmount
	}
	return v, nil
}
