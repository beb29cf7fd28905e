package types

import (
	"errors"
	"fmt"
	"math/big"
	"strconv"
	"strings"
)

// Amount units. 1 XSN = 10^8 satoshis.
const (
	Decimals          = 8
	Coin     Satoshis = 100_000_000
)

// Amount errors.
var (
	ErrNegativeAmount = errors.New("invalid negative amount")
	ErrInvalidAmount  = errors.New("invalid amount")
)

// Satoshis is an amount in the smallest XSN unit.
type Satoshis int64

// String formats the amount as a decimal XSN value with 8 places.
func (s Satoshis) String() string {
	sign := ""
	u := uint64(s)
	if s < 0 {
		sign = "-"
		u = uint64(-(s + 1)) + 1 // safe for MinInt64
	}
	return fmt.Sprintf("%s%d.%08d", sign, u/uint64(Coin), u%uint64(Coin))
}

// ToSatoshis converts a decimal XSN amount such as "0.565" into satoshis.
//
// The amount is rounded to 8 decimal places with fixed-point arithmetic
// (halves away from zero), then the integer and fractional digits are
// concatenated and parsed. Binary floating point is never involved, so
// "0.565" is exactly 56500000 and "0.000000001" rounds to 0. Exponent forms
// such as "1E-8" are accepted as JSON allows them.
func ToSatoshis(amount string) (Satoshis, error) {
	s := strings.TrimSpace(amount)
	if !isDecimal(s) {
		return 0, fmt.Errorf("%w: %q", ErrInvalidAmount, amount)
	}

	r, ok := new(big.Rat).SetString(s)
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrInvalidAmount, amount)
	}
	if r.Sign() < 0 {
		return 0, fmt.Errorf("%w: %s", ErrNegativeAmount, s)
	}

	whole, frac, _ := strings.Cut(r.FloatString(Decimals), ".")
	if len(frac) < Decimals {
		frac += strings.Repeat("0", Decimals-len(frac))
	}

	n, err := strconv.ParseInt(whole+frac, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q out of range", ErrInvalidAmount, amount)
	}
	return Satoshis(n), nil
}

// maxExponentDigits bounds the exponent of an amount literal.
const maxExponentDigits = 3

// isDecimal reports whether s is an optionally signed decimal number with at
// most one '.', at least one digit and an optional exponent ("1E-8"), i.e.
// the JSON number grammar plus a leading '+'. Fractions and base prefixes are
// rejected.
func isDecimal(s string) bool {
	if s == "" {
		return false
	}
	if s[0] == '-' || s[0] == '+' {
		s = s[1:]
	}
	mantissa, exp, hasExp := strings.Cut(strings.ToLower(s), "e")
	if hasExp {
		if exp != "" && (exp[0] == '-' || exp[0] == '+') {
			exp = exp[1:]
		}
		if exp == "" || strings.Trim(exp, "0123456789") != "" {
			return false
		}
		if len(strings.TrimLeft(exp, "0")) > maxExponentDigits {
			return false
		}
	}
	digits, dots := 0, 0
	for _, c := range mantissa {
		switch {
		case c >= '0' && c <= '9':
			digits++
		case c == '.':
			dots++
		default:
			return false
		}
	}
	return digits > 0 && dots <= 1
}
