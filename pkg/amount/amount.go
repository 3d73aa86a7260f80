// Package amount converts between human-readable decimal amounts and
// base-unit integer strings. Everything is done digit-wise on big integers so
// tokens like NEAR (24 decimals) never lose precision to a float mantissa.
package amount

import (
	"fmt"
	"math/big"
	"strings"
)

// DisplayDecimals is the maximum number of fractional digits rendered
const DisplayDecimals = 6

// ParseToBase converts a human-entered decimal string to a base-unit integer
// string: floor(value * 10^decimals). Fractional digits beyond the token's
// precision are truncated, not rejected.
func ParseToBase(human string, decimals int) (string, error) {
	if decimals < 0 {
		return "", fmt.Errorf("negative decimals: %d", decimals)
	}

	s := strings.TrimSpace(human)
	if s == "" {
		return "", fmt.Errorf("empty amount")
	}

	intPart := s
	fracPart := ""
	if i := strings.IndexByte(s, '.'); i >= 0 {
		intPart = s[:i]
		fracPart = s[i+1:]
		if strings.IndexByte(fracPart, '.') >= 0 {
			return "", fmt.Errorf("invalid amount format: %s", human)
		}
	}
	if intPart == "" && fracPart == "" {
		return "", fmt.Errorf("invalid amount format: %s", human)
	}
	if !isDigits(intPart) || !isDigits(fracPart) {
		return "", fmt.Errorf("invalid amount format: %s", human)
	}

	// Truncate excess fractional digits, pad the rest out to the token's
	// precision, and read the concatenation as one integer.
	if len(fracPart) > decimals {
		fracPart = fracPart[:decimals]
	}
	digits := intPart + fracPart + strings.Repeat("0", decimals-len(fracPart))
	if digits == "" {
		digits = "0"
	}

	base, ok := new(big.Int).SetString(digits, 10)
	if !ok {
		return "", fmt.Errorf("invalid amount format: %s", human)
	}

	return base.String(), nil
}

// FormatFromBase renders a base-unit integer string as a human-readable
// decimal: value / 10^decimals with up to DisplayDecimals fractional digits,
// trailing zeros stripped.
func FormatFromBase(base string, decimals int) (string, error) {
	if decimals < 0 {
		return "", fmt.Errorf("negative decimals: %d", decimals)
	}

	n, ok := new(big.Int).SetString(strings.TrimSpace(base), 10)
	if !ok {
		return "", fmt.Errorf("invalid base amount: %s", base)
	}

	sign := ""
	if n.Sign() < 0 {
		sign = "-"
		n = new(big.Int).Neg(n)
	}

	pow := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(decimals)), nil)
	whole, rem := new(big.Int).QuoRem(n, pow, new(big.Int))

	frac := rem.String()
	if len(frac) < decimals {
		frac = strings.Repeat("0", decimals-len(frac)) + frac
	}
	if len(frac) > DisplayDecimals {
		frac = frac[:DisplayDecimals]
	}
	frac = strings.TrimRight(frac, "0")

	if frac == "" {
		return sign + whole.String(), nil
	}
	return sign + whole.String() + "." + frac, nil
}

func isDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
