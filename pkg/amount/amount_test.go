package amount

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseToBase(t *testing.T) {
	tests := []struct {
		name     string
		human    string
		decimals int
		want     string
	}{
		{"near precision", "0.1", 24, "100000000000000000000000"},
		{"near scenario amount", "2.5", 24, "2500000000000000000000000"},
		{"whole number", "1", 6, "1000000"},
		{"exact precision", "0.123456", 6, "123456"},
		{"excess fraction truncated", "0.1234567891", 6, "123456"},
		{"below precision", "0.0000001", 6, "0"},
		{"no integer part", ".5", 2, "50"},
		{"zero", "0", 5, "0"},
		{"zero decimals", "42", 0, "42"},
		{"zero decimals truncates fraction", "42.9", 0, "42"},
		{"leading zeros", "007.25", 2, "725"},
		{"whitespace tolerated", " 1.5 ", 3, "1500"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseToBase(tt.human, tt.decimals)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseToBaseErrors(t *testing.T) {
	invalid := []string{"", "abc", "1.2.3", "-1", "1,5", ".", "1e5"}

	for _, human := range invalid {
		_, err := ParseToBase(human, 6)
		assert.Error(t, err, "input %q", human)
	}

	_, err := ParseToBase("1", -1)
	assert.Error(t, err)
}

func TestFormatFromBase(t *testing.T) {
	tests := []struct {
		name     string
		base     string
		decimals int
		want     string
	}{
		{"near precision", "100000000000000000000000", 24, "0.1"},
		{"usdc scenario amount", "2500000", 6, "2.5"},
		{"whole number strips point", "1000000", 6, "1"},
		{"all fraction digits", "123456789", 6, "123.456789"},
		{"display truncation", "1234567", 7, "0.123456"},
		{"zero decimals", "1234567", 0, "1234567"},
		{"zero value", "0", 18, "0"},
		{"negative", "-2500000", 6, "-2.5"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := FormatFromBase(tt.base, tt.decimals)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFormatFromBaseErrors(t *testing.T) {
	_, err := FormatFromBase("xyz", 6)
	assert.Error(t, err)

	_, err = FormatFromBase("1", -1)
	assert.Error(t, err)
}

// Formatting truncates to six fractional digits, so a parse/format/parse
// round trip may lose up to 10^(decimals-6) base units but never gains any.
func TestRoundTripWithinTruncationError(t *testing.T) {
	cases := []struct {
		human    string
		decimals int
	}{
		{"1.23456789", 10},
		{"0.1", 24},
		{"1234.000001", 8},
		{"999999.999999999", 12},
		{"3", 0},
	}

	for _, tt := range cases {
		first, err := ParseToBase(tt.human, tt.decimals)
		require.NoError(t, err)

		formatted, err := FormatFromBase(first, tt.decimals)
		require.NoError(t, err)

		second, err := ParseToBase(formatted, tt.decimals)
		require.NoError(t, err)

		a, ok := new(big.Int).SetString(first, 10)
		require.True(t, ok)
		b, ok := new(big.Int).SetString(second, 10)
		require.True(t, ok)

		diff := new(big.Int).Sub(a, b)
		assert.True(t, diff.Sign() >= 0, "round trip must not gain value for %q", tt.human)

		tolerance := big.NewInt(1)
		if tt.decimals > DisplayDecimals {
			tolerance = new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(tt.decimals-DisplayDecimals)), nil)
		}
		assert.True(t, diff.Cmp(tolerance) < 0,
			"round trip error %s exceeds tolerance %s for %q", diff, tolerance, tt.human)
	}
}
