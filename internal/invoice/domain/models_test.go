package domain

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestCentsRoundTrip(t *testing.T) {
	cases := map[string]int64{
		"12.50":   1250,
		"0.01":    1,
		"0.005":   1,
		"199.999": 20000,
		"157.95":  15795,
	}
	for input, want := range cases {
		cents, ok := ToCents(decimal.RequireFromString(input))
		assert.True(t, ok, input)
		assert.Equal(t, want, cents, input)
	}

	assert.Equal(t, "12.50", FromCents(1250).StringFixed(2))
}

func TestToCentsRejectsOverflow(t *testing.T) {
	for _, input := range []string{
		"92233720368547758.08",
		"184467440737095516.17",
		"-92233720368547758.09",
		"1e30",
		"1e999999999",
	} {
		_, ok := ToCents(decimal.RequireFromString(input))
		assert.False(t, ok, input)
	}

	cents, ok := ToCents(decimal.RequireFromString("92233720368547758.07"))
	assert.True(t, ok)
	assert.Equal(t, int64(9223372036854775807), cents)

	cents, ok = ToCents(decimal.RequireFromString("1e-999999999"))
	assert.True(t, ok)
	assert.Zero(t, cents)
}

func TestStatusValid(t *testing.T) {
	assert.True(t, StatusPending.Valid())
	assert.True(t, StatusPaid.Valid())
	assert.False(t, Status("overdue").Valid())
	assert.False(t, Status("").Valid())
}
