package format

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCurrency(t *testing.T) {
	cases := map[int64]string{
		0:         "$0.00",
		5:         "$0.05",
		1250:      "$12.50",
		157595:    "$1,575.95",
		100000000: "$1,000,000.00",
		-2500:     "-$25.00",
	}
	for cents, want := range cases {
		assert.Equal(t, want, Currency(cents), cents)
	}
}

func TestDate(t *testing.T) {
	assert.Equal(t, "Dec 6, 2022", Date("2022-12-06"))
	assert.Equal(t, "garbage", Date("garbage"))
}
