package masking

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMaskEmail(t *testing.T) {
	cases := map[string]string{
		"":                      "",
		"jane.doe@example.com":  "ja****@example.com",
		" ab@example.com ":      "****@example.com",
		"not-an-email-address":  "****ress",
		"abc":                   "****",
		"trailing@":             "****ing@",
	}
	for in, want := range cases {
		assert.Equal(t, want, MaskEmail(in), in)
	}
}
