package format

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const isoDate = "2006-01-02"

// Currency renders cents as US dollars, e.g. 157595 -> "$1,575.95".
func Currency(cents int64) string {
	amount := decimal.New(cents, -2)
	sign := ""
	if amount.IsNegative() {
		sign = "-"
		amount = amount.Abs()
	}

	fixed := amount.StringFixed(2)
	whole, frac, _ := strings.Cut(fixed, ".")
	return sign + "$" + groupThousands(whole) + "." + frac
}

// Date renders an ISO date as "Jan 2, 2006". Unparseable input is returned
// unchanged.
func Date(iso string) string {
	t, err := time.Parse(isoDate, strings.TrimSpace(iso))
	if err != nil {
		return iso
	}
	return t.Format("Jan 2, 2006")
}

func groupThousands(digits string) string {
	if len(digits) <= 3 {
		return digits
	}
	var b strings.Builder
	lead := len(digits) % 3
	if lead > 0 {
		b.WriteString(digits[:lead])
	}
	for i := lead; i < len(digits); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(digits[i : i+3])
	}
	return b.String()
}
