// Package core provides the record types, money helpers and validation
// shared by every layer.
//
// Money is carried as decimal.Decimal end to end. JSON encodes amounts as
// plain numbers.
package core

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Amounts are JSON numbers for every encoder in the process. The flag is
// global to shopspring/decimal, so any package importing core gets it.
func init() {
	decimal.MarshalJSONWithoutQuotes = true
}

// DefaultCurrencySymbol prefixes amounts in generated messages.
const DefaultCurrencySymbol = "₹"

// FormatAmount renders d with thousands separators and two decimals,
// e.g. FormatAmount("₹", 13788) -> "₹13,788.00". The digits come from the
// decimal itself, so large amounts keep their exact value.
func FormatAmount(symbol string, d decimal.Decimal) string {
	s := d.StringFixed(2)
	sign := ""
	if strings.HasPrefix(s, "-") {
		sign, s = "-", s[1:]
	}
	whole, frac, _ := strings.Cut(s, ".")
	return symbol + sign + groupThousands(whole) + "." + frac
}

func groupThousands(digits string) string {
	if len(digits) <= 3 {
		return digits
	}
	var b strings.Builder
	head := len(digits) % 3
	if head > 0 {
		b.WriteString(digits[:head])
	}
	for i := head; i < len(digits); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(digits[i : i+3])
	}
	return b.String()
}
