package core

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestFormatAmount(t *testing.T) {
	cases := []struct {
		in  string
		out string
	}{
		{"13788", "₹13,788.00"},
		{"124.916666", "₹124.92"},
		{"0.5", "₹0.50"},
		{"100000", "₹100,000.00"},
		{"5000.01", "₹5,000.01"},
		{"999", "₹999.00"},
		{"-1234.5", "₹-1,234.50"},
		{"123456789012345678.99", "₹123,456,789,012,345,678.99"},
		{"9007199254740993", "₹9,007,199,254,740,993.00"},
	}
	for _, tc := range cases {
		got := FormatAmount(DefaultCurrencySymbol, decimal.RequireFromString(tc.in))
		if got != tc.out {
			t.Errorf("FormatAmount(%s) = %q, want %q", tc.in, got, tc.out)
		}
	}
}
