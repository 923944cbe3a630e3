package analytics

import (
	"time"

	"github.com/shopspring/decimal"

	"subtrack/internal/core"
)

// Thresholds tune the upcoming window, the trend length and the suggestion
// rules.
type Thresholds struct {
	// HighCategorySpend triggers the high-spending notice when the largest
	// category exceeds it.
	HighCategorySpend decimal.Decimal
	// HighYearlyProjection triggers the category-budgets suggestion.
	HighYearlyProjection decimal.Decimal
	// OverspendWarning is the month-over-month increase that triggers a
	// warning.
	OverspendWarning decimal.Decimal
	// MinSubscriptionsForCancel is the active count that must be exceeded
	// before a cancellation is suggested.
	MinSubscriptionsForCancel int
	UpcomingWindow            time.Duration
	TrendMonths               int
	CurrencySymbol            string
}

// DefaultThresholds returns the stock tuning.
func DefaultThresholds() Thresholds {
	return Thresholds{
		HighCategorySpend:         decimal.NewFromInt(5000),
		HighYearlyProjection:      decimal.NewFromInt(100000),
		OverspendWarning:          decimal.NewFromInt(1000),
		MinSubscriptionsForCancel: 3,
		UpcomingWindow:            7 * 24 * time.Hour,
		TrendMonths:               6,
		CurrencySymbol:            core.DefaultCurrencySymbol,
	}
}

// withDefaults fills zero fields from DefaultThresholds.
func (t Thresholds) withDefaults() Thresholds {
	d := DefaultThresholds()
	if t.HighCategorySpend.IsZero() {
		t.HighCategorySpend = d.HighCategorySpend
	}
	if t.HighYearlyProjection.IsZero() {
		t.HighYearlyProjection = d.HighYearlyProjection
	}
	if t.OverspendWarning.IsZero() {
		t.OverspendWarning = d.OverspendWarning
	}
	if t.MinSubscriptionsForCancel <= 0 {
		t.MinSubscriptionsForCancel = d.MinSubscriptionsForCancel
	}
	if t.UpcomingWindow <= 0 {
		t.UpcomingWindow = d.UpcomingWindow
	}
	if t.TrendMonths <= 0 {
		t.TrendMonths = d.TrendMonths
	}
	if t.CurrencySymbol == "" {
		t.CurrencySymbol = d.CurrencySymbol
	}
	return t
}
