package analytics

import (
	"github.com/shopspring/decimal"

	"subtrack/internal/core"
)

var twelve = decimal.NewFromInt(12)

// MonthlyEquivalent returns cost for monthly billing and cost/12 for yearly.
// Any other frequency is treated as monthly.
func MonthlyEquivalent(cost decimal.Decimal, freq core.Frequency) decimal.Decimal {
	if freq == core.Yearly {
		return cost.Div(twelve)
	}
	return cost
}

func activeOnly(subs []core.Subscription) []core.Subscription {
	out := make([]core.Subscription, 0, len(subs))
	for _, s := range subs {
		if s.IsActive {
			out = append(out, s)
		}
	}
	return out
}
