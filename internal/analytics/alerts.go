package analytics

import (
	"fmt"

	"github.com/shopspring/decimal"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"subtrack/internal/core"
)

// EvaluateAlerts returns one message per exceeded budget, in budget order.
// Spending equal to a budget does not alert.
func (e *Engine) EvaluateAlerts(stats DashboardStats, budgets []core.Budget) []string {
	alerts := make([]string, 0)
	for _, b := range budgets {
		switch b.Type {
		case core.AnnualBudget:
			if b.Yearly() {
				if stats.YearlyProjection.GreaterThan(b.Amount) {
					alerts = append(alerts, fmt.Sprintf("⚠️ Annual budget exceeded! Projected: %s, Budget: %s",
						e.money(stats.YearlyProjection), e.money(b.Amount)))
				}
				continue
			}
			if stats.TotalMonthlySpending.GreaterThan(b.Amount) {
				alerts = append(alerts, fmt.Sprintf("⚠️ Monthly budget exceeded! Spent: %s, Budget: %s",
					e.money(stats.TotalMonthlySpending), e.money(b.Amount)))
			}
		case core.CategoryBudget:
			spent, _ := stats.CategoryBreakdown.Get(b.CategoryName())
			if spent.GreaterThan(b.Amount) {
				alerts = append(alerts, fmt.Sprintf("⚠️ %s budget exceeded! Spent: %s, Budget: %s",
					title(b.CategoryName()), e.money(spent), e.money(b.Amount)))
			}
		}
	}
	return alerts
}

func (e *Engine) money(d decimal.Decimal) string {
	return core.FormatAmount(e.th.CurrencySymbol, d)
}

// title upper-cases the first letter of each word. A Caser is not safe for
// concurrent use, so one is built per call.
func title(s string) string {
	return cases.Title(language.English).String(s)
}
