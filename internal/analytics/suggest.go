package analytics

import (
	"fmt"
	"sort"

	"subtrack/internal/core"
)

// Suggest applies the advisory rules in fixed order:
//
//  1. more than MinSubscriptionsForCancel active subscriptions: suggest
//     cancelling the most expensive one
//  2. largest category above HighCategorySpend: high-spending notice
//  3. yearly projection above HighYearlyProjection: set category budgets
//  4. savings against last month, or an overspend beyond OverspendWarning
func (e *Engine) Suggest(stats DashboardStats, subs []core.Subscription) []string {
	suggestions := make([]string, 0, 4)

	active := activeOnly(subs)
	if len(active) > e.th.MinSubscriptionsForCancel {
		sort.SliceStable(active, func(i, j int) bool {
			return MonthlyEquivalent(active[i].Cost, active[i].BillingFrequency).
				GreaterThan(MonthlyEquivalent(active[j].Cost, active[j].BillingFrequency))
		})
		top := active[0]
		yearly := MonthlyEquivalent(top.Cost, top.BillingFrequency).Mul(twelve)
		suggestions = append(suggestions, fmt.Sprintf("💡 Consider canceling '%s' to save %s per year",
			top.Name, e.money(yearly)))
	}

	if top, ok := stats.CategoryBreakdown.Max(); ok && top.Amount.GreaterThan(e.th.HighCategorySpend) {
		suggestions = append(suggestions, fmt.Sprintf("📊 High spending detected in %s: %s this month",
			title(top.Category), e.money(top.Amount)))
	}

	if stats.YearlyProjection.GreaterThan(e.th.HighYearlyProjection) {
		suggestions = append(suggestions, "💰 Consider setting category-wise budgets to better control spending")
	}

	switch {
	case stats.SavingsThisMonth.IsPositive():
		suggestions = append(suggestions, fmt.Sprintf("🎉 Great job! You saved %s compared to last month",
			e.money(stats.SavingsThisMonth)))
	case stats.SavingsThisMonth.LessThan(e.th.OverspendWarning.Neg()):
		suggestions = append(suggestions, fmt.Sprintf("⚠️ You spent %s more than last month. Review your recent expenses",
			e.money(stats.SavingsThisMonth.Abs())))
	}

	return suggestions
}
