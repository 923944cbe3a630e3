// Package analytics turns subscription, expense and budget records into
// dashboard figures, budget alerts and suggestions.
//
// Every function here is a pure computation over a snapshot. Callers fetch
// the records and supply the current instant.
package analytics

import (
	"time"

	"github.com/shopspring/decimal"

	"subtrack/internal/core"
)

// TrendPoint is one month of the trailing spending series.
type TrendPoint struct {
	Month                string          `json:"month"`
	SubscriptionSpending decimal.Decimal `json:"subscription_spending"`
	ExpenseSpending      decimal.Decimal `json:"expense_spending"`
	TotalSpending        decimal.Decimal `json:"total_spending"`
}

// DashboardStats is the derived dashboard. BudgetAlerts is filled by
// EvaluateAlerts.
type DashboardStats struct {
	TotalMonthlySpending  decimal.Decimal     `json:"total_monthly_spending"`
	TotalYearlySpending   decimal.Decimal     `json:"total_yearly_spending"`
	YearlyProjection      decimal.Decimal     `json:"yearly_projection"`
	SubscriptionSpending  decimal.Decimal     `json:"subscription_spending"`
	ExpenseSpending       decimal.Decimal     `json:"expense_spending"`
	UpcomingSubscriptions []core.Subscription `json:"upcoming_subscriptions"`
	UpcomingExpenses      []core.Expense      `json:"upcoming_expenses"`
	CategoryBreakdown     CategoryBreakdown   `json:"category_breakdown"`
	BudgetAlerts          []string            `json:"budget_alerts"`
	SavingsThisMonth      decimal.Decimal     `json:"savings_this_month"`
	SpendingTrends        []TrendPoint        `json:"spending_trends"`
}

// Snapshot is the record set one computation runs over.
type Snapshot struct {
	Subscriptions []core.Subscription
	Expenses      []core.Expense
	Budgets       []core.Budget
}

// Engine computes dashboards and suggestions with fixed thresholds.
type Engine struct {
	th Thresholds
}

// New returns an Engine. Zero threshold fields take their defaults.
func New(th Thresholds) *Engine {
	return &Engine{th: th.withDefaults()}
}

// Thresholds returns the effective tuning.
func (e *Engine) Thresholds() Thresholds {
	return e.th
}

// Dashboard aggregates the snapshot and evaluates its budgets.
func (e *Engine) Dashboard(snap Snapshot, now time.Time) DashboardStats {
	stats := e.Aggregate(snap.Subscriptions, snap.Expenses, now)
	stats.BudgetAlerts = e.EvaluateAlerts(stats, snap.Budgets)
	return stats
}

// Aggregate computes every dashboard figure except the budget alerts.
// Inactive subscriptions are ignored. Month boundaries are taken in now's
// location.
func (e *Engine) Aggregate(subs []core.Subscription, expenses []core.Expense, now time.Time) DashboardStats {
	active := activeOnly(subs)

	monthlySubs := decimal.Zero
	for _, s := range active {
		monthlySubs = monthlySubs.Add(MonthlyEquivalent(s.Cost, s.BillingFrequency))
	}
	yearlySubs := monthlySubs.Mul(twelve)

	monthStart := core.MonthStart(now)
	yearStart := core.YearStart(now)
	lastMonthStart := monthStart.AddDate(0, -1, 0)
	lastMonthEnd := monthStart.Add(-time.Second)

	monthlyExpenses := decimal.Zero
	yearlyExpenses := decimal.Zero
	lastMonthExpenses := decimal.Zero
	for _, x := range expenses {
		if !x.Date.Before(monthStart) {
			monthlyExpenses = monthlyExpenses.Add(x.Amount)
		}
		if !x.Date.Before(yearStart) {
			yearlyExpenses = yearlyExpenses.Add(x.Amount)
		}
		if within(x.Date, lastMonthStart, lastMonthEnd) {
			lastMonthExpenses = lastMonthExpenses.Add(x.Amount)
		}
	}

	totalMonthly := monthlySubs.Add(monthlyExpenses)
	lastMonthTotal := monthlySubs.Add(lastMonthExpenses)

	horizon := now.Add(e.th.UpcomingWindow)

	upcomingSubs := make([]core.Subscription, 0)
	for _, s := range active {
		if !s.NextDueDate.After(horizon) {
			upcomingSubs = append(upcomingSubs, s)
		}
	}

	upcomingExpenses := make([]core.Expense, 0)
	for _, x := range expenses {
		if x.IsRecurring && x.NextDueDate != nil && !x.NextDueDate.After(horizon) {
			upcomingExpenses = append(upcomingExpenses, x)
		}
	}

	breakdown := make(CategoryBreakdown, 0)
	for _, s := range active {
		breakdown = breakdown.add(string(s.Category), MonthlyEquivalent(s.Cost, s.BillingFrequency))
	}
	for _, x := range expenses {
		if !x.Date.Before(monthStart) {
			breakdown = breakdown.add(string(x.Category), x.Amount)
		}
	}

	return DashboardStats{
		TotalMonthlySpending:  totalMonthly,
		TotalYearlySpending:   yearlySubs.Add(yearlyExpenses),
		YearlyProjection:      totalMonthly.Mul(twelve),
		SubscriptionSpending:  monthlySubs,
		ExpenseSpending:       monthlyExpenses,
		UpcomingSubscriptions: upcomingSubs,
		UpcomingExpenses:      upcomingExpenses,
		CategoryBreakdown:     breakdown,
		BudgetAlerts:          []string{},
		SavingsThisMonth:      lastMonthTotal.Sub(totalMonthly),
		SpendingTrends:        e.trends(monthlySubs, expenses, monthStart),
	}
}

// trends builds the trailing series oldest first. Every bucket uses the
// current subscription cost rather than the cost at that month.
func (e *Engine) trends(monthlySubs decimal.Decimal, expenses []core.Expense, monthStart time.Time) []TrendPoint {
	n := e.th.TrendMonths
	out := make([]TrendPoint, n)
	for i := 0; i < n; i++ {
		mStart := monthStart.AddDate(0, -i, 0)
		mEnd := mStart.AddDate(0, 1, 0).Add(-time.Second)

		spent := decimal.Zero
		for _, x := range expenses {
			if within(x.Date, mStart, mEnd) {
				spent = spent.Add(x.Amount)
			}
		}

		out[n-1-i] = TrendPoint{
			Month:                mStart.Format("January 2006"),
			SubscriptionSpending: monthlySubs,
			ExpenseSpending:      spent,
			TotalSpending:        monthlySubs.Add(spent),
		}
	}
	return out
}

// within reports from <= t <= to.
func within(t, from, to time.Time) bool {
	return !t.Before(from) && !t.After(to)
}
