package services

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"subtrack/internal/analytics"
	"subtrack/internal/core"
	applog "subtrack/internal/log"
	"subtrack/internal/ports"
)

// Export is the full record set, retired subscriptions included.
type Export struct {
	Subscriptions []core.Subscription `json:"subscriptions"`
	Expenses      []core.Expense      `json:"expenses"`
	Budgets       []core.Budget       `json:"budgets"`
	ExportDate    time.Time           `json:"export_date"`
	TotalRecords  int                 `json:"total_records"`
}

// Categories is the enum catalogue clients build their forms from.
type Categories struct {
	SubscriptionCategories []core.SubscriptionCategory `json:"subscription_categories"`
	ExpenseCategories      []core.ExpenseCategory      `json:"expense_categories"`
	BillingFrequencies     []core.Frequency            `json:"billing_frequencies"`
	RecurringFrequencies   []core.Frequency            `json:"recurring_frequencies"`
	BudgetTypes            []core.BudgetType           `json:"budget_types"`
}

// Dashboard computes the dashboard over the current records.
func (t *Tracker) Dashboard(ctx context.Context) (analytics.DashboardStats, error) {
	in, err := t.Insights(ctx)
	if err != nil {
		return analytics.DashboardStats{}, err
	}
	return in.Stats, nil
}

// Suggestions computes the advisory messages over the current records.
func (t *Tracker) Suggestions(ctx context.Context) ([]string, error) {
	in, err := t.Insights(ctx)
	if err != nil {
		return nil, err
	}
	return in.Suggestions, nil
}

// Insights returns the dashboard and suggestions for one snapshot, served
// from the cache when no write happened since it was filled.
func (t *Tracker) Insights(ctx context.Context) (Insights, error) {
	if t.insights != nil {
		if in, ok := t.insights.Get(insightsKey); ok {
			return in, nil
		}
	}

	gen := t.generation.Load()
	snap, err := t.snapshot(ctx, ports.SubscriptionFilter{Active: ports.Bool(true)})
	if err != nil {
		return Insights{}, fmt.Errorf("compute dashboard: %w", err)
	}

	now := t.clock.Now()
	stats := t.engine.Dashboard(snap, now)
	in := Insights{
		Stats:       stats,
		Suggestions: t.engine.Suggest(stats, snap.Subscriptions),
	}

	t.logger.DebugContext(ctx, "Computed insights",
		applog.FieldOperation, applog.OpDashboard,
		"subscriptions", len(snap.Subscriptions),
		"expenses", len(snap.Expenses),
		"budgets", len(snap.Budgets),
		applog.FieldAlerts, len(stats.BudgetAlerts))

	if t.insights != nil {
		t.cacheMu.Lock()
		if t.generation.Load() == gen {
			t.insights.Set(insightsKey, in)
		}
		t.cacheMu.Unlock()
	}
	return in, nil
}

// Export returns every stored record.
func (t *Tracker) Export(ctx context.Context) (Export, error) {
	snap, err := t.snapshot(ctx, ports.SubscriptionFilter{})
	if err != nil {
		return Export{}, fmt.Errorf("export: %w", err)
	}

	out := Export{
		Subscriptions: snap.Subscriptions,
		Expenses:      snap.Expenses,
		Budgets:       snap.Budgets,
		ExportDate:    t.clock.Now(),
		TotalRecords:  len(snap.Subscriptions) + len(snap.Expenses) + len(snap.Budgets),
	}
	t.logger.InfoContext(ctx, "Exported records",
		applog.FieldOperation, applog.OpExport,
		applog.FieldCount, out.TotalRecords)
	return out, nil
}

func (t *Tracker) Categories() Categories {
	return Categories{
		SubscriptionCategories: core.SubscriptionCategories,
		ExpenseCategories:      core.ExpenseCategories,
		BillingFrequencies:     core.BillingFrequencies,
		RecurringFrequencies:   core.RecurringFrequencies,
		BudgetTypes:            []core.BudgetType{core.AnnualBudget, core.CategoryBudget},
	}
}

// snapshot fetches the three collections concurrently. Any failure aborts
// the whole read.
func (t *Tracker) snapshot(ctx context.Context, subs ports.SubscriptionFilter) (analytics.Snapshot, error) {
	var snap analytics.Snapshot
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		var err error
		snap.Subscriptions, err = t.store.FindSubscriptions(gctx, subs)
		return err
	})
	g.Go(func() error {
		var err error
		snap.Expenses, err = t.store.FindExpenses(gctx, ports.ExpenseFilter{})
		return err
	})
	g.Go(func() error {
		var err error
		snap.Budgets, err = t.store.FindBudgets(gctx, ports.BudgetFilter{})
		return err
	})

	if err := g.Wait(); err != nil {
		return analytics.Snapshot{}, err
	}
	return snap, nil
}
