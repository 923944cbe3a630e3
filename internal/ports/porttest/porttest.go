// Package porttest holds a behavioural suite every ports.Store
// implementation must pass.
package porttest

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"subtrack/internal/core"
	"subtrack/internal/ports"
)

// Factory returns an empty store. It is called once per subtest.
type Factory func(t *testing.T) ports.Store

var base = time.Date(2025, 3, 1, 9, 30, 0, 0, time.UTC)

// RunStoreSuite runs the store contract against newStore.
func RunStoreSuite(t *testing.T, newStore Factory) {
	t.Run("Subscriptions", func(t *testing.T) { testSubscriptions(t, newStore(t)) })
	t.Run("SubscriptionFilters", func(t *testing.T) { testSubscriptionFilters(t, newStore(t)) })
	t.Run("Expenses", func(t *testing.T) { testExpenses(t, newStore(t)) })
	t.Run("ExpenseFilters", func(t *testing.T) { testExpenseFilters(t, newStore(t)) })
	t.Run("Budgets", func(t *testing.T) { testBudgets(t, newStore(t)) })
	t.Run("PurgeBudgets", func(t *testing.T) { testPurgeBudgets(t, newStore(t)) })
	t.Run("NotFound", func(t *testing.T) { testNotFound(t, newStore(t)) })
}

func amount(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func ptr[T any](v T) *T { return &v }

func testSubscriptions(t *testing.T, s ports.Store) {
	ctx := context.Background()
	in := core.Subscription{
		ID:               "sub-1",
		Name:             "Netflix",
		Cost:             amount("649.50"),
		BillingFrequency: core.Monthly,
		NextDueDate:      base.AddDate(0, 0, 5),
		Category:         core.Streaming,
		IsActive:         true,
		CreatedAt:        base,
	}

	got, err := s.InsertSubscription(ctx, in)
	if err != nil {
		t.Fatalf("InsertSubscription() error = %v", err)
	}
	if got.ID != in.ID || got.Name != in.Name || !got.Cost.Equal(in.Cost) {
		t.Errorf("InsertSubscription() = %+v, want %+v", got, in)
	}
	if !got.NextDueDate.Equal(in.NextDueDate) || !got.CreatedAt.Equal(in.CreatedAt) {
		t.Errorf("instants = %v/%v, want %v/%v", got.NextDueDate, got.CreatedAt, in.NextDueDate, in.CreatedAt)
	}

	updated, err := s.UpdateSubscription(ctx, in.ID, core.SubscriptionPatch{
		Cost:             ptr(amount("7000")),
		BillingFrequency: ptr(core.Yearly),
	})
	if err != nil {
		t.Fatalf("UpdateSubscription() error = %v", err)
	}
	if !updated.Cost.Equal(amount("7000")) || updated.BillingFrequency != core.Yearly {
		t.Errorf("UpdateSubscription() = %+v, want cost 7000 yearly", updated)
	}
	if updated.Name != "Netflix" || updated.Category != core.Streaming {
		t.Errorf("UpdateSubscription() changed untouched fields: %+v", updated)
	}

	unchanged, err := s.UpdateSubscription(ctx, in.ID, core.SubscriptionPatch{})
	if err != nil {
		t.Fatalf("empty UpdateSubscription() error = %v", err)
	}
	if !unchanged.Cost.Equal(amount("7000")) {
		t.Errorf("empty patch changed cost to %s", unchanged.Cost)
	}

	if err := s.RetireSubscription(ctx, in.ID); err != nil {
		t.Fatalf("RetireSubscription() error = %v", err)
	}
	retired, err := s.FindSubscription(ctx, in.ID)
	if err != nil {
		t.Fatalf("FindSubscription() after retire error = %v", err)
	}
	if retired.IsActive {
		t.Error("retired subscription is still active")
	}
}

func testSubscriptionFilters(t *testing.T, s ports.Store) {
	ctx := context.Background()
	seed := []core.Subscription{
		{ID: "a", Name: "Netflix Premium", Category: core.Streaming, IsActive: true},
		{ID: "b", Name: "GitHub", Category: core.Software, IsActive: true},
		{ID: "c", Name: "Old Gym", Category: core.Fitness, IsActive: false},
		{ID: "d", Name: "Disney 100%", Category: core.Streaming, IsActive: true},
	}
	for _, sub := range seed {
		sub.Cost = amount("100")
		sub.BillingFrequency = core.Monthly
		sub.NextDueDate = base
		sub.CreatedAt = base
		if _, err := s.InsertSubscription(ctx, sub); err != nil {
			t.Fatalf("InsertSubscription(%s) error = %v", sub.ID, err)
		}
	}

	tests := []struct {
		name   string
		filter ports.SubscriptionFilter
		want   []string
	}{
		{"all in insertion order", ports.SubscriptionFilter{}, []string{"a", "b", "c", "d"}},
		{"active only", ports.SubscriptionFilter{Active: ports.Bool(true)}, []string{"a", "b", "d"}},
		{"inactive only", ports.SubscriptionFilter{Active: ports.Bool(false)}, []string{"c"}},
		{"category", ports.SubscriptionFilter{Category: core.Streaming}, []string{"a", "d"}},
		{"search is case-insensitive", ports.SubscriptionFilter{Search: "netFLIX"}, []string{"a"}},
		{"search treats wildcards literally", ports.SubscriptionFilter{Search: "100%"}, []string{"d"}},
		{"combined", ports.SubscriptionFilter{Active: ports.Bool(true), Category: core.Software}, []string{"b"}},
		{"no match", ports.SubscriptionFilter{Search: "spotify"}, []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := s.FindSubscriptions(ctx, tt.filter)
			if err != nil {
				t.Fatalf("FindSubscriptions() error = %v", err)
			}
			if ids := subscriptionIDs(got); !equalIDs(ids, tt.want) {
				t.Errorf("FindSubscriptions() ids = %v, want %v", ids, tt.want)
			}
		})
	}
}

func testExpenses(t *testing.T, s ports.Store) {
	ctx := context.Background()
	due := base.AddDate(0, 1, 0)
	in := core.Expense{
		ID:                 "exp-1",
		Name:               "Rent",
		Amount:             amount("25000"),
		Category:           core.ExpenseUtilities,
		Tags:               []string{"home", "fixed"},
		Notes:              ptr("landlord"),
		Date:               base,
		IsRecurring:        true,
		RecurringFrequency: ptr(core.Monthly),
		NextDueDate:        &due,
		CreatedAt:          base,
	}
	got, err := s.InsertExpense(ctx, in)
	if err != nil {
		t.Fatalf("InsertExpense() error = %v", err)
	}
	if len(got.Tags) != 2 || got.Tags[0] != "home" || got.Tags[1] != "fixed" {
		t.Errorf("Tags = %v, want [home fixed]", got.Tags)
	}
	if got.Notes == nil || *got.Notes != "landlord" {
		t.Errorf("Notes = %v, want landlord", got.Notes)
	}
	if got.RecurringFrequency == nil || *got.RecurringFrequency != core.Monthly {
		t.Errorf("RecurringFrequency = %v, want monthly", got.RecurringFrequency)
	}
	if got.NextDueDate == nil || !got.NextDueDate.Equal(due) {
		t.Errorf("NextDueDate = %v, want %v", got.NextDueDate, due)
	}

	// Mutating the caller's slice must not reach the store.
	in.Tags[0] = "mutated"
	again, err := s.FindExpense(ctx, in.ID)
	if err != nil {
		t.Fatalf("FindExpense() error = %v", err)
	}
	if again.Tags[0] != "home" {
		t.Errorf("stored tags aliased caller slice: %v", again.Tags)
	}

	newDate := core.NewInstant(base.AddDate(0, 0, 10))
	updated, err := s.UpdateExpense(ctx, in.ID, core.ExpensePatch{
		Amount: ptr(amount("26000")),
		Tags:   ptr([]string{}),
		Date:   &newDate,
	})
	if err != nil {
		t.Fatalf("UpdateExpense() error = %v", err)
	}
	if !updated.Amount.Equal(amount("26000")) || len(updated.Tags) != 0 || !updated.Date.Equal(newDate.Time) {
		t.Errorf("UpdateExpense() = %+v", updated)
	}
	if updated.NextDueDate == nil || !updated.NextDueDate.Equal(due) {
		t.Errorf("UpdateExpense() moved NextDueDate to %v, want %v", updated.NextDueDate, due)
	}

	plain, err := s.InsertExpense(ctx, core.Expense{
		ID: "exp-2", Name: "Coffee", Amount: amount("150"), Category: core.Food,
		Tags: []string{}, Date: base, CreatedAt: base,
	})
	if err != nil {
		t.Fatalf("InsertExpense(plain) error = %v", err)
	}
	if plain.Tags == nil || plain.Notes != nil || plain.RecurringFrequency != nil || plain.NextDueDate != nil {
		t.Errorf("plain expense optional fields = %+v", plain)
	}

	if err := s.PurgeExpense(ctx, in.ID); err != nil {
		t.Fatalf("PurgeExpense() error = %v", err)
	}
	if _, err := s.FindExpense(ctx, in.ID); !errors.Is(err, core.ErrNotFound) {
		t.Errorf("FindExpense() after purge error = %v, want ErrNotFound", err)
	}
	if err := s.PurgeExpense(ctx, in.ID); !errors.Is(err, core.ErrNotFound) {
		t.Errorf("second PurgeExpense() error = %v, want ErrNotFound", err)
	}
}

func testExpenseFilters(t *testing.T, s ports.Store) {
	ctx := context.Background()
	seed := []core.Expense{
		{ID: "e1", Name: "Groceries", Category: core.Food, Date: base.AddDate(0, 0, -10)},
		{ID: "e2", Name: "Cab", Category: core.Transportation, Date: base, Notes: ptr("airport run")},
		{ID: "e3", Name: "Internet", Category: core.ExpenseUtilities, Date: base.AddDate(0, 0, 3),
			IsRecurring: true, RecurringFrequency: ptr(core.Monthly)},
		{ID: "e4", Name: "Dinner", Category: core.Food, Date: base.AddDate(0, 0, 20)},
	}
	for _, e := range seed {
		e.Amount = amount("10")
		e.Tags = []string{}
		e.CreatedAt = base
		if _, err := s.InsertExpense(ctx, e); err != nil {
			t.Fatalf("InsertExpense(%s) error = %v", e.ID, err)
		}
	}

	from := base
	to := base.AddDate(0, 0, 3)
	tests := []struct {
		name   string
		filter ports.ExpenseFilter
		want   []string
	}{
		{"all", ports.ExpenseFilter{}, []string{"e1", "e2", "e3", "e4"}},
		{"category", ports.ExpenseFilter{Category: core.Food}, []string{"e1", "e4"}},
		{"recurring only", ports.ExpenseFilter{RecurringOnly: true}, []string{"e3"}},
		{"inclusive range", ports.ExpenseFilter{From: &from, To: &to}, []string{"e2", "e3"}},
		{"from only", ports.ExpenseFilter{From: &to}, []string{"e3", "e4"}},
		{"search name", ports.ExpenseFilter{Search: "GROC"}, []string{"e1"}},
		{"search notes", ports.ExpenseFilter{Search: "airport"}, []string{"e2"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := s.FindExpenses(ctx, tt.filter)
			if err != nil {
				t.Fatalf("FindExpenses() error = %v", err)
			}
			if ids := expenseIDs(got); !equalIDs(ids, tt.want) {
				t.Errorf("FindExpenses() ids = %v, want %v", ids, tt.want)
			}
		})
	}
}

func testBudgets(t *testing.T, s ports.Store) {
	ctx := context.Background()
	in := core.Budget{
		ID: "b-1", Type: core.CategoryBudget, Amount: amount("8000"),
		Category: ptr("food"), Period: core.PeriodMonthly, CreatedAt: base,
	}
	got, err := s.InsertBudget(ctx, in)
	if err != nil {
		t.Fatalf("InsertBudget() error = %v", err)
	}
	if got.CategoryName() != "food" || got.Period != core.PeriodMonthly {
		t.Errorf("InsertBudget() = %+v", got)
	}

	updated, err := s.UpdateBudget(ctx, in.ID, core.BudgetPatch{Amount: ptr(amount("9000")), Period: ptr(core.PeriodYearly)})
	if err != nil {
		t.Fatalf("UpdateBudget() error = %v", err)
	}
	if !updated.Amount.Equal(amount("9000")) || updated.Period != core.PeriodYearly || updated.CategoryName() != "food" {
		t.Errorf("UpdateBudget() = %+v", updated)
	}

	annual, err := s.InsertBudget(ctx, core.Budget{
		ID: "b-2", Type: core.AnnualBudget, Amount: amount("120000"), Period: core.PeriodYearly, CreatedAt: base,
	})
	if err != nil {
		t.Fatalf("InsertBudget(annual) error = %v", err)
	}
	if annual.Category != nil {
		t.Errorf("annual budget category = %v, want nil", *annual.Category)
	}

	if err := s.PurgeBudget(ctx, in.ID); err != nil {
		t.Fatalf("PurgeBudget() error = %v", err)
	}
	left, err := s.FindBudgets(ctx, ports.BudgetFilter{})
	if err != nil {
		t.Fatalf("FindBudgets() error = %v", err)
	}
	if ids := budgetIDs(left); !equalIDs(ids, []string{"b-2"}) {
		t.Errorf("FindBudgets() ids = %v, want [b-2]", ids)
	}
}

func testPurgeBudgets(t *testing.T, s ports.Store) {
	ctx := context.Background()
	seed := []core.Budget{
		{ID: "annual", Type: core.AnnualBudget, Period: core.PeriodYearly},
		{ID: "food-1", Type: core.CategoryBudget, Category: ptr("food"), Period: core.PeriodMonthly},
		{ID: "food-2", Type: core.CategoryBudget, Category: ptr("food"), Period: core.PeriodMonthly},
		{ID: "shop", Type: core.CategoryBudget, Category: ptr("shopping"), Period: core.PeriodMonthly},
	}
	for _, b := range seed {
		b.Amount = amount("1000")
		b.CreatedAt = base
		if _, err := s.InsertBudget(ctx, b); err != nil {
			t.Fatalf("InsertBudget(%s) error = %v", b.ID, err)
		}
	}

	if _, err := s.PurgeBudgets(ctx, ports.BudgetFilter{}); !errors.Is(err, core.ErrValidation) {
		t.Errorf("PurgeBudgets(empty) error = %v, want ErrValidation", err)
	}

	n, err := s.PurgeBudgets(ctx, ports.BudgetFilter{Type: core.CategoryBudget, Category: ptr("food")})
	if err != nil {
		t.Fatalf("PurgeBudgets(food) error = %v", err)
	}
	if n != 2 {
		t.Errorf("PurgeBudgets(food) = %d, want 2", n)
	}

	n, err = s.PurgeBudgets(ctx, ports.BudgetFilter{Type: core.AnnualBudget})
	if err != nil {
		t.Fatalf("PurgeBudgets(annual) error = %v", err)
	}
	if n != 1 {
		t.Errorf("PurgeBudgets(annual) = %d, want 1", n)
	}

	left, err := s.FindBudgets(ctx, ports.BudgetFilter{Type: core.CategoryBudget})
	if err != nil {
		t.Fatalf("FindBudgets() error = %v", err)
	}
	if ids := budgetIDs(left); !equalIDs(ids, []string{"shop"}) {
		t.Errorf("remaining budgets = %v, want [shop]", ids)
	}
}

func testNotFound(t *testing.T, s ports.Store) {
	ctx := context.Background()
	checks := map[string]error{}

	_, checks["FindSubscription"] = s.FindSubscription(ctx, "missing")
	_, checks["UpdateSubscription"] = s.UpdateSubscription(ctx, "missing", core.SubscriptionPatch{Name: ptr("x")})
	checks["RetireSubscription"] = s.RetireSubscription(ctx, "missing")
	_, checks["FindExpense"] = s.FindExpense(ctx, "missing")
	_, checks["UpdateExpense"] = s.UpdateExpense(ctx, "missing", core.ExpensePatch{Name: ptr("x")})
	checks["PurgeExpense"] = s.PurgeExpense(ctx, "missing")
	_, checks["FindBudget"] = s.FindBudget(ctx, "missing")
	_, checks["UpdateBudget"] = s.UpdateBudget(ctx, "missing", core.BudgetPatch{Amount: ptr(amount("1"))})
	checks["PurgeBudget"] = s.PurgeBudget(ctx, "missing")

	for op, err := range checks {
		if !errors.Is(err, core.ErrNotFound) {
			t.Errorf("%s() error = %v, want ErrNotFound", op, err)
		}
	}
}

func subscriptionIDs(items []core.Subscription) []string {
	ids := make([]string, 0, len(items))
	for _, it := range items {
		ids = append(ids, it.ID)
	}
	return ids
}

func expenseIDs(items []core.Expense) []string {
	ids := make([]string, 0, len(items))
	for _, it := range items {
		ids = append(ids, it.ID)
	}
	return ids
}

func budgetIDs(items []core.Budget) []string {
	ids := make([]string, 0, len(items))
	for _, it := range items {
		ids = append(ids, it.ID)
	}
	return ids
}

func equalIDs(got, want []string) bool {
	if len(got) != len(want) {
		return false
	}
	for i := range got {
		if got[i] != want[i] {
			return false
		}
	}
	return true
}
