package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"subtrack/internal/analytics"
	"subtrack/internal/cache"
	"subtrack/internal/core"
	applog "subtrack/internal/log"
	"subtrack/internal/ports"
	"subtrack/internal/storage/memory"
)

var now = time.Date(2025, 3, 15, 12, 0, 0, 0, time.UTC)

type event struct {
	entity, id, op string
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []event
	err    error
}

func (p *recordingPublisher) PublishRecordChanged(_ context.Context, entity, id, op string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event{entity, id, op})
	return p.err
}

func (p *recordingPublisher) last() event {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.events) == 0 {
		return event{}
	}
	return p.events[len(p.events)-1]
}

// countingStore counts subscription list calls and can fail expense lists.
type countingStore struct {
	ports.Store
	subscriptionLists atomic.Int32
	expenseErr        error
}

func (s *countingStore) FindSubscriptions(ctx context.Context, f ports.SubscriptionFilter) ([]core.Subscription, error) {
	s.subscriptionLists.Add(1)
	return s.Store.FindSubscriptions(ctx, f)
}

func (s *countingStore) FindExpenses(ctx context.Context, f ports.ExpenseFilter) ([]core.Expense, error) {
	if s.expenseErr != nil {
		return nil, s.expenseErr
	}
	return s.Store.FindExpenses(ctx, f)
}

func sequentialIDs() func() string {
	var n atomic.Int32
	return func() string { return fmt.Sprintf("id-%d", n.Add(1)) }
}

func newTestTracker(t *testing.T, opts ...Option) (*Tracker, *countingStore, *recordingPublisher) {
	t.Helper()
	store := &countingStore{Store: memory.New()}
	pub := &recordingPublisher{}
	base := []Option{
		WithClock(ports.FixedClock(now)),
		WithPublisher(pub),
		WithLogger(applog.Nop()),
		WithIDGenerator(sequentialIDs()),
	}
	tr := NewTracker(store, analytics.New(analytics.DefaultThresholds()), append(base, opts...)...)
	return tr, store, pub
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func ptr[T any](v T) *T { return &v }

func subInput(name, cost string, freq core.Frequency) core.SubscriptionInput {
	return core.SubscriptionInput{
		Name:             name,
		Cost:             dec(cost),
		BillingFrequency: freq,
		NextDueDate:      core.NewInstant(now.AddDate(0, 0, 3)),
		Category:         core.Streaming,
	}
}

func TestCreateSubscription(t *testing.T) {
	tr, _, pub := newTestTracker(t)
	ctx := context.Background()

	sub, err := tr.CreateSubscription(ctx, subInput("  Netflix ", "649", core.Monthly))
	if err != nil {
		t.Fatalf("CreateSubscription() error = %v", err)
	}
	if sub.ID != "id-1" || sub.Name != "Netflix" || !sub.IsActive || !sub.CreatedAt.Equal(now) {
		t.Errorf("CreateSubscription() = %+v", sub)
	}
	if want := (event{"subscription", "id-1", "create"}); pub.last() != want {
		t.Errorf("event = %+v, want %+v", pub.last(), want)
	}

	_, err = tr.CreateSubscription(ctx, subInput("   ", "0", "weekly"))
	var verr *core.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("CreateSubscription(invalid) error = %v, want ValidationError", err)
	}
	for _, field := range []string{"name", "cost", "billing_frequency"} {
		if _, ok := verr.Fields[field]; !ok {
			t.Errorf("ValidationError missing field %q: %v", field, verr.Fields)
		}
	}
	if len(pub.events) != 1 {
		t.Errorf("invalid create published %d events, want 1 total", len(pub.events))
	}
}

func TestDeleteSubscriptionRetires(t *testing.T) {
	tr, _, _ := newTestTracker(t)
	ctx := context.Background()

	sub, _ := tr.CreateSubscription(ctx, subInput("Gym", "1200", core.Monthly))
	if err := tr.DeleteSubscription(ctx, sub.ID); err != nil {
		t.Fatalf("DeleteSubscription() error = %v", err)
	}

	active, err := tr.ListSubscriptions(ctx, ports.SubscriptionFilter{})
	if err != nil {
		t.Fatalf("ListSubscriptions() error = %v", err)
	}
	if len(active) != 0 {
		t.Errorf("ListSubscriptions() = %d records, want 0", len(active))
	}

	got, err := tr.GetSubscription(ctx, sub.ID)
	if err != nil {
		t.Fatalf("GetSubscription() error = %v", err)
	}
	if got.IsActive {
		t.Error("deleted subscription still active")
	}

	if err := tr.DeleteSubscription(ctx, "missing"); !errors.Is(err, core.ErrNotFound) {
		t.Errorf("DeleteSubscription(missing) error = %v, want ErrNotFound", err)
	}
}

func TestUpdateSubscription(t *testing.T) {
	tr, _, pub := newTestTracker(t)
	ctx := context.Background()
	sub, _ := tr.CreateSubscription(ctx, subInput("Spotify", "119", core.Monthly))

	got, err := tr.UpdateSubscription(ctx, sub.ID, core.SubscriptionPatch{Cost: ptr(dec("139")), Name: ptr(" Spotify Duo ")})
	if err != nil {
		t.Fatalf("UpdateSubscription() error = %v", err)
	}
	if !got.Cost.Equal(dec("139")) || got.Name != "Spotify Duo" {
		t.Errorf("UpdateSubscription() = %+v", got)
	}
	if pub.last().op != "update" {
		t.Errorf("event op = %q, want update", pub.last().op)
	}

	if _, err := tr.UpdateSubscription(ctx, sub.ID, core.SubscriptionPatch{Cost: ptr(dec("-1"))}); !errors.Is(err, core.ErrValidation) {
		t.Errorf("UpdateSubscription(negative cost) error = %v, want ErrValidation", err)
	}
}

func TestCreateExpense(t *testing.T) {
	jan31 := core.NewInstant(time.Date(2025, 1, 31, 10, 0, 0, 0, time.UTC))

	tests := []struct {
		name     string
		in       core.ExpenseInput
		wantFreq *core.Frequency
		wantDue  *time.Time
	}{
		{
			name:     "recurring monthly clamps to month end",
			in:       core.ExpenseInput{Name: "Rent", Amount: dec("25000"), Category: core.ExpenseUtilities, Date: jan31, IsRecurring: true, RecurringFrequency: ptr(core.Monthly)},
			wantFreq: ptr(core.Monthly),
			wantDue:  ptr(time.Date(2025, 2, 28, 10, 0, 0, 0, time.UTC)),
		},
		{
			name:     "recurring weekly",
			in:       core.ExpenseInput{Name: "Cleaner", Amount: dec("500"), Category: core.ExpenseOther, Date: jan31, IsRecurring: true, RecurringFrequency: ptr(core.Weekly)},
			wantFreq: ptr(core.Weekly),
			wantDue:  ptr(time.Date(2025, 2, 7, 10, 0, 0, 0, time.UTC)),
		},
		{
			name: "frequency dropped when not recurring",
			in:   core.ExpenseInput{Name: "Lunch", Amount: dec("300"), Category: core.Food, Date: jan31, RecurringFrequency: ptr(core.Monthly)},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr, _, _ := newTestTracker(t)
			got, err := tr.CreateExpense(context.Background(), tt.in)
			if err != nil {
				t.Fatalf("CreateExpense() error = %v", err)
			}
			if (got.RecurringFrequency == nil) != (tt.wantFreq == nil) ||
				(tt.wantFreq != nil && *got.RecurringFrequency != *tt.wantFreq) {
				t.Errorf("RecurringFrequency = %v, want %v", got.RecurringFrequency, tt.wantFreq)
			}
			if (got.NextDueDate == nil) != (tt.wantDue == nil) ||
				(tt.wantDue != nil && !got.NextDueDate.Equal(*tt.wantDue)) {
				t.Errorf("NextDueDate = %v, want %v", got.NextDueDate, tt.wantDue)
			}
			if got.Tags == nil {
				t.Error("Tags = nil, want empty slice")
			}
		})
	}
}

func TestCreateExpenseRecurringNeedsFrequency(t *testing.T) {
	tr, store, _ := newTestTracker(t)
	_, err := tr.CreateExpense(context.Background(), core.ExpenseInput{
		Name: "Gym", Amount: dec("1000"), Category: core.Healthcare,
		Date: core.NewInstant(now), IsRecurring: true,
	})
	var verr *core.ValidationError
	if !errors.As(err, &verr) || verr.Fields["recurring_frequency"] == "" {
		t.Fatalf("CreateExpense() error = %v, want recurring_frequency problem", err)
	}
	if got, _ := store.FindExpenses(context.Background(), ports.ExpenseFilter{}); len(got) != 0 {
		t.Errorf("invalid expense was stored: %+v", got)
	}
}

func TestUpdateExpenseKeepsNextDueDate(t *testing.T) {
	tr, _, _ := newTestTracker(t)
	ctx := context.Background()
	e, err := tr.CreateExpense(ctx, core.ExpenseInput{
		Name: "Internet", Amount: dec("999"), Category: core.ExpenseUtilities,
		Date: core.NewInstant(now), IsRecurring: true, RecurringFrequency: ptr(core.Monthly),
	})
	if err != nil {
		t.Fatalf("CreateExpense() error = %v", err)
	}
	due := *e.NextDueDate

	later := core.NewInstant(now.AddDate(0, 2, 0))
	got, err := tr.UpdateExpense(ctx, e.ID, core.ExpensePatch{Date: &later, RecurringFrequency: ptr(core.Yearly)})
	if err != nil {
		t.Fatalf("UpdateExpense() error = %v", err)
	}
	if !got.NextDueDate.Equal(due) {
		t.Errorf("NextDueDate = %v, want unchanged %v", got.NextDueDate, due)
	}
	if *got.RecurringFrequency != core.Yearly || !got.Date.Equal(later.Time) {
		t.Errorf("UpdateExpense() = %+v", got)
	}
}

func TestDeleteExpense(t *testing.T) {
	tr, _, pub := newTestTracker(t)
	ctx := context.Background()
	e, _ := tr.CreateExpense(ctx, core.ExpenseInput{Name: "Taxi", Amount: dec("250"), Category: core.Transportation, Date: core.NewInstant(now)})

	if err := tr.DeleteExpense(ctx, e.ID); err != nil {
		t.Fatalf("DeleteExpense() error = %v", err)
	}
	if want := (event{"expense", e.ID, "delete"}); pub.last() != want {
		t.Errorf("event = %+v, want %+v", pub.last(), want)
	}
	if _, err := tr.GetExpense(ctx, e.ID); !errors.Is(err, core.ErrNotFound) {
		t.Errorf("GetExpense() after delete error = %v, want ErrNotFound", err)
	}
}

func TestCreateBudgetReplaces(t *testing.T) {
	tr, _, pub := newTestTracker(t)
	ctx := context.Background()

	mustBudget := func(in core.BudgetInput) core.Budget {
		t.Helper()
		b, err := tr.CreateBudget(ctx, in)
		if err != nil {
			t.Fatalf("CreateBudget(%+v) error = %v", in, err)
		}
		return b
	}

	mustBudget(core.BudgetInput{Type: core.AnnualBudget, Amount: dec("100000"), Category: ptr("food")})
	latest := mustBudget(core.BudgetInput{Type: core.AnnualBudget, Amount: dec("120000")})
	if pub.last().op != "replace" {
		t.Errorf("second annual budget op = %q, want replace", pub.last().op)
	}
	mustBudget(core.BudgetInput{Type: core.CategoryBudget, Amount: dec("5000"), Category: ptr("food")})
	food := mustBudget(core.BudgetInput{Type: core.CategoryBudget, Amount: dec("6000"), Category: ptr(" food ")})
	shop := mustBudget(core.BudgetInput{Type: core.CategoryBudget, Amount: dec("3000"), Category: ptr("shopping")})

	budgets, err := tr.ListBudgets(ctx)
	if err != nil {
		t.Fatalf("ListBudgets() error = %v", err)
	}
	wantIDs := []string{latest.ID, food.ID, shop.ID}
	if len(budgets) != len(wantIDs) {
		t.Fatalf("ListBudgets() = %+v, want ids %v", budgets, wantIDs)
	}
	for i, b := range budgets {
		if b.ID != wantIDs[i] {
			t.Errorf("budget %d id = %s, want %s", i, b.ID, wantIDs[i])
		}
	}
	if budgets[0].Category != nil {
		t.Errorf("annual budget kept category %q", *budgets[0].Category)
	}
	if budgets[0].Period != core.PeriodMonthly {
		t.Errorf("period = %q, want default monthly", budgets[0].Period)
	}
}

func TestCreateBudgetValidation(t *testing.T) {
	tr, _, _ := newTestTracker(t)
	_, err := tr.CreateBudget(context.Background(), core.BudgetInput{Type: core.CategoryBudget, Amount: dec("100")})
	var verr *core.ValidationError
	if !errors.As(err, &verr) || verr.Fields["category"] == "" {
		t.Errorf("CreateBudget() error = %v, want category problem", err)
	}
}

func TestUpdateBudget(t *testing.T) {
	tr, _, _ := newTestTracker(t)
	ctx := context.Background()
	annual, _ := tr.CreateBudget(ctx, core.BudgetInput{Type: core.AnnualBudget, Amount: dec("100000")})
	food, _ := tr.CreateBudget(ctx, core.BudgetInput{Type: core.CategoryBudget, Amount: dec("5000"), Category: ptr("food")})

	if _, err := tr.UpdateBudget(ctx, annual.ID, core.BudgetPatch{Category: ptr("food")}); !errors.Is(err, core.ErrValidation) {
		t.Errorf("UpdateBudget(annual category) error = %v, want ErrValidation", err)
	}

	got, err := tr.UpdateBudget(ctx, food.ID, core.BudgetPatch{Amount: ptr(dec("7000")), Period: ptr("yearly")})
	if err != nil {
		t.Fatalf("UpdateBudget() error = %v", err)
	}
	if !got.Amount.Equal(dec("7000")) || got.Period != "yearly" || got.CategoryName() != "food" {
		t.Errorf("UpdateBudget() = %+v", got)
	}

	if _, err := tr.UpdateBudget(ctx, food.ID, core.BudgetPatch{Category: ptr("  ")}); !errors.Is(err, core.ErrValidation) {
		t.Errorf("UpdateBudget(blank category) error = %v, want ErrValidation", err)
	}

	if _, err := tr.UpdateBudget(ctx, "missing", core.BudgetPatch{Category: ptr("food")}); !errors.Is(err, core.ErrNotFound) {
		t.Errorf("UpdateBudget(missing) error = %v, want ErrNotFound", err)
	}
}

func TestDashboard(t *testing.T) {
	tr, _, _ := newTestTracker(t)
	ctx := context.Background()
	tr.CreateSubscription(ctx, subInput("Netflix", "649", core.Monthly))
	tr.CreateExpense(ctx, core.ExpenseInput{Name: "Groceries", Amount: dec("500"), Category: core.Food, Date: core.NewInstant(now)})

	stats, err := tr.Dashboard(ctx)
	if err != nil {
		t.Fatalf("Dashboard() error = %v", err)
	}
	checks := []struct {
		name string
		got  decimal.Decimal
		want string
	}{
		{"subscription_spending", stats.SubscriptionSpending, "649"},
		{"expense_spending", stats.ExpenseSpending, "500"},
		{"total_monthly_spending", stats.TotalMonthlySpending, "1149"},
		{"yearly_projection", stats.YearlyProjection, "13788"},
	}
	for _, c := range checks {
		if !c.got.Equal(dec(c.want)) {
			t.Errorf("%s = %s, want %s", c.name, c.got, c.want)
		}
	}
	if len(stats.UpcomingSubscriptions) != 1 {
		t.Errorf("upcoming subscriptions = %d, want 1", len(stats.UpcomingSubscriptions))
	}
}

func TestDashboardBudgetAlerts(t *testing.T) {
	tr, _, _ := newTestTracker(t)
	ctx := context.Background()
	tr.CreateBudget(ctx, core.BudgetInput{Type: core.CategoryBudget, Amount: dec("400"), Category: ptr("food")})
	tr.CreateExpense(ctx, core.ExpenseInput{Name: "Groceries", Amount: dec("500"), Category: core.Food, Date: core.NewInstant(now)})

	stats, err := tr.Dashboard(ctx)
	if err != nil {
		t.Fatalf("Dashboard() error = %v", err)
	}
	want := "⚠️ Food budget exceeded! Spent: ₹500.00, Budget: ₹400.00"
	if len(stats.BudgetAlerts) != 1 || stats.BudgetAlerts[0] != want {
		t.Errorf("BudgetAlerts = %q, want [%q]", stats.BudgetAlerts, want)
	}
}

func TestSuggestionsIgnoreRetiredSubscriptions(t *testing.T) {
	tr, _, _ := newTestTracker(t)
	ctx := context.Background()
	for i, cost := range []string{"100", "200", "300", "400"} {
		tr.CreateSubscription(ctx, subInput(fmt.Sprintf("S%d", i), cost, core.Monthly))
	}

	got, err := tr.Suggestions(ctx)
	if err != nil {
		t.Fatalf("Suggestions() error = %v", err)
	}
	want := "💡 Consider canceling 'S3' to save ₹4,800.00 per year"
	if len(got) != 1 || got[0] != want {
		t.Errorf("Suggestions() = %q, want [%q]", got, want)
	}

	tr.DeleteSubscription(ctx, "id-4")
	got, _ = tr.Suggestions(ctx)
	if len(got) != 0 {
		t.Errorf("Suggestions() with three active = %q, want none", got)
	}
}

func TestInsightsCache(t *testing.T) {
	lru := cache.NewLRU[Insights](4, time.Hour)
	tr, store, _ := newTestTracker(t, WithInsightsCache(lru))
	ctx := context.Background()

	tr.Dashboard(ctx)
	tr.Suggestions(ctx)
	if n := store.subscriptionLists.Load(); n != 1 {
		t.Errorf("store reads = %d, want 1 (second served from cache)", n)
	}

	tr.CreateSubscription(ctx, subInput("Prime", "1499", core.Yearly))
	if lru.Size() != 0 {
		t.Errorf("cache size after write = %d, want 0", lru.Size())
	}
	stats, _ := tr.Dashboard(ctx)
	if n := store.subscriptionLists.Load(); n != 2 {
		t.Errorf("store reads = %d, want 2 after invalidation", n)
	}
	if stats.SubscriptionSpending.IsZero() {
		t.Error("dashboard after write served stale figures")
	}
}

func TestDashboardStoreFailure(t *testing.T) {
	lru := cache.NewLRU[Insights](4, time.Hour)
	tr, store, _ := newTestTracker(t, WithInsightsCache(lru))
	store.expenseErr = fmt.Errorf("list expenses: %w", core.ErrStoreUnavailable)

	stats, err := tr.Dashboard(context.Background())
	if !errors.Is(err, core.ErrStoreUnavailable) {
		t.Fatalf("Dashboard() error = %v, want ErrStoreUnavailable", err)
	}
	if !stats.TotalMonthlySpending.IsZero() || stats.CategoryBreakdown != nil {
		t.Errorf("Dashboard() returned partial stats %+v", stats)
	}
	if lru.Size() != 0 {
		t.Error("failed computation populated the cache")
	}
}

func TestPublishFailureDoesNotFailWrite(t *testing.T) {
	tr, _, pub := newTestTracker(t)
	pub.err = errors.New("broker down")

	sub, err := tr.CreateSubscription(context.Background(), subInput("Hulu", "500", core.Monthly))
	if err != nil {
		t.Fatalf("CreateSubscription() error = %v", err)
	}
	if _, err := tr.GetSubscription(context.Background(), sub.ID); err != nil {
		t.Errorf("subscription not stored: %v", err)
	}
}

func TestNoPublisher(t *testing.T) {
	tr, _, _ := newTestTracker(t, WithPublisher(nil))
	if _, err := tr.CreateSubscription(context.Background(), subInput("Hulu", "500", core.Monthly)); err != nil {
		t.Fatalf("CreateSubscription() error = %v", err)
	}
}

func TestExport(t *testing.T) {
	tr, _, _ := newTestTracker(t)
	ctx := context.Background()
	tr.CreateSubscription(ctx, subInput("A", "100", core.Monthly))
	retired, _ := tr.CreateSubscription(ctx, subInput("B", "200", core.Monthly))
	tr.DeleteSubscription(ctx, retired.ID)
	tr.CreateExpense(ctx, core.ExpenseInput{Name: "X", Amount: dec("1"), Category: core.Food, Date: core.NewInstant(now)})
	tr.CreateBudget(ctx, core.BudgetInput{Type: core.AnnualBudget, Amount: dec("1000")})

	out, err := tr.Export(ctx)
	if err != nil {
		t.Fatalf("Export() error = %v", err)
	}
	if out.TotalRecords != 4 || len(out.Subscriptions) != 2 {
		t.Errorf("Export() total = %d subs = %d, want 4 and 2", out.TotalRecords, len(out.Subscriptions))
	}
	if out.TotalRecords != len(out.Subscriptions)+len(out.Expenses)+len(out.Budgets) {
		t.Error("total_records does not match the record counts")
	}
	if !out.ExportDate.Equal(now) {
		t.Errorf("ExportDate = %v, want %v", out.ExportDate, now)
	}
}

func TestCategories(t *testing.T) {
	tr, _, _ := newTestTracker(t)
	c := tr.Categories()
	if len(c.SubscriptionCategories) != 8 || len(c.ExpenseCategories) != 8 {
		t.Errorf("categories = %d/%d, want 8/8", len(c.SubscriptionCategories), len(c.ExpenseCategories))
	}
	if len(c.BillingFrequencies) != 2 || len(c.RecurringFrequencies) != 3 {
		t.Errorf("frequencies = %v/%v", c.BillingFrequencies, c.RecurringFrequencies)
	}
}

func TestBudgetCategoryCase(t *testing.T) {
	tests := []struct {
		name     string
		category string
	}{
		{"lowercase", "food"},
		{"title case", "Food"},
		{"upper case padded", "  FOOD "},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr, _, _ := newTestTracker(t)
			ctx := context.Background()
			tr.CreateExpense(ctx, core.ExpenseInput{Name: "Groceries", Amount: dec("6000"), Category: core.Food, Date: core.NewInstant(now)})

			b, err := tr.CreateBudget(ctx, core.BudgetInput{Type: core.CategoryBudget, Amount: dec("5000"), Category: ptr(tt.category)})
			if err != nil {
				t.Fatalf("CreateBudget(%q) error = %v", tt.category, err)
			}
			if b.CategoryName() != "food" {
				t.Errorf("stored category = %q, want food", b.CategoryName())
			}

			stats, err := tr.Dashboard(ctx)
			if err != nil {
				t.Fatalf("Dashboard() error = %v", err)
			}
			if len(stats.BudgetAlerts) != 1 {
				t.Errorf("BudgetAlerts = %q, want one food alert", stats.BudgetAlerts)
			}
		})
	}
}

func TestUpdateBudgetCategoryReplaces(t *testing.T) {
	tests := []struct {
		name      string
		category  string
		wantOp    string
		wantCount int
	}{
		{"into occupied category", "Food", "replace", 1},
		{"into free category", "education", "update", 2},
		{"same category", "shopping", "update", 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr, _, pub := newTestTracker(t)
			ctx := context.Background()
			food, _ := tr.CreateBudget(ctx, core.BudgetInput{Type: core.CategoryBudget, Amount: dec("5000"), Category: ptr("food")})
			shop, _ := tr.CreateBudget(ctx, core.BudgetInput{Type: core.CategoryBudget, Amount: dec("3000"), Category: ptr("shopping")})

			got, err := tr.UpdateBudget(ctx, shop.ID, core.BudgetPatch{Category: ptr(tt.category)})
			if err != nil {
				t.Fatalf("UpdateBudget() error = %v", err)
			}
			if want := strings.ToLower(tt.category); got.CategoryName() != want {
				t.Errorf("category = %q, want %q", got.CategoryName(), want)
			}
			if pub.last().op != tt.wantOp {
				t.Errorf("op = %q, want %q", pub.last().op, tt.wantOp)
			}

			budgets, _ := tr.ListBudgets(ctx)
			if len(budgets) != tt.wantCount {
				t.Fatalf("ListBudgets() = %+v, want %d budgets", budgets, tt.wantCount)
			}
			seen := map[string]int{}
			for _, b := range budgets {
				seen[b.CategoryName()]++
			}
			for c, n := range seen {
				if n > 1 {
					t.Errorf("category %q has %d budgets, want at most 1", c, n)
				}
			}
			if tt.wantCount == 1 {
				if _, err := tr.store.FindBudget(ctx, food.ID); !errors.Is(err, core.ErrNotFound) {
					t.Errorf("replaced budget lookup error = %v, want ErrNotFound", err)
				}
			}
		})
	}
}

// gatedCache blocks Set until released, so a write can be started while a
// computed result is about to be stored.
type gatedCache struct {
	*cache.LRU[Insights]
	entered chan struct{}
	release chan struct{}
	once    sync.Once
}

func (c *gatedCache) Set(key string, v Insights) {
	c.once.Do(func() {
		close(c.entered)
		<-c.release
	})
	c.LRU.Set(key, v)
}

func TestInsightsCacheWriteDuringFill(t *testing.T) {
	gate := &gatedCache{
		LRU:     cache.NewLRU[Insights](4, time.Hour),
		entered: make(chan struct{}),
		release: make(chan struct{}),
	}
	tr, _, _ := newTestTracker(t, WithInsightsCache(gate))
	ctx := context.Background()

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		tr.Dashboard(ctx)
	}()
	<-gate.entered
	go func() {
		defer wg.Done()
		tr.CreateSubscription(ctx, subInput("Prime", "1499", core.Yearly))
	}()
	time.Sleep(20 * time.Millisecond)
	close(gate.release)
	wg.Wait()

	stats, err := tr.Dashboard(ctx)
	if err != nil {
		t.Fatalf("Dashboard() error = %v", err)
	}
	if stats.SubscriptionSpending.IsZero() {
		t.Error("dashboard after write served insights computed before it")
	}
}
