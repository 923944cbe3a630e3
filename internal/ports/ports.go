// Package ports declares the store and clock capabilities the tracker
// depends on. Implementations live in internal/storage and
// internal/storage/memory.
package ports

import (
	"context"
	"time"

	"subtrack/internal/core"
)

// FetchLimit caps every FindMany call. Larger tables are silently truncated.
const FetchLimit = 1000

// SubscriptionFilter narrows FindSubscriptions. Zero values match all.
type SubscriptionFilter struct {
	Active   *bool
	Category core.SubscriptionCategory
	// Search is a case-insensitive substring of the name.
	Search string
}

// ExpenseFilter narrows FindExpenses. From and To are inclusive.
type ExpenseFilter struct {
	Category      core.ExpenseCategory
	RecurringOnly bool
	From          *time.Time
	To            *time.Time
	// Search is a case-insensitive substring of the name or notes.
	Search string
}

// BudgetFilter narrows FindBudgets.
type BudgetFilter struct {
	Type     core.BudgetType
	Category *string
}

// SubscriptionStore persists subscriptions. Deletion is a retire: the
// record stays with is_active=false.
type SubscriptionStore interface {
	InsertSubscription(ctx context.Context, s core.Subscription) (core.Subscription, error)
	FindSubscription(ctx context.Context, id string) (core.Subscription, error)
	FindSubscriptions(ctx context.Context, f SubscriptionFilter) ([]core.Subscription, error)
	UpdateSubscription(ctx context.Context, id string, p core.SubscriptionPatch) (core.Subscription, error)
	RetireSubscription(ctx context.Context, id string) error
}

// ExpenseStore persists expenses. Deletion is a purge.
type ExpenseStore interface {
	InsertExpense(ctx context.Context, e core.Expense) (core.Expense, error)
	FindExpense(ctx context.Context, id string) (core.Expense, error)
	FindExpenses(ctx context.Context, f ExpenseFilter) ([]core.Expense, error)
	UpdateExpense(ctx context.Context, id string, p core.ExpensePatch) (core.Expense, error)
	PurgeExpense(ctx context.Context, id string) error
}

// BudgetStore persists budgets. Deletion is a purge.
type BudgetStore interface {
	InsertBudget(ctx context.Context, b core.Budget) (core.Budget, error)
	FindBudget(ctx context.Context, id string) (core.Budget, error)
	FindBudgets(ctx context.Context, f BudgetFilter) ([]core.Budget, error)
	UpdateBudget(ctx context.Context, id string, p core.BudgetPatch) (core.Budget, error)
	PurgeBudget(ctx context.Context, id string) error
	// PurgeBudgets deletes every budget matching f and returns the count.
	PurgeBudgets(ctx context.Context, f BudgetFilter) (int, error)
}

// Store bundles the three record stores.
type Store interface {
	SubscriptionStore
	ExpenseStore
	BudgetStore
	Ping(ctx context.Context) error
}

// Clock provides the current instant.
type Clock interface {
	Now() time.Time
}

// ClockFunc adapts a function to Clock.
type ClockFunc func() time.Time

func (f ClockFunc) Now() time.Time { return f() }

// SystemClock reads the wall clock in the local zone.
var SystemClock Clock = ClockFunc(time.Now)

// FixedClock always returns t.
func FixedClock(t time.Time) Clock {
	return ClockFunc(func() time.Time { return t })
}

// Bool returns a pointer to b, for filters.
func Bool(b bool) *bool { return &b }
