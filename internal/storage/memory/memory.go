// Package memory is an in-process store for development and tests. It
// honours the same filter, cap and delete semantics as the SQLite store.
package memory

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"subtrack/internal/core"
	applog "subtrack/internal/log"
	"subtrack/internal/ports"
)

var _ ports.Store = (*Store)(nil)

type Store struct {
	mu            sync.RWMutex
	subscriptions []core.Subscription
	expenses      []core.Expense
	budgets       []core.Budget
}

func New() *Store {
	return &Store{}
}

func (s *Store) Ping(context.Context) error { return nil }

// Subscriptions

func (s *Store) InsertSubscription(_ context.Context, sub core.Subscription) (core.Subscription, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if indexOf(s.subscriptions, sub.ID, subID) >= 0 {
		return core.Subscription{}, fmt.Errorf("insert subscription %s: duplicate id", sub.ID)
	}
	s.subscriptions = append(s.subscriptions, sub)
	return sub, nil
}

func (s *Store) FindSubscription(_ context.Context, id string) (core.Subscription, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i := indexOf(s.subscriptions, id, subID)
	if i < 0 {
		return core.Subscription{}, core.NotFound(applog.EntitySubscription, id)
	}
	return s.subscriptions[i], nil
}

func (s *Store) FindSubscriptions(_ context.Context, f ports.SubscriptionFilter) ([]core.Subscription, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]core.Subscription, 0)
	for _, sub := range s.subscriptions {
		if len(out) == ports.FetchLimit {
			break
		}
		if f.Active != nil && sub.IsActive != *f.Active {
			continue
		}
		if f.Category != "" && sub.Category != f.Category {
			continue
		}
		if !contains(sub.Name, f.Search) {
			continue
		}
		out = append(out, sub)
	}
	return out, nil
}

func (s *Store) UpdateSubscription(_ context.Context, id string, p core.SubscriptionPatch) (core.Subscription, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := indexOf(s.subscriptions, id, subID)
	if i < 0 {
		return core.Subscription{}, core.NotFound(applog.EntitySubscription, id)
	}
	sub := &s.subscriptions[i]
	if p.Name != nil {
		sub.Name = *p.Name
	}
	if p.Cost != nil {
		sub.Cost = *p.Cost
	}
	if p.BillingFrequency != nil {
		sub.BillingFrequency = *p.BillingFrequency
	}
	if p.NextDueDate != nil {
		sub.NextDueDate = p.NextDueDate.Time
	}
	if p.Category != nil {
		sub.Category = *p.Category
	}
	if p.IsActive != nil {
		sub.IsActive = *p.IsActive
	}
	return *sub, nil
}

func (s *Store) RetireSubscription(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := indexOf(s.subscriptions, id, subID)
	if i < 0 {
		return core.NotFound(applog.EntitySubscription, id)
	}
	s.subscriptions[i].IsActive = false
	return nil
}

// Expenses

func (s *Store) InsertExpense(_ context.Context, e core.Expense) (core.Expense, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if indexOf(s.expenses, e.ID, expenseID) >= 0 {
		return core.Expense{}, fmt.Errorf("insert expense %s: duplicate id", e.ID)
	}
	e = cloneExpense(e)
	s.expenses = append(s.expenses, e)
	return cloneExpense(e), nil
}

func (s *Store) FindExpense(_ context.Context, id string) (core.Expense, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i := indexOf(s.expenses, id, expenseID)
	if i < 0 {
		return core.Expense{}, core.NotFound(applog.EntityExpense, id)
	}
	return cloneExpense(s.expenses[i]), nil
}

func (s *Store) FindExpenses(_ context.Context, f ports.ExpenseFilter) ([]core.Expense, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]core.Expense, 0)
	for _, e := range s.expenses {
		if len(out) == ports.FetchLimit {
			break
		}
		if f.Category != "" && e.Category != f.Category {
			continue
		}
		if f.RecurringOnly && !e.IsRecurring {
			continue
		}
		if f.From != nil && e.Date.Before(*f.From) {
			continue
		}
		if f.To != nil && e.Date.After(*f.To) {
			continue
		}
		if f.Search != "" && !contains(e.Name, f.Search) && (e.Notes == nil || !contains(*e.Notes, f.Search)) {
			continue
		}
		out = append(out, cloneExpense(e))
	}
	return out, nil
}

func (s *Store) UpdateExpense(_ context.Context, id string, p core.ExpensePatch) (core.Expense, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := indexOf(s.expenses, id, expenseID)
	if i < 0 {
		return core.Expense{}, core.NotFound(applog.EntityExpense, id)
	}
	e := &s.expenses[i]
	if p.Name != nil {
		e.Name = *p.Name
	}
	if p.Amount != nil {
		e.Amount = *p.Amount
	}
	if p.Category != nil {
		e.Category = *p.Category
	}
	if p.Tags != nil {
		e.Tags = append([]string{}, (*p.Tags)...)
	}
	if p.Notes != nil {
		n := *p.Notes
		e.Notes = &n
	}
	if p.Date != nil {
		e.Date = p.Date.Time
	}
	if p.IsRecurring != nil {
		e.IsRecurring = *p.IsRecurring
	}
	if p.RecurringFrequency != nil {
		f := *p.RecurringFrequency
		e.RecurringFrequency = &f
	}
	return cloneExpense(*e), nil
}

func (s *Store) PurgeExpense(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := indexOf(s.expenses, id, expenseID)
	if i < 0 {
		return core.NotFound(applog.EntityExpense, id)
	}
	s.expenses = append(s.expenses[:i], s.expenses[i+1:]...)
	return nil
}

// Budgets

func (s *Store) InsertBudget(_ context.Context, b core.Budget) (core.Budget, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if indexOf(s.budgets, b.ID, budgetID) >= 0 {
		return core.Budget{}, fmt.Errorf("insert budget %s: duplicate id", b.ID)
	}
	b = cloneBudget(b)
	s.budgets = append(s.budgets, b)
	return cloneBudget(b), nil
}

func (s *Store) FindBudget(_ context.Context, id string) (core.Budget, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i := indexOf(s.budgets, id, budgetID)
	if i < 0 {
		return core.Budget{}, core.NotFound(applog.EntityBudget, id)
	}
	return cloneBudget(s.budgets[i]), nil
}

func (s *Store) FindBudgets(_ context.Context, f ports.BudgetFilter) ([]core.Budget, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]core.Budget, 0)
	for _, b := range s.budgets {
		if len(out) == ports.FetchLimit {
			break
		}
		if budgetMatches(b, f) {
			out = append(out, cloneBudget(b))
		}
	}
	return out, nil
}

func (s *Store) UpdateBudget(_ context.Context, id string, p core.BudgetPatch) (core.Budget, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := indexOf(s.budgets, id, budgetID)
	if i < 0 {
		return core.Budget{}, core.NotFound(applog.EntityBudget, id)
	}
	b := &s.budgets[i]
	if p.Amount != nil {
		b.Amount = *p.Amount
	}
	if p.Category != nil {
		c := *p.Category
		b.Category = &c
	}
	if p.Period != nil {
		b.Period = *p.Period
	}
	return cloneBudget(*b), nil
}

func (s *Store) PurgeBudget(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := indexOf(s.budgets, id, budgetID)
	if i < 0 {
		return core.NotFound(applog.EntityBudget, id)
	}
	s.budgets = append(s.budgets[:i], s.budgets[i+1:]...)
	return nil
}

func (s *Store) PurgeBudgets(_ context.Context, f ports.BudgetFilter) (int, error) {
	if f.Type == "" {
		return 0, fmt.Errorf("purge budgets: type is required: %w", core.ErrValidation)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	kept := s.budgets[:0]
	removed := 0
	for _, b := range s.budgets {
		if budgetMatches(b, f) {
			removed++
			continue
		}
		kept = append(kept, b)
	}
	s.budgets = kept
	return removed, nil
}

func budgetMatches(b core.Budget, f ports.BudgetFilter) bool {
	if f.Type != "" && b.Type != f.Type {
		return false
	}
	if f.Category != nil && (b.Category == nil || *b.Category != *f.Category) {
		return false
	}
	return true
}

func subID(s core.Subscription) string { return s.ID }
func expenseID(e core.Expense) string  { return e.ID }
func budgetID(b core.Budget) string    { return b.ID }

func indexOf[T any](items []T, id string, key func(T) string) int {
	for i, item := range items {
		if key(item) == id {
			return i
		}
	}
	return -1
}

// contains is a case-insensitive substring match; an empty needle matches.
func contains(haystack, needle string) bool {
	needle = strings.TrimSpace(needle)
	if needle == "" {
		return true
	}
	return strings.Contains(strings.ToLower(haystack), strings.ToLower(needle))
}

func cloneExpense(e core.Expense) core.Expense {
	e.Tags = append([]string{}, e.Tags...)
	if e.Notes != nil {
		n := *e.Notes
		e.Notes = &n
	}
	if e.RecurringFrequency != nil {
		f := *e.RecurringFrequency
		e.RecurringFrequency = &f
	}
	if e.NextDueDate != nil {
		t := *e.NextDueDate
		e.NextDueDate = &t
	}
	return e
}

func cloneBudget(b core.Budget) core.Budget {
	if b.Category != nil {
		c := *b.Category
		b.Category = &c
	}
	return b
}
