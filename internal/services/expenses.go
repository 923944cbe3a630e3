package services

import (
	"context"
	"fmt"

	"subtrack/internal/core"
	applog "subtrack/internal/log"
	"subtrack/internal/ports"
)

// CreateExpense validates in and stores it. Recurring expenses get their
// next due date one period after the expense date.
func (t *Tracker) CreateExpense(ctx context.Context, in core.ExpenseInput) (core.Expense, error) {
	in = in.Normalize()
	if err := in.Validate(); err != nil {
		return core.Expense{}, err
	}

	e := core.Expense{
		ID:                 t.newID(),
		Name:               in.Name,
		Amount:             in.Amount,
		Category:           in.Category,
		Tags:               in.Tags,
		Notes:              in.Notes,
		Date:               in.Date.Time,
		IsRecurring:        in.IsRecurring,
		RecurringFrequency: in.RecurringFrequency,
		CreatedAt:          t.clock.Now(),
	}
	if e.IsRecurring {
		next, err := core.NextDueAfter(e.Date, *e.RecurringFrequency)
		if err != nil {
			return core.Expense{}, fmt.Errorf("create expense: %w", err)
		}
		e.NextDueDate = &next
	}

	saved, err := t.store.InsertExpense(ctx, e)
	if err != nil {
		return core.Expense{}, fmt.Errorf("create expense: %w", err)
	}

	t.changed(ctx, applog.EntityExpense, saved.ID, applog.OpCreate)
	return saved, nil
}

func (t *Tracker) ListExpenses(ctx context.Context, f ports.ExpenseFilter) ([]core.Expense, error) {
	exps, err := t.store.FindExpenses(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("list expenses: %w", err)
	}
	return exps, nil
}

func (t *Tracker) GetExpense(ctx context.Context, id string) (core.Expense, error) {
	return t.store.FindExpense(ctx, id)
}

// UpdateExpense applies the patch. The stored next due date is kept even
// when date or frequency change.
func (t *Tracker) UpdateExpense(ctx context.Context, id string, p core.ExpensePatch) (core.Expense, error) {
	p.Name = trimmed(p.Name)
	if err := p.Validate(); err != nil {
		return core.Expense{}, err
	}

	e, err := t.store.UpdateExpense(ctx, id, p)
	if err != nil {
		return core.Expense{}, fmt.Errorf("update expense: %w", err)
	}

	t.changed(ctx, applog.EntityExpense, id, applog.OpUpdate)
	return e, nil
}

func (t *Tracker) DeleteExpense(ctx context.Context, id string) error {
	if err := t.store.PurgeExpense(ctx, id); err != nil {
		return fmt.Errorf("delete expense: %w", err)
	}
	t.changed(ctx, applog.EntityExpense, id, applog.OpDelete)
	return nil
}
