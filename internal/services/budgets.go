package services

import (
	"context"
	"errors"
	"fmt"

	"subtrack/internal/core"
	applog "subtrack/internal/log"
	"subtrack/internal/ports"
)

// CreateBudget replaces any budget with the same scope: one annual budget,
// and one category budget per category.
func (t *Tracker) CreateBudget(ctx context.Context, in core.BudgetInput) (core.Budget, error) {
	in = in.Normalize()
	if err := in.Validate(); err != nil {
		return core.Budget{}, err
	}

	scope := ports.BudgetFilter{Type: in.Type, Category: in.Category}
	removed, err := t.store.PurgeBudgets(ctx, scope)
	if err != nil {
		return core.Budget{}, fmt.Errorf("replace budget: %w", err)
	}

	b, err := t.store.InsertBudget(ctx, core.Budget{
		ID:        t.newID(),
		Type:      in.Type,
		Amount:    in.Amount,
		Category:  in.Category,
		Period:    in.Period,
		CreatedAt: t.clock.Now(),
	})
	if err != nil {
		return core.Budget{}, fmt.Errorf("create budget: %w", err)
	}

	op := applog.OpCreate
	if removed > 0 {
		op = applog.OpReplace
		t.logger.InfoContext(ctx, "Budget replaced",
			applog.FieldRecordID, b.ID,
			"type", b.Type,
			"category", b.CategoryName(),
			"replaced", removed)
	}
	t.changed(ctx, applog.EntityBudget, b.ID, op)
	return b, nil
}

func (t *Tracker) ListBudgets(ctx context.Context) ([]core.Budget, error) {
	budgets, err := t.store.FindBudgets(ctx, ports.BudgetFilter{})
	if err != nil {
		return nil, fmt.Errorf("list budgets: %w", err)
	}
	return budgets, nil
}

// UpdateBudget applies the patch. Annual budgets cannot be given a
// category. Moving a category budget to another category replaces the
// budget already holding that category.
func (t *Tracker) UpdateBudget(ctx context.Context, id string, p core.BudgetPatch) (core.Budget, error) {
	p.Category = core.NormalizeCategory(p.Category)
	p.Period = trimmed(p.Period)
	if err := p.Validate(); err != nil {
		return core.Budget{}, err
	}

	removed := 0
	if p.Category != nil {
		current, err := t.store.FindBudget(ctx, id)
		if err != nil {
			return core.Budget{}, fmt.Errorf("update budget: %w", err)
		}
		if current.Type == core.AnnualBudget {
			verr := &core.ValidationError{}
			verr.Add("category", "is not allowed for annual budgets")
			return core.Budget{}, verr
		}
		if *p.Category == "" {
			verr := &core.ValidationError{}
			verr.Add("category", "is required for category budgets")
			return core.Budget{}, verr
		}
		if current.CategoryName() != *p.Category {
			if removed, err = t.purgeScope(ctx, id, *p.Category); err != nil {
				return core.Budget{}, fmt.Errorf("update budget: %w", err)
			}
		}
	}

	b, err := t.store.UpdateBudget(ctx, id, p)
	if err != nil {
		return core.Budget{}, fmt.Errorf("update budget: %w", err)
	}

	op := applog.OpUpdate
	if removed > 0 {
		op = applog.OpReplace
		t.logger.InfoContext(ctx, "Budget replaced",
			applog.FieldRecordID, id,
			"category", b.CategoryName(),
			"replaced", removed)
	}
	t.changed(ctx, applog.EntityBudget, id, op)
	return b, nil
}

// purgeScope deletes the category budgets for category other than keep.
func (t *Tracker) purgeScope(ctx context.Context, keep, category string) (int, error) {
	others, err := t.store.FindBudgets(ctx, ports.BudgetFilter{Type: core.CategoryBudget, Category: &category})
	if err != nil {
		return 0, err
	}
	removed := 0
	for _, o := range others {
		if o.ID == keep {
			continue
		}
		if err := t.store.PurgeBudget(ctx, o.ID); err != nil && !errors.Is(err, core.ErrNotFound) {
			return removed, err
		}
		removed++
	}
	return removed, nil
}

func (t *Tracker) DeleteBudget(ctx context.Context, id string) error {
	if err := t.store.PurgeBudget(ctx, id); err != nil {
		return fmt.Errorf("delete budget: %w", err)
	}
	t.changed(ctx, applog.EntityBudget, id, applog.OpDelete)
	return nil
}
