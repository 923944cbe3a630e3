package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"subtrack/internal/core"
	applog "subtrack/internal/log"
	"subtrack/internal/ports"
)

const budgetColumns = "id, type, amount, category, period, created_at"

func (r *SQLiteRepository) InsertBudget(ctx context.Context, b core.Budget) (core.Budget, error) {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO budgets (`+budgetColumns+`) VALUES (?, ?, ?, ?, ?, ?)`,
		b.ID, string(b.Type), b.Amount.String(), nullString(b.Category), b.Period, encodeTime(b.CreatedAt),
	)
	if err != nil {
		return core.Budget{}, unavailable("insert budget", err)
	}

	r.logger.InfoContext(ctx, "Budget saved to SQLite",
		applog.FieldRecordID, b.ID,
		"type", b.Type,
		"category", b.CategoryName(),
		"amount", b.Amount.String())

	return r.FindBudget(ctx, b.ID)
}

func (r *SQLiteRepository) FindBudget(ctx context.Context, id string) (core.Budget, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+budgetColumns+` FROM budgets WHERE id = ?`, id)
	b, err := scanBudget(row)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Budget{}, core.NotFound(applog.EntityBudget, id)
	}
	if err != nil {
		return core.Budget{}, unavailable("find budget", err)
	}
	return b, nil
}

func (r *SQLiteRepository) FindBudgets(ctx context.Context, f ports.BudgetFilter) ([]core.Budget, error) {
	c := budgetConditions(f)
	query := `SELECT ` + budgetColumns + ` FROM budgets` + c.where() + ` ORDER BY rowid LIMIT ?`
	rows, err := r.db.QueryContext(ctx, query, append(c.args, ports.FetchLimit)...)
	if err != nil {
		return nil, unavailable("list budgets", err)
	}
	defer rows.Close()

	out := make([]core.Budget, 0)
	for rows.Next() {
		b, err := scanBudget(rows)
		if err != nil {
			return nil, unavailable("scan budget", err)
		}
		out = append(out, b)
	}
	if err := rows.Err(); err != nil {
		return nil, unavailable("list budgets", err)
	}
	return out, nil
}

func (r *SQLiteRepository) UpdateBudget(ctx context.Context, id string, p core.BudgetPatch) (core.Budget, error) {
	var sets []string
	var args []any
	if p.Amount != nil {
		sets, args = append(sets, "amount = ?"), append(args, p.Amount.String())
	}
	if p.Category != nil {
		sets, args = append(sets, "category = ?"), append(args, *p.Category)
	}
	if p.Period != nil {
		sets, args = append(sets, "period = ?"), append(args, *p.Period)
	}

	if len(sets) > 0 {
		if err := r.update(ctx, "budgets", applog.EntityBudget, id, sets, args); err != nil {
			return core.Budget{}, err
		}
		r.logger.InfoContext(ctx, "Budget updated", applog.FieldRecordID, id, "fields", len(sets))
	}
	return r.FindBudget(ctx, id)
}

func (r *SQLiteRepository) PurgeBudget(ctx context.Context, id string) error {
	if err := r.deleteByID(ctx, "budgets", applog.EntityBudget, id); err != nil {
		return err
	}
	r.logger.InfoContext(ctx, "Budget deleted", applog.FieldRecordID, id)
	return nil
}

// PurgeBudgets deletes every budget matching f. A type is required so an
// empty filter can never wipe the table.
func (r *SQLiteRepository) PurgeBudgets(ctx context.Context, f ports.BudgetFilter) (int, error) {
	if f.Type == "" {
		return 0, fmt.Errorf("purge budgets: type is required: %w", core.ErrValidation)
	}
	c := budgetConditions(f)
	res, err := r.db.ExecContext(ctx, `DELETE FROM budgets`+c.where(), c.args...)
	if err != nil {
		return 0, unavailable("purge budgets", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, unavailable("purge budgets", err)
	}
	if n > 0 {
		r.logger.InfoContext(ctx, "Budgets purged", "type", f.Type, applog.FieldCount, n)
	}
	return int(n), nil
}

func budgetConditions(f ports.BudgetFilter) conditions {
	var c conditions
	if f.Type != "" {
		c.add("type = ?", string(f.Type))
	}
	if f.Category != nil {
		c.add("category = ?", *f.Category)
	}
	return c
}

func scanBudget(row rowScanner) (core.Budget, error) {
	var (
		b                      core.Budget
		typ, amount, createdAt string
		category               sql.NullString
	)
	if err := row.Scan(&b.ID, &typ, &amount, &category, &b.Period, &createdAt); err != nil {
		return core.Budget{}, err
	}

	var err error
	if b.Amount, err = decodeAmount(amount); err != nil {
		return core.Budget{}, err
	}
	if b.CreatedAt, err = decodeTime(createdAt); err != nil {
		return core.Budget{}, err
	}
	if category.Valid {
		c := category.String
		b.Category = &c
	}
	b.Type = core.BudgetType(typ)
	return b, nil
}
