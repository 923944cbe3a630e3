package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"subtrack/internal/core"
	applog "subtrack/internal/log"
	"subtrack/internal/ports"
)

const expenseColumns = "id, name, amount, category, tags, notes, date, is_recurring, recurring_frequency, next_due_date, created_at"

func (r *SQLiteRepository) InsertExpense(ctx context.Context, e core.Expense) (core.Expense, error) {
	tags, err := encodeTags(e.Tags)
	if err != nil {
		return core.Expense{}, err
	}

	var freq sql.NullString
	if e.RecurringFrequency != nil {
		freq = sql.NullString{String: string(*e.RecurringFrequency), Valid: true}
	}

	_, err = r.db.ExecContext(ctx,
		`INSERT INTO expenses (`+expenseColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.Name, e.Amount.String(), string(e.Category), tags, nullString(e.Notes),
		encodeTime(e.Date), e.IsRecurring, freq, nullTime(e.NextDueDate), encodeTime(e.CreatedAt),
	)
	if err != nil {
		return core.Expense{}, unavailable("insert expense", err)
	}

	r.logger.InfoContext(ctx, "Expense saved to SQLite",
		applog.FieldRecordID, e.ID,
		"name", e.Name,
		"amount", e.Amount.String(),
		"recurring", e.IsRecurring)

	return r.FindExpense(ctx, e.ID)
}

func (r *SQLiteRepository) FindExpense(ctx context.Context, id string) (core.Expense, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+expenseColumns+` FROM expenses WHERE id = ?`, id)
	e, err := scanExpense(row)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Expense{}, core.NotFound(applog.EntityExpense, id)
	}
	if err != nil {
		return core.Expense{}, unavailable("find expense", err)
	}
	return e, nil
}

func (r *SQLiteRepository) FindExpenses(ctx context.Context, f ports.ExpenseFilter) ([]core.Expense, error) {
	var c conditions
	if f.Category != "" {
		c.add("category = ?", string(f.Category))
	}
	if f.RecurringOnly {
		c.add("is_recurring = 1")
	}
	if f.From != nil {
		c.add("date >= ?", encodeTime(*f.From))
	}
	if f.To != nil {
		c.add("date <= ?", encodeTime(*f.To))
	}
	if f.Search != "" {
		pattern := likePattern(f.Search)
		c.add(`(LOWER(name) LIKE ? ESCAPE '\' OR LOWER(COALESCE(notes, '')) LIKE ? ESCAPE '\')`, pattern, pattern)
	}

	query := `SELECT ` + expenseColumns + ` FROM expenses` + c.where() + ` ORDER BY rowid LIMIT ?`
	rows, err := r.db.QueryContext(ctx, query, append(c.args, ports.FetchLimit)...)
	if err != nil {
		return nil, unavailable("list expenses", err)
	}
	defer rows.Close()

	out := make([]core.Expense, 0)
	for rows.Next() {
		e, err := scanExpense(rows)
		if err != nil {
			return nil, unavailable("scan expense", err)
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, unavailable("list expenses", err)
	}
	return out, nil
}

// UpdateExpense applies the patch. next_due_date is left as stored even when
// date or frequency change.
func (r *SQLiteRepository) UpdateExpense(ctx context.Context, id string, p core.ExpensePatch) (core.Expense, error) {
	var sets []string
	var args []any
	if p.Name != nil {
		sets, args = append(sets, "name = ?"), append(args, *p.Name)
	}
	if p.Amount != nil {
		sets, args = append(sets, "amount = ?"), append(args, p.Amount.String())
	}
	if p.Category != nil {
		sets, args = append(sets, "category = ?"), append(args, string(*p.Category))
	}
	if p.Tags != nil {
		tags, err := encodeTags(*p.Tags)
		if err != nil {
			return core.Expense{}, err
		}
		sets, args = append(sets, "tags = ?"), append(args, tags)
	}
	if p.Notes != nil {
		sets, args = append(sets, "notes = ?"), append(args, *p.Notes)
	}
	if p.Date != nil {
		sets, args = append(sets, "date = ?"), append(args, encodeTime(p.Date.Time))
	}
	if p.IsRecurring != nil {
		sets, args = append(sets, "is_recurring = ?"), append(args, *p.IsRecurring)
	}
	if p.RecurringFrequency != nil {
		sets, args = append(sets, "recurring_frequency = ?"), append(args, string(*p.RecurringFrequency))
	}

	if len(sets) > 0 {
		if err := r.update(ctx, "expenses", applog.EntityExpense, id, sets, args); err != nil {
			return core.Expense{}, err
		}
		r.logger.InfoContext(ctx, "Expense updated", applog.FieldRecordID, id, "fields", len(sets))
	}
	return r.FindExpense(ctx, id)
}

func (r *SQLiteRepository) PurgeExpense(ctx context.Context, id string) error {
	if err := r.deleteByID(ctx, "expenses", applog.EntityExpense, id); err != nil {
		return err
	}
	r.logger.InfoContext(ctx, "Expense deleted", applog.FieldRecordID, id)
	return nil
}

func scanExpense(row rowScanner) (core.Expense, error) {
	var (
		e                     core.Expense
		amount, category      string
		tags, date, createdAt string
		notes, freq, nextDue  sql.NullString
	)
	if err := row.Scan(&e.ID, &e.Name, &amount, &category, &tags, &notes, &date,
		&e.IsRecurring, &freq, &nextDue, &createdAt); err != nil {
		return core.Expense{}, err
	}

	var err error
	if e.Amount, err = decodeAmount(amount); err != nil {
		return core.Expense{}, err
	}
	if e.Date, err = decodeTime(date); err != nil {
		return core.Expense{}, err
	}
	if e.CreatedAt, err = decodeTime(createdAt); err != nil {
		return core.Expense{}, err
	}
	if e.NextDueDate, err = decodeNullTime(nextDue); err != nil {
		return core.Expense{}, err
	}
	if err := json.Unmarshal([]byte(tags), &e.Tags); err != nil {
		return core.Expense{}, fmt.Errorf("decode tags of expense %s: %w", e.ID, err)
	}
	if e.Tags == nil {
		e.Tags = []string{}
	}
	if notes.Valid {
		n := notes.String
		e.Notes = &n
	}
	if freq.Valid {
		f := core.Frequency(freq.String)
		e.RecurringFrequency = &f
	}
	e.Category = core.ExpenseCategory(category)
	return e, nil
}

func encodeTags(tags []string) (string, error) {
	if tags == nil {
		tags = []string{}
	}
	b, err := json.Marshal(tags)
	if err != nil {
		return "", fmt.Errorf("encode tags: %w", err)
	}
	return string(b), nil
}
