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

const subscriptionColumns = "id, name, cost, billing_frequency, next_due_date, category, is_active, created_at"

func (r *SQLiteRepository) InsertSubscription(ctx context.Context, s core.Subscription) (core.Subscription, error) {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO subscriptions (`+subscriptionColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		s.ID, s.Name, s.Cost.String(), string(s.BillingFrequency), encodeTime(s.NextDueDate),
		string(s.Category), s.IsActive, encodeTime(s.CreatedAt),
	)
	if err != nil {
		return core.Subscription{}, unavailable("insert subscription", err)
	}

	r.logger.InfoContext(ctx, "Subscription saved to SQLite",
		applog.FieldRecordID, s.ID,
		"name", s.Name,
		"cost", s.Cost.String())

	return r.FindSubscription(ctx, s.ID)
}

func (r *SQLiteRepository) FindSubscription(ctx context.Context, id string) (core.Subscription, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+subscriptionColumns+` FROM subscriptions WHERE id = ?`, id)
	s, err := scanSubscription(row)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Subscription{}, core.NotFound(applog.EntitySubscription, id)
	}
	if err != nil {
		return core.Subscription{}, unavailable("find subscription", err)
	}
	return s, nil
}

func (r *SQLiteRepository) FindSubscriptions(ctx context.Context, f ports.SubscriptionFilter) ([]core.Subscription, error) {
	var c conditions
	if f.Active != nil {
		c.add("is_active = ?", *f.Active)
	}
	if f.Category != "" {
		c.add("category = ?", string(f.Category))
	}
	if f.Search != "" {
		c.add(`LOWER(name) LIKE ? ESCAPE '\'`, likePattern(f.Search))
	}

	query := `SELECT ` + subscriptionColumns + ` FROM subscriptions` + c.where() + ` ORDER BY rowid LIMIT ?`
	rows, err := r.db.QueryContext(ctx, query, append(c.args, ports.FetchLimit)...)
	if err != nil {
		return nil, unavailable("list subscriptions", err)
	}
	defer rows.Close()

	out := make([]core.Subscription, 0)
	for rows.Next() {
		s, err := scanSubscription(rows)
		if err != nil {
			return nil, unavailable("scan subscription", err)
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, unavailable("list subscriptions", err)
	}
	return out, nil
}

func (r *SQLiteRepository) UpdateSubscription(ctx context.Context, id string, p core.SubscriptionPatch) (core.Subscription, error) {
	var sets []string
	var args []any
	if p.Name != nil {
		sets, args = append(sets, "name = ?"), append(args, *p.Name)
	}
	if p.Cost != nil {
		sets, args = append(sets, "cost = ?"), append(args, p.Cost.String())
	}
	if p.BillingFrequency != nil {
		sets, args = append(sets, "billing_frequency = ?"), append(args, string(*p.BillingFrequency))
	}
	if p.NextDueDate != nil {
		sets, args = append(sets, "next_due_date = ?"), append(args, encodeTime(p.NextDueDate.Time))
	}
	if p.Category != nil {
		sets, args = append(sets, "category = ?"), append(args, string(*p.Category))
	}
	if p.IsActive != nil {
		sets, args = append(sets, "is_active = ?"), append(args, *p.IsActive)
	}

	if len(sets) > 0 {
		if err := r.update(ctx, "subscriptions", applog.EntitySubscription, id, sets, args); err != nil {
			return core.Subscription{}, err
		}
		r.logger.InfoContext(ctx, "Subscription updated", applog.FieldRecordID, id, "fields", len(sets))
	}
	return r.FindSubscription(ctx, id)
}

// RetireSubscription marks the subscription inactive. The row is kept.
func (r *SQLiteRepository) RetireSubscription(ctx context.Context, id string) error {
	if err := r.update(ctx, "subscriptions", applog.EntitySubscription, id, []string{"is_active = ?"}, []any{false}); err != nil {
		return err
	}
	r.logger.InfoContext(ctx, "Subscription retired", applog.FieldRecordID, id)
	return nil
}

func scanSubscription(row rowScanner) (core.Subscription, error) {
	var (
		s                 core.Subscription
		cost, due, create string
		freq, category    string
	)
	if err := row.Scan(&s.ID, &s.Name, &cost, &freq, &due, &category, &s.IsActive, &create); err != nil {
		return core.Subscription{}, err
	}

	var err error
	if s.Cost, err = decodeAmount(cost); err != nil {
		return core.Subscription{}, err
	}
	if s.NextDueDate, err = decodeTime(due); err != nil {
		return core.Subscription{}, err
	}
	if s.CreatedAt, err = decodeTime(create); err != nil {
		return core.Subscription{}, fmt.Errorf("subscription %s: %w", s.ID, err)
	}
	s.BillingFrequency = core.Frequency(freq)
	s.Category = core.SubscriptionCategory(category)
	return s, nil
}
