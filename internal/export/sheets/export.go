package sheets

import (
	"context"
	"fmt"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"subtrack/internal/core"
	applog "subtrack/internal/log"
	"subtrack/internal/services"
)

const dateLayout = "2006-01-02"

// WriteExport clears each tab and rewrites it with a header row followed
// by one row per record. It returns the number of record rows written.
func (c *Client) WriteExport(ctx context.Context, e services.Export) (int, error) {
	start := time.Now()

	tables := []struct {
		tab  string
		rows [][]interface{}
	}{
		{c.tabs.Subscriptions, subscriptionRows(e.Subscriptions)},
		{c.tabs.Expenses, expenseRows(e.Expenses)},
		{c.tabs.Budgets, budgetRows(e.Budgets)},
	}

	g, gctx := errgroup.WithContext(ctx)
	for _, t := range tables {
		g.Go(func() error {
			return c.replaceTab(gctx, t.tab, t.rows)
		})
	}
	if err := g.Wait(); err != nil {
		c.logger.ErrorContext(ctx, "Sheets export failed", applog.FieldError, err)
		return 0, err
	}

	written := 0
	for _, t := range tables {
		written += len(t.rows) - 1
	}
	c.logger.InfoContext(ctx, "Export written to Google Sheets",
		applog.FieldCount, written,
		applog.FieldDuration, time.Since(start).Milliseconds())
	return written, nil
}

func (c *Client) replaceTab(ctx context.Context, tab string, rows [][]interface{}) error {
	if err := c.values.Clear(ctx, c.spreadsheetID, fmt.Sprintf("%s!A:Z", tab)); err != nil {
		return fmt.Errorf("clear %s tab: %w", tab, err)
	}
	if err := c.values.Update(ctx, c.spreadsheetID, fmt.Sprintf("%s!A1", tab), rows); err != nil {
		return fmt.Errorf("write %s tab: %w", tab, err)
	}
	return nil
}

func subscriptionRows(subs []core.Subscription) [][]interface{} {
	rows := make([][]interface{}, 0, len(subs)+1)
	rows = append(rows, []interface{}{"ID", "Name", "Cost", "Billing Frequency", "Next Due Date", "Category", "Active", "Created At"})
	for _, s := range subs {
		rows = append(rows, []interface{}{
			s.ID,
			s.Name,
			s.Cost.InexactFloat64(),
			string(s.BillingFrequency),
			s.NextDueDate.Format(dateLayout),
			string(s.Category),
			s.IsActive,
			s.CreatedAt.UTC().Format(time.RFC3339),
		})
	}
	return rows
}

func expenseRows(expenses []core.Expense) [][]interface{} {
	rows := make([][]interface{}, 0, len(expenses)+1)
	rows = append(rows, []interface{}{"ID", "Name", "Amount", "Category", "Tags", "Notes", "Date", "Recurring", "Frequency", "Next Due Date", "Created At"})
	for _, e := range expenses {
		var notes, freq, nextDue string
		if e.Notes != nil {
			notes = *e.Notes
		}
		if e.RecurringFrequency != nil {
			freq = string(*e.RecurringFrequency)
		}
		if e.NextDueDate != nil {
			nextDue = e.NextDueDate.Format(dateLayout)
		}
		rows = append(rows, []interface{}{
			e.ID,
			e.Name,
			e.Amount.InexactFloat64(),
			string(e.Category),
			strings.Join(e.Tags, ", "),
			notes,
			e.Date.Format(dateLayout),
			e.IsRecurring,
			freq,
			nextDue,
			e.CreatedAt.UTC().Format(time.RFC3339),
		})
	}
	return rows
}

func budgetRows(budgets []core.Budget) [][]interface{} {
	rows := make([][]interface{}, 0, len(budgets)+1)
	rows = append(rows, []interface{}{"ID", "Type", "Amount", "Category", "Period", "Created At"})
	for _, b := range budgets {
		rows = append(rows, []interface{}{
			b.ID,
			string(b.Type),
			b.Amount.InexactFloat64(),
			b.CategoryName(),
			b.Period,
			b.CreatedAt.UTC().Format(time.RFC3339),
		})
	}
	return rows
}
