package http

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"subtrack/internal/core"
	"subtrack/internal/ports"
)

// parseSubscriptionFilter reads ?search= and ?category= for the
// subscription list.
func parseSubscriptionFilter(r *http.Request) (ports.SubscriptionFilter, error) {
	q := r.URL.Query()
	verr := &core.ValidationError{}

	f := ports.SubscriptionFilter{Search: strings.TrimSpace(q.Get("search"))}
	if c := strings.TrimSpace(q.Get("category")); c != "" {
		f.Category = core.SubscriptionCategory(strings.ToLower(c))
		if !f.Category.IsValid() {
			verr.Add("category", "unknown subscription category")
		}
	}
	return f, verr.OrNil()
}

// parseExpenseFilter reads the expense list query. A date-only end_date
// covers the whole day.
func parseExpenseFilter(r *http.Request) (ports.ExpenseFilter, error) {
	q := r.URL.Query()
	verr := &core.ValidationError{}

	f := ports.ExpenseFilter{Search: strings.TrimSpace(q.Get("search"))}
	if c := strings.TrimSpace(q.Get("category")); c != "" {
		f.Category = core.ExpenseCategory(strings.ToLower(c))
		if !f.Category.IsValid() {
			verr.Add("category", "unknown expense category")
		}
	}
	if v := q.Get("recurring_only"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			verr.Add("recurring_only", "must be a boolean")
		}
		f.RecurringOnly = b
	}
	if v := q.Get("start_date"); v != "" {
		t, err := core.ParseInstant(v)
		if err != nil {
			verr.Add("start_date", err.Error())
		} else {
			f.From = &t
		}
	}
	if v := q.Get("end_date"); v != "" {
		t, err := core.ParseInstant(v)
		if err != nil {
			verr.Add("end_date", err.Error())
		} else {
			if isDateOnly(v) {
				t = t.Add(24*time.Hour - time.Nanosecond)
			}
			f.To = &t
		}
	}
	if f.From != nil && f.To != nil && f.To.Before(*f.From) {
		verr.Add("end_date", "must not be before start_date")
	}
	return f, verr.OrNil()
}

func isDateOnly(s string) bool {
	_, err := time.Parse(time.DateOnly, strings.TrimSpace(s))
	return err == nil
}

// validateBudgetCategory rejects names outside the known category lists.
// The store itself accepts any string.
func validateBudgetCategory(category *string) error {
	if category == nil {
		return nil
	}
	c := strings.TrimSpace(*category)
	if c == "" {
		return nil
	}
	verr := &core.ValidationError{}
	if !core.IsKnownCategory(strings.ToLower(c)) {
		verr.Add("category", "unknown category")
	}
	return verr.OrNil()
}
