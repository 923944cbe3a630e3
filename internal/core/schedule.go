package core

import (
	"fmt"
	"time"
)

// DueDateAdvancer computes the next occurrence after an instant for one
// frequency.
type DueDateAdvancer interface {
	Next(from time.Time) time.Time
}

// WeeklyAdvancer adds seven days.
type WeeklyAdvancer struct{}

func (WeeklyAdvancer) Next(from time.Time) time.Time {
	return from.AddDate(0, 0, 7)
}

// MonthlyAdvancer adds one calendar month, clamping to the last day of the
// target month (Jan 31 -> Feb 28/29).
type MonthlyAdvancer struct{}

func (MonthlyAdvancer) Next(from time.Time) time.Time {
	return AddMonths(from, 1)
}

// YearlyAdvancer adds one calendar year (Feb 29 -> Feb 28).
type YearlyAdvancer struct{}

func (YearlyAdvancer) Next(from time.Time) time.Time {
	return AddMonths(from, 12)
}

var advancers = map[Frequency]DueDateAdvancer{
	Weekly:  WeeklyAdvancer{},
	Monthly: MonthlyAdvancer{},
	Yearly:  YearlyAdvancer{},
}

// Advancer returns the advancer registered for f.
func Advancer(f Frequency) (DueDateAdvancer, error) {
	a, ok := advancers[f]
	if !ok {
		return nil, fmt.Errorf("unknown frequency: %s", f)
	}
	return a, nil
}

// NextDueAfter returns the next due instant after from for frequency f.
func NextDueAfter(from time.Time, f Frequency) (time.Time, error) {
	a, err := Advancer(f)
	if err != nil {
		return time.Time{}, err
	}
	return a.Next(from), nil
}

// AddMonths moves t by n calendar months keeping the time of day. Days past
// the end of the target month clamp to its last day.
func AddMonths(t time.Time, n int) time.Time {
	y, m, d := t.Date()
	first := time.Date(y, m+time.Month(n), 1, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
	if last := daysIn(first.Year(), first.Month(), t.Location()); d > last {
		d = last
	}
	return first.AddDate(0, 0, d-1)
}

// MonthStart returns midnight on the first day of t's month in t's location.
func MonthStart(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
}

// YearStart returns midnight on January 1st of t's year in t's location.
func YearStart(t time.Time) time.Time {
	return time.Date(t.Year(), time.January, 1, 0, 0, 0, 0, t.Location())
}

func daysIn(year int, month time.Month, loc *time.Location) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, loc).Day()
}
