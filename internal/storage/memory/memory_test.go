package memory

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"subtrack/internal/core"
	"subtrack/internal/ports"
	"subtrack/internal/ports/porttest"
)

func TestStoreContract(t *testing.T) {
	porttest.RunStoreSuite(t, func(*testing.T) ports.Store { return New() })
}

func TestFetchLimit(t *testing.T) {
	s := New()
	ctx := context.Background()
	for i := 0; i < ports.FetchLimit+5; i++ {
		_, err := s.InsertExpense(ctx, core.Expense{
			ID:     time.Unix(int64(i), 0).String(),
			Amount: decimal.NewFromInt(1),
			Date:   time.Unix(int64(i), 0),
		})
		if err != nil {
			t.Fatalf("InsertExpense() error = %v", err)
		}
	}
	got, err := s.FindExpenses(ctx, ports.ExpenseFilter{})
	if err != nil {
		t.Fatalf("FindExpenses() error = %v", err)
	}
	if len(got) != ports.FetchLimit {
		t.Errorf("len(FindExpenses()) = %d, want %d", len(got), ports.FetchLimit)
	}
}

func TestConcurrentWrites(t *testing.T) {
	s := New()
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			s.InsertBudget(ctx, core.Budget{
				ID:     string(rune('A'+i%26)) + time.Duration(i).String(),
				Type:   core.CategoryBudget,
				Amount: decimal.NewFromInt(int64(i + 1)),
			})
			s.FindBudgets(ctx, ports.BudgetFilter{})
		}(i)
	}
	wg.Wait()

	got, _ := s.FindBudgets(ctx, ports.BudgetFilter{})
	if len(got) != 50 {
		t.Errorf("len(FindBudgets()) = %d, want 50", len(got))
	}
}

func TestDuplicateID(t *testing.T) {
	s := New()
	ctx := context.Background()
	sub := core.Subscription{ID: "x", Name: "One"}
	if _, err := s.InsertSubscription(ctx, sub); err != nil {
		t.Fatalf("InsertSubscription() error = %v", err)
	}
	if _, err := s.InsertSubscription(ctx, sub); err == nil {
		t.Error("second InsertSubscription() with same id succeeded")
	}
}
