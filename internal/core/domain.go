package core

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	Weekly  Frequency = "weekly"
	Monthly Frequency = "monthly"
	Yearly  Frequency = "yearly"
)

const (
	AnnualBudget   BudgetType = "annual"
	CategoryBudget BudgetType = "category"
)

// Budget periods. Period is free-form; anything other than PeriodYearly
// is evaluated against monthly spending.
const (
	PeriodMonthly = "monthly"
	PeriodYearly  = "yearly"
)

const (
	Streaming             SubscriptionCategory = "streaming"
	Software              SubscriptionCategory = "software"
	SubscriptionUtilities SubscriptionCategory = "utilities"
	Fitness               SubscriptionCategory = "fitness"
	News                  SubscriptionCategory = "news"
	Productivity          SubscriptionCategory = "productivity"
	SubscriptionFun       SubscriptionCategory = "entertainment"
	SubscriptionOther     SubscriptionCategory = "other"
)

const (
	Food             ExpenseCategory = "food"
	Transportation   ExpenseCategory = "transportation"
	ExpenseFun       ExpenseCategory = "entertainment"
	ExpenseUtilities ExpenseCategory = "utilities"
	Shopping         ExpenseCategory = "shopping"
	Healthcare       ExpenseCategory = "healthcare"
	Education        ExpenseCategory = "education"
	ExpenseOther     ExpenseCategory = "other"
)

type (
	// Frequency is both a subscription billing frequency (monthly, yearly)
	// and an expense recurrence frequency (weekly, monthly, yearly).
	Frequency            string
	BudgetType           string
	SubscriptionCategory string
	ExpenseCategory      string

	Subscription struct {
		ID               string               `json:"id"`
		Name             string               `json:"name"`
		Cost             decimal.Decimal      `json:"cost"`
		BillingFrequency Frequency            `json:"billing_frequency"`
		NextDueDate      time.Time            `json:"next_due_date"`
		Category         SubscriptionCategory `json:"category"`
		IsActive         bool                 `json:"is_active"`
		CreatedAt        time.Time            `json:"created_at"`
	}

	Expense struct {
		ID                 string          `json:"id"`
		Name               string          `json:"name"`
		Amount             decimal.Decimal `json:"amount"`
		Category           ExpenseCategory `json:"category"`
		Tags               []string        `json:"tags"`
		Notes              *string         `json:"notes"`
		Date               time.Time       `json:"date"`
		IsRecurring        bool            `json:"is_recurring"`
		RecurringFrequency *Frequency      `json:"recurring_frequency"`
		// NextDueDate is set at creation for recurring expenses and is not
		// recomputed when date or frequency change later.
		NextDueDate *time.Time `json:"next_due_date"`
		CreatedAt   time.Time  `json:"created_at"`
	}

	Budget struct {
		ID     string          `json:"id"`
		Type   BudgetType      `json:"type"`
		Amount decimal.Decimal `json:"amount"`
		// Category is loosely typed: a budget naming a category with no
		// spend simply never alerts.
		Category  *string   `json:"category"`
		Period    string    `json:"period"`
		CreatedAt time.Time `json:"created_at"`
	}
)

var (
	BillingFrequencies   = []Frequency{Monthly, Yearly}
	RecurringFrequencies = []Frequency{Weekly, Monthly, Yearly}

	SubscriptionCategories = []SubscriptionCategory{
		Streaming, Software, SubscriptionUtilities, Fitness,
		News, Productivity, SubscriptionFun, SubscriptionOther,
	}
	ExpenseCategories = []ExpenseCategory{
		Food, Transportation, ExpenseFun, ExpenseUtilities,
		Shopping, Healthcare, Education, ExpenseOther,
	}
)

func (f Frequency) String() string { return string(f) }

// IsBilling reports whether f is a valid subscription billing frequency.
func (f Frequency) IsBilling() bool {
	return f == Monthly || f == Yearly
}

// IsRecurring reports whether f is a valid expense recurrence frequency.
func (f Frequency) IsRecurring() bool {
	switch f {
	case Weekly, Monthly, Yearly:
		return true
	default:
		return false
	}
}

func (c SubscriptionCategory) IsValid() bool {
	for _, v := range SubscriptionCategories {
		if v == c {
			return true
		}
	}
	return false
}

func (c ExpenseCategory) IsValid() bool {
	for _, v := range ExpenseCategories {
		if v == c {
			return true
		}
	}
	return false
}

func (t BudgetType) IsValid() bool {
	return t == AnnualBudget || t == CategoryBudget
}

// IsKnownCategory reports whether name is a subscription or expense category.
func IsKnownCategory(name string) bool {
	return SubscriptionCategory(name).IsValid() || ExpenseCategory(name).IsValid()
}

// Yearly reports whether the budget is compared against the yearly projection.
func (b Budget) Yearly() bool {
	return b.Period == PeriodYearly
}

// CategoryName returns the budget category or "" when unset.
func (b Budget) CategoryName() string {
	if b.Category == nil {
		return ""
	}
	return *b.Category
}
