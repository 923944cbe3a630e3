package core

import "github.com/shopspring/decimal"

// SubscriptionInput is the create payload for a subscription.
type SubscriptionInput struct {
	Name             string               `json:"name" validate:"required,max=200"`
	Cost             decimal.Decimal      `json:"cost" validate:"gt=0"`
	BillingFrequency Frequency            `json:"billing_frequency" validate:"required,oneof=monthly yearly"`
	NextDueDate      Instant              `json:"next_due_date"`
	Category         SubscriptionCategory `json:"category" validate:"required,oneof=streaming software utilities fitness news productivity entertainment other"`
}

// SubscriptionPatch applies only non-nil fields.
type SubscriptionPatch struct {
	Name             *string               `json:"name" validate:"omitempty,min=1,max=200"`
	Cost             *decimal.Decimal      `json:"cost" validate:"omitempty,gt=0"`
	BillingFrequency *Frequency            `json:"billing_frequency" validate:"omitempty,oneof=monthly yearly"`
	NextDueDate      *Instant              `json:"next_due_date"`
	Category         *SubscriptionCategory `json:"category" validate:"omitempty,oneof=streaming software utilities fitness news productivity entertainment other"`
	IsActive         *bool                 `json:"is_active"`
}

// ExpenseInput is the create payload for an expense.
type ExpenseInput struct {
	Name               string          `json:"name" validate:"required,max=200"`
	Amount             decimal.Decimal `json:"amount" validate:"gt=0"`
	Category           ExpenseCategory `json:"category" validate:"required,oneof=food transportation entertainment utilities shopping healthcare education other"`
	Tags               []string        `json:"tags" validate:"omitempty,max=20,dive,max=50"`
	Notes              *string         `json:"notes" validate:"omitempty,max=1000"`
	Date               Instant         `json:"date"`
	IsRecurring        bool            `json:"is_recurring"`
	RecurringFrequency *Frequency      `json:"recurring_frequency" validate:"omitempty,oneof=weekly monthly yearly"`
}

// ExpensePatch applies only non-nil fields. It never touches next_due_date.
type ExpensePatch struct {
	Name               *string          `json:"name" validate:"omitempty,min=1,max=200"`
	Amount             *decimal.Decimal `json:"amount" validate:"omitempty,gt=0"`
	Category           *ExpenseCategory `json:"category" validate:"omitempty,oneof=food transportation entertainment utilities shopping healthcare education other"`
	Tags               *[]string        `json:"tags" validate:"omitempty,max=20,dive,max=50"`
	Notes              *string          `json:"notes" validate:"omitempty,max=1000"`
	Date               *Instant         `json:"date"`
	IsRecurring        *bool            `json:"is_recurring"`
	RecurringFrequency *Frequency       `json:"recurring_frequency" validate:"omitempty,oneof=weekly monthly yearly"`
}

// BudgetInput is the create payload for a budget.
type BudgetInput struct {
	Type     BudgetType      `json:"type" validate:"required,oneof=annual category"`
	Amount   decimal.Decimal `json:"amount" validate:"gt=0"`
	Category *string         `json:"category" validate:"omitempty,max=50"`
	Period   string          `json:"period" validate:"omitempty,max=20"`
}

// BudgetPatch applies only non-nil fields. Type is immutable.
type BudgetPatch struct {
	Amount   *decimal.Decimal `json:"amount" validate:"omitempty,gt=0"`
	Category *string          `json:"category" validate:"omitempty,min=1,max=50"`
	Period   *string          `json:"period" validate:"omitempty,min=1,max=20"`
}
