package core

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	// Report fields by their JSON names.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	// Compare decimals numerically so gt/lt tags apply to money fields.
	v.RegisterCustomTypeFunc(func(field reflect.Value) any {
		if d, ok := field.Interface().(decimal.Decimal); ok {
			f, _ := d.Float64()
			return f
		}
		return nil
	}, decimal.Decimal{})

	return v
}

// Validate checks field rules and the create-time cross-field rules.
func (in SubscriptionInput) Validate() error {
	verr := structErrors(in)
	if in.NextDueDate.IsZero() {
		verr.Add("next_due_date", "is required")
	}
	return verr.OrNil()
}

func (p SubscriptionPatch) Validate() error {
	return structErrors(p).OrNil()
}

// Validate requires a frequency for recurring expenses.
func (in ExpenseInput) Validate() error {
	verr := structErrors(in)
	if in.Date.IsZero() {
		verr.Add("date", "is required")
	}
	if in.IsRecurring && in.RecurringFrequency == nil {
		verr.Add("recurring_frequency", "is required when is_recurring is true")
	}
	return verr.OrNil()
}

func (p ExpensePatch) Validate() error {
	return structErrors(p).OrNil()
}

// Validate requires a category for category budgets.
func (in BudgetInput) Validate() error {
	verr := structErrors(in)
	if in.Type == CategoryBudget && (in.Category == nil || strings.TrimSpace(*in.Category) == "") {
		verr.Add("category", "is required for category budgets")
	}
	return verr.OrNil()
}

func (p BudgetPatch) Validate() error {
	return structErrors(p).OrNil()
}

// Normalize trims text and clears the frequency of non-recurring expenses.
func (in ExpenseInput) Normalize() ExpenseInput {
	in.Name = strings.TrimSpace(in.Name)
	if !in.IsRecurring {
		in.RecurringFrequency = nil
	}
	tags := make([]string, 0, len(in.Tags))
	for _, t := range in.Tags {
		if t = strings.TrimSpace(t); t != "" {
			tags = append(tags, t)
		}
	}
	in.Tags = tags
	return in
}

func (in SubscriptionInput) Normalize() SubscriptionInput {
	in.Name = strings.TrimSpace(in.Name)
	return in
}

// Normalize defaults the period, lowercases the category and drops it for
// annual budgets. Categories must match the keys of the dashboard breakdown.
func (in BudgetInput) Normalize() BudgetInput {
	if strings.TrimSpace(in.Period) == "" {
		in.Period = PeriodMonthly
	}
	if in.Type == AnnualBudget {
		in.Category = nil
	} else {
		in.Category = NormalizeCategory(in.Category)
	}
	return in
}

// NormalizeCategory trims and lowercases a budget category. nil stays nil.
func NormalizeCategory(c *string) *string {
	if c == nil {
		return nil
	}
	v := strings.ToLower(strings.TrimSpace(*c))
	return &v
}

func structErrors(s any) *ValidationError {
	verr := &ValidationError{}
	err := validate.Struct(s)
	if err == nil {
		return verr
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		verr.Add("_", err.Error())
		return verr
	}
	for _, fe := range fieldErrs {
		verr.Add(fieldPath(fe), describe(fe))
	}
	return verr
}

// fieldPath drops the struct name prefix from the namespace, e.g.
// "ExpenseInput.tags[2]" -> "tags[2]".
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.Index(ns, "."); i >= 0 {
		return ns[i+1:]
	}
	return fe.Field()
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "gt":
		return fmt.Sprintf("must be greater than %s", fe.Param())
	case "oneof":
		return fmt.Sprintf("must be one of: %s", strings.ReplaceAll(fe.Param(), " ", ", "))
	case "max":
		return fmt.Sprintf("must be at most %s", fe.Param())
	case "min":
		return fmt.Sprintf("must be at least %s", fe.Param())
	default:
		return fmt.Sprintf("failed %s", fe.Tag())
	}
}
