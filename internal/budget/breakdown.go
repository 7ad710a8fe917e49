package budget

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// ExpenseItem is one line of a request's expense breakdown.
type ExpenseItem struct {
	Item        string          `json:"item"`
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description,omitempty"`
}

type ValidationError struct {
	Code    string
	Message string
}

func (e ValidationError) Error() string {
	if e.Code == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

type CurrencyScale int32

const DefaultCurrencyScale CurrencyScale = 2

// ValidateBreakdown enforces the expense breakdown contract:
// - Every line amount must be > 0.
// - Line amounts must sum to the declared total (at the configured scale).
// An empty breakdown is valid only when the total is zero (no-budget request).
func ValidateBreakdown(total decimal.Decimal, items []ExpenseItem, scale CurrencyScale) error {
	if scale <= 0 {
		scale = DefaultCurrencyScale
	}

	if len(items) == 0 {
		if total.IsZero() {
			return nil
		}
		return ValidationError{Code: "EXPENSE_BREAKDOWN_EMPTY", Message: "expense breakdown required when total budget > 0"}
	}

	if total.LessThanOrEqual(decimal.Zero) {
		return ValidationError{Code: "TOTAL_BUDGET_INVALID", Message: "total budget must be > 0 when a breakdown is provided"}
	}

	sum := decimal.Zero
	for _, it := range items {
		if it.Amount.LessThanOrEqual(decimal.Zero) {
			return ValidationError{Code: "EXPENSE_AMOUNT_INVALID", Message: "expense amount must be > 0"}
		}
		if it.Item == "" {
			return ValidationError{Code: "EXPENSE_ITEM_MISSING", Message: "expense item name is required"}
		}
		sum = sum.Add(it.Amount.Round(int32(scale)))
	}

	if !sum.Equal(total.Round(int32(scale))) {
		return ValidationError{Code: "EXPENSE_SUM_MISMATCH", Message: "expense amounts do not sum to total budget"}
	}

	return nil
}
