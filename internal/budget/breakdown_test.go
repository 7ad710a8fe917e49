package budget

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestValidateBreakdown_SumsToTotal(t *testing.T) {
	total := decimal.RequireFromString("4350.00")
	items := []ExpenseItem{
		{Item: "fuel", Amount: decimal.RequireFromString("1350.00")},
		{Item: "meals", Amount: decimal.RequireFromString("1500.00")},
		{Item: "lodging", Amount: decimal.RequireFromString("1500.00")},
	}
	if err := ValidateBreakdown(total, items, DefaultCurrencyScale); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidateBreakdown_SumMismatch(t *testing.T) {
	total := decimal.NewFromInt(1000)
	items := []ExpenseItem{
		{Item: "fuel", Amount: decimal.NewFromInt(400)},
		{Item: "meals", Amount: decimal.NewFromInt(500)},
	}
	err := ValidateBreakdown(total, items, DefaultCurrencyScale)
	ve, ok := err.(ValidationError)
	if !ok || ve.Code != "EXPENSE_SUM_MISMATCH" {
		t.Fatalf("expected EXPENSE_SUM_MISMATCH, got %v", err)
	}
}

func TestValidateBreakdown_NoBudgetRequest(t *testing.T) {
	if err := ValidateBreakdown(decimal.Zero, nil, DefaultCurrencyScale); err != nil {
		t.Fatalf("zero-total request with no breakdown should validate, got %v", err)
	}
	if err := ValidateBreakdown(decimal.NewFromInt(500), nil, DefaultCurrencyScale); err == nil {
		t.Fatalf("expected error for total without breakdown")
	}
}

func TestValidateBreakdown_NonPositiveLine(t *testing.T) {
	items := []ExpenseItem{{Item: "fuel", Amount: decimal.Zero}}
	if err := ValidateBreakdown(decimal.NewFromInt(100), items, DefaultCurrencyScale); err == nil {
		t.Fatalf("expected error for zero line amount")
	}
}
