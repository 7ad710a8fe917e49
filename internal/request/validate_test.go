package request

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"travelink/internal/user"
)

func validInput() SubmissionInput {
	start := time.Date(2026, 9, 10, 8, 0, 0, 0, time.UTC)
	return SubmissionInput{
		Type:         TypeTravelOrder,
		Title:        "Regional conference",
		TravelStart:  start,
		TravelEnd:    start.Add(48 * time.Hour),
		HeadIncluded: true,
		Signature:    "sig-requester",
	}
}

func TestValidateSubmission_FacultyMustIncludeHead(t *testing.T) {
	faculty := &user.User{ID: "u1", Role: "faculty"}

	in := validInput()
	in.HeadIncluded = false
	err := ValidateSubmission(in, faculty)
	ve, ok := err.(ValidationError)
	if !ok || ve.Code != "HEAD_REQUIRED" {
		t.Fatalf("expected HEAD_REQUIRED, got %v", err)
	}

	// A department head may travel without themselves on the manifest.
	head := &user.User{ID: "u2", Role: "faculty", IsHead: true}
	if err := ValidateSubmission(in, head); err != nil {
		t.Fatalf("head submission should pass, got %v", err)
	}
}

func TestValidateSubmission_DateOrdering(t *testing.T) {
	in := validInput()
	in.TravelEnd = in.TravelStart.Add(-time.Hour)
	err := ValidateSubmission(in, &user.User{ID: "u1", IsHead: true})
	ve, ok := err.(ValidationError)
	if !ok || ve.Code != "TRAVEL_DATES_INVALID" {
		t.Fatalf("expected TRAVEL_DATES_INVALID, got %v", err)
	}
}

func TestValidateSubmission_RequiredFields(t *testing.T) {
	head := &user.User{ID: "u1", IsHead: true}

	in := validInput()
	in.Type = "field_trip"
	if err := ValidateSubmission(in, head); err == nil {
		t.Fatalf("expected error for unknown type")
	}

	in = validInput()
	in.Title = ""
	if err := ValidateSubmission(in, head); err == nil {
		t.Fatalf("expected error for missing title")
	}

	in = validInput()
	in.Signature = ""
	if err := ValidateSubmission(in, head); err == nil {
		t.Fatalf("expected error for missing signature")
	}
}

func TestCheckVehicleQuota(t *testing.T) {
	in := validInput()
	in.NeedsVehicle = true

	if err := CheckVehicleQuota(in, DailyVehicleLimit-1); err != nil {
		t.Fatalf("under the cap should pass, got %v", err)
	}
	err := CheckVehicleQuota(in, DailyVehicleLimit)
	ve, ok := err.(ValidationError)
	if !ok || ve.Code != "DAILY_VEHICLE_LIMIT" {
		t.Fatalf("expected DAILY_VEHICLE_LIMIT, got %v", err)
	}

	// Requests without a vehicle need are exempt from the cap.
	in.NeedsVehicle = false
	if err := CheckVehicleQuota(in, DailyVehicleLimit+10); err != nil {
		t.Fatalf("non-vehicle request should bypass the cap, got %v", err)
	}
}

func TestCheckDepartmentBalance(t *testing.T) {
	remaining := decimal.NewFromInt(10000)

	if err := CheckDepartmentBalance(decimal.NewFromInt(10000), remaining); err != nil {
		t.Fatalf("exactly-remaining should pass, got %v", err)
	}
	err := CheckDepartmentBalance(decimal.RequireFromString("10000.01"), remaining)
	ve, ok := err.(ValidationError)
	if !ok || ve.Code != "BUDGET_INSUFFICIENT" {
		t.Fatalf("expected BUDGET_INSUFFICIENT, got %v", err)
	}
	if err := CheckDepartmentBalance(decimal.Zero, decimal.Zero); err != nil {
		t.Fatalf("zero-budget request needs no balance, got %v", err)
	}
}

func TestParseExpenseItems(t *testing.T) {
	items, err := parseExpenseItems([]ExpenseItemDTO{
		{Item: "fuel", Amount: "1350.50"},
		{Item: "meals", Amount: "200"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(items) != 2 || !items[0].Amount.Equal(decimal.RequireFromString("1350.50")) {
		t.Fatalf("unexpected items: %+v", items)
	}

	if _, err := parseExpenseItems([]ExpenseItemDTO{{Item: "fuel", Amount: "abc"}}); err == nil {
		t.Fatalf("expected error for non-decimal amount")
	}
}
