package request

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"travelink/internal/user"
)

// DailyVehicleLimit caps how many vehicle requests one requester may
// submit per calendar day. Requests without a vehicle need are exempt.
const DailyVehicleLimit = 5

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

// SubmissionInput is the requester-supplied portion of a new request.
type SubmissionInput struct {
	Type            Type             `json:"type"`
	Title           string           `json:"title"`
	Purpose         string           `json:"purpose"`
	Destination     string           `json:"destination"`
	TravelStart     time.Time        `json:"travelStart"`
	TravelEnd       time.Time        `json:"travelEnd"`
	HeadIncluded    bool             `json:"headIncluded"`
	TotalBudget     decimal.Decimal  `json:"totalBudget"`
	ExpenseItems    []ExpenseItemDTO `json:"expenseBreakdown"`
	IsInternational bool             `json:"isInternational"`
	NeedsVehicle    bool             `json:"needsVehicle"`
	Signature       string           `json:"signature"`
}

// ExpenseItemDTO keeps amounts as strings on the wire so no float
// rounding sneaks in before decimal parsing.
type ExpenseItemDTO struct {
	Item        string `json:"item"`
	Amount      string `json:"amount"`
	Description string `json:"description,omitempty"`
}

// ValidateSubmission checks the request-level rules that do not need
// storage access. Budget breakdown and department balance are checked
// separately. Returns the first violation found.
func ValidateSubmission(in SubmissionInput, requester *user.User) error {
	switch in.Type {
	case TypeTravelOrder, TypeSeminar:
	default:
		return ValidationError{Code: "REQUEST_TYPE_INVALID", Message: fmt.Sprintf("unknown request type %q", in.Type)}
	}
	if in.Title == "" {
		return ValidationError{Code: "TITLE_REQUIRED", Message: "title is required"}
	}
	if in.Signature == "" {
		return ValidationError{Code: "SIGNATURE_REQUIRED", Message: "requester signature is required"}
	}
	if in.TravelStart.IsZero() || in.TravelEnd.IsZero() {
		return ValidationError{Code: "TRAVEL_DATES_REQUIRED", Message: "travel start and end dates are required"}
	}
	if in.TravelEnd.Before(in.TravelStart) {
		return ValidationError{Code: "TRAVEL_DATES_INVALID", Message: "travel end date precedes start date"}
	}
	if in.TotalBudget.IsNegative() {
		return ValidationError{Code: "TOTAL_BUDGET_INVALID", Message: "total budget cannot be negative"}
	}

	// Faculty travel rides on the head's authority: a non-head requester
	// must bring the department head along on the trip.
	if !requester.IsHead && !in.HeadIncluded {
		return ValidationError{Code: "HEAD_REQUIRED", Message: "faculty requests must include the department head in the travel party"}
	}

	return nil
}

// CheckVehicleQuota converts today's vehicle-request count into the cap
// violation, if any.
func CheckVehicleQuota(in SubmissionInput, submittedToday int) error {
	if !in.NeedsVehicle {
		return nil
	}
	if submittedToday >= DailyVehicleLimit {
		return ValidationError{
			Code:    "DAILY_VEHICLE_LIMIT",
			Message: fmt.Sprintf("daily vehicle request limit of %d reached", DailyVehicleLimit),
		}
	}
	return nil
}

// CheckDepartmentBalance rejects budgeted requests the department cannot
// cover from its remaining allocation.
func CheckDepartmentBalance(total, remaining decimal.Decimal) error {
	if total.IsZero() {
		return nil
	}
	if total.GreaterThan(remaining) {
		return ValidationError{
			Code:    "BUDGET_INSUFFICIENT",
			Message: fmt.Sprintf("requested %s exceeds remaining department budget %s", total.StringFixed(2), remaining.StringFixed(2)),
		}
	}
	return nil
}
