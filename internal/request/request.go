package request

import (
	"time"

	"github.com/shopspring/decimal"

	"travelink/internal/budget"
	"travelink/internal/user"
	"travelink/internal/workflow"
)

type Type string

const (
	TypeTravelOrder Type = "travel_order"
	TypeSeminar     Type = "seminar"
)

// Approval mirrors one stage's stored sign-off columns.
type Approval struct {
	Signature  string     `json:"signature,omitempty"`
	ApprovedBy string     `json:"approvedBy,omitempty"`
	ApprovedAt *time.Time `json:"approvedAt,omitempty"`
	Comments   string     `json:"comments,omitempty"`
}

func (a Approval) toStageApproval() workflow.StageApproval {
	sa := workflow.StageApproval{Signature: a.Signature, ApprovedBy: a.ApprovedBy}
	if a.ApprovedAt != nil {
		sa.ApprovedAt = *a.ApprovedAt
	}
	return sa
}

// Request is a travel order or seminar application moving through the
// approval pipeline.
type Request struct {
	ID            string `json:"id"`
	RequestNumber string `json:"requestNumber"`
	Type          Type   `json:"type"`
	Title         string `json:"title"`
	Purpose       string `json:"purpose,omitempty"`
	Destination   string `json:"destination,omitempty"`

	TravelStart time.Time `json:"travelStart"`
	TravelEnd   time.Time `json:"travelEnd"`

	RequesterID  string `json:"requesterId"`
	DepartmentID string `json:"departmentId"`

	// HeadIncluded: the department head travels with the party. Faculty
	// may not travel without their head.
	HeadIncluded        bool `json:"headIncluded"`
	HasParentDepartment bool `json:"hasParentDepartment"`

	HasBudget        bool                 `json:"hasBudget"`
	TotalBudget      decimal.Decimal      `json:"totalBudget"`
	ExpenseBreakdown []budget.ExpenseItem `json:"expenseBreakdown,omitempty"`
	IsInternational  bool                 `json:"isInternational"`

	NeedsVehicle      bool   `json:"needsVehicle"`
	AssignedVehicleID string `json:"assignedVehicleId,omitempty"`
	AssignedDriverID  string `json:"assignedDriverId,omitempty"`

	Stage     workflow.Stage     `json:"stage"`
	ExecLevel workflow.ExecRoute `json:"execLevel,omitempty"`

	RequesterSignature string `json:"requesterSignature,omitempty"`

	Head        Approval `json:"head"`
	ParentHead  Approval `json:"parentHead"`
	Admin       Approval `json:"admin"`
	Comptroller Approval `json:"comptroller"`
	HR          Approval `json:"hr"`
	Exec        Approval `json:"exec"`

	// Dual-VP acknowledgment path for multi-department requests. Consumed
	// by the advisor only; the sequencer never requires a second VP.
	VPApprovedAt    *time.Time `json:"vpApprovedAt,omitempty"`
	VP2ApprovedAt   *time.Time `json:"vp2ApprovedAt,omitempty"`
	BothVPsApproved bool       `json:"bothVpsApproved"`

	// ParentHeadIsVP is derived at load time from the parent-head
	// approver's live role flags.
	ParentHeadIsVP bool `json:"parentHeadIsVp"`

	RejectionReason string `json:"rejectionReason,omitempty"`
	RejectionStage  string `json:"rejectionStage,omitempty"`

	FinalApprovedAt *time.Time `json:"finalApprovedAt,omitempty"`
	CreatedAt       time.Time  `json:"createdAt"`
	UpdatedAt       time.Time  `json:"updatedAt"`
}

// Snapshot builds the engine's read-only view from the stored record.
func (r *Request) Snapshot() workflow.Snapshot {
	return workflow.Snapshot{
		RequesterID:        r.RequesterID,
		RequesterSignature: r.RequesterSignature,
		Head:               r.Head.toStageApproval(),
		ParentHead:         r.ParentHead.toStageApproval(),
		Admin:              r.Admin.toStageApproval(),
		Comptroller:        r.Comptroller.toStageApproval(),
		HR:                 r.HR.toStageApproval(),
		Exec:               r.Exec.toStageApproval(),
		ExecLevel:          r.ExecLevel,
		TotalBudget:        r.TotalBudget,
		HasBudget:          r.HasBudget,
		IsInternational:    r.IsInternational,
	}
}

// AdvisorContext assembles the advisor's input from the record plus the
// requester's live role flags.
func (r *Request) AdvisorContext(requester *user.User) workflow.AdvisorContext {
	ctx := workflow.AdvisorContext{
		Stage:           r.Stage,
		HasBudget:       r.HasBudget,
		HeadIncluded:    r.HeadIncluded,
		RequesterSigned: r.RequesterSignature != "",

		HeadApproved:        r.Head.ApprovedAt != nil,
		ParentHeadApproved:  r.ParentHead.ApprovedAt != nil,
		ParentHeadIsVP:      r.ParentHeadIsVP,
		AdminApproved:       r.Admin.ApprovedAt != nil,
		ComptrollerApproved: r.Comptroller.ApprovedAt != nil,
		HRApproved:          r.HR.ApprovedAt != nil,

		VPApproved:       r.VPApprovedAt != nil,
		SecondVPApproved: r.VP2ApprovedAt != nil,
		BothVPsApproved:  r.BothVPsApproved,
	}
	if requester != nil {
		ctx.RequesterIsHead = requester.IsHead
		ctx.RequesterRole = requester.Role
		ctx.RequesterIsComptroller = requester.IsComptroller
	}
	return ctx
}
