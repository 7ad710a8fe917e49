package workflow

import (
	"time"

	"github.com/shopspring/decimal"
)

// StageApproval holds one stage's accumulated sign-off. A zero value
// means the stage has not been acted on.
type StageApproval struct {
	Signature  string
	ApprovedBy string
	ApprovedAt time.Time
}

// Signed reports whether a signature is present for the stage.
func (a StageApproval) Signed() bool { return a.Signature != "" }

// Snapshot is the read-only view of a request's approval state that the
// decision functions consume. The caller builds it from storage before
// each decision and applies the returned mutations itself; the engine
// holds no state of its own.
type Snapshot struct {
	RequesterID        string
	RequesterSignature string

	Head        StageApproval
	ParentHead  StageApproval
	Admin       StageApproval
	Comptroller StageApproval
	HR          StageApproval
	Exec        StageApproval

	// ExecLevel is the executive level recorded on the request once the
	// Executive Router has run. Empty is treated as VP-level.
	ExecLevel ExecRoute

	TotalBudget     decimal.Decimal
	HasBudget       bool
	IsInternational bool
}

// approval maps a pending stage to its sign-off record. The admin stage
// is intentionally reported as unsigned regardless of stored state; see
// HasExistingSignature.
func (s Snapshot) approval(stage Stage) (StageApproval, bool) {
	switch stage {
	case StagePendingHead:
		return s.Head, true
	case StagePendingParentHead:
		return s.ParentHead, true
	case StagePendingComptroller:
		return s.Comptroller, true
	case StagePendingHR:
		return s.HR, true
	case StagePendingExec:
		return s.Exec, true
	default:
		return StageApproval{}, false
	}
}
