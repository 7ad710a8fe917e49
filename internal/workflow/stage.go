package workflow

import "fmt"

// Stage is one step in the approval pipeline. A request moves forward
// through the pending chain until approved, or drops into a terminal
// state via rejection/cancellation. Draft is reachable only through the
// explicit return-to-requester action.
type Stage string

const (
	StageDraft              Stage = "draft"
	StagePendingHead        Stage = "pending_head"
	StagePendingParentHead  Stage = "pending_parent_head"
	StagePendingAdmin       Stage = "pending_admin"
	StagePendingComptroller Stage = "pending_comptroller"
	StagePendingHR          Stage = "pending_hr"
	StagePendingExec        Stage = "pending_exec"
	StageApproved           Stage = "approved"
	StageRejected           Stage = "rejected"
	StageCancelled          Stage = "cancelled"
)

// approvalOrder is the canonical forward chain walked by the sequencer.
// The parent-head stage is a side branch handled at transition time and
// deliberately not part of this chain.
var approvalOrder = []Stage{
	StagePendingHead,
	StagePendingAdmin,
	StagePendingComptroller,
	StagePendingHR,
	StagePendingExec,
	StageApproved,
}

func ParseStage(s string) (Stage, error) {
	switch Stage(s) {
	case StageDraft, StagePendingHead, StagePendingParentHead, StagePendingAdmin,
		StagePendingComptroller, StagePendingHR, StagePendingExec,
		StageApproved, StageRejected, StageCancelled:
		return Stage(s), nil
	default:
		return "", fmt.Errorf("unknown stage: %s", s)
	}
}

var pendingStages = map[Stage]bool{
	StagePendingHead:        true,
	StagePendingParentHead:  true,
	StagePendingAdmin:       true,
	StagePendingComptroller: true,
	StagePendingHR:          true,
	StagePendingExec:        true,
}

var terminalStages = map[Stage]bool{
	StageApproved:  true,
	StageRejected:  true,
	StageCancelled: true,
}

// IsPending reports whether a request at this stage is still waiting on
// an approver.
func (s Stage) IsPending() bool { return pendingStages[s] }

// IsTerminal reports whether the stage ends the request lifecycle.
func (s Stage) IsTerminal() bool { return terminalStages[s] }

func (s Stage) String() string { return string(s) }

// Before reports whether s comes strictly earlier than other in the
// canonical chain. Stages outside the chain are never before anything.
func (s Stage) Before(other Stage) bool {
	si, oi := orderIndex(s), orderIndex(other)
	if si < 0 || oi < 0 {
		return false
	}
	return si < oi
}

func orderIndex(s Stage) int {
	for i, st := range approvalOrder {
		if st == s {
			return i
		}
	}
	return -1
}

var stageLabels = map[Stage]string{
	StageDraft:              "Draft",
	StagePendingHead:        "Department Head Approval",
	StagePendingParentHead:  "Parent Department Head Approval",
	StagePendingAdmin:       "Admin Processing",
	StagePendingComptroller: "Comptroller Review",
	StagePendingHR:          "HR Review",
	StagePendingExec:        "Executive Approval",
	StageApproved:           "Approved",
	StageRejected:           "Rejected",
	StageCancelled:          "Cancelled",
}

// Label returns the human-readable stage name shown in dashboards and
// notifications.
func (s Stage) Label() string {
	if l, ok := stageLabels[s]; ok {
		return l
	}
	return string(s)
}
