package workflow

// AdvisorContext carries the flags the Next-Approver Advisor evaluates.
// It is assembled by the caller from the live request and requester
// state; role flags are read at the time the suggestion is requested,
// not frozen at submission.
type AdvisorContext struct {
	Stage Stage

	RequesterIsHead        bool
	RequesterRole          string // "faculty", "director", "dean", "comptroller", ...
	RequesterIsComptroller bool
	RequesterSigned        bool

	HasBudget    bool
	HeadIncluded bool

	HeadApproved        bool
	ParentHeadApproved  bool
	ParentHeadIsVP      bool
	AdminApproved       bool
	ComptrollerApproved bool
	HRApproved          bool

	VPApproved       bool
	SecondVPApproved bool
	BothVPsApproved  bool
}

// ApproverRole is the role class a suggestion points at.
type ApproverRole string

const (
	RoleHead        ApproverRole = "head"
	RoleAdmin       ApproverRole = "admin"
	RoleComptroller ApproverRole = "comptroller"
	RoleHR          ApproverRole = "hr"
	RoleVPApprover  ApproverRole = "vp"
	RolePresident   ApproverRole = "president"
)

// Priority grades a suggestion for the UI. The documented rules only
// produce high; the lower grades exist for future rules.
type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

// Suggestion is a non-binding recommendation of who should act next.
// It carries no authority; CanApprove decides who is actually allowed
// to sign.
type Suggestion struct {
	Role      ApproverRole `json:"role"`
	RoleLabel string       `json:"roleLabel"`
	Reason    string       `json:"reason"`
	Priority  Priority     `json:"priority"`
}

func suggest(role ApproverRole, label, reason string) *Suggestion {
	return &Suggestion{Role: role, RoleLabel: label, Reason: reason, Priority: PriorityHigh}
}

// SuggestNextApprover evaluates the routing guards in order and returns
// the first match, or nil when no rule applies. Nil is a normal outcome
// (nothing to route, or the request is effectively done) — never an
// error. Purely advisory: it reads the context and mutates nothing.
func SuggestNextApprover(ctx AdvisorContext) *Suggestion {
	switch ctx.Stage {
	case StagePendingHead:
		if ctx.HeadApproved && ctx.RequesterSigned {
			return suggest(RoleAdmin, "Administrator",
				"Request has been signed by requester and approved by head. Next step: Admin processing.")
		}

	case StagePendingParentHead:
		if ctx.ParentHeadApproved && ctx.RequesterSigned && ctx.HeadApproved {
			return suggest(RoleAdmin, "Administrator",
				"Request approved by parent head. Next step: Admin processing.")
		}

	case StagePendingAdmin:
		if !ctx.AdminApproved {
			return nil
		}
		// A comptroller's own request self-satisfies the comptroller
		// stage, so route the hint straight to HR. The sequencer does
		// the actual skip independently.
		if ctx.RequesterIsComptroller || ctx.RequesterRole == "comptroller" {
			return suggest(RoleHR, "HR",
				"Requester is Comptroller (already approved). Next step: HR approval.")
		}
		if ctx.HasBudget {
			return suggest(RoleComptroller, "Comptroller",
				"Request has budget. Next step: Comptroller review for budget verification.")
		}
		return suggest(RoleHR, "HR",
			"Request has no budget. Next step: HR approval.")

	case StagePendingComptroller:
		if ctx.ComptrollerApproved {
			return suggest(RoleHR, "HR",
				"Budget verified by Comptroller. Next step: HR approval.")
		}

	case StagePendingHR:
		if !ctx.HRApproved {
			return nil
		}
		// A VP-equivalent already countersigned upstream: skip the VP.
		if ctx.ParentHeadApproved && ctx.ParentHeadIsVP {
			return suggest(RolePresident, "President",
				"Parent head (VP) already signed. Next step: President approval.")
		}
		if seniorRequester(ctx) {
			return suggest(RolePresident, "President",
				"Head/Director/Dean requester. Next step: President approval (required).")
		}
		if !ctx.RequesterIsHead && ctx.HeadIncluded {
			return suggest(RoleVPApprover, "Vice President",
				"Faculty request with head included. Next step: VP approval (final).")
		}
		return suggest(RoleVPApprover, "Vice President", "Next step: VP approval.")

	case StagePendingExec:
		if ctx.BothVPsApproved {
			return suggest(RolePresident, "President",
				"Both VPs approved. Next step: President approval (final).")
		}
		if ctx.VPApproved && !ctx.SecondVPApproved {
			if seniorRequester(ctx) {
				return suggest(RolePresident, "President",
					"Head/Director/Dean requester. Next step: President approval.")
			}
			// Faculty with a head in the chain is terminal after the
			// first VP — nothing further to route.
			if ctx.HeadIncluded && !ctx.RequesterIsHead {
				return nil
			}
			return suggest(RolePresident, "President",
				"First VP approved. Next step: President approval.")
		}
	}

	return nil
}

func seniorRequester(ctx AdvisorContext) bool {
	return ctx.RequesterIsHead || ctx.RequesterRole == "director" || ctx.RequesterRole == "dean"
}
