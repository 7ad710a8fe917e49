package workflow

import (
	"reflect"
	"testing"
)

func TestSuggestNextApprover_AfterHeadApproval(t *testing.T) {
	ctx := AdvisorContext{
		Stage:           StagePendingHead,
		HeadApproved:    true,
		RequesterSigned: true,
	}
	sg := SuggestNextApprover(ctx)
	if sg == nil || sg.Role != RoleAdmin || sg.Priority != PriorityHigh {
		t.Fatalf("expected high-priority admin suggestion, got %+v", sg)
	}
}

func TestSuggestNextApprover_HeadApprovedButRequesterUnsigned(t *testing.T) {
	ctx := AdvisorContext{Stage: StagePendingHead, HeadApproved: true}
	if sg := SuggestNextApprover(ctx); sg != nil {
		t.Fatalf("expected no suggestion without requester signature, got %+v", sg)
	}
}

func TestSuggestNextApprover_AfterParentHead(t *testing.T) {
	ctx := AdvisorContext{
		Stage:              StagePendingParentHead,
		ParentHeadApproved: true,
		HeadApproved:       true,
		RequesterSigned:    true,
	}
	sg := SuggestNextApprover(ctx)
	if sg == nil || sg.Role != RoleAdmin {
		t.Fatalf("expected admin suggestion, got %+v", sg)
	}
}

func TestSuggestNextApprover_AdminStage(t *testing.T) {
	base := AdvisorContext{Stage: StagePendingAdmin, AdminApproved: true}

	// Comptroller requester bypasses the comptroller hint even when a
	// budget is present.
	ctx := base
	ctx.RequesterIsComptroller = true
	ctx.HasBudget = true
	if sg := SuggestNextApprover(ctx); sg == nil || sg.Role != RoleHR {
		t.Fatalf("comptroller requester: expected hr, got %+v", sg)
	}

	ctx = base
	ctx.HasBudget = true
	if sg := SuggestNextApprover(ctx); sg == nil || sg.Role != RoleComptroller {
		t.Fatalf("budget request: expected comptroller, got %+v", sg)
	}

	ctx = base
	if sg := SuggestNextApprover(ctx); sg == nil || sg.Role != RoleHR {
		t.Fatalf("no budget: expected hr, got %+v", sg)
	}
}

func TestSuggestNextApprover_AfterComptroller(t *testing.T) {
	ctx := AdvisorContext{Stage: StagePendingComptroller, ComptrollerApproved: true}
	if sg := SuggestNextApprover(ctx); sg == nil || sg.Role != RoleHR {
		t.Fatalf("expected hr, got %+v", sg)
	}
}

func TestSuggestNextApprover_HRStage(t *testing.T) {
	base := AdvisorContext{Stage: StagePendingHR, HRApproved: true}

	// Parent head who signed is a VP: skip the VP step entirely.
	ctx := base
	ctx.ParentHeadApproved = true
	ctx.ParentHeadIsVP = true
	if sg := SuggestNextApprover(ctx); sg == nil || sg.Role != RolePresident {
		t.Fatalf("parent head VP: expected president, got %+v", sg)
	}

	// Dean requester must escalate to the president.
	ctx = base
	ctx.RequesterRole = "dean"
	sg := SuggestNextApprover(ctx)
	if sg == nil || sg.Role != RolePresident || sg.Priority != PriorityHigh {
		t.Fatalf("dean requester: expected high-priority president, got %+v", sg)
	}

	// Faculty with head included terminates at the VP.
	ctx = base
	ctx.HeadIncluded = true
	if sg := SuggestNextApprover(ctx); sg == nil || sg.Role != RoleVPApprover {
		t.Fatalf("faculty+head: expected vp, got %+v", sg)
	}

	// Default path.
	if sg := SuggestNextApprover(base); sg == nil || sg.Role != RoleVPApprover {
		t.Fatalf("default: expected vp, got %+v", sg)
	}
}

func TestSuggestNextApprover_ExecStage(t *testing.T) {
	base := AdvisorContext{Stage: StagePendingExec, VPApproved: true}

	// First VP approved, head included, requester not head: effectively
	// approved, nothing further to route.
	ctx := base
	ctx.HeadIncluded = true
	if sg := SuggestNextApprover(ctx); sg != nil {
		t.Fatalf("expected nil (nothing to route), got %+v", sg)
	}

	ctx = base
	ctx.RequesterIsHead = true
	if sg := SuggestNextApprover(ctx); sg == nil || sg.Role != RolePresident {
		t.Fatalf("head requester: expected president, got %+v", sg)
	}

	if sg := SuggestNextApprover(base); sg == nil || sg.Role != RolePresident {
		t.Fatalf("default after first VP: expected president, got %+v", sg)
	}

	both := AdvisorContext{Stage: StagePendingExec, BothVPsApproved: true}
	if sg := SuggestNextApprover(both); sg == nil || sg.Role != RolePresident {
		t.Fatalf("both VPs: expected president, got %+v", sg)
	}
}

func TestSuggestNextApprover_NoRuleMatched(t *testing.T) {
	if sg := SuggestNextApprover(AdvisorContext{Stage: StagePendingExec}); sg != nil {
		t.Fatalf("expected nil, got %+v", sg)
	}
	if sg := SuggestNextApprover(AdvisorContext{Stage: StageApproved}); sg != nil {
		t.Fatalf("terminal stage: expected nil, got %+v", sg)
	}
}

func TestSuggestNextApprover_Pure(t *testing.T) {
	ctx := AdvisorContext{Stage: StagePendingAdmin, AdminApproved: true, HasBudget: true}
	a := SuggestNextApprover(ctx)
	b := SuggestNextApprover(ctx)
	if !reflect.DeepEqual(a, b) {
		t.Fatalf("identical context produced different suggestions: %+v vs %+v", a, b)
	}
}
