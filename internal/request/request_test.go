package request

import (
	"testing"
	"time"

	"travelink/internal/user"
	"travelink/internal/workflow"
)

func TestSnapshotReflectsApprovals(t *testing.T) {
	at := time.Date(2026, 8, 1, 9, 0, 0, 0, time.UTC)
	r := &Request{
		RequesterID:        "u1",
		RequesterSignature: "sig-u1",
		Head:               Approval{Signature: "sig-head", ApprovedBy: "h1", ApprovedAt: &at},
	}

	s := r.Snapshot()
	if !s.Head.Signed() {
		t.Fatalf("head approval should be signed in snapshot")
	}
	if s.Admin.Signed() {
		t.Fatalf("admin approval should be empty")
	}
	if s.RequesterSignature != "sig-u1" {
		t.Fatalf("requester signature not carried: %q", s.RequesterSignature)
	}
}

func TestApplyPatchBackfillsStages(t *testing.T) {
	now := time.Date(2026, 8, 1, 9, 0, 0, 0, time.UTC)
	caps := workflow.RoleCapabilities{IsHead: true, IsHR: true}
	patch := workflow.ApplyDualSignature(caps, "u1", "sig-u1", now)

	r := &Request{RequesterID: "u1", RequesterSignature: patch.RequesterSignature}
	applyPatch(r, patch)

	if r.Head.ApprovedAt == nil || r.Head.ApprovedBy != "u1" {
		t.Fatalf("head stage not back-filled: %+v", r.Head)
	}
	if r.HR.ApprovedAt == nil {
		t.Fatalf("hr stage not back-filled: %+v", r.HR)
	}
	if r.Comptroller.ApprovedAt != nil || r.Exec.ApprovedAt != nil {
		t.Fatalf("unheld roles must stay empty")
	}
}

func TestAdvisorContextAssembly(t *testing.T) {
	at := time.Now().UTC()
	r := &Request{
		Stage:              workflow.StagePendingComptroller,
		HasBudget:          true,
		HeadIncluded:       true,
		RequesterSignature: "sig",
		Head:               Approval{Signature: "s", ApprovedBy: "h1", ApprovedAt: &at},
		Admin:              Approval{Signature: "s", ApprovedBy: "a1", ApprovedAt: &at},
	}
	requester := &user.User{ID: "u1", Role: "faculty", IsComptroller: true}

	ctx := r.AdvisorContext(requester)
	if ctx.Stage != workflow.StagePendingComptroller {
		t.Fatalf("stage not carried")
	}
	if !ctx.HeadApproved || !ctx.AdminApproved || ctx.ComptrollerApproved {
		t.Fatalf("approval flags wrong: %+v", ctx)
	}
	if !ctx.RequesterIsComptroller {
		t.Fatalf("requester role flags must come from the live user record")
	}
}

func TestSetApprovalRoutesToStageSlot(t *testing.T) {
	now := time.Now().UTC()
	r := &Request{}
	a := Approval{Signature: "s", ApprovedBy: "x", ApprovedAt: &now}

	setApproval(r, workflow.StagePendingParentHead, a)
	if r.ParentHead.ApprovedBy != "x" {
		t.Fatalf("parent head slot not set")
	}
	setApproval(r, workflow.StagePendingExec, a)
	if r.Exec.ApprovedBy != "x" {
		t.Fatalf("exec slot not set")
	}
	if r.Head.ApprovedAt != nil {
		t.Fatalf("unrelated slots must stay empty")
	}
}
