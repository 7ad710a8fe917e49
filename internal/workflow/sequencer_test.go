package workflow

import (
	"testing"
	"time"
)

func signed(by string) StageApproval {
	return StageApproval{Signature: "sig-" + by, ApprovedBy: by, ApprovedAt: time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)}
}

func TestNextStage_PlainFacultyAfterHeadApproval(t *testing.T) {
	snap := Snapshot{Head: signed("head-1")}

	got := NextStage(snap, StagePendingHead)
	if got != StagePendingAdmin {
		t.Fatalf("expected pending_admin, got %s", got)
	}
}

func TestNextStage_SkipsStagesWithSignatures(t *testing.T) {
	// Head and HR already signed (dual-signature requester), so after
	// admin processing the walk must land on comptroller.
	snap := Snapshot{
		Head: signed("u1"),
		HR:   signed("u1"),
	}

	next, skips := NextStageWithSkips(snap, StagePendingAdmin)
	if next != StagePendingComptroller {
		t.Fatalf("expected pending_comptroller, got %s", next)
	}
	if len(skips) != 0 {
		t.Fatalf("expected no skips before comptroller, got %v", skips)
	}

	// And once the comptroller signs, HR is skipped on the way to exec.
	snap.Comptroller = signed("c1")
	next, skips = NextStageWithSkips(snap, StagePendingComptroller)
	if next != StagePendingExec {
		t.Fatalf("expected pending_exec, got %s", next)
	}
	if len(skips) != 1 || skips[0].Stage != StagePendingHR {
		t.Fatalf("expected hr skip, got %v", skips)
	}
}

func TestNextStage_AdminNeverSkipped(t *testing.T) {
	// Even with an admin signature stored, the admin stage must not be
	// treated as pre-satisfied.
	snap := Snapshot{
		Head:  signed("u1"),
		Admin: signed("a1"),
	}
	if HasExistingSignature(snap, StagePendingAdmin) {
		t.Fatalf("admin stage must never report an existing signature")
	}
	if got := NextStage(snap, StagePendingHead); got != StagePendingAdmin {
		t.Fatalf("expected pending_admin, got %s", got)
	}
}

func TestNextStage_EndOfChainReturnsApproved(t *testing.T) {
	if got := NextStage(Snapshot{}, StagePendingExec); got != StageApproved {
		t.Fatalf("expected approved, got %s", got)
	}
}

func TestNextStage_OutOfDomainInputDegradesToApproved(t *testing.T) {
	for _, st := range []Stage{StageDraft, StageApproved, StageRejected, StageCancelled, StagePendingParentHead, Stage("bogus")} {
		if got := NextStage(Snapshot{}, st); got != StageApproved {
			t.Fatalf("stage %s: expected approved fallback, got %s", st, got)
		}
	}
}

func TestNextStage_MonotonicSkipInvariant(t *testing.T) {
	// For every pending chain stage and a fully signed snapshot, the
	// result is never strictly earlier than the input.
	snap := Snapshot{
		Head:        signed("u1"),
		Comptroller: signed("u1"),
		HR:          signed("u1"),
		Exec:        signed("u1"),
	}
	for _, current := range []Stage{StagePendingHead, StagePendingAdmin, StagePendingComptroller, StagePendingHR, StagePendingExec} {
		got := NextStage(snap, current)
		if got.Before(current) {
			t.Fatalf("from %s: got earlier stage %s", current, got)
		}
	}
}

func TestInitialStage(t *testing.T) {
	if got := InitialStage(RoleCapabilities{IsHead: true}); got != StagePendingAdmin {
		t.Fatalf("head requester: expected pending_admin, got %s", got)
	}
	if got := InitialStage(RoleCapabilities{}); got != StagePendingHead {
		t.Fatalf("faculty requester: expected pending_head, got %s", got)
	}
}
