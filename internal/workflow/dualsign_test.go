package workflow

import (
	"reflect"
	"testing"
	"time"
)

func TestApplyDualSignature_HeadAndHR(t *testing.T) {
	now := time.Date(2026, 3, 1, 8, 30, 0, 0, time.UTC)
	roles := RoleCapabilities{IsHead: true, IsHR: true}

	patch := ApplyDualSignature(roles, "u-7", "sig", now)

	if patch.RequesterSignature != "sig" {
		t.Fatalf("requester signature not set")
	}
	if patch.Head == nil || patch.HR == nil {
		t.Fatalf("expected head and hr back-fill, got %+v", patch)
	}
	if patch.Comptroller != nil || patch.Exec != nil {
		t.Fatalf("unexpected back-fill for roles not held")
	}
	if patch.Head.ApprovedBy != "u-7" || !patch.Head.ApprovedAt.Equal(now) {
		t.Fatalf("head back-fill wrong: %+v", patch.Head)
	}

	// Applying the patch must make the sequencer honor both skips:
	// submission lands at admin, and after admin the walk jumps HR.
	snap := patch.Apply(Snapshot{RequesterID: "u-7"})
	if !HasExistingSignature(snap, StagePendingHead) {
		t.Fatalf("head stage should be pre-satisfied")
	}
	if got := InitialStage(roles); got != StagePendingAdmin {
		t.Fatalf("expected submission at pending_admin, got %s", got)
	}
	if got := NextStage(snap, StagePendingAdmin); got != StagePendingComptroller {
		t.Fatalf("expected pending_comptroller after admin, got %s", got)
	}
	snap.Comptroller = signed("c1")
	if got := NextStage(snap, StagePendingComptroller); got != StagePendingExec {
		t.Fatalf("expected pending_exec (hr skipped), got %s", got)
	}
}

func TestApplyDualSignature_Idempotent(t *testing.T) {
	now := time.Date(2026, 3, 1, 8, 30, 0, 0, time.UTC)
	roles := RoleCapabilities{IsComptroller: true, IsExecutive: true, ExecType: ExecVP}

	a := ApplyDualSignature(roles, "u-9", "sig", now)
	b := ApplyDualSignature(roles, "u-9", "sig", now)
	if !reflect.DeepEqual(a, b) {
		t.Fatalf("patches differ:\n%+v\n%+v", a, b)
	}
}

func TestApplyDualSignature_NoRoles(t *testing.T) {
	patch := ApplyDualSignature(RoleCapabilities{}, "u-1", "sig", time.Now())
	if patch.Head != nil || patch.Comptroller != nil || patch.HR != nil || patch.Exec != nil {
		t.Fatalf("plain faculty must only get requester signature, got %+v", patch)
	}
}
