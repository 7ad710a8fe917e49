package workflow

import "testing"

func TestParseStage(t *testing.T) {
	if _, err := ParseStage("pending_hr"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := ParseStage("pending_unknown"); err == nil {
		t.Fatalf("expected error for unknown stage")
	}
}

func TestStageClassification(t *testing.T) {
	if !StagePendingParentHead.IsPending() {
		t.Fatalf("pending_parent_head should classify as pending")
	}
	if StageDraft.IsPending() || StageApproved.IsPending() {
		t.Fatalf("draft/approved must not classify as pending")
	}
	for _, s := range []Stage{StageApproved, StageRejected, StageCancelled} {
		if !s.IsTerminal() {
			t.Fatalf("%s should be terminal", s)
		}
	}
	if StagePendingExec.IsTerminal() {
		t.Fatalf("pending_exec is not terminal")
	}
}

func TestStageBefore(t *testing.T) {
	if !StagePendingHead.Before(StagePendingExec) {
		t.Fatalf("head should be before exec")
	}
	if StagePendingHR.Before(StagePendingAdmin) {
		t.Fatalf("hr is not before admin")
	}
	// Stages outside the canonical chain order nothing.
	if StagePendingParentHead.Before(StagePendingAdmin) || StageDraft.Before(StageApproved) {
		t.Fatalf("off-chain stages must not order")
	}
}
