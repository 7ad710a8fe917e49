package notification

import (
	"strings"
	"testing"

	"travelink/internal/request"
	"travelink/internal/workflow"
)

func TestRequesterMessage(t *testing.T) {
	req := &request.Request{RequestNumber: "TR-2026-000042"}

	req.Stage = workflow.StageApproved
	if msg := requesterMessage(req, workflow.StagePendingExec); !strings.Contains(msg, "fully approved") {
		t.Fatalf("unexpected approved message: %q", msg)
	}

	req.Stage = workflow.StageRejected
	req.RejectionStage = string(workflow.StagePendingComptroller)
	req.RejectionReason = "no funds"
	msg := requesterMessage(req, workflow.StagePendingComptroller)
	if !strings.Contains(msg, "Comptroller Review") || !strings.Contains(msg, "no funds") {
		t.Fatalf("rejection message missing stage or reason: %q", msg)
	}

	req.Stage = workflow.StagePendingHead
	if msg := requesterMessage(req, workflow.StageDraft); !strings.Contains(msg, "submitted") {
		t.Fatalf("submission message expected, got %q", msg)
	}
	if msg := requesterMessage(req, workflow.StagePendingAdmin); !strings.Contains(msg, "moved to") {
		t.Fatalf("transition message expected, got %q", msg)
	}
}
