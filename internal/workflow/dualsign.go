package workflow

import "time"

// SignaturePatch describes the signature fields to set when a request is
// submitted. Nil entries are left untouched. The patch performs no I/O;
// the caller persists it and re-runs the sequencer so the back-filled
// signatures are honored as skips.
type SignaturePatch struct {
	RequesterSignature string

	Head        *StageApproval
	Comptroller *StageApproval
	HR          *StageApproval
	Exec        *StageApproval
}

// ApplyDualSignature computes the dual-signature back-fill for a
// requester who already holds approval authority: each capability the
// requester has (head, comptroller, HR, executive) self-satisfies that
// stage in the same submission action. Pure and idempotent — the same
// inputs always produce the same patch.
func ApplyDualSignature(requester RoleCapabilities, requesterID, signature string, now time.Time) SignaturePatch {
	patch := SignaturePatch{RequesterSignature: signature}

	self := func() *StageApproval {
		return &StageApproval{Signature: signature, ApprovedBy: requesterID, ApprovedAt: now}
	}

	if requester.IsHead {
		patch.Head = self()
	}
	if requester.IsComptroller {
		patch.Comptroller = self()
	}
	if requester.IsHR {
		patch.HR = self()
	}
	if requester.IsExecutive {
		patch.Exec = self()
	}

	return patch
}

// Apply returns a copy of the snapshot with the patch's fields set.
func (p SignaturePatch) Apply(s Snapshot) Snapshot {
	s.RequesterSignature = p.RequesterSignature
	if p.Head != nil {
		s.Head = *p.Head
	}
	if p.Comptroller != nil {
		s.Comptroller = *p.Comptroller
	}
	if p.HR != nil {
		s.HR = *p.HR
	}
	if p.Exec != nil {
		s.Exec = *p.Exec
	}
	return s
}
