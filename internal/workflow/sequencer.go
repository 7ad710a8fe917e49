package workflow

// Skip records a stage the sequencer passed over because a qualifying
// signature already existed. Callers persist these for analytics and
// audit trails; the sequencer itself does no I/O.
type Skip struct {
	Stage  Stage
	Reason string
}

// HasExistingSignature reports whether a stage already carries a
// signature and may therefore be skipped when advancing. The admin stage
// always answers false: admin processing (vehicle/driver assignment)
// can never be pre-satisfied, so a request can never move past it
// without an explicit admin action.
func HasExistingSignature(s Snapshot, stage Stage) bool {
	if stage == StagePendingAdmin {
		return false
	}
	a, ok := s.approval(stage)
	if !ok {
		return false
	}
	return a.Signed()
}

// NextStage walks the canonical chain starting just after current and
// returns the first stage without an existing signature. Stages whose
// signatures are already present are skipped. Input outside the five
// pending chain stages degrades to Approved; callers seeing Approved
// come back for a non-terminal input should log it as a defect signal.
func NextStage(s Snapshot, current Stage) Stage {
	next, _ := NextStageWithSkips(s, current)
	return next
}

// NextStageWithSkips is NextStage plus the list of stages skipped on the
// way to the returned stage.
func NextStageWithSkips(s Snapshot, current Stage) (Stage, []Skip) {
	idx := orderIndex(current)
	if idx < 0 || current == StageApproved {
		return StageApproved, nil
	}

	var skips []Skip
	for i := idx + 1; i < len(approvalOrder); i++ {
		candidate := approvalOrder[i]
		if candidate == StageApproved {
			break
		}
		if HasExistingSignature(s, candidate) {
			skips = append(skips, Skip{Stage: candidate, Reason: "signature already present"})
			continue
		}
		return candidate, skips
	}
	return StageApproved, skips
}

// InitialStage is where a freshly submitted request enters the chain.
// A department head's own request pre-satisfies the head stage, so it
// starts at admin; everyone else starts at head approval. Evaluated once
// at creation, mirroring the general skip policy.
func InitialStage(requester RoleCapabilities) Stage {
	if requester.IsHead {
		return StagePendingAdmin
	}
	return StagePendingHead
}
