package workflow

// CanApprove reports whether a user holds the authority to act at a
// stage. Advisory to the host: the engine never enforces this itself,
// the API layer converts a false result into a rejected action.
//
// Authority and suggestion are separate concerns — this function is
// intentionally independent of the Advisor.
func CanApprove(user RoleCapabilities, stage Stage, s Snapshot) bool {
	switch stage {
	case StagePendingHead, StagePendingParentHead:
		return user.IsHead
	case StagePendingAdmin:
		return user.IsAdmin
	case StagePendingComptroller:
		return user.IsComptroller
	case StagePendingHR:
		return user.IsHR
	case StagePendingExec:
		if !user.IsExecutive {
			return false
		}
		if s.ExecLevel == RoutePresident {
			return user.ExecType == ExecPresident
		}
		// VP-level requests accept any executive, VP or President.
		return true
	default:
		return false
	}
}
