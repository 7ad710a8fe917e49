package workflow

// ExecType distinguishes the two executive levels. Empty means the user
// is not an executive (or the level is unknown).
type ExecType string

const (
	ExecVP        ExecType = "vp"
	ExecPresident ExecType = "president"
)

// RoleCapabilities is the closed set of approval authorities a user may
// hold. Capabilities are independent booleans; one user can be, say,
// both a department head and an HR officer. ExecType is meaningful only
// when IsExecutive is set.
//
// Decision functions take this value explicitly; nothing in the engine
// reads ambient session state.
type RoleCapabilities struct {
	IsHead        bool
	IsAdmin       bool
	IsComptroller bool
	IsHR          bool
	IsExecutive   bool
	ExecType      ExecType
}

// IsPresident reports whether the user is the president-level executive.
func (r RoleCapabilities) IsPresident() bool {
	return r.IsExecutive && r.ExecType == ExecPresident
}

// IsVP reports whether the user is a VP-level executive.
func (r RoleCapabilities) IsVP() bool {
	return r.IsExecutive && r.ExecType == ExecVP
}
