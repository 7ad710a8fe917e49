package user

import (
	"time"

	"travelink/internal/workflow"
)

// User is a portal account with its approval capability flags. Roles are
// loose booleans in storage; Capabilities() converts them to the closed
// value type the workflow engine consumes.
type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	Name         string    `json:"name"`
	Phone        string    `json:"phone,omitempty"`
	Role         string    `json:"role"` // faculty, director, dean, staff, ...
	RoleLabel    string    `json:"roleLabel,omitempty"`
	DepartmentID string    `json:"departmentId,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`

	IsHead        bool   `json:"isHead"`
	IsAdmin       bool   `json:"isAdmin"`
	IsComptroller bool   `json:"isComptroller"`
	IsHR          bool   `json:"isHr"`
	IsExecutive   bool   `json:"isExecutive"`
	ExecType      string `json:"execType,omitempty"` // vp | president
}

// Capabilities returns the user's role flags as the engine's value type.
// Always read live — a requester's roles are not frozen at submission.
func (u *User) Capabilities() workflow.RoleCapabilities {
	return workflow.RoleCapabilities{
		IsHead:        u.IsHead,
		IsAdmin:       u.IsAdmin,
		IsComptroller: u.IsComptroller,
		IsHR:          u.IsHR,
		IsExecutive:   u.IsExecutive,
		ExecType:      workflow.ExecType(u.ExecType),
	}
}
