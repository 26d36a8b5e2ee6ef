package domain

// UserWorkplaceRole defines the possible roles a user can have within a workplace.
type UserWorkplaceRole string

const (
	RoleAdmin    UserWorkplaceRole = "ADMIN"    // approval and posting authority
	RoleMember   UserWorkplaceRole = "MEMBER"   // may create, edit, submit and duplicate entries
	RoleReadOnly UserWorkplaceRole = "READONLY" // may view entries and reports
	RoleRemoved  UserWorkplaceRole = "REMOVED"
)

// rank orders roles by privilege; REMOVED and unknown roles rank lowest.
func (r UserWorkplaceRole) rank() int {
	switch r {
	case RoleAdmin:
		return 3
	case RoleMember:
		return 2
	case RoleReadOnly:
		return 1
	default:
		return 0
	}
}

// Satisfies reports whether r grants at least the privileges of required.
func (r UserWorkplaceRole) Satisfies(required UserWorkplaceRole) bool {
	return r.rank() > 0 && r.rank() >= required.rank()
}

// UserWorkplace represents the membership of a user in a workplace.
type UserWorkplace struct {
	UserID      string            `json:"userID"`
	WorkplaceID string            `json:"workplaceID"`
	Role        UserWorkplaceRole `json:"role"`
}
