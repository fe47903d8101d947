package user

// Role is the caller's platform role as carried in the access token.
type Role string

const (
	RoleIntern     Role = "intern"
	RoleSupervisor Role = "supervisor"
	RoleHRAdmin    Role = "hr_admin"
)

// IsStaff reports whether the role may act on interns other than itself.
func (r Role) IsStaff() bool {
	return r == RoleSupervisor || r == RoleHRAdmin
}
