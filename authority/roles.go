package authority

import "strings"

// Role is the global role carried by an account and its tokens.
type Role string

const (
	RoleAdmin Role = "ADMIN"
	RoleUser  Role = "USER"
)

func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleUser
}

func ParseRole(s string) (Role, bool) {
	r := Role(strings.ToUpper(strings.TrimSpace(s)))
	return r, r.Valid()
}

// ProjectRole is the role of a member inside one project.
type ProjectRole string

const (
	ProjectRoleManager ProjectRole = "MANAGER"
	ProjectRoleWorker  ProjectRole = "WORKER"
)

func (r ProjectRole) Valid() bool {
	return r == ProjectRoleManager || r == ProjectRoleWorker
}
