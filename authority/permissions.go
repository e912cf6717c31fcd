package authority

type Resource string

type Action string

const (
	ResourceUser           Resource = "user"
	ResourceProject        Resource = "project"
	ResourceProjectMember  Resource = "project_member"
	ResourceTask           Resource = "task"
	ResourceComment        Resource = "comment"
	ResourceAdminDashboard Resource = "admin_dashboard"
	ResourceUserDashboard  Resource = "user_dashboard"
	ResourceTaskIndex      Resource = "task_index"

	ActionCreate     Action = "create"
	ActionRead       Action = "read"
	ActionList       Action = "list"
	ActionUpdate     Action = "update"
	ActionDelete     Action = "delete"
	ActionAssignRole Action = "assign_role"
	ActionRebuild    Action = "rebuild"
)

type Permission struct {
	Resource Resource
	Action   Action
}

func (p Permission) String() string {
	return string(p.Resource) + ":" + string(p.Action)
}

var (
	UserList       = Permission{ResourceUser, ActionList}
	UserRead       = Permission{ResourceUser, ActionRead}
	UserUpdate     = Permission{ResourceUser, ActionUpdate}
	UserAssignRole = Permission{ResourceUser, ActionAssignRole}

	ProjectCreate = Permission{ResourceProject, ActionCreate}
	ProjectRead   = Permission{ResourceProject, ActionRead}
	ProjectList   = Permission{ResourceProject, ActionList}
	ProjectUpdate = Permission{ResourceProject, ActionUpdate}
	ProjectDelete = Permission{ResourceProject, ActionDelete}

	ProjectMemberCreate = Permission{ResourceProjectMember, ActionCreate}
	ProjectMemberList   = Permission{ResourceProjectMember, ActionList}
	ProjectMemberDelete = Permission{ResourceProjectMember, ActionDelete}

	TaskCreate = Permission{ResourceTask, ActionCreate}
	TaskRead   = Permission{ResourceTask, ActionRead}
	TaskList   = Permission{ResourceTask, ActionList}
	TaskUpdate = Permission{ResourceTask, ActionUpdate}
	TaskDelete = Permission{ResourceTask, ActionDelete}

	CommentCreate = Permission{ResourceComment, ActionCreate}
	CommentRead   = Permission{ResourceComment, ActionRead}
	CommentList   = Permission{ResourceComment, ActionList}
	CommentUpdate = Permission{ResourceComment, ActionUpdate}
	CommentDelete = Permission{ResourceComment, ActionDelete}

	AdminDashboardRead = Permission{ResourceAdminDashboard, ActionRead}
	UserDashboardRead  = Permission{ResourceUserDashboard, ActionRead}

	TaskIndexRebuild = Permission{ResourceTaskIndex, ActionRebuild}
)

var adminOnly = []Role{RoleAdmin}
var everyone = []Role{RoleAdmin, RoleUser}

// rules is the allow-list; anything absent is denied.
var rules = map[Permission][]Role{
	UserList:       everyone,
	UserRead:       adminOnly,
	UserUpdate:     adminOnly,
	UserAssignRole: adminOnly,

	ProjectCreate: adminOnly,
	ProjectRead:   everyone,
	ProjectList:   everyone,
	ProjectUpdate: adminOnly,
	ProjectDelete: adminOnly,

	ProjectMemberCreate: everyone,
	ProjectMemberList:   everyone,
	ProjectMemberDelete: adminOnly,

	TaskCreate: everyone,
	TaskRead:   everyone,
	TaskList:   everyone,
	TaskUpdate: adminOnly,
	TaskDelete: adminOnly,

	CommentCreate: everyone,
	CommentRead:   everyone,
	CommentList:   adminOnly,
	CommentUpdate: adminOnly,
	CommentDelete: everyone,

	AdminDashboardRead: adminOnly,
	UserDashboardRead:  everyone,

	TaskIndexRebuild: adminOnly,
}

func Allows(role Role, perm Permission) bool {
	for _, r := range rules[perm] {
		if r == role {
			return true
		}
	}
	return false
}

// RolesOf lists the roles granted a permission.
func RolesOf(perm Permission) []Role {
	roles := rules[perm]
	out := make([]Role, len(roles))
	copy(out, roles)
	return out
}
