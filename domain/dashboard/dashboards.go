package dashboard

import (
	"taskboard/account"
	"taskboard/authority"
	"taskboard/bizerror"
	"taskboard/domain"
	"taskboard/domain/namespace"
	"taskboard/persistence"
	"taskboard/session"

	"github.com/jinzhu/gorm"
)

type AdminDashboard struct {
	TotalProjects  int `json:"totalProjects"`
	TotalUsers     int `json:"totalUsers"`
	TotalTasks     int `json:"totalTasks"`
	ActiveProjects int `json:"activeProjects"`
	CompletedTasks int `json:"completedTasks"`

	UsersByRole      map[authority.Role]int       `json:"usersByRole"`
	TasksByStatus    map[domain.TaskStatus]int    `json:"tasksByStatus"`
	ProjectsByStatus map[domain.ProjectStatus]int `json:"projectsByStatus"`
}

type UserDashboard struct {
	ProjectsCount        int `json:"projectsCount"`
	AssignedTasksCount   int `json:"assignedTasksCount"`
	CompletedTasksCount  int `json:"completedTasksCount"`
	InProgressTasksCount int `json:"inProgressTasksCount"`

	// OverdueTasksCount stays 0 until tasks carry a due date.
	OverdueTasksCount int `json:"overdueTasksCount"`

	ProjectsByRole map[authority.ProjectRole]int `json:"projectsByRole"`
}

// QueryAdminDashboard folds full column scans into counters, so every grouping sums to its total.
func QueryAdminDashboard(sec *session.Session) (*AdminDashboard, error) {
	if !sec.Permits(authority.AdminDashboardRead) {
		return nil, bizerror.ErrForbidden
	}
	db := persistence.ActiveDataSourceManager.GormDB(sec.Ctx())

	d := &AdminDashboard{
		UsersByRole:      map[authority.Role]int{authority.RoleAdmin: 0, authority.RoleUser: 0},
		TasksByStatus:    map[domain.TaskStatus]int{},
		ProjectsByStatus: map[domain.ProjectStatus]int{},
	}
	for _, s := range domain.TaskStatuses {
		d.TasksByStatus[s] = 0
	}
	for _, s := range domain.ProjectStatuses {
		d.ProjectsByStatus[s] = 0
	}

	roles, err := pluck(db.Model(&account.User{}), "role")
	if err != nil {
		return nil, err
	}
	for _, r := range roles {
		d.UsersByRole[authority.Role(r)]++
	}
	d.TotalUsers = len(roles)

	projectStatuses, err := pluck(db.Model(&domain.Project{}), "status")
	if err != nil {
		return nil, err
	}
	for _, s := range projectStatuses {
		d.ProjectsByStatus[domain.ProjectStatus(s)]++
	}
	d.TotalProjects = len(projectStatuses)
	d.ActiveProjects = d.ProjectsByStatus[domain.ProjectStatusActive]

	taskStatuses, err := pluck(db.Model(&domain.Task{}), "status")
	if err != nil {
		return nil, err
	}
	for _, s := range taskStatuses {
		d.TasksByStatus[domain.TaskStatus(s)]++
	}
	d.TotalTasks = len(taskStatuses)
	d.CompletedTasks = d.TasksByStatus[domain.TaskStatusDone]

	return d, nil
}

// QueryUserDashboard summarizes the caller's memberships and assigned tasks.
func QueryUserDashboard(sec *session.Session) (*UserDashboard, error) {
	if !sec.Permits(authority.UserDashboardRead) {
		return nil, bizerror.ErrForbidden
	}
	db := persistence.ActiveDataSourceManager.GormDB(sec.Ctx())

	d := &UserDashboard{}
	roles, err := namespace.QueryMemberRoleCounts(sec.Ctx(), sec.Identity.ID)
	if err != nil {
		return nil, err
	}
	d.ProjectsByRole = map[authority.ProjectRole]int{authority.ProjectRoleManager: 0, authority.ProjectRoleWorker: 0}
	for role, count := range roles {
		d.ProjectsByRole[role] += count
		d.ProjectsCount += count
	}

	statuses, err := pluck(db.Model(&domain.Task{}).Where("assignee_id = ?", sec.Identity.ID), "status")
	if err != nil {
		return nil, err
	}
	d.AssignedTasksCount = len(statuses)
	for _, s := range statuses {
		switch domain.TaskStatus(s) {
		case domain.TaskStatusDone:
			d.CompletedTasksCount++
		case domain.TaskStatusInProgress, domain.TaskStatusReview:
			d.InProgressTasksCount++
		}
	}
	return d, nil
}

func pluck(db *gorm.DB, column string) ([]string, error) {
	var values []string
	if err := db.Pluck(column, &values).Error; err != nil {
		return nil, err
	}
	return values, nil
}
