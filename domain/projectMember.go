package domain

import (
	"taskboard/authority"
	"time"

	"github.com/google/uuid"
)

type ProjectMember struct {
	ID uuid.UUID `json:"id" gorm:"primary_key" sql:"type:varchar(36)"`

	UserID       uuid.UUID             `json:"userId" gorm:"unique_index:uix_project_member" sql:"type:varchar(36);not null"`
	ProjectID    uuid.UUID             `json:"projectId" gorm:"unique_index:uix_project_member" sql:"type:varchar(36);not null"`
	Role         authority.ProjectRole `json:"role" sql:"type:varchar(16);not null"`
	AssignedByID uuid.UUID             `json:"assignedById" sql:"type:varchar(36);not null"`
	AssignedAt   time.Time             `json:"assignedAt"`
}

type ProjectMemberCreation struct {
	UserID uuid.UUID              `json:"userId" binding:"required"`
	Role   *authority.ProjectRole `json:"role" binding:"omitempty,oneof=MANAGER WORKER"`
}

type ProjectMemberDetail struct {
	ProjectMember

	User       *UserSummary `json:"user"`
	AssignedBy *UserSummary `json:"assignedBy"`
}

func NewProjectMember(projectId uuid.UUID, c *ProjectMemberCreation, assignedBy uuid.UUID) *ProjectMember {
	m := &ProjectMember{
		ID:           NewID(),
		UserID:       c.UserID,
		ProjectID:    projectId,
		Role:         authority.ProjectRoleWorker,
		AssignedByID: assignedBy,
		AssignedAt:   time.Now(),
	}
	if c.Role != nil {
		m.Role = *c.Role
	}
	return m
}
