package domain

import (
	"taskboard/authority"
	"time"

	"github.com/google/uuid"
)

type ProjectStatus string

const (
	ProjectStatusActive   ProjectStatus = "ACTIVE"
	ProjectStatusInactive ProjectStatus = "INACTIVE"
	ProjectStatusArchived ProjectStatus = "ARCHIVED"
)

var ProjectStatuses = []ProjectStatus{ProjectStatusActive, ProjectStatusInactive, ProjectStatusArchived}

type Project struct {
	ID uuid.UUID `json:"id" gorm:"primary_key" sql:"type:varchar(36)"`

	Name        string        `json:"name" sql:"not null"`
	Description *string       `json:"description" sql:"type:text"`
	OwnerID     uuid.UUID     `json:"ownerId" gorm:"index" sql:"type:varchar(36);not null"`
	Status      ProjectStatus `json:"status" sql:"type:varchar(16);not null"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type ProjectCreation struct {
	Name        string         `json:"name" binding:"required,max=255"`
	Description *string        `json:"description"`
	Status      *ProjectStatus `json:"status" binding:"omitempty,oneof=ACTIVE INACTIVE ARCHIVED"`
}

type ProjectUpdating struct {
	Name        *string        `json:"name" binding:"omitempty,min=1,max=255"`
	Description *string        `json:"description"`
	Status      *ProjectStatus `json:"status" binding:"omitempty,oneof=ACTIVE INACTIVE ARCHIVED"`
}

// ProjectWithRole is a project seen through the membership of one user.
type ProjectWithRole struct {
	Project
	Role authority.ProjectRole `json:"role,omitempty"`
}

func NewProject(c *ProjectCreation, ownerId uuid.UUID) *Project {
	now := time.Now()
	p := &Project{
		ID:          NewID(),
		Name:        c.Name,
		Description: c.Description,
		OwnerID:     ownerId,
		Status:      ProjectStatusActive,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if c.Status != nil {
		p.Status = *c.Status
	}
	return p
}

// Apply copies the provided fields and refreshes UpdatedAt.
func (p *Project) Apply(u *ProjectUpdating) {
	if u.Name != nil {
		p.Name = *u.Name
	}
	if u.Description != nil {
		p.Description = u.Description
	}
	if u.Status != nil {
		p.Status = *u.Status
	}
	p.UpdatedAt = time.Now()
}
