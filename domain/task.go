package domain

import (
	"time"

	"github.com/google/uuid"
)

type TaskStatus string

const (
	TaskStatusTodo       TaskStatus = "TODO"
	TaskStatusInProgress TaskStatus = "IN_PROGRESS"
	TaskStatusReview     TaskStatus = "REVIEW"
	TaskStatusDone       TaskStatus = "DONE"
)

var TaskStatuses = []TaskStatus{TaskStatusTodo, TaskStatusInProgress, TaskStatusReview, TaskStatusDone}

type TaskPriority string

const (
	TaskPriorityLow    TaskPriority = "LOW"
	TaskPriorityMedium TaskPriority = "MEDIUM"
	TaskPriorityHigh   TaskPriority = "HIGH"
	TaskPriorityUrgent TaskPriority = "URGENT"
)

type Task struct {
	ID uuid.UUID `json:"id" gorm:"primary_key" sql:"type:varchar(36)"`

	Title       string       `json:"title" sql:"not null"`
	Description *string      `json:"description" sql:"type:text"`
	Status      TaskStatus   `json:"status" gorm:"index" sql:"type:varchar(16);not null"`
	Priority    TaskPriority `json:"priority" sql:"type:varchar(16);not null"`

	CreatorID  uuid.UUID  `json:"creatorId" gorm:"index" sql:"type:varchar(36);not null"`
	AssigneeID *uuid.UUID `json:"assigneeId" gorm:"index" sql:"type:varchar(36)"`
	ProjectID  uuid.UUID  `json:"projectId" gorm:"index" sql:"type:varchar(36);not null"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type TaskCreation struct {
	Title       string        `json:"title" binding:"required,max=255"`
	Description *string       `json:"description"`
	Status      *TaskStatus   `json:"status" binding:"omitempty,oneof=TODO IN_PROGRESS REVIEW DONE"`
	Priority    *TaskPriority `json:"priority" binding:"omitempty,oneof=LOW MEDIUM HIGH URGENT"`

	ProjectID  uuid.UUID  `json:"projectId" binding:"required"`
	CreatorID  *uuid.UUID `json:"creatorId"`
	AssigneeID *uuid.UUID `json:"assigneeId"`
}

type TaskUpdating struct {
	Title       *string       `json:"title" binding:"omitempty,min=1,max=255"`
	Description *string       `json:"description"`
	Status      *TaskStatus   `json:"status" binding:"omitempty,oneof=TODO IN_PROGRESS REVIEW DONE"`
	Priority    *TaskPriority `json:"priority" binding:"omitempty,oneof=LOW MEDIUM HIGH URGENT"`
	AssigneeID  *uuid.UUID    `json:"assigneeId"`
}

// TaskDetail is a task with its references resolved to display names.
type TaskDetail struct {
	Task

	ProjectName  string  `json:"projectName"`
	CreatorName  string  `json:"creatorName"`
	AssigneeName *string `json:"assigneeName"`
}

type TaskQuery struct {
	ProjectID  *uuid.UUID
	AssigneeID *uuid.UUID
	CreatorID  *uuid.UUID
}

// TaskSearch matches Text against title and description, optionally within one project.
type TaskSearch struct {
	Text      string
	ProjectID *uuid.UUID
}

func NewTask(c *TaskCreation, creatorId uuid.UUID) *Task {
	now := time.Now()
	t := &Task{
		ID:          NewID(),
		Title:       c.Title,
		Description: c.Description,
		Status:      TaskStatusTodo,
		Priority:    TaskPriorityMedium,
		CreatorID:   creatorId,
		AssigneeID:  c.AssigneeID,
		ProjectID:   c.ProjectID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if c.Status != nil {
		t.Status = *c.Status
	}
	if c.Priority != nil {
		t.Priority = *c.Priority
	}
	return t
}

func (t *Task) Apply(u *TaskUpdating) {
	if u.Title != nil {
		t.Title = *u.Title
	}
	if u.Description != nil {
		t.Description = u.Description
	}
	if u.Status != nil {
		t.Status = *u.Status
	}
	if u.Priority != nil {
		t.Priority = *u.Priority
	}
	if u.AssigneeID != nil {
		id := *u.AssigneeID
		t.AssigneeID = &id
	}
	t.UpdatedAt = time.Now()
}
