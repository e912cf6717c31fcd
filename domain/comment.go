package domain

import (
	"time"

	"github.com/google/uuid"
)

type Comment struct {
	ID uuid.UUID `json:"id" gorm:"primary_key" sql:"type:varchar(36)"`

	Content  string    `json:"content" sql:"type:text;not null"`
	AuthorID uuid.UUID `json:"authorId" gorm:"index" sql:"type:varchar(36);not null"`
	TaskID   uuid.UUID `json:"taskId" gorm:"index" sql:"type:varchar(36);not null"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type CommentCreation struct {
	Content  string     `json:"content" binding:"required"`
	TaskID   uuid.UUID  `json:"taskId" binding:"required"`
	AuthorID *uuid.UUID `json:"authorId"`
}

type CommentUpdating struct {
	Content *string `json:"content" binding:"omitempty,min=1"`
}

type CommentDetail struct {
	Comment

	AuthorName string `json:"authorName"`
}

func NewComment(c *CommentCreation, authorId uuid.UUID) *Comment {
	now := time.Now()
	return &Comment{
		ID:        NewID(),
		Content:   c.Content,
		AuthorID:  authorId,
		TaskID:    c.TaskID,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func (c *Comment) Apply(u *CommentUpdating) {
	if u.Content != nil {
		c.Content = *u.Content
	}
	c.UpdatedAt = time.Now()
}
