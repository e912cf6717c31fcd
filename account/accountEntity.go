package account

import (
	"taskboard/authority"
	"taskboard/common"
	"taskboard/domain"
	"time"

	"github.com/google/uuid"
)

type User struct {
	ID uuid.UUID `json:"id" gorm:"primary_key" sql:"type:varchar(36)"`

	Email     string         `json:"email" gorm:"unique_index" sql:"not null"`
	Password  string         `json:"-" sql:"not null"`
	FirstName string         `json:"firstName"`
	LastName  string         `json:"lastName"`
	Role      authority.Role `json:"role" sql:"type:varchar(16);not null"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// UserInfo is the user object returned along with an access token.
type UserInfo struct {
	ID        uuid.UUID      `json:"id"`
	Email     string         `json:"email"`
	FirstName string         `json:"firstName"`
	LastName  string         `json:"lastName"`
	Role      authority.Role `json:"role"`
}

type UserRegistration struct {
	Email     string `json:"email" binding:"required,email,max=255"`
	Password  string `json:"password" binding:"required,min=6,max=72"`
	FirstName string `json:"firstName" binding:"required,max=100"`
	LastName  string `json:"lastName" binding:"required,max=100"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type LoginResponse struct {
	AccessToken string   `json:"access_token"`
	User        UserInfo `json:"user"`
}

type UserSelfUpdating struct {
	Email     *string `json:"email" binding:"omitempty,email,max=255"`
	Password  *string `json:"password" binding:"omitempty,min=6,max=72"`
	FirstName *string `json:"firstName" binding:"omitempty,min=1,max=100"`
	LastName  *string `json:"lastName" binding:"omitempty,min=1,max=100"`
}

type UserUpdating struct {
	UserSelfUpdating
	Role *authority.Role `json:"role" binding:"omitempty,oneof=ADMIN USER"`
}

type RoleUpdating struct {
	Role authority.Role `json:"role" binding:"required,oneof=ADMIN USER"`
}

func (u User) DisplayName() string {
	if name := common.FullName(u.FirstName, u.LastName); name != "" {
		return name
	}
	return u.Email
}

func (u User) Info() UserInfo {
	return UserInfo{ID: u.ID, Email: u.Email, FirstName: u.FirstName, LastName: u.LastName, Role: u.Role}
}

func (u User) Summary() domain.UserSummary {
	return domain.UserSummary{ID: u.ID, Email: u.Email, FirstName: u.FirstName, LastName: u.LastName}
}
