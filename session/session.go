package session

import (
	"context"
	"taskboard/authority"
	"time"

	"github.com/google/uuid"
)

type Session struct {
	Token    string         `json:"token"`
	Identity Identity       `json:"identity"`
	Role     authority.Role `json:"role"`

	Context     context.Context `json:"-"`
	SigningTime time.Time       `json:"-"`
	ExpiresAt   time.Time       `json:"-"`
}

type Identity struct {
	ID uuid.UUID `json:"id"`
}

func (s *Session) Clone() Session {
	return *s
}

func (s *Session) Authenticated() bool {
	return s != nil && s.Token != "" && s.Identity.ID != uuid.Nil
}

// Permits checks the allow-list for the role carried by the token.
func (s *Session) Permits(perm authority.Permission) bool {
	return s.Authenticated() && authority.Allows(s.Role, perm)
}

func (s *Session) IsAdmin() bool {
	return s.Authenticated() && s.Role == authority.RoleAdmin
}

func (s *Session) Is(userId uuid.UUID) bool {
	return s.Authenticated() && s.Identity.ID == userId
}

// Ctx never returns nil, so it can be handed to tracing and storage directly.
func (s *Session) Ctx() context.Context {
	if s == nil || s.Context == nil {
		return context.Background()
	}
	return s.Context
}
