package domain

import "github.com/google/uuid"

// UserSummary is the public part of an account embedded in other resources.
type UserSummary struct {
	ID        uuid.UUID `json:"id"`
	Email     string    `json:"email"`
	FirstName string    `json:"firstName"`
	LastName  string    `json:"lastName"`
}

// UnknownName renders references that no longer resolve.
const UnknownName = "Unknown"
