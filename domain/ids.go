package domain

import "github.com/google/uuid"

// NewID returns a time ordered UUID, falling back to a random one if the clock source fails.
func NewID() uuid.UUID {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.New()
	}
	return id
}
