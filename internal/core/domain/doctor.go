package domain

import "github.com/google/uuid"

// Doctor carries the display fields denormalized into schedule responses.
// The doctor record itself is owned by the user-management subsystem.
type Doctor struct {
	ID         uuid.UUID `json:"id"`
	Name       string    `json:"name"`
	Department string    `json:"department"`
}
