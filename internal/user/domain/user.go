// Package domain defines the core user domain entities and types.
package domain

import (
	"time"

	"github.com/google/uuid"

	"github.com/allisson/incidenthub/internal/errors"
)

// User represents an identity that can sign in.
type User struct {
	ID        uuid.UUID
	Name      string
	Email     string
	Role      Role
	Password  string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Summary returns the public projection embedded in incidents, comments and audit logs.
func (u *User) Summary() Summary {
	return Summary{ID: u.ID, Name: u.Name, Email: u.Email, Role: u.Role}
}

// Summary is the public view of a user attached to other entities.
type Summary struct {
	ID    uuid.UUID `json:"id"`
	Name  string    `json:"name"`
	Email string    `json:"email"`
	Role  Role      `json:"role"`
}

// Domain-specific errors for user operations.
var (
	// ErrUserNotFound indicates the requested user does not exist.
	ErrUserNotFound = errors.Wrap(errors.ErrNotFound, "user not found")

	// ErrUserAlreadyExists indicates a user with the same email already exists.
	ErrUserAlreadyExists = errors.Wrap(errors.ErrConflict, "user already exists")

	// ErrInvalidCredentials indicates an unknown email or a wrong password.
	ErrInvalidCredentials = errors.Wrap(errors.ErrUnauthorized, "invalid credentials")

	// ErrInvalidRole indicates a role outside ADMIN, RESPONDER and VIEWER.
	ErrInvalidRole = errors.Wrap(errors.ErrInvalidInput, "invalid role")
)
