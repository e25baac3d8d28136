package dto

import (
	"time"

	"github.com/google/uuid"
)

// UserResponse is the public representation of a user. The password hash is never exposed.
type UserResponse struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// ListUsersResponse wraps the user list.
type ListUsersResponse struct {
	Users []UserResponse `json:"users"`
}
