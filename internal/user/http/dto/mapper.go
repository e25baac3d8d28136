package dto

import (
	"github.com/allisson/incidenthub/internal/user/domain"
)

// ToUserResponse converts a domain User to its API representation.
func ToUserResponse(user *domain.User) UserResponse {
	return UserResponse{
		ID:        user.ID,
		Name:      user.Name,
		Email:     user.Email,
		Role:      user.Role.String(),
		CreatedAt: user.CreatedAt,
		UpdatedAt: user.UpdatedAt,
	}
}

// ToListUsersResponse converts users preserving their order.
func ToListUsersResponse(users []*domain.User) ListUsersResponse {
	out := make([]UserResponse, 0, len(users))
	for _, u := range users {
		out = append(out, ToUserResponse(u))
	}
	return ListUsersResponse{Users: out}
}
