// Package dto provides data transfer objects for the user HTTP layer.
package dto

import (
	validation "github.com/jellydator/validation"

	appValidation "github.com/allisson/incidenthub/internal/validation"
)

// UpdateRoleRequest is the body of PATCH /api/users/:id/role.
type UpdateRoleRequest struct {
	Role string `json:"role"`
}

// Validate checks that a role was supplied. Whether it is a known role is decided by the use case.
func (r *UpdateRoleRequest) Validate() error {
	err := validation.ValidateStruct(r,
		validation.Field(&r.Role,
			validation.Required.Error("role is required"),
			appValidation.NotBlank,
		),
	)
	return appValidation.WrapValidationError(err)
}
