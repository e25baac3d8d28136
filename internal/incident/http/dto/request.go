// Package dto provides data transfer objects for the incident and comment endpoints.
package dto

import (
	"bytes"
	"encoding/json"

	"github.com/google/uuid"
	validation "github.com/jellydator/validation"

	"github.com/allisson/incidenthub/internal/incident/domain"
	"github.com/allisson/incidenthub/internal/incident/usecase"
	appValidation "github.com/allisson/incidenthub/internal/validation"
)

// NullableString tells an absent JSON field apart from an explicit null.
type NullableString struct {
	Set   bool
	Value *string
}

// UnmarshalJSON records that the field was present.
func (n *NullableString) UnmarshalJSON(data []byte) error {
	n.Set = true
	if bytes.Equal(data, []byte("null")) {
		n.Value = nil
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	n.Value = &s
	return nil
}

// CreateIncidentRequest is the body of POST /api/incidents.
type CreateIncidentRequest struct {
	Title        string `json:"title"`
	Description  string `json:"description"`
	Severity     string `json:"severity"`
	AssignedToID string `json:"assignedToId"`
}

// Validate checks the fields that cannot be checked after conversion.
func (r *CreateIncidentRequest) Validate() error {
	err := validation.ValidateStruct(r,
		validation.Field(&r.Title, validation.Required.Error("title is required")),
		validation.Field(&r.Description, validation.Required.Error("description is required")),
		validation.Field(&r.AssignedToID, appValidation.UUID),
	)
	return appValidation.WrapValidationError(err)
}

// ToInput converts the request. Call Validate first.
func (r *CreateIncidentRequest) ToInput() usecase.CreateIncidentInput {
	input := usecase.CreateIncidentInput{
		Title:       r.Title,
		Description: r.Description,
		Severity:    domain.Severity(r.Severity),
	}
	if r.AssignedToID != "" {
		id := uuid.MustParse(r.AssignedToID)
		input.AssignedToID = &id
	}
	return input
}

// UpdateIncidentRequest is the body of PATCH /api/incidents/:id. Absent fields are
// left untouched; "assignedToId": null removes the assignee.
type UpdateIncidentRequest struct {
	Title        *string        `json:"title"`
	Description  *string        `json:"description"`
	Severity     *string        `json:"severity"`
	AssignedToID NullableString `json:"assignedToId"`
}

// Validate checks the assignee id format.
func (r *UpdateIncidentRequest) Validate() error {
	if r.AssignedToID.Value != nil {
		if _, err := uuid.Parse(*r.AssignedToID.Value); err != nil {
			return appValidation.FieldError("assignedToId", "must be a valid UUID")
		}
	}
	return nil
}

// ToInput converts the request. Call Validate first.
func (r *UpdateIncidentRequest) ToInput() usecase.UpdateIncidentInput {
	input := usecase.UpdateIncidentInput{
		Title:       r.Title,
		Description: r.Description,
	}
	if r.Severity != nil {
		severity := domain.Severity(*r.Severity)
		input.Severity = &severity
	}
	if r.AssignedToID.Set {
		if r.AssignedToID.Value == nil {
			input.Unassign = true
		} else {
			id := uuid.MustParse(*r.AssignedToID.Value)
			input.AssignedToID = &id
		}
	}
	return input
}

// ChangeStatusRequest is the body of PATCH /api/incidents/:id/status.
type ChangeStatusRequest struct {
	Status string `json:"status"`
}

// Validate checks that a status was supplied.
func (r *ChangeStatusRequest) Validate() error {
	err := validation.ValidateStruct(r,
		validation.Field(&r.Status, validation.Required.Error("status is required")),
	)
	return appValidation.WrapValidationError(err)
}

// CommentRequest is the body of comment creation and edits.
type CommentRequest struct {
	Content string `json:"content"`
}

// Validate checks the content length.
func (r *CommentRequest) Validate() error {
	err := validation.ValidateStruct(r,
		validation.Field(&r.Content,
			validation.Required.Error("content is required"),
			validation.RuneLength(1, 2000).Error("content must be between 1 and 2000 characters"),
		),
	)
	return appValidation.WrapValidationError(err)
}
