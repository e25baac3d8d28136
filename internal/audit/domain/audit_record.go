// Package domain defines the audit trail kept for successful incident and comment changes.
package domain

import (
	"time"

	"github.com/google/uuid"

	"github.com/allisson/incidenthub/internal/errors"
	userDomain "github.com/allisson/incidenthub/internal/user/domain"
)

// Action is the kind of change an audit record describes.
type Action string

const (
	ActionCreate       Action = "CREATE"
	ActionUpdate       Action = "UPDATE"
	ActionDelete       Action = "DELETE"
	ActionStatusChange Action = "STATUS_CHANGE"
)

// AuditRecord is an immutable, signed entry in the audit trail.
type AuditRecord struct {
	ID         uuid.UUID
	Action     Action
	EntityType string
	EntityID   uuid.UUID
	UserID     uuid.UUID
	Metadata   map[string]any
	Signature  []byte
	CreatedAt  time.Time

	// User is populated by list queries only and is not covered by the signature.
	User *userDomain.Summary
}

// ListFilter narrows an audit listing. Zero values mean no filter.
type ListFilter struct {
	EntityType string
	UserID     *uuid.UUID
	Offset     int
	Limit      int
}

// ErrSignatureInvalid indicates a record whose content no longer matches its signature.
var ErrSignatureInvalid = errors.Wrap(errors.ErrInvalidInput, "audit record signature is invalid")
