// Package domain defines incidents, their comments and the values they can take.
package domain

import (
	"time"

	"github.com/google/uuid"

	"github.com/allisson/incidenthub/internal/errors"
	userDomain "github.com/allisson/incidenthub/internal/user/domain"
)

// Severity ranks the impact of an incident.
type Severity string

const (
	SeverityLow      Severity = "LOW"
	SeverityMedium   Severity = "MEDIUM"
	SeverityHigh     Severity = "HIGH"
	SeverityCritical Severity = "CRITICAL"
)

// Severities lists every valid severity, lowest first.
var Severities = []Severity{SeverityLow, SeverityMedium, SeverityHigh, SeverityCritical}

// Valid reports whether s is a known severity.
func (s Severity) Valid() bool {
	for _, v := range Severities {
		if s == v {
			return true
		}
	}
	return false
}

// Status is the lifecycle stage of an incident.
type Status string

const (
	StatusOpen       Status = "OPEN"
	StatusInProgress Status = "IN_PROGRESS"
	StatusResolved   Status = "RESOLVED"
	StatusClosed     Status = "CLOSED"
)

// Statuses lists every valid status in lifecycle order.
var Statuses = []Status{StatusOpen, StatusInProgress, StatusResolved, StatusClosed}

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	for _, v := range Statuses {
		if s == v {
			return true
		}
	}
	return false
}

// Incident is a tracked operational problem.
type Incident struct {
	ID          uuid.UUID           `json:"id"`
	Title       string              `json:"title"`
	Description string              `json:"description"`
	Severity    Severity            `json:"severity"`
	Status      Status              `json:"status"`
	CreatedBy   userDomain.Summary  `json:"createdBy"`
	AssignedTo  *userDomain.Summary `json:"assignedTo"`
	CreatedAt   time.Time           `json:"createdAt"`
	UpdatedAt   time.Time           `json:"updatedAt"`
}

// AssignedToID returns the assignee id, or nil when unassigned.
func (i *Incident) AssignedToID() *uuid.UUID {
	if i.AssignedTo == nil {
		return nil
	}
	id := i.AssignedTo.ID
	return &id
}

// Comment is a note left on an incident.
type Comment struct {
	ID         uuid.UUID          `json:"id"`
	IncidentID uuid.UUID          `json:"incidentId"`
	Content    string             `json:"content"`
	User       userDomain.Summary `json:"user"`
	CreatedAt  time.Time          `json:"createdAt"`
	UpdatedAt  time.Time          `json:"updatedAt"`
}

// ListFilter narrows an incident listing. Zero values mean no restriction.
type ListFilter struct {
	Status   Status
	Severity Severity
	Offset   int
	Limit    int
}

var (
	// ErrIncidentNotFound indicates the requested incident does not exist.
	ErrIncidentNotFound = errors.Wrap(errors.ErrNotFound, "incident not found")

	// ErrCommentNotFound indicates the requested comment does not exist on the incident.
	ErrCommentNotFound = errors.Wrap(errors.ErrNotFound, "comment not found")

	// ErrAssigneeNotFound indicates assignedToId does not name an existing user.
	ErrAssigneeNotFound = errors.Wrap(errors.ErrInvalidInput, "assignee does not exist")

	// ErrNotCommentAuthor indicates a non-admin tried to change someone else's comment.
	ErrNotCommentAuthor = errors.Wrap(errors.ErrForbidden, "only the author or an admin can change this comment")
)
