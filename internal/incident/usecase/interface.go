// Package usecase implements incident and comment business logic. Every state
// change runs through a realtime.Mutator so its fact is announced after commit.
package usecase

import (
	"context"

	"github.com/google/uuid"

	authDomain "github.com/allisson/incidenthub/internal/auth/domain"
	"github.com/allisson/incidenthub/internal/incident/domain"
	userDomain "github.com/allisson/incidenthub/internal/user/domain"
)

// IncidentRepository persists incidents.
type IncidentRepository interface {
	Create(ctx context.Context, incident *domain.Incident) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Incident, error)
	List(ctx context.Context, filter domain.ListFilter) ([]*domain.Incident, int64, error)
	Update(ctx context.Context, incident *domain.Incident) error
}

// CommentRepository persists comments.
type CommentRepository interface {
	Create(ctx context.Context, comment *domain.Comment) error
	GetByID(ctx context.Context, incidentID, id uuid.UUID) (*domain.Comment, error)
	ListByIncident(ctx context.Context, incidentID uuid.UUID) ([]*domain.Comment, error)
	Update(ctx context.Context, comment *domain.Comment) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// UserLookup resolves assignees.
type UserLookup interface {
	GetUserByID(ctx context.Context, id uuid.UUID) (*userDomain.User, error)
}

// CreateIncidentInput holds a new incident. An empty Severity means MEDIUM.
type CreateIncidentInput struct {
	Title        string          `json:"title"`
	Description  string          `json:"description"`
	Severity     domain.Severity `json:"severity"`
	AssignedToID *uuid.UUID      `json:"assignedToId"`
}

// UpdateIncidentInput is a partial update: nil fields are left untouched.
// Unassign clears the assignee and takes precedence over AssignedToID.
type UpdateIncidentInput struct {
	Title        *string          `json:"title"`
	Description  *string          `json:"description"`
	Severity     *domain.Severity `json:"severity"`
	AssignedToID *uuid.UUID       `json:"assignedToId"`
	Unassign     bool             `json:"-"`
}

// ListIncidentsInput selects one page of incidents. Page is 1-based.
type ListIncidentsInput struct {
	Status   domain.Status
	Severity domain.Severity
	Page     int
	Limit    int
}

// IncidentPage is one page of a listing.
type IncidentPage struct {
	Incidents []*domain.Incident
	Total     int64
	Page      int
	Limit     int
}

// IncidentUseCase defines incident operations.
type IncidentUseCase interface {
	Create(ctx context.Context, actor *authDomain.Principal, input CreateIncidentInput) (*domain.Incident, error)
	Get(ctx context.Context, id uuid.UUID) (*domain.Incident, error)
	List(ctx context.Context, input ListIncidentsInput) (*IncidentPage, error)
	Update(ctx context.Context, id uuid.UUID, input UpdateIncidentInput) (*domain.Incident, error)
	ChangeStatus(ctx context.Context, id uuid.UUID, status domain.Status) (*domain.Incident, error)
	// Close moves the incident to CLOSED. Incidents are never deleted.
	Close(ctx context.Context, id uuid.UUID) (*domain.Incident, error)
}

// CommentUseCase defines comment operations. Changing or deleting a comment is
// reserved to its author and to admins.
type CommentUseCase interface {
	List(ctx context.Context, incidentID uuid.UUID) ([]*domain.Comment, error)
	Add(ctx context.Context, actor *authDomain.Principal, incidentID uuid.UUID, content string) (*domain.Comment, error)
	Edit(
		ctx context.Context,
		actor *authDomain.Principal,
		incidentID, commentID uuid.UUID,
		content string,
	) (*domain.Comment, error)
	Delete(ctx context.Context, actor *authDomain.Principal, incidentID, commentID uuid.UUID) error
}
