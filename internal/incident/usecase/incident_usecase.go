package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	validation "github.com/jellydator/validation"

	authDomain "github.com/allisson/incidenthub/internal/auth/domain"
	apperrors "github.com/allisson/incidenthub/internal/errors"
	"github.com/allisson/incidenthub/internal/incident/domain"
	"github.com/allisson/incidenthub/internal/realtime"
	userDomain "github.com/allisson/incidenthub/internal/user/domain"
	appValidation "github.com/allisson/incidenthub/internal/validation"
)

const severityMessage = "must be one of LOW, MEDIUM, HIGH, CRITICAL"
const statusMessage = "must be one of OPEN, IN_PROGRESS, RESOLVED, CLOSED"

type incidentUseCase struct {
	incidents IncidentRepository
	users     UserLookup
	mutator   realtime.Mutator
}

// NewIncidentUseCase creates an IncidentUseCase.
func NewIncidentUseCase(incidents IncidentRepository, users UserLookup, mutator realtime.Mutator) IncidentUseCase {
	return &incidentUseCase{
		incidents: incidents,
		users:     users,
		mutator:   mutator,
	}
}

func titleRules() []validation.Rule {
	return []validation.Rule{
		appValidation.NotBlank,
		validation.Length(3, 200).Error("title must be between 3 and 200 characters"),
	}
}

func descriptionRules() []validation.Rule {
	return []validation.Rule{
		appValidation.NotBlank,
		validation.Length(10, 0).Error("description must be at least 10 characters"),
	}
}

func (uc *incidentUseCase) Create(
	ctx context.Context,
	actor *authDomain.Principal,
	input CreateIncidentInput,
) (*domain.Incident, error) {
	input.Title = strings.TrimSpace(input.Title)
	input.Description = strings.TrimSpace(input.Description)
	if input.Severity == "" {
		input.Severity = domain.SeverityMedium
	}

	err := validation.ValidateStruct(&input,
		validation.Field(&input.Title, append([]validation.Rule{validation.Required.Error("title is required")}, titleRules()...)...),
		validation.Field(&input.Description,
			append([]validation.Rule{validation.Required.Error("description is required")}, descriptionRules()...)...),
	)
	if err != nil {
		return nil, appValidation.WrapValidationError(err)
	}
	if !input.Severity.Valid() {
		return nil, appValidation.FieldError("severity", severityMessage)
	}

	now := time.Now().UTC()
	incident := &domain.Incident{
		ID:          uuid.Must(uuid.NewV7()),
		Title:       input.Title,
		Description: input.Description,
		Severity:    input.Severity,
		Status:      domain.StatusOpen,
		CreatedBy:   userDomain.Summary{ID: actor.UserID},
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	var created *domain.Incident
	err = uc.mutator.Execute(ctx,
		func(ctx context.Context) error {
			if input.AssignedToID != nil {
				assignee, err := uc.assignee(ctx, *input.AssignedToID)
				if err != nil {
					return err
				}
				incident.AssignedTo = assignee
			}
			if err := uc.incidents.Create(ctx, incident); err != nil {
				return err
			}
			created, err = uc.incidents.GetByID(ctx, incident.ID)
			return err
		},
		func() realtime.Fact {
			return realtime.NewFact(realtime.EventIncidentCreated, realtime.EntityIncident, created.ID, created)
		},
	)
	if err != nil {
		return nil, err
	}
	return created, nil
}

func (uc *incidentUseCase) assignee(ctx context.Context, id uuid.UUID) (*userDomain.Summary, error) {
	user, err := uc.users.GetUserByID(ctx, id)
	if err != nil {
		if apperrors.Is(err, apperrors.ErrNotFound) {
			return nil, domain.ErrAssigneeNotFound
		}
		return nil, err
	}
	summary := user.Summary()
	return &summary, nil
}

func (uc *incidentUseCase) Get(ctx context.Context, id uuid.UUID) (*domain.Incident, error) {
	return uc.incidents.GetByID(ctx, id)
}

func (uc *incidentUseCase) List(ctx context.Context, input ListIncidentsInput) (*IncidentPage, error) {
	if input.Status != "" && !input.Status.Valid() {
		return nil, appValidation.FieldError("status", statusMessage)
	}
	if input.Severity != "" && !input.Severity.Valid() {
		return nil, appValidation.FieldError("severity", severityMessage)
	}
	if input.Page < 1 {
		input.Page = 1
	}
	if input.Limit < 1 {
		input.Limit = 20
	}

	incidents, total, err := uc.incidents.List(ctx, domain.ListFilter{
		Status:   input.Status,
		Severity: input.Severity,
		Offset:   (input.Page - 1) * input.Limit,
		Limit:    input.Limit,
	})
	if err != nil {
		return nil, err
	}
	return &IncidentPage{Incidents: incidents, Total: total, Page: input.Page, Limit: input.Limit}, nil
}

func (uc *incidentUseCase) validateUpdate(input *UpdateIncidentInput) error {
	if input.Title != nil {
		title := strings.TrimSpace(*input.Title)
		input.Title = &title
	}
	if input.Description != nil {
		description := strings.TrimSpace(*input.Description)
		input.Description = &description
	}

	err := validation.ValidateStruct(input,
		validation.Field(&input.Title, validation.NilOrNotEmpty.Error("title cannot be blank"),
			validation.When(input.Title != nil, titleRules()...)),
		validation.Field(&input.Description, validation.NilOrNotEmpty.Error("description cannot be blank"),
			validation.When(input.Description != nil, descriptionRules()...)),
	)
	if err != nil {
		return appValidation.WrapValidationError(err)
	}
	if input.Severity != nil && !input.Severity.Valid() {
		return appValidation.FieldError("severity", severityMessage)
	}
	return nil
}

func (uc *incidentUseCase) Update(
	ctx context.Context,
	id uuid.UUID,
	input UpdateIncidentInput,
) (*domain.Incident, error) {
	if err := uc.validateUpdate(&input); err != nil {
		return nil, err
	}

	var updated *domain.Incident
	previous := map[string]any{}

	err := uc.mutator.Execute(ctx,
		func(ctx context.Context) error {
			incident, err := uc.incidents.GetByID(ctx, id)
			if err != nil {
				return err
			}

			if input.Title != nil && *input.Title != incident.Title {
				previous["title"] = incident.Title
				incident.Title = *input.Title
			}
			if input.Description != nil && *input.Description != incident.Description {
				previous["description"] = incident.Description
				incident.Description = *input.Description
			}
			if input.Severity != nil && *input.Severity != incident.Severity {
				previous["severity"] = incident.Severity
				incident.Severity = *input.Severity
			}
			switch {
			case input.Unassign:
				if incident.AssignedTo != nil {
					previous["assignedTo"] = incident.AssignedTo
				}
				incident.AssignedTo = nil
			case input.AssignedToID != nil:
				assignee, err := uc.assignee(ctx, *input.AssignedToID)
				if err != nil {
					return err
				}
				if incident.AssignedTo == nil || incident.AssignedTo.ID != assignee.ID {
					previous["assignedTo"] = incident.AssignedTo
				}
				incident.AssignedTo = assignee
			}

			incident.UpdatedAt = time.Now().UTC()
			if err := uc.incidents.Update(ctx, incident); err != nil {
				return err
			}
			updated = incident
			return nil
		},
		func() realtime.Fact {
			return realtime.NewFact(realtime.EventIncidentUpdated, realtime.EntityIncident, id, updated).
				WithPrevious(previous)
		},
	)
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (uc *incidentUseCase) ChangeStatus(
	ctx context.Context,
	id uuid.UUID,
	status domain.Status,
) (*domain.Incident, error) {
	if !status.Valid() {
		return nil, appValidation.FieldError("status", statusMessage)
	}
	return uc.setStatus(ctx, id, status)
}

func (uc *incidentUseCase) Close(ctx context.Context, id uuid.UUID) (*domain.Incident, error) {
	return uc.setStatus(ctx, id, domain.StatusClosed)
}

// setStatus moves an incident to status and announces the status it left.
func (uc *incidentUseCase) setStatus(
	ctx context.Context,
	id uuid.UUID,
	status domain.Status,
) (*domain.Incident, error) {
	var updated *domain.Incident
	var previous domain.Status

	err := uc.mutator.Execute(ctx,
		func(ctx context.Context) error {
			incident, err := uc.incidents.GetByID(ctx, id)
			if err != nil {
				return err
			}
			previous = incident.Status

			incident.Status = status
			incident.UpdatedAt = time.Now().UTC()
			if err := uc.incidents.Update(ctx, incident); err != nil {
				return err
			}
			updated = incident
			return nil
		},
		func() realtime.Fact {
			return realtime.NewFact(realtime.EventIncidentUpdated, realtime.EntityIncident, id, updated).
				WithPrevious(map[string]any{"status": previous})
		},
	)
	if err != nil {
		return nil, err
	}
	return updated, nil
}
