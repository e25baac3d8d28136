package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	authDomain "github.com/allisson/incidenthub/internal/auth/domain"
	"github.com/allisson/incidenthub/internal/incident/domain"
	"github.com/allisson/incidenthub/internal/realtime"
	userDomain "github.com/allisson/incidenthub/internal/user/domain"
	appValidation "github.com/allisson/incidenthub/internal/validation"
)

type commentUseCase struct {
	incidents IncidentRepository
	comments  CommentRepository
	mutator   realtime.Mutator
}

// NewCommentUseCase creates a CommentUseCase.
func NewCommentUseCase(
	incidents IncidentRepository,
	comments CommentRepository,
	mutator realtime.Mutator,
) CommentUseCase {
	return &commentUseCase{
		incidents: incidents,
		comments:  comments,
		mutator:   mutator,
	}
}

func validateContent(content string) (string, error) {
	content = strings.TrimSpace(content)
	switch {
	case content == "":
		return "", appValidation.FieldError("content", "content is required")
	case len([]rune(content)) > 2000:
		return "", appValidation.FieldError("content", "content must be at most 2000 characters")
	}
	return content, nil
}

// canChange reports whether actor may edit or delete comment.
func canChange(actor *authDomain.Principal, comment *domain.Comment) bool {
	return comment.User.ID == actor.UserID || actor.Role == userDomain.RoleAdmin
}

func (uc *commentUseCase) List(ctx context.Context, incidentID uuid.UUID) ([]*domain.Comment, error) {
	if _, err := uc.incidents.GetByID(ctx, incidentID); err != nil {
		return nil, err
	}
	return uc.comments.ListByIncident(ctx, incidentID)
}

func (uc *commentUseCase) Add(
	ctx context.Context,
	actor *authDomain.Principal,
	incidentID uuid.UUID,
	content string,
) (*domain.Comment, error) {
	content, err := validateContent(content)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	comment := &domain.Comment{
		ID:         uuid.Must(uuid.NewV7()),
		IncidentID: incidentID,
		Content:    content,
		User:       userDomain.Summary{ID: actor.UserID},
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	var created *domain.Comment
	err = uc.mutator.Execute(ctx,
		func(ctx context.Context) error {
			if _, err := uc.incidents.GetByID(ctx, incidentID); err != nil {
				return err
			}
			if err := uc.comments.Create(ctx, comment); err != nil {
				return err
			}
			created, err = uc.comments.GetByID(ctx, incidentID, comment.ID)
			return err
		},
		func() realtime.Fact {
			return realtime.NewFact(realtime.EventCommentCreated, realtime.EntityComment, created.ID, created)
		},
	)
	if err != nil {
		return nil, err
	}
	return created, nil
}

func (uc *commentUseCase) Edit(
	ctx context.Context,
	actor *authDomain.Principal,
	incidentID, commentID uuid.UUID,
	content string,
) (*domain.Comment, error) {
	content, err := validateContent(content)
	if err != nil {
		return nil, err
	}

	var updated *domain.Comment
	var previous string

	err = uc.mutator.Execute(ctx,
		func(ctx context.Context) error {
			comment, err := uc.comments.GetByID(ctx, incidentID, commentID)
			if err != nil {
				return err
			}
			if !canChange(actor, comment) {
				return domain.ErrNotCommentAuthor
			}

			previous = comment.Content
			comment.Content = content
			comment.UpdatedAt = time.Now().UTC()
			if err := uc.comments.Update(ctx, comment); err != nil {
				return err
			}
			updated = comment
			return nil
		},
		func() realtime.Fact {
			return realtime.NewFact(realtime.EventCommentUpdated, realtime.EntityComment, commentID, updated).
				WithPrevious(map[string]any{"content": previous})
		},
	)
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (uc *commentUseCase) Delete(
	ctx context.Context,
	actor *authDomain.Principal,
	incidentID, commentID uuid.UUID,
) error {
	return uc.mutator.Execute(ctx,
		func(ctx context.Context) error {
			comment, err := uc.comments.GetByID(ctx, incidentID, commentID)
			if err != nil {
				return err
			}
			if !canChange(actor, comment) {
				return domain.ErrNotCommentAuthor
			}
			return uc.comments.Delete(ctx, commentID)
		},
		func() realtime.Fact {
			return realtime.NewFact(realtime.EventCommentDeleted, realtime.EntityComment, commentID,
				map[string]string{"id": commentID.String(), "incidentId": incidentID.String()})
		},
	)
}
