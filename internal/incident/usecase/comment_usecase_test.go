package usecase_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	authDomain "github.com/allisson/incidenthub/internal/auth/domain"
	apperrors "github.com/allisson/incidenthub/internal/errors"
	"github.com/allisson/incidenthub/internal/incident/domain"
	"github.com/allisson/incidenthub/internal/incident/usecase"
	"github.com/allisson/incidenthub/internal/incident/usecase/mocks"
	"github.com/allisson/incidenthub/internal/realtime"
	realtimeMocks "github.com/allisson/incidenthub/internal/realtime/mocks"
	userDomain "github.com/allisson/incidenthub/internal/user/domain"
)

type commentFixture struct {
	incidents *mocks.MockIncidentRepository
	comments  *mocks.MockCommentRepository
	mutator   *realtimeMocks.MockMutator
	useCase   usecase.CommentUseCase
}

func newCommentFixture() *commentFixture {
	f := &commentFixture{
		incidents: &mocks.MockIncidentRepository{},
		comments:  &mocks.MockCommentRepository{},
		mutator:   &realtimeMocks.MockMutator{},
	}
	f.useCase = usecase.NewCommentUseCase(f.incidents, f.comments, f.mutator)
	return f
}

func commentBy(author *authDomain.Principal, incidentID uuid.UUID) *domain.Comment {
	now := time.Now().UTC()
	return &domain.Comment{
		ID:         uuid.Must(uuid.NewV7()),
		IncidentID: incidentID,
		Content:    "looking into it",
		User:       userDomain.Summary{ID: author.UserID, Role: author.Role},
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

func viewer() *authDomain.Principal {
	return &authDomain.Principal{UserID: uuid.Must(uuid.NewV7()), Role: userDomain.RoleViewer}
}

func admin() *authDomain.Principal {
	return &authDomain.Principal{UserID: uuid.Must(uuid.NewV7()), Role: userDomain.RoleAdmin}
}

func TestCommentUseCase_List(t *testing.T) {
	ctx := context.Background()

	t.Run("incident must exist", func(t *testing.T) {
		f := newCommentFixture()
		incidentID := uuid.Must(uuid.NewV7())
		f.incidents.On("GetByID", ctx, incidentID).Return(nil, domain.ErrIncidentNotFound)

		_, err := f.useCase.List(ctx, incidentID)

		assert.ErrorIs(t, err, domain.ErrIncidentNotFound)
		f.comments.AssertNotCalled(t, "ListByIncident", mock.Anything, mock.Anything)
	})

	t.Run("returns comments", func(t *testing.T) {
		f := newCommentFixture()
		incident := existingIncident(domain.StatusOpen)
		comments := []*domain.Comment{commentBy(viewer(), incident.ID)}
		f.incidents.On("GetByID", ctx, incident.ID).Return(incident, nil)
		f.comments.On("ListByIncident", ctx, incident.ID).Return(comments, nil)

		got, err := f.useCase.List(ctx, incident.ID)

		require.NoError(t, err)
		assert.Equal(t, comments, got)
	})
}

func TestCommentUseCase_Add(t *testing.T) {
	ctx := context.Background()

	t.Run("any role can comment", func(t *testing.T) {
		f := newCommentFixture()
		actor := viewer()
		incident := existingIncident(domain.StatusOpen)
		stored := commentBy(actor, incident.ID)

		f.mutator.On("Execute", ctx).Return(nil)
		f.incidents.On("GetByID", ctx, incident.ID).Return(incident, nil)
		f.comments.On("Create", ctx, mock.MatchedBy(func(c *domain.Comment) bool {
			return c.Content == "looking into it" && c.User.ID == actor.UserID && c.IncidentID == incident.ID
		})).Return(nil)
		f.comments.On("GetByID", ctx, incident.ID, mock.AnythingOfType("uuid.UUID")).Return(stored, nil)

		comment, err := f.useCase.Add(ctx, actor, incident.ID, " looking into it ")

		require.NoError(t, err)
		assert.Same(t, stored, comment)
		facts := f.mutator.Facts()
		require.Len(t, facts, 1)
		assert.Equal(t, realtime.EventCommentCreated, facts[0].Event)
		assert.Equal(t, realtime.EntityComment, facts[0].EntityType)
	})

	t.Run("content bounds", func(t *testing.T) {
		f := newCommentFixture()

		_, err := f.useCase.Add(ctx, viewer(), uuid.Must(uuid.NewV7()), "   ")
		assert.ErrorIs(t, err, apperrors.ErrInvalidInput)

		_, err = f.useCase.Add(ctx, viewer(), uuid.Must(uuid.NewV7()), strings.Repeat("x", 2001))
		assert.ErrorIs(t, err, apperrors.ErrInvalidInput)

		f.mutator.AssertNotCalled(t, "Execute", mock.Anything)
	})

	t.Run("unknown incident", func(t *testing.T) {
		f := newCommentFixture()
		incidentID := uuid.Must(uuid.NewV7())
		f.mutator.On("Execute", ctx).Return(nil)
		f.incidents.On("GetByID", ctx, incidentID).Return(nil, domain.ErrIncidentNotFound)

		_, err := f.useCase.Add(ctx, viewer(), incidentID, "hello")

		assert.ErrorIs(t, err, apperrors.ErrNotFound)
		assert.Empty(t, f.mutator.Facts())
	})
}

func TestCommentUseCase_Edit(t *testing.T) {
	ctx := context.Background()
	author := viewer()
	incidentID := uuid.Must(uuid.NewV7())

	tests := []struct {
		name    string
		actor   *authDomain.Principal
		wantErr error
	}{
		{name: "author", actor: author},
		{name: "admin", actor: admin()},
		{name: "someone else", actor: viewer(), wantErr: domain.ErrNotCommentAuthor},
		{
			name:    "responder who is not the author",
			actor:   &authDomain.Principal{UserID: uuid.Must(uuid.NewV7()), Role: userDomain.RoleResponder},
			wantErr: domain.ErrNotCommentAuthor,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newCommentFixture()
			comment := commentBy(author, incidentID)
			f.mutator.On("Execute", ctx).Return(nil)
			f.comments.On("GetByID", ctx, incidentID, comment.ID).Return(comment, nil)
			f.comments.On("Update", ctx, mock.Anything).Return(nil)

			updated, err := f.useCase.Edit(ctx, tt.actor, incidentID, comment.ID, "root cause found")

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.ErrorIs(t, err, apperrors.ErrForbidden)
				assert.Empty(t, f.mutator.Facts())
				f.comments.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "root cause found", updated.Content)
			facts := f.mutator.Facts()
			require.Len(t, facts, 1)
			assert.Equal(t, realtime.EventCommentUpdated, facts[0].Event)
			assert.Equal(t, "looking into it", facts[0].Previous["content"])
		})
	}
}

func TestCommentUseCase_Delete(t *testing.T) {
	ctx := context.Background()
	author := viewer()
	incidentID := uuid.Must(uuid.NewV7())

	t.Run("author deletes", func(t *testing.T) {
		f := newCommentFixture()
		comment := commentBy(author, incidentID)
		f.mutator.On("Execute", ctx).Return(nil)
		f.comments.On("GetByID", ctx, incidentID, comment.ID).Return(comment, nil)
		f.comments.On("Delete", ctx, comment.ID).Return(nil)

		require.NoError(t, f.useCase.Delete(ctx, author, incidentID, comment.ID))

		facts := f.mutator.Facts()
		require.Len(t, facts, 1)
		assert.Equal(t, realtime.EventCommentDeleted, facts[0].Event)
		assert.Equal(t, map[string]string{"id": comment.ID.String(), "incidentId": incidentID.String()}, facts[0].Data)
	})

	t.Run("someone else is forbidden", func(t *testing.T) {
		f := newCommentFixture()
		comment := commentBy(author, incidentID)
		f.mutator.On("Execute", ctx).Return(nil)
		f.comments.On("GetByID", ctx, incidentID, comment.ID).Return(comment, nil)

		err := f.useCase.Delete(ctx, viewer(), incidentID, comment.ID)

		assert.ErrorIs(t, err, domain.ErrNotCommentAuthor)
		f.comments.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
	})

	t.Run("missing comment", func(t *testing.T) {
		f := newCommentFixture()
		commentID := uuid.Must(uuid.NewV7())
		f.mutator.On("Execute", ctx).Return(nil)
		f.comments.On("GetByID", ctx, incidentID, commentID).Return(nil, domain.ErrCommentNotFound)

		err := f.useCase.Delete(ctx, admin(), incidentID, commentID)

		assert.ErrorIs(t, err, apperrors.ErrNotFound)
	})
}
