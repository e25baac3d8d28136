package repository

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/allisson/incidenthub/internal/incident/domain"
	"github.com/allisson/incidenthub/internal/testutil"
	userDomain "github.com/allisson/incidenthub/internal/user/domain"
)

func newTestComment(incidentID, userID uuid.UUID, content string, createdAt time.Time) *domain.Comment {
	return &domain.Comment{
		ID:         uuid.Must(uuid.NewV7()),
		IncidentID: incidentID,
		Content:    content,
		User:       userDomain.Summary{ID: userID},
		CreatedAt:  createdAt,
		UpdatedAt:  createdAt,
	}
}

func TestPostgreSQLCommentRepository(t *testing.T) {
	db := testutil.SetupSQLiteDB(t)
	repo := NewPostgreSQLCommentRepository(db)
	ctx := context.Background()

	authorID := testutil.CreateTestUser(t, db, "viewer@example.com", "VIEWER")
	incident := newTestIncident(authorID, "Database down", domain.SeverityHigh, time.Now().UTC())
	seedIncident(t, db, incident)
	other := newTestIncident(authorID, "Other", domain.SeverityLow, time.Now().UTC())
	seedIncident(t, db, other)

	base := time.Now().UTC().Add(-time.Hour)
	older := newTestComment(incident.ID, authorID, "looking into it", base)
	newer := newTestComment(incident.ID, authorID, "fixed", base.Add(time.Minute))
	elsewhere := newTestComment(other.ID, authorID, "unrelated", base)
	for _, c := range []*domain.Comment{newer, older, elsewhere} {
		require.NoError(t, repo.Create(ctx, c))
	}

	t.Run("list oldest first", func(t *testing.T) {
		comments, err := repo.ListByIncident(ctx, incident.ID)
		require.NoError(t, err)
		require.Len(t, comments, 2)
		assert.Equal(t, older.ID, comments[0].ID)
		assert.Equal(t, newer.ID, comments[1].ID)
		assert.Equal(t, "viewer@example.com", comments[0].User.Email)
		assert.Equal(t, userDomain.RoleViewer, comments[0].User.Role)
	})

	t.Run("get scoped to incident", func(t *testing.T) {
		got, err := repo.GetByID(ctx, incident.ID, older.ID)
		require.NoError(t, err)
		assert.Equal(t, "looking into it", got.Content)
		assert.Equal(t, incident.ID, got.IncidentID)

		_, err = repo.GetByID(ctx, other.ID, older.ID)
		assert.ErrorIs(t, err, domain.ErrCommentNotFound)
	})

	t.Run("update", func(t *testing.T) {
		older.Content = "root cause found"
		older.UpdatedAt = time.Now().UTC()
		require.NoError(t, repo.Update(ctx, older))

		got, err := repo.GetByID(ctx, incident.ID, older.ID)
		require.NoError(t, err)
		assert.Equal(t, "root cause found", got.Content)
	})

	t.Run("delete", func(t *testing.T) {
		require.NoError(t, repo.Delete(ctx, newer.ID))
		assert.ErrorIs(t, repo.Delete(ctx, newer.ID), domain.ErrCommentNotFound)

		comments, err := repo.ListByIncident(ctx, incident.ID)
		require.NoError(t, err)
		assert.Len(t, comments, 1)
	})
}
