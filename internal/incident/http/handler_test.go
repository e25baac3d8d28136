package http

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	authDomain "github.com/allisson/incidenthub/internal/auth/domain"
	authHTTP "github.com/allisson/incidenthub/internal/auth/http"
	"github.com/allisson/incidenthub/internal/httputil"
	"github.com/allisson/incidenthub/internal/incident/domain"
	"github.com/allisson/incidenthub/internal/incident/http/dto"
	"github.com/allisson/incidenthub/internal/incident/usecase"
	"github.com/allisson/incidenthub/internal/incident/usecase/mocks"
	userDomain "github.com/allisson/incidenthub/internal/user/domain"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newContext(method, path string, body any, actor *authDomain.Principal) (*gin.Context, *httptest.ResponseRecorder) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		reader = bytes.NewBufferString(b)
	default:
		raw, _ := json.Marshal(b)
		reader = bytes.NewReader(raw)
	}
	c.Request = httptest.NewRequest(method, path, reader)
	c.Request.Header.Set("Content-Type", "application/json")
	if actor != nil {
		c.Request = c.Request.WithContext(authHTTP.WithPrincipal(c.Request.Context(), actor))
	}
	return c, w
}

func sampleIncident() *domain.Incident {
	now := time.Now().UTC()
	return &domain.Incident{
		ID:          uuid.Must(uuid.NewV7()),
		Title:       "Database down",
		Description: "Primary database is not accepting connections",
		Severity:    domain.SeverityHigh,
		Status:      domain.StatusOpen,
		CreatedBy:   userDomain.Summary{ID: uuid.Must(uuid.NewV7()), Name: "Rita", Role: userDomain.RoleResponder},
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

func responder() *authDomain.Principal {
	return &authDomain.Principal{UserID: uuid.Must(uuid.NewV7()), Role: userDomain.RoleResponder}
}

func TestIncidentHandler_List(t *testing.T) {
	t.Run("passes filters and pagination", func(t *testing.T) {
		useCase := &mocks.MockIncidentUseCase{}
		handler := NewIncidentHandler(useCase, discardLogger())
		c, w := newContext(http.MethodGet, "/api/incidents?status=OPEN&severity=HIGH&page=2&limit=5", nil, responder())

		incident := sampleIncident()
		useCase.On("List", mock.Anything, usecase.ListIncidentsInput{
			Status: domain.StatusOpen, Severity: domain.SeverityHigh, Page: 2, Limit: 5,
		}).Return(&usecase.IncidentPage{Incidents: []*domain.Incident{incident}, Total: 6, Page: 2, Limit: 5}, nil)

		handler.ListHandler(c)

		require.Equal(t, http.StatusOK, w.Code)
		var resp dto.ListIncidentsResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, int64(6), resp.Total)
		assert.Equal(t, 2, resp.Page)
		require.Len(t, resp.Incidents, 1)
		assert.Equal(t, incident.ID, resp.Incidents[0].ID)
		assert.Nil(t, resp.Incidents[0].AssignedTo)
	})

	t.Run("limit above maximum", func(t *testing.T) {
		useCase := &mocks.MockIncidentUseCase{}
		handler := NewIncidentHandler(useCase, discardLogger())
		c, w := newContext(http.MethodGet, "/api/incidents?limit=500", nil, responder())

		handler.ListHandler(c)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		useCase.AssertNotCalled(t, "List", mock.Anything, mock.Anything)
	})
}

func TestIncidentHandler_Get(t *testing.T) {
	t.Run("not found", func(t *testing.T) {
		useCase := &mocks.MockIncidentUseCase{}
		handler := NewIncidentHandler(useCase, discardLogger())
		id := uuid.Must(uuid.NewV7())
		c, w := newContext(http.MethodGet, "/api/incidents/"+id.String(), nil, responder())
		c.Params = gin.Params{{Key: "id", Value: id.String()}}

		useCase.On("Get", mock.Anything, id).Return(nil, domain.ErrIncidentNotFound)

		handler.GetHandler(c)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("bad id", func(t *testing.T) {
		handler := NewIncidentHandler(&mocks.MockIncidentUseCase{}, discardLogger())
		c, w := newContext(http.MethodGet, "/api/incidents/nope", nil, responder())
		c.Params = gin.Params{{Key: "id", Value: "nope"}}

		handler.GetHandler(c)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestIncidentHandler_Create(t *testing.T) {
	t.Run("created", func(t *testing.T) {
		useCase := &mocks.MockIncidentUseCase{}
		handler := NewIncidentHandler(useCase, discardLogger())
		actor := responder()
		c, w := newContext(http.MethodPost, "/api/incidents", dto.CreateIncidentRequest{
			Title: "Database down", Description: "Primary database is not accepting connections", Severity: "HIGH",
		}, actor)

		incident := sampleIncident()
		useCase.On("Create", mock.Anything, actor, usecase.CreateIncidentInput{
			Title:       "Database down",
			Description: "Primary database is not accepting connections",
			Severity:    domain.SeverityHigh,
		}).Return(incident, nil)

		handler.CreateHandler(c)

		require.Equal(t, http.StatusCreated, w.Code)
		var resp dto.IncidentResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, incident.ID, resp.ID)
		assert.Equal(t, "Rita", resp.CreatedBy.Name)

		entityID, ok := httputil.EntityID(c)
		assert.True(t, ok)
		assert.Equal(t, incident.ID, entityID)
	})

	t.Run("malformed json", func(t *testing.T) {
		handler := NewIncidentHandler(&mocks.MockIncidentUseCase{}, discardLogger())
		c, w := newContext(http.MethodPost, "/api/incidents", "{", responder())

		handler.CreateHandler(c)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("missing fields", func(t *testing.T) {
		handler := NewIncidentHandler(&mocks.MockIncidentUseCase{}, discardLogger())
		c, w := newContext(http.MethodPost, "/api/incidents", map[string]string{}, responder())

		handler.CreateHandler(c)

		require.Equal(t, http.StatusUnprocessableEntity, w.Code)
		var resp httputil.ErrorResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, "validation_error", resp.Error)
		assert.Contains(t, resp.Details, "title")
	})

	t.Run("without principal", func(t *testing.T) {
		handler := NewIncidentHandler(&mocks.MockIncidentUseCase{}, discardLogger())
		c, w := newContext(http.MethodPost, "/api/incidents", map[string]string{}, nil)

		handler.CreateHandler(c)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

func TestIncidentHandler_Update(t *testing.T) {
	useCase := &mocks.MockIncidentUseCase{}
	handler := NewIncidentHandler(useCase, discardLogger())
	incident := sampleIncident()
	c, w := newContext(http.MethodPatch, "/api/incidents/"+incident.ID.String(),
		`{"title":"Database degraded","assignedToId":null}`, responder())
	c.Params = gin.Params{{Key: "id", Value: incident.ID.String()}}

	title := "Database degraded"
	useCase.On("Update", mock.Anything, incident.ID, usecase.UpdateIncidentInput{Title: &title, Unassign: true}).
		Return(incident, nil)

	handler.UpdateHandler(c)

	assert.Equal(t, http.StatusOK, w.Code)
	useCase.AssertExpectations(t)
}

func TestIncidentHandler_ChangeStatus(t *testing.T) {
	t.Run("invalid status from use case", func(t *testing.T) {
		useCase := &mocks.MockIncidentUseCase{}
		handler := NewIncidentHandler(useCase, discardLogger())
		id := uuid.Must(uuid.NewV7())
		c, w := newContext(http.MethodPatch, "/", dto.ChangeStatusRequest{Status: "DONE"}, responder())
		c.Params = gin.Params{{Key: "id", Value: id.String()}}

		useCase.On("ChangeStatus", mock.Anything, id, domain.Status("DONE")).
			Return(nil, domain.ErrIncidentNotFound)

		handler.ChangeStatusHandler(c)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("resolved", func(t *testing.T) {
		useCase := &mocks.MockIncidentUseCase{}
		handler := NewIncidentHandler(useCase, discardLogger())
		incident := sampleIncident()
		incident.Status = domain.StatusResolved
		c, w := newContext(http.MethodPatch, "/", dto.ChangeStatusRequest{Status: "RESOLVED"}, responder())
		c.Params = gin.Params{{Key: "id", Value: incident.ID.String()}}

		useCase.On("ChangeStatus", mock.Anything, incident.ID, domain.StatusResolved).Return(incident, nil)

		handler.ChangeStatusHandler(c)

		require.Equal(t, http.StatusOK, w.Code)
		var resp dto.IncidentResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, "RESOLVED", resp.Status)
	})
}

func TestIncidentHandler_Close(t *testing.T) {
	useCase := &mocks.MockIncidentUseCase{}
	handler := NewIncidentHandler(useCase, discardLogger())
	incident := sampleIncident()
	incident.Status = domain.StatusClosed
	c, w := newContext(http.MethodDelete, "/", nil, responder())
	c.Params = gin.Params{{Key: "id", Value: incident.ID.String()}}

	useCase.On("Close", mock.Anything, incident.ID).Return(incident, nil)

	handler.CloseHandler(c)

	require.Equal(t, http.StatusOK, w.Code)
	var resp dto.CloseIncidentResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "Incident closed", resp.Message)
	assert.Equal(t, "CLOSED", resp.Incident.Status)
}

func TestCommentHandler(t *testing.T) {
	incidentID := uuid.Must(uuid.NewV7())
	actor := responder()
	comment := &domain.Comment{
		ID:         uuid.Must(uuid.NewV7()),
		IncidentID: incidentID,
		Content:    "looking into it",
		User:       userDomain.Summary{ID: actor.UserID, Role: actor.Role},
	}

	t.Run("create", func(t *testing.T) {
		useCase := &mocks.MockCommentUseCase{}
		handler := NewCommentHandler(useCase, discardLogger())
		c, w := newContext(http.MethodPost, "/", dto.CommentRequest{Content: "looking into it"}, actor)
		c.Params = gin.Params{{Key: "id", Value: incidentID.String()}}

		useCase.On("Add", mock.Anything, actor, incidentID, "looking into it").Return(comment, nil)

		handler.CreateHandler(c)

		require.Equal(t, http.StatusCreated, w.Code)
		entityID, _ := httputil.EntityID(c)
		assert.Equal(t, comment.ID, entityID)
	})

	t.Run("list", func(t *testing.T) {
		useCase := &mocks.MockCommentUseCase{}
		handler := NewCommentHandler(useCase, discardLogger())
		c, w := newContext(http.MethodGet, "/", nil, actor)
		c.Params = gin.Params{{Key: "id", Value: incidentID.String()}}

		useCase.On("List", mock.Anything, incidentID).Return([]*domain.Comment{comment}, nil)

		handler.ListHandler(c)

		require.Equal(t, http.StatusOK, w.Code)
		var resp dto.ListCommentsResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		require.Len(t, resp.Comments, 1)
		assert.Equal(t, "looking into it", resp.Comments[0].Content)
	})

	t.Run("edit by someone else", func(t *testing.T) {
		useCase := &mocks.MockCommentUseCase{}
		handler := NewCommentHandler(useCase, discardLogger())
		c, w := newContext(http.MethodPatch, "/", dto.CommentRequest{Content: "mine now"}, actor)
		c.Params = gin.Params{
			{Key: "id", Value: incidentID.String()},
			{Key: "commentId", Value: comment.ID.String()},
		}

		useCase.On("Edit", mock.Anything, actor, incidentID, comment.ID, "mine now").
			Return(nil, domain.ErrNotCommentAuthor)

		handler.UpdateHandler(c)

		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("delete", func(t *testing.T) {
		useCase := &mocks.MockCommentUseCase{}
		handler := NewCommentHandler(useCase, discardLogger())
		c, w := newContext(http.MethodDelete, "/", nil, actor)
		c.Params = gin.Params{
			{Key: "id", Value: incidentID.String()},
			{Key: "commentId", Value: comment.ID.String()},
		}

		useCase.On("Delete", mock.Anything, actor, incidentID, comment.ID).Return(nil)

		handler.DeleteHandler(c)

		require.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"message":"Comment deleted"}`, w.Body.String())
	})

	t.Run("bad comment id", func(t *testing.T) {
		handler := NewCommentHandler(&mocks.MockCommentUseCase{}, discardLogger())
		c, w := newContext(http.MethodDelete, "/", nil, actor)
		c.Params = gin.Params{
			{Key: "id", Value: incidentID.String()},
			{Key: "commentId", Value: "x"},
		}

		handler.DeleteHandler(c)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}
