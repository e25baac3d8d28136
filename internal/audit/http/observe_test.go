package http

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/allisson/incidenthub/internal/audit/domain"
	"github.com/allisson/incidenthub/internal/audit/usecase"
	"github.com/allisson/incidenthub/internal/audit/usecase/mocks"
	authDomain "github.com/allisson/incidenthub/internal/auth/domain"
	authHTTP "github.com/allisson/incidenthub/internal/auth/http"
	"github.com/allisson/incidenthub/internal/httputil"
	userDomain "github.com/allisson/incidenthub/internal/user/domain"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func withPrincipal(principal *authDomain.Principal) gin.HandlerFunc {
	return func(c *gin.Context) {
		if principal != nil {
			c.Request = c.Request.WithContext(authHTTP.WithPrincipal(c.Request.Context(), principal))
		}
		c.Next()
	}
}

func TestObserve(t *testing.T) {
	gin.SetMode(gin.TestMode)
	actor := &authDomain.Principal{UserID: uuid.Must(uuid.NewV7()), Role: userDomain.RoleResponder}
	createdID := uuid.Must(uuid.NewV7())

	newRouter := func(recorder usecase.Recorder, principal *authDomain.Principal, status int) *gin.Engine {
		router := gin.New()
		router.Use(requestid.New())
		router.POST("/api/incidents", withPrincipal(principal), Observe(recorder, domain.ActionCreate, "Incident"),
			func(c *gin.Context) {
				var body map[string]any
				if err := c.ShouldBindJSON(&body); err != nil {
					c.Status(http.StatusBadRequest)
					return
				}
				httputil.SetEntityID(c, createdID)
				c.JSON(status, body)
			})
		router.DELETE("/api/incidents/:id", withPrincipal(principal), Observe(recorder, domain.ActionDelete, "Incident"),
			func(c *gin.Context) {
				c.JSON(http.StatusOK, gin.H{"message": "Incident closed"})
			})
		return router
	}

	t.Run("records created entity with request body", func(t *testing.T) {
		recorder := &mocks.MockRecorder{}
		router := newRouter(recorder, actor, http.StatusCreated)

		recorder.On("Record", mock.Anything, mock.MatchedBy(func(input usecase.RecordInput) bool {
			body, _ := input.Metadata["body"].(map[string]any)
			return input.Action == domain.ActionCreate &&
				input.EntityType == "Incident" &&
				input.EntityID == createdID &&
				input.UserID == actor.UserID &&
				input.Metadata["method"] == http.MethodPost &&
				input.Metadata["path"] == "/api/incidents" &&
				input.Metadata["requestId"] != nil &&
				body["title"] == "Database down"
		})).Return()

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/api/incidents", bytes.NewBufferString(`{"title":"Database down"}`))
		req.Header.Set("Content-Type", "application/json")
		router.ServeHTTP(w, req)

		require.Equal(t, http.StatusCreated, w.Code)
		var echoed map[string]any
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &echoed))
		assert.Equal(t, "Database down", echoed["title"])
		recorder.AssertExpectations(t)
	})

	t.Run("falls back to path id", func(t *testing.T) {
		recorder := &mocks.MockRecorder{}
		router := newRouter(recorder, actor, http.StatusOK)
		id := uuid.Must(uuid.NewV7())

		recorder.On("Record", mock.Anything, mock.MatchedBy(func(input usecase.RecordInput) bool {
			_, hasBody := input.Metadata["body"]
			return input.Action == domain.ActionDelete && input.EntityID == id && !hasBody
		})).Return()

		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodDelete, "/api/incidents/"+id.String(), nil))

		assert.Equal(t, http.StatusOK, w.Code)
		recorder.AssertExpectations(t)
	})

	t.Run("skips failed responses", func(t *testing.T) {
		recorder := &mocks.MockRecorder{}
		router := newRouter(recorder, actor, http.StatusCreated)

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/api/incidents", bytes.NewBufferString(`{`))
		req.Header.Set("Content-Type", "application/json")
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		recorder.AssertNotCalled(t, "Record", mock.Anything, mock.Anything)
	})

	t.Run("skips anonymous callers", func(t *testing.T) {
		recorder := &mocks.MockRecorder{}
		router := newRouter(recorder, nil, http.StatusCreated)

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/api/incidents", bytes.NewBufferString(`{}`))
		req.Header.Set("Content-Type", "application/json")
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusCreated, w.Code)
		recorder.AssertNotCalled(t, "Record", mock.Anything, mock.Anything)
	})
}
