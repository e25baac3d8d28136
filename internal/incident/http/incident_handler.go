// Package http provides the incident and comment endpoints.
package http

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	authDomain "github.com/allisson/incidenthub/internal/auth/domain"
	authHTTP "github.com/allisson/incidenthub/internal/auth/http"
	"github.com/allisson/incidenthub/internal/httputil"
	"github.com/allisson/incidenthub/internal/incident/domain"
	"github.com/allisson/incidenthub/internal/incident/http/dto"
	"github.com/allisson/incidenthub/internal/incident/usecase"
)

const defaultIncidentPageSize = 20

// IncidentHandler handles incident HTTP requests.
type IncidentHandler struct {
	useCase usecase.IncidentUseCase
	logger  *slog.Logger
}

// NewIncidentHandler creates a new IncidentHandler.
func NewIncidentHandler(useCase usecase.IncidentUseCase, logger *slog.Logger) *IncidentHandler {
	return &IncidentHandler{useCase: useCase, logger: logger}
}

// parseID reads a UUID path parameter, writing a 400 response when it is malformed.
func parseID(c *gin.Context, name string, logger *slog.Logger) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		httputil.HandleBadRequestGin(c, fmt.Errorf("invalid %s format: must be a valid UUID", name), logger)
		return uuid.Nil, false
	}
	return id, true
}

// principal returns the authenticated caller, writing a 401 response when absent.
func principal(c *gin.Context, logger *slog.Logger) (*authDomain.Principal, bool) {
	p, ok := authHTTP.GetPrincipal(c.Request.Context())
	if !ok {
		httputil.HandleErrorGin(c, authDomain.ErrMissingToken, logger)
		return nil, false
	}
	return p, true
}

// ListHandler returns one page of incidents, newest first.
// GET /api/incidents?status=&severity=&page=&limit=
func (h *IncidentHandler) ListHandler(c *gin.Context) {
	page, err := httputil.ParsePagination(c, defaultIncidentPageSize)
	if err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}

	result, err := h.useCase.List(c.Request.Context(), usecase.ListIncidentsInput{
		Status:   domain.Status(c.Query("status")),
		Severity: domain.Severity(c.Query("severity")),
		Page:     page.Page,
		Limit:    page.Limit,
	})
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.ToListIncidentsResponse(result))
}

// GetHandler returns one incident.
// GET /api/incidents/:id
func (h *IncidentHandler) GetHandler(c *gin.Context) {
	id, ok := parseID(c, "id", h.logger)
	if !ok {
		return
	}

	incident, err := h.useCase.Get(c.Request.Context(), id)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.ToIncidentResponse(incident))
}

// CreateHandler opens a new incident.
// POST /api/incidents - ADMIN, RESPONDER.
func (h *IncidentHandler) CreateHandler(c *gin.Context) {
	actor, ok := principal(c, h.logger)
	if !ok {
		return
	}

	var req dto.CreateIncidentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}
	if err := req.Validate(); err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	incident, err := h.useCase.Create(c.Request.Context(), actor, req.ToInput())
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	httputil.SetEntityID(c, incident.ID)
	c.JSON(http.StatusCreated, dto.ToIncidentResponse(incident))
}

// UpdateHandler applies a partial update.
// PATCH /api/incidents/:id - ADMIN, RESPONDER.
func (h *IncidentHandler) UpdateHandler(c *gin.Context) {
	id, ok := parseID(c, "id", h.logger)
	if !ok {
		return
	}

	var req dto.UpdateIncidentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}
	if err := req.Validate(); err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	incident, err := h.useCase.Update(c.Request.Context(), id, req.ToInput())
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.ToIncidentResponse(incident))
}

// ChangeStatusHandler moves an incident to another status.
// PATCH /api/incidents/:id/status - ADMIN, RESPONDER.
func (h *IncidentHandler) ChangeStatusHandler(c *gin.Context) {
	id, ok := parseID(c, "id", h.logger)
	if !ok {
		return
	}

	var req dto.ChangeStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}
	if err := req.Validate(); err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	incident, err := h.useCase.ChangeStatus(c.Request.Context(), id, domain.Status(req.Status))
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.ToIncidentResponse(incident))
}

// CloseHandler closes an incident.
// DELETE /api/incidents/:id - ADMIN only.
func (h *IncidentHandler) CloseHandler(c *gin.Context) {
	id, ok := parseID(c, "id", h.logger)
	if !ok {
		return
	}

	incident, err := h.useCase.Close(c.Request.Context(), id)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.CloseIncidentResponse{
		Message:  "Incident closed",
		Incident: dto.ToIncidentResponse(incident),
	})
}
