package http

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/allisson/incidenthub/internal/audit/http/dto"
	"github.com/allisson/incidenthub/internal/audit/usecase"
	"github.com/allisson/incidenthub/internal/httputil"
)

const defaultAuditPageSize = 50

// AuditHandler serves the audit listing.
type AuditHandler struct {
	useCase usecase.AuditUseCase
	logger  *slog.Logger
}

// NewAuditHandler creates a new AuditHandler.
func NewAuditHandler(useCase usecase.AuditUseCase, logger *slog.Logger) *AuditHandler {
	return &AuditHandler{useCase: useCase, logger: logger}
}

// ListHandler returns one page of audit records, newest first.
// GET /api/audit-logs?page=&limit=&entityType=&userId= - ADMIN only.
func (h *AuditHandler) ListHandler(c *gin.Context) {
	page, err := httputil.ParsePagination(c, defaultAuditPageSize)
	if err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}

	input := usecase.ListAuditInput{
		EntityType: c.Query("entityType"),
		Page:       page.Page,
		Limit:      page.Limit,
	}
	if raw := c.Query("userId"); raw != "" {
		userID, err := uuid.Parse(raw)
		if err != nil {
			httputil.HandleBadRequestGin(c, fmt.Errorf("invalid userId format: must be a valid UUID"), h.logger)
			return
		}
		input.UserID = &userID
	}

	result, err := h.useCase.List(c.Request.Context(), input)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.ToListAuditLogsResponse(result))
}
