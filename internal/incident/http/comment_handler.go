package http

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/allisson/incidenthub/internal/httputil"
	"github.com/allisson/incidenthub/internal/incident/http/dto"
	"github.com/allisson/incidenthub/internal/incident/usecase"
)

// CommentHandler handles comment HTTP requests nested under an incident.
type CommentHandler struct {
	useCase usecase.CommentUseCase
	logger  *slog.Logger
}

// NewCommentHandler creates a new CommentHandler.
func NewCommentHandler(useCase usecase.CommentUseCase, logger *slog.Logger) *CommentHandler {
	return &CommentHandler{useCase: useCase, logger: logger}
}

// ListHandler returns the comments of an incident, oldest first.
// GET /api/incidents/:id/comments
func (h *CommentHandler) ListHandler(c *gin.Context) {
	incidentID, ok := parseID(c, "id", h.logger)
	if !ok {
		return
	}

	comments, err := h.useCase.List(c.Request.Context(), incidentID)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.ToListCommentsResponse(comments))
}

// CreateHandler adds a comment.
// POST /api/incidents/:id/comments
func (h *CommentHandler) CreateHandler(c *gin.Context) {
	actor, ok := principal(c, h.logger)
	if !ok {
		return
	}
	incidentID, ok := parseID(c, "id", h.logger)
	if !ok {
		return
	}

	var req dto.CommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}
	if err := req.Validate(); err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	comment, err := h.useCase.Add(c.Request.Context(), actor, incidentID, req.Content)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	httputil.SetEntityID(c, comment.ID)
	c.JSON(http.StatusCreated, dto.ToCommentResponse(comment))
}

// UpdateHandler edits a comment.
// PATCH /api/incidents/:id/comments/:commentId - author or ADMIN.
func (h *CommentHandler) UpdateHandler(c *gin.Context) {
	actor, ok := principal(c, h.logger)
	if !ok {
		return
	}
	incidentID, ok := parseID(c, "id", h.logger)
	if !ok {
		return
	}
	commentID, ok := parseID(c, "commentId", h.logger)
	if !ok {
		return
	}

	var req dto.CommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}
	if err := req.Validate(); err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	httputil.SetEntityID(c, commentID)
	comment, err := h.useCase.Edit(c.Request.Context(), actor, incidentID, commentID, req.Content)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.ToCommentResponse(comment))
}

// DeleteHandler removes a comment.
// DELETE /api/incidents/:id/comments/:commentId - author or ADMIN.
func (h *CommentHandler) DeleteHandler(c *gin.Context) {
	actor, ok := principal(c, h.logger)
	if !ok {
		return
	}
	incidentID, ok := parseID(c, "id", h.logger)
	if !ok {
		return
	}
	commentID, ok := parseID(c, "commentId", h.logger)
	if !ok {
		return
	}

	httputil.SetEntityID(c, commentID)
	if err := h.useCase.Delete(c.Request.Context(), actor, incidentID, commentID); err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MessageResponse{Message: "Comment deleted"})
}
