package dto

import (
	"time"

	"github.com/google/uuid"

	"github.com/allisson/incidenthub/internal/incident/domain"
	"github.com/allisson/incidenthub/internal/incident/usecase"
	userDomain "github.com/allisson/incidenthub/internal/user/domain"
)

// IncidentResponse is the API representation of an incident.
type IncidentResponse struct {
	ID          uuid.UUID           `json:"id"`
	Title       string              `json:"title"`
	Description string              `json:"description"`
	Severity    string              `json:"severity"`
	Status      string              `json:"status"`
	CreatedBy   userDomain.Summary  `json:"createdBy"`
	AssignedTo  *userDomain.Summary `json:"assignedTo"`
	CreatedAt   time.Time           `json:"createdAt"`
	UpdatedAt   time.Time           `json:"updatedAt"`
}

// ListIncidentsResponse is one page of incidents.
type ListIncidentsResponse struct {
	Incidents []IncidentResponse `json:"incidents"`
	Total     int64              `json:"total"`
	Page      int                `json:"page"`
	Limit     int                `json:"limit"`
}

// CloseIncidentResponse is returned by DELETE /api/incidents/:id.
type CloseIncidentResponse struct {
	Message  string           `json:"message"`
	Incident IncidentResponse `json:"incident"`
}

// CommentResponse is the API representation of a comment.
type CommentResponse struct {
	ID         uuid.UUID          `json:"id"`
	IncidentID uuid.UUID          `json:"incidentId"`
	Content    string             `json:"content"`
	User       userDomain.Summary `json:"user"`
	CreatedAt  time.Time          `json:"createdAt"`
	UpdatedAt  time.Time          `json:"updatedAt"`
}

// ListCommentsResponse wraps the comments of an incident.
type ListCommentsResponse struct {
	Comments []CommentResponse `json:"comments"`
}

// MessageResponse carries a confirmation message.
type MessageResponse struct {
	Message string `json:"message"`
}

// ToIncidentResponse converts a domain incident.
func ToIncidentResponse(incident *domain.Incident) IncidentResponse {
	return IncidentResponse{
		ID:          incident.ID,
		Title:       incident.Title,
		Description: incident.Description,
		Severity:    string(incident.Severity),
		Status:      string(incident.Status),
		CreatedBy:   incident.CreatedBy,
		AssignedTo:  incident.AssignedTo,
		CreatedAt:   incident.CreatedAt,
		UpdatedAt:   incident.UpdatedAt,
	}
}

// ToListIncidentsResponse converts a page of incidents.
func ToListIncidentsResponse(page *usecase.IncidentPage) ListIncidentsResponse {
	out := make([]IncidentResponse, 0, len(page.Incidents))
	for _, incident := range page.Incidents {
		out = append(out, ToIncidentResponse(incident))
	}
	return ListIncidentsResponse{Incidents: out, Total: page.Total, Page: page.Page, Limit: page.Limit}
}

// ToCommentResponse converts a domain comment.
func ToCommentResponse(comment *domain.Comment) CommentResponse {
	return CommentResponse{
		ID:         comment.ID,
		IncidentID: comment.IncidentID,
		Content:    comment.Content,
		User:       comment.User,
		CreatedAt:  comment.CreatedAt,
		UpdatedAt:  comment.UpdatedAt,
	}
}

// ToListCommentsResponse converts comments preserving their order.
func ToListCommentsResponse(comments []*domain.Comment) ListCommentsResponse {
	out := make([]CommentResponse, 0, len(comments))
	for _, comment := range comments {
		out = append(out, ToCommentResponse(comment))
	}
	return ListCommentsResponse{Comments: out}
}
