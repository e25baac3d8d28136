// Package dto defines the audit listing response.
package dto

import (
	"time"

	"github.com/google/uuid"

	"github.com/allisson/incidenthub/internal/audit/domain"
	"github.com/allisson/incidenthub/internal/audit/usecase"
	userDomain "github.com/allisson/incidenthub/internal/user/domain"
)

// AuditLogResponse is the API representation of an audit record.
type AuditLogResponse struct {
	ID         uuid.UUID           `json:"id"`
	Action     string              `json:"action"`
	EntityType string              `json:"entityType"`
	EntityID   uuid.UUID           `json:"entityId"`
	UserID     uuid.UUID           `json:"userId"`
	Metadata   map[string]any      `json:"metadata,omitempty"`
	CreatedAt  time.Time           `json:"createdAt"`
	User       *userDomain.Summary `json:"user,omitempty"`
}

// ListAuditLogsResponse is one page of audit records.
type ListAuditLogsResponse struct {
	Logs  []AuditLogResponse `json:"logs"`
	Total int64              `json:"total"`
	Page  int                `json:"page"`
	Limit int                `json:"limit"`
}

// ToAuditLogResponse converts a domain record. The signature is not exposed.
func ToAuditLogResponse(record *domain.AuditRecord) AuditLogResponse {
	return AuditLogResponse{
		ID:         record.ID,
		Action:     string(record.Action),
		EntityType: record.EntityType,
		EntityID:   record.EntityID,
		UserID:     record.UserID,
		Metadata:   record.Metadata,
		CreatedAt:  record.CreatedAt,
		User:       record.User,
	}
}

// ToListAuditLogsResponse converts a page of records.
func ToListAuditLogsResponse(page *usecase.AuditPage) ListAuditLogsResponse {
	logs := make([]AuditLogResponse, 0, len(page.Records))
	for _, record := range page.Records {
		logs = append(logs, ToAuditLogResponse(record))
	}
	return ListAuditLogsResponse{Logs: logs, Total: page.Total, Page: page.Page, Limit: page.Limit}
}
