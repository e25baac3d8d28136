// Package repository provides persistence for incidents and comments.
package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/allisson/incidenthub/internal/database"
	"github.com/allisson/incidenthub/internal/incident/domain"
	userDomain "github.com/allisson/incidenthub/internal/user/domain"

	apperrors "github.com/allisson/incidenthub/internal/errors"
)

const incidentColumns = `i.id, i.title, i.description, i.severity, i.status, i.created_at, i.updated_at,
	c.id, c.name, c.email, c.role,
	a.id, a.name, a.email, a.role`

const incidentJoins = `FROM incidents i
	JOIN users c ON c.id = i.created_by_id
	LEFT JOIN users a ON a.id = i.assigned_to_id`

// PostgreSQLIncidentRepository handles incident persistence for PostgreSQL and SQLite.
type PostgreSQLIncidentRepository struct {
	db *sql.DB
}

// NewPostgreSQLIncidentRepository creates a new PostgreSQLIncidentRepository.
func NewPostgreSQLIncidentRepository(db *sql.DB) *PostgreSQLIncidentRepository {
	return &PostgreSQLIncidentRepository{db: db}
}

// Create inserts a new incident. CreatedBy and AssignedTo only contribute their ids.
func (r *PostgreSQLIncidentRepository) Create(ctx context.Context, incident *domain.Incident) error {
	querier := database.GetTx(ctx, r.db)

	query := `INSERT INTO incidents
			  (id, title, description, severity, status, created_by_id, assigned_to_id, created_at, updated_at)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	_, err := querier.ExecContext(
		ctx,
		query,
		incident.ID,
		incident.Title,
		incident.Description,
		string(incident.Severity),
		string(incident.Status),
		incident.CreatedBy.ID,
		nullableUUID(incident.AssignedToID()),
		incident.CreatedAt,
		incident.UpdatedAt,
	)
	if err != nil {
		return apperrors.Wrap(err, "failed to create incident")
	}
	return nil
}

// GetByID retrieves an incident with its creator and assignee.
func (r *PostgreSQLIncidentRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Incident, error) {
	querier := database.GetTx(ctx, r.db)

	query := `SELECT ` + incidentColumns + ` ` + incidentJoins + ` WHERE i.id = $1`

	incident, err := scanIncident(querier.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrIncidentNotFound
		}
		return nil, apperrors.Wrap(err, "failed to get incident by id")
	}
	return incident, nil
}

// List returns one page of incidents, newest first, and the number of incidents matching filter.
func (r *PostgreSQLIncidentRepository) List(
	ctx context.Context,
	filter domain.ListFilter,
) ([]*domain.Incident, int64, error) {
	querier := database.GetTx(ctx, r.db)

	var conditions []string
	var args []any
	if filter.Status != "" {
		args = append(args, string(filter.Status))
		conditions = append(conditions, fmt.Sprintf("i.status = $%d", len(args)))
	}
	if filter.Severity != "" {
		args = append(args, string(filter.Severity))
		conditions = append(conditions, fmt.Sprintf("i.severity = $%d", len(args)))
	}
	where := ""
	if len(conditions) > 0 {
		where = " WHERE " + strings.Join(conditions, " AND ")
	}

	var total int64
	if err := querier.QueryRowContext(ctx, `SELECT COUNT(*) FROM incidents i`+where, args...).Scan(&total); err != nil {
		return nil, 0, apperrors.Wrap(err, "failed to count incidents")
	}

	query := fmt.Sprintf(`SELECT %s %s%s ORDER BY i.created_at DESC, i.id DESC LIMIT $%d OFFSET $%d`,
		incidentColumns, incidentJoins, where, len(args)+1, len(args)+2)
	rows, err := querier.QueryContext(ctx, query, append(args, filter.Limit, filter.Offset)...)
	if err != nil {
		return nil, 0, apperrors.Wrap(err, "failed to list incidents")
	}
	defer func() {
		_ = rows.Close()
	}()

	incidents := make([]*domain.Incident, 0)
	for rows.Next() {
		incident, err := scanIncident(rows)
		if err != nil {
			return nil, 0, apperrors.Wrap(err, "failed to scan incident")
		}
		incidents = append(incidents, incident)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, apperrors.Wrap(err, "failed to iterate incidents")
	}
	return incidents, total, nil
}

// Update writes the mutable fields of an incident.
func (r *PostgreSQLIncidentRepository) Update(ctx context.Context, incident *domain.Incident) error {
	querier := database.GetTx(ctx, r.db)

	query := `UPDATE incidents
			  SET title = $1, description = $2, severity = $3, status = $4, assigned_to_id = $5, updated_at = $6
			  WHERE id = $7`

	result, err := querier.ExecContext(
		ctx,
		query,
		incident.Title,
		incident.Description,
		string(incident.Severity),
		string(incident.Status),
		nullableUUID(incident.AssignedToID()),
		incident.UpdatedAt,
		incident.ID,
	)
	if err != nil {
		return apperrors.Wrap(err, "failed to update incident")
	}
	return expectOneRow(result, domain.ErrIncidentNotFound)
}

type rowScanner interface {
	Scan(dest ...any) error
}

// nullSummary receives the columns of an optional LEFT JOINed user.
type nullSummary struct {
	id    uuid.NullUUID
	name  sql.NullString
	email sql.NullString
	role  sql.NullString
}

func (n nullSummary) summary() *userDomain.Summary {
	if !n.id.Valid {
		return nil
	}
	return &userDomain.Summary{
		ID:    n.id.UUID,
		Name:  n.name.String,
		Email: n.email.String,
		Role:  userDomain.Role(n.role.String),
	}
}

func scanIncident(row rowScanner) (*domain.Incident, error) {
	var incident domain.Incident
	var severity, status, creatorRole string
	var assignee nullSummary
	if err := row.Scan(
		&incident.ID, &incident.Title, &incident.Description, &severity, &status,
		&incident.CreatedAt, &incident.UpdatedAt,
		&incident.CreatedBy.ID, &incident.CreatedBy.Name, &incident.CreatedBy.Email, &creatorRole,
		&assignee.id, &assignee.name, &assignee.email, &assignee.role,
	); err != nil {
		return nil, err
	}
	incident.Severity = domain.Severity(severity)
	incident.Status = domain.Status(status)
	incident.CreatedBy.Role = userDomain.Role(creatorRole)
	incident.AssignedTo = assignee.summary()
	return &incident, nil
}

func nullableUUID(id *uuid.UUID) uuid.NullUUID {
	if id == nil {
		return uuid.NullUUID{}
	}
	return uuid.NullUUID{UUID: *id, Valid: true}
}
