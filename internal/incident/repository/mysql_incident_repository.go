package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/google/uuid"

	"github.com/allisson/incidenthub/internal/database"
	"github.com/allisson/incidenthub/internal/incident/domain"
	userDomain "github.com/allisson/incidenthub/internal/user/domain"

	apperrors "github.com/allisson/incidenthub/internal/errors"
)

// MySQLIncidentRepository handles incident persistence for MySQL. Ids are stored as BINARY(16).
type MySQLIncidentRepository struct {
	db *sql.DB
}

// NewMySQLIncidentRepository creates a new MySQLIncidentRepository.
func NewMySQLIncidentRepository(db *sql.DB) *MySQLIncidentRepository {
	return &MySQLIncidentRepository{db: db}
}

// Create inserts a new incident.
func (r *MySQLIncidentRepository) Create(ctx context.Context, incident *domain.Incident) error {
	querier := database.GetTx(ctx, r.db)

	query := `INSERT INTO incidents
			  (id, title, description, severity, status, created_by_id, assigned_to_id, created_at, updated_at)
			  VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err := querier.ExecContext(
		ctx,
		query,
		binaryUUID(incident.ID),
		incident.Title,
		incident.Description,
		string(incident.Severity),
		string(incident.Status),
		binaryUUID(incident.CreatedBy.ID),
		nullableBinaryUUID(incident.AssignedToID()),
		incident.CreatedAt,
		incident.UpdatedAt,
	)
	if err != nil {
		return apperrors.Wrap(err, "failed to create incident")
	}
	return nil
}

// GetByID retrieves an incident with its creator and assignee.
func (r *MySQLIncidentRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Incident, error) {
	querier := database.GetTx(ctx, r.db)

	query := `SELECT ` + incidentColumns + ` ` + incidentJoins + ` WHERE i.id = ?`

	incident, err := scanMySQLIncident(querier.QueryRowContext(ctx, query, binaryUUID(id)))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrIncidentNotFound
		}
		return nil, apperrors.Wrap(err, "failed to get incident by id")
	}
	return incident, nil
}

// List returns one page of incidents, newest first, and the number of incidents matching filter.
func (r *MySQLIncidentRepository) List(
	ctx context.Context,
	filter domain.ListFilter,
) ([]*domain.Incident, int64, error) {
	querier := database.GetTx(ctx, r.db)

	var conditions []string
	var args []any
	if filter.Status != "" {
		conditions = append(conditions, "i.status = ?")
		args = append(args, string(filter.Status))
	}
	if filter.Severity != "" {
		conditions = append(conditions, "i.severity = ?")
		args = append(args, string(filter.Severity))
	}
	where := ""
	if len(conditions) > 0 {
		where = " WHERE " + strings.Join(conditions, " AND ")
	}

	var total int64
	if err := querier.QueryRowContext(ctx, `SELECT COUNT(*) FROM incidents i`+where, args...).Scan(&total); err != nil {
		return nil, 0, apperrors.Wrap(err, "failed to count incidents")
	}

	query := `SELECT ` + incidentColumns + ` ` + incidentJoins + where +
		` ORDER BY i.created_at DESC, i.id DESC LIMIT ? OFFSET ?`
	rows, err := querier.QueryContext(ctx, query, append(args, filter.Limit, filter.Offset)...)
	if err != nil {
		return nil, 0, apperrors.Wrap(err, "failed to list incidents")
	}
	defer func() {
		_ = rows.Close()
	}()

	incidents := make([]*domain.Incident, 0)
	for rows.Next() {
		incident, err := scanMySQLIncident(rows)
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
func (r *MySQLIncidentRepository) Update(ctx context.Context, incident *domain.Incident) error {
	querier := database.GetTx(ctx, r.db)

	query := `UPDATE incidents
			  SET title = ?, description = ?, severity = ?, status = ?, assigned_to_id = ?, updated_at = ?
			  WHERE id = ?`

	result, err := querier.ExecContext(
		ctx,
		query,
		incident.Title,
		incident.Description,
		string(incident.Severity),
		string(incident.Status),
		nullableBinaryUUID(incident.AssignedToID()),
		incident.UpdatedAt,
		binaryUUID(incident.ID),
	)
	if err != nil {
		return apperrors.Wrap(err, "failed to update incident")
	}
	return expectOneRow(result, domain.ErrIncidentNotFound)
}

func scanMySQLIncident(row rowScanner) (*domain.Incident, error) {
	var incident domain.Incident
	var idBytes, creatorIDBytes, assigneeIDBytes []byte
	var severity, status, creatorRole string
	var assignee nullSummary
	if err := row.Scan(
		&idBytes, &incident.Title, &incident.Description, &severity, &status,
		&incident.CreatedAt, &incident.UpdatedAt,
		&creatorIDBytes, &incident.CreatedBy.Name, &incident.CreatedBy.Email, &creatorRole,
		&assigneeIDBytes, &assignee.name, &assignee.email, &assignee.role,
	); err != nil {
		return nil, err
	}
	if err := incident.ID.UnmarshalBinary(idBytes); err != nil {
		return nil, apperrors.Wrap(err, "failed to unmarshal UUID")
	}
	if err := incident.CreatedBy.ID.UnmarshalBinary(creatorIDBytes); err != nil {
		return nil, apperrors.Wrap(err, "failed to unmarshal UUID")
	}
	if assigneeIDBytes != nil {
		if err := assignee.id.UUID.UnmarshalBinary(assigneeIDBytes); err != nil {
			return nil, apperrors.Wrap(err, "failed to unmarshal UUID")
		}
		assignee.id.Valid = true
	}
	incident.Severity = domain.Severity(severity)
	incident.Status = domain.Status(status)
	incident.CreatedBy.Role = userDomain.Role(creatorRole)
	incident.AssignedTo = assignee.summary()
	return &incident, nil
}

// binaryUUID converts a UUID to the BINARY(16) form. MarshalBinary never fails for a UUID.
func binaryUUID(id uuid.UUID) []byte {
	b, _ := id.MarshalBinary()
	return b
}

func nullableBinaryUUID(id *uuid.UUID) any {
	if id == nil {
		return nil
	}
	return binaryUUID(*id)
}
