package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"

	"github.com/allisson/incidenthub/internal/database"
	"github.com/allisson/incidenthub/internal/incident/domain"
	userDomain "github.com/allisson/incidenthub/internal/user/domain"

	apperrors "github.com/allisson/incidenthub/internal/errors"
)

// MySQLCommentRepository handles comment persistence for MySQL.
type MySQLCommentRepository struct {
	db *sql.DB
}

// NewMySQLCommentRepository creates a new MySQLCommentRepository.
func NewMySQLCommentRepository(db *sql.DB) *MySQLCommentRepository {
	return &MySQLCommentRepository{db: db}
}

// Create inserts a new comment authored by comment.User.
func (r *MySQLCommentRepository) Create(ctx context.Context, comment *domain.Comment) error {
	querier := database.GetTx(ctx, r.db)

	query := `INSERT INTO comments (id, incident_id, user_id, content, created_at, updated_at)
			  VALUES (?, ?, ?, ?, ?, ?)`

	_, err := querier.ExecContext(
		ctx,
		query,
		binaryUUID(comment.ID),
		binaryUUID(comment.IncidentID),
		binaryUUID(comment.User.ID),
		comment.Content,
		comment.CreatedAt,
		comment.UpdatedAt,
	)
	if err != nil {
		return apperrors.Wrap(err, "failed to create comment")
	}
	return nil
}

// GetByID retrieves a comment of the given incident.
func (r *MySQLCommentRepository) GetByID(ctx context.Context, incidentID, id uuid.UUID) (*domain.Comment, error) {
	querier := database.GetTx(ctx, r.db)

	query := commentSelect + ` WHERE cm.id = ? AND cm.incident_id = ?`

	comment, err := scanMySQLComment(querier.QueryRowContext(ctx, query, binaryUUID(id), binaryUUID(incidentID)))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrCommentNotFound
		}
		return nil, apperrors.Wrap(err, "failed to get comment by id")
	}
	return comment, nil
}

// ListByIncident returns the comments of an incident, oldest first.
func (r *MySQLCommentRepository) ListByIncident(ctx context.Context, incidentID uuid.UUID) ([]*domain.Comment, error) {
	querier := database.GetTx(ctx, r.db)

	query := commentSelect + ` WHERE cm.incident_id = ? ORDER BY cm.created_at ASC, cm.id ASC`

	rows, err := querier.QueryContext(ctx, query, binaryUUID(incidentID))
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list comments")
	}
	defer func() {
		_ = rows.Close()
	}()

	comments := make([]*domain.Comment, 0)
	for rows.Next() {
		comment, err := scanMySQLComment(rows)
		if err != nil {
			return nil, apperrors.Wrap(err, "failed to scan comment")
		}
		comments = append(comments, comment)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, "failed to iterate comments")
	}
	return comments, nil
}

// Update writes the content of a comment.
func (r *MySQLCommentRepository) Update(ctx context.Context, comment *domain.Comment) error {
	querier := database.GetTx(ctx, r.db)

	query := `UPDATE comments SET content = ?, updated_at = ? WHERE id = ?`

	result, err := querier.ExecContext(ctx, query, comment.Content, comment.UpdatedAt, binaryUUID(comment.ID))
	if err != nil {
		return apperrors.Wrap(err, "failed to update comment")
	}
	return expectOneRow(result, domain.ErrCommentNotFound)
}

// Delete removes a comment.
func (r *MySQLCommentRepository) Delete(ctx context.Context, id uuid.UUID) error {
	querier := database.GetTx(ctx, r.db)

	result, err := querier.ExecContext(ctx, `DELETE FROM comments WHERE id = ?`, binaryUUID(id))
	if err != nil {
		return apperrors.Wrap(err, "failed to delete comment")
	}
	return expectOneRow(result, domain.ErrCommentNotFound)
}

func scanMySQLComment(row rowScanner) (*domain.Comment, error) {
	var comment domain.Comment
	var idBytes, incidentIDBytes, userIDBytes []byte
	var role string
	if err := row.Scan(
		&idBytes, &incidentIDBytes, &comment.Content, &comment.CreatedAt, &comment.UpdatedAt,
		&userIDBytes, &comment.User.Name, &comment.User.Email, &role,
	); err != nil {
		return nil, err
	}
	for _, pair := range []struct {
		dst *uuid.UUID
		src []byte
	}{
		{&comment.ID, idBytes},
		{&comment.IncidentID, incidentIDBytes},
		{&comment.User.ID, userIDBytes},
	} {
		if err := pair.dst.UnmarshalBinary(pair.src); err != nil {
			return nil, apperrors.Wrap(err, "failed to unmarshal UUID")
		}
	}
	comment.User.Role = userDomain.Role(role)
	return &comment, nil
}
