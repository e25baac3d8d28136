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

const commentSelect = `SELECT cm.id, cm.incident_id, cm.content, cm.created_at, cm.updated_at,
	u.id, u.name, u.email, u.role
	FROM comments cm
	JOIN users u ON u.id = cm.user_id`

// PostgreSQLCommentRepository handles comment persistence for PostgreSQL and SQLite.
type PostgreSQLCommentRepository struct {
	db *sql.DB
}

// NewPostgreSQLCommentRepository creates a new PostgreSQLCommentRepository.
func NewPostgreSQLCommentRepository(db *sql.DB) *PostgreSQLCommentRepository {
	return &PostgreSQLCommentRepository{db: db}
}

// Create inserts a new comment authored by comment.User.
func (r *PostgreSQLCommentRepository) Create(ctx context.Context, comment *domain.Comment) error {
	querier := database.GetTx(ctx, r.db)

	query := `INSERT INTO comments (id, incident_id, user_id, content, created_at, updated_at)
			  VALUES ($1, $2, $3, $4, $5, $6)`

	_, err := querier.ExecContext(
		ctx,
		query,
		comment.ID,
		comment.IncidentID,
		comment.User.ID,
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
func (r *PostgreSQLCommentRepository) GetByID(
	ctx context.Context,
	incidentID, id uuid.UUID,
) (*domain.Comment, error) {
	querier := database.GetTx(ctx, r.db)

	query := commentSelect + ` WHERE cm.id = $1 AND cm.incident_id = $2`

	comment, err := scanComment(querier.QueryRowContext(ctx, query, id, incidentID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrCommentNotFound
		}
		return nil, apperrors.Wrap(err, "failed to get comment by id")
	}
	return comment, nil
}

// ListByIncident returns the comments of an incident, oldest first.
func (r *PostgreSQLCommentRepository) ListByIncident(
	ctx context.Context,
	incidentID uuid.UUID,
) ([]*domain.Comment, error) {
	querier := database.GetTx(ctx, r.db)

	query := commentSelect + ` WHERE cm.incident_id = $1 ORDER BY cm.created_at ASC, cm.id ASC`

	rows, err := querier.QueryContext(ctx, query, incidentID)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list comments")
	}
	defer func() {
		_ = rows.Close()
	}()

	comments := make([]*domain.Comment, 0)
	for rows.Next() {
		comment, err := scanComment(rows)
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
func (r *PostgreSQLCommentRepository) Update(ctx context.Context, comment *domain.Comment) error {
	querier := database.GetTx(ctx, r.db)

	query := `UPDATE comments SET content = $1, updated_at = $2 WHERE id = $3`

	result, err := querier.ExecContext(ctx, query, comment.Content, comment.UpdatedAt, comment.ID)
	if err != nil {
		return apperrors.Wrap(err, "failed to update comment")
	}
	return expectOneRow(result, domain.ErrCommentNotFound)
}

// Delete removes a comment.
func (r *PostgreSQLCommentRepository) Delete(ctx context.Context, id uuid.UUID) error {
	querier := database.GetTx(ctx, r.db)

	result, err := querier.ExecContext(ctx, `DELETE FROM comments WHERE id = $1`, id)
	if err != nil {
		return apperrors.Wrap(err, "failed to delete comment")
	}
	return expectOneRow(result, domain.ErrCommentNotFound)
}

func scanComment(row rowScanner) (*domain.Comment, error) {
	var comment domain.Comment
	var role string
	if err := row.Scan(
		&comment.ID, &comment.IncidentID, &comment.Content, &comment.CreatedAt, &comment.UpdatedAt,
		&comment.User.ID, &comment.User.Name, &comment.User.Email, &role,
	); err != nil {
		return nil, err
	}
	comment.User.Role = userDomain.Role(role)
	return &comment, nil
}

func expectOneRow(result sql.Result, notFound error) error {
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return apperrors.Wrap(err, "failed to get rows affected")
	}
	if rowsAffected == 0 {
		return notFound
	}
	return nil
}
