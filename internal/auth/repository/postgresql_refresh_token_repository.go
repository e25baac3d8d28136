// Package repository provides persistence for refresh credentials.
package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"

	authDomain "github.com/allisson/incidenthub/internal/auth/domain"
	"github.com/allisson/incidenthub/internal/database"
	apperrors "github.com/allisson/incidenthub/internal/errors"
)

// PostgreSQLRefreshTokenRepository implements refresh token persistence for PostgreSQL.
// SQLite shares it: both accept $n placeholders and DELETE ... RETURNING.
type PostgreSQLRefreshTokenRepository struct {
	db *sql.DB
}

// NewPostgreSQLRefreshTokenRepository creates a new PostgreSQL refresh token repository.
func NewPostgreSQLRefreshTokenRepository(db *sql.DB) *PostgreSQLRefreshTokenRepository {
	return &PostgreSQLRefreshTokenRepository{db: db}
}

// Create inserts a refresh token record.
func (p *PostgreSQLRefreshTokenRepository) Create(ctx context.Context, token *authDomain.RefreshToken) error {
	querier := database.GetTx(ctx, p.db)

	query := `INSERT INTO refresh_tokens (id, user_id, token_hash, expires_at, created_at)
			  VALUES ($1, $2, $3, $4, $5)`

	_, err := querier.ExecContext(
		ctx,
		query,
		token.ID,
		token.UserID,
		token.TokenHash,
		token.ExpiresAt,
		token.CreatedAt,
	)
	if err != nil {
		return apperrors.Wrap(err, "failed to create refresh token")
	}
	return nil
}

// Consume deletes the record matching tokenHash and returns it. Of several
// concurrent transactions consuming the same hash, only one gets the row; the
// others get ErrRefreshTokenInvalid.
func (p *PostgreSQLRefreshTokenRepository) Consume(
	ctx context.Context,
	tokenHash string,
) (*authDomain.RefreshToken, error) {
	querier := database.GetTx(ctx, p.db)

	query := `DELETE FROM refresh_tokens WHERE token_hash = $1
			  RETURNING id, user_id, token_hash, expires_at, created_at`

	var token authDomain.RefreshToken
	err := querier.QueryRowContext(ctx, query, tokenHash).Scan(
		&token.ID,
		&token.UserID,
		&token.TokenHash,
		&token.ExpiresAt,
		&token.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, authDomain.ErrRefreshTokenInvalid
		}
		return nil, apperrors.Wrap(err, "failed to consume refresh token")
	}
	return &token, nil
}

// DeleteByHash removes one record. Deleting an unknown hash is not an error.
func (p *PostgreSQLRefreshTokenRepository) DeleteByHash(ctx context.Context, tokenHash string) error {
	querier := database.GetTx(ctx, p.db)

	if _, err := querier.ExecContext(ctx, `DELETE FROM refresh_tokens WHERE token_hash = $1`, tokenHash); err != nil {
		return apperrors.Wrap(err, "failed to delete refresh token")
	}
	return nil
}

// DeleteByUserID removes every record of a user and returns how many were removed.
func (p *PostgreSQLRefreshTokenRepository) DeleteByUserID(ctx context.Context, userID uuid.UUID) (int64, error) {
	querier := database.GetTx(ctx, p.db)

	result, err := querier.ExecContext(ctx, `DELETE FROM refresh_tokens WHERE user_id = $1`, userID)
	if err != nil {
		return 0, apperrors.Wrap(err, "failed to delete user refresh tokens")
	}
	count, err := result.RowsAffected()
	if err != nil {
		return 0, apperrors.Wrap(err, "failed to get affected rows")
	}
	return count, nil
}

// DeleteExpired removes records that expired before olderThan. With dryRun set it
// only counts them.
func (p *PostgreSQLRefreshTokenRepository) DeleteExpired(
	ctx context.Context,
	olderThan time.Time,
	dryRun bool,
) (int64, error) {
	querier := database.GetTx(ctx, p.db)

	if dryRun {
		var count int64
		err := querier.QueryRowContext(
			ctx,
			`SELECT COUNT(*) FROM refresh_tokens WHERE expires_at < $1`,
			olderThan,
		).Scan(&count)
		if err != nil {
			return 0, apperrors.Wrap(err, "failed to count expired refresh tokens")
		}
		return count, nil
	}

	result, err := querier.ExecContext(ctx, `DELETE FROM refresh_tokens WHERE expires_at < $1`, olderThan)
	if err != nil {
		return 0, apperrors.Wrap(err, "failed to delete expired refresh tokens")
	}
	count, err := result.RowsAffected()
	if err != nil {
		return 0, apperrors.Wrap(err, "failed to get affected rows")
	}
	return count, nil
}
