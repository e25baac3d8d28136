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

// MySQLRefreshTokenRepository implements refresh token persistence for MySQL.
// Uses BINARY(16) for UUIDs with transaction support via database.GetTx().
type MySQLRefreshTokenRepository struct {
	db *sql.DB
}

// NewMySQLRefreshTokenRepository creates a new MySQL refresh token repository.
func NewMySQLRefreshTokenRepository(db *sql.DB) *MySQLRefreshTokenRepository {
	return &MySQLRefreshTokenRepository{db: db}
}

// Create inserts a refresh token record.
func (m *MySQLRefreshTokenRepository) Create(ctx context.Context, token *authDomain.RefreshToken) error {
	querier := database.GetTx(ctx, m.db)

	id, err := token.ID.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal refresh token id")
	}
	userID, err := token.UserID.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal user id")
	}

	query := `INSERT INTO refresh_tokens (id, user_id, token_hash, expires_at, created_at)
			  VALUES (?, ?, ?, ?, ?)`

	if _, err := querier.ExecContext(ctx, query, id, userID, token.TokenHash, token.ExpiresAt, token.CreatedAt); err != nil {
		return apperrors.Wrap(err, "failed to create refresh token")
	}
	return nil
}

// Consume locks the record matching tokenHash, deletes it and returns it. MySQL has
// no DELETE ... RETURNING, so the row lock taken by SELECT ... FOR UPDATE makes
// concurrent consumers of the same hash wait and then find nothing. Must run inside
// a transaction.
func (m *MySQLRefreshTokenRepository) Consume(
	ctx context.Context,
	tokenHash string,
) (*authDomain.RefreshToken, error) {
	querier := database.GetTx(ctx, m.db)

	query := `SELECT id, user_id, token_hash, expires_at, created_at
			  FROM refresh_tokens WHERE token_hash = ? FOR UPDATE`

	var token authDomain.RefreshToken
	var id, userID []byte
	err := querier.QueryRowContext(ctx, query, tokenHash).Scan(
		&id,
		&userID,
		&token.TokenHash,
		&token.ExpiresAt,
		&token.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, authDomain.ErrRefreshTokenInvalid
		}
		return nil, apperrors.Wrap(err, "failed to lock refresh token")
	}

	if err := token.ID.UnmarshalBinary(id); err != nil {
		return nil, apperrors.Wrap(err, "failed to unmarshal refresh token id")
	}
	if err := token.UserID.UnmarshalBinary(userID); err != nil {
		return nil, apperrors.Wrap(err, "failed to unmarshal user id")
	}

	result, err := querier.ExecContext(ctx, `DELETE FROM refresh_tokens WHERE id = ?`, id)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to consume refresh token")
	}
	if affected, err := result.RowsAffected(); err != nil || affected == 0 {
		return nil, authDomain.ErrRefreshTokenInvalid
	}
	return &token, nil
}

// DeleteByHash removes one record. Deleting an unknown hash is not an error.
func (m *MySQLRefreshTokenRepository) DeleteByHash(ctx context.Context, tokenHash string) error {
	querier := database.GetTx(ctx, m.db)

	if _, err := querier.ExecContext(ctx, `DELETE FROM refresh_tokens WHERE token_hash = ?`, tokenHash); err != nil {
		return apperrors.Wrap(err, "failed to delete refresh token")
	}
	return nil
}

// DeleteByUserID removes every record of a user and returns how many were removed.
func (m *MySQLRefreshTokenRepository) DeleteByUserID(ctx context.Context, userID uuid.UUID) (int64, error) {
	querier := database.GetTx(ctx, m.db)

	id, err := userID.MarshalBinary()
	if err != nil {
		return 0, apperrors.Wrap(err, "failed to marshal user id")
	}

	result, err := querier.ExecContext(ctx, `DELETE FROM refresh_tokens WHERE user_id = ?`, id)
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
func (m *MySQLRefreshTokenRepository) DeleteExpired(
	ctx context.Context,
	olderThan time.Time,
	dryRun bool,
) (int64, error) {
	querier := database.GetTx(ctx, m.db)

	if dryRun {
		var count int64
		err := querier.QueryRowContext(
			ctx,
			`SELECT COUNT(*) FROM refresh_tokens WHERE expires_at < ?`,
			olderThan,
		).Scan(&count)
		if err != nil {
			return 0, apperrors.Wrap(err, "failed to count expired refresh tokens")
		}
		return count, nil
	}

	result, err := querier.ExecContext(ctx, `DELETE FROM refresh_tokens WHERE expires_at < ?`, olderThan)
	if err != nil {
		return 0, apperrors.Wrap(err, "failed to delete expired refresh tokens")
	}
	count, err := result.RowsAffected()
	if err != nil {
		return 0, apperrors.Wrap(err, "failed to get affected rows")
	}
	return count, nil
}
