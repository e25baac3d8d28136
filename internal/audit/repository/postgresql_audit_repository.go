// Package repository provides persistence for audit records.
package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/allisson/incidenthub/internal/audit/domain"
	"github.com/allisson/incidenthub/internal/database"
	userDomain "github.com/allisson/incidenthub/internal/user/domain"

	apperrors "github.com/allisson/incidenthub/internal/errors"
)

const auditSelect = `SELECT a.id, a.action, a.entity_type, a.entity_id, a.user_id, a.metadata, a.signature, a.created_at,
	u.name, u.email, u.role
	FROM audit_logs a
	JOIN users u ON u.id = a.user_id`

// PostgreSQLAuditRepository handles audit record persistence for PostgreSQL and SQLite.
type PostgreSQLAuditRepository struct {
	db *sql.DB
}

// NewPostgreSQLAuditRepository creates a new PostgreSQLAuditRepository.
func NewPostgreSQLAuditRepository(db *sql.DB) *PostgreSQLAuditRepository {
	return &PostgreSQLAuditRepository{db: db}
}

// Create inserts a signed audit record. Nil metadata is stored as NULL.
func (r *PostgreSQLAuditRepository) Create(ctx context.Context, record *domain.AuditRecord) error {
	querier := database.GetTx(ctx, r.db)

	metadata, err := marshalMetadata(record.Metadata)
	if err != nil {
		return err
	}

	query := `INSERT INTO audit_logs (id, action, entity_type, entity_id, user_id, metadata, signature, created_at)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	_, err = querier.ExecContext(
		ctx,
		query,
		record.ID,
		string(record.Action),
		record.EntityType,
		record.EntityID,
		record.UserID,
		metadata,
		record.Signature,
		record.CreatedAt,
	)
	if err != nil {
		return apperrors.Wrap(err, "failed to create audit record")
	}
	return nil
}

// List returns one page of records, newest first, and the number of records matching filter.
func (r *PostgreSQLAuditRepository) List(
	ctx context.Context,
	filter domain.ListFilter,
) ([]*domain.AuditRecord, int64, error) {
	querier := database.GetTx(ctx, r.db)

	var conditions []string
	var args []any
	if filter.EntityType != "" {
		args = append(args, filter.EntityType)
		conditions = append(conditions, fmt.Sprintf("a.entity_type = $%d", len(args)))
	}
	if filter.UserID != nil {
		args = append(args, *filter.UserID)
		conditions = append(conditions, fmt.Sprintf("a.user_id = $%d", len(args)))
	}
	where := ""
	if len(conditions) > 0 {
		where = " WHERE " + strings.Join(conditions, " AND ")
	}

	var total int64
	if err := querier.QueryRowContext(ctx, `SELECT COUNT(*) FROM audit_logs a`+where, args...).Scan(&total); err != nil {
		return nil, 0, apperrors.Wrap(err, "failed to count audit records")
	}

	query := fmt.Sprintf(`%s%s ORDER BY a.created_at DESC, a.id DESC LIMIT $%d OFFSET $%d`,
		auditSelect, where, len(args)+1, len(args)+2)
	records, err := r.query(ctx, querier, query, append(args, filter.Limit, filter.Offset)...)
	if err != nil {
		return nil, 0, err
	}
	return records, total, nil
}

// ListCreatedBetween returns every record with start <= created_at <= end, oldest first.
func (r *PostgreSQLAuditRepository) ListCreatedBetween(
	ctx context.Context,
	start, end time.Time,
) ([]*domain.AuditRecord, error) {
	querier := database.GetTx(ctx, r.db)

	query := auditSelect + ` WHERE a.created_at >= $1 AND a.created_at <= $2 ORDER BY a.created_at ASC, a.id ASC`
	return r.query(ctx, querier, query, start, end)
}

// DeleteOlderThan removes records created before olderThan. With dryRun it only counts them.
func (r *PostgreSQLAuditRepository) DeleteOlderThan(
	ctx context.Context,
	olderThan time.Time,
	dryRun bool,
) (int64, error) {
	querier := database.GetTx(ctx, r.db)

	if dryRun {
		var count int64
		err := querier.QueryRowContext(ctx, `SELECT COUNT(*) FROM audit_logs WHERE created_at < $1`, olderThan).
			Scan(&count)
		if err != nil {
			return 0, apperrors.Wrap(err, "failed to count audit records")
		}
		return count, nil
	}

	result, err := querier.ExecContext(ctx, `DELETE FROM audit_logs WHERE created_at < $1`, olderThan)
	if err != nil {
		return 0, apperrors.Wrap(err, "failed to delete audit records")
	}
	count, err := result.RowsAffected()
	if err != nil {
		return 0, apperrors.Wrap(err, "failed to get affected rows count")
	}
	return count, nil
}

func (r *PostgreSQLAuditRepository) query(
	ctx context.Context,
	querier database.Querier,
	query string,
	args ...any,
) ([]*domain.AuditRecord, error) {
	rows, err := querier.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list audit records")
	}
	defer func() {
		_ = rows.Close()
	}()

	records := make([]*domain.AuditRecord, 0)
	for rows.Next() {
		var record domain.AuditRecord
		var action, role string
		var metadata []byte
		user := userDomain.Summary{}

		err := rows.Scan(
			&record.ID,
			&action,
			&record.EntityType,
			&record.EntityID,
			&record.UserID,
			&metadata,
			&record.Signature,
			&record.CreatedAt,
			&user.Name,
			&user.Email,
			&role,
		)
		if err != nil {
			return nil, apperrors.Wrap(err, "failed to scan audit record")
		}

		if err := finishRecord(&record, action, metadata, user, role); err != nil {
			return nil, err
		}
		records = append(records, &record)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, "failed to iterate audit records")
	}
	return records, nil
}

func marshalMetadata(metadata map[string]any) ([]byte, error) {
	if metadata == nil {
		return nil, nil
	}
	data, err := json.Marshal(metadata)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to marshal audit metadata")
	}
	return data, nil
}

func finishRecord(
	record *domain.AuditRecord,
	action string,
	metadata []byte,
	user userDomain.Summary,
	role string,
) error {
	record.Action = domain.Action(action)
	record.CreatedAt = record.CreatedAt.UTC()
	if metadata != nil {
		if err := json.Unmarshal(metadata, &record.Metadata); err != nil {
			return apperrors.Wrap(err, "failed to unmarshal audit metadata")
		}
	}
	user.ID = record.UserID
	user.Role = userDomain.Role(role)
	record.User = &user
	return nil
}
