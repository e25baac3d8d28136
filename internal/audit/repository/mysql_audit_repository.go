package repository

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/allisson/incidenthub/internal/audit/domain"
	"github.com/allisson/incidenthub/internal/database"
	userDomain "github.com/allisson/incidenthub/internal/user/domain"

	apperrors "github.com/allisson/incidenthub/internal/errors"
)

// MySQLAuditRepository handles audit record persistence for MySQL. Ids are stored as BINARY(16).
type MySQLAuditRepository struct {
	db *sql.DB
}

// NewMySQLAuditRepository creates a new MySQLAuditRepository.
func NewMySQLAuditRepository(db *sql.DB) *MySQLAuditRepository {
	return &MySQLAuditRepository{db: db}
}

// Create inserts a signed audit record.
func (r *MySQLAuditRepository) Create(ctx context.Context, record *domain.AuditRecord) error {
	querier := database.GetTx(ctx, r.db)

	metadata, err := marshalMetadata(record.Metadata)
	if err != nil {
		return err
	}

	query := `INSERT INTO audit_logs (id, action, entity_type, entity_id, user_id, metadata, signature, created_at)
			  VALUES (?, ?, ?, ?, ?, ?, ?, ?)`

	_, err = querier.ExecContext(
		ctx,
		query,
		binaryUUID(record.ID),
		string(record.Action),
		record.EntityType,
		binaryUUID(record.EntityID),
		binaryUUID(record.UserID),
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
func (r *MySQLAuditRepository) List(
	ctx context.Context,
	filter domain.ListFilter,
) ([]*domain.AuditRecord, int64, error) {
	querier := database.GetTx(ctx, r.db)

	var conditions []string
	var args []any
	if filter.EntityType != "" {
		conditions = append(conditions, "a.entity_type = ?")
		args = append(args, filter.EntityType)
	}
	if filter.UserID != nil {
		conditions = append(conditions, "a.user_id = ?")
		args = append(args, binaryUUID(*filter.UserID))
	}
	where := ""
	if len(conditions) > 0 {
		where = " WHERE " + strings.Join(conditions, " AND ")
	}

	var total int64
	if err := querier.QueryRowContext(ctx, `SELECT COUNT(*) FROM audit_logs a`+where, args...).Scan(&total); err != nil {
		return nil, 0, apperrors.Wrap(err, "failed to count audit records")
	}

	query := auditSelect + where + ` ORDER BY a.created_at DESC, a.id DESC LIMIT ? OFFSET ?`
	records, err := r.query(ctx, querier, query, append(args, filter.Limit, filter.Offset)...)
	if err != nil {
		return nil, 0, err
	}
	return records, total, nil
}

// ListCreatedBetween returns every record with start <= created_at <= end, oldest first.
func (r *MySQLAuditRepository) ListCreatedBetween(
	ctx context.Context,
	start, end time.Time,
) ([]*domain.AuditRecord, error) {
	querier := database.GetTx(ctx, r.db)

	query := auditSelect + ` WHERE a.created_at >= ? AND a.created_at <= ? ORDER BY a.created_at ASC, a.id ASC`
	return r.query(ctx, querier, query, start, end)
}

// DeleteOlderThan removes records created before olderThan. With dryRun it only counts them.
func (r *MySQLAuditRepository) DeleteOlderThan(
	ctx context.Context,
	olderThan time.Time,
	dryRun bool,
) (int64, error) {
	querier := database.GetTx(ctx, r.db)

	if dryRun {
		var count int64
		err := querier.QueryRowContext(ctx, `SELECT COUNT(*) FROM audit_logs WHERE created_at < ?`, olderThan).
			Scan(&count)
		if err != nil {
			return 0, apperrors.Wrap(err, "failed to count audit records")
		}
		return count, nil
	}

	result, err := querier.ExecContext(ctx, `DELETE FROM audit_logs WHERE created_at < ?`, olderThan)
	if err != nil {
		return 0, apperrors.Wrap(err, "failed to delete audit records")
	}
	count, err := result.RowsAffected()
	if err != nil {
		return 0, apperrors.Wrap(err, "failed to get affected rows count")
	}
	return count, nil
}

func (r *MySQLAuditRepository) query(
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
		var id, entityID, userID, metadata []byte
		var action, role string
		user := userDomain.Summary{}

		err := rows.Scan(
			&id,
			&action,
			&record.EntityType,
			&entityID,
			&userID,
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

		if err := record.ID.UnmarshalBinary(id); err != nil {
			return nil, apperrors.Wrap(err, "failed to unmarshal audit record id")
		}
		if err := record.EntityID.UnmarshalBinary(entityID); err != nil {
			return nil, apperrors.Wrap(err, "failed to unmarshal audit record entity_id")
		}
		if err := record.UserID.UnmarshalBinary(userID); err != nil {
			return nil, apperrors.Wrap(err, "failed to unmarshal audit record user_id")
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

func binaryUUID(id uuid.UUID) []byte {
	b, _ := id.MarshalBinary()
	return b
}
