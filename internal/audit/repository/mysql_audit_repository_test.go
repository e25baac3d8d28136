package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/allisson/incidenthub/internal/audit/domain"
)

var auditRowColumns = []string{
	"id", "action", "entity_type", "entity_id", "user_id", "metadata", "signature", "created_at",
	"name", "email", "role",
}

func TestMySQLAuditRepository_Create(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer func() {
		_ = db.Close()
	}()

	repo := NewMySQLAuditRepository(db)
	record := newTestRecord(uuid.Must(uuid.NewV7()), "Incident", time.Now())

	mock.ExpectExec("INSERT INTO audit_logs").
		WithArgs(binaryUUID(record.ID), "CREATE", "Incident", binaryUUID(record.EntityID),
			binaryUUID(record.UserID), sqlmock.AnyArg(), record.Signature, record.CreatedAt).
		WillReturnResult(sqlmock.NewResult(1, 1))

	require.NoError(t, repo.Create(context.Background(), record))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMySQLAuditRepository_List(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer func() {
		_ = db.Close()
	}()

	repo := NewMySQLAuditRepository(db)
	userID := uuid.Must(uuid.NewV7())
	record := newTestRecord(userID, "Comment", time.Now())

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM audit_logs a WHERE a.entity_type = \? AND a.user_id = \?`).
		WithArgs("Comment", binaryUUID(userID)).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(7))
	mock.ExpectQuery(`FROM audit_logs a .* ORDER BY a.created_at DESC, a.id DESC LIMIT \? OFFSET \?`).
		WithArgs("Comment", binaryUUID(userID), 5, 5).
		WillReturnRows(sqlmock.NewRows(auditRowColumns).AddRow(
			binaryUUID(record.ID), "CREATE", "Comment", binaryUUID(record.EntityID), binaryUUID(userID),
			[]byte(`{"method":"POST"}`), record.Signature, record.CreatedAt,
			"Rita", "rita@example.com", "RESPONDER",
		))

	records, total, err := repo.List(context.Background(), domain.ListFilter{
		EntityType: "Comment", UserID: &userID, Offset: 5, Limit: 5,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(7), total)
	require.Len(t, records, 1)
	assert.Equal(t, record.ID, records[0].ID)
	assert.Equal(t, record.EntityID, records[0].EntityID)
	assert.Equal(t, "POST", records[0].Metadata["method"])
	assert.Equal(t, userID, records[0].User.ID)
	assert.Equal(t, "Rita", records[0].User.Name)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMySQLAuditRepository_DeleteOlderThan(t *testing.T) {
	cutoff := time.Now().UTC().Add(-24 * time.Hour)

	t.Run("dry run counts", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer func() {
			_ = db.Close()
		}()

		mock.ExpectQuery(`SELECT COUNT\(\*\) FROM audit_logs WHERE created_at < \?`).
			WithArgs(cutoff).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(4))

		count, err := NewMySQLAuditRepository(db).DeleteOlderThan(context.Background(), cutoff, true)
		require.NoError(t, err)
		assert.Equal(t, int64(4), count)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("delete", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer func() {
			_ = db.Close()
		}()

		mock.ExpectExec(`DELETE FROM audit_logs WHERE created_at < \?`).
			WithArgs(cutoff).
			WillReturnResult(sqlmock.NewResult(0, 3))

		count, err := NewMySQLAuditRepository(db).DeleteOlderThan(context.Background(), cutoff, false)
		require.NoError(t, err)
		assert.Equal(t, int64(3), count)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("database error", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer func() {
			_ = db.Close()
		}()

		mock.ExpectExec(`DELETE FROM audit_logs`).WillReturnError(errors.New("connection reset"))

		_, err = NewMySQLAuditRepository(db).DeleteOlderThan(context.Background(), cutoff, false)
		assert.Error(t, err)
	})
}
