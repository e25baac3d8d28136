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

	"github.com/allisson/incidenthub/internal/user/domain"
)

func TestMySQLUserRepository_Create(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer func() {
		_ = db.Close()
	}()

	repo := NewMySQLUserRepository(db)
	user := newTestUser("john@example.com", domain.RoleViewer)
	idBytes, err := user.ID.MarshalBinary()
	require.NoError(t, err)

	t.Run("success", func(t *testing.T) {
		mock.ExpectExec("INSERT INTO users").
			WithArgs(idBytes, user.Name, user.Email, user.Password, "VIEWER", sqlmock.AnyArg(), sqlmock.AnyArg()).
			WillReturnResult(sqlmock.NewResult(1, 1))

		require.NoError(t, repo.Create(context.Background(), user))
	})

	t.Run("duplicate email", func(t *testing.T) {
		mock.ExpectExec("INSERT INTO users").
			WillReturnError(errors.New("Error 1062 (23000): Duplicate entry 'john@example.com' for key 'email'"))

		err := repo.Create(context.Background(), user)
		assert.ErrorIs(t, err, domain.ErrUserAlreadyExists)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMySQLUserRepository_GetByID(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer func() {
		_ = db.Close()
	}()

	repo := NewMySQLUserRepository(db)
	id := uuid.Must(uuid.NewV7())
	idBytes, err := id.MarshalBinary()
	require.NoError(t, err)
	now := time.Now().UTC()

	t.Run("found", func(t *testing.T) {
		rows := sqlmock.NewRows([]string{"id", "name", "email", "password", "role", "created_at", "updated_at"}).
			AddRow(idBytes, "Ada", "ada@example.com", "hash", "ADMIN", now, now)
		mock.ExpectQuery("SELECT id, name, email, password, role, created_at, updated_at").
			WithArgs(idBytes).
			WillReturnRows(rows)

		user, err := repo.GetByID(context.Background(), id)
		require.NoError(t, err)
		assert.Equal(t, id, user.ID)
		assert.Equal(t, domain.RoleAdmin, user.Role)
	})

	t.Run("not found", func(t *testing.T) {
		mock.ExpectQuery("SELECT id, name, email").
			WithArgs(idBytes).
			WillReturnRows(sqlmock.NewRows([]string{"id"}))

		_, err := repo.GetByID(context.Background(), id)
		assert.ErrorIs(t, err, domain.ErrUserNotFound)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMySQLUserRepository_List(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer func() {
		_ = db.Close()
	}()

	repo := NewMySQLUserRepository(db)
	now := time.Now().UTC()
	first, _ := uuid.Must(uuid.NewV7()).MarshalBinary()
	second, _ := uuid.Must(uuid.NewV7()).MarshalBinary()

	rows := sqlmock.NewRows([]string{"id", "name", "email", "password", "role", "created_at", "updated_at"}).
		AddRow(second, "B", "b@example.com", "hash", "VIEWER", now, now).
		AddRow(first, "A", "a@example.com", "hash", "RESPONDER", now, now)
	mock.ExpectQuery("ORDER BY created_at DESC").WillReturnRows(rows)

	users, err := repo.List(context.Background())
	require.NoError(t, err)
	require.Len(t, users, 2)
	assert.Equal(t, "B", users[0].Name)
	assert.Equal(t, domain.RoleResponder, users[1].Role)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMySQLUserRepository_UpdateRole(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer func() {
		_ = db.Close()
	}()

	repo := NewMySQLUserRepository(db)
	id := uuid.Must(uuid.NewV7())
	idBytes, err := id.MarshalBinary()
	require.NoError(t, err)

	t.Run("success", func(t *testing.T) {
		mock.ExpectQuery("SELECT 1 FROM users").
			WithArgs(idBytes).
			WillReturnRows(sqlmock.NewRows([]string{"1"}).AddRow(1))
		mock.ExpectExec("UPDATE users SET role").
			WithArgs("RESPONDER", sqlmock.AnyArg(), idBytes).
			WillReturnResult(sqlmock.NewResult(0, 1))

		require.NoError(t, repo.UpdateRole(context.Background(), id, domain.RoleResponder, time.Now().UTC()))
	})

	t.Run("not found", func(t *testing.T) {
		mock.ExpectQuery("SELECT 1 FROM users").
			WithArgs(idBytes).
			WillReturnRows(sqlmock.NewRows([]string{"1"}))

		err := repo.UpdateRole(context.Background(), id, domain.RoleResponder, time.Now().UTC())
		assert.ErrorIs(t, err, domain.ErrUserNotFound)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}
