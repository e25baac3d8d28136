// Package testutil provides testing utilities for database integration tests.
//
// Repository and scenario tests run against a private in-memory SQLite
// database with the real migrations from migrations/sqlite applied:
//
//	db := testutil.SetupSQLiteDB(t)
//	adminID := testutil.CreateTestUser(t, db, "admin@example.com", "ADMIN")
//
// The PostgreSQL repositories use $n placeholders, which SQLite accepts, so
// the same implementations are exercised by these tests.
//
// Migration Path:
//
// Migrations are automatically discovered by walking up from the current
// working directory until a "migrations/{dbType}" directory is found.
package testutil

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"
)

// SQLiteMemoryDSN opens a fresh in-memory database per connection. Callers must
// keep the pool at a single connection.
const SQLiteMemoryDSN = "file::memory:?_pragma=foreign_keys(1)&_time_format=sqlite"

// SetupSQLiteDB creates an in-memory SQLite database and runs migrations.
// The connection is closed when the test finishes.
func SetupSQLiteDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sql.Open("sqlite", SQLiteMemoryDSN)
	require.NoError(t, err, "failed to open sqlite")

	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	require.NoError(t, db.Ping(), "failed to ping sqlite database")

	runSQLiteMigrations(t, db)

	t.Cleanup(func() {
		_ = db.Close()
	})

	return db
}

// runSQLiteMigrations applies all pending SQLite migrations for the test database.
func runSQLiteMigrations(t *testing.T, db *sql.DB) {
	t.Helper()

	driver, err := sqlite.WithInstance(db, &sqlite.Config{})
	require.NoError(t, err, "failed to create sqlite driver")

	migrationsPath, err := getMigrationsPath("sqlite")
	require.NoError(t, err, "failed to find sqlite migrations path")

	m, err := migrate.NewWithDatabaseInstance(
		fmt.Sprintf("file://%s", migrationsPath),
		"sqlite",
		driver,
	)
	require.NoError(t, err, "failed to create migrate instance for sqlite")

	// The migrate instance is not closed: it would close the connection we hand back.
	err = m.Up()
	if err != nil && err != migrate.ErrNoChange {
		require.NoError(t, err, fmt.Sprintf("failed to run sqlite migrations from %s", migrationsPath))
	}
}

// getMigrationsPath resolves the absolute path to migration files for the specified database type.
// Walks up the directory tree from current working directory to find the migrations folder.
// Returns an error if the working directory cannot be determined or migrations are not found.
func getMigrationsPath(dbType string) (string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("failed to get working directory: %w", err)
	}

	for {
		migrationsPath := filepath.Join(dir, "migrations", dbType)
		if _, err := os.Stat(migrationsPath); err == nil {
			return migrationsPath, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", fmt.Errorf("migrations directory not found for %s (started from %s)", dbType, dir)
		}
		dir = parent
	}
}

// CreateTestUser inserts a user row with a placeholder password hash and returns its ID.
// Use it for foreign keys in incident, comment, refresh token and audit log tests.
func CreateTestUser(t *testing.T, db *sql.DB, email, role string) uuid.UUID {
	t.Helper()

	id := uuid.Must(uuid.NewV7())
	now := time.Now().UTC()

	_, err := db.ExecContext(context.Background(),
		`INSERT INTO users (id, name, email, password, role, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		id,
		"Test "+role,
		email,
		"test-password-hash",
		role,
		now,
		now,
	)
	require.NoError(t, err, "failed to create test user: "+email)

	return id
}
