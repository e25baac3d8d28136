package commands

import (
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunMigrations(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	t.Run("invalid-driver", func(t *testing.T) {
		err := RunMigrations(logger, "invalid", "postgres://localhost")
		require.Error(t, err)
		require.Contains(t, err.Error(), "unsupported database driver")
	})

	t.Run("invalid-connection-string", func(t *testing.T) {
		err := RunMigrations(logger, "postgres", "invalid-connection-string")
		require.Error(t, err)
		require.Contains(t, err.Error(), "failed to create migrate instance")
	})
}

func TestMigrationURLs(t *testing.T) {
	tests := []struct {
		driver   string
		dsn      string
		source   string
		database string
	}{
		{"postgres", "postgres://u:p@localhost/db", "file://migrations/postgresql", "postgres://u:p@localhost/db"},
		{"mysql", "u:p@tcp(localhost:3306)/db", "file://migrations/mysql", "mysql://u:p@tcp(localhost:3306)/db"},
		{"mysql", "mysql://u:p@tcp(localhost:3306)/db", "file://migrations/mysql", "mysql://u:p@tcp(localhost:3306)/db"},
		{"sqlite", "file:incidenthub.db", "file://migrations/sqlite", "sqlite://incidenthub.db"},
		{"sqlite", "incidenthub.db", "file://migrations/sqlite", "sqlite://incidenthub.db"},
	}

	for _, tt := range tests {
		t.Run(tt.driver+" "+tt.dsn, func(t *testing.T) {
			source, database, err := migrationURLs(tt.driver, tt.dsn)
			require.NoError(t, err)
			assert.Equal(t, tt.source, source)
			assert.Equal(t, tt.database, database)
		})
	}
}
