package repository

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	authDomain "github.com/allisson/incidenthub/internal/auth/domain"
	"github.com/allisson/incidenthub/internal/database"
	"github.com/allisson/incidenthub/internal/testutil"
)

func newRefreshToken(userID uuid.UUID, hash string, expiresAt time.Time) *authDomain.RefreshToken {
	return &authDomain.RefreshToken{
		ID:        uuid.Must(uuid.NewV7()),
		UserID:    userID,
		TokenHash: hash,
		ExpiresAt: expiresAt,
		CreatedAt: time.Now().UTC(),
	}
}

func TestPostgreSQLRefreshTokenRepository_CreateAndConsume(t *testing.T) {
	db := testutil.SetupSQLiteDB(t)
	repo := NewPostgreSQLRefreshTokenRepository(db)
	ctx := context.Background()

	userID := testutil.CreateTestUser(t, db, "viewer@example.com", "VIEWER")
	token := newRefreshToken(userID, "hash-1", time.Now().UTC().Add(time.Hour))
	require.NoError(t, repo.Create(ctx, token))

	consumed, err := repo.Consume(ctx, "hash-1")
	require.NoError(t, err)
	assert.Equal(t, token.ID, consumed.ID)
	assert.Equal(t, userID, consumed.UserID)
	assert.Equal(t, "hash-1", consumed.TokenHash)
	assert.WithinDuration(t, token.ExpiresAt, consumed.ExpiresAt, time.Second)

	_, err = repo.Consume(ctx, "hash-1")
	assert.ErrorIs(t, err, authDomain.ErrRefreshTokenInvalid)
}

func TestPostgreSQLRefreshTokenRepository_Consume_Unknown(t *testing.T) {
	db := testutil.SetupSQLiteDB(t)
	repo := NewPostgreSQLRefreshTokenRepository(db)

	_, err := repo.Consume(context.Background(), "missing")
	assert.ErrorIs(t, err, authDomain.ErrRefreshTokenInvalid)
}

func TestPostgreSQLRefreshTokenRepository_Consume_RolledBack(t *testing.T) {
	db := testutil.SetupSQLiteDB(t)
	repo := NewPostgreSQLRefreshTokenRepository(db)
	txManager := database.NewTxManager(db)
	ctx := context.Background()

	userID := testutil.CreateTestUser(t, db, "viewer@example.com", "VIEWER")
	require.NoError(t, repo.Create(ctx, newRefreshToken(userID, "hash-1", time.Now().UTC().Add(time.Hour))))

	err := txManager.WithTx(ctx, func(ctx context.Context) error {
		if _, err := repo.Consume(ctx, "hash-1"); err != nil {
			return err
		}
		return assert.AnError
	})
	require.ErrorIs(t, err, assert.AnError)

	// The rollback restores the row.
	_, err = repo.Consume(ctx, "hash-1")
	assert.NoError(t, err)
}

func TestPostgreSQLRefreshTokenRepository_Consume_Concurrent(t *testing.T) {
	db := testutil.SetupSQLiteDB(t)
	repo := NewPostgreSQLRefreshTokenRepository(db)
	txManager := database.NewTxManager(db)
	ctx := context.Background()

	userID := testutil.CreateTestUser(t, db, "viewer@example.com", "VIEWER")
	require.NoError(t, repo.Create(ctx, newRefreshToken(userID, "shared", time.Now().UTC().Add(time.Hour))))

	const callers = 8
	var wg sync.WaitGroup
	var mu sync.Mutex
	successes := 0

	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := txManager.WithTx(ctx, func(ctx context.Context) error {
				_, err := repo.Consume(ctx, "shared")
				return err
			})
			if err == nil {
				mu.Lock()
				successes++
				mu.Unlock()
			} else {
				assert.ErrorIs(t, err, authDomain.ErrRefreshTokenInvalid)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, successes)
}

func TestPostgreSQLRefreshTokenRepository_DeleteByHash(t *testing.T) {
	db := testutil.SetupSQLiteDB(t)
	repo := NewPostgreSQLRefreshTokenRepository(db)
	ctx := context.Background()

	userID := testutil.CreateTestUser(t, db, "viewer@example.com", "VIEWER")
	require.NoError(t, repo.Create(ctx, newRefreshToken(userID, "hash-1", time.Now().UTC().Add(time.Hour))))

	require.NoError(t, repo.DeleteByHash(ctx, "hash-1"))
	require.NoError(t, repo.DeleteByHash(ctx, "hash-1"))

	_, err := repo.Consume(ctx, "hash-1")
	assert.ErrorIs(t, err, authDomain.ErrRefreshTokenInvalid)
}

func TestPostgreSQLRefreshTokenRepository_DeleteByUserID(t *testing.T) {
	db := testutil.SetupSQLiteDB(t)
	repo := NewPostgreSQLRefreshTokenRepository(db)
	ctx := context.Background()
	expiresAt := time.Now().UTC().Add(time.Hour)

	alice := testutil.CreateTestUser(t, db, "alice@example.com", "VIEWER")
	bob := testutil.CreateTestUser(t, db, "bob@example.com", "VIEWER")
	require.NoError(t, repo.Create(ctx, newRefreshToken(alice, "alice-1", expiresAt)))
	require.NoError(t, repo.Create(ctx, newRefreshToken(alice, "alice-2", expiresAt)))
	require.NoError(t, repo.Create(ctx, newRefreshToken(bob, "bob-1", expiresAt)))

	count, err := repo.DeleteByUserID(ctx, alice)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)

	_, err = repo.Consume(ctx, "bob-1")
	assert.NoError(t, err)
}

func TestPostgreSQLRefreshTokenRepository_DeleteExpired(t *testing.T) {
	db := testutil.SetupSQLiteDB(t)
	repo := NewPostgreSQLRefreshTokenRepository(db)
	ctx := context.Background()
	now := time.Now().UTC()

	userID := testutil.CreateTestUser(t, db, "viewer@example.com", "VIEWER")
	require.NoError(t, repo.Create(ctx, newRefreshToken(userID, "old", now.Add(-48*time.Hour))))
	require.NoError(t, repo.Create(ctx, newRefreshToken(userID, "recent", now.Add(-time.Hour))))
	require.NoError(t, repo.Create(ctx, newRefreshToken(userID, "live", now.Add(time.Hour))))

	count, err := repo.DeleteExpired(ctx, now.Add(-24*time.Hour), true)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	count, err = repo.DeleteExpired(ctx, now, false)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)

	_, err = repo.Consume(ctx, "live")
	assert.NoError(t, err)
}
